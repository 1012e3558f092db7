package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type registerCmd struct {
	user string
	name string
}

func (*registerCmd) Name() string     { return "register" }
func (*registerCmd) Synopsis() string { return "open a new paper trading account" }
func (*registerCmd) Usage() string {
	return `ptd register -u <user_id> [-name <display_name>]

  Opens an account credited with the initial balance (see -initial-balance).
  The display name defaults to one derived from the user id.
`
}

func (c *registerCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.user, "u", "", "Identifier of the account (platform:sender:session).")
	f.StringVar(&c.name, "name", "", "Display name of the account holder.")
}

func (c *registerCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.user == "" {
		fmt.Fprintln(os.Stderr, "Error: -u flag is required.")
		return subcommands.ExitUsageError
	}
	ledger, cfg, err := OpenLedger()
	if err != nil {
		return fail(err)
	}
	a, err := ledger.Register(c.user, c.name)
	if err != nil {
		return fail(err)
	}
	printMarkdown(accountMarkdown(a, cfg.Currency))
	return subcommands.ExitSuccess
}
