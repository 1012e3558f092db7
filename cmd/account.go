package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/papertrading"
	"github.com/google/subcommands"
)

type accountCmd struct {
	user string
}

func (*accountCmd) Name() string     { return "account" }
func (*accountCmd) Synopsis() string { return "show the cash of an account" }
func (*accountCmd) Usage() string {
	return `ptd account -u <user_id>

  Displays the balance and total assets of a registered account.
`
}

func (c *accountCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.user, "u", "", "Identifier of the account (platform:sender:session).")
}

func (c *accountCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.user == "" {
		fmt.Fprintln(os.Stderr, "Error: -u flag is required.")
		return subcommands.ExitUsageError
	}
	ledger, cfg, err := OpenLedger()
	if err != nil {
		return fail(err)
	}
	a, err := ledger.Account(c.user)
	if err != nil {
		return fail(err)
	}
	printMarkdown(accountMarkdown(a, cfg.Currency))
	return subcommands.ExitSuccess
}

// accountMarkdown renders the account as a markdown table.
func accountMarkdown(a papertrading.Account, currency string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Account `%s`\n\n", a.UserID)
	fmt.Fprintf(&b, "| | |\n")
	fmt.Fprintf(&b, "|:---|---:|\n")
	fmt.Fprintf(&b, "| Username | %s |\n", a.Username)
	fmt.Fprintf(&b, "| Balance | %s |\n", papertrading.FormatMoney(a.Balance, currency))
	fmt.Fprintf(&b, "| Total assets | %s |\n", papertrading.FormatMoney(a.TotalAssets, currency))
	fmt.Fprintf(&b, "| Registered | %s |\n", timestamp(a.RegisterTime))
	fmt.Fprintf(&b, "| Last login | %s |\n", timestamp(a.LastLogin))
	return b.String()
}

func timestamp(t papertrading.Timestamp) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
