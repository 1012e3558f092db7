package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/papertrading"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

// cashCmd is the common part of deposit and withdraw.
type cashCmd struct {
	user string
}

func (c *cashCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.user, "u", "", "Identifier of the account (platform:sender:session).")
}

type cashFunc func(l *papertrading.Ledger, userID string, amount decimal.Decimal) (papertrading.Account, error)

func (c *cashCmd) execute(f *flag.FlagSet, op string, move cashFunc, sign int) subcommands.ExitStatus {
	if c.user == "" {
		fmt.Fprintln(os.Stderr, "Error: -u flag is required.")
		return subcommands.ExitUsageError
	}
	if f.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Error: %s requires exactly one amount argument.\n", op)
		return subcommands.ExitUsageError
	}
	amount, err := papertrading.ParseAmount(f.Arg(0))
	if err != nil {
		return fail(err)
	}

	ledger, cfg, err := OpenLedger()
	if err != nil {
		return fail(err)
	}
	a, err := move(ledger, c.user, amount)
	if err != nil {
		return fail(err)
	}
	fmt.Printf("%s %s on %s\n", op, papertrading.FormatSignedMoney(amount.Mul(decimal.NewFromInt(int64(sign))), cfg.Currency), c.user)
	printMarkdown(accountMarkdown(a, cfg.Currency))
	return subcommands.ExitSuccess
}

type depositCmd struct{ cashCmd }

func (*depositCmd) Name() string     { return "deposit" }
func (*depositCmd) Synopsis() string { return "add cash to an account" }
func (*depositCmd) Usage() string {
	return `ptd deposit -u <user_id> <amount>

  Adds a strictly positive amount to both the balance and the total assets.
`
}

func (c *depositCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.execute(f, "deposit", (*papertrading.Ledger).Deposit, 1)
}

type withdrawCmd struct{ cashCmd }

func (*withdrawCmd) Name() string     { return "withdraw" }
func (*withdrawCmd) Synopsis() string { return "remove cash from an account" }
func (*withdrawCmd) Usage() string {
	return `ptd withdraw -u <user_id> <amount>

  Removes a strictly positive amount, no greater than the balance, from both
  the balance and the total assets.
`
}

func (c *withdrawCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.execute(f, "withdraw", (*papertrading.Ledger).Withdraw, -1)
}
