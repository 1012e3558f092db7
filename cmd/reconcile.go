package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/etnz/papertrading/reconcile"
	"github.com/google/subcommands"
)

type reconcileCmd struct {
	dryRun bool
}

func (*reconcileCmd) Name() string { return "reconcile" }
func (*reconcileCmd) Synopsis() string {
	return "repair malformed user ids in every store"
}
func (*reconcileCmd) Usage() string {
	return `ptd reconcile [-dry-run]

Moves accounts, positions and orders stored under a malformed user id (a
session repeating the sender prefix) to the canonical id. When the canonical
id already has an account, the existing account is kept.

The store files are copied into a backup_<time> folder inside the root folder
before being modified. No other process should use the stores meanwhile.
`
}

func (c *reconcileCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.dryRun, "dry-run", false, "Report what would be done without modifying anything.")
}

func (c *reconcileCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	report, err := reconcile.Run(ctx, *rootDir, reconcile.Options{DryRun: c.dryRun})
	// the report tells what was done, even on failure
	printMarkdown(report.Markdown())
	if err != nil {
		if report.BackupDir != "" {
			fmt.Printf("The stores can be restored from %s\n", report.BackupDir)
		}
		return fail(err)
	}
	return subcommands.ExitSuccess
}
