// Package cmd implements the CLI application to manage paper trading accounts.
package cmd

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/papertrading"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&registerCmd{}, "accounts")
	c.Register(&accountCmd{}, "accounts")
	c.Register(&depositCmd{}, "accounts")
	c.Register(&withdrawCmd{}, "accounts")
	c.Register(&resetCmd{}, "accounts")

	c.Register(&reconcileCmd{}, "maintenance")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var rootDir = flag.String("root", "data", "Path to the folder holding users.json, positions.json and orders.json")
var initialBalance = flag.String("initial-balance", papertrading.DefaultInitialBalance.String(), "Cash granted to newly registered accounts")
var currency = flag.String("currency", papertrading.DefaultCurrency, "Currency amounts are displayed in")

// config returns the ledger configuration from the global flags.
func config() (papertrading.Config, error) {
	cfg := papertrading.DefaultConfig()
	balance, err := decimal.NewFromString(*initialBalance)
	if err != nil {
		return cfg, fmt.Errorf("invalid -initial-balance %q: %w", *initialBalance, err)
	}
	if balance.IsNegative() {
		return cfg, errors.New("invalid -initial-balance: must not be negative")
	}
	cfg.InitialBalance = balance
	if *currency != "" {
		cfg.Currency = *currency
	}
	return cfg, nil
}

// OpenLedger opens the ledger on the file store of the root folder.
func OpenLedger() (*papertrading.Ledger, papertrading.Config, error) {
	cfg, err := config()
	if err != nil {
		return nil, cfg, err
	}
	store, err := papertrading.OpenFileStore(*rootDir)
	if err != nil {
		return nil, cfg, err
	}
	return papertrading.NewLedger(store, cfg), cfg, nil
}

// printMarkdown renders md on the terminal, or prints it raw when it cannot.
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err == nil {
		var out string
		if out, err = r.Render(md); err == nil {
			fmt.Print(out)
			return
		}
	}
	fmt.Print(md)
}

// fail prints err and returns the matching exit status.
func fail(err error) subcommands.ExitStatus {
	fmt.Fprintln(os.Stderr, "Error:", err)
	return subcommands.ExitFailure
}
