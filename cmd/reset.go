package cmd

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/etnz/papertrading"
	"github.com/google/subcommands"
)

type resetCmd struct {
	user    string
	yes     bool
	timeout time.Duration
}

func (*resetCmd) Name() string     { return "reset" }
func (*resetCmd) Synopsis() string { return "delete an account and its positions" }
func (*resetCmd) Usage() string {
	return `ptd reset -u <user_id> [-yes] [-timeout <duration>]

  Deletes the account and all its positions, after an interactive
  confirmation. Orders are kept. Without an answer before the timeout the
  reset is cancelled.
`
}

func (c *resetCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.user, "u", "", "Identifier of the account (platform:sender:session).")
	f.BoolVar(&c.yes, "yes", false, "Do not ask for confirmation.")
	f.DurationVar(&c.timeout, "timeout", 30*time.Second, "How long to wait for the confirmation.")
}

func (c *resetCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.user == "" {
		fmt.Fprintln(os.Stderr, "Error: -u flag is required.")
		return subcommands.ExitUsageError
	}
	ledger, _, err := OpenLedger()
	if err != nil {
		return fail(err)
	}

	var confirmer papertrading.Confirmer = papertrading.Always
	if !c.yes {
		confirmer = promptConfirmer{
			in:     os.Stdin,
			out:    os.Stdout,
			prompt: fmt.Sprintf("Reset %s? All cash and positions will be lost. [y/N] ", c.user),
		}
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	err = ledger.Reset(ctx, c.user, confirmer)
	if errors.Is(err, papertrading.ErrCancelled) {
		fmt.Println("Reset cancelled.")
		return subcommands.ExitFailure
	}
	if err != nil {
		return fail(err)
	}
	fmt.Printf("Account %s has been reset.\n", c.user)
	return subcommands.ExitSuccess
}

// promptConfirmer asks a yes/no question and reads the answer line.
type promptConfirmer struct {
	in     io.Reader
	out    io.Writer
	prompt string
}

func (p promptConfirmer) Confirm(ctx context.Context) (bool, error) {
	fmt.Fprint(p.out, p.prompt)

	type answer struct {
		line string
		err  error
	}
	read := make(chan answer, 1)
	go func() {
		line, err := bufio.NewReader(p.in).ReadString('\n')
		if err == io.EOF && line != "" {
			err = nil
		}
		read <- answer{line, err}
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(p.out)
		return false, ctx.Err()
	case a := <-read:
		if a.err != nil {
			return false, fmt.Errorf("cannot read the answer: %w", a.err)
		}
		switch strings.ToLower(strings.TrimSpace(a.line)) {
		case "y", "yes":
			return true, nil
		}
		return false, nil
	}
}
