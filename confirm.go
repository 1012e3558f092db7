package papertrading

import "context"

// Confirmer obtains an explicit agreement before a destructive operation.
//
// Confirm blocks until the user answers, or until ctx is done. It returns
// false without error when the user declines, and an error when the
// confirmation channel itself failed.
type Confirmer interface {
	Confirm(ctx context.Context) (bool, error)
}

// ConfirmFunc adapts a function to the Confirmer interface.
type ConfirmFunc func(ctx context.Context) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context) (bool, error) { return f(ctx) }

// Always is a Confirmer that always agrees, for non interactive use.
var Always Confirmer = ConfirmFunc(func(context.Context) (bool, error) { return true, nil })
