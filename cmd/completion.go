package cmd

import (
	"maps"
	"path/filepath"
	"slices"

	"github.com/etnz/papertrading"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// Completion returns the shell completion of the application.
func Completion() *complete.Command {
	user := map[string]complete.Predictor{"u": complete.PredictFunc(predictUsers)}
	cash := &complete.Command{Flags: user, Args: predict.Something}

	return &complete.Command{
		Flags: map[string]complete.Predictor{
			"root":            predict.Dirs("*"),
			"initial-balance": predict.Something,
			"currency":        predict.Set{"CNY", "HKD", "USD", "EUR"},
		},
		Sub: map[string]*complete.Command{
			"register": {Flags: map[string]complete.Predictor{
				"u":    predict.Something,
				"name": predict.Something,
			}},
			"account":  {Flags: user},
			"deposit":  cash,
			"withdraw": cash,
			"reset": {Flags: map[string]complete.Predictor{
				"u":       complete.PredictFunc(predictUsers),
				"yes":     predict.Nothing,
				"timeout": predict.Set{"10s", "30s", "1m"},
			}},
			"reconcile": {Flags: map[string]complete.Predictor{"dry-run": predict.Nothing}},
			"help":      {Args: predict.Set{"register", "account", "deposit", "withdraw", "reset", "reconcile"}},
		},
	}
}

// predictUsers lists the registered user ids of the root folder.
func predictUsers(prefix string) []string {
	users, err := papertrading.ReadCollection(filepath.Join(*rootDir, papertrading.UsersFile))
	if err != nil {
		return nil
	}
	return slices.Sorted(maps.Keys(users))
}
