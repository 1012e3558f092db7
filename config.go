package papertrading

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultInitialBalance is the cash granted on registration when nothing else is configured.
var DefaultInitialBalance = decimal.NewFromInt(1000000)

// DefaultCurrency is the currency amounts are displayed in.
const DefaultCurrency = "CNY"

// Config holds the ledger configuration.
type Config struct {
	InitialBalance decimal.Decimal  // starting cash granted on registration
	Currency       string           // ISO code of the account currency, for display only
	Now            func() time.Time // clock, time.Now when nil
}

// DefaultConfig returns the configuration used when nothing is specified.
func DefaultConfig() Config {
	return Config{
		InitialBalance: DefaultInitialBalance,
		Currency:       DefaultCurrency,
		Now:            time.Now,
	}
}

func (c Config) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}
