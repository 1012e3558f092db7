package papertrading

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Timestamp is an instant persisted as unix seconds.
type Timestamp struct{ time.Time }

// NewTimestamp truncates t to the second, the persisted precision.
func NewTimestamp(t time.Time) Timestamp { return Timestamp{t.Truncate(time.Second)} }

// MarshalJSON implements the json.Marshaler interface for Timestamp.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("0"), nil
	}
	return []byte(strconv.FormatInt(t.Unix(), 10)), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface for Timestamp.
// Fractional seconds, as written by float clocks, are accepted.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = Timestamp{}
		return nil
	}
	d, err := decimal.NewFromString(string(data))
	if err != nil {
		return fmt.Errorf("invalid timestamp %s: %w", data, err)
	}
	if d.IsZero() {
		*t = Timestamp{}
		return nil
	}
	*t = Timestamp{time.Unix(d.IntPart(), 0)}
	return nil
}

// Account is the ledger record of a single user.
//
// TotalAssets is balance plus the market value of open positions. Cash
// movements never change position value, so they apply the same delta to
// Balance and TotalAssets.
type Account struct {
	UserID       string
	Username     string
	Balance      decimal.Decimal
	TotalAssets  decimal.Decimal
	RegisterTime Timestamp
	LastLogin    Timestamp

	// extra holds fields written by other components (the trading engine),
	// they are persisted back verbatim.
	extra map[string]json.RawMessage
}

// Equal reports whether a and b hold the same values, including unknown fields.
func (a Account) Equal(b Account) bool {
	if a.UserID != b.UserID || a.Username != b.Username ||
		!a.Balance.Equal(b.Balance) || !a.TotalAssets.Equal(b.TotalAssets) ||
		!a.RegisterTime.Equal(b.RegisterTime.Time) || !a.LastLogin.Equal(b.LastLogin.Time) {
		return false
	}
	if len(a.extra) != len(b.extra) {
		return false
	}
	for k, v := range a.extra {
		if !bytes.Equal(v, b.extra[k]) {
			return false
		}
	}
	return true
}

// clone returns a copy of a that does not share the extra fields map.
func (a Account) clone() Account {
	if a.extra != nil {
		extra := make(map[string]json.RawMessage, len(a.extra))
		for k, v := range a.extra {
			extra[k] = slices.Clone(v)
		}
		a.extra = extra
	}
	return a
}

// known account attributes, in their persisted order.
const (
	attrUserID       = "user_id"
	attrUsername     = "username"
	attrBalance      = "balance"
	attrTotalAssets  = "total_assets"
	attrRegisterTime = "register_time"
	attrLastLogin    = "last_login"
)

var knownAttrs = []string{attrUserID, attrUsername, attrBalance, attrTotalAssets, attrRegisterTime, attrLastLogin}

// MarshalJSON implements the json.Marshaler interface for Account.
// Amounts are written as JSON numbers.
func (a Account) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append(attrUserID, a.UserID)
	w.Append(attrUsername, a.Username)
	w.AppendRaw(attrBalance, json.RawMessage(a.Balance.String()))
	w.AppendRaw(attrTotalAssets, json.RawMessage(a.TotalAssets.String()))
	w.Append(attrRegisterTime, a.RegisterTime)
	w.Append(attrLastLogin, a.LastLogin)

	keys := make([]string, 0, len(a.extra))
	for k := range a.extra {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		w.AppendRaw(k, a.extra[k])
	}
	return w.MarshalJSON()
}

// UnmarshalJSON implements the json.Unmarshaler interface for Account.
func (a *Account) UnmarshalJSON(data []byte) error {
	var jobj map[string]json.RawMessage
	if err := json.Unmarshal(data, &jobj); err != nil {
		return err
	}

	var temp struct {
		UserID       string          `json:"user_id"`
		Username     string          `json:"username"`
		Balance      decimal.Decimal `json:"balance"`
		TotalAssets  decimal.Decimal `json:"total_assets"`
		RegisterTime Timestamp       `json:"register_time"`
		LastLogin    Timestamp       `json:"last_login"`
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}

	for _, k := range knownAttrs {
		delete(jobj, k)
	}
	if len(jobj) == 0 {
		jobj = nil
	}

	*a = Account{
		UserID:       temp.UserID,
		Username:     temp.Username,
		Balance:      temp.Balance,
		TotalAssets:  temp.TotalAssets,
		RegisterTime: temp.RegisterTime,
		LastLogin:    temp.LastLogin,
		extra:        jobj,
	}
	return nil
}
