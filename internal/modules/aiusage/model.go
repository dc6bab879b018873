// README: Quota types: sentinel error, default allowance and usage snapshot.
package aiusage

import "errors"

// ErrInsufficientTokens is returned when a caller has no tokens remaining for the current month.
var ErrInsufficientTokens = errors.New("insufficient tokens")

// DefaultTokens is the number of tokens granted per month when none is configured.
const DefaultTokens = 100

// Operations that consume a token.
const (
	OpGenerate   = "generate"
	OpRegenerate = "regenerate"
)

// Usage is a caller's allowance for the month in Month (YYYY-MM).
type Usage struct {
	UID       string `json:"uid"`
	Remaining int    `json:"tokens_remaining"`
	Allowance int    `json:"monthly_allowance"`
	Month     string `json:"month"`
}

const monthLayout = "2006-01"
