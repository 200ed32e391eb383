package accounts

// AccountSnapshot is the terminal's view of an account's financial state.
// Produced per-query by the gateway, never persisted.
type AccountSnapshot struct {
	AccountID  int64   `json:"account_id"`
	Balance    float64 `json:"balance"`
	Equity     float64 `json:"equity"`
	Currency   string  `json:"currency"`
	Leverage   int64   `json:"leverage"`
	Margin     float64 `json:"margin"`
	MarginFree float64 `json:"margin_free"`
}
