package trading

import "time"

// OrderStatus classifies the outcome of one per-account submission.
type OrderStatus string

const (
	OrderStatusFilled   OrderStatus = "FILLED"
	OrderStatusRejected OrderStatus = "REJECTED"
)

// OrderRequest is derived from a TradeIntent for a single target account.
// It is never stored; the fan-out engine builds one per submission. Volume
// already carries the per-account multiplier, rounded to the two-decimal lot
// precision terminals expect.
type OrderRequest struct {
	AccountID   int64
	Symbol      string
	Direction   Direction
	Volume      float64
	TakeProfit  *float64
	StopLoss    *float64
	ExecutionID string
	ClientTag   string
}

// OrderResult is the classified outcome for one account. FILLED entries
// always carry a ticket and execution price; REJECTED entries never do and
// carry the rejection detail instead.
type OrderResult struct {
	AccountID      int64       `json:"account_number,string"`
	Symbol         string      `json:"symbol"`
	Direction      Direction   `json:"direction"`
	Volume         float64     `json:"volume"`
	Ticket         *int64      `json:"ticket"`
	ExecutionPrice *float64    `json:"execution_price"`
	Status         OrderStatus `json:"status"`
	Error          string      `json:"error,omitempty"`
	Timestamp      time.Time   `json:"timestamp"`
}
