package trading

// Direction is the trade side requested by the controller.
type Direction string

const (
	DirectionBuy  Direction = "BUY"
	DirectionSell Direction = "SELL"
)

// Valid reports whether the direction belongs to the known vocabulary.
func (d Direction) Valid() bool {
	return d == DirectionBuy || d == DirectionSell
}

// TradeIntent is one logical trade as requested by the controller. It is
// immutable once constructed and shared read-only across every per-account
// submission derived from it.
//
// TakeProfit and StopLoss are pointers because "not set" must stay
// distinguishable from a literal zero: zero is a valid "no limit" sentinel
// on some terminals.
type TradeIntent struct {
	Symbol     string    `json:"symbol"`
	Direction  Direction `json:"direction"`
	BaseVolume float64   `json:"base_volume"`
	TakeProfit *float64  `json:"tp"`
	StopLoss   *float64  `json:"sl"`
}

// AccountTarget names one account participating in an execution batch with
// its volume scaling factor.
type AccountTarget struct {
	AccountID  int64   `json:"account_number,string"`
	Multiplier float64 `json:"multiplier"`
}
