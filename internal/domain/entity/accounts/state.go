package accounts

import "time"

// ConnectionStatus tells the controller whether an account's session is
// currently usable.
type ConnectionStatus string

const (
	StatusConnected    ConnectionStatus = "connected"
	StatusDisconnected ConnectionStatus = "disconnected"
)

// AccountState is one row of a sync batch. Financial fields are pointers so
// disconnected rows omit them entirely instead of reporting zeros.
type AccountState struct {
	AccountID        int64            `json:"account_number,string"`
	Balance          *float64         `json:"balance,omitempty"`
	Equity           *float64         `json:"equity,omitempty"`
	Currency         string           `json:"currency,omitempty"`
	Margin           *float64         `json:"margin,omitempty"`
	MarginFree       *float64         `json:"margin_free,omitempty"`
	ConnectionStatus ConnectionStatus `json:"connection_status"`
	LastUpdate       time.Time        `json:"last_update"`
}

// Connected builds the sync row for an account whose snapshot was confirmed
// to belong to it.
func Connected(snap *AccountSnapshot, now time.Time) AccountState {
	return AccountState{
		AccountID:        snap.AccountID,
		Balance:          f64(snap.Balance),
		Equity:           f64(snap.Equity),
		Currency:         snap.Currency,
		Margin:           f64(snap.Margin),
		MarginFree:       f64(snap.MarginFree),
		ConnectionStatus: StatusConnected,
		LastUpdate:       now,
	}
}

// Disconnected builds the sync row for an account without a usable session.
func Disconnected(accountID int64, now time.Time) AccountState {
	return AccountState{
		AccountID:        accountID,
		ConnectionStatus: StatusDisconnected,
		LastUpdate:       now,
	}
}

// SyncReport is the aggregate answer for one sync batch, rows in input order.
type SyncReport struct {
	Accounts []AccountState `json:"accounts"`
	SyncTime time.Time      `json:"sync_time"`
}

// HealthReport is a pure status read: the gateway flag reflects the last
// known runtime state, it is never probed as a side effect of health checks.
type HealthReport struct {
	GatewayAvailable  bool
	ActiveConnections int
}

func f64(v float64) *float64 {
	return &v
}
