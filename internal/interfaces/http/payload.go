package http

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	accounts "main/internal/domain/entity/accounts"
	trading "main/internal/domain/entity/trading"
)

// AccountNumber accepts account identifiers as JSON numbers or strings; the
// controller sends both depending on the form the value came from.
type AccountNumber int64

func (n *AccountNumber) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		s = strings.TrimSpace(str)
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid account number %q", s)
	}
	*n = AccountNumber(v)
	return nil
}

type connectPayload struct {
	Account  AccountNumber `json:"account"`
	Password string        `json:"password"`
	Server   string        `json:"server"`
}

func (p connectPayload) credentials() accounts.Credentials {
	return accounts.Credentials{
		AccountID: int64(p.Account),
		Password:  p.Password,
		Server:    p.Server,
	}
}

type syncPayload struct {
	Accounts []AccountNumber `json:"accounts"`
}

func (p syncPayload) accountIDs() []int64 {
	ids := make([]int64, 0, len(p.Accounts))
	for _, n := range p.Accounts {
		ids = append(ids, int64(n))
	}
	return ids
}

type executePayload struct {
	Symbol     string          `json:"symbol"`
	Direction  string          `json:"direction"`
	BaseVolume float64         `json:"base_volume"`
	TakeProfit *float64        `json:"tp"`
	StopLoss   *float64        `json:"sl"`
	Accounts   []targetPayload `json:"accounts"`
}

type targetPayload struct {
	AccountNumber AccountNumber `json:"account_number"`
	Multiplier    float64       `json:"multiplier"`
}

func (p executePayload) intent() trading.TradeIntent {
	return trading.TradeIntent{
		Symbol:     strings.TrimSpace(p.Symbol),
		Direction:  trading.Direction(strings.ToUpper(strings.TrimSpace(p.Direction))),
		BaseVolume: p.BaseVolume,
		TakeProfit: positiveOrNil(p.TakeProfit),
		StopLoss:   positiveOrNil(p.StopLoss),
	}
}

func (p executePayload) targets() []trading.AccountTarget {
	targets := make([]trading.AccountTarget, 0, len(p.Accounts))
	for _, t := range p.Accounts {
		targets = append(targets, trading.AccountTarget{
			AccountID:  int64(t.AccountNumber),
			Multiplier: t.Multiplier,
		})
	}
	return targets
}

// positiveOrNil drops explicit zeros: controllers send tp/sl as 0 to mean
// "no limit requested", which must never reach the gateway as a literal
// zero.
func positiveOrNil(v *float64) *float64 {
	if v == nil || *v == 0 {
		return nil
	}
	return v
}

// Responses

type errorResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

type connectResponse struct {
	Status           string  `json:"status"`
	AccountNumber    string  `json:"account_number"`
	Server           string  `json:"server"`
	Balance          float64 `json:"balance"`
	Equity           float64 `json:"equity"`
	Currency         string  `json:"currency"`
	Leverage         int64   `json:"leverage"`
	ConnectionStatus string  `json:"connection_status"`
	Message          string  `json:"message"`
}

func newConnectResponse(snap *accounts.AccountSnapshot, server string) connectResponse {
	return connectResponse{
		Status:           "success",
		AccountNumber:    strconv.FormatInt(snap.AccountID, 10),
		Server:           server,
		Balance:          snap.Balance,
		Equity:           snap.Equity,
		Currency:         snap.Currency,
		Leverage:         snap.Leverage,
		ConnectionStatus: string(accounts.StatusConnected),
		Message:          "connected to terminal",
	}
}

type syncResponse struct {
	Status   string                  `json:"status"`
	Accounts []accounts.AccountState `json:"accounts"`
	SyncTime time.Time               `json:"sync_time"`
}

func newSyncResponse(report *accounts.SyncReport) syncResponse {
	return syncResponse{
		Status:   "success",
		Accounts: report.Accounts,
		SyncTime: report.SyncTime,
	}
}

type executeResponse struct {
	Status string `json:"status"`
	trading.ExecutionReport
}

func newExecuteResponse(report *trading.ExecutionReport) executeResponse {
	return executeResponse{
		Status:          "success",
		ExecutionReport: *report,
	}
}

type healthResponse struct {
	Status            string    `json:"status"`
	Timestamp         time.Time `json:"timestamp"`
	MT5Status         string    `json:"mt5_status"`
	ActiveConnections int       `json:"active_connections"`
}
