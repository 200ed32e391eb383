// Package sim is an in-memory TradingGateway used for local development and
// tests. Unlike the terminal bridge it keeps one independent session per
// account, so the fan-out engine may submit against it concurrently.
package sim

import (
	"context"
	"fmt"
	"sync"

	accounts "main/internal/domain/entity/accounts"
	trading "main/internal/domain/entity/trading"
	interfaces "main/internal/domain/interfaces"
)

// retCodeReject is returned for scripted rejections.
const retCodeReject = 10006

var _ interfaces.TradingGateway = (*Gateway)(nil)

// Gateway simulates a terminal. A fresh Gateway auto-provisions any account
// on first connect; once Seed is called, only seeded credentials are
// accepted.
type Gateway struct {
	mu            sync.Mutex
	accounts      map[int64]*account
	quotes        map[string]float64
	nextTicket    int64
	autoProvision bool
}

type account struct {
	password     string
	server       string
	snapshot     accounts.AccountSnapshot
	loggedIn     bool
	rejectReason string
}

// New builds an auto-provisioning simulator.
func New() *Gateway {
	return &Gateway{
		accounts:      make(map[int64]*account),
		quotes:        make(map[string]float64),
		autoProvision: true,
	}
}

// Seed registers a known account with fixed credentials and state. Seeding
// switches the gateway to strict mode: unknown or mismatched logins are
// rejected instead of auto-provisioned.
func (g *Gateway) Seed(creds accounts.Credentials, snap accounts.AccountSnapshot) {
	g.mu.Lock()
	defer g.mu.Unlock()

	snap.AccountID = creds.AccountID
	g.accounts[creds.AccountID] = &account{
		password: creds.Password,
		server:   creds.Server,
		snapshot: snap,
	}
	g.autoProvision = false
}

// SetQuote fixes the fill price reported for a symbol. Unquoted symbols fill
// at 1.0.
func (g *Gateway) SetQuote(symbol string, price float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.quotes[symbol] = price
}

// RejectOrders scripts the account to refuse every submission with the given
// reason.
func (g *Gateway) RejectOrders(accountID int64, reason string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if acc, ok := g.accounts[accountID]; ok {
		acc.rejectReason = reason
	}
}

// Connect opens (or provisions) the account's session.
func (g *Gateway) Connect(_ context.Context, creds accounts.Credentials) (*accounts.AccountSnapshot, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	acc, ok := g.accounts[creds.AccountID]
	if !ok {
		if !g.autoProvision {
			return nil, &interfaces.AuthError{AccountID: creds.AccountID, Detail: "unknown account"}
		}
		acc = &account{
			password: creds.Password,
			server:   creds.Server,
			snapshot: accounts.AccountSnapshot{
				AccountID:  creds.AccountID,
				Balance:    10000,
				Equity:     10000,
				Currency:   "USD",
				Leverage:   100,
				MarginFree: 10000,
			},
		}
		g.accounts[creds.AccountID] = acc
	}
	if acc.password != creds.Password {
		return nil, &interfaces.AuthError{AccountID: creds.AccountID, Detail: "invalid credentials"}
	}

	acc.loggedIn = true
	snap := acc.snapshot
	return &snap, nil
}

// AccountState answers from the account's own session; sessions here are
// independent, so the owner always matches.
func (g *Gateway) AccountState(_ context.Context, accountID int64) (*accounts.AccountSnapshot, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	acc, ok := g.accounts[accountID]
	if !ok || !acc.loggedIn {
		return nil, fmt.Errorf("no active session for account %d", accountID)
	}
	snap := acc.snapshot
	return &snap, nil
}

// SubmitOrder fills the order at the symbol's quote unless the account is
// scripted to reject.
func (g *Gateway) SubmitOrder(_ context.Context, req *trading.OrderRequest, _ interfaces.OrderType) (*interfaces.OrderAck, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	acc, ok := g.accounts[req.AccountID]
	if !ok || !acc.loggedIn {
		return nil, fmt.Errorf("no active session for account %d", req.AccountID)
	}
	if acc.rejectReason != "" {
		return &interfaces.OrderAck{RetCode: retCodeReject, Comment: acc.rejectReason}, nil
	}

	g.nextTicket++
	price := g.quotes[req.Symbol]
	if price == 0 {
		price = 1.0
	}
	return &interfaces.OrderAck{
		RetCode: interfaces.RetCodeDone,
		Ticket:  g.nextTicket,
		Price:   price,
		Comment: "done",
	}, nil
}

// Available is always true for the simulator.
func (g *Gateway) Available(context.Context) bool {
	return true
}

// IndependentSessions is true: each account owns its own simulated session.
func (g *Gateway) IndependentSessions() bool {
	return true
}
