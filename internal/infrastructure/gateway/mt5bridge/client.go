// Package mt5bridge talks to a MetaTrader 5 terminal through its REST
// bridge. The terminal holds a single authenticated login at a time, so the
// whole session lifecycle (initialize, login, shutdown) is serialized behind
// one mutex: interleaved logins from concurrent requests would corrupt the
// shared session state.
package mt5bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	accounts "main/internal/domain/entity/accounts"
	trading "main/internal/domain/entity/trading"
	interfaces "main/internal/domain/interfaces"

	"github.com/sirupsen/logrus"
)

// Order submission parameters fixed by the controller protocol.
const (
	defaultDeviation = 20
	clientMagic      = 234000
	orderTimeGTC     = "GTC"
	orderFillingIOC  = "IOC"
)

var _ interfaces.TradingGateway = (*Client)(nil)

// Client is the single-session TradingGateway driver backed by a terminal
// REST bridge.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *logrus.Logger

	mu        sync.Mutex  // serializes session mutation and order flow
	available atomic.Bool // last known runtime state, read by Available
	login     int64       // account currently logged in, 0 if none
}

// New builds a bridge client. token may be empty when the bridge runs
// without authentication. timeout bounds each HTTP call as a backstop for
// the per-call contexts imposed by the services.
func New(baseURL, token string, timeout time.Duration, logger *logrus.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Connect runs the full session lifecycle: initialize the runtime, log the
// account in, read its snapshot. Login and snapshot failures tear the
// session down so no half-logged-in state remains.
func (c *Client) Connect(ctx context.Context, creds accounts.Credentials) (*accounts.AccountSnapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.do(ctx, http.MethodPost, "/initialize", nil, nil); err != nil {
		c.available.Store(false)
		return nil, &interfaces.InitError{Detail: err.Error()}
	}
	c.available.Store(true)

	login := loginPayload{
		Login:    creds.AccountID,
		Password: creds.Password,
		Server:   creds.Server,
	}
	if err := c.do(ctx, http.MethodPost, "/login", login, nil); err != nil {
		c.teardown(ctx)
		return nil, &interfaces.AuthError{AccountID: creds.AccountID, Detail: err.Error()}
	}

	var snap accountPayload
	if err := c.do(ctx, http.MethodGet, "/account", nil, &snap); err != nil {
		c.teardown(ctx)
		return nil, &interfaces.SnapshotError{AccountID: creds.AccountID, Detail: err.Error()}
	}

	c.login = creds.AccountID
	return snap.toDomain(), nil
}

// AccountState returns the snapshot of whichever account the shared session
// is logged into. Callers verify the owner; a mismatch means the requested
// account's session was displaced by a later login.
func (c *Client) AccountState(ctx context.Context, accountID int64) (*accounts.AccountSnapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var snap accountPayload
	if err := c.do(ctx, http.MethodGet, "/account", nil, &snap); err != nil {
		return nil, fmt.Errorf("account state for %d: %w", accountID, err)
	}
	return snap.toDomain(), nil
}

// SubmitOrder sends one order through the shared session.
func (c *Client) SubmitOrder(ctx context.Context, req *trading.OrderRequest, orderType interfaces.OrderType) (*interfaces.OrderAck, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	payload := orderPayload{
		Symbol:      req.Symbol,
		Volume:      req.Volume,
		Type:        int(orderType),
		Deviation:   defaultDeviation,
		Magic:       clientMagic,
		Comment:     req.ClientTag,
		TypeTime:    orderTimeGTC,
		TypeFilling: orderFillingIOC,
		TakeProfit:  req.TakeProfit,
		StopLoss:    req.StopLoss,
	}

	var ack orderAckPayload
	if err := c.do(ctx, http.MethodPost, "/order/send", payload, &ack); err != nil {
		return nil, fmt.Errorf("order send for account %d: %w", req.AccountID, err)
	}
	return &interfaces.OrderAck{
		RetCode: ack.RetCode,
		Ticket:  ack.Order,
		Price:   ack.Price,
		Comment: ack.Comment,
	}, nil
}

// Available reports the last known runtime state without touching the
// bridge.
func (c *Client) Available(context.Context) bool {
	return c.available.Load()
}

// IndependentSessions is false: the terminal owns exactly one login at a
// time.
func (c *Client) IndependentSessions() bool {
	return false
}

// teardown shuts the runtime down after a failed login or snapshot read.
// Callers hold the mutex.
func (c *Client) teardown(ctx context.Context) {
	if err := c.do(ctx, http.MethodPost, "/shutdown", nil, nil); err != nil {
		c.logger.Warnf("terminal shutdown failed: %v", err)
	}
	c.login = 0
	c.available.Store(false)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr bridgeError
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return errors.New(apiErr.Error)
		}
		return fmt.Errorf("bridge returned status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Bridge wire types

type bridgeError struct {
	Error string `json:"error"`
}

type loginPayload struct {
	Login    int64  `json:"login"`
	Password string `json:"password"`
	Server   string `json:"server"`
}

type accountPayload struct {
	Login      int64   `json:"login"`
	Balance    float64 `json:"balance"`
	Equity     float64 `json:"equity"`
	Currency   string  `json:"currency"`
	Leverage   int64   `json:"leverage"`
	Margin     float64 `json:"margin"`
	MarginFree float64 `json:"margin_free"`
}

func (p accountPayload) toDomain() *accounts.AccountSnapshot {
	return &accounts.AccountSnapshot{
		AccountID:  p.Login,
		Balance:    p.Balance,
		Equity:     p.Equity,
		Currency:   p.Currency,
		Leverage:   p.Leverage,
		Margin:     p.Margin,
		MarginFree: p.MarginFree,
	}
}

// orderPayload keeps tp/sl as pointers with omitempty: a take-profit or
// stop-loss the controller never set must not reach the terminal as a
// literal zero.
type orderPayload struct {
	Symbol      string   `json:"symbol"`
	Volume      float64  `json:"volume"`
	Type        int      `json:"type"`
	Deviation   int      `json:"deviation"`
	Magic       int      `json:"magic"`
	Comment     string   `json:"comment"`
	TypeTime    string   `json:"type_time"`
	TypeFilling string   `json:"type_filling"`
	TakeProfit  *float64 `json:"tp,omitempty"`
	StopLoss    *float64 `json:"sl,omitempty"`
}

type orderAckPayload struct {
	RetCode int     `json:"retcode"`
	Order   int64   `json:"order"`
	Price   float64 `json:"price"`
	Comment string  `json:"comment"`
}
