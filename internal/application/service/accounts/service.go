// Package accounts implements the connect operation, the sync engine and the
// health reporter on top of the gateway and the connection registry.
package accounts

import (
	"context"
	"errors"
	"time"

	accounts "main/internal/domain/entity/accounts"
	interfaces "main/internal/domain/interfaces"

	"github.com/sirupsen/logrus"
)

var (
	ErrMissingAccount  = errors.New("account is required")
	ErrMissingPassword = errors.New("password is required")
	ErrMissingServer   = errors.New("server is required")
	ErrMissingAccounts = errors.New("accounts list is required")
)

type Service struct {
	gateway  interfaces.TradingGateway
	registry interfaces.ConnectionRegistry
	logger   *logrus.Logger
	timeout  time.Duration
}

// NewService builds the accounts service. timeout bounds each individual
// gateway call (zero disables the bound).
func NewService(gateway interfaces.TradingGateway, registry interfaces.ConnectionRegistry, logger *logrus.Logger, timeout time.Duration) *Service {
	return &Service{
		gateway:  gateway,
		registry: registry,
		logger:   logger,
		timeout:  timeout,
	}
}

// Connect logs the account into the terminal and records the connection on
// success. Gateway failures pass through typed (InitError, AuthError,
// SnapshotError) and leave the registry untouched.
func (s *Service) Connect(ctx context.Context, creds accounts.Credentials) (*accounts.AccountSnapshot, error) {
	if creds.AccountID <= 0 {
		return nil, ErrMissingAccount
	}
	if creds.Password == "" {
		return nil, ErrMissingPassword
	}
	if creds.Server == "" {
		return nil, ErrMissingServer
	}

	callCtx, cancel := s.callContext(ctx)
	defer cancel()

	snap, err := s.gateway.Connect(callCtx, creds)
	if err != nil {
		s.logger.Warnf("connect failed for account %d: %v", creds.AccountID, err)
		return nil, err
	}

	s.registry.Record(ctx, creds.AccountID, creds.Server)
	s.logger.WithFields(logrus.Fields{
		"account": creds.AccountID,
		"server":  creds.Server,
	}).Info("account connected")
	return snap, nil
}

// Sync resolves the current state of each requested account, one row per
// input identifier in input order. Duplicates are not deduplicated. A failed
// lookup degrades that row to disconnected; it never aborts the batch.
func (s *Service) Sync(ctx context.Context, accountIDs []int64) *accounts.SyncReport {
	rows := make([]accounts.AccountState, 0, len(accountIDs))
	for _, id := range accountIDs {
		rows = append(rows, s.syncOne(ctx, id))
	}
	return &accounts.SyncReport{
		Accounts: rows,
		SyncTime: time.Now().UTC(),
	}
}

func (s *Service) syncOne(ctx context.Context, accountID int64) accounts.AccountState {
	now := time.Now().UTC()

	// Never-connected accounts are reported without touching the gateway.
	if !s.registry.IsTracked(accountID) {
		return accounts.Disconnected(accountID, now)
	}

	callCtx, cancel := s.callContext(ctx)
	defer cancel()

	snap, err := s.gateway.AccountState(callCtx, accountID)
	if err != nil {
		s.logger.Debugf("state lookup failed for account %d: %v", accountID, err)
		return accounts.Disconnected(accountID, now)
	}
	// A single-session gateway reports whichever account is logged in; an
	// owner mismatch means this account's session was displaced.
	if snap == nil || snap.AccountID != accountID {
		return accounts.Disconnected(accountID, now)
	}
	return accounts.Connected(snap, now)
}

// Health is a pure status read: the last known gateway state plus the
// registry size. It never re-initializes the terminal runtime.
func (s *Service) Health(ctx context.Context) accounts.HealthReport {
	return accounts.HealthReport{
		GatewayAvailable:  s.gateway.Available(ctx),
		ActiveConnections: s.registry.Count(),
	}
}

func (s *Service) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}
