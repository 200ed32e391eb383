package accounts

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	accounts "main/internal/domain/entity/accounts"
	trading "main/internal/domain/entity/trading"
	interfaces "main/internal/domain/interfaces"
	"main/internal/infrastructure/registry"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// fakeGateway scripts connect and state lookups per account.
type fakeGateway struct {
	mu         sync.Mutex
	available  bool
	snapshots  map[int64]*accounts.AccountSnapshot
	connectErr map[int64]error
	stateErr   map[int64]error
	// stateOwner overrides which account the shared session reports.
	stateOwner int64
	stateCalls int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		available:  true,
		snapshots:  make(map[int64]*accounts.AccountSnapshot),
		connectErr: make(map[int64]error),
		stateErr:   make(map[int64]error),
	}
}

func (g *fakeGateway) Connect(_ context.Context, creds accounts.Credentials) (*accounts.AccountSnapshot, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.connectErr[creds.AccountID]; err != nil {
		return nil, err
	}
	if snap, ok := g.snapshots[creds.AccountID]; ok {
		copied := *snap
		return &copied, nil
	}
	return &accounts.AccountSnapshot{AccountID: creds.AccountID, Balance: 1000, Equity: 1000, Currency: "USD"}, nil
}

func (g *fakeGateway) AccountState(_ context.Context, accountID int64) (*accounts.AccountSnapshot, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.stateCalls++
	if err := g.stateErr[accountID]; err != nil {
		return nil, err
	}
	owner := accountID
	if g.stateOwner != 0 {
		owner = g.stateOwner
	}
	if snap, ok := g.snapshots[owner]; ok {
		copied := *snap
		return &copied, nil
	}
	return &accounts.AccountSnapshot{AccountID: owner, Balance: 1000, Equity: 1000, Currency: "USD"}, nil
}

func (g *fakeGateway) SubmitOrder(context.Context, *trading.OrderRequest, interfaces.OrderType) (*interfaces.OrderAck, error) {
	return nil, errors.New("not supported")
}

func (g *fakeGateway) Available(context.Context) bool { return g.available }

func (g *fakeGateway) IndependentSessions() bool { return false }

func newTestService(gw *fakeGateway) (*Service, *registry.Registry) {
	reg := registry.New(nil, testLogger())
	return NewService(gw, reg, testLogger(), 0), reg
}

func TestConnectRecordsConnection(t *testing.T) {
	t.Parallel()

	gw := newFakeGateway()
	gw.snapshots[12345] = &accounts.AccountSnapshot{
		AccountID: 12345,
		Balance:   2500.50,
		Equity:    2480.10,
		Currency:  "EUR",
		Leverage:  200,
	}
	svc, reg := newTestService(gw)

	snap, err := svc.Connect(context.Background(), accounts.Credentials{
		AccountID: 12345,
		Password:  "secret",
		Server:    "Broker-Demo",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(12345), snap.AccountID)
	assert.Equal(t, 2500.50, snap.Balance)
	assert.Equal(t, "EUR", snap.Currency)

	assert.True(t, reg.IsTracked(12345))
	conn, ok := reg.Get(12345)
	require.True(t, ok)
	assert.Equal(t, "Broker-Demo", conn.Server)
	assert.True(t, conn.Connected)
}

func TestConnectFailureLeavesRegistryUntouched(t *testing.T) {
	t.Parallel()

	gw := newFakeGateway()
	gw.connectErr[12345] = &interfaces.AuthError{AccountID: 12345, Detail: "invalid credentials"}
	svc, reg := newTestService(gw)

	snap, err := svc.Connect(context.Background(), accounts.Credentials{
		AccountID: 12345,
		Password:  "wrong",
		Server:    "Broker-Demo",
	})
	require.Error(t, err)
	assert.Nil(t, snap)

	var authErr *interfaces.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, int64(12345), authErr.AccountID)

	assert.False(t, reg.IsTracked(12345))
	assert.Zero(t, reg.Count())
}

func TestConnectValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		creds   accounts.Credentials
		wantErr error
	}{
		{
			name:    "missing account",
			creds:   accounts.Credentials{Password: "secret", Server: "Broker-Demo"},
			wantErr: ErrMissingAccount,
		},
		{
			name:    "missing password",
			creds:   accounts.Credentials{AccountID: 12345, Server: "Broker-Demo"},
			wantErr: ErrMissingPassword,
		},
		{
			name:    "missing server",
			creds:   accounts.Credentials{AccountID: 12345, Password: "secret"},
			wantErr: ErrMissingServer,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc, reg := newTestService(newFakeGateway())
			_, err := svc.Connect(context.Background(), tt.creds)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, reg.Count())
		})
	}
}

func TestSyncSkipsUntrackedAccounts(t *testing.T) {
	t.Parallel()

	gw := newFakeGateway()
	svc, _ := newTestService(gw)

	report := svc.Sync(context.Background(), []int64{111, 222})
	require.Len(t, report.Accounts, 2)
	for i, id := range []int64{111, 222} {
		assert.Equal(t, id, report.Accounts[i].AccountID)
		assert.Equal(t, accounts.StatusDisconnected, report.Accounts[i].ConnectionStatus)
		assert.Nil(t, report.Accounts[i].Balance)
	}
	assert.Zero(t, gw.stateCalls, "untracked accounts must not hit the gateway")
}

func TestSyncReportsConnectedAccount(t *testing.T) {
	t.Parallel()

	gw := newFakeGateway()
	gw.snapshots[111] = &accounts.AccountSnapshot{
		AccountID:  111,
		Balance:    5000,
		Equity:     4900,
		Currency:   "USD",
		Margin:     120,
		MarginFree: 4780,
	}
	svc, _ := newTestService(gw)
	_, err := svc.Connect(context.Background(), accounts.Credentials{AccountID: 111, Password: "secret", Server: "Broker-Demo"})
	require.NoError(t, err)

	report := svc.Sync(context.Background(), []int64{111})
	require.Len(t, report.Accounts, 1)
	row := report.Accounts[0]
	assert.Equal(t, accounts.StatusConnected, row.ConnectionStatus)
	require.NotNil(t, row.Balance)
	assert.Equal(t, 5000.0, *row.Balance)
	require.NotNil(t, row.MarginFree)
	assert.Equal(t, 4780.0, *row.MarginFree)
	assert.Equal(t, "USD", row.Currency)
}

func TestSyncDegradesOnLookupFailure(t *testing.T) {
	t.Parallel()

	gw := newFakeGateway()
	svc, _ := newTestService(gw)
	_, err := svc.Connect(context.Background(), accounts.Credentials{AccountID: 111, Password: "secret", Server: "Broker-Demo"})
	require.NoError(t, err)

	gw.stateErr[111] = errors.New("terminal unavailable")
	report := svc.Sync(context.Background(), []int64{111})
	require.Len(t, report.Accounts, 1)
	assert.Equal(t, accounts.StatusDisconnected, report.Accounts[0].ConnectionStatus)
}

func TestSyncDetectsDisplacedSession(t *testing.T) {
	t.Parallel()

	gw := newFakeGateway()
	svc, _ := newTestService(gw)
	_, err := svc.Connect(context.Background(), accounts.Credentials{AccountID: 111, Password: "secret", Server: "Broker-Demo"})
	require.NoError(t, err)
	_, err = svc.Connect(context.Background(), accounts.Credentials{AccountID: 222, Password: "secret", Server: "Broker-Demo"})
	require.NoError(t, err)

	// The shared session now belongs to 222.
	gw.stateOwner = 222
	report := svc.Sync(context.Background(), []int64{111, 222})
	require.Len(t, report.Accounts, 2)
	assert.Equal(t, accounts.StatusDisconnected, report.Accounts[0].ConnectionStatus)
	assert.Equal(t, accounts.StatusConnected, report.Accounts[1].ConnectionStatus)
}

func TestSyncKeepsInputOrderAndDuplicates(t *testing.T) {
	t.Parallel()

	gw := newFakeGateway()
	svc, _ := newTestService(gw)
	_, err := svc.Connect(context.Background(), accounts.Credentials{AccountID: 222, Password: "secret", Server: "Broker-Demo"})
	require.NoError(t, err)

	ids := []int64{333, 222, 333, 222}
	report := svc.Sync(context.Background(), ids)
	require.Len(t, report.Accounts, len(ids))
	for i, id := range ids {
		assert.Equal(t, id, report.Accounts[i].AccountID)
	}
	assert.Equal(t, accounts.StatusDisconnected, report.Accounts[0].ConnectionStatus)
	assert.Equal(t, accounts.StatusConnected, report.Accounts[1].ConnectionStatus)
}

func TestSyncEmptyBatch(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(newFakeGateway())
	report := svc.Sync(context.Background(), nil)
	assert.Empty(t, report.Accounts)
	assert.False(t, report.SyncTime.IsZero())
}

func TestHealth(t *testing.T) {
	t.Parallel()

	gw := newFakeGateway()
	svc, _ := newTestService(gw)
	_, err := svc.Connect(context.Background(), accounts.Credentials{AccountID: 111, Password: "secret", Server: "Broker-Demo"})
	require.NoError(t, err)

	health := svc.Health(context.Background())
	assert.True(t, health.GatewayAvailable)
	assert.Equal(t, 1, health.ActiveConnections)

	gw.available = false
	health = svc.Health(context.Background())
	assert.False(t, health.GatewayAvailable)
	assert.Equal(t, 1, health.ActiveConnections)
}
