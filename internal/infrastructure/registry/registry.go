package registry

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	accounts "main/internal/domain/entity/accounts"
	interfaces "main/internal/domain/interfaces"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// mirrorKey is the redis hash holding one field per tracked account.
const mirrorKey = "relay:connections"

var _ interfaces.ConnectionRegistry = (*Registry)(nil)

// Registry is the process-wide record of active terminal sessions. Reads are
// served from memory under a read lock; when a redis client is supplied,
// writes are additionally mirrored into a hash so operators can inspect the
// relay's view of its connections. The mirror is write-only and best-effort:
// lookups never consult it and mirror failures never propagate.
type Registry struct {
	mu     sync.RWMutex
	conns  map[int64]accounts.AccountConnection
	mirror *redis.Client
	logger *logrus.Logger
}

// New builds a Registry. mirror may be nil to disable the redis mirror.
func New(mirror *redis.Client, logger *logrus.Logger) *Registry {
	return &Registry{
		conns:  make(map[int64]accounts.AccountConnection),
		mirror: mirror,
		logger: logger,
	}
}

// Record inserts or overwrites the connection for accountID with
// connected=true and a fresh login timestamp.
func (r *Registry) Record(ctx context.Context, accountID int64, server string) {
	conn := accounts.AccountConnection{
		AccountID: accountID,
		Server:    server,
		Connected: true,
		LastLogin: time.Now().UTC(),
	}

	r.mu.Lock()
	r.conns[accountID] = conn
	r.mu.Unlock()

	if r.mirror == nil {
		return
	}
	payload, err := json.Marshal(conn)
	if err != nil {
		return
	}
	field := strconv.FormatInt(accountID, 10)
	if err := r.mirror.HSet(ctx, mirrorKey, field, payload).Err(); err != nil {
		r.logger.Warnf("registry mirror update failed for account %d: %v", accountID, err)
	}
}

// IsTracked reports whether the account connected during this process's
// lifetime.
func (r *Registry) IsTracked(accountID int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.conns[accountID]
	return ok
}

// Count returns the number of tracked connections.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// Get returns the tracked connection for accountID, if any.
func (r *Registry) Get(accountID int64) (accounts.AccountConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.conns[accountID]
	return conn, ok
}
