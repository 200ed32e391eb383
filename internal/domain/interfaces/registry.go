package interfaces

import "context"

// ConnectionRegistry tracks which accounts have an active terminal session.
// At most one record exists per account; re-connects overwrite.
type ConnectionRegistry interface {
	// Record inserts or overwrites the connection for accountID. Idempotent,
	// no error conditions.
	Record(ctx context.Context, accountID int64, server string)

	// IsTracked reports whether the account has connected during this
	// process's lifetime.
	IsTracked(accountID int64) bool

	// Count returns the number of tracked connections.
	Count() int
}
