package interfaces

import "fmt"

// InitError means the terminal runtime could not be started. Detail carries
// the runtime's native error text.
type InitError struct {
	Detail string
}

func (e *InitError) Error() string {
	return fmt.Sprintf("terminal initialization failed: %s", e.Detail)
}

// AuthError means the terminal rejected the login for an account. The
// session has been torn down; no half-logged-in state remains attributed to
// the account.
type AuthError struct {
	AccountID int64
	Detail    string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("login failed for account %d: %s", e.AccountID, e.Detail)
}

// SnapshotError means login succeeded but the terminal returned no account
// data. The session has been torn down.
type SnapshotError struct {
	AccountID int64
	Detail    string
}

func (e *SnapshotError) Error() string {
	return fmt.Sprintf("no account data for account %d: %s", e.AccountID, e.Detail)
}
