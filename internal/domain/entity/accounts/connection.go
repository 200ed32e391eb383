package accounts

import "time"

// AccountConnection is the registry's record of an active terminal session.
// Created on a successful connect, overwritten on re-connect, never deleted:
// records live for the lifetime of the process.
type AccountConnection struct {
	AccountID int64     `json:"account_id"`
	Server    string    `json:"server"`
	Connected bool      `json:"connected"`
	LastLogin time.Time `json:"last_login"`
}

// Credentials identify one terminal login attempt.
type Credentials struct {
	AccountID int64
	Password  string
	Server    string
}
