package interfaces

import (
	"context"

	accounts "main/internal/domain/entity/accounts"
	trading "main/internal/domain/entity/trading"
)

// OrderType is the terminal's order-type vocabulary. The values mirror the
// MetaTrader deal type constants so the bridge driver can pass them through
// unchanged.
type OrderType int

const (
	OrderTypeBuy  OrderType = 0
	OrderTypeSell OrderType = 1
)

// RetCodeDone is the terminal return code confirming a completed deal. Any
// other code on an acknowledged submission means the order was rejected.
const RetCodeDone = 10009

// OrderAck is the gateway's raw answer to a submission, before the fan-out
// engine classifies it as FILLED or REJECTED.
type OrderAck struct {
	RetCode int
	Ticket  int64
	Price   float64
	Comment string
}

// Done reports whether the terminal confirmed the deal.
func (a OrderAck) Done() bool {
	return a.RetCode == RetCodeDone
}

// TradingGateway is the boundary to the terminal runtime that owns real
// account sessions and executes orders. Implementations decide whether they
// hold one shared session (the terminal bridge) or one session per account
// (the simulator).
type TradingGateway interface {
	// Connect initializes the terminal runtime if needed, logs the account
	// in and returns its snapshot. Failures are typed: InitError when the
	// runtime cannot start, AuthError when login is rejected, SnapshotError
	// when the account data cannot be read after a successful login. On
	// AuthError and SnapshotError the session has been torn down.
	Connect(ctx context.Context, creds accounts.Credentials) (*accounts.AccountSnapshot, error)

	// AccountState returns the snapshot the terminal currently reports for
	// the given account. Drivers without independent sessions may answer
	// with whichever account is logged in, so callers must verify the
	// snapshot's owner.
	AccountState(ctx context.Context, accountID int64) (*accounts.AccountSnapshot, error)

	// SubmitOrder sends one order to the terminal. A nil ack with an error
	// means the submission never reached the terminal; an ack with a
	// non-done retcode means the terminal refused it.
	SubmitOrder(ctx context.Context, req *trading.OrderRequest, orderType OrderType) (*OrderAck, error)

	// Available reports the last known state of the terminal runtime. It has
	// no side effects and never re-initializes the runtime.
	Available(ctx context.Context) bool

	// IndependentSessions reports whether the driver keeps one session per
	// account, which allows concurrent submissions. The terminal bridge does
	// not; the simulator does.
	IndependentSessions() bool
}

// ExecutionPublisher broadcasts completed execution reports to interested
// consumers. Publishing is best-effort: failures never affect the batch
// outcome returned to the controller.
type ExecutionPublisher interface {
	PublishExecution(ctx context.Context, report *trading.ExecutionReport) error
}
