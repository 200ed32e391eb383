// Package execution implements the order fan-out engine: one trade intent is
// expanded into one order per target account, each outcome is classified
// independently, and the per-account results are aggregated under a single
// execution identifier.
package execution

import (
	"context"
	"errors"
	"fmt"
	"time"

	trading "main/internal/domain/entity/trading"
	interfaces "main/internal/domain/interfaces"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var (
	ErrMissingSymbol     = errors.New("symbol is required")
	ErrInvalidDirection  = errors.New("direction must be BUY or SELL")
	ErrInvalidVolume     = errors.New("base volume must be positive")
	ErrInvalidTakeProfit = errors.New("take profit must be positive")
	ErrInvalidStopLoss   = errors.New("stop loss must be positive")
	ErrInvalidTarget     = errors.New("target account number must be positive")
	ErrInvalidMultiplier = errors.New("multiplier must be positive")
)

type Service struct {
	gateway   interfaces.TradingGateway
	publisher interfaces.ExecutionPublisher
	logger    *logrus.Logger
	timeout   time.Duration
}

// NewService builds the fan-out engine. publisher may be nil; timeout bounds
// each individual gateway call (zero disables the bound).
func NewService(gateway interfaces.TradingGateway, publisher interfaces.ExecutionPublisher, logger *logrus.Logger, timeout time.Duration) *Service {
	return &Service{
		gateway:   gateway,
		publisher: publisher,
		logger:    logger,
		timeout:   timeout,
	}
}

// Execute submits one order per target and returns the aggregate report.
//
// Only structurally invalid input aborts the call, and it does so before any
// submission. Per-account failures are captured as REJECTED entries: a
// rejection never rolls back previously filled entries and never stops the
// remaining targets. Results keep the input order of the targets regardless
// of individual outcomes.
func (s *Service) Execute(ctx context.Context, intent trading.TradeIntent, targets []trading.AccountTarget) (*trading.ExecutionReport, error) {
	if err := validateIntent(intent); err != nil {
		return nil, err
	}
	if err := validateTargets(targets); err != nil {
		return nil, err
	}
	orderType, err := orderTypeFor(intent.Direction)
	if err != nil {
		return nil, err
	}

	executionID := newExecutionID()
	log := s.logger.WithFields(logrus.Fields{
		"execution_id": executionID,
		"symbol":       intent.Symbol,
		"direction":    intent.Direction,
	})
	log.Infof("executing %v %s across %d accounts", intent.BaseVolume, intent.Symbol, len(targets))

	results := make([]trading.OrderResult, len(targets))
	if s.gateway.IndependentSessions() {
		// One session per account: fan out concurrently. Each goroutine
		// writes only its own slot, so ordering stays positional.
		var g errgroup.Group
		for i, target := range targets {
			i, target := i, target
			g.Go(func() error {
				results[i] = s.submit(ctx, executionID, intent, target, orderType)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		// Single shared terminal session: submissions must not interleave.
		for i, target := range targets {
			results[i] = s.submit(ctx, executionID, intent, target, orderType)
		}
	}

	report := &trading.ExecutionReport{
		ExecutionID: executionID,
		Symbol:      intent.Symbol,
		Direction:   intent.Direction,
		BaseVolume:  intent.BaseVolume,
		TakeProfit:  intent.TakeProfit,
		StopLoss:    intent.StopLoss,
		Results:     results,
		ExecutedAt:  time.Now().UTC(),
	}
	log.Infof("execution finished: %d/%d filled", report.Filled(), len(targets))

	if s.publisher != nil {
		if err := s.publisher.PublishExecution(ctx, report); err != nil {
			log.Warnf("publish execution report: %v", err)
		}
	}
	return report, nil
}

// submit runs one per-account submission and classifies its outcome. It
// never returns an error: every failure below this point belongs to this
// account's result entry.
func (s *Service) submit(ctx context.Context, executionID string, intent trading.TradeIntent, target trading.AccountTarget, orderType interfaces.OrderType) trading.OrderResult {
	volume := scaleVolume(intent.BaseVolume, target.Multiplier)
	req := &trading.OrderRequest{
		AccountID:   target.AccountID,
		Symbol:      intent.Symbol,
		Direction:   intent.Direction,
		Volume:      volume,
		TakeProfit:  intent.TakeProfit,
		StopLoss:    intent.StopLoss,
		ExecutionID: executionID,
		ClientTag:   clientTag(executionID),
	}

	result := trading.OrderResult{
		AccountID: target.AccountID,
		Symbol:    intent.Symbol,
		Direction: intent.Direction,
		Volume:    volume,
	}

	callCtx, cancel := s.callContext(ctx)
	defer cancel()

	ack, err := s.gateway.SubmitOrder(callCtx, req, orderType)
	switch {
	case err != nil:
		result.Status = trading.OrderStatusRejected
		result.Error = err.Error()
		s.logger.Warnf("account %d rejected: %v", target.AccountID, err)
	case !ack.Done():
		result.Status = trading.OrderStatusRejected
		result.Error = rejectionReason(ack)
		s.logger.Warnf("account %d rejected: %s", target.AccountID, result.Error)
	default:
		ticket, price := ack.Ticket, ack.Price
		result.Status = trading.OrderStatusFilled
		result.Ticket = &ticket
		result.ExecutionPrice = &price
		s.logger.Infof("account %d filled: ticket %d", target.AccountID, ticket)
	}
	result.Timestamp = time.Now().UTC()
	return result
}

func (s *Service) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

func validateIntent(intent trading.TradeIntent) error {
	if intent.Symbol == "" {
		return ErrMissingSymbol
	}
	if intent.BaseVolume <= 0 {
		return ErrInvalidVolume
	}
	if intent.TakeProfit != nil && *intent.TakeProfit <= 0 {
		return ErrInvalidTakeProfit
	}
	if intent.StopLoss != nil && *intent.StopLoss <= 0 {
		return ErrInvalidStopLoss
	}
	return nil
}

func validateTargets(targets []trading.AccountTarget) error {
	for _, target := range targets {
		if target.AccountID <= 0 {
			return ErrInvalidTarget
		}
		if target.Multiplier <= 0 {
			return ErrInvalidMultiplier
		}
	}
	return nil
}

func orderTypeFor(d trading.Direction) (interfaces.OrderType, error) {
	switch d {
	case trading.DirectionBuy:
		return interfaces.OrderTypeBuy, nil
	case trading.DirectionSell:
		return interfaces.OrderTypeSell, nil
	default:
		return 0, ErrInvalidDirection
	}
}

// scaleVolume applies the per-account multiplier and rounds to the
// two-decimal lot precision terminals expect. Decimal arithmetic avoids the
// float drift of e.g. 0.1*3.
func scaleVolume(base, multiplier float64) float64 {
	v, _ := decimal.NewFromFloat(base).
		Mul(decimal.NewFromFloat(multiplier)).
		Round(2).
		Float64()
	return v
}

// clientTag embeds the execution id so the terminal-side comment field keeps
// every order traceable to its batch.
func clientTag(executionID string) string {
	return fmt.Sprintf("relay_%s", executionID)
}

func rejectionReason(ack *interfaces.OrderAck) string {
	if ack.Comment != "" {
		return ack.Comment
	}
	return fmt.Sprintf("rejected with retcode %d", ack.RetCode)
}
