// Package portfolio owns one portfolio's cash and share state and applies
// validated buy/sell operations against it.
package portfolio

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/yanun0323/errors"

	"main/internal/bus"
	"main/internal/model"
	"main/internal/model/enum"
	"main/internal/obs"
	"main/pkg/exception"
)

// OperationsAddress is the bus address completed trades are published on.
const OperationsAddress = "portfolio-ops"

// Service is the exclusive owner of one portfolio. Concurrent requests are
// accepted; validate-then-apply runs as a single critical section so a
// stale balance can never pass a check.
type Service struct {
	mu      sync.Mutex
	state   model.Portfolio
	bus     *bus.Bus
	metrics *obs.Metrics
	now     func() time.Time
}

// NewService creates a ledger starting with the given cash and no holdings.
func NewService(initialCash float64, b *bus.Bus, m *obs.Metrics) *Service {
	return &Service{
		state:   model.NewPortfolio(initialCash),
		bus:     b,
		metrics: m,
		now:     time.Now,
	}
}

// Portfolio returns a copy of the current state.
func (s *Service) Portfolio() model.Portfolio {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Copy()
}

// Buy purchases shares at the quote's ask price. On success the updated
// portfolio snapshot is returned and exactly one operation is emitted.
func (s *Service) Buy(shares int, q model.Quote) (model.Portfolio, error) {
	if shares <= 0 {
		return model.Portfolio{}, errors.Wrap(exception.ErrInvalidShareCount, "buy").
			With("shares", shares)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cost := float64(shares) * q.Ask
	if cost > s.state.Cash {
		s.metrics.IncTradeRejected()
		return model.Portfolio{}, errors.Wrap(exception.ErrInsufficientFunds, "buy "+q.Name).
			With("cost", cost).
			With("cash", s.state.Cash)
	}

	s.state.Cash -= cost
	s.state.Shares[q.Name] += shares
	s.emitLocked(enum.OperationBuy, shares, q.Ask, q)
	return s.state.Copy(), nil
}

// Sell releases shares at the quote's bid price. On success the updated
// portfolio snapshot is returned and exactly one operation is emitted.
func (s *Service) Sell(shares int, q model.Quote) (model.Portfolio, error) {
	if shares <= 0 {
		return model.Portfolio{}, errors.Wrap(exception.ErrInvalidShareCount, "sell").
			With("shares", shares)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	owned := s.state.Amount(q.Name)
	if shares > owned {
		s.metrics.IncTradeRejected()
		return model.Portfolio{}, errors.Wrap(exception.ErrInsufficientShares, "sell "+q.Name).
			With("shares", shares).
			With("owned", owned)
	}

	s.state.Cash += float64(shares) * q.Bid
	if owned == shares {
		delete(s.state.Shares, q.Name)
	} else {
		s.state.Shares[q.Name] = owned - shares
	}
	s.emitLocked(enum.OperationSell, shares, q.Bid, q)
	return s.state.Copy(), nil
}

// emitLocked publishes the operation while still inside the critical
// section, so emission order matches apply order for this portfolio.
func (s *Service) emitLocked(kind enum.OperationKind, shares int, price float64, q model.Quote) {
	s.metrics.IncTradeApplied(kind)
	s.bus.Publish(OperationsAddress, model.Operation{
		ID:     uuid.NewString(),
		Action: kind,
		Name:   q.Name,
		Shares: shares,
		Price:  price,
		Quote:  q,
		Cash:   s.state.Cash,
		Owned:  s.state.Amount(q.Name),
		Date:   s.now().UnixMilli(),
	})
}
