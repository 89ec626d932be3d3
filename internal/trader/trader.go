// Package trader implements the compulsive trading agents: on every quote
// of their target company they flip a coin and buy or sell a fixed number
// of shares, and never look back.
package trader

import (
	"context"
	"math/rand"
	"time"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"

	"main/internal/bus"
	"main/internal/model"
	"main/internal/portfolio"
	"main/pkg/exception"
)

var companies = []string{"Divinator", "MacroHard", "Black Coat"}

// NewRand builds a seeded random source. A zero seed picks one from the
// clock.
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UTC().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// PickCompany chooses a random company for an agent to obsess over.
func PickCompany(rng *rand.Rand) string {
	return companies[rng.Intn(len(companies))]
}

// PickShares chooses a random trade size between 1 and 6.
func PickShares(rng *rand.Rand) int {
	return rng.Intn(6) + 1
}

// Trader is one autonomous agent bound to a company, a trade size and a
// ledger. It carries no state between quotes beyond its coin.
type Trader struct {
	company string
	shares  int
	ledger  *portfolio.Service
	rng     *rand.Rand
}

// New creates an agent. A zero seed picks one from the clock.
func New(company string, shares int, ledger *portfolio.Service, seed int64) (*Trader, error) {
	if company == "" {
		return nil, errors.Wrap(exception.ErrCompanyNameEmpty, "trader")
	}
	if shares <= 0 {
		return nil, errors.Wrap(exception.ErrInvalidShareCount, "trader").With("shares", shares)
	}
	return &Trader{
		company: company,
		shares:  shares,
		ledger:  ledger,
		rng:     NewRand(seed),
	}, nil
}

// Company returns the agent's target company.
func (t *Trader) Company() string {
	return t.company
}

// OnQuote applies the trading policy to one received quote. Rejections are
// logged and discarded; the agent never retries.
func (t *Trader) OnQuote(q model.Quote) {
	if q.Name != t.company {
		return
	}
	if t.rng.Intn(2) == 0 {
		if p, err := t.ledger.Sell(t.shares, q); err != nil {
			logs.Infof("d'oh, failed to sell %d of %s: %v", t.shares, t.company, err)
		} else {
			logs.Infof("sold %d of %s, now owns %d with cash %.2f", t.shares, t.company, p.Amount(t.company), p.Cash)
		}
		return
	}
	if p, err := t.ledger.Buy(t.shares, q); err != nil {
		logs.Infof("d'oh, failed to buy %d of %s: %v", t.shares, t.company, err)
	} else {
		logs.Infof("bought %d of %s, now owns %d with cash %.2f", t.shares, t.company, p.Amount(t.company), p.Cash)
	}
}

// Run drains market quotes from the subscription through the policy.
func (t *Trader) Run(ctx context.Context, sub *bus.Subscription) {
	sub.Run(ctx, func(msg bus.Message) {
		if q, ok := msg.Payload.(model.Quote); ok {
			t.OnQuote(q)
		}
	})
}
