package quote

import (
	"context"
	"math/rand"
	"time"

	"github.com/yanun0323/pkg/sys"

	"main/internal/bus"
	"main/internal/model"
	"main/internal/obs"
	"main/pkg/exception"
)

// MarketAddress is the bus address quotes are published on.
const MarketAddress = "market"

const exchangeName = "Go stock exchange"

const (
	defaultPeriod    = 3 * time.Second
	defaultVariation = 100
	defaultPrice     = 100.0
	defaultVolume    = 10000
)

// Company configures one simulated instrument.
type Company struct {
	Name      string
	Symbol    string
	Period    time.Duration
	Variation int
	Price     float64
	Volume    int
}

func (c Company) withDefaults() (Company, error) {
	if c.Name == "" {
		return Company{}, exception.ErrCompanyNameEmpty
	}
	if c.Symbol == "" {
		c.Symbol = c.Name
	}
	if c.Period <= 0 {
		c.Period = defaultPeriod
	}
	if c.Variation <= 0 {
		c.Variation = defaultVariation
	}
	if c.Price <= 0 {
		c.Price = defaultPrice
	}
	if c.Volume <= 0 {
		c.Volume = defaultVolume
	}
	return c, nil
}

// Generator simulates the evaluation of one company in a very unrealistic
// and irrational way, publishing a fresh quote on every tick.
type Generator struct {
	company Company
	bus     *bus.Bus
	metrics *obs.Metrics
	rng     *rand.Rand

	value  float64
	bid    float64
	ask    float64
	shares int
}

// NewGenerator creates a generator for the company. A zero seed picks one
// from the clock.
func NewGenerator(c Company, b *bus.Bus, m *obs.Metrics, seed int64) (*Generator, error) {
	c, err := c.withDefaults()
	if err != nil {
		return nil, err
	}
	if seed == 0 {
		seed = time.Now().UTC().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	half := float64(c.Variation) / 2
	return &Generator{
		company: c,
		bus:     b,
		metrics: m,
		rng:     rng,
		value:   c.Price,
		ask:     c.Price + rng.Float64()*half,
		bid:     c.Price + rng.Float64()*half,
		shares:  c.Volume / 2,
	}, nil
}

// Company returns the resolved configuration.
func (g *Generator) Company() Company {
	return g.company
}

// Run ticks on the company's own period until the context is done. Ticks of
// different generators are not synchronized.
func (g *Generator) Run(ctx context.Context) {
	ticker := time.NewTicker(g.company.Period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-sys.Shutdown():
			return
		case <-ticker.C:
			g.bus.Publish(MarketAddress, g.Tick())
			g.metrics.IncQuotePublished()
		}
	}
}

// Tick advances the random walk one step and returns the resulting quote.
func (g *Generator) Tick() model.Quote {
	g.compute()
	return g.snapshot()
}

// compute moves value, bid and ask one random step in a common direction,
// then maybe adjusts the tradable share count.
func (g *Generator) compute() {
	variation := float64(g.company.Variation)
	half := variation / 2
	if g.rng.Intn(2) == 0 {
		g.value += g.rng.Float64() * variation
		g.ask = g.value + g.rng.Float64()*half
		g.bid = g.value + g.rng.Float64()*half
	} else {
		g.value -= g.rng.Float64() * variation
		g.ask = g.value - g.rng.Float64()*half
		g.bid = g.value - g.rng.Float64()*half
	}

	// Prices must stay strictly positive to keep downstream costs defined.
	if g.value <= 0 {
		g.value = 1.0
	}
	if g.ask <= 0 {
		g.ask = 1.0
	}
	if g.bid <= 0 {
		g.bid = 1.0
	}

	if g.rng.Intn(2) == 0 {
		delta := g.rng.Intn(100)
		if delta > 0 && g.shares+delta < g.company.Volume {
			g.shares += delta
		}
	}
}

func (g *Generator) snapshot() model.Quote {
	return model.Quote{
		Exchange: exchangeName,
		Name:     g.company.Name,
		Symbol:   g.company.Symbol,
		Bid:      g.bid,
		Ask:      g.ask,
		Volume:   g.company.Volume,
		Open:     g.company.Price,
		Shares:   g.shares,
	}
}
