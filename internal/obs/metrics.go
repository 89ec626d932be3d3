package obs

import (
	"sync/atomic"

	"main/internal/model/enum"
)

// Metrics collects lightweight counters for the trading pipeline.
type Metrics struct {
	quotesPublished uint64
	busDrops        uint64
	buysApplied     uint64
	sellsApplied    uint64
	tradesRejected  uint64
	auditAppends    uint64
	auditFailures   uint64
}

// Snapshot is a point-in-time copy of the counter values.
type Snapshot struct {
	QuotesPublished uint64
	BusDrops        uint64
	BuysApplied     uint64
	SellsApplied    uint64
	TradesRejected  uint64
	AuditAppends    uint64
	AuditFailures   uint64
}

// NewMetrics allocates a metrics container.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// IncQuotePublished counts one quote handed to the bus.
func (m *Metrics) IncQuotePublished() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.quotesPublished, 1)
}

// IncBusDrop counts one message discarded by a full subscriber.
func (m *Metrics) IncBusDrop() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.busDrops, 1)
}

// IncTradeApplied counts one successfully applied portfolio mutation.
func (m *Metrics) IncTradeApplied(kind enum.OperationKind) {
	if m == nil {
		return
	}
	switch kind {
	case enum.OperationBuy:
		atomic.AddUint64(&m.buysApplied, 1)
	case enum.OperationSell:
		atomic.AddUint64(&m.sellsApplied, 1)
	}
}

// IncTradeRejected counts one validation rejection.
func (m *Metrics) IncTradeRejected() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.tradesRejected, 1)
}

// IncAuditAppend counts one operation durably recorded.
func (m *Metrics) IncAuditAppend() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.auditAppends, 1)
}

// IncAuditFailure counts one swallowed audit store failure.
func (m *Metrics) IncAuditFailure() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.auditFailures, 1)
}

// Snapshot captures the current counter values.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	return Snapshot{
		QuotesPublished: atomic.LoadUint64(&m.quotesPublished),
		BusDrops:        atomic.LoadUint64(&m.busDrops),
		BuysApplied:     atomic.LoadUint64(&m.buysApplied),
		SellsApplied:    atomic.LoadUint64(&m.sellsApplied),
		TradesRejected:  atomic.LoadUint64(&m.tradesRejected),
		AuditAppends:    atomic.LoadUint64(&m.auditAppends),
		AuditFailures:   atomic.LoadUint64(&m.auditFailures),
	}
}
