package audit

import (
	"context"
	"net/http"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
	"github.com/yanun0323/logs"

	"main/internal/bus"
	"main/internal/model"
	"main/internal/obs"
	"main/internal/web"
)

// recentLimit is the page size of the "most recent operations" query.
const recentLimit = 10

// Service appends every operation delivered on the bus to the store and
// serves the read-only query surface.
type Service struct {
	store   Store
	metrics *obs.Metrics
	ready   atomic.Bool
}

// NewService creates the audit service on top of a store.
func NewService(store Store, m *obs.Metrics) *Service {
	return &Service{store: store, metrics: m}
}

// SetReady flips the health endpoint once startup completed.
func (s *Service) SetReady(ready bool) {
	s.ready.Store(ready)
}

// Run appends operations in delivery order. A persistence failure is logged
// and swallowed so one bad record can never stall the subscription.
func (s *Service) Run(ctx context.Context, sub *bus.Subscription) {
	sub.Run(ctx, func(msg bus.Message) {
		op, ok := msg.Payload.(model.Operation)
		if !ok {
			return
		}
		if err := s.store.Append(ctx, op); err != nil {
			s.metrics.IncAuditFailure()
			logs.Errorf("failed to insert operation in database: %+v", err)
			return
		}
		s.metrics.IncAuditAppend()
	})
}

// Router exposes the audit query endpoint: the ten most recent operations,
// newest first, and a readiness probe.
func (s *Service) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(web.RequestLogger)

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		ops, err := s.store.Recent(req.Context(), recentLimit)
		if err != nil {
			logs.Errorf("retrieve operations, err: %+v", err)
			web.WriteJSON(w, http.StatusOK, map[string]string{"message": "no audit service"})
			return
		}
		web.WriteJSON(w, http.StatusOK, ops)
	})

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		if !s.ready.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("Ready")); err != nil {
			logs.Errorf("write health response, err: %+v", err)
		}
	})

	return r
}
