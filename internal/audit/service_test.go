package audit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yanun0323/errors"

	"main/internal/bus"
	"main/internal/model"
	"main/internal/model/enum"
	"main/internal/portfolio"
)

// fakeStore is an in-memory Store with scriptable failures.
type fakeStore struct {
	mu        sync.Mutex
	ops       []model.Operation
	failAt    int
	appends   int
	recentErr error
}

func (f *fakeStore) Append(_ context.Context, op model.Operation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.appends++
	if f.failAt != 0 && f.appends == f.failAt {
		return errors.New("boom")
	}
	f.ops = append(f.ops, op)
	return nil
}

func (f *fakeStore) Recent(_ context.Context, limit int) ([]model.Operation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.recentErr != nil {
		return nil, f.recentErr
	}
	out := make([]model.Operation, 0, limit)
	for i := len(f.ops) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, f.ops[i])
	}
	return out, nil
}

func (f *fakeStore) stored() []model.Operation {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Operation(nil), f.ops...)
}

func op(id string, kind enum.OperationKind) model.Operation {
	return model.Operation{
		ID:     id,
		Action: kind,
		Name:   "Divinator",
		Shares: 3,
		Quote:  model.Quote{Name: "Divinator", Bid: 99, Ask: 101},
	}
}

func TestRunAppendsInDeliveryOrder(t *testing.T) {
	b := bus.New(64)
	store := &fakeStore{}
	svc := NewService(store, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go svc.Run(ctx, b.Subscribe(portfolio.OperationsAddress))

	b.Publish(portfolio.OperationsAddress, op("1", enum.OperationBuy))
	b.Publish(portfolio.OperationsAddress, op("2", enum.OperationSell))
	b.Publish(portfolio.OperationsAddress, op("3", enum.OperationBuy))

	require.Eventually(t, func() bool {
		return len(store.stored()) == 3
	}, time.Second, 5*time.Millisecond)

	stored := store.stored()
	assert.Equal(t, "1", stored[0].ID)
	assert.Equal(t, "2", stored[1].ID)
	assert.Equal(t, "3", stored[2].ID)
}

func TestRunSurvivesStoreFailure(t *testing.T) {
	b := bus.New(64)
	store := &fakeStore{failAt: 2}
	svc := NewService(store, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go svc.Run(ctx, b.Subscribe(portfolio.OperationsAddress))

	b.Publish(portfolio.OperationsAddress, op("1", enum.OperationBuy))
	b.Publish(portfolio.OperationsAddress, op("2", enum.OperationBuy))
	b.Publish(portfolio.OperationsAddress, op("3", enum.OperationSell))

	// The second append fails; the loop keeps going and stores the third.
	require.Eventually(t, func() bool {
		return len(store.stored()) == 2
	}, time.Second, 5*time.Millisecond)

	stored := store.stored()
	assert.Equal(t, "1", stored[0].ID)
	assert.Equal(t, "3", stored[1].ID)
}

func TestQueryReturnsTenNewestFirst(t *testing.T) {
	store := &fakeStore{}
	for i := 0; i < 12; i++ {
		require.NoError(t, store.Append(context.Background(), op(string(rune('a'+i)), enum.OperationBuy)))
	}
	svc := NewService(store, nil)

	rec := httptest.NewRecorder()
	svc.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var ops []model.Operation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ops))
	require.Len(t, ops, 10)
	assert.Equal(t, "l", ops[0].ID)
	assert.Equal(t, "c", ops[9].ID)
}

func TestQueryDegradesWhenStoreFails(t *testing.T) {
	store := &fakeStore{recentErr: errors.New("connection refused")}
	svc := NewService(store, nil)

	rec := httptest.NewRecorder()
	svc.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "no audit service", body["message"])
}

func TestHealthFlipsOnReady(t *testing.T) {
	svc := NewService(&fakeStore{}, nil)
	router := svc.Router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	svc.SetReady(true)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Ready", rec.Body.String())
}

func TestRecordOperationRoundTrip(t *testing.T) {
	in := op("op-1", enum.OperationSell)
	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out model.Operation
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)
	assert.Equal(t, "audit", Record{}.TableName())
}
