// Package discovery is the narrow service-registry surface the pipeline
// consumes. Real deployments plug an external registry behind Registry; the
// in-memory implementation covers single-process runs and tests.
package discovery

import (
	"sync"

	"github.com/google/uuid"

	"main/pkg/exception"
)

// Kind classifies what a record points at.
type Kind string

const (
	KindMessageSource Kind = "message-source"
	KindHTTPEndpoint  Kind = "http-endpoint"
)

// Record describes one advertised service.
type Record struct {
	Name     string
	Kind     Kind
	Location string
}

// Registration is the token handed back on publish, used to unpublish.
type Registration string

// Registry is the name to location lookup used to advertise and discover
// the quote and audit endpoints.
type Registry interface {
	Publish(rec Record) (Registration, error)
	Lookup(match func(Record) bool) (Record, error)
	Unpublish(reg Registration) error
}

// MessageSource builds a record advertising a bus address.
func MessageSource(name, address string) Record {
	return Record{Name: name, Kind: KindMessageSource, Location: address}
}

// HTTPEndpoint builds a record advertising an HTTP location.
func HTTPEndpoint(name, location string) Record {
	return Record{Name: name, Kind: KindHTTPEndpoint, Location: location}
}

// InMemory is a process-local registry.
type InMemory struct {
	mu      sync.RWMutex
	records map[Registration]Record
}

// NewInMemory allocates an empty registry.
func NewInMemory() *InMemory {
	return &InMemory{records: make(map[Registration]Record)}
}

// Publish advertises the record and returns its registration token.
func (r *InMemory) Publish(rec Record) (Registration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	reg := Registration(uuid.NewString())
	r.records[reg] = rec
	return reg, nil
}

// Lookup returns the first record matching the predicate.
func (r *InMemory) Lookup(match func(Record) bool) (Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rec := range r.records {
		if match(rec) {
			return rec, nil
		}
	}
	return Record{}, exception.ErrRecordNotFound
}

// Unpublish withdraws a previously published record.
func (r *InMemory) Unpublish(reg Registration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[reg]; !ok {
		return exception.ErrRegistrationNotFound
	}
	delete(r.records, reg)
	return nil
}
