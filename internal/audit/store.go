// Package audit durably records every completed trade and serves the
// "most recent operations" query surface.
package audit

import (
	"context"
	"encoding/json"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"

	"main/internal/model"
	"main/pkg/conn"
)

// Store is the durable, append-only home of operations. Records carry a
// strictly increasing identifier assigned at insertion time.
type Store interface {
	Append(ctx context.Context, op model.Operation) error
	Recent(ctx context.Context, limit int) ([]model.Operation, error)
}

// Record is the persisted representation of an operation. The payload
// column is unbounded: a serialized operation carries a uuid, the full
// quote and float prices, which together overflow any small varchar.
type Record struct {
	ID        uint   `gorm:"primaryKey"`
	Operation string `gorm:"type:text;not null"`
}

// TableName pins the audit table name.
func (Record) TableName() string {
	return "audit"
}

// SQLStore persists operations in PostgreSQL.
type SQLStore struct {
	client *conn.Client
}

// NewSQLStore wraps the database client.
func NewSQLStore(client *conn.Client) *SQLStore {
	return &SQLStore{client: client}
}

// Init (re)creates the audit schema. With drop set the previous trail is
// discarded first.
func (s *SQLStore) Init(ctx context.Context, drop bool) error {
	db := s.client.DB().WithContext(ctx)
	if drop {
		if err := db.Migrator().DropTable(&Record{}); err != nil {
			return errors.Wrap(err, "drop audit table")
		}
	}
	if err := db.AutoMigrate(&Record{}); err != nil {
		return errors.Wrap(err, "create audit table")
	}
	return nil
}

// Append inserts one operation at the end of the trail.
func (s *SQLStore) Append(ctx context.Context, op model.Operation) error {
	data, err := json.Marshal(op)
	if err != nil {
		return errors.Wrap(err, "encode operation")
	}
	rec := Record{Operation: string(data)}
	if err := s.client.DB().WithContext(ctx).Create(&rec).Error; err != nil {
		return errors.Wrap(err, "insert operation")
	}
	return nil
}

// Recent returns up to limit operations, newest first. Rows that no longer
// decode are skipped; the trail is advisory.
func (s *SQLStore) Recent(ctx context.Context, limit int) ([]model.Operation, error) {
	var recs []Record
	err := s.client.DB().WithContext(ctx).
		Order("id DESC").
		Limit(limit).
		Find(&recs).Error
	if err != nil {
		return nil, errors.Wrap(err, "select recent operations")
	}

	ops := make([]model.Operation, 0, len(recs))
	for _, rec := range recs {
		var op model.Operation
		if err := json.Unmarshal([]byte(rec.Operation), &op); err != nil {
			logs.Errorf("skip audit record %d, err: %+v", rec.ID, err)
			continue
		}
		ops = append(ops, op)
	}
	return ops, nil
}
