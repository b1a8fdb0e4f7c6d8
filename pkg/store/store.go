// Package store persists plan records for the HTTP server.
//
// Three backends implement [Store]:
//   - [MemoryStore]: in-process map, for tests and single-shot servers
//   - [FileStore]: one JSON file per record, for local deployments
//   - [MongoStore]: the "plans" collection, for multi-instance deployments
//
// Records are identified by UUIDs, which are validated before they reach a
// backend, so IDs are safe to use as file names.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/stringbean/pkg/errors"
	sbio "github.com/matzehuels/stringbean/pkg/io"
)

// DefaultListLimit bounds List when the caller passes a limit <= 0.
const DefaultListLimit = 50

// Record is a stored plan.
type Record struct {
	ID        string         `json:"id" bson:"_id"`
	CreatedAt time.Time      `json:"created_at" bson:"created_at"`
	Document  *sbio.Document `json:"document" bson:"document"`
}

// NewRecord wraps doc in a record with a fresh ID. The document's ID is set
// to the record ID.
func NewRecord(doc *sbio.Document) *Record {
	id := uuid.NewString()
	cp := *doc
	cp.ID = id
	return &Record{
		ID:        id,
		CreatedAt: time.Now().UTC(),
		Document:  &cp,
	}
}

// Store is the interface for record storage backends.
type Store interface {
	// Save inserts or replaces a record.
	Save(ctx context.Context, rec *Record) error

	// Get returns the record with the given ID, or a NOT_FOUND error.
	Get(ctx context.Context, id string) (*Record, error)

	// Delete removes a record. Deleting a missing record is a NOT_FOUND error.
	Delete(ctx context.Context, id string) error

	// List returns up to limit records, newest first.
	List(ctx context.Context, limit int) ([]*Record, error)

	// Close releases resources held by the store.
	Close() error
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeNotFound, "plan %s not found", id)
}

func listLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
