// Package store persists generation records.
//
// A [Record] captures one completed pipeline run: which background and
// content produced which artifacts. The [Store] interface has two
// implementations:
//   - memory: in-memory storage for development/testing and the CLI
//   - mongo: MongoDB-backed storage for the API server
//
// Records are looked up by UUID and listed newest-first.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// Record is one completed generation: the input hashes that identify the
// run plus the artifact paths it produced.
type Record struct {
	ID         string    `json:"id" bson:"_id"`
	Title      string    `json:"title" bson:"title"`
	Format     string    `json:"format" bson:"format"`
	ImageHash  string    `json:"image_hash" bson:"image_hash"`
	LayoutHash string    `json:"layout_hash" bson:"layout_hash"`
	Artifacts  []string  `json:"artifacts" bson:"artifacts"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}

// Store is the interface for record storage backends.
type Store interface {
	// Get retrieves a record by ID. Returns ErrNotFound if it doesn't exist.
	Get(ctx context.Context, id string) (*Record, error)

	// Put stores a record, overwriting any existing record with the same ID.
	Put(ctx context.Context, rec *Record) error

	// List returns up to limit records, newest first. A non-positive limit
	// returns all records.
	List(ctx context.Context, limit int) ([]*Record, error)

	// Delete removes a record. Deleting a missing record is not an error.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close(ctx context.Context) error
}

// NewRecord creates a record with a fresh UUID and the current time.
func NewRecord(title, format, imageHash, layoutHash string, artifacts []string) *Record {
	return &Record{
		ID:         uuid.NewString(),
		Title:      title,
		Format:     format,
		ImageHash:  imageHash,
		LayoutHash: layoutHash,
		Artifacts:  artifacts,
		CreatedAt:  time.Now().UTC(),
	}
}
