// Package database is the document store behind every form and dashboard.
// Firestore is the production backend; Mongo and an in-process store
// implement the same contract.
package database

import (
	"context"
	"errors"
	"strings"
	"time"
)

var ErrNotFound = errors.New("document not found")

// Store is the narrow set of document operations the portal relies on.
// out arguments follow the decoding rules of the backend: a pointer to a
// struct for Get, a pointer to a slice for Find.
type Store interface {
	Create(ctx context.Context, collection string, doc any) (string, error)
	Set(ctx context.Context, collection, id string, doc any) error
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	Get(ctx context.Context, collection, id string, out any) error
	Find(ctx context.Context, collection string, q Query, out any) error
	// Increment upserts the document, adding counters and overwriting set fields.
	Increment(ctx context.Context, collection, id string, counters map[string]int64, set map[string]any) error
	Delete(ctx context.Context, collection, id string) error
	// Watch emits once right away and once per change to the collection.
	// The channel is closed when ctx is done or the listener fails.
	Watch(ctx context.Context, collection string, q Query) (<-chan Event, error)
	Close() error
}

// Event is one snapshot notification.
type Event struct {
	Collection string
	At         time.Time
}

type identifiable interface {
	SetID(id string)
}

func setID(v any, id string) {
	if d, ok := v.(identifiable); ok {
		d.SetID(id)
	}
}

// SafeID turns a free-text key into a document id every backend accepts.
func SafeID(key string) string {
	key = strings.TrimSpace(strings.ReplaceAll(key, "/", "_"))
	if key == "" || key == "." || key == ".." {
		return "_"
	}
	return key
}
