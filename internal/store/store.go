// Package store defines the document-store interface the deduplication
// engine depends on, and a MongoDB-backed implementation of it.
package store

import "context"

// Reserved document field names. These are always present on any stored
// document and are never writable by job-supplied keys: a colliding key
// from a job's reported map is overwritten by the reserved value.
const (
	FieldCreatedAt = "gamayun_created_at"
	FieldUpdatedAt = "gamayun_updated_at"
	FieldTags      = "gamayun_tags"
)

// Document is a flat string-to-string field mapping, as stored in one job's
// collection. Reserved fields carry their own types at the storage layer
// (timestamps, a string list) but are addressed by the same constants.
type Document map[string]any

// Filter is an equality-predicate-only query: each key must equal the given
// value for a document to match. An empty Filter matches every document in
// the collection.
type Filter map[string]string

// Store is the narrow interface the deduplication engine (internal/dedup)
// needs from a document store: find/insert/replace/update by filter, scoped
// to one collection per job name.
type Store interface {
	// FindOne returns the first document matching filter in collection, or
	// ok=false if none match.
	FindOne(ctx context.Context, collection string, filter Filter) (doc Document, ok bool, err error)

	// Count returns the number of documents matching filter in collection.
	Count(ctx context.Context, collection string, filter Filter) (int64, error)

	// InsertOne inserts doc as a new document in collection.
	InsertOne(ctx context.Context, collection string, doc Document) error

	// ReplaceOne replaces the single document matching filter with doc. The
	// caller is responsible for filter matching exactly one document (the
	// dedup engine only calls this after a prior FindOne located it).
	ReplaceOne(ctx context.Context, collection string, filter Filter, doc Document) error

	// UpdateField sets a single field on the one document matching filter.
	UpdateField(ctx context.Context, collection string, filter Filter, field string, value any) error

	// Close releases underlying connections.
	Close(ctx context.Context) error
}
