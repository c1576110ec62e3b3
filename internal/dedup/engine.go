// Package dedup applies a job's duplicate-entry policy to a reported result
// map against the document store.
package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/gamayun-daemon/gamayun/internal/jobconfig"
	"github.com/gamayun-daemon/gamayun/internal/store"
)

// Engine dispatches a submitted (job, map) pair onto the job's configured
// PolicyMode against a Store, per spec.md §4.5.
type Engine struct {
	store store.Store
	now   func() time.Time
}

// New creates an Engine over the given Store.
func New(s store.Store) *Engine {
	return &Engine{store: s, now: time.Now}
}

// Submit applies job.Policy() to result against job.Name's collection.
func (e *Engine) Submit(ctx context.Context, job jobconfig.JobConfig, result map[string]string) error {
	policy := job.Policy()
	now := e.now()

	candidate := buildCandidate(result, job.Tags, now)
	filter := buildFilter(policy.UniqueIDs, result)

	switch policy.Mode {
	case jobconfig.IgnoreNew:
		return e.submitIgnoreNew(ctx, job.Name, filter, candidate, now)
	case jobconfig.Overwrite:
		return e.submitOverwrite(ctx, job.Name, filter, candidate, now)
	case jobconfig.TrackChanges:
		return e.submitTrackChanges(ctx, job.Name, filter, candidate, now)
	default:
		return fmt.Errorf("unknown duplicate policy mode: %q", policy.Mode)
	}
}

func buildCandidate(result map[string]string, tags []string, now time.Time) store.Document {
	doc := make(store.Document, len(result)+3)
	for k, v := range result {
		doc[k] = v
	}
	doc[store.FieldCreatedAt] = now
	doc[store.FieldUpdatedAt] = now
	doc[store.FieldTags] = tags
	return doc
}

func buildFilter(uniqueIDs []string, result map[string]string) store.Filter {
	filter := make(store.Filter)
	for _, field := range uniqueIDs {
		if v, ok := result[field]; ok {
			filter[field] = v
		}
	}
	return filter
}

func (e *Engine) submitIgnoreNew(ctx context.Context, collection string, filter store.Filter, candidate store.Document, now time.Time) error {
	existing, ok, err := e.store.FindOne(ctx, collection, filter)
	if err != nil {
		return fmt.Errorf("finding existing document: %w", err)
	}
	if !ok {
		if err := e.store.InsertOne(ctx, collection, candidate); err != nil {
			return fmt.Errorf("inserting document: %w", err)
		}
		return nil
	}

	// One or more matches exist: leave every other field untouched, refresh
	// only gamayun_updated_at on the one we found.
	_ = existing
	if err := e.store.UpdateField(ctx, collection, filter, store.FieldUpdatedAt, now); err != nil {
		return fmt.Errorf("refreshing updated_at: %w", err)
	}
	return nil
}

func (e *Engine) submitOverwrite(ctx context.Context, collection string, filter store.Filter, candidate store.Document, now time.Time) error {
	existing, ok, err := e.store.FindOne(ctx, collection, filter)
	if err != nil {
		return fmt.Errorf("finding existing document: %w", err)
	}
	if !ok {
		if err := e.store.InsertOne(ctx, collection, candidate); err != nil {
			return fmt.Errorf("inserting document: %w", err)
		}
		return nil
	}

	// Preserve the original creation timestamp across the overwrite.
	if created, ok := existing[store.FieldCreatedAt]; ok {
		candidate[store.FieldCreatedAt] = created
	}
	if err := e.store.ReplaceOne(ctx, collection, filter, candidate); err != nil {
		return fmt.Errorf("replacing document: %w", err)
	}
	return nil
}

func (e *Engine) submitTrackChanges(ctx context.Context, collection string, filter store.Filter, candidate store.Document, now time.Time) error {
	existing, ok, err := e.store.FindOne(ctx, collection, filter)
	if err != nil {
		return fmt.Errorf("finding existing document: %w", err)
	}
	if !ok {
		if err := e.store.InsertOne(ctx, collection, candidate); err != nil {
			return fmt.Errorf("inserting document: %w", err)
		}
		return nil
	}

	changed := store.Document{
		store.FieldCreatedAt: now,
		store.FieldUpdatedAt: now,
		store.FieldTags:      candidate[store.FieldTags],
	}
	for k, v := range candidate {
		if k == store.FieldCreatedAt || k == store.FieldUpdatedAt {
			continue
		}
		if existingVal, ok := existing[k]; !ok || !equalValue(existingVal, v) {
			changed[k] = v
		}
	}

	if err := e.store.InsertOne(ctx, collection, changed); err != nil {
		return fmt.Errorf("inserting change record: %w", err)
	}
	return nil
}

func equalValue(a, b any) bool {
	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		return as == bs
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}
