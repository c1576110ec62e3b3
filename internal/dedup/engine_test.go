package dedup

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamayun-daemon/gamayun/internal/jobconfig"
	"github.com/gamayun-daemon/gamayun/internal/store"
)

func jobWithPolicy(name string, uniqueIDs []string, mode jobconfig.PolicyMode, tags []string) jobconfig.JobConfig {
	return jobconfig.JobConfig{
		Name: name,
		Tags: tags,
		DuplicateEntryPolicy: &jobconfig.DuplicatePolicy{
			UniqueIDs: uniqueIDs,
			Mode:      mode,
		},
	}
}

func newEngineWithClock(s store.Store, times ...time.Time) *Engine {
	e := New(s)
	i := 0
	e.now = func() time.Time {
		t := times[i]
		if i < len(times)-1 {
			i++
		}
		return t
	}
	return e
}

// S1 — happy path.
func TestSubmit_HappyPath(t *testing.T) {
	mem := store.NewMemStore()
	job := jobWithPolicy("ping", []string{"host"}, jobconfig.TrackChanges, []string{"x"})
	e := New(mem)

	err := e.Submit(context.Background(), job, map[string]string{"host": "a", "latency": "12"})
	require.NoError(t, err)

	docs := mem.All("ping")
	require.Len(t, docs, 1)
	assert.Equal(t, "a", docs[0]["host"])
	assert.Equal(t, "12", docs[0]["latency"])
	assert.Equal(t, []string{"x"}, docs[0][store.FieldTags])
	assert.NotNil(t, docs[0][store.FieldCreatedAt])
	assert.NotNil(t, docs[0][store.FieldUpdatedAt])
}

// S2 — IgnoreNew duplicate.
func TestSubmit_IgnoreNew_Duplicate(t *testing.T) {
	mem := store.NewMemStore()
	job := jobWithPolicy("kv", []string{"k"}, jobconfig.IgnoreNew, nil)

	t1 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)
	e := newEngineWithClock(mem, t1, t2)

	require.NoError(t, e.Submit(context.Background(), job, map[string]string{"k": "1", "v": "a"}))
	require.NoError(t, e.Submit(context.Background(), job, map[string]string{"k": "1", "v": "b"}))

	docs := mem.All("kv")
	require.Len(t, docs, 1)
	assert.Equal(t, "a", docs[0]["v"])
	assert.Equal(t, t1, docs[0][store.FieldCreatedAt])
	assert.Equal(t, t2, docs[0][store.FieldUpdatedAt])
}

// S3 — Overwrite.
func TestSubmit_Overwrite(t *testing.T) {
	mem := store.NewMemStore()
	job := jobWithPolicy("kv", []string{"k"}, jobconfig.Overwrite, nil)

	t1 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)
	e := newEngineWithClock(mem, t1, t2)

	require.NoError(t, e.Submit(context.Background(), job, map[string]string{"k": "1", "v": "a"}))
	require.NoError(t, e.Submit(context.Background(), job, map[string]string{"k": "1", "v": "b"}))

	docs := mem.All("kv")
	require.Len(t, docs, 1)
	assert.Equal(t, "b", docs[0]["v"])
	assert.Equal(t, t1, docs[0][store.FieldCreatedAt])
	assert.Equal(t, t2, docs[0][store.FieldUpdatedAt])
}

// S4 — TrackChanges diff.
func TestSubmit_TrackChanges_Diff(t *testing.T) {
	mem := store.NewMemStore()
	job := jobWithPolicy("kv", []string{"k"}, jobconfig.TrackChanges, nil)
	e := New(mem)

	require.NoError(t, e.Submit(context.Background(), job, map[string]string{"k": "1", "v": "a"}))
	require.NoError(t, e.Submit(context.Background(), job, map[string]string{"k": "1", "v": "b", "extra": "z"}))

	docs := mem.All("kv")
	require.Len(t, docs, 2)

	second := docs[1]
	assert.Equal(t, "b", second["v"])
	assert.Equal(t, "z", second["extra"])
	_, hasK := second["k"]
	assert.False(t, hasK, "unchanged field k must not appear in the change record")
	assert.NotNil(t, second[store.FieldCreatedAt])
	assert.NotNil(t, second[store.FieldUpdatedAt])
}

func TestSubmit_TrackChanges_NoChanges_StillInsertsTimestampRow(t *testing.T) {
	mem := store.NewMemStore()
	job := jobWithPolicy("kv", []string{"k"}, jobconfig.TrackChanges, nil)
	e := New(mem)

	require.NoError(t, e.Submit(context.Background(), job, map[string]string{"k": "1", "v": "a"}))
	require.NoError(t, e.Submit(context.Background(), job, map[string]string{"k": "1", "v": "a"}))

	docs := mem.All("kv")
	require.Len(t, docs, 2)
	_, hasV := docs[1]["v"]
	assert.False(t, hasV)
}

func TestSubmit_EmptyUniqueIDs_MatchesEveryDocument(t *testing.T) {
	mem := store.NewMemStore()
	job := jobWithPolicy("kv", nil, jobconfig.IgnoreNew, nil)
	e := New(mem)

	require.NoError(t, e.Submit(context.Background(), job, map[string]string{"v": "a"}))
	require.NoError(t, e.Submit(context.Background(), job, map[string]string{"v": "b"}))

	// Accepted-as-is smell case (spec.md §9 open question 1): empty
	// unique_ids matches every document, so the second ingest updates the
	// first document's timestamp rather than inserting a new one.
	docs := mem.All("kv")
	require.Len(t, docs, 1)
	assert.Equal(t, "a", docs[0]["v"])
}
