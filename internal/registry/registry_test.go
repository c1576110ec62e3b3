package registry

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotifier struct {
	mu    sync.Mutex
	calls []struct{ title, body string }
}

func (f *fakeNotifier) Notify(_ context.Context, title, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, struct{ title, body string }{title, body})
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestRegistry_AddAndMarkReturned(t *testing.T) {
	r := New()
	r.Add("ping", "run-1", time.Minute)
	require.Equal(t, 1, r.Len())

	r.MarkReturned(context.Background(), "run-1")
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_MarkReturnedUnknown_DoesNotPanic(t *testing.T) {
	r := New()
	r.MarkReturned(context.Background(), "never-existed")
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_ClearAll(t *testing.T) {
	r := New()
	r.Add("a", "1", time.Minute)
	r.Add("b", "2", time.Minute)
	require.Equal(t, 2, r.Len())

	r.ClearAll()
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_SweepOnce_RemovesOverdueAndNotifies(t *testing.T) {
	r := New()
	r.Add("ping", "expired", -time.Second) // already overdue
	r.Add("pong", "fresh", time.Hour)

	notifier := &fakeNotifier{}
	r.sweepOnce(context.Background(), notifier)

	assert.Equal(t, 1, r.Len(), "only the fresh run should remain")
	require.Equal(t, 1, notifier.count())
	assert.Contains(t, notifier.calls[0].title, "Gamayun Overdue Job for ping")
	assert.Contains(t, notifier.calls[0].body, "expired")
}

func TestRegistry_SweepOnce_NoOverdue_NoNotification(t *testing.T) {
	r := New()
	r.Add("ping", "fresh", time.Hour)

	notifier := &fakeNotifier{}
	r.sweepOnce(context.Background(), notifier)

	assert.Equal(t, 1, r.Len())
	assert.Equal(t, 0, notifier.count())
}

func TestRegistry_AddDuplicateRunID_ReplacesEarlier(t *testing.T) {
	r := New()
	r.Add("ping", "run-1", time.Second)
	r.Add("pong", "run-1", time.Hour)

	require.Equal(t, 1, r.Len())
	run := r.runs["run-1"]
	assert.Equal(t, "pong", run.JobName)
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := New()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r.Add("job", string(rune('a'+i%26)), time.Minute)
		}(i)
	}
	wg.Wait()
	assert.True(t, r.Len() > 0)
}
