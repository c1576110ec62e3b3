package reload

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamayun-daemon/gamayun/internal/dispatcher"
	"github.com/gamayun-daemon/gamayun/internal/jobconfig"
	"github.com/gamayun-daemon/gamayun/internal/notify"
	"github.com/gamayun-daemon/gamayun/internal/registry"
)

func writeJobFile(t *testing.T, dir, name, jobName string) {
	t.Helper()
	content := `name = "` + jobName + `"
path_to_executable = "/bin/true"
cron_string = "* * * * *"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func newEmptySource() *jobconfig.Source {
	return jobconfig.NewSource(nil)
}

func TestReload_HappyPath(t *testing.T) {
	root := t.TempDir()
	writeJobFile(t, root, "a.config.toml", "job-a")

	reg := registry.New()
	d := dispatcher.New(reg)
	source := newEmptySource()
	notifier := notify.New()
	coord := New(root, d, reg, source, notifier)

	require.NoError(t, coord.Reload(context.Background()))
	assert.Equal(t, 1, d.Len())
	_, ok := source.Snapshot().Get("job-a")
	assert.True(t, ok)
}

func TestReload_SwapsScheduleOnSecondReload(t *testing.T) {
	root := t.TempDir()
	writeJobFile(t, root, "a.config.toml", "job-a")

	reg := registry.New()
	d := dispatcher.New(reg)
	source := newEmptySource()
	notifier := notify.New()
	coord := New(root, d, reg, source, notifier)

	require.NoError(t, coord.Reload(context.Background()))
	require.NoError(t, os.Remove(filepath.Join(root, "a.config.toml")))
	writeJobFile(t, root, "b.config.toml", "job-b")

	require.NoError(t, coord.Reload(context.Background()))
	assert.Equal(t, 1, d.Len())
	_, hasA := source.Snapshot().Get("job-a")
	_, hasB := source.Snapshot().Get("job-b")
	assert.False(t, hasA)
	assert.True(t, hasB)
}

func TestReload_LoadFailure_LeavesScheduleEmptyAndNotifies(t *testing.T) {
	root := t.TempDir()
	writeJobFile(t, root, "a.config.toml", "job-a")
	writeJobFile(t, root, "b.config.toml", "job-a") // duplicate name

	reg := registry.New()
	d := dispatcher.New(reg)
	source := newEmptySource()
	sink := &captureSink{}
	notifier := notify.New(sink)
	coord := New(root, d, reg, source, notifier)

	err := coord.Reload(context.Background())
	require.Error(t, err)
	assert.Equal(t, 0, d.Len())
	require.Len(t, sink.titles, 1)
	assert.Equal(t, "Gamayun Job Configuration Reload Failure", sink.titles[0])
}

type captureSink struct {
	titles []string
	bodies []string
}

func (c *captureSink) Notify(_ context.Context, title, body string) {
	c.titles = append(c.titles, title)
	c.bodies = append(c.bodies, body)
}
