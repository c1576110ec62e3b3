package dispatcher

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamayun-daemon/gamayun/internal/jobconfig"
	"github.com/gamayun-daemon/gamayun/internal/ptr"
	"github.com/gamayun-daemon/gamayun/internal/registry"
)

type fakeSpawner struct {
	mu       sync.Mutex
	calls    int
	lastJob  jobconfig.JobConfig
	lastEnv  []string
	failNext bool
}

func (f *fakeSpawner) Spawn(job jobconfig.JobConfig, env []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastJob = job
	f.lastEnv = env
	if f.failNext {
		f.failNext = false
		return assert.AnError
	}
	return nil
}

func (f *fakeSpawner) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func testJob(name, cronString string) jobconfig.JobConfig {
	return jobconfig.JobConfig{
		Name:             name,
		PathToExecutable: "/bin/true",
		CronString:       cronString,
	}
}

func TestRegister_RejectsWholeBatchOnInvalidCron(t *testing.T) {
	reg := registry.New()
	spawner := &fakeSpawner{}
	d := New(reg, WithSpawner(spawner))

	err := d.Register([]jobconfig.JobConfig{
		testJob("good", "* * * * *"),
		testJob("bad", "not-a-cron-string"),
	})
	require.Error(t, err)
	assert.Equal(t, 0, d.Len())
}

func TestRegister_SchedulesEveryJob(t *testing.T) {
	reg := registry.New()
	spawner := &fakeSpawner{}
	d := New(reg, WithSpawner(spawner))

	err := d.Register([]jobconfig.JobConfig{
		testJob("a", "* * * * *"),
		testJob("b", "* * * * *"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, d.Len())
}

func TestUnschedule_RemovesAllEntries(t *testing.T) {
	reg := registry.New()
	d := New(reg, WithSpawner(&fakeSpawner{}))

	require.NoError(t, d.Register([]jobconfig.JobConfig{testJob("a", "* * * * *")}))
	assert.Equal(t, 1, d.Len())

	d.Unschedule()
	assert.Equal(t, 0, d.Len())
}

func TestFire_SpawnsAndRegistersRun(t *testing.T) {
	reg := registry.New()
	spawner := &fakeSpawner{}
	d := New(reg, WithSpawner(spawner))

	job := testJob("ping", "* * * * *")
	d.fire(job)

	assert.Equal(t, 1, spawner.count())
	assert.Equal(t, "ping", spawner.lastJob.Name)
	assert.Contains(t, spawner.lastEnv, "GAMAYUN_JOB_NAME=ping")
	assert.Equal(t, 1, reg.Len())
}

func TestFire_SpawnFailure_DoesNotRegisterRun(t *testing.T) {
	reg := registry.New()
	spawner := &fakeSpawner{failNext: true}
	d := New(reg, WithSpawner(spawner))

	d.fire(testJob("ping", "* * * * *"))

	assert.Equal(t, 1, spawner.count())
	assert.Equal(t, 0, reg.Len())
}

func TestFire_RandomOffset_SpawnsWithinOffsetCeiling(t *testing.T) {
	reg := registry.New()
	spawner := &fakeSpawner{}
	d := New(reg, WithSpawner(spawner))

	job := testJob("ping", "* * * * *")
	job.RandomTriggerOffsetSecs = ptr.To(int64(1))

	start := time.Now()
	d.fire(job)
	elapsed := time.Since(start)
	assert.GreaterOrEqual(t, elapsed, time.Duration(0))
	assert.Less(t, elapsed, job.RandomTriggerOffset()+time.Second)
	assert.Equal(t, 1, spawner.count())
}
