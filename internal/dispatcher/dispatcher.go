// Package dispatcher translates job configs into cron entries and spawns
// the configured executable on each firing (C4).
package dispatcher

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/gamayun-daemon/gamayun/internal/jobconfig"
	"github.com/gamayun-daemon/gamayun/internal/registry"
)

// Spawner launches a job's configured executable. The production
// implementation starts a real child process and does not wait for it to
// exit; tests substitute a fake to observe spawn calls without forking.
type Spawner interface {
	Spawn(job jobconfig.JobConfig, env []string) error
}

type execSpawner struct{}

func (execSpawner) Spawn(job jobconfig.JobConfig, env []string) error {
	cmd := exec.Command(job.PathToExecutable, job.Arguments...)
	cmd.Env = env
	if err := cmd.Start(); err != nil {
		return err
	}
	// Reap the child without observing its exit status: the daemon never
	// waits on job completion, only on the out-of-band result callback.
	go func() { _ = cmd.Wait() }()
	return nil
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithSpawner overrides the default os/exec-backed Spawner.
func WithSpawner(s Spawner) Option {
	return func(d *Dispatcher) { d.spawner = s }
}

// Dispatcher owns the cron scheduler and the job-name-to-entry mapping it
// needs to bulk-unschedule on reload.
type Dispatcher struct {
	mu      sync.Mutex
	cron    *cron.Cron
	entries map[string]cron.EntryID

	registry *registry.Registry
	spawner  Spawner
}

// New constructs a Dispatcher. Every entry runs through
// cron.SkipIfStillRunning, so a firing is dropped rather than queued while
// the same job's previous firing (spawn call, plus any random-offset delay)
// is still in progress.
func New(reg *registry.Registry, opts ...Option) *Dispatcher {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(slog.Default().Handler(), slog.LevelError))
	c := cron.New(cron.WithChain(
		cron.Recover(cronLogger),
		cron.SkipIfStillRunning(cronLogger),
	))

	d := &Dispatcher{
		cron:     c,
		entries:  make(map[string]cron.EntryID),
		registry: reg,
		spawner:  execSpawner{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start begins firing scheduled entries.
func (d *Dispatcher) Start() { d.cron.Start() }

// Stop halts the scheduler. The returned context is done once every
// in-flight firing has returned.
func (d *Dispatcher) Stop() context.Context { return d.cron.Stop() }

// Len reports the number of currently scheduled entries.
func (d *Dispatcher) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.entries)
}

// Register schedules one cron entry per job. It validates every cron_string
// before scheduling any of them: a single invalid entry fails the whole
// batch and schedules nothing. Call Unschedule first when replacing an
// existing set (see internal/reload).
func (d *Dispatcher) Register(jobs []jobconfig.JobConfig) error {
	schedules := make(map[string]cron.Schedule, len(jobs))
	for _, job := range jobs {
		sched, err := cron.ParseStandard(job.CronString)
		if err != nil {
			return fmt.Errorf("job %q: invalid cron_string %q: %w", job.Name, job.CronString, err)
		}
		schedules[job.Name] = sched
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	for _, job := range jobs {
		job := job
		id := d.cron.Schedule(schedules[job.Name], cron.FuncJob(func() { d.fire(job) }))
		d.entries[job.Name] = id
	}
	return nil
}

// Unschedule removes every currently registered entry, leaving the
// scheduler with none.
func (d *Dispatcher) Unschedule() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for name, id := range d.entries {
		d.cron.Remove(id)
		delete(d.entries, name)
	}
}

func (d *Dispatcher) fire(job jobconfig.JobConfig) {
	ctx := context.Background()

	if offset := job.RandomTriggerOffset(); offset > 0 {
		time.Sleep(time.Duration(rand.Int64N(int64(offset))))
	}

	runID := uuid.NewString()
	env := append(os.Environ(),
		"GAMAYUN_JOB_NAME="+job.Name,
		"GAMAYUN_JOB_UNIQUE_ID="+runID,
	)

	if err := d.spawner.Spawn(job, env); err != nil {
		slog.ErrorContext(ctx, "spawning job failed",
			"job_name", job.Name, "path", job.PathToExecutable, "error", err)
		return
	}

	d.registry.Add(job.Name, runID, job.ResultWaitTimeout())
}
