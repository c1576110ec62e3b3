// Package jobconfig loads the set of job definitions gamayun schedules.
package jobconfig

import "time"

// PolicyMode decides how a newly reported result interacts with existing
// documents matching a job's configured unique-id fields.
type PolicyMode string

const (
	// IgnoreNew keeps the first-seen document and only refreshes its
	// gamayun_updated_at timestamp on later duplicates.
	IgnoreNew PolicyMode = "IgnoreNew"
	// Overwrite replaces the single matching document in place, preserving
	// its original gamayun_created_at.
	Overwrite PolicyMode = "Overwrite"
	// TrackChanges appends a new document per ingestion containing only the
	// fields that changed, building an append-only history.
	TrackChanges PolicyMode = "TrackChanges"
)

// DuplicatePolicy governs how the deduplication engine treats a reported
// result against documents already stored for a job.
type DuplicatePolicy struct {
	UniqueIDs []string   `toml:"unique_ids"`
	Mode      PolicyMode `toml:"on_duplicate_entry"`
}

// DefaultDuplicatePolicy is used when a job omits duplicate_entry_policy.
func DefaultDuplicatePolicy() DuplicatePolicy {
	return DuplicatePolicy{UniqueIDs: nil, Mode: TrackChanges}
}

// JobConfig is an immutable job definition loaded from a `*.config.toml` file.
type JobConfig struct {
	Name                      string           `toml:"name"`
	PathToExecutable          string           `toml:"path_to_executable"`
	Arguments                 []string         `toml:"arguments"`
	CronString                string           `toml:"cron_string"`
	Tags                      []string         `toml:"tags"`
	ResultWaitTimeoutMillis   *int64           `toml:"result_wait_timeout_millis"`
	RandomTriggerOffsetSecs   *int64           `toml:"random_trigger_offset_seconds"`
	DuplicateEntryPolicy      *DuplicatePolicy `toml:"duplicate_entry_policy"`
	SourcePath                string           `toml:"-"`
}

// DefaultResultWaitTimeout is used when result_wait_timeout_millis is absent.
const DefaultResultWaitTimeout = 10 * time.Second

// ResultWaitTimeout returns the configured timeout, or DefaultResultWaitTimeout.
func (j JobConfig) ResultWaitTimeout() time.Duration {
	if j.ResultWaitTimeoutMillis == nil {
		return DefaultResultWaitTimeout
	}
	return time.Duration(*j.ResultWaitTimeoutMillis) * time.Millisecond
}

// RandomTriggerOffset returns the configured jitter ceiling, or zero.
func (j JobConfig) RandomTriggerOffset() time.Duration {
	if j.RandomTriggerOffsetSecs == nil {
		return 0
	}
	return time.Duration(*j.RandomTriggerOffsetSecs) * time.Second
}

// Policy returns the job's duplicate policy, or the default when unset.
func (j JobConfig) Policy() DuplicatePolicy {
	if j.DuplicateEntryPolicy == nil {
		return DefaultDuplicatePolicy()
	}
	return *j.DuplicateEntryPolicy
}

// Snapshot is an immutable, published set of job configs keyed by name.
// Reload swaps the active *Snapshot atomically; in-flight readers keep
// whichever snapshot they took at entry.
type Snapshot struct {
	byName map[string]JobConfig
	all    []JobConfig
}

// NewSnapshot builds a Snapshot from a loaded job list. Callers are expected
// to have already validated name uniqueness via Load.
func NewSnapshot(jobs []JobConfig) *Snapshot {
	byName := make(map[string]JobConfig, len(jobs))
	for _, j := range jobs {
		byName[j.Name] = j
	}
	return &Snapshot{byName: byName, all: jobs}
}

// Get looks up a job by name.
func (s *Snapshot) Get(name string) (JobConfig, bool) {
	if s == nil {
		return JobConfig{}, false
	}
	j, ok := s.byName[name]
	return j, ok
}

// All returns every job in the snapshot. The returned slice must not be
// mutated by callers.
func (s *Snapshot) All() []JobConfig {
	if s == nil {
		return nil
	}
	return s.all
}
