// Package reload implements the configuration reload protocol (C7): stop
// every scheduled entry, abandon in-flight runs, reload job configs from
// disk, and re-register.
package reload

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gamayun-daemon/gamayun/internal/dispatcher"
	"github.com/gamayun-daemon/gamayun/internal/jobconfig"
	"github.com/gamayun-daemon/gamayun/internal/notify"
	"github.com/gamayun-daemon/gamayun/internal/registry"
)

// Coordinator executes the reload protocol. Reloads are not safe to run
// concurrently with each other; callers (internal/httpapi) are expected to
// serialize.
type Coordinator struct {
	root       string
	dispatcher *dispatcher.Dispatcher
	registry   *registry.Registry
	source     *jobconfig.Source
	notifier   *notify.Notifier
}

// New constructs a Coordinator. root is the job-config directory tree; it
// is re-read on every Reload call.
func New(root string, d *dispatcher.Dispatcher, reg *registry.Registry, source *jobconfig.Source, notifier *notify.Notifier) *Coordinator {
	return &Coordinator{root: root, dispatcher: d, registry: reg, source: source, notifier: notifier}
}

// Reload runs the full protocol: unschedule, clear the registry, reload
// configs, and re-register. On failure the scheduler is left with zero
// entries — there is no rollback to the previous schedule — and an operator
// notification has already been sent before Reload returns its error.
func (c *Coordinator) Reload(ctx context.Context) error {
	c.dispatcher.Unschedule()
	c.registry.ClearAll()

	jobs, err := jobconfig.Load(c.root)
	if err != nil {
		c.failed(ctx, fmt.Sprintf("Failed to reload job configuration from %s: %v", c.root, err))
		return fmt.Errorf("loading job configs: %w", err)
	}

	if err := c.dispatcher.Register(jobs); err != nil {
		c.failed(ctx, fmt.Sprintf("Failed to schedule reloaded job configuration: %v", err))
		return fmt.Errorf("registering jobs: %w", err)
	}

	c.source.Store(jobconfig.NewSnapshot(jobs))
	return nil
}

func (c *Coordinator) failed(ctx context.Context, detail string) {
	slog.ErrorContext(ctx, "job configuration reload failed", "detail", detail)
	c.notifier.Notify(ctx, "Gamayun Job Configuration Reload Failure", detail)
}
