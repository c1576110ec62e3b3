// Package ingestion implements the gRPC result-ingestion endpoint (C5):
// spawned jobs call back here with a result, no-result, or error message.
package ingestion

import (
	"context"
	"log/slog"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/gamayun-daemon/gamayun/internal/dedup"
	"github.com/gamayun-daemon/gamayun/internal/jobconfig"
	"github.com/gamayun-daemon/gamayun/internal/notify"
	"github.com/gamayun-daemon/gamayun/internal/registry"
	"github.com/gamayun-daemon/gamayun/internal/rpc"
)

// ConfigSource returns the currently active job-config snapshot. Handlers
// take one snapshot per call and hold it for that call's duration, so a
// concurrent reload never produces an inconsistent read mid-request.
type ConfigSource interface {
	Snapshot() *jobconfig.Snapshot
}

// Server implements rpc.ResultServer.
type Server struct {
	configs  ConfigSource
	registry *registry.Registry
	dedup    *dedup.Engine
	notifier *notify.Notifier
}

// New constructs an ingestion Server.
func New(configs ConfigSource, reg *registry.Registry, dedupEngine *dedup.Engine, notifier *notify.Notifier) *Server {
	return &Server{configs: configs, registry: reg, dedup: dedupEngine, notifier: notifier}
}

var _ rpc.ResultServer = (*Server)(nil)

func (s *Server) resolveJob(runInfo *rpc.RunInformation) (jobconfig.JobConfig, error) {
	if runInfo == nil || runInfo.JobName == "" || runInfo.RunID == "" {
		return jobconfig.JobConfig{}, status.Error(codes.InvalidArgument, "run_information is required")
	}

	snap := s.configs.Snapshot()
	job, ok := snap.Get(runInfo.JobName)
	if !ok {
		return jobconfig.JobConfig{}, status.Errorf(codes.NotFound, "unknown job: %s", runInfo.JobName)
	}
	return job, nil
}

// ReportResult implements rpc.ResultServer.
func (s *Server) ReportResult(ctx context.Context, in *rpc.JobResult) (*rpc.Empty, error) {
	var runInfo *rpc.RunInformation
	if in != nil {
		runInfo = in.RunInformation
	}

	job, err := s.resolveJob(runInfo)
	if err != nil {
		return nil, err
	}

	for _, mapResult := range in.Results {
		if mapResult == nil {
			continue
		}
		if err := s.dedup.Submit(ctx, job, mapResult.MapResult); err != nil {
			slog.ErrorContext(ctx, "storing result failed",
				"job_name", job.Name, "run_id", runInfo.RunID, "error", err)
			return nil, status.Error(codes.Internal, "failed to store result")
		}
	}

	s.registry.MarkReturned(ctx, runInfo.RunID)
	return &rpc.Empty{}, nil
}

// ReportNoResult implements rpc.ResultServer.
func (s *Server) ReportNoResult(ctx context.Context, in *rpc.RunInformation) (*rpc.Empty, error) {
	job, err := s.resolveJob(in)
	if err != nil {
		return nil, err
	}

	s.registry.MarkReturned(ctx, in.RunID)
	slog.InfoContext(ctx, "job reported no result", "job_name", job.Name, "run_id", in.RunID)
	return &rpc.Empty{}, nil
}

// ReportError implements rpc.ResultServer.
func (s *Server) ReportError(ctx context.Context, in *rpc.JobError) (*rpc.Empty, error) {
	var runInfo *rpc.RunInformation
	if in != nil {
		runInfo = in.RunInformation
	}

	job, err := s.resolveJob(runInfo)
	if err != nil {
		return nil, err
	}

	s.registry.MarkReturned(ctx, runInfo.RunID)

	s.notifier.Notify(ctx,
		"Gamayun Error for job "+job.Name,
		"Job "+job.Name+" (run "+runInfo.RunID+") reported an error: "+in.Error,
	)
	return &rpc.Empty{}, nil
}
