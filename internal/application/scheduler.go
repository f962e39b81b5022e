package application

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/avrel/mediapack/internal/adapters/archive"
	"github.com/avrel/mediapack/internal/domain"
	"github.com/avrel/mediapack/internal/ports"
	"github.com/avrel/mediapack/internal/workspace"
)

// Scheduler runs the per-session debounce state machine: ARMED while the
// quiet period counts down, DRAINING while in-flight downloads settle,
// FINALIZED once the archive is built and delivered. A newer arrival
// supersedes the pending run; staleness is detected by comparing the
// run's epoch against the session's lastActivity, never by cancellation
// flags alone.
type Scheduler struct {
	registry     *Registry
	coordinator  *Coordinator
	builder      *archive.Builder
	transport    ports.Transport
	quietPeriod  time.Duration
	maxDrainWait time.Duration
	drainPoll    time.Duration
	archiveName  string
	logger       *slog.Logger

	wg sync.WaitGroup
}

func NewScheduler(registry *Registry, coordinator *Coordinator, builder *archive.Builder, transport ports.Transport, opts Options, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Scheduler{
		registry:     registry,
		coordinator:  coordinator,
		builder:      builder,
		transport:    transport,
		quietPeriod:  opts.QuietPeriod,
		maxDrainWait: opts.MaxDrainWait,
		drainPoll:    opts.DrainPoll,
		archiveName:  opts.ArchiveName,
		logger:       logger,
	}
}

// launch starts the finalize run armed by enqueueAndArm.
func (sch *Scheduler) launch(ctx context.Context, s *session, epoch time.Time) {
	sch.wg.Add(1)
	go sch.run(ctx, s, epoch)
}

// Wait blocks until every launched run has returned.
func (sch *Scheduler) Wait() {
	sch.wg.Wait()
}

func (sch *Scheduler) run(ctx context.Context, s *session, epoch time.Time) {
	defer sch.wg.Done()

	// ARMED: wait out the quiet period. Cancellation here means a newer
	// arrival superseded this run.
	timer := time.NewTimer(sch.quietPeriod)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return
	case <-timer.C:
	}

	// DRAINING: the epoch re-check catches an arrival that beat the
	// context cancellation to the timer.
	if !s.beginDraining(epoch) {
		return
	}

	deadline := time.Now().Add(sch.maxDrainWait)
	for s.inFlightCount() > 0 {
		if time.Now().After(deadline) {
			sch.logger.Warn("drain wait exceeded, finalizing with available files",
				"user_id", int64(s.user))
			break
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(sch.drainPoll):
		}
	}

	// New items may have arrived during the drain; re-check the epoch one
	// last time, atomically with closing the session.
	snap, ok := s.closeForFinalize(epoch)
	if !ok {
		return
	}
	sch.finalize(s, snap)
}

// finalize collects downloads, builds the archive, and delivers the
// volumes. The session is torn down regardless of outcome.
func (sch *Scheduler) finalize(s *session, snap finalizeSnapshot) {
	logger := sch.logger.With("user_id", int64(s.user))
	defer func() {
		sch.registry.drop(s)
		if err := workspace.Remove(snap.dir); err != nil {
			logger.Error("work directory cleanup failed", "error", err)
		}
	}()

	ctx := context.Background()
	results, failed := sch.coordinator.collect(snap)

	// Failed items go back to the user unprocessed; no automatic retry.
	for _, item := range failed {
		if err := sch.transport.NotifyUnprocessed(ctx, item.Dest, item.Ref, item.Caption); err != nil {
			logger.Error("notify unprocessed failed", "ref", string(item.Ref), "error", err)
		}
	}

	if len(results) == 0 {
		logger.Warn("nothing to archive", "error", domain.ErrEmptyResult, "items", len(snap.items))
		return
	}

	entries := make([]archive.Entry, 0, len(results))
	for _, res := range results {
		entries = append(entries, archive.Entry{Path: res.Path, Name: res.Name})
	}

	volumes, err := sch.builder.Build(snap.dir, sch.archiveName, entries)
	if err != nil {
		logger.Error("archive build failed", "error", err)
		return
	}

	for _, volume := range volumes {
		if err := sch.transport.Deliver(ctx, snap.dest, volume); err != nil {
			derr := &domain.DeliveryError{Volume: volume.Name, Err: err}
			logger.Error("volume delivery failed", "error", derr)
		}
	}

	logger.Info("burst finalized",
		"items", len(snap.items),
		"archived", len(results),
		"failed", len(failed),
		"volumes", len(volumes))
}
