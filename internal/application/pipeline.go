// Package application implements the upload-aggregation pipeline: per-user
// sessions, the debounce scheduler that decides when a burst has gone
// quiet, the download coordinator, and the finalize flow that turns a
// burst into delivered archive volumes.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/avrel/mediapack/internal/adapters/archive"
	"github.com/avrel/mediapack/internal/domain"
	"github.com/avrel/mediapack/internal/ports"
	"github.com/avrel/mediapack/internal/workspace"
)

// Options bound the pipeline's timing and sizing behavior. Zero values
// fall back to the defaults below.
type Options struct {
	// QuietPeriod is the delay after the most recent arrival before a
	// burst is considered finished.
	QuietPeriod time.Duration

	// DownloadTimeout bounds each individual media fetch.
	DownloadTimeout time.Duration

	// MaxDrainWait bounds how long a finalize run waits for in-flight
	// downloads before proceeding with whatever is available.
	MaxDrainWait time.Duration

	// DrainPoll is the in-flight counter polling interval.
	DrainPoll time.Duration

	// VolumeLimit is the maximum archive volume size in bytes. Zero or
	// negative disables splitting.
	VolumeLimit int64

	// ArchiveName is the container file name inside each burst.
	ArchiveName string
}

const (
	defaultQuietPeriod     = 3 * time.Second
	defaultDownloadTimeout = 2 * time.Minute
	defaultMaxDrainWait    = 30 * time.Second
	defaultDrainPoll       = 200 * time.Millisecond
	defaultVolumeLimit     = 48 << 20
	defaultArchiveName     = "media.zip"
)

func (o *Options) applyDefaults() {
	if o.QuietPeriod <= 0 {
		o.QuietPeriod = defaultQuietPeriod
	}
	if o.DownloadTimeout <= 0 {
		o.DownloadTimeout = defaultDownloadTimeout
	}
	if o.MaxDrainWait <= 0 {
		o.MaxDrainWait = defaultMaxDrainWait
	}
	if o.DrainPoll <= 0 {
		o.DrainPoll = defaultDrainPoll
	}
	if o.ArchiveName == "" {
		o.ArchiveName = defaultArchiveName
	}
}

// Submission is one incoming (user, media reference, metadata) tuple from
// the transport layer.
type Submission struct {
	User     domain.UserID
	Dest     domain.Destination
	Ref      domain.MediaRef
	Caption  string
	MIMEType string
	FileName string
}

// Pipeline is the public face of the upload-aggregation pipeline.
type Pipeline struct {
	registry    *Registry
	scheduler   *Scheduler
	coordinator *Coordinator
	clock       ports.Clock
	logger      *slog.Logger
}

func NewPipeline(transport ports.Transport, clock ports.Clock, workRoot *workspace.Root, opts Options, logger *slog.Logger) *Pipeline {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	opts.applyDefaults()

	registry := NewRegistry(workRoot, logger)
	coordinator := NewCoordinator(transport, opts.DownloadTimeout, logger)
	builder := archive.NewBuilder(opts.VolumeLimit, logger)
	scheduler := NewScheduler(registry, coordinator, builder, transport, opts, logger)

	return &Pipeline{
		registry:    registry,
		scheduler:   scheduler,
		coordinator: coordinator,
		clock:       clock,
		logger:      logger,
	}
}

// Submit queues one item for the user's current burst: the item is
// appended, its eager download started, and the debounce run re-armed.
// Returns quickly; all heavy work happens on pipeline goroutines.
func (p *Pipeline) Submit(ctx context.Context, sub Submission) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if sub.Ref == "" {
		return errors.New("media reference required")
	}

	for {
		s, err := p.registry.Resolve(sub.User, sub.Dest)
		if err != nil {
			return fmt.Errorf("submit item: %w", err)
		}

		item, target, runCtx, epoch, ok := s.enqueueAndArm(sub, p.clock.Now())
		if !ok {
			// A finalize run closed this session between Resolve and
			// enqueue; Resolve replaces closed sessions, so retry.
			continue
		}

		p.logger.Info("item queued",
			"user_id", int64(sub.User),
			"ref", string(sub.Ref),
			"seq", item.Seq,
			"file", target)

		p.scheduler.launch(runCtx, s, epoch)
		p.coordinator.launch(context.Background(), s, item, target)
		return nil
	}
}

// Discard drops the user's session and everything queued in it, e.g. when
// the user declines archiving. Idempotent.
func (p *Pipeline) Discard(user domain.UserID) {
	p.registry.Discard(user)
}

// Wait blocks until every pending finalize run has returned. Intended for
// shutdown and tests.
func (p *Pipeline) Wait() {
	p.scheduler.Wait()
}

// Sessions reports the number of live sessions.
func (p *Pipeline) Sessions() int {
	return p.registry.Len()
}
