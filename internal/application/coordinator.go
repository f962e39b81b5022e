package application

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/avrel/mediapack/internal/domain"
	"github.com/avrel/mediapack/internal/ports"
)

// Coordinator performs the per-item downloads and assembles their
// outcomes at the finalize barrier. Items are fetched eagerly, as soon as
// they arrive; each fetch is bounded by its own timeout and its failure
// never aborts the run.
type Coordinator struct {
	transport ports.Transport
	timeout   time.Duration
	logger    *slog.Logger
}

func NewCoordinator(transport ports.Transport, timeout time.Duration, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Coordinator{transport: transport, timeout: timeout, logger: logger}
}

// Result is one successfully downloaded item ready for archiving.
type Result struct {
	Path string
	Name string
}

// launch starts the eager download for one item. The in-flight counter is
// incremented here, synchronously, so a finalize run armed by the same
// arrival can never observe the session as drained before the fetch has
// begun.
func (c *Coordinator) launch(ctx context.Context, s *session, item domain.MediaItem, target string) {
	s.beginDownload()
	go c.fetch(ctx, s, item, target)
}

// fetch downloads one item into the session's working directory and
// records the outcome. The in-flight counter it decrements is what the
// drain phase of a finalize run waits on.
func (c *Coordinator) fetch(ctx context.Context, s *session, item domain.MediaItem, target string) {
	path := filepath.Join(s.dir, target)
	if err := c.download(ctx, item.Ref, path); err != nil {
		_ = os.Remove(path)
		derr := &domain.DownloadError{Ref: item.Ref, Err: err}
		c.logger.Warn("download failed",
			"user_id", int64(s.user),
			"ref", string(item.Ref),
			"error", derr)
		s.finishDownload(item.Seq, outcome{err: derr})
		return
	}

	c.logger.Debug("download complete", "user_id", int64(s.user), "file", target)
	s.finishDownload(item.Seq, outcome{path: path})
}

func (c *Coordinator) download(ctx context.Context, ref domain.MediaRef, path string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	stream, err := c.transport.Fetch(ctx, ref)
	if err != nil {
		return err
	}
	defer stream.Close()

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(file, stream); err != nil {
		file.Close()
		return fmt.Errorf("write file: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close file: %w", err)
	}
	return nil
}

// collect maps the item snapshot to downloaded results and failed items,
// preserving arrival order. An item with no recorded outcome was still in
// flight when the drain bound expired; it is surfaced as failed rather
// than waited on (available files win).
func (c *Coordinator) collect(snap finalizeSnapshot) ([]Result, []domain.MediaItem) {
	var results []Result
	var failed []domain.MediaItem

	for _, item := range snap.items {
		o, ok := snap.outcomes[item.Seq]
		switch {
		case !ok:
			c.logger.Warn("download still pending at finalize",
				"ref", string(item.Ref), "seq", item.Seq)
			failed = append(failed, item)
		case o.err != nil:
			failed = append(failed, item)
		default:
			results = append(results, Result{
				Path: o.path,
				Name: snap.targets[item.Seq],
			})
		}
	}
	return results, failed
}
