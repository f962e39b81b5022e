package ports

import (
	"context"
	"io"

	"github.com/avrel/mediapack/internal/domain"
)

// Transport is the chat-transport boundary the pipeline consumes. The
// pipeline never talks to the outside world except through it.
type Transport interface {
	// Fetch opens a byte stream for the given media reference.
	Fetch(ctx context.Context, ref domain.MediaRef) (io.ReadCloser, error)

	// Deliver sends one archive volume, with its caption, to a destination.
	Deliver(ctx context.Context, dest domain.Destination, volume domain.ArchiveVolume) error

	// NotifyUnprocessed hands an item the pipeline could not fetch back to
	// its destination unprocessed.
	NotifyUnprocessed(ctx context.Context, dest domain.Destination, ref domain.MediaRef, caption string) error
}
