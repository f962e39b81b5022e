package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyResult signals a finalize run in which no item was
	// downloaded successfully. No archive is produced.
	ErrEmptyResult = errors.New("no items downloaded successfully")

	// ErrConfig wraps invalid or missing configuration. Fatal at startup.
	ErrConfig = errors.New("invalid configuration")
)

// DownloadError reports a failed fetch of one media item. Soft: the item
// is surfaced back to the user and the run continues.
type DownloadError struct {
	Ref MediaRef
	Err error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download %s: %v", e.Ref, e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }

// DeliveryError reports a failed send of one archive volume. Already-sent
// volumes are not rolled back and the send is not retried.
type DeliveryError struct {
	Volume string
	Err    error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("deliver %s: %v", e.Volume, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }
