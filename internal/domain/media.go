package domain

import "fmt"

// UserID identifies the user a session belongs to.
type UserID int64

// Destination identifies where finished volumes and notifications are sent.
// For chat transports this is the chat the burst arrived from.
type Destination int64

// MediaRef is an opaque content reference understood by the transport layer.
type MediaRef string

// MediaItem is one queued upload. Immutable once created; Seq is assigned
// by the session in arrival order and drives archival order, default
// naming, and collision resolution.
type MediaItem struct {
	Ref      MediaRef
	Caption  string
	MIMEType string
	FileName string
	Seq      int
	Dest     Destination
}

// DisplayName returns the user-facing name for the item: its caption, or a
// generated placeholder when the caption is absent.
func (m MediaItem) DisplayName() string {
	if m.Caption != "" {
		return m.Caption
	}
	return fmt.Sprintf("video_%02d", m.Seq)
}
