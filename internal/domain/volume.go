package domain

import "fmt"

// ArchiveVolume is one physical output unit of a finished burst. Volumes
// are delivered in Index order; the recipient must download them all
// before unpacking when Total > 1.
type ArchiveVolume struct {
	Index int
	Total int
	Name  string
	Path  string
	Size  int64
}

// Caption returns the delivery caption for the volume.
func (v ArchiveVolume) Caption() string {
	if v.Total > 1 {
		return fmt.Sprintf("Archive volume %d/%d. Download every volume before unpacking.", v.Index, v.Total)
	}
	return "Archive ready."
}
