// Package archive packages downloaded files into a compressed container
// and splits the container into size-bounded volumes when needed.
package archive

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zip"

	"github.com/avrel/mediapack/internal/domain"
)

// Entry is one file to store in the container under its resolved,
// already-deduplicated target name.
type Entry struct {
	Path string
	Name string
}

// Builder writes zip containers bounded by a volume size limit.
type Builder struct {
	limit  int64
	logger *slog.Logger
}

// NewBuilder returns a Builder. A non-positive limit disables splitting.
func NewBuilder(limit int64, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Builder{limit: limit, logger: logger}
}

// Build packages the entries into dir/name and returns the ordered
// volumes: the container itself when it fits the limit, or its split
// parts otherwise. Every successful build yields at least one volume.
func (b *Builder) Build(dir, name string, entries []Entry) ([]domain.ArchiveVolume, error) {
	archivePath := filepath.Join(dir, name)
	if err := writeContainer(archivePath, entries); err != nil {
		return nil, err
	}

	info, err := os.Stat(archivePath)
	if err != nil {
		return nil, fmt.Errorf("stat archive: %w", err)
	}

	paths := []string{archivePath}
	if b.limit > 0 && info.Size() > b.limit {
		paths, err = SplitVolumes(archivePath, b.limit)
		if err != nil {
			return nil, fmt.Errorf("split archive: %w", err)
		}
		b.logger.Info("archive split into volumes",
			"archive", name,
			"size", info.Size(),
			"limit", b.limit,
			"volumes", len(paths))
	}

	volumes := make([]domain.ArchiveVolume, 0, len(paths))
	for i, path := range paths {
		partInfo, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("stat volume: %w", err)
		}
		volumes = append(volumes, domain.ArchiveVolume{
			Index: i + 1,
			Total: len(paths),
			Name:  filepath.Base(path),
			Path:  path,
			Size:  partInfo.Size(),
		})
	}
	return volumes, nil
}

func writeContainer(path string, entries []Entry) error {
	archiveFile, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}

	zw := zip.NewWriter(archiveFile)
	for _, entry := range entries {
		if err := addEntry(zw, entry); err != nil {
			zw.Close()
			archiveFile.Close()
			return err
		}
	}

	if err := zw.Close(); err != nil {
		archiveFile.Close()
		return fmt.Errorf("finalize archive: %w", err)
	}
	if err := archiveFile.Close(); err != nil {
		return fmt.Errorf("close archive: %w", err)
	}
	return nil
}

func addEntry(zw *zip.Writer, entry Entry) error {
	source, err := os.Open(entry.Path)
	if err != nil {
		return fmt.Errorf("open entry %s: %w", entry.Name, err)
	}
	defer source.Close()

	w, err := zw.Create(entry.Name)
	if err != nil {
		return fmt.Errorf("add entry %s: %w", entry.Name, err)
	}
	if _, err := io.Copy(w, source); err != nil {
		return fmt.Errorf("write entry %s: %w", entry.Name, err)
	}
	return nil
}
