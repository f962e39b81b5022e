package archive

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// SplitVolumes splits the file at path into numbered parts of at most
// maxBytes each (`name.001`, `name.002`, ...), covering the source exactly
// once. The last part may be smaller. A non-positive maxBytes means "do
// not split": the original path is returned as the sole part. The source
// file is removed only after every part has been written.
func SplitVolumes(path string, maxBytes int64) ([]string, error) {
	if maxBytes <= 0 {
		return []string{path}, nil
	}

	source, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}
	defer source.Close()

	var parts []string
	for index := 1; ; index++ {
		partPath := fmt.Sprintf("%s.%03d", path, index)
		written, err := writePart(partPath, source, maxBytes)
		if err != nil {
			return nil, err
		}
		if written == 0 {
			_ = os.Remove(partPath)
			break
		}
		parts = append(parts, partPath)
		if written < maxBytes {
			break
		}
	}

	if len(parts) == 0 {
		// Empty source: nothing to split.
		return []string{path}, nil
	}

	if err := source.Close(); err != nil {
		return nil, fmt.Errorf("close source: %w", err)
	}
	if err := os.Remove(path); err != nil {
		return nil, fmt.Errorf("remove source: %w", err)
	}
	return parts, nil
}

func writePart(path string, source io.Reader, maxBytes int64) (int64, error) {
	part, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create part: %w", err)
	}

	written, err := io.CopyN(part, source, maxBytes)
	if err != nil && !errors.Is(err, io.EOF) {
		part.Close()
		return 0, fmt.Errorf("write part: %w", err)
	}
	if err := part.Close(); err != nil {
		return 0, fmt.Errorf("close part: %w", err)
	}
	return written, nil
}
