// Package naming resolves the on-disk and in-archive file names for
// downloaded media: caption-derived base names, extension fallbacks, and
// deterministic collision suffixes within one finalize run.
package naming

import (
	"fmt"
	"path/filepath"
	"strings"
)

const fallbackBase = "video"

// invalidChars are characters rejected by common filesystems; the colon
// gets a readable replacement, the rest collapse to underscores.
const invalidChars = `<>:"/\|?*`

// Sanitize maps an arbitrary caption to a usable file base name.
func Sanitize(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r == ':':
			b.WriteString(" -")
		case strings.ContainsRune(invalidChars, r):
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}
	candidate := strings.TrimSpace(b.String())
	if candidate == "" {
		return fallbackBase
	}
	return candidate
}

// Extension resolves the file extension for an item: the declared file
// name's suffix wins, then a MIME-derived suffix, then ".mp4".
func Extension(fileName, mimeType string) string {
	if fileName != "" {
		if suffix := filepath.Ext(fileName); suffix != "" {
			return suffix
		}
	}
	if ext := mimeExtension(mimeType); ext != "" {
		return ext
	}
	return ".mp4"
}

func mimeExtension(mimeType string) string {
	mimeType = strings.ToLower(mimeType)
	switch {
	case strings.Contains(mimeType, "mp4"):
		return ".mp4"
	case strings.Contains(mimeType, "webm"):
		return ".webm"
	case strings.Contains(mimeType, "ogg"):
		return ".ogg"
	case strings.Contains(mimeType, "mpeg"), strings.Contains(mimeType, "mp3"):
		return ".mp3"
	case strings.Contains(mimeType, "jpeg"), strings.Contains(mimeType, "jpg"):
		return ".jpg"
	case strings.Contains(mimeType, "png"):
		return ".png"
	default:
		return ""
	}
}

// Set tracks target names claimed within one run and resolves collisions
// by appending a zero-padded numeric suffix before the extension. Not
// safe for concurrent use; callers serialize on the session lock.
type Set struct {
	used map[string]struct{}
}

func NewSet() *Set {
	return &Set{used: make(map[string]struct{})}
}

// Resolve claims and returns a unique file name for the given raw base
// name and extension. Deterministic given a fixed claim order.
func (s *Set) Resolve(base, ext string) string {
	sanitized := Sanitize(base)
	candidate := sanitized + ext
	for suffix := 1; ; suffix++ {
		if _, taken := s.used[candidate]; !taken {
			break
		}
		candidate = fmt.Sprintf("%s_%02d%s", sanitized, suffix, ext)
	}
	s.used[candidate] = struct{}{}
	return candidate
}
