package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain name untouched", in: "holiday clip", want: "holiday clip"},
		{name: "colon becomes dash", in: "part: one", want: "part - one"},
		{name: "invalid chars become underscores", in: `a<b>c?d*e`, want: "a_b_c_d_e"},
		{name: "path separators neutralized", in: `../etc/passwd`, want: ".._etc_passwd"},
		{name: "whitespace trimmed", in: "  clip  ", want: "clip"},
		{name: "empty falls back", in: "", want: "video"},
		{name: "only invalid chars fall back to underscores", in: "???", want: "___"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

func TestExtension(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		mimeType string
		want     string
	}{
		{name: "declared suffix wins", fileName: "movie.mkv", mimeType: "video/mp4", want: ".mkv"},
		{name: "mime fallback", fileName: "", mimeType: "video/webm", want: ".webm"},
		{name: "mime mp3", fileName: "", mimeType: "audio/mpeg", want: ".mp3"},
		{name: "default mp4", fileName: "", mimeType: "", want: ".mp4"},
		{name: "declared name without suffix uses mime", fileName: "clip", mimeType: "image/png", want: ".png"},
		{name: "unknown mime defaults", fileName: "", mimeType: "application/octet-stream", want: ".mp4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Extension(tt.fileName, tt.mimeType))
		})
	}
}

func TestSetResolvesCollisionsInClaimOrder(t *testing.T) {
	s := NewSet()

	assert.Equal(t, "clip.mp4", s.Resolve("clip", ".mp4"))
	assert.Equal(t, "clip_01.mp4", s.Resolve("clip", ".mp4"))
	assert.Equal(t, "clip_02.mp4", s.Resolve("clip", ".mp4"))
}

func TestSetKeepsDistinctNamesApart(t *testing.T) {
	s := NewSet()

	assert.Equal(t, "a.mp4", s.Resolve("a", ".mp4"))
	assert.Equal(t, "a.webm", s.Resolve("a", ".webm"))
	assert.Equal(t, "b.mp4", s.Resolve("b", ".mp4"))
}

func TestSetSanitizesBeforeDeduplicating(t *testing.T) {
	s := NewSet()

	// Both captions collapse to the same sanitized base.
	assert.Equal(t, "a_b.mp4", s.Resolve("a?b", ".mp4"))
	assert.Equal(t, "a_b_01.mp4", s.Resolve("a*b", ".mp4"))
}
