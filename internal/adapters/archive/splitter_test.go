package archive

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSource(t *testing.T, size int) (string, []byte) {
	t.Helper()

	data := make([]byte, size)
	_, err := rand.Read(data)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "media.zip")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path, data
}

func TestSplitVolumesRoundTrip(t *testing.T) {
	tests := []struct {
		name      string
		size      int
		maxBytes  int64
		wantParts int
	}{
		{name: "even split", size: 300, maxBytes: 100, wantParts: 3},
		{name: "uneven split leaves short tail", size: 250, maxBytes: 100, wantParts: 3},
		{name: "one byte over limit", size: 101, maxBytes: 100, wantParts: 2},
		{name: "limit larger than source", size: 50, maxBytes: 100, wantParts: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, data := writeSource(t, tt.size)

			parts, err := SplitVolumes(path, tt.maxBytes)
			require.NoError(t, err)
			require.Len(t, parts, tt.wantParts)

			var joined bytes.Buffer
			for i, part := range parts {
				assert.Equal(t, fmt.Sprintf("%s.%03d", path, i+1), part)
				chunk, err := os.ReadFile(part)
				require.NoError(t, err)
				assert.LessOrEqual(t, int64(len(chunk)), tt.maxBytes)
				joined.Write(chunk)
			}
			assert.Equal(t, data, joined.Bytes())
			assert.NoFileExists(t, path)
		})
	}
}

func TestSplitVolumesExactLimitSinglePart(t *testing.T) {
	path, data := writeSource(t, 100)

	parts, err := SplitVolumes(path, 100)
	require.NoError(t, err)
	require.Len(t, parts, 1)

	chunk, err := os.ReadFile(parts[0])
	require.NoError(t, err)
	assert.Equal(t, data, chunk)
}

func TestSplitVolumesNonPositiveLimitReturnsSource(t *testing.T) {
	path, _ := writeSource(t, 100)

	for _, limit := range []int64{0, -1} {
		parts, err := SplitVolumes(path, limit)
		require.NoError(t, err)
		require.Equal(t, []string{path}, parts)
		assert.FileExists(t, path)
	}
}

func TestSplitVolumesEmptySourceNotSplit(t *testing.T) {
	path, _ := writeSource(t, 0)

	parts, err := SplitVolumes(path, 100)
	require.NoError(t, err)
	require.Equal(t, []string{path}, parts)
	assert.FileExists(t, path)
}

func TestSplitVolumesIsRestartable(t *testing.T) {
	path, data := writeSource(t, 250)

	// A previous interrupted attempt left a stale part behind.
	require.NoError(t, os.WriteFile(path+".001", []byte("stale"), 0o600))

	parts, err := SplitVolumes(path, 100)
	require.NoError(t, err)
	require.Len(t, parts, 3)

	var joined bytes.Buffer
	for _, part := range parts {
		chunk, err := os.ReadFile(part)
		require.NoError(t, err)
		joined.Write(chunk)
	}
	assert.Equal(t, data, joined.Bytes())
}
