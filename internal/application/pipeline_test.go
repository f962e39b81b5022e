package application

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/avrel/mediapack/internal/domain"
	"github.com/avrel/mediapack/internal/ports/mocks"
	"github.com/avrel/mediapack/internal/workspace"
)

// testOptions keeps the debounce timings short enough for tests while
// preserving their ordering (quiet period > 0, drain poll < drain wait).
func testOptions() Options {
	return Options{
		QuietPeriod:     40 * time.Millisecond,
		DownloadTimeout: time.Second,
		MaxDrainWait:    2 * time.Second,
		DrainPoll:       5 * time.Millisecond,
	}
}

func newTestPipeline(t *testing.T, transport *mocks.MockTransport, opts Options) (*Pipeline, string) {
	t.Helper()
	dir := t.TempDir()
	root, err := workspace.New(dir)
	require.NoError(t, err)
	return NewPipeline(transport, nil, root, opts, nil), dir
}

// deliveries records each delivered volume. The volume file is read
// inside the Deliver call because finalize removes the work directory
// right after delivery.
type deliveries struct {
	mu      sync.Mutex
	volumes []domain.ArchiveVolume
	data    [][]byte
}

func (d *deliveries) expect(t *testing.T, transport *mocks.MockTransport) {
	t.Helper()
	transport.EXPECT().Deliver(mock.Anything, mock.Anything, mock.Anything).
		RunAndReturn(func(_ context.Context, _ domain.Destination, v domain.ArchiveVolume) error {
			raw, err := os.ReadFile(v.Path)
			require.NoError(t, err)
			d.mu.Lock()
			d.volumes = append(d.volumes, v)
			d.data = append(d.data, raw)
			d.mu.Unlock()
			return nil
		})
}

func (d *deliveries) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.volumes)
}

func staticFetch(body string) func(context.Context, domain.MediaRef) (io.ReadCloser, error) {
	return func(context.Context, domain.MediaRef) (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader([]byte(body))), nil
	}
}

func zipNames(t *testing.T, raw []byte) []string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	require.NoError(t, err)
	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	return names
}

func TestBurstDeliveredAsSingleArchive(t *testing.T) {
	transport := mocks.NewMockTransport(t)
	transport.EXPECT().Fetch(mock.Anything, mock.Anything).RunAndReturn(staticFetch("payload")).Times(3)

	var got deliveries
	got.expect(t, transport)

	p, workDir := newTestPipeline(t, transport, testOptions())

	ctx := context.Background()
	for i := 1; i <= 3; i++ {
		require.NoError(t, p.Submit(ctx, Submission{
			User:    7,
			Dest:    70,
			Ref:     domain.MediaRef(fmt.Sprintf("ref-%d", i)),
			Caption: fmt.Sprintf("clip %d", i),
		}))
	}
	p.Wait()

	require.Equal(t, 1, got.count(), "one burst, one delivery")
	assert.Equal(t, []string{"clip 1.mp4", "clip 2.mp4", "clip 3.mp4"}, zipNames(t, got.data[0]))
	assert.Equal(t, 1, got.volumes[0].Total)

	// The session and its working directory are gone after finalize.
	assert.Equal(t, 0, p.Sessions())
	entries, err := os.ReadDir(workDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestArrivalDuringDrainJoinsTheBurst(t *testing.T) {
	release := make(chan struct{})
	transport := mocks.NewMockTransport(t)
	transport.EXPECT().Fetch(mock.Anything, domain.MediaRef("slow")).
		RunAndReturn(func(context.Context, domain.MediaRef) (io.ReadCloser, error) {
			<-release
			return io.NopCloser(bytes.NewReader([]byte("slow payload"))), nil
		}).Once()
	transport.EXPECT().Fetch(mock.Anything, domain.MediaRef("fast")).
		RunAndReturn(staticFetch("fast payload")).Once()

	var got deliveries
	got.expect(t, transport)

	p, _ := newTestPipeline(t, transport, testOptions())
	ctx := context.Background()

	require.NoError(t, p.Submit(ctx, Submission{User: 7, Dest: 70, Ref: "slow", Caption: "first"}))

	// Let the first run outlast its quiet period and block in the drain
	// on the slow download, then submit again. The second arrival must
	// supersede the first run; only one combined delivery may happen.
	time.Sleep(2 * testOptions().QuietPeriod)
	require.NoError(t, p.Submit(ctx, Submission{User: 7, Dest: 70, Ref: "fast", Caption: "second"}))
	close(release)

	p.Wait()

	require.Equal(t, 1, got.count(), "superseded run must not deliver")
	assert.Equal(t, []string{"first.mp4", "second.mp4"}, zipNames(t, got.data[0]))
}

func TestFailedDownloadReportedOthersArchived(t *testing.T) {
	transport := mocks.NewMockTransport(t)
	transport.EXPECT().Fetch(mock.Anything, domain.MediaRef("ok-1")).RunAndReturn(staticFetch("a")).Once()
	transport.EXPECT().Fetch(mock.Anything, domain.MediaRef("broken")).
		Return(nil, errors.New("source gone")).Once()
	transport.EXPECT().Fetch(mock.Anything, domain.MediaRef("ok-2")).RunAndReturn(staticFetch("b")).Once()
	transport.EXPECT().NotifyUnprocessed(mock.Anything, domain.Destination(70), domain.MediaRef("broken"), "bad").
		Return(nil).Once()

	var got deliveries
	got.expect(t, transport)

	p, _ := newTestPipeline(t, transport, testOptions())
	ctx := context.Background()
	require.NoError(t, p.Submit(ctx, Submission{User: 7, Dest: 70, Ref: "ok-1", Caption: "one"}))
	require.NoError(t, p.Submit(ctx, Submission{User: 7, Dest: 70, Ref: "broken", Caption: "bad"}))
	require.NoError(t, p.Submit(ctx, Submission{User: 7, Dest: 70, Ref: "ok-2", Caption: "two"}))
	p.Wait()

	require.Equal(t, 1, got.count())
	assert.Equal(t, []string{"one.mp4", "two.mp4"}, zipNames(t, got.data[0]))
}

func TestAllDownloadsFailedMeansNoDelivery(t *testing.T) {
	transport := mocks.NewMockTransport(t)
	transport.EXPECT().Fetch(mock.Anything, domain.MediaRef("broken")).
		Return(nil, errors.New("source gone")).Once()
	transport.EXPECT().NotifyUnprocessed(mock.Anything, domain.Destination(70), domain.MediaRef("broken"), "").
		Return(nil).Once()
	// No Deliver expectation: an empty burst produces no archive.

	p, _ := newTestPipeline(t, transport, testOptions())
	require.NoError(t, p.Submit(context.Background(), Submission{User: 7, Dest: 70, Ref: "broken"}))
	p.Wait()

	assert.Equal(t, 0, p.Sessions())
}

func TestDuplicateNamesGetCollisionSuffixes(t *testing.T) {
	transport := mocks.NewMockTransport(t)
	transport.EXPECT().Fetch(mock.Anything, mock.Anything).RunAndReturn(staticFetch("x")).Times(2)

	var got deliveries
	got.expect(t, transport)

	p, _ := newTestPipeline(t, transport, testOptions())
	ctx := context.Background()
	require.NoError(t, p.Submit(ctx, Submission{User: 7, Dest: 70, Ref: "r1", Caption: "clip", FileName: "clip.mp4"}))
	require.NoError(t, p.Submit(ctx, Submission{User: 7, Dest: 70, Ref: "r2", Caption: "clip", FileName: "clip.mp4"}))
	p.Wait()

	require.Equal(t, 1, got.count())
	assert.Equal(t, []string{"clip.mp4", "clip_01.mp4"}, zipNames(t, got.data[0]))
}

func TestVolumeSplittingAndCaptions(t *testing.T) {
	// Random bytes so deflate cannot shrink the archive below the limit.
	payload := make([]byte, 64<<10)
	_, err := rand.Read(payload)
	require.NoError(t, err)
	opts := testOptions()
	opts.VolumeLimit = 16 << 10

	transport := mocks.NewMockTransport(t)
	transport.EXPECT().Fetch(mock.Anything, mock.Anything).
		RunAndReturn(func(context.Context, domain.MediaRef) (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(payload)), nil
		}).Once()

	var got deliveries
	got.expect(t, transport)

	p, _ := newTestPipeline(t, transport, opts)
	require.NoError(t, p.Submit(context.Background(), Submission{User: 7, Dest: 70, Ref: "big"}))
	p.Wait()

	require.Greater(t, got.count(), 1, "archive above the limit must be split")
	var reassembled []byte
	for i, v := range got.volumes {
		assert.Equal(t, i+1, v.Index)
		assert.Equal(t, got.count(), v.Total)
		assert.LessOrEqual(t, v.Size, opts.VolumeLimit)
		assert.Equal(t, fmt.Sprintf("media.zip.%03d", i+1), v.Name)
		reassembled = append(reassembled, got.data[i]...)
	}
	assert.Equal(t, []string{"video_01.mp4"}, zipNames(t, reassembled))
}

func TestDiscardDropsPendingBurst(t *testing.T) {
	done := make(chan struct{})
	transport := mocks.NewMockTransport(t)
	transport.EXPECT().Fetch(mock.Anything, mock.Anything).
		RunAndReturn(func(context.Context, domain.MediaRef) (io.ReadCloser, error) {
			defer close(done)
			return io.NopCloser(bytes.NewReader([]byte("x"))), nil
		}).Once()
	// No Deliver and no NotifyUnprocessed: a discarded burst is silent.

	p, workDir := newTestPipeline(t, transport, testOptions())
	require.NoError(t, p.Submit(context.Background(), Submission{User: 7, Dest: 70, Ref: "r1"}))
	<-done

	p.Discard(7)
	p.Discard(7)
	p.Wait()

	assert.Equal(t, 0, p.Sessions())
	entries, err := os.ReadDir(workDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUsersAreIsolated(t *testing.T) {
	transport := mocks.NewMockTransport(t)
	transport.EXPECT().Fetch(mock.Anything, mock.Anything).RunAndReturn(staticFetch("x")).Times(2)

	var got deliveries
	got.expect(t, transport)

	p, _ := newTestPipeline(t, transport, testOptions())
	ctx := context.Background()
	require.NoError(t, p.Submit(ctx, Submission{User: 1, Dest: 10, Ref: "a", Caption: "mine"}))
	require.NoError(t, p.Submit(ctx, Submission{User: 2, Dest: 20, Ref: "b", Caption: "yours"}))
	p.Wait()

	require.Equal(t, 2, got.count(), "each user gets their own archive")
	for _, raw := range got.data {
		assert.Len(t, zipNames(t, raw), 1)
	}
}

func TestSubmitStampsActivityFromClock(t *testing.T) {
	stamp := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	clock := mocks.NewMockClock(t)
	clock.EXPECT().Now().Return(stamp).Once()

	done := make(chan struct{})
	transport := mocks.NewMockTransport(t)
	transport.EXPECT().Fetch(mock.Anything, mock.Anything).
		RunAndReturn(func(context.Context, domain.MediaRef) (io.ReadCloser, error) {
			defer close(done)
			return io.NopCloser(bytes.NewReader([]byte("x"))), nil
		}).Once()

	opts := testOptions()
	opts.QuietPeriod = time.Minute
	root, err := workspace.New(t.TempDir())
	require.NoError(t, err)
	p := NewPipeline(transport, clock, root, opts, nil)

	require.NoError(t, p.Submit(context.Background(), Submission{User: 7, Dest: 70, Ref: "r1"}))
	<-done

	s, err := p.registry.Resolve(7, 70)
	require.NoError(t, err)
	s.mu.Lock()
	assert.True(t, stamp.Equal(s.lastActivity))
	s.mu.Unlock()

	p.Discard(7)
	p.Wait()
}

func TestSubmitRejectsEmptyRef(t *testing.T) {
	transport := mocks.NewMockTransport(t)
	p, _ := newTestPipeline(t, transport, testOptions())
	assert.Error(t, p.Submit(context.Background(), Submission{User: 1, Dest: 10}))
}
