package application

import (
	"context"
	"sync"
	"time"

	"github.com/avrel/mediapack/internal/domain"
	"github.com/avrel/mediapack/internal/naming"
)

// runState tracks the lifecycle of a session's pending finalize run.
type runState int

const (
	runIdle runState = iota
	runArmed
	runDraining
	runFinalized
)

// outcome records the result of one eager download. Committed outcomes
// survive run supersession: the surviving run reuses them instead of
// fetching again.
type outcome struct {
	path string
	err  error
}

// session is the mutable per-user record. Every field below mu is guarded
// by it; the session lock is the only synchronization for session state.
// A session is never reused across a finalize cycle: once closed it stays
// closed and the registry hands out a fresh one.
type session struct {
	user domain.UserID
	dest domain.Destination
	dir  string

	mu           sync.Mutex
	items        []domain.MediaItem
	names        *naming.Set
	targets      map[int]string
	outcomes     map[int]outcome
	inFlight     int
	lastActivity time.Time
	nextSeq      int
	cancelRun    context.CancelFunc
	state        runState
	closed       bool
}

func newSession(user domain.UserID, dest domain.Destination, dir string) *session {
	return &session{
		user:     user,
		dest:     dest,
		dir:      dir,
		names:    naming.NewSet(),
		targets:  make(map[int]string),
		outcomes: make(map[int]outcome),
	}
}

// finalizeSnapshot is the immutable view a finalize run operates on after
// it has closed the session.
type finalizeSnapshot struct {
	items    []domain.MediaItem
	targets  map[int]string
	outcomes map[int]outcome
	dest     domain.Destination
	dir      string
}

// enqueueAndArm appends a new item, supersedes any pending run, and arms a
// fresh one. The returned context belongs to the new run; its epoch is the
// updated lastActivity timestamp. Returns ok=false when the session has
// already been closed by a finalize run, in which case the caller must
// resolve a fresh session and retry.
func (s *session) enqueueAndArm(sub Submission, now time.Time) (item domain.MediaItem, target string, runCtx context.Context, epoch time.Time, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return domain.MediaItem{}, "", nil, time.Time{}, false
	}

	s.nextSeq++
	item = domain.MediaItem{
		Ref:      sub.Ref,
		Caption:  sub.Caption,
		MIMEType: sub.MIMEType,
		FileName: sub.FileName,
		Seq:      s.nextSeq,
		Dest:     sub.Dest,
	}
	// Target names are resolved here, under the lock, so collision
	// suffixes are deterministic in arrival order.
	target = s.names.Resolve(item.DisplayName(), naming.Extension(sub.FileName, sub.MIMEType))
	s.items = append(s.items, item)
	s.targets[item.Seq] = target
	s.lastActivity = now

	if s.cancelRun != nil {
		s.cancelRun()
	}
	runCtx, s.cancelRun = context.WithCancel(context.Background())
	s.state = runArmed

	return item, target, runCtx, now, true
}

func (s *session) beginDownload() {
	s.mu.Lock()
	s.inFlight++
	s.mu.Unlock()
}

func (s *session) finishDownload(seq int, o outcome) {
	s.mu.Lock()
	s.inFlight--
	s.outcomes[seq] = o
	s.mu.Unlock()
}

func (s *session) inFlightCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight
}

// beginDraining transitions ARMED → DRAINING if the run's epoch still
// matches. A mismatch means another arrival superseded the run.
func (s *session) beginDraining(epoch time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || !s.lastActivity.Equal(epoch) {
		return false
	}
	s.state = runDraining
	return true
}

// closeForFinalize atomically re-checks the epoch and closes the session.
// Closing and checking under one lock acquisition is what makes delivery
// exclusive to the surviving run: a later arrival cannot supersede a run
// that has reached FINALIZED, and a stale run cannot reach it at all.
func (s *session) closeForFinalize(epoch time.Time) (finalizeSnapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || !s.lastActivity.Equal(epoch) {
		return finalizeSnapshot{}, false
	}
	s.closed = true
	s.state = runFinalized
	s.cancelRun = nil

	snap := finalizeSnapshot{
		items:    append([]domain.MediaItem(nil), s.items...),
		targets:  make(map[int]string, len(s.targets)),
		outcomes: make(map[int]outcome, len(s.outcomes)),
		dest:     s.dest,
		dir:      s.dir,
	}
	for seq, target := range s.targets {
		snap.targets[seq] = target
	}
	for seq, o := range s.outcomes {
		snap.outcomes[seq] = o
	}
	return snap, true
}

// discard closes the session and cancels any pending run. Used for the
// explicit user discard signal.
func (s *session) discard() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	if s.cancelRun != nil {
		s.cancelRun()
		s.cancelRun = nil
	}
	s.items = nil
}

func (s *session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
