package application

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/avrel/mediapack/internal/domain"
	"github.com/avrel/mediapack/internal/workspace"
)

// Registry owns the process-wide mapping from user identity to at most
// one live session. It is the only process-wide mutable structure; its
// lock guards the map, each session's lock guards the session.
type Registry struct {
	workRoot *workspace.Root
	logger   *slog.Logger

	mu       sync.Mutex
	sessions map[domain.UserID]*session
}

func NewRegistry(workRoot *workspace.Root, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Registry{
		workRoot: workRoot,
		logger:   logger,
		sessions: make(map[domain.UserID]*session),
	}
}

// Resolve returns the live session for the user, creating one (with a
// fresh working directory) when none exists or when the previous one has
// already been closed by a finalize run.
func (r *Registry) Resolve(user domain.UserID, dest domain.Destination) (*session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[user]; ok && !s.isClosed() {
		return s, nil
	}

	dir, err := r.workRoot.SessionDir(user)
	if err != nil {
		return nil, fmt.Errorf("resolve session: %w", err)
	}
	s := newSession(user, dest, dir)
	r.sessions[user] = s
	r.logger.Debug("session created", "user_id", int64(user), "dir", dir)
	return s, nil
}

// Discard cancels any pending run, drops the session, and removes its
// working directory. Discarding a non-existent session is a no-op.
func (r *Registry) Discard(user domain.UserID) {
	r.mu.Lock()
	s, ok := r.sessions[user]
	if ok {
		delete(r.sessions, user)
	}
	r.mu.Unlock()

	if !ok {
		return
	}
	s.discard()
	if err := workspace.Remove(s.dir); err != nil {
		r.logger.Error("work directory cleanup failed", "user_id", int64(user), "error", err)
	}
	r.logger.Info("session discarded", "user_id", int64(user))
}

// drop removes the entry only if it still maps to s, so a finalize run
// tearing down cannot evict a successor session created meanwhile.
func (r *Registry) drop(s *session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.sessions[s.user]; ok && current == s {
		delete(r.sessions, s.user)
	}
}

// Len reports the number of registered sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
