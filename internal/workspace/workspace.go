// Package workspace manages the temporary working directories finalize
// runs download into. Each session owns exactly one directory; it is
// removed when the session is torn down.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/avrel/mediapack/internal/domain"
)

const dirMode = 0o700

// Root is the parent directory all session directories live under.
type Root struct {
	dir string
}

// New creates the root directory if needed and returns it.
func New(dir string) (*Root, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve work root: %w", err)
	}
	if err := os.MkdirAll(abs, dirMode); err != nil {
		return nil, fmt.Errorf("create work root: %w", err)
	}
	return &Root{dir: abs}, nil
}

// Dir returns the root path.
func (r *Root) Dir() string { return r.dir }

// SessionDir creates a fresh directory for one session. The uuid suffix
// keeps directories from consecutive sessions of the same user apart.
func (r *Root) SessionDir(user domain.UserID) (string, error) {
	dir := filepath.Join(r.dir, fmt.Sprintf("user_%d_%s", user, uuid.NewString()))
	if err := os.Mkdir(dir, dirMode); err != nil {
		return "", fmt.Errorf("create session directory: %w", err)
	}
	return dir, nil
}

// Remove deletes a session directory and everything in it.
func Remove(dir string) error {
	if dir == "" {
		return nil
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("remove session directory: %w", err)
	}
	return nil
}
