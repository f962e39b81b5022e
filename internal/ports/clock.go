package ports

import "time"

// Clock abstracts wall-clock time so session epochs can be pinned in tests.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
