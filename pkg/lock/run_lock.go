package lock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/apex/log"
	"github.com/tus/lockfile"
)

var ErrLocked = errors.New("another run holds the lock")

// RunLock is a PID file that keeps two runs of the same operation from
// overlapping. A lock left behind by a process that has exited is reclaimed.
type RunLock struct {
	path string
	lf   lockfile.Lockfile
}

// PathFor returns the lock file path for an operation.
func PathFor(dir, op string) string {
	return filepath.Join(dir, fmt.Sprintf("seqsync-%s.pid", op))
}

func NewRunLock(dir, op string) (*RunLock, error) {
	path, err := filepath.Abs(PathFor(dir, op))
	if err != nil {
		return nil, err
	}

	lf, err := lockfile.New(path)
	if err != nil {
		return nil, err
	}

	return &RunLock{path: path, lf: lf}, nil
}

func (l *RunLock) Path() string {
	return l.path
}

// Acquire takes the lock. If the recorded owner is no longer running, the lock
// is reclaimed with a warning.
func (l *RunLock) Acquire() error {
	owner := l.recordedOwner()
	switch _, err := l.lf.GetOwner(); {
	case errors.Is(err, lockfile.ErrDeadOwner):
		log.Warnf("Lock %s held by process %s which is no longer running, reclaiming", l.path, owner)
	case errors.Is(err, lockfile.ErrInvalidPid):
		log.Warnf("Lock %s holds invalid pid %q, reclaiming", l.path, owner)
	}

	err := l.lf.TryLock()
	switch {
	case err == nil:
		return nil
	case errors.Is(err, lockfile.ErrBusy):
		return fmt.Errorf("%w: %s owned by process %s", ErrLocked, l.path, l.recordedOwner())
	default:
		return fmt.Errorf("unable to lock %s: %w", l.path, err)
	}
}

// Release removes the lock file. A lock that vanished during the run is
// reported but not treated as an error.
func (l *RunLock) Release() {
	switch err := l.lf.Unlock(); {
	case err == nil:
	case errors.Is(err, lockfile.ErrRogueDeletion), os.IsNotExist(err):
		log.Warnf("Lock %s removed before the run completed", l.path)
	default:
		log.Errorf("Unable to release lock %s: %s", l.path, err)
	}
}

func (l *RunLock) recordedOwner() string {
	contents, err := os.ReadFile(l.path)
	if err != nil {
		return "unknown"
	}

	return strings.TrimSpace(string(contents))
}
