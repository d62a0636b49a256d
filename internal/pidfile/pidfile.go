// Cinedex - Film Catalog Search Index Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinedex

// Package pidfile guards against concurrent pipeline instances with a lock
// file holding the owning process id. Two instances sharing one watermark
// state file would double-load documents and race on cursor writes, so the
// second instance must refuse to start.
//
// A leftover file from a crashed run does not block startup: if the recorded
// process is no longer alive the lock is considered stale and replaced.
package pidfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/tomtom215/cinedex/internal/logging"
)

// ErrAlreadyRunning reports that a live process holds the lock.
var ErrAlreadyRunning = errors.New("another instance is already running")

// Lock is a held pidfile. Release it on shutdown.
type Lock struct {
	path string
}

// Acquire takes the single-instance lock at path, creating parent
// directories as needed. It returns ErrAlreadyRunning (wrapped with the
// owning pid) when the file names a process that is still alive. Stale and
// unreadable files are replaced.
func Acquire(path string) (*Lock, error) {
	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		pid, parseErr := strconv.Atoi(strings.TrimSpace(string(raw)))
		if parseErr != nil {
			logging.Warn().
				Str("path", path).
				Msg("Pidfile exists but is unreadable, replacing")
		} else if processAlive(pid) {
			return nil, fmt.Errorf("%w (pid %d, pidfile %s)", ErrAlreadyRunning, pid, path)
		} else {
			logging.Warn().
				Str("path", path).
				Int("pid", pid).
				Msg("Removing stale pidfile from dead process")
		}
	case os.IsNotExist(err):
		// Fresh start.
	default:
		return nil, fmt.Errorf("failed to read pidfile: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create pidfile directory: %w", err)
	}
	pid := strconv.Itoa(os.Getpid())
	if err := os.WriteFile(path, []byte(pid+"\n"), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write pidfile: %w", err)
	}

	return &Lock{path: path}, nil
}

// Release removes the lock file. Safe to call more than once.
func (l *Lock) Release() error {
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove pidfile: %w", err)
	}
	return nil
}

// Path returns the lock file location.
func (l *Lock) Path() string {
	return l.path
}

// processAlive probes pid with the null signal. EPERM means the process
// exists but belongs to another user, which still counts as alive.
func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	if err == nil {
		return true
	}
	return errors.Is(err, syscall.EPERM)
}
