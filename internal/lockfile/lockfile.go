// Package lockfile implements the single-process directory lock that
// guards a Bitcask data directory: at most one process may have it open for
// writing at a time.
//
// The lock file, pid.lock, is created exclusively on first open and holds
// the owning process's PID in ASCII decimal. A second opener finds the file
// already there, takes an OS-level advisory lock on it, and probes the
// recorded PID with a null signal to decide whether the original owner is
// still alive. Release is implicit at process exit: the OS-level lock drops
// when the process dies, and the next opener takes over the stale file.
package lockfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ignitekv/ignite/pkg/errors"
	"github.com/natefinch/atomic"
	"golang.org/x/sys/unix"
)

const lockFileName = "pid.lock"

// Lock represents a held directory lock. Call Close to release it.
type Lock struct {
	file *os.File
	path string
}

// TryLock acquires the directory lock for dir: create-and-lock if no lock
// file exists yet, otherwise contend for the existing one and reclaim it
// if its recorded owner is no longer alive.
func TryLock(dir string) (*Lock, error) {
	path := filepath.Join(dir, lockFileName)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0644)
	if err == nil {
		if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
			f.Close()
			return nil, errors.NewLockError(err, errors.ErrorCodeLockContention, "failed to lock newly created lock file").WithPath(path)
		}
		if err := writePID(f); err != nil {
			f.Close()
			return nil, err
		}
		return &Lock{file: f, path: path}, nil
	}
	if !os.IsExist(err) {
		return nil, errors.NewLockError(err, errors.ErrorCodeIO, "failed to create lock file").WithPath(path)
	}

	return takeOverStaleLock(path)
}

func takeOverStaleLock(path string) (*Lock, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0644)
	if err != nil {
		return nil, errors.NewLockError(err, errors.ErrorCodeIO, "failed to open existing lock file").WithPath(path)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		return nil, errors.NewLockError(err, errors.ErrorCodeLockContention, "process already running").WithPath(path)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		f.Close()
		return nil, errors.NewLockError(err, errors.ErrorCodeIO, "failed to read PID from lock file").WithPath(path)
	}

	pidStr := strings.TrimSpace(string(raw))
	if pidStr == "" {
		f.Close()
		return nil, errors.NewLockError(nil, errors.ErrorCodeLockStale, "cannot read PID from lock file").WithPath(path)
	}

	pid, err := strconv.Atoi(pidStr)
	if err != nil {
		f.Close()
		return nil, errors.NewLockError(err, errors.ErrorCodeLockStale, "cannot parse PID from lock file").
			WithPath(path).WithDetail("rawPID", pidStr)
	}

	// Our own PID with the advisory lock free means an earlier Lock in this
	// process was closed; that lock is released, so it is reclaimed too.
	if pid != os.Getpid() && processAlive(pid) {
		f.Close()
		return nil, errors.NewLockError(nil, errors.ErrorCodeLockContention, "process already running").
			WithPath(path).WithPID(pid)
	}

	// Stale lock: the recorded owner is gone. Reclaim it by overwriting the
	// PID atomically, so a concurrent reader never observes a torn value.
	if err := atomic.WriteFile(path, strings.NewReader(fmt.Sprintf("%d", os.Getpid()))); err != nil {
		f.Close()
		return nil, errors.NewLockError(err, errors.ErrorCodeIO, "failed to overwrite stale lock file").WithPath(path)
	}

	return &Lock{file: f, path: path}, nil
}

func writePID(f *os.File) error {
	if _, err := f.WriteString(strconv.Itoa(os.Getpid())); err != nil {
		return errors.NewLockError(err, errors.ErrorCodeIO, "failed to write PID to lock file").WithPath(f.Name())
	}
	if err := f.Sync(); err != nil {
		return errors.NewLockError(err, errors.ErrorCodeIO, "failed to sync lock file").WithPath(f.Name())
	}
	return nil
}

// processAlive reports whether pid refers to a live process by sending it
// the null signal — this performs the kernel's existence check without
// actually signaling the process.
func processAlive(pid int) bool {
	return unix.Kill(pid, 0) == nil
}

// Close releases the lock. The OS-level advisory lock drops; the lock file
// itself is left in place with its PID content, so the next opener will
// observe it and take over.
func (l *Lock) Close() error {
	return l.file.Close()
}
