package errors

import stdErrors "errors"

// LockError is a specialized error type for directory-lock operations. It
// embeds baseError to inherit standard error functionality, then adds the
// context needed to diagnose lock contention or an unreadable lock file.
type LockError struct {
	*baseError
	path string // Path of the lock file involved.
	pid  int    // PID recorded in the lock file, if one was read.
}

// NewLockError creates a new lock-specific error.
func NewLockError(err error, code ErrorCode, msg string) *LockError {
	return &LockError{baseError: NewBaseError(err, code, msg)}
}

// WithMessage updates the error message while maintaining the LockError type.
func (le *LockError) WithMessage(msg string) *LockError {
	le.baseError.WithMessage(msg)
	return le
}

// WithCode sets the error code while preserving the LockError type.
func (le *LockError) WithCode(code ErrorCode) *LockError {
	le.baseError.WithCode(code)
	return le
}

// WithDetail adds contextual information while maintaining the LockError type.
func (le *LockError) WithDetail(key string, value any) *LockError {
	le.baseError.WithDetail(key, value)
	return le
}

// WithPath records which lock file was involved.
func (le *LockError) WithPath(path string) *LockError {
	le.path = path
	return le
}

// WithPID records the PID read from (or written to) the lock file.
func (le *LockError) WithPID(pid int) *LockError {
	le.pid = pid
	return le
}

// Path returns the lock file path.
func (le *LockError) Path() string {
	return le.path
}

// PID returns the PID associated with this error.
func (le *LockError) PID() int {
	return le.pid
}

// IsLockError checks if the given error is a LockError or contains one in
// its error chain.
func IsLockError(err error) bool {
	var le *LockError
	return stdErrors.As(err, &le)
}

// AsLockError extracts LockError context from an error chain.
func AsLockError(err error) (*LockError, bool) {
	var le *LockError
	if stdErrors.As(err, &le) {
		return le, true
	}
	return nil, false
}
