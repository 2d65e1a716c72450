// Package engine provides the core database engine for Ignite: a
// single-writer, log-structured key-value store in the Bitcask tradition.
//
// The engine owns and coordinates four subsystems:
//   - lockfile: guarantees at most one process has the directory open
//   - recovery: rebuilds the in-memory index from data files on open
//   - index: the in-memory key directory mapping keys to disk locations
//   - logio: the append-only writer for the active file, plus a small
//     cache of read-only file handles for fetching values
//
// The engine implements a thread-safe interface with proper lifecycle
// management, using atomic operations for state so Close can only
// succeed once.
package engine

import (
	"context"
	stdErrors "errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ignitekv/ignite/internal/index"
	"github.com/ignitekv/ignite/internal/lockfile"
	"github.com/ignitekv/ignite/internal/logio"
	"github.com/ignitekv/ignite/internal/record"
	"github.com/ignitekv/ignite/internal/recovery"
	"github.com/ignitekv/ignite/pkg/errors"
	"github.com/ignitekv/ignite/pkg/filesys"
	"github.com/ignitekv/ignite/pkg/options"
	"go.uber.org/zap"
)

// ErrEngineClosed is returned when attempting to perform operations on a closed engine.
var ErrEngineClosed = stdErrors.New("operation failed: cannot access closed engine")

// IsKeyNotFound reports whether err is the structured not-found error Get
// returns when a key has no live entry, whether because it was never
// written, was deleted, or has expired.
func IsKeyNotFound(err error) bool {
	ie, ok := errors.AsIndexError(err)
	return ok && ie.Code() == errors.ErrorCodeIndexKeyNotFound
}

// Engine is the main database engine that coordinates all subsystems. It is
// safe for concurrent Get calls; Put and Delete are safe to call
// concurrently with Get but are internally serialized against each other so
// only one write reaches the active file at a time.
type Engine struct {
	options *options.Options
	log     *zap.SugaredLogger
	closed  atomic.Bool

	lock *lockfile.Lock
	idx  *index.Index

	writeMu sync.Mutex
	writer  *logio.Writer

	readersMu sync.Mutex
	readers   map[uint64]*logio.Reader
}

// Config holds all the parameters needed to initialize a new Engine instance.
type Config struct {
	Options *options.Options
	Logger  *zap.SugaredLogger
}

// New acquires the directory lock, recovers the index from whatever data
// files already exist, opens a fresh active file for writes, and seeds the
// reader cache with a reader for that active file. This
// constructor follows the dependency injection pattern, making the engine
// testable and allowing for different configurations in different
// environments.
func New(ctx context.Context, config *Config) (*Engine, error) {
	if config == nil || config.Options == nil || config.Logger == nil {
		return nil, errors.NewValidationError(
			nil, errors.ErrorCodeInvalidInput, "engine configuration is required",
		).WithField("config").WithRule("required").WithProvided(config)
	}

	dir := config.Options.DataDir

	if err := filesys.CreateDir(dir, 0755, true); err != nil {
		return nil, errors.ClassifyDirectoryCreationError(err, dir)
	}

	lock, err := lockfile.TryLock(dir)
	if err != nil {
		return nil, err
	}

	idx, err := index.New(ctx, &index.Config{DataDir: dir, Logger: config.Logger})
	if err != nil {
		lock.Close()
		return nil, err
	}

	result, err := recovery.Run(dir, idx, config.Logger)
	if err != nil {
		lock.Close()
		return nil, err
	}
	config.Logger.Infow("recovery complete", "keys", result.Keys, "maxFileID", result.MaxFileID)

	writer, err := logio.New(logio.Config{
		Dir:         dir,
		MaxFileSize: config.Options.MaxFileSize,
		SyncOnPut:   config.Options.SyncOnPut,
	}, idx, config.Logger, result.MaxFileID)
	if err != nil {
		lock.Close()
		return nil, err
	}

	activeReader, err := logio.NewReader(dir, writer.FileID())
	if err != nil {
		writer.Close()
		lock.Close()
		return nil, err
	}

	return &Engine{
		options: config.Options,
		log:     config.Logger,
		lock:    lock,
		idx:     idx,
		writer:  writer,
		readers: map[uint64]*logio.Reader{writer.FileID(): activeReader},
	}, nil
}

// Put writes key/val, expiring at expiresAt (an absolute Unix-second
// deadline; 0 disables per-key expiry). Writes are serialized against each
// other to keep the active file single-writer.
func (e *Engine) Put(key string, val []byte, expiresAt uint32) error {
	if e.closed.Load() {
		return ErrEngineClosed
	}

	e.writeMu.Lock()
	defer e.writeMu.Unlock()
	return e.writer.Put([]byte(key), val, expiresAt)
}

// Delete appends a tombstone for key and removes it from the index.
func (e *Engine) Delete(key string) error {
	if e.closed.Load() {
		return ErrEngineClosed
	}

	e.writeMu.Lock()
	defer e.writeMu.Unlock()
	return e.writer.Delete([]byte(key))
}

// Get looks up key in the index and, if found, fetches its value from
// disk. A tombstone value or an expired entry is treated as not found —
// and in the expired case, the key is opportunistically removed from the
// index and a tombstone is appended, so the space is reclaimed the same
// way an explicit Delete would reclaim it.
func (e *Engine) Get(key string) ([]byte, error) {
	if e.closed.Load() {
		return nil, ErrEngineClosed
	}

	entry, ok := e.idx.Get(key)
	if !ok {
		return nil, errors.NewKeyNotFoundError(key)
	}

	if e.isExpired(entry) {
		e.expireKey(key)
		return nil, errors.NewKeyNotFoundError(key).WithDetail("reason", "expired")
	}

	reader, err := e.readerFor(entry.FileID)
	if err != nil {
		return nil, err
	}

	val, err := reader.Read(int64(entry.ValOffset), entry.ValSize)
	if err != nil {
		return nil, err
	}

	if isTombstone(val) {
		return nil, errors.NewKeyNotFoundError(key).WithDetail("reason", "tombstoned")
	}

	return val, nil
}

func isTombstone(val []byte) bool {
	return len(val) == len(record.TombstoneValue) && val[0] == record.TombstoneValue[0]
}

// isExpired reports whether entry should be treated as gone. A per-key
// deadline installed by SetX (entry.ExpiresAt) takes priority when set; it
// lives only in the in-memory index and does not survive a restart. The
// store-wide default expiry is evaluated the other way around: it is never
// baked into a stored deadline, it is recomputed on every call from the
// record's on-disk write timestamp against the engine's current configured
// expiry, so it is exact even after recovery rebuilds the index from
// scratch.
func (e *Engine) isExpired(entry *index.Entry) bool {
	now := uint32(time.Now().Unix())
	if entry.ExpiresAt != 0 {
		return now >= entry.ExpiresAt
	}
	if e.options.Expiry <= 0 {
		return false
	}
	return now >= entry.Timestamp+uint32(e.options.Expiry.Seconds())
}

// expireKey upgrades a read discovering an expired key into a write: it
// takes the write lock, appends a tombstone, and drops the index entry.
// This is the one place a Get call can block on the writer, and only when
// the key it read has in fact expired.
func (e *Engine) expireKey(key string) {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	if _, ok := e.idx.Get(key); !ok {
		return
	}
	if err := e.writer.Delete([]byte(key)); err != nil {
		e.log.Warnw("failed to append expiry tombstone", "key", key, "error", err)
	}
}

// readerFor returns a cached read handle for fileID, opening and caching
// one on first use. The active file is included: it is opened read-only
// and independently positioned, so concurrent reads never interfere with
// the writer's append position.
func (e *Engine) readerFor(fileID uint64) (*logio.Reader, error) {
	e.readersMu.Lock()
	defer e.readersMu.Unlock()

	if r, ok := e.readers[fileID]; ok {
		return r, nil
	}

	r, err := logio.NewReader(e.options.DataDir, fileID)
	if err != nil {
		return nil, err
	}
	e.readers[fileID] = r
	return r, nil
}

// Close gracefully shuts down the engine: it stops accepting new
// operations, flushes and closes the active writer, closes every cached
// reader, closes the index, and finally releases the directory lock.
func (e *Engine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return ErrEngineClosed
	}

	var errs []error

	e.writeMu.Lock()
	if err := e.writer.Close(); err != nil {
		errs = append(errs, err)
	}
	e.writeMu.Unlock()

	e.readersMu.Lock()
	for id, r := range e.readers {
		if err := r.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(e.readers, id)
	}
	e.readersMu.Unlock()

	if err := e.idx.Close(); err != nil {
		errs = append(errs, err)
	}

	if err := e.lock.Close(); err != nil {
		errs = append(errs, err)
	}

	return stdErrors.Join(errs...)
}
