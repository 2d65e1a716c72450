// Package index provides the in-memory hash table implementation for the ignite key-value store.
// This package embodies the core Bitcask architectural principle: maintain all keys in memory
// with minimal metadata while storing actual values on disk for optimal memory utilization.
//
// The index enables O(1) key lookups through an in-memory hash table while keeping
// storage overhead minimal. This allows the system to handle datasets significantly
// larger than available RAM while maintaining excellent read performance characteristics.
//
// The index is the one shared mutable structure in the engine: the write path holds
// it exclusively while inserting or removing an entry, the read path holds it shared
// while looking up. Tombstones are represented by absence from the map, except for
// entries recovery inserted verbatim for a value equal to the tombstone marker — see
// the note in internal/recovery's replay function for why.
package index

import (
	"context"
	stdErrors "errors"
	"sync"
	"sync/atomic"

	"github.com/ignitekv/ignite/pkg/errors"
	"go.uber.org/zap"
)

var (
	ErrIndexClosed = stdErrors.New("operation failed: cannot access closed index")
)

// Index represents the in-memory hash table that maps keys to their disk locations.
type Index struct {
	dataDir string             // Contains the filesystem path where data files are stored.
	log     *zap.SugaredLogger // Provides structured logging capabilities.
	entries map[string]*Entry  // Maintains the core mapping from keys to their disk locations.
	mu      sync.RWMutex       // Protects concurrent access to the entries map.
	closed  atomic.Bool        // Indicates whether the index has been closed.
}

// Config encapsulates the configuration parameters required to initialize an Index.
type Config struct {
	DataDir string             // Specifies the filesystem directory containing data files.
	Logger  *zap.SugaredLogger // Provides structured logging capabilities for Index operations.
}

// New creates and initializes a new Index instance configured according to the
// provided parameters. The returned Index is immediately ready for concurrent
// use and includes optimizations like pre-allocated map capacity.
func New(ctx context.Context, config *Config) (*Index, error) {
	if config == nil || config.DataDir == "" || config.Logger == nil {
		return nil, errors.NewValidationError(
			nil, errors.ErrorCodeInvalidInput, "Index configuration is required",
		).WithField("config").WithRule("required").WithProvided(config)
	}

	return &Index{
		log:     config.Logger,
		dataDir: config.DataDir,
		entries: make(map[string]*Entry, 1024),
	}, nil
}

// Get returns the entry for key, if a live entry exists.
func (idx *Index) Get(key string) (*Entry, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	e, ok := idx.entries[key]
	return e, ok
}

// Put unconditionally installs entry for key, overwriting any prior value.
// Insertion order is irrelevant; the entry always reflects the most recent
// write or tombstone observed for that key.
func (idx *Index) Put(key string, entry *Entry) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.entries[key] = entry
}

// Delete removes key from the index. It is a no-op if the key is absent.
func (idx *Index) Delete(key string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	delete(idx.entries, key)
}

// Len returns the number of keys currently tracked by the index.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.entries)
}

// Close gracefully shuts down the Index, cleaning up resources and ensuring
// that the index cannot be used after closure.
func (idx *Index) Close() error {
	// Use atomic compare-and-swap to safely check and update the closed state.
	if !idx.closed.CompareAndSwap(false, true) {
		return ErrIndexClosed
	}

	idx.log.Infow("Closing index system")

	idx.mu.Lock()
	defer idx.mu.Unlock()

	// Clear the entries map to release all memory associated with the index entries.
	clear(idx.entries)
	idx.entries = nil

	idx.log.Infow("Index system closed successfully")
	return nil
}
