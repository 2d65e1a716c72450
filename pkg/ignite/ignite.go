// Package ignite provides a high-performance key/value data store
// designed for fast read and write operations, inspired by Bitcask.
// It combines an in-memory hash table (KeyDir/Index) with an append-only log
// structure on disk to achieve high throughput. It is designed for applications
// requiring fast read and write operations, such as caching, session management,
// and real-time data processing, aiming to provide a simple, efficient, and
// reliable solution for persistent key/value storage in Go applications.
package ignite

import (
	"context"
	"time"

	"github.com/ignitekv/ignite/internal/engine"
	"github.com/ignitekv/ignite/pkg/logger"
	"github.com/ignitekv/ignite/pkg/options"
)

// Represents an instance of the Ignite key/value data store.
// It encapsulates the core engine responsible for data handling and
// the configuration options for this specific database instance.
//
// Instance is the primary entry point for interacting with the Ignite store,
// providing methods for setting, getting, and deleting key-value pairs.
type Instance struct {
	engine *engine.Engine // The underlying database engine handling read/write operations.
}

// Creates and initializes a new Ignite DB instance.
func NewInstance(ctx context.Context, service string, opts ...options.OptionFunc) (*Instance, error) {
	// Initialize a logger for the given service.
	log := logger.New(service)

	// Initialize default options.
	defaultOpts := options.NewDefaultOptions()

	// Apply any provided functional options to override defaults.
	if len(opts) > 0 {
		for _, opt := range opts {
			opt(&defaultOpts)
		}
	}

	// Create a new internal engine with the initialized logger.
	eng, err := engine.New(ctx, &engine.Config{Logger: log, Options: &defaultOpts})
	if err != nil {
		return nil, err
	}

	return &Instance{engine: eng}, nil
}

// Set stores a key-value pair in the database.
// If the key already exists, its value will be updated.
// The record is appended to the log; it is fsynced before Set returns only
// when the instance was configured with SyncOnPut.
// If the instance was configured with a non-zero default expiry, the
// engine applies it to every key uniformly, recomputed from each record's
// write timestamp rather than stored per key — so it survives a restart.
func (i *Instance) Set(ctx context.Context, key string, value []byte) error {
	return i.engine.Put(key, value, 0)
}

// SetX stores a key-value pair with a per-key expiration time, overriding
// whatever default expiry the instance was configured with. The entry is
// inaccessible once the given duration from now elapses. If the key
// already exists, its value and expiry are both replaced. A non-positive
// expiry falls back to Set's behavior (the instance's default expiry, if
// any). Unlike the instance-wide default, a per-key expiry is tracked only
// in the in-memory index and does not survive a process restart.
func (i *Instance) SetX(ctx context.Context, key string, value []byte, expiry time.Duration) error {
	if expiry <= 0 {
		return i.Set(ctx, key, value)
	}
	expiresAt := uint32(time.Now().Add(expiry).Unix())
	return i.engine.Put(key, value, expiresAt)
}

// Get retrieves the value associated with the given key. Use
// engine.IsKeyNotFound on the returned error to detect a key that was
// never written, was deleted, or has expired.
func (i *Instance) Get(ctx context.Context, key string) ([]byte, error) {
	return i.engine.Get(key)
}

// Delete removes a key-value pair from the database by appending a
// tombstone record and dropping the key from the in-memory index.
func (i *Instance) Delete(ctx context.Context, key string) error {
	return i.engine.Delete(key)
}

// Close gracefully shuts down the Ignite DB instance, releasing all
// associated resources, flushing any pending writes, and ensuring data
// durability.
func (i *Instance) Close(ctx context.Context) error {
	return i.engine.Close()
}
