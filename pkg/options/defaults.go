package options

import "time"

const (
	// DefaultDataDir is the directory Ignite stores its data and lock files in
	// when no directory is supplied explicitly.
	DefaultDataDir = "/var/lib/ignitedb"

	// DefaultMaxFileSize is the active-file rollover threshold: 1 MiB. Once an
	// append has pushed the active file past this size, a new active file is
	// opened for the writes that follow.
	DefaultMaxFileSize uint32 = 1 * 1024 * 1024

	// MinMaxFileSize and MaxMaxFileSize bound the configurable rollover
	// threshold to sane values: too small thrashes file creation, too large
	// defeats the point of bounding recovery replay cost.
	MinMaxFileSize uint32 = 64 * 1024
	MaxMaxFileSize uint32 = 512 * 1024 * 1024

	// DefaultSyncOnPut leaves fsync-per-write off by default, trading a small
	// durability window for throughput.
	DefaultSyncOnPut = false

	// DefaultExpiry is the store-wide default time-to-live applied uniformly
	// to every key, evaluated against each record's write timestamp. Zero
	// means keys never expire unless SetX installs an explicit per-key one.
	DefaultExpiry time.Duration = 0
)

// Holds the default configuration settings for an Ignite instance.
var defaultOptions = Options{
	DataDir:     DefaultDataDir,
	MaxFileSize: DefaultMaxFileSize,
	SyncOnPut:   DefaultSyncOnPut,
	Expiry:      DefaultExpiry,
}

// NewDefaultOptions returns a copy of Ignite's baseline configuration.
func NewDefaultOptions() Options {
	return defaultOptions
}
