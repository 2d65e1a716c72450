package options

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWithDataDir_TrimsAndIgnoresEmpty(t *testing.T) {
	opts := NewDefaultOptions()
	WithDataDir("  /tmp/ignite  ")(&opts)
	assert.Equal(t, "/tmp/ignite", opts.DataDir)

	WithDataDir("   ")(&opts)
	assert.Equal(t, "/tmp/ignite", opts.DataDir, "blank directory must not overwrite a valid one")
}

func TestWithMaxFileSize_IgnoresOutOfRange(t *testing.T) {
	opts := NewDefaultOptions()

	WithMaxFileSize(MinMaxFileSize - 1)(&opts)
	assert.Equal(t, DefaultMaxFileSize, opts.MaxFileSize, "below-minimum size must be rejected")

	WithMaxFileSize(MaxMaxFileSize + 1)(&opts)
	assert.Equal(t, DefaultMaxFileSize, opts.MaxFileSize, "above-maximum size must be rejected")

	WithMaxFileSize(2 * 1024 * 1024)(&opts)
	assert.Equal(t, uint32(2*1024*1024), opts.MaxFileSize)
}

func TestWithSyncOnPut(t *testing.T) {
	opts := NewDefaultOptions()
	assert.False(t, opts.SyncOnPut)

	WithSyncOnPut(true)(&opts)
	assert.True(t, opts.SyncOnPut)
}

func TestWithExpiry(t *testing.T) {
	opts := NewDefaultOptions()
	WithExpiry(time.Hour)(&opts)
	assert.Equal(t, time.Hour, opts.Expiry)

	WithExpiry(-time.Second)(&opts)
	assert.Equal(t, time.Hour, opts.Expiry, "negative expiry must not overwrite a valid one")
}

func TestWithDefaultOptions_ResetsToBaseline(t *testing.T) {
	opts := Options{DataDir: "/custom", MaxFileSize: 99, SyncOnPut: true, Expiry: time.Minute}
	WithDefaultOptions()(&opts)

	assert.Equal(t, DefaultDataDir, opts.DataDir)
	assert.Equal(t, DefaultMaxFileSize, opts.MaxFileSize)
	assert.Equal(t, DefaultSyncOnPut, opts.SyncOnPut)
	assert.Equal(t, DefaultExpiry, opts.Expiry)
}
