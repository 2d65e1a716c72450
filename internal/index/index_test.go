package index

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := New(context.Background(), &Config{DataDir: t.TempDir(), Logger: zap.NewNop().Sugar()})
	require.NoError(t, err)
	return idx
}

func TestNew_RequiresConfig(t *testing.T) {
	_, err := New(context.Background(), nil)
	assert.Error(t, err)

	_, err = New(context.Background(), &Config{})
	assert.Error(t, err)
}

func TestPutGetDelete(t *testing.T) {
	idx := newTestIndex(t)

	_, ok := idx.Get("missing")
	assert.False(t, ok)

	idx.Put("k", &Entry{FileID: 1, ValOffset: 10, ValSize: 5, Timestamp: 100})
	entry, ok := idx.Get("k")
	require.True(t, ok)
	assert.Equal(t, uint64(1), entry.FileID)
	assert.Equal(t, 1, idx.Len())

	idx.Delete("k")
	_, ok = idx.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, idx.Len())
}

func TestPut_OverwritesPreviousEntry(t *testing.T) {
	idx := newTestIndex(t)

	idx.Put("k", &Entry{FileID: 1, Timestamp: 1})
	idx.Put("k", &Entry{FileID: 2, Timestamp: 2})

	entry, ok := idx.Get("k")
	require.True(t, ok)
	assert.Equal(t, uint64(2), entry.FileID)
	assert.Equal(t, 1, idx.Len())
}

func TestGet_ReturnsExactlyWhatWasPut(t *testing.T) {
	idx := newTestIndex(t)

	want := &Entry{FileID: 7, ValOffset: 128, ValSize: 64, Timestamp: 1700000000, ExpiresAt: 1800000000}
	idx.Put("k", want)

	got, ok := idx.Get("k")
	require.True(t, ok)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("entry mismatch (-want +got):\n%s", diff)
	}
}

func TestClose_IsIdempotentAndRejected(t *testing.T) {
	idx := newTestIndex(t)
	idx.Put("k", &Entry{FileID: 1})

	require.NoError(t, idx.Close())
	assert.ErrorIs(t, idx.Close(), ErrIndexClosed)
}
