package logio

import (
	"context"
	"testing"

	"github.com/ignitekv/ignite/internal/index"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestIndex(t *testing.T, dir string) *index.Index {
	t.Helper()
	idx, err := index.New(context.Background(), &index.Config{DataDir: dir, Logger: zap.NewNop().Sugar()})
	require.NoError(t, err)
	return idx
}

func TestWriter_PutThenRead(t *testing.T) {
	dir := t.TempDir()
	idx := newTestIndex(t, dir)
	log := zap.NewNop().Sugar()

	w, err := New(Config{Dir: dir, MaxFileSize: 1 << 20, SyncOnPut: false}, idx, log, 0)
	require.NoError(t, err)

	require.NoError(t, w.Put([]byte("alpha"), []byte("1"), 0))
	require.NoError(t, w.Put([]byte("beta"), []byte("2"), 0))
	require.NoError(t, w.Close())

	entry, ok := idx.Get("alpha")
	require.True(t, ok)
	assert.Equal(t, w.FileID(), entry.FileID)

	r, err := NewReader(dir, entry.FileID)
	require.NoError(t, err)
	defer r.Close()

	val, err := r.Read(int64(entry.ValOffset), entry.ValSize)
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), val)
}

func TestWriter_DeleteAppendsTombstoneAndRemovesFromIndex(t *testing.T) {
	dir := t.TempDir()
	idx := newTestIndex(t, dir)
	log := zap.NewNop().Sugar()

	w, err := New(Config{Dir: dir, MaxFileSize: 1 << 20}, idx, log, 0)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Put([]byte("k"), []byte("v"), 0))
	require.NoError(t, w.Delete([]byte("k")))

	_, ok := idx.Get("k")
	assert.False(t, ok)
}

func TestWriter_RollsOverWhenOverMaxSize(t *testing.T) {
	dir := t.TempDir()
	idx := newTestIndex(t, dir)
	log := zap.NewNop().Sugar()

	// A tiny threshold forces a roll after the very first write.
	w, err := New(Config{Dir: dir, MaxFileSize: 8}, idx, log, 0)
	require.NoError(t, err)
	defer w.Close()

	firstFileID := w.FileID()
	require.NoError(t, w.Put([]byte("k"), []byte("some value longer than 8 bytes"), 0))
	assert.NotEqual(t, firstFileID, w.FileID())
	assert.Greater(t, w.FileID(), firstFileID)
}

func TestNew_FileIDAboveFloor(t *testing.T) {
	dir := t.TempDir()
	idx := newTestIndex(t, dir)
	log := zap.NewNop().Sugar()

	const floor = 99999999999
	w, err := New(Config{Dir: dir, MaxFileSize: 1 << 20}, idx, log, floor)
	require.NoError(t, err)
	defer w.Close()

	assert.Greater(t, w.FileID(), uint64(floor))
}

func TestIterator_ReplaysRecordsInOrder(t *testing.T) {
	dir := t.TempDir()
	idx := newTestIndex(t, dir)
	log := zap.NewNop().Sugar()

	w, err := New(Config{Dir: dir, MaxFileSize: 1 << 20}, idx, log, 0)
	require.NoError(t, err)
	fileID := w.FileID()

	require.NoError(t, w.Put([]byte("a"), []byte("1"), 0))
	require.NoError(t, w.Put([]byte("b"), []byte("2"), 0))
	require.NoError(t, w.Close())

	it, err := NewIterator(dir, fileID)
	require.NoError(t, err)
	defer it.Close()

	var keys []string
	for {
		key, _, err := it.Next()
		if err != nil {
			break
		}
		keys = append(keys, key)
	}

	assert.Equal(t, []string{"a", "b"}, keys)
}
