package recovery

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ignitekv/ignite/internal/index"
	"github.com/ignitekv/ignite/internal/logio"
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

func TestRun_EmptyDirectory(t *testing.T) {
	dir := t.TempDir()
	idx := newTestIndex(t, dir)

	result, err := Run(dir, idx, zap.NewNop().Sugar())
	require.NoError(t, err)
	assert.Equal(t, uint64(0), result.MaxFileID)
	assert.Equal(t, 0, result.Keys)
}

func TestRun_ReplaysAcrossMultipleFilesInOrder(t *testing.T) {
	dir := t.TempDir()
	log := zap.NewNop().Sugar()

	idx1 := newTestIndex(t, dir)
	w1, err := logio.New(logio.Config{Dir: dir, MaxFileSize: 1 << 20}, idx1, log, 0)
	require.NoError(t, err)
	require.NoError(t, w1.Put([]byte("k"), []byte("old"), 0))
	require.NoError(t, w1.Close())

	idx2 := newTestIndex(t, dir)
	w2, err := logio.New(logio.Config{Dir: dir, MaxFileSize: 1 << 20}, idx2, log, w1.FileID())
	require.NoError(t, err)
	require.NoError(t, w2.Put([]byte("k"), []byte("new"), 0))
	require.NoError(t, w2.Put([]byte("other"), []byte("x"), 0))
	require.NoError(t, w2.Close())

	idx := newTestIndex(t, dir)
	result, err := Run(dir, idx, log)
	require.NoError(t, err)

	assert.Equal(t, w2.FileID(), result.MaxFileID)
	assert.Equal(t, 2, result.Keys)

	entry, ok := idx.Get("k")
	require.True(t, ok)
	assert.Equal(t, w2.FileID(), entry.FileID, "later file's write must win")
}

func TestRun_StopsAtCorruptTrailingRecordButKeepsEarlierOnes(t *testing.T) {
	dir := t.TempDir()
	log := zap.NewNop().Sugar()
	idx1 := newTestIndex(t, dir)

	w, err := logio.New(logio.Config{Dir: dir, MaxFileSize: 1 << 20}, idx1, log, 0)
	require.NoError(t, err)
	fileID := w.FileID()
	require.NoError(t, w.Put([]byte("good"), []byte("v"), 0))
	require.NoError(t, w.Close())

	// Simulate a crash mid-append: a partial record trails the file.
	path := filepath.Join(dir, func() string {
		entries, _ := os.ReadDir(dir)
		for _, e := range entries {
			return e.Name()
		}
		return ""
	}())
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.Write([]byte{0, 0, 0, 1, 0, 0})
	require.NoError(t, err)
	require.NoError(t, f.Close())

	idx := newTestIndex(t, dir)
	result, err := Run(dir, idx, log)
	require.NoError(t, err)
	assert.Equal(t, fileID, result.MaxFileID)

	_, ok := idx.Get("good")
	assert.True(t, ok)
}
