package lockfile

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTryLock_CreatesFileWithOwnPID(t *testing.T) {
	dir := t.TempDir()

	lock, err := TryLock(dir)
	require.NoError(t, err)
	defer lock.Close()

	raw, err := os.ReadFile(filepath.Join(dir, lockFileName))
	require.NoError(t, err)

	pid, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)
}

func TestTryLock_SecondAttemptFromSameProcessFails(t *testing.T) {
	dir := t.TempDir()

	lock, err := TryLock(dir)
	require.NoError(t, err)
	defer lock.Close()

	// A second TryLock call opens the existing lock file on a new descriptor;
	// the advisory lock taken by the first call is still held, so it must
	// fail rather than silently succeed.
	_, err = TryLock(dir)
	assert.Error(t, err)
}

func TestTryLock_ReclaimsStaleLock(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, lockFileName)

	// A PID essentially guaranteed not to be alive, simulating a crashed
	// owner's leftover lock file.
	require.NoError(t, os.WriteFile(path, []byte("999999"), 0644))

	lock, err := TryLock(dir)
	require.NoError(t, err)
	defer lock.Close()

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	pid, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)
}
