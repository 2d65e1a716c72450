package ignite

import (
	"context"
	"testing"
	"time"

	"github.com/ignitekv/ignite/internal/engine"
	"github.com/ignitekv/ignite/pkg/options"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestInstance(t *testing.T, opts ...options.OptionFunc) *Instance {
	t.Helper()
	dir := t.TempDir()
	allOpts := append([]options.OptionFunc{options.WithDataDir(dir)}, opts...)

	inst, err := NewInstance(context.Background(), "ignite-test", allOpts...)
	require.NoError(t, err)
	return inst
}

func TestSetGetDelete(t *testing.T) {
	ctx := context.Background()
	inst := newTestInstance(t)
	defer inst.Close(ctx)

	require.NoError(t, inst.Set(ctx, "key", []byte("value")))

	val, err := inst.Get(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), val)

	require.NoError(t, inst.Delete(ctx, "key"))

	_, err = inst.Get(ctx, "key")
	assert.True(t, engine.IsKeyNotFound(err))
}

func TestSetX_ExpiresKey(t *testing.T) {
	ctx := context.Background()
	inst := newTestInstance(t)
	defer inst.Close(ctx)

	require.NoError(t, inst.SetX(ctx, "key", []byte("value"), time.Millisecond))
	time.Sleep(20 * time.Millisecond)

	_, err := inst.Get(ctx, "key")
	assert.True(t, engine.IsKeyNotFound(err))
}

func TestSetX_NonPositiveExpiryFallsBackToNoDeadline(t *testing.T) {
	ctx := context.Background()
	inst := newTestInstance(t)
	defer inst.Close(ctx)

	require.NoError(t, inst.SetX(ctx, "key", []byte("value"), -time.Second))

	val, err := inst.Get(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), val)
}

func TestSet_ReadableWithinInstanceDefaultExpiry(t *testing.T) {
	ctx := context.Background()
	inst := newTestInstance(t, options.WithExpiry(time.Hour))
	defer inst.Close(ctx)

	require.NoError(t, inst.Set(ctx, "key", []byte("value")))

	val, err := inst.Get(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), val)
}

func TestSet_InstanceDefaultExpirySurvivesRestart(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	opts := []options.OptionFunc{options.WithDataDir(dir), options.WithExpiry(time.Second)}

	inst1, err := NewInstance(ctx, "ignite-test", opts...)
	require.NoError(t, err)
	require.NoError(t, inst1.Set(ctx, "key", []byte("value")))
	require.NoError(t, inst1.Close(ctx))

	time.Sleep(1100 * time.Millisecond)

	inst2, err := NewInstance(ctx, "ignite-test", opts...)
	require.NoError(t, err)
	defer inst2.Close(ctx)

	_, err = inst2.Get(ctx, "key")
	assert.True(t, engine.IsKeyNotFound(err), "default expiry is recomputed from the persisted write timestamp, so it must still apply after a restart")
}

func TestSetX_OverridesInstanceDefaultExpiry(t *testing.T) {
	ctx := context.Background()
	inst := newTestInstance(t, options.WithExpiry(time.Hour))
	defer inst.Close(ctx)

	require.NoError(t, inst.SetX(ctx, "key", []byte("value"), time.Millisecond))
	time.Sleep(20 * time.Millisecond)

	_, err := inst.Get(ctx, "key")
	assert.True(t, engine.IsKeyNotFound(err))
}

func TestClose_IsIdempotentlyRejectedOnSecondCall(t *testing.T) {
	ctx := context.Background()
	inst := newTestInstance(t)

	require.NoError(t, inst.Close(ctx))
	assert.ErrorIs(t, inst.Close(ctx), engine.ErrEngineClosed)
}
