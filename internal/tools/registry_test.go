package tools

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siftlabs/sift/internal/log"
)

// echoHandler returns its args back, for dispatch tests.
type echoHandler struct{}

func (echoHandler) Invoke(_ context.Context, args map[string]any) (any, error) {
	return args, nil
}

type failingHandler struct{ err error }

func (h failingHandler) Invoke(context.Context, map[string]any) (any, error) {
	return nil, h.err
}

func TestRegisterAndInvoke(t *testing.T) {
	r := NewRegistry(log.NewNop())
	require.NoError(t, r.Register("echo", echoHandler{}))

	out, err := r.Invoke(context.Background(), "echo", map[string]any{"k": "v"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"k": "v"}, out)
}

func TestRegisterValidation(t *testing.T) {
	r := NewRegistry(log.NewNop())

	assert.Error(t, r.Register("", echoHandler{}))
	assert.Error(t, r.Register("x", nil))

	require.NoError(t, r.Register("dup", echoHandler{}))
	assert.Error(t, r.Register("dup", echoHandler{}))
}

func TestInvokeUnknownTool(t *testing.T) {
	r := NewRegistry(log.NewNop())

	_, err := r.Invoke(context.Background(), "csv_export", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownTool)
	assert.Contains(t, err.Error(), "csv_export")
}

func TestInvokePropagatesHandlerError(t *testing.T) {
	r := NewRegistry(log.NewNop())
	sentinel := errors.New("boom")
	require.NoError(t, r.Register("bad", failingHandler{err: sentinel}))

	_, err := r.Invoke(context.Background(), "bad", nil)
	assert.ErrorIs(t, err, sentinel)
}

func TestNamesSorted(t *testing.T) {
	r := NewRegistry(log.NewNop())
	require.NoError(t, r.Register("zeta", echoHandler{}))
	require.NoError(t, r.Register("alpha", echoHandler{}))

	assert.Equal(t, []string{"alpha", "zeta"}, r.Names())
}
