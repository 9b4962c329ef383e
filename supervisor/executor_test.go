package supervisor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luizstacio/fuel-indexer/handler"
	"github.com/luizstacio/fuel-indexer/ingestion"
)

type stubHandler struct {
	result handler.Result
	err    error
}

func (s stubHandler) HandleEvents(ctx context.Context, blocks []ingestion.BlockData) (handler.Result, error) {
	return s.result, s.err
}

func TestSwappableExecutor_TracksLastCursor(t *testing.T) {
	e := newSwappableExecutor(stubHandler{result: handler.Result{NextCursor: 10}})

	cursor, err := e.HandleEvents(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), cursor)
	assert.Equal(t, uint64(10), e.lastCursor())
}

func TestSwappableExecutor_SwapDispatchesToNewExecutor(t *testing.T) {
	e := newSwappableExecutor(stubHandler{result: handler.Result{NextCursor: 1}})
	_, err := e.HandleEvents(context.Background(), nil)
	require.NoError(t, err)

	e.swap(stubHandler{result: handler.Result{NextCursor: 99}})
	cursor, err := e.HandleEvents(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(99), cursor)
}

func TestSwappableExecutor_PropagatesError(t *testing.T) {
	e := newSwappableExecutor(stubHandler{err: errors.New("boom")})
	_, err := e.HandleEvents(context.Background(), nil)
	assert.Error(t, err)
}

func TestKillFlag_TripAndObserve(t *testing.T) {
	var k killFlag
	assert.False(t, k.Killed())
	k.trip()
	assert.True(t, k.Killed())
}
