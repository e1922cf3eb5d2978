package vectorstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSink(t *testing.T) *ChromemSink {
	t.Helper()
	sink, err := NewChromemSink(Config{
		Path:       t.TempDir(),
		Collection: "test_descriptions",
	}, nil)
	require.NoError(t, err)
	return sink
}

func TestNewChromemSinkValidation(t *testing.T) {
	_, err := NewChromemSink(Config{Collection: "c"}, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewChromemSink(Config{Path: t.TempDir()}, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestStoreAndSimilar(t *testing.T) {
	sink := newTestSink(t)
	ctx := context.Background()

	require.NoError(t, sink.Store(ctx, "1", "a tabletop game", []float32{1, 0, 0}))
	require.NoError(t, sink.Store(ctx, "2", "a music album", []float32{0, 1, 0}))
	require.NoError(t, sink.Store(ctx, "3", "another game", []float32{0.9, 0.1, 0}))
	assert.Equal(t, 3, sink.Count())

	ids, err := sink.Similar(ctx, []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, ids, 2)
	assert.Equal(t, "1", ids[0])
	assert.Equal(t, "3", ids[1])
}

func TestStoreRequiresID(t *testing.T) {
	sink := newTestSink(t)
	err := sink.Store(context.Background(), "", "text", []float32{1})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestSimilarClampsK(t *testing.T) {
	sink := newTestSink(t)
	ctx := context.Background()

	// Empty store returns nothing rather than erroring.
	ids, err := sink.Similar(ctx, []float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.NoError(t, sink.Store(ctx, "1", "only doc", []float32{1, 0}))
	ids, err = sink.Similar(ctx, []float32{1, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, ids, 1)
}
