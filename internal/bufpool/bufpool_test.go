package bufpool

import (
	"bytes"
	"compress/gzip"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/levinOo/rsrc-pool/internal/pool"
)

func TestBufferPoolGetPut(t *testing.T) {
	b := NewBufferPool(64, nil)

	buf := b.Get()
	require.NotNil(t, buf)
	assert.GreaterOrEqual(t, buf.Cap(), 64)

	buf.WriteString("payload")
	require.NoError(t, b.Put(buf))

	again := b.Get()
	assert.Same(t, buf, again)
	assert.Equal(t, 0, again.Len())
}

func TestBufferPoolGetFromEmptyPool(t *testing.T) {
	b := NewBufferPool(128, nil)

	buf := b.Get()
	require.NotNil(t, buf)
	assert.Equal(t, 0, buf.Len())
	assert.Equal(t, 128, buf.Cap())

	stats := b.Stats()
	assert.Equal(t, int64(1), stats.Created)
	assert.Equal(t, int64(0), stats.FactoryErrors)
}

func TestBufferPoolDropsOversized(t *testing.T) {
	b := NewBufferPool(8, nil)

	buf := b.Get()
	buf.Write(make([]byte, 8*maxRetainFactor+1))
	require.NoError(t, b.Put(buf))

	assert.Equal(t, 0, b.Stats().Size)
}

func TestBufferPoolPutInvalid(t *testing.T) {
	b := NewBufferPool(8, nil)

	assert.ErrorIs(t, b.Put(nil), pool.ErrInvalidResource)

	buf := b.Get()
	require.NoError(t, b.Put(buf))
	assert.ErrorIs(t, b.Put(buf), pool.ErrInvalidResource)
	assert.Equal(t, 1, b.Stats().Size)
}

func TestBufferPoolPrefill(t *testing.T) {
	b := NewBufferPool(32, nil)

	require.NoError(t, b.Prefill(5))
	assert.Equal(t, 5, b.Stats().Size)

	require.NoError(t, b.Drain())
	assert.Equal(t, 0, b.Stats().Size)
}

func TestGzipPoolCompress(t *testing.T) {
	g := NewGzipPool(gzip.BestSpeed, nil)
	src := []byte(strings.Repeat("resource pool ", 100))

	for i := 0; i < 3; i++ {
		var dst bytes.Buffer
		require.NoError(t, g.Compress(&dst, src))

		r, err := gzip.NewReader(&dst)
		require.NoError(t, err)
		got, err := io.ReadAll(r)
		require.NoError(t, err)
		assert.Equal(t, src, got)
	}

	stats := g.Stats()
	assert.Equal(t, int64(1), stats.Created)
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, 1, stats.Size)
}

func TestGzipPoolInvalidLevel(t *testing.T) {
	g := NewGzipPool(42, nil)

	err := g.Compress(io.Discard, []byte("data"))
	assert.Error(t, err)
	assert.Equal(t, int64(1), g.Stats().FactoryErrors)
	assert.Equal(t, 0, g.Stats().Size)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, io.ErrClosedPipe
}

func TestGzipPoolDiscardsFailedWriter(t *testing.T) {
	g := NewGzipPool(gzip.DefaultCompression, nil)

	err := g.Compress(failingWriter{}, []byte("data"))
	assert.ErrorIs(t, err, io.ErrClosedPipe)
	assert.Equal(t, 0, g.Stats().Size)
}

func TestGzipPoolConcurrent(t *testing.T) {
	g := NewGzipPool(gzip.DefaultCompression, nil)
	bufs := NewBufferPool(256, nil)

	var eg errgroup.Group
	for w := 0; w < 8; w++ {
		eg.Go(func() error {
			for i := 0; i < 50; i++ {
				buf := bufs.Get()
				if err := g.Compress(buf, []byte("concurrent payload")); err != nil {
					return err
				}
				if err := bufs.Put(buf); err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, eg.Wait())

	assert.LessOrEqual(t, g.Stats().Size, 8)
	assert.Equal(t, int64(400), g.Stats().Returned)
}
