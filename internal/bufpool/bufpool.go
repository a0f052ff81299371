// Package bufpool содержит пулы буферов и gzip-писателей поверх pool.Pool.
// В отличие от базового пула, ресурсы сбрасываются перед возвратом.
package bufpool

import (
	"bytes"
	"fmt"

	"go.uber.org/zap"

	"github.com/levinOo/rsrc-pool/internal/pool"
)

// maxRetainFactor ограничивает рост буферов: буфер ёмкостью больше size*maxRetainFactor
// не возвращается в пул.
const maxRetainFactor = 16

// BufferPool хранит *bytes.Buffer с начальной ёмкостью size.
type BufferPool struct {
	pool   *pool.Pool[bytes.Buffer]
	size   int
	logger *zap.SugaredLogger
}

// NewBufferPool создаёт пул буферов с начальной ёмкостью size байт.
func NewBufferPool(size int, logger *zap.SugaredLogger) *BufferPool {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	b := &BufferPool{size: size, logger: logger}
	b.pool = pool.NewWithFactory(b.newBuffer, pool.WithLogger(logger))
	return b
}

func (b *BufferPool) newBuffer() (*bytes.Buffer, error) {
	return bytes.NewBuffer(make([]byte, 0, b.size)), nil
}

// Get возвращает пустой буфер из пула или новый буфер.
func (b *BufferPool) Get() *bytes.Buffer {
	// фабрика задана и newBuffer не возвращает ошибок, поэтому Take здесь не падает
	buf, _ := b.pool.Take()
	return buf
}

// Put сбрасывает буфер и возвращает его в пул.
// Слишком разросшиеся буферы отбрасываются.
func (b *BufferPool) Put(buf *bytes.Buffer) error {
	if buf != nil && buf.Cap() > b.size*maxRetainFactor {
		b.logger.Debugw("Dropping oversized buffer", "cap", buf.Cap(), "limit", b.size*maxRetainFactor)
		return nil
	}
	if buf != nil {
		buf.Reset()
	}
	return b.pool.Put(buf)
}

// Prefill заранее создаёт n буферов.
func (b *BufferPool) Prefill(n int) error {
	for i := 0; i < n; i++ {
		buf, err := b.newBuffer()
		if err != nil {
			return fmt.Errorf("failed to create buffer: %w", err)
		}
		if err := b.pool.Put(buf); err != nil {
			return fmt.Errorf("failed to prefill buffer pool: %w", err)
		}
	}
	b.logger.Debugw("Buffer pool prefilled", "count", n, "size", b.size)
	return nil
}

func (b *BufferPool) Stats() pool.Stats {
	return b.pool.Stats()
}

// Drain освобождает все свободные буферы.
func (b *BufferPool) Drain() error {
	return b.pool.Drain()
}
