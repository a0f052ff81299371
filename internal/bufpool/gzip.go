package bufpool

import (
	"compress/gzip"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/levinOo/rsrc-pool/internal/pool"
)

// GzipPool хранит *gzip.Writer заданного уровня сжатия.
type GzipPool struct {
	pool  *pool.Pool[gzip.Writer]
	level int
}

// NewGzipPool создаёт пул gzip-писателей. Некорректный уровень сжатия
// обнаруживается при первом создании писателя и возвращается из Compress.
func NewGzipPool(level int, logger *zap.SugaredLogger) *GzipPool {
	g := &GzipPool{level: level}
	g.pool = pool.NewWithFactory(func() (*gzip.Writer, error) {
		return gzip.NewWriterLevel(io.Discard, g.level)
	}, pool.WithLogger(logger))
	return g
}

// Compress сжимает src в dst писателем из пула.
// Писатель, на котором произошла ошибка, в пул не возвращается.
func (g *GzipPool) Compress(dst io.Writer, src []byte) error {
	zw, err := g.pool.Take()
	if err != nil {
		return fmt.Errorf("failed to get gzip writer: %w", err)
	}

	zw.Reset(dst)
	if _, err := zw.Write(src); err != nil {
		return fmt.Errorf("failed to compress data: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to flush gzip stream: %w", err)
	}

	zw.Reset(io.Discard)
	return g.pool.Put(zw)
}

func (g *GzipPool) Stats() pool.Stats {
	return g.pool.Stats()
}

func (g *GzipPool) Drain() error {
	return g.pool.Drain()
}
