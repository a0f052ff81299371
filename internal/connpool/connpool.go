// Package connpool реализует пул выделенных соединений *sql.Conn поверх pool.Pool.
// Соединения создаются из *sql.DB (драйвер pgx) по требованию и переиспользуются
// между обработчиками без ожидания.
package connpool

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/levinOo/rsrc-pool/internal/pool"
)

// ConnPool хранит свободные соединения с базой данных.
type ConnPool struct {
	db     *sql.DB
	pool   *pool.Pool[sql.Conn]
	logger *zap.SugaredLogger
}

// New создаёт пул соединений. ctx используется при создании новых соединений
// и должен жить столько же, сколько пул. Close закрывает и db.
func New(ctx context.Context, db *sql.DB, logger *zap.SugaredLogger) *ConnPool {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	c := &ConnPool{db: db, logger: logger}
	c.pool = pool.NewWithFactory(func() (*sql.Conn, error) {
		return db.Conn(ctx)
	}, pool.WithLogger(logger))
	return c
}

// Take возвращает свободное соединение или открывает новое.
func (c *ConnPool) Take() (*sql.Conn, error) {
	return c.pool.Take()
}

// Put возвращает соединение в пул.
func (c *ConnPool) Put(conn *sql.Conn) error {
	return c.pool.Put(conn)
}

// Ping проверяет соединение из пула. Неисправное соединение закрывается
// и в пул не возвращается.
func (c *ConnPool) Ping(ctx context.Context) error {
	conn, err := c.Take()
	if err != nil {
		return fmt.Errorf("failed to get connection: %w", err)
	}

	if err := conn.PingContext(ctx); err != nil {
		if cerr := conn.Close(); cerr != nil {
			c.logger.Warnw("Failed to close broken connection", "error", cerr)
		}
		return fmt.Errorf("ping failed: %w", err)
	}

	return c.Put(conn)
}

func (c *ConnPool) Stats() pool.Stats {
	return c.pool.Stats()
}

// Close освобождает все свободные соединения и закрывает базу данных.
func (c *ConnPool) Close() error {
	err := c.pool.Drain()
	if err != nil {
		c.logger.Errorw("Failed to release pooled connections", "error", err)
	}
	return errors.Join(err, c.db.Close())
}
