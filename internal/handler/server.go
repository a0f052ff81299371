// Package handler содержит HTTP-сервер, который раздаёт ресурсы из пулов:
// сжатие данных буферами и gzip-писателями из пула, статистику пулов и проверку базы данных.
package handler

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/levinOo/rsrc-pool/internal/bufpool"
	"github.com/levinOo/rsrc-pool/internal/config"
	"github.com/levinOo/rsrc-pool/internal/config/db"
	"github.com/levinOo/rsrc-pool/internal/connpool"
)

type ServerComponents struct {
	server *http.Server
	pools  *Pools
	logger *zap.SugaredLogger
}

// Serve запускает сервер и блокируется до сигнала SIGINT/SIGTERM или ошибки сервера.
func Serve(cfg config.Config, sugar *zap.SugaredLogger) error {
	components, err := setupServer(cfg, sugar)
	if err != nil {
		return err
	}

	return runServerWithGracefulShutdown(components, cfg)
}

// NewPools создаёт пулы по конфигурации. Если задан DSN, открывается база данных.
func NewPools(ctx context.Context, cfg config.Config, sugar *zap.SugaredLogger) (*Pools, error) {
	pools := &Pools{
		Buffers: bufpool.NewBufferPool(cfg.BufferSize, sugar),
		Gzip:    bufpool.NewGzipPool(cfg.GzipLevel, sugar),
	}

	if err := pools.Buffers.Prefill(cfg.Prefill); err != nil {
		return nil, err
	}

	if cfg.DatabaseDSN == "" {
		sugar.Infow("Database DSN is empty, connection pool disabled")
		return pools, nil
	}

	openCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	conn, err := db.Open(openCtx, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	pools.Conns = connpool.New(ctx, conn, sugar)

	return pools, nil
}

func setupServer(cfg config.Config, sugar *zap.SugaredLogger) (*ServerComponents, error) {
	sugar.Infow("Starting server with config",
		"address", cfg.Addr,
		"bufferSize", cfg.BufferSize,
		"prefill", cfg.Prefill,
		"gzipLevel", cfg.GzipLevel,
		"database", cfg.DatabaseDSN != "",
	)

	pools, err := NewPools(context.Background(), cfg, sugar)
	if err != nil {
		return nil, err
	}

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: NewRouter(pools, HostMemory, sugar),
	}

	return &ServerComponents{
		server: srv,
		pools:  pools,
		logger: sugar,
	}, nil
}

func runServerWithGracefulShutdown(components *ServerComponents, cfg config.Config) error {
	server := components.server
	sugar := components.logger

	serverErr := make(chan error, 1)

	go func() {
		sugar.Infow("HTTP server started", "address", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil {
			sugar.Errorw("Server error", "error", err)
			if derr := components.pools.Drain(); derr != nil {
				sugar.Errorw("Failed to drain pools", "error", derr)
			}
			return fmt.Errorf("server error: %w", err)
		}
	case <-quit:
		sugar.Infoln("Shutting down server...")
	}

	return gracefulShutdown(components)
}

func gracefulShutdown(components *ServerComponents) error {
	sugar := components.logger

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := components.server.Shutdown(ctx); err != nil {
		sugar.Errorw("Server shutdown error", "error", err)
	}

	if err := components.pools.Drain(); err != nil {
		return fmt.Errorf("failed to drain pools on shutdown: %w", err)
	}

	sugar.Infoln("Pools drained and server stopped gracefully")
	return nil
}
