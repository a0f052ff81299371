package handler

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/levinOo/rsrc-pool/internal/bufpool"
	"github.com/levinOo/rsrc-pool/internal/config"
	"github.com/levinOo/rsrc-pool/internal/connpool"
	"github.com/levinOo/rsrc-pool/internal/models"
)

func newTestPools(t *testing.T) *Pools {
	t.Helper()

	pools, err := NewPools(context.Background(), config.Default(), zap.NewNop().Sugar())
	require.NoError(t, err)
	return pools
}

func stubHost() (*models.HostStats, error) {
	return &models.HostStats{TotalMemory: 1024, AvailableMemory: 512, UsedPercent: 50}, nil
}

func TestCompressHandler(t *testing.T) {
	pools := newTestPools(t)
	router := NewRouter(pools, stubHost, zap.NewNop().Sugar())
	payload := strings.Repeat("pooled buffers ", 64)

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/compress", strings.NewReader(payload))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))

		zr, err := gzip.NewReader(rec.Body)
		require.NoError(t, err)
		got, err := io.ReadAll(zr)
		require.NoError(t, err)
		assert.Equal(t, payload, string(got))
	}

	assert.Equal(t, int64(1), pools.Gzip.Stats().Created)
	assert.Equal(t, 2, pools.Buffers.Stats().Size)
}

func TestCompressHandlerInvalidLevel(t *testing.T) {
	sugar := zap.NewNop().Sugar()
	pools := &Pools{
		Buffers: bufpool.NewBufferPool(64, sugar),
		Gzip:    bufpool.NewGzipPool(100, sugar),
	}
	router := NewRouter(pools, nil, sugar)

	req := httptest.NewRequest(http.MethodPost, "/compress", strings.NewReader("data"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, 2, pools.Buffers.Stats().Size)
}

func TestStatsHandler(t *testing.T) {
	pools := newTestPools(t)
	require.NoError(t, pools.Buffers.Prefill(3))
	router := NewRouter(pools, stubHost, zap.NewNop().Sugar())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp models.StatsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 3, resp.Buffers.Size)
	assert.Equal(t, int64(3), resp.Buffers.Returned)
	assert.Nil(t, resp.Conns)
	require.NotNil(t, resp.Host)
	assert.Equal(t, uint64(1024), resp.Host.TotalMemory)
}

func TestStatsHandlerHostError(t *testing.T) {
	pools := newTestPools(t)
	host := func() (*models.HostStats, error) { return nil, errors.New("no procfs") }
	router := NewRouter(pools, host, zap.NewNop().Sugar())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), `"host"`)
}

func TestPingHandler(t *testing.T) {
	t.Run("no database", func(t *testing.T) {
		rec := httptest.NewRecorder()
		PingHandler(nil, zap.NewNop().Sugar()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("reachable", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		conns := connpool.New(context.Background(), db, nil)
		mock.ExpectPing()

		rec := httptest.NewRecorder()
		PingHandler(conns, zap.NewNop().Sugar()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Database is reachable", rec.Body.String())
		assert.Equal(t, 1, conns.Stats().Size)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("write error is logged", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		conns := connpool.New(context.Background(), db, nil)
		mock.ExpectPing()

		core, logs := observer.New(zapcore.DebugLevel)
		rw := failingResponseWriter{ResponseRecorder: httptest.NewRecorder()}
		PingHandler(conns, zap.New(core).Sugar()).ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/ping", nil))

		assert.Equal(t, 1, logs.FilterMessage("Failed to write response").Len())
	})

	t.Run("unreachable", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		conns := connpool.New(context.Background(), db, nil)
		mock.ExpectPing().WillReturnError(errors.New("connection reset"))

		rec := httptest.NewRecorder()
		PingHandler(conns, zap.NewNop().Sugar()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), "No connection with Database")
		assert.Equal(t, 0, conns.Stats().Size)
	})
}

type failingResponseWriter struct {
	*httptest.ResponseRecorder
}

func (failingResponseWriter) Write([]byte) (int, error) {
	return 0, io.ErrClosedPipe
}

func TestPoolsDrain(t *testing.T) {
	pools := newTestPools(t)
	require.NoError(t, pools.Buffers.Prefill(2))

	var buf bytes.Buffer
	require.NoError(t, pools.Gzip.Compress(&buf, []byte("x")))

	require.NoError(t, pools.Drain())
	assert.Equal(t, 0, pools.Buffers.Stats().Size)
	assert.Equal(t, 0, pools.Gzip.Stats().Size)
}

func TestLoggerFuncServer(t *testing.T) {
	h := LoggerFuncServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusTeapot)
	}), zap.NewNop().Sugar())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
