package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/shirou/gopsutil/v3/mem"
	"go.uber.org/zap"

	"github.com/levinOo/rsrc-pool/internal/bufpool"
	"github.com/levinOo/rsrc-pool/internal/connpool"
	"github.com/levinOo/rsrc-pool/internal/logger"
	"github.com/levinOo/rsrc-pool/internal/models"
	"github.com/levinOo/rsrc-pool/internal/pool"
)

// maxBodySize ограничивает размер тела запроса на /compress.
const maxBodySize = 10 << 20

// Pools объединяет пулы, которыми пользуются обработчики.
type Pools struct {
	Buffers *bufpool.BufferPool
	Gzip    *bufpool.GzipPool
	// Conns равен nil, если база данных не настроена.
	Conns *connpool.ConnPool
}

// Drain освобождает ресурсы всех пулов и закрывает базу данных.
func (p *Pools) Drain() error {
	err := errors.Join(p.Buffers.Drain(), p.Gzip.Drain())
	if p.Conns != nil {
		err = errors.Join(err, p.Conns.Close())
	}
	return err
}

// HostStatsFunc возвращает сведения о памяти хоста.
type HostStatsFunc func() (*models.HostStats, error)

// HostMemory читает память хоста через gopsutil.
func HostMemory() (*models.HostStats, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return nil, err
	}
	return &models.HostStats{
		TotalMemory:     vm.Total,
		AvailableMemory: vm.Available,
		UsedPercent:     vm.UsedPercent,
	}, nil
}

func NewRouter(pools *Pools, host HostStatsFunc, sugar *zap.SugaredLogger) *chi.Mux {
	r := chi.NewRouter()

	r.Post("/compress", LoggerFuncServer(CompressHandler(pools, sugar), sugar))
	r.Get("/stats", LoggerFuncServer(StatsHandler(pools, host, sugar), sugar))
	r.Get("/ping", LoggerFuncServer(PingHandler(pools.Conns, sugar), sugar))

	return r
}

func LoggerFuncServer(h http.Handler, sugar *zap.SugaredLogger) http.HandlerFunc {
	logFn := func(rw http.ResponseWriter, r *http.Request) {
		start := time.Now()

		responseData := &logger.ResponseData{}
		lw := logger.LoggingRW{
			ResponseWriter: rw,
			ResponseData:   responseData,
		}

		h.ServeHTTP(&lw, r)

		sugar.Infoln(
			"uri", r.RequestURI,
			"method", r.Method,
			"duration", time.Since(start),
			"status", responseData.Status,
			"size", responseData.Size,
		)
	}
	return http.HandlerFunc(logFn)
}

// CompressHandler сжимает тело запроса gzip и возвращает результат.
// Тело запроса и ответ собираются в буферах из пула.
func CompressHandler(pools *Pools, sugar *zap.SugaredLogger) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		in := pools.Buffers.Get()
		defer putBuffer(pools.Buffers, in, sugar)

		if _, err := in.ReadFrom(http.MaxBytesReader(rw, r.Body, maxBodySize)); err != nil {
			http.Error(rw, "Failed to read body", http.StatusBadRequest)
			return
		}

		out := pools.Buffers.Get()
		defer putBuffer(pools.Buffers, out, sugar)

		if err := pools.Gzip.Compress(out, in.Bytes()); err != nil {
			sugar.Errorw("Compression failed", "error", err)
			http.Error(rw, "Compression failed", http.StatusInternalServerError)
			return
		}

		rw.Header().Set("Content-Type", "application/octet-stream")
		rw.Header().Set("Content-Encoding", "gzip")
		rw.WriteHeader(http.StatusOK)
		if _, err := rw.Write(out.Bytes()); err != nil {
			sugar.Debugw("Failed to write response", "error", err)
		}
	}
}

func putBuffer(buffers *bufpool.BufferPool, buf *bytes.Buffer, sugar *zap.SugaredLogger) {
	if err := buffers.Put(buf); err != nil {
		sugar.Warnw("Failed to return buffer to pool", "error", err)
	}
}

// StatsHandler возвращает счётчики пулов и память хоста в JSON.
func StatsHandler(pools *Pools, host HostStatsFunc, sugar *zap.SugaredLogger) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		resp := models.StatsResponse{
			Buffers: toPoolStats(pools.Buffers.Stats()),
			Gzip:    toPoolStats(pools.Gzip.Stats()),
		}

		if pools.Conns != nil {
			conns := toPoolStats(pools.Conns.Stats())
			resp.Conns = &conns
		}

		if host != nil {
			hs, err := host()
			if err != nil {
				sugar.Warnw("Failed to collect host stats", "error", err)
			} else {
				resp.Host = hs
			}
		}

		rw.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(rw).Encode(resp); err != nil {
			sugar.Errorw("Failed to encode stats", "error", err)
		}
	}
}

func toPoolStats(s pool.Stats) models.PoolStats {
	return models.PoolStats{
		Size:          s.Size,
		Hits:          s.Hits,
		Created:       s.Created,
		FactoryErrors: s.FactoryErrors,
		Returned:      s.Returned,
		Rejected:      s.Rejected,
	}
}

// PingHandler проверяет соединение с базой данных через пул соединений.
func PingHandler(conns *connpool.ConnPool, sugar *zap.SugaredLogger) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if conns == nil {
			http.Error(rw, "Database is not configured", http.StatusServiceUnavailable)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := conns.Ping(ctx); err != nil {
			http.Error(rw, "No connection with Database", http.StatusInternalServerError)
			return
		}

		rw.WriteHeader(http.StatusOK)
		if _, err := rw.Write([]byte("Database is reachable")); err != nil {
			sugar.Debugw("Failed to write response", "error", err)
		}
	}
}
