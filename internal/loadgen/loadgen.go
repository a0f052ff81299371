// Package loadgen нагружает сервер пулов параллельными запросами на /compress
// и проверяет, что сжатые ответы совпадают с отправленными данными.
package loadgen

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/atomic"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/levinOo/rsrc-pool/internal/bufpool"
)

// Report содержит итоги прогона.
type Report struct {
	Sent     int64
	Failed   int64
	BytesOut int64
	BytesIn  int64
	Duration time.Duration
}

func (r Report) String() string {
	return fmt.Sprintf("sent=%d failed=%d out=%dB in=%dB duration=%s",
		r.Sent, r.Failed, r.BytesOut, r.BytesIn, r.Duration)
}

type counters struct {
	sent     atomic.Int64
	failed   atomic.Int64
	bytesOut atomic.Int64
	bytesIn  atomic.Int64
}

// Run отправляет cfg.Requests запросов силами cfg.Workers воркеров.
// Ошибки отдельных запросов учитываются в Report.Failed, Run возвращает ошибку
// только при отмене ctx.
func Run(ctx context.Context, cfg Config, sugar *zap.SugaredLogger) (Report, error) {
	client := resty.New().
		SetLogger(sugar).
		SetBaseURL("http://"+cfg.Addr).
		SetRetryCount(3).
		SetRetryWaitTime(100 * time.Millisecond).
		SetRetryMaxWaitTime(time.Second)

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	limiter := rate.NewLimiter(limit, 1)

	buffers := bufpool.NewBufferPool(cfg.PayloadSize, sugar)
	jobs := make(chan int)
	var c counters

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(jobs)
		for i := 0; i < cfg.Requests; i++ {
			select {
			case jobs <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	for w := 0; w < cfg.Workers; w++ {
		g.Go(func() error {
			for i := range jobs {
				if err := limiter.Wait(gctx); err != nil {
					return err
				}
				send(gctx, client, buffers, cfg.PayloadSize, i, &c, sugar)
			}
			return nil
		})
	}

	err := g.Wait()
	report := Report{
		Sent:     c.sent.Load(),
		Failed:   c.failed.Load(),
		BytesOut: c.bytesOut.Load(),
		BytesIn:  c.bytesIn.Load(),
		Duration: time.Since(start),
	}
	if err != nil {
		return report, fmt.Errorf("load run interrupted: %w", err)
	}

	sugar.Infow("Load run finished", "sent", report.Sent, "failed", report.Failed, "duration", report.Duration)
	return report, nil
}

func send(ctx context.Context, client *resty.Client, buffers *bufpool.BufferPool, size, seq int, c *counters, sugar *zap.SugaredLogger) {
	buf := buffers.Get()
	defer func() {
		if err := buffers.Put(buf); err != nil {
			sugar.Warnw("Failed to return payload buffer", "error", err)
		}
	}()
	fillPayload(buf, size, seq)

	resp, err := client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/octet-stream").
		SetBody(buf.Bytes()).
		Post("/compress")

	c.bytesOut.Add(int64(buf.Len()))
	if err != nil {
		c.failed.Inc()
		sugar.Debugw("Request failed", "seq", seq, "error", err)
		return
	}

	if resp.StatusCode() != http.StatusOK {
		c.failed.Inc()
		sugar.Debugw("Unexpected status", "seq", seq, "status", resp.StatusCode())
		return
	}

	body := resp.Body()
	c.bytesIn.Add(int64(len(body)))
	if !bytes.Equal(body, buf.Bytes()) {
		c.failed.Inc()
		sugar.Warnw("Response does not match payload", "seq", seq)
		return
	}

	c.sent.Inc()
}

// fillPayload заполняет buf повторяющимся текстом длиной size байт.
func fillPayload(buf *bytes.Buffer, size, seq int) {
	line := fmt.Sprintf("request %d: resource pool payload\n", seq)
	for buf.Len() < size {
		n := size - buf.Len()
		if n > len(line) {
			n = len(line)
		}
		buf.WriteString(line[:n])
	}
}
