// Package logger предоставляет утилиты для логирования HTTP-запросов и ответов.
// Включает обертку ResponseWriter для захвата метаданных ответа и создание zap логгеров.
package logger

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ResponseData содержит метаданные HTTP-ответа для логирования.
type ResponseData struct {
	// Status содержит HTTP-код ответа (например, 200, 404, 500).
	Status int

	// Size содержит общий размер тела ответа в байтах.
	// Накапливается при множественных вызовах Write.
	Size int
}

// LoggingRW оборачивает стандартный http.ResponseWriter для захвата метрик ответа.
// Используется в middleware для логирования размера ответа и статус-кода.
type LoggingRW struct {
	http.ResponseWriter
	// ResponseData указывает на структуру для накопления метаданных ответа.
	ResponseData *ResponseData
}

// Write записывает данные в ответ и обновляет накопленный размер в ResponseData.
// Если WriteHeader не вызывался, статус считается равным 200.
func (r *LoggingRW) Write(b []byte) (int, error) {
	if r.ResponseData.Status == 0 {
		r.ResponseData.Status = http.StatusOK
	}
	size, err := r.ResponseWriter.Write(b)
	r.ResponseData.Size += size
	return size, err
}

// WriteHeader устанавливает HTTP-код ответа и сохраняет его в ResponseData.
func (r *LoggingRW) WriteHeader(statusCode int) {
	r.ResponseWriter.WriteHeader(statusCode)
	r.ResponseData.Status = statusCode
}

// NewLogger создает zap.SugaredLogger для development окружения с заданным уровнем.
// Пустой уровень означает info.
func NewLogger(level string) (*zap.SugaredLogger, error) {
	cfg := zap.NewDevelopmentConfig()

	if level != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	return logger.Sugar(), nil
}
