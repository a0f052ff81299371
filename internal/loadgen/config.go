package loadgen

import (
	"errors"
	"flag"
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Addr        string  `env:"ADDRESS"`
	Workers     int     `env:"WORKERS"`
	Requests    int     `env:"REQUESTS"`
	RateLimit   float64 `env:"RATE_LIMIT"`
	PayloadSize int     `env:"PAYLOAD_SIZE"`
	LogLevel    string  `env:"LOG_LEVEL"`
}

// GetConfig разбирает флаги из args, затем переменные окружения.
// Переменные окружения имеют приоритет над флагами.
func GetConfig(args []string) (Config, error) {
	cfg := Config{}

	fs := flag.NewFlagSet("loadgen", flag.ContinueOnError)
	fs.StringVar(&cfg.Addr, "a", "localhost:8080", "Адрес сервера")
	fs.IntVar(&cfg.Workers, "w", 4, "Число параллельных воркеров")
	fs.IntVar(&cfg.Requests, "n", 100, "Общее число запросов")
	fs.Float64Var(&cfg.RateLimit, "r", 0, "Ограничение запросов в секунду (0 - без ограничения)")
	fs.IntVar(&cfg.PayloadSize, "s", 1024, "Размер тела запроса в байтах")
	fs.StringVar(&cfg.LogLevel, "l", "info", "Уровень логирования")

	if err := fs.Parse(args); err != nil {
		return Config{}, fmt.Errorf("failed to parse flags: %w", err)
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("ошибка парсинга ENV: %w", err)
	}

	if cfg.Workers < 1 {
		return Config{}, errors.New("workers must be at least 1")
	}
	if cfg.Requests < 0 || cfg.PayloadSize < 0 || cfg.RateLimit < 0 {
		return Config{}, errors.New("requests, payload size and rate limit must not be negative")
	}

	return cfg, nil
}
