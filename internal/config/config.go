// Package config предоставляет конфигурацию сервера пулов.
// Значения собираются по слоям: значения по умолчанию, JSON-файл, флаги командной строки
// и переменные окружения. Переменные окружения имеют наивысший приоритет.
package config

import (
	"compress/gzip"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
)

const (
	DefaultAddr       = "localhost:8080"
	DefaultBufferSize = 4096
	DefaultLogLevel   = "info"
)

// Config содержит параметры сервера.
type Config struct {
	// Addr задает адрес и порт HTTP-сервера (например, "localhost:8080").
	Addr string `json:"address" env:"ADDRESS"`

	// DatabaseDSN содержит строку подключения к PostgreSQL.
	// Пустое значение отключает пул соединений.
	DatabaseDSN string `json:"database_dsn" env:"DATABASE_DSN"`

	// BufferSize задает начальную ёмкость буферов в пуле.
	BufferSize int `json:"buffer_size" env:"BUFFER_SIZE"`

	// Prefill определяет, сколько буферов создать при старте.
	Prefill int `json:"prefill" env:"PREFILL"`

	GzipLevel int    `json:"gzip_level" env:"GZIP_LEVEL"`
	LogLevel  string `json:"log_level" env:"LOG_LEVEL"`
}

// Default возвращает конфигурацию со значениями по умолчанию.
func Default() Config {
	return Config{
		Addr:       DefaultAddr,
		BufferSize: DefaultBufferSize,
		GzipLevel:  gzip.DefaultCompression,
		LogLevel:   DefaultLogLevel,
	}
}

// Load загружает конфигурацию из args (без имени программы).
//
// Поддерживаемые флаги:
//
//	-config: путь к JSON-файлу конфигурации (или переменная CONFIG)
//	-a: адрес сервера (по умолчанию "localhost:8080")
//	-d: строка подключения к базе данных (по умолчанию "")
//	-b: начальный размер буфера (по умолчанию 4096)
//	-n: число буферов для предварительного создания (по умолчанию 0)
//	-z: уровень сжатия gzip (по умолчанию -1)
//	-l: уровень логирования (по умолчанию "info")
//
// Соответствующие переменные окружения:
//
//	ADDRESS, DATABASE_DSN, BUFFER_SIZE, PREFILL, GZIP_LEVEL, LOG_LEVEL
func Load(args []string) (Config, error) {
	cfg := Default()

	if err := cfg.loadFromFile(getConfigPath(args, os.Getenv("CONFIG"))); err != nil {
		return Config{}, err
	}

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.String("config", "", "path to config file")
	fs.StringVar(&cfg.Addr, "a", cfg.Addr, "HTTP server address")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "database DSN")
	fs.IntVar(&cfg.BufferSize, "b", cfg.BufferSize, "initial buffer capacity in bytes")
	fs.IntVar(&cfg.Prefill, "n", cfg.Prefill, "number of buffers to create on startup")
	fs.IntVar(&cfg.GzipLevel, "z", cfg.GzipLevel, "gzip compression level")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return Config{}, fmt.Errorf("failed to parse flags: %w", err)
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("ошибка парсинга ENV: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.BufferSize <= 0 {
		return fmt.Errorf("buffer size must be positive, got %d", c.BufferSize)
	}
	if c.Prefill < 0 {
		return fmt.Errorf("prefill must not be negative, got %d", c.Prefill)
	}
	if c.Addr == "" {
		return errors.New("server address is empty")
	}
	return nil
}

func (c *Config) loadFromFile(path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// getConfigPath ищет -config в аргументах до разбора остальных флагов,
// иначе возвращает значение переменной окружения.
func getConfigPath(args []string, envValue string) string {
	for i, arg := range args {
		if (arg == "-config" || arg == "--config") && i+1 < len(args) {
			return args[i+1]
		}
		if path, ok := strings.CutPrefix(arg, "--config="); ok {
			return path
		}
		if path, ok := strings.CutPrefix(arg, "-config="); ok {
			return path
		}
	}
	return envValue
}
