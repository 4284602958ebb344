package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// MetricsOff значение METRICS_ADDR, отключающее /metrics
const MetricsOff = "off"

type Config struct {
	TelegramToken string
	DBDSN         string
	Environment   string
	NATSURL       string // пусто - события не публикуются
	MetricsAddr   string
	Location      *time.Location // локальное время учителей
}

// Load читает .env (если есть) и переменные окружения
func Load() (*Config, error) {
	// Файла может не быть: в контейнере всё приходит через окружение
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return FromEnv(os.Getenv)
}

// FromEnv собирает конфиг из функции чтения переменных
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		TelegramToken: getenv("TELEGRAM_TOKEN"),
		DBDSN:         getenv("DB_DSN"),
		Environment:   getenv("ENV"),
		NATSURL:       getenv("NATS_URL"),
		MetricsAddr:   getenv("METRICS_ADDR"),
	}

	// Устанавливаем дефолтные значения
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.MetricsAddr == "" {
		cfg.MetricsAddr = ":9090"
	}

	timezone := getenv("TIMEZONE")
	if timezone == "" {
		timezone = "Europe/Moscow"
	}

	// Проверяем обязательные поля
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required but not set")
	}
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is required but not set")
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", timezone, err)
	}
	cfg.Location = loc

	return cfg, nil
}

// MetricsEnabled поднимать ли HTTP-листенер для /metrics
func (c *Config) MetricsEnabled() bool {
	return c.MetricsAddr != MetricsOff
}
