// Package config loads engine configuration from the environment. A .env
// file in the working directory is honored when present; real environment
// variables win over it.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/banksim/ledger-engine/internal/money"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr     string
	DataFile     string
	DatabaseURL  string
	KafkaBrokers []string

	AccrualInterval    time.Duration
	InterestRate       money.Rate
	OverdraftLimit     money.Money
	DailyWithdrawalCap int

	LogLevel string
	LogDev   bool
}

func defaults() Config {
	return Config{
		HTTPAddr:           ":8080",
		DataFile:           "ledger.json",
		AccrualInterval:    60 * time.Second,
		InterestRate:       money.MustParseRate("0.05"),
		OverdraftLimit:     money.MustParse("500.00"),
		DailyWithdrawalCap: 5,
		LogLevel:           "info",
	}
}

// Load reads configuration from .env and the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := defaults()
	cfg.HTTPAddr = envString("HTTP_ADDR", cfg.HTTPAddr)
	cfg.DataFile = envString("DATA_FILE", cfg.DataFile)
	cfg.DatabaseURL = envString("DATABASE_URL", cfg.DatabaseURL)
	cfg.LogLevel = envString("LOG_LEVEL", cfg.LogLevel)
	cfg.LogDev = envString("LOG_DEV", "") == "true"

	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.KafkaBrokers = strings.Split(v, ",")
	}
	if v := os.Getenv("ACCRUAL_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("ACCRUAL_INTERVAL: %w", err)
		}
		if d <= 0 {
			return Config{}, fmt.Errorf("ACCRUAL_INTERVAL must be positive, got %s", d)
		}
		cfg.AccrualInterval = d
	}
	if v := os.Getenv("INTEREST_RATE"); v != "" {
		r, err := money.ParseRate(v)
		if err != nil {
			return Config{}, fmt.Errorf("INTEREST_RATE: %w", err)
		}
		cfg.InterestRate = r
	}
	if v := os.Getenv("OVERDRAFT_LIMIT"); v != "" {
		m, err := money.Parse(v)
		if err != nil {
			return Config{}, fmt.Errorf("OVERDRAFT_LIMIT: %w", err)
		}
		if m.IsNegative() {
			return Config{}, fmt.Errorf("OVERDRAFT_LIMIT must not be negative, got %s", m)
		}
		cfg.OverdraftLimit = m
	}
	if v := os.Getenv("DAILY_WITHDRAWAL_CAP"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("DAILY_WITHDRAWAL_CAP: %w", err)
		}
		if n < 1 {
			return Config{}, fmt.Errorf("DAILY_WITHDRAWAL_CAP must be at least 1, got %d", n)
		}
		cfg.DailyWithdrawalCap = n
	}
	return cfg, nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
