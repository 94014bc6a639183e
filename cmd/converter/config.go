package main

import (
	"fmt"
	"log"
	"service-converter/internal"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	DatabaseURL string

	HTTPPort string

	BaseCCY      internal.CurrencyCode
	RatesAPIURL  string
	FetchTimeout time.Duration
	PopularPairs []internal.Pair

	MaxConverters int

	CronSpec string
	Location string

	LogLevel string
}

func LoadConfig() (Config, error) {
	if err := godotenv.Overload(); err != nil {
		log.Println("no .env file, using environment only")
	}

	v := viper.New()
	v.SetDefault("PORT", "8080")
	v.SetDefault("BASE_CURRENCY", "USD")
	v.SetDefault("RATES_API_URL", "https://api.exchangerate-api.com/v4/latest")
	v.SetDefault("FETCH_TIMEOUT", "10s")
	v.SetDefault("POPULAR_PAIRS", "USD/EUR,USD/GBP,USD/JPY,USD/CAD,EUR/GBP,GBP/JPY")
	v.SetDefault("MAX_CONVERTERS", internal.DefaultMaxConverters)
	v.SetDefault("REFRESH_CRON", "*/5 * * * *")
	v.SetDefault("LOCATION", "UTC")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DATABASE_URL", "")
	v.AutomaticEnv()

	cfg := Config{
		DatabaseURL: strings.TrimSpace(v.GetString("DATABASE_URL")),
		HTTPPort:    strings.TrimSpace(v.GetString("PORT")),
		RatesAPIURL: strings.TrimSpace(v.GetString("RATES_API_URL")),
		CronSpec:    strings.TrimSpace(v.GetString("REFRESH_CRON")),
		Location:    strings.TrimSpace(v.GetString("LOCATION")),
		LogLevel:    strings.TrimSpace(v.GetString("LOG_LEVEL")),
	}

	base, err := internal.NewCurrencyCode(v.GetString("BASE_CURRENCY"))
	if err != nil {
		return Config{}, fmt.Errorf("BASE_CURRENCY: %w", err)
	}
	cfg.BaseCCY = base

	cfg.FetchTimeout = v.GetDuration("FETCH_TIMEOUT")
	if cfg.FetchTimeout <= 0 {
		return Config{}, fmt.Errorf("FETCH_TIMEOUT must be positive, got %q", v.GetString("FETCH_TIMEOUT"))
	}

	for _, raw := range strings.Split(v.GetString("POPULAR_PAIRS"), ",") {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		p, err := internal.ParsePair(raw)
		if err != nil {
			return Config{}, fmt.Errorf("POPULAR_PAIRS: %w", err)
		}
		cfg.PopularPairs = append(cfg.PopularPairs, p)
	}

	cfg.MaxConverters = v.GetInt("MAX_CONVERTERS")
	if cfg.MaxConverters <= 0 {
		return Config{}, fmt.Errorf("MAX_CONVERTERS must be positive, got %q", v.GetString("MAX_CONVERTERS"))
	}

	if cfg.HTTPPort == "" {
		cfg.HTTPPort = "8080"
	}
	if cfg.CronSpec == "" {
		return Config{}, fmt.Errorf("REFRESH_CRON is empty")
	}

	return cfg, nil
}
