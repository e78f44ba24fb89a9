package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	// DataDirs is the ordered list of directories searched for the dataset.
	// The first directory containing the stats file wins; the search outcome
	// is reported, never silently retried.
	DataDirs    []string
	StatsFile   string
	SummaryFile string
	MapFile     string

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	RiskQuantile     float64
	MetricsTolerance float64
	StrictMetrics    bool
	TopKDefault      int

	// Kafka reload notifications (optional).
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads configuration from environment variables, applying defaults
// where unset. A .env file in the working directory is honored when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	quantile, err := parseFloat("RISK_QUANTILE", "0.10")
	if err != nil {
		return nil, err
	}
	if quantile <= 0 || quantile >= 1 {
		return nil, errors.New("RISK_QUANTILE must be between 0 and 1 exclusive")
	}

	tolerance, err := parseFloat("METRICS_TOLERANCE", "0.05")
	if err != nil {
		return nil, err
	}
	if tolerance <= 0 {
		return nil, errors.New("METRICS_TOLERANCE must be positive")
	}

	topK, err := parseInt("TOP_K_DEFAULT", "15")
	if err != nil {
		return nil, err
	}
	if topK < 0 {
		return nil, errors.New("TOP_K_DEFAULT must be non-negative")
	}

	cfg := &Config{
		DataDirs:    splitList(envOrDefault("DATA_DIRS", "data,.")),
		StatsFile:   envOrDefault("STATS_FILE", "estadisticas_temperatura_distritos.csv"),
		SummaryFile: envOrDefault("SUMMARY_FILE", "metricas_resumen.json"),
		MapFile:     envOrDefault("MAP_FILE", "mapa_temperatura_distritos.png"),

		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		RiskQuantile:     quantile,
		MetricsTolerance: tolerance,
		StrictMetrics:    os.Getenv("STRICT_METRICS") == "true",
		TopKDefault:      topK,

		KafkaEnabled: os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers: splitList(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   envOrDefault("KAFKA_TOPIC", "district-dataset-reloads"),
	}

	if len(cfg.DataDirs) == 0 {
		return nil, errors.New("DATA_DIRS is required")
	}
	if cfg.StatsFile == "" {
		return nil, errors.New("STATS_FILE is required")
	}
	if cfg.SummaryFile == "" {
		return nil, errors.New("SUMMARY_FILE is required")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseFloat(key, fallback string) (float64, error) {
	v, err := strconv.ParseFloat(envOrDefault(key, fallback), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return v, nil
}

func parseInt(key, fallback string) (int, error) {
	n, err := strconv.Atoi(envOrDefault(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}
