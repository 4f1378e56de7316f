package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/dwc-align/internal/domain"
)

// Config holds all pipeline settings, populated from environment variables.
// Input and output paths can be overridden by CLI flags after Load.
type Config struct {
	InputPath string
	OutputDir string
	VocabPath string // optional TOML measurement vocabulary

	LogLevel        string
	LogFormat       string
	MetricsAddr     string // empty disables the metrics HTTP server
	ShutdownTimeout time.Duration

	OccurrenceIDMode domain.OccurrenceIDMode

	// Taxonomic authority configuration.
	WormsEnabled   bool
	WormsBaseURL   string
	WormsTimeout   time.Duration
	WormsCacheSize int
	WormsCachePath string // sqlite persistent cache, empty disables

	// Optional Kafka occurrence feed.
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	wormsTimeout, err := parseDuration("WORMS_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}

	cacheSize, err := parsePositiveInt("WORMS_CACHE_SIZE", 1000)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		InputPath: os.Getenv("SURVEY_INPUT"),
		OutputDir: envOrDefault("OUTPUT_DIR", "."),
		VocabPath: os.Getenv("VOCAB_PATH"),

		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		MetricsAddr:     os.Getenv("METRICS_ADDR"),
		ShutdownTimeout: shutdownTimeout,

		OccurrenceIDMode: domain.OccurrenceIDMode(envOrDefault("OCCURRENCE_ID_MODE", string(domain.OccurrenceIDPerRow))),

		WormsEnabled:   envOrDefault("WORMS_ENABLED", "true") == "true",
		WormsBaseURL:   envOrDefault("WORMS_BASE_URL", "https://www.marinespecies.org/rest"),
		WormsTimeout:   wormsTimeout,
		WormsCacheSize: cacheSize,
		WormsCachePath: os.Getenv("WORMS_CACHE_PATH"),

		KafkaEnabled: os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers: parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   envOrDefault("KAFKA_TOPIC", "aligned-occurrences"),
	}

	if !cfg.OccurrenceIDMode.Valid() {
		return nil, fmt.Errorf("invalid OCCURRENCE_ID_MODE %q (want %q or %q)",
			cfg.OccurrenceIDMode, domain.OccurrenceIDPerRow, domain.OccurrenceIDShared)
	}
	if cfg.WormsEnabled && cfg.WormsBaseURL == "" {
		return nil, errors.New("WORMS_ENABLED is true but WORMS_BASE_URL is empty")
	}
	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
		}
		if cfg.KafkaTopic == "" {
			return nil, errors.New("KAFKA_ENABLED is true but KAFKA_TOPIC is empty")
		}
	}

	return cfg, nil
}

// Validate checks the path settings that CLI flags may have filled in after
// Load.
func (c *Config) Validate() error {
	if c.InputPath == "" {
		return errors.New("input path is required (SURVEY_INPUT or -input)")
	}
	if c.OutputDir == "" {
		return errors.New("output directory is required (OUTPUT_DIR or -out)")
	}
	return nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

func parseBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
