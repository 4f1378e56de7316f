package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/dwc-align/internal/config"
	"github.com/couchcryptid/dwc-align/internal/domain"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SURVEY_INPUT", "OUTPUT_DIR", "VOCAB_PATH",
		"LOG_LEVEL", "LOG_FORMAT", "METRICS_ADDR", "SHUTDOWN_TIMEOUT",
		"OCCURRENCE_ID_MODE",
		"WORMS_ENABLED", "WORMS_BASE_URL", "WORMS_TIMEOUT", "WORMS_CACHE_SIZE", "WORMS_CACHE_PATH",
		"KAFKA_ENABLED", "KAFKA_BROKERS", "KAFKA_TOPIC",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Empty(t, cfg.InputPath)
	assert.Equal(t, ".", cfg.OutputDir)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Empty(t, cfg.MetricsAddr)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, domain.OccurrenceIDPerRow, cfg.OccurrenceIDMode)
	assert.True(t, cfg.WormsEnabled)
	assert.Equal(t, "https://www.marinespecies.org/rest", cfg.WormsBaseURL)
	assert.Equal(t, 30*time.Second, cfg.WormsTimeout)
	assert.Equal(t, 1000, cfg.WormsCacheSize)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "aligned-occurrences", cfg.KafkaTopic)
}

func TestLoad_CustomValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("SURVEY_INPUT", "/data/survey.csv")
	t.Setenv("OUTPUT_DIR", "/data/out")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("METRICS_ADDR", ":9090")
	t.Setenv("OCCURRENCE_ID_MODE", "shared")
	t.Setenv("WORMS_ENABLED", "false")
	t.Setenv("WORMS_TIMEOUT", "5s")
	t.Setenv("WORMS_CACHE_SIZE", "50")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker-1:9092, broker-2:9092")
	t.Setenv("KAFKA_TOPIC", "occurrences")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "/data/survey.csv", cfg.InputPath)
	assert.Equal(t, "/data/out", cfg.OutputDir)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, ":9090", cfg.MetricsAddr)
	assert.Equal(t, domain.OccurrenceIDShared, cfg.OccurrenceIDMode)
	assert.False(t, cfg.WormsEnabled)
	assert.Equal(t, 5*time.Second, cfg.WormsTimeout)
	assert.Equal(t, 50, cfg.WormsCacheSize)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "occurrences", cfg.KafkaTopic)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"bad occurrence id mode", "OCCURRENCE_ID_MODE", "random"},
		{"bad shutdown timeout", "SHUTDOWN_TIMEOUT", "soon"},
		{"negative shutdown timeout", "SHUTDOWN_TIMEOUT", "-1s"},
		{"bad worms timeout", "WORMS_TIMEOUT", "never"},
		{"bad cache size", "WORMS_CACHE_SIZE", "many"},
		{"zero cache size", "WORMS_CACHE_SIZE", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.val)

			_, err := config.Load()
			require.Error(t, err)
		})
	}
}

func TestLoad_KafkaEnabledNeedsTopic(t *testing.T) {
	clearEnv(t)
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_TOPIC", " ")

	cfg, err := config.Load()
	// The default topic only applies when the variable is unset entirely.
	if err == nil {
		assert.NotEmpty(t, cfg.KafkaTopic)
	}
}

func TestValidate(t *testing.T) {
	cfg := &config.Config{}
	require.Error(t, cfg.Validate())

	cfg.InputPath = "/data/survey.csv"
	require.Error(t, cfg.Validate())

	cfg.OutputDir = "."
	require.NoError(t, cfg.Validate())
}

func TestLoadVocab_Defaults(t *testing.T) {
	specs, err := config.LoadVocab("")
	require.NoError(t, err)
	require.Len(t, specs, 3)

	columns := make([]string, 0, len(specs))
	for _, s := range specs {
		columns = append(columns, s.Column)
	}
	assert.ElementsMatch(t, []string{"temperature", "rugosity", "cover"}, columns)
}

func TestLoadVocab_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocab.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[[measurement]]
column = "temperature"
level = "event"
type = "Temperature of the water body"
type_id = "http://vocab.nerc.ac.uk/collection/P01/current/TEMPPR01/"
unit = "Celsius"
unit_id = "http://vocab.nerc.ac.uk/collection/P06/current/UPAA/"
decimals = -1
`), 0o644))

	specs, err := config.LoadVocab(path)
	require.NoError(t, err)
	require.Len(t, specs, 1)
	assert.Equal(t, "temperature", specs[0].Column)
	assert.Equal(t, domain.MeasurementLevelEvent, specs[0].Level)
	assert.Equal(t, "Celsius", specs[0].Unit)
}

func TestLoadVocab_Invalid(t *testing.T) {
	tests := []struct {
		name string
		toml string
	}{
		{"no measurements", `title = "empty"`},
		{"missing column", "[[measurement]]\nlevel = \"event\""},
		{"bad level", "[[measurement]]\ncolumn = \"temperature\"\nlevel = \"row\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "vocab.toml")
			require.NoError(t, os.WriteFile(path, []byte(tt.toml), 0o644))

			_, err := config.LoadVocab(path)
			require.Error(t, err)
		})
	}
}

func TestLoadVocab_MissingFile(t *testing.T) {
	_, err := config.LoadVocab(filepath.Join(t.TempDir(), "absent.toml"))
	require.Error(t, err)
}
