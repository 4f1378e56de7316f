// Command align runs the Darwin Core alignment pipeline once: it loads a
// reef survey CSV, assigns event and occurrence identifiers, enriches
// scientific names against the WoRMS authority, and writes the event,
// occurrence, and extended measurement-or-fact tables.
//
// Usage:
//
//	align -input data/survey.csv -out out/
//
// Paths may also come from SURVEY_INPUT / OUTPUT_DIR; see internal/config
// for the full environment surface.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/dwc-align/internal/adapter/csvfile"
	httpadapter "github.com/couchcryptid/dwc-align/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/dwc-align/internal/adapter/kafka"
	"github.com/couchcryptid/dwc-align/internal/adapter/worms"
	"github.com/couchcryptid/dwc-align/internal/config"
	"github.com/couchcryptid/dwc-align/internal/domain"
	"github.com/couchcryptid/dwc-align/internal/observability"
	"github.com/couchcryptid/dwc-align/internal/pipeline"
)

func main() {
	if err := run(); err != nil {
		slog.Error("alignment failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	input := flag.String("input", "", "survey CSV path (overrides SURVEY_INPUT)")
	out := flag.String("out", "", "archive output directory (overrides OUTPUT_DIR)")
	vocab := flag.String("vocab", "", "measurement vocabulary TOML (overrides VOCAB_PATH)")
	flag.Parse()

	if *input != "" {
		cfg.InputPath = *input
	}
	if *out != "" {
		cfg.OutputDir = *out
	}
	if *vocab != "" {
		cfg.VocabPath = *vocab
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	specs, err := config.LoadVocab(cfg.VocabPath)
	if err != nil {
		return err
	}

	// Resolver stack: remote client, sqlite cache underneath the in-memory
	// LRU when a cache path is configured.
	var resolver domain.NameResolver
	if cfg.WormsEnabled {
		resolver = worms.NewClient(cfg.WormsBaseURL, cfg.WormsTimeout, logger, metrics)
		if cfg.WormsCachePath != "" {
			store, err := worms.OpenStore(cfg.WormsCachePath)
			if err != nil {
				return err
			}
			defer store.Close()
			resolver = worms.NewStoredResolver(resolver, store, logger, metrics)
			logger.Info("persistent resolver cache enabled", "path", cfg.WormsCachePath)
		}
		resolver = worms.NewCachedResolver(resolver, cfg.WormsCacheSize, metrics)
	} else {
		logger.Info("taxonomic enrichment disabled")
	}

	extractor := csvfile.NewReader(cfg.InputPath, logger)
	builder := pipeline.NewArchiveBuilder(resolver, specs, cfg.OccurrenceIDMode, logger, metrics)

	sinks := []pipeline.ArchiveSink{csvfile.NewDirWriter(cfg.OutputDir, logger, metrics)}
	if cfg.KafkaEnabled {
		publisher := kafkaadapter.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		defer func() {
			if err := publisher.Close(); err != nil {
				logger.Error("kafka publisher close error", "error", err)
			}
		}()
		sinks = append(sinks, publisher)
		logger.Info("kafka occurrence feed enabled", "topic", cfg.KafkaTopic)
	}

	p := pipeline.New(extractor, builder, sinks, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var srv *httpadapter.Server
	if cfg.MetricsAddr != "" {
		srv = httpadapter.NewServer(cfg.MetricsAddr, p, logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server error", "error", err)
			}
		}()
	}

	runErr := p.Run(ctx)

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown error", "error", err)
		}
	}

	return runErr
}
