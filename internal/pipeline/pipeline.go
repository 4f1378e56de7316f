package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/dwc-align/internal/domain"
	"github.com/couchcryptid/dwc-align/internal/observability"
)

// Extractor loads the survey rows from the source file.
type Extractor interface {
	Extract(ctx context.Context) ([]domain.SurveyRecord, error)
}

// ArchiveSink writes a completed archive to a destination.
type ArchiveSink interface {
	Name() string
	Write(ctx context.Context, a domain.Archive) error
}

// Pipeline orchestrates one load-align-enrich-write run. Unlike a streaming
// consumer there is no retry loop: per the alignment contract the whole run
// succeeds or the whole run fails.
type Pipeline struct {
	extractor Extractor
	builder   *ArchiveBuilder
	sinks     []ArchiveSink
	logger    *slog.Logger
	metrics   *observability.Metrics
	done      atomic.Bool
}

// New creates a Pipeline with the given stages and observability.
func New(e Extractor, b *ArchiveBuilder, sinks []ArchiveSink, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		extractor: e,
		builder:   b,
		sinks:     sinks,
		logger:    logger,
		metrics:   metrics,
	}
}

// CheckReadiness returns nil once the archive has been written to every sink.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.done.Load() {
		return errors.New("alignment run has not completed yet")
	}
	return nil
}

// Run executes the pipeline once.
func (p *Pipeline) Run(ctx context.Context) error {
	start := time.Now()
	p.metrics.RunActive.Set(1)
	defer p.metrics.RunActive.Set(0)

	records, err := p.extractor.Extract(ctx)
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}
	p.metrics.RowsExtracted.Add(float64(len(records)))
	p.logger.Info("survey loaded", "rows", len(records))

	archive, err := p.builder.Build(ctx, records)
	if err != nil {
		return fmt.Errorf("build archive: %w", err)
	}

	for _, sink := range p.sinks {
		if err := sink.Write(ctx, archive); err != nil {
			return fmt.Errorf("write archive to %s: %w", sink.Name(), err)
		}
	}

	p.done.Store(true)
	p.metrics.RunDuration.Observe(time.Since(start).Seconds())
	p.logger.Info("run complete",
		"events", len(archive.Events),
		"occurrences", len(archive.Occurrences),
		"measurements", len(archive.Measurements),
		"duration", time.Since(start),
	)
	return nil
}
