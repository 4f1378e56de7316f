package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/dwc-align/internal/domain"
	"github.com/couchcryptid/dwc-align/internal/observability"
)

// ArchiveBuilder turns survey rows into the three aligned tables, with
// optional taxonomic enrichment.
type ArchiveBuilder struct {
	resolver domain.NameResolver
	specs    []domain.MeasurementSpec
	idMode   domain.OccurrenceIDMode
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewArchiveBuilder creates a builder. Pass a nil resolver to skip
// enrichment; occurrence rows then keep blank taxonomy fields.
func NewArchiveBuilder(resolver domain.NameResolver, specs []domain.MeasurementSpec, idMode domain.OccurrenceIDMode, logger *slog.Logger, metrics *observability.Metrics) *ArchiveBuilder {
	return &ArchiveBuilder{
		resolver: resolver,
		specs:    specs,
		idMode:   idMode,
		logger:   logger,
		metrics:  metrics,
	}
}

// Build produces the archive. Occurrence rows are built aligned with the
// input so measurement rows can reference their IDs, and sorted by
// scientific name only after the measurement table is projected.
func (b *ArchiveBuilder) Build(ctx context.Context, records []domain.SurveyRecord) (domain.Archive, error) {
	events, err := domain.BuildEvents(records)
	if err != nil {
		return domain.Archive{}, err
	}

	occurrences := domain.BuildOccurrences(records, b.idMode)

	measurements, err := domain.BuildMeasurements(records, occurrences, b.specs)
	if err != nil {
		return domain.Archive{}, err
	}

	if err := b.enrich(ctx, occurrences); err != nil {
		return domain.Archive{}, err
	}
	domain.SortOccurrences(occurrences)

	return domain.NewArchive(events, occurrences, measurements), nil
}

func (b *ArchiveBuilder) enrich(ctx context.Context, occurrences []domain.OccurrenceRecord) error {
	if b.resolver == nil {
		b.logger.Info("taxonomic enrichment disabled")
		return nil
	}

	names := domain.DistinctNames(occurrences)
	matches, err := b.resolver.Resolve(ctx, names)
	if err != nil {
		return err
	}

	unmatched := domain.ApplyTaxonomy(occurrences, matches)
	for _, name := range unmatched {
		b.logger.Warn("no authority match for name", "scientific_name", name)
	}
	b.metrics.ResolverUnmatched.Add(float64(len(unmatched)))

	b.logger.Info("enrichment complete",
		"names", len(names), "matched", len(names)-len(unmatched), "unmatched", len(unmatched))
	return nil
}
