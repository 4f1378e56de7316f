package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/couchcryptid/dwc-align/internal/domain"
	"github.com/couchcryptid/dwc-align/internal/observability"
)

// Output file names within the archive directory.
const (
	EventFile       = "event.csv"
	OccurrenceFile  = "occurrence.csv"
	MeasurementFile = "extendedmeasurementorfact.csv"
)

// Column orders are fixed per table; the occurrence order in particular is
// part of the output contract.
var (
	EventColumns = []string{
		"eventID", "decimalLatitude", "decimalLongitude",
		"minimumDepthInMeters", "maximumDepthInMeters",
		"habitat", "island", "eventDate", "basisOfRecord", "geodeticDatum",
	}
	OccurrenceColumns = []string{
		"scientificName", "eventID", "occurrenceID", "occurrenceStatus",
		"acceptedname", "acceptedID", "scientificNameID",
		"kingdom", "phylum", "class", "order", "family", "genus",
		"scientificNameAuthorship", "taxonRank",
	}
	MeasurementColumns = []string{
		"eventID", "occurrenceID", "measurementType", "measurementTypeID",
		"measurementValue", "measurementUnit", "measurementUnitID",
		"measurementAccuracy", "measurementDeterminedDate", "measurementMethod",
	}
)

// DirWriter serializes an archive into a directory, one file per table.
// It implements pipeline.ArchiveSink. Files are written independently; a
// run interrupted between files leaves a mixed-generation directory.
type DirWriter struct {
	dir     string
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewDirWriter creates a writer targeting dir, creating it if needed.
func NewDirWriter(dir string, logger *slog.Logger, metrics *observability.Metrics) *DirWriter {
	return &DirWriter{dir: dir, logger: logger, metrics: metrics}
}

func (w *DirWriter) Name() string { return "csv" }

// Write serializes the three tables.
func (w *DirWriter) Write(_ context.Context, a domain.Archive) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	if err := w.writeEvents(a.Events); err != nil {
		return err
	}
	if err := w.writeOccurrences(a.Occurrences); err != nil {
		return err
	}
	if err := w.writeMeasurements(a.Measurements); err != nil {
		return err
	}

	w.logger.Info("archive written", "dir", w.dir,
		"events", len(a.Events), "occurrences", len(a.Occurrences), "measurements", len(a.Measurements))
	return nil
}

func (w *DirWriter) writeEvents(events []domain.EventRecord) error {
	rows := make([][]string, 0, len(events)+1)
	rows = append(rows, EventColumns)
	for _, e := range events {
		rows = append(rows, []string{
			e.EventID,
			formatFloat(e.DecimalLatitude),
			formatFloat(e.DecimalLongitude),
			formatFloat(e.MinimumDepthInMeters),
			formatFloat(e.MaximumDepthInMeters),
			e.Habitat,
			e.Island,
			domain.FormatDate(e.EventDate),
			e.BasisOfRecord,
			e.GeodeticDatum,
		})
	}
	if err := w.writeCSV(EventFile, rows); err != nil {
		return err
	}
	w.metrics.RecordsWritten.WithLabelValues("event").Add(float64(len(events)))
	return nil
}

// writeOccurrences quotes every field, which encoding/csv cannot be told to
// do, so rows are rendered by hand.
func (w *DirWriter) writeOccurrences(occs []domain.OccurrenceRecord) error {
	var b strings.Builder
	writeQuotedRow(&b, OccurrenceColumns)
	for _, o := range occs {
		writeQuotedRow(&b, []string{
			o.ScientificName, o.EventID, o.OccurrenceID, o.OccurrenceStatus,
			o.AcceptedName, o.AcceptedID, o.ScientificNameID,
			o.Kingdom, o.Phylum, o.Class, o.Order, o.Family, o.Genus,
			o.ScientificNameAuthorship, o.TaxonRank,
		})
	}

	path := filepath.Join(w.dir, OccurrenceFile)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", OccurrenceFile, err)
	}
	w.metrics.RecordsWritten.WithLabelValues("occurrence").Add(float64(len(occs)))
	return nil
}

func (w *DirWriter) writeMeasurements(meas []domain.MeasurementRecord) error {
	rows := make([][]string, 0, len(meas)+1)
	rows = append(rows, MeasurementColumns)
	for _, m := range meas {
		rows = append(rows, []string{
			m.EventID,
			m.OccurrenceID,
			m.MeasurementType,
			m.MeasurementTypeID,
			m.MeasurementValue,
			m.MeasurementUnit,
			m.MeasurementUnitID,
			m.MeasurementAccuracy,
			domain.FormatDate(m.MeasurementDeterminedDate),
			m.MeasurementMethod,
		})
	}
	if err := w.writeCSV(MeasurementFile, rows); err != nil {
		return err
	}
	w.metrics.RecordsWritten.WithLabelValues("emof").Add(float64(len(meas)))
	return nil
}

func (w *DirWriter) writeCSV(name string, rows [][]string) error {
	path := filepath.Join(w.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}

	cw := csv.NewWriter(f)
	if err := cw.WriteAll(rows); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	return nil
}

func writeQuotedRow(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(f, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteByte('\n')
}

// formatFloat keeps precision as given without trailing zeros.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
