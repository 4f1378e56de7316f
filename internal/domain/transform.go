package domain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// eventIDSeparator joins the grouping columns into an eventID.
const eventIDSeparator = "_"

// eventDateLayout accepts US dates with or without zero padding: "7/16/2004"
// and "07/16/2004" both parse.
const eventDateLayout = "1/2/2006"

// isoDateLayout is the calendar-date format used by every output table.
const isoDateLayout = "2006-01-02"

// OccurrenceIDMode selects how occurrence identifiers are assigned.
type OccurrenceIDMode string

const (
	// OccurrenceIDPerRow assigns a fresh UUID to every row.
	OccurrenceIDPerRow OccurrenceIDMode = "per-row"

	// OccurrenceIDShared assigns one UUID per run and broadcasts it to every
	// row. This reproduces the legacy notebook exports, where the identifier
	// was generated once and reused; keep only for byte-compatibility.
	OccurrenceIDShared OccurrenceIDMode = "shared"
)

// Valid reports whether the mode is one of the recognized values.
func (m OccurrenceIDMode) Valid() bool {
	return m == OccurrenceIDPerRow || m == OccurrenceIDShared
}

// ParseSurveyRecord converts a header-keyed row into a typed SurveyRecord.
// Latitude, longitude, cover, and depth must parse; rugosity and temperature
// are optional and stay nil when blank.
func ParseSurveyRecord(fields map[string]string, line int) (SurveyRecord, error) {
	rec := SurveyRecord{
		Date:           strings.TrimSpace(fields["date"]),
		Region:         strings.TrimSpace(fields["region"]),
		Station:        strings.TrimSpace(fields["station"]),
		Transect:       strings.TrimSpace(fields["transect"]),
		ScientificName: strings.TrimSpace(fields["species"]),
		Habitat:        strings.TrimSpace(fields["habitat"]),
		Line:           line,
	}

	var err error
	if rec.Latitude, err = parseRequiredFloat(fields, "lat", line); err != nil {
		return SurveyRecord{}, err
	}
	if rec.Longitude, err = parseRequiredFloat(fields, "lon", line); err != nil {
		return SurveyRecord{}, err
	}
	if rec.PercentCover, err = parseRequiredFloat(fields, "cover", line); err != nil {
		return SurveyRecord{}, err
	}
	if rec.Depth, err = parseRequiredFloat(fields, "depth", line); err != nil {
		return SurveyRecord{}, err
	}
	if rec.Rugosity, err = parseOptionalFloat(fields, "rugosity", line); err != nil {
		return SurveyRecord{}, err
	}
	if rec.Temperature, err = parseOptionalFloat(fields, "temperature", line); err != nil {
		return SurveyRecord{}, err
	}

	if rec.ScientificName == "" {
		return SurveyRecord{}, fmt.Errorf("line %d: missing species", line)
	}
	if rec.Date == "" {
		return SurveyRecord{}, fmt.Errorf("line %d: missing date", line)
	}

	return rec, nil
}

func parseRequiredFloat(fields map[string]string, key string, line int) (float64, error) {
	s := strings.TrimSpace(fields[key])
	if s == "" {
		return 0, fmt.Errorf("line %d: missing %s", line, key)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("line %d: parse %s %q: %w", line, key, s, err)
	}
	return v, nil
}

func parseOptionalFloat(fields map[string]string, key string, line int) (*float64, error) {
	s := strings.TrimSpace(fields[key])
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("line %d: parse %s %q: %w", line, key, s, err)
	}
	return &v, nil
}

// EventID derives the sampling-event key from the grouping columns.
func (r SurveyRecord) EventID() string {
	return strings.Join([]string{r.Region, r.Station, r.Transect}, eventIDSeparator)
}

// OccurrenceStatus maps percent cover to presence: zero means the taxon was
// looked for and not seen.
func OccurrenceStatus(percentCover float64) string {
	if percentCover == 0 {
		return "absent"
	}
	return "present"
}

// ParseEventDate parses the input date notation. Any unparseable date is a
// run-fatal error; there is no partial recovery.
func ParseEventDate(s string) (time.Time, error) {
	t, err := time.Parse(eventDateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse event date %q: %w", s, err)
	}
	return t, nil
}

// FormatDate renders a calendar date for output, no time of day.
func FormatDate(t time.Time) string {
	return t.Format(isoDateLayout)
}

// BuildEvents projects the event table: one row per distinct eventID, first
// row wins, constant basis-of-record and datum columns attached.
func BuildEvents(records []SurveyRecord) ([]EventRecord, error) {
	seen := make(map[string]struct{}, len(records))
	events := make([]EventRecord, 0, len(records))

	for _, r := range records {
		id := r.EventID()
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		date, err := ParseEventDate(r.Date)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", r.Line, err)
		}

		events = append(events, EventRecord{
			EventID:              id,
			DecimalLatitude:      r.Latitude,
			DecimalLongitude:     r.Longitude,
			MinimumDepthInMeters: r.Depth,
			MaximumDepthInMeters: r.Depth,
			Habitat:              r.Habitat,
			Island:               r.Region,
			EventDate:            date,
			BasisOfRecord:        BasisOfRecord,
			GeodeticDatum:        GeodeticDatum,
		})
	}

	return events, nil
}

// BuildOccurrences projects one occurrence row per input row, aligned by
// index with records so measurement rows can reference the assigned IDs.
// Taxonomy fields are left blank for enrichment.
func BuildOccurrences(records []SurveyRecord, mode OccurrenceIDMode) []OccurrenceRecord {
	shared := ""
	if mode == OccurrenceIDShared {
		shared = uuid.NewString()
	}

	occs := make([]OccurrenceRecord, len(records))
	for i, r := range records {
		id := shared
		if mode != OccurrenceIDShared {
			id = uuid.NewString()
		}
		occs[i] = OccurrenceRecord{
			ScientificName:   r.ScientificName,
			EventID:          r.EventID(),
			OccurrenceID:     id,
			OccurrenceStatus: OccurrenceStatus(r.PercentCover),
		}
	}
	return occs
}

// SortOccurrences orders occurrence rows by scientific name for output
// determinism, keeping input order within a name.
func SortOccurrences(occs []OccurrenceRecord) {
	sort.SliceStable(occs, func(i, j int) bool {
		return occs[i].ScientificName < occs[j].ScientificName
	})
}

// BuildMeasurements unions the per-quantity sub-tables: one row per input row
// per quantity that has a value. occs must be index-aligned with records (as
// returned by BuildOccurrences, before sorting) so occurrence-level rows pick
// up the right occurrenceID.
func BuildMeasurements(records []SurveyRecord, occs []OccurrenceRecord, specs []MeasurementSpec) ([]MeasurementRecord, error) {
	if len(occs) != len(records) {
		return nil, fmt.Errorf("occurrence rows (%d) not aligned with records (%d)", len(occs), len(records))
	}

	var out []MeasurementRecord
	for _, spec := range specs {
		for i, r := range records {
			value, ok := spec.valueOf(r)
			if !ok {
				continue
			}

			date, err := ParseEventDate(r.Date)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", r.Line, err)
			}

			occurrenceID := ""
			if spec.Level == MeasurementLevelOccurrence {
				occurrenceID = occs[i].OccurrenceID
			}

			out = append(out, MeasurementRecord{
				EventID:                   r.EventID(),
				OccurrenceID:              occurrenceID,
				MeasurementType:           spec.Type,
				MeasurementTypeID:         spec.TypeID,
				MeasurementValue:          formatValue(value, spec.Decimals),
				MeasurementUnit:           spec.Unit,
				MeasurementUnitID:         spec.UnitID,
				MeasurementAccuracy:       spec.Accuracy,
				MeasurementDeterminedDate: date,
				MeasurementMethod:         spec.Method,
			})
		}
	}
	return out, nil
}

// formatValue renders a measurement value. Negative decimals means the
// shortest representation that round-trips, so integral values print bare
// (15, not 15.000000).
func formatValue(v float64, decimals int) string {
	if decimals < 0 {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strconv.FormatFloat(v, 'f', decimals, 64)
}
