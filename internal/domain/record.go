package domain

import "time"

// SurveyRecord is one parsed input row. Immutable once loaded; every later
// table is projected from it.
type SurveyRecord struct {
	Date           string // raw M/D/YYYY text, parsed lazily so load order is preserved
	Latitude       float64
	Longitude      float64
	Region         string
	Station        string
	Transect       string
	ScientificName string
	PercentCover   float64
	Depth          float64
	Habitat        string
	Rugosity       *float64 // nil when the column is blank
	Temperature    *float64 // nil when the column is blank

	Line int // 1-based source line, for error messages
}

// EventRecord is one row of the Darwin Core event table.
type EventRecord struct {
	EventID              string
	DecimalLatitude      float64
	DecimalLongitude     float64
	MinimumDepthInMeters float64
	MaximumDepthInMeters float64
	Habitat              string
	Island               string
	EventDate            time.Time
	BasisOfRecord        string
	GeodeticDatum        string
}

// OccurrenceRecord is one row of the Darwin Core occurrence table.
// Taxonomy fields stay blank until enrichment.
type OccurrenceRecord struct {
	ScientificName           string `json:"scientificName"`
	EventID                  string `json:"eventID"`
	OccurrenceID             string `json:"occurrenceID"`
	OccurrenceStatus         string `json:"occurrenceStatus"`
	AcceptedName             string `json:"acceptedname,omitempty"`
	AcceptedID               string `json:"acceptedID,omitempty"`
	ScientificNameID         string `json:"scientificNameID,omitempty"`
	Kingdom                  string `json:"kingdom,omitempty"`
	Phylum                   string `json:"phylum,omitempty"`
	Class                    string `json:"class,omitempty"`
	Order                    string `json:"order,omitempty"`
	Family                   string `json:"family,omitempty"`
	Genus                    string `json:"genus,omitempty"`
	ScientificNameAuthorship string `json:"scientificNameAuthorship,omitempty"`
	TaxonRank                string `json:"taxonRank,omitempty"`
}

// MeasurementRecord is one row of the extended measurement-or-fact table.
// OccurrenceID is blank for event-level quantities. MeasurementValue is
// preformatted text because formatting is quantity-specific.
type MeasurementRecord struct {
	EventID                   string
	OccurrenceID              string
	MeasurementType           string
	MeasurementTypeID         string
	MeasurementValue          string
	MeasurementUnit           string
	MeasurementUnitID         string
	MeasurementAccuracy       string
	MeasurementDeterminedDate time.Time
	MeasurementMethod         string
}

// Archive holds the three aligned tables produced by one run.
type Archive struct {
	Events       []EventRecord
	Occurrences  []OccurrenceRecord
	Measurements []MeasurementRecord
	BuiltAt      time.Time
}

// NewArchive assembles an archive, stamping BuiltAt from the package clock.
func NewArchive(events []EventRecord, occs []OccurrenceRecord, meas []MeasurementRecord) Archive {
	return Archive{
		Events:       events,
		Occurrences:  occs,
		Measurements: meas,
		BuiltAt:      clock.Now(),
	}
}

// Constant columns of the event table.
const (
	BasisOfRecord = "HumanObservation"
	GeodeticDatum = "EPSG:4326 WGS84"
)
