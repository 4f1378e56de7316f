package domain

// MeasurementLevel says whether a quantity describes the sampling event or a
// single occurrence. Occurrence-level rows carry a non-blank occurrenceID.
type MeasurementLevel string

const (
	MeasurementLevelEvent      MeasurementLevel = "event"
	MeasurementLevelOccurrence MeasurementLevel = "occurrence"
)

// MeasurementSpec describes one measured quantity and how it serializes into
// the extended measurement-or-fact table. Type and unit identifiers point at
// the NERC vocabulary server; Decimals < 0 means shortest round-trip
// formatting.
type MeasurementSpec struct {
	Column   string           `toml:"column"` // "temperature", "rugosity", or "cover"
	Level    MeasurementLevel `toml:"level"`
	Type     string           `toml:"type"`
	TypeID   string           `toml:"type_id"`
	Unit     string           `toml:"unit"`
	UnitID   string           `toml:"unit_id"`
	Accuracy string           `toml:"accuracy"`
	Decimals int              `toml:"decimals"`
	Method   string           `toml:"method"`
}

// valueOf extracts this quantity's value from a survey row. The second
// return is false when the optional column is blank for the row.
func (s MeasurementSpec) valueOf(r SurveyRecord) (float64, bool) {
	switch s.Column {
	case "temperature":
		if r.Temperature == nil {
			return 0, false
		}
		return *r.Temperature, true
	case "rugosity":
		if r.Rugosity == nil {
			return 0, false
		}
		return *r.Rugosity, true
	case "cover":
		return r.PercentCover, true
	default:
		return 0, false
	}
}

// DefaultMeasurementSpecs returns the built-in vocabulary for the three
// survey quantities. Deployments can override it with a TOML mapping file
// (see config.LoadVocab).
func DefaultMeasurementSpecs() []MeasurementSpec {
	return []MeasurementSpec{
		{
			Column:   "temperature",
			Level:    MeasurementLevelEvent,
			Type:     "Temperature of the water body",
			TypeID:   "http://vocab.nerc.ac.uk/collection/P01/current/TEMPPR01/",
			Unit:     "Celsius",
			UnitID:   "http://vocab.nerc.ac.uk/collection/P06/current/UPAA/",
			Decimals: -1,
		},
		{
			Column:   "rugosity",
			Level:    MeasurementLevelEvent,
			Type:     "Rugosity of the reef substrate",
			Accuracy: "0.000001",
			Decimals: 6,
			Method:   "chain-and-tape ratio along transect",
		},
		{
			Column:   "cover",
			Level:    MeasurementLevelOccurrence,
			Type:     "Percent cover of biological entity",
			TypeID:   "http://vocab.nerc.ac.uk/collection/P01/current/SDBIOL10/",
			Unit:     "Percent",
			UnitID:   "http://vocab.nerc.ac.uk/collection/P06/current/UPCT/",
			Decimals: -1,
		},
	}
}
