package config

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/couchcryptid/dwc-align/internal/domain"
)

// vocabFile is the TOML shape of a measurement vocabulary override:
//
//	[[measurement]]
//	column = "temperature"
//	level = "event"
//	type = "Temperature of the water body"
//	type_id = "http://vocab.nerc.ac.uk/collection/P01/current/TEMPPR01/"
//	unit = "Celsius"
//	unit_id = "http://vocab.nerc.ac.uk/collection/P06/current/UPAA/"
//	decimals = -1
type vocabFile struct {
	Measurements []domain.MeasurementSpec `toml:"measurement"`
}

// LoadVocab returns the measurement vocabulary, reading the TOML file at
// path when given, or the built-in defaults when path is empty.
func LoadVocab(path string) ([]domain.MeasurementSpec, error) {
	if path == "" {
		return domain.DefaultMeasurementSpecs(), nil
	}

	var f vocabFile
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, fmt.Errorf("load vocabulary %s: %w", path, err)
	}
	if len(f.Measurements) == 0 {
		return nil, fmt.Errorf("vocabulary %s defines no measurements", path)
	}

	for i, m := range f.Measurements {
		if m.Column == "" {
			return nil, fmt.Errorf("vocabulary %s: measurement %d has no column", path, i)
		}
		if m.Level != domain.MeasurementLevelEvent && m.Level != domain.MeasurementLevelOccurrence {
			return nil, fmt.Errorf("vocabulary %s: measurement %q has invalid level %q", path, m.Column, m.Level)
		}
	}

	return f.Measurements, nil
}
