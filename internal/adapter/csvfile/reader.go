// Package csvfile reads survey input files and writes the aligned Darwin
// Core tables as delimited files.
package csvfile

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"

	"github.com/couchcryptid/dwc-align/internal/domain"
)

// Reader loads one survey CSV into memory. It implements pipeline.Extractor.
type Reader struct {
	path   string
	logger *slog.Logger
}

// NewReader creates a survey file reader.
func NewReader(path string, logger *slog.Logger) *Reader {
	return &Reader{path: path, logger: logger}
}

// Extract reads and parses every row, preserving input order. Any IO, CSV,
// or field parse error is returned as-is; the run has no partial-success
// mode.
func (r *Reader) Extract(_ context.Context) ([]domain.SurveyRecord, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("read survey file: %w", err)
	}

	decoded, err := decodeToUTF8(data)
	if err != nil {
		return nil, fmt.Errorf("decode survey file: %w", err)
	}

	cr := csv.NewReader(bytes.NewReader(decoded))
	cr.FieldsPerRecord = -1 // column-count mismatches are handled below
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("survey file %s has no header row", r.path)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.ToLower(strings.TrimSpace(header[i]))
	}

	var records []domain.SurveyRecord
	line := 1
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		if len(row) != len(header) {
			r.logger.Warn("column count mismatch", "line", line, "got", len(row), "want", len(header))
		}

		fields := make(map[string]string, len(header))
		for i, h := range header {
			if i < len(row) {
				fields[h] = row[i]
			}
		}

		rec, err := domain.ParseSurveyRecord(fields, line)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("survey file %s contains no data rows", r.path)
	}

	return records, nil
}

// decodeToUTF8 strips a UTF-8 BOM and converts UTF-16 input (either byte
// order) to UTF-8. Field CSVs frequently arrive re-saved from Excel.
func decodeToUTF8(data []byte) ([]byte, error) {
	switch {
	case bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}):
		return data[3:], nil
	case bytes.HasPrefix(data, []byte{0xFF, 0xFE}), bytes.HasPrefix(data, []byte{0xFE, 0xFF}):
		dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		out, err := dec.Bytes(data)
		if err != nil {
			return nil, fmt.Errorf("UTF-16 conversion: %w", err)
		}
		return out, nil
	default:
		return data, nil
	}
}
