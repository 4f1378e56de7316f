// Command validate performs integrity checks across the three files of a
// produced Darwin Core archive: column structure, cross-file references,
// event deduplication, status values, date formats, and occurrence quoting.
//
// Usage:
//
//	go run ./cmd/validate -archive-dir out/
package main

import (
	"bufio"
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/couchcryptid/dwc-align/internal/adapter/csvfile"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// table is one loaded archive file.
type table struct {
	header []string
	rows   []map[string]string
}

func main() {
	archiveDir := flag.String("archive-dir", "", "directory containing event.csv, occurrence.csv, extendedmeasurementorfact.csv")
	flag.Parse()

	if *archiveDir == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*archiveDir); code != 0 {
		os.Exit(code)
	}
}

func run(dir string) int {
	fmt.Println("=== Darwin Core Archive Validation ===")
	fmt.Println()

	events, err := loadTable(filepath.Join(dir, csvfile.EventFile))
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load event table: %v\n", err)
		return 1
	}
	occurrences, err := loadTable(filepath.Join(dir, csvfile.OccurrenceFile))
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load occurrence table: %v\n", err)
		return 1
	}
	measurements, err := loadTable(filepath.Join(dir, csvfile.MeasurementFile))
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load measurement table: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateStructure(events, occurrences, measurements),
		validateReferences(events, occurrences, measurements),
		validateValues(events, occurrences, measurements),
		validateQuoting(filepath.Join(dir, csvfile.OccurrenceFile)),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d events, %d occurrences, %d measurements\n",
		len(events.rows), len(occurrences.rows), len(measurements.rows))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func loadTable(path string) (*table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	all, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("no header row in %s", path)
	}

	t := &table{header: all[0]}
	for _, row := range all[1:] {
		fields := make(map[string]string, len(t.header))
		for i, h := range t.header {
			if i < len(row) {
				fields[h] = row[i]
			}
		}
		t.rows = append(t.rows, fields)
	}
	return t, nil
}

// ── Phase 1: Structure ──
// Column names and order must match the output contract exactly.

func validateStructure(events, occurrences, measurements *table) *phase {
	p := &phase{name: "Phase 1: Structure (columns)"}

	checkColumns := func(name string, got, want []string) {
		if len(got) != len(want) {
			p.errorf("%s: %d columns, want %d", name, len(got), len(want))
			return
		}
		for i := range want {
			if got[i] != want[i] {
				p.errorf("%s: column %d is %q, want %q", name, i, got[i], want[i])
			}
		}
	}

	checkColumns("event", events.header, csvfile.EventColumns)
	checkColumns("occurrence", occurrences.header, csvfile.OccurrenceColumns)
	checkColumns("measurement", measurements.header, csvfile.MeasurementColumns)
	return p
}

// ── Phase 2: References ──
// Every eventID must resolve; measurement occurrenceIDs must resolve when set.

func validateReferences(events, occurrences, measurements *table) *phase {
	p := &phase{name: "Phase 2: Cross-file references"}

	eventIDs := make(map[string]struct{}, len(events.rows))
	for i, row := range events.rows {
		id := row["eventID"]
		if id == "" {
			p.errorf("event row %d: blank eventID", i+2)
			continue
		}
		if _, dup := eventIDs[id]; dup {
			p.errorf("event row %d: duplicate eventID %q", i+2, id)
		}
		eventIDs[id] = struct{}{}
	}

	occurrenceIDs := make(map[string]struct{}, len(occurrences.rows))
	for i, row := range occurrences.rows {
		if _, ok := eventIDs[row["eventID"]]; !ok {
			p.errorf("occurrence row %d: unknown eventID %q", i+2, row["eventID"])
		}
		if row["occurrenceID"] == "" {
			p.errorf("occurrence row %d: blank occurrenceID", i+2)
		}
		occurrenceIDs[row["occurrenceID"]] = struct{}{}
	}

	for i, row := range measurements.rows {
		if _, ok := eventIDs[row["eventID"]]; !ok {
			p.errorf("measurement row %d: unknown eventID %q", i+2, row["eventID"])
		}
		if id := row["occurrenceID"]; id != "" {
			if _, ok := occurrenceIDs[id]; !ok {
				p.errorf("measurement row %d: unknown occurrenceID %q", i+2, id)
			}
		}
	}

	return p
}

// ── Phase 3: Values ──
// Status vocabulary, constant columns, and ISO dates.

func validateValues(events, occurrences, measurements *table) *phase {
	p := &phase{name: "Phase 3: Values (status, constants, dates)"}

	for i, row := range events.rows {
		if row["basisOfRecord"] != "HumanObservation" {
			p.errorf("event row %d: basisOfRecord %q", i+2, row["basisOfRecord"])
		}
		if row["geodeticDatum"] != "EPSG:4326 WGS84" {
			p.errorf("event row %d: geodeticDatum %q", i+2, row["geodeticDatum"])
		}
		checkISODate(p, "event", i, row["eventDate"])
	}

	for i, row := range occurrences.rows {
		if s := row["occurrenceStatus"]; s != "present" && s != "absent" {
			p.errorf("occurrence row %d: occurrenceStatus %q", i+2, s)
		}
	}

	for i, row := range measurements.rows {
		checkISODate(p, "measurement", i, row["measurementDeterminedDate"])
	}

	return p
}

func checkISODate(p *phase, tableName string, rowIdx int, value string) {
	if _, err := time.Parse("2006-01-02", value); err != nil {
		p.errorf("%s row %d: date %q is not YYYY-MM-DD", tableName, rowIdx+2, value)
	}
}

// ── Phase 4: Quoting ──
// The occurrence file must quote every field.

func validateQuoting(path string) *phase {
	p := &phase{name: "Phase 4: Occurrence quoting"}

	f, err := os.Open(path)
	if err != nil {
		p.errorf("open: %v", err)
		return p
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if text == "" {
			continue
		}
		if !strings.HasPrefix(text, `"`) || !strings.HasSuffix(text, `"`) {
			p.errorf("line %d: fields not fully quoted", line)
		}
	}
	if err := scanner.Err(); err != nil {
		p.errorf("scan: %v", err)
	}
	return p
}
