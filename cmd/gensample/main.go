// Command gensample writes a deterministic sample survey CSV for demos and
// test fixtures. The rows cover two stations with present and absent taxa so
// a full align run over the output exercises every table.
//
// Usage:
//
//	go run ./cmd/gensample -out data/sample_survey.csv
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

var header = []string{
	"date", "lat", "lon", "region", "station", "transect",
	"species", "cover", "depth", "habitat", "rugosity", "temperature",
}

var rows = [][]string{
	{"7/16/2004", "18.31", "-64.72", "St. John", "250", "1", "Acropora cervicornis", "0", "8.2", "fringing reef", "0.295833", "27.4"},
	{"7/16/2004", "18.31", "-64.72", "St. John", "250", "1", "Madracis auretenra", "5", "8.2", "fringing reef", "0.295833", "27.4"},
	{"7/16/2004", "18.31", "-64.72", "St. John", "250", "1", "Orbicella annularis", "15", "8.2", "fringing reef", "0.295833", "27.4"},
	{"7/17/2004", "18.32", "-64.73", "St. John", "310", "2", "Acropora cervicornis", "2.5", "11.6", "patch reef", "0.412500", "27.1"},
	{"7/17/2004", "18.32", "-64.73", "St. John", "310", "2", "Porites astreoides", "0", "11.6", "patch reef", "0.412500", "27.1"},
	{"7/18/2004", "18.34", "-64.75", "St. Thomas", "120", "1", "Orbicella annularis", "22", "14.3", "spur and groove", "", "26.9"},
}

func main() {
	out := flag.String("out", "", "output path for the sample survey CSV")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		os.Exit(1)
	}

	if err := run(*out); err != nil {
		log.Fatal(err)
	}
}

func run(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	log.Printf("wrote %d sample rows: %s", len(rows), path)
	return nil
}
