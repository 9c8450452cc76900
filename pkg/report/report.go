// Package report writes trial outcomes as CSV.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/stringchem/netprune/pkg/bitstring"
	"github.com/stringchem/netprune/pkg/compress"
)

// Separator joins metabolite IDs within one CSV cell.
const Separator = "-"

var (
	InputRecordHeader = []string{"inputs", "biomass", "bitstring"}
	EntryHeader       = []string{"bitstring", "occurrences", "rxn_count", "method"}
)

// InputRecord is the outcome of one minimum flux trial.
type InputRecord struct {
	Inputs    []string
	Biomass   []string
	Bitstring bitstring.Bitstring
}

// MinFluxFileName follows {monomers}_{maxlen}_{reps}x{ins}ins_{outs}outs.csv.
func MinFluxFileName(monomers string, maxLength, reps, ins, outs int) string {
	return fmt.Sprintf("%s_%d_%dx%dins_%douts.csv", monomers, maxLength, reps, ins, outs)
}

// SampleFileName follows {monomers}_{maxlen}_{ins}ins_{outs}outs_{reps}reps.csv.
func SampleFileName(monomers string, maxLength, ins, outs, reps int) string {
	return fmt.Sprintf("%s_%d_%dins_%douts_%dreps.csv", monomers, maxLength, ins, outs, reps)
}

func WriteInputRecords(w io.Writer, records []InputRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(InputRecordHeader); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			strings.Join(r.Inputs, Separator),
			strings.Join(r.Biomass, Separator),
			r.Bitstring.String(),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteEntries(w io.Writer, entries []bitstring.Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(EntryHeader); err != nil {
		return err
	}
	for _, e := range entries {
		row := []string{
			e.Bitstring.String(),
			strconv.Itoa(e.Occurrences),
			strconv.Itoa(e.Reactions),
			e.Method,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadEntries parses what WriteEntries wrote.
func ReadEntries(r io.Reader) ([]bitstring.Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(EntryHeader)
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 || strings.Join(rows[0], ",") != strings.Join(EntryHeader, ",") {
		return nil, fmt.Errorf("expected header %v", EntryHeader)
	}
	entries := []bitstring.Entry{}
	for i, row := range rows[1:] {
		occurrences, err := strconv.Atoi(row[1])
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid occurrences: %w", i+1, err)
		}
		reactions, err := strconv.Atoi(row[2])
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid rxn_count: %w", i+1, err)
		}
		entries = append(entries, bitstring.Entry{
			Bitstring:   bitstring.Bitstring(row[0]),
			Occurrences: occurrences,
			Reactions:   reactions,
			Method:      row[3],
		})
	}
	return entries, nil
}

// WriteFile creates path, compressed according to its extension, and hands
// the writer to write.
func WriteFile(path string, write func(w io.Writer) error) (err error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()

	w, err := compress.Writer(path, f)
	if err != nil {
		return err
	}
	if err := write(w); err != nil {
		w.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return err
	}
	logrus.Infof("Wrote %s.", path)
	return nil
}
