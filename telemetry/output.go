package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
)

// OutputManager writes per-run Summary records to a CSV file,
// mirroring the header-then-append pattern the teacher's
// OutputManager uses for its telemetry/perf/bookmark CSVs.
type OutputManager struct {
	file          *os.File
	headerWritten bool
}

// NewOutputManager creates summary.csv under dir. Returns nil if dir
// is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("telemetry: creating output directory: %w", err)
	}
	f, err := os.Create(filepath.Join(dir, "summary.csv"))
	if err != nil {
		return nil, fmt.Errorf("telemetry: creating summary.csv: %w", err)
	}
	return &OutputManager{file: f}, nil
}

// WriteSummary appends one Summary record, writing the CSV header on
// the first call.
func (om *OutputManager) WriteSummary(s Summary) error {
	if om == nil {
		return nil
	}
	records := []Summary{s}
	if !om.headerWritten {
		if err := gocsv.Marshal(records, om.file); err != nil {
			return fmt.Errorf("telemetry: writing summary: %w", err)
		}
		om.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, om.file); err != nil {
		return fmt.Errorf("telemetry: writing summary: %w", err)
	}
	return nil
}

// Close closes the underlying file.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}
	return om.file.Close()
}
