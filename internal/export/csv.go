package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/verte-zerg/stroop/internal/model"
)

// CSVWriter writes each session to <Dir>/<YYYYMMDDHHMMSS>.csv.
type CSVWriter struct {
	Dir string
	Now func() time.Time
}

// Export implements engine.Exporter. Empty sessions write nothing.
func (c *CSVWriter) Export(_ context.Context, session model.Session) error {
	if len(session.Trials) == 0 {
		return nil
	}
	dir := c.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	now := c.Now
	if now == nil {
		now = time.Now
	}
	path := exportPath(dir, session, now, FormatCSV)
	if err := WriteCSV(path, session.Trials); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// WriteCSV writes the header row and one row per trial.
func WriteCSV(path string, trials []model.TrialRecord) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	w := csv.NewWriter(f)
	if err := w.Write(Columns); err != nil {
		return err
	}
	for _, t := range trials {
		if err := w.Write(row(t)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
