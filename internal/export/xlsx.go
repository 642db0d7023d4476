package export

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/verte-zerg/stroop/internal/model"
)

const sheetName = "Sheet1"

// XLSXWriter writes each session to <Dir>/<YYYYMMDDHHMMSS>.xlsx.
type XLSXWriter struct {
	Dir string
	// Now overrides the timestamp source when the session has no end time.
	Now func() time.Time

	lastPath string
}

// Export implements engine.Exporter. Empty sessions write nothing.
func (x *XLSXWriter) Export(_ context.Context, session model.Session) error {
	if len(session.Trials) == 0 {
		return nil
	}
	if err := os.MkdirAll(x.dir(), 0o755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	path := exportPath(x.dir(), session, x.now, FormatXLSX)
	if err := WriteXLSX(path, session.Trials); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	x.lastPath = path
	return nil
}

// LastPath returns the most recently written file.
func (x *XLSXWriter) LastPath() string {
	return x.lastPath
}

func (x *XLSXWriter) dir() string {
	if x.Dir == "" {
		return "."
	}
	return x.Dir
}

func (x *XLSXWriter) now() time.Time {
	if x.Now != nil {
		return x.Now()
	}
	return time.Now()
}

// WriteXLSX writes the header row and one row per trial. Reaction time is a
// number cell and is_right a boolean cell.
func WriteXLSX(path string, trials []model.TrialRecord) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if idx, ierr := f.GetSheetIndex(sheetName); ierr != nil || idx == -1 {
		idx, err = f.NewSheet(sheetName)
		if err != nil {
			return err
		}
		f.SetActiveSheet(idx)
	}

	for i, h := range Columns {
		cell, cerr := excelize.CoordinatesToCellName(i+1, 1)
		if cerr != nil {
			return cerr
		}
		if err = f.SetCellValue(sheetName, cell, h); err != nil {
			return err
		}
	}
	for r, t := range trials {
		values := []any{
			string(t.PresentedWord),
			string(t.PresentedInk),
			string(t.Selected),
			t.ReactionTimeSeconds,
			t.IsCorrect,
		}
		for c, v := range values {
			cell, cerr := excelize.CoordinatesToCellName(c+1, r+2)
			if cerr != nil {
				return cerr
			}
			if err = f.SetCellValue(sheetName, cell, v); err != nil {
				return err
			}
		}
	}
	return f.SaveAs(path)
}
