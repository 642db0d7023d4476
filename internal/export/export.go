// Package export writes finished sessions to spreadsheet files.
package export

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/verte-zerg/stroop/internal/engine"
	"github.com/verte-zerg/stroop/internal/model"
)

// Columns is the persisted column order.
var Columns = []string{
	"presented_color_word",
	"presented_word_color",
	"color_selected",
	"reaction_time",
	"is_right",
}

// Supported formats.
const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
	FormatNone = "none"
)

// filenameLayout is YYYYMMDDHHMMSS.
const filenameLayout = "20060102150405"

// FileName returns the export file name for a session ended at t.
func FileName(t time.Time, format string) string {
	return t.Local().Format(filenameLayout) + "." + format
}

// NewFileExporter returns the exporter for format writing into dir. The
// "none" format yields a nil exporter.
func NewFileExporter(format, dir string) (engine.Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatXLSX, "":
		return &XLSXWriter{Dir: dir}, nil
	case FormatCSV:
		return &CSVWriter{Dir: dir}, nil
	case FormatNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown export format %q (want %s, %s or %s)", format, FormatXLSX, FormatCSV, FormatNone)
	}
}

// Multi runs every exporter and joins their errors.
type Multi []engine.Exporter

// Export implements engine.Exporter.
func (m Multi) Export(ctx context.Context, session model.Session) error {
	var errs []error
	for _, exp := range m {
		if exp == nil {
			continue
		}
		if err := exp.Export(ctx, session); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func exportPath(dir string, session model.Session, now func() time.Time, format string) string {
	at := session.EndedAt
	if at.IsZero() {
		at = now()
	}
	return filepath.Join(dir, FileName(at, format))
}

func row(t model.TrialRecord) []string {
	return []string{
		string(t.PresentedWord),
		string(t.PresentedInk),
		string(t.Selected),
		strconv.FormatFloat(t.ReactionTimeSeconds, 'f', -1, 64),
		strconv.FormatBool(t.IsCorrect),
	}
}
