package export

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/verte-zerg/stroop/internal/engine"
	"github.com/verte-zerg/stroop/internal/model"
)

func sampleSession() model.Session {
	end := time.Date(2024, 3, 9, 14, 5, 7, 0, time.Local)
	return model.Session{
		ID:        "s1",
		StartedAt: end.Add(-time.Minute),
		EndedAt:   end,
		Trials: []model.TrialRecord{
			{PresentedWord: "red", PresentedInk: "red", Selected: "red", ReactionTimeSeconds: 0.4, IsCorrect: true},
			{PresentedWord: "red", PresentedInk: "blue", Selected: "blue", ReactionTimeSeconds: 0.55},
		},
	}
}

func TestFileName(t *testing.T) {
	at := time.Date(2024, 3, 9, 14, 5, 7, 0, time.Local)
	assert.Equal(t, "20240309140507.xlsx", FileName(at, FormatXLSX))
	assert.Equal(t, "20240309140507.csv", FileName(at, FormatCSV))
}

func TestXLSXWriterWritesRows(t *testing.T) {
	dir := t.TempDir()
	w := &XLSXWriter{Dir: dir}
	sess := sampleSession()
	require.NoError(t, w.Export(context.Background(), sess))

	path := filepath.Join(dir, "20240309140507.xlsx")
	assert.Equal(t, path, w.LastPath())

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Columns, rows[0])
	assert.Equal(t, []string{"red", "red", "red"}, rows[1][:3])
	assert.Equal(t, []string{"red", "blue", "blue"}, rows[2][:3])

	rt, err := strconv.ParseFloat(rows[2][3], 64)
	require.NoError(t, err)
	assert.InDelta(t, 0.55, rt, 1e-9)
	assert.Equal(t, "TRUE", rows[1][4])
	assert.Equal(t, "FALSE", rows[2][4])
}

func TestCSVWriterWritesRows(t *testing.T) {
	dir := t.TempDir()
	w := &CSVWriter{Dir: dir}
	require.NoError(t, w.Export(context.Background(), sampleSession()))

	file, err := os.Open(filepath.Join(dir, "20240309140507.csv"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = file.Close() })
	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, Columns, records[0])
	assert.Equal(t, []string{"red", "red", "red", "0.4", "true"}, records[1])
	assert.Equal(t, []string{"red", "blue", "blue", "0.55", "false"}, records[2])
}

func TestEmptySessionWritesNothing(t *testing.T) {
	dir := t.TempDir()
	for _, exp := range []engine.Exporter{&XLSXWriter{Dir: dir}, &CSVWriter{Dir: dir}} {
		require.NoError(t, exp.Export(context.Background(), model.Session{ID: "empty"}))
	}
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestNewFileExporter(t *testing.T) {
	exp, err := NewFileExporter("XLSX", "out")
	require.NoError(t, err)
	assert.IsType(t, &XLSXWriter{}, exp)

	exp, err = NewFileExporter("csv", "out")
	require.NoError(t, err)
	assert.IsType(t, &CSVWriter{}, exp)

	exp, err = NewFileExporter("none", "out")
	require.NoError(t, err)
	assert.Nil(t, exp)

	_, err = NewFileExporter("ods", "out")
	assert.Error(t, err)
}

func TestMultiJoinsErrors(t *testing.T) {
	errA := errors.New("a failed")
	calls := 0
	m := Multi{
		engine.ExporterFunc(func(context.Context, model.Session) error { calls++; return errA }),
		nil,
		engine.ExporterFunc(func(context.Context, model.Session) error { calls++; return nil }),
	}
	err := m.Export(context.Background(), sampleSession())
	assert.ErrorIs(t, err, errA)
	assert.Equal(t, 2, calls)
}
