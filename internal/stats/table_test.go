package stats

import "testing"

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Class", "Samples", "Accuracy"}
	rows := [][]string{
		{"Congruent", "12", "97.5%"},
		{"Incongruent", "3", "8.0%"},
	}
	rightAlign := map[int]bool{1: true, 2: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Class       Samples Accuracy" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "Congruent        12    97.5%" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "Incongruent       3     8.0%" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}
