package fileio

import "strings"

// MatchFunc reports whether a header cell satisfies a wanted column name
type MatchFunc func(cell, want string) bool

// ExactMatch compares trimmed cells verbatim
func ExactMatch(cell, want string) bool {
	return strings.TrimSpace(cell) == want
}

// FoldMatch compares trimmed cells case-insensitively
func FoldMatch(cell, want string) bool {
	return strings.EqualFold(strings.TrimSpace(cell), want)
}

// ContainsFold reports whether want occurs in cell, ignoring case
func ContainsFold(cell, want string) bool {
	return strings.Contains(strings.ToLower(cell), strings.ToLower(want))
}

// FindHeaderRow returns the index of the first row among the first maxRows
// that has a matching cell for every required name, or -1. maxRows <= 0
// scans every row.
func FindHeaderRow(rows [][]string, required []string, maxRows int, match MatchFunc) int {
	limit := len(rows)
	if maxRows > 0 && maxRows < limit {
		limit = maxRows
	}
	for i := 0; i < limit; i++ {
		if rowHasAll(rows[i], required, match) {
			return i
		}
	}
	return -1
}

func rowHasAll(row []string, required []string, match MatchFunc) bool {
	for _, want := range required {
		if ColumnIndex(row, want, match) < 0 {
			return false
		}
	}
	return true
}

// ColumnIndex returns the first header position matching want, or -1
func ColumnIndex(header []string, want string, match MatchFunc) int {
	for i, cell := range header {
		if match(cell, want) {
			return i
		}
	}
	return -1
}

// ResolveColumns maps each wanted name to a header position, trying each
// matcher in turn. Names no matcher finds are returned in missing.
func ResolveColumns(header []string, wanted []string, matchers ...MatchFunc) (map[string]int, []string) {
	if len(matchers) == 0 {
		matchers = []MatchFunc{ExactMatch}
	}

	cols := make(map[string]int, len(wanted))
	var missing []string
	for _, want := range wanted {
		idx := -1
		for _, m := range matchers {
			if idx = ColumnIndex(header, want, m); idx >= 0 {
				break
			}
		}
		if idx < 0 {
			missing = append(missing, want)
			continue
		}
		cols[want] = idx
	}
	return cols, missing
}

// Cell returns row[i] trimmed, or "" when the row is shorter
func Cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
