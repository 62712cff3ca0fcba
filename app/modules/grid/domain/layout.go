// Package griddomain describes the step grid: one row per participant, one
// column per calendar day, labels in row 1 and column 1.
package griddomain

import (
	"strings"
	"time"
)

const (
	// HeaderLabel sits in A1 above the identity column.
	HeaderLabel = "Nick"
	// DateLayout formats date column headers.
	DateLayout = "02.01.2006"
	// LabelColumn holds participant identities.
	LabelColumn = 0
	// HeaderRow holds date headers.
	HeaderRow = 0
)

// CellWrite sets one cell. Row and Col are zero based.
type CellWrite struct {
	Row   int
	Col   int
	Value string
}

// FormatDate renders a date column header.
func FormatDate(d time.Time) string {
	return d.Format(DateLayout)
}

// SameIdentity reports whether a row label names identity. Matching ignores
// case and a leading tag sigil.
func SameIdentity(label, identity string) bool {
	return strings.EqualFold(cleanLabel(label), cleanLabel(identity))
}

func cleanLabel(s string) string {
	return strings.TrimPrefix(strings.TrimSpace(s), "#")
}

// FindRow returns the index of the row labelled identity. The header row is
// never a match.
func FindRow(values [][]string, identity string) (int, bool) {
	for i := HeaderRow + 1; i < len(values); i++ {
		if len(values[i]) > LabelColumn && SameIdentity(values[i][LabelColumn], identity) {
			return i, true
		}
	}
	return 0, false
}

// FindColumn returns the index of the column headed header. The label
// column is never a match.
func FindColumn(values [][]string, header string) (int, bool) {
	if len(values) == 0 {
		return 0, false
	}
	for j := LabelColumn + 1; j < len(values[HeaderRow]); j++ {
		if strings.TrimSpace(values[HeaderRow][j]) == header {
			return j, true
		}
	}
	return 0, false
}

// NextRow is where a new identity row goes.
func NextRow(values [][]string) int {
	return max(len(values), HeaderRow+1)
}

// NextColumn is where a new date column goes.
func NextColumn(values [][]string) int {
	if len(values) == 0 {
		return LabelColumn + 1
	}
	return max(len(values[HeaderRow]), LabelColumn+1)
}

// NeedsHeader reports whether A1 has to be written.
func NeedsHeader(values [][]string) bool {
	return len(values) == 0 || len(values[HeaderRow]) == 0 || strings.TrimSpace(values[HeaderRow][LabelColumn]) == ""
}

// Cell returns the value at row, col, or "" when out of range.
func Cell(values [][]string, row, col int) string {
	if row < 0 || row >= len(values) || col < 0 || col >= len(values[row]) {
		return ""
	}
	return values[row][col]
}

// NormalizeKey is the case-folded form of an identity.
func NormalizeKey(identity string) string {
	return strings.ToLower(cleanLabel(identity))
}

// Entry is one filled cell of a date column.
type Entry struct {
	Identity string `json:"identity"`
	Value    string `json:"value"`
}

// ColumnEntries lists the non-empty cells under header in row order.
func ColumnEntries(values [][]string, header string) ([]Entry, bool) {
	col, ok := FindColumn(values, header)
	if !ok {
		return nil, false
	}
	entries := []Entry{}
	for i := HeaderRow + 1; i < len(values); i++ {
		v := strings.TrimSpace(Cell(values, i, col))
		if v == "" {
			continue
		}
		entries = append(entries, Entry{Identity: Cell(values, i, LabelColumn), Value: v})
	}
	return entries, true
}
