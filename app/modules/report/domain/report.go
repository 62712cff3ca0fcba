package reportdomain

import (
	"strings"
	"time"
)

// Report is one participant's step count for one calendar day.
type Report struct {
	// Identity keeps the casing the participant typed.
	Identity string
	// Key is the case-folded identity used for storage and grid lookups.
	Key      string
	Date     time.Time
	Steps    int
	SenderID int64
}

// Extraction is what the independent scans found in a message. Unlike
// Report it may be incomplete.
type Extraction struct {
	Identity  string
	Date      time.Time
	DateFound bool
	Steps     int
	HasSteps  bool
}

// NormalizeIdentity returns the storage key for a nickname.
func NormalizeIdentity(identity string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(identity), "#"))
}

// Day truncates t to midnight UTC of its UTC calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
