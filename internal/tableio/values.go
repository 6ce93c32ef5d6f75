package tableio

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the serialized date format (ISO-8601 calendar date).
const DateLayout = time.DateOnly

// acceptedDateLayouts are tried in order when reading a date field.
var acceptedDateLayouts = []string{
	time.DateOnly,
	time.DateTime,
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// missingMarkers are the field values read as missing. Matching is exact:
// "None" is missing, "NONE" is a value.
var missingMarkers = map[string]struct{}{
	"": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {},
	"NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {}, "nan": {}, "null": {},
}

// isMissing reports whether a field holds a missing-value marker.
func isMissing(s string) bool {
	_, ok := missingMarkers[s]
	return ok
}

// parseDate returns the field as UTC midnight of its calendar date.
// ok is false for missing or unparseable values.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if isMissing(s) {
		return time.Time{}, false
	}
	for _, layout := range acceptedDateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// parseCount parses a non-negative integer score. Integral float text such
// as "2.0" is accepted.
func parseCount(s string) (int, bool) {
	v, ok := parseInt(s)
	if !ok || v < 0 {
		return 0, false
	}
	return v, true
}

// parseInt parses a signed integer. Integral float text such as "-1.0" is accepted.
func parseInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if isMissing(s) {
		return 0, false
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

// parseBool accepts true/false in any case and 1/0.
func parseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "t", "yes":
		return true, true
	case "false", "0", "f", "no":
		return false, true
	}
	return false, false
}

// parseOptionalFloat returns nil for a missing field; ok is false only for
// a present but unparseable value.
func parseOptionalFloat(s string) (*float64, bool) {
	s = strings.TrimSpace(s)
	if isMissing(s) {
		return nil, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, false
	}
	return &f, true
}

func formatDate(t time.Time) string {
	return t.Format(DateLayout)
}

func formatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

// formatFloat writes the shortest round-trip decimal, keeping a ".0" on
// integral values so the column stays visibly floating point. nil is empty.
func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	s := strconv.FormatFloat(*v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

// field returns record[i], or "" when the record is short.
func field(record []string, i int) string {
	if i < len(record) {
		return record[i]
	}
	return ""
}
