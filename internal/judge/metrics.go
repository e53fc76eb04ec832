package judge

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/code_drill/drill/internal/drill_errors"
)

// multipliers into seconds
var timeUnits = map[string]float64{
	"":        1,
	"s":       1,
	"sec":     1,
	"secs":    1,
	"second":  1,
	"seconds": 1,
	"ms":      1e-3,
	"us":      1e-6,
	"µs":      1e-6,
}

// multipliers into kilobytes
var memoryUnits = map[string]float64{
	"":    1,
	"k":   1,
	"kb":  1,
	"kib": 1,
	"b":   1.0 / 1024,
	"m":   1024,
	"mb":  1024,
	"mib": 1024,
	"gb":  1024 * 1024,
	"gib": 1024 * 1024,
}

// ParseTime converts a judge time string such as "0.014" or "0.014 s" into
// seconds.
func ParseTime(s string) (float64, error) {
	return parseMetric(s, timeUnits)
}

// ParseMemory converts a judge memory string such as "3360" or "3360 KB"
// into kilobytes.
func ParseMemory(s string) (float64, error) {
	return parseMetric(s, memoryUnits)
}

func parseMetric(s string, units map[string]float64) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w, empty value", drill_errors.ErrMalformedMetric)
	}

	// split the numeric prefix from the unit suffix
	cut := len(s)
	for cut > 0 {
		r := rune(s[cut-1])
		if !unicode.IsLetter(r) && !unicode.IsSpace(r) && s[cut-1] < 0x80 {
			break
		}
		cut--
	}
	number := strings.TrimSpace(s[:cut])
	unit := strings.ToLower(strings.TrimSpace(s[cut:]))

	multiplier, ok := units[unit]
	if !ok {
		return 0, fmt.Errorf("%w, unknown unit %q in %q", drill_errors.ErrMalformedMetric, unit, s)
	}
	value, err := strconv.ParseFloat(number, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return 0, fmt.Errorf("%w, %q is not a valid amount", drill_errors.ErrMalformedMetric, s)
	}
	return value * multiplier, nil
}

// TimeText renders a judge time for storage, e.g. "0.014 s". Missing values
// yield nil.
func TimeText(m Metric) *string {
	return metricText(m, "s")
}

// MemoryText renders a judge memory value for storage, e.g. "3360 KB".
func MemoryText(m Metric) *string {
	return metricText(m, "KB")
}

func metricText(m Metric, unit string) *string {
	s := strings.TrimSpace(string(m))
	if s == "" {
		return nil
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		s = s + " " + unit
	}
	return &s
}
