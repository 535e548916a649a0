package services

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"housing-pipeline/models"
)

// Unit suffixes carried by the raw listing text.
const (
	totalPriceSuffix = "万"
	areaSuffix       = "平米"
	followersSuffix  = "人关注"
)

var (
	// leadingDigitsRegexp captures the first run of digits, e.g. "18523" in "18523元/平米"
	leadingDigitsRegexp = regexp.MustCompile(`\d+`)
	// yearRegexp captures a 4-digit build year, e.g. "2005" in "2005年建"
	yearRegexp = regexp.MustCompile(`\d{4}`)
	// roomRegexp captures the bedroom count before 室, e.g. "3" in "3室2厅"
	roomRegexp = regexp.MustCompile(`(\d+)室`)
)

// ParseTotalPrice converts "258万" to 258.
func ParseTotalPrice(raw string) (float64, error) {
	return parseFloatField("TotalPrice", raw, totalPriceSuffix)
}

// ParseUnitPrice extracts the leading digit run of unit price text, ignoring
// thousands separators: "18523元/平米" and "18,523元/平" both give 18523.
func ParseUnitPrice(raw string) (float64, error) {
	match := leadingDigitsRegexp.FindString(strings.ReplaceAll(raw, ",", ""))
	if match == "" {
		return 0, &models.CoercionError{Field: "UnitPrice", Value: raw, Reason: "no digits"}
	}
	v, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, &models.CoercionError{Field: "UnitPrice", Value: raw, Reason: err.Error()}
	}
	return v, nil
}

// ParseArea converts "89.5平米" to 89.5.
func ParseArea(raw string) (float64, error) {
	return parseFloatField("Area", raw, areaSuffix)
}

// ParseFollowers converts "12人关注" to 12.
func ParseFollowers(raw string) (int, error) {
	text := strings.TrimSpace(strings.ReplaceAll(raw, followersSuffix, ""))
	v, err := strconv.Atoi(text)
	if err != nil {
		return 0, &models.CoercionError{Field: "Followers", Value: raw, Reason: "not an integer"}
	}
	return v, nil
}

// ExtractYear returns the 4-digit year in free text such as "2005年建".
func ExtractYear(raw string) (int, bool) {
	match := yearRegexp.FindString(raw)
	if match == "" {
		return 0, false
	}
	y, err := strconv.Atoi(match)
	if err != nil {
		return 0, false
	}
	return y, true
}

// RoomCount returns the integer immediately preceding 室 in layout text.
// Layouts without that pattern (parking spaces, shops) have no room count.
func RoomCount(layout string) (int, error) {
	m := roomRegexp.FindStringSubmatch(layout)
	if len(m) < 2 {
		return 0, &models.CoercionError{Field: "RoomCount", Value: layout, Reason: "no room count before 室"}
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, &models.CoercionError{Field: "RoomCount", Value: layout, Reason: err.Error()}
	}
	return n, nil
}

// Median returns the median of values, averaging the middle pair for even counts.
func Median(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid], true
	}
	return (sorted[mid-1] + sorted[mid]) / 2, true
}

func parseFloatField(field, raw, suffix string) (float64, error) {
	text := strings.TrimSpace(strings.ReplaceAll(raw, suffix, ""))
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, &models.CoercionError{Field: field, Value: raw, Reason: "not a number"}
	}
	return v, nil
}
