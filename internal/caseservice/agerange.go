package caseservice

import (
	"strconv"
	"strings"
)

// AgeRangeBuckets lists every bucket AgeRange can produce, in order.
var AgeRangeBuckets = []string{"Under 18", "18-24", "25-34", "35-44", "45-54", "55-64", "65+"}

// AgeRange buckets a numeric age into the reporting ranges used on the
// intake form. Upper bounds are inclusive; a non-numeric age yields an
// empty bucket.
func AgeRange(age string) string {
	n, err := strconv.Atoi(strings.TrimSpace(age))
	if err != nil {
		return ""
	}
	switch {
	case n < 18:
		return "Under 18"
	case n <= 24:
		return "18-24"
	case n <= 34:
		return "25-34"
	case n <= 44:
		return "35-44"
	case n <= 54:
		return "45-54"
	case n <= 64:
		return "55-64"
	default:
		return "65+"
	}
}
