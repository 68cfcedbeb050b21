package caseservice

import (
	"strconv"
	"testing"
)

func TestAgeRangeBoundaries(t *testing.T) {
	cases := []struct {
		age  string
		want string
	}{
		{"0", "Under 18"},
		{"17", "Under 18"},
		{"18", "18-24"},
		{"24", "18-24"},
		{"25", "25-34"},
		{"34", "25-34"},
		{"35", "35-44"},
		{"44", "35-44"},
		{"45", "45-54"},
		{"54", "45-54"},
		{"55", "55-64"},
		{"64", "55-64"},
		{"65", "65+"},
		{"99", "65+"},
	}
	for _, tc := range cases {
		if got := AgeRange(tc.age); got != tc.want {
			t.Errorf("AgeRange(%q) = %q, want %q", tc.age, got, tc.want)
		}
	}
}

func TestAgeRangeIsTotalOverNumericAges(t *testing.T) {
	known := make(map[string]bool, len(AgeRangeBuckets))
	for _, b := range AgeRangeBuckets {
		known[b] = true
	}
	for age := 0; age <= 120; age++ {
		got := AgeRange(strconv.Itoa(age))
		if got == "" {
			t.Fatalf("AgeRange(%d) produced no bucket", age)
		}
		if !known[got] {
			t.Fatalf("AgeRange(%d) = %q, not a declared bucket", age, got)
		}
	}
}

func TestAgeRangeNonNumeric(t *testing.T) {
	for _, age := range []string{"", "unknown", "mid 30s", "?"} {
		if got := AgeRange(age); got != "" {
			t.Errorf("AgeRange(%q) = %q, want empty", age, got)
		}
	}
}

func TestAgeRangeTrimsWhitespace(t *testing.T) {
	if got := AgeRange(" 42 "); got != "35-44" {
		t.Errorf("AgeRange(\" 42 \") = %q, want 35-44", got)
	}
}
