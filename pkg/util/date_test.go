package util

import (
	"testing"
	"time"
)

func TestParseDateLayouts(t *testing.T) {
	want := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)
	for _, s := range []string{"2024-10-10", "2024-10-10 13:45:00", "2024-10-10T13:45:00Z"} {
		got, ok := ParseDate(s)
		if !ok {
			t.Fatalf("expected ok for %q", s)
		}
		if !got.Equal(want) {
			t.Fatalf("%q: unexpected date %v", s, got)
		}
	}
}

func TestParseDateMissing(t *testing.T) {
	for _, s := range []string{"", "NaT", "N/A", " "} {
		if _, ok := ParseDate(s); ok {
			t.Fatalf("expected %q to be treated as missing", s)
		}
	}
	if _, ok := ParseDate("10/10/2024"); ok {
		t.Fatalf("expected unsupported layout to fail")
	}
}

func TestFormatDate(t *testing.T) {
	d := time.Date(2024, 3, 5, 23, 59, 0, 0, time.UTC)
	if got := FormatDate(d); got != "2024-03-05" {
		t.Fatalf("unexpected format %q", got)
	}
	if got := FormatDate(AddDays(TruncateDay(d), 7)); got != "2024-03-12" {
		t.Fatalf("unexpected shifted date %q", got)
	}
}
