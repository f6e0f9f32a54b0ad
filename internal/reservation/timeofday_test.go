package reservation

import "testing"

func TestParseTimeOfDay(t *testing.T) {
	cases := []struct {
		in      string
		minutes int
		ok      bool
	}{
		{"00:00", 0, true},
		{"08:30", 510, true},
		{"23:59", 1439, true},
		{"24:00", 0, false},
		{"8:3", 0, false},
		{"8am", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseTimeOfDay(tc.in)
		if tc.ok && (err != nil || got != tc.minutes) {
			t.Errorf("ParseTimeOfDay(%q) = %d, %v; want %d", tc.in, got, err, tc.minutes)
		}
		if !tc.ok && err == nil {
			t.Errorf("ParseTimeOfDay(%q) expected error", tc.in)
		}
	}
}

func TestFormatTimeOfDay(t *testing.T) {
	if got := FormatTimeOfDay(510); got != "08:30" {
		t.Errorf("FormatTimeOfDay(510) = %q", got)
	}
	if got := FormatTimeOfDay(0); got != "00:00" {
		t.Errorf("FormatTimeOfDay(0) = %q", got)
	}
}

func TestWindowsOverlap(t *testing.T) {
	cases := []struct {
		name         string
		aStart, aEnd string
		bStart, bEnd string
		want         bool
	}{
		{"identical", "08:00", "10:00", "08:00", "10:00", true},
		{"contained", "08:00", "12:00", "09:00", "10:00", true},
		{"partial", "08:00", "10:00", "09:00", "11:00", true},
		{"touching end-to-start counts", "08:00", "10:00", "10:00", "12:00", true},
		{"touching start-to-end counts", "10:00", "12:00", "08:00", "10:00", true},
		{"disjoint after", "08:00", "10:00", "10:01", "12:00", false},
		{"disjoint before", "10:01", "12:00", "08:00", "10:00", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := WindowsOverlap(tc.aStart, tc.aEnd, tc.bStart, tc.bEnd); got != tc.want {
				t.Errorf("WindowsOverlap(%s-%s, %s-%s) = %v, want %v",
					tc.aStart, tc.aEnd, tc.bStart, tc.bEnd, got, tc.want)
			}
			// Overlap is symmetric.
			if got := WindowsOverlap(tc.bStart, tc.bEnd, tc.aStart, tc.aEnd); got != tc.want {
				t.Errorf("WindowsOverlap is not symmetric for %s", tc.name)
			}
		})
	}
}
