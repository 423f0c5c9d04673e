package units

import (
	"math"
	"testing"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestToMegabytes(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"1024B", 1.0 / 1024},
		{"1MiB", 1},
		{"2GiB", 2048},
		{"1TiB", 1048576},
		{"512KiB", 0.5},
		{"10.5MiB", 10.5},
		{"1.945GiB", 1991.68},
		{"2gib", 2048},
		{"3 MiB", 3},
		{" 4MiB ", 4},
		{".5GiB", 512},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			if got := ToMegabytes(tc.in); !almostEqual(got, tc.want, 1e-6) {
				t.Errorf("ToMegabytes(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

// Decimal-looking suffixes are converted with 1024 multipliers, exactly like
// their binary counterparts. This pins that behaviour.
func TestToMegabytes_DecimalSuffixesUseBinaryMultipliers(t *testing.T) {
	pairs := [][2]string{
		{"1KB", "1KiB"},
		{"1kB", "1KiB"},
		{"1MB", "1MiB"},
		{"1GB", "1GiB"},
		{"1TB", "1TiB"},
	}
	for _, p := range pairs {
		if a, b := ToMegabytes(p[0]), ToMegabytes(p[1]); a != b {
			t.Errorf("ToMegabytes(%q) = %v, ToMegabytes(%q) = %v; want equal", p[0], a, p[1], b)
		}
	}
	if got := ToMegabytes("1GB"); got != 1024 {
		t.Errorf("ToMegabytes(1GB) = %v, want 1024", got)
	}
}

func TestToMegabytes_Unrecognized(t *testing.T) {
	for _, in := range []string{"", "N/A", "--", "12", "MiB", "1.2.3MiB", "5PiB", "-1MiB", "1 / 2"} {
		if got := ToMegabytes(in); got != 0 {
			t.Errorf("ToMegabytes(%q) = %v, want exactly 0", in, got)
		}
	}
}

func TestToBytes(t *testing.T) {
	if got := ToBytes("1KiB"); got != 1024 {
		t.Errorf("ToBytes(1KiB) = %v, want 1024", got)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0B"},
		{800, "800B"},
		{1536, "1.50KiB"},
		{11010048, "10.50MiB"},
		{2 * 1024 * 1024 * 1024, "2.00GiB"},
	}
	for _, tc := range tests {
		if got := FormatBytes(tc.in); got != tc.want {
			t.Errorf("FormatBytes(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
