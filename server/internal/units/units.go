// Package units normalizes memory quantities printed by the container runtime
// ("10.5MiB", "1.945GiB", "800B") to megabytes.
package units

import (
	"regexp"
	"strconv"
	"strings"
)

var quantityRe = regexp.MustCompile(`^([0-9]*\.?[0-9]+)\s*([KMGT]?I?B)$`)

// megabytesPer maps an upper-cased unit suffix to its size in megabytes.
//
// Decimal-looking suffixes (KB, MB, GB, TB) use the same 1024 multipliers as
// their binary counterparts: the runtime prints binary quantities under both
// spellings, and consumers compare values produced this way.
var megabytesPer = map[string]float64{
	"B":   1.0 / 1024 / 1024,
	"KB":  1.0 / 1024,
	"KIB": 1.0 / 1024,
	"MB":  1,
	"MIB": 1,
	"GB":  1024,
	"GIB": 1024,
	"TB":  1024 * 1024,
	"TIB": 1024 * 1024,
}

// ToMegabytes converts a quantity string to megabytes.
// Empty or unrecognized input returns 0.
func ToMegabytes(s string) float64 {
	m := quantityRe.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(s)))
	if m == nil {
		return 0
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	return v * megabytesPer[m[2]]
}

// ToBytes converts a quantity string to bytes using the same table.
func ToBytes(s string) float64 {
	return ToMegabytes(s) * 1024 * 1024
}

// FormatBytes renders n bytes with the runtime's binary suffixes, e.g. "10.5MiB".
func FormatBytes(n float64) string {
	suffixes := []string{"B", "KiB", "MiB", "GiB", "TiB"}
	i := 0
	for n >= 1024 && i < len(suffixes)-1 {
		n /= 1024
		i++
	}
	if i == 0 {
		return strconv.FormatFloat(n, 'f', 0, 64) + suffixes[i]
	}
	return strconv.FormatFloat(n, 'f', 2, 64) + suffixes[i]
}
