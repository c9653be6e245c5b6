package utils

import (
	"strings"

	"github.com/cespare/xxhash/v2"
)

func Hash(s string) uint64 {
	return xxhash.Sum64String(s)
}

// Percent returns part as a percentage of base, or 0 when base is 0.
func Percent(part, base uint64) float64 {
	if base == 0 {
		return 0
	}
	return float64(part) * 100 / float64(base)
}

// StripPadding removes the underscore padding rule authors put around labels.
func StripPadding(label string) string {
	return strings.Trim(label, "_")
}
