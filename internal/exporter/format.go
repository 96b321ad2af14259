package exporter

import (
	"strconv"
)

// formatRaw formats a score with the fewest digits that round-trip
func formatRaw(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
