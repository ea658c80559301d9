package exporter

import (
	"strconv"
	"time"
)

// TimestampLayout is the layout used for every timestamp cell
const TimestampLayout = "2006-01-02 15:04:05"

// formatFloat formats a money value with exactly 2 decimal places, so 13.4
// is written as 13.40
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

func formatInt(i int) string {
	return strconv.Itoa(i)
}

// formatOptionalInt writes nil as an empty cell
func formatOptionalInt(i *int) string {
	if i == nil {
		return ""
	}
	return strconv.Itoa(*i)
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(TimestampLayout)
}
