package exporter

import (
	"strconv"
	"time"
)

// Layouts used in report text
const (
	DateLayout     = "02/01/2006"
	DateTimeLayout = "02/01/2006 15:04:05"
)

// FormatDate formats t as dd/mm/yyyy
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// FormatDateTime formats t as dd/mm/yyyy HH:MM:SS
func FormatDateTime(t time.Time) string {
	return t.Format(DateTimeLayout)
}

func formatInt(i int) string {
	return strconv.Itoa(i)
}
