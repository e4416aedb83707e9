package services

import (
	"strconv"
	"strings"
)

// MarshalCSV builds a CSV document with every field quoted and embedded
// quotes doubled, so free-text fields (names, discount codes) can never
// break a row and spreadsheet imports keep leading zeros. Both export
// paths share this serializer.
func MarshalCSV(headers []string, rows [][]string) []byte {
	var b strings.Builder
	writeCSVRow(&b, headers)
	for _, row := range rows {
		b.WriteByte('\n')
		writeCSVRow(&b, row)
	}
	return []byte(b.String())
}

func writeCSVRow(b *strings.Builder, row []string) {
	for i, field := range row {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(field, `"`, `""`))
		b.WriteByte('"')
	}
}

// formatAmount renders a monetary value the way the backend sent it:
// integers without a decimal point, fractions with their natural precision.
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
