// Package output renders the aggregated payment report to files and to the
// terminal.
package output

// Format represents the report artifact format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ValidFormat reports whether s names a supported format.
func ValidFormat(s string) bool {
	switch Format(s) {
	case FormatCSV, FormatJSON:
		return true
	default:
		return false
	}
}
