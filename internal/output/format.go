package output

import "strings"

// ReportFormat specifies how a build report is rendered to stdout.
type ReportFormat string

const (
	// ReportNone prints only the summary line.
	ReportNone ReportFormat = ""

	// ReportYAML renders the report as YAML.
	ReportYAML ReportFormat = "yaml"

	// ReportJSON renders the report as JSON.
	ReportJSON ReportFormat = "json"
)

// String returns the string representation of the report format.
func (f ReportFormat) String() string {
	return string(f)
}

// IsValid checks if the report format is valid.
func (f ReportFormat) IsValid() bool {
	switch f {
	case ReportNone, ReportYAML, ReportJSON:
		return true
	default:
		return false
	}
}

// ParseReportFormat parses a string into a ReportFormat. Unknown values are returned as-is
// so that IsValid can reject them.
func ParseReportFormat(s string) ReportFormat {
	switch strings.ToLower(s) {
	case "yaml", "yml":
		return ReportYAML
	case "json":
		return ReportJSON
	default:
		return ReportFormat(s)
	}
}

// ValidReportFormats returns the accepted --report values.
func ValidReportFormats() []string {
	return []string{"yaml", "json"}
}
