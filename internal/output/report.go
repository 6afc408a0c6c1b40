package output

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Report is the machine-readable summary of a build.
type Report struct {
	RootDir      string        `json:"rootDir" yaml:"rootDir"`
	DistDir      string        `json:"distDir" yaml:"distDir"`
	WrittenFiles []string      `json:"writtenFiles" yaml:"writtenFiles"`
	Skipped      []string      `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Errors       []ReportError `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// ReportError lists the errors recorded for one file.
type ReportError struct {
	Filename string   `json:"filename" yaml:"filename"`
	Errors   []string `json:"errors" yaml:"errors"`
}

// WriteReport renders r to w in the given format.
func WriteReport(w io.Writer, format ReportFormat, r Report) error {
	switch format {
	case ReportYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encoding yaml report: %w", err)
		}
		return enc.Close()
	case ReportJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encoding json report: %w", err)
		}
		return nil
	case ReportNone:
		return nil
	default:
		return fmt.Errorf("unsupported report format %q", format)
	}
}
