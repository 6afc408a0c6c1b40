package dts

import (
	"regexp"
	"strconv"
	"strings"

	oerrors "github.com/opmodel/mkdist/internal/errors"
)

var (
	fileDiagRe    = regexp.MustCompile(`^(.+?)\((\d+),(\d+)\): error (TS\d+): (.*)$`)
	generalDiagRe = regexp.MustCompile(`^error (TS\d+): (.*)$`)
)

// parseDiagnostics reads compiler output in the non-pretty format
// `file(line,col): error TSnnnn: message`. lookup maps a reported file to
// its key; diagnostics for unknown files are dropped. Continuation lines
// are appended to the preceding message. Messages not tied to a file are
// returned separately.
func parseDiagnostics(out string, lookup func(string) (string, bool)) ([]*oerrors.PositionError, []string) {
	var (
		diags   []*oerrors.PositionError
		general []string
		last    *oerrors.PositionError
	)
	for _, line := range strings.Split(strings.ReplaceAll(out, "\r\n", "\n"), "\n") {
		if m := fileDiagRe.FindStringSubmatch(line); m != nil {
			last = nil
			key, ok := lookup(m[1])
			if !ok {
				continue
			}
			ln, _ := strconv.Atoi(m[2])
			col, _ := strconv.Atoi(m[3])
			last = &oerrors.PositionError{File: key, Line: ln, Column: col, Code: m[4], Message: m[5]}
			diags = append(diags, last)
			continue
		}
		if m := generalDiagRe.FindStringSubmatch(line); m != nil {
			last = nil
			general = append(general, m[1]+": "+m[2])
			continue
		}
		if last != nil && strings.HasPrefix(line, "  ") {
			last.Message += " " + strings.TrimSpace(line)
		}
	}
	return diags, general
}
