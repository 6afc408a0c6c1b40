package dts

import (
	"encoding/json"
	"path/filepath"
)

// retargetMap sets the "file" field of a source map. Malformed maps are
// returned unchanged.
func retargetMap(text, file string) string {
	var m map[string]any
	if err := json.Unmarshal([]byte(text), &m); err != nil {
		return text
	}
	m["file"] = file
	out, err := json.Marshal(m)
	if err != nil {
		return text
	}
	return string(out)
}

// RewriteMapSources points a declaration map at its original source. src
// and emitted are absolute paths; sources become relative to the directory
// of the emitted declaration.
func RewriteMapSources(text, emitted, src string) (string, error) {
	var m map[string]any
	if err := json.Unmarshal([]byte(text), &m); err != nil {
		return "", err
	}
	rel, err := filepath.Rel(filepath.Dir(emitted), src)
	if err != nil {
		return "", err
	}
	m["file"] = filepath.Base(emitted)
	m["sources"] = []string{filepath.ToSlash(rel)}
	delete(m, "sourceRoot")
	out, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
