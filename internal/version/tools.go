package version

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// versionRegex matches tool version output like "Version 5.4.5" or "1.77.8 compiled with dart2js".
var versionRegex = regexp.MustCompile(`v?\d+\.\d+\.\d+(?:-[a-zA-Z0-9.]+)?`)

// ToolInfo describes an external tool installation.
type ToolInfo struct {
	// Name is the tool's command name, e.g. "tsc".
	Name string `json:"name"`

	// Version is the detected version with a "v" prefix.
	Version string `json:"version,omitempty"`

	// Path is the resolved executable path.
	Path string `json:"path,omitempty"`

	// Found indicates the executable exists.
	Found bool `json:"found"`

	// Message explains a missing tool or a failed version check.
	Message string `json:"message,omitempty"`
}

// LookupTool resolves an executable. A configured path wins, then the
// project's node_modules/.bin, then PATH.
func LookupTool(name, configured, rootDir string) (string, bool) {
	if configured != "" {
		if p, err := exec.LookPath(configured); err == nil {
			return p, true
		}
		return configured, false
	}
	if rootDir != "" {
		local := filepath.Join(rootDir, "node_modules", ".bin", name)
		if st, err := os.Stat(local); err == nil && !st.IsDir() {
			return local, true
		}
	}
	if p, err := exec.LookPath(name); err == nil {
		return p, true
	}
	return "", false
}

// DetectTool finds a tool and asks it for its version.
func DetectTool(ctx context.Context, name, configured, rootDir string) ToolInfo {
	path, ok := LookupTool(name, configured, rootDir)
	if !ok {
		return ToolInfo{Name: name, Path: path, Message: name + " not found"}
	}

	v, err := ToolVersion(ctx, path)
	if err != nil {
		return ToolInfo{Name: name, Path: path, Found: true, Message: "failed to get version: " + err.Error()}
	}
	return ToolInfo{Name: name, Path: path, Found: true, Version: v}
}

// ToolVersion runs `<path> --version` and extracts the version string.
func ToolVersion(ctx context.Context, path string) (string, error) {
	cmd := exec.CommandContext(ctx, path, "--version")
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		return "", err
	}
	return extractVersion(out.String())
}

// extractVersion extracts the first version number from tool output.
func extractVersion(output string) (string, error) {
	match := versionRegex.FindString(output)
	if match == "" {
		return "", &versionParseError{output: output}
	}
	if !strings.HasPrefix(match, "v") {
		match = "v" + match
	}
	return match, nil
}

// versionParseError indicates failure to parse version output.
type versionParseError struct {
	output string
}

func (e *versionParseError) Error() string {
	return "failed to parse version from output: " + strings.TrimSpace(e.output)
}

// Semver splits a "v1.2.3" string into its numeric components.
func Semver(v string) (major, minor, patch int, ok bool) {
	v = strings.TrimPrefix(v, "v")
	if i := strings.IndexAny(v, "-+"); i >= 0 {
		v = v[:i]
	}
	parts := strings.Split(v, ".")
	if len(parts) != 3 {
		return 0, 0, 0, false
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return 0, 0, 0, false
		}
		nums[i] = n
	}
	return nums[0], nums[1], nums[2], true
}

// String returns a human-readable tool line.
func (t ToolInfo) String() string {
	if !t.Found {
		return "  " + t.Name + ": not found"
	}
	if t.Version == "" {
		return "  " + t.Name + ": " + t.Message + " (" + t.Path + ")"
	}
	return "  " + t.Name + ": " + t.Version + " (" + t.Path + ")"
}
