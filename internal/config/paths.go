package config

import (
	"os"
	"path/filepath"
)

// ConfigFileNames are looked up in the root directory, in order.
var ConfigFileNames = []string{"mkdist.yaml", "mkdist.yml"}

// DotenvFile is loaded from the root directory when present.
const DotenvFile = ".env"

// FindConfigFile returns the config file in rootDir, or "" when there is none.
func FindConfigFile(rootDir string) string {
	for _, name := range ConfigFileNames {
		p := filepath.Join(rootDir, name)
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p
		}
	}
	return ""
}

// ExpandPath expands ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if len(path) == 0 {
		return path, nil
	}

	if path[0] != '~' {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	if len(path) == 1 {
		return homeDir, nil
	}

	// Handle ~/path/to/something
	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(homeDir, path[2:]), nil
	}

	// Handle ~username (not supported, return as-is)
	return path, nil
}

// ResolvePath expands p and makes it absolute against base.
func ResolvePath(base, p string) (string, error) {
	p, err := ExpandPath(p)
	if err != nil {
		return "", err
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p), nil
	}
	return filepath.Join(base, p), nil
}
