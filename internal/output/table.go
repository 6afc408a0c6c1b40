package output

import (
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// ToolRow is one external compiler listed by `mkdist version`.
type ToolRow struct {
	Name    string
	Version string
	Path    string
	Found   bool
}

// ToolTable renders the compilers mkdist can drive. Missing tools are
// dimmed and paths under the project directory are shown relative to it.
type ToolTable struct {
	rootDir string
	rows    []ToolRow
}

var (
	toolHeaderStyle  = lipgloss.NewStyle().Bold(true).Foreground(ColorCyan)
	toolMissingStyle = lipgloss.NewStyle().Foreground(ColorDimGray)
	toolBorderStyle  = lipgloss.NewStyle().Foreground(ColorDimGray)
)

// NewToolTable creates a table whose paths are shortened against rootDir.
func NewToolTable(rootDir string) *ToolTable {
	return &ToolTable{rootDir: rootDir}
}

// Add appends a tool.
func (t *ToolTable) Add(r ToolRow) *ToolTable {
	t.rows = append(t.rows, r)
	return t
}

// String renders the table.
func (t *ToolTable) String() string {
	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(toolBorderStyle).
		Headers("TOOL", "VERSION", "PATH").
		StyleFunc(func(row, _ int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return toolHeaderStyle
			case row >= 0 && row < len(t.rows) && !t.rows[row].Found:
				return toolMissingStyle
			}
			return lipgloss.NewStyle()
		})

	for _, r := range t.rows {
		tbl.Row(t.cells(r)...)
	}
	return tbl.String()
}

func (t *ToolTable) cells(r ToolRow) []string {
	if !r.Found {
		return []string{r.Name, "not found", "-"}
	}
	v := r.Version
	if v == "" {
		v = "unknown"
	}
	return []string{r.Name, v, t.shortPath(r.Path)}
}

// shortPath returns p relative to the project when it lies inside it.
func (t *ToolTable) shortPath(p string) string {
	if t.rootDir == "" || p == "" || !filepath.IsAbs(p) {
		return p
	}
	root, err := filepath.Abs(t.rootDir)
	if err != nil {
		return p
	}
	rel, err := filepath.Rel(root, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return p
	}
	return filepath.ToSlash(rel)
}
