// Package writer persists build artifacts under the dist directory.
package writer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/opmodel/mkdist/internal/artifact"
	"github.com/opmodel/mkdist/internal/output"
)

// DefaultLimit bounds concurrent writes when no limit is configured.
const DefaultLimit = 16

// WriteAll writes every non-skipped artifact below distDir and returns the
// absolute paths written, sorted. Raw artifacts are copied from their
// source path.
func WriteAll(ctx context.Context, distDir string, outputs []*artifact.Output, limit int) ([]string, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	var (
		mu      sync.Mutex
		written []string
	)
	for _, o := range outputs {
		if o.Skip {
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			dst := filepath.Join(distDir, filepath.FromSlash(o.FinalPath()))
			if err := write(dst, o); err != nil {
				return err
			}
			mu.Lock()
			written = append(written, dst)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Strings(written)
	output.Debug("wrote outputs", "dir", distDir, "files", len(written))
	return written, nil
}

func write(dst string, o *artifact.Output) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", dst, err)
	}
	if o.Raw {
		return copyFile(o.SourcePath, dst)
	}
	if err := os.WriteFile(dst, []byte(o.Contents), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", dst, err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying %s: %w", src, err)
	}
	return out.Close()
}
