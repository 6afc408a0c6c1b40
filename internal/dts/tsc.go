package dts

import (
	"context"
	"fmt"

	oerrors "github.com/opmodel/mkdist/internal/errors"
)

// TscBackend runs the TypeScript compiler in a staging directory.
type TscBackend struct {
	Binary string
}

func (b *TscBackend) Name() string { return "tsc" }

func (b *TscBackend) Emit(ctx context.Context, vfs VFS, files []string, opts Options) ([]*oerrors.PositionError, error) {
	st, err := newStage(opts.RootDir)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	staged := make([]string, 0, len(files))
	for _, f := range files {
		text, ok := vfs.Read(f)
		if !ok {
			return nil, fmt.Errorf("declaration source %s is not in the file set", f)
		}
		rel, err := st.add(f, f, text)
		if err != nil {
			return nil, fmt.Errorf("staging %s: %w", f, err)
		}
		st.addSiblings(f)
		staged = append(staged, rel)
	}

	diags, err := st.run(ctx, b.Binary, staged, opts)
	if err != nil {
		return nil, err
	}

	for i, f := range files {
		st.collect(vfs, f, DeclarationPath(staged[i]))
	}
	return diags, nil
}
