package sfc

import (
	"context"
	"errors"
	"sync"
)

// ErrTransformerDisabled is returned by the probe when the enhanced
// transformer is switched off by configuration.
var ErrTransformerDisabled = errors.New("component transformer disabled")

// Transformer rewrites the typed parts of a component that plain script
// transpilation cannot handle.
type Transformer interface {
	ExpandMacros(ctx context.Context, setup, script string, tsx bool) (string, error)
	TranspileTemplate(content string) (string, error)
}

// Probe constructs the enhanced transformer or reports why it is unavailable.
type Probe func() (Transformer, error)

type enhanced struct{}

func (enhanced) ExpandMacros(ctx context.Context, setup, script string, tsx bool) (string, error) {
	return ExpandMacros(ctx, setup, script, tsx)
}

func (enhanced) TranspileTemplate(content string) (string, error) {
	return TranspileTemplate(content)
}

// baseline leaves typed content untouched.
type baseline struct{}

func (baseline) ExpandMacros(_ context.Context, setup, _ string, _ bool) (string, error) {
	return setup, nil
}

func (baseline) TranspileTemplate(content string) (string, error) {
	return content, nil
}

// EnhancedProbe returns the built-in transformer, or ErrTransformerDisabled
// when enabled is false.
func EnhancedProbe(enabled bool) Probe {
	return func() (Transformer, error) {
		if !enabled {
			return nil, ErrTransformerDisabled
		}
		return enhanced{}, nil
	}
}

// Provider memoizes the outcome of a probe. When the probe fails the
// baseline transformer is used for the rest of the process.
type Provider struct {
	probe Probe

	once     sync.Once
	t        Transformer
	enhanced bool
	err      error
}

// NewProvider creates a provider around probe.
func NewProvider(probe Probe) *Provider {
	return &Provider{probe: probe}
}

// Get returns the transformer and whether it is the enhanced one. The
// probe runs on the first call only.
func (p *Provider) Get() (Transformer, bool) {
	p.once.Do(func() {
		t, err := p.probe()
		if err != nil || t == nil {
			p.t, p.err = baseline{}, err
			return
		}
		p.t, p.enhanced = t, true
	})
	return p.t, p.enhanced
}

// Err returns the probe error once Get has run.
func (p *Provider) Err() error {
	return p.err
}
