package trace

import (
	"errors"
	"testing"
)

func TestRenderConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*RenderConfig)
		wantErr bool
	}{
		{"default", func(*RenderConfig) {}, false},
		{"depth zero", func(c *RenderConfig) { c.MaxDepth = 0 }, false},
		{"negative depth", func(c *RenderConfig) { c.MaxDepth = -1 }, true},
		{"no samples", func(c *RenderConfig) { c.Samples = 0 }, true},
		{"5x5 grid", func(c *RenderConfig) { c.Samples = 5 }, false},
		{"adaptive negative depth", func(c *RenderConfig) { c.Adaptive = true; c.AdaptiveDepth = -2 }, true},
		{"negative adaptive threshold", func(c *RenderConfig) { c.AdaptiveThreshold = -0.1 }, true},
		{"termination above one", func(c *RenderConfig) { c.TerminationThreshold = 1.5 }, true},
		{"termination in range", func(c *RenderConfig) { c.TerminationThreshold = 0.01 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultRenderConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("Validate() = %v, want ErrInvalidConfig", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
		})
	}
}
