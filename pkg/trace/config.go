package trace

import (
	"errors"
	"fmt"

	"github.com/taigrr/glint/pkg/math3d"
)

// ErrInvalidConfig is returned by RenderConfig.Validate.
var ErrInvalidConfig = errors.New("invalid render config")

// DefaultAdaptiveThreshold is the per-channel corner disagreement above
// which the adaptive sampler subdivides a cell.
const DefaultAdaptiveThreshold = 0.005

// RenderConfig is the immutable set of knobs for one render pass.
type RenderConfig struct {
	// MaxDepth is the number of reflection/refraction bounces (>= 0).
	MaxDepth int

	// Samples is the side of the per-pixel sample grid: n*n samples.
	// 1 disables antialiasing.
	Samples int
	// Jitter perturbs each grid sample inside its sub-cell.
	Jitter bool
	// Seed makes jittered renders reproducible.
	Seed uint64

	// Adaptive selects the recursive corner-subdividing sampler instead
	// of the fixed grid.
	Adaptive          bool
	AdaptiveDepth     int
	AdaptiveThreshold float64

	// TerminationThreshold prunes secondary rays whose throughput weight
	// falls below it in every channel. 0 disables pruning.
	TerminationThreshold float64

	// Ambient, when set, replaces the scene's ambient light.
	Ambient *math3d.Vec3
	// Attenuation, when set, replaces every point light's coefficients.
	Attenuation *Attenuation
}

// DefaultRenderConfig returns a single sample, depth 3 configuration.
func DefaultRenderConfig() RenderConfig {
	return RenderConfig{
		MaxDepth:          3,
		Samples:           1,
		AdaptiveDepth:     3,
		AdaptiveThreshold: DefaultAdaptiveThreshold,
	}
}

// Validate checks the ranges of the numeric knobs.
func (c RenderConfig) Validate() error {
	if c.MaxDepth < 0 {
		return fmt.Errorf("%w: max depth %d < 0", ErrInvalidConfig, c.MaxDepth)
	}
	if c.Samples < 1 {
		return fmt.Errorf("%w: samples %d < 1", ErrInvalidConfig, c.Samples)
	}
	if c.Adaptive && c.AdaptiveDepth < 0 {
		return fmt.Errorf("%w: adaptive depth %d < 0", ErrInvalidConfig, c.AdaptiveDepth)
	}
	if c.AdaptiveThreshold < 0 {
		return fmt.Errorf("%w: adaptive threshold %g < 0", ErrInvalidConfig, c.AdaptiveThreshold)
	}
	if c.TerminationThreshold < 0 || c.TerminationThreshold > 1 {
		return fmt.Errorf("%w: termination threshold %g outside [0,1]", ErrInvalidConfig, c.TerminationThreshold)
	}
	return nil
}
