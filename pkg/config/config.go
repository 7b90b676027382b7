// Package config loads glint's render settings from a JSON file and
// layers command line flags over them.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/taigrr/glint/pkg/math3d"
	"github.com/taigrr/glint/pkg/trace"
)

// Defaults for settings left unset.
const (
	DefaultWidth  = 320
	DefaultOutput = "out.png"
	DefaultFPS    = 30
)

// ErrBadTriple is returned for a malformed "a,b,c" flag value.
var ErrBadTriple = errors.New("want three comma separated numbers")

// Config holds the output and tracer settings. Pointer fields are unset
// when nil, since their zero value is meaningful.
type Config struct {
	// Output
	Output      string `json:"output"`
	Width       int    `json:"width"`
	Height      int    `json:"height"` // 0 = Width * 3/4
	Supersample int    `json:"supersample"`
	FPS         int    `json:"fps"` // preview frame rate

	// Tracer
	Depth                *int               `json:"depth,omitempty"`
	Samples              int                `json:"samples"`
	Jitter               bool               `json:"jitter"`
	Seed                 uint64             `json:"seed"`
	Adaptive             bool               `json:"adaptive"`
	AdaptiveDepth        *int               `json:"adaptive_depth,omitempty"`
	AdaptiveThreshold    float64            `json:"adaptive_threshold"`
	TerminationThreshold float64            `json:"termination_threshold"`
	Ambient              *[3]float64        `json:"ambient,omitempty"`
	Attenuation          *trace.Attenuation `json:"attenuation,omitempty"`
}

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
// Numeric flags override when positive; Depth and AdaptiveDepth when
// non-negative. Jitter and Adaptive can only switch a feature on.
type Flags struct {
	Output        string
	Width         int
	Height        int
	Supersample   int
	FPS           int
	Depth         int
	Samples       int
	Jitter        bool
	Adaptive      bool
	AdaptiveDepth int
	Seed          uint64
	Ambient       string // "r,g,b"
	Atten         string // "constant,linear,quadratic"
}

// Resolve applies flags over the file settings, then fills every unset
// field with its default.
func (c *Config) Resolve(flags Flags) error {
	// CLI flags override config file
	if flags.Output != "" {
		c.Output = flags.Output
	}
	if flags.Width > 0 {
		c.Width = flags.Width
	}
	if flags.Height > 0 {
		c.Height = flags.Height
	}
	if flags.Supersample > 0 {
		c.Supersample = flags.Supersample
	}
	if flags.FPS > 0 {
		c.FPS = flags.FPS
	}
	if flags.Depth >= 0 {
		c.Depth = &flags.Depth
	}
	if flags.Samples > 0 {
		c.Samples = flags.Samples
	}
	if flags.AdaptiveDepth >= 0 {
		c.AdaptiveDepth = &flags.AdaptiveDepth
	}
	if flags.Seed != 0 {
		c.Seed = flags.Seed
	}
	c.Jitter = c.Jitter || flags.Jitter
	c.Adaptive = c.Adaptive || flags.Adaptive

	if flags.Ambient != "" {
		v, err := ParseTriple(flags.Ambient)
		if err != nil {
			return fmt.Errorf("config: ambient: %w", err)
		}
		c.Ambient = &v
	}
	if flags.Atten != "" {
		v, err := ParseTriple(flags.Atten)
		if err != nil {
			return fmt.Errorf("config: attenuation: %w", err)
		}
		c.Attenuation = &trace.Attenuation{Constant: v[0], Linear: v[1], Quadratic: v[2]}
	}

	defaults := trace.DefaultRenderConfig()
	if c.Output == "" {
		c.Output = DefaultOutput
	}
	if c.Width <= 0 {
		c.Width = DefaultWidth
	}
	if c.Height <= 0 {
		c.Height = max(c.Width*3/4, 1)
	}
	if c.Supersample <= 0 {
		c.Supersample = 1
	}
	if c.FPS <= 0 {
		c.FPS = DefaultFPS
	}
	if c.Depth == nil {
		c.Depth = &defaults.MaxDepth
	}
	if c.Samples <= 0 {
		c.Samples = defaults.Samples
	}
	if c.AdaptiveDepth == nil {
		c.AdaptiveDepth = &defaults.AdaptiveDepth
	}
	if c.AdaptiveThreshold <= 0 {
		c.AdaptiveThreshold = defaults.AdaptiveThreshold
	}
	return nil
}

// RenderConfig converts the resolved settings for the tracer.
func (c *Config) RenderConfig() (trace.RenderConfig, error) {
	rc := trace.DefaultRenderConfig()
	if c.Depth != nil {
		rc.MaxDepth = *c.Depth
	}
	if c.Samples > 0 {
		rc.Samples = c.Samples
	}
	if c.AdaptiveDepth != nil {
		rc.AdaptiveDepth = *c.AdaptiveDepth
	}
	if c.AdaptiveThreshold > 0 {
		rc.AdaptiveThreshold = c.AdaptiveThreshold
	}
	rc.Jitter = c.Jitter
	rc.Adaptive = c.Adaptive
	rc.Seed = c.Seed
	rc.TerminationThreshold = c.TerminationThreshold
	if c.Ambient != nil {
		a := math3d.V3(c.Ambient[0], c.Ambient[1], c.Ambient[2])
		rc.Ambient = &a
	}
	if c.Attenuation != nil {
		a := *c.Attenuation
		rc.Attenuation = &a
	}

	if err := rc.Validate(); err != nil {
		return trace.RenderConfig{}, err
	}
	return rc, nil
}

// RenderSize returns the size to trace at: the output size times the
// supersample factor.
func (c *Config) RenderSize() (int, int) {
	s := max(c.Supersample, 1)
	return c.Width * s, c.Height * s
}

// ParseTriple parses "a,b,c" into three floats.
func ParseTriple(s string) ([3]float64, error) {
	var v [3]float64
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return v, fmt.Errorf("%q: %w", s, ErrBadTriple)
	}
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return v, fmt.Errorf("%q: %w", s, ErrBadTriple)
		}
		v[i] = f
	}
	return v, nil
}
