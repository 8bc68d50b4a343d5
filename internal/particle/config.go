package particle

import (
	"errors"
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// Motion constants for the particle field. These MUST stay in sync with the
// renderer's expectations of world units (radius 15-20, depth -75).
const (
	DefaultCount                = 15000
	DefaultInnerRadius          = 15.0
	DefaultOuterRadius          = 20.0
	DefaultFixedDepth           = -75.0
	DefaultSelectionProbability = 0.35
	DefaultOvershootProbability = 0.35
	DefaultOvershootMin         = 1.2
	DefaultOvershootMax         = 1.5
	DefaultMinSpeed             = 0.1
	DefaultMaxSpeed             = 2.0

	MaxLifespan     = 0.5 // seconds
	MaxStartDelay   = 5.0 // seconds
	ArrivalRadius   = 1.0 // world units
	SpeedGain       = 0.1 // seek speed per unit of remaining distance
	BreathAmplitude = 0.1
	JitterAmplitude = 0.1
	OscillationRate = 2.0 // radians per second
)

var (
	DefaultPrimary   = colorful.Color{R: 0x1f / 255.0, G: 0xb0 / 255.0, B: 0x2a / 255.0}
	DefaultSecondary = colorful.Color{R: 0xff / 255.0, G: 0x72 / 255.0, B: 0x3d / 255.0}
)

// Config describes the particle field. It is fixed for the lifetime of a Store.
type Config struct {
	Count                int
	InnerRadius          float64
	OuterRadius          float64
	FixedDepth           float64
	SelectionProbability float64
	OvershootProbability float64
	OvershootMin         float64
	OvershootMax         float64
	MinSpeed             float64
	MaxSpeed             float64
	Palette              [2]colorful.Color
}

func DefaultConfig() Config {
	return Config{
		Count:                DefaultCount,
		InnerRadius:          DefaultInnerRadius,
		OuterRadius:          DefaultOuterRadius,
		FixedDepth:           DefaultFixedDepth,
		SelectionProbability: DefaultSelectionProbability,
		OvershootProbability: DefaultOvershootProbability,
		OvershootMin:         DefaultOvershootMin,
		OvershootMax:         DefaultOvershootMax,
		MinSpeed:             DefaultMinSpeed,
		MaxSpeed:             DefaultMaxSpeed,
		Palette:              [2]colorful.Color{DefaultPrimary, DefaultSecondary},
	}
}

// Validate checks the ranges Initialize depends on.
func (c Config) Validate() error {
	switch {
	case c.Count <= 0:
		return fmt.Errorf("particle count must be positive, got %d", c.Count)
	case c.InnerRadius < 0 || c.OuterRadius < c.InnerRadius:
		return fmt.Errorf("invalid annulus [%v, %v]", c.InnerRadius, c.OuterRadius)
	case !isProbability(c.SelectionProbability):
		return fmt.Errorf("selection probability %v outside [0,1]", c.SelectionProbability)
	case !isProbability(c.OvershootProbability):
		return fmt.Errorf("overshoot probability %v outside [0,1]", c.OvershootProbability)
	case c.OvershootMin < 1 || c.OvershootMax < c.OvershootMin:
		return fmt.Errorf("invalid overshoot range [%v, %v)", c.OvershootMin, c.OvershootMax)
	case c.MinSpeed <= 0 || c.MaxSpeed < 0:
		return errors.New("seek speeds must be positive")
	}
	return nil
}

func isProbability(p float64) bool {
	return p >= 0 && p <= 1
}

// ParsePalette parses two hex colors such as "#1fb02a".
func ParsePalette(primary, secondary string) ([2]colorful.Color, error) {
	a, err := colorful.Hex(primary)
	if err != nil {
		return [2]colorful.Color{}, fmt.Errorf("primary palette color: %w", err)
	}
	b, err := colorful.Hex(secondary)
	if err != nil {
		return [2]colorful.Color{}, fmt.Errorf("secondary palette color: %w", err)
	}
	return [2]colorful.Color{a, b}, nil
}
