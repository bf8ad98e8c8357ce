// Package deflection computes the single impulsive burn that raises an
// object's perihelion to a safe distance from the Sun.
//
// The model keeps aphelion fixed and applies a tangential, prograde burn at
// aphelion, the point of minimum orbital speed. Only the semi-major axis and
// eccentricity of the heliocentric orbit are used.
//
// All functions in this package are pure and safe for concurrent use.
package deflection

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidInput reports missing, non-numeric or out-of-range orbital elements.
	ErrInvalidInput = errors.New("invalid orbital elements")

	// ErrDegenerateOrbit reports a physically inconsistent intermediate quantity,
	// such as a negative vis-viva radicand or a non-positive delta-v.
	ErrDegenerateOrbit = errors.New("degenerate orbit")

	// ErrInvalidPolicy reports an unusable safety policy or set of constants.
	ErrInvalidPolicy = errors.New("invalid safety policy")
)

// Constants holds the physical constants used by the maneuver model.
type Constants struct {
	G         float64 // gravitational constant, m^3 kg^-1 s^-2
	SolarMass float64 // kg
	AU        float64 // metres per astronomical unit
}

// SI is the set of constants used for every production calculation.
var SI = Constants{
	G:         6.67430e-11,
	SolarMass: 1.989e30,
	AU:        149597870700,
}

// Mu returns the Sun's standard gravitational parameter G*M.
func (c Constants) Mu() float64 {
	return c.G * c.SolarMass
}

// Policy defines the minimum acceptable perihelion distance.
type Policy struct {
	EarthAphelionAU float64 `toml:"earth_aphelion_au"`
	MarginAU        float64 `toml:"margin_au"`
}

// DefaultPolicy requires perihelion to clear Earth's aphelion by 0.05 AU.
var DefaultPolicy = Policy{
	EarthAphelionAU: 1.017,
	MarginAU:        0.05,
}

// ThresholdAU returns the safe perihelion distance in astronomical units.
func (p Policy) ThresholdAU() float64 {
	return p.EarthAphelionAU + p.MarginAU
}

// Validate checks that the policy describes a usable, positive threshold.
func (p Policy) Validate() error {
	if !finite(p.EarthAphelionAU) || !finite(p.MarginAU) {
		return fmt.Errorf("%w: safety policy values must be finite", ErrInvalidPolicy)
	}
	if p.EarthAphelionAU <= 0 {
		return fmt.Errorf("%w: earth aphelion %g AU must be positive", ErrInvalidPolicy, p.EarthAphelionAU)
	}
	if p.MarginAU < 0 {
		return fmt.Errorf("%w: safety margin %g AU must not be negative", ErrInvalidPolicy, p.MarginAU)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
