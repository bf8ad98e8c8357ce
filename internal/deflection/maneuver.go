package deflection

import "fmt"

// Result is the outcome of a single perihelion-raising calculation.
// When Required is false only the current-orbit fields are set.
type Result struct {
	Required bool

	CurrentPerihelionAU float64
	CurrentAphelionAU   float64
	TargetPerihelionAU  float64

	DeltaV             float64 // m/s, prograde at aphelion
	NewSemiMajorAxisAU float64
	NewEccentricity    float64
}

// Calculator evaluates the maneuver model for a fixed set of constants and
// safety policy. The zero value is not usable; use NewCalculator.
type Calculator struct {
	constants Constants
	policy    Policy
}

// NewCalculator returns a Calculator after validating the policy.
func NewCalculator(constants Constants, policy Policy) (*Calculator, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	if !finite(constants.AU) || constants.AU <= 0 || !finite(constants.Mu()) || constants.Mu() <= 0 {
		return nil, fmt.Errorf("%w: physical constants must be positive", ErrInvalidPolicy)
	}
	return &Calculator{constants: constants, policy: policy}, nil
}

var defaultCalculator = &Calculator{constants: SI, policy: DefaultPolicy}

// Compute runs the maneuver model with SI constants and DefaultPolicy.
func Compute(el Elements) (Result, error) {
	return defaultCalculator.Compute(el)
}

// Policy returns the safety policy the calculator enforces.
func (c *Calculator) Policy() Policy {
	return c.policy
}

// Compute decides whether el needs a deflection and, if so, returns the
// delta-v to apply at aphelion and the resulting orbit.
//
// Aphelion is invariant across the maneuver. The result is either a
// NotRequired result, a Required result with DeltaV > 0, or an error wrapping
// ErrInvalidInput or ErrDegenerateOrbit; nothing is partially computed.
func (c *Calculator) Compute(el Elements) (Result, error) {
	if err := el.Validate(); err != nil {
		return Result{}, err
	}

	au := c.constants.AU
	mu := c.constants.Mu()
	targetAU := c.policy.ThresholdAU()

	aOld := el.SemiMajorAxisAU * au
	qOld := aOld * (1 - el.Eccentricity)
	apOld := aOld * (1 + el.Eccentricity)
	qTarget := targetAU * au

	res := Result{
		CurrentPerihelionAU: el.PerihelionAU(),
		CurrentAphelionAU:   el.AphelionAU(),
		TargetPerihelionAU:  targetAU,
	}

	if qOld >= qTarget {
		return res, nil
	}

	// With aphelion pinned, a perihelion beyond it would swap the apsides and
	// leave the closest approach unchanged.
	if apOld < qTarget {
		return Result{}, fmt.Errorf("%w: aphelion %g AU lies inside the %g AU safety threshold",
			ErrDegenerateOrbit, res.CurrentAphelionAU, targetAU)
	}

	vOld, err := VisViva(mu, apOld, aOld)
	if err != nil {
		return Result{}, fmt.Errorf("current aphelion speed: %w", err)
	}

	aNew := (apOld + qTarget) / 2
	vNew, err := VisViva(mu, apOld, aNew)
	if err != nil {
		return Result{}, fmt.Errorf("target aphelion speed: %w", err)
	}

	dv := vNew - vOld
	if dv <= 0 {
		return Result{}, fmt.Errorf("%w: non-positive delta-v %g m/s for a perihelion raise", ErrDegenerateOrbit, dv)
	}

	res.Required = true
	res.DeltaV = dv
	res.NewSemiMajorAxisAU = aNew / au
	res.NewEccentricity = (apOld - qTarget) / (apOld + qTarget)
	return res, nil
}
