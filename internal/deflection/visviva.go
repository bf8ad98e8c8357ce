package deflection

import (
	"fmt"
	"math"
)

// VisViva returns the orbital speed (m/s) at radius r (m) on an orbit with
// semi-major axis a (m) around a body with gravitational parameter mu (m^3/s^2):
//
//	v = sqrt(mu * (2/r - 1/a))
//
// It fails with ErrDegenerateOrbit when the inputs are not positive and finite,
// or when r lies beyond the orbit's reach (negative radicand).
func VisViva(mu, r, a float64) (float64, error) {
	if !finite(mu) || !finite(r) || !finite(a) || mu <= 0 || r <= 0 || a <= 0 {
		return 0, fmt.Errorf("%w: vis-viva inputs must be positive (mu=%g, r=%g, a=%g)", ErrDegenerateOrbit, mu, r, a)
	}
	radicand := 2/r - 1/a
	if radicand < 0 {
		return 0, fmt.Errorf("%w: radius %g m exceeds reach of orbit with a=%g m", ErrDegenerateOrbit, r, a)
	}
	return math.Sqrt(mu * radicand), nil
}
