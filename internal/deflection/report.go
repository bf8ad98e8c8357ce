package deflection

import (
	"errors"
	"math"
)

// Report statuses.
const (
	StatusNotRequired = "not_required"
	StatusRequired    = "required"
)

// OrbitParams is the in-plane shape of the post-burn orbit.
type OrbitParams struct {
	A float64 `json:"a"`
	E float64 `json:"e"`
}

// Report is the serializable form of a Result. Values are rounded for
// presentation; use Result for further computation. RequiredDVMS is set
// exactly when Status is StatusRequired, even if it rounds to zero.
type Report struct {
	Status              string       `json:"status"`
	RequiredDVMS        *float64     `json:"required_dv_ms,omitempty"`
	TargetPerihelionAU  float64      `json:"target_perihelion_au"`
	CurrentPerihelionAU float64      `json:"current_perihelion_au"`
	CurrentAphelionAU   float64      `json:"current_aphelion_au"`
	NewOrbit            *OrbitParams `json:"new_orbit_params,omitempty"`
}

// Assemble converts a Result into its presentation Report.
// Delta-v is rounded to mm/s, distances and eccentricity to 1e-6.
func Assemble(res Result) Report {
	r := Report{
		Status:              StatusNotRequired,
		TargetPerihelionAU:  round(res.TargetPerihelionAU, 6),
		CurrentPerihelionAU: round(res.CurrentPerihelionAU, 6),
		CurrentAphelionAU:   round(res.CurrentAphelionAU, 6),
	}
	if !res.Required {
		return r
	}
	r.Status = StatusRequired
	dv := round(res.DeltaV, 3)
	r.RequiredDVMS = &dv
	r.NewOrbit = &OrbitParams{
		A: round(res.NewSemiMajorAxisAU, 6),
		E: round(res.NewEccentricity, 6),
	}
	return r
}

// ErrorKind maps a calculation error to a stable machine-readable label.
// It returns "" for a nil error.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrDegenerateOrbit):
		return "degenerate_orbit"
	default:
		return "internal"
	}
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
