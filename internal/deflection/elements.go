package deflection

import (
	"fmt"
	"strconv"
	"strings"
)

// Elements is the validated in-plane shape of a bound heliocentric orbit.
type Elements struct {
	SemiMajorAxisAU float64
	Eccentricity    float64
}

// NewElements validates numeric orbital elements.
// The semi-major axis must be positive and the eccentricity in [0, 1).
func NewElements(semiMajorAxisAU, eccentricity float64) (Elements, error) {
	el := Elements{SemiMajorAxisAU: semiMajorAxisAU, Eccentricity: eccentricity}
	if err := el.Validate(); err != nil {
		return Elements{}, err
	}
	return el, nil
}

// ParseElements validates orbital elements supplied as text, as published by
// the NeoWs API and by query parameters. An empty value means the field is absent.
func ParseElements(semiMajorAxisAU, eccentricity string) (Elements, error) {
	a, err := parseField("semi_major_axis", semiMajorAxisAU)
	if err != nil {
		return Elements{}, err
	}
	e, err := parseField("eccentricity", eccentricity)
	if err != nil {
		return Elements{}, err
	}
	return NewElements(a, e)
}

func parseField(name, raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%w: %s is missing", ErrInvalidInput, name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not a number", ErrInvalidInput, name, raw)
	}
	return v, nil
}

// Validate reports ErrInvalidInput when the elements do not describe a bound ellipse.
func (el Elements) Validate() error {
	if !finite(el.SemiMajorAxisAU) || !finite(el.Eccentricity) {
		return fmt.Errorf("%w: elements must be finite (a=%g, e=%g)", ErrInvalidInput, el.SemiMajorAxisAU, el.Eccentricity)
	}
	if el.SemiMajorAxisAU <= 0 {
		return fmt.Errorf("%w: semi-major axis %g AU must be positive", ErrInvalidInput, el.SemiMajorAxisAU)
	}
	if el.Eccentricity < 0 || el.Eccentricity >= 1 {
		return fmt.Errorf("%w: eccentricity %g outside [0, 1)", ErrInvalidInput, el.Eccentricity)
	}
	return nil
}

// PerihelionAU returns the closest distance to the Sun, a(1-e).
func (el Elements) PerihelionAU() float64 {
	return el.SemiMajorAxisAU * (1 - el.Eccentricity)
}

// AphelionAU returns the farthest distance from the Sun, a(1+e).
func (el Elements) AphelionAU() float64 {
	return el.SemiMajorAxisAU * (1 + el.Eccentricity)
}
