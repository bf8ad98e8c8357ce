package neows

import (
	"math"

	"github.com/Ronin-2099/Chance-of-Meteors/internal/deflection"
)

const notAvailable = "N/A"

// MinMax is a rounded min/max pair.
type MinMax struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// ApproachSummary describes the first recorded close approach.
type ApproachSummary struct {
	Date           string  `json:"date"`
	VelocityKPS    float64 `json:"velocity_kps"`
	MissDistanceKM float64 `json:"miss_distance_km"`
}

// Summary is the display form of a looked-up object.
type Summary struct {
	ID                     string          `json:"id"`
	Name                   string          `json:"name"`
	Hazardous              bool            `json:"is_potentially_hazardous_asteroid"`
	DiameterMeters         MinMax          `json:"diameter_meters"`
	CloseApproach          ApproachSummary `json:"close_approach"`
	SemiMajorAxis          string          `json:"semi_major_axis"`
	Eccentricity           string          `json:"eccentricity"`
	Inclination            string          `json:"inclination"`
	AscendingNodeLongitude string          `json:"ascending_node_longitude"`
	PerihelionArgument     string          `json:"perihelion_argument"`
	MeanAnomaly            string          `json:"mean_anomaly"`
	OrbitalPeriodDays      int             `json:"orbital_period"`
	PerihelionDistance     string          `json:"perihelion_distance"`
	AphelionDistance       string          `json:"aphelion_distance"`
}

// Summarize builds the display summary of obj. Missing text fields read "N/A"
// and missing numbers read zero.
func Summarize(obj *Object) Summary {
	s := Summary{
		ID:        obj.ID,
		Name:      obj.Name,
		Hazardous: obj.IsPotentiallyHazardous,
		DiameterMeters: MinMax{
			Min: round2(obj.EstimatedDiameter.Meters.Min),
			Max: round2(obj.EstimatedDiameter.Meters.Max),
		},
		CloseApproach: ApproachSummary{Date: notAvailable},
	}

	if len(obj.CloseApproachData) > 0 {
		ca := obj.CloseApproachData[0]
		if ca.DateFull != "" {
			s.CloseApproach.Date = ca.DateFull
		}
		if v, err := parseNumber(ca.RelativeVelocity.KilometersPerSecond); err == nil {
			s.CloseApproach.VelocityKPS = round2(v)
		}
		if v, err := parseNumber(ca.MissDistance.Kilometers); err == nil {
			s.CloseApproach.MissDistanceKM = round2(v)
		}
	}

	od := obj.OrbitalData
	if od == nil {
		od = &OrbitalData{}
	}
	s.SemiMajorAxis = orNA(od.SemiMajorAxis)
	s.Eccentricity = orNA(od.Eccentricity)
	s.Inclination = orNA(od.Inclination)
	s.AscendingNodeLongitude = orNA(od.AscendingNodeLongitude)
	s.PerihelionArgument = orNA(od.PerihelionArgument)
	s.MeanAnomaly = orNA(od.MeanAnomaly)
	s.PerihelionDistance = orNA(od.PerihelionDistance)
	s.AphelionDistance = orNA(od.AphelionDistance)
	if v, err := parseNumber(od.OrbitalPeriod); err == nil {
		s.OrbitalPeriodDays = int(math.Round(v))
	}

	return s
}

// Elements extracts the orbital elements used by the deflection model.
// Objects without orbital data fail with deflection.ErrInvalidInput.
func (o *Object) Elements() (deflection.Elements, error) {
	if o.OrbitalData == nil {
		return deflection.ParseElements("", "")
	}
	return deflection.ParseElements(o.OrbitalData.SemiMajorAxis, o.OrbitalData.Eccentricity)
}

func orNA(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}
