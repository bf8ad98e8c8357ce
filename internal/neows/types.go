package neows

import "time"

// Object is a near-Earth object as returned by the NeoWs lookup and feed endpoints.
// Feed responses omit OrbitalData.
type Object struct {
	ID                     string            `json:"id"`
	NeoReferenceID         string            `json:"neo_reference_id"`
	Name                   string            `json:"name"`
	NASAJPLURL             string            `json:"nasa_jpl_url"`
	AbsoluteMagnitudeH     float64           `json:"absolute_magnitude_h"`
	EstimatedDiameter      EstimatedDiameter `json:"estimated_diameter"`
	IsPotentiallyHazardous bool              `json:"is_potentially_hazardous_asteroid"`
	CloseApproachData      []CloseApproach   `json:"close_approach_data"`
	OrbitalData            *OrbitalData      `json:"orbital_data,omitempty"`
	IsSentryObject         bool              `json:"is_sentry_object"`
}

// DiameterRange is an estimated diameter interval in a single unit.
type DiameterRange struct {
	Min float64 `json:"estimated_diameter_min"`
	Max float64 `json:"estimated_diameter_max"`
}

// EstimatedDiameter holds the diameter estimates the API publishes.
type EstimatedDiameter struct {
	Kilometers DiameterRange `json:"kilometers"`
	Meters     DiameterRange `json:"meters"`
}

// CloseApproach is a single close-approach record. NeoWs encodes the
// numeric fields as strings.
type CloseApproach struct {
	Date             string           `json:"close_approach_date"`
	DateFull         string           `json:"close_approach_date_full"`
	EpochMillis      int64            `json:"epoch_date_close_approach"`
	RelativeVelocity RelativeVelocity `json:"relative_velocity"`
	MissDistance     MissDistance     `json:"miss_distance"`
	OrbitingBody     string           `json:"orbiting_body"`
}

// RelativeVelocity is the approach speed relative to the orbiting body.
type RelativeVelocity struct {
	KilometersPerSecond string `json:"kilometers_per_second"`
	KilometersPerHour   string `json:"kilometers_per_hour"`
	MilesPerHour        string `json:"miles_per_hour"`
}

// MissDistance is the closest distance to the orbiting body.
type MissDistance struct {
	Astronomical string `json:"astronomical"`
	Lunar        string `json:"lunar"`
	Kilometers   string `json:"kilometers"`
	Miles        string `json:"miles"`
}

// OrbitalData holds the heliocentric osculating elements. All values are
// strings in the API and may be empty.
type OrbitalData struct {
	OrbitID                   string `json:"orbit_id"`
	OrbitDeterminationDate    string `json:"orbit_determination_date"`
	FirstObservationDate      string `json:"first_observation_date"`
	LastObservationDate       string `json:"last_observation_date"`
	OrbitUncertainty          string `json:"orbit_uncertainty"`
	MinimumOrbitIntersection  string `json:"minimum_orbit_intersection"`
	JupiterTisserandInvariant string `json:"jupiter_tisserand_invariant"`
	EpochOsculation           string `json:"epoch_osculation"`
	Eccentricity              string `json:"eccentricity"`
	SemiMajorAxis             string `json:"semi_major_axis"`
	Inclination               string `json:"inclination"`
	AscendingNodeLongitude    string `json:"ascending_node_longitude"`
	OrbitalPeriod             string `json:"orbital_period"`
	PerihelionDistance        string `json:"perihelion_distance"`
	PerihelionArgument        string `json:"perihelion_argument"`
	AphelionDistance          string `json:"aphelion_distance"`
	PerihelionTime            string `json:"perihelion_time"`
	MeanAnomaly               string `json:"mean_anomaly"`
	MeanMotion                string `json:"mean_motion"`
	Equinox                   string `json:"equinox"`
}

// FeedResponse is the body of the NeoWs feed endpoint, keyed by approach date.
type FeedResponse struct {
	ElementCount     int                 `json:"element_count"`
	NearEarthObjects map[string][]Object `json:"near_earth_objects"`
}

// Approach is a flattened feed entry describing one upcoming close approach.
type Approach struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Hazardous      bool      `json:"is_potentially_hazardous_asteroid"`
	DiameterMinM   float64   `json:"diameter_min"`
	DiameterMaxM   float64   `json:"diameter_max"`
	ApproachDate   string    `json:"approach_date"`
	ApproachTime   time.Time `json:"approach_time"`
	VelocityKPS    float64   `json:"velocity_kps"`
	MissDistanceKM float64   `json:"miss_distance_km"`
}

// Window is the requested date range of a feed.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// FeedDataset is a parsed feed together with its provenance.
type FeedDataset struct {
	Source     string
	FetchedAt  time.Time
	Window     Window
	Approaches []Approach
}
