package deflection

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseElements(t *testing.T) {
	tests := []struct {
		name    string
		a, e    string
		want    Elements
		wantErr bool
	}{
		{name: "typical NeoWs strings", a: "1.5", e: "0.3", want: Elements{1.5, 0.3}},
		{name: "surrounding whitespace", a: " 2.0 ", e: "\t0.05\n", want: Elements{2.0, 0.05}},
		{name: "circular orbit", a: "1.2", e: "0", want: Elements{1.2, 0}},
		{name: "missing eccentricity", a: "1.5", e: "", wantErr: true},
		{name: "missing semi-major axis", a: "   ", e: "0.3", wantErr: true},
		{name: "non-numeric", a: "N/A", e: "0.3", wantErr: true},
		{name: "NaN", a: "NaN", e: "0.3", wantErr: true},
		{name: "infinite axis", a: "+Inf", e: "0.3", wantErr: true},
		{name: "zero axis", a: "0", e: "0.3", wantErr: true},
		{name: "negative axis", a: "-1.5", e: "0.3", wantErr: true},
		{name: "negative eccentricity", a: "1.5", e: "-0.1", wantErr: true},
		{name: "parabolic", a: "1.5", e: "1", wantErr: true},
		{name: "hyperbolic", a: "1.5", e: "1.2", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseElements(tt.a, tt.e)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidInput)
				assert.Equal(t, Elements{}, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestElementsApsides(t *testing.T) {
	el, err := NewElements(1.5, 0.3)
	require.NoError(t, err)
	assert.InDelta(t, 1.05, el.PerihelionAU(), 1e-12)
	assert.InDelta(t, 1.95, el.AphelionAU(), 1e-12)
}

func TestVisViva(t *testing.T) {
	mu := SI.Mu()

	t.Run("circular orbit speed", func(t *testing.T) {
		v, err := VisViva(mu, SI.AU, SI.AU)
		require.NoError(t, err)
		assert.InDelta(t, math.Sqrt(mu/SI.AU), v, 1e-9)
		// Earth's mean orbital speed is close to 29.8 km/s.
		assert.InDelta(t, 29780, v, 50)
	})

	t.Run("radius at the orbit's reach", func(t *testing.T) {
		v, err := VisViva(mu, 2*SI.AU, SI.AU)
		require.NoError(t, err)
		assert.Equal(t, 0.0, v)
	})

	t.Run("negative radicand", func(t *testing.T) {
		_, err := VisViva(mu, 2.5*SI.AU, SI.AU)
		require.ErrorIs(t, err, ErrDegenerateOrbit)
	})

	t.Run("non-positive inputs", func(t *testing.T) {
		for _, in := range [][3]float64{
			{0, SI.AU, SI.AU},
			{mu, 0, SI.AU},
			{mu, SI.AU, -SI.AU},
			{mu, math.NaN(), SI.AU},
			{mu, SI.AU, math.Inf(1)},
		} {
			_, err := VisViva(in[0], in[1], in[2])
			assert.ErrorIs(t, err, ErrDegenerateOrbit, "inputs %v", in)
		}
	})
}

func TestComputeRequired(t *testing.T) {
	el, err := NewElements(1.5, 0.3)
	require.NoError(t, err)

	res, err := Compute(el)
	require.NoError(t, err)
	require.True(t, res.Required)

	assert.InDelta(t, 93.142, res.DeltaV, 1e-2)
	assert.InDelta(t, 1.067, res.TargetPerihelionAU, 1e-12)
	assert.InDelta(t, 1.5085, res.NewSemiMajorAxisAU, 1e-9)
	assert.InDelta(t, 0.292675, res.NewEccentricity, 1e-6)
	assert.Greater(t, res.NewSemiMajorAxisAU, 1.5)
	assert.Less(t, res.NewSemiMajorAxisAU, 1.52)
	assert.Less(t, res.NewEccentricity, 0.3)
	assert.InDelta(t, 1.05, res.CurrentPerihelionAU, 1e-12)
	assert.InDelta(t, 1.95, res.CurrentAphelionAU, 1e-12)
}

func TestComputeNotRequired(t *testing.T) {
	for _, el := range []Elements{
		{2.0, 0.05},
		{1.1, 0},
		{5.2, 0.0489},
		{3.0, 0.6},
	} {
		res, err := Compute(el)
		require.NoError(t, err, "elements %+v", el)
		assert.False(t, res.Required, "elements %+v", el)
		assert.Zero(t, res.DeltaV)
		assert.Zero(t, res.NewSemiMajorAxisAU)
		assert.Zero(t, res.NewEccentricity)
	}
}

func TestComputeInvalidElements(t *testing.T) {
	for _, el := range []Elements{
		{},
		{-1, 0.2},
		{1.5, 1},
		{math.NaN(), 0.2},
	} {
		res, err := Compute(el)
		require.ErrorIs(t, err, ErrInvalidInput, "elements %+v", el)
		assert.Equal(t, Result{}, res)
	}
}

func TestComputeAphelionInsideThreshold(t *testing.T) {
	// Aphelion 0.84 AU: the whole orbit sits inside the threshold.
	_, err := Compute(Elements{SemiMajorAxisAU: 0.7, Eccentricity: 0.2})
	require.ErrorIs(t, err, ErrDegenerateOrbit)
	assert.NotErrorIs(t, err, ErrInvalidInput)
}

func TestComputeInvariants(t *testing.T) {
	var cases []Elements
	for _, a := range []float64{0.9, 1.1, 1.5, 2.2, 3.0} {
		for _, e := range []float64{0.2, 0.35, 0.5, 0.7, 0.9, 0.99} {
			cases = append(cases, Elements{a, e})
		}
	}

	for _, el := range cases {
		res, err := Compute(el)
		if el.AphelionAU() < DefaultPolicy.ThresholdAU() {
			require.ErrorIs(t, err, ErrDegenerateOrbit, "elements %+v", el)
			continue
		}
		require.NoError(t, err, "elements %+v", el)
		if el.PerihelionAU() >= DefaultPolicy.ThresholdAU() {
			assert.False(t, res.Required, "elements %+v", el)
			continue
		}
		require.True(t, res.Required, "elements %+v", el)

		newPeri := res.NewSemiMajorAxisAU * (1 - res.NewEccentricity)
		newAph := res.NewSemiMajorAxisAU * (1 + res.NewEccentricity)
		assert.InEpsilon(t, DefaultPolicy.ThresholdAU(), newPeri, 1e-6, "perihelion for %+v", el)
		assert.InEpsilon(t, el.AphelionAU(), newAph, 1e-6, "aphelion for %+v", el)
		assert.Greater(t, res.DeltaV, 0.0, "delta-v for %+v", el)
	}
}

func TestComputeMonotonicDeltaV(t *testing.T) {
	// Fixed aphelion of 2 AU, perihelion shrinking towards the Sun.
	const aphelion = 2.0
	prev := -1.0
	for _, q := range []float64{1.06, 1.0, 0.9, 0.7, 0.5, 0.3, 0.1} {
		a := (aphelion + q) / 2
		e := (aphelion - q) / (aphelion + q)
		res, err := Compute(Elements{a, e})
		require.NoError(t, err, "perihelion %g", q)
		require.True(t, res.Required)
		assert.GreaterOrEqual(t, res.DeltaV, prev, "perihelion %g", q)
		prev = res.DeltaV
	}
}

func TestComputeIdempotent(t *testing.T) {
	el := Elements{1.2, 0.5}
	first, err := Compute(el)
	require.NoError(t, err)
	second, err := Compute(el)
	require.NoError(t, err)
	assert.Equal(t, math.Float64bits(first.DeltaV), math.Float64bits(second.DeltaV))
	assert.Equal(t, first, second)
}

func TestCalculatorPolicy(t *testing.T) {
	_, err := NewCalculator(SI, Policy{EarthAphelionAU: 1.017, MarginAU: -0.5})
	require.ErrorIs(t, err, ErrInvalidPolicy)

	_, err = NewCalculator(SI, Policy{EarthAphelionAU: math.NaN()})
	require.ErrorIs(t, err, ErrInvalidPolicy)

	_, err = NewCalculator(Constants{}, DefaultPolicy)
	require.ErrorIs(t, err, ErrInvalidPolicy)

	wide, err := NewCalculator(SI, Policy{EarthAphelionAU: 1.017, MarginAU: 1.0})
	require.NoError(t, err)
	assert.InDelta(t, 2.017, wide.Policy().ThresholdAU(), 1e-12)

	// Safe under the default policy, unsafe under the wider margin.
	el := Elements{2.0, 0.05}
	res, err := wide.Compute(el)
	require.NoError(t, err)
	assert.True(t, res.Required)
	assert.InDelta(t, 2.017, res.TargetPerihelionAU, 1e-12)
}

func TestAssemble(t *testing.T) {
	res, err := Compute(Elements{1.5, 0.3})
	require.NoError(t, err)

	r := Assemble(res)
	assert.Equal(t, StatusRequired, r.Status)
	require.NotNil(t, r.RequiredDVMS)
	assert.Equal(t, 93.142, *r.RequiredDVMS)
	assert.Equal(t, 1.067, r.TargetPerihelionAU)
	assert.Equal(t, 1.05, r.CurrentPerihelionAU)
	require.NotNil(t, r.NewOrbit)
	assert.Equal(t, 1.5085, r.NewOrbit.A)
	assert.Equal(t, 0.292675, r.NewOrbit.E)

	// Rounding must not leak back into the result.
	assert.NotEqual(t, *r.RequiredDVMS, res.DeltaV)

	safe, err := Compute(Elements{2.0, 0.05})
	require.NoError(t, err)
	r = Assemble(safe)
	assert.Equal(t, StatusNotRequired, r.Status)
	assert.Nil(t, r.NewOrbit)
	assert.Nil(t, r.RequiredDVMS)

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "required_dv_ms")
}

func TestAssembleTinyBurnKeepsDeltaV(t *testing.T) {
	// Perihelion a hair below the threshold: the burn rounds to 0.000 m/s.
	el := Elements{1.5, 1 - (DefaultPolicy.ThresholdAU()-5e-8)/1.5}
	res, err := Compute(el)
	require.NoError(t, err)
	require.True(t, res.Required)
	assert.Less(t, res.DeltaV, 0.0005)

	r := Assemble(res)
	assert.Equal(t, StatusRequired, r.Status)
	require.NotNil(t, r.RequiredDVMS)
	assert.Zero(t, *r.RequiredDVMS)

	data, err := json.Marshal(r)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Contains(t, body, "required_dv_ms")
	assert.Equal(t, 0.0, body["required_dv_ms"])
	assert.Contains(t, body, "new_orbit_params")
}

func TestErrorKind(t *testing.T) {
	_, invalid := ParseElements("1.5", "")
	_, degenerate := Compute(Elements{0.7, 0.2})

	assert.Equal(t, "", ErrorKind(nil))
	assert.Equal(t, "invalid_input", ErrorKind(invalid))
	assert.Equal(t, "degenerate_orbit", ErrorKind(degenerate))
}
