package bed

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValidates(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func requireConfigError(t *testing.T, cfg Config, field string) {
	t.Helper()
	err := cfg.Validate()
	require.ErrorIs(t, err, ErrConfiguration)

	var ce *ConfigurationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, field, ce.Field)

	// the build surface rejects it the same way, before any solve
	_, err = New(cfg)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestPartialPerPhaseSchemeRejected(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TransformationScheme = SchemeUnset
	cfg.GasTransformationScheme = Backward
	requireConfigError(t, cfg, "transformation_scheme")

	cfg = DefaultConfig()
	cfg.TransformationScheme = SchemeUnset
	cfg.SolidTransformationScheme = Forward
	requireConfigError(t, cfg, "transformation_scheme")
}

func TestSharedAndPerPhaseSchemesRejected(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TransformationScheme = Backward
	cfg.GasTransformationScheme = Backward
	cfg.SolidTransformationScheme = Backward
	requireConfigError(t, cfg, "transformation_scheme")
}

func TestCollocationWithSchemeRejected(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TransformationMethod = Collocation
	cfg.TransformationScheme = Backward
	requireConfigError(t, cfg, "transformation_scheme")
}

func TestCollocationWithPerPhaseSchemesRejected(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TransformationMethod = Collocation
	cfg.TransformationScheme = SchemeUnset
	cfg.GasTransformationScheme = Backward
	cfg.SolidTransformationScheme = Forward
	requireConfigError(t, cfg, "transformation_method")
}

func TestCollocationPointsRange(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TransformationMethod = Collocation
	cfg.TransformationScheme = SchemeUnset
	cfg.CollocationPoints = 7
	requireConfigError(t, cfg, "collocation_points")

	cfg.CollocationPoints = 3
	require.NoError(t, cfg.Validate())
}

func TestMissingPressureDropTypeRejected(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PressureDropType = PressureDropUnset
	requireConfigError(t, cfg, "pressure_drop_type")

	// no pressure change, no correlation needed
	cfg.HasPressureChange = false
	require.NoError(t, cfg.Validate())
}

func TestEquilibriumReactionsUnsupported(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SolidPhase.HasEquilibriumReactions = true
	requireConfigError(t, cfg, "has_equilibrium_reactions")
}

func TestMissingCollaboratorsRejected(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GasPhase.Properties = nil
	requireConfigError(t, cfg, "gas_phase.properties")

	cfg = DefaultConfig()
	cfg.SolidPhase.Reaction = nil
	requireConfigError(t, cfg, "solid_phase.reaction")
}

func TestLengthDomainSetSizeChecked(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FiniteElements = 4
	cfg.LengthDomainSet = []float64{0, 0.5, 1}
	requireConfigError(t, cfg, "length_domain_set")
}

func TestBadExplicitPointSetRejectedAtBuild(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FiniteElements = 2
	cfg.LengthDomainSet = []float64{0, 0.7, 0.4} // not increasing, no right endpoint
	_, err := New(cfg)
	require.ErrorIs(t, err, ErrConfiguration)
}

func TestResolveSchemes(t *testing.T) {
	cfg := DefaultConfig() // shared backward, counter-current
	gas, solid := cfg.resolveSchemes()
	assert.Equal(t, Backward, gas)
	assert.Equal(t, Forward, solid, "counter-current mirrors the shared scheme")

	cfg.TransformationScheme = Forward
	gas, solid = cfg.resolveSchemes()
	assert.Equal(t, Forward, gas)
	assert.Equal(t, Backward, solid)

	cfg = DefaultConfig()
	cfg.FlowType = CoCurrent
	gas, solid = cfg.resolveSchemes()
	assert.Equal(t, Backward, gas)
	assert.Equal(t, Backward, solid, "co-current phases share one direction")

	cfg = DefaultConfig()
	cfg.TransformationScheme = SchemeUnset
	cfg.GasTransformationScheme = Backward
	cfg.SolidTransformationScheme = Backward
	gas, solid = cfg.resolveSchemes()
	assert.Equal(t, Backward, gas)
	assert.Equal(t, Backward, solid, "per-phase overrides pass through untouched")
}

func TestConfigurationErrorsNeverReachTheSolver(t *testing.T) {
	bad := []Config{}

	c := DefaultConfig()
	c.TransformationScheme = SchemeUnset
	c.GasTransformationScheme = Forward
	bad = append(bad, c)

	c = DefaultConfig()
	c.TransformationMethod = Collocation
	bad = append(bad, c) // keeps shared scheme set

	c = DefaultConfig()
	c.GasTransformationScheme = Backward
	c.SolidTransformationScheme = Forward
	bad = append(bad, c) // shared and per-phase together

	for i, cfg := range bad {
		mb, err := New(cfg)
		assert.Nil(t, mb, "case %d", i)
		assert.True(t, errors.Is(err, ErrConfiguration), "case %d: %v", i, err)
	}
}
