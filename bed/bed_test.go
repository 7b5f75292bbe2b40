package bed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mbr/eqn"
)

// buildReference builds a bed from cfg and fixes the reference geometry and
// inlets, leaving it ready for DOF checks and initialization.
func buildReference(t *testing.T, cfg Config) *MovingBed {
	t.Helper()
	mb, err := New(cfg)
	require.NoError(t, err)
	mb.ApplyScenario(DefaultScenario())
	return mb
}

func smallConfig() Config {
	cfg := DefaultConfig()
	cfg.FiniteElements = 4
	return cfg
}

func TestPhaseDomainsHoldEqualPointSets(t *testing.T) {
	mb := buildReference(t, DefaultConfig())

	assert.NotSame(t, mb.gas.domain, mb.solid.domain, "each phase owns its domain")
	assert.True(t, mb.gas.domain.SamePoints(mb.solid.domain))
	assert.Len(t, mb.Points(), 11)
	assert.Equal(t, 0.0, mb.Points()[0])
	assert.Equal(t, 1.0, mb.Points()[10])
}

func TestCounterCurrentOrientation(t *testing.T) {
	mb := buildReference(t, DefaultConfig())

	assert.Equal(t, mb.gas.domain.First(), mb.gas.inletIdx, "gas enters at x=0")
	assert.Equal(t, mb.solid.domain.Last(), mb.solid.inletIdx, "solid enters at x=1")

	up, ok := mb.gas.upstream(5)
	require.True(t, ok)
	assert.Equal(t, 4, up)
	up, ok = mb.solid.upstream(5)
	require.True(t, ok)
	assert.Equal(t, 6, up)
}

func TestCoCurrentOrientation(t *testing.T) {
	cfg := smallConfig()
	cfg.FlowType = CoCurrent
	mb := buildReference(t, cfg)

	assert.Equal(t, mb.solid.domain.First(), mb.solid.inletIdx)
	up, ok := mb.solid.upstream(2)
	require.True(t, ok)
	assert.Equal(t, 1, up)
}

func TestDegreesOfFreedomZeroAcrossConfigurations(t *testing.T) {
	cases := map[string]func() Config{
		"default": DefaultConfig,
		"small":   smallConfig,
		"energy_none": func() Config {
			cfg := smallConfig()
			cfg.EnergyBalanceType = EnergyBalanceNone
			return cfg
		},
		"no_pressure_change": func() Config {
			cfg := smallConfig()
			cfg.HasPressureChange = false
			cfg.PressureDropType = PressureDropUnset
			return cfg
		},
		"momentum_none": func() Config {
			cfg := smallConfig()
			cfg.MomentumBalanceType = MomentumBalanceNone
			cfg.PressureDropType = PressureDropUnset
			return cfg
		},
		"total_material": func() Config {
			cfg := smallConfig()
			cfg.MaterialBalanceType = MaterialBalanceTotal
			return cfg
		},
		"simple_pressure_drop": func() Config {
			cfg := smallConfig()
			cfg.PressureDropType = SimpleCorrelation
			return cfg
		},
		"co_current": func() Config {
			cfg := smallConfig()
			cfg.FlowType = CoCurrent
			return cfg
		},
		"forward_shared": func() Config {
			cfg := smallConfig()
			cfg.TransformationScheme = Forward
			return cfg
		},
		"per_phase_backward": func() Config {
			cfg := smallConfig()
			cfg.TransformationScheme = SchemeUnset
			cfg.GasTransformationScheme = Backward
			cfg.SolidTransformationScheme = Backward
			return cfg
		},
		"collocation": func() Config {
			cfg := smallConfig()
			cfg.TransformationMethod = Collocation
			cfg.TransformationScheme = SchemeUnset
			cfg.CollocationPoints = 3
			return cfg
		},
		"holdup": func() Config {
			cfg := smallConfig()
			cfg.HasHoldup = true
			return cfg
		},
		"explicit_grid": func() Config {
			cfg := smallConfig()
			cfg.LengthDomainSet = []float64{0, 0.1, 0.3, 0.6, 1}
			return cfg
		},
	}
	for name, mk := range cases {
		t.Run(name, func(t *testing.T) {
			mb := buildReference(t, mk())
			assert.Equal(t, 0, mb.DegreesOfFreedom(),
				"free=%d active=%d", len(mb.sys.FreeVars()), len(mb.sys.ActiveConstraints()))
		})
	}
}

// distinctVars counts the distinct dependencies of a constraint.
func distinctVars(c *eqn.Constraint) int {
	seen := map[*eqn.Var]bool{}
	for _, v := range c.Vars() {
		seen[v] = true
	}
	return len(seen)
}

func TestFiniteDifferenceStencilIsThreeVariables(t *testing.T) {
	mb := buildReference(t, DefaultConfig())

	for _, p := range []*phase{mb.gas, mb.solid} {
		for r := range p.discCons {
			for i, c := range p.discCons[r] {
				if c == nil {
					continue
				}
				require.Equal(t, 3, distinctVars(c), "%s row %d point %d", p.name, r, i)

				// the stencil is the point itself plus the phase's
				// upstream neighbor
				up, ok := p.upstream(i)
				require.True(t, ok)
				deps := c.Vars()
				assert.Contains(t, deps, p.fluxDeriv[r][i])
				assert.Contains(t, deps, p.flux[r][i])
				assert.Contains(t, deps, p.flux[r][up])
			}
		}
	}
}

func TestDiscretizationExcludesTheInletPoint(t *testing.T) {
	mb := buildReference(t, DefaultConfig())

	g, s := mb.gas, mb.solid
	for r := range g.fluxDeriv {
		assert.Nil(t, g.fluxDeriv[r][g.inletIdx], "gas inlet carries no derivative")
		assert.NotNil(t, g.fluxDeriv[r][g.domain.Last()])
	}
	for r := range s.fluxDeriv {
		assert.Nil(t, s.fluxDeriv[r][s.inletIdx], "solid inlet carries no derivative")
		assert.NotNil(t, s.fluxDeriv[r][s.domain.First()])
	}
}

func TestCollocationStencilSpansTheElement(t *testing.T) {
	cfg := smallConfig()
	cfg.TransformationMethod = Collocation
	cfg.TransformationScheme = SchemeUnset
	cfg.CollocationPoints = 3
	mb := buildReference(t, cfg)

	g := mb.gas
	assert.Len(t, mb.Points(), 4*3+1)
	for i, c := range g.discCons[0] {
		if c == nil {
			continue
		}
		// derivative plus the ncp+1 local nodes of the element
		assert.Equal(t, 5, distinctVars(c), "point %d", i)
	}
}

func TestPortsReferenceBoundaryStateVariables(t *testing.T) {
	mb := buildReference(t, DefaultConfig())

	assert.Same(t, mb.sys.Var("gas_flow_mol[0]"), mb.GasInlet().FlowMol)
	assert.Same(t, mb.sys.Var("gas_flow_mol[10]"), mb.GasOutlet().FlowMol)
	assert.Same(t, mb.sys.Var("solid_flow_mass[10]"), mb.SolidInlet().FlowMass)
	assert.Same(t, mb.sys.Var("solid_flow_mass[0]"), mb.SolidOutlet().FlowMass)
	assert.Same(t, mb.sys.Var("gas_mole_frac[CH4][0]"), mb.GasInlet().MoleFrac["CH4"])
	assert.Same(t, mb.sys.Var("solid_mass_frac[Fe2O3][10]"), mb.SolidInlet().MassFrac["Fe2O3"])

	// inlets fixed by the scenario, outlets free
	assert.True(t, mb.GasInlet().FlowMol.Fixed())
	assert.True(t, mb.SolidInlet().Temperature.Fixed())
	assert.False(t, mb.GasOutlet().FlowMol.Fixed())
	assert.False(t, mb.SolidOutlet().Temperature.Fixed())
}

func TestInletPortValues(t *testing.T) {
	mb := buildReference(t, DefaultConfig())
	sc := DefaultScenario()

	assert.Equal(t, sc.Gas.FlowMol, mb.GasInlet().FlowMol.Value())
	assert.Equal(t, sc.Gas.Pressure, mb.GasInlet().Pressure.Value())
	assert.Equal(t, sc.Solid.FlowMass, mb.SolidInlet().FlowMass.Value())
	assert.Equal(t, sc.Solid.ParticlePorosity, mb.SolidInlet().ParticlePorosity.Value())
	assert.Equal(t, sc.Solid.MassFrac["Al2O3"], mb.SolidInlet().MassFrac["Al2O3"].Value())
}

func TestGeometryConstraintsConsistentAfterSetGeometry(t *testing.T) {
	mb := buildReference(t, DefaultConfig())

	for _, c := range mb.geomCons {
		assert.InDelta(t, 0.0, c.Residual(), 1e-9, c.Name())
	}
	assert.InDelta(t, 33.183, mb.bedArea.Value(), 1e-3)
}

func TestSummaryCountsMatchSystem(t *testing.T) {
	mb := buildReference(t, smallConfig())
	sum := mb.Summary()

	assert.Equal(t, len(mb.sys.Vars()), sum.Variables)
	assert.Equal(t, len(mb.sys.Constraints()), sum.Constraints)
	assert.Equal(t, 0, sum.DegreesOfFreedom)
}

func TestCollocationBuildsMoreEquationsThanFiniteDifference(t *testing.T) {
	fd := buildReference(t, DefaultConfig())

	cfg := DefaultConfig()
	cfg.TransformationMethod = Collocation
	cfg.TransformationScheme = SchemeUnset
	cfg.CollocationPoints = 3
	oc := buildReference(t, cfg)

	assert.Greater(t, oc.Summary().Variables, fd.Summary().Variables)
	assert.Greater(t, oc.Summary().Constraints, fd.Summary().Constraints)
	assert.Equal(t, 0, oc.DegreesOfFreedom())
}

// sourcePoints collects which entries of the indexed variable family a
// group of constraints depends on.
func sourcePoints(family []*eqn.Var, groups ...[]*eqn.Constraint) map[int]bool {
	idx := make(map[*eqn.Var]int, len(family))
	for i, v := range family {
		idx[v] = i
	}
	got := make(map[int]bool)
	for _, grp := range groups {
		for _, c := range grp {
			if c == nil {
				continue
			}
			for _, v := range c.Vars() {
				if i, ok := idx[v]; ok {
					got[i] = true
				}
			}
		}
	}
	return got
}

// Both phases must draw their per-element sources from the same axial
// points, whatever the scheme, so the inlet-to-outlet totals cancel
// exactly against the declared stoichiometry.
func TestReactionSourcesShareElementPoints(t *testing.T) {
	forward := DefaultConfig()
	forward.TransformationScheme = Forward

	coCurrent := DefaultConfig()
	coCurrent.FlowType = CoCurrent

	colloc := DefaultConfig()
	colloc.TransformationMethod = Collocation
	colloc.TransformationScheme = SchemeUnset
	colloc.CollocationPoints = 3
	colloc.FiniteElements = 4

	cases := map[string]Config{
		"default":     DefaultConfig(),
		"forward":     forward,
		"co_current":  coCurrent,
		"collocation": colloc,
	}
	for name, cfg := range cases {
		cfg := cfg
		t.Run(name, func(t *testing.T) {
			mb := buildReference(t, cfg)
			gas := sourcePoints(mb.rate, mb.gas.matBalCons...)
			solid := sourcePoints(mb.rate, mb.solid.matBalCons...)
			assert.NotEmpty(t, gas)
			assert.Equal(t, gas, solid, "material balance rate points")
		})
	}
}

// The heat duties booked by the gas energy balances must be the exact
// opposites of those booked by the solid, point for point.
func TestHeatDutiesPairAcrossPhases(t *testing.T) {
	mb := buildReference(t, DefaultConfig())
	gas := sourcePoints(mb.gasHeat, mb.gas.energyBalCons)
	solid := sourcePoints(mb.solidHeat, mb.solid.energyBalCons)
	assert.NotEmpty(t, gas)
	assert.Equal(t, gas, solid)
	assert.Equal(t, gas, sourcePoints(mb.rate, mb.solid.energyBalCons),
		"reaction enthalpy is booked at the shared points")
}

// BenchmarkBuildReference measures the full construction pipeline at the
// default element count.
func BenchmarkBuildReference(b *testing.B) {
	cfg := DefaultConfig()
	sc := DefaultScenario()
	for i := 0; i < b.N; i++ {
		mb, err := New(cfg)
		if err != nil {
			b.Fatal(err)
		}
		mb.ApplyScenario(sc)
		mb.ApplyScaling(DefaultScaling())
	}
}
