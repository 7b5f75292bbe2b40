// Package bed builds the equation system of a one dimensional moving bed
// reactor with counter-current gas and solid flow, and initializes it
// through a staged homotopy so that a Newton solver can converge the fully
// coupled model.
//
// The reactor is modeled on a shared normalized axis: gas enters at x = 0
// and flows up, solid enters at x = 1 and flows down. Each phase owns its
// own view of the axis; both views are built from the same configuration
// and hold identical point sets.
package bed

import (
	"math"

	log "github.com/sirupsen/logrus"

	"mbr/eqn"
	"mbr/grid"
	"mbr/model"
	"mbr/solver"
	"mbr/thermo"
)

// MovingBed is one reactor instance. Instances are independent and not
// safe for concurrent use; see RunSweep for running many cases in
// parallel.
type MovingBed struct {
	cfg Config
	sys *eqn.System

	gasProps   thermo.GasProperties
	solidProps thermo.SolidProperties
	reaction   thermo.Reaction

	gas   *phase
	solid *phase

	bedDiameter *eqn.Var
	bedHeight   *eqn.Var
	bedArea     *eqn.Var
	gasArea     *eqn.Var
	solidArea   *eqn.Var

	velocityGas   []*eqn.Var
	velocitySolid *eqn.Var

	reynolds  []*eqn.Var
	prandtl   []*eqn.Var
	nusselt   []*eqn.Var
	htc       []*eqn.Var
	gasHeat   []*eqn.Var
	solidHeat []*eqn.Var
	rate      []*eqn.Var

	geomCons []*eqn.Constraint

	couplingVars []*eqn.Var
	couplingCons []*eqn.Constraint
	reCons       []*eqn.Constraint
	prCons       []*eqn.Constraint
	nuCons       []*eqn.Constraint
	htcCons      []*eqn.Constraint
	qGasCons     []*eqn.Constraint
	qSolidCons   []*eqn.Constraint

	rateVars []*eqn.Var
	rateCons []*eqn.Constraint

	// rateScale and heatScale damp the reaction rate and the interphase
	// heat duties during staged initialization. Both are 1 for the nominal
	// model; the rate and duty equations read them through their closures.
	rateScale float64
	heatScale float64

	stage       Stage
	stagedFixed []*eqn.Var

	gasInlet    GasPort
	gasOutlet   GasPort
	solidInlet  SolidPort
	solidOutlet SolidPort
}

// New builds the full equation system for the given configuration. The
// configuration is validated eagerly; contradictory options come back as a
// ConfigurationError before any variable is created.
func New(cfg Config) (*MovingBed, error) {
	cfg = cfg.normalized()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	gasDom, err := buildDomain(cfg)
	if err != nil {
		return nil, &ConfigurationError{Field: "length_domain_set", Reason: err.Error()}
	}
	solidDom, err := buildDomain(cfg)
	if err != nil {
		return nil, &ConfigurationError{Field: "length_domain_set", Reason: err.Error()}
	}
	if !gasDom.SamePoints(solidDom) {
		panic("bed: phase domains diverged from one configuration")
	}

	gasScheme, solidScheme := SchemeUnset, SchemeUnset
	if cfg.TransformationMethod == FiniteDifference {
		gasScheme, solidScheme = cfg.resolveSchemes()
	}

	mb := &MovingBed{
		cfg:        cfg,
		sys:        eqn.NewSystem(),
		gasProps:   cfg.GasPhase.Properties,
		solidProps: cfg.SolidPhase.Properties,
		reaction:   cfg.SolidPhase.Reaction,
		rateScale:  1.0,
		heatScale:  1.0,
	}
	mb.gas = newPhase("gas", gasDom, mb.gasProps.Components(), true, gasScheme)
	mb.solid = newPhase("solid", solidDom, mb.solidProps.Components(),
		cfg.FlowType == CoCurrent, solidScheme)

	mb.buildGeometry()
	mb.buildStateVars()
	mb.buildFlowTerms()
	mb.buildDiscretization()
	if cfg.EnergyBalanceType == EnergyBalanceEnthalpy {
		mb.buildHeatCoupling()
	}
	mb.buildReaction()
	mb.buildBalances()
	if cfg.HasHoldup {
		mb.buildHoldup()
	}
	mb.buildPorts()

	log.WithFields(log.Fields{
		"points":      gasDom.Len(),
		"variables":   len(mb.sys.Vars()),
		"constraints": len(mb.sys.Constraints()),
		"method":      cfg.TransformationMethod,
		"flow":        cfg.FlowType,
	}).Info("moving bed built")
	return mb, nil
}

func buildDomain(cfg Config) (*grid.Domain, error) {
	if cfg.TransformationMethod == Collocation {
		if len(cfg.LengthDomainSet) > 0 {
			return grid.CollocateElements(cfg.LengthDomainSet, cfg.CollocationPoints)
		}
		return grid.WithCollocation(cfg.FiniteElements, cfg.CollocationPoints)
	}
	if len(cfg.LengthDomainSet) > 0 {
		return grid.FromPoints(cfg.LengthDomainSet)
	}
	return grid.Uniform(cfg.FiniteElements)
}

func (mb *MovingBed) buildGeometry() {
	sys := mb.sys
	mb.bedDiameter = sys.NewVar("bed_diameter", 1)
	mb.bedHeight = sys.NewVar("bed_height", 1)
	mb.bedArea = sys.NewVar("bed_area", math.Pi/4)

	eps := mb.solidProps.BedVoidage()
	mb.gasArea = sys.NewVar("gas_phase_area", eps*math.Pi/4)
	mb.solidArea = sys.NewVar("solid_phase_area", (1-eps)*math.Pi/4)

	d, a, ag, as := mb.bedDiameter, mb.bedArea, mb.gasArea, mb.solidArea
	mb.geomCons = append(mb.geomCons,
		sys.AddConstraint("bed_area_eqn", func() float64 {
			return a.Value() - math.Pi/4*d.Value()*d.Value()
		}, a, d),
		sys.AddConstraint("gas_phase_area_eqn", func() float64 {
			return ag.Value() - eps*a.Value()
		}, ag, a),
		sys.AddConstraint("solid_phase_area_eqn", func() float64 {
			return as.Value() - (1-eps)*a.Value()
		}, as, a),
	)
}

func (mb *MovingBed) buildStateVars() {
	g, s := mb.gas, mb.solid
	for i := 0; i < g.n(); i++ {
		g.flow = append(g.flow, g.addVar(mb.sys, g.varName("flow_mol", i), 1))
		g.temp = append(g.temp, g.addVar(mb.sys, g.varName("temperature", i), 298.15))
		g.press = append(g.press, g.addVar(mb.sys, g.varName("pressure", i), 101325))
	}
	g.frac = make([][]*eqn.Var, len(g.comps))
	for c, name := range g.comps {
		for i := 0; i < g.n(); i++ {
			g.frac[c] = append(g.frac[c],
				g.addVar(mb.sys, g.compVarName("mole_frac", name, i), 1/float64(len(g.comps))))
		}
	}

	for i := 0; i < s.n(); i++ {
		s.flow = append(s.flow, s.addVar(mb.sys, s.varName("flow_mass", i), 1))
		s.temp = append(s.temp, s.addVar(mb.sys, s.varName("temperature", i), 298.15))
		s.poros = append(s.poros, s.addVar(mb.sys, s.varName("particle_porosity", i), 0.3))
	}
	s.frac = make([][]*eqn.Var, len(s.comps))
	for c, name := range s.comps {
		for i := 0; i < s.n(); i++ {
			s.frac[c] = append(s.frac[c],
				s.addVar(mb.sys, s.compVarName("mass_frac", name, i), 1/float64(len(s.comps))))
		}
	}
}

// System exposes the underlying equation system for solving and
// inspection.
func (mb *MovingBed) System() *eqn.System { return mb.sys }

// Config returns the normalized configuration the bed was built from.
func (mb *MovingBed) Config() Config { return mb.cfg }

// Stage reports how far initialization has progressed.
func (mb *MovingBed) Stage() Stage { return mb.stage }

// Points returns the shared axial point set.
func (mb *MovingBed) Points() []float64 { return mb.gas.domain.Points() }

// DegreesOfFreedom counts free variables minus active equations.
func (mb *MovingBed) DegreesOfFreedom() int { return mb.sys.DegreesOfFreedom() }

// Summary reports the structural size of the model.
func (mb *MovingBed) Summary() model.BuildSummary {
	return model.BuildSummary{
		Variables:        len(mb.sys.Vars()),
		Constraints:      len(mb.sys.Constraints()),
		DegreesOfFreedom: mb.sys.DegreesOfFreedom(),
	}
}

// SetGeometry fixes the bed diameter and height and seeds the dependent
// area variables with consistent values.
func (mb *MovingBed) SetGeometry(diameter, height float64) {
	mb.bedDiameter.FixAt(diameter)
	mb.bedHeight.FixAt(height)

	area := math.Pi / 4 * diameter * diameter
	eps := mb.solidProps.BedVoidage()
	mb.bedArea.Set(area)
	mb.gasArea.Set(eps * area)
	mb.solidArea.Set((1 - eps) * area)
}

// Solve runs the solver on the full system as currently configured.
func (mb *MovingBed) Solve(opts solver.Options) (solver.Result, error) {
	if opts.Label == "" {
		opts.Label = "moving_bed"
	}
	res, err := solver.Solve(mb.sys, opts)
	if err != nil {
		return res, err
	}
	log.WithFields(log.Fields{
		"iterations": res.Iterations,
		"residual":   res.ResidualNorm,
		"status":     res.Termination,
	}).Info("moving bed solve finished")
	return res, nil
}
