package bed

import (
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"

	"mbr/eqn"
	"mbr/grid"
	"mbr/solver"
)

// Stage names the milestones of the initialization sequence, in order.
type Stage int

const (
	Unsolved Stage = iota
	GeometryFixed
	PhasesDecoupled
	ReactionsEnabled
	FullyCoupled
)

func (s Stage) String() string {
	switch s {
	case Unsolved:
		return "unsolved"
	case GeometryFixed:
		return "geometry_fixed"
	case PhasesDecoupled:
		return "phases_decoupled"
	case ReactionsEnabled:
		return "reactions_enabled"
	case FullyCoupled:
		return "fully_coupled"
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// GasStateArgs provide the uniform initial gas profile. Zero fields fall
// back to the fixed inlet state.
type GasStateArgs struct {
	FlowMol     float64
	Temperature float64
	Pressure    float64
}

// SolidStateArgs provide the uniform initial solid profile.
type SolidStateArgs struct {
	FlowMass    float64
	Temperature float64
}

// InitializeOptions tune the staged initialization.
type InitializeOptions struct {
	Gas   GasStateArgs
	Solid SolidStateArgs

	// Tolerance applies to the intermediate stage solves. Defaults to 1e-6
	// for finite differences and 1e-5 for collocation.
	Tolerance float64
	// FinalTolerance applies to the fully coupled polish. Default 1e-8.
	FinalTolerance float64
	// MaxIterations bounds each stage solve. Default 80.
	MaxIterations int
	// WeakReaction is the rate multiplier used while the reaction is first
	// enabled. Default 0.01.
	WeakReaction float64
	// Hub, when set, streams per-iteration progress.
	Hub *solver.Hub
}

func (mb *MovingBed) initDefaults(o InitializeOptions) InitializeOptions {
	if o.Gas.FlowMol == 0 {
		o.Gas.FlowMol = mb.gasInlet.FlowMol.Value()
	}
	if o.Gas.Temperature == 0 {
		o.Gas.Temperature = mb.gasInlet.Temperature.Value()
	}
	if o.Gas.Pressure == 0 {
		o.Gas.Pressure = mb.gasInlet.Pressure.Value()
	}
	if o.Solid.FlowMass == 0 {
		o.Solid.FlowMass = mb.solidInlet.FlowMass.Value()
	}
	if o.Solid.Temperature == 0 {
		o.Solid.Temperature = mb.solidInlet.Temperature.Value()
	}
	if o.Tolerance <= 0 {
		o.Tolerance = 1e-6
		if mb.cfg.TransformationMethod == Collocation {
			o.Tolerance = 1e-5
		}
	}
	if o.FinalTolerance <= 0 {
		o.FinalTolerance = 1e-8
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = 80
	}
	if o.WeakReaction <= 0 {
		o.WeakReaction = 0.01
	}
	return o
}

// Initialize walks the model from uniform profiles to a converged fully
// coupled solution in stages: verify the boundary-fixed structure, solve
// each phase with the interphase coupling frozen, ramp the heat duties and
// a damped reaction back in by continuation, then ramp the rate to full
// strength and polish. On failure the model is left at
// the last attempted state so it can be inspected; calling Initialize again
// restarts the sequence from scratch.
func (mb *MovingBed) Initialize(opts InitializeOptions) error {
	opts = mb.initDefaults(opts)
	mb.resetStaging()
	mb.stage = Unsolved
	log.WithFields(log.Fields{
		"tolerance": opts.Tolerance,
		"final":     opts.FinalTolerance,
	}).Info("moving bed initialization started")

	if err := mb.checkFixedBoundaries(); err != nil {
		return mb.initFailed(&InitializationError{Stage: GeometryFixed, Err: err})
	}
	if free, act := len(mb.sys.FreeVars()), len(mb.sys.ActiveConstraints()); free != act {
		return mb.initFailed(&InitializationError{Stage: GeometryFixed,
			Err: &DegreesOfFreedomError{Free: free, Constraints: act}})
	}
	mb.stage = GeometryFixed

	mb.applyStateGuesses(opts)

	// Decouple: freeze the interphase terms at zero and solve each phase
	// against its own inlet.
	restoreSolid := mb.stageFix(mb.solid.allVars)
	restoreCoupling := mb.stageFix(mb.couplingVars)
	restoreRate := mb.stageFix(mb.rateVars)
	setActive(false, mb.solid.allCons, mb.couplingCons, mb.rateCons)

	if err := mb.solveStage("init_gas_phase", PhasesDecoupled, opts.Tolerance, opts); err != nil {
		return mb.initFailed(err)
	}

	restoreSolid()
	setActive(true, mb.solid.allCons)
	restoreGas := mb.stageFix(mb.gas.allVars)
	setActive(false, mb.gas.allCons)

	if err := mb.solveStage("init_solid_phase", PhasesDecoupled, opts.Tolerance, opts); err != nil {
		return mb.initFailed(err)
	}

	restoreGas()
	setActive(true, mb.gas.allCons)
	mb.stage = PhasesDecoupled

	// Couple the phases back in by continuation. The seeded heat duties
	// dwarf the enthalpy flows of the decoupled profiles, so the duties and
	// a damped reaction ramp up together, each step solved from the last
	// converged profile.
	restoreCoupling()
	restoreRate()
	setActive(true, mb.couplingCons, mb.rateCons)
	mb.heatScale, mb.rateScale = 0, 0
	err := mb.rampTo("init_weak_reaction", ReactionsEnabled, opts.Tolerance, opts,
		func(t float64) {
			mb.heatScale = t
			mb.rateScale = t * opts.WeakReaction
		})
	if err != nil {
		return mb.initFailed(err)
	}
	mb.stage = ReactionsEnabled

	// Bring the damped reaction to full strength along a geometric ramp,
	// then polish at the final tolerance.
	err = mb.rampTo("init_full_reaction", FullyCoupled, opts.Tolerance, opts,
		func(t float64) {
			mb.rateScale = math.Pow(opts.WeakReaction, 1-t)
		})
	if err != nil {
		return mb.initFailed(err)
	}
	if err := mb.solveStage("init_fully_coupled", FullyCoupled, opts.FinalTolerance, opts); err != nil {
		return mb.initFailed(err)
	}
	mb.stage = FullyCoupled
	log.Info("moving bed initialization complete")
	return nil
}

// rampTo drives a homotopy parameter from 0 to 1 in adaptive steps. Each
// step re-seeds the rate and coupling terms, then solves at the stage
// tolerance; a step that fails to converge is rolled back to the last
// converged profile and retried at half the distance. The ramp gives up
// once steps shrink below 1/1024.
func (mb *MovingBed) rampTo(label string, attempting Stage, tol float64,
	opts InitializeOptions, set func(t float64)) error {

	const minStep = 1.0 / 1024
	snap := mb.snapshotValues()
	t, dt := 0.0, 1.0/16
	for t < 1 {
		next := math.Min(1, t+dt)
		set(next)
		mb.seedRates()
		mb.seedCoupling()
		err := mb.solveStage(label, attempting, tol, opts)
		if err == nil {
			t = next
			snap = mb.snapshotValues()
			dt *= 2
			continue
		}
		if dt <= minStep {
			return err
		}
		mb.restoreValues(snap)
		dt /= 2
	}
	return nil
}

func (mb *MovingBed) snapshotValues() []float64 {
	vars := mb.sys.Vars()
	snap := make([]float64, len(vars))
	for i, v := range vars {
		snap[i] = v.Value()
	}
	return snap
}

func (mb *MovingBed) restoreValues(snap []float64) {
	for i, v := range mb.sys.Vars() {
		v.Set(snap[i])
	}
}

func (mb *MovingBed) initFailed(err error) error {
	log.WithField("error", err).Warn("moving bed initialization failed")
	return err
}

func (mb *MovingBed) checkFixedBoundaries() error {
	if !mb.bedDiameter.Fixed() || !mb.bedHeight.Fixed() {
		return &ConfigurationError{Field: "geometry",
			Reason: "bed_diameter and bed_height must be fixed before initialization"}
	}
	if !mb.gasInlet.fixed() {
		return &ConfigurationError{Field: "gas_inlet",
			Reason: "all inlet variables must be fixed before initialization"}
	}
	if !mb.solidInlet.fixed() {
		return &ConfigurationError{Field: "solid_inlet",
			Reason: "all inlet variables must be fixed before initialization"}
	}
	return nil
}

func (mb *MovingBed) solveStage(label string, attempting Stage, tol float64, opts InitializeOptions) error {
	res, err := solver.Solve(mb.sys, solver.Options{
		Tolerance:     tol,
		MaxIterations: opts.MaxIterations,
		Label:         label,
		Hub:           opts.Hub,
	})
	if err != nil {
		return &InitializationError{Stage: attempting, Err: err}
	}
	if !res.IsOptimal() {
		return &InitializationError{Stage: attempting, Termination: res.Termination}
	}
	log.WithFields(log.Fields{
		"stage":      label,
		"iterations": res.Iterations,
		"residual":   res.ResidualNorm,
	}).Debug("initialization stage converged")
	return nil
}

// stageFix fixes every currently free variable in the group and returns a
// function that frees exactly those again. Variables the caller fixed, the
// inlet ports above all, are left alone.
func (mb *MovingBed) stageFix(vars []*eqn.Var) func() {
	start := len(mb.stagedFixed)
	for _, v := range vars {
		if !v.Fixed() {
			v.Fix()
			mb.stagedFixed = append(mb.stagedFixed, v)
		}
	}
	batch := mb.stagedFixed[start:len(mb.stagedFixed):len(mb.stagedFixed)]
	return func() {
		for _, v := range batch {
			v.Free()
		}
	}
}

// resetStaging undoes whatever a previous, possibly failed, initialization
// left behind: staged fixes are released, every equation is active again
// and the rate runs at full strength.
func (mb *MovingBed) resetStaging() {
	for _, v := range mb.stagedFixed {
		v.Free()
	}
	mb.stagedFixed = mb.stagedFixed[:0]
	for _, c := range mb.sys.Constraints() {
		c.Activate()
	}
	mb.rateScale = 1
	mb.heatScale = 1
}

func setActive(active bool, groups ...[]*eqn.Constraint) {
	for _, grp := range groups {
		for _, c := range grp {
			if c == nil {
				continue
			}
			if active {
				c.Activate()
			} else {
				c.Deactivate()
			}
		}
	}
}

// applyStateGuesses paints uniform profiles from the state arguments onto
// every free state variable, then makes all derived quantities consistent
// with them.
func (mb *MovingBed) applyStateGuesses(opts InitializeOptions) {
	g, s := mb.gas, mb.solid
	set := func(v *eqn.Var, x float64) {
		if !v.Fixed() {
			v.Set(x)
		}
	}
	for i := 0; i < g.n(); i++ {
		set(g.flow[i], opts.Gas.FlowMol)
		set(g.temp[i], opts.Gas.Temperature)
		set(g.press[i], opts.Gas.Pressure)
		for c := range g.frac {
			set(g.frac[c][i], g.frac[c][g.inletIdx].Value())
		}
	}
	for i := 0; i < s.n(); i++ {
		set(s.flow[i], opts.Solid.FlowMass)
		set(s.temp[i], opts.Solid.Temperature)
		set(s.poros[i], s.poros[s.inletIdx].Value())
		for c := range s.frac {
			set(s.frac[c][i], s.frac[c][s.inletIdx].Value())
		}
	}
	mb.seedDerived()
	mb.seedCoupling()

	// The decoupled stages fix the interphase terms at their current
	// values, which must be zero so each phase solves against its own
	// inlet alone. The correlations are re-seeded when coupling returns.
	for i := range mb.rate {
		mb.rate[i].Set(0)
	}
	if mb.gasHeat != nil {
		for i := range mb.gasHeat {
			mb.gasHeat[i].Set(0)
			mb.solidHeat[i].Set(0)
		}
	}
}

// seedDerived recomputes every defined quantity from the current state
// profiles: flow terms, enthalpy flows, velocities, derivatives and
// holdups. Derivatives are seeded through the same stencils the
// discretization equations use, so those equations start exactly
// satisfied.
func (mb *MovingBed) seedDerived() {
	for _, p := range []*phase{mb.gas, mb.solid} {
		total := mb.cfg.MaterialBalanceType == MaterialBalanceTotal
		for r := range p.flux {
			for i := 0; i < p.n(); i++ {
				if total {
					p.flux[r][i].Set(p.flow[i].Value())
				} else {
					p.flux[r][i].Set(p.flow[i].Value() * p.frac[r][i].Value())
				}
			}
			mb.seedSeriesDerivs(p, p.flux[r], p.fluxDeriv[r])
		}
		if p.enthFlux != nil {
			for i := 0; i < p.n(); i++ {
				if p == mb.gas {
					p.enthFlux[i].Set(p.flow[i].Value() *
						mb.gasProps.MolarEnthalpy(p.temp[i].Value(), p.composition(i)))
				} else {
					p.enthFlux[i].Set(p.flow[i].Value() *
						mb.solidProps.MassEnthalpy(p.temp[i].Value(), p.composition(i)))
				}
			}
			mb.seedSeriesDerivs(p, p.enthFlux, p.enthDeriv)
		}
	}

	g := mb.gas
	area := mb.bedArea.Value()
	for i := 0; i < g.n(); i++ {
		rho := mb.gasProps.MolarDensity(g.temp[i].Value(), g.press[i].Value())
		mb.velocityGas[i].Set(g.flow[i].Value() / (area * rho))
	}
	s := mb.solid
	rhoSkel := mb.solidProps.SkeletalDensity(s.composition(s.inletIdx))
	mb.velocitySolid.Set(s.flow[s.inletIdx].Value() / (area * rhoSkel))

	if g.pressDeriv != nil {
		mb.seedSeriesDerivs(g, g.press, g.pressDeriv)
	}
	mb.seedHoldups()
}

func (mb *MovingBed) seedSeriesDerivs(p *phase, series, derivs []*eqn.Var) {
	if derivs == nil {
		return
	}
	if mb.cfg.TransformationMethod == Collocation {
		ncp := mb.cfg.CollocationPoints
		dmat, err := grid.RadauDerivativeMatrix(ncp)
		if err != nil {
			panic(err)
		}
		for i := 1; i < p.n(); i++ {
			if derivs[i] == nil {
				continue
			}
			e := (i - 1) / ncp
			k := i - e*ncp
			j0 := e * ncp
			h := p.domain.At(j0+ncp) - p.domain.At(j0)
			sum := 0.0
			for j := 0; j <= ncp; j++ {
				sum += dmat[k-1][j] * series[j0+j].Value()
			}
			derivs[i].Set(sum / h)
		}
		return
	}
	for i := 0; i < p.n(); i++ {
		if derivs[i] == nil {
			continue
		}
		lo, hi := p.fdPair(i)
		h := p.domain.At(hi) - p.domain.At(lo)
		derivs[i].Set((series[hi].Value() - series[lo].Value()) / h)
	}
}

// seedCoupling evaluates the film correlations at the current state so the
// correlation equations start satisfied.
func (mb *MovingBed) seedCoupling() {
	if mb.reynolds == nil {
		return
	}
	g, s := mb.gas, mb.solid
	gprops := mb.gasProps
	dpart := mb.solidProps.ParticleDiameter()
	eps := mb.solidProps.BedVoidage()
	av := 6 * (1 - eps) / dpart
	al := mb.bedArea.Value() * mb.bedHeight.Value()

	for i := 0; i < g.n(); i++ {
		y := g.composition(i)
		tg := g.temp[i].Value()
		mu := gprops.Viscosity(tg, y)
		k := gprops.ThermalConductivity(tg, y)
		rho := gprops.MolarDensity(tg, g.press[i].Value()) * gprops.MixtureMolecularWeight(y)

		re := rho * mb.relVel(i) * dpart / mu
		pr := gprops.MassHeatCapacity(tg, y) * mu / k
		nu := 2.0 + 1.1*math.Pow(math.Abs(re), 0.6)*math.Cbrt(pr)
		h := nu * k / dpart

		mb.reynolds[i].Set(re)
		mb.prandtl[i].Set(pr)
		mb.nusselt[i].Set(nu)
		mb.htc[i].Set(h)
		q := mb.heatScale * h * av * (s.temp[i].Value() - tg) * al
		mb.gasHeat[i].Set(q)
		mb.solidHeat[i].Set(-q)
	}
}

func (mb *MovingBed) seedHoldups() {
	g, s := mb.gas, mb.solid
	if g.matHoldup != nil {
		ag := mb.gasArea.Value()
		for c := range g.matHoldup {
			for i := range g.matHoldup[c] {
				rho := mb.gasProps.MolarDensity(g.temp[i].Value(), g.press[i].Value())
				g.matHoldup[c][i].Set(ag * rho * g.frac[c][i].Value())
			}
		}
		if g.energyHoldup != nil {
			for i := range g.energyHoldup {
				y := g.composition(i)
				rho := mb.gasProps.MolarDensity(g.temp[i].Value(), g.press[i].Value())
				g.energyHoldup[i].Set(ag * rho * mb.gasProps.MolarEnthalpy(g.temp[i].Value(), y))
			}
		}
	}
	if s.matHoldup != nil {
		as := mb.solidArea.Value()
		for c := range s.matHoldup {
			for i := range s.matHoldup[c] {
				w := s.composition(i)
				rho := mb.solidProps.ParticleDensity(s.poros[i].Value(), w)
				s.matHoldup[c][i].Set(as * rho * s.frac[c][i].Value())
			}
		}
		if s.energyHoldup != nil {
			for i := range s.energyHoldup {
				w := s.composition(i)
				rho := mb.solidProps.ParticleDensity(s.poros[i].Value(), w)
				s.energyHoldup[i].Set(as * rho * mb.solidProps.MassEnthalpy(s.temp[i].Value(), w))
			}
		}
	}
}

// seedRates evaluates the damped kinetics at the current state so the rate
// equations start satisfied.
func (mb *MovingBed) seedRates() {
	g, s := mb.gas, mb.solid
	for i := range mb.rate {
		mb.rate[i].Set(mb.rateScale * mb.reaction.Rate(
			g.temp[i].Value(), s.temp[i].Value(), g.press[i].Value(),
			g.composition(i), s.composition(i)))
	}
}
