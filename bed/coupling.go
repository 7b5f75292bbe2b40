package bed

import (
	"fmt"
	"math"

	"mbr/eqn"
)

// relVel is the gas-solid relative superficial velocity. The phases run
// against each other in counter-current mode, so their speeds add.
func (mb *MovingBed) relVel(i int) float64 {
	if mb.cfg.FlowType == CoCurrent {
		return mb.velocityGas[i].Value() - mb.velocitySolid.Value()
	}
	return mb.velocityGas[i].Value() + mb.velocitySolid.Value()
}

// buildHeatCoupling creates the particle scale film correlations and the
// interphase heat duties: Re and Pr feed a Ranz-Marshall Nusselt number,
// the film coefficient follows, and the duties close against it through
// the bed's heatScale, which the staged initialization ramps from zero to
// one. The correlations are written in multiplied-out form so no residual
// divides by a variable.
func (mb *MovingBed) buildHeatCoupling() {
	g, s := mb.gas, mb.solid
	gprops, sprops := mb.gasProps, mb.solidProps
	dpart := sprops.ParticleDiameter()
	eps := sprops.BedVoidage()
	// interfacial area per unit bed volume for spheres
	av := 6 * (1 - eps) / dpart
	a, l := mb.bedArea, mb.bedHeight

	n := g.n()
	mb.reynolds = make([]*eqn.Var, n)
	mb.prandtl = make([]*eqn.Var, n)
	mb.nusselt = make([]*eqn.Var, n)
	mb.htc = make([]*eqn.Var, n)
	mb.gasHeat = make([]*eqn.Var, n)
	mb.solidHeat = make([]*eqn.Var, n)
	mb.reCons = make([]*eqn.Constraint, n)
	mb.prCons = make([]*eqn.Constraint, n)
	mb.nuCons = make([]*eqn.Constraint, n)
	mb.htcCons = make([]*eqn.Constraint, n)
	mb.qGasCons = make([]*eqn.Constraint, n)
	mb.qSolidCons = make([]*eqn.Constraint, n)

	for i := 0; i < n; i++ {
		i := i
		re := mb.sys.NewVar(fmt.Sprintf("reynolds_particle[%d]", i), 100)
		pr := mb.sys.NewVar(fmt.Sprintf("prandtl[%d]", i), 0.7)
		nu := mb.sys.NewVar(fmt.Sprintf("nusselt_particle[%d]", i), 10)
		h := mb.sys.NewVar(fmt.Sprintf("gas_solid_htc[%d]", i), 50)
		qg := mb.sys.NewVar(fmt.Sprintf("gas_heat[%d]", i), 0)
		qs := mb.sys.NewVar(fmt.Sprintf("solid_heat[%d]", i), 0)
		mb.reynolds[i], mb.prandtl[i], mb.nusselt[i] = re, pr, nu
		mb.htc[i], mb.gasHeat[i], mb.solidHeat[i] = h, qg, qs
		mb.couplingVars = append(mb.couplingVars, re, pr, nu, h, qg, qs)

		tg, p := g.temp[i], g.press[i]
		ts := s.temp[i]
		ug, us := mb.velocityGas[i], mb.velocitySolid

		yDeps := make([]*eqn.Var, len(g.comps))
		for c := range g.frac {
			yDeps[c] = g.frac[c][i]
		}

		mb.reCons[i] = mb.sys.AddConstraint(fmt.Sprintf("reynolds_eqn[%d]", i), func() float64 {
			y := g.composition(i)
			rho := gprops.MolarDensity(tg.Value(), p.Value()) * gprops.MixtureMolecularWeight(y)
			return re.Value()*gprops.Viscosity(tg.Value(), y) - rho*mb.relVel(i)*dpart
		}, append([]*eqn.Var{re, tg, p, ug, us}, yDeps...)...)

		mb.prCons[i] = mb.sys.AddConstraint(fmt.Sprintf("prandtl_eqn[%d]", i), func() float64 {
			y := g.composition(i)
			return pr.Value()*gprops.ThermalConductivity(tg.Value(), y) -
				gprops.MassHeatCapacity(tg.Value(), y)*gprops.Viscosity(tg.Value(), y)
		}, append([]*eqn.Var{pr, tg}, yDeps...)...)

		mb.nuCons[i] = mb.sys.AddConstraint(fmt.Sprintf("nusselt_eqn[%d]", i), func() float64 {
			// magnitudes only; Re and Pr are positive at any solution
			return nu.Value() - (2.0 + 1.1*math.Pow(math.Abs(re.Value()), 0.6)*math.Cbrt(pr.Value()))
		}, nu, re, pr)

		mb.htcCons[i] = mb.sys.AddConstraint(fmt.Sprintf("gas_solid_htc_eqn[%d]", i), func() float64 {
			return h.Value()*dpart - nu.Value()*gprops.ThermalConductivity(tg.Value(), g.composition(i))
		}, append([]*eqn.Var{h, nu, tg}, yDeps...)...)

		mb.qGasCons[i] = mb.sys.AddConstraint(fmt.Sprintf("gas_heat_transfer[%d]", i), func() float64 {
			return qg.Value() - mb.heatScale*h.Value()*av*(ts.Value()-tg.Value())*a.Value()*l.Value()
		}, qg, h, ts, tg, a, l)

		mb.qSolidCons[i] = mb.sys.AddConstraint(fmt.Sprintf("solid_heat_transfer[%d]", i), func() float64 {
			return qs.Value() + qg.Value()
		}, qs, qg)
	}
	mb.couplingCons = append(mb.couplingCons, mb.reCons...)
	mb.couplingCons = append(mb.couplingCons, mb.prCons...)
	mb.couplingCons = append(mb.couplingCons, mb.nuCons...)
	mb.couplingCons = append(mb.couplingCons, mb.htcCons...)
	mb.couplingCons = append(mb.couplingCons, mb.qGasCons...)
	mb.couplingCons = append(mb.couplingCons, mb.qSolidCons...)
}

// buildReaction creates the volumetric rate variables. Each rate equation
// multiplies the package rate by the bed's rateScale, which the staged
// initialization ramps from zero to one.
func (mb *MovingBed) buildReaction() {
	g, s := mb.gas, mb.solid
	n := g.n()
	mb.rate = make([]*eqn.Var, n)
	mb.rateCons = make([]*eqn.Constraint, n)
	for i := 0; i < n; i++ {
		i := i
		rv := mb.sys.NewVar(fmt.Sprintf("reaction_rate[%d]", i), 0)
		mb.rate[i] = rv
		mb.rateVars = append(mb.rateVars, rv)

		tg, p, ts := g.temp[i], g.press[i], s.temp[i]
		deps := []*eqn.Var{rv, tg, ts, p}
		for c := range g.frac {
			deps = append(deps, g.frac[c][i])
		}
		for c := range s.frac {
			deps = append(deps, s.frac[c][i])
		}
		mb.rateCons[i] = mb.sys.AddConstraint(fmt.Sprintf("reaction_rate_eqn[%d]", i), func() float64 {
			return rv.Value() - mb.rateScale*mb.reaction.Rate(
				tg.Value(), ts.Value(), p.Value(), g.composition(i), s.composition(i))
		}, deps...)
	}
}
