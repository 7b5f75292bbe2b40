package bed

import (
	"fmt"

	"mbr/eqn"
)

// simplePressureDropCoeff is the lumped drag coefficient (1/s) of the
// simple correlation.
const simplePressureDropCoeff = 25.0

// materialSourceCoefs gives, per flow term row, the factor that multiplies
// rate*area*height in the material balances. Gas rows count moles produced,
// solid rows mass produced per mole of reaction; the solid sign flips
// because its source enters against the axis direction of travel.
func (mb *MovingBed) materialSourceCoefs(p *phase) []float64 {
	rows := p.rowNames(mb.cfg.MaterialBalanceType)
	coefs := make([]float64, len(rows))
	gasSide := p == mb.gas

	perComp := func(c int) float64 {
		if gasSide {
			return mb.reaction.GasStoichiometry(c)
		}
		return -mb.reaction.SolidStoichiometry(c) * mb.solidProps.MolecularWeight(c)
	}
	if mb.cfg.MaterialBalanceType == MaterialBalanceTotal {
		for c := range p.comps {
			coefs[0] += perComp(c)
		}
		return coefs
	}
	for c := range p.comps {
		coefs[c] = perComp(c)
	}
	return coefs
}

// sourceIdx maps a balance point to the axial point whose volumetric terms
// it books. A first order difference at i integrates one element, so the
// source belongs to that element's upper end; both phases then draw their
// per-element sources from the same points and the bed totals cancel
// exactly against each other. Collocation balances keep the source on the
// balance point itself, which both phases already share.
func (mb *MovingBed) sourceIdx(p *phase, i int) int {
	if mb.cfg.TransformationMethod == Collocation {
		return i
	}
	_, hi := p.fdPair(i)
	return hi
}

func (mb *MovingBed) buildBalances() {
	mb.buildMaterialBalances(mb.gas)
	mb.buildMaterialBalances(mb.solid)
	mb.buildSumEquations()
	mb.buildTransportedStates()
	if mb.cfg.EnergyBalanceType == EnergyBalanceEnthalpy {
		mb.buildEnergyBalances()
	} else {
		mb.buildIsothermalProfiles()
	}
	if mb.hasPressureGradient() {
		mb.buildPressureDrop()
	} else {
		mb.buildIsobaricProfile()
	}
}

func (mb *MovingBed) buildMaterialBalances(p *phase) {
	coefs := mb.materialSourceCoefs(p)
	rows := p.rowNames(mb.cfg.MaterialBalanceType)
	a, l := mb.bedArea, mb.bedHeight

	p.matBalCons = make([][]*eqn.Constraint, len(rows))
	for r, rn := range rows {
		p.matBalCons[r] = make([]*eqn.Constraint, p.n())
		coef := coefs[r]
		for i := 0; i < p.n(); i++ {
			if p.fluxDeriv[r][i] == nil {
				continue
			}
			d, rv := p.fluxDeriv[r][i], mb.rate[mb.sourceIdx(p, i)]
			name := fmt.Sprintf("%s_material_balance[%s][%d]", p.name, rn, i)
			p.matBalCons[r][i] = p.addCon(mb.sys, name, func() float64 {
				return d.Value() - coef*rv.Value()*a.Value()*l.Value()
			}, d, rv, a, l)
		}
	}
}

func (mb *MovingBed) buildEnergyBalances() {
	g, s := mb.gas, mb.solid
	a, l := mb.bedArea, mb.bedHeight
	dh := mb.reaction.EnthalpyOfReaction()

	g.energyBalCons = make([]*eqn.Constraint, g.n())
	for i := 0; i < g.n(); i++ {
		if g.enthDeriv[i] == nil {
			continue
		}
		d, qg := g.enthDeriv[i], mb.gasHeat[mb.sourceIdx(g, i)]
		g.energyBalCons[i] = g.addCon(mb.sys, g.varName("energy_balance", i), func() float64 {
			return d.Value() - qg.Value()
		}, d, qg)
	}

	// The reaction lives on the solid, so its enthalpy duty is booked here.
	s.energyBalCons = make([]*eqn.Constraint, s.n())
	for i := 0; i < s.n(); i++ {
		if s.enthDeriv[i] == nil {
			continue
		}
		si := mb.sourceIdx(s, i)
		d, qs, rv := s.enthDeriv[i], mb.solidHeat[si], mb.rate[si]
		s.energyBalCons[i] = s.addCon(mb.sys, s.varName("energy_balance", i), func() float64 {
			return d.Value() + qs.Value() - dh*rv.Value()*a.Value()*l.Value()
		}, d, qs, rv, a, l)
	}
}

// buildSumEquations closes each free composition: fractions sum to one at
// every point the inlet does not pin.
func (mb *MovingBed) buildSumEquations() {
	for _, p := range []*phase{mb.gas, mb.solid} {
		p := p
		p.sumCons = make([]*eqn.Constraint, p.n())
		for i := 0; i < p.n(); i++ {
			if i == p.inletIdx {
				continue
			}
			i := i
			deps := make([]*eqn.Var, len(p.frac))
			for c := range p.frac {
				deps[c] = p.frac[c][i]
			}
			p.sumCons[i] = p.addCon(mb.sys, p.varName("sum_component_eqn", i), func() float64 {
				sum := -1.0
				for c := range p.frac {
					sum += p.frac[c][i].Value()
				}
				return sum
			}, deps...)
		}
	}
}

// buildTransportedStates writes the convection-only identities: particle
// porosity rides along with the solid unchanged, and with total material
// balances the compositions are frozen to their upstream values. The last
// fraction of a frozen composition is already determined by the sum
// equation, so only the first n-1 components carry transport equations.
func (mb *MovingBed) buildTransportedStates() {
	s := mb.solid
	s.porosityCons = make([]*eqn.Constraint, s.n())
	for i := 0; i < s.n(); i++ {
		if i == s.inletIdx {
			continue
		}
		up, ok := s.upstream(i)
		if !ok {
			continue
		}
		phi, phiUp := s.poros[i], s.poros[up]
		s.porosityCons[i] = s.addCon(mb.sys, s.varName("porosity_transport", i), func() float64 {
			return phi.Value() - phiUp.Value()
		}, phi, phiUp)
	}

	if mb.cfg.MaterialBalanceType != MaterialBalanceTotal {
		return
	}
	for _, p := range []*phase{mb.gas, mb.solid} {
		p.frozenCons = make([][]*eqn.Constraint, len(p.comps)-1)
		for c := 0; c < len(p.comps)-1; c++ {
			p.frozenCons[c] = make([]*eqn.Constraint, p.n())
			for i := 0; i < p.n(); i++ {
				if i == p.inletIdx {
					continue
				}
				up, ok := p.upstream(i)
				if !ok {
					continue
				}
				y, yUp := p.frac[c][i], p.frac[c][up]
				name := p.compVarName("frozen_composition", p.comps[c], i)
				p.frozenCons[c][i] = p.addCon(mb.sys, name, func() float64 {
					return y.Value() - yUp.Value()
				}, y, yUp)
			}
		}
	}
}

// buildIsothermalProfiles replaces the energy balances when they are
// configured away: each phase carries its inlet temperature along its own
// flow direction.
func (mb *MovingBed) buildIsothermalProfiles() {
	for _, p := range []*phase{mb.gas, mb.solid} {
		p.isothermalCons = make([]*eqn.Constraint, p.n())
		for i := 0; i < p.n(); i++ {
			if i == p.inletIdx {
				continue
			}
			up, ok := p.upstream(i)
			if !ok {
				continue
			}
			t, tUp := p.temp[i], p.temp[up]
			p.isothermalCons[i] = p.addCon(mb.sys, p.varName("isothermal_eqn", i), func() float64 {
				return t.Value() - tUp.Value()
			}, t, tUp)
		}
	}
}

func (mb *MovingBed) buildIsobaricProfile() {
	g := mb.gas
	g.isobaricCons = make([]*eqn.Constraint, g.n())
	for i := 0; i < g.n(); i++ {
		if i == g.inletIdx {
			continue
		}
		up, ok := g.upstream(i)
		if !ok {
			continue
		}
		p, pUp := g.press[i], g.press[up]
		g.isobaricCons[i] = g.addCon(mb.sys, g.varName("isobaric_eqn", i), func() float64 {
			return p.Value() - pUp.Value()
		}, p, pUp)
	}
}

// buildPressureDrop closes the pressure gradient against the configured
// correlation at every point that carries a gradient variable.
func (mb *MovingBed) buildPressureDrop() {
	g := mb.gas
	gprops := mb.gasProps
	sprops := mb.solidProps
	l := mb.bedHeight
	dpart := sprops.ParticleDiameter()
	eps := sprops.BedVoidage()

	// Ergun equation constants for a packed bed of spheres
	viscous := 150 * (1 - eps) * (1 - eps) / (eps * eps * eps * dpart * dpart)
	kinetic := 1.75 * (1 - eps) / (eps * eps * eps * dpart)

	g.pressCorrCons = make([]*eqn.Constraint, g.n())
	for i := 0; i < g.n(); i++ {
		if g.pressDeriv[i] == nil {
			continue
		}
		i := i
		d := g.pressDeriv[i]
		t, pv := g.temp[i], g.press[i]
		ug, us := mb.velocityGas[i], mb.velocitySolid

		yDeps := make([]*eqn.Var, len(g.comps))
		for c := range g.frac {
			yDeps[c] = g.frac[c][i]
		}
		deps := append([]*eqn.Var{d, t, pv, ug, us, l}, yDeps...)

		var fn func() float64
		switch mb.cfg.PressureDropType {
		case SimpleCorrelation:
			fn = func() float64 {
				y := g.composition(i)
				rho := gprops.MolarDensity(t.Value(), pv.Value()) * gprops.MixtureMolecularWeight(y)
				return d.Value() + l.Value()*simplePressureDropCoeff*rho*ug.Value()
			}
		default:
			fn = func() float64 {
				y := g.composition(i)
				mu := gprops.Viscosity(t.Value(), y)
				rho := gprops.MolarDensity(t.Value(), pv.Value()) * gprops.MixtureMolecularWeight(y)
				vrel := mb.relVel(i)
				return d.Value() + l.Value()*(viscous*mu*vrel+kinetic*rho*vrel*vrel)
			}
		}
		g.pressCorrCons[i] = g.addCon(mb.sys, g.varName("pressure_drop", i), fn, deps...)
	}
}
