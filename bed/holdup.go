package bed

import "mbr/eqn"

// buildHoldup adds per-length inventory variables. The model is steady
// state, so holdups are purely algebraic: phase area times density times
// fraction, evaluated at each point.
func (mb *MovingBed) buildHoldup() {
	g, s := mb.gas, mb.solid
	gprops, sprops := mb.gasProps, mb.solidProps
	ag, as := mb.gasArea, mb.solidArea
	withEnergy := mb.cfg.EnergyBalanceType == EnergyBalanceEnthalpy

	g.matHoldup = make([][]*eqn.Var, len(g.comps))
	g.matHoldupCons = make([][]*eqn.Constraint, len(g.comps))
	for c, name := range g.comps {
		c := c
		g.matHoldup[c] = make([]*eqn.Var, g.n())
		g.matHoldupCons[c] = make([]*eqn.Constraint, g.n())
		for i := 0; i < g.n(); i++ {
			hv := g.addVar(mb.sys, g.compVarName("material_holdup", name, i), 1)
			g.matHoldup[c][i] = hv
			t, p, y := g.temp[i], g.press[i], g.frac[c][i]
			g.matHoldupCons[c][i] = g.addCon(mb.sys, g.compVarName("material_holdup_eqn", name, i),
				func() float64 {
					return hv.Value() - ag.Value()*gprops.MolarDensity(t.Value(), p.Value())*y.Value()
				}, hv, ag, t, p, y)
		}
	}
	if withEnergy {
		g.energyHoldup = make([]*eqn.Var, g.n())
		g.enerHoldupCons = make([]*eqn.Constraint, g.n())
		for i := 0; i < g.n(); i++ {
			i := i
			hv := g.addVar(mb.sys, g.varName("energy_holdup", i), 0)
			g.energyHoldup[i] = hv
			t, p := g.temp[i], g.press[i]
			deps := []*eqn.Var{hv, ag, t, p}
			for c := range g.frac {
				deps = append(deps, g.frac[c][i])
			}
			g.enerHoldupCons[i] = g.addCon(mb.sys, g.varName("energy_holdup_eqn", i), func() float64 {
				y := g.composition(i)
				return hv.Value() - ag.Value()*gprops.MolarDensity(t.Value(), p.Value())*gprops.MolarEnthalpy(t.Value(), y)
			}, deps...)
		}
	}

	s.matHoldup = make([][]*eqn.Var, len(s.comps))
	s.matHoldupCons = make([][]*eqn.Constraint, len(s.comps))
	for c, name := range s.comps {
		c := c
		s.matHoldup[c] = make([]*eqn.Var, s.n())
		s.matHoldupCons[c] = make([]*eqn.Constraint, s.n())
		for i := 0; i < s.n(); i++ {
			i := i
			hv := s.addVar(mb.sys, s.compVarName("material_holdup", name, i), 1)
			s.matHoldup[c][i] = hv
			phi, w := s.poros[i], s.frac[c][i]
			deps := []*eqn.Var{hv, as, phi, w}
			for cc := range s.frac {
				if cc != c {
					deps = append(deps, s.frac[cc][i])
				}
			}
			s.matHoldupCons[c][i] = s.addCon(mb.sys, s.compVarName("material_holdup_eqn", name, i),
				func() float64 {
					return hv.Value() - as.Value()*sprops.ParticleDensity(phi.Value(), s.composition(i))*w.Value()
				}, deps...)
		}
	}
	if withEnergy {
		s.energyHoldup = make([]*eqn.Var, s.n())
		s.enerHoldupCons = make([]*eqn.Constraint, s.n())
		for i := 0; i < s.n(); i++ {
			i := i
			hv := s.addVar(mb.sys, s.varName("energy_holdup", i), 0)
			s.energyHoldup[i] = hv
			t, phi := s.temp[i], s.poros[i]
			deps := []*eqn.Var{hv, as, t, phi}
			for c := range s.frac {
				deps = append(deps, s.frac[c][i])
			}
			s.enerHoldupCons[i] = s.addCon(mb.sys, s.varName("energy_holdup_eqn", i), func() float64 {
				w := s.composition(i)
				return hv.Value() - as.Value()*sprops.ParticleDensity(phi.Value(), w)*sprops.MassEnthalpy(t.Value(), w)
			}, deps...)
		}
	}
}
