package bed

import (
	"fmt"

	"mbr/eqn"
)

// buildFlowTerms creates the quantities the balances are written on:
// material flow terms (component or total), enthalpy flows, and the
// superficial velocities that tie flows to the bed cross section.
func (mb *MovingBed) buildFlowTerms() {
	mb.buildGasFlowTerms()
	mb.buildSolidFlowTerms()
	mb.buildVelocities()
}

func (mb *MovingBed) buildGasFlowTerms() {
	g := mb.gas
	props := mb.gasProps
	rows := g.rowNames(mb.cfg.MaterialBalanceType)

	g.flux = make([][]*eqn.Var, len(rows))
	g.fluxDefCons = make([][]*eqn.Constraint, len(rows))
	for r, rn := range rows {
		g.flux[r] = make([]*eqn.Var, g.n())
		g.fluxDefCons[r] = make([]*eqn.Constraint, g.n())
		for i := 0; i < g.n(); i++ {
			nv := g.addVar(mb.sys, g.compVarName("flow_term", rn, i), 1.0/float64(len(rows)))
			g.flux[r][i] = nv
			f := g.flow[i]
			if mb.cfg.MaterialBalanceType == MaterialBalanceTotal {
				g.fluxDefCons[r][i] = g.addCon(mb.sys, g.compVarName("flow_term_eqn", rn, i),
					func() float64 { return nv.Value() - f.Value() }, nv, f)
				continue
			}
			y := g.frac[r][i]
			g.fluxDefCons[r][i] = g.addCon(mb.sys, g.compVarName("flow_term_eqn", rn, i),
				func() float64 { return nv.Value() - f.Value()*y.Value() }, nv, f, y)
		}
	}

	if mb.cfg.EnergyBalanceType != EnergyBalanceEnthalpy {
		return
	}
	g.enthFlux = make([]*eqn.Var, g.n())
	g.enthFluxCons = make([]*eqn.Constraint, g.n())
	for i := 0; i < g.n(); i++ {
		i := i
		hv := g.addVar(mb.sys, g.varName("enthalpy_flow", i), 0)
		g.enthFlux[i] = hv
		f, t := g.flow[i], g.temp[i]
		deps := []*eqn.Var{hv, f, t}
		for c := range g.frac {
			deps = append(deps, g.frac[c][i])
		}
		g.enthFluxCons[i] = g.addCon(mb.sys, g.varName("enthalpy_flow_eqn", i), func() float64 {
			return hv.Value() - f.Value()*props.MolarEnthalpy(t.Value(), g.composition(i))
		}, deps...)
	}
}

func (mb *MovingBed) buildSolidFlowTerms() {
	s := mb.solid
	props := mb.solidProps
	rows := s.rowNames(mb.cfg.MaterialBalanceType)

	s.flux = make([][]*eqn.Var, len(rows))
	s.fluxDefCons = make([][]*eqn.Constraint, len(rows))
	for r, rn := range rows {
		s.flux[r] = make([]*eqn.Var, s.n())
		s.fluxDefCons[r] = make([]*eqn.Constraint, s.n())
		for i := 0; i < s.n(); i++ {
			mv := s.addVar(mb.sys, s.compVarName("flow_term", rn, i), 1.0/float64(len(rows)))
			s.flux[r][i] = mv
			f := s.flow[i]
			if mb.cfg.MaterialBalanceType == MaterialBalanceTotal {
				s.fluxDefCons[r][i] = s.addCon(mb.sys, s.compVarName("flow_term_eqn", rn, i),
					func() float64 { return mv.Value() - f.Value() }, mv, f)
				continue
			}
			w := s.frac[r][i]
			s.fluxDefCons[r][i] = s.addCon(mb.sys, s.compVarName("flow_term_eqn", rn, i),
				func() float64 { return mv.Value() - f.Value()*w.Value() }, mv, f, w)
		}
	}

	if mb.cfg.EnergyBalanceType != EnergyBalanceEnthalpy {
		return
	}
	s.enthFlux = make([]*eqn.Var, s.n())
	s.enthFluxCons = make([]*eqn.Constraint, s.n())
	for i := 0; i < s.n(); i++ {
		i := i
		hv := s.addVar(mb.sys, s.varName("enthalpy_flow", i), 0)
		s.enthFlux[i] = hv
		f, t := s.flow[i], s.temp[i]
		deps := []*eqn.Var{hv, f, t}
		for c := range s.frac {
			deps = append(deps, s.frac[c][i])
		}
		s.enthFluxCons[i] = s.addCon(mb.sys, s.varName("enthalpy_flow_eqn", i), func() float64 {
			return hv.Value() - f.Value()*props.MassEnthalpy(t.Value(), s.composition(i))
		}, deps...)
	}
}

func (mb *MovingBed) buildVelocities() {
	g := mb.gas
	gprops := mb.gasProps
	a := mb.bedArea

	mb.velocityGas = make([]*eqn.Var, g.n())
	g.velCons = make([]*eqn.Constraint, g.n())
	for i := 0; i < g.n(); i++ {
		u := g.addVar(mb.sys, fmt.Sprintf("velocity_superficial_gas[%d]", i), 0.1)
		mb.velocityGas[i] = u
		f, t, p := g.flow[i], g.temp[i], g.press[i]
		g.velCons[i] = g.addCon(mb.sys, fmt.Sprintf("gas_super_vel[%d]", i), func() float64 {
			return u.Value()*a.Value()*gprops.MolarDensity(t.Value(), p.Value()) - f.Value()
		}, u, a, t, p, f)
	}

	// The solid moves in plug flow, so one superficial velocity covers the
	// whole bed. It is pinned to the inlet state on a skeletal density
	// basis.
	s := mb.solid
	sprops := mb.solidProps
	us := s.addVar(mb.sys, "velocity_superficial_solid", 1e-3)
	mb.velocitySolid = us
	fin := s.flow[s.inletIdx]
	deps := []*eqn.Var{us, a, fin}
	for c := range s.frac {
		deps = append(deps, s.frac[c][s.inletIdx])
	}
	s.velCons = []*eqn.Constraint{s.addCon(mb.sys, "solid_super_vel", func() float64 {
		return us.Value()*a.Value()*sprops.SkeletalDensity(s.composition(s.inletIdx)) - fin.Value()
	}, deps...)}
}
