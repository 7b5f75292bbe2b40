package bed

import (
	"mbr/eqn"
	"mbr/grid"
)

// fdPair orders the two points of a first order difference along the axis:
// a backward difference at i spans (i-1, i), a forward difference (i, i+1).
func (p *phase) fdPair(i int) (lo, hi int) {
	if p.scheme == Forward {
		j, _ := p.domain.Next(i)
		return i, j
	}
	j, _ := p.domain.Prev(i)
	return j, i
}

// discretizeSeries attaches a derivative variable and its discretization
// equation to every eligible point of the series. Returned slices span the
// whole domain with nil entries at the excluded boundary.
//
// The finite difference form couples exactly three variables:
//
//	deriv(x)*h - (series(hi) - series(lo)) = 0
//
// Collocation writes the derivative as the Radau interpolant slope over the
// element's local nodes instead.
func (mb *MovingBed) discretizeSeries(p *phase, series []*eqn.Var,
	varName, conName func(i int) string) ([]*eqn.Var, []*eqn.Constraint) {

	n := p.n()
	derivs := make([]*eqn.Var, n)
	cons := make([]*eqn.Constraint, n)

	if mb.cfg.TransformationMethod == Collocation {
		ncp := mb.cfg.CollocationPoints
		dmat, err := grid.RadauDerivativeMatrix(ncp)
		if err != nil {
			panic(err)
		}
		for i := 1; i < n; i++ {
			e := (i - 1) / ncp
			k := i - e*ncp
			j0 := e * ncp
			h := p.domain.At(j0+ncp) - p.domain.At(j0)
			row := dmat[k-1]
			nodes := series[j0 : j0+ncp+1]

			d := p.addVar(mb.sys, varName(i), 0)
			derivs[i] = d
			deps := append([]*eqn.Var{d}, nodes...)
			cons[i] = p.addCon(mb.sys, conName(i), func() float64 {
				sum := 0.0
				for j, nv := range nodes {
					sum += row[j] * nv.Value()
				}
				return d.Value()*h - sum
			}, deps...)
		}
		return derivs, cons
	}

	for i := 0; i < n; i++ {
		if !p.hasDeriv(i) {
			continue
		}
		lo, hi := p.fdPair(i)
		h := p.domain.At(hi) - p.domain.At(lo)
		vlo, vhi := series[lo], series[hi]

		d := p.addVar(mb.sys, varName(i), 0)
		derivs[i] = d
		cons[i] = p.addCon(mb.sys, conName(i), func() float64 {
			return d.Value()*h - (vhi.Value() - vlo.Value())
		}, d, vhi, vlo)
	}
	return derivs, cons
}

// buildDiscretization wires derivative variables for every differenced
// series: material flow terms for both phases, enthalpy flows when the
// energy balance asks for them, and the gas pressure when the momentum
// balance carries a gradient.
func (mb *MovingBed) buildDiscretization() {
	for _, p := range []*phase{mb.gas, mb.solid} {
		p := p
		rows := p.rowNames(mb.cfg.MaterialBalanceType)
		p.fluxDeriv = make([][]*eqn.Var, len(rows))
		p.discCons = make([][]*eqn.Constraint, len(rows))
		for r, rn := range rows {
			rn := rn
			p.fluxDeriv[r], p.discCons[r] = mb.discretizeSeries(p, p.flux[r],
				func(i int) string { return p.compVarName("flow_dx", rn, i) },
				func(i int) string { return p.compVarName("flow_dx_disc_eq", rn, i) })
		}
		if mb.cfg.EnergyBalanceType == EnergyBalanceEnthalpy {
			p.enthDeriv, p.enthDiscCons = mb.discretizeSeries(p, p.enthFlux,
				func(i int) string { return p.varName("enthalpy_flow_dx", i) },
				func(i int) string { return p.varName("enthalpy_flow_dx_disc_eq", i) })
		}
	}

	if mb.hasPressureGradient() {
		g := mb.gas
		g.pressDeriv, g.pressDiscCons = mb.discretizeSeries(g, g.press,
			func(i int) string { return g.varName("pressure_dx", i) },
			func(i int) string { return g.varName("pressure_dx_disc_eq", i) })
	}
}

func (mb *MovingBed) hasPressureGradient() bool {
	return mb.cfg.MomentumBalanceType == MomentumBalancePressure && mb.cfg.HasPressureChange
}
