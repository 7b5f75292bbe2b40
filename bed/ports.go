package bed

import (
	"mbr/eqn"
	"mbr/model"
)

// GasPort bundles the gas state variables at one end of the bed. Fixing a
// port pins the boundary; reading it after a solve gives the outlet state.
type GasPort struct {
	FlowMol     *eqn.Var
	Temperature *eqn.Var
	Pressure    *eqn.Var
	MoleFrac    map[string]*eqn.Var
}

// Fix pins every variable of the port to the given inlet state. Components
// missing from the map are fixed at zero.
func (p GasPort) Fix(in model.InletGas) {
	p.FlowMol.FixAt(in.FlowMol)
	p.Temperature.FixAt(in.Temperature)
	p.Pressure.FixAt(in.Pressure)
	for name, v := range p.MoleFrac {
		v.FixAt(in.MoleFrac[name])
	}
}

func (p GasPort) fixed() bool {
	ok := p.FlowMol.Fixed() && p.Temperature.Fixed() && p.Pressure.Fixed()
	for _, v := range p.MoleFrac {
		ok = ok && v.Fixed()
	}
	return ok
}

// SolidPort bundles the solid state variables at one end of the bed.
type SolidPort struct {
	FlowMass         *eqn.Var
	Temperature      *eqn.Var
	ParticlePorosity *eqn.Var
	MassFrac         map[string]*eqn.Var
}

// Fix pins every variable of the port to the given inlet state.
func (p SolidPort) Fix(in model.InletSolid) {
	p.FlowMass.FixAt(in.FlowMass)
	p.Temperature.FixAt(in.Temperature)
	p.ParticlePorosity.FixAt(in.ParticlePorosity)
	for name, v := range p.MassFrac {
		v.FixAt(in.MassFrac[name])
	}
}

func (p SolidPort) fixed() bool {
	ok := p.FlowMass.Fixed() && p.Temperature.Fixed() && p.ParticlePorosity.Fixed()
	for _, v := range p.MassFrac {
		ok = ok && v.Fixed()
	}
	return ok
}

func (mb *MovingBed) buildPorts() {
	g, s := mb.gas, mb.solid
	gasPortAt := func(i int) GasPort {
		fr := make(map[string]*eqn.Var, len(g.comps))
		for c, name := range g.comps {
			fr[name] = g.frac[c][i]
		}
		return GasPort{FlowMol: g.flow[i], Temperature: g.temp[i], Pressure: g.press[i], MoleFrac: fr}
	}
	solidPortAt := func(i int) SolidPort {
		fr := make(map[string]*eqn.Var, len(s.comps))
		for c, name := range s.comps {
			fr[name] = s.frac[c][i]
		}
		return SolidPort{FlowMass: s.flow[i], Temperature: s.temp[i], ParticlePorosity: s.poros[i], MassFrac: fr}
	}
	mb.gasInlet = gasPortAt(g.inletIdx)
	mb.gasOutlet = gasPortAt(g.outletIdx)
	mb.solidInlet = solidPortAt(s.inletIdx)
	mb.solidOutlet = solidPortAt(s.outletIdx)
}

// GasInlet is the gas feed boundary at x = 0.
func (mb *MovingBed) GasInlet() GasPort { return mb.gasInlet }

// GasOutlet is the gas product boundary at x = 1.
func (mb *MovingBed) GasOutlet() GasPort { return mb.gasOutlet }

// SolidInlet is the solid feed boundary at x = 1 for counter-current flow.
func (mb *MovingBed) SolidInlet() SolidPort { return mb.solidInlet }

// SolidOutlet is the solid product boundary opposite its inlet.
func (mb *MovingBed) SolidOutlet() SolidPort { return mb.solidOutlet }
