package bed

import (
	"fmt"
	"io"

	"mbr/model"
)

// PressureDrop is the gas side pressure loss across the bed.
func (mb *MovingBed) PressureDrop() float64 {
	return mb.gasInlet.Pressure.Value() - mb.gasOutlet.Pressure.Value()
}

// Profiles extracts the solved state along the axis for plotting.
func (mb *MovingBed) Profiles() model.Profiles {
	g, s := mb.gas, mb.solid
	n := g.n()
	pr := model.Profiles{
		Points:      mb.Points(),
		GasFlowMol:  make([]float64, n),
		GasTemp:     make([]float64, n),
		Pressure:    make([]float64, n),
		GasVelocity: make([]float64, n),
		SolidFlow:   make([]float64, n),
		SolidTemp:   make([]float64, n),
		MoleFrac:    make(map[string][]float64, len(g.comps)),
		MassFrac:    make(map[string][]float64, len(s.comps)),
	}
	for i := 0; i < n; i++ {
		pr.GasFlowMol[i] = g.flow[i].Value()
		pr.GasTemp[i] = g.temp[i].Value()
		pr.Pressure[i] = g.press[i].Value()
		pr.GasVelocity[i] = mb.velocityGas[i].Value()
		pr.SolidFlow[i] = s.flow[i].Value()
		pr.SolidTemp[i] = s.temp[i].Value()
	}
	for c, name := range g.comps {
		ys := make([]float64, n)
		for i := 0; i < n; i++ {
			ys[i] = g.frac[c][i].Value()
		}
		pr.MoleFrac[name] = ys
	}
	for c, name := range s.comps {
		ws := make([]float64, n)
		for i := 0; i < n; i++ {
			ws[i] = s.frac[c][i].Value()
		}
		pr.MassFrac[name] = ws
	}
	return pr
}

// Report writes a human readable summary of the current state: geometry,
// pressure drop and both port states side by side.
func (mb *MovingBed) Report(w io.Writer) {
	g, s := mb.gas, mb.solid
	line := "====================================================================\n"

	fmt.Fprint(w, line)
	fmt.Fprintf(w, "Moving bed reactor (%s, %s)\n", mb.cfg.TransformationMethod, mb.cfg.FlowType)
	fmt.Fprintf(w, "  axial points ........ %d\n", g.n())
	fmt.Fprintf(w, "  bed diameter ........ %.4f m\n", mb.bedDiameter.Value())
	fmt.Fprintf(w, "  bed height .......... %.4f m\n", mb.bedHeight.Value())
	fmt.Fprintf(w, "  bed area ............ %.4f m2\n", mb.bedArea.Value())
	fmt.Fprintf(w, "  pressure drop ....... %.2f Pa\n", mb.PressureDrop())
	fmt.Fprintf(w, "  solid velocity ...... %.5f m/s\n", mb.velocitySolid.Value())

	fmt.Fprintf(w, "\n  %-22s %14s %14s\n", "Gas", "inlet", "outlet")
	fmt.Fprintf(w, "  %-22s %14.5f %14.5f\n", "flow_mol [mol/s]",
		mb.gasInlet.FlowMol.Value(), mb.gasOutlet.FlowMol.Value())
	fmt.Fprintf(w, "  %-22s %14.2f %14.2f\n", "temperature [K]",
		mb.gasInlet.Temperature.Value(), mb.gasOutlet.Temperature.Value())
	fmt.Fprintf(w, "  %-22s %14.2f %14.2f\n", "pressure [Pa]",
		mb.gasInlet.Pressure.Value(), mb.gasOutlet.Pressure.Value())
	for c, name := range g.comps {
		fmt.Fprintf(w, "  %-22s %14.6f %14.6f\n", fmt.Sprintf("y[%s]", name),
			g.frac[c][g.inletIdx].Value(), g.frac[c][g.outletIdx].Value())
	}

	fmt.Fprintf(w, "\n  %-22s %14s %14s\n", "Solid", "inlet", "outlet")
	fmt.Fprintf(w, "  %-22s %14.5f %14.5f\n", "flow_mass [kg/s]",
		mb.solidInlet.FlowMass.Value(), mb.solidOutlet.FlowMass.Value())
	fmt.Fprintf(w, "  %-22s %14.2f %14.2f\n", "temperature [K]",
		mb.solidInlet.Temperature.Value(), mb.solidOutlet.Temperature.Value())
	fmt.Fprintf(w, "  %-22s %14.6f %14.6f\n", "particle_porosity",
		mb.solidInlet.ParticlePorosity.Value(), mb.solidOutlet.ParticlePorosity.Value())
	for c, name := range s.comps {
		fmt.Fprintf(w, "  %-22s %14.6f %14.6f\n", fmt.Sprintf("x[%s]", name),
			s.frac[c][s.inletIdx].Value(), s.frac[c][s.outletIdx].Value())
	}
	fmt.Fprint(w, line)
}
