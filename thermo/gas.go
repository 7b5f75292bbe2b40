package thermo

import "math"

// gasComponent holds the per-species parameter set: linear heat capacity
// cp = cpA + cpB*T, and power-law transport referenced to RefTemperature.
type gasComponent struct {
	name string
	mw   float64 // kg/mol
	cpA  float64 // J/(mol*K)
	cpB  float64 // J/(mol*K^2)
	mu0  float64 // Pa*s at RefTemperature
	k0   float64 // W/(m*K) at RefTemperature
}

// MethaneMix is the CH4/CO2/H2O gas package of the reference bed.
type MethaneMix struct {
	comps []gasComponent
	names []string
}

func NewMethaneMix() *MethaneMix {
	comps := []gasComponent{
		{name: "CH4", mw: 16.043e-3, cpA: 21.7, cpB: 0.0469, mu0: 1.10e-5, k0: 0.0332},
		{name: "CO2", mw: 44.009e-3, cpA: 31.4, cpB: 0.0205, mu0: 1.48e-5, k0: 0.0166},
		{name: "H2O", mw: 18.015e-3, cpA: 30.2, cpB: 0.0114, mu0: 0.98e-5, k0: 0.0180},
	}
	names := make([]string, len(comps))
	for i, c := range comps {
		names[i] = c.name
	}
	return &MethaneMix{comps: comps, names: names}
}

func (g *MethaneMix) Components() []string { return g.names }

func (g *MethaneMix) MolecularWeight(i int) float64 { return g.comps[i].mw }

func (g *MethaneMix) MixtureMolecularWeight(y []float64) float64 {
	mw := 0.0
	for i, c := range g.comps {
		mw += y[i] * c.mw
	}
	return mw
}

// MolarDensity follows the ideal gas law.
func (g *MethaneMix) MolarDensity(t, p float64) float64 {
	return p / (GasConst * t)
}

// MolarEnthalpy integrates cp analytically from the reference temperature.
func (g *MethaneMix) MolarEnthalpy(t float64, y []float64) float64 {
	h := 0.0
	for i, c := range g.comps {
		h += y[i] * (c.cpA*(t-RefTemperature) + 0.5*c.cpB*(t*t-RefTemperature*RefTemperature))
	}
	return h
}

func (g *MethaneMix) MolarHeatCapacity(t float64, y []float64) float64 {
	cp := 0.0
	for i, c := range g.comps {
		cp += y[i] * (c.cpA + c.cpB*t)
	}
	return cp
}

func (g *MethaneMix) MassHeatCapacity(t float64, y []float64) float64 {
	return g.MolarHeatCapacity(t, y) / g.MixtureMolecularWeight(y)
}

// Viscosity uses a T^0.7 power law with mole-fraction mixing.
func (g *MethaneMix) Viscosity(t float64, y []float64) float64 {
	mu := 0.0
	for i, c := range g.comps {
		mu += y[i] * c.mu0
	}
	return mu * math.Pow(t/RefTemperature, 0.7)
}

// ThermalConductivity uses a T^0.8 power law with mole-fraction mixing.
func (g *MethaneMix) ThermalConductivity(t float64, y []float64) float64 {
	k := 0.0
	for i, c := range g.comps {
		k += y[i] * c.k0
	}
	return k * math.Pow(t/RefTemperature, 0.8)
}
