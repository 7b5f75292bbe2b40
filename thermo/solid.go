package thermo

// solidComponent parameters: linear molar heat capacity and skeletal density.
type solidComponent struct {
	name string
	mw   float64 // kg/mol
	cpA  float64 // J/(mol*K)
	cpB  float64 // J/(mol*K^2)
	rho  float64 // skeletal kg/m3
}

// IronOxide is the Fe2O3/Fe3O4 oxygen carrier on an Al2O3 support.
type IronOxide struct {
	comps       []solidComponent
	names       []string
	particleDia float64
	voidage     float64
}

func NewIronOxide() *IronOxide {
	comps := []solidComponent{
		{name: "Fe2O3", mw: 159.687e-3, cpA: 110.1, cpB: 0.032, rho: 5250},
		{name: "Fe3O4", mw: 231.531e-3, cpA: 150.8, cpB: 0.051, rho: 5000},
		{name: "Al2O3", mw: 101.961e-3, cpA: 79.0, cpB: 0.012, rho: 3987},
	}
	names := make([]string, len(comps))
	for i, c := range comps {
		names[i] = c.name
	}
	return &IronOxide{
		comps:       comps,
		names:       names,
		particleDia: 0.0115,
		voidage:     0.4,
	}
}

func (s *IronOxide) Components() []string { return s.names }

func (s *IronOxide) MolecularWeight(i int) float64 { return s.comps[i].mw }

// SkeletalDensity is the mass-fraction harmonic mix of the pure densities.
func (s *IronOxide) SkeletalDensity(w []float64) float64 {
	inv := 0.0
	for i, c := range s.comps {
		inv += w[i] / c.rho
	}
	return 1.0 / inv
}

func (s *IronOxide) ParticleDensity(porosity float64, w []float64) float64 {
	return (1.0 - porosity) * s.SkeletalDensity(w)
}

func (s *IronOxide) MassEnthalpy(t float64, w []float64) float64 {
	h := 0.0
	for i, c := range s.comps {
		hm := c.cpA*(t-RefTemperature) + 0.5*c.cpB*(t*t-RefTemperature*RefTemperature)
		h += w[i] * hm / c.mw
	}
	return h
}

func (s *IronOxide) MassHeatCapacity(t float64, w []float64) float64 {
	cp := 0.0
	for i, c := range s.comps {
		cp += w[i] * (c.cpA + c.cpB*t) / c.mw
	}
	return cp
}

func (s *IronOxide) ParticleDiameter() float64 { return s.particleDia }

func (s *IronOxide) BedVoidage() float64 { return s.voidage }
