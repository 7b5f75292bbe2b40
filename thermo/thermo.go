// Package thermo supplies the property and reaction collaborators of the bed
// model. The reactor core depends only on the three interfaces here; the
// shipped implementations cover a methane gas mix and an iron-oxide oxygen
// carrier with its reduction kinetics.
//
// Composition slices are always ordered like Components(). Temperatures are
// in K, pressures in Pa, SI units throughout.
package thermo

// GasConst is the universal gas constant in J/(mol*K).
const GasConst = 8.314462618

// RefTemperature is the enthalpy reference in K.
const RefTemperature = 298.15

// GasProperties evaluates the intensive properties of the gas phase from
// temperature, pressure and mole fractions.
type GasProperties interface {
	Components() []string
	MolecularWeight(i int) float64              // kg/mol
	MixtureMolecularWeight(y []float64) float64 // kg/mol
	MolarDensity(t, p float64) float64          // mol/m3
	MolarEnthalpy(t float64, y []float64) float64
	MolarHeatCapacity(t float64, y []float64) float64
	MassHeatCapacity(t float64, y []float64) float64
	Viscosity(t float64, y []float64) float64
	ThermalConductivity(t float64, y []float64) float64
}

// SolidProperties evaluates the intensive properties of the moving solid from
// temperature, particle porosity and mass fractions.
type SolidProperties interface {
	Components() []string
	MolecularWeight(i int) float64
	SkeletalDensity(w []float64) float64                  // kg/m3
	ParticleDensity(porosity float64, w []float64) float64 // kg/m3
	MassEnthalpy(t float64, w []float64) float64
	MassHeatCapacity(t float64, w []float64) float64
	ParticleDiameter() float64 // m
	BedVoidage() float64
}

// Reaction declares the stoichiometry and kinetics of one heterogeneous
// reaction on the gas-reactant basis: coefficients are moles of component per
// mole of gas reactant consumed, negative for consumption. The bed converts
// the rate into per-component sources using these coefficients only, so the
// overall stoichiometric ratios originate here.
type Reaction interface {
	Name() string
	GasStoichiometry(i int) float64
	SolidStoichiometry(i int) float64
	EnthalpyOfReaction() float64 // J per mol gas reactant, positive endothermic
	// Rate returns mol of gas reactant per m3 of bed per second.
	Rate(tGas, tSolid, p float64, y, w []float64) float64
}
