package thermo

import "math"

// OxygenCarrierReduction is the methane reduction of the iron-oxide carrier,
//
//	CH4 + 12 Fe2O3 -> 8 Fe3O4 + CO2 + 2 H2O
//
// written per mole of CH4. The rate is Arrhenius in the solid temperature,
// first order in the CH4 concentration and in the Fe2O3 mass fraction, so it
// vanishes smoothly as the carrier depletes.
type OxygenCarrierReduction struct {
	k0 float64 // 1/s at unit Fe2O3 mass fraction
	ea float64 // J/mol
	dh float64 // J/mol CH4, endothermic

	gasStoich   []float64 // CH4, CO2, H2O
	solidStoich []float64 // Fe2O3, Fe3O4, Al2O3
}

func NewOxygenCarrierReduction() *OxygenCarrierReduction {
	return &OxygenCarrierReduction{
		k0:          3.2e5,
		ea:          4.9e4,
		dh:          136.58e3,
		gasStoich:   []float64{-1, 1, 2},
		solidStoich: []float64{-12, 8, 0},
	}
}

func (r *OxygenCarrierReduction) Name() string { return "R1" }

func (r *OxygenCarrierReduction) GasStoichiometry(i int) float64 { return r.gasStoich[i] }

func (r *OxygenCarrierReduction) SolidStoichiometry(i int) float64 { return r.solidStoich[i] }

func (r *OxygenCarrierReduction) EnthalpyOfReaction() float64 { return r.dh }

func (r *OxygenCarrierReduction) Rate(tGas, tSolid, p float64, y, w []float64) float64 {
	cCH4 := y[0] * p / (GasConst * tGas)
	k := r.k0 * math.Exp(-r.ea/(GasConst*tSolid))
	return k * cCH4 * w[0]
}
