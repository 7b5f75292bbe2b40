package bed

import (
	"math"

	"mbr/eqn"
)

// ScalingDefaults are the per-family variable magnitudes the scaling pass
// works from. A factor is the reciprocal of the expected order of
// magnitude, so scaled values land near one.
type ScalingDefaults struct {
	GasFlow        float64
	GasMoleFrac    float64
	GasTemperature float64
	GasPressure    float64
	GasEnthalpy    float64

	SolidFlow        float64
	SolidMassFrac    float64
	SolidTemperature float64
	SolidPorosity    float64
	SolidEnthalpy    float64
}

// DefaultScaling returns the reference factors for the methane reduction
// case: hundreds of mol/s of gas, bar-level pressures, temperatures around
// a thousand kelvin and enthalpy flows near ten megawatts.
func DefaultScaling() ScalingDefaults {
	return ScalingDefaults{
		GasFlow:        1e-3,
		GasMoleFrac:    1e1,
		GasTemperature: 1e-2,
		GasPressure:    1e-5,
		GasEnthalpy:    1e-6,

		SolidFlow:        1e-3,
		SolidMassFrac:    1e1,
		SolidTemperature: 1e-2,
		SolidPorosity:    1e2,
		SolidEnthalpy:    1e-6,
	}
}

// Fixed factors for the correlation families; these magnitudes do not move
// with the feed basis.
const (
	velocityGasScale   = 1e0
	velocitySolidScale = 1e2
	reynoldsScale      = 1e-2
	prandtlScale       = 1e0
	nusseltScale       = 1e-1
	htcScale           = 1e-1
	heatDutyScale      = 1e-6
	reactionRateScale  = 1e0

	reynoldsEqnScale = 1e2
	prandtlEqnScale  = 1e1
	htcEqnScale      = 1e1
)

// geometryScale targets 0.1 for the current value, the usual rule for
// quantities whose magnitude is known only after the geometry is set.
func geometryScale(v *eqn.Var) float64 {
	if v.Value() == 0 {
		return 1
	}
	return math.Abs(0.1 / v.Value())
}

// ApplyScaling assigns variable and constraint scale factors from the
// documented family table. The pass is deterministic and idempotent:
// applying the same defaults twice yields identical factors.
//
// Variable families:
//
//	state            configured default per family
//	geometry         0.1 / current value
//	flow term        flow * fraction (total rows: flow alone)
//	flow term deriv  same as its flow term
//	enthalpy flow    flow * enthalpy, deriv alike
//	pressure deriv   pressure * 10 (gradients run a decade above drops)
//	correlations     fixed per-family constants
//	holdup           same as the matching flux family
//
// Constraint families inherit the factor of the variable they define or
// difference, so residual rows and their dominant columns stay balanced.
func (mb *MovingBed) ApplyScaling(sd ScalingDefaults) {
	g, s := mb.gas, mb.solid

	for _, v := range g.flow {
		v.SetScaleFactor(sd.GasFlow)
	}
	for _, v := range g.temp {
		v.SetScaleFactor(sd.GasTemperature)
	}
	for _, v := range g.press {
		v.SetScaleFactor(sd.GasPressure)
	}
	for c := range g.frac {
		for _, v := range g.frac[c] {
			v.SetScaleFactor(sd.GasMoleFrac)
		}
	}
	for _, v := range s.flow {
		v.SetScaleFactor(sd.SolidFlow)
	}
	for _, v := range s.temp {
		v.SetScaleFactor(sd.SolidTemperature)
	}
	for _, v := range s.poros {
		v.SetScaleFactor(sd.SolidPorosity)
	}
	for c := range s.frac {
		for _, v := range s.frac[c] {
			v.SetScaleFactor(sd.SolidMassFrac)
		}
	}

	for _, v := range []*eqn.Var{mb.bedDiameter, mb.bedHeight, mb.bedArea, mb.gasArea, mb.solidArea} {
		v.SetScaleFactor(geometryScale(v))
	}
	geomVars := []*eqn.Var{mb.bedArea, mb.gasArea, mb.solidArea}
	for k, c := range mb.geomCons {
		c.SetScaleFactor(geomVars[k].ScaleFactor())
	}

	gasFlux := sd.GasFlow * sd.GasMoleFrac
	solidFlux := sd.SolidFlow * sd.SolidMassFrac
	if mb.cfg.MaterialBalanceType == MaterialBalanceTotal {
		gasFlux, solidFlux = sd.GasFlow, sd.SolidFlow
	}
	gasEnthFlux := sd.GasFlow * sd.GasEnthalpy
	solidEnthFlux := sd.SolidFlow * sd.SolidEnthalpy
	pressGrad := sd.GasPressure * 1e1

	mb.scalePhaseFamilies(g, gasFlux, gasEnthFlux, sd.GasMoleFrac, sd.GasTemperature)
	mb.scalePhaseFamilies(s, solidFlux, solidEnthFlux, sd.SolidMassFrac, sd.SolidTemperature)

	for _, c := range s.porosityCons {
		if c != nil {
			c.SetScaleFactor(sd.SolidPorosity)
		}
	}
	for _, c := range g.isobaricCons {
		if c != nil {
			c.SetScaleFactor(sd.GasPressure)
		}
	}
	for i, v := range g.pressDeriv {
		if v == nil {
			continue
		}
		v.SetScaleFactor(pressGrad)
		g.pressDiscCons[i].SetScaleFactor(pressGrad)
		g.pressCorrCons[i].SetScaleFactor(pressGrad)
	}

	for _, v := range mb.velocityGas {
		v.SetScaleFactor(velocityGasScale)
	}
	for _, c := range g.velCons {
		c.SetScaleFactor(sd.GasFlow)
	}
	if mb.velocitySolid != nil {
		mb.velocitySolid.SetScaleFactor(velocitySolidScale)
		s.velCons[0].SetScaleFactor(sd.SolidFlow * 1e-1)
	}

	for i := range mb.rate {
		mb.rate[i].SetScaleFactor(reactionRateScale)
		mb.rateCons[i].SetScaleFactor(reactionRateScale)
	}
	for i := range mb.reynolds {
		mb.reynolds[i].SetScaleFactor(reynoldsScale)
		mb.prandtl[i].SetScaleFactor(prandtlScale)
		mb.nusselt[i].SetScaleFactor(nusseltScale)
		mb.htc[i].SetScaleFactor(htcScale)
		mb.gasHeat[i].SetScaleFactor(heatDutyScale)
		mb.solidHeat[i].SetScaleFactor(heatDutyScale)
		mb.reCons[i].SetScaleFactor(reynoldsEqnScale)
		mb.prCons[i].SetScaleFactor(prandtlEqnScale)
		mb.nuCons[i].SetScaleFactor(nusseltScale)
		mb.htcCons[i].SetScaleFactor(htcEqnScale)
		mb.qGasCons[i].SetScaleFactor(heatDutyScale)
		mb.qSolidCons[i].SetScaleFactor(heatDutyScale)
	}

	mb.scaleHoldup(g, gasFlux, gasEnthFlux)
	mb.scaleHoldup(s, solidFlux, solidEnthFlux)
}

func (mb *MovingBed) scalePhaseFamilies(p *phase, flux, enthFlux, fracScale, tempScale float64) {
	for r := range p.flux {
		for i, v := range p.flux[r] {
			v.SetScaleFactor(flux)
			p.fluxDefCons[r][i].SetScaleFactor(flux)
		}
		for i, v := range p.fluxDeriv[r] {
			if v == nil {
				continue
			}
			v.SetScaleFactor(flux)
			p.discCons[r][i].SetScaleFactor(flux)
			p.matBalCons[r][i].SetScaleFactor(flux)
		}
	}
	for i, v := range p.enthFlux {
		if v == nil {
			continue
		}
		v.SetScaleFactor(enthFlux)
		p.enthFluxCons[i].SetScaleFactor(enthFlux)
	}
	for i, v := range p.enthDeriv {
		if v == nil {
			continue
		}
		v.SetScaleFactor(enthFlux)
		p.enthDiscCons[i].SetScaleFactor(enthFlux)
		p.energyBalCons[i].SetScaleFactor(enthFlux)
	}
	for _, c := range p.sumCons {
		if c != nil {
			c.SetScaleFactor(fracScale)
		}
	}
	for r := range p.frozenCons {
		for _, c := range p.frozenCons[r] {
			if c != nil {
				c.SetScaleFactor(fracScale)
			}
		}
	}
	for _, c := range p.isothermalCons {
		if c != nil {
			c.SetScaleFactor(tempScale)
		}
	}
}

func (mb *MovingBed) scaleHoldup(p *phase, flux, enthFlux float64) {
	for c := range p.matHoldup {
		for i, v := range p.matHoldup[c] {
			if v == nil {
				continue
			}
			v.SetScaleFactor(flux)
			p.matHoldupCons[c][i].SetScaleFactor(flux)
		}
	}
	for i, v := range p.energyHoldup {
		if v == nil {
			continue
		}
		v.SetScaleFactor(enthFlux)
		p.enerHoldupCons[i].SetScaleFactor(enthFlux)
	}
}
