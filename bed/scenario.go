package bed

import (
	"fmt"

	"gopkg.in/ini.v1"

	"mbr/model"
	"mbr/solver"
)

// DefaultScenario is the reference methane reduction case: a 6.5 m by 5 m
// bed, fresh carrier fed hot from the top, cold methane rich gas from the
// bottom.
func DefaultScenario() model.Scenario {
	return model.Scenario{
		FiniteElements:    10,
		Method:            "finite_difference",
		Scheme:            "backward",
		FlowType:          "counter_current",
		MaterialBalance:   "component",
		EnergyBalance:     "enthalpy",
		MomentumBalance:   "pressure",
		HasPressureChange: true,
		PressureDrop:      "ergun_correlation",
		BedDiameter:       6.5,
		BedHeight:         5,
		Gas: model.InletGas{
			FlowMol:     128.20513,
			Temperature: 298.15,
			Pressure:    2.00e5,
			MoleFrac:    map[string]float64{"CH4": 0.975, "CO2": 0.02499, "H2O": 0.00001},
		},
		Solid: model.InletSolid{
			FlowMass:         591.4,
			Temperature:      1183.15,
			ParticlePorosity: 0.27,
			MassFrac:         map[string]float64{"Fe2O3": 0.45, "Fe3O4": 1e-9, "Al2O3": 0.55},
		},
	}
}

func parseMethod(v string) (TransformationMethod, error) {
	switch v {
	case "", "finite_difference":
		return FiniteDifference, nil
	case "collocation":
		return Collocation, nil
	}
	return 0, &ConfigurationError{Field: "transformation_method", Reason: fmt.Sprintf("unknown value %q", v)}
}

func parseScheme(field, v string) (Scheme, error) {
	switch v {
	case "":
		return SchemeUnset, nil
	case "backward":
		return Backward, nil
	case "forward":
		return Forward, nil
	}
	return 0, &ConfigurationError{Field: field, Reason: fmt.Sprintf("unknown value %q", v)}
}

func parseFlowType(v string) (FlowType, error) {
	switch v {
	case "", "counter_current":
		return CounterCurrent, nil
	case "co_current":
		return CoCurrent, nil
	}
	return 0, &ConfigurationError{Field: "flow_type", Reason: fmt.Sprintf("unknown value %q", v)}
}

func parseMaterialBalance(v string) (MaterialBalanceType, error) {
	switch v {
	case "", "component":
		return MaterialBalanceComponent, nil
	case "total":
		return MaterialBalanceTotal, nil
	}
	return 0, &ConfigurationError{Field: "material_balance", Reason: fmt.Sprintf("unknown value %q", v)}
}

func parseEnergyBalance(v string) (EnergyBalanceType, error) {
	switch v {
	case "", "enthalpy":
		return EnergyBalanceEnthalpy, nil
	case "none":
		return EnergyBalanceNone, nil
	}
	return 0, &ConfigurationError{Field: "energy_balance", Reason: fmt.Sprintf("unknown value %q", v)}
}

func parseMomentumBalance(v string) (MomentumBalanceType, error) {
	switch v {
	case "", "pressure":
		return MomentumBalancePressure, nil
	case "none":
		return MomentumBalanceNone, nil
	}
	return 0, &ConfigurationError{Field: "momentum_balance", Reason: fmt.Sprintf("unknown value %q", v)}
}

func parsePressureDrop(v string) (PressureDropType, error) {
	switch v {
	case "":
		return PressureDropUnset, nil
	case "ergun_correlation":
		return ErgunCorrelation, nil
	case "simple_correlation":
		return SimpleCorrelation, nil
	}
	return 0, &ConfigurationError{Field: "pressure_drop_type", Reason: fmt.Sprintf("unknown value %q", v)}
}

// ConfigFromScenario maps the string options of a scenario onto a typed
// configuration, keeping the built-in property packages.
func ConfigFromScenario(sc model.Scenario) (Config, error) {
	cfg := DefaultConfig()
	cfg.FiniteElements = sc.FiniteElements
	cfg.LengthDomainSet = sc.LengthDomainSet
	cfg.CollocationPoints = sc.CollocationPoints
	cfg.HasPressureChange = sc.HasPressureChange
	cfg.HasHoldup = sc.HasHoldup

	var err error
	if cfg.TransformationMethod, err = parseMethod(sc.Method); err != nil {
		return cfg, err
	}
	if cfg.TransformationScheme, err = parseScheme("transformation_scheme", sc.Scheme); err != nil {
		return cfg, err
	}
	if cfg.GasTransformationScheme, err = parseScheme("gas_transformation_scheme", sc.GasScheme); err != nil {
		return cfg, err
	}
	if cfg.SolidTransformationScheme, err = parseScheme("solid_transformation_scheme", sc.SolidScheme); err != nil {
		return cfg, err
	}
	if cfg.FlowType, err = parseFlowType(sc.FlowType); err != nil {
		return cfg, err
	}
	if cfg.MaterialBalanceType, err = parseMaterialBalance(sc.MaterialBalance); err != nil {
		return cfg, err
	}
	if cfg.EnergyBalanceType, err = parseEnergyBalance(sc.EnergyBalance); err != nil {
		return cfg, err
	}
	if cfg.MomentumBalanceType, err = parseMomentumBalance(sc.MomentumBalance); err != nil {
		return cfg, err
	}
	if cfg.PressureDropType, err = parsePressureDrop(sc.PressureDrop); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyScenario fixes the geometry and both inlet ports from the scenario.
func (mb *MovingBed) ApplyScenario(sc model.Scenario) {
	mb.SetGeometry(sc.BedDiameter, sc.BedHeight)
	mb.gasInlet.Fix(sc.Gas)
	mb.solidInlet.Fix(sc.Solid)
}

// LoadScenario reads a scenario from an ini file, filling anything missing
// from the reference case. Component maps live in the child sections
// gas_inlet.mole_frac and solid_inlet.mass_frac.
func LoadScenario(path string) (model.Scenario, error) {
	sc := DefaultScenario()
	f, err := ini.Load(path)
	if err != nil {
		return sc, err
	}

	b := f.Section("bed")
	sc.FiniteElements = b.Key("finite_elements").MustInt(sc.FiniteElements)
	sc.Method = b.Key("transformation_method").MustString(sc.Method)
	sc.Scheme = b.Key("transformation_scheme").MustString(sc.Scheme)
	sc.GasScheme = b.Key("gas_transformation_scheme").MustString(sc.GasScheme)
	sc.SolidScheme = b.Key("solid_transformation_scheme").MustString(sc.SolidScheme)
	sc.CollocationPoints = b.Key("collocation_points").MustInt(sc.CollocationPoints)
	sc.FlowType = b.Key("flow_type").MustString(sc.FlowType)
	sc.MaterialBalance = b.Key("material_balance").MustString(sc.MaterialBalance)
	sc.EnergyBalance = b.Key("energy_balance").MustString(sc.EnergyBalance)
	sc.MomentumBalance = b.Key("momentum_balance").MustString(sc.MomentumBalance)
	sc.HasPressureChange = b.Key("has_pressure_change").MustBool(sc.HasPressureChange)
	sc.PressureDrop = b.Key("pressure_drop").MustString(sc.PressureDrop)
	sc.HasHoldup = b.Key("has_holdup").MustBool(sc.HasHoldup)

	geo := f.Section("geometry")
	sc.BedDiameter = geo.Key("bed_diameter").MustFloat64(sc.BedDiameter)
	sc.BedHeight = geo.Key("bed_height").MustFloat64(sc.BedHeight)

	gi := f.Section("gas_inlet")
	sc.Gas.FlowMol = gi.Key("flow_mol").MustFloat64(sc.Gas.FlowMol)
	sc.Gas.Temperature = gi.Key("temperature").MustFloat64(sc.Gas.Temperature)
	sc.Gas.Pressure = gi.Key("pressure").MustFloat64(sc.Gas.Pressure)
	if keys := f.Section("gas_inlet.mole_frac").Keys(); len(keys) > 0 {
		fr := make(map[string]float64, len(keys))
		for _, k := range keys {
			fr[k.Name()] = k.MustFloat64(0)
		}
		sc.Gas.MoleFrac = fr
	}

	si := f.Section("solid_inlet")
	sc.Solid.FlowMass = si.Key("flow_mass").MustFloat64(sc.Solid.FlowMass)
	sc.Solid.Temperature = si.Key("temperature").MustFloat64(sc.Solid.Temperature)
	sc.Solid.ParticlePorosity = si.Key("particle_porosity").MustFloat64(sc.Solid.ParticlePorosity)
	if keys := f.Section("solid_inlet.mass_frac").Keys(); len(keys) > 0 {
		fr := make(map[string]float64, len(keys))
		for _, k := range keys {
			fr[k.Name()] = k.MustFloat64(0)
		}
		sc.Solid.MassFrac = fr
	}
	return sc, nil
}

// RunScenario builds, initializes and solves one case end to end. The
// returned model is non-nil whenever building succeeded, converged or not,
// so callers can inspect a failed case.
func RunScenario(sc model.Scenario, hub *solver.Hub) (*MovingBed, solver.Result, error) {
	cfg, err := ConfigFromScenario(sc)
	if err != nil {
		return nil, solver.Result{}, err
	}
	mb, err := New(cfg)
	if err != nil {
		return nil, solver.Result{}, err
	}
	mb.ApplyScenario(sc)
	mb.ApplyScaling(DefaultScaling())
	if err := mb.Initialize(InitializeOptions{Hub: hub}); err != nil {
		return mb, solver.Result{}, err
	}
	// a tight final polish so the conservation identities of the reported
	// state hold well below the stoichiometric tolerance
	res, err := mb.Solve(solver.Options{Tolerance: 1e-10, MaxIterations: 60, Label: "final_solve", Hub: hub})
	if err != nil {
		return mb, res, err
	}
	if !res.IsOptimal() {
		return mb, res, fmt.Errorf("bed: final solve terminated with %s", res.Termination)
	}
	return mb, res, nil
}
