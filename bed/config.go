package bed

import (
	"fmt"

	"mbr/thermo"
)

// TransformationMethod selects how axial derivatives are discretized.
type TransformationMethod int

const (
	FiniteDifference TransformationMethod = iota
	Collocation
)

func (m TransformationMethod) String() string {
	switch m {
	case FiniteDifference:
		return "finite_difference"
	case Collocation:
		return "collocation"
	}
	return fmt.Sprintf("TransformationMethod(%d)", int(m))
}

// Scheme is a finite difference direction on the axis. The zero value means
// "not set"; an unset shared scheme defaults to Backward.
type Scheme int

const (
	SchemeUnset Scheme = iota
	Backward
	Forward
)

func (s Scheme) String() string {
	switch s {
	case SchemeUnset:
		return "unset"
	case Backward:
		return "backward"
	case Forward:
		return "forward"
	}
	return fmt.Sprintf("Scheme(%d)", int(s))
}

// FlowType gives the relative direction of the two phases.
type FlowType int

const (
	CounterCurrent FlowType = iota
	CoCurrent
)

func (f FlowType) String() string {
	if f == CoCurrent {
		return "co_current"
	}
	return "counter_current"
}

// MaterialBalanceType selects per-component or total material balances.
type MaterialBalanceType int

const (
	MaterialBalanceComponent MaterialBalanceType = iota
	MaterialBalanceTotal
)

// EnergyBalanceType selects enthalpy balances or an isothermal profile.
type EnergyBalanceType int

const (
	EnergyBalanceEnthalpy EnergyBalanceType = iota
	EnergyBalanceNone
)

// MomentumBalanceType selects a pressure balance or an isobaric profile.
type MomentumBalanceType int

const (
	MomentumBalancePressure MomentumBalanceType = iota
	MomentumBalanceNone
)

// PressureDropType selects the pressure drop correlation. It must be set
// whenever the momentum balance includes pressure change.
type PressureDropType int

const (
	PressureDropUnset PressureDropType = iota
	ErgunCorrelation
	SimpleCorrelation
)

func (p PressureDropType) String() string {
	switch p {
	case PressureDropUnset:
		return "unset"
	case ErgunCorrelation:
		return "ergun_correlation"
	case SimpleCorrelation:
		return "simple_correlation"
	}
	return fmt.Sprintf("PressureDropType(%d)", int(p))
}

// GasPhaseConfig carries the gas side collaborators.
type GasPhaseConfig struct {
	Properties              thermo.GasProperties
	HasEquilibriumReactions bool
}

// SolidPhaseConfig carries the solid side collaborators. The heterogeneous
// reaction lives here because its rate is written per unit of solid.
type SolidPhaseConfig struct {
	Properties              thermo.SolidProperties
	Reaction                thermo.Reaction
	HasEquilibriumReactions bool
}

// Config describes one moving bed model. The zero value of each option is
// the default; New validates the whole set eagerly and rejects
// contradictory combinations with a ConfigurationError.
type Config struct {
	FiniteElements  int
	LengthDomainSet []float64

	TransformationMethod      TransformationMethod
	TransformationScheme      Scheme
	GasTransformationScheme   Scheme
	SolidTransformationScheme Scheme
	CollocationPoints         int

	FlowType FlowType

	MaterialBalanceType MaterialBalanceType
	EnergyBalanceType   EnergyBalanceType
	MomentumBalanceType MomentumBalanceType
	HasPressureChange   bool
	PressureDropType    PressureDropType
	HasHoldup           bool

	GasPhase   GasPhaseConfig
	SolidPhase SolidPhaseConfig
}

// DefaultConfig returns the reference configuration: ten backward finite
// difference elements, counter-current flow, full component, enthalpy and
// pressure balances with the Ergun correlation, and the built-in methane
// over iron oxide property packages.
func DefaultConfig() Config {
	return Config{
		FiniteElements:       10,
		TransformationMethod: FiniteDifference,
		TransformationScheme: Backward,
		FlowType:             CounterCurrent,
		MaterialBalanceType:  MaterialBalanceComponent,
		EnergyBalanceType:    EnergyBalanceEnthalpy,
		MomentumBalanceType:  MomentumBalancePressure,
		HasPressureChange:    true,
		PressureDropType:     ErgunCorrelation,
		GasPhase:             GasPhaseConfig{Properties: thermo.NewMethaneMix()},
		SolidPhase: SolidPhaseConfig{
			Properties: thermo.NewIronOxide(),
			Reaction:   thermo.NewOxygenCarrierReduction(),
		},
	}
}

// normalized fills unset sizing options with their defaults. Option
// combinations are not touched; validate judges those.
func (c Config) normalized() Config {
	if c.FiniteElements == 0 {
		if len(c.LengthDomainSet) > 1 {
			c.FiniteElements = len(c.LengthDomainSet) - 1
		} else {
			c.FiniteElements = 10
		}
	}
	if c.TransformationMethod == Collocation && c.CollocationPoints == 0 {
		c.CollocationPoints = 3
	}
	if c.TransformationMethod == FiniteDifference &&
		c.TransformationScheme == SchemeUnset &&
		c.GasTransformationScheme == SchemeUnset &&
		c.SolidTransformationScheme == SchemeUnset {
		c.TransformationScheme = Backward
	}
	return c
}

func (c Config) validate() error {
	if c.FiniteElements < 1 {
		return &ConfigurationError{Field: "finite_elements",
			Reason: fmt.Sprintf("must be at least 1, got %d", c.FiniteElements)}
	}
	if n := len(c.LengthDomainSet); n > 0 && n != c.FiniteElements+1 {
		return &ConfigurationError{Field: "length_domain_set",
			Reason: fmt.Sprintf("needs finite_elements+1 = %d points, got %d", c.FiniteElements+1, n)}
	}

	perPhase := c.GasTransformationScheme != SchemeUnset || c.SolidTransformationScheme != SchemeUnset
	bothPhase := c.GasTransformationScheme != SchemeUnset && c.SolidTransformationScheme != SchemeUnset
	if perPhase && !bothPhase {
		return &ConfigurationError{Field: "transformation_scheme",
			Reason: "gas_transformation_scheme and solid_transformation_scheme must be set together"}
	}
	if perPhase && c.TransformationScheme != SchemeUnset {
		return &ConfigurationError{Field: "transformation_scheme",
			Reason: "cannot combine transformation_scheme with per-phase schemes"}
	}
	if perPhase && c.TransformationMethod != FiniteDifference {
		return &ConfigurationError{Field: "transformation_method",
			Reason: "transformation_method must be finite_difference when per-phase schemes are set"}
	}
	if c.TransformationMethod == Collocation && c.TransformationScheme != SchemeUnset {
		return &ConfigurationError{Field: "transformation_scheme",
			Reason: "collocation fixes the Radau basis; leave transformation_scheme unset"}
	}
	if c.TransformationMethod == Collocation && (c.CollocationPoints < 1 || c.CollocationPoints > 5) {
		return &ConfigurationError{Field: "collocation_points",
			Reason: fmt.Sprintf("supported range is 1 to 5, got %d", c.CollocationPoints)}
	}

	if c.MomentumBalanceType == MomentumBalancePressure && c.HasPressureChange &&
		c.PressureDropType == PressureDropUnset {
		return &ConfigurationError{Field: "pressure_drop_type",
			Reason: "required when the momentum balance includes pressure change"}
	}
	if c.GasPhase.HasEquilibriumReactions || c.SolidPhase.HasEquilibriumReactions {
		return &ConfigurationError{Field: "has_equilibrium_reactions",
			Reason: "equilibrium reactions are not supported"}
	}

	if c.GasPhase.Properties == nil {
		return &ConfigurationError{Field: "gas_phase.properties", Reason: "property package is required"}
	}
	if c.SolidPhase.Properties == nil {
		return &ConfigurationError{Field: "solid_phase.properties", Reason: "property package is required"}
	}
	if c.SolidPhase.Reaction == nil {
		return &ConfigurationError{Field: "solid_phase.reaction", Reason: "reaction package is required"}
	}
	return nil
}

// Validate reports whether the configuration, with defaults filled in,
// describes a buildable model.
func (c Config) Validate() error { return c.normalized().validate() }

// resolveSchemes maps the configured schemes onto effective axis directions
// for the two phases. With a single shared scheme under counter-current
// flow the solid phase receives the mirror image, so that both phases
// difference against their own upstream neighbor.
func (c Config) resolveSchemes() (gas, solid Scheme) {
	if c.GasTransformationScheme != SchemeUnset {
		return c.GasTransformationScheme, c.SolidTransformationScheme
	}
	shared := c.TransformationScheme
	if shared == SchemeUnset {
		shared = Backward
	}
	if c.FlowType == CounterCurrent {
		if shared == Backward {
			return Backward, Forward
		}
		return Forward, Backward
	}
	return shared, shared
}
