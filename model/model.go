// Package model holds the plain data types shared by the reactor core and
// the websocket surface: scenario descriptions, solved profiles and the
// message envelope. It has no dependencies so every other package can
// import it.
package model

import "encoding/json"

// Message types exchanged over the websocket connection.
const (
	MsgScenario    = "scenario"
	MsgBuild       = "build"
	MsgBuilt       = "built"
	MsgInitialize  = "initialize"
	MsgInitialized = "initialized"
	MsgSolve       = "solve"
	MsgProgress    = "progress"
	MsgProfiles    = "profiles"
	MsgReport      = "report"
	MsgError       = "error"
	MsgStop        = "stop"
	MsgStopped     = "stopped"
)

// Msg is the websocket envelope. Content is kept raw so each handler can
// decode its own payload.
type Msg struct {
	Type    string          `json:"type"`
	Content json.RawMessage `json:"content,omitempty"`
}

// InletGas describes the gas feed at the bottom of the bed.
type InletGas struct {
	FlowMol     float64            `json:"flow_mol"`
	Temperature float64            `json:"temperature"`
	Pressure    float64            `json:"pressure"`
	MoleFrac    map[string]float64 `json:"mole_frac"`
}

// InletSolid describes the solid feed at the top of the bed.
type InletSolid struct {
	FlowMass         float64            `json:"flow_mass"`
	Temperature      float64            `json:"temperature"`
	ParticlePorosity float64            `json:"particle_porosity"`
	MassFrac         map[string]float64 `json:"mass_frac"`
}

// Scenario is one reactor case: geometry, discretization choices and inlet
// conditions. Option fields are plain strings here; the bed package maps
// them onto its typed configuration and rejects unknown values.
type Scenario struct {
	FiniteElements    int       `json:"finite_elements"`
	LengthDomainSet   []float64 `json:"length_domain_set,omitempty"`
	Method            string    `json:"transformation_method"`
	Scheme            string    `json:"transformation_scheme,omitempty"`
	GasScheme         string    `json:"gas_transformation_scheme,omitempty"`
	SolidScheme       string    `json:"solid_transformation_scheme,omitempty"`
	CollocationPoints int       `json:"collocation_points,omitempty"`
	FlowType          string    `json:"flow_type"`
	MaterialBalance   string    `json:"material_balance"`
	EnergyBalance     string    `json:"energy_balance"`
	MomentumBalance   string    `json:"momentum_balance"`
	HasPressureChange bool      `json:"has_pressure_change"`
	PressureDrop      string    `json:"pressure_drop,omitempty"`
	HasHoldup         bool      `json:"has_holdup"`

	BedDiameter float64 `json:"bed_diameter"`
	BedHeight   float64 `json:"bed_height"`

	Gas   InletGas   `json:"gas_inlet"`
	Solid InletSolid `json:"solid_inlet"`
}

// Profiles carries the solved state along the bed, ready for plotting.
// Slices are indexed by axial point, maps by component name.
type Profiles struct {
	Points      []float64            `json:"points"`
	GasFlowMol  []float64            `json:"gas_flow_mol"`
	GasTemp     []float64            `json:"gas_temperature"`
	Pressure    []float64            `json:"pressure"`
	GasVelocity []float64            `json:"gas_velocity"`
	MoleFrac    map[string][]float64 `json:"mole_frac"`
	SolidFlow   []float64            `json:"solid_flow_mass"`
	SolidTemp   []float64            `json:"solid_temperature"`
	MassFrac    map[string][]float64 `json:"mass_frac"`
}

// BuildSummary reports the structural size of a freshly built reactor.
type BuildSummary struct {
	Variables        int `json:"variables"`
	Constraints      int `json:"constraints"`
	DegreesOfFreedom int `json:"degrees_of_freedom"`
}
