package bed

import (
	"fmt"

	"mbr/eqn"
	"mbr/grid"
)

// phase owns one side of the bed: its domain view, state variables, flow
// terms, derivatives and every constraint written against them. Slices
// indexed by axial point use nil entries where a variable or equation does
// not exist at that point.
type phase struct {
	name   string
	domain *grid.Domain
	comps  []string

	// downstreamIncreasing is true when the phase flows toward x = 1.
	downstreamIncreasing bool
	scheme               Scheme
	inletIdx             int
	outletIdx            int

	flow  []*eqn.Var
	frac  [][]*eqn.Var
	temp  []*eqn.Var
	press []*eqn.Var
	poros []*eqn.Var

	flux      [][]*eqn.Var
	fluxDeriv [][]*eqn.Var
	enthFlux  []*eqn.Var
	enthDeriv []*eqn.Var

	pressDeriv []*eqn.Var

	matHoldup    [][]*eqn.Var
	energyHoldup []*eqn.Var

	fluxDefCons    [][]*eqn.Constraint
	enthFluxCons   []*eqn.Constraint
	sumCons        []*eqn.Constraint
	discCons       [][]*eqn.Constraint
	enthDiscCons   []*eqn.Constraint
	pressDiscCons  []*eqn.Constraint
	matBalCons     [][]*eqn.Constraint
	energyBalCons  []*eqn.Constraint
	pressCorrCons  []*eqn.Constraint
	isothermalCons []*eqn.Constraint
	isobaricCons   []*eqn.Constraint
	porosityCons   []*eqn.Constraint
	frozenCons     [][]*eqn.Constraint
	velCons        []*eqn.Constraint
	matHoldupCons  [][]*eqn.Constraint
	enerHoldupCons []*eqn.Constraint

	// allVars and allCons collect everything this phase owns, in creation
	// order, for the staged initialization to fix and deactivate wholesale.
	allVars []*eqn.Var
	allCons []*eqn.Constraint

	scratch []float64
}

func newPhase(name string, domain *grid.Domain, comps []string, downstreamIncreasing bool, scheme Scheme) *phase {
	p := &phase{
		name:                 name,
		domain:               domain,
		comps:                comps,
		downstreamIncreasing: downstreamIncreasing,
		scheme:               scheme,
		scratch:              make([]float64, len(comps)),
	}
	if downstreamIncreasing {
		p.inletIdx, p.outletIdx = domain.First(), domain.Last()
	} else {
		p.inletIdx, p.outletIdx = domain.Last(), domain.First()
	}
	return p
}

func (p *phase) n() int { return p.domain.Len() }

// upstream returns the neighbor the flow arrives from.
func (p *phase) upstream(i int) (int, bool) {
	if p.downstreamIncreasing {
		return p.domain.Prev(i)
	}
	return p.domain.Next(i)
}

// excludedIdx is the single boundary point that carries no derivative. A
// backward difference cannot be written at the first point and a forward
// difference cannot be written at the last; collocation always frees the
// left boundary.
func (p *phase) excludedIdx() int {
	if p.scheme == Forward {
		return p.domain.Last()
	}
	return p.domain.First()
}

func (p *phase) hasDeriv(i int) bool { return i != p.excludedIdx() }

// rowNames labels the material flow term rows: one per component, or a
// single total row.
func (p *phase) rowNames(mb MaterialBalanceType) []string {
	if mb == MaterialBalanceTotal {
		return []string{"total"}
	}
	return p.comps
}

// composition fills the phase scratch slice with the fractions at point i.
// The slice is reused across calls; the model is single threaded.
func (p *phase) composition(i int) []float64 {
	for c := range p.frac {
		p.scratch[c] = p.frac[c][i].Value()
	}
	return p.scratch
}

// addVar registers a variable in the system and records phase ownership.
func (p *phase) addVar(sys *eqn.System, name string, initial float64) *eqn.Var {
	v := sys.NewVar(name, initial)
	p.allVars = append(p.allVars, v)
	return v
}

// addCon registers a constraint and records phase ownership.
func (p *phase) addCon(sys *eqn.System, name string, fn func() float64, deps ...*eqn.Var) *eqn.Constraint {
	c := sys.AddConstraint(name, fn, deps...)
	p.allCons = append(p.allCons, c)
	return c
}

func (p *phase) varName(family string, i int) string {
	return fmt.Sprintf("%s_%s[%d]", p.name, family, i)
}

func (p *phase) compVarName(family, comp string, i int) string {
	return fmt.Sprintf("%s_%s[%s][%d]", p.name, family, comp, i)
}
