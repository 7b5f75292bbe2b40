package eqn

import "fmt"

// System owns the variables and constraints of one reactor instance.
// It is not safe for concurrent use; one goroutine builds and solves.
type System struct {
	vars []*Var
	cons []*Constraint

	varIndex map[string]*Var
	conIndex map[string]*Constraint
}

func NewSystem() *System {
	return &System{
		varIndex: make(map[string]*Var),
		conIndex: make(map[string]*Constraint),
	}
}

// NewVar registers a variable. Names are unique; a duplicate is a
// construction bug and panics.
func (s *System) NewVar(name string, initial float64) *Var {
	if _, ok := s.varIndex[name]; ok {
		panic(fmt.Sprintf("eqn: duplicate variable %q", name))
	}
	v := &Var{name: name, value: initial, scale: 1.0}
	s.vars = append(s.vars, v)
	s.varIndex[name] = v
	return v
}

// AddConstraint registers an active residual equation with its dependencies.
func (s *System) AddConstraint(name string, fn func() float64, deps ...*Var) *Constraint {
	if _, ok := s.conIndex[name]; ok {
		panic(fmt.Sprintf("eqn: duplicate constraint %q", name))
	}
	c := &Constraint{name: name, fn: fn, deps: deps, active: true, scale: 1.0}
	s.cons = append(s.cons, c)
	s.conIndex[name] = c
	return c
}

// Var looks a variable up by name, nil when absent.
func (s *System) Var(name string) *Var { return s.varIndex[name] }

// Constraint looks a constraint up by name, nil when absent.
func (s *System) Constraint(name string) *Constraint { return s.conIndex[name] }

// Vars returns all variables in registration order.
// Callers must not modify the returned slice.
func (s *System) Vars() []*Var { return s.vars }

// Constraints returns all constraints in registration order.
// Callers must not modify the returned slice.
func (s *System) Constraints() []*Constraint { return s.cons }

// FreeVars returns the unfixed variables in registration order.
func (s *System) FreeVars() []*Var {
	free := make([]*Var, 0, len(s.vars))
	for _, v := range s.vars {
		if !v.fixed {
			free = append(free, v)
		}
	}
	return free
}

// ActiveConstraints returns the active constraints in registration order.
func (s *System) ActiveConstraints() []*Constraint {
	act := make([]*Constraint, 0, len(s.cons))
	for _, c := range s.cons {
		if c.active {
			act = append(act, c)
		}
	}
	return act
}

// DegreesOfFreedom is free variables minus active constraints. A well-posed
// solve requires zero.
func (s *System) DegreesOfFreedom() int {
	return len(s.FreeVars()) - len(s.ActiveConstraints())
}
