// Package eqn is the algebraic layer the reactor model is assembled on:
// scalar variables, residual constraints with declared dependencies, and the
// bookkeeping (activity, fixing, scale factors, degrees of freedom) a staged
// nonlinear solve needs. A system is single-writer; instances share nothing.
package eqn

import "fmt"

// Var is one scalar quantity of a System. A fixed Var keeps its value during
// solves and does not count toward the degrees of freedom.
type Var struct {
	name  string
	value float64
	fixed bool
	scale float64
}

func (v *Var) Name() string   { return v.name }
func (v *Var) Value() float64 { return v.value }
func (v *Var) Fixed() bool    { return v.fixed }

// Set assigns the current value.
func (v *Var) Set(x float64) { v.value = x }

// Fix pins the variable at its current value.
func (v *Var) Fix() { v.fixed = true }

// FixAt sets the value and pins it.
func (v *Var) FixAt(x float64) {
	v.value = x
	v.fixed = true
}

// Free releases a fixed variable.
func (v *Var) Free() { v.fixed = false }

// ScaleFactor is the multiplier that brings the variable to order one.
func (v *Var) ScaleFactor() float64 { return v.scale }

func (v *Var) SetScaleFactor(sf float64) {
	if sf <= 0 {
		panic(fmt.Sprintf("eqn: non-positive scale factor %g for %s", sf, v.name))
	}
	v.scale = sf
}
