package eqn

// Constraint is a residual equation f(vars) = 0. The dependency list names
// every variable the residual reads; the Jacobian layer perturbs only those.
type Constraint struct {
	name   string
	fn     func() float64
	deps   []*Var
	active bool
	scale  float64
}

func (c *Constraint) Name() string { return c.name }

// Residual evaluates the equation at the current variable values.
func (c *Constraint) Residual() float64 { return c.fn() }

// Vars returns the declared dependencies, fixed variables included.
// Callers must not modify the returned slice.
func (c *Constraint) Vars() []*Var { return c.deps }

// Active constraints participate in solves; deactivated ones are kept but
// ignored, which is how reduced initialization models are expressed.
func (c *Constraint) Active() bool { return c.active }
func (c *Constraint) Activate()   { c.active = true }
func (c *Constraint) Deactivate() { c.active = false }

func (c *Constraint) ScaleFactor() float64 { return c.scale }

func (c *Constraint) SetScaleFactor(sf float64) {
	if sf <= 0 {
		panic("eqn: non-positive constraint scale factor for " + c.name)
	}
	c.scale = sf
}
