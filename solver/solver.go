// Package solver is the nonlinear collaborator of the bed model: a damped
// Newton iteration over the scaled residual system, reporting termination as
// data rather than error. Errors are reserved for structural misuse.
package solver

import (
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"

	"mbr/eqn"
)

// Termination classifies how a solve ended.
type Termination int

const (
	Optimal Termination = iota
	IterationLimit
	Stalled
	Singular
)

func (t Termination) String() string {
	switch t {
	case Optimal:
		return "optimal"
	case IterationLimit:
		return "iteration limit"
	case Stalled:
		return "stalled"
	case Singular:
		return "singular jacobian"
	default:
		return fmt.Sprintf("termination(%d)", int(t))
	}
}

// Options tune one Solve call.
type Options struct {
	// Tolerance on the scaled residual infinity norm. Default 1e-8.
	Tolerance float64
	// MaxIterations before giving up. Default 50.
	MaxIterations int
	// Label names the solve in logs and progress records.
	Label string
	// Hub, when set, receives per-iteration progress records.
	Hub *Hub
}

func (o Options) withDefaults() Options {
	if o.Tolerance <= 0 {
		o.Tolerance = 1e-8
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = 50
	}
	if o.Label == "" {
		o.Label = "solve"
	}
	return o
}

// Result reports the outcome of a Solve.
type Result struct {
	Termination  Termination
	Iterations   int
	ResidualNorm float64
}

func (r Result) IsOptimal() bool { return r.Termination == Optimal }

const (
	fdStep    = 1.4901161193847656e-08 // sqrt of machine epsilon
	minAlpha  = 1.0 / 1024.0
	stepLimit = 100.0 // largest scaled step component taken at full damping
)

// Solve drives the free variables of the active subsystem to a root of the
// scaled residuals. The system must be square; variable values are left at
// the last iterate whatever the termination, so a failed solve can be
// inspected (and a later stage may still recover it).
func Solve(sys *eqn.System, opts Options) (Result, error) {
	opts = opts.withDefaults()

	free := sys.FreeVars()
	cons := sys.ActiveConstraints()
	if len(free) != len(cons) {
		return Result{}, fmt.Errorf("solver: system not square: %d free variables, %d active constraints", len(free), len(cons))
	}
	n := len(free)
	if n == 0 {
		return Result{Termination: Optimal}, nil
	}

	col := make(map[*eqn.Var]int, n)
	for j, v := range free {
		col[v] = j
	}
	// constraints touched by each column, for sparse re-evaluation
	touched := make([][]int, n)
	for i, c := range cons {
		for _, v := range c.Vars() {
			if j, ok := col[v]; ok {
				touched[j] = append(touched[j], i)
			}
		}
	}

	res := make([]float64, n)
	trial := make([]float64, n)
	base := make([]float64, n)
	jac := mat.NewDense(n, n, nil)
	rhs := mat.NewVecDense(n, nil)
	step := mat.NewVecDense(n, nil)

	evalAll := func(dst []float64) {
		for i, c := range cons {
			dst[i] = c.Residual() * c.ScaleFactor()
		}
	}

	evalAll(res)
	norm, merit := norms(res)

	for it := 0; it <= opts.MaxIterations; it++ {
		if math.IsNaN(norm) || math.IsInf(norm, 0) {
			log.WithFields(log.Fields{"label": opts.Label, "iter": it}).Error("residuals not finite")
			return Result{Termination: Stalled, Iterations: it, ResidualNorm: norm}, nil
		}
		if norm <= opts.Tolerance {
			log.WithFields(log.Fields{
				"label": opts.Label, "iters": it, "residual": norm,
			}).Debug("newton converged")
			return Result{Termination: Optimal, Iterations: it, ResidualNorm: norm}, nil
		}
		if it == opts.MaxIterations {
			break
		}

		// finite-difference Jacobian in scaled residual/variable space,
		// re-evaluating only the constraints that depend on each column
		for j, v := range free {
			x := v.Value()
			h := fdStep * math.Max(math.Abs(x), 1.0/v.ScaleFactor())
			v.Set(x + h)
			invSf := 1.0 / v.ScaleFactor()
			for _, i := range touched[j] {
				c := cons[i]
				jac.Set(i, j, (c.Residual()*c.ScaleFactor()-res[i])/h*invSf)
			}
			v.Set(x)
		}

		for i := range res {
			rhs.SetVec(i, -res[i])
		}
		var lu mat.LU
		lu.Factorize(jac)
		if err := lu.SolveVecTo(step, false, rhs); err != nil {
			if c, ok := err.(mat.Condition); !ok || math.IsInf(float64(c), 1) {
				log.WithFields(log.Fields{"label": opts.Label, "iter": it}).Error("jacobian singular")
				return Result{Termination: Singular, Iterations: it, ResidualNorm: norm}, nil
			}
			// near-singular factorization still yields a usable direction
		}

		alpha := 1.0
		if m := mat.Norm(step, math.Inf(1)); m > stepLimit {
			alpha = stepLimit / m
		}
		for j, v := range free {
			base[j] = v.Value()
		}

		accepted := false
		var newNorm, newMerit float64
		for ; alpha >= minAlpha; alpha /= 2 {
			for j, v := range free {
				v.Set(base[j] + alpha*step.AtVec(j)/v.ScaleFactor())
			}
			evalAll(trial)
			newNorm, newMerit = norms(trial)
			if !math.IsNaN(newMerit) && newMerit <= (1.0-1e-4*alpha)*merit {
				accepted = true
				break
			}
		}
		if !accepted {
			for j, v := range free {
				v.Set(base[j])
			}
			log.WithFields(log.Fields{"label": opts.Label, "iter": it, "residual": norm}).Warn("line search stalled")
			return Result{Termination: Stalled, Iterations: it, ResidualNorm: norm}, nil
		}

		copy(res, trial)
		norm, merit = newNorm, newMerit

		log.WithFields(log.Fields{
			"label": opts.Label, "iter": it + 1, "residual": norm, "alpha": alpha,
		}).Debug("newton iteration")
		if opts.Hub != nil {
			opts.Hub.Publish(IterationRecord{
				Label:        opts.Label,
				Iteration:    it + 1,
				ResidualNorm: norm,
				StepSize:     alpha,
			})
		}
	}

	log.WithFields(log.Fields{
		"label": opts.Label, "iters": opts.MaxIterations, "residual": norm,
	}).Warn("newton hit iteration limit")
	return Result{Termination: IterationLimit, Iterations: opts.MaxIterations, ResidualNorm: norm}, nil
}

// norms returns the scaled infinity norm and half squared two-norm.
func norms(r []float64) (float64, float64) {
	inf, merit := 0.0, 0.0
	for _, v := range r {
		if a := math.Abs(v); a > inf {
			inf = a
		}
		merit += 0.5 * v * v
	}
	return inf, merit
}
