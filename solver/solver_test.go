package solver

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mbr/eqn"
)

func TestSolveLinear(t *testing.T) {
	s := eqn.NewSystem()
	x := s.NewVar("x", 0)
	y := s.NewVar("y", 0)
	s.AddConstraint("sum", func() float64 { return x.Value() + y.Value() - 3 }, x, y)
	s.AddConstraint("diff", func() float64 { return x.Value() - y.Value() - 1 }, x, y)

	res, err := Solve(s, Options{Tolerance: 1e-10})
	require.NoError(t, err)
	require.True(t, res.IsOptimal(), "termination: %s", res.Termination)
	assert.InDelta(t, 2.0, x.Value(), 1e-9)
	assert.InDelta(t, 1.0, y.Value(), 1e-9)
	assert.LessOrEqual(t, res.Iterations, 3)
}

func TestSolveNonlinear(t *testing.T) {
	s := eqn.NewSystem()
	x := s.NewVar("x", 4)
	y := s.NewVar("y", 4)
	s.AddConstraint("circle", func() float64 { return x.Value()*x.Value() + y.Value()*y.Value() - 25 }, x, y)
	s.AddConstraint("line", func() float64 { return x.Value() - y.Value() - 1 }, x, y)

	res, err := Solve(s, Options{Tolerance: 1e-10, Label: "circle"})
	require.NoError(t, err)
	require.True(t, res.IsOptimal())
	assert.InDelta(t, 4.0, x.Value(), 1e-8)
	assert.InDelta(t, 3.0, y.Value(), 1e-8)
}

func TestSolveRespectsFixedVars(t *testing.T) {
	s := eqn.NewSystem()
	x := s.NewVar("x", 1)
	y := s.NewVar("y", 1)
	x.FixAt(5)
	s.AddConstraint("rel", func() float64 { return y.Value() - 2*x.Value() }, x, y)

	res, err := Solve(s, Options{})
	require.NoError(t, err)
	require.True(t, res.IsOptimal())
	assert.Equal(t, 5.0, x.Value())
	assert.InDelta(t, 10.0, y.Value(), 1e-8)
}

func TestSolveBadlyScaledSystem(t *testing.T) {
	s := eqn.NewSystem()
	p := s.NewVar("pressure", 1.5e5)
	temp := s.NewVar("temperature", 900)
	p.SetScaleFactor(1e-5)
	temp.SetScaleFactor(1e-2)

	cp := s.AddConstraint("p_eq", func() float64 { return p.Value() - 2.0e5 }, p)
	cp.SetScaleFactor(1e-5)
	ct := s.AddConstraint("t_eq", func() float64 { return 1e4 * (temp.Value() - 1183.15) }, temp)
	ct.SetScaleFactor(1e-4)

	res, err := Solve(s, Options{Tolerance: 1e-9})
	require.NoError(t, err)
	require.True(t, res.IsOptimal())
	assert.InDelta(t, 2.0e5, p.Value(), 1e-3)
	assert.InDelta(t, 1183.15, temp.Value(), 1e-6)
}

func TestSolveNotSquare(t *testing.T) {
	s := eqn.NewSystem()
	x := s.NewVar("x", 0)
	s.NewVar("y", 0)
	s.AddConstraint("only", func() float64 { return x.Value() }, x)

	_, err := Solve(s, Options{})
	assert.Error(t, err)
}

func TestSolveSingular(t *testing.T) {
	s := eqn.NewSystem()
	x := s.NewVar("x", 1)
	y := s.NewVar("y", 1)
	s.AddConstraint("a", func() float64 { return x.Value() + y.Value() - 1 }, x, y)
	s.AddConstraint("b", func() float64 { return 2*x.Value() + 2*y.Value() - 2 }, x, y)

	res, err := Solve(s, Options{})
	require.NoError(t, err)
	assert.Equal(t, Singular, res.Termination)
}

func TestSolveNoRoot(t *testing.T) {
	s := eqn.NewSystem()
	x := s.NewVar("x", 1)
	s.AddConstraint("impossible", func() float64 { return x.Value()*x.Value() + 1 }, x)

	res, err := Solve(s, Options{MaxIterations: 25})
	require.NoError(t, err)
	assert.False(t, res.IsOptimal())
}

func TestSolveAlreadyConverged(t *testing.T) {
	s := eqn.NewSystem()
	x := s.NewVar("x", 2)
	s.AddConstraint("done", func() float64 { return x.Value() - 2 }, x)

	res, err := Solve(s, Options{})
	require.NoError(t, err)
	assert.True(t, res.IsOptimal())
	assert.Equal(t, 0, res.Iterations)
}

func TestSolveEmptySystem(t *testing.T) {
	s := eqn.NewSystem()
	v := s.NewVar("x", 1)
	v.Fix()

	res, err := Solve(s, Options{})
	require.NoError(t, err)
	assert.True(t, res.IsOptimal())
}

func TestHubReceivesProgress(t *testing.T) {
	s := eqn.NewSystem()
	x := s.NewVar("x", 4)
	s.AddConstraint("sqrt", func() float64 { return x.Value()*x.Value() - 2 }, x)

	hub := NewHub(64)
	res, err := Solve(s, Options{Tolerance: 1e-12, Hub: hub, Label: "sqrt2"})
	require.NoError(t, err)
	require.True(t, res.IsOptimal())
	hub.Close()

	count := 0
	last := IterationRecord{}
	for rec := range hub.Records {
		assert.Equal(t, "sqrt2", rec.Label)
		last = rec
		count++
	}
	assert.Greater(t, count, 0)
	assert.Equal(t, count, last.Iteration)
	assert.LessOrEqual(t, last.ResidualNorm, 1e-12)
}

// BenchmarkSolveChain exercises the sparse Jacobian path on a banded
// nonlinear system shaped like a discretized balance set.
func BenchmarkSolveChain(b *testing.B) {
	const n = 200
	s := eqn.NewSystem()
	vars := make([]*eqn.Var, n)
	for i := 0; i < n; i++ {
		vars[i] = s.NewVar(fmt.Sprintf("x[%d]", i), 0)
	}
	vars[0].FixAt(1)
	for i := 1; i < n; i++ {
		prev, cur := vars[i-1], vars[i]
		s.AddConstraint(fmt.Sprintf("chain[%d]", i), func() float64 {
			return cur.Value() - 0.5*prev.Value() - 0.1*cur.Value()*cur.Value()
		}, prev, cur)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, v := range vars[1:] {
			v.Set(0)
		}
		if _, err := Solve(s, Options{Tolerance: 1e-10}); err != nil {
			b.Fatal(err)
		}
	}
}

func TestTerminationString(t *testing.T) {
	assert.Equal(t, "optimal", Optimal.String())
	assert.Equal(t, "iteration limit", IterationLimit.String())
	assert.Equal(t, "stalled", Stalled.String())
	assert.Equal(t, "singular jacobian", Singular.String())
}
