// Package grid builds the normalized axial domain of the bed. Both phases own
// their own Domain; the point sets must match even though the objects never do.
package grid

import (
	"errors"
	"fmt"
)

var (
	ErrElementCount = errors.New("grid: finite element count must be positive")
	ErrPointSet     = errors.New("grid: explicit point set must be strictly increasing and span [0,1]")
	ErrCollocation  = errors.New("grid: collocation order must be between 1 and 5")
)

// Domain is an ordered, strictly increasing set of positions in [0,1].
type Domain struct {
	points []float64
}

// Uniform builds a domain of nfe equal elements, nfe+1 points.
func Uniform(nfe int) (*Domain, error) {
	if nfe < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrElementCount, nfe)
	}
	points := make([]float64, nfe+1)
	for i := 1; i < nfe; i++ {
		points[i] = float64(i) / float64(nfe)
	}
	points[nfe] = 1.0
	return &Domain{points: points}, nil
}

// FromPoints builds a domain from an explicit point set. The set must be
// strictly increasing and include both endpoints exactly.
func FromPoints(points []float64) (*Domain, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 points, got %d", ErrPointSet, len(points))
	}
	if points[0] != 0.0 || points[len(points)-1] != 1.0 {
		return nil, fmt.Errorf("%w: endpoints are [%g, %g]", ErrPointSet, points[0], points[len(points)-1])
	}
	for i := 1; i < len(points); i++ {
		if points[i] <= points[i-1] {
			return nil, fmt.Errorf("%w: points[%d]=%g <= points[%d]=%g", ErrPointSet, i, points[i], i-1, points[i-1])
		}
	}
	cp := make([]float64, len(points))
	copy(cp, points)
	return &Domain{points: cp}, nil
}

// WithCollocation builds a domain of nfe uniform elements with ncp Radau
// points each: nfe*ncp+1 points, element boundaries included (the Radau set
// is right-biased and contains the element's right endpoint).
func WithCollocation(nfe, ncp int) (*Domain, error) {
	if nfe < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrElementCount, nfe)
	}
	boundaries := make([]float64, nfe+1)
	for i := 1; i < nfe; i++ {
		boundaries[i] = float64(i) / float64(nfe)
	}
	boundaries[nfe] = 1.0
	return CollocateElements(boundaries, ncp)
}

// CollocateElements inserts ncp Radau points into every element defined by
// the given boundary set, which must satisfy the FromPoints rules.
func CollocateElements(boundaries []float64, ncp int) (*Domain, error) {
	roots, err := RadauRoots(ncp)
	if err != nil {
		return nil, err
	}
	bd, err := FromPoints(boundaries)
	if err != nil {
		return nil, err
	}
	nfe := bd.Len() - 1
	points := make([]float64, 0, nfe*ncp+1)
	points = append(points, 0.0)
	for e := 0; e < nfe; e++ {
		left, h := bd.At(e), bd.At(e+1)-bd.At(e)
		for _, c := range roots {
			points = append(points, left+c*h)
		}
		// keep element boundaries exact
		points[len(points)-1] = bd.At(e + 1)
	}
	return &Domain{points: points}, nil
}

// Len is the number of points.
func (d *Domain) Len() int { return len(d.points) }

// At returns the position of point i.
func (d *Domain) At(i int) float64 { return d.points[i] }

// First and Last are the boundary point indices.
func (d *Domain) First() int { return 0 }
func (d *Domain) Last() int  { return len(d.points) - 1 }

// Next returns the index after i, ok=false at the last point.
func (d *Domain) Next(i int) (int, bool) {
	if i >= d.Last() {
		return i, false
	}
	return i + 1, true
}

// Prev returns the index before i, ok=false at the first point.
func (d *Domain) Prev(i int) (int, bool) {
	if i <= 0 {
		return i, false
	}
	return i - 1, true
}

// Points returns a copy of the point set.
func (d *Domain) Points() []float64 {
	cp := make([]float64, len(d.points))
	copy(cp, d.points)
	return cp
}

// SamePoints reports whether two domains hold identical point sets.
// Domains are built deterministically, so exact comparison is intended.
func (d *Domain) SamePoints(o *Domain) bool {
	if o == nil || len(d.points) != len(o.points) {
		return false
	}
	for i, p := range d.points {
		if o.points[i] != p {
			return false
		}
	}
	return true
}
