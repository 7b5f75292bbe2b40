package grid

import "fmt"

// Radau IIA abscissae on (0,1], right endpoint included. The right-biased set
// keeps the element boundary in the point set, so element chains share points.
var radauRoots = map[int][]float64{
	1: {1.0},
	2: {1.0 / 3.0, 1.0},
	3: {0.155051025721682, 0.644948974278318, 1.0},
	4: {0.088587959512704, 0.409466864440735, 0.787659461760847, 1.0},
	5: {0.057104196114518, 0.276843013638124, 0.583590432368917, 0.860240135656219, 1.0},
}

// RadauRoots returns the collocation abscissae for order ncp.
func RadauRoots(ncp int) ([]float64, error) {
	roots, ok := radauRoots[ncp]
	if !ok {
		return nil, fmt.Errorf("%w: got %d", ErrCollocation, ncp)
	}
	cp := make([]float64, len(roots))
	copy(cp, roots)
	return cp, nil
}

// RadauDerivativeMatrix returns D with D[k][j] = l'_j(c_k) on the local
// element [0,1], where the ncp+1 local nodes are {0, c_1..c_ncp} and k runs
// over the collocation points c_1..c_ncp. A derivative at a collocation point
// is the weighted sum over all local nodes: df/dx(c_k) = sum_j D[k][j]*f(x_j)/h.
func RadauDerivativeMatrix(ncp int) ([][]float64, error) {
	roots, err := RadauRoots(ncp)
	if err != nil {
		return nil, err
	}
	nodes := make([]float64, 0, ncp+1)
	nodes = append(nodes, 0.0)
	nodes = append(nodes, roots...)

	d := make([][]float64, ncp)
	for k := 0; k < ncp; k++ {
		d[k] = make([]float64, ncp+1)
		for j := range nodes {
			d[k][j] = lagrangeDeriv(nodes, j, k+1)
		}
	}
	return d, nil
}

// lagrangeDeriv evaluates the derivative of Lagrange basis polynomial j at
// node k, both indices into nodes.
func lagrangeDeriv(nodes []float64, j, k int) float64 {
	if j == k {
		sum := 0.0
		for n := range nodes {
			if n != j {
				sum += 1.0 / (nodes[j] - nodes[n])
			}
		}
		return sum
	}
	num := 1.0
	for n := range nodes {
		if n != j && n != k {
			num *= nodes[k] - nodes[n]
		}
	}
	den := 1.0
	for n := range nodes {
		if n != j {
			den *= nodes[j] - nodes[n]
		}
	}
	return num / den
}
