package mpm

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// jacobian assembles J[a][b] = Σ_i dN_i/dξ_a · x_i[b], i.e. ∂x_b/∂ξ_a.
func jacobian(dNdxi [][]float64, coords [][]float64, dim int) *mat.Dense {
	jac := mat.NewDense(dim, dim, nil)
	for a := 0; a < dim; a++ {
		for b := 0; b < dim; b++ {
			s := 0.0
			for i := range dNdxi {
				s += dNdxi[i][a] * coords[i][b]
			}
			jac.Set(a, b, s)
		}
	}
	return jac
}

// invertJacobian returns J⁻¹ and det J. |det J| below MinDet is an error.
func invertJacobian(jac *mat.Dense) (*mat.Dense, float64, error) {
	det := mat.Det(jac)
	if math.IsNaN(det) || math.Abs(det) < MinDet {
		return nil, det, fmt.Errorf("%w: det = %g", ErrSingularJacobian, det)
	}

	var inv mat.Dense
	if err := inv.Inverse(jac); err != nil {
		return nil, det, fmt.Errorf("%w: %v", ErrSingularJacobian, err)
	}
	return &inv, det, nil
}

// physicalGrad evaluates ∂N_i/∂x at natural coordinate xi for an element
// with node coordinates coords:
//
//	dN/dξ from the topology, J = dN/dξᵀ·X, G = dN/dξ·J⁻ᵀ
func physicalGrad(topo Topology, xi []float64, coords [][]float64) ([][]float64, error) {
	npe, dim := topo.NodesPerElement(), topo.Dim()
	if len(xi) != dim {
		return nil, configErrorf("natural coordinate has %d components, expected %d", len(xi), dim)
	}
	if len(coords) != npe {
		return nil, configErrorf("got %d node coordinates, expected %d", len(coords), npe)
	}

	dN := make([][]float64, npe)
	flat := make([]float64, npe*dim)
	for i := range dN {
		dN[i] = flat[i*dim : (i+1)*dim]
	}
	topo.ShapeFnNaturalGrad(xi, dN)

	inv, _, err := invertJacobian(jacobian(dN, coords, dim))
	if err != nil {
		return nil, err
	}

	var g mat.Dense
	g.Mul(mat.NewDense(npe, dim, flat), inv.T())

	grad := make([][]float64, npe)
	for i := range grad {
		grad[i] = mat.Row(nil, i, &g)
	}
	return grad, nil
}
