package mads

import "gonum.org/v1/gonum/mat"

// OrthonormalBasis builds an n-by-n orthonormal basis whose first
// column is (proportional to) dir, by QR-factorizing a matrix with dir
// as its leading column and the standard basis vectors filling the
// rest (spec 4.1 Numeric primitives: "QR factorization"; spec 4.5
// Poll, Orthogonal-2n: "build an orthonormal basis Q ... by QR on a
// matrix whose first column is that direction").
//
// Baaaaam-optim's mesh packages used gonum/matrix/mat64 (the predecessor
// of gonum.org/v1/gonum/mat) for the analogous rotation/inverse basis
// work in mesh.Infinite and mesh.SimpleMesh.
func OrthonormalBasis(dir []float64) [][]float64 {
	n := len(dir)
	data := make([]float64, n*n)
	for i := 0; i < n; i++ {
		data[i*n] = dir[i]
	}
	for col := 1; col < n; col++ {
		data[(col-1)*n+col] = 1
	}
	m := mat.NewDense(n, n, data)

	var qr mat.QR
	qr.Factorize(m)

	var q mat.Dense
	qr.QTo(&q)

	cols := make([][]float64, n)
	for c := 0; c < n; c++ {
		col := make([]float64, n)
		for r := 0; r < n; r++ {
			col[r] = q.At(r, c)
		}
		cols[c] = col
	}
	// Orient the first column to point the same way as dir so callers
	// that scale by Delta get a direction, not its negation.
	if dot(cols[0], dir) < 0 {
		for i := range cols[0] {
			cols[0][i] = -cols[0][i]
		}
	}
	return cols
}

func dot(a, b []float64) float64 {
	tot := 0.0
	for i := range a {
		tot += a[i] * b[i]
	}
	return tot
}
