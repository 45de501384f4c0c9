package registration

import (
	"fmt"

	gomat "gonum.org/v1/gonum/mat"

	"github.com/seqsense/pcreg/mat"
	"github.com/seqsense/pcreg/pcd"
)

// degenerateTolerance is the ratio of the second to the first singular value
// of the cross-covariance below which the points are treated as collinear.
const degenerateTolerance = 1e-10

// SVD estimates the rigid transform in closed form (orthogonal Procrustes).
// The result is exact for any rotation on noiseless input.
type SVD struct{}

func (e SVD) Estimate(from, to pcd.Vec3RandomAccessor) (mat.Mat4, error) {
	return e.EstimateWeighted(from, to, nil)
}

// EstimateWeighted minimizes sum of weights[i]*|R*from[i]+t-to[i]|^2.
// nil weights means all ones.
func (SVD) EstimateWeighted(from, to pcd.Vec3RandomAccessor, weights []float64) (mat.Mat4, error) {
	n, err := checkPairs(from, to)
	if err != nil {
		return mat.Mat4{}, err
	}
	if weights != nil && len(weights) != n {
		return mat.Mat4{}, fmt.Errorf("%w: %d pairs, %d weights", ErrSizeMismatch, n, len(weights))
	}
	if n < 3 {
		return mat.Mat4{}, fmt.Errorf("%w: %d pairs", ErrDegenerateSample, n)
	}
	weight := func(i int) float64 {
		if weights == nil {
			return 1
		}
		return weights[i]
	}

	var cFrom, cTo mat.Vec3
	var wSum float64
	for i := 0; i < n; i++ {
		w := weight(i)
		if w < 0 {
			return mat.Mat4{}, fmt.Errorf("%w: negative weight %g", ErrDegenerateSample, w)
		}
		wSum += w
		cFrom = cFrom.Add(from.Vec3At(i).Mul(w))
		cTo = cTo.Add(to.Vec3At(i).Mul(w))
	}
	if !(wSum > 0) {
		return mat.Mat4{}, fmt.Errorf("%w: zero total weight", ErrDegenerateSample)
	}
	cFrom, cTo = cFrom.Mul(1/wSum), cTo.Mul(1/wSum)

	// Cross-covariance
	h := gomat.NewDense(3, 3, nil)
	for i := 0; i < n; i++ {
		w := weight(i)
		a, b := from.Vec3At(i).Sub(cFrom), to.Vec3At(i).Sub(cTo)
		for r := 0; r < 3; r++ {
			for c := 0; c < 3; c++ {
				h.Set(r, c, h.At(r, c)+w*a[r]*b[c])
			}
		}
	}

	var svd gomat.SVD
	if ok := svd.Factorize(h, gomat.SVDFull); !ok {
		return mat.Mat4{}, fmt.Errorf("%w: SVD factorization failed", ErrSingularLinearSystem)
	}
	s := svd.Values(nil)
	if !(s[0] > 0) || s[1] <= degenerateTolerance*s[0] {
		return mat.Mat4{}, fmt.Errorf("%w: collinear or coincident points", ErrDegenerateSample)
	}
	var u, v gomat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	// Flip the axis of the smallest singular value on reflection.
	var vut gomat.Dense
	vut.Mul(&v, u.T())
	d := gomat.NewDiagDense(3, []float64{1, 1, 1})
	if gomat.Det(&vut) < 0 {
		d.SetDiag(2, -1)
	}
	var vd, rot gomat.Dense
	vd.Mul(&v, d)
	rot.Mul(&vd, u.T())

	var r [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = rot.At(i, j)
		}
	}
	trans := mat.Rigid(r, mat.Vec3{})
	t := cTo.Sub(trans.TransformAffine(cFrom))
	return mat.Rigid(r, t), nil
}
