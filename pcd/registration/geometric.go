package registration

import (
	"fmt"

	gomat "gonum.org/v1/gonum/mat"

	"github.com/seqsense/pcreg/mat"
	"github.com/seqsense/pcreg/pcd"
)

const defaultRankTolerance = 1e-12

// Geometric estimates the rigid transform from a linear system in the
// Cayley parameters of the rotation.
//
// Each pair (p, q) gives q-p = v×(p+q) + t' where v is the rotation vector and
// t' = (I-[v]×)t. The 3N×6 system is solved in least squares and the rotation
// is recovered as R = (I-[v]×)^-1 (I+[v]×). The parametrization diverges
// as the rotation approaches a half turn.
type Geometric struct {
	// RankTolerance is the relative singular value threshold to decide the rank.
	// Zero uses 1e-12.
	RankTolerance float64
	// MinRank rejects systems with lower rank. Rank deficient systems above it
	// are solved with the minimum norm solution. The translation columns make
	// the rank at least 3 for any input, so with the zero value collinear or
	// coincident samples give a minimum norm transform instead of an error.
	// Set 6 to reject them.
	MinRank int
}

func (g Geometric) Estimate(from, to pcd.Vec3RandomAccessor) (mat.Mat4, error) {
	n, err := checkPairs(from, to)
	if err != nil {
		return mat.Mat4{}, err
	}

	a := gomat.NewDense(3*n, 6, nil)
	b := gomat.NewVecDense(3*n, nil)
	for i := 0; i < n; i++ {
		p, q := from.Vec3At(i), to.Vec3At(i)
		s := p.Add(q)
		r := 3 * i
		a.Set(r, 1, s[2])
		a.Set(r, 2, -s[1])
		a.Set(r, 3, 1)
		a.Set(r+1, 0, -s[2])
		a.Set(r+1, 2, s[0])
		a.Set(r+1, 4, 1)
		a.Set(r+2, 0, s[1])
		a.Set(r+2, 1, -s[0])
		a.Set(r+2, 5, 1)
		b.SetVec(r, q[0]-p[0])
		b.SetVec(r+1, q[1]-p[1])
		b.SetVec(r+2, q[2]-p[2])
	}

	var svd gomat.SVD
	if ok := svd.Factorize(a, gomat.SVDThin); !ok {
		return mat.Mat4{}, fmt.Errorf("%w: SVD factorization failed", ErrSingularLinearSystem)
	}
	rcond := g.RankTolerance
	if rcond <= 0 {
		rcond = defaultRankTolerance
	}
	rank := svd.Rank(rcond)
	if rank == 0 || rank < g.MinRank {
		return mat.Mat4{}, fmt.Errorf("%w: rank %d", ErrSingularLinearSystem, rank)
	}
	var x gomat.VecDense
	svd.SolveVecTo(&x, b, rank)
	rx, ry, rz := x.AtVec(0), x.AtVec(1), x.AtVec(2)
	iMinusV := gomat.NewDense(3, 3, []float64{
		1, rz, -ry,
		-rz, 1, rx,
		ry, -rx, 1,
	})
	iPlusV := gomat.NewDense(3, 3, []float64{
		1, -rz, ry,
		rz, 1, -rx,
		-ry, rx, 1,
	})
	var inv gomat.Dense
	if err := inv.Inverse(iMinusV); err != nil {
		return mat.Mat4{}, fmt.Errorf("%w: %v", ErrSingularLinearSystem, err)
	}
	var rot gomat.Dense
	rot.Mul(&inv, iPlusV)
	var t gomat.VecDense
	t.MulVec(&inv, gomat.NewVecDense(3, []float64{x.AtVec(3), x.AtVec(4), x.AtVec(5)}))

	var r [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = rot.At(i, j)
		}
	}
	trans := mat.Rigid(r, mat.Vec3{t.AtVec(0), t.AtVec(1), t.AtVec(2)})
	if !trans.IsFinite() {
		return mat.Mat4{}, fmt.Errorf("%w: non-finite solution", ErrSingularLinearSystem)
	}
	return trans, nil
}
