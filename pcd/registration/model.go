package registration

import (
	"github.com/seqsense/pcreg/mat"
	"github.com/seqsense/pcreg/pcd/sac"
)

// minSampleSize is the smallest sample which determines a rigid transform.
const minSampleSize = 3

type transformModel struct {
	set       CorrespondenceSet
	estimator Estimator
}

func (transformModel) NumRange() (min, max int) {
	return minSampleSize, -1
}

func (m *transformModel) Len() int {
	return m.set.Len()
}

func (m *transformModel) Fit(ids []int) (sac.ModelCoefficients, error) {
	sub := m.set.Subset(ids)
	trans, err := m.estimator.Estimate(sub.Moving, sub.Reference)
	if err != nil {
		return nil, err
	}
	return &transformCoefficients{set: m.set, trans: trans}, nil
}

type transformCoefficients struct {
	set   CorrespondenceSet
	trans mat.Mat4
}

func (c *transformCoefficients) Inliers(d float64) []int {
	n := c.set.Len()
	out := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if c.set.Residual(i, c.trans) < d {
			out = append(out, i)
		}
	}
	return out
}

func (c *transformCoefficients) Transform() mat.Mat4 {
	return c.trans
}
