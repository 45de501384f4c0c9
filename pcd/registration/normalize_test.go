package registration

import (
	"errors"
	"math"
	"testing"

	"github.com/seqsense/pcreg/mat"
	"github.com/seqsense/pcreg/pcd"
)

func TestNormalize(t *testing.T) {
	in := pcd.Vec3Slice{
		{10, 0, 0}, {12, 0, 0}, {10, 4, 0}, {10, 0, 6}, {11, 1, 1},
	}
	out, cond, err := Normalize(in)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	c, err := pcd.Centroid(out)
	if err != nil {
		t.Fatal(err)
	}
	if !c.NearEqual(mat.Vec3{}, 1e-9) {
		t.Errorf("Expected centroid at origin, got %v", c)
	}
	var sum float64
	for _, p := range out {
		sum += p.Norm()
	}
	if mean := sum / float64(len(out)); math.Abs(mean-math.Sqrt(3)) > 1e-9 {
		t.Errorf("Expected mean distance %g, got %g", math.Sqrt(3), mean)
	}
	for i := range in {
		if p := cond.TransformAffine(in[i]); !p.NearEqual(out[i], 1e-9) {
			t.Errorf("Conditioning transform maps %v to %v, expected %v", in[i], p, out[i])
		}
	}
}

func TestNormalize_Errors(t *testing.T) {
	testCases := map[string]struct {
		in  pcd.Vec3Slice
		err error
	}{
		"Empty": {
			in:  pcd.Vec3Slice{},
			err: pcd.ErrEmptyInput,
		},
		"Coincident": {
			in:  pcd.Vec3Slice{{1, 2, 3}, {1, 2, 3}},
			err: ErrDegenerateSample,
		},
	}
	for name, tt := range testCases {
		tt := tt
		t.Run(name, func(t *testing.T) {
			if _, _, err := Normalize(tt.in); !errors.Is(err, tt.err) {
				t.Errorf("Expected error %v, got %v", tt.err, err)
			}
		})
	}
}

func TestUnnormalize(t *testing.T) {
	ref := pcd.Vec3Slice{{3, 1, 0}, {5, 2, 1}, {4, 4, 2}, {6, 0, 3}}
	trans := mat.Translate(1, 2, -1).MulAffine(mat.Rotate(0, 1, 1, 0.4))
	moving := pcd.Transform(ref, trans.InvAffine())

	refN, cond, err := Normalize(ref)
	if err != nil {
		t.Fatal(err)
	}
	movingN := pcd.Transform(moving, cond)

	est, err := SVD{}.Estimate(movingN, refN)
	if err != nil {
		t.Fatal(err)
	}
	if got := Unnormalize(est, cond, cond); !got.NearEqual(trans, 1e-9) {
		t.Errorf("Expected transform:\n%v\ngot:\n%v", trans, got)
	}
}
