package pcd

import (
	"errors"
	"testing"

	"github.com/seqsense/pcreg/mat"
)

func TestMinMaxVec3(t *testing.T) {
	pc := Vec3Slice{
		{10.1, -20.2, 3.3},
		{1.1, 2.2, 4.3},
		{15.1, 21.2, 0.3},
	}

	expectedMin := mat.Vec3{1.1, -20.2, 0.3}
	expectedMax := mat.Vec3{15.1, 21.2, 4.3}

	min, max, err := MinMaxVec3(pc)
	if err != nil {
		t.Fatal(err)
	}

	if !expectedMin.Equal(min) {
		t.Errorf("Expected min: %v, got: %v", expectedMin, min)
	}
	if !expectedMax.Equal(max) {
		t.Errorf("Expected max: %v, got: %v", expectedMax, max)
	}

	t.Run("Empty", func(t *testing.T) {
		if _, _, err := MinMaxVec3(Vec3Slice{}); !errors.Is(err, ErrEmptyInput) {
			t.Errorf("Expected ErrEmptyInput, got %v", err)
		}
	})
}
