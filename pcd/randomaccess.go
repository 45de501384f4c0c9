package pcd

import (
	"errors"

	"github.com/seqsense/pcreg/mat"
)

// ErrEmptyInput is returned when a point cloud without any point is given
// where at least one point is required.
var ErrEmptyInput = errors.New("empty input")

type Vec3RandomAccessor interface {
	Vec3At(int) mat.Vec3
	Len() int
}

// Vec3Slice is an ordered point cloud held in memory.
type Vec3Slice []mat.Vec3

func (s Vec3Slice) Vec3At(i int) mat.Vec3 {
	return s[i]
}

func (s Vec3Slice) Len() int {
	return len(s)
}

// Copy materializes the accessor into a new slice.
func Copy(ra Vec3RandomAccessor) Vec3Slice {
	n := ra.Len()
	out := make(Vec3Slice, n)
	for i := 0; i < n; i++ {
		out[i] = ra.Vec3At(i)
	}
	return out
}

// Concat returns a new cloud containing points of all given clouds in order.
func Concat(ras ...Vec3RandomAccessor) Vec3Slice {
	var n int
	for _, ra := range ras {
		n += ra.Len()
	}
	out := make(Vec3Slice, 0, n)
	for _, ra := range ras {
		for i := 0; i < ra.Len(); i++ {
			out = append(out, ra.Vec3At(i))
		}
	}
	return out
}
