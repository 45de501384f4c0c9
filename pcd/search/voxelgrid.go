package search

import (
	"fmt"
	"math"

	"github.com/seqsense/pcreg/mat"
	"github.com/seqsense/pcreg/pcd"
	"github.com/seqsense/pcreg/pcd/storage/voxelgrid"
)

// MaxVoxels limits the number of voxels allocated by NewVoxelGrid.
// Voxel size is enlarged until the grid fits.
var MaxVoxels = 1 << 24

type voxelGridSearch struct {
	ra pcd.Vec3RandomAccessor
	vg *voxelgrid.VoxelGrid
}

// NewVoxelGrid indexes ra into a voxel grid of the given voxel size.
// Voxel size around the typical query radius gives the best performance.
func NewVoxelGrid(ra pcd.Vec3RandomAccessor, voxelSize float64) (Searcher, error) {
	min, max, err := pcd.MinMaxVec3(ra)
	if err != nil {
		return nil, err
	}
	for i := 0; i < ra.Len(); i++ {
		if !ra.Vec3At(i).IsFinite() {
			return nil, fmt.Errorf("voxel grid: %w: point %d", ErrNonFinitePoint, i)
		}
	}
	if !(voxelSize > 0) || math.IsInf(voxelSize, 0) {
		voxelSize = 1
	}
	extent := max.Sub(min)
	var size [3]int
	for {
		// Counted in float64 as the product may overflow int.
		n := 1.0
		var cells [3]float64
		for i := range cells {
			cells[i] = math.Floor(extent[i]/voxelSize) + 2
			n *= cells[i]
		}
		if n <= float64(MaxVoxels) {
			for i := range size {
				size[i] = int(cells[i])
			}
			break
		}
		voxelSize *= 2
	}

	vg := voxelgrid.New(voxelSize, size, min)
	for i := 0; i < ra.Len(); i++ {
		vg.Add(ra.Vec3At(i), i)
	}
	return &voxelGridSearch{ra: ra, vg: vg}, nil
}

func (s *voxelGridSearch) Radius(p mat.Vec3, r float64) []Neighbor {
	c0 := s.vg.Cell(p.Sub(mat.Vec3{r, r, r}))
	c1 := s.vg.Cell(p.Add(mat.Vec3{r, r, r}))
	size := s.vg.Size()
	for i := range size {
		if c0[i] < 0 {
			c0[i] = 0
		}
		if c1[i] >= size[i] {
			c1[i] = size[i] - 1
		}
		if c0[i] > c1[i] {
			return nil
		}
	}

	var out []Neighbor
	rSq := r * r
	for z := c0[2]; z <= c1[2]; z++ {
		for y := c0[1]; y <= c1[1]; y++ {
			for x := c0[0]; x <= c1[0]; x++ {
				addr, _ := s.vg.AddrByPosInt([3]int{x, y, z})
				for _, id := range s.vg.GetByAddr(addr) {
					if dSq := s.ra.Vec3At(id).Sub(p).NormSq(); dSq <= rSq {
						out = append(out, Neighbor{ID: id, Dist: math.Sqrt(dSq)})
					}
				}
			}
		}
	}
	return out
}
