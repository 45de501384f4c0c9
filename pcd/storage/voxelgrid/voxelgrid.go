package voxelgrid

import (
	"math"

	"github.com/seqsense/pcreg/mat"
)

// VoxelGrid buckets point indices into a dense grid of cubic voxels.
type VoxelGrid struct {
	voxel         [][]int
	size          [3]int
	origin        mat.Vec3
	resolutionInv float64
}

func New(resolution float64, size [3]int, origin mat.Vec3) *VoxelGrid {
	return &VoxelGrid{
		voxel:         make([][]int, size[0]*size[1]*size[2]),
		size:          size,
		origin:        origin,
		resolutionInv: 1 / resolution,
	}
}

func (v *VoxelGrid) Add(p mat.Vec3, index int) bool {
	addr, ok := v.Addr(p)
	if !ok {
		return false
	}
	ptr := &v.voxel[addr]
	*ptr = append(*ptr, index)
	return true
}

func (v *VoxelGrid) Get(p mat.Vec3) []int {
	addr, ok := v.Addr(p)
	if !ok {
		return nil
	}
	return v.voxel[addr]
}

func (v *VoxelGrid) GetByAddr(a int) []int {
	return v.voxel[a]
}

func (v *VoxelGrid) Addr(p mat.Vec3) (int, bool) {
	return v.AddrByPosInt(v.Cell(p))
}

func (v *VoxelGrid) AddrByPosInt(p [3]int) (int, bool) {
	x, y, z := p[0], p[1], p[2]
	if x < 0 || y < 0 || z < 0 || x >= v.size[0] || y >= v.size[1] || z >= v.size[2] {
		return 0, false
	}
	return x + (y+z*v.size[1])*v.size[0], true
}

// Cell returns integer voxel position of p. The position may be outside of the grid.
func (v *VoxelGrid) Cell(p mat.Vec3) [3]int {
	pos := p.Sub(v.origin)
	return [3]int{
		int(math.Floor(pos[0] * v.resolutionInv)),
		int(math.Floor(pos[1] * v.resolutionInv)),
		int(math.Floor(pos[2] * v.resolutionInv)),
	}
}

func (v *VoxelGrid) Len() int {
	return v.size[0] * v.size[1] * v.size[2]
}

func (v *VoxelGrid) Size() [3]int {
	return v.size
}
