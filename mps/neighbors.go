package mps

import "math"

// NeighborList stores, for every particle index i, the indices j with
// |r_j - r_i| < re and kind(j) != Ghost, as a flat [N x MaxNeighbors] matrix
// plus a per-row count. Rebuilt in place every step; never reallocated once
// sized, so a step never allocates on the neighbour-search path.
type NeighborList struct {
	indices      []int
	counts       []int
	maxNeighbors int
	stride       int
}

// NewNeighborList preallocates storage for n particles.
func NewNeighborList(n, maxNeighbors int) *NeighborList {
	return &NeighborList{
		indices:      make([]int, n*maxNeighbors),
		counts:       make([]int, n),
		maxNeighbors: maxNeighbors,
		stride:       maxNeighbors,
	}
}

// Resize grows the backing storage if the particle count increased (it never
// does in this core, since particles retire to Ghost rather than being
// removed, but the method exists so a driver embedding a growing buffer has
// a defined hook).
func (nl *NeighborList) Resize(n int) {
	need := n * nl.stride
	if len(nl.indices) >= need && len(nl.counts) >= n {
		return
	}
	nl.indices = make([]int, need)
	nl.counts = make([]int, n)
}

// Count returns the neighbour count for row i.
func (nl *NeighborList) Count(i int) int { return nl.counts[i] }

// At returns the k-th neighbour index of row i.
func (nl *NeighborList) At(i, k int) int { return nl.indices[i*nl.stride+k] }

// Neighbors returns the live slice of neighbour indices for row i. The
// returned slice aliases internal storage and is only valid until the next
// rebuild.
func (nl *NeighborList) Neighbors(i int) []int {
	base := i * nl.stride
	return nl.indices[base : base+nl.counts[i]]
}

func (nl *NeighborList) reset(n int) {
	for i := 0; i < n; i++ {
		nl.counts[i] = 0
	}
}

func (nl *NeighborList) insert(i, j int) error {
	c := nl.counts[i]
	if c >= nl.maxNeighbors {
		return &CapacityExceeded{ParticleIndex: i, MaxNeighbors: nl.maxNeighbors}
	}
	nl.indices[i*nl.stride+c] = j
	nl.counts[i] = c + 1
	return nil
}

// BruteForceSearch is the O(N^2) reference neighbour search: double loop,
// skipping Ghost, inserting j into i's list iff r^2 < re^2.
func BruteForceSearch(ps *ParticleSystem, re float64, nl *NeighborList) error {
	n := len(ps.Particles)
	nl.reset(n)
	reSq := re * re
	for i := 0; i < n; i++ {
		if ps.Particles[i].Kind == Ghost {
			continue
		}
		for j := 0; j < n; j++ {
			if i == j || ps.Particles[j].Kind == Ghost {
				continue
			}
			distSq := ps.Particles[i].Pos.Sub(ps.Particles[j].Pos).NormSq()
			if distSq < reSq {
				if err := nl.insert(i, j); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// CellList is a uniform grid over an inflated bounding box, storing for
// each cell the index of the first particle in a singly linked intrusive
// chain and, for each particle, the index of the next particle in the same
// cell (or -1). Cell side equals the influence radius re.
type CellList struct {
	head       []int
	next       []int
	dim        int
	nx, ny, nz int
	cellSize   float64
	origin     Vec
}

// NewCellList builds the grid extent from the domain and margin (4*re) per
// §4.3, and preallocates the head/next arrays for n particles.
func NewCellList(dim int, domainMin, domainMax Vec, re float64, n int) *CellList {
	margin := 4 * re
	origin := Vec{
		domainMin[0] - margin,
		domainMin[1] - margin,
		domainMin[2] - margin,
	}
	extent := func(axis int) int {
		if axis >= dim {
			return 1
		}
		span := (domainMax[axis] + margin) - origin[axis]
		return int(math.Floor(span/re)) + 2
	}
	cl := &CellList{
		dim:      dim,
		nx:       extent(0),
		ny:       extent(1),
		nz:       extent(2),
		cellSize: re,
		origin:   origin,
	}
	if dim == 2 {
		cl.nz = 1
	}
	total := cl.nx * cl.ny * cl.nz
	cl.head = make([]int, total)
	cl.next = make([]int, n)
	return cl
}

func (cl *CellList) cellCoords(p Vec) (int, int, int, bool) {
	ix := int(math.Floor((p[0] - cl.origin[0]) / cl.cellSize))
	iy := int(math.Floor((p[1] - cl.origin[1]) / cl.cellSize))
	iz := 0
	if cl.dim == 3 {
		iz = int(math.Floor((p[2] - cl.origin[2]) / cl.cellSize))
	}
	if ix < 0 || ix >= cl.nx || iy < 0 || iy >= cl.ny || iz < 0 || iz >= cl.nz {
		return 0, 0, 0, false
	}
	return ix, iy, iz, true
}

func (cl *CellList) cellIndex(ix, iy, iz int) int {
	return (iz*cl.ny+iy)*cl.nx + ix
}

// Build resets every head to -1 and prepends each non-Ghost particle into
// its cell's chain. Particles that fall outside the grid are dropped: their
// next entry stays -1 and they never appear in a chain.
func (cl *CellList) Build(ps *ParticleSystem) {
	if len(cl.next) < len(ps.Particles) {
		cl.next = make([]int, len(ps.Particles))
	}
	for i := range cl.head {
		cl.head[i] = -1
	}
	for i := range cl.next {
		cl.next[i] = -1
	}
	for i := range ps.Particles {
		if ps.Particles[i].Kind == Ghost {
			continue
		}
		ix, iy, iz, ok := cl.cellCoords(ps.Particles[i].Pos)
		if !ok {
			continue
		}
		c := cl.cellIndex(ix, iy, iz)
		cl.next[i] = cl.head[c]
		cl.head[c] = i
	}
}

// Search queries, for every i, the 3^dim neighbouring cells (clamped to the
// grid), walking each chain and accepting j != i, non-Ghost, r^2 < re^2. The
// per-i scan is parallelized over ParallelFor: each goroutine only ever
// writes row i of nl (single-writer-per-row), and only reads cl.head/cl.next
// and ps.Particles, neither of which this phase mutates.
func (cl *CellList) Search(ps *ParticleSystem, re float64, nl *NeighborList) error {
	n := len(ps.Particles)
	nl.reset(n)
	reSq := re * re

	zRange := 0
	if cl.dim == 3 {
		zRange = 1
	}

	errs := make([]error, n)
	ParallelFor(0, n, func(i int) {
		if ps.Particles[i].Kind == Ghost {
			return
		}
		ix, iy, iz, ok := cl.cellCoords(ps.Particles[i].Pos)
		if !ok {
			return
		}
		for dz := -zRange; dz <= zRange; dz++ {
			cz := iz + dz
			if cz < 0 || cz >= cl.nz {
				continue
			}
			for dy := -1; dy <= 1; dy++ {
				cy := iy + dy
				if cy < 0 || cy >= cl.ny {
					continue
				}
				for dx := -1; dx <= 1; dx++ {
					cx := ix + dx
					if cx < 0 || cx >= cl.nx {
						continue
					}
					for j := cl.head[cl.cellIndex(cx, cy, cz)]; j != -1; j = cl.next[j] {
						if j == i || ps.Particles[j].Kind == Ghost {
							continue
						}
						distSq := ps.Particles[i].Pos.Sub(ps.Particles[j].Pos).NormSq()
						if distSq < reSq {
							if err := nl.insert(i, j); err != nil {
								errs[i] = err
								return
							}
						}
					}
				}
			}
		}
	})
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
