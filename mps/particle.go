package mps

// Kind identifies a particle's role. A Fluid particle may transition to
// Ghost when it leaves the computational domain and never transitions back;
// Wall particles are immutable in position with zero velocity/acceleration.
type Kind uint8

const (
	Fluid Kind = iota
	Wall
	Ghost
)

// Particle is one row of the flat particle store. Acceleration is scratch,
// overwritten every step by the operators; it is never read across steps.
type Particle struct {
	Pos, Vel, Acc Vec
	Pressure      float64
	N             float64 // number density, diagnostic for non-fluid kinds
	NeighborCount int
	Kind          Kind
	OnSurface     bool
}

// ParticleSystem is the contiguous particle buffer plus the reference
// constants derived once from the initial placement. Fields below n0/Lambda
// are read-only after CalcInitialParams returns.
type ParticleSystem struct {
	Particles []Particle
	Dim       int

	N0     float64 // reference number density
	Lambda float64 // Laplacian-model correction
	N0Count float64 // reference neighbour count (Natsui method), optional
	CLL    float64 // surface-tension potential coefficient, optional
}

// NewParticleSystem allocates a system with the given fixed capacity. The
// current count starts at zero; Add appends until capacity is reached.
func NewParticleSystem(dim, capacity int) *ParticleSystem {
	return &ParticleSystem{
		Particles: make([]Particle, 0, capacity),
		Dim:       dim,
	}
}

// Add appends a particle, returning its index. Callers are responsible for
// not exceeding capacity; the core does not grow the buffer mid-run because
// NeighbourList and CellList are sized against it once.
func (ps *ParticleSystem) Add(p Particle) int {
	ps.Particles = append(ps.Particles, p)
	return len(ps.Particles) - 1
}

// Count returns the number of live rows (including Ghost; Ghost rows are
// retained to keep indices stable, never compacted out).
func (ps *ParticleSystem) Count() int {
	return len(ps.Particles)
}

// FluidCount returns the number of particles still classified Fluid. Used by
// the mass-conservation testable property: it must be non-increasing.
func (ps *ParticleSystem) FluidCount() int {
	n := 0
	for i := range ps.Particles {
		if ps.Particles[i].Kind == Fluid {
			n++
		}
	}
	return n
}

// CalcInitialParams computes n0 and Lambda from the initial placement per
// §4.2: evaluate s_i, num_i, den_i for every fluid particle using a
// brute-force neighbour pass (the cell list does not exist yet at this
// point in the driver's lifecycle), then take n0 = max s_i and Lambda from
// that same particle (or the analytical formula when configured).
func (ps *ParticleSystem) CalcInitialParams(params Parameters) error {
	kernelN := NewKernel(params.ReN(), params.ParticleDistance)
	kernelLap := NewKernel(params.ReLap(), params.ParticleDistance)

	bestIdx := -1
	bestS := -1.0
	var bestNum, bestDen float64

	for i := range ps.Particles {
		if ps.Particles[i].Kind != Fluid {
			continue
		}
		var s, num, den float64
		for j := range ps.Particles {
			if i == j {
				continue
			}
			r := ps.Particles[i].Pos.Sub(ps.Particles[j].Pos).Norm()
			s += kernelN.Weight(r)
			wLap := kernelLap.Weight(r)
			num += r * r * wLap
			den += wLap
		}
		if s > bestS {
			bestS, bestIdx, bestNum, bestDen = s, i, num, den
		}
	}

	if bestIdx == -1 {
		return &ConfigurationError{Reason: "no fluid particle present at initialisation"}
	}

	ps.N0 = bestS
	if params.UseAnalyticalLambda {
		d := float64(ps.Dim)
		re := params.ReLap()
		ps.Lambda = re * re * d * (d - 1) / ((d + 1) * (d + 2))
	} else {
		ps.Lambda = bestNum / bestDen
	}

	if params.SurfaceTension.Enabled {
		ps.calcSurfaceTensionConstants(params)
	}

	return nil
}

// calcSurfaceTensionConstants computes the Natsui reference neighbour count
// N0Count and the potential-sum coefficient CLL (SPEC_FULL.md 3R). CLL is
// stored only: no operator in the time step reads it or applies a cohesive
// force. Evaluated over the same initial
// placement as CalcInitialParams, using the surface-tension influence
// radius re_st.
func (ps *ParticleSystem) calcSurfaceTensionConstants(params Parameters) {
	kernelSt := NewKernel(params.ReSt(), params.ParticleDistance)
	count := 0
	var potentialSum float64
	for i := range ps.Particles {
		if ps.Particles[i].Kind != Fluid {
			continue
		}
		for j := range ps.Particles {
			if i == j {
				continue
			}
			r := ps.Particles[i].Pos.Sub(ps.Particles[j].Pos).Norm()
			if r < params.ReSt() {
				count++
				potentialSum += kernelSt.Weight(r)
			}
		}
	}
	fluidN := ps.FluidCount()
	if fluidN == 0 {
		return
	}
	ps.N0Count = float64(count) / float64(fluidN)
	if potentialSum != 0 {
		ps.CLL = params.SurfaceTension.Sigma / potentialSum
	}
}
