package mps

// SurfaceDetector classifies fluid particles as free-surface or interior.
// Two policies are provided (§4.4: "a second policy... is defined
// analogously but optional"); Parameters.SurfaceMethod selects between them.
type SurfaceDetector interface {
	Detect(ps *ParticleSystem, nl *NeighborList, threshold float64)
}

// DensitySurfaceDetector flags a fluid particle as on-surface when its
// number density falls below threshold*n0. Non-fluid particles are never
// flagged.
type DensitySurfaceDetector struct{}

func (DensitySurfaceDetector) Detect(ps *ParticleSystem, nl *NeighborList, threshold float64) {
	limit := threshold * ps.N0
	for i := range ps.Particles {
		p := &ps.Particles[i]
		if p.Kind != Fluid {
			p.OnSurface = false
			continue
		}
		p.OnSurface = p.N < limit
	}
}

// CountSurfaceDetector is the Natsui neighbour-count-based policy
// (SPEC_FULL.md 3R): a fluid particle is on-surface when its live neighbour
// count falls below threshold*N0Count.
type CountSurfaceDetector struct{}

func (CountSurfaceDetector) Detect(ps *ParticleSystem, nl *NeighborList, threshold float64) {
	limit := threshold * ps.N0Count
	for i := range ps.Particles {
		p := &ps.Particles[i]
		if p.Kind != Fluid {
			p.OnSurface = false
			continue
		}
		p.OnSurface = float64(nl.Count(i)) < limit
	}
}

// SurfaceDetectorFor resolves the configured policy.
func SurfaceDetectorFor(method SurfaceMethod) SurfaceDetector {
	if method == SurfaceByCount {
		return CountSurfaceDetector{}
	}
	return DensitySurfaceDetector{}
}
