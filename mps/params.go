package mps

import "fmt"

// SolverType selects the Krylov method used by the PPE solver.
type SolverType int

const (
	SolverCG SolverType = iota
	SolverICCG
)

// SurfaceMethod selects how free-surface particles are detected.
type SurfaceMethod int

const (
	SurfaceByDensity SurfaceMethod = iota
	SurfaceByCount
)

// PPEType selects the right-hand-side policy used when assembling the
// pressure Poisson equation. PPEDensity is the incompressible formulation of
// the core spec; PPENatsui is the weakly-compressible variant supplemented
// from the source's ppe_type=1 path (see SPEC_FULL.md 3R).
type PPEType int

const (
	PPEDensity PPEType = iota
	PPENatsui
)

// SurfaceTension bundles the optional cohesive-force parameters (N0/C_LL,
// SPEC_FULL.md 3R). Disabled by default; when Enabled is false no field
// below is read.
type SurfaceTension struct {
	Enabled bool
	Sigma   float64 // surface tension coefficient
	ReRatio float64 // re_st = ReRatio * l0
}

// Parameters is the immutable bundle consumed by the core. It replaces the
// source's mutable, process-wide configuration pointer: every constructor
// and operator that needs a tunable takes it (or the scalars it needs)
// explicitly, never through a package-level variable.
type Parameters struct {
	Dim int // 2 or 3

	ParticleDistance float64 // l0
	InfluenceRatioN  float64 // re_n  = InfluenceRatioN  * l0
	InfluenceRatioLap float64 // re_lap = InfluenceRatioLap * l0
	MaxNeighbors     int
	WallLayers       int
	DummyLayers      int

	Density           float64 // rho
	KinematicViscosity float64 // nu
	Gravity           Vec

	Dt             float64
	TEnd           float64
	OutputInterval int

	SolverType      SolverType
	CGMaxIter       int
	CGTolerance     float64
	Relaxation      float64
	ClampNegativePressure bool
	PPEType         PPEType
	NatsuiC         float64 // c_ppe, default 1.01
	NatsuiGamma     float64 // gamma_ppe, default 0.01
	SoundSpeed      float64 // c_s for the Natsui weakly-compressible term

	SurfaceThreshold      float64
	SurfaceMethod         SurfaceMethod
	SurfaceCountThreshold float64

	Restitution          float64
	CollisionDistanceRatio float64

	WallRepulsionCoeff float64
	WallRestitution    float64 // 2D only

	DomainMin, DomainMax Vec

	UseAnalyticalLambda bool
	SurfaceTension      SurfaceTension
}

// DefaultParameters mirrors config_set_defaults from the source: every
// numeric default below is taken from that table, not invented.
func DefaultParameters() Parameters {
	return Parameters{
		Dim:               2,
		ParticleDistance:  0.025,
		InfluenceRatioN:   2.1,
		InfluenceRatioLap: 2.1,
		MaxNeighbors:      256,
		WallLayers:        2,
		DummyLayers:       2,

		Density:            1000,
		KinematicViscosity: 1e-6,
		Gravity:            Vec{0, -9.81, 0},

		Dt:             5e-4,
		TEnd:           2.0,
		OutputInterval: 100,

		SolverType:            SolverCG,
		CGMaxIter:             10000,
		CGTolerance:           1e-8,
		Relaxation:            0.2,
		ClampNegativePressure: false,
		PPEType:               PPEDensity,
		NatsuiC:               1.01,
		NatsuiGamma:           0.01,
		SoundSpeed:            1.0,

		SurfaceThreshold:      0.97,
		SurfaceMethod:         SurfaceByDensity,
		SurfaceCountThreshold: 0.85,

		Restitution:            0.2,
		CollisionDistanceRatio: 0.5,

		WallRepulsionCoeff: 0,
		WallRestitution:    0.2,

		DomainMin: Vec{0, 0, 0},
		DomainMax: Vec{1, 0.6, 0},

		UseAnalyticalLambda: false,
		SurfaceTension:      SurfaceTension{},
	}
}

// ReN returns the influence radius used by the number-density operator.
func (p Parameters) ReN() float64 { return p.InfluenceRatioN * p.ParticleDistance }

// ReLap returns the influence radius used by viscosity, gradient and PPE.
func (p Parameters) ReLap() float64 { return p.InfluenceRatioLap * p.ParticleDistance }

// ReSt returns the influence radius used by the optional surface-tension term.
func (p Parameters) ReSt() float64 { return p.SurfaceTension.ReRatio * p.ParticleDistance }

// CollisionDistance returns the short-range collision trigger distance.
func (p Parameters) CollisionDistance() float64 {
	return p.CollisionDistanceRatio * p.ParticleDistance
}

// Validate checks the geometric and numeric preconditions the core assumes.
// It never checks "everything" defensively: only the invariants §3 and §7
// name as ConfigurationError triggers.
func (p Parameters) Validate() error {
	if p.Dim != 2 && p.Dim != 3 {
		return &ConfigurationError{Reason: fmt.Sprintf("dim must be 2 or 3, got %d", p.Dim)}
	}
	if p.ParticleDistance <= 0 {
		return &ConfigurationError{Reason: "particle_distance must be positive"}
	}
	if p.InfluenceRatioN <= 0 || p.InfluenceRatioLap <= 0 {
		return &ConfigurationError{Reason: "influence ratios must be positive"}
	}
	if p.MaxNeighbors <= 0 {
		return &ConfigurationError{Reason: "max_neighbors must be positive"}
	}
	if p.Dt <= 0 {
		return &ConfigurationError{Reason: "dt must be positive"}
	}
	for d := 0; d < p.Dim; d++ {
		if p.DomainMax[d] <= p.DomainMin[d] {
			return &ConfigurationError{Reason: "domain_max must exceed domain_min on every axis"}
		}
	}
	return nil
}
