// Package driver owns the semi-implicit time-step sequence: it is the one
// place allowed to depend on both mps (particles, operators, boundary) and
// mps/ppe (the pressure solve), since mps/ppe itself depends on mps and a
// dependency the other way would cycle.
package driver

import (
	"log"

	"mpsfluid/mps"
	"mpsfluid/mps/ppe"
)

// OutputSink receives a per-step snapshot of particle state. The wire format
// is delegated entirely to the implementation; the driver only calls Write.
type OutputSink interface {
	Write(step int, ps *mps.ParticleSystem) error
}

// Diagnostics accumulates the non-fatal event counters: stalls are recorded
// but do not abort a run, drifts are recorded as they are silently recovered
// by reclassification to Ghost.
type Diagnostics struct {
	Stalls int
	Drifts int
}

// Simulation owns everything the driver needs across the run's lifetime: the
// particle buffer, the neighbour structures (built once, rebuilt in place
// every step), and the immutable parameter bundle. This mirrors the source's
// single FluidSim/ParticleSystem pairing created once in simulation_run and
// threaded through every step.
type Simulation struct {
	Particles *mps.ParticleSystem
	Params    mps.Parameters

	neighbors *mps.NeighborList
	cells     *mps.CellList

	kernelN   mps.Kernel
	kernelLap mps.Kernel

	surfaceDetector mps.SurfaceDetector
	rhsPolicy       ppe.RHSPolicy

	Diagnostics Diagnostics
	step        int
}

// NewSimulation validates params, computes n0/lambda from the initial
// placement, and allocates the neighbour structures once for the run.
func NewSimulation(ps *mps.ParticleSystem, params mps.Parameters) (*Simulation, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if err := ps.CalcInitialParams(params); err != nil {
		return nil, err
	}

	n := len(ps.Particles)
	sim := &Simulation{
		Particles:       ps,
		Params:          params,
		neighbors:       mps.NewNeighborList(n, params.MaxNeighbors),
		cells:           mps.NewCellList(params.Dim, params.DomainMin, params.DomainMax, params.ReLap(), n),
		kernelN:         mps.NewKernel(params.ReN(), params.ParticleDistance),
		kernelLap:       mps.NewKernel(params.ReLap(), params.ParticleDistance),
		surfaceDetector: mps.SurfaceDetectorFor(params.SurfaceMethod),
	}
	if params.PPEType == mps.PPENatsui {
		sim.rhsPolicy = ppe.NatsuiRHS{C: params.NatsuiC, Gamma: params.NatsuiGamma, SoundSpeed: params.SoundSpeed}
	} else {
		sim.rhsPolicy = ppe.DensityRHS{}
	}
	return sim, nil
}

// Step advances the simulation by one time step through the eleven-point
// gravity/viscosity -> predict -> fix/clamp -> rebuild -> repulsion/collision
// -> density/surface -> PPE -> gradient -> correct -> fix/clamp/retire
// sequence.
func (s *Simulation) Step() error {
	ps := s.Particles
	params := s.Params

	// 1-2. gravity + viscosity into acceleration.
	for i := range ps.Particles {
		p := &ps.Particles[i]
		if p.Kind == mps.Fluid {
			p.Acc = params.Gravity
		} else {
			p.Acc = mps.Vec{}
		}
	}
	mps.Viscosity(ps, s.neighbors, s.kernelLap, params.KinematicViscosity)

	// 3. predictor.
	mps.ParallelFor(0, len(ps.Particles), func(i int) {
		p := &ps.Particles[i]
		if p.Kind != mps.Fluid {
			return
		}
		p.Vel = p.Vel.Add(p.Acc.Scale(params.Dt))
		p.Pos = p.Pos.Add(p.Vel.Scale(params.Dt))
	})

	// 4. fix walls; clamp (2D).
	mps.ApplyWallBoundary(ps)
	mps.ClampToWalls(ps, params)

	// 5. rebuild neighbour index using r*.
	s.cells.Build(ps)
	if err := s.cells.Search(ps, params.ReLap(), s.neighbors); err != nil {
		return err
	}

	// 6. wall repulsion (2D) / collision (both).
	if params.Dim == 2 {
		mps.ApplyWallRepulsion(ps, s.neighbors, params.ParticleDistance, params.WallRepulsionCoeff, params.Dt)
	}
	mps.Collision(ps, s.neighbors, params.CollisionDistance(), params.Restitution)

	// 7. number density + free-surface detection.
	mps.NumberDensity(ps, s.neighbors, s.kernelN)
	s.surfaceDetector.Detect(ps, s.neighbors, s.surfaceThreshold())

	// 8. solve PPE.
	sys := ppe.Assemble(ps, s.neighbors, s.kernelLap, params.Density, params.Dt, params.Relaxation, s.rhsPolicy)
	x, err := ppe.Solve(sys.A, sys.B, params.SolverType, params.CGMaxIter, params.CGTolerance)
	if err != nil {
		s.Diagnostics.Stalls++
		log.Printf("driver: %v", err)
	}
	ppe.WritePressure(ps, sys, x)
	if params.ClampNegativePressure {
		ppe.ClampNegativePressure(ps)
	}

	// 9. pressure-gradient acceleration.
	mps.PressureGradient(ps, s.neighbors, s.kernelLap, params.Density)

	// 10. corrector. The source's 2D corrector advances position by
	// dt*du where du=dt*acc_p (effectively dt^2*acc_p); retained as
	// specified rather than silently "corrected" to dt*acc_p (see
	// DESIGN.md's Open Question decisions).
	mps.ParallelFor(0, len(ps.Particles), func(i int) {
		p := &ps.Particles[i]
		if p.Kind != mps.Fluid {
			return
		}
		du := p.Acc.Scale(params.Dt)
		p.Vel = p.Vel.Add(du)
		p.Pos = p.Pos.Add(du.Scale(params.Dt))
	})

	// 11. fix walls again; clamp; retire out-of-bounds.
	mps.ApplyWallBoundary(ps)
	mps.ClampToWalls(ps, params)
	drifts := mps.RemoveOutOfBounds(ps, params)
	for _, d := range drifts {
		s.Diagnostics.Drifts++
		log.Printf("driver: %v", &d)
	}

	s.step++
	return nil
}

func (s *Simulation) surfaceThreshold() float64 {
	if s.Params.SurfaceMethod == mps.SurfaceByCount {
		return s.Params.SurfaceCountThreshold
	}
	return s.Params.SurfaceThreshold
}

// Run advances the simulation for floor(t_end/dt) steps, writing a snapshot
// through sink every output_interval steps (and at step 0).
func (s *Simulation) Run(sink OutputSink) error {
	totalSteps := int(s.Params.TEnd / s.Params.Dt)

	if sink != nil {
		if err := sink.Write(0, s.Particles); err != nil {
			return err
		}
	}

	for step := 1; step <= totalSteps; step++ {
		if err := s.Step(); err != nil {
			return err
		}
		if sink != nil && s.Params.OutputInterval > 0 && step%s.Params.OutputInterval == 0 {
			if err := sink.Write(step, s.Particles); err != nil {
				return err
			}
		}
	}
	return nil
}
