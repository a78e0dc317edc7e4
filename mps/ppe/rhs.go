package ppe

import "mpsfluid/mps"

// RHSPolicy computes the right-hand-side value b_i for one interior-fluid
// row. DensityRHS is the incompressible formulation of §4.6; NatsuiRHS is
// the weakly-compressible supplement of SPEC_FULL.md 3R.
type RHSPolicy interface {
	RHS(ps *mps.ParticleSystem, particleIdx int, rho, dt, relaxation float64) float64
}

// DensityRHS implements b_i = alpha * (rho/dt^2) * (n_i - n0)/n0.
type DensityRHS struct{}

func (DensityRHS) RHS(ps *mps.ParticleSystem, i int, rho, dt, relaxation float64) float64 {
	if ps.N0 == 0 {
		return 0
	}
	n := ps.Particles[i].N
	return relaxation * (rho / (dt * dt)) * (n - ps.N0) / ps.N0
}

// NatsuiRHS implements the weakly-compressible variant: the incompressible
// density-deviation term minus a pressure-relaxation correction scaled by
// NatsuiC/(NatsuiGamma*rho*c_s^2), matching the source's ppe_type=1 path.
type NatsuiRHS struct {
	C, Gamma, SoundSpeed float64
}

func (p NatsuiRHS) RHS(ps *mps.ParticleSystem, i int, rho, dt, relaxation float64) float64 {
	particle := &ps.Particles[i]
	var base float64
	if ps.N0 != 0 {
		n := particle.N
		base = relaxation * (rho / (dt * dt)) * (n - ps.N0) / ps.N0
	}
	correction := p.C * particle.Pressure / (p.Gamma * rho * p.SoundSpeed * p.SoundSpeed)
	return base - correction
}
