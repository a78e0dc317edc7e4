package mps

// ApplyWallBoundary enforces the Wall/Ghost velocity and acceleration
// invariant: identically zero after every step.
func ApplyWallBoundary(ps *ParticleSystem) {
	for i := range ps.Particles {
		p := &ps.Particles[i]
		if p.Kind == Wall || p.Kind == Ghost {
			p.Vel = Vec{}
			p.Acc = Vec{}
		}
	}
}

// ApplyWallRepulsion adds a short-range repulsive velocity correction for
// fluid-wall pairs closer than l0:
//
//	v_fluid += coeff * (1 - r/l0)^2 * r_hat * dt
func ApplyWallRepulsion(ps *ParticleSystem, nl *NeighborList, l0, coeff, dt float64) {
	if coeff == 0 {
		return
	}
	for i := range ps.Particles {
		p := &ps.Particles[i]
		if p.Kind != Fluid {
			continue
		}
		for _, j := range nl.Neighbors(i) {
			q := &ps.Particles[j]
			if q.Kind != Wall {
				continue
			}
			diff := p.Pos.Sub(q.Pos)
			r := diff.Norm()
			if r >= l0 || r < 1e-12 {
				continue
			}
			overlap := 1 - r/l0
			mag := coeff * overlap * overlap * dt
			p.Vel = p.Vel.Add(diff.Scale(mag / r))
		}
	}
}

// ClampToWalls is the 2D-only inner-box clamp: a fluid particle found
// outside [domain_min+l0/2, domain_max-l0/2] is snapped back to the box and
// its inward velocity component is reflected with restitution. The top face
// (axis 1, max side) is exempt since it bounds the free surface, not a
// physical wall.
func ClampToWalls(ps *ParticleSystem, params Parameters) {
	if params.Dim != 2 {
		return
	}
	half := params.ParticleDistance / 2
	for i := range ps.Particles {
		p := &ps.Particles[i]
		if p.Kind != Fluid {
			continue
		}
		for axis := 0; axis < params.Dim; axis++ {
			lo := params.DomainMin[axis] + half
			hi := params.DomainMax[axis] - half
			if axis == 1 {
				// top face exempt; only clamp the low (floor) side for y
				if p.Pos[axis] < lo {
					p.Pos[axis] = lo
					p.Vel[axis] = -p.Vel[axis] * params.WallRestitution
				}
				continue
			}
			if p.Pos[axis] < lo {
				p.Pos[axis] = lo
				p.Vel[axis] = -p.Vel[axis] * params.WallRestitution
			} else if p.Pos[axis] > hi {
				p.Pos[axis] = hi
				p.Vel[axis] = -p.Vel[axis] * params.WallRestitution
			}
		}
	}
}

// RemoveOutOfBounds reclassifies to Ghost any fluid particle whose position
// exceeds the domain by margin l0*(wall_layers+1) on any axis, or that has
// gone NaN, and zeroes its velocity, acceleration and pressure. This is the
// silent-recovery path for NumericalDrift (§7).
func RemoveOutOfBounds(ps *ParticleSystem, params Parameters) []NumericalDrift {
	margin := params.ParticleDistance * float64(params.WallLayers+1)
	var events []NumericalDrift
	for i := range ps.Particles {
		p := &ps.Particles[i]
		if p.Kind != Fluid {
			continue
		}
		drifted := false
		cause := ""
		if p.Pos.HasNaN() || p.Vel.HasNaN() {
			drifted = true
			cause = "nan"
		} else {
			for axis := 0; axis < params.Dim; axis++ {
				if p.Pos[axis] < params.DomainMin[axis]-margin || p.Pos[axis] > params.DomainMax[axis]+margin {
					drifted = true
					cause = "out_of_bounds"
					break
				}
			}
		}
		if drifted {
			p.Kind = Ghost
			p.Vel = Vec{}
			p.Acc = Vec{}
			p.Pressure = 0
			events = append(events, NumericalDrift{ParticleIndex: i, Cause: cause})
		}
	}
	return events
}
