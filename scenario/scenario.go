// Package scenario builds and loads the initial particle configurations
// that drive the mps core. This is explicitly the "scenario setup"
// collaborator the core spec treats as external (§1): dam-break grid
// placement and particle-file loading live here, outside mps/.
package scenario

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"mpsfluid/mps"
)

// DamBreak2D builds the classic dam-break initial condition: a rectangular
// water column of width x height at the domain's origin corner, surrounded
// by wallLayers of wall particles on the bottom and side walls (adapted from
// the source's setup_dam_break placement loop in main.c).
func DamBreak2D(params mps.Parameters, columnWidth, columnHeight float64) (*mps.ParticleSystem, error) {
	if params.Dim != 2 {
		return nil, &mps.ConfigurationError{Reason: "DamBreak2D requires Dim=2"}
	}
	l0 := params.ParticleDistance
	nx := int(columnWidth/l0) + 1
	ny := int(columnHeight/l0) + 1

	domainNx := int((params.DomainMax[0]-params.DomainMin[0])/l0) + 1
	domainNy := int((params.DomainMax[1]-params.DomainMin[1])/l0) + 1

	capacity := (domainNx + 2*params.WallLayers) * (domainNy + 2*params.WallLayers)
	ps := mps.NewParticleSystem(2, capacity)

	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			x := params.DomainMin[0] + float64(i)*l0
			y := params.DomainMin[1] + float64(j)*l0
			if x > params.DomainMax[0] || y > params.DomainMax[1] {
				continue
			}
			ps.Add(mps.Particle{Pos: mps.Vec{x, y, 0}, Kind: mps.Fluid})
		}
	}

	for layer := 1; layer <= params.WallLayers; layer++ {
		for i := -params.WallLayers; i < domainNx+params.WallLayers; i++ {
			x := params.DomainMin[0] + float64(i)*l0
			y := params.DomainMin[1] - float64(layer)*l0
			ps.Add(mps.Particle{Pos: mps.Vec{x, y, 0}, Kind: mps.Wall})
		}
	}
	for layer := 0; layer < params.WallLayers; layer++ {
		x := params.DomainMin[0] - float64(layer+1)*l0
		for j := -params.WallLayers; j < domainNy+params.WallLayers; j++ {
			y := params.DomainMin[1] + float64(j)*l0
			ps.Add(mps.Particle{Pos: mps.Vec{x, y, 0}, Kind: mps.Wall})
		}
		x = params.DomainMax[0] + float64(layer+1)*l0
		for j := -params.WallLayers; j < domainNy+params.WallLayers; j++ {
			y := params.DomainMin[1] + float64(j)*l0
			ps.Add(mps.Particle{Pos: mps.Vec{x, y, 0}, Kind: mps.Wall})
		}
	}

	return ps, nil
}

// LoadParticleFile reads the flat particle format supplemented from the
// source's 3D main.c load_particles: a header line giving the particle
// count, then one "x y z vx vy vz type" row per particle. Blank lines and
// lines starting with '#' are skipped. type is an integer matching Kind's
// ordinal (0=Fluid, 1=Wall, 2=Ghost).
func LoadParticleFile(path string, dim int) (*mps.ParticleSystem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("scenario: opening particle file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	var count int
	haveCount := false
	var ps *mps.ParticleSystem

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !haveCount {
			n, err := strconv.Atoi(line)
			if err != nil {
				return nil, fmt.Errorf("scenario: invalid particle count %q: %w", line, err)
			}
			count = n
			haveCount = true
			ps = mps.NewParticleSystem(dim, count)
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 7 {
			return nil, fmt.Errorf("scenario: malformed particle row %q", line)
		}
		vals := make([]float64, 6)
		for i := 0; i < 6; i++ {
			v, err := strconv.ParseFloat(fields[i], 64)
			if err != nil {
				return nil, fmt.Errorf("scenario: invalid numeric field %q: %w", fields[i], err)
			}
			vals[i] = v
		}
		kindVal, err := strconv.Atoi(fields[6])
		if err != nil {
			return nil, fmt.Errorf("scenario: invalid type field %q: %w", fields[6], err)
		}
		ps.Add(mps.Particle{
			Pos:  mps.Vec{vals[0], vals[1], vals[2]},
			Vel:  mps.Vec{vals[3], vals[4], vals[5]},
			Kind: mps.Kind(kindVal),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scenario: reading particle file: %w", err)
	}
	if !haveCount {
		return nil, &mps.ConfigurationError{Reason: "particle file has no count header"}
	}
	if ps.Count() != count {
		return nil, &mps.ConfigurationError{Reason: fmt.Sprintf("particle file declared %d particles, found %d", count, ps.Count())}
	}
	return ps, nil
}
