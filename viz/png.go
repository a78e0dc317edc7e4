// Package viz renders a single still-frame snapshot of particle state to
// PNG: a pressure-colored scatter plot, kept from the source's rendering
// concern but re-targeted at MPS particle kind/pressure fields rather than
// SPH density. It sits outside the core's critical path (§1 out-of-scope
// boundary: output formatting is an external collaborator).
package viz

import (
	"fmt"
	"image/color"
	"math"

	"mpsfluid/mps"

	"github.com/fogleman/gg"
)

// Palette maps a normalized pressure value in [0,1] to a color: blue (low)
// through white (mid) to red (high), with walls always rendered grey and
// Ghost particles skipped.
func Palette(t float64) color.Color {
	t = math.Max(0, math.Min(1, t))
	switch {
	case t < 0.5:
		k := t * 2
		return color.RGBA{R: uint8(k * 255), G: uint8(k * 255), B: 255, A: 255}
	default:
		k := (t - 0.5) * 2
		return color.RGBA{R: 255, G: uint8((1 - k) * 255), B: uint8((1 - k) * 255), A: 255}
	}
}

// RenderPNG draws every non-Ghost particle of ps into a width x height PNG
// at path, mapping [domainMin, domainMax] onto the canvas and particle
// pressure onto Palette. Wall particles are rendered grey regardless of
// pressure.
func RenderPNG(path string, ps *mps.ParticleSystem, domainMin, domainMax mps.Vec, width, height int, particleRadius float64) error {
	dc := gg.NewContext(width, height)
	dc.SetColor(color.Black)
	dc.Clear()

	spanX := domainMax[0] - domainMin[0]
	spanY := domainMax[1] - domainMin[1]
	if spanX <= 0 || spanY <= 0 {
		return fmt.Errorf("viz: degenerate domain span (%g, %g)", spanX, spanY)
	}

	minP, maxP := math.Inf(1), math.Inf(-1)
	for _, p := range ps.Particles {
		if p.Kind == mps.Ghost {
			continue
		}
		if p.Pressure < minP {
			minP = p.Pressure
		}
		if p.Pressure > maxP {
			maxP = p.Pressure
		}
	}
	pRange := maxP - minP

	for _, p := range ps.Particles {
		if p.Kind == mps.Ghost {
			continue
		}
		sx := (p.Pos[0] - domainMin[0]) / spanX * float64(width)
		sy := float64(height) - (p.Pos[1]-domainMin[1])/spanY*float64(height)

		if p.Kind == mps.Wall {
			dc.SetColor(color.Gray{Y: 128})
		} else {
			t := 0.5
			if pRange > 1e-12 {
				t = (p.Pressure - minP) / pRange
			}
			dc.SetColor(Palette(t))
		}
		dc.DrawCircle(sx, sy, particleRadius)
		dc.Fill()
	}

	return dc.SavePNG(path)
}
