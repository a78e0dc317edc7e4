package mps

import "math"

// Vec is a fixed-size 3-component vector used for both 2D and 3D particles.
// A ParticleSystem's Dim field says how many leading components are active;
// the unused trailing components are always zero and operators never read
// past Dim. This follows the source's "d as a runtime parameter of
// fixed-size vector operations" re-expression rather than shipping parallel
// 2D/3D types.
type Vec [3]float64

func (a Vec) Add(b Vec) Vec {
	return Vec{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

func (a Vec) Sub(b Vec) Vec {
	return Vec{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

func (a Vec) Scale(s float64) Vec {
	return Vec{a[0] * s, a[1] * s, a[2] * s}
}

func (a Vec) Dot(b Vec) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func (a Vec) NormSq() float64 {
	return a.Dot(a)
}

func (a Vec) Norm() float64 {
	return math.Sqrt(a.NormSq())
}

func (a Vec) HasNaN() bool {
	return math.IsNaN(a[0]) || math.IsNaN(a[1]) || math.IsNaN(a[2])
}
