package scenario

import (
	"fmt"
	"os"

	"mpsfluid/mps"

	"gopkg.in/yaml.v3"
)

// yamlParameters mirrors mps.Parameters field-for-field but with yaml tags
// and primitive vector representations, so a run can be configured from a
// flat YAML document instead of CLI flags (§6 "parameter bundle... consumed,
// fully resolved by the caller" leaves the resolution mechanism to the
// driving code).
type yamlParameters struct {
	Dim int `yaml:"dim"`

	ParticleDistance  float64 `yaml:"particle_distance"`
	InfluenceRatioN   float64 `yaml:"influence_ratio_n"`
	InfluenceRatioLap float64 `yaml:"influence_ratio_lap"`
	MaxNeighbors      int     `yaml:"max_neighbors"`
	WallLayers        int     `yaml:"wall_layers"`
	DummyLayers       int     `yaml:"dummy_layers"`

	Density            float64   `yaml:"density"`
	KinematicViscosity float64   `yaml:"kinematic_viscosity"`
	Gravity            []float64 `yaml:"gravity"`

	Dt             float64 `yaml:"dt"`
	TEnd           float64 `yaml:"t_end"`
	OutputInterval int     `yaml:"output_interval"`

	SolverType            string  `yaml:"solver_type"`
	CGMaxIter             int     `yaml:"cg_max_iter"`
	CGTolerance           float64 `yaml:"cg_tolerance"`
	Relaxation            float64 `yaml:"relaxation"`
	ClampNegativePressure bool    `yaml:"clamp_negative_pressure"`
	PPEType               string  `yaml:"ppe_type"`
	NatsuiC               float64 `yaml:"natsui_c"`
	NatsuiGamma           float64 `yaml:"natsui_gamma"`
	SoundSpeed            float64 `yaml:"sound_speed"`

	SurfaceThreshold      float64 `yaml:"surface_threshold"`
	SurfaceMethod         string  `yaml:"surface_detection_method"`
	SurfaceCountThreshold float64 `yaml:"surface_count_threshold"`

	Restitution            float64 `yaml:"restitution"`
	CollisionDistanceRatio float64 `yaml:"collision_distance_ratio"`

	WallRepulsionCoeff float64 `yaml:"wall_repulsion_coeff"`
	WallRestitution    float64 `yaml:"wall_restitution"`

	DomainMin []float64 `yaml:"domain_min"`
	DomainMax []float64 `yaml:"domain_max"`

	UseAnalyticalLambda bool `yaml:"use_analytical_lambda"`

	SurfaceTension struct {
		Enabled bool    `yaml:"enabled"`
		Sigma   float64 `yaml:"sigma"`
		ReRatio float64 `yaml:"re_ratio"`
	} `yaml:"surface_tension"`
}

// LoadParameters reads a YAML parameter bundle, overlaying it onto
// mps.DefaultParameters so an incomplete document still yields valid
// defaults for fields it omits.
func LoadParameters(path string) (mps.Parameters, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return mps.Parameters{}, fmt.Errorf("scenario: reading config: %w", err)
	}

	params := mps.DefaultParameters()
	y := yamlParamsFromDefaults(params)
	if err := yaml.Unmarshal(data, &y); err != nil {
		return mps.Parameters{}, fmt.Errorf("scenario: parsing config: %w", err)
	}

	out := applyYAML(params, y)
	if err := out.Validate(); err != nil {
		return mps.Parameters{}, err
	}
	return out, nil
}

func yamlParamsFromDefaults(p mps.Parameters) yamlParameters {
	var y yamlParameters
	y.Dim = p.Dim
	y.ParticleDistance = p.ParticleDistance
	y.InfluenceRatioN = p.InfluenceRatioN
	y.InfluenceRatioLap = p.InfluenceRatioLap
	y.MaxNeighbors = p.MaxNeighbors
	y.WallLayers = p.WallLayers
	y.DummyLayers = p.DummyLayers
	y.Density = p.Density
	y.KinematicViscosity = p.KinematicViscosity
	y.Gravity = vecToSlice(p.Gravity, p.Dim)
	y.Dt = p.Dt
	y.TEnd = p.TEnd
	y.OutputInterval = p.OutputInterval
	y.SolverType = solverTypeName(p.SolverType)
	y.CGMaxIter = p.CGMaxIter
	y.CGTolerance = p.CGTolerance
	y.Relaxation = p.Relaxation
	y.ClampNegativePressure = p.ClampNegativePressure
	y.PPEType = ppeTypeName(p.PPEType)
	y.NatsuiC = p.NatsuiC
	y.NatsuiGamma = p.NatsuiGamma
	y.SoundSpeed = p.SoundSpeed
	y.SurfaceThreshold = p.SurfaceThreshold
	y.SurfaceMethod = surfaceMethodName(p.SurfaceMethod)
	y.SurfaceCountThreshold = p.SurfaceCountThreshold
	y.Restitution = p.Restitution
	y.CollisionDistanceRatio = p.CollisionDistanceRatio
	y.WallRepulsionCoeff = p.WallRepulsionCoeff
	y.WallRestitution = p.WallRestitution
	y.DomainMin = vecToSlice(p.DomainMin, p.Dim)
	y.DomainMax = vecToSlice(p.DomainMax, p.Dim)
	y.UseAnalyticalLambda = p.UseAnalyticalLambda
	y.SurfaceTension.Enabled = p.SurfaceTension.Enabled
	y.SurfaceTension.Sigma = p.SurfaceTension.Sigma
	y.SurfaceTension.ReRatio = p.SurfaceTension.ReRatio
	return y
}

func applyYAML(base mps.Parameters, y yamlParameters) mps.Parameters {
	base.Dim = y.Dim
	base.ParticleDistance = y.ParticleDistance
	base.InfluenceRatioN = y.InfluenceRatioN
	base.InfluenceRatioLap = y.InfluenceRatioLap
	base.MaxNeighbors = y.MaxNeighbors
	base.WallLayers = y.WallLayers
	base.DummyLayers = y.DummyLayers
	base.Density = y.Density
	base.KinematicViscosity = y.KinematicViscosity
	base.Gravity = sliceToVec(y.Gravity)
	base.Dt = y.Dt
	base.TEnd = y.TEnd
	base.OutputInterval = y.OutputInterval
	base.SolverType = parseSolverType(y.SolverType)
	base.CGMaxIter = y.CGMaxIter
	base.CGTolerance = y.CGTolerance
	base.Relaxation = y.Relaxation
	base.ClampNegativePressure = y.ClampNegativePressure
	base.PPEType = parsePPEType(y.PPEType)
	base.NatsuiC = y.NatsuiC
	base.NatsuiGamma = y.NatsuiGamma
	base.SoundSpeed = y.SoundSpeed
	base.SurfaceThreshold = y.SurfaceThreshold
	base.SurfaceMethod = parseSurfaceMethod(y.SurfaceMethod)
	base.SurfaceCountThreshold = y.SurfaceCountThreshold
	base.Restitution = y.Restitution
	base.CollisionDistanceRatio = y.CollisionDistanceRatio
	base.WallRepulsionCoeff = y.WallRepulsionCoeff
	base.WallRestitution = y.WallRestitution
	base.DomainMin = sliceToVec(y.DomainMin)
	base.DomainMax = sliceToVec(y.DomainMax)
	base.UseAnalyticalLambda = y.UseAnalyticalLambda
	base.SurfaceTension.Enabled = y.SurfaceTension.Enabled
	base.SurfaceTension.Sigma = y.SurfaceTension.Sigma
	base.SurfaceTension.ReRatio = y.SurfaceTension.ReRatio
	return base
}

func vecToSlice(v mps.Vec, dim int) []float64 {
	out := make([]float64, dim)
	for i := 0; i < dim; i++ {
		out[i] = v[i]
	}
	return out
}

func sliceToVec(s []float64) mps.Vec {
	var v mps.Vec
	for i := 0; i < len(s) && i < 3; i++ {
		v[i] = s[i]
	}
	return v
}

func solverTypeName(s mps.SolverType) string {
	if s == mps.SolverICCG {
		return "iccg"
	}
	return "cg"
}

func parseSolverType(s string) mps.SolverType {
	if s == "iccg" {
		return mps.SolverICCG
	}
	return mps.SolverCG
}

func ppeTypeName(t mps.PPEType) string {
	if t == mps.PPENatsui {
		return "natsui"
	}
	return "density"
}

func parsePPEType(s string) mps.PPEType {
	if s == "natsui" {
		return mps.PPENatsui
	}
	return mps.PPEDensity
}

func surfaceMethodName(m mps.SurfaceMethod) string {
	if m == mps.SurfaceByCount {
		return "count"
	}
	return "density"
}

func parseSurfaceMethod(s string) mps.SurfaceMethod {
	if s == "count" {
		return mps.SurfaceByCount
	}
	return mps.SurfaceByDensity
}
