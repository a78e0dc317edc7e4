// Package output provides OutputSink implementations: CSV (via gocsv,
// mirroring the telemetry writer pattern) and legacy VTK ASCII, the two wire
// formats the source ships (§6 "wire format is delegated... CSV, VTK,
// etc.").
package output

import (
	"fmt"
	"os"
	"path/filepath"

	"mpsfluid/mps"

	"github.com/gocarina/gocsv"
)

// csvRow is one non-Ghost particle's snapshot row. Field order matches the
// source's output_csv column order: position, velocity, pressure, type.
type csvRow struct {
	X        float64 `csv:"x"`
	Y        float64 `csv:"y"`
	Z        float64 `csv:"z"`
	Vx       float64 `csv:"vx"`
	Vy       float64 `csv:"vy"`
	Vz       float64 `csv:"vz"`
	Pressure float64 `csv:"pressure"`
	Kind     int     `csv:"type"`
}

// CSVSink writes one CSV file per emitted step into Dir, named
// step_NNNNNN.csv, skipping Ghost particles per the §6 snapshot contract.
type CSVSink struct {
	Dir string
}

// NewCSVSink ensures Dir exists and returns a sink writing into it.
func NewCSVSink(dir string) (*CSVSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("output: creating csv dir: %w", err)
	}
	return &CSVSink{Dir: dir}, nil
}

func (s *CSVSink) Write(step int, ps *mps.ParticleSystem) error {
	rows := make([]csvRow, 0, len(ps.Particles))
	for _, p := range ps.Particles {
		if p.Kind == mps.Ghost {
			continue
		}
		rows = append(rows, csvRow{
			X: p.Pos[0], Y: p.Pos[1], Z: p.Pos[2],
			Vx: p.Vel[0], Vy: p.Vel[1], Vz: p.Vel[2],
			Pressure: p.Pressure,
			Kind:     int(p.Kind),
		})
	}

	path := filepath.Join(s.Dir, fmt.Sprintf("step_%06d.csv", step))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("output: creating %s: %w", path, err)
	}
	defer f.Close()

	if err := gocsv.MarshalFile(&rows, f); err != nil {
		return fmt.Errorf("output: writing %s: %w", path, err)
	}
	return nil
}
