package output

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"mpsfluid/mps"
)

// VTKSink writes one legacy VTK ASCII file per emitted step, matching the
// source's output_vtk: POINTS/CELLS/CELL_TYPES/POINT_DATA with pressure and
// type scalars and a velocity vector field. Ghost particles are skipped.
type VTKSink struct {
	Dir string
}

func NewVTKSink(dir string) (*VTKSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("output: creating vtk dir: %w", err)
	}
	return &VTKSink{Dir: dir}, nil
}

func (s *VTKSink) Write(step int, ps *mps.ParticleSystem) error {
	path := filepath.Join(s.Dir, fmt.Sprintf("step_%06d.vtk", step))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("output: creating %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	defer w.Flush()

	live := make([]int, 0, len(ps.Particles))
	for i, p := range ps.Particles {
		if p.Kind != mps.Ghost {
			live = append(live, i)
		}
	}
	n := len(live)

	fmt.Fprintln(w, "# vtk DataFile Version 3.0")
	fmt.Fprintln(w, "mps particle snapshot")
	fmt.Fprintln(w, "ASCII")
	fmt.Fprintln(w, "DATASET UNSTRUCTURED_GRID")
	fmt.Fprintf(w, "POINTS %d float\n", n)
	for _, i := range live {
		p := ps.Particles[i]
		fmt.Fprintf(w, "%g %g %g\n", p.Pos[0], p.Pos[1], p.Pos[2])
	}

	fmt.Fprintf(w, "CELLS %d %d\n", n, 2*n)
	for i := 0; i < n; i++ {
		fmt.Fprintf(w, "1 %d\n", i)
	}
	fmt.Fprintf(w, "CELL_TYPES %d\n", n)
	for i := 0; i < n; i++ {
		fmt.Fprintln(w, "1")
	}

	fmt.Fprintf(w, "POINT_DATA %d\n", n)
	fmt.Fprintln(w, "SCALARS pressure float 1")
	fmt.Fprintln(w, "LOOKUP_TABLE default")
	for _, i := range live {
		fmt.Fprintf(w, "%g\n", ps.Particles[i].Pressure)
	}
	fmt.Fprintln(w, "SCALARS type int 1")
	fmt.Fprintln(w, "LOOKUP_TABLE default")
	for _, i := range live {
		fmt.Fprintf(w, "%d\n", int(ps.Particles[i].Kind))
	}
	fmt.Fprintln(w, "VECTORS velocity float")
	for _, i := range live {
		p := ps.Particles[i]
		fmt.Fprintf(w, "%g %g %g\n", p.Vel[0], p.Vel[1], p.Vel[2])
	}

	return nil
}
