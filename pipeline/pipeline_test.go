/*
 * pipeline_test.go, part of micelle.
 *
 * Copyright 2024 Raul Mera <rauldotmeraatusachdotcl>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package pipeline

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	chem "github.com/rmera/micelle"
	"github.com/rmera/micelle/config"
	"github.com/rmera/micelle/metrics"
	"github.com/rmera/micelle/traj/dcd"
	"github.com/rmera/micelle/traj/stf"
	v3 "github.com/rmera/micelle/v3"
	"github.com/smartystreets/goconvey/convey"
	"gonum.org/v1/gonum/floats"
)

// cubeTop returns a topology with the 8 carbons of a C12 "micelle" and, if
// water is true, one extra water oxygen.
func cubeTop(water bool) *chem.Topology {
	ats := make([]*chem.Atom, 0, 9)
	for i := 0; i < 8; i++ {
		ats = append(ats, &chem.Atom{Name: "C" + string(rune('1'+i)), ID: i + 1, Molname: "C12", MolID: 1, Chain: "A", Symbol: "C", Het: true})
	}
	if water {
		ats = append(ats, &chem.Atom{Name: "OW", ID: 9, Molname: "SOL", MolID: 2, Chain: "B", Symbol: "O", Het: true})
	}
	top, _ := chem.NewTopology(ats)
	return top
}

// cubeFrame returns the frame i of the synthetic trajectory: the 8 vertices
// of a cube of side 2 centered at cubeCenter(i), and, if water is true,
// a far away atom.
func cubeFrame(i int, water bool) *v3.Matrix {
	c := cubeCenter(i)
	data := make([]float64, 0, 27)
	for _, x := range []float64{-1, 1} {
		for _, y := range []float64{-1, 1} {
			for _, z := range []float64{-1, 1} {
				data = append(data, c[0]+x, c[1]+y, c[2]+z)
			}
		}
	}
	if water {
		data = append(data, 100, 100, 100)
	}
	m, _ := v3.NewMatrix(data)
	return m
}

// cubeBfactors returns a distinct b-factor for each atom of cubeTop(water).
func cubeBfactors(water bool) []float64 {
	n := 8
	if water {
		n++
	}
	b := make([]float64, n)
	for i := range b {
		b[i] = 0.5*float64(i) + 0.25
	}
	return b
}

func cubeCenter(i int) [3]float64 {
	return [3]float64{float64(i), 2 * float64(i), 10 - float64(i)}
}

// writeFixtures writes a PDB with the first frame, a PDB with all the frames
// as models and an STF trajectory with all the frames. It returns their names.
func writeFixtures(t *testing.T, dir string, nframes int, water bool) (string, string, string) {
	top := cubeTop(water)
	single := filepath.Join(dir, "C12.pdb")
	multi := filepath.Join(dir, "C12_models.pdb")
	traj := filepath.Join(dir, "C12.stf")
	w, err := chem.NewPDBWriter(single, top)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.SetBfactors(cubeBfactors(water)); err != nil {
		t.Fatal(err)
	}
	w.WNext(cubeFrame(0, water))
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	mw, err := chem.NewPDBWriter(multi, top)
	if err != nil {
		t.Fatal(err)
	}
	if err := mw.SetBfactors(cubeBfactors(water)); err != nil {
		t.Fatal(err)
	}
	sw, err := stf.NewWriter(traj, top.Len(), nil)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < nframes; i++ {
		mw.WNext(cubeFrame(i, water))
		sw.WNext(cubeFrame(i, water))
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := sw.Close(); err != nil {
		t.Fatal(err)
	}
	return single, multi, traj
}

// writeXTC writes the cube frames to an uncompressed XTC file, with
// frame i at 2.5*i ps in a cubic box of 5 nm.
func writeXTC(t *testing.T, name string, nframes int) {
	buf := new(bytes.Buffer)
	w := func(v any) { binary.Write(buf, binary.BigEndian, v) }
	for i := 0; i < nframes; i++ {
		data := cubeFrame(i, false).RawMatrix().Data
		coords := make([]float32, len(data))
		for j, c := range data {
			coords[j] = float32(c / 10) //Angstroms to nm
		}
		w(int32(1995))
		w(int32(8))
		w(int32(1000 * i))
		w(float32(2.5 * float64(i)))
		w([9]float32{5, 0, 0, 0, 5, 0, 0, 0, 5})
		w(int32(8))
		w(coords)
	}
	if err := os.WriteFile(name, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
}

func readPayload(t *testing.T, name string) metrics.Payload {
	var p metrics.Payload
	data, err := os.ReadFile(name)
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(data, &p); err != nil {
		t.Fatal(err)
	}
	return p
}

func countModels(t *testing.T, name string) int {
	data, err := os.ReadFile(name)
	if err != nil {
		t.Fatal(err)
	}
	return strings.Count(string(data), "\nMODEL ")
}

func TestIndices(Te *testing.T) {
	for n := 0; n < 30; n++ {
		for s := 1; s < 12; s++ {
			ind := Indices(n, s)
			if len(ind) != (n+s-1)/s {
				Te.Errorf("N=%d S=%d: %d indices", n, s, len(ind))
			}
			sampler := NewSampler(s)
			k := 0
			for i := 0; i < n; i++ {
				if sampler.Keep(i) {
					if k >= len(ind) || ind[k] != i {
						Te.Fatalf("N=%d S=%d: sampler keeps %d, indices are %v", n, s, i, ind)
					}
					k++
				}
			}
			if k != len(ind) {
				Te.Errorf("N=%d S=%d: sampler kept %d frames, indices have %d", n, s, k, len(ind))
			}
			for i := 1; i < len(ind); i++ {
				if ind[i]-ind[i-1] != s {
					Te.Errorf("N=%d S=%d: indices %v", n, s, ind)
				}
			}
		}
	}
	if ind := Indices(11, 5); len(ind) != 3 || ind[0] != 0 || ind[1] != 5 || ind[2] != 10 {
		Te.Errorf("wrong indices for N=11 S=5: %v", ind)
	}
	if ind := Indices(4, 10); len(ind) != 1 || ind[0] != 0 {
		Te.Errorf("wrong indices for a stride larger than the trajectory: %v", ind)
	}
	defer func() {
		if r := recover(); r == nil {
			Te.Error("a stride of 0 should panic")
		}
	}()
	Indices(10, 0)
}

func TestRun(t *testing.T) {
	convey.Convey("Given an 11-frame cube trajectory", t, func() {
		dir := t.TempDir()
		single, multi, traj := writeFixtures(t, dir, 11, false)
		cfg := config.Default()
		cfg.Structure = single
		cfg.Trajectory = traj
		cfg.OutDir = filepath.Join(dir, "out")

		convey.Convey("When it is run with stride 5", func() {
			res, err := Run(cfg, nil)
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then frames 0, 5 and 10 should be kept", func() {
				convey.So(res.Read, convey.ShouldEqual, 11)
				convey.So(res.NFrames(), convey.ShouldEqual, 3)
				p := readPayload(t, res.JSON)
				convey.So(p.Name, convey.ShouldEqual, "C12")
				convey.So(p.Stride, convey.ShouldEqual, 5)
				convey.So(p.NFrames, convey.ShouldEqual, 3)
				//STF has no time, so the frame index is used.
				convey.So(p.Times, convey.ShouldResemble, []float64{0, 5, 10})
				for _, s := range [][]float64{p.CX, p.CY, p.CZ, p.Rg, p.RgX, p.RgY, p.RgZ} {
					convey.So(len(s), convey.ShouldEqual, 3)
				}
				convey.So(countModels(t, res.PDB), convey.ShouldEqual, 3)
			})

			convey.Convey("Then the centers should be the cube centroids and Rg sqrt(3)", func() {
				p := readPayload(t, res.JSON)
				for k, i := range []int{0, 5, 10} {
					c := cubeCenter(i)
					convey.So(p.CX[k], convey.ShouldAlmostEqual, c[0], 1e-6)
					convey.So(p.CY[k], convey.ShouldAlmostEqual, c[1], 1e-6)
					convey.So(p.CZ[k], convey.ShouldAlmostEqual, c[2], 1e-6)
					convey.So(p.Rg[k], convey.ShouldAlmostEqual, math.Sqrt(3), 1e-6)
					convey.So(p.RgX[k], convey.ShouldAlmostEqual, 1, 1e-6)
					convey.So(p.RgY[k], convey.ShouldAlmostEqual, 1, 1e-6)
					convey.So(p.RgZ[k], convey.ShouldAlmostEqual, 1, 1e-6)
				}
			})

			convey.Convey("Then the k-th model should hold the k-th sampled frame", func() {
				mol, err := chem.PDBFileRead(res.PDB)
				convey.So(err, convey.ShouldBeNil)
				convey.So(mol.NFrames(), convey.ShouldEqual, 3)
				for k, i := range []int{0, 5, 10} {
					same := floats.EqualApprox(mol.Coords[k].RawMatrix().Data, cubeFrame(i, false).RawMatrix().Data, 1e-3)
					convey.So(same, convey.ShouldBeTrue)
					convey.So(mol.Bfactors[k], convey.ShouldResemble, cubeBfactors(false))
				}
			})

			convey.Convey("Then a second run should give the same outputs", func() {
				first, _ := os.ReadFile(res.JSON)
				firstpdb, _ := os.ReadFile(res.PDB)
				res2, err := Run(cfg, nil)
				convey.So(err, convey.ShouldBeNil)
				second, _ := os.ReadFile(res2.JSON)
				secondpdb, _ := os.ReadFile(res2.PDB)
				convey.So(bytes.Equal(first, second), convey.ShouldBeTrue)
				convey.So(bytes.Equal(firstpdb, secondpdb), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the structure's own models are the trajectory", func() {
			cfg.Structure = multi
			cfg.Trajectory = ""
			res, err := Run(cfg, nil)

			convey.Convey("Then the same frames should be kept", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(res.NFrames(), convey.ShouldEqual, 3)
				convey.So(res.Payload.Times, convey.ShouldResemble, []float64{0, 5, 10})
				convey.So(res.Payload.CX[2], convey.ShouldAlmostEqual, 10, 1e-6)
			})
		})

		convey.Convey("When the trajectory is an XTC file", func() {
			cfg.Trajectory = filepath.Join(dir, "C12.xtc")
			writeXTC(t, cfg.Trajectory, 11)
			res, err := Run(cfg, nil)

			convey.Convey("Then the times should be the ones in the file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(res.NFrames(), convey.ShouldEqual, 3)
				p := readPayload(t, res.JSON)
				convey.So(p.Times, convey.ShouldResemble, []float64{0, 12.5, 25})
				for k, i := range []int{0, 5, 10} {
					c := cubeCenter(i)
					convey.So(p.CX[k], convey.ShouldAlmostEqual, c[0], 1e-4)
					convey.So(p.CY[k], convey.ShouldAlmostEqual, c[1], 1e-4)
					convey.So(p.CZ[k], convey.ShouldAlmostEqual, c[2], 1e-4)
					convey.So(p.Rg[k], convey.ShouldAlmostEqual, math.Sqrt(3), 1e-4)
				}
				pdb, _ := os.ReadFile(res.PDB)
				convey.So(string(pdb), convey.ShouldContainSubstring, "CRYST1   50.000   50.000   50.000")
			})
		})

		convey.Convey("When the stride is larger than the trajectory", func() {
			cfg.Stride = 20
			res, err := Run(cfg, nil)

			convey.Convey("Then only the first frame should be kept", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(res.NFrames(), convey.ShouldEqual, 1)
				convey.So(res.Payload.Times, convey.ShouldResemble, []float64{0})
				convey.So(countModels(t, res.PDB), convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When a sampled DCD trajectory and a plot are requested", func() {
			cfg.SampledFormat = "dcd"
			cfg.Plot = true
			res, err := Run(cfg, nil)
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then the DCD should hold the sampled frames", func() {
				d, err := dcd.New(res.Sampled)
				convey.So(err, convey.ShouldBeNil)
				defer d.Close()
				convey.So(d.NFrames(), convey.ShouldEqual, 3)
				convey.So(d.Len(), convey.ShouldEqual, 8)
			})

			convey.Convey("Then the plot should exist", func() {
				_, err := os.Stat(res.Plot)
				convey.So(err, convey.ShouldBeNil)
			})
		})

		convey.Convey("When a report is requested", func() {
			res, err := Run(cfg, nil)
			convey.So(err, convey.ShouldBeNil)
			var buf bytes.Buffer
			err = Report(&buf, cfg.Name, res.Frames)

			convey.Convey("Then it should summarize the Rg", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(buf.String(), convey.ShouldContainSubstring, "Rg distribution")
				convey.So(buf.String(), convey.ShouldContainSubstring, "mean 1.732")
			})
		})
	})
}

func TestRunLogging(Te *testing.T) {
	dir := Te.TempDir()
	single, _, traj := writeFixtures(Te, dir, 3, false)
	cfg := config.Default()
	cfg.Structure = single
	cfg.Trajectory = traj
	cfg.OutDir = dir
	//the STF fixture has no box, which the reader reports.
	var global bytes.Buffer
	log.SetOutput(&global)
	defer log.SetOutput(os.Stderr)
	if _, err := Run(cfg, nil); err != nil {
		Te.Fatal(err)
	}
	if global.Len() != 0 {
		Te.Errorf("a run without logger wrote to the standard logger: %q", global.String())
	}
	var buf bytes.Buffer
	if _, err := Run(cfg, log.New(&buf, "", 0)); err != nil {
		Te.Fatal(err)
	}
	if !strings.Contains(buf.String(), "box information") {
		Te.Errorf("the missing box was not reported to the logger: %q", buf.String())
	}
	if global.Len() != 0 {
		Te.Errorf("a run with a logger wrote to the standard logger: %q", global.String())
	}
}

func TestRunSelections(t *testing.T) {
	convey.Convey("Given a cube trajectory with a water molecule", t, func() {
		dir := t.TempDir()
		single, _, traj := writeFixtures(t, dir, 4, true)
		cfg := config.Default()
		cfg.Structure = single
		cfg.Trajectory = traj
		cfg.OutDir = dir
		cfg.Stride = 1

		convey.Convey("When only the surfactant is selected", func() {
			cfg.AllAtoms = false
			cfg.Selection = "resname C12"
			res, err := Run(cfg, nil)

			convey.Convey("Then the water should not count", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(res.NFrames(), convey.ShouldEqual, 4)
				convey.So(res.Payload.Rg[3], convey.ShouldAlmostEqual, math.Sqrt(3), 1e-6)
				mol, err := chem.PDBFileRead(res.PDB)
				convey.So(err, convey.ShouldBeNil)
				convey.So(mol.Len(), convey.ShouldEqual, 8)
				convey.So(mol.Bfactors[0], convey.ShouldResemble, cubeBfactors(true)[:8])
			})
		})

		convey.Convey("When a single atom is selected", func() {
			cfg.AllAtoms = false
			cfg.Selection = "name OW"
			res, err := Run(cfg, nil)

			convey.Convey("Then the center should be the atom and the radii 0", func() {
				convey.So(err, convey.ShouldBeNil)
				for k := range res.Frames {
					convey.So(res.Payload.CX[k], convey.ShouldAlmostEqual, 100, 1e-6)
					convey.So(res.Payload.Rg[k], convey.ShouldAlmostEqual, 0, 1e-6)
					convey.So(res.Payload.RgX[k], convey.ShouldAlmostEqual, 0, 1e-6)
				}
			})
		})

		convey.Convey("When the selection matches nothing", func() {
			cfg.AllAtoms = false
			cfg.Selection = "resname SDS"
			_, err := Run(cfg, nil)

			convey.Convey("Then the run should fail before writing the metrics", func() {
				convey.So(err, convey.ShouldNotBeNil)
				_, statErr := os.Stat(cfg.JSONOut())
				convey.So(os.IsNotExist(statErr), convey.ShouldBeTrue)
			})
		})
	})
}

func TestRunErrors(t *testing.T) {
	convey.Convey("Given inputs that can't be processed", t, func() {
		dir := t.TempDir()
		single, _, traj := writeFixtures(t, dir, 2, false)
		cfg := config.Default()
		cfg.Structure = single
		cfg.Trajectory = traj
		cfg.OutDir = dir

		convey.Convey("A missing structure should be an error", func() {
			cfg.Structure = filepath.Join(dir, "missing.pdb")
			_, err := Run(cfg, nil)
			convey.So(err, convey.ShouldNotBeNil)
		})

		convey.Convey("An unknown trajectory format should be an error", func() {
			cfg.Trajectory = filepath.Join(dir, "C12.trr")
			_, err := Run(cfg, nil)
			convey.So(err, convey.ShouldNotBeNil)
		})

		convey.Convey("A trajectory with a different number of atoms should be an error", func() {
			other := filepath.Join(dir, "other.stf")
			w, _ := stf.NewWriter(other, 3, nil)
			w.WNext(v3.Zeros(3))
			w.Close()
			cfg.Trajectory = other
			_, err := Run(cfg, nil)
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(err.Error(), convey.ShouldContainSubstring, "atoms")
		})

		convey.Convey("An invalid configuration should be an error", func() {
			cfg.Stride = 0
			_, err := Run(cfg, nil)
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestSummarize(Te *testing.T) {
	if _, err := Summarize(nil); err == nil {
		Te.Error("summarizing no frames should fail")
	}
	frames := []metrics.Frame{
		{Rg: 20, Kappa2: 0.1, Principal: [3]float64{3, 2, 1}},
		{Rg: 22, Kappa2: 0.2, Principal: [3]float64{5, 4, 3}},
		{Rg: 24, Kappa2: 0.3, Principal: [3]float64{7, 6, 5}},
	}
	S, err := Summarize(frames)
	if err != nil {
		Te.Fatal(err)
	}
	if S.MeanRg != 22 || S.MinRg != 20 || S.MaxRg != 24 || math.Abs(S.StdRg-2) > 1e-9 {
		Te.Errorf("wrong Rg statistics: %+v", S)
	}
	if math.Abs(S.MeanKappa2-0.2) > 1e-9 || S.MeanPrincipal != [3]float64{5, 4, 3} {
		Te.Errorf("wrong shape statistics: %+v", S)
	}
	if S.RgDistribution.Total() != 3 {
		Te.Errorf("the distribution should hold 3 values, it holds %v", S.RgDistribution.Total())
	}
	if len(S.RgACF) != 3 || S.RgACF[0] != 1 {
		Te.Errorf("wrong Rg autocorrelation: %v", S.RgACF)
	}
	//a linear ramp: lag 1 correlates as (-2*0+0*2)/8 = 0
	if S.RgDecorrelation != 1 {
		Te.Errorf("expected decorrelation at lag 1, got %d", S.RgDecorrelation)
	}
}
