/*
 * seed_test.go, part of msicastep.
 *
 * Copyright 2024 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
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

package castep

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	chem "github.com/rmera/msicastep"
	"github.com/rmera/msicastep/msi"
)

func TestConfig(Te *testing.T) {
	c, err := DecodeConfig(`
[seed]
name = "feo"
task = "geom"

[castep]
cut_off_energy = 450
metals_method = "edft"
mp_grid = [2, 2, 3]
kpoints_list = [[0.0, 0.0, 0.0, 0.5], [0.5, 0.5, 0.5, 0.5]]
external_pressure = [1, 0, 0, 1, 0, 1]

[parser]
policy = "preserve"
`)
	if err != nil {
		Te.Fatal(err)
	}
	if c.Seed.Name != "feo" || c.Castep.CutOffEnergy != 450 || c.Castep.MPGrid != [3]int{2, 2, 3} {
		Te.Errorf("values not read: %+v", c)
	}
	if len(c.Castep.KPointsList) != 2 || c.Castep.KPointsList[1][3] != 0.5 || c.Castep.ExternalPressure[3] != 1 {
		Te.Errorf("arrays not read: %+v", c.Castep)
	}
	if c.Castep.XCFunctional != "PBE" || c.Seed.Cores != 12 || !c.Castep.SpinPolarized {
		Te.Error("defaults lost")
	}
	tasks, err := c.Tasks()
	if err != nil || len(tasks) != 1 || tasks[0] != GeometryOptimization {
		Te.Errorf("tasks %v, %v", tasks, err)
	}
	o, err := c.ParserOptions(nil)
	if err != nil || o.Policy != msi.Preserve || o.MaxDepth != msi.DefaultMaxDepth {
		Te.Errorf("parser options %+v, %v", o, err)
	}
	for name, text := range map[string]string{
		"unknown key":   "[castep]\ncutoff = 300\n",
		"bad task":      "[seed]\ntask = \"md\"\n",
		"bad grid":      "[castep]\nmp_grid = [0, 1, 1]\n",
		"short grid":    "[castep]\nmp_grid = [1, 1]\n",
		"bad method":    "[castep]\nmetals_method = \"magic\"\n",
		"bad policy":    "[parser]\npolicy = \"keep\"\n",
		"no k-points":   "[castep]\nkpoints_list = []\n",
		"bad smearing":  "[castep]\nsmearing_width = 0\n",
		"broken syntax": "[castep\n",
	} {
		if _, err := DecodeConfig(text); !chem.IsKind(err, chem.ConfigError) {
			Te.Errorf("%s: expected a ConfigError, got %v", name, err)
		}
	}
}

func TestLoadConfig(Te *testing.T) {
	name := filepath.Join(Te.TempDir(), ConfigFile)
	if err := os.WriteFile(name, []byte("[transform]\ncpus = 2\n"), 0o644); err != nil {
		Te.Fatal(err)
	}
	c, err := LoadConfig(name)
	if err != nil {
		Te.Fatal(err)
	}
	if c.TransformOptions().Cpus() != 2 {
		Te.Errorf("cpus not read")
	}
	if _, err := LoadConfig(filepath.Join(Te.TempDir(), "nothere.toml")); !chem.IsKind(err, chem.ConfigError) {
		Te.Errorf("missing file gave %v", err)
	}
}

// potentials writes fake potential files for O and Fe to a new directory.
func potentials(Te *testing.T) string {
	dir := Te.TempDir()
	files := map[string]string{
		"O_00PBE.usp":  "\"   Oxygen, ultrasoft   \"\n\"   340.0   380.0   440.0  COARSE  MEDIUM  FINE   \"\n 1 2 3\n",
		"Fe_00PBE.usp": "\"   Iron   \"\n\"   300 350 451 COARSE MEDIUM FINE\"\n",
	}
	for n, text := range files {
		if err := os.WriteFile(filepath.Join(dir, n), []byte(text), 0o644); err != nil {
			Te.Fatal(err)
		}
	}
	return dir
}

func TestPotentials(Te *testing.T) {
	mol := feo(Te)
	pot := potentials(Te)
	cut, err := CutOffFromPotentials(mol, pot)
	if err != nil {
		Te.Fatal(err)
	}
	if cut != 460 {
		Te.Errorf("cut-off %g, want 460", cut)
	}
	dest := Te.TempDir()
	if err := os.WriteFile(filepath.Join(dest, "O_00PBE.usp"), []byte("keep"), 0o644); err != nil {
		Te.Fatal(err)
	}
	copied, err := CopyPotentials(mol, pot, dest)
	if err != nil {
		Te.Fatal(err)
	}
	if len(copied) != 1 || copied[0] != "Fe_00PBE.usp" {
		Te.Errorf("copied %v", copied)
	}
	if b, _ := os.ReadFile(filepath.Join(dest, "O_00PBE.usp")); string(b) != "keep" {
		Te.Error("an existing potential was overwritten")
	}
	if err := mol.AddAtom(chem.Atom{ID: 3, Symbol: "Ni"}, [3]float64{1, 1, 1}); err != nil {
		Te.Fatal(err)
	}
	if _, err := CopyPotentials(mol, pot, dest); !chem.IsKind(err, chem.NotFound) {
		Te.Errorf("missing potential gave %v", err)
	}
	if _, err := CutOffFromPotentials(mol, pot); !chem.IsKind(err, chem.NotFound) {
		Te.Errorf("missing potential gave %v", err)
	}
}

// A potential that can't be read must not leave a truncated copy behind.
func TestPotentialsReadError(Te *testing.T) {
	pot := Te.TempDir()
	if err := os.WriteFile(filepath.Join(pot, "O_00PBE.usp"), []byte("O"), 0o644); err != nil {
		Te.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(pot, "Fe_00PBE.usp"), 0o755); err != nil {
		Te.Fatal(err)
	}
	dest := Te.TempDir()
	copied, err := CopyPotentials(feo(Te), pot, dest)
	if !chem.IsKind(err, chem.ExportError) {
		Te.Errorf("unreadable potential gave %v", err)
	}
	if len(copied) != 1 || copied[0] != "O_00PBE.usp" {
		Te.Errorf("copied %v", copied)
	}
	if _, err := os.Stat(filepath.Join(dest, "Fe_00PBE.usp")); !errors.Is(err, os.ErrNotExist) {
		Te.Error("a failed copy left its file behind")
	}
}

func TestFindMSI(Te *testing.T) {
	root := Te.TempDir()
	for _, n := range []string{"b/c/y.msi", "a/x.msi", "z.txt", "a/w.msi.zst"} {
		p := filepath.Join(root, filepath.FromSlash(n))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			Te.Fatal(err)
		}
		if err := os.WriteFile(p, nil, 0o644); err != nil {
			Te.Fatal(err)
		}
	}
	found, err := FindMSI(root)
	if err != nil {
		Te.Fatal(err)
	}
	r := filepath.ToSlash(root)
	if len(found) != 2 || found[0] != r+"/a/x" || found[1] != r+"/b/c/y" {
		Te.Errorf("found %v", found)
	}
	if _, err := FindMSI(filepath.Join(root, "nothere")); !chem.IsKind(err, chem.NotFound) {
		Te.Errorf("missing root gave %v", err)
	}
}

func quietSeed(c *Config) *Seed {
	S := NewSeed(c)
	S.Logger = log.New(io.Discard)
	return S
}

func TestSeedWrite(Te *testing.T) {
	mol := feo(Te)
	c := DefaultConfig()
	c.Seed.Name = "feo"
	c.Seed.Dir = Te.TempDir()
	c.Seed.Potentials = potentials(Te)
	c.Seed.Preview = true
	c.Seed.CompressMSI = true
	S := quietSeed(c)
	written, err := S.Write(context.Background(), mol)
	if err != nil {
		Te.Fatal(err)
	}
	want := []string{"Fe_00PBE.usp", "MS70_CASTEP.lsf", "O_00PBE.usp", "feo.cell", "feo.kptaux", "feo.msi",
		"feo.msi.zst", "feo.param", "feo.svg", "feo.trjaux", "feo_DOS.cell", "feo_DOS.kptaux", "feo_DOS.param", "hpc.pbs.sh"}
	if len(written) != len(want) {
		Te.Fatalf("wrote %v", written)
	}
	for i, w := range want {
		if written[i] != filepath.Join(S.Path(), w) {
			Te.Errorf("file %d is %s, want %s", i, written[i], w)
		}
		if _, err := os.Stat(written[i]); err != nil {
			Te.Error(err)
		}
	}
	param, err := os.ReadFile(filepath.Join(S.Path(), "feo.param"))
	if err != nil {
		Te.Fatal(err)
	}
	if !strings.Contains(string(param), "cut_off_energy :      460.000000000000000\n") {
		Te.Error("the cut-off energy was not taken from the potentials")
	}
	// The round-trip files hold the model in the frame of the cell, with the
	// periodic header the msi writer adds.
	aligned := mol.Copy()
	if err := chem.AlignLattice(aligned); err != nil {
		Te.Fatal(err)
	}
	for k, v := range map[string]chem.Value{
		"CRY/DISPLAY":   chem.Ints(192, 256),
		"PeriodicType":  chem.Int(100),
		"SpaceGroup":    chem.Text("1 1"),
		"CRY/TOLERANCE": chem.Real(0.05),
	} {
		if err := aligned.SetSetting(k, v); err != nil {
			Te.Fatal(err)
		}
	}
	for _, n := range []string{"feo.msi", "feo.msi.zst"} {
		back, err := msi.ParseFile(filepath.Join(S.Path(), n))
		if err != nil {
			Te.Fatal(err)
		}
		if !back.Equal(aligned, 1e-9) {
			Te.Errorf("%s doesn't give back the aligned model", n)
		}
	}
	cell, err := os.ReadFile(filepath.Join(S.Path(), "feo.cell"))
	if err != nil {
		Te.Fatal(err)
	}
	back, err := msi.ParseFile(filepath.Join(S.Path(), "feo.msi"))
	if err != nil {
		Te.Fatal(err)
	}
	L, _ := back.Lattice()
	a := L.Vec(0)
	if row := floatFields(Te, blockLines(Te, string(cell), "LATTICE_CART")[0]); !near(row, a[:], 1e-9) {
		Te.Errorf("msi A3 %v differs from the cell's first lattice vector %v", a, row)
	}
	if !mol.Equal(feo(Te), 0) {
		Te.Error("Write modified the model")
	}
	if c.Castep.CutOffEnergy != 0 {
		Te.Error("Write modified the configuration")
	}
}

func TestSeedTasks(Te *testing.T) {
	c := DefaultConfig()
	c.Seed.Name = "feo"
	c.Seed.Dir = Te.TempDir()
	c.Seed.Task = "bs"
	written, err := quietSeed(c).Write(context.Background(), feo(Te))
	if err != nil {
		Te.Fatal(err)
	}
	if len(written) != 3 {
		Te.Errorf("a band structure needs 3 files, wrote %v", written)
	}
	c.Seed.Name = ""
	if _, err := quietSeed(c).Write(context.Background(), feo(Te)); !chem.IsKind(err, chem.ConfigError) {
		Te.Errorf("empty name gave %v", err)
	}
}

func TestSeedErrors(Te *testing.T) {
	c := DefaultConfig()
	c.Seed.Name = "feo"
	c.Seed.Dir = Te.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := quietSeed(c).Write(ctx, feo(Te)); !errors.Is(err, context.Canceled) {
		Te.Errorf("cancelled context gave %v", err)
	}
	mol := feo(Te)
	mol.ClearLattice()
	S := quietSeed(c)
	_, err := S.Write(context.Background(), mol)
	if !errors.Is(err, chem.ErrNoLattice) {
		Te.Errorf("model without lattice gave %v", err)
	}
	if _, err := os.Stat(filepath.Join(S.Path(), "feo.cell")); !errors.Is(err, os.ErrNotExist) {
		Te.Error("a failed export left its file behind")
	}
	left, err := os.ReadDir(S.Path())
	if err != nil {
		Te.Fatal(err)
	}
	if len(left) != 0 {
		Te.Errorf("a failed seed left %d files behind", len(left))
	}
}
