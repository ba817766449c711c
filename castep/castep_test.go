/*
 * castep_test.go, part of msicastep.
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
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"testing"

	chem "github.com/rmera/msicastep"
)

// feo returns an iron and an oxygen atom in a cubic cell whose a vector lies
// along y, so the cell has to be rotated before it is written.
func feo(Te *testing.T) *chem.Model {
	mol := chem.NewModel()
	if err := mol.AddAtom(chem.Atom{ID: 1, Symbol: "Fe"}, [3]float64{0, 0, 0}); err != nil {
		Te.Fatal(err)
	}
	if err := mol.AddAtom(chem.Atom{ID: 2, Symbol: "O"}, [3]float64{-2, 2, 2}); err != nil {
		Te.Fatal(err)
	}
	L, err := chem.NewLattice([3]float64{0, 4, 0}, [3]float64{-4, 0, 0}, [3]float64{0, 0, 4})
	if err != nil {
		Te.Fatal(err)
	}
	mol.SetLattice(L)
	return mol
}

func export(Te *testing.T, e chem.Exporter, mol *chem.Model) string {
	var b bytes.Buffer
	if err := e.Export(&b, mol); err != nil {
		Te.Fatal(err)
	}
	return b.String()
}

// blockLines returns the lines between %BLOCK name and %ENDBLOCK name.
func blockLines(Te *testing.T, text, name string) []string {
	start := strings.Index(text, "%BLOCK "+name+"\n")
	end := strings.Index(text, "%ENDBLOCK "+name+"\n")
	if start < 0 || end < start {
		Te.Fatalf("block %s not found", name)
	}
	body := text[start+len("%BLOCK "+name+"\n") : end]
	if body == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(body, "\n"), "\n")
}

func floatFields(Te *testing.T, line string) []float64 {
	var ret []float64
	for _, f := range strings.Fields(line) {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			continue
		}
		ret = append(ret, v)
	}
	return ret
}

func near(a, b []float64, tol float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.Abs(a[i]-b[i]) > tol {
			return false
		}
	}
	return true
}

func TestCell(Te *testing.T) {
	mol := feo(Te)
	orig := mol.Copy()
	C := Cell{Config: DefaultConfig().Castep}
	out := export(Te, C, mol)
	if !mol.Equal(orig, 0) {
		Te.Error("exporting modified the model")
	}
	if !strings.HasPrefix(out, "%BLOCK LATTICE_CART\n") {
		Te.Errorf("cell doesn't start with the lattice: %q", out[:30])
	}
	lat := blockLines(Te, out, "LATTICE_CART")
	want := [][]float64{{4, 0, 0}, {0, 4, 0}, {0, 0, 4}}
	for i, l := range lat {
		if len(l) != 72 {
			Te.Errorf("lattice line %d is %d characters long", i, len(l))
		}
		if !near(floatFields(Te, l), want[i], 1e-9) {
			Te.Errorf("lattice vector %d is %s, want %v", i, l, want[i])
		}
	}
	pos := blockLines(Te, out, "POSITIONS_FRAC")
	if len(pos) != 2 {
		Te.Fatalf("expected 2 positions, got %d", len(pos))
	}
	if !strings.HasPrefix(pos[0], " Fe") || !strings.HasSuffix(pos[0], " SPIN=             4") {
		Te.Errorf("bad iron line %q", pos[0])
	}
	if !strings.HasPrefix(pos[1], "  O") || strings.Contains(pos[1], "SPIN") {
		Te.Errorf("bad oxygen line %q", pos[1])
	}
	L, _ := orig.Lattice()
	frac, err := L.ToFractional(orig.Coords())
	if err != nil {
		Te.Fatal(err)
	}
	for i, l := range pos {
		f := frac.Vec(i)
		got := floatFields(Te, l[3:63])
		if !near(got, f[:], 1e-9) {
			Te.Errorf("atom %d: fractional coordinates %v, want %v", i, got, f)
		}
	}
	kp := fmt.Sprintf("%%BLOCK KPOINTS_LIST\n%20.16f%20.16f%20.16f%20.16f\n%%ENDBLOCK KPOINTS_LIST\n\n", 0.0, 0.0, 0.0, 1.0)
	if !strings.Contains(out, kp) {
		Te.Errorf("k-points block missing:\n%s", out)
	}
	if strings.Contains(out, "BS_KPOINTS_LIST") {
		Te.Error("band structure k-points in a geometry optimization cell")
	}
	misc := "FIX_ALL_CELL : true\n\nFIX_COM : false\n%BLOCK IONIC_CONSTRAINTS\n%ENDBLOCK IONIC_CONSTRAINTS\n\n"
	if !strings.Contains(out, misc) {
		Te.Error("constraints missing")
	}
	z := fmt.Sprintf("%16.10f", 0.0)
	field := "%BLOCK EXTERNAL_EFIELD\n" + z + z + z + "\n%ENDBLOCK EXTERNAL_EFIELD\n\n"
	if !strings.Contains(out, field) {
		Te.Error("external field missing")
	}
	pressure := "%BLOCK EXTERNAL_PRESSURE\n" + z + z + z + "\n" + strings.Repeat(" ", 16) + z + z + "\n" +
		strings.Repeat(" ", 32) + z + "\n%ENDBLOCK EXTERNAL_PRESSURE\n\n"
	if !strings.Contains(out, pressure) {
		Te.Error("external pressure missing")
	}
	mass := fmt.Sprintf("%%BLOCK SPECIES_MASS\n%8s%17.10f\n%8s%17.10f\n%%ENDBLOCK SPECIES_MASS\n\n", "O", 15.999, "Fe", 55.845)
	if !strings.Contains(out, mass) {
		Te.Errorf("species masses missing:\n%s", out)
	}
	if !strings.Contains(out, "%BLOCK SPECIES_POT\n       O  O_00PBE.usp\n      Fe  Fe_00PBE.usp\n%ENDBLOCK SPECIES_POT\n\n") {
		Te.Error("species potentials missing")
	}
	if !strings.HasSuffix(out, "%BLOCK SPECIES_LCAO_STATES\n       O        2\n      Fe        3\n%ENDBLOCK SPECIES_LCAO_STATES\n\n") {
		Te.Error("LCAO states missing or not last")
	}
	if C.FileName("feo") != "feo.cell" {
		Te.Errorf("FileName gave %s", C.FileName("feo"))
	}
}

func TestBandStructureCell(Te *testing.T) {
	C := Cell{Config: DefaultConfig().Castep, Task: BandStructure}
	out := export(Te, C, feo(Te))
	bs, kp := strings.Index(out, "%BLOCK BS_KPOINTS_LIST"), strings.Index(out, "%BLOCK KPOINTS_LIST")
	if bs < 0 || kp < bs {
		Te.Errorf("BS_KPOINTS_LIST should come right before KPOINTS_LIST (%d, %d)", bs, kp)
	}
	if C.FileName("feo") != "feo_DOS.cell" {
		Te.Errorf("FileName gave %s", C.FileName("feo"))
	}
}

func TestCellNoLattice(Te *testing.T) {
	mol := feo(Te)
	mol.ClearLattice()
	var b bytes.Buffer
	err := Cell{Config: DefaultConfig().Castep}.Export(&b, mol)
	if !chem.IsKind(err, chem.ExportError) || !errors.Is(err, chem.ErrNoLattice) {
		Te.Fatalf("expected an export error for the missing lattice, got %v", err)
	}
	if err.(chem.Error).Critical() {
		Te.Error("a missing lattice is not a defect")
	}
	if b.Len() != 0 {
		Te.Error("something was written")
	}
}

func TestCellNoAtoms(Te *testing.T) {
	mol := chem.NewModel()
	L, err := chem.NewLattice([3]float64{5, 0, 0}, [3]float64{0, 5, 0}, [3]float64{0, 0, 5})
	if err != nil {
		Te.Fatal(err)
	}
	mol.SetLattice(L)
	out := export(Te, Cell{Config: DefaultConfig().Castep}, mol)
	if lines := blockLines(Te, out, "POSITIONS_FRAC"); len(lines) != 0 {
		Te.Errorf("positions of an empty model: %q", lines)
	}
	if len(blockLines(Te, out, "SPECIES_MASS")) != 0 {
		Te.Error("species written for an empty model")
	}
}

func TestParam(Te *testing.T) {
	mol := feo(Te)
	c := DefaultConfig().Castep
	geom := export(Te, Param{Config: c}, mol)
	for _, s := range []string{
		"task : GeometryOptimization\ncomment : CASTEP calculation from Materials Studio\nxc_functional : PBE\n",
		"spin_polarized : true\nspin :        4\n",
		fmt.Sprintf("cut_off_energy :      %18.15f\n", DefaultCutOff),
		"elec_energy_tol :   1.000000000000000e-5\n",
		"metals_method : dm\nmixing_scheme : Pulay\n",
		"mix_history_length :       20\nperc_extra_bands : 72\n",
		fmt.Sprintf("smearing_width :        %18.15f\nspin_fix :        6\n", 0.1),
		"geom_energy_tol :     5.000000000000000e-5\n",
		"geom_max_iter :     6000\ngeom_method : BFGS\nfixed_npw : false\n",
		"popn_calculate : true\ncalculate_hirshfeld : true\n",
	} {
		if !strings.Contains(geom, s) {
			Te.Errorf("geometry optimization param lacks %q", s)
		}
	}
	if !strings.HasSuffix(geom, "pdos_calculate_weights : true\n") {
		Te.Error("param doesn't end with pdos_calculate_weights")
	}
	bs := export(Te, Param{Config: c, Task: BandStructure}, mol)
	for _, s := range []string{
		"task : BandStructure\n",
		"spin :        4\n",
		"bs_nextra_bands :       72\nbs_xc_functional : PBE\n",
		"bs_eigenvalue_tol :     1.000000000000000e-5\nbs_write_eigenvalues : true\n",
		"popn_calculate : false\ncalculate_hirshfeld : false\n",
	} {
		if !strings.Contains(bs, s) {
			Te.Errorf("band structure param lacks %q", s)
		}
	}
	if strings.Contains(bs, "geom_") {
		Te.Error("geometry settings in the band structure param")
	}
	c.MetalsMethod = "edft"
	c.SpinPolarized = false
	edft := export(Te, Param{Config: c}, mol)
	if !strings.Contains(edft, "fix_occupancy : false\nmetals_method : EDFT\nnum_occ_cycles : 6\nperc_extra_bands") {
		Te.Error("EDFT block missing")
	}
	if !strings.Contains(edft, "spin_polarized : false\nspin :        0\n") {
		Te.Error("spin should be 0 for a non spin-polarized calculation")
	}
	if n := (Param{Task: BandStructure}).FileName("feo"); n != "feo_DOS.param" {
		Te.Errorf("FileName gave %s", n)
	}
}

func TestModelSettings(Te *testing.T) {
	mol := feo(Te)
	for k, v := range map[string]chem.Value{
		"CASTEP/cut_off_energy": chem.Real(500),
		"CASTEP/xc_functional":  chem.Text("LDA"),
		"CASTEP/mp_grid":        chem.Ints(3, 3, 2),
		"CASTEP/mp_offset":      chem.Reals(0.25, 0.25, 0),
		"CASTEP/spin_polarized": chem.Int(0),
		"SpaceGroup":            chem.Text("1 1"),
	} {
		if err := mol.SetSetting(k, v); err != nil {
			Te.Fatal(err)
		}
	}
	def := DefaultConfig().Castep
	c, err := def.WithModel(mol)
	if err != nil {
		Te.Fatal(err)
	}
	if c.CutOffEnergy != 500 || c.XCFunctional != "LDA" || c.SpinPolarized || c.MPGrid != [3]int{3, 3, 2} || c.MPOffset != [3]float64{0.25, 0.25, 0} {
		Te.Errorf("settings not applied: %+v", c)
	}
	if def.XCFunctional != "PBE" {
		Te.Error("WithModel modified its receiver")
	}
	out := export(Te, Param{Config: def}, mol)
	if !strings.Contains(out, fmt.Sprintf("cut_off_energy :      %18.15f\n", 500.0)) {
		Te.Error("the model cut-off was not used")
	}
	if err := mol.SetSetting("CASTEP/mp_grid", chem.Reals(1, 2)); err != nil {
		Te.Fatal(err)
	}
	if _, err := def.WithModel(mol); !chem.IsKind(err, chem.ConfigError) {
		Te.Errorf("bad mp_grid gave %v", err)
	}
	mol.DelSetting("CASTEP/mp_grid")
	if err := mol.SetSetting("CASTEP/bogus", chem.Int(1)); err != nil {
		Te.Fatal(err)
	}
	var b bytes.Buffer
	if err := (Param{Config: def}).Export(&b, mol); !chem.IsKind(err, chem.ConfigError) {
		Te.Errorf("unknown setting gave %v", err)
	}
}

func TestTotalSpin(Te *testing.T) {
	mol := feo(Te)
	if err := mol.AddAtom(chem.Atom{ID: 3, Symbol: "Ni"}, [3]float64{1, 1, 1}); err != nil {
		Te.Fatal(err)
	}
	if err := mol.AddAtom(chem.Atom{ID: 4, Symbol: "Fe"}, [3]float64{2, 1, 1}); err != nil {
		Te.Fatal(err)
	}
	if s := TotalSpin(mol); s != 10 {
		Te.Errorf("total spin %d, want 10", s)
	}
}

func TestKptAux(Te *testing.T) {
	c := DefaultConfig().Castep
	out := export(Te, KptAux{Config: c}, feo(Te))
	z := "0.000000000000000000e0"
	want := "MP_GRID :        1       1       1\nMP_OFFSET : " + z + z + z + "\nBLOCK KPOINT_IMAGES\n   1   1\nENDBLOCK KPOINT_IMAGES"
	if out != want {
		Te.Errorf("got\n%q\nwant\n%q", out, want)
	}
	c.KPointsList = append(c.KPointsList, [4]float64{0.5, 0.5, 0.5, 0.5})
	out = export(Te, KptAux{Config: c, Task: BandStructure}, feo(Te))
	if !strings.HasSuffix(out, "BLOCK KPOINT_IMAGES\n   1   1\n   2   2\nENDBLOCK KPOINT_IMAGES") {
		Te.Errorf("bad images in %q", out)
	}
	if n := (KptAux{Task: BandStructure}).FileName("feo"); n != "feo_DOS.kptaux" {
		Te.Errorf("FileName gave %s", n)
	}
}

func TestTrjAux(Te *testing.T) {
	mol := chem.NewModel()
	for i, id := range []int{7, 3, 5} {
		if err := mol.AddAtom(chem.Atom{ID: id, Symbol: "C"}, [3]float64{float64(i), 0, 0}); err != nil {
			Te.Fatal(err)
		}
	}
	out := export(Te, TrjAux{}, mol)
	want := "# Atom IDs to appear in any .trj file to be generated.\n" +
		"# Correspond to atom IDs which will be used in exported .msi file\n" +
		"# required for animation/analysis of trajectory within Cerius2.\n" +
		"7\n3\n5\n" +
		"#Origin  0.000000000000000e+000  0.000000000000000e+000  0.000000000000000e+000"
	if out != want {
		Te.Errorf("got\n%s\nwant\n%s", out, want)
	}
}

func TestScripts(Te *testing.T) {
	xsd := export(Te, XSDScript{Items: []string{"out/a_opt/a", "out/b_opt/b"}}, nil)
	want := "#!perl\nuse strict;\nuse Getopt::Long;\nuse MaterialsScript qw(:all);\n" +
		"my @params = (\n\"out/a_opt/a\", \"out/b_opt/b\");\n" +
		"foreach my $item (@params) {\n" +
		"    my $doc = $Documents{\"${item}.msi\"};\n" +
		"    $doc->CalculateBonds;\n" +
		"    $doc->Export(\"${item}.xsd\");\n" +
		"    $doc->Save;\n" +
		"    $doc->Close;\n}"
	if xsd != want {
		Te.Errorf("got\n%s\nwant\n%s", xsd, want)
	}
	var b bytes.Buffer
	if err := (XSDScript{Items: []string{`a"b`}}).Export(&b, nil); !chem.IsKind(err, chem.ExportError) {
		Te.Errorf("a quote in a path gave %v", err)
	}
	lsf := export(Te, LSFJob{Seed: "feo", Cores: 12}, nil)
	if lsf != "APP_NAME=intelY_mid\nNP=12\nNP_PER_NODE=12\nOMP_NUM_THREADS=1\nRUN=\"RAW\"\n\nRunCASTEP.sh -np $NP feo" {
		Te.Errorf("bad lsf script %q", lsf)
	}
	pbs := export(Te, PBSJob{Seed: "feo", Cores: 24}, nil)
	if !strings.HasPrefix(pbs, "#PBS -N feo\n#PBS -q simple_q\n#PBS -l walltime=168:00:00\n#PBS -l nodes=1:ppn=24\n#PBS -V\n\ncd $PBS_O_WORKDIR\n") {
		Te.Errorf("bad pbs header %q", pbs[:80])
	}
	if !strings.HasSuffix(pbs, "cat $PBS_NODEFILE >./hostfile\nmpirun --mca btl ^tcp --hostfile hostfile castep.mpi feo\nrm ./hostfile") {
		Te.Error("bad pbs command")
	}
	if err := (PBSJob{Cores: 1}).Export(&b, nil); !chem.IsKind(err, chem.ExportError) {
		Te.Errorf("a job without seed gave %v", err)
	}
}
