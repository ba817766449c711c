/*
 * param.go, part of msicastep.
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
	"bufio"
	"fmt"
	"io"

	chem "github.com/rmera/msicastep"
)

// Param writes the CASTEP .param file for a task. The values not in
// CastepConfig are the ones Materials Studio writes for a new job.
type Param struct {
	Config CastepConfig
	Task   Task
}

// FileName returns seed.param for a geometry optimization and seed_DOS.param for
// a band structure.
func (P Param) FileName(seed string) string {
	if P.Task == BandStructure {
		return seed + "_DOS.param"
	}
	return seed + ".param"
}

// Export writes the parameter file for mol to w. The band structure inherits the
// spin, the cut-off energy and the metals method of the geometry optimization, and
// doesn't ask for a population analysis.
func (P Param) Export(w io.Writer, mol *chem.Model) error {
	if err := mol.Check(); err != nil {
		return chem.NewError(chem.ExportError, err, "castep.Param.Export", "invalid model").SetCritical(true)
	}
	c, err := P.Config.WithModel(mol)
	if err != nil {
		return errDecorate(err, "castep.Param.Export")
	}
	method, err := ParseMetalsMethod(c.MetalsMethod)
	if err != nil {
		return errDecorate(err, "castep.Param.Export")
	}
	spin := 0
	if c.SpinPolarized {
		spin = TotalSpin(mol)
	}
	cutoff := c.CutOffEnergy
	if cutoff <= 0 {
		cutoff = DefaultCutOff
	}
	analysis := P.Task == GeometryOptimization
	out := bufio.NewWriter(w)
	fmt.Fprintf(out, "task : %s\n", P.Task)
	fmt.Fprint(out, "comment : CASTEP calculation from Materials Studio\n")
	fmt.Fprintf(out, "xc_functional : %s\n", c.XCFunctional)
	fmt.Fprintf(out, "spin_polarized : %t\n", c.SpinPolarized)
	fmt.Fprintf(out, "spin :        %d\n", spin)
	fmt.Fprint(out, "opt_strategy : Speed\n")
	fmt.Fprint(out, "page_wvfns :        0\n")
	fmt.Fprintf(out, "cut_off_energy :      %18.15f\n", cutoff)
	fmt.Fprintf(out, "grid_scale :        %18.15f\n", 1.5)
	fmt.Fprintf(out, "fine_grid_scale :        %18.15f\n", 1.5)
	fmt.Fprint(out, "finite_basis_corr :        0\n")
	fmt.Fprintf(out, "elec_energy_tol :   %s\n", sci(1e-5, 15, 18))
	fmt.Fprint(out, "max_scf_cycles :     6000\n")
	fmt.Fprint(out, "fix_occupancy : false\n")
	switch method {
	case EDFT:
		fmt.Fprint(out, "metals_method : EDFT\nnum_occ_cycles : 6\n")
	default:
		fmt.Fprint(out, "metals_method : dm\nmixing_scheme : Pulay\n")
		fmt.Fprintf(out, "mix_charge_amp :        %18.15f\n", 0.5)
		fmt.Fprintf(out, "mix_spin_amp :        %18.15f\n", 2.0)
		fmt.Fprintf(out, "mix_charge_gmax :        %18.15f\n", 1.5)
		fmt.Fprintf(out, "mix_spin_gmax :        %18.15f\n", 1.5)
		fmt.Fprint(out, "mix_history_length :       20\n")
	}
	fmt.Fprint(out, "perc_extra_bands : 72\n")
	fmt.Fprintf(out, "smearing_width :        %18.15f\n", c.SmearingWidth)
	fmt.Fprint(out, "spin_fix :        6\n")
	fmt.Fprint(out, "num_dump_cycles : 0\n")
	if P.Task == BandStructure {
		fmt.Fprint(out, "bs_nextra_bands :       72\n")
		fmt.Fprintf(out, "bs_xc_functional : %s\n", c.XCFunctional)
		fmt.Fprintf(out, "bs_eigenvalue_tol :   %s\n", sci(1e-5, 15, 22))
		fmt.Fprint(out, "bs_write_eigenvalues : true\n")
	} else {
		fmt.Fprintf(out, "geom_energy_tol :   %s\n", sci(5e-5, 15, 22))
		fmt.Fprintf(out, "geom_force_tol :        %18.15f\n", 0.1)
		fmt.Fprintf(out, "geom_stress_tol :        %18.15f\n", 0.2)
		fmt.Fprintf(out, "geom_disp_tol :        %18.15f\n", 0.005)
		fmt.Fprint(out, "geom_max_iter :     6000\n")
		fmt.Fprint(out, "geom_method : BFGS\n")
		fmt.Fprint(out, "fixed_npw : false\n")
		fmt.Fprintf(out, "popn_bond_cutoff :        %18.15f\n", 3.0)
	}
	fmt.Fprint(out, "calculate_ELF : false\n")
	fmt.Fprint(out, "calculate_stress : false\n")
	fmt.Fprintf(out, "popn_calculate : %t\n", analysis)
	fmt.Fprintf(out, "calculate_hirshfeld : %t\n", analysis)
	fmt.Fprint(out, "calculate_densdiff : false\n")
	fmt.Fprint(out, "pdos_calculate_weights : true\n")
	return flush(out, "castep.Param.Export")
}

// TotalSpin returns the sum of the default spins of the elements of all the atoms in mol.
func TotalSpin(mol *chem.Model) int {
	spins := make(map[string]int)
	for _, s := range mol.Elements() {
		e, err := chem.LookupElement(s)
		if err == nil {
			spins[s] = e.Spin
		}
	}
	total := 0
	for _, at := range mol.Atoms() {
		total += spins[at.Symbol]
	}
	return total
}

// flush flushes out, turning a failure into a non-critical ExportError.
func flush(out *bufio.Writer, caller string) error {
	if err := out.Flush(); err != nil {
		return chem.NewError(chem.ExportError, err, caller, "").SetCritical(false)
	}
	return nil
}
