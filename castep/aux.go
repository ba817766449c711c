/*
 * aux.go, part of msicastep.
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

// KptAux writes the k-point auxiliary file Materials Studio expects next to a CASTEP job.
type KptAux struct {
	Config CastepConfig
	Task   Task
}

// FileName returns seed.kptaux, or seed_DOS.kptaux for a band structure.
func (K KptAux) FileName(seed string) string {
	if K.Task == BandStructure {
		return seed + "_DOS.kptaux"
	}
	return seed + ".kptaux"
}

// Export writes the Monkhorst-Pack grid and offset, and the k-point images, one per
// k-point, each its own image.
func (K KptAux) Export(w io.Writer, mol *chem.Model) error {
	if err := mol.Check(); err != nil {
		return chem.NewError(chem.ExportError, err, "castep.KptAux.Export", "invalid model").SetCritical(true)
	}
	c, err := K.Config.WithModel(mol)
	if err != nil {
		return errDecorate(err, "castep.KptAux.Export")
	}
	out := bufio.NewWriter(w)
	g, o := c.MPGrid, c.MPOffset
	fmt.Fprintf(out, "MP_GRID : %8d%8d%8d\n", g[0], g[1], g[2])
	fmt.Fprintf(out, "MP_OFFSET : %s%s%s\n", sci(o[0], 18, 22), sci(o[1], 18, 22), sci(o[2], 18, 22))
	fmt.Fprint(out, "BLOCK KPOINT_IMAGES\n")
	n := len(c.KPointsList)
	if n == 0 {
		n = 1
	}
	for i := 1; i <= n; i++ {
		fmt.Fprintf(out, "%4d%4d\n", i, i)
	}
	fmt.Fprint(out, "ENDBLOCK KPOINT_IMAGES")
	return flush(out, "castep.KptAux.Export")
}

// TrjAux writes the list of atom ids, in model order, that Materials Studio uses to map
// a CASTEP trajectory back onto the msi file.
type TrjAux struct{}

// FileName returns seed.trjaux
func (T TrjAux) FileName(seed string) string {
	return seed + ".trjaux"
}

// Export writes the ids of the atoms of mol, one per line.
func (T TrjAux) Export(w io.Writer, mol *chem.Model) error {
	if err := mol.Check(); err != nil {
		return chem.NewError(chem.ExportError, err, "castep.TrjAux.Export", "invalid model").SetCritical(true)
	}
	out := bufio.NewWriter(w)
	fmt.Fprint(out, "# Atom IDs to appear in any .trj file to be generated.\n")
	fmt.Fprint(out, "# Correspond to atom IDs which will be used in exported .msi file\n")
	fmt.Fprint(out, "# required for animation/analysis of trajectory within Cerius2.\n")
	for _, id := range mol.IDs() {
		fmt.Fprintf(out, "%d\n", id)
	}
	fmt.Fprint(out, "#Origin  0.000000000000000e+000  0.000000000000000e+000  0.000000000000000e+000")
	return flush(out, "castep.TrjAux.Export")
}
