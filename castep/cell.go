/*
 * cell.go, part of msicastep.
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
	"strconv"
	"strings"

	chem "github.com/rmera/msicastep"
	v3 "github.com/rmera/msicastep/v3"
)

// Cell writes the CASTEP .cell file: lattice, fractional positions, k-points,
// constraints, external fields and the species tables.
type Cell struct {
	Config  CastepConfig
	Task    Task
	Options *chem.Options //for the alignment of the lattice, nil means chem.DefaultOptions()
}

// FileName returns seed.cell for a geometry optimization and seed_DOS.cell for
// a band structure.
func (C Cell) FileName(seed string) string {
	if C.Task == BandStructure {
		return seed + "_DOS.cell"
	}
	return seed + ".cell"
}

// Export writes the cell file for mol to w. mol is not modified: the file is written from
// a copy rotated with chem.AlignLattice, so the lattice vector a lies along x. A model
// without a lattice gives a non-critical ExportError with chem.ErrNoLattice.
func (C Cell) Export(w io.Writer, mol *chem.Model) error {
	if err := mol.Check(); err != nil {
		return chem.NewError(chem.ExportError, err, "castep.Cell.Export", "invalid model").SetCritical(true)
	}
	if _, ok := mol.Lattice(); !ok {
		return chem.NewError(chem.ExportError, chem.ErrNoLattice, "castep.Cell.Export", "").SetCritical(false)
	}
	c, err := C.Config.WithModel(mol)
	if err != nil {
		return errDecorate(err, "castep.Cell.Export")
	}
	aligned := mol.Copy()
	if err := chem.AlignLattice(aligned, C.Options); err != nil {
		return chem.NewError(chem.ExportError, err, "castep.Cell.Export", "aligning the lattice")
	}
	L, _ := aligned.Lattice()
	var frac *v3.Matrix
	if aligned.Len() > 0 {
		frac, err = L.ToFractional(aligned.Coords())
		if err != nil {
			return chem.NewError(chem.ExportError, err, "castep.Cell.Export", "")
		}
	}
	species, err := elements(aligned)
	if err != nil {
		return chem.NewError(chem.ExportError, err, "castep.Cell.Export", "").SetCritical(true)
	}
	out := bufio.NewWriter(w)

	var b strings.Builder
	for i := 0; i < 3; i++ {
		v := L.Vec(i)
		fmt.Fprintf(&b, "%24.18f%24.18f%24.18f\n", v[0], v[1], v[2])
	}
	block(out, "LATTICE_CART", b.String())

	lines := make([]string, aligned.Len())
	for i, at := range aligned.Atoms() {
		f := frac.Vec(i)
		lines[i] = fmt.Sprintf("%3s%20.16f%20.16f%20.16f", at.Symbol, f[0], f[1], f[2])
		if s := species[at.Symbol].Spin; s > 0 {
			lines[i] += fmt.Sprintf(" SPIN=%14d", s)
		}
	}
	var positions string
	if len(lines) > 0 {
		positions = strings.Join(lines, "\n") + "\n"
	}
	block(out, "POSITIONS_FRAC", positions)

	b.Reset()
	for _, k := range c.KPointsList {
		fmt.Fprintf(&b, "%20.16f%20.16f%20.16f%20.16f\n", k[0], k[1], k[2], k[3])
	}
	if C.Task == BandStructure {
		block(out, "BS_KPOINTS_LIST", b.String())
	}
	block(out, "KPOINTS_LIST", b.String())

	fmt.Fprintf(out, "FIX_ALL_CELL : %t\n\nFIX_COM : %t\n", c.FixAllCell, c.FixCOM)
	block(out, "IONIC_CONSTRAINTS", "")
	e := c.ExternalEfield
	block(out, "EXTERNAL_EFIELD", fmt.Sprintf("%16.10f%16.10f%16.10f\n", e[0], e[1], e[2]))
	p := c.ExternalPressure
	block(out, "EXTERNAL_PRESSURE", fmt.Sprintf("%16.10f%16.10f%16.10f\n%16s%16.10f%16.10f\n%32s%16.10f\n",
		p[0], p[1], p[2], "", p[3], p[4], "", p[5]))

	order := aligned.Elements()
	b.Reset()
	for _, s := range order {
		fmt.Fprintf(&b, "%8s%17.10f\n", s, species[s].Mass)
	}
	block(out, "SPECIES_MASS", b.String())
	b.Reset()
	for _, s := range order {
		fmt.Fprintf(&b, "%8s  %s\n", s, species[s].Potential)
	}
	block(out, "SPECIES_POT", b.String())
	b.Reset()
	for _, s := range order {
		fmt.Fprintf(&b, "%8s%9d\n", s, species[s].LCAO)
	}
	block(out, "SPECIES_LCAO_STATES", b.String())
	return flush(out, "castep.Cell.Export")
}

// block writes a %BLOCK name ... %ENDBLOCK name section followed by a blank line.
// content must end with a newline, unless empty.
func block(w io.Writer, name, content string) {
	fmt.Fprintf(w, "%%BLOCK %s\n%s%%ENDBLOCK %s\n\n", name, content, name)
}

// sci formats v in scientific notation with prec decimals, right aligned
// to width. The exponent carries no sign for positive powers and no
// zero padding, as in 1.0e-5 or 0.0e0, which is what the Materials Studio
// CASTEP files carry.
func sci(v float64, prec, width int) string {
	s := strconv.FormatFloat(v, 'e', prec, 64)
	if i := strings.LastIndexByte(s, 'e'); i >= 0 {
		if exp, err := strconv.Atoi(s[i+1:]); err == nil {
			s = s[:i+1] + strconv.Itoa(exp)
		}
	}
	return fmt.Sprintf("%*s", width, s)
}

// elements returns the reference data of each element in mol.
func elements(mol *chem.Model) (map[string]chem.Element, error) {
	ret := make(map[string]chem.Element)
	for _, s := range mol.Elements() {
		e, err := chem.LookupElement(s)
		if err != nil {
			return nil, err
		}
		ret[s] = e
	}
	return ret, nil
}
