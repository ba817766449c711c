/*
 * xyz.go, part of msicastep.
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

package chem

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// XYZ writes a Model as an XYZ file, which most molecular viewers read. If the
// Model has a lattice, it goes in the comment line in the extended XYZ form,
// Lattice="ax ay az bx by bz cx cy cz".
type XYZ struct {
	Comment string //written as the comment line if there is no lattice
}

// FileName returns seed.xyz
func (X XYZ) FileName(seed string) string {
	return seed + ".xyz"
}

// Export writes mol to w. Ids, labels and settings are not part of the format.
func (X XYZ) Export(w io.Writer, mol *Model) error {
	if err := mol.Check(); err != nil {
		return NewError(ExportError, err, "XYZ.Export", "")
	}
	out := bufio.NewWriter(w)
	fmt.Fprintf(out, "%-4d\n", mol.Len())
	if L, ok := mol.Lattice(); ok {
		var f []string
		for _, v := range L.Vectors() {
			for _, x := range v {
				f = append(f, strconv.FormatFloat(x, 'f', -1, 64))
			}
		}
		fmt.Fprintf(out, "Lattice=\"%s\"\n", strings.Join(f, " "))
	} else {
		fmt.Fprintf(out, "%s\n", strings.ReplaceAll(X.Comment, "\n", " "))
	}
	for i := 0; i < mol.Len(); i++ {
		c := mol.Coord(i)
		fmt.Fprintf(out, "%-2s  %14.8f%14.8f%14.8f\n", mol.Atom(i).Symbol, c[0], c[1], c[2])
	}
	if err := out.Flush(); err != nil {
		return NewError(ExportError, err, "XYZ.Export", "").SetCritical(false)
	}
	return nil
}

// ReadXYZ reads the first frame of an XYZ file. Atoms get the ids 1, 2, ... in file
// order. A Lattice="..." entry in the comment line, with nine numbers, becomes the
// lattice of the Model. Errors are ParseErrors with the line number.
func ReadXYZ(r io.Reader) (*Model, error) {
	bad := func(line int, cause error, format string, args ...interface{}) error {
		msg := fmt.Sprintf("line %d", line)
		if format != "" {
			msg += ": " + fmt.Sprintf(format, args...)
		}
		return NewError(ParseError, cause, "ReadXYZ", "%s", msg)
	}
	s := bufio.NewScanner(r)
	if !s.Scan() {
		return nil, bad(1, s.Err(), "empty file")
	}
	natoms, err := strconv.Atoi(strings.TrimSpace(s.Text()))
	if err != nil || natoms < 0 {
		return nil, bad(1, err, "expected the number of atoms, got %q", s.Text())
	}
	if !s.Scan() {
		return nil, bad(2, s.Err(), "missing comment line")
	}
	mol := NewModel()
	if L, err := xyzLattice(s.Text()); err != nil {
		return nil, bad(2, err, "")
	} else if L != nil {
		mol.SetLattice(L)
	}
	for i := 0; i < natoms; i++ {
		line := i + 3
		if !s.Scan() {
			return nil, bad(line, s.Err(), "expected %d atoms, found %d", natoms, i)
		}
		fields := strings.Fields(s.Text())
		if len(fields) < 4 {
			return nil, bad(line, nil, "ill formed atom line %q", s.Text())
		}
		var c [3]float64
		for j := range c {
			if c[j], err = strconv.ParseFloat(fields[j+1], 64); err != nil {
				return nil, bad(line, err, "coordinate %q", fields[j+1])
			}
		}
		if err := mol.AddAtom(Atom{ID: i + 1, Symbol: fields[0]}, c); err != nil {
			return nil, bad(line, err, "")
		}
	}
	return mol, nil
}

// xyzLattice returns the lattice in an extended XYZ comment line, or nil if there is none.
func xyzLattice(comment string) (*Lattice, error) {
	const key = `Lattice="`
	i := strings.Index(comment, key)
	if i < 0 {
		return nil, nil
	}
	rest := comment[i+len(key):]
	end := strings.Index(rest, `"`)
	if end < 0 {
		return nil, fmt.Errorf("unterminated Lattice entry")
	}
	fields := strings.Fields(rest[:end])
	if len(fields) != 9 {
		return nil, fmt.Errorf("Lattice needs 9 numbers, got %d", len(fields))
	}
	var v [3][3]float64
	for j, f := range fields {
		x, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, err
		}
		v[j/3][j%3] = x
	}
	return NewLattice(v[0], v[1], v[2])
}
