/*
 * atomicdata.go, part of msicastep.
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
	"fmt"
	"strings"
)

// Element contains the reference data needed to write CASTEP input for one element.
type Element struct {
	Symbol    string
	Z         int
	Mass      float64 //standard atomic weight, in amu
	Potential string  //name of the pseudopotential file
	LCAO      int     //size of the LCAO basis for population analysis
	Spin      int     //default initial spin (unpaired electrons) of the atom
}

// The elements, ordered by atomic number. The empty string keeps
// symbols[Z] == symbol.
var symbols = []string{"",
	"H", "He",
	"Li", "Be", "B", "C", "N", "O", "F", "Ne",
	"Na", "Mg", "Al", "Si", "P", "S", "Cl", "Ar",
	"K", "Ca", "Sc", "Ti", "V", "Cr", "Mn", "Fe", "Co", "Ni", "Cu", "Zn", "Ga", "Ge", "As", "Se", "Br", "Kr",
	"Rb", "Sr", "Y", "Zr", "Nb", "Mo", "Tc", "Ru", "Rh", "Pd", "Ag", "Cd", "In", "Sn", "Sb", "Te", "I", "Xe",
	"Cs", "Ba", "La", "Ce", "Pr", "Nd", "Pm", "Sm", "Eu", "Gd", "Tb", "Dy", "Ho", "Er", "Tm", "Yb",
	"Lu", "Hf", "Ta", "W", "Re", "Os", "Ir", "Pt", "Au", "Hg", "Tl", "Pb", "Bi", "Po", "At", "Rn",
	"Fr", "Ra", "Ac", "Th", "Pa", "U",
}

// A map for assigning atomic numbers to symbols. Filled from symbols.
var symbolZ = map[string]int{}

func init() {
	for z, s := range symbols {
		if z > 0 {
			symbolZ[s] = z
		}
	}
}

// A map for assigning mass to elements.
// IUPAC standard atomic weights, abridged.
var symbolMass = map[string]float64{
	"H": 1.008, "He": 4.0026,
	"Li": 6.94, "Be": 9.0122, "B": 10.81, "C": 12.011, "N": 14.007, "O": 15.999, "F": 18.998, "Ne": 20.180,
	"Na": 22.990, "Mg": 24.305, "Al": 26.982, "Si": 28.085, "P": 30.974, "S": 32.06, "Cl": 35.45, "Ar": 39.948,
	"K": 39.098, "Ca": 40.078, "Sc": 44.956, "Ti": 47.867, "V": 50.942, "Cr": 51.996, "Mn": 54.938,
	"Fe": 55.845, "Co": 58.933, "Ni": 58.693, "Cu": 63.546, "Zn": 65.38, "Ga": 69.723, "Ge": 72.630,
	"As": 74.922, "Se": 78.971, "Br": 79.904, "Kr": 83.798,
	"Rb": 85.468, "Sr": 87.62, "Y": 88.906, "Zr": 91.224, "Nb": 92.906, "Mo": 95.95, "Tc": 98.0,
	"Ru": 101.07, "Rh": 102.91, "Pd": 106.42, "Ag": 107.87, "Cd": 112.41, "In": 114.82, "Sn": 118.71,
	"Sb": 121.76, "Te": 127.60, "I": 126.90, "Xe": 131.29,
	"Cs": 132.91, "Ba": 137.33, "La": 138.91, "Ce": 140.12, "Pr": 140.91, "Nd": 144.24, "Pm": 145.0,
	"Sm": 150.36, "Eu": 151.96, "Gd": 157.25, "Tb": 158.93, "Dy": 162.50, "Ho": 164.93, "Er": 167.26,
	"Tm": 168.93, "Yb": 173.05, "Lu": 174.97, "Hf": 178.49, "Ta": 180.95, "W": 183.84, "Re": 186.21,
	"Os": 190.23, "Ir": 192.22, "Pt": 195.08, "Au": 196.97, "Hg": 200.59, "Tl": 204.38, "Pb": 207.2,
	"Bi": 208.98, "Po": 209.0, "At": 210.0, "Rn": 222.0,
	"Fr": 223.0, "Ra": 226.0, "Ac": 227.0, "Th": 232.04, "Pa": 231.04, "U": 238.03,
}

// Unpaired electrons of the free atom (Hund's rule) for the d and f elements,
// used as the initial spin in CASTEP. Every other element starts with zero spin.
var symbolSpin = map[string]int{
	"Sc": 1, "Ti": 2, "V": 3, "Cr": 6, "Mn": 5, "Fe": 4, "Co": 3, "Ni": 2, "Cu": 1,
	"Y": 1, "Zr": 2, "Nb": 5, "Mo": 6, "Tc": 5, "Ru": 4, "Rh": 3, "Ag": 1,
	"La": 1, "Ce": 2, "Pr": 3, "Nd": 4, "Pm": 5, "Sm": 6, "Eu": 7, "Gd": 8, "Tb": 5, "Dy": 4,
	"Ho": 3, "Er": 2, "Tm": 1, "Lu": 1, "Hf": 2, "Ta": 3, "W": 4, "Re": 5, "Os": 4, "Ir": 3,
	"Pt": 2, "Au": 1,
}

// lcaoStates returns the number of angular momentum channels in the
// population-analysis basis: s for the first row, s and p up to Ar, s, p and d
// up to Xe, and s, p, d and f from Cs on.
func lcaoStates(z int) int {
	switch {
	case z <= 2:
		return 1
	case z <= 18:
		return 2
	case z <= 54:
		return 3
	default:
		return 4
	}
}

// CanonicalSymbol returns the symbol with the usual capitalization ("CL" and "cl" give "Cl").
func CanonicalSymbol(symbol string) string {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return symbol
	}
	return strings.ToUpper(symbol[:1]) + strings.ToLower(symbol[1:])
}

// AtomicNumber returns the atomic number for the given element symbol, or an error
// if the symbol is not in the table.
func AtomicNumber(symbol string) (int, error) {
	z, ok := symbolZ[CanonicalSymbol(symbol)]
	if !ok {
		return 0, NewError(ValidationError, ErrUnknownElement, "AtomicNumber", "symbol %q", symbol)
	}
	return z, nil
}

// LookupElement returns the reference data for the given element symbol.
func LookupElement(symbol string) (Element, error) {
	s := CanonicalSymbol(symbol)
	z, err := AtomicNumber(s)
	if err != nil {
		return Element{}, errDecorate(err, "LookupElement")
	}
	return Element{
		Symbol:    s,
		Z:         z,
		Mass:      symbolMass[s],
		Potential: fmt.Sprintf("%s_00PBE.usp", s),
		LCAO:      lcaoStates(z),
		Spin:      symbolSpin[s],
	}, nil
}

// ElementByZ returns the reference data for the element with atomic number z.
func ElementByZ(z int) (Element, error) {
	if z <= 0 || z >= len(symbols) {
		return Element{}, NewError(ValidationError, ErrUnknownElement, "ElementByZ", "atomic number %d", z)
	}
	return LookupElement(symbols[z])
}
