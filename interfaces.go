/*
 * interfaces.go, part of msicastep.
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

import "io"

// Exporter is implemented by every output format. An Exporter only reads the Model,
// so any number of them can work on the same Model at the same time, as long as
// nobody modifies it meanwhile.
type Exporter interface {
	//FileName returns the name of the file the exporter writes for the given
	//seed name (e.g. "seed.cell", or a fixed name for job scripts).
	FileName(seed string) string

	//Export writes the Model in the exporter's format to w.
	Export(w io.Writer, mol *Model) error
}

// Atomer is the basic interface for anything with an ordered set of atoms.
type Atomer interface {

	//Atom returns a copy of the Atom corresponding to the index i.
	//Should panic if out of range.
	Atom(i int) Atom

	Len() int
}

//Errors

// Error is the interface for errors that all packages in this library implement. The Decorate method allows to add and retrieve info from the
// error, without changing it's type or wrapping it around something else.
type Error interface {
	Error() string
	Decorate(string) []string //Each call also returns the "decoration" slice of strings resulting from the current call. If passed an empty string, it should just return the current value, not add the empty string to the slice.
	//The decorate slice should contain a list of functions in the calling stack, plus, for each function any relevant information, or nothing. If information is to be added to an element of the slice, it should be in this format: "FunctionName: Extra info"
	Critical() bool
}
