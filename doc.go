/*
 * doc.go, part of msicastep.
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
/***Dedicated to the long life of the Ven. Khenpo Phuntzok Tenzin Rinpoche***/

/*
Package chem is the main package of msicastep. It provides the atomistic Model (atoms,
cartesian coordinates, lattice vectors and auxiliary settings) that is read from Materials
Studio MSI files and written to CASTEP input files, plus the geometric transformations that
can be applied to it in between.

	**Capabilities**

	An ordered set of atoms, identified by positive unique ids, with coordinates kept in a
	v3.Matrix owned by the Model. Accessors return copies.

	Periodic lattices, with conversion between cartesian and fractional coordinates.

	Translations, rotations around an arbitrary axis and pivot (Rodrigues' formula), and
	alignment of a lattice to the CASTEP standard orientation. Big models are transformed
	concurrently.

	Typed settings (integers, reals, strings, and tuples of numbers) travelling with the model.

	A reference table of the elements with the data CASTEP needs (mass, pseudopotential file,
	LCAO states and default spin).

	A single error type, CError, with a Kind and a cause that can be found with errors.Is.

The formats live in their own packages: msi reads and writes MSI files, castep writes the
CASTEP seed files and job scripts, and chemplot draws a preview of the structure. All of them
implement the Exporter interface. The plain XYZ format, which carries no ids or settings, is
handled here by XYZ and ReadXYZ.

*/
package chem
