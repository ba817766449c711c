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

/*
Package msi reads and writes the MSI format (Materials Studio / Cerius2 DataModel,
version 4).

An MSI file is a tree of parenthesized constructs. Objects look like (ordinal Kind children)
and fields like (A tag name value), where the tag is I (integer), D (real), C (string) or
O (reference to another object). Values are numbers, double-quoted strings or tuples of
numbers. Lines starting with # are comments.

Reading happens in two steps. ReadDocument builds the tree, and Document.Model turns it
into a chem.Model: Atom objects become atoms, the A3, B3 and C3 fields become the lattice,
and any other I, D or C field of the root becomes a setting. What is left is either kept
(Preserve) or dropped with a warning in the log (Extract). Parse and ParseFile do
both steps.

Kept constructs hold keys instead of ordinals: @a<Id> for atoms, @m1 for the model and
@o<n> for other objects, both in headers and in the values of O fields. Exporter writes a
Model back, in a form that Parse reads into an equal Model, numbering the objects again
and resolving the keys. A construct that refers to something no longer in the model,
such as a bond to a deleted atom, is not written.
*/
package msi
