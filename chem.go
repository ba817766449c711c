/*
 * chem.go, part of msicastep.
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

package chem

import (
	"math"
	"sort"
	"strings"

	v3 "github.com/rmera/msicastep/v3"
	"gonum.org/v1/gonum/floats"
)

// Atom contains the data of an atom except for the coordinates, which will be in a matrix
// owned by the Model.
type Atom struct {
	ID     int
	Symbol string
	Z      int
	Label  string
	Extra  []string //source constructs kept for round trips (see msi.Preserve)
}

// Copy returns a copy of the atom that shares nothing with the original.
func (A Atom) Copy() Atom {
	A.Extra = append([]string(nil), A.Extra...)
	return A
}

// Model is an ordered set of atoms with their cartesian coordinates, an optional
// set of lattice vectors and a mapping of auxiliary settings.
// The order of the atoms is the order in which they were added, and every exporter
// writes them in that order.
type Model struct {
	atoms     []Atom
	coords    *v3.Matrix //nil while there are no atoms
	lattice   *Lattice
	settings  map[string]Value
	preserved []string
	index     map[int]int //id to position
}

// NewModel returns an empty Model
func NewModel() *Model {
	return &Model{settings: make(map[string]Value), index: make(map[int]int)}
}

// Len returns the number of atoms in the model.
func (M *Model) Len() int {
	return len(M.atoms)
}

// Atom returns a copy of the ith atom. Panics if out of range.
func (M *Model) Atom(i int) Atom {
	return M.atoms[i].Copy()
}

// Atoms returns copies of all the atoms, in order.
func (M *Model) Atoms() []Atom {
	ret := make([]Atom, len(M.atoms))
	for i, a := range M.atoms {
		ret[i] = a.Copy()
	}
	return ret
}

// IDs returns the ids of the atoms, in order.
func (M *Model) IDs() []int {
	ret := make([]int, len(M.atoms))
	for i, a := range M.atoms {
		ret[i] = a.ID
	}
	return ret
}

// Coord returns the cartesian coordinates of the ith atom. Panics if out of range.
func (M *Model) Coord(i int) [3]float64 {
	if i < 0 || i >= len(M.atoms) {
		panic(ErrIndex.Error())
	}
	return M.coords.Vec(i)
}

// Coords returns a copy of the coordinates of all the atoms, one row per atom.
// Returns nil for an empty model.
func (M *Model) Coords() *v3.Matrix {
	if M.coords == nil {
		return nil
	}
	return M.coords.Copy3()
}

// Index returns the position of the atom with the given id.
func (M *Model) Index(id int) (int, error) {
	i, ok := M.index[id]
	if !ok {
		return -1, NewError(NotFound, ErrNotFound, "Index", "id %d", id)
	}
	return i, nil
}

// AtomByID returns the atom with the given id and its coordinates.
func (M *Model) AtomByID(id int) (Atom, [3]float64, error) {
	i, err := M.Index(id)
	if err != nil {
		return Atom{}, [3]float64{}, errDecorate(err, "AtomByID")
	}
	return M.Atom(i), M.Coord(i), nil
}

// checkAtom validates the atom, filling its atomic number and canonical symbol.
// skip is the position of an atom whose id is allowed to collide (the atom being replaced),
// or -1.
func (M *Model) checkAtom(at *Atom, skip int) error {
	if at.ID <= 0 {
		return NewError(ValidationError, ErrInvalidID, "", "id %d", at.ID)
	}
	if i, ok := M.index[at.ID]; ok && i != skip {
		return NewError(ValidationError, ErrDuplicateID, "", "id %d", at.ID)
	}
	z, err := AtomicNumber(at.Symbol)
	if err != nil {
		return err
	}
	if at.Z != 0 && at.Z != z {
		return NewError(ValidationError, ErrElementMismatch, "", "%s has atomic number %d, not %d", CanonicalSymbol(at.Symbol), z, at.Z)
	}
	if strings.ContainsAny(at.Label, "\"\r\n") {
		return NewError(ValidationError, nil, "", "label %q can't contain quotes or line breaks", at.Label)
	}
	at.Z = z
	at.Symbol = CanonicalSymbol(at.Symbol)
	return nil
}

func finite(c [3]float64) bool {
	for _, v := range c {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// AddAtom appends an atom with the given coordinates to the model. If the atom's Z is 0
// it is taken from the symbol. The model is not modified if the atom is invalid.
func (M *Model) AddAtom(at Atom, coord [3]float64) error {
	at = at.Copy()
	if err := M.checkAtom(&at, -1); err != nil {
		return errDecorate(err, "AddAtom")
	}
	if !finite(coord) {
		return NewError(ValidationError, ErrNonFinite, "AddAtom", "atom %d: %v", at.ID, coord)
	}
	var data []float64
	if M.coords != nil {
		data = M.coords.RawMatrix().Data
	}
	data = append(data, coord[0], coord[1], coord[2])
	coords, err := v3.NewMatrix(data)
	if err != nil {
		return NewError(ValidationError, err, "AddAtom", "").SetCritical(true)
	}
	M.coords = coords
	M.atoms = append(M.atoms, at)
	M.index[at.ID] = len(M.atoms) - 1
	return nil
}

// DelAtom removes the ith atom. The positions of the atoms after it shift by one.
func (M *Model) DelAtom(i int) error {
	if i < 0 || i >= len(M.atoms) {
		return NewError(ValidationError, ErrIndex, "DelAtom", "index %d, %d atoms", i, len(M.atoms))
	}
	if len(M.atoms) == 1 {
		M.coords = nil
	} else {
		c := v3.Zeros(len(M.atoms) - 1)
		c.DelVec(M.coords, i)
		M.coords = c
	}
	delete(M.index, M.atoms[i].ID)
	M.atoms = append(M.atoms[:i], M.atoms[i+1:]...)
	for j := i; j < len(M.atoms); j++ {
		M.index[M.atoms[j].ID] = j
	}
	return nil
}

// SetAtom replaces the data (not the coordinates) of the ith atom.
func (M *Model) SetAtom(i int, at Atom) error {
	if i < 0 || i >= len(M.atoms) {
		return NewError(ValidationError, ErrIndex, "SetAtom", "index %d, %d atoms", i, len(M.atoms))
	}
	at = at.Copy()
	if err := M.checkAtom(&at, i); err != nil {
		return errDecorate(err, "SetAtom")
	}
	delete(M.index, M.atoms[i].ID)
	M.atoms[i] = at
	M.index[at.ID] = i
	return nil
}

// SetID changes the id of the ith atom.
func (M *Model) SetID(i, id int) error {
	if i < 0 || i >= len(M.atoms) {
		return NewError(ValidationError, ErrIndex, "SetID", "index %d, %d atoms", i, len(M.atoms))
	}
	at := M.atoms[i]
	at.ID = id
	return errDecorate(M.SetAtom(i, at), "SetID")
}

// SetCoord replaces the coordinates of the ith atom.
func (M *Model) SetCoord(i int, c [3]float64) error {
	if i < 0 || i >= len(M.atoms) {
		return NewError(ValidationError, ErrIndex, "SetCoord", "index %d, %d atoms", i, len(M.atoms))
	}
	if !finite(c) {
		return NewError(ValidationError, ErrNonFinite, "SetCoord", "atom %d: %v", M.atoms[i].ID, c)
	}
	M.coords.SetVec(i, c)
	return nil
}

// SetCoords replaces all the coordinates with a copy of c, which must have one row
// per atom.
func (M *Model) SetCoords(c *v3.Matrix) error {
	if c == nil || c.NVecs() != len(M.atoms) {
		return NewError(ValidationError, ErrShape, "SetCoords", "%d atoms", len(M.atoms))
	}
	if !c.Finite() {
		return NewError(ValidationError, ErrNonFinite, "SetCoords", "")
	}
	M.coords.Copy(c.Dense)
	return nil
}

// Lattice returns a copy of the lattice, and false if the model doesn't have one.
func (M *Model) Lattice() (*Lattice, bool) {
	if M.lattice == nil {
		return nil, false
	}
	return M.lattice.Copy(), true
}

// SetLattice sets a copy of L as the lattice of the model. A nil L removes the lattice.
func (M *Model) SetLattice(L *Lattice) {
	if L == nil {
		M.lattice = nil
		return
	}
	M.lattice = L.Copy()
}

// ClearLattice removes the lattice of the model.
func (M *Model) ClearLattice() {
	M.lattice = nil
}

// Setting returns a copy of the value for key.
func (M *Model) Setting(key string) (Value, bool) {
	v, ok := M.settings[key]
	if !ok {
		return Value{}, false
	}
	return v.Copy(), true
}

// SetSetting sets the value for key. The key must be a single word (no whitespace,
// quotes or parentheses) that doesn't start a comment and isn't a lattice field,
// and the value must be valid.
func (M *Model) SetSetting(key string, v Value) error {
	if key == "" || strings.ContainsAny(key, " \t\r\n\"()") || strings.HasPrefix(key, "#") {
		return NewError(ValidationError, nil, "SetSetting", "invalid setting name %q", key)
	}
	switch key {
	case "A3", "B3", "C3":
		return NewError(ValidationError, nil, "SetSetting", "%s is a lattice vector, use SetLattice", key)
	}
	if !v.Valid() {
		return NewError(ValidationError, ErrNonFinite, "SetSetting", "setting %s", key)
	}
	M.settings[key] = v.Copy()
	return nil
}

// DelSetting removes key from the settings.
func (M *Model) DelSetting(key string) {
	delete(M.settings, key)
}

// SettingKeys returns the names of all the settings, sorted.
func (M *Model) SettingKeys() []string {
	ret := make([]string, 0, len(M.settings))
	for k := range M.settings {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}

// Preserved returns the model-level constructs kept from the source document.
func (M *Model) Preserved() []string {
	return append([]string(nil), M.preserved...)
}

// AddPreserved keeps text to be written back by exporters of the source format.
func (M *Model) AddPreserved(text string) {
	M.preserved = append(M.preserved, text)
}

// Elements returns the distinct element symbols in the model, sorted by atomic number.
func (M *Model) Elements() []string {
	seen := make(map[string]int)
	for _, a := range M.atoms {
		seen[a.Symbol] = a.Z
	}
	ret := make([]string, 0, len(seen))
	for s := range seen {
		ret = append(ret, s)
	}
	sort.Slice(ret, func(i, j int) bool { return seen[ret[i]] < seen[ret[j]] })
	return ret
}

// Copy returns a deep copy of the model.
func (M *Model) Copy() *Model {
	ret := NewModel()
	ret.atoms = M.Atoms()
	ret.coords = M.Coords()
	if M.lattice != nil {
		ret.lattice = M.lattice.Copy()
	}
	for k, v := range M.settings {
		ret.settings[k] = v.Copy()
	}
	ret.preserved = M.Preserved()
	for k, v := range M.index {
		ret.index[k] = v
	}
	return ret
}

// Check verifies every invariant of the model. A Model built through its methods
// always passes. Exporters call it before writing anything.
func (M *Model) Check() error {
	seen := make(map[int]bool, len(M.atoms))
	for i, a := range M.atoms {
		if a.ID <= 0 || seen[a.ID] {
			return NewError(ValidationError, ErrDuplicateID, "Check", "atom %d has id %d", i, a.ID)
		}
		seen[a.ID] = true
		z, err := AtomicNumber(a.Symbol)
		if err != nil || z != a.Z {
			return NewError(ValidationError, ErrElementMismatch, "Check", "atom %d (%s, %d)", a.ID, a.Symbol, a.Z)
		}
	}
	if len(M.atoms) > 0 && (M.coords == nil || M.coords.NVecs() != len(M.atoms)) {
		return NewError(ValidationError, ErrShape, "Check", "")
	}
	if M.coords != nil && !M.coords.Finite() {
		return NewError(ValidationError, ErrNonFinite, "Check", "")
	}
	return nil
}

// Equal returns true if both models have the same atoms in the same order, the same
// lattice and the same settings. Coordinates, lattice vectors and real settings are
// compared within tol. Preserved constructs are not compared.
func (M *Model) Equal(o *Model, tol float64) bool {
	if M.Len() != o.Len() || len(M.settings) != len(o.settings) {
		return false
	}
	for i := range M.atoms {
		a, b := M.atoms[i], o.atoms[i]
		if a.ID != b.ID || a.Symbol != b.Symbol || a.Z != b.Z || a.Label != b.Label {
			return false
		}
		ca, cb := M.Coord(i), o.Coord(i)
		if !floats.EqualApprox(ca[:], cb[:], tol) {
			return false
		}
	}
	if !M.lattice.Equal(o.lattice, tol) {
		return false
	}
	for k, v := range M.settings {
		w, ok := o.settings[k]
		if !ok || !v.Equal(w, tol) {
			return false
		}
	}
	return true
}
