/*
 * extract.go, part of msicastep.
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

package msi

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	chem "github.com/rmera/msicastep"
)

// DefaultMaxDepth is the default nesting limit for constructs.
const DefaultMaxDepth = 32

// Policy decides what happens to the constructs the parser doesn't know.
type Policy int

const (
	Extract  Policy = iota //drop them, with a warning
	Preserve               //keep their text in the Model, to be written back
)

func (p Policy) String() string {
	if p == Preserve {
		return "preserve"
	}
	return "extract"
}

// ParsePolicy returns the policy named s ("extract" or "preserve", any case).
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "extract", "":
		return Extract, nil
	case "preserve":
		return Preserve, nil
	}
	return Extract, chem.NewError(chem.ConfigError, nil, "ParsePolicy", "unknown policy %q", s)
}

// Options for the parser. Zero values mean the defaults.
type Options struct {
	Policy   Policy
	MaxDepth int
	Logger   *log.Logger //receives a warning for each construct dropped
}

// DefaultOptions returns the default parser options: the Extract policy, a nesting
// limit of DefaultMaxDepth and the default charmbracelet logger.
func DefaultOptions() Options {
	return Options{Policy: Extract, MaxDepth: DefaultMaxDepth, Logger: log.Default()}
}

func getOptions(opts []Options) Options {
	if len(opts) == 0 {
		return DefaultOptions()
	}
	o := opts[0]
	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	return o
}

// Parse reads an MSI DataModel from r and returns the Model it describes.
// Any problem with the input gives a ParseError and no Model.
func Parse(r io.Reader, opts ...Options) (*chem.Model, error) {
	o := getOptions(opts)
	doc, err := ReadDocument(r, o.MaxDepth)
	if err != nil {
		return nil, errDecorate(err, "Parse")
	}
	mol, err := doc.Model(o)
	if err != nil {
		return nil, errDecorate(err, "Parse")
	}
	return mol, nil
}

var latticeNames = map[string]int{"A3": 0, "B3": 1, "C3": 2}

// Model walks the tree and builds the Model. Atom objects become atoms,
// the A3, B3 and C3 fields of the root become the lattice, and the other
// I, D and C fields of the root become settings.
func (D *Document) Model(opts ...Options) (*chem.Model, error) {
	o := getOptions(opts)
	root := D.Root
	if root == nil || root.Kind != "Model" {
		e := chem.NewError(chem.ParseError, ErrNotModel, "Model", "")
		if root != nil {
			e.At(root.Line, root.Col)
		}
		return nil, e
	}
	mol := chem.NewModel()
	var refs map[int]string
	if o.Policy == Preserve {
		refs = references(root)
	}
	var lat [3]*Field
	for _, n := range root.Items {
		switch v := n.(type) {
		case *Field:
			if i, ok := latticeNames[v.Name]; ok {
				if lat[i] != nil {
					return nil, nodeError(ErrLattice, v, "%s appears twice", v.Name)
				}
				lat[i] = v
				continue
			}
			if !settingTag(v.Tag) {
				unknown(o, refs, n, mol.AddPreserved)
				continue
			}
			val, err := fieldValue(v)
			if err != nil {
				return nil, errDecorate(err, "Model")
			}
			if err := mol.SetSetting(v.Name, val); err != nil {
				return nil, nodeError(err, v, "setting %s", v.Name)
			}
		case *Object:
			if v.Kind != "Atom" {
				unknown(o, refs, n, mol.AddPreserved)
				continue
			}
			if err := atom(o, refs, v, mol); err != nil {
				return nil, errDecorate(err, "Model")
			}
		}
	}
	if err := lattice(lat, mol); err != nil {
		return nil, errDecorate(err, "Model")
	}
	return mol, nil
}

func nodeError(cause error, n Node, format string, args ...interface{}) error {
	line, col := n.Pos()
	return chem.NewError(chem.ParseError, cause, "", format, args...).At(line, col)
}

func settingTag(tag string) bool {
	return tag == "I" || tag == "D" || tag == "C"
}

// describe returns a short name for a construct, for the logs.
func describe(n Node) string {
	switch v := n.(type) {
	case *Field:
		return fmt.Sprintf("A %s %s", v.Tag, v.Name)
	case *Object:
		return v.Kind
	}
	return "?"
}

// unknown applies the policy to a construct that is not recognized.
func unknown(o Options, refs map[int]string, n Node, keep func(string)) {
	if o.Policy == Preserve {
		keep(keyed(n, refs))
		return
	}
	line, _ := n.Pos()
	o.Logger.Warn("dropping unrecognized construct", "kind", describe(n), "line", line)
}

// references gives every object in the tree the key its ordinal is kept under
// in preserved constructs. The atoms of the model are keyed by their Id, @a<Id>,
// as the writer numbers them again. The model is @m1, and every other object,
// nested ones included, is @o<n>, numbered in document order.
func references(root *Object) map[int]string {
	refs := map[int]string{root.Ordinal: "@m1"}
	seq := 0
	var walk func(obj *Object, top bool)
	walk = func(obj *Object, top bool) {
		if id, ok := atomID(obj); top && ok {
			refs[obj.Ordinal] = "@a" + strconv.Itoa(id)
		} else {
			seq++
			refs[obj.Ordinal] = "@o" + strconv.Itoa(seq)
		}
		for _, n := range obj.Items {
			if child, ok := n.(*Object); ok {
				walk(child, false)
			}
		}
	}
	for _, n := range root.Items {
		if obj, ok := n.(*Object); ok {
			walk(obj, true)
		}
	}
	return refs
}

// atomID returns the Id of an Atom object, if it has one.
func atomID(obj *Object) (int, bool) {
	if obj.Kind != "Atom" {
		return 0, false
	}
	for _, n := range obj.Items {
		if f, ok := n.(*Field); ok && f.Name == "Id" && f.Value.Kind == NumberLiteral {
			id, err := strconv.Atoi(f.Value.Text)
			return id, err == nil
		}
	}
	return 0, false
}

// fieldValue converts the literal of an I, D or C field into a setting value.
func fieldValue(f *Field) (chem.Value, error) {
	lit := f.Value
	switch f.Tag {
	case "C":
		if lit.Kind != StringLiteral {
			return chem.Value{}, nodeError(ErrBadLiteral, f, "%s must be a string", f.Name)
		}
		return chem.Text(lit.Text), nil
	case "I":
		if lit.Kind == StringLiteral {
			return chem.Value{}, nodeError(ErrBadLiteral, f, "%s must be an integer", f.Name)
		}
		ints, err := integers(lit)
		if err != nil {
			return chem.Value{}, nodeError(ErrBadLiteral, f, "%s must be an integer", f.Name)
		}
		if lit.Kind == TupleLiteral {
			return chem.Ints(ints...), nil
		}
		return chem.Int(ints[0]), nil
	case "D":
		if lit.Kind == StringLiteral {
			return chem.Value{}, nodeError(ErrBadLiteral, f, "%s must be a real number", f.Name)
		}
		reals := reals(lit)
		if lit.Kind == TupleLiteral {
			return chem.Reals(reals...), nil
		}
		return chem.Real(reals[0]), nil
	}
	return chem.Value{}, nodeError(ErrBadLiteral, f, "unknown tag %s", f.Tag)
}

func numbers(lit Literal) []string {
	if lit.Kind == TupleLiteral {
		return lit.Items
	}
	return []string{lit.Text}
}

func integers(lit Literal) ([]int64, error) {
	var ret []int64
	for _, s := range numbers(lit) {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, err
		}
		ret = append(ret, n)
	}
	return ret, nil
}

// reals converts numbers already checked by the parser.
func reals(lit Literal) []float64 {
	var ret []float64
	for _, s := range numbers(lit) {
		f, _ := strconv.ParseFloat(s, 64)
		ret = append(ret, f)
	}
	return ret
}

// vector returns the 3 reals of a D field with a tuple value.
func vector(f *Field) ([3]float64, bool) {
	var ret [3]float64
	if f.Tag != "D" || f.Value.Kind != TupleLiteral || len(f.Value.Items) != 3 {
		return ret, false
	}
	copy(ret[:], reals(f.Value))
	return ret, true
}

// atom adds the atom described by obj to mol.
func atom(o Options, refs map[int]string, obj *Object, mol *chem.Model) error {
	fields := map[string]*Field{"ACL": nil, "Label": nil, "XYZ": nil, "Id": nil}
	var extra []string
	for _, n := range obj.Items {
		f, ok := n.(*Field)
		if !ok {
			unknown(o, refs, n, func(s string) { extra = append(extra, s) })
			continue
		}
		prev, known := fields[f.Name]
		if !known {
			unknown(o, refs, n, func(s string) { extra = append(extra, s) })
			continue
		}
		if prev != nil {
			return nodeError(ErrBadLiteral, f, "atom field %s appears twice", f.Name)
		}
		fields[f.Name] = f
	}
	for _, name := range []string{"ACL", "XYZ", "Id"} {
		if fields[name] == nil {
			return nodeError(ErrMissingField, obj, "atom has no %s", name)
		}
	}
	at := chem.Atom{Extra: extra}
	acl := fields["ACL"]
	if acl.Tag != "C" || acl.Value.Kind != StringLiteral {
		return nodeError(ErrBadLiteral, acl, "ACL must be a string")
	}
	parts := strings.Fields(acl.Value.Text)
	switch len(parts) {
	case 1:
		at.Symbol = parts[0]
	case 2:
		z, err := strconv.Atoi(parts[0])
		if err != nil || z <= 0 {
			return nodeError(ErrBadLiteral, acl, "bad atomic number in ACL %q", acl.Value.Text)
		}
		at.Z, at.Symbol = z, parts[1]
	default:
		return nodeError(ErrBadLiteral, acl, "ACL %q", acl.Value.Text)
	}
	if l := fields["Label"]; l != nil {
		if l.Tag != "C" || l.Value.Kind != StringLiteral {
			return nodeError(ErrBadLiteral, l, "Label must be a string")
		}
		at.Label = l.Value.Text
	}
	id := fields["Id"]
	if id.Tag != "I" || id.Value.Kind != NumberLiteral {
		return nodeError(ErrBadLiteral, id, "Id must be an integer")
	}
	n, err := strconv.Atoi(id.Value.Text)
	if err != nil {
		return nodeError(ErrBadLiteral, id, "Id %q must be an integer", id.Value.Text)
	}
	at.ID = n
	xyz, ok := vector(fields["XYZ"])
	if !ok {
		return nodeError(ErrBadLiteral, fields["XYZ"], "XYZ must be a tuple of 3 reals")
	}
	if err := mol.AddAtom(at, xyz); err != nil {
		return nodeError(err, obj, "atom %d", at.ID)
	}
	return nil
}

// lattice sets the lattice from the A3, B3 and C3 fields. Either all of them or none
// must be present.
func lattice(lat [3]*Field, mol *chem.Model) error {
	var vecs [3][3]float64
	found := 0
	for _, f := range lat {
		if f != nil {
			found++
		}
	}
	if found == 0 {
		return nil
	}
	for i, f := range lat {
		if f == nil {
			var first Node
			for _, g := range lat {
				if g != nil {
					first = g
					break
				}
			}
			return nodeError(ErrLattice, first, "%s is missing", []string{"A3", "B3", "C3"}[i])
		}
		v, ok := vector(f)
		if !ok {
			return nodeError(ErrLattice, f, "%s must be a tuple of 3 reals", f.Name)
		}
		vecs[i] = v
	}
	L, err := chem.NewLattice(vecs[0], vecs[1], vecs[2])
	if err != nil {
		return nodeError(err, lat[0], "lattice")
	}
	mol.SetLattice(L)
	return nil
}

// errDecorate is a helper function that asserts that the error
// implements chem.Error and decorates the error with the caller's name before returning it.
func errDecorate(err error, caller string) error {
	if err == nil {
		return nil
	}
	if err2, ok := err.(chem.Error); ok {
		err2.Decorate(caller)
	}
	return err
}
