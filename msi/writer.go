/*
 * writer.go, part of msicastep.
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
	"bufio"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	chem "github.com/rmera/msicastep"
)

// Header is the first line of every MSI file written by this package.
const Header = "# MSI CERIUS2 DataModel File Version 4 0"

// Exporter writes a Model in the MSI format. The output can be read back
// with Parse. Atoms get the ordinals 2, 3, ... in model order, as 1 is the Model,
// and the objects of preserved constructs the ordinals after the last atom.
type Exporter struct{}

// periodicDefaults are the header fields Materials Studio expects in a periodic
// model. The writer adds the ones missing from a model with a lattice.
var periodicDefaults = []struct {
	key   string
	value chem.Value
}{
	{"CRY/DISPLAY", chem.Ints(192, 256)},
	{"PeriodicType", chem.Int(100)},
	{"SpaceGroup", chem.Text("1 1")},
	{"CRY/TOLERANCE", chem.Real(0.05)},
}

// FileName returns seed.msi
func (E Exporter) FileName(seed string) string {
	return seed + ".msi"
}

// Export writes mol to w. Settings go first, sorted by name, then the lattice vectors, the
// atoms and finally the constructs preserved from the source file. A model with a lattice
// gets the periodic header fields it lacks. The object references in preserved constructs
// are renumbered to match the ordinals written, and constructs that refer to atoms or
// objects no longer in the model are left out.
func (E Exporter) Export(w io.Writer, mol *chem.Model) error {
	if err := mol.Check(); err != nil {
		return chem.NewError(chem.ExportError, err, "msi.Export", "invalid model").SetCritical(true)
	}
	settings := make(map[string]chem.Value)
	for _, k := range mol.SettingKeys() {
		settings[k], _ = mol.Setting(k)
	}
	if _, ok := mol.Lattice(); ok {
		for _, d := range periodicDefaults {
			if _, ok := settings[d.key]; !ok {
				settings[d.key] = d.value
			}
		}
	}
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	extra, preserved := resolve(mol)
	out := bufio.NewWriter(w)
	fmt.Fprintf(out, "%s\n(1 Model\n", Header)
	for _, k := range keys {
		v := settings[k]
		fmt.Fprintf(out, "  (A %c %s %s)\n", v.Kind, k, v.String())
	}
	if L, ok := mol.Lattice(); ok {
		for i, name := range []string{"A3", "B3", "C3"} {
			v := L.Vec(i)
			fmt.Fprintf(out, "  (A D %s (%.12f %.12f %.12f))\n", name, v[0], v[1], v[2])
		}
	}
	for i, at := range mol.Atoms() {
		c := mol.Coord(i)
		fmt.Fprintf(out, "  (%d Atom\n", i+2)
		fmt.Fprintf(out, "    (A C ACL \"%d %s\")\n", at.Z, at.Symbol)
		if at.Label != "" {
			fmt.Fprintf(out, "    (A C Label \"%s\")\n", at.Label)
		}
		fmt.Fprintf(out, "    (A D XYZ (%.12f %.12f %.12f))\n", c[0], c[1], c[2])
		fmt.Fprintf(out, "    (A I Id %d)\n", at.ID)
		for _, x := range extra[i] {
			indented(out, x, "    ")
		}
		fmt.Fprint(out, "  )\n")
	}
	for _, p := range preserved {
		indented(out, p, "  ")
	}
	fmt.Fprint(out, ")\n")
	if err := out.Flush(); err != nil {
		return chem.NewError(chem.ExportError, err, "msi.Export", "").SetCritical(false)
	}
	return nil
}

func indented(w io.Writer, text, indent string) {
	for _, l := range strings.Split(text, "\n") {
		fmt.Fprintf(w, "%s%s\n", indent, l)
	}
}

var (
	refKey    = regexp.MustCompile(`@[amox][0-9]+`)
	objectKey = regexp.MustCompile(`\((@o[0-9]+) `)
)

type construct struct {
	text string
	atom int //index of the owner atom, -1 for the model
}

// resolve replaces the keys in the preserved constructs of mol with the ordinals the
// writer uses, and returns the constructs of each atom and those of the model. Text
// without keys is returned as it is. Dropping a construct can orphan others that
// refer to its objects, so resolve repeats until every remaining key resolves.
func resolve(mol *chem.Model) ([][]string, []string) {
	atoms := mol.Atoms()
	var items []construct
	for i, at := range atoms {
		for _, x := range at.Extra {
			items = append(items, construct{x, i})
		}
	}
	for _, p := range mol.Preserved() {
		items = append(items, construct{p, -1})
	}
	var ord map[string]int
	for {
		ord = map[string]int{"@m1": 1}
		for i, at := range atoms {
			ord["@a"+strconv.Itoa(at.ID)] = i + 2
		}
		next := len(atoms) + 2
		for _, c := range items {
			for _, m := range objectKey.FindAllStringSubmatch(c.text, -1) {
				ord[m[1]] = next
				next++
			}
		}
		var kept []construct
		for _, c := range items {
			if resolves(c.text, ord) {
				kept = append(kept, c)
			}
		}
		if len(kept) == len(items) {
			break
		}
		items = kept
	}
	extra := make([][]string, len(atoms))
	var preserved []string
	for _, c := range items {
		t := refKey.ReplaceAllStringFunc(c.text, func(k string) string {
			return strconv.Itoa(ord[k])
		})
		if c.atom < 0 {
			preserved = append(preserved, t)
		} else {
			extra[c.atom] = append(extra[c.atom], t)
		}
	}
	return extra, preserved
}

func resolves(text string, ord map[string]int) bool {
	for _, k := range refKey.FindAllString(text, -1) {
		if _, ok := ord[k]; !ok {
			return false
		}
	}
	return true
}
