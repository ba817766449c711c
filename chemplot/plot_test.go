/*
 * plot_test.go, part of msicastep.
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

package chemplot

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	chem "github.com/rmera/msicastep"
	"github.com/rmera/msicastep/msi"
)

// TestProjection draws the quartz test structure on the three planes.
func TestProjection(Te *testing.T) {
	mol, err := msi.ParseFile("../msi/test/quartz.msi")
	if err != nil {
		Te.Fatal(err)
	}
	for _, plane := range []string{"", "xy", "xz", "yz"} {
		var b bytes.Buffer
		P := Projection{Plane: plane}.Named("quartz")
		if err := P.Export(&b, mol); err != nil {
			Te.Fatalf("plane %q: %v", plane, err)
		}
		out := b.String()
		if !strings.Contains(out, "<svg") || !strings.Contains(out, "</svg>") {
			Te.Errorf("plane %q: output doesn't look like svg", plane)
		}
		if !strings.Contains(out, "quartz") {
			Te.Errorf("plane %q: title missing", plane)
		}
	}
	if n := (Projection{}).FileName("quartz"); n != "quartz.svg" {
		Te.Errorf("FileName gave %s", n)
	}
}

func TestProjectionErrors(Te *testing.T) {
	var b bytes.Buffer
	err := Projection{}.Export(&b, chem.NewModel())
	if !chem.IsKind(err, chem.ExportError) {
		Te.Errorf("empty model gave %v", err)
	}
	var ce *chem.CError
	if errors.As(err, &ce) && ce.Critical() {
		Te.Error("an empty model is not a defect")
	}
	mol := chem.NewModel()
	if err := mol.AddAtom(chem.Atom{ID: 1, Symbol: "C"}, [3]float64{}); err != nil {
		Te.Fatal(err)
	}
	if err := (Projection{Plane: "xw"}).Export(&b, mol); !chem.IsKind(err, chem.ConfigError) {
		Te.Errorf("bad plane gave %v", err)
	}
}

func TestColors(Te *testing.T) {
	seen := make(map[[3]uint8]bool)
	for i := 0; i < 6; i++ {
		r, g, b := colors(i, 6)
		if seen[[3]uint8{r, g, b}] {
			Te.Errorf("color %d repeated: %d %d %d", i, r, g, b)
		}
		seen[[3]uint8{r, g, b}] = true
	}
	if r, g, b := iHVS2RGB(0, 1, 1); r != 255 || g != 0 || b != 0 {
		Te.Errorf("hue 0 should be red, got %d %d %d", r, g, b)
	}
}
