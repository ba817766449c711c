/*
 * projection.go, part of msicastep.
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
	"fmt"
	"image/color"
	"io"
	"math"

	chem "github.com/rmera/msicastep"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Projection draws the atoms of a Model projected on one of the cartesian planes,
// one color per element, together with the projection of the lattice vectors.
// The result is an SVG image, meant as a quick preview of a structure.
type Projection struct {
	Plane string    //xy, xz or yz. Empty means xy
	Title string    //the seed name is used if empty
	Size  vg.Length //side of the square image, 4 inches if zero
	seed  string
}

// FileName returns seed.svg
func (P Projection) FileName(seed string) string {
	return seed + ".svg"
}

// Named returns a copy of P that uses seed as the title when P has none.
func (P Projection) Named(seed string) Projection {
	P.seed = seed
	return P
}

func planeAxes(plane string) (int, int, error) {
	switch plane {
	case "", "xy":
		return 0, 1, nil
	case "xz":
		return 0, 2, nil
	case "yz":
		return 1, 2, nil
	}
	return 0, 0, fmt.Errorf("unknown plane %q, use xy, xz or yz", plane)
}

// Export draws mol and writes the SVG to w. An empty model can't be drawn and gives
// a non-critical ExportError.
func (P Projection) Export(w io.Writer, mol *chem.Model) error {
	if err := mol.Check(); err != nil {
		return chem.NewError(chem.ExportError, err, "chemplot.Projection.Export", "invalid model").SetCritical(true)
	}
	h, v, err := planeAxes(P.Plane)
	if err != nil {
		return chem.NewError(chem.ConfigError, err, "chemplot.Projection.Export", "")
	}
	if mol.Len() == 0 {
		return chem.NewError(chem.ExportError, nil, "chemplot.Projection.Export", "no atoms to draw").SetCritical(false)
	}
	p, err := projectionPlot(mol, h, v)
	if err != nil {
		return chem.NewError(chem.ExportError, err, "chemplot.Projection.Export", "")
	}
	p.Title.Text = P.Title
	if p.Title.Text == "" {
		p.Title.Text = P.seed
	}
	size := P.Size
	if size == 0 {
		size = 4 * vg.Inch
	}
	wt, err := p.WriterTo(size, size, "svg")
	if err != nil {
		return chem.NewError(chem.ExportError, err, "chemplot.Projection.Export", "")
	}
	if _, err := wt.WriteTo(w); err != nil {
		return chem.NewError(chem.ExportError, err, "chemplot.Projection.Export", "").SetCritical(false)
	}
	return nil
}

func projectionPlot(mol *chem.Model, h, v int) (*plot.Plot, error) {
	names := "xyz"
	p := plot.New()
	p.Title.Padding = 3 * vg.Millimeter
	p.X.Label.Text = string(names[h]) + " (Å)"
	p.Y.Label.Text = string(names[v]) + " (Å)"
	p.Add(plotter.NewGrid())
	if L, ok := mol.Lattice(); ok {
		for i := 0; i < 3; i++ {
			vec := L.Vec(i)
			l, err := plotter.NewLine(plotter.XYs{{}, {X: vec[h], Y: vec[v]}})
			if err != nil {
				return nil, err
			}
			l.LineStyle.Dashes = []vg.Length{vg.Points(2), vg.Points(2)}
			l.LineStyle.Color = color.Gray{Y: 128}
			p.Add(l)
		}
	}
	elements := mol.Elements()
	points := make(map[string]plotter.XYs, len(elements))
	for i, at := range mol.Atoms() {
		c := mol.Coord(i)
		points[at.Symbol] = append(points[at.Symbol], plotter.XY{X: c[h], Y: c[v]})
	}
	for key, s := range elements {
		sc, err := plotter.NewScatter(points[s])
		if err != nil {
			return nil, err
		}
		r, g, b := colors(key, len(elements))
		sc.GlyphStyle.Color = color.RGBA{R: r, G: g, B: b, A: 255}
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
		sc.GlyphStyle.Radius = vg.Points(4)
		p.Add(sc)
		p.Legend.Add(s, sc)
	}
	p.Legend.Top = true
	return p, nil
}

// takes hue (0-360), v and s (0-1), returns r,g,b (0-255)
func iHVS2RGB(h, v, s float64) (uint8, uint8, uint8) {
	var i, f, p, q, t float64
	var r, g, b float64
	maxcolor := 255.0
	conversion := maxcolor * v
	if s == 0.0 {
		return uint8(conversion), uint8(conversion), uint8(conversion)
	}
	h = h / 60
	i = math.Floor(h)
	f = h - i
	p = v * (1 - s)
	q = v * (1 - s*f)
	t = v * (1 - s*(1-f))
	switch int(i) {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	default: //case 5
		r, g, b = v, p, q
	}
	return uint8(r * conversion), uint8(g * conversion), uint8(b * conversion)
}

// colors returns the color for the key-th of steps series, going around the hue
// circle but skipping the yellows, which are hard to see on white.
func colors(key, steps int) (r, g, b uint8) {
	norm := 260.0 / float64(steps)
	hp := float64((float64(key) * norm) + 20.0)
	var h float64
	if hp < 55 {
		h = hp - 20.0
	} else {
		h = hp + 20.0
	}
	return iHVS2RGB(h, 1, 1)
}
