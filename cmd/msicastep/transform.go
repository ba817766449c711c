/*
 * transform.go, part of msicastep.
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

package main

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	chem "github.com/rmera/msicastep"
	"github.com/rmera/msicastep/msi"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// transformOpts holds the flags for the geometric transformations shared by
// convert and transform.
type transformOpts struct {
	translate string  // x,y,z offset in Å
	axis      string  // x,y,z rotation axis
	angle     float64 // degrees
	pivot     string  // x,y,z point the axis goes through
	lattice   bool    // rotate the lattice vectors too
}

func (t *transformOpts) addFlags(fs *pflag.FlagSet) {
	fs.StringVar(&t.translate, "translate", "", "translate every atom by x,y,z (Å)")
	fs.StringVar(&t.axis, "rotate-axis", "", "rotate around the axis x,y,z")
	fs.Float64Var(&t.angle, "rotate-angle", 0, "rotation angle in degrees")
	fs.StringVar(&t.pivot, "pivot", "0,0,0", "point the rotation axis goes through")
	fs.BoolVar(&t.lattice, "rotate-lattice", false, "rotate the lattice vectors with the atoms")
}

// apply performs the requested transformations on mol: first the translation,
// then the rotation.
func (t *transformOpts) apply(mol *chem.Model, opts *chem.Options, logger *log.Logger) error {
	if t.translate != "" {
		v, err := parseVec(t.translate)
		if err != nil {
			return fmt.Errorf("--translate: %w", err)
		}
		if err := chem.Translate(mol, v, opts); err != nil {
			return err
		}
		logger.Debug("translated", "offset", v)
	}
	if t.axis == "" {
		if t.angle != 0 {
			return fmt.Errorf("--rotate-angle needs --rotate-axis")
		}
		return nil
	}
	axis, err := parseVec(t.axis)
	if err != nil {
		return fmt.Errorf("--rotate-axis: %w", err)
	}
	pivot, err := parseVec(t.pivot)
	if err != nil {
		return fmt.Errorf("--pivot: %w", err)
	}
	if err := chem.Rotate(mol, axis, t.angle*math.Pi/180, pivot, t.lattice, opts); err != nil {
		return err
	}
	logger.Debug("rotated", "axis", axis, "degrees", t.angle, "pivot", pivot, "lattice", t.lattice)
	return nil
}

// parseVec reads three comma-separated numbers.
func parseVec(s string) ([3]float64, error) {
	var v [3]float64
	fields := strings.Split(s, ",")
	if len(fields) != 3 {
		return v, fmt.Errorf("expected x,y,z, got %q", s)
	}
	for i, f := range fields {
		n, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return v, fmt.Errorf("expected x,y,z, got %q", s)
		}
		v[i] = n
	}
	return v, nil
}

func newTransformCmd(a *app) *cobra.Command {
	var t transformOpts
	cmd := &cobra.Command{
		Use:   "transform in.msi out.msi",
		Short: "Translate or rotate a structure and write it back as msi or xyz",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			popts, err := a.cfg.ParserOptions(logger)
			if err != nil {
				return err
			}
			mol, err := readModel(args[0], popts)
			if err != nil {
				return err
			}
			if err := t.apply(mol, a.cfg.TransformOptions(), logger); err != nil {
				return err
			}
			if err := writeModel(args[1], mol); err != nil {
				return err
			}
			logger.Info("wrote", "file", args[1], "atoms", mol.Len())
			return nil
		},
	}
	t.addFlags(cmd.Flags())
	return cmd
}

func isXYZ(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".xyz")
}

// readModel reads an xyz file if name ends in .xyz and an msi file, maybe
// compressed, otherwise.
func readModel(name string, popts msi.Options) (*chem.Model, error) {
	if !isXYZ(name) {
		return msi.ParseFile(name, popts)
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, chem.NewError(chem.NotFound, err, "readModel", "%s", name).SetCritical(false)
	}
	defer f.Close()
	return chem.ReadXYZ(f)
}

// writeModel is the counterpart of readModel.
func writeModel(name string, mol *chem.Model) error {
	if !isXYZ(name) {
		return msi.WriteFile(name, mol)
	}
	f, err := os.Create(name)
	if err != nil {
		return chem.NewError(chem.ExportError, err, "writeModel", "%s", name).SetCritical(false)
	}
	if err := (chem.XYZ{Comment: stem(name)}).Export(f, mol); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
