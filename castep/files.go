/*
 * files.go, part of msicastep.
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

package castep

import (
	"bufio"
	"errors"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	chem "github.com/rmera/msicastep"
)

// CopyPotentials copies the potential file of each element of mol from the
// directory potentials to dest. Files already in dest are left alone. It returns
// the names of the files copied.
func CopyPotentials(mol *chem.Model, potentials, dest string) ([]string, error) {
	species, err := elements(mol)
	if err != nil {
		return nil, errDecorate(err, "CopyPotentials")
	}
	var copied []string
	for _, s := range mol.Elements() {
		name := species[s].Potential
		target := filepath.Join(dest, name)
		if _, err := os.Stat(target); err == nil {
			continue
		}
		if err := copyFile(filepath.Join(potentials, name), target); err != nil {
			return copied, errDecorate(err, "CopyPotentials")
		}
		copied = append(copied, name)
	}
	return copied, nil
}

func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return chem.NewError(chem.NotFound, err, "copyFile", "potential file")
		}
		return chem.NewError(chem.ExportError, err, "copyFile", "")
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return chem.NewError(chem.ExportError, err, "copyFile", "")
	}
	defer func() {
		if cerr := out.Close(); err == nil && cerr != nil {
			err = chem.NewError(chem.ExportError, cerr, "copyFile", "")
		}
		if err != nil {
			os.Remove(dst)
		}
	}()
	if _, err := io.Copy(out, in); err != nil {
		return chem.NewError(chem.ExportError, err, "copyFile", "")
	}
	return nil
}

// CutOffFromPotentials returns the plane-wave cut-off energy that suits all the
// elements of mol: the highest FINE energy suggested in their potential files, in the
// directory potentials, rounded up to a multiple of 10 eV. A potential file without a
// suggested FINE energy gives a NotFound error.
func CutOffFromPotentials(mol *chem.Model, potentials string) (float64, error) {
	species, err := elements(mol)
	if err != nil {
		return 0, errDecorate(err, "CutOffFromPotentials")
	}
	cutoff := 0.0
	for _, s := range mol.Elements() {
		name := filepath.Join(potentials, species[s].Potential)
		fine, err := fineEnergy(name)
		if err != nil {
			return 0, errDecorate(err, "CutOffFromPotentials")
		}
		cutoff = math.Max(cutoff, fine)
	}
	return math.Ceil(cutoff/10) * 10, nil
}

// fineEnergy looks in a potential file for the line with the suggested cut-off energies,
// which ends with the words COARSE MEDIUM FINE, and returns the largest number in it.
func fineEnergy(name string) (float64, error) {
	f, err := os.Open(name)
	if err != nil {
		return 0, chem.NewError(chem.NotFound, err, "fineEnergy", "")
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.Trim(strings.TrimSpace(scanner.Text()), `"`)
		if !strings.Contains(strings.ToUpper(line), "FINE") {
			continue
		}
		fine := -1.0
		for _, field := range strings.Fields(line) {
			if v, err := strconv.ParseFloat(field, 64); err == nil && v > fine {
				fine = v
			}
		}
		if fine > 0 {
			return fine, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, chem.NewError(chem.ParseError, err, "fineEnergy", "%s", name)
	}
	return 0, chem.NewError(chem.NotFound, nil, "fineEnergy", "no suggested FINE cut-off in %s", name)
}

// FindMSI walks the tree under root and returns the path of every .msi file found,
// without the extension and with forward slashes, sorted.
func FindMSI(root string) ([]string, error) {
	var ret []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".msi" {
			return nil
		}
		ret = append(ret, filepath.ToSlash(strings.TrimSuffix(path, ".msi")))
		return nil
	})
	if err != nil {
		return nil, chem.NewError(chem.NotFound, err, "FindMSI", "%s", root)
	}
	sort.Strings(ret)
	return ret, nil
}
