/*
 * seed.go, part of msicastep.
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
	"context"
	"os"
	"path/filepath"
	"sort"

	"github.com/charmbracelet/log"
	chem "github.com/rmera/msicastep"
	"github.com/rmera/msicastep/chemplot"
	"github.com/rmera/msicastep/msi"
	"golang.org/x/sync/errgroup"
)

// Seed writes the set of files for the CASTEP jobs of one structure to the
// directory <Dir>/<Name>_opt.
type Seed struct {
	Name   string
	Dir    string
	Config *Config
	Logger *log.Logger //log.Default() if nil
}

// NewSeed returns a Seed for the given configuration. The name and directory are
// taken from the configuration.
func NewSeed(c *Config) *Seed {
	return &Seed{Name: c.Seed.Name, Dir: c.Seed.Dir, Config: c}
}

// Path returns the directory where the seed files go.
func (S *Seed) Path() string {
	return filepath.Join(S.Dir, S.Name+"_opt")
}

func (S *Seed) logger() *log.Logger {
	if S.Logger != nil {
		return S.Logger
	}
	return log.Default()
}

// Exporters returns the exporters that write the files for the requested tasks. A
// geometry optimization needs the .cell, .param, .kptaux, _DOS.kptaux, .trjaux and .msi
// files plus the job scripts; a band structure needs the _DOS variants of the .cell, .param
// and .kptaux files. Files needed by both tasks appear once.
func (S *Seed) Exporters(castep CastepConfig, tasks []Task) []chem.Exporter {
	var ret []chem.Exporter
	seen := make(map[string]bool)
	add := func(e chem.Exporter) {
		if n := e.FileName(S.Name); !seen[n] {
			seen[n] = true
			ret = append(ret, e)
		}
	}
	opts := S.Config.TransformOptions()
	for _, t := range tasks {
		switch t {
		case GeometryOptimization:
			add(KptAux{Config: castep, Task: GeometryOptimization})
			add(KptAux{Config: castep, Task: BandStructure})
			add(TrjAux{})
			add(Param{Config: castep, Task: GeometryOptimization})
			add(Cell{Config: castep, Task: GeometryOptimization, Options: opts})
			add(msi.Exporter{})
			add(LSFJob{Seed: S.Name, RunCastep: S.Config.Seed.RunCastep, Cores: S.Config.Seed.Cores})
			add(PBSJob{Seed: S.Name, Cores: S.Config.Seed.Cores})
		case BandStructure:
			add(KptAux{Config: castep, Task: BandStructure})
			add(Param{Config: castep, Task: BandStructure})
			add(Cell{Config: castep, Task: BandStructure, Options: opts})
		}
	}
	if S.Config.Seed.Preview {
		add(chemplot.Projection{}.Named(S.Name))
	}
	return ret
}

// Write creates the seed directory and writes every file for mol, concurrently. The
// files are written from a copy of mol, taken when Write is called and, if the model
// is periodic, rotated with chem.AlignLattice, so all of them share the frame of the
// .cell file. When the configuration names a potentials directory, the potential files
// are copied and, if no cut-off energy is configured, the cut-off is taken from them.
// Write stops at the first error, or when ctx is cancelled, and returns the paths of the
// files it wrote, sorted. On failure the seed files are removed, and only the copied
// potentials are returned.
func (S *Seed) Write(ctx context.Context, mol *chem.Model) ([]string, error) {
	if S.Name == "" {
		return nil, chem.NewError(chem.ConfigError, nil, "Seed.Write", "empty seed name")
	}
	if err := S.Config.Validate(); err != nil {
		return nil, errDecorate(err, "Seed.Write")
	}
	tasks, _ := S.Config.Tasks()
	snapshot := mol.Copy()
	if _, ok := snapshot.Lattice(); ok {
		if err := chem.AlignLattice(snapshot, S.Config.TransformOptions()); err != nil {
			return nil, chem.NewError(chem.ExportError, err, "Seed.Write", "aligning the lattice")
		}
	}
	dir := S.Path()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, chem.NewError(chem.ExportError, err, "Seed.Write", "").SetCritical(false)
	}
	logger := S.logger()
	castep := S.Config.Castep
	var written []string
	if pot := S.Config.Seed.Potentials; pot != "" {
		if castep.CutOffEnergy == 0 {
			cut, err := CutOffFromPotentials(snapshot, pot)
			if err != nil {
				logger.Warn("no cut-off energy in the potentials, using the default", "default", DefaultCutOff, "err", err)
			} else {
				castep.CutOffEnergy = cut
				logger.Debug("cut-off energy from potentials", "eV", cut)
			}
		}
		copied, err := CopyPotentials(snapshot, pot, dir)
		for _, c := range copied {
			written = append(written, filepath.Join(dir, c))
		}
		if err != nil {
			return written, errDecorate(err, "Seed.Write")
		}
	}
	exporters := S.Exporters(castep, tasks)
	paths := make([]string, len(exporters))
	g, ctx := errgroup.WithContext(ctx)
	if S.Config.Transform.Cpus > 0 {
		g.SetLimit(S.Config.Transform.Cpus)
	}
	for i, e := range exporters {
		e := e
		name := filepath.Join(dir, e.FileName(S.Name))
		paths[i] = name
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := writeFile(name, e, snapshot); err != nil {
				return err
			}
			logger.Debug("wrote", "file", name)
			return nil
		})
	}
	if S.Config.Seed.CompressMSI {
		name := filepath.Join(dir, S.Name+".msi.zst")
		paths = append(paths, name)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return msi.WriteFile(name, snapshot)
		})
	}
	if err := g.Wait(); err != nil {
		for _, p := range paths {
			os.Remove(p)
		}
		return written, errDecorate(err, "Seed.Write")
	}
	written = append(written, paths...)
	sort.Strings(written)
	return written, nil
}

// writeFile writes one exporter's output to name. The file is removed if the export fails.
func writeFile(name string, e chem.Exporter, mol *chem.Model) error {
	f, err := os.Create(name)
	if err != nil {
		return chem.NewError(chem.ExportError, err, "writeFile", "").SetCritical(false)
	}
	err = e.Export(f, mol)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = chem.NewError(chem.ExportError, cerr, "writeFile", "").SetCritical(false)
	}
	if err != nil {
		os.Remove(name)
		return errDecorate(err, "writeFile")
	}
	return nil
}
