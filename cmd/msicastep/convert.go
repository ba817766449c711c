/*
 * convert.go, part of msicastep.
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
	"path/filepath"
	"strings"

	"github.com/rmera/msicastep/castep"
	"github.com/spf13/cobra"
)

// convertOpts holds the flags of the convert command. They override the
// configuration file when given.
type convertOpts struct {
	seed       string
	out        string
	task       string
	potentials string
	preview    bool
	transformOpts
}

func newConvertCmd(a *app) *cobra.Command {
	var opts convertOpts
	cmd := &cobra.Command{
		Use:   "convert in.msi|in.xyz",
		Short: "Write the CASTEP seed files for an msi structure",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			cfg := *a.cfg
			if flags.Changed("seed") {
				cfg.Seed.Name = opts.seed
			}
			if cfg.Seed.Name == "" {
				cfg.Seed.Name = stem(args[0])
			}
			if flags.Changed("out") {
				cfg.Seed.Dir = opts.out
			}
			if flags.Changed("task") {
				cfg.Seed.Task = opts.task
			}
			if flags.Changed("potentials") {
				cfg.Seed.Potentials = opts.potentials
			}
			if flags.Changed("preview") {
				cfg.Seed.Preview = opts.preview
			}
			return runConvert(cmd, args[0], &cfg, &opts.transformOpts)
		},
	}
	cmd.Flags().StringVar(&opts.seed, "seed", "", "seed name (default: the input file name)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", ".", "directory where the <seed>_opt directory is created")
	cmd.Flags().StringVar(&opts.task, "task", "both", "CASTEP task: geom, bs or both")
	cmd.Flags().StringVar(&opts.potentials, "potentials", "", "directory with the potential files to copy")
	cmd.Flags().BoolVar(&opts.preview, "preview", false, "also write an svg projection of the structure")
	opts.transformOpts.addFlags(cmd.Flags())
	return cmd
}

func runConvert(cmd *cobra.Command, input string, cfg *castep.Config, t *transformOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)
	if err := cfg.Validate(); err != nil {
		return err
	}
	popts, err := cfg.ParserOptions(logger)
	if err != nil {
		return err
	}
	mol, err := readModel(input, popts)
	if err != nil {
		return err
	}
	logger.Debug("parsed", "file", input, "atoms", mol.Len(), "elements", mol.Elements())
	if err := t.apply(mol, cfg.TransformOptions(), logger); err != nil {
		return err
	}
	seed := castep.NewSeed(cfg)
	seed.Logger = logger
	written, err := seed.Write(ctx, mol)
	if err != nil {
		return err
	}
	prog.done("seed written", "dir", seed.Path(), "files", len(written))
	return nil
}

// stem returns the file name without directory, without the .msi or .xyz
// extension, and without any compression extension.
func stem(name string) string {
	base := filepath.Base(name)
	for _, ext := range []string{".gz", ".zst", ".msi", ".xyz"} {
		if strings.HasSuffix(strings.ToLower(base), ext) {
			base = base[:len(base)-len(ext)]
		}
	}
	return base
}
