/*
 * xsdscript.go, part of msicastep.
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
	"os"

	chem "github.com/rmera/msicastep"
	"github.com/rmera/msicastep/castep"
	"github.com/spf13/cobra"
)

func newXSDScriptCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "xsdscript ROOT",
		Short: "Write a Materials Studio script that saves every msi file under ROOT as xsd",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			logger := loggerFromContext(cmd.Context())
			items, err := castep.FindMSI(args[0])
			if err != nil {
				return err
			}
			if len(items) == 0 {
				logger.Warn("no msi files found", "root", args[0])
			}
			f, err := os.Create(output)
			if err != nil {
				return chem.NewError(chem.ExportError, err, "xsdscript", "")
			}
			defer func() {
				if cerr := f.Close(); err == nil && cerr != nil {
					err = cerr
				}
			}()
			if err := (castep.XSDScript{Items: items}).Export(f, nil); err != nil {
				return err
			}
			logger.Info("wrote", "file", output, "count", len(items))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", castep.XSDScriptName, "script file")
	return cmd
}
