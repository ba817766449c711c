/*
 * main.go, part of msicastep.
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

// Command msicastep converts Materials Studio MSI structures into CASTEP seed files.
//
// Usage:
//
//	msicastep convert in.msi|in.xyz [--seed NAME] [--out DIR] [--task geom|bs|both] [--translate x,y,z]
//	          [--rotate-axis x,y,z --rotate-angle deg --pivot x,y,z --rotate-lattice]
//	          [--potentials DIR] [--preview] [--config file]
//	msicastep transform in.msi out.msi [--translate ...] [--rotate-axis ...]
//	msicastep xsdscript ROOT [-o msi_to_xsd.pl]
//
// Structures are read from and written to msi files, plain or compressed (.gz, .zst),
// or xyz files, chosen by the file extension.
//
// The run configuration is read from --config, or from msicastep.toml in the working
// directory if present. Flags given on the command line override it.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd(os.Stderr).ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
