/*
 * root.go, part of msicastep.
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
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/rmera/msicastep/castep"
	"github.com/spf13/cobra"
)

// app holds the state shared by all the commands.
type app struct {
	stderr     io.Writer
	verbose    bool
	configFile string
	cfg        *castep.Config
}

func newRootCmd(stderr io.Writer) *cobra.Command {
	a := &app{stderr: stderr}
	root := &cobra.Command{
		Use:           "msicastep",
		Short:         "Convert Materials Studio msi structures into CASTEP seed files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := log.InfoLevel
			if a.verbose {
				level = log.DebugLevel
			}
			logger := newLogger(a.stderr, level)
			cmd.SetContext(withLogger(cmd.Context(), logger))
			cfg, err := a.loadConfig(logger)
			if err != nil {
				return err
			}
			a.cfg = cfg
			return nil
		},
	}
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&a.configFile, "config", "", "run configuration file (default "+castep.ConfigFile+" if present)")

	root.AddCommand(newConvertCmd(a))
	root.AddCommand(newTransformCmd(a))
	root.AddCommand(newXSDScriptCmd(a))
	return root
}

// loadConfig reads the file given with --config or, if none was given, the default
// configuration file when it exists.
func (a *app) loadConfig(logger *log.Logger) (*castep.Config, error) {
	name := a.configFile
	if name == "" {
		if _, err := os.Stat(castep.ConfigFile); errors.Is(err, fs.ErrNotExist) {
			return castep.DefaultConfig(), nil
		}
		name = castep.ConfigFile
	}
	logger.Debug("reading configuration", "file", name)
	return castep.LoadConfig(name)
}

func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs how long an operation took.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

func (p *progress) done(msg string, keyvals ...interface{}) {
	p.logger.Info(msg, append(keyvals, "took", time.Since(p.start).Round(time.Millisecond))...)
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached to ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
