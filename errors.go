/*
 * errors.go, part of msicastep.
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

package chem

import (
	"errors"
	"fmt"
)

// Kind is the category of a CError.
type Kind string

const (
	ParseError      Kind = "parse"      //malformed input, the whole parse is discarded
	ValidationError Kind = "validation" //a mutation would break a Model invariant
	GeometryError   Kind = "geometry"   //degenerate rotation axis, non-finite results
	ExportError     Kind = "export"     //I/O failures, or a broken Model reaching an exporter
	NotFound        Kind = "not found"
	ConfigError     Kind = "config"
)

// Sentinel causes. Use errors.Is to look for them in any error returned by this
// module.
var (
	ErrDuplicateID       = errors.New("duplicate atom id")
	ErrInvalidID         = errors.New("atom ids must be positive")
	ErrUnknownElement    = errors.New("unknown element symbol")
	ErrElementMismatch   = errors.New("atomic number doesn't match the element symbol")
	ErrNonFinite         = errors.New("non-finite coordinate")
	ErrDegenerateLattice = errors.New("degenerate lattice vectors")
	ErrNoLattice         = errors.New("model has no lattice vectors")
	ErrDegenerateAxis    = errors.New("degenerate rotation axis")
	ErrNotFound          = errors.New("no atom with the given id")
	ErrShape             = errors.New("wrong number of coordinates")
	ErrIndex             = errors.New("atom index out of range")
)

// CError is the error type of the chem package and of the packages built on it.
// It satisfies the Error interface, and can be inspected with errors.Is/As.
type CError struct {
	kind     Kind
	message  string
	deco     []string
	critical bool
	cause    error
	line     int //position in the source text, 0 if unknown
	col      int
}

// NewError returns a critical CError of the given kind. cause can be nil. caller is the
// first decoration of the error.
func NewError(kind Kind, cause error, caller, format string, args ...interface{}) *CError {
	err := &CError{kind: kind, message: fmt.Sprintf(format, args...), critical: true, cause: cause}
	if caller != "" {
		err.deco = []string{caller}
	}
	return err
}

// Error returns a string with an error message.
func (err *CError) Error() string {
	prefix := fmt.Sprintf("%s error", err.kind)
	if err.line > 0 {
		prefix = fmt.Sprintf("%s at line %d, column %d", prefix, err.line, err.col)
	}
	if err.cause != nil && err.message != "" {
		return fmt.Sprintf("%s: %s: %s", prefix, err.message, err.cause.Error())
	}
	if err.cause != nil {
		return fmt.Sprintf("%s: %s", prefix, err.cause.Error())
	}
	return fmt.Sprintf("%s: %s", prefix, err.message)
}

// At sets the position in the source text where the error was found, and returns the error.
func (err *CError) At(line, col int) *CError {
	err.line, err.col = line, col
	return err
}

// Position returns the line and column where the error was found, and false if the
// error has no position.
func (err *CError) Position() (line, col int, ok bool) {
	return err.line, err.col, err.line > 0
}

// Decorate will add the dec string to the decoration slice of strings of the error,
// and return the resulting slice.
func (err *CError) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

// Critical returns whether the error is critical or it can be ignored.
// Only defects (broken invariants found where they should be impossible) are critical
// among export errors.
func (err *CError) Critical() bool { return err.critical }

// Kind returns the category of the error
func (err *CError) Kind() Kind { return err.kind }

// Unwrap returns the cause of the error, if any.
func (err *CError) Unwrap() error { return err.cause }

// SetCritical marks the error as critical or not, and returns it.
func (err *CError) SetCritical(c bool) *CError {
	err.critical = c
	return err
}

// IsKind returns true if err, or any error it wraps, is a CError of the given kind.
func IsKind(err error, kind Kind) bool {
	var ce *CError
	if errors.As(err, &ce) {
		return ce.kind == kind
	}
	return false
}

// errDecorate is a helper function that asserts that the error
// implements chem.Error and decorates the error with the caller's name before returning it.
// Errors that don't implement chem.Error are returned untouched.
func errDecorate(err error, caller string) error {
	if err == nil {
		return nil
	}
	if err2, ok := err.(Error); ok {
		err2.Decorate(caller)
		return err2
	}
	return err
}
