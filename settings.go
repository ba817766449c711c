/*
 * settings.go, part of msicastep.
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
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ValueKind is the type of a setting value. The values of the constants are
// the MSI type tags.
type ValueKind byte

const (
	IntValue    ValueKind = 'I'
	RealValue   ValueKind = 'D'
	StringValue ValueKind = 'C'
)

// Value is a setting of a Model: an integer, real or string scalar, or a tuple of
// integers or reals.
type Value struct {
	Kind  ValueKind
	Ints  []int64
	Reals []float64
	Str   string
	Tuple bool
}

// Int returns an integer scalar Value.
func Int(v int64) Value { return Value{Kind: IntValue, Ints: []int64{v}} }

// Ints returns an integer tuple Value.
func Ints(v ...int64) Value {
	return Value{Kind: IntValue, Ints: append([]int64(nil), v...), Tuple: true}
}

// Real returns a real scalar Value.
func Real(v float64) Value { return Value{Kind: RealValue, Reals: []float64{v}} }

// Reals returns a real tuple Value.
func Reals(v ...float64) Value {
	return Value{Kind: RealValue, Reals: append([]float64(nil), v...), Tuple: true}
}

// Text returns a string Value.
func Text(s string) Value { return Value{Kind: StringValue, Str: s} }

// Bool returns an integer Value that is 1 for true and 0 for false.
func Bool(b bool) Value {
	if b {
		return Int(1)
	}
	return Int(0)
}

// Floats returns the numbers in the value as float64, converting integers.
// Returns nil for strings.
func (v Value) Floats() []float64 {
	switch v.Kind {
	case RealValue:
		return append([]float64(nil), v.Reals...)
	case IntValue:
		ret := make([]float64, len(v.Ints))
		for i, n := range v.Ints {
			ret[i] = float64(n)
		}
		return ret
	}
	return nil
}

// Float returns the first number in the value, and false if there is none.
func (v Value) Float() (float64, bool) {
	f := v.Floats()
	if len(f) == 0 {
		return 0, false
	}
	return f[0], true
}

// Integer returns the first integer in the value. Reals are truncated.
func (v Value) Integer() (int64, bool) {
	if v.Kind == IntValue && len(v.Ints) > 0 {
		return v.Ints[0], true
	}
	if v.Kind == RealValue && len(v.Reals) > 0 {
		return int64(v.Reals[0]), true
	}
	return 0, false
}

// Valid returns false if any real in v is NaN or infinite, if a numeric value is empty,
// or if a string value contains a double quote or a line break, which can't be written
// back to MSI.
func (v Value) Valid() bool {
	switch v.Kind {
	case IntValue:
		if len(v.Ints) == 0 {
			return false
		}
	case RealValue:
		if len(v.Reals) == 0 {
			return false
		}
	case StringValue:
	default:
		return false
	}
	for _, f := range v.Reals {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return !strings.ContainsAny(v.Str, "\"\r\n")
}

// Copy returns a deep copy of v.
func (v Value) Copy() Value {
	v.Ints = append([]int64(nil), v.Ints...)
	v.Reals = append([]float64(nil), v.Reals...)
	return v
}

// Equal returns true if v and o have the same kind and contents, with reals
// compared within tol.
func (v Value) Equal(o Value, tol float64) bool {
	if v.Kind != o.Kind || v.Str != o.Str || len(v.Ints) != len(o.Ints) || len(v.Reals) != len(o.Reals) {
		return false
	}
	for i := range v.Ints {
		if v.Ints[i] != o.Ints[i] {
			return false
		}
	}
	for i := range v.Reals {
		if math.Abs(v.Reals[i]-o.Reals[i]) > tol {
			return false
		}
	}
	return true
}

// String returns the literal of the value as written in an MSI file:
// 5, 0.05, "1 1" or (192 256).
func (v Value) String() string {
	var items []string
	switch v.Kind {
	case StringValue:
		return `"` + v.Str + `"`
	case IntValue:
		for _, n := range v.Ints {
			items = append(items, strconv.FormatInt(n, 10))
		}
	case RealValue:
		for _, f := range v.Reals {
			items = append(items, strconv.FormatFloat(f, 'f', -1, 64))
		}
	default:
		return fmt.Sprintf("<invalid kind %q>", byte(v.Kind))
	}
	if v.Tuple || len(items) != 1 {
		return "(" + strings.Join(items, " ") + ")"
	}
	return items[0]
}
