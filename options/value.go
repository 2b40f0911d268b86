// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package options

import (
	"fmt"
	"strings"

	"github.com/gomlx/exceptions"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	KindBool Kind = iota
	KindInt
	KindFloat
	KindString
	KindFloatVector
	KindVector
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindFloatVector:
		return "float-vector"
	case KindVector:
		return "vector"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Value is a tagged variant holding one option value. Strings are stored
// as UTF-16 code units to match the wide-string convention of the hosting
// toolkit; Widen and Narrow convert at the byte-string boundary.
//
// Float vectors keep a direct reference to the caller's slice so that
// large embedding tables are not copied through the dictionary.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    []uint16
	fv   []float32
	v    []Value
}

// Bool wraps a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int wraps an integer value.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float wraps a floating-point value.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// String wraps a string value, widening it to UTF-16 code units.
func String(s string) Value { return Value{kind: KindString, s: Widen(s)} }

// WideString wraps an already-widened string without copying.
func WideString(s []uint16) Value { return Value{kind: KindString, s: s} }

// FloatVector wraps a []float32 without copying; the caller must not
// mutate the slice while the dictionary is alive.
func FloatVector(fv []float32) Value { return Value{kind: KindFloatVector, fv: fv} }

// Vector wraps a heterogeneous list of values.
func Vector(v []Value) Value { return Value{kind: KindVector, v: v} }

// Kind returns the variant tag.
func (v Value) Kind() Kind { return v.kind }

func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return fmt.Sprintf("%v", v.b)
	case KindInt:
		return fmt.Sprintf("%d", v.i)
	case KindFloat:
		return fmt.Sprintf("%g", v.f)
	case KindString:
		return Narrow(v.s)
	case KindFloatVector:
		return fmt.Sprintf("%v", v.fv)
	case KindVector:
		parts := make([]string, len(v.v))
		for i, e := range v.v {
			parts[i] = e.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	return "<invalid>"
}

// Widen converts a byte string to UTF-16 code units. Only single-byte
// code points survive round-tripping; option keys and values are ASCII in
// practice.
func Widen(s string) []uint16 {
	out := make([]uint16, len(s))
	for i := 0; i < len(s); i++ {
		out[i] = uint16(s[i])
	}
	return out
}

// Narrow converts UTF-16 code units back to a byte string, truncating
// each unit to its low byte.
func Narrow(s []uint16) string {
	out := make([]byte, len(s))
	for i, c := range s {
		out[i] = byte(c)
	}
	return string(out)
}

func typeMismatch(key string, want string, got Kind) {
	exceptions.Panicf("options: key %q holds a %s, requested %s", key, got, want)
}
