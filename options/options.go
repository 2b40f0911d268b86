// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package options implements the typed key/value dictionary used to
// configure graph components: a small variant store with typed accessors,
// defaults, and additive merging.
//
// Missing keys and type mismatches are programming errors and panic; use
// GetOr or Has for optional keys.
package options

import (
	"sort"

	"github.com/gomlx/exceptions"
)

// Options is a string-keyed dictionary of variant values.
type Options struct {
	m map[string]Value
}

// New creates an empty dictionary.
func New() *Options {
	return &Options{m: make(map[string]Value)}
}

// FromMap creates a dictionary from already-wrapped values.
func FromMap(m map[string]Value) *Options {
	o := New()
	for k, v := range m {
		o.m[k] = v
	}
	return o
}

// Has reports whether key is present.
func (o *Options) Has(key string) bool {
	_, ok := o.m[key]
	return ok
}

// Keys returns all keys in sorted order.
func (o *Options) Keys() []string {
	keys := make([]string, 0, len(o.m))
	for k := range o.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Raw returns the variant stored at key, panicking if absent.
func (o *Options) Raw(key string) Value {
	v, ok := o.m[key]
	if !ok {
		exceptions.Panicf("options: key %q not found", key)
	}
	return v
}

// SetRaw stores an already-wrapped variant, overwriting any prior value.
func (o *Options) SetRaw(key string, v Value) *Options {
	o.m[key] = v
	return o
}

// Merge copies entries of other into o, keeping o's value when a key is
// present in both. Merging never overwrites.
func (o *Options) Merge(other *Options) *Options {
	if other == nil {
		return o
	}
	for k, v := range other.m {
		if _, ok := o.m[k]; !ok {
			o.m[k] = v
		}
	}
	return o
}

// Clone returns a shallow copy of the dictionary.
func (o *Options) Clone() *Options {
	return FromMap(o.m)
}

// Set stores a Go value under key, wrapping it into the matching variant.
// Supported types: bool, int, int64, float32, float64, string, []uint16,
// []float32, []Value.
func Set[T any](o *Options, key string, value T) *Options {
	switch v := any(value).(type) {
	case bool:
		o.m[key] = Bool(v)
	case int:
		o.m[key] = Int(int64(v))
	case int64:
		o.m[key] = Int(v)
	case float32:
		o.m[key] = Float(float64(v))
	case float64:
		o.m[key] = Float(v)
	case string:
		o.m[key] = String(v)
	case []uint16:
		o.m[key] = WideString(v)
	case []float32:
		o.m[key] = FloatVector(v)
	case []Value:
		o.m[key] = Vector(v)
	default:
		exceptions.Panicf("options: unsupported value type %T for key %q", value, key)
	}
	return o
}

// Get returns the value at key converted to T, panicking on a missing key
// or a variant/type mismatch. Numeric kinds convert freely between the
// supported integer and float types.
func Get[T any](o *Options, key string) T {
	return convert[T](key, o.Raw(key))
}

// GetOr returns the value at key, or def when the key is absent.
func GetOr[T any](o *Options, key string, def T) T {
	v, ok := o.m[key]
	if !ok {
		return def
	}
	return convert[T](key, v)
}

func convert[T any](key string, v Value) T {
	var zero T
	switch any(zero).(type) {
	case bool:
		if v.kind != KindBool {
			typeMismatch(key, "bool", v.kind)
		}
		return any(v.b).(T)
	case int:
		return any(int(numeric(key, v))).(T)
	case int64:
		return any(int64(numeric(key, v))).(T)
	case float32:
		return any(float32(numeric(key, v))).(T)
	case float64:
		return any(numeric(key, v)).(T)
	case string:
		if v.kind != KindString {
			typeMismatch(key, "string", v.kind)
		}
		return any(Narrow(v.s)).(T)
	case []uint16:
		if v.kind != KindString {
			typeMismatch(key, "string", v.kind)
		}
		return any(v.s).(T)
	case []float32:
		if v.kind != KindFloatVector {
			typeMismatch(key, "float-vector", v.kind)
		}
		return any(v.fv).(T)
	case []Value:
		if v.kind != KindVector {
			typeMismatch(key, "vector", v.kind)
		}
		return any(v.v).(T)
	}
	exceptions.Panicf("options: unsupported requested type %T for key %q", zero, key)
	return zero
}

// numeric reads an int or float variant as float64.
func numeric(key string, v Value) float64 {
	switch v.kind {
	case KindInt:
		return float64(v.i)
	case KindFloat:
		return v.f
	}
	typeMismatch(key, "numeric", v.kind)
	return 0
}
