// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package options

import (
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// FromYAML parses a flat YAML mapping into a dictionary. Scalars map to
// bool, int, float, or string variants; sequences map to Vector values.
func FromYAML(text string) (*Options, error) {
	var raw map[string]any
	if err := yaml.Unmarshal([]byte(text), &raw); err != nil {
		return nil, errors.Wrap(err, "parsing options YAML")
	}
	o := New()
	for k, v := range raw {
		val, err := fromAny(v)
		if err != nil {
			return nil, errors.Wrapf(err, "key %q", k)
		}
		o.m[k] = val
	}
	return o, nil
}

// YAML serializes the dictionary back to a YAML mapping.
func (o *Options) YAML() (string, error) {
	raw := make(map[string]any, len(o.m))
	for k, v := range o.m {
		raw[k] = toAny(v)
	}
	out, err := yaml.Marshal(raw)
	if err != nil {
		return "", errors.Wrap(err, "serializing options YAML")
	}
	return string(out), nil
}

func fromAny(v any) (Value, error) {
	switch x := v.(type) {
	case bool:
		return Bool(x), nil
	case int:
		return Int(int64(x)), nil
	case int64:
		return Int(x), nil
	case float64:
		return Float(x), nil
	case string:
		return String(x), nil
	case []any:
		vec := make([]Value, len(x))
		for i, e := range x {
			ev, err := fromAny(e)
			if err != nil {
				return Value{}, err
			}
			vec[i] = ev
		}
		return Vector(vec), nil
	}
	return Value{}, errors.Errorf("unsupported YAML value type %T", v)
}

func toAny(v Value) any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindString:
		return Narrow(v.s)
	case KindFloatVector:
		return v.fv
	case KindVector:
		out := make([]any, len(v.v))
		for i, e := range v.v {
			out[i] = toAny(e)
		}
		return out
	}
	return nil
}
