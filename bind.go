// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package confstack

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Schema is an explicit description of a target configuration structure:
// one typed entry per field, each holding a destination pointer and a
// default value. Registration mirrors the flag package, so binding stays
// statically checkable — there is no reflection over arbitrary structs.
//
//	var cfg ServerConfig
//	s := confstack.NewSchema()
//	s.String(&cfg.Host, "host", "localhost")
//	s.Int(&cfg.Port, "port", 8080)
//	s.Section("tls", func(s *confstack.Schema) {
//		s.Bool(&cfg.TLS.Enabled, "enabled", false)
//	})
//	res, err := confstack.Bind(view, "server", s)
type Schema struct {
	fields []schemaField
}

type schemaField struct {
	name string

	// reset assigns the declared default; always invoked before lookup so
	// unset fields are never left zero-initialized silently.
	reset func()

	// assign coerces and stores a scalar value. Nil for composite fields.
	assign func(value string) error

	// composite enumerates sub-keys for slice and map fields. Nil for
	// scalar fields.
	composite func(view *View, key string)

	// child is the nested schema for section fields.
	child *Schema
}

// NewSchema creates an empty schema.
func NewSchema() *Schema {
	return &Schema{}
}

// Warning records a non-fatal coercion failure during a lenient bind. The
// affected field keeps its declared default. Err wraps [ErrTypeMismatch].
type Warning struct {
	Key   string
	Value string
	Err   error
}

// BindResult reports the outcome of a [Bind] call.
type BindResult struct {
	// Warnings holds one entry per value that could not be coerced in
	// lenient mode. Empty in strict mode (the first failure aborts).
	Warnings []Warning
}

// BindOption configures binding behavior.
type BindOption func(*bindConfig)

type bindConfig struct {
	strict bool
	logger zerolog.Logger
}

// Strict makes coercion failures fatal: [Bind] returns an error wrapping
// [ErrTypeMismatch] instead of recording a [Warning].
func Strict() BindOption {
	return func(cfg *bindConfig) {
		cfg.strict = true
	}
}

// WithBindLogger attaches a logger that records lenient-mode warnings.
func WithBindLogger(logger zerolog.Logger) BindOption {
	return func(cfg *bindConfig) {
		cfg.logger = logger
	}
}

// Bind projects the subtree of view under prefix onto the schema's
// destination fields. Defaults are assigned first, then every key present
// in the view overrides its field after coercion. Missing keys are never
// errors. An empty prefix binds against the view root.
//
// The populated destinations form an immutable snapshot: they keep no link
// to the view and are unaffected by later reloads.
func Bind(view *View, prefix string, schema *Schema, opts ...BindOption) (*BindResult, error) {
	cfg := bindConfig{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&cfg)
	}

	result := &BindResult{}
	if err := bindFields(view, prefix, schema, &cfg, result); err != nil {
		return nil, err
	}
	return result, nil
}

func bindFields(view *View, prefix string, schema *Schema, cfg *bindConfig, result *BindResult) error {
	for _, f := range schema.fields {
		key := joinKey(prefix, f.name)

		if f.child != nil {
			if err := bindFields(view, key, f.child, cfg, result); err != nil {
				return err
			}
			continue
		}

		f.reset()

		if f.composite != nil {
			f.composite(view, key)
			continue
		}

		value, ok := view.Value(key)
		if !ok {
			continue
		}

		if err := f.assign(value); err != nil {
			if cfg.strict {
				return fmt.Errorf("error binding %q: %w", key, err)
			}
			cfg.logger.Warn().Err(err).
				Str("key", key).
				Str("value", value).
				Msg("keeping default for field")
			result.Warnings = append(result.Warnings, Warning{Key: key, Value: value, Err: err})
		}
	}

	return nil
}

// coerceError wraps [ErrTypeMismatch] with the offending value and the
// expected kind.
func coerceError(value, kind string) error {
	return fmt.Errorf("%w: cannot parse %q as %s", ErrTypeMismatch, value, kind)
}

// String declares a string field. The value is taken verbatim.
func (s *Schema) String(dst *string, name, def string) {
	s.fields = append(s.fields, schemaField{
		name:  name,
		reset: func() { *dst = def },
		assign: func(value string) error {
			*dst = value
			return nil
		},
	})
}

// Int declares an int field.
func (s *Schema) Int(dst *int, name string, def int) {
	s.fields = append(s.fields, schemaField{
		name:  name,
		reset: func() { *dst = def },
		assign: func(value string) error {
			n, err := strconv.ParseInt(value, 10, strconv.IntSize)
			if err != nil {
				return coerceError(value, "int")
			}
			*dst = int(n)
			return nil
		},
	})
}

// Int64 declares an int64 field.
func (s *Schema) Int64(dst *int64, name string, def int64) {
	s.fields = append(s.fields, schemaField{
		name:  name,
		reset: func() { *dst = def },
		assign: func(value string) error {
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return coerceError(value, "int64")
			}
			*dst = n
			return nil
		},
	})
}

// Uint declares a uint field.
func (s *Schema) Uint(dst *uint, name string, def uint) {
	s.fields = append(s.fields, schemaField{
		name:  name,
		reset: func() { *dst = def },
		assign: func(value string) error {
			n, err := strconv.ParseUint(value, 10, strconv.IntSize)
			if err != nil {
				return coerceError(value, "uint")
			}
			*dst = uint(n)
			return nil
		},
	})
}

// Float64 declares a float64 field.
func (s *Schema) Float64(dst *float64, name string, def float64) {
	s.fields = append(s.fields, schemaField{
		name:  name,
		reset: func() { *dst = def },
		assign: func(value string) error {
			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return coerceError(value, "float64")
			}
			*dst = f
			return nil
		},
	})
}

// Bool declares a bool field, accepting the strconv.ParseBool forms
// ("true", "1", "F", ...).
func (s *Schema) Bool(dst *bool, name string, def bool) {
	s.fields = append(s.fields, schemaField{
		name:  name,
		reset: func() { *dst = def },
		assign: func(value string) error {
			b, err := strconv.ParseBool(value)
			if err != nil {
				return coerceError(value, "bool")
			}
			*dst = b
			return nil
		},
	})
}

// Duration declares a time.Duration field bound from strings like "30s"
// or "1h".
func (s *Schema) Duration(dst *time.Duration, name string, def time.Duration) {
	s.fields = append(s.fields, schemaField{
		name:  name,
		reset: func() { *dst = def },
		assign: func(value string) error {
			d, err := time.ParseDuration(value)
			if err != nil {
				return coerceError(value, "duration")
			}
			*dst = d
			return nil
		},
	})
}

// StringSlice declares a []string field bound from indexed sub-keys
// ("name:0", "name:1", ...). Enumeration stops at the first gap. The
// default is kept when no indexed key is present.
func (s *Schema) StringSlice(dst *[]string, name string, def []string) {
	s.fields = append(s.fields, schemaField{
		name:  name,
		reset: func() { *dst = def },
		composite: func(view *View, key string) {
			var out []string
			for i := 0; ; i++ {
				v, ok := view.Value(key + Delimiter + strconv.Itoa(i))
				if !ok {
					break
				}
				out = append(out, v)
			}
			if out != nil {
				*dst = out
			}
		},
	})
}

// StringMap declares a map[string]string field bound from the named
// sub-keys directly under "name". Deeper descendants are ignored. The
// default is kept when no sub-key is present.
func (s *Schema) StringMap(dst *map[string]string, name string, def map[string]string) {
	s.fields = append(s.fields, schemaField{
		name:  name,
		reset: func() { *dst = def },
		composite: func(view *View, key string) {
			sub := view.Sub(key)
			out := make(map[string]string)
			for _, k := range sub.Keys() {
				if strings.Contains(k, Delimiter) {
					continue
				}
				v, _ := sub.Value(k)
				out[k] = v
			}
			if len(out) > 0 {
				*dst = out
			}
		},
	})
}

// Section declares a nested structure bound under an extended prefix. fn
// registers the section's fields on a child schema.
func (s *Schema) Section(name string, fn func(*Schema)) {
	child := NewSchema()
	fn(child)
	s.fields = append(s.fields, schemaField{name: name, child: child})
}
