// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package confstack

import (
	"os"
	"strings"
)

// defaultEnvSeparator is the flat-name stand-in for the hierarchical
// delimiter in environment variable names (SERVER__PORT → server:port).
const defaultEnvSeparator = "__"

// EnvOptions configures an [EnvSource].
type EnvOptions struct {
	// Prefix filters the environment to variables starting with this
	// prefix, which is trimmed from the resulting keys ("APP_").
	Prefix string

	// Separator is the substring translated into the hierarchical
	// delimiter (default: "__").
	Separator string
}

// EnvSource snapshots the process environment. Nested keys are expressed in
// flat variable names via the separator substitution; key casing does not
// matter because the merged view is case-insensitive.
type EnvSource struct {
	prefix    string
	separator string
}

// NewEnvSource creates an environment-variable configuration source.
func NewEnvSource(opts EnvOptions) *EnvSource {
	separator := opts.Separator
	if separator == "" {
		separator = defaultEnvSeparator
	}

	return &EnvSource{
		prefix:    opts.Prefix,
		separator: separator,
	}
}

// Name returns "env", qualified by the prefix if one is set.
func (s *EnvSource) Name() string {
	if s.prefix == "" {
		return "env"
	}
	return "env:" + s.prefix
}

// Load snapshots the process environment. It never fails: the environment
// is always readable.
func (s *EnvSource) Load() (map[string]string, error) {
	snapshot := make(map[string]string)

	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}

		if s.prefix != "" {
			if !strings.HasPrefix(key, s.prefix) {
				continue
			}
			key = strings.TrimPrefix(key, s.prefix)
		}

		key = strings.ReplaceAll(key, s.separator, Delimiter)
		snapshot[key] = value
	}

	return snapshot, nil
}
