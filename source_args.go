// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package confstack

import (
	"os"
	"strings"
)

// ArgsSource parses a command-line argument list into configuration
// entries. Both "--key=value" and "--key value" forms are accepted, with
// single or double dashes; keys may be hierarchical ("--server:port=8080").
// Tokens that are not flags are skipped. Unlike the flag package, keys need
// no prior registration — any key a caller passes becomes an entry.
type ArgsSource struct {
	args []string
}

// NewArgsSource creates a command-line configuration source for the given
// argument slice. Pass nil to use os.Args[1:].
func NewArgsSource(args []string) *ArgsSource {
	if args == nil {
		args = os.Args[1:]
	}
	return &ArgsSource{args: args}
}

// Name returns "args".
func (s *ArgsSource) Name() string {
	return "args"
}

// Load parses the argument list into a flat snapshot. It never fails;
// malformed tokens simply contribute nothing.
func (s *ArgsSource) Load() (map[string]string, error) {
	snapshot := make(map[string]string)

	for i := 0; i < len(s.args); i++ {
		token := s.args[i]
		if !strings.HasPrefix(token, "-") {
			continue
		}

		key := strings.TrimLeft(token, "-")
		if key == "" {
			continue
		}

		if k, v, ok := strings.Cut(key, "="); ok {
			snapshot[k] = v
			continue
		}

		// "--key value" form: consume the next token unless it is a flag.
		if i+1 < len(s.args) && !strings.HasPrefix(s.args[i+1], "-") {
			snapshot[key] = s.args[i+1]
			i++
			continue
		}

		// Trailing flag with no value binds the empty string.
		snapshot[key] = ""
	}

	return snapshot, nil
}
