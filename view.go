// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package confstack

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// Delimiter separates segments of hierarchical configuration keys
// (e.g. "server:port").
const Delimiter = ":"

type entry struct {
	value  string
	origin string
}

// View is the flattened key space produced by merging all registered
// sources in priority order. Keys are case-insensitive; each key maps to
// exactly one current value, the one supplied by the highest-priority
// source that defined it.
//
// A View is immutable once built and safe to share across concurrent
// readers without synchronization. It is rebuilt only by an explicit
// [Registry.Load] or [Registry.Reload].
type View struct {
	entries map[string]entry
}

func newView() *View {
	return &View{entries: make(map[string]entry)}
}

// normalizeKey lower-cases a key so lookups and overrides are
// case-insensitive regardless of how a source spelled the key.
func normalizeKey(key string) string {
	return strings.ToLower(key)
}

// set records a value for key, overwriting any value from an
// earlier-merged source.
func (v *View) set(key, value, origin string) {
	v.entries[normalizeKey(key)] = entry{value: value, origin: origin}
}

// Value returns the merged value for key and whether the key is defined.
// Missing keys are not errors; the second return value is simply false.
func (v *View) Value(key string) (string, bool) {
	e, ok := v.entries[normalizeKey(key)]
	return e.value, ok
}

// Origin returns the name of the source that supplied the current value for
// key, and whether the key is defined.
func (v *View) Origin(key string) (string, bool) {
	e, ok := v.entries[normalizeKey(key)]
	return e.origin, ok
}

// Keys returns all defined keys in sorted order.
func (v *View) Keys() []string {
	keys := make([]string, 0, len(v.entries))
	for k := range v.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of defined keys.
func (v *View) Len() int {
	return len(v.entries)
}

// Sub returns a new View containing only the keys under prefix, with the
// prefix segment stripped. The subtree is independent of any equally named
// keys elsewhere in the parent view.
func (v *View) Sub(prefix string) *View {
	sub := newView()
	p := normalizeKey(prefix) + Delimiter
	for k, e := range v.entries {
		if strings.HasPrefix(k, p) {
			sub.entries[strings.TrimPrefix(k, p)] = e
		}
	}
	return sub
}

// Dump writes a human-readable listing of every key, its resolved value,
// and the source that provided it. Intended for diagnostics only; values
// are printed verbatim, including secrets.
func (v *View) Dump(w io.Writer) {
	for _, k := range v.Keys() {
		e := v.entries[k]
		fmt.Fprintf(w, "%s = %s  (%s)\n", k, e.value, e.origin)
	}
}

// joinKey joins a prefix and a relative key, tolerating an empty prefix.
func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + Delimiter + key
}
