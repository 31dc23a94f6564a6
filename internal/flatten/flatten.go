// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package flatten converts nested configuration trees, as decoded from JSON
// or YAML documents, into the flat delimiter-joined key space used by the
// merged configuration view.
package flatten

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Map flattens a nested document tree into delimiter-joined paths. Object
// keys become path segments; array elements become indexed segments
// ("tags" + delim + "0"); scalar leaves are rendered as strings.
func Map(tree map[string]any, delim string) map[string]string {
	out := make(map[string]string)
	for key, val := range tree {
		walk(key, val, delim, out)
	}
	return out
}

func walk(path string, val any, delim string, out map[string]string) {
	switch v := val.(type) {
	case map[string]any:
		for key, child := range v {
			walk(path+delim+key, child, delim, out)
		}
	case map[any]any:
		// Older YAML trees key maps by any.
		for key, child := range v {
			walk(path+delim+fmt.Sprint(key), child, delim, out)
		}
	case []any:
		for i, child := range v {
			walk(path+delim+strconv.Itoa(i), child, delim, out)
		}
	default:
		out[path] = scalar(val)
	}
}

// scalar renders a leaf value without formatting surprises: integral
// numbers never pick up an exponent or a trailing ".0".
func scalar(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case json.Number:
		return v.String()
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
