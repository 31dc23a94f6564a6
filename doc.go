// Package confstack provides layered configuration loading, merging, and
// typed binding for Go applications.
//
// Configuration is assembled from an ordered list of sources (files,
// environment variables, command-line arguments, in-memory overrides), each
// producing a flat key-value snapshot. Snapshots are merged in priority
// order (later sources override earlier ones for identical keys) into a
// single [View] with hierarchical, colon-delimited, case-insensitive keys.
//
// The main entry points are [NewRegistry] for assembling sources,
// [Registry.Load] for producing a merged [View], and [Bind] for projecting
// a subtree of the view onto a caller-declared [Schema] of typed fields
// with defaults.
package confstack
