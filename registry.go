// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package confstack

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"
)

// Registry holds an ordered list of configuration sources and merges their
// snapshots into a [View]. Sources are applied in ascending rank; equal
// ranks keep registration order, so the later-registered source wins ties.
//
// A Registry is not safe for concurrent mutation: register all sources
// during initialization, then share the resulting View freely.
type Registry struct {
	logger  zerolog.Logger
	sources []registeredSource
}

type registeredSource struct {
	src      Source
	rank     int
	optional bool
}

// Option configures a [Registry].
type Option func(*Registry)

// WithLogger attaches a logger used for merge diagnostics and skipped
// optional sources. The default discards all output.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// RegisterOption configures a single source registration.
type RegisterOption func(*registeredSource)

// WithRank assigns an explicit priority rank. Higher ranks override lower
// ones; unranked sources share rank zero and resolve by registration order.
func WithRank(rank int) RegisterOption {
	return func(rs *registeredSource) {
		rs.rank = rank
	}
}

// WithOptional marks the source non-mandatory: if it fails to load, it
// contributes no entries instead of aborting the merge.
func WithOptional() RegisterOption {
	return func(rs *registeredSource) {
		rs.optional = true
	}
}

// NewRegistry creates an empty source registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		logger:  zerolog.Nop(),
		sources: make([]registeredSource, 0, 4),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register appends a source to the registry.
func (r *Registry) Register(src Source, opts ...RegisterOption) {
	rs := registeredSource{src: src}
	for _, opt := range opts {
		opt(&rs)
	}
	r.sources = append(r.sources, rs)
}

// Load invokes every source in priority order and merges the snapshots
// into a single [View], later sources overwriting keys already present.
//
// A mandatory source failure aborts the merge with an error wrapping
// [ErrSourceLoad] or [ErrParse]; an optional source failure is logged at
// warn level and the source contributes nothing.
func (r *Registry) Load() (*View, error) {
	ordered := make([]registeredSource, len(r.sources))
	copy(ordered, r.sources)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].rank < ordered[j].rank
	})

	view := newView()
	for _, rs := range ordered {
		snapshot, err := rs.src.Load()
		if err != nil {
			if rs.optional {
				r.logger.Warn().Err(err).
					Str("source", rs.src.Name()).
					Msg("skipping optional source")
				continue
			}
			return nil, fmt.Errorf("error loading source %q: %w", rs.src.Name(), err)
		}

		for k, v := range snapshot {
			view.set(k, v, rs.src.Name())
		}
	}

	r.logger.Debug().Int("keys", view.Len()).Msg("configuration merged")
	return view, nil
}

// Reload re-runs [Registry.Load] and returns a fresh View. Existing views
// are never mutated; callers swap in the new view and re-bind as needed.
func (r *Registry) Reload() (*View, error) {
	return r.Load()
}
