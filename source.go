// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package confstack

import "context"

// Source is a named provider of configuration entries. A source produces a
// flat snapshot of delimiter-joined keys mapped to string values; nested
// structures (object trees in files) must be flattened before being
// returned. Snapshots are immutable once loaded — a source is re-read only
// when the registry explicitly reloads.
type Source interface {
	// Name identifies the source in logs and in [View.Origin].
	Name() string

	// Load reads the current snapshot. Errors wrap [ErrSourceLoad] when the
	// source cannot be read and [ErrParse] when its content is malformed.
	Load() (map[string]string, error)
}

// Watcher is implemented by sources that can signal external modification
// (for example, a file edited on disk). The returned channel carries change
// notifications, not data: on receipt the caller decides whether to reload.
// Implementations must close the channel when ctx is cancelled.
type Watcher interface {
	Changes(ctx context.Context) (<-chan struct{}, error)
}
