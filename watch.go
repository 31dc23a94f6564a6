// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package confstack

import "context"

// WatchChanges blocks and invokes fn, on the calling goroutine, each time a
// registered source that implements [Watcher] signals a change. fn receives
// the name of the source that changed.
//
// The subscription is passive: nothing is reloaded automatically. The
// caller decides when to invoke [Registry.Reload] and is responsible for
// serializing any re-merge against in-flight binds. WatchChanges returns
// when ctx is cancelled; it returns an error immediately if any source
// fails to start watching.
func (r *Registry) WatchChanges(ctx context.Context, fn func(source string)) error {
	changed := make(chan string)

	for _, rs := range r.sources {
		w, ok := rs.src.(Watcher)
		if !ok {
			continue
		}

		ch, err := w.Changes(ctx)
		if err != nil {
			return err
		}

		go func(name string, ch <-chan struct{}) {
			for range ch {
				select {
				case changed <- name:
				case <-ctx.Done():
					return
				}
			}
		}(rs.src.Name(), ch)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case name := <-changed:
			r.logger.Debug().Str("source", name).Msg("source changed")
			fn(name)
		}
	}
}
