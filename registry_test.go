// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package confstack

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── helpers ───────────────────────────────────────────────────────────────────

// failingSource is a test double that always fails to load.
type failingSource struct {
	err error
}

func (s *failingSource) Name() string { return "failing" }

func (s *failingSource) Load() (map[string]string, error) { return nil, s.err }

// ── Load: layering ────────────────────────────────────────────────────────────

// TestRegistryLoad_LaterSourceWins verifies the core merge invariant: for
// every key, the merged value comes from the last registered source that
// defines it.
func TestRegistryLoad_LaterSourceWins(t *testing.T) {
	// Arrange
	r := NewRegistry()
	r.Register(NewMemSource("first", map[string]string{"a": "1", "b": "1"}))
	r.Register(NewMemSource("second", map[string]string{"a": "2"}))

	// Act
	view, err := r.Load()

	// Assert
	require.NoError(t, err)

	a, _ := view.Value("a")
	assert.Equal(t, "2", a)
	origin, _ := view.Origin("a")
	assert.Equal(t, "second", origin)

	b, _ := view.Value("b")
	assert.Equal(t, "1", b)
	origin, _ = view.Origin("b")
	assert.Equal(t, "first", origin)
}

// TestRegistryLoad_RankOverridesRegistrationOrder verifies that an
// explicitly ranked source is merged after unranked ones even when it was
// registered first.
func TestRegistryLoad_RankOverridesRegistrationOrder(t *testing.T) {
	r := NewRegistry()
	r.Register(NewMemSource("ranked", map[string]string{"a": "ranked"}), WithRank(10))
	r.Register(NewMemSource("unranked", map[string]string{"a": "unranked"}))

	view, err := r.Load()
	require.NoError(t, err)

	a, _ := view.Value("a")
	assert.Equal(t, "ranked", a)
}

// TestRegistryLoad_EmptyStringIsAValue verifies that a source defining a
// key as "" still overrides an earlier non-empty value.
func TestRegistryLoad_EmptyStringIsAValue(t *testing.T) {
	r := NewRegistry()
	r.Register(NewMemSource("first", map[string]string{"a": "1"}))
	r.Register(NewMemSource("second", map[string]string{"a": ""}))

	view, err := r.Load()
	require.NoError(t, err)

	a, ok := view.Value("a")
	require.True(t, ok)
	assert.Empty(t, a)
}

// TestRegistryLoad_RoundTrip verifies that values written via the
// in-memory source come back unchanged through Value.
func TestRegistryLoad_RoundTrip(t *testing.T) {
	mem := NewMemSource("mem", nil)
	mem.Set("some:key", "exact value, with punctuation: yes")

	r := NewRegistry()
	r.Register(mem)

	view, err := r.Load()
	require.NoError(t, err)

	got, ok := view.Value("some:key")
	require.True(t, ok)
	assert.Equal(t, "exact value, with punctuation: yes", got)
}

// ── Load: failures ────────────────────────────────────────────────────────────

// TestRegistryLoad_MandatorySourceFailureAborts verifies that a failing
// mandatory source fails the whole merge with a classified error.
func TestRegistryLoad_MandatorySourceFailureAborts(t *testing.T) {
	r := NewRegistry()
	r.Register(&failingSource{err: ErrSourceLoad})

	view, err := r.Load()
	assert.Nil(t, view)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSourceLoad)
}

// TestRegistryLoad_OptionalSourceFailureSkipped verifies that an optional
// source contributes nothing on failure instead of aborting.
func TestRegistryLoad_OptionalSourceFailureSkipped(t *testing.T) {
	r := NewRegistry()
	r.Register(&failingSource{err: ErrSourceLoad}, WithOptional())
	r.Register(NewMemSource("mem", map[string]string{"a": "1"}))

	view, err := r.Load()
	require.NoError(t, err)
	assert.Equal(t, 1, view.Len())
}

// TestRegistryLoad_OptionalMalformedFileSkipped verifies that malformed
// content in an optional file source does not abort the merge.
func TestRegistryLoad_OptionalMalformedFileSkipped(t *testing.T) {
	p := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(p, []byte("{not json"), 0o600))

	r := NewRegistry()
	r.Register(NewFileSource(p, FileOptions{}), WithOptional())
	r.Register(NewMemSource("mem", map[string]string{"a": "1"}))

	view, err := r.Load()
	require.NoError(t, err)
	a, _ := view.Value("a")
	assert.Equal(t, "1", a)
}

// ── Reload ────────────────────────────────────────────────────────────────────

// TestRegistryReload_PicksUpSourceChanges verifies that a reload re-reads
// sources while previously built views stay untouched.
func TestRegistryReload_PicksUpSourceChanges(t *testing.T) {
	mem := NewMemSource("mem", map[string]string{"a": "1"})

	r := NewRegistry()
	r.Register(mem)

	before, err := r.Load()
	require.NoError(t, err)

	mem.Set("a", "2")

	after, err := r.Reload()
	require.NoError(t, err)

	a, _ := before.Value("a")
	assert.Equal(t, "1", a, "existing view must stay an immutable snapshot")
	a, _ = after.Value("a")
	assert.Equal(t, "2", a)
}

// ── WatchChanges ──────────────────────────────────────────────────────────────

// TestWatchChanges_FileEditFiresCallbackOnCallingGoroutine verifies that a
// modified file source triggers the subscription callback, and that the
// callback runs on the goroutine that called WatchChanges (no
// synchronization needed around the counter).
func TestWatchChanges_FileEditFiresCallbackOnCallingGoroutine(t *testing.T) {
	// Arrange
	p := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(p, []byte(`{"a":"1"}`), 0o600))

	src := NewFileSource(p, FileOptions{PollInterval: 10 * time.Millisecond})
	r := NewRegistry()
	r.Register(src)

	_, err := r.Load()
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Act: edit the file after the watch loop has started polling. Chtimes
	// pushes the mod time forward so coarse filesystem timestamp
	// granularity cannot hide the change.
	go func() {
		time.Sleep(50 * time.Millisecond)
		assert.NoError(t, os.WriteFile(p, []byte(`{"a":"2"}`), 0o600))
		future := time.Now().Add(time.Hour)
		assert.NoError(t, os.Chtimes(p, future, future))
	}()

	fired := 0
	err = r.WatchChanges(ctx, func(source string) {
		fired++
		assert.Equal(t, src.Name(), source)
		cancel()
	})

	// Assert
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, fired)
}

// TestWatchChanges_NoWatcherSourcesBlocksUntilCancel verifies that a
// registry with no watchable sources simply waits for cancellation.
func TestWatchChanges_NoWatcherSourcesBlocksUntilCancel(t *testing.T) {
	r := NewRegistry()
	r.Register(NewMemSource("mem", nil))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := r.WatchChanges(ctx, func(string) {
		t.Fatal("callback must never fire without a watcher source")
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
