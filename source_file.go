// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package confstack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"

	"github.com/MKhiriev/confstack/internal/flatten"
)

// FileOptions configures a [FileSource].
type FileOptions struct {
	// BaseDir is prepended to relative paths. Empty means the process
	// working directory.
	BaseDir string

	// Format forces the document format ("json" or "yaml"). Empty means
	// detection by file extension, defaulting to JSON.
	Format string

	// Environment, when non-empty, also loads an overlay file with the
	// environment name inserted before the extension ("config.json" →
	// "config.dev.json") and deep-merges it over the base document.
	// A missing overlay file is not an error.
	Environment string

	// PollInterval is how often Changes checks file modification times
	// (default: 1s).
	PollInterval time.Duration
}

// FileSource loads configuration from a structured key-value document.
// Nested objects are flattened into delimiter-joined keys before merging.
type FileSource struct {
	path     string
	format   string
	env      string
	interval time.Duration
}

// NewFileSource creates a file-based configuration source for path.
func NewFileSource(path string, opts FileOptions) *FileSource {
	if opts.BaseDir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(opts.BaseDir, path)
	}

	format := opts.Format
	if format == "" {
		format = detectFormat(path)
	}

	interval := opts.PollInterval
	if interval == 0 {
		interval = time.Second
	}

	return &FileSource{
		path:     path,
		format:   format,
		env:      opts.Environment,
		interval: interval,
	}
}

// Name returns "file:" followed by the source path.
func (s *FileSource) Name() string {
	return "file:" + s.path
}

// Load reads the base document, applies the environment overlay if
// configured, and returns the flattened snapshot.
//
// Returns an error wrapping [ErrSourceLoad] if the base file cannot be
// read, or [ErrParse] if either document is malformed.
func (s *FileSource) Load() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrSourceLoad, s.path, err)
	}

	tree, err := decodeDocument(data, s.format)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrParse, s.path, err)
	}

	if s.env != "" {
		overlayPath := s.overlayPath()
		overlayData, err := os.ReadFile(overlayPath)
		switch {
		case err == nil:
			overlay, err := decodeDocument(overlayData, s.format)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrParse, overlayPath, err)
			}
			if err := mergo.Merge(&tree, overlay, mergo.WithOverride); err != nil {
				return nil, fmt.Errorf("error merging overlay %s: %w", overlayPath, err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("%w: reading %s: %v", ErrSourceLoad, overlayPath, err)
		}
	}

	return flatten.Map(tree, Delimiter), nil
}

// overlayPath returns the environment-suffixed variant of the source path:
// "conf/app.yaml" with environment "prod" becomes "conf/app.prod.yaml".
func (s *FileSource) overlayPath() string {
	ext := filepath.Ext(s.path)
	return strings.TrimSuffix(s.path, ext) + "." + s.env + ext
}

// Changes implements [Watcher] by polling the modification times of the
// base and overlay files. The channel signals that the source changed; it
// never carries data. The channel is closed when ctx is cancelled.
func (s *FileSource) Changes(ctx context.Context) (<-chan struct{}, error) {
	ch := make(chan struct{})

	go func() {
		defer close(ch)

		last := s.modTime()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				current := s.modTime()
				if current.After(last) {
					last = current
					select {
					case ch <- struct{}{}:
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()

	return ch, nil
}

// modTime returns the newest modification time among the base and overlay
// files, or the zero time if neither exists.
func (s *FileSource) modTime() time.Time {
	var newest time.Time
	paths := []string{s.path}
	if s.env != "" {
		paths = append(paths, s.overlayPath())
	}
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil && info.ModTime().After(newest) {
			newest = info.ModTime()
		}
	}
	return newest
}

// detectFormat maps a file extension to a document format.
func detectFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}

// decodeDocument parses a configuration document into a nested tree.
func decodeDocument(data []byte, format string) (map[string]any, error) {
	tree := make(map[string]any)

	switch format {
	case "json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber() // keep integers free of float formatting
		if err := dec.Decode(&tree); err != nil {
			return nil, err
		}
	case "yaml":
		if err := yaml.Unmarshal(data, &tree); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}

	return tree, nil
}
