package confstack

// MemSource holds programmatically supplied key-value pairs. It is the only
// mutable source: entries may be added with [MemSource.Set] until the merge
// is finalized by [Registry.Load]. Typically registered last, or with the
// highest rank, so its entries override every other source.
type MemSource struct {
	name   string
	values map[string]string
}

// NewMemSource creates an in-memory configuration source with the given
// name and initial values. A nil map is allowed.
func NewMemSource(name string, values map[string]string) *MemSource {
	s := &MemSource{name: name, values: make(map[string]string, len(values))}
	for k, v := range values {
		s.values[k] = v
	}
	return s
}

// Name returns the name the source was created with.
func (s *MemSource) Name() string {
	return s.name
}

// Set adds or replaces an entry. Calls made after the registry has merged
// take effect only on the next explicit reload.
func (s *MemSource) Set(key, value string) {
	s.values[key] = value
}

// Load returns a copy of the current entries. It never fails.
func (s *MemSource) Load() (map[string]string, error) {
	snapshot := make(map[string]string, len(s.values))
	for k, v := range s.values {
		snapshot[k] = v
	}
	return snapshot, nil
}
