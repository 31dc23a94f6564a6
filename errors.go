package confstack

import "errors"

// Errors returned by source loading and typed binding. All errors produced
// by this package wrap one of these sentinels, so callers can classify
// failures with [errors.Is].
var (
	// ErrSourceLoad indicates a mandatory source could not be read
	// (for example, a missing configuration file). Fatal for [Registry.Load].
	ErrSourceLoad = errors.New("configuration source load failed")
	// ErrParse indicates a source was read but its content is malformed
	// (for example, invalid JSON). Fatal only if the source is mandatory.
	ErrParse = errors.New("malformed configuration source")
	// ErrTypeMismatch indicates a configuration value could not be coerced
	// to the declared field type. Returned by [Bind] only in strict mode;
	// lenient mode records a [Warning] instead.
	ErrTypeMismatch = errors.New("configuration value type mismatch")
)
