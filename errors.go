package niche

import "errors"

// ErrContended is returned by GetWithMutex when the rebuild lock could not
// be acquired within the configured retry budget. Callers may retry or
// degrade to a direct source read.
var ErrContended = errors.New("niche: cache rebuild lock contended")
