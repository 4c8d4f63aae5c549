// Package blob abstracts the byte stores behind the document service: a
// fallible remote primary and a local durable fallback.
package blob

import "context"

// StoredObject describes where a write landed.
type StoredObject struct {
	ID   string
	Path string
}

// ObjectStore writes document bytes to a path. Implementations are treated as
// fallible and potentially slow; callers bound them with context deadlines.
type ObjectStore interface {
	Put(ctx context.Context, path string, data []byte) (StoredObject, error)
}
