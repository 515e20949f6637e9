// Package lock defines the per-key mutual exclusion port used to serialize
// distribution list mutations on the same list id.
package lock

import "context"

// Locker grants single-writer access per key. Acquire blocks until the key
// lock is held or ctx is done; the returned release function must be called
// exactly once.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}
