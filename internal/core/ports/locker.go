package ports

import "context"

// Locker serializes work on one key. Lock blocks until the key is free or ctx
// is done and returns the release function.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}
