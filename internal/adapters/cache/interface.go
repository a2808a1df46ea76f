package cache

type hitResult[T any] struct {
	data    T
	valid   bool
	claimed bool
}

// Cache is a keyed store where a missing entry is claimed by the first caller, who is then
// responsible for either setting or deleting it. Other callers wait until the entry is valid.
type Cache[T any] interface {
	getOrClaim(key string) hitResult[T]
	set(key string, data T)
	delete(key string)
	wait()
}
