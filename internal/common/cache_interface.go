package common

import "time"

// Cache is the contract the aggregate views depend on. Entries hold
// whole derived results keyed by instant; Flush drops them all when
// the underlying allocation store changes, so a stale aggregate can
// never outlive the write that invalidated it.
type Cache interface {
	Set(key string, value interface{}, duration time.Duration)
	Get(key string) (interface{}, bool)
	Delete(key string)
	Flush()
}
