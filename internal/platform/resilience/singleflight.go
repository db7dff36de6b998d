package resilience

import "golang.org/x/sync/singleflight"

// SingleFlight collapses concurrent calls for the same key into one
// upstream call. The zero value is ready to use.
type SingleFlight struct {
	group singleflight.Group
}

func (g *SingleFlight) Do(key string, fn func() (any, error)) (any, error, bool) {
	return g.group.Do(key, fn)
}
