// Package cache provides the memo cache used for per-program and
// per-device lookups (uniform locations, sampler objects).
//
// A Cache is owned by one native context and is not safe for concurrent
// use. Entries are kept in least-recently-used order; when a soft limit is
// set and exceeded the oldest entries are evicted and passed to the
// eviction callback so native handles can be released.
//
//	locs := cache.New[string, gl.Uniform](0)
//	loc := locs.GetOrCreate("posFixup", func() gl.Uniform {
//		return f.GetUniformLocation(p, "posFixup")
//	})
package cache
