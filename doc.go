// Package cache provides an S3/MinIO-backed key/value cache with lazy
// expiration and a bounded entry count.
//
// Entries are stored as bucket objects: each object body frames an
// absolute expiry timestamp ahead of the payload so readers can check
// liveness without decoding. Expiration is lazy; there is no background
// sweep, and an expired entry is removed by whichever reader discovers
// it next. Entry count is bounded by culling: before a write that may
// grow the namespace, the cache lists all keys and, past the configured
// bound, deletes a deterministic sample of them.
//
// Usage:
//
//	c, err := cache.New(cache.Config{
//		Endpoint:   "localhost:9000",
//		Bucket:     "app-cache",
//		AccessKey:  "minioadmin",
//		SecretKey:  "minioadmin",
//		MaxEntries: 300,
//	})
//
//	c.Set(ctx, "greeting", []byte("hello"), time.Minute)
//	value, ok, err := c.Get(ctx, "greeting")
//
// Host frameworks that configure backends through a string option map
// can use NewFromOptions, which also resolves legacy option aliases.
//
// # Failure Semantics
//
// The cache is best effort by contract. Storage failures on the read
// path degrade to misses; failures on the write, delete and cull paths
// are absorbed, logged and counted. No method fails because the backend
// is unavailable. The single exception is ErrCorruptEntry: malformed
// entry framing indicates a codec mismatch or damaged object and is
// surfaced rather than masked.
//
// # Concurrency
//
// Cache holds no mutable in-process state and is safe for concurrent
// use. Operations against the bucket are not atomic across callers:
// concurrent Adds on the same absent key may both write, and culling
// races benignly with concurrent writers.
package cache
