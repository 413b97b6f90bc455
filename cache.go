package cache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"
	"time"

	"github.com/jmgilman/go/cache/internal/keyutil"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"golang.org/x/sync/errgroup"
)

// Cache is an S3/MinIO-backed key/value cache with lazy expiration and a
// bounded entry count.
//
// All state lives in the bucket; Cache itself holds only configuration
// and is safe for concurrent use. Storage failures never escape the
// read/write methods: reads degrade to misses and writes to silent
// no-ops, matching the best-effort contract of a cache. The only error
// surfaced by the lookup methods is ErrCorruptEntry, which indicates a
// codec mismatch or damaged object rather than an unavailable backend.
type Cache struct {
	store            ObjectStore
	maxEntries       int
	cullFrequency    int
	fetchConcurrency int
	now              func() time.Time
}

// New creates a cache from the given configuration.
// Returns error if configuration is invalid or the client cannot be built.
func New(cfg Config) (*Cache, error) {
	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	store := cfg.Store
	if store == nil {
		client := cfg.Client
		if client == nil {
			// Create new MinIO client
			var err error
			client, err = minio.New(cfg.Endpoint, &minio.Options{
				Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
				Secure: cfg.UseSSL,
			})
			if err != nil {
				return nil, fmt.Errorf("failed to create minio client: %w", err)
			}
		}
		store = newMinioStore(client, cfg.Bucket, cfg.Prefix)
	}

	// Clamp the entry bound: every cull lists the whole namespace, so an
	// unbounded limit would make write amplification unbounded too.
	maxEntries := cfg.MaxEntries
	if maxEntries > MaxEntriesCeiling {
		maxEntries = MaxEntriesCeiling
	}

	fetchConcurrency := cfg.MaxFetchConcurrency
	if fetchConcurrency == 0 {
		fetchConcurrency = defaultFetchConcurrency
	}

	return &Cache{
		store:            store,
		maxEntries:       maxEntries,
		cullFrequency:    cfg.CullFrequency,
		fetchConcurrency: fetchConcurrency,
		now:              time.Now,
	}, nil
}

// NewFromOptions creates a cache from a loose string-keyed option map,
// resolving legacy option aliases. See ParseOptions for the recognized
// options.
func NewFromOptions(options map[string]string) (*Cache, error) {
	cfg, err := ParseOptions(options)
	if err != nil {
		return nil, err
	}
	return New(cfg)
}

// Get returns the value stored under key and whether it was present.
//
// A missing object, a storage failure, or an expired entry all report a
// miss. Discovering an expired entry deletes it as a side effect, best
// effort. The returned error is non-nil only for corrupt entry framing.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	name := keyutil.ObjectName(key)

	blob, err := c.store.Read(ctx, name)
	if err != nil {
		c.miss(key, err)
		return nil, false, nil
	}

	expired, err := entryExpired(blob, c.now())
	if err != nil {
		return nil, false, fmt.Errorf("get %q: %w", key, err)
	}
	if expired {
		// Lazy expiration: the first reader to observe an expired entry
		// removes it.
		if err := c.store.Remove(ctx, name); err != nil {
			c.absorb("expire", key, err)
		}
		cacheLookups.WithLabelValues("expired").Inc()
		return nil, false, nil
	}

	payload, err := decodeEntry(blob)
	if err != nil {
		return nil, false, fmt.Errorf("get %q: %w", key, err)
	}

	cacheLookups.WithLabelValues("hit").Inc()
	return payload, true, nil
}

// Has reports whether key holds a live entry, applying the same
// expiry-then-delete semantics as Get without decoding the payload.
func (c *Cache) Has(ctx context.Context, key string) (bool, error) {
	name := keyutil.ObjectName(key)

	blob, err := c.store.Read(ctx, name)
	if err != nil {
		c.miss(key, err)
		return false, nil
	}

	expired, err := entryExpired(blob, c.now())
	if err != nil {
		return false, fmt.Errorf("has %q: %w", key, err)
	}
	if expired {
		if err := c.store.Remove(ctx, name); err != nil {
			c.absorb("expire", key, err)
		}
		cacheLookups.WithLabelValues("expired").Inc()
		return false, nil
	}

	cacheLookups.WithLabelValues("hit").Inc()
	return true, nil
}

// Set stores value under key with the given relative timeout. A
// non-positive timeout writes an entry that is already expired.
//
// Set culls the namespace first if it has grown past the configured
// bound, then writes. Storage failures are absorbed; Set never reports
// them.
func (c *Cache) Set(ctx context.Context, key string, value []byte, timeout time.Duration) {
	c.cull(ctx)

	blob := encodeEntry(value, timeout, c.now())
	if err := c.store.Write(ctx, keyutil.ObjectName(key), blob); err != nil {
		c.absorb("set", key, err)
	}
}

// Add stores value under key only if no live entry exists there, and
// reports whether it wrote.
//
// The existence check and write are not atomic: two concurrent Adds on
// the same absent key may both write, last write wins. The returned
// error is non-nil only for corrupt entry framing discovered during the
// existence check.
func (c *Cache) Add(ctx context.Context, key string, value []byte, timeout time.Duration) (bool, error) {
	exists, err := c.Has(ctx, key)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	c.Set(ctx, key, value, timeout)
	return true, nil
}

// Delete removes the entry under key. Failures are absorbed; deleting a
// missing key is a no-op.
func (c *Cache) Delete(ctx context.Context, key string) {
	if err := c.store.Remove(ctx, keyutil.ObjectName(key)); err != nil {
		c.absorb("delete", key, err)
	}
}

// Clear deletes every entry in the namespace, regardless of the
// configured entry bound or cull frequency. Failures are absorbed.
func (c *Cache) Clear(ctx context.Context) {
	// A full flush is a cull with no entry threshold and no sampling.
	c.trim(ctx, 0, 0)
}

// NumEntries returns the entry count from a fresh full listing. This is
// O(n) over the namespace on every call and, unlike the lookup methods,
// propagates listing failures.
func (c *Cache) NumEntries(ctx context.Context) (int, error) {
	keys, err := c.store.ListKeys(ctx)
	if err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return len(keys), nil
}

// GetMulti looks up all keys in parallel and returns the values found.
// Missing and expired keys are simply omitted from the result. As with
// Get, the only returned error class is corrupt entry framing.
func (c *Cache) GetMulti(ctx context.Context, keys []string) (map[string][]byte, error) {
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(c.fetchConcurrency)

	var foundMu sync.Mutex
	found := make(map[string][]byte, len(keys))

	for _, key := range keys {
		eg.Go(func() error {
			value, ok, err := c.Get(egCtx, key)
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}

			foundMu.Lock()
			found[key] = value
			foundMu.Unlock()

			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return found, nil
}

// SetMulti stores all items with the given relative timeout, culling
// once up front and writing in parallel. Like Set, it absorbs storage
// failures.
func (c *Cache) SetMulti(ctx context.Context, items map[string][]byte, timeout time.Duration) {
	c.cull(ctx)

	// One timestamp for the batch so all entries expire together.
	now := c.now()

	var eg errgroup.Group
	eg.SetLimit(c.fetchConcurrency)

	for key, value := range items {
		eg.Go(func() error {
			blob := encodeEntry(value, timeout, now)
			if err := c.store.Write(ctx, keyutil.ObjectName(key), blob); err != nil {
				c.absorb("set", key, err)
			}
			return nil
		})
	}

	_ = eg.Wait()
}

// DeleteMulti removes all keys in one bulk delete. Failures are absorbed.
func (c *Cache) DeleteMulti(ctx context.Context, keys []string) {
	names := make([]string, len(keys))
	for i, key := range keys {
		names[i] = keyutil.ObjectName(key)
	}

	if err := c.store.RemoveAll(ctx, names); err != nil {
		c.absorb("delete", "", err)
	}
}

// miss records a lookup degraded to a miss by a storage-layer failure.
// Plain not-found is the normal path and logged at debug only via the
// metric label.
func (c *Cache) miss(key string, err error) {
	cacheLookups.WithLabelValues("miss").Inc()
	if !errors.Is(err, fs.ErrNotExist) {
		slog.Debug("Storage read failed, treating as cache miss.", "key", key, "error", err)
	}
}

// absorb records a storage failure swallowed by the never-raises write
// contract.
func (c *Cache) absorb(op, key string, err error) {
	absorbedErrors.WithLabelValues(op).Inc()
	slog.Warn("Absorbed storage error.", "op", op, "key", key, "error", err)
}
