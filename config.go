package cache

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/minio/minio-go/v7"
)

const (
	// DefaultMaxEntries is the entry bound applied when the max_entries
	// option is not given.
	DefaultMaxEntries = 300

	// MaxEntriesCeiling is the hard upper bound on MaxEntries. Larger
	// configured values are clamped, since every cull pays an O(n)
	// listing over the namespace.
	MaxEntriesCeiling = 1000

	// DefaultCullFrequency is the sampling denominator applied when the
	// cull_frequency option is not given: one key in three is deleted
	// per cull.
	DefaultCullFrequency = 3

	// defaultFetchConcurrency bounds parallel object operations in the
	// multi-key methods.
	defaultFetchConcurrency = 10
)

// Config holds cache configuration.
type Config struct {
	// Endpoint is the MinIO server URL (e.g., "localhost:9000")
	Endpoint string

	// Bucket is the S3 bucket name
	Bucket string

	// AccessKey is the access key ID for authentication
	AccessKey string

	// SecretKey is the secret access key for authentication
	SecretKey string

	// UseSSL enables HTTPS connections (default: true)
	UseSSL bool

	// Prefix is an optional prefix for all object keys (for namespacing)
	Prefix string

	// Client is an optional pre-configured MinIO client
	// If provided, Endpoint/AccessKey/SecretKey are ignored
	Client *minio.Client

	// Store is an optional pre-built object store. If provided, all
	// connection fields above are ignored. Intended for tests and
	// alternate backends.
	Store ObjectStore

	// MaxEntries is the entry count at which culling triggers.
	// 0 disables culling entirely: no listing or deletion is ever
	// attempted on the write path. Values above MaxEntriesCeiling are
	// clamped.
	MaxEntries int

	// CullFrequency controls what fraction of entries a cull deletes:
	// every CullFrequency-th key in listing order. 0 makes every cull
	// delete the whole namespace.
	CullFrequency int

	// MaxFetchConcurrency limits concurrent object operations in
	// GetMulti/SetMulti.
	// Default: 10
	MaxFetchConcurrency int
}

// validate checks if the configuration is valid.
// Either Store, Client OR (Endpoint + Bucket + AccessKey + SecretKey)
// must be provided.
func (c *Config) validate() error {
	if c.MaxEntries < 0 {
		return fmt.Errorf("max entries must not be negative")
	}
	if c.CullFrequency < 0 {
		return fmt.Errorf("cull frequency must not be negative")
	}

	// A pre-built store carries its own connection and namespace.
	if c.Store != nil {
		return nil
	}

	// Check if bucket is provided (required in all cases)
	if c.Bucket == "" {
		return fmt.Errorf("bucket is required")
	}

	// If Client is provided, we're done (other fields are ignored)
	if c.Client != nil {
		return nil
	}

	// Otherwise, check required connection fields
	if c.Endpoint == "" {
		return fmt.Errorf("endpoint is required when client is not provided")
	}
	if c.AccessKey == "" {
		return fmt.Errorf("access key is required when client is not provided")
	}
	if c.SecretKey == "" {
		return fmt.Errorf("secret key is required when client is not provided")
	}

	return nil
}

// legacyOptionAliases maps option names used by older deployments to
// their canonical names. Aliases are consulted only when the canonical
// option is absent.
var legacyOptionAliases = map[string]string{
	"access_key_id":       "access_key",
	"secret_access_key":   "secret_key",
	"storage_bucket_name": "bucket_name",
}

// ParseOptions builds a Config from a loose string-keyed option map, the
// form host frameworks hand cache backends. Option names are matched
// case-insensitively and legacy aliases are resolved; a canonical name
// wins over its alias when both are present.
//
// Recognized options: access_key, secret_key, bucket_name, endpoint,
// use_ssl, location, max_entries, cull_frequency, and the legacy aliases
// ACCESS_KEY_ID, SECRET_ACCESS_KEY, STORAGE_BUCKET_NAME.
func ParseOptions(options map[string]string) (Config, error) {
	opts := make(map[string]string, len(options))
	for name, value := range options {
		opts[strings.ToLower(name)] = value
	}
	for legacy, canonical := range legacyOptionAliases {
		if _, ok := opts[canonical]; !ok {
			if value, ok := opts[legacy]; ok {
				opts[canonical] = value
			}
		}
		delete(opts, legacy)
	}

	cfg := Config{
		AccessKey: opts["access_key"],
		SecretKey: opts["secret_key"],
		Bucket:    opts["bucket_name"],
		Endpoint:  opts["endpoint"],
		Prefix:    opts["location"],
		UseSSL:    true,
	}

	if value, ok := opts["use_ssl"]; ok {
		useSSL, err := strconv.ParseBool(value)
		if err != nil {
			return Config{}, fmt.Errorf("invalid use_ssl option %q: %w", value, err)
		}
		cfg.UseSSL = useSSL
	}

	cfg.MaxEntries = DefaultMaxEntries
	if value, ok := opts["max_entries"]; ok {
		maxEntries, err := strconv.Atoi(value)
		if err != nil {
			return Config{}, fmt.Errorf("invalid max_entries option %q: %w", value, err)
		}
		cfg.MaxEntries = maxEntries
	}

	cfg.CullFrequency = DefaultCullFrequency
	if value, ok := opts["cull_frequency"]; ok {
		cullFrequency, err := strconv.Atoi(value)
		if err != nil {
			return Config{}, fmt.Errorf("invalid cull_frequency option %q: %w", value, err)
		}
		cfg.CullFrequency = cullFrequency
	}

	return cfg, nil
}
