package cache

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/jmgilman/go/cache/internal/errs"
	"github.com/jmgilman/go/cache/internal/keyutil"
	"github.com/minio/minio-go/v7"
)

// ObjectStore is the storage surface the cache is built on. The production
// implementation talks to a MinIO/S3 bucket; tests substitute in-memory
// fakes to observe call patterns.
//
// Keys are object names relative to the store's namespace. ListKeys
// returns names in the order the backend reports them, and the result is
// valid input for RemoveAll.
type ObjectStore interface {
	// Read returns the full object body. Missing objects are reported
	// via an error satisfying errors.Is(err, fs.ErrNotExist).
	Read(ctx context.Context, key string) ([]byte, error)

	// Write stores data under key, replacing any existing object.
	Write(ctx context.Context, key string, data []byte) error

	// Remove deletes a single object. Removing a missing object is not
	// an error.
	Remove(ctx context.Context, key string) error

	// RemoveAll deletes the given objects in one bulk operation.
	RemoveAll(ctx context.Context, keys []string) error

	// ListKeys returns every object name in the namespace. An empty
	// namespace yields an empty slice, not an error.
	ListKeys(ctx context.Context) ([]string, error)
}

// minioStore implements ObjectStore against a MinIO/S3 bucket, scoping
// all objects under an optional key prefix.
type minioStore struct {
	client *minio.Client
	bucket string
	prefix string
}

func newMinioStore(client *minio.Client, bucket, prefix string) *minioStore {
	return &minioStore{
		client: client,
		bucket: bucket,
		prefix: keyutil.NormalizePrefix(prefix),
	}
}

// joinKey joins the store prefix with the given object name.
func (s *minioStore) joinKey(name string) string {
	return keyutil.JoinPrefix(s.prefix, name)
}

// Read returns the full object body.
func (s *minioStore) Read(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.joinKey(key), minio.GetObjectOptions{})
	if err != nil {
		return nil, errs.KeyError("read", key, errs.Translate(err))
	}
	defer func() {
		_ = obj.Close()
	}()

	// GetObject is lazy; the first read performs the request, so missing
	// objects surface here rather than above.
	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, errs.KeyError("read", key, errs.Translate(err))
	}

	return data, nil
}

// Write stores data under key.
func (s *minioStore) Write(ctx context.Context, key string, data []byte) error {
	_, err := s.client.PutObject(
		ctx,
		s.bucket,
		s.joinKey(key),
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{
			ContentType: "application/octet-stream",
		},
	)
	if err != nil {
		return errs.KeyError("write", key, errs.Translate(err))
	}

	return nil
}

// Remove deletes a single object.
func (s *minioStore) Remove(ctx context.Context, key string) error {
	err := s.client.RemoveObject(ctx, s.bucket, s.joinKey(key), minio.RemoveObjectOptions{})
	if err != nil {
		return errs.KeyError("remove", key, errs.Translate(err))
	}

	return nil
}

// RemoveAll deletes the given objects using the batch delete API.
func (s *minioStore) RemoveAll(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}

	// Feed the batch delete API from a channel, mirroring its streaming
	// contract.
	objectsCh := make(chan minio.ObjectInfo, len(keys))
	go func() {
		defer close(objectsCh)
		for _, key := range keys {
			objectsCh <- minio.ObjectInfo{Key: s.joinKey(key)}
		}
	}()

	errorCh := s.client.RemoveObjects(ctx, s.bucket, objectsCh, minio.RemoveObjectsOptions{})

	// Collect errors from deletion; report the first one.
	var errList []error
	for err := range errorCh {
		if err.Err != nil {
			errList = append(errList, err.Err)
		}
	}
	if len(errList) > 0 {
		return errs.KeyError("removeall", s.prefix, errs.Translate(errList[0]))
	}

	return nil
}

// ListKeys enumerates every object under the store prefix. The MinIO SDK
// drives the paginated listing API internally; draining the channel
// walks all continuation pages.
func (s *minioStore) ListKeys(ctx context.Context) ([]string, error) {
	listPrefix := s.prefix
	if listPrefix != "" {
		listPrefix += "/"
	}

	keys := []string{}
	for object := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    listPrefix,
		Recursive: true,
	}) {
		if object.Err != nil {
			return nil, errs.KeyError("list", s.prefix, errs.Translate(object.Err))
		}
		keys = append(keys, strings.TrimPrefix(object.Key, listPrefix))
	}

	return keys, nil
}

// Compile-time interface check.
var _ ObjectStore = (*minioStore)(nil)
