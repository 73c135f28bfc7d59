package minio

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"

	"github.com/minio/minio-go/v7"

	"github.com/hupe1980/typedjson/blobstore"
)

// Store implements blobstore.Store for MinIO and S3-compatible storage.
type Store struct {
	client      *minio.Client
	bucket      string
	prefix      string
	contentType string
}

// Option configures a Store.
type Option func(*Store)

// WithContentType sets the Content-Type stored with every blob.
// Default "application/json".
func WithContentType(ct string) Option {
	return func(s *Store) {
		s.contentType = ct
	}
}

// NewStore creates a new MinIO blob store.
// bucket is the MinIO bucket name.
// rootPrefix is prepended to all keys (e.g. "state/").
func NewStore(client *minio.Client, bucket, rootPrefix string, optFns ...Option) *Store {
	if rootPrefix != "" && !strings.HasSuffix(rootPrefix, "/") {
		rootPrefix += "/"
	}
	s := &Store{
		client:      client,
		bucket:      bucket,
		prefix:      rootPrefix,
		contentType: "application/json",
	}
	for _, fn := range optFns {
		fn(s)
	}
	return s
}

// key maps a blob name (or list prefix) to an object key. Trailing slashes
// are kept so "a/" does not match "ab".
func (s *Store) key(name string) string {
	return s.prefix + name
}

func isNotFound(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NotFound"
}

// Get reads a blob.
func (s *Store) Get(ctx context.Context, name string) ([]byte, error) {
	if err := blobstore.ValidateName(name); err != nil {
		return nil, err
	}

	obj, err := s.client.GetObject(ctx, s.bucket, s.key(name), minio.GetObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return nil, blobstore.ErrNotFound
		}
		return nil, err
	}
	defer obj.Close()

	// GetObject is lazy; the first read surfaces a missing key.
	data, err := io.ReadAll(obj)
	if err != nil {
		if isNotFound(err) {
			return nil, blobstore.ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

// Put writes a blob atomically.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	if err := blobstore.ValidateName(name); err != nil {
		return err
	}
	_, err := s.client.PutObject(ctx, s.bucket, s.key(name), bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: s.contentType,
	})
	return err
}

// Delete removes a blob.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := blobstore.ValidateName(name); err != nil {
		return err
	}
	err := s.client.RemoveObject(ctx, s.bucket, s.key(name), minio.RemoveObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return nil // Already gone
		}
		return err
	}
	return nil
}

// List returns all blob names with the given prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	var names []string
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    s.key(prefix),
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		// Strip our root prefix
		name := strings.TrimPrefix(obj.Key, s.prefix)
		if name != "" {
			names = append(names, name)
		}
	}

	sort.Strings(names)
	return names, nil
}

var _ blobstore.Store = (*Store)(nil)
