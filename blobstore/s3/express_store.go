package s3

import (
	"context"
	"errors"

	"github.com/aws/smithy-go"

	"github.com/hupe1980/typedjson/blobstore"
)

// ExpressStore is a Store for buckets that support conditional writes
// (S3 Express One Zone directory buckets, and general purpose buckets
// since S3 added If-None-Match).
//
// It implements blobstore.ConditionalStore, which lets state.Store detect
// two writers racing for the same version.
type ExpressStore struct {
	*Store
}

// NewExpressStore creates a conditional-write capable store.
func NewExpressStore(client Client, bucket string, optFns ...Option) *ExpressStore {
	return &ExpressStore{Store: NewStore(client, bucket, optFns...)}
}

// PutIfNotExists writes a blob only if it doesn't already exist.
// Returns blobstore.ErrConflict if the key already exists.
func (s *ExpressStore) PutIfNotExists(ctx context.Context, name string, data []byte) error {
	if err := blobstore.ValidateName(name); err != nil {
		return err
	}

	err := putObject(ctx, s.client, s.bucket, s.key(name), data, s.upload.EnableChecksum, true)
	if err != nil {
		// Precondition failed (object already exists) or a concurrent
		// conditional write on the same key.
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			code := apiErr.ErrorCode()
			if code == "PreconditionFailed" || code == "ConditionalRequestConflict" {
				return blobstore.ErrConflict
			}
		}
		return err
	}
	return nil
}

var _ blobstore.ConditionalStore = (*ExpressStore)(nil)
