package bucket

import (
	"context"
	"errors"
	"io"
	"net/http"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

type gcsBucket struct {
	name   string
	client *storage.Client
}

// NewGCSBucket creates a Bucket that manages objects in Google Cloud Storage.
// Without options the client uses Application Default Credentials.
func NewGCSBucket(ctx context.Context, name string, opts ...option.ClientOption) (Bucket, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, wrapError(err, isGCSNotFound, "failed to create GCS client")
	}

	return &gcsBucket{
		name:   name,
		client: client,
	}, nil
}

func (b *gcsBucket) Put(ctx context.Context, key string, data io.Reader, _ int64) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := b.client.Bucket(b.name).Object(key).NewWriter(ctx)
	w.ContentType = contentType(key)

	if _, err := io.Copy(w, data); err != nil {
		// cancelling the context aborts the upload; Close reports the cause.
		cancel()
		w.Close()
		return wrapError(err, isGCSNotFound, "failed to put %s/%s", b.name, key)
	}
	if err := w.Close(); err != nil {
		return wrapError(err, isGCSNotFound, "failed to put %s/%s", b.name, key)
	}
	return nil
}

func (b *gcsBucket) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	rc, err := b.client.Bucket(b.name).Object(key).NewReader(ctx)
	if err != nil {
		return nil, wrapError(err, isGCSNotFound, "failed to get %s/%s", b.name, key)
	}
	return rc, nil
}

func (b *gcsBucket) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	it := b.client.Bucket(b.name).Objects(ctx, &storage.Query{Prefix: prefix})
	for {
		obj, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, wrapError(err, isGCSNotFound, "failed to list %s/%s", b.name, prefix)
		}
		keys = append(keys, obj.Name)
	}
	return keys, nil
}

func isGCSNotFound(err error) bool {
	if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
		return true
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusNotFound
	}
	return false
}
