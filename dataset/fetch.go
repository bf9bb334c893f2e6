package dataset

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/cybozu-go/bucket-sampler/pkg/bucket"
	"github.com/cybozu-go/bucket-sampler/pkg/constants"
	"github.com/cybozu-go/bucket-sampler/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

// Fetch downloads every key of `namespace` to destRoot/<key>, creating
// directories as needed, and returns the number of files written.
//
// A failing key does not stop the others.  If any key failed, the error
// is a *PartialFetchError listing them.
func (h *Helper) Fetch(ctx context.Context, namespace string, keys []string, destRoot string) (int, error) {
	b, err := h.bucket(ctx, namespace)
	if err != nil {
		return 0, err
	}

	var mu sync.Mutex
	var fetched int
	var written int64
	var failures []KeyFailure

	var eg errgroup.Group
	eg.SetLimit(h.cfg.Concurrency)
	for _, key := range keys {
		eg.Go(func() error {
			n, err := h.fetchOne(ctx, b, key, destRoot)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				h.log.Error(err, "failed to fetch object", "bucket", namespace, "key", key)
				metrics.FetchFailuresVec.WithLabelValues(namespace).Inc()
				failures = append(failures, KeyFailure{Key: key, Err: err})
				return nil
			}
			metrics.FetchedObjectsVec.WithLabelValues(namespace).Inc()
			fetched++
			written += n
			return nil
		})
	}
	eg.Wait()

	metrics.FetchedBytesVec.WithLabelValues(namespace).Add(float64(written))
	h.log.Info("fetched objects", "bucket", namespace, "dest", destRoot,
		"fetched", fetched, "failed", len(failures), "bytes", written)

	if len(failures) > 0 {
		sort.Slice(failures, func(i, j int) bool {
			return failures[i].Key < failures[j].Key
		})
		return fetched, &PartialFetchError{Failures: failures}
	}
	return fetched, nil
}

// fetchOne writes a single object and returns its size.
func (h *Helper) fetchOne(ctx context.Context, b bucket.Bucket, key, destRoot string) (int64, error) {
	dest, err := localPath(destRoot, key)
	if err != nil {
		return 0, err
	}

	if h.limiter != nil {
		if err := h.limiter.Wait(ctx); err != nil {
			return 0, annotate(err, "rate limiter")
		}
	}

	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, constants.DirMode); err != nil {
		return 0, fmt.Errorf("failed to make directory %s: %w", dir, err)
	}

	ctx, cancel := h.withTimeout(ctx)
	defer cancel()

	r, err := b.Get(ctx, key)
	if err != nil {
		return 0, annotate(err, "failed to get object")
	}
	defer r.Close()

	// write to a temporary file so that a failed fetch leaves nothing behind.
	tmp, err := os.CreateTemp(dir, ".fetch-*")
	if err != nil {
		return 0, fmt.Errorf("failed to create a temporary file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	defer func() {
		if tmpName != "" {
			os.Remove(tmpName)
		}
	}()

	bw := &ByteCountWriter{}
	if _, err := io.Copy(tmp, io.TeeReader(r, bw)); err != nil {
		tmp.Close()
		return 0, annotate(err, "failed to read object")
	}
	if err := tmp.Chmod(constants.FileMode); err != nil {
		tmp.Close()
		return 0, fmt.Errorf("failed to chmod %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		return 0, fmt.Errorf("failed to rename %s to %s: %w", tmpName, dest, err)
	}
	tmpName = ""
	return bw.Written(), nil
}
