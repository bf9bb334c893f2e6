package dataset

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"unicode/utf8"

	"github.com/cybozu-go/bucket-sampler/pkg/bucket"
	"github.com/cybozu-go/bucket-sampler/pkg/metrics"
	"github.com/cybozu-go/bucket-sampler/pkg/sample"
	"github.com/go-logr/logr"
	"golang.org/x/time/rate"
)

type openFunc func(ctx context.Context, name string) (bucket.Bucket, error)

// Helper lists, samples, fetches and uploads objects of a dataset.
type Helper struct {
	log     logr.Logger
	cfg     Config
	open    openFunc
	limiter *rate.Limiter

	mu      sync.Mutex
	buckets map[string]bucket.Bucket
}

// FracOptions are the parameters of GetFrac.
type FracOptions struct {
	// Prefix restricts the listing of the datasets bucket.
	Prefix string

	// Seed drives the sampling.  The CLI defaults it to constants.DefaultSeed.
	Seed int64

	// Download fetches the sampled keys below DestRoot.
	Download bool
	DestRoot string
}

// FracResult is the outcome of GetFrac.
type FracResult struct {
	Keys    []string
	Fetched int
}

// NewHelper creates a Helper from cfg.
func NewHelper(cfg Config, log logr.Logger) (*Helper, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return newHelper(cfg, log, cfg.openBucket), nil
}

func newHelper(cfg Config, log logr.Logger, open openFunc) *Helper {
	h := &Helper{
		log:     log,
		cfg:     cfg,
		open:    open,
		buckets: make(map[string]bucket.Bucket),
	}
	if cfg.RateLimit > 0 {
		h.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), max(cfg.Concurrency, 1))
	}
	return h
}

// bucket returns the client for the named bucket, creating it on first use.
func (h *Helper) bucket(ctx context.Context, name string) (bucket.Bucket, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: bucket name is empty", ErrInvalidArgument)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if b, ok := h.buckets[name]; ok {
		return b, nil
	}
	b, err := h.open(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to open bucket %s: %w", name, err)
	}
	h.buckets[name] = b
	return b, nil
}

func (h *Helper) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if h.cfg.Timeout > 0 {
		return context.WithTimeout(ctx, h.cfg.Timeout)
	}
	return context.WithCancel(ctx)
}

// annotate wraps err, classifying an expired deadline as ErrTimeout
// when the backend has not done so.
func annotate(err error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, ErrTimeout) {
		return fmt.Errorf("%s: %w: %w", msg, ErrTimeout, err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// List returns every key in `namespace` that starts with `prefix`.
// A prefix that matches nothing yields an empty slice.
func (h *Helper) List(ctx context.Context, namespace, prefix string) ([]string, error) {
	if !utf8.ValidString(prefix) {
		return nil, fmt.Errorf("%w: prefix %q is not valid UTF-8", ErrInvalidArgument, prefix)
	}

	b, err := h.bucket(ctx, namespace)
	if err != nil {
		return nil, err
	}

	ctx, cancel := h.withTimeout(ctx)
	defer cancel()

	keys, err := b.List(ctx, prefix)
	if err != nil {
		return nil, annotate(err, "failed to list objects in %s", namespace)
	}
	if keys == nil {
		keys = []string{}
	}

	metrics.ListedObjectsVec.WithLabelValues(namespace).Add(float64(len(keys)))
	h.log.Info("listed objects", "bucket", namespace, "prefix", prefix, "count", len(keys))
	return keys, nil
}

// Sample selects floor(fraction * len(keys)) keys reproducibly.
func (h *Helper) Sample(keys []string, fraction float64, seed int64) ([]string, error) {
	return sample.Fraction(keys, fraction, seed)
}

// GetFrac samples a fraction of the datasets bucket below opts.Prefix and
// optionally downloads the sample.
//
// When some downloads fail, the result is returned together with a
// *PartialFetchError.
func (h *Helper) GetFrac(ctx context.Context, fraction float64, opts FracOptions) (*FracResult, error) {
	if _, err := sample.Size(0, fraction); err != nil {
		return nil, err
	}

	ns := h.cfg.DatasetsBucket
	keys, err := h.List(ctx, ns, opts.Prefix)
	if err != nil {
		return nil, err
	}

	picked, err := sample.Fraction(keys, fraction, opts.Seed)
	if err != nil {
		return nil, err
	}
	metrics.SampledObjectsVec.WithLabelValues(ns).Set(float64(len(picked)))
	h.log.Info("sampled objects", "bucket", ns, "prefix", opts.Prefix, "fraction", fraction, "seed", opts.Seed, "count", len(picked))

	res := &FracResult{Keys: picked}
	if !opts.Download {
		return res, nil
	}

	dest := opts.DestRoot
	if dest == "" {
		dest = "."
	}
	n, err := h.Fetch(ctx, ns, picked, dest)
	res.Fetched = n
	h.log.Info("downloaded files", "count", n, "dest", dest, "prefix", opts.Prefix)
	return res, err
}

// Upload puts a local file.  An empty key defaults to the file's base name
// and an empty namespace to the outputs bucket.
func (h *Helper) Upload(ctx context.Context, fileName, key, namespace string) error {
	if key == "" {
		key = filepath.Base(fileName)
	}
	if namespace == "" {
		namespace = h.cfg.OutputsBucket
	}

	f, err := os.Open(fileName)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", fileName, err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", fileName, err)
	}
	if st.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrInvalidArgument, fileName)
	}

	b, err := h.bucket(ctx, namespace)
	if err != nil {
		return err
	}

	ctx, cancel := h.withTimeout(ctx)
	defer cancel()

	if err := b.Put(ctx, key, f, st.Size()); err != nil {
		return annotate(err, "failed to upload %s", fileName)
	}

	metrics.UploadedObjectsVec.WithLabelValues(namespace).Inc()
	h.log.Info("file uploaded", "bucket", namespace, "key", key, "bytes", st.Size())
	return nil
}
