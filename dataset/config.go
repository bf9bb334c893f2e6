package dataset

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/cybozu-go/bucket-sampler/pkg/bucket"
	"github.com/cybozu-go/bucket-sampler/pkg/constants"
	"google.golang.org/api/option"
)

// Credentials is an explicit access key pair.
// For Azure, AccessKeyID is the storage account name and SecretAccessKey its key.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
}

// Config configures a Helper.
type Config struct {
	// Backend is one of "s3", "gcs" or "azure".
	Backend string

	DatasetsBucket string
	OutputsBucket  string

	Region       string
	EndpointURL  string
	UsePathStyle bool

	// AzureServiceURL is https://<account-name>.blob.core.windows.net/
	AzureServiceURL string

	GCSCredentialsFile string

	// Credentials, when set, builds an isolated session instead of
	// using the backend's default credential chain.
	Credentials *Credentials

	// Timeout bounds every single backend call.  Zero means no timeout.
	Timeout time.Duration

	// Concurrency is the number of objects fetched in parallel.
	Concurrency int

	// RateLimit caps object fetches per second.  Zero means unlimited.
	RateLimit float64
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Backend:        constants.BackendS3,
		DatasetsBucket: constants.DefaultDatasetsBucket,
		OutputsBucket:  constants.DefaultOutputsBucket,
		Timeout:        constants.DefaultTimeout,
		Concurrency:    constants.DefaultConcurrency,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	switch c.Backend {
	case constants.BackendS3, constants.BackendGCS, constants.BackendAzure:
	default:
		return fmt.Errorf("%w: unknown backend %q", ErrInvalidArgument, c.Backend)
	}

	if c.Concurrency < 1 {
		return fmt.Errorf("%w: concurrency must be positive: %d", ErrInvalidArgument, c.Concurrency)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: negative timeout %s", ErrInvalidArgument, c.Timeout)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("%w: negative rate limit %v", ErrInvalidArgument, c.RateLimit)
	}

	if len(c.EndpointURL) > 0 {
		if _, err := url.Parse(c.EndpointURL); err != nil {
			return fmt.Errorf("%w: invalid endpoint URL %s: %w", ErrInvalidArgument, c.EndpointURL, err)
		}
	}

	if c.Credentials != nil {
		if c.Credentials.AccessKeyID == "" || c.Credentials.SecretAccessKey == "" {
			return fmt.Errorf("%w: both access key ID and secret access key are required", ErrInvalidArgument)
		}
		if c.Backend == constants.BackendGCS {
			return fmt.Errorf("%w: gcs takes a credentials file, not an access key", ErrInvalidArgument)
		}
	}

	if c.Backend == constants.BackendAzure && c.AzureServiceURL == "" {
		return fmt.Errorf("%w: azure backend requires the service URL", ErrInvalidArgument)
	}
	return nil
}

func (c Config) openBucket(ctx context.Context, name string) (bucket.Bucket, error) {
	switch c.Backend {
	case constants.BackendGCS:
		var opts []option.ClientOption
		if len(c.EndpointURL) > 0 {
			opts = append(opts, option.WithEndpoint(c.EndpointURL))
		}
		if len(c.GCSCredentialsFile) > 0 {
			opts = append(opts, option.WithCredentialsFile(c.GCSCredentialsFile))
		}
		return bucket.NewGCSBucket(ctx, name, opts...)

	case constants.BackendAzure:
		if c.Credentials != nil {
			return bucket.NewAzureSharedKeyBucket(ctx, c.AzureServiceURL, name,
				c.Credentials.AccessKeyID, c.Credentials.SecretAccessKey)
		}
		cred, err := azidentity.NewDefaultAzureCredential(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to get default Azure credential: %w: %w", ErrBackendUnavailable, err)
		}
		return bucket.NewAzureBucket(ctx, c.AzureServiceURL, name, cred)
	}

	var opts []func(*s3.Options)
	if c.Credentials != nil {
		opts = append(opts, bucket.WithStaticCredentials(c.Credentials.AccessKeyID, c.Credentials.SecretAccessKey))
	}
	if len(c.Region) > 0 {
		opts = append(opts, bucket.WithRegion(c.Region))
	}
	if len(c.EndpointURL) > 0 {
		opts = append(opts, bucket.WithEndpointURL(c.EndpointURL))
	}
	if c.UsePathStyle {
		opts = append(opts, bucket.WithPathStyle())
	}
	return bucket.NewS3Bucket(ctx, name, opts...)
}
