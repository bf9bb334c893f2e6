package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	sampler "github.com/cybozu-go/bucket-sampler"
	"github.com/cybozu-go/bucket-sampler/dataset"
	"github.com/cybozu-go/bucket-sampler/pkg/constants"
	"github.com/cybozu-go/bucket-sampler/pkg/metrics"
	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var commonArgs struct {
	backend            string
	region             string
	endpointURL        string
	usePathStyle       bool
	azureServiceURL    string
	gcsCredentialsFile string
	accessKeyID        string
	datasetsBucket     string
	outputsBucket      string
	timeout            time.Duration
	threads            int
	rateLimit          float64
	logLevel           string
	metricsTextfile    string
}

var secretAccessKey = os.Getenv(constants.SecretAccessKeyEnv)

var (
	helper    *dataset.Helper
	logger    = logr.Discard()
	zapLogger *zap.Logger
	registry  = prometheus.NewRegistry()
)

func makeConfig() (dataset.Config, error) {
	cfg := dataset.DefaultConfig()
	cfg.Backend = commonArgs.backend
	cfg.Region = commonArgs.region
	cfg.EndpointURL = commonArgs.endpointURL
	cfg.UsePathStyle = commonArgs.usePathStyle
	cfg.AzureServiceURL = commonArgs.azureServiceURL
	cfg.GCSCredentialsFile = commonArgs.gcsCredentialsFile
	cfg.DatasetsBucket = commonArgs.datasetsBucket
	cfg.OutputsBucket = commonArgs.outputsBucket
	cfg.Timeout = commonArgs.timeout
	cfg.Concurrency = commonArgs.threads
	cfg.RateLimit = commonArgs.rateLimit

	switch {
	case len(commonArgs.accessKeyID) > 0 && len(secretAccessKey) == 0:
		return cfg, fmt.Errorf("no %s environment variable", constants.SecretAccessKeyEnv)
	case len(commonArgs.accessKeyID) > 0:
		cfg.Credentials = &dataset.Credentials{
			AccessKeyID:     commonArgs.accessKeyID,
			SecretAccessKey: secretAccessKey,
		}
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func makeLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %s: %w", level, err)
	}

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	zc.OutputPaths = []string{"stderr"}
	zc.Sampling = nil
	return zc.Build()
}

var rootCmd = &cobra.Command{
	Use:     "bucket-sampler",
	Version: sampler.Version,
	Short:   "list, sample and fetch dataset objects",
	Long:    "List, sample and fetch objects of a dataset stored in an object storage bucket.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		zl, err := makeLogger(commonArgs.logLevel)
		if err != nil {
			return err
		}
		zapLogger = zl
		logger = zapr.NewLogger(zl)

		cfg, err := makeConfig()
		if err != nil {
			return err
		}

		helper, err = dataset.NewHelper(cfg, logger)
		if err != nil {
			return fmt.Errorf("failed to create a dataset helper: %w", err)
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	metrics.Register(registry)

	err := rootCmd.Execute()
	if len(commonArgs.metricsTextfile) > 0 {
		if werr := metrics.WriteTextfile(registry, commonArgs.metricsTextfile); werr != nil {
			fmt.Fprintf(os.Stderr, "failed to write metrics to %s: %v\n", commonArgs.metricsTextfile, werr)
		}
	}
	if zapLogger != nil {
		zapLogger.Sync()
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		if errors.Is(err, dataset.ErrInvalidArgument) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func addCommonFlags(pf *pflag.FlagSet) {
	pf.StringVar(&commonArgs.backend, "backend", constants.BackendS3, "The storage backend: s3, gcs or azure")
	pf.StringVar(&commonArgs.region, "region", "", "AWS region")
	pf.StringVar(&commonArgs.endpointURL, "endpoint", "", "S3 or GCS API endpoint URL")
	pf.BoolVar(&commonArgs.usePathStyle, "use-path-style", false, "Use path-style S3 API")
	pf.StringVar(&commonArgs.azureServiceURL, "azure-service-url", "", "Azure Blob Storage service URL")
	pf.StringVar(&commonArgs.gcsCredentialsFile, "gcs-credentials-file", "", "GCS service account key file")
	pf.StringVar(&commonArgs.accessKeyID, "access-key-id", "",
		"Access key ID (or Azure account name). The secret is read from "+constants.SecretAccessKeyEnv)
	pf.StringVar(&commonArgs.datasetsBucket, "datasets-bucket", constants.DefaultDatasetsBucket, "The bucket holding datasets")
	pf.StringVar(&commonArgs.outputsBucket, "outputs-bucket", constants.DefaultOutputsBucket, "The bucket receiving uploads")
	pf.DurationVar(&commonArgs.timeout, "timeout", constants.DefaultTimeout, "Timeout of each storage request")
	pf.IntVar(&commonArgs.threads, "threads", constants.DefaultConcurrency, "The number of parallel downloads")
	pf.Float64Var(&commonArgs.rateLimit, "rate-limit", 0, "Maximum downloads per second (0 means unlimited)")
	pf.StringVar(&commonArgs.logLevel, "log-level", "info", "Log level: debug, info, warn or error")
	pf.StringVar(&commonArgs.metricsTextfile, "metrics-textfile", "", "Write metrics to this file in the Prometheus text format")
}

func init() {
	addCommonFlags(rootCmd.PersistentFlags())
}
