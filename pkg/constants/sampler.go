package constants

// bucket-sampler related constants
const (
	ListSubcommand   = "list"
	SampleSubcommand = "sample"
	FetchSubcommand  = "fetch"
	UploadSubcommand = "upload"
	ImageSubcommand  = "image"

	DefaultDatasetsBucket = "se-project-ext-datasets"
	DefaultOutputsBucket  = "se-project-ext-outputs"

	// DefaultSeed makes repeated samples of an unchanged listing identical.
	DefaultSeed = 42
)

// backend names
const (
	BackendS3    = "s3"
	BackendGCS   = "gcs"
	BackendAzure = "azure"
)

// environment variables
const (
	SecretAccessKeyEnv = "BUCKET_SAMPLER_SECRET_ACCESS_KEY"
)
