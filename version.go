package sampler

const (
	// Version is the bucket-sampler version
	Version = "0.1.0"
)
