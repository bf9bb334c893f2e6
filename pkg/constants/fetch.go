package constants

import "time"

// fetch related constants
const (
	DefaultTimeout     = 30 * time.Second
	DefaultConcurrency = 4

	DirMode  = 0755
	FileMode = 0644
)
