package db

import "time"

// Status values for crawl_queue and documents, mirroring the crawl_status enum.
const (
	StatusQueued                = "queued"
	StatusInProgress            = "in_progress"
	StatusDone                  = "done"
	StatusValidationError       = "validation_error"
	StatusNonSuccessStatusError = "non_success_status_error"
	StatusProcessingError       = "processing_error"
)

// Token field constants.
const (
	FieldTitle       = 1
	FieldDescription = 2
	FieldBody        = 4
)

// Token source type constants.
const (
	SourceWeb  = 1
	SourceNews = 2
)

// Database connection constants.
const (
	ConnectionRetrySleep = 2 * time.Second
	maxConnectionRetries = 10
)

// Database pool default constants.
const (
	defaultMaxConns          int32         = 25
	defaultMinConns          int32         = 5
	defaultMaxConnIdleTime   time.Duration = 30 * time.Minute
	defaultMaxConnLifetime   time.Duration = time.Hour
	defaultHealthCheckPeriod time.Duration = time.Minute
)
