package config

import "errors"

// ErrMissingDatabaseURL is returned when TENANTKIT_DATABASE_URL is not set.
// The test harness cannot run without a database to provision against, so
// callers should treat this as fatal.
var ErrMissingDatabaseURL = errors.New("TENANTKIT_DATABASE_URL is not set")
