package cache

import "time"

// QueryOpts filters stored records. Zero values disable a filter.
type QueryOpts struct {
	Since time.Time
	Until time.Time
	Type  string
	Limit int
}
