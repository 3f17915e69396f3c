// File: utils/constants.go
package utils

import "time"

// AuthCachePrefix is the prefix used for Redis authorization cache keys.
const AuthCachePrefix = "auth:"

// AuthCacheTTL is the time-to-live for authorization cache entries.
const AuthCacheTTL = time.Hour

// SessionTokenTTL is how long a sign-in token stays valid.
const SessionTokenTTL = 7 * 24 * time.Hour

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"
