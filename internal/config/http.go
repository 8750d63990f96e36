package config

// Header names
const (
	HCType        = "Content-Type"
	HETag         = "ETag"
	HCacheControl = "Cache-Control"
	HConnection   = "Connection"
)

// Content types
const (
	CTypeHTML        = "text/html"
	CTypeJSON        = "application/json"
	CTypeEventStream = "text/event-stream"
)

// Cache-Control values
const (
	CacheNone   = "no-cache"
	CacheStatic = "public, max-age=3600"
)

const (
	HTTPErrMethodNotAllowed = "Method not allowed"
)

const (
	CookieAuthToken = "auth-token"
)
