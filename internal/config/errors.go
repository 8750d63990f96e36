package config

const (
	// Store errors
	ErrInitializeDatabaseFmt = "Failed to initialize database: %v"
	ErrInitializeStoreFmt    = "Failed to initialize store: %v"
	ErrLoadProcessesFmt      = "Failed to load processes: %v"
	ErrStoreFailure          = "The store could not complete the request, try again"

	// Auth errors
	ErrCreateProviderFmt      = "Failed to create provider: %v"
	ErrUnauthorized           = "Unauthorized"
	ErrAuthHeaderRequired     = "Authorization header required"
	ErrInvalidSignatureFormat = "Invalid signature format"
	ErrInvalidSignature       = "Invalid signature"
	ErrInternalServerError    = "Internal server error"

	// Config errors
	ErrWriteConfigContentFmt = "Failed to write config content: %v"

	// Request errors
	ErrInvalidRequestBody  = "Invalid request body"
	ErrInvalidIndex        = "Invalid index"
	ErrProcessNameRequired = "Process name is required"
	ErrNoProcessSelected   = "No process selected"
	ErrUnknownProcess      = "Unknown process"
	ErrIndexOutOfRange     = "Index out of range"
	ErrNothingPublished    = "Nothing has been published yet"

	// Challenge errors
	ErrRefreshChallenge = "Failed to refresh challenge"
)
