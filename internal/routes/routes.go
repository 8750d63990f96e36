// Package routes defines HTTP route constants for the application.
package routes

const (
	RootPath = "/"

	// SSE
	SSEPath = "/sse"

	// API
	APIProcesses     = "/api/processes"
	APIProcessActive = "/api/processes/active"
	APIProcess       = "/api/processes/{name}"
	APIDraft         = "/api/draft"
	APIDraftPontos   = "/api/draft/pontos"
	APIDraftPonto    = "/api/draft/pontos/{index}"
	APIAreas         = "/api/areas"
	APIAreaEdit      = "/api/areas/{index}/edit"
	APIArea          = "/api/areas/{index}"
	APIPublish       = "/api/publish"
	APIPublished     = "/api/published"

	// Auth routes
	AuthChallenge = "/auth/challenge"
	AuthVerify    = "/auth/verify"
)
