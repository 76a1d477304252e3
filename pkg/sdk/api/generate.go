package api

// Regenerate with `go generate ./pkg/sdk/api`. The live document wins; the
// checked-in openapi.json is used when the API cannot be reached or
// BULLET_OFFLINE is set.
//go:generate go run ../../../cmd/bulletgen -cache openapi.json -out . -package api
