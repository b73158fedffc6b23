// Package schemas holds the versioned JSON Schemas for the HTTP API.
package schemas

import _ "embed"

// LookupResponseV1 is the JSON Schema for a successful lookup response.
//
//go:embed lookup_response.v1.schema.json
var LookupResponseV1 string

// ErrorResponseV1 is the JSON Schema for an error response.
//
//go:embed error_response.v1.schema.json
var ErrorResponseV1 string
