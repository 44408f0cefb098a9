// Package apiv1 embeds the OpenAPI v2 specification of the timegate HTTP API.
package apiv1

import _ "embed"

// Spec contains the OpenAPI v2 JSON specification served at /openapi.json.
// It is embedded at compile time so the binary works with scratch-based
// production images.
//
//go:embed openapi.swagger.json
var Spec []byte
