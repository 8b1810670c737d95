// Package api carries the OpenAPI document describing the /api/v1 surface.
package api

import _ "embed"

//go:embed openapi.yml
var OpenAPI []byte
