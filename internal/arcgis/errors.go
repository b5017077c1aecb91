// ArcGIS Catalog - ArcGIS Server Service Discovery and Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arcgis-catalog

package arcgis

import (
	"fmt"
	"strings"
)

// RemoteError is the {"error":{...}} envelope ArcGIS Server returns instead of
// a success payload, usually with HTTP 200.
type RemoteError struct {
	Code    int      `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details"`
}

func (e *RemoteError) Error() string {
	msg := fmt.Sprintf("arcgis error %d: %s", e.Code, e.Message)
	if len(e.Details) > 0 {
		msg += " (" + strings.Join(e.Details, "; ") + ")"
	}
	return msg
}

// IsTokenError reports whether the server rejected the request's token
// (498 invalid token, 499 token required).
func (e *RemoteError) IsTokenError() bool {
	return e.Code == 498 || e.Code == 499
}

// ErrorEnvelope is decoded first from every response body to detect a RemoteError.
type ErrorEnvelope struct {
	Error *RemoteError `json:"error"`
}
