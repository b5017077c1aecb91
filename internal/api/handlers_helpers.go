// ArcGIS Catalog - ArcGIS Server Service Discovery and Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arcgis-catalog

package api

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/arcgis-catalog/internal/arcgis"
	"github.com/tomtom215/arcgis-catalog/internal/logging"
	"github.com/tomtom215/arcgis-catalog/internal/validation"
)

// maxBodyBytes bounds JSON request bodies. Geoprocessing feature sets can be
// large, so this is well above a typical API body.
const maxBodyBytes = 8 << 20

// sanitizeLogValue removes control characters from strings to prevent log injection attacks.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			fmt.Fprintf(&result, "\\x%02x", r)
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// decodeJSON reads a bounded JSON body into dst.
func decodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return ErrEmptyBody
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return fmt.Errorf("read request body: %w", err)
	}
	if len(body) == 0 {
		return ErrEmptyBody
	}
	if len(body) > maxBodyBytes {
		return fmt.Errorf("request body exceeds %d bytes", maxBodyBytes)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// validateRequest validates a struct using go-playground/validator and
// writes the 400 response when it fails. Returns false if a response was written.
func validateRequest(rw *ResponseWriter, v interface{}) bool {
	validationErr := validation.ValidateStruct(v)
	if validationErr == nil {
		return true
	}
	apiErr := validationErr.ToAPIError()
	rw.ValidationError(apiErr.Message, apiErr.Details)
	return false
}

// respondError classifies err and writes the error envelope. Upstream and
// caller errors carry their message; internal errors do not.
func respondError(rw *ResponseWriter, r *http.Request, err error) {
	status, code := classifyError(err)

	event := logging.Ctx(r.Context()).Warn()
	if status >= http.StatusInternalServerError {
		event = logging.Ctx(r.Context()).Error()
	}
	event.Str("code", code).
		Int("status", status).
		Str("path", sanitizeLogValue(r.URL.Path)).
		Str("error", sanitizeLogValue(err.Error())).
		Msg("API error")

	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "An internal error occurred"
	}
	rw.Error(status, code, message)
}

// getIntParam extracts an integer query parameter with a default value
func getIntParam(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

// parseBBox parses "xmin,ymin,xmax,ymax" with an optional spatial reference WKID.
func parseBBox(value string, wkid int) (*arcgis.Extent, error) {
	if value == "" {
		return nil, nil
	}
	parts := strings.Split(value, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("bbox must be xmin,ymin,xmax,ymax")
	}

	coords := make([]float64, 4)
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("bbox coordinate %q is not a number", part)
		}
		coords[i] = f
	}
	if coords[0] > coords[2] || coords[1] > coords[3] {
		return nil, fmt.Errorf("bbox minimums must not exceed maximums")
	}

	extent := &arcgis.Extent{XMin: coords[0], YMin: coords[1], XMax: coords[2], YMax: coords[3]}
	if wkid > 0 {
		extent.SpatialReference = &arcgis.SpatialReference{WKID: wkid}
	}
	return extent, nil
}
