// ArcGIS Catalog - ArcGIS Server Service Discovery and Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arcgis-catalog

// Package validation provides struct validation using go-playground/validator v10.
//
// This package wraps the go-playground/validator library to provide a thread-safe
// singleton validator instance with ArcGIS-specific validators and user-friendly
// error messages. It is used for API request bodies and for the tag-based part of
// configuration validation.
//
// # Custom Tags
//
//   - arcgis_url: absolute http or https URL with a host
//   - gp_param: geoprocessing parameter identifier
//
// # Quick Start
//
//	type SubmitJobRequest struct {
//	    TaskURL    string         `json:"task_url" validate:"required,arcgis_url"`
//	    Parameters map[string]any `json:"parameters"`
//	}
//
//	if err := validation.ValidateStruct(&req); err != nil {
//	    apiErr := err.ToAPIError()
//	    rw.ValidationError(apiErr.Message, apiErr.Details)
//	    return
//	}
//
// # Thread Safety
//
// GetValidator initializes the validator once with sync.Once; the instance
// caches struct metadata and is safe for concurrent use.
package validation
