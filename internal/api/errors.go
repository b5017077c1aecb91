// ArcGIS Catalog - ArcGIS Server Service Discovery and Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arcgis-catalog

package api

import (
	"context"
	"errors"
	"net/http"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/arcgis-catalog/internal/arcgis"
	"github.com/tomtom215/arcgis-catalog/internal/discovery"
	"github.com/tomtom215/arcgis-catalog/internal/geoprocessing"
	"github.com/tomtom215/arcgis-catalog/internal/hydrator"
)

// ErrEmptyBody is returned for POST endpoints called without a JSON body.
var ErrEmptyBody = errors.New("request body is required")

// classifyError maps a catalog or geoprocessing error to an HTTP status and
// error code. Order matters: caller mistakes are checked before upstream
// failures because discovery wraps both.
func classifyError(err error) (int, string) {
	var remote *arcgis.RemoteError
	var status *hydrator.StatusError

	switch {
	case errors.Is(err, discovery.ErrEmptyURL),
		errors.Is(err, geoprocessing.ErrMissingRequiredParameter),
		errors.Is(err, geoprocessing.ErrUnknownParameter):
		return http.StatusBadRequest, ErrCodeValidationFailed

	case errors.Is(err, discovery.ErrUnsupportedServiceType),
		errors.Is(err, geoprocessing.ErrNotGeoprocessing):
		return http.StatusUnprocessableEntity, ErrCodeBadRequest

	case errors.Is(err, geoprocessing.ErrUnknownTask),
		errors.Is(err, geoprocessing.ErrUnknownJob):
		return http.StatusNotFound, ErrCodeNotFound

	case errors.Is(err, geoprocessing.ErrRunnerClosed),
		errors.Is(err, discovery.ErrNoTokenGenerator):
		return http.StatusServiceUnavailable, ErrCodeServiceUnavailable

	case errors.Is(err, gobreaker.ErrOpenState),
		errors.Is(err, gobreaker.ErrTooManyRequests):
		return http.StatusServiceUnavailable, ErrCodeServiceUnavailable

	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, ErrCodeUpstreamTimeout

	case errors.As(err, &remote) && remote.IsTokenError():
		return http.StatusBadGateway, ErrCodeCredentialsRejected

	case errors.As(err, &remote),
		errors.As(err, &status),
		errors.Is(err, hydrator.ErrDecode),
		errors.Is(err, hydrator.ErrEmptyBody),
		errors.Is(err, hydrator.ErrNoToken),
		errors.Is(err, geoprocessing.ErrNoJobID):
		return http.StatusBadGateway, ErrCodeExternalServiceFail

	default:
		return http.StatusInternalServerError, ErrCodeInternalError
	}
}
