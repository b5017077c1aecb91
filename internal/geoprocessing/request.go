// ArcGIS Catalog - ArcGIS Server Service Discovery and Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arcgis-catalog

package geoprocessing

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/tomtom215/arcgis-catalog/internal/arcgis"
	"github.com/tomtom215/arcgis-catalog/internal/hydrator"
)

// DefaultMaxURLLength is the longest GET URL sent before switching to POST.
const DefaultMaxURLLength = 2000

var (
	// ErrMissingRequiredParameter is returned when a required input is absent.
	ErrMissingRequiredParameter = errors.New("missing required parameter")

	// ErrUnknownParameter is returned for result lookups of undeclared parameters.
	ErrUnknownParameter = errors.New("unknown parameter")
)

// Parameters are task inputs keyed by parameter name. Strings are sent as-is,
// numbers and booleans in their canonical text form, anything else as JSON
// (features, linear units, data files).
type Parameters map[string]any

// ValidateParameters checks that every required input parameter of task is
// present with a non-nil value.
func ValidateParameters(task *arcgis.GPTask, params Parameters) error {
	for _, name := range task.RequiredInputs() {
		if v, ok := params[name]; !ok || v == nil {
			return fmt.Errorf("%w: %s", ErrMissingRequiredParameter, name)
		}
	}
	return nil
}

// EncodeParameters form-encodes params and adds f=json.
func EncodeParameters(params Parameters) (url.Values, error) {
	form := make(url.Values, len(params)+1)
	for name, value := range params {
		encoded, err := encodeValue(value)
		if err != nil {
			return nil, fmt.Errorf("encode parameter %s: %w", name, err)
		}
		form.Set(name, encoded)
	}
	form.Set("f", "json")
	return form, nil
}

func encodeValue(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), nil
	case json.RawMessage:
		return string(v), nil
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}
}

// BuildRequest creates the request for a task operation. The parameters go in
// the query string unless the resulting URL, token and proxy prefix included,
// would be longer than maxURLLength; then they are POSTed to the bare
// operation URL instead.
func BuildRequest(operationURL string, params Parameters, proxyURL, token string, maxURLLength int) (*hydrator.Request, error) {
	if maxURLLength <= 0 {
		maxURLLength = DefaultMaxURLLength
	}

	form, err := EncodeParameters(params)
	if err != nil {
		return nil, err
	}

	get := hydrator.Get(operationURL+"?"+form.Encode(), proxyURL, token)
	if len(get.Target()) <= maxURLLength {
		return get, nil
	}
	return hydrator.Post(operationURL, proxyURL, token, form), nil
}
