// ArcGIS Catalog - ArcGIS Server Service Discovery and Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arcgis-catalog

package hydrator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/arcgis-catalog/internal/arcgis"
)

var (
	// ErrEmptyBody is returned when a resource responds with no payload or "null".
	ErrEmptyBody = errors.New("empty response body")

	// ErrDecode wraps JSON decoding failures.
	ErrDecode = errors.New("decode response")
)

// Hydrator fetches a resource and decodes it into target.
type Hydrator interface {
	Hydrate(ctx context.Context, req *Request, target any) error
}

// Fetcher returns the raw response for a resource.
type Fetcher interface {
	Fetch(ctx context.Context, req *Request) (*Response, error)
}

// TokenGenerator exchanges credentials for a token valid for serviceURL.
type TokenGenerator interface {
	GenerateToken(ctx context.Context, serviceURL string, creds arcgis.Credentials, proxyURL string) (arcgis.Token, error)
}

// Request describes one ArcGIS REST call.
type Request struct {
	URL      string
	ProxyURL string
	Token    string
	Method   string // GET when empty
	Form     url.Values
}

// Get builds a GET request.
func Get(rawURL, proxyURL, token string) *Request {
	return &Request{URL: rawURL, ProxyURL: proxyURL, Token: token, Method: http.MethodGet}
}

// Post builds a form POST request.
func Post(rawURL, proxyURL, token string, form url.Values) *Request {
	return &Request{URL: rawURL, ProxyURL: proxyURL, Token: token, Method: http.MethodPost, Form: form}
}

// HTTPMethod returns the request method, defaulting to GET.
func (r *Request) HTTPMethod() string {
	if r.Method == "" {
		return http.MethodGet
	}
	return r.Method
}

// Target is the URL actually sent: the token is appended for GET requests and
// the result is wrapped by the proxy, if any.
func (r *Request) Target() string {
	target := r.URL
	if r.Token != "" && r.HTTPMethod() == http.MethodGet {
		target = arcgis.AddQueryParam(target, "token", r.Token)
	}
	return arcgis.WithProxy(r.ProxyURL, target)
}

// Body is the encoded POST body, including the token. Empty for GET.
func (r *Request) Body() string {
	if r.HTTPMethod() != http.MethodPost {
		return ""
	}
	form := url.Values{}
	for k, v := range r.Form {
		form[k] = append([]string(nil), v...)
	}
	if r.Token != "" {
		form.Set("token", r.Token)
	}
	return form.Encode()
}

// String identifies the request in logs without leaking the token.
func (r *Request) String() string {
	s := r.HTTPMethod() + " " + arcgis.StripQuery(r.URL)
	if r.ProxyURL != "" {
		s += " via " + r.ProxyURL
	}
	return s
}

// Response is a successful raw response.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// StatusError is a non-2xx HTTP response.
type StatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return fmt.Sprintf("unexpected status %d from %s: %s", e.StatusCode, e.URL, body)
}

// HydrateFromJSON decodes an already-fetched ArcGIS JSON body into target.
// An {"error":{...}} envelope is returned as *arcgis.RemoteError.
func HydrateFromJSON(raw []byte, target any) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ErrEmptyBody
	}

	if raw[0] == '{' {
		var envelope arcgis.ErrorEnvelope
		// Payloads whose "error" member has another shape are not envelopes.
		if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error != nil {
			return envelope.Error
		}
	}

	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return nil
}

// Hydrate is a typed convenience wrapper over Hydrator.Hydrate.
func Hydrate[T any](ctx context.Context, h Hydrator, req *Request) (*T, error) {
	var target T
	if err := h.Hydrate(ctx, req, &target); err != nil {
		return nil, err
	}
	return &target, nil
}

// IsRemoteError reports whether err carries an ArcGIS error envelope.
func IsRemoteError(err error) bool {
	var remote *arcgis.RemoteError
	return errors.As(err, &remote)
}
