// ArcGIS Catalog - ArcGIS Server Service Discovery and Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arcgis-catalog

package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/arcgis-catalog/internal/config"
	"github.com/tomtom215/arcgis-catalog/internal/logging"
)

func TestNewChiMiddleware_DefaultConfig(t *testing.T) {
	t.Parallel()

	m := NewChiMiddleware(nil)
	if m.config == nil {
		t.Fatal("config is nil")
	}
	if len(m.config.CORSAllowedOrigins) != 0 {
		t.Errorf("CORSAllowedOrigins = %v, want []", m.config.CORSAllowedOrigins)
	}
	if m.config.CORSMaxAge != 86400 {
		t.Errorf("CORSMaxAge = %d, want 86400", m.config.CORSMaxAge)
	}
}

func TestChiMiddlewareConfigFromSecurity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		sec        *config.SecurityConfig
		wantReqs   int
		wantWindow time.Duration
		wantOff    bool
		wantOrigin int
	}{
		{"nil", nil, 100, time.Minute, false, 0},
		{"zero values keep defaults", &config.SecurityConfig{}, 100, time.Minute, false, 0},
		{
			"overrides",
			&config.SecurityConfig{RateLimitReqs: 5, RateLimitWindow: time.Second, RateLimitDisabled: true, CORSOrigins: []string{"https://a.example.com"}},
			5, time.Second, true, 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := ChiMiddlewareConfigFromSecurity(tt.sec)
			if cfg.RateLimitRequests != tt.wantReqs || cfg.RateLimitWindow != tt.wantWindow {
				t.Errorf("limit = %d/%v, want %d/%v", cfg.RateLimitRequests, cfg.RateLimitWindow, tt.wantReqs, tt.wantWindow)
			}
			if cfg.RateLimitDisabled != tt.wantOff {
				t.Errorf("RateLimitDisabled = %v, want %v", cfg.RateLimitDisabled, tt.wantOff)
			}
			if len(cfg.CORSAllowedOrigins) != tt.wantOrigin {
				t.Errorf("CORSAllowedOrigins = %v", cfg.CORSAllowedOrigins)
			}
		})
	}
}

func TestRateLimitCustom(t *testing.T) {
	t.Parallel()

	t.Run("limits and writes the envelope", func(t *testing.T) {
		t.Parallel()
		m := NewChiMiddleware(&ChiMiddlewareConfig{})
		handler := m.RateLimitCustom(RateLimitConfig{Requests: 2, Window: time.Minute})(
			http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			}),
		)

		var last *httptest.ResponseRecorder
		for i := 0; i < 3; i++ {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = "192.0.2.10:5000"
			last = httptest.NewRecorder()
			handler.ServeHTTP(last, req)
		}

		if last.Code != http.StatusTooManyRequests {
			t.Fatalf("third request status = %d, want 429", last.Code)
		}
		var resp APIResponse
		if err := json.Unmarshal(last.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.Success || resp.Error == nil || resp.Error.Code != ErrCodeTooManyRequests {
			t.Errorf("response = %+v", resp)
		}
	})

	t.Run("disabled is a no-op", func(t *testing.T) {
		t.Parallel()
		m := NewChiMiddleware(&ChiMiddlewareConfig{RateLimitDisabled: true})
		handler := m.RateLimitCustom(RateLimitConfig{Requests: 1, Window: time.Minute})(
			http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			}),
		)

		for i := 0; i < 5; i++ {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			if rec.Code != http.StatusOK {
				t.Fatalf("request %d status = %d", i, rec.Code)
			}
		}
	})
}

func TestRequestIDWithLogging(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		incoming string
	}{
		{"generates an id", ""},
		{"keeps the caller's id", "req-from-client"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var seenRequestID, seenCorrelationID string
			handler := RequestIDWithLogging()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				seenRequestID = logging.RequestIDFromContext(r.Context())
				seenCorrelationID = logging.CorrelationIDFromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.incoming != "" {
				req.Header.Set("X-Request-ID", tt.incoming)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if seenRequestID == "" || seenCorrelationID == "" {
				t.Fatalf("ids = (%q, %q)", seenRequestID, seenCorrelationID)
			}
			if tt.incoming != "" && seenRequestID != tt.incoming {
				t.Errorf("request id = %q, want %q", seenRequestID, tt.incoming)
			}
			if rec.Header().Get("X-Request-ID") != seenRequestID {
				t.Errorf("response header = %q, want %q", rec.Header().Get("X-Request-ID"), seenRequestID)
			}
		})
	}
}

func TestAPISecurityHeaders(t *testing.T) {
	t.Parallel()

	handler := APISecurityHeaders()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Header().Get("Strict-Transport-Security") != "" {
		t.Error("HSTS set on plain HTTP")
	}
	if rec.Header().Get("Cache-Control") != "no-store" {
		t.Errorf("Cache-Control = %q", rec.Header().Get("Cache-Control"))
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Header().Get("Strict-Transport-Security") == "" {
		t.Error("HSTS missing behind TLS proxy")
	}
}

func TestCORSPreflight(t *testing.T) {
	t.Parallel()

	m := NewChiMiddleware(&ChiMiddlewareConfig{
		CORSAllowedOrigins: []string{"https://maps.example.com"},
		CORSAllowedMethods: []string{"GET", "POST"},
		RateLimitDisabled:  true,
	})
	handler := m.CORS()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/catalog", nil)
	req.Header.Set("Origin", "https://maps.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://maps.example.com" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}
