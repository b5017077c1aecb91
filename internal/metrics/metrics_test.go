// ArcGIS Catalog - ArcGIS Server Service Discovery and Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arcgis-catalog

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestRecordCacheLookup tests hit/miss recording per index
func TestRecordCacheLookup(t *testing.T) {
	hitsBefore := testutil.ToFloat64(CacheHits.WithLabelValues(IndexServices))
	missesBefore := testutil.ToFloat64(CacheMisses.WithLabelValues(IndexServices))

	RecordCacheLookup(IndexServices, true)
	RecordCacheLookup(IndexServices, true)
	RecordCacheLookup(IndexServices, false)

	if got := testutil.ToFloat64(CacheHits.WithLabelValues(IndexServices)) - hitsBefore; got != 2 {
		t.Errorf("hits delta = %v, want 2", got)
	}
	if got := testutil.ToFloat64(CacheMisses.WithLabelValues(IndexServices)) - missesBefore; got != 1 {
		t.Errorf("misses delta = %v, want 1", got)
	}
}

// TestRecordTokenRefresh tests success and failure labels
func TestRecordTokenRefresh(t *testing.T) {
	okBefore := testutil.ToFloat64(TokenRefreshes.WithLabelValues("catalog", "success"))
	failBefore := testutil.ToFloat64(TokenRefreshes.WithLabelValues("catalog", "failure"))

	RecordTokenRefresh("catalog", nil)
	RecordTokenRefresh("catalog", errors.New("invalid credentials"))

	if got := testutil.ToFloat64(TokenRefreshes.WithLabelValues("catalog", "success")) - okBefore; got != 1 {
		t.Errorf("success delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(TokenRefreshes.WithLabelValues("catalog", "failure")) - failBefore; got != 1 {
		t.Errorf("failure delta = %v, want 1", got)
	}
}

// TestRecordDiscovery tests skipped item counters
func TestRecordDiscovery(t *testing.T) {
	foldersBefore := testutil.ToFloat64(DiscoverySkipped.WithLabelValues("folder"))
	tasksBefore := testutil.ToFloat64(DiscoverySkipped.WithLabelValues("task"))

	RecordDiscovery(250*time.Millisecond, 2, 0, 1)

	if got := testutil.ToFloat64(DiscoverySkipped.WithLabelValues("folder")) - foldersBefore; got != 2 {
		t.Errorf("folder delta = %v, want 2", got)
	}
	if got := testutil.ToFloat64(DiscoverySkipped.WithLabelValues("task")) - tasksBefore; got != 1 {
		t.Errorf("task delta = %v, want 1", got)
	}
}

// TestRecordAPIRequest tests API request metric recording
func TestRecordAPIRequest(t *testing.T) {
	tests := []struct {
		method   string
		endpoint string
		status   string
	}{
		{"GET", "/api/v1/catalog", "200"},
		{"POST", "/api/v1/gp/jobs", "202"},
		{"GET", "/api/v1/service", "502"},
	}

	for _, tt := range tests {
		before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues(tt.method, tt.endpoint, tt.status))
		RecordAPIRequest(tt.method, tt.endpoint, tt.status, 15*time.Millisecond)
		after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues(tt.method, tt.endpoint, tt.status))
		if after-before != 1 {
			t.Errorf("%s %s: delta = %v, want 1", tt.method, tt.endpoint, after-before)
		}
	}
}

// TestTrackActiveRequest tests the in-flight gauge
func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != before+1 {
		t.Errorf("after inc = %v, want %v", got, before+1)
	}
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != before {
		t.Errorf("after dec = %v, want %v", got, before)
	}
}
