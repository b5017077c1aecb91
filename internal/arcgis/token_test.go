// ArcGIS Catalog - ArcGIS Server Service Discovery and Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arcgis-catalog

package arcgis

import (
	"errors"
	"testing"
	"time"
)

func TestTokenIsValid(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name  string
		token Token
		want  bool
	}{
		{"empty", Token{}, false},
		{"no expiry", Token{Value: "abc"}, true},
		{"future", Token{Value: "abc", Expires: now.Add(time.Hour)}, true},
		{"inside skew", Token{Value: "abc", Expires: now.Add(30 * time.Second)}, false},
		{"expired", Token{Value: "abc", Expires: now.Add(-time.Second)}, false},
	}

	for _, tt := range tests {
		if got := tt.token.IsValid(now, DefaultTokenSkew); got != tt.want {
			t.Errorf("%s: IsValid() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestCatalogWithToken(t *testing.T) {
	t.Parallel()

	svc := &MapService{}
	original := &Catalog{
		RootURL:  "http://x/rest/services",
		Folders:  []string{"A"},
		Services: []Service{svc},
	}
	original.SetToken(Token{Value: "old"})

	refreshed := original.WithToken(Token{Value: "new"})

	if refreshed == original {
		t.Fatal("WithToken returned the same instance")
	}
	if got := original.Token().Value; got != "old" {
		t.Errorf("original token = %q, want old", got)
	}
	if got := refreshed.Token().Value; got != "new" {
		t.Errorf("refreshed token = %q, want new", got)
	}
	if refreshed.Services[0] != Service(svc) {
		t.Error("WithToken should share service instances")
	}
	refreshed.Folders[0] = "B"
	if original.Folders[0] != "A" {
		t.Error("WithToken should copy slices")
	}
}

func TestRemoteError(t *testing.T) {
	t.Parallel()

	var err error = &RemoteError{Code: 498, Message: "Invalid token.", Details: []string{"expired"}}
	var remote *RemoteError
	if !errors.As(err, &remote) {
		t.Fatal("errors.As failed")
	}
	if !remote.IsTokenError() {
		t.Error("IsTokenError() = false for 498")
	}
	if got := err.Error(); got != "arcgis error 498: Invalid token. (expired)" {
		t.Errorf("Error() = %q", got)
	}
}
