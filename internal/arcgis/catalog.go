// ArcGIS Catalog - ArcGIS Server Service Discovery and Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arcgis-catalog

package arcgis

import "time"

// ServiceInfo is a pre-hydration service descriptor listed by a catalog node.
// Name may carry a "Folder/" prefix when listed inside a folder.
type ServiceInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// FailureKind classifies a skipped discovery item.
type FailureKind string

const (
	FailureFolder  FailureKind = "folder"
	FailureService FailureKind = "service"
	FailureTask    FailureKind = "task"
)

// DiscoveryFailure records an item that was skipped during a discovery pass.
// Skipped items never fail the pass; they are kept for logging and inspection.
type DiscoveryFailure struct {
	Kind  FailureKind `json:"kind"`
	URL   string      `json:"url"`
	Error string      `json:"error"`
}

// Catalog is one folder node of an ArcGIS Server REST catalog.
//
// Services holds the hydrated services of this node and all of its
// sub-folders, flattened in discovery order. It is populated once the
// recursive pass completes and is not modified afterwards; only the token is
// refreshed, by building a new Catalog through WithToken.
type Catalog struct {
	RootURL        string        `json:"rootUrl"`
	CurrentVersion float64       `json:"currentVersion"`
	Folders        []string      `json:"folders"`
	ServiceInfos   []ServiceInfo `json:"services"`
	ProxyURL       string        `json:"proxyUrl,omitempty"`

	Services []Service          `json:"-"`
	Failures []DiscoveryFailure `json:"-"`

	token tokenHolder
}

// Token returns the catalog's current token (zero for anonymous catalogs).
func (c *Catalog) Token() Token {
	return c.token.load()
}

// SetToken replaces the catalog's token.
func (c *Catalog) SetToken(t Token) {
	c.token.store(t)
}

// IsTokenValid reports whether the catalog holds a token that is still usable at now.
// Anonymous catalogs have no token and report false.
func (c *Catalog) IsTokenValid(now time.Time, skew time.Duration) bool {
	return c.Token().IsValid(now, skew)
}

// WithToken returns a copy of the catalog carrying t. The copy shares the
// service instances; callers propagate the token to them separately.
func (c *Catalog) WithToken(t Token) *Catalog {
	clone := &Catalog{
		RootURL:        c.RootURL,
		CurrentVersion: c.CurrentVersion,
		Folders:        append([]string(nil), c.Folders...),
		ServiceInfos:   append([]ServiceInfo(nil), c.ServiceInfos...),
		ProxyURL:       c.ProxyURL,
		Services:       append([]Service(nil), c.Services...),
		Failures:       append([]DiscoveryFailure(nil), c.Failures...),
	}
	clone.SetToken(t)
	return clone
}
