// ArcGIS Catalog - ArcGIS Server Service Discovery and Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arcgis-catalog

package api

import (
	"net/http"

	"github.com/tomtom215/arcgis-catalog/internal/arcgis"
)

// ServiceEnvelope wraps a hydrated service with its kind so clients can
// decode the payload without sniffing fields.
type ServiceEnvelope struct {
	Type    arcgis.ServiceType `json:"type"`
	Service arcgis.Service     `json:"service"`
}

// CatalogView is the catalog payload. Hydrated services are summarized by
// URL and kind; fetch one through GET /service for its full description.
type CatalogView struct {
	*arcgis.Catalog
	Hydrated []ServiceSummary          `json:"hydrated"`
	Failures []arcgis.DiscoveryFailure `json:"failures,omitempty"`
}

// ServiceSummary names one hydrated service of a catalog.
type ServiceSummary struct {
	URL  string             `json:"url"`
	Name string             `json:"name"`
	Type arcgis.ServiceType `json:"type"`
}

func newCatalogView(cat *arcgis.Catalog) CatalogView {
	view := CatalogView{
		Catalog:  cat,
		Hydrated: make([]ServiceSummary, 0, len(cat.Services)),
		Failures: cat.Failures,
	}
	for _, svc := range cat.Services {
		base := svc.Base()
		view.Hydrated = append(view.Hydrated, ServiceSummary{URL: base.URL, Name: base.Name, Type: svc.Type()})
	}
	return view
}

// GetCatalog returns the catalog at ?url=, discovering it on a miss.
// An optional ?proxy= routes discovery through a proxy for this call only.
func (h *Handler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	q := CatalogQuery{
		URL:   r.URL.Query().Get("url"),
		Proxy: r.URL.Query().Get("proxy"),
	}
	if !validateRequest(rw, &q) {
		return
	}

	cat, err := h.catalogs.GetCatalogViaProxy(r.Context(), q.URL, q.Proxy)
	if err != nil {
		respondError(rw, r, err)
		return
	}
	rw.Success(newCatalogView(cat))
}

// PostCatalog returns the catalog at the body's url using a token obtained
// from its username and password. A cached catalog with a stale token is
// refreshed in place.
func (h *Handler) PostCatalog(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req CredentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if !validateRequest(rw, &req) {
		return
	}

	cat, err := h.catalogs.GetCatalogWithCredentials(r.Context(), req.URL, req.Username, req.Password)
	if err != nil {
		respondError(rw, r, err)
		return
	}
	rw.Success(newCatalogView(cat))
}

// GetService returns the service at ?url=. Services indexed by an earlier
// catalog discovery are served without a fetch.
func (h *Handler) GetService(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	q := CatalogQuery{URL: r.URL.Query().Get("url")}
	if !validateRequest(rw, &q) {
		return
	}

	svc, err := h.catalogs.GetService(r.Context(), q.URL)
	if err != nil {
		respondError(rw, r, err)
		return
	}
	rw.Success(ServiceEnvelope{Type: svc.Type(), Service: svc})
}

// PostService returns the service at the body's url using credentials.
func (h *Handler) PostService(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req CredentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if !validateRequest(rw, &req) {
		return
	}

	svc, err := h.catalogs.GetServiceWithCredentials(r.Context(), req.URL, req.Username, req.Password)
	if err != nil {
		respondError(rw, r, err)
		return
	}
	rw.Success(ServiceEnvelope{Type: svc.Type(), Service: svc})
}
