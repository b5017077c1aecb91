// ArcGIS Catalog - ArcGIS Server Service Discovery and Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arcgis-catalog

package api

import (
	"github.com/tomtom215/arcgis-catalog/internal/arcgis"
	"github.com/tomtom215/arcgis-catalog/internal/geoprocessing"
)

// CatalogQuery is the query string of GET /catalog and GET /service.
// param tags name the query or path parameter in validation errors.
type CatalogQuery struct {
	URL   string `param:"url" validate:"required,arcgis_url"`
	Proxy string `param:"proxy" validate:"omitempty,arcgis_url"`
}

// CredentialsRequest is the body of POST /catalog and POST /service.
// Username and password must be supplied together or not at all.
type CredentialsRequest struct {
	URL      string `json:"url" validate:"required,arcgis_url"`
	Username string `json:"username" validate:"required_with=Password"`
	Password string `json:"password" validate:"required_with=Username"`
}

// TaskRequest is the body of POST /gp/execute and POST /gp/jobs.
type TaskRequest struct {
	TaskURL    string                   `json:"task_url" validate:"required,arcgis_url"`
	Parameters geoprocessing.Parameters `json:"parameters" validate:"dive,keys,gp_param,endkeys"`
}

// ResultRequest identifies one output parameter of a job.
type ResultRequest struct {
	JobID string `param:"jobID" validate:"required,max=256"`
	Param string `param:"param" validate:"required,gp_param"`
}

// ResultImageQuery is the query string of the result image endpoint.
type ResultImageQuery struct {
	ResultRequest
	BBox        *arcgis.Extent `param:"bbox"`
	Width       int            `param:"width" validate:"gte=0,lte=4096"`
	Height      int            `param:"height" validate:"gte=0,lte=4096"`
	Format      string         `param:"format" validate:"omitempty,oneof=png png8 png24 png32 jpg gif"`
	DPI         int            `param:"dpi" validate:"gte=0,lte=1200"`
	Transparent bool           `param:"transparent"`
	ImageSR     int            `param:"image_sr" validate:"gte=0"`
}

// imageParameters converts the query to runner image parameters.
func (q ResultImageQuery) imageParameters() geoprocessing.ImageParameters {
	return geoprocessing.ImageParameters{
		BBox:        q.BBox,
		Width:       q.Width,
		Height:      q.Height,
		Format:      q.Format,
		DPI:         q.DPI,
		Transparent: q.Transparent,
		ImageSR:     q.ImageSR,
	}
}
