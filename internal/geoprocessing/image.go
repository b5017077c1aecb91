// ArcGIS Catalog - ArcGIS Server Service Discovery and Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arcgis-catalog

package geoprocessing

import (
	"net/url"
	"strconv"

	"github.com/tomtom215/arcgis-catalog/internal/arcgis"
)

// ImageParameters describe how a result map image is rendered. Zero fields
// are omitted and the server defaults apply.
type ImageParameters struct {
	BBox        *arcgis.Extent
	Width       int
	Height      int
	Format      string // png, png8, png24, jpg, gif
	DPI         int
	Transparent bool
	ImageSR     int
}

// Values encodes p as query parameters.
func (p ImageParameters) Values() url.Values {
	v := url.Values{}
	if p.BBox != nil {
		v.Set("bbox", formatFloat(p.BBox.XMin)+","+formatFloat(p.BBox.YMin)+","+formatFloat(p.BBox.XMax)+","+formatFloat(p.BBox.YMax))
		if p.BBox.SpatialReference != nil && p.BBox.SpatialReference.WKID != 0 {
			v.Set("bboxSR", strconv.Itoa(p.BBox.SpatialReference.WKID))
		}
	}
	if p.Width > 0 && p.Height > 0 {
		v.Set("size", strconv.Itoa(p.Width)+","+strconv.Itoa(p.Height))
	}
	if p.Format != "" {
		v.Set("format", p.Format)
	}
	if p.DPI > 0 {
		v.Set("dpi", strconv.Itoa(p.DPI))
	}
	if p.Transparent {
		v.Set("transparent", "true")
	}
	if p.ImageSR > 0 {
		v.Set("imageSR", strconv.Itoa(p.ImageSR))
	}
	return v
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// MapImage is a rendered result image.
type MapImage struct {
	Href   string         `json:"href"`
	Width  int            `json:"width"`
	Height int            `json:"height"`
	Extent *arcgis.Extent `json:"extent,omitempty"`
	Scale  float64        `json:"scale,omitempty"`
}

// resultImage is the payload of a result image request.
type resultImage struct {
	ParamName string `json:"paramName"`
	DataType  string `json:"dataType"`
	Value     struct {
		MapImage MapImage `json:"mapImage"`
	} `json:"value"`
}
