// ArcGIS Catalog - ArcGIS Server Service Discovery and Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arcgis-catalog

package arcgis

import "strings"

// ServiceType is the type tag ArcGIS Server puts in a service endpoint path.
type ServiceType string

const (
	ServiceTypeMap           ServiceType = "MapServer"
	ServiceTypeGeocode       ServiceType = "GeocodeServer"
	ServiceTypeGeoprocessing ServiceType = "GPServer"
	ServiceTypeGeometry      ServiceType = "GeometryServer"
	ServiceTypeFeature       ServiceType = "FeatureServer"
	ServiceTypeMobile        ServiceType = "MobileServer"
)

// DispatchOrder is the priority list used to resolve a service URL to a type.
// Matching is a case-sensitive substring test and the first match wins, so a
// URL must not legitimately contain more than one tag.
var DispatchOrder = []ServiceType{
	ServiceTypeMap,
	ServiceTypeGeocode,
	ServiceTypeGeoprocessing,
	ServiceTypeGeometry,
	ServiceTypeFeature,
	ServiceTypeMobile,
}

// DetectServiceType returns the first tag from DispatchOrder found in rawURL.
func DetectServiceType(rawURL string) (ServiceType, bool) {
	for _, t := range DispatchOrder {
		if strings.Contains(rawURL, string(t)) {
			return t, true
		}
	}
	return "", false
}

// IsSupported reports whether t is one of the six hydrated service kinds.
func (t ServiceType) IsSupported() bool {
	for _, known := range DispatchOrder {
		if t == known {
			return true
		}
	}
	return false
}

func (t ServiceType) String() string {
	return string(t)
}
