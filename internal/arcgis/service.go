// ArcGIS Catalog - ArcGIS Server Service Discovery and Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arcgis-catalog

package arcgis

import "time"

// Service is the closed set of hydrated service kinds. Implementations are
// the six *XxxService types in this package; values are always pointers.
type Service interface {
	Base() *ServiceBase
	Type() ServiceType
}

// ServiceBase holds the fields every service kind shares. URL, Name,
// ServiceType, CurrentVersion and ProxyURL are derived after hydration; they
// are not trusted from the payload.
type ServiceBase struct {
	URL            string      `json:"url"`
	Name           string      `json:"name"`
	ServiceType    ServiceType `json:"serviceType"`
	CurrentVersion float64     `json:"currentVersion"`
	ProxyURL       string      `json:"proxyUrl,omitempty"`

	token tokenHolder
}

// Base returns the shared fields.
func (b *ServiceBase) Base() *ServiceBase { return b }

// Token returns the service's current token.
func (b *ServiceBase) Token() Token { return b.token.load() }

// SetToken replaces the service's token in place.
func (b *ServiceBase) SetToken(t Token) { b.token.store(t) }

// IsTokenValid reports whether the service holds a usable token at now.
func (b *ServiceBase) IsTokenValid(now time.Time, skew time.Duration) bool {
	return b.Token().IsValid(now, skew)
}

// SpatialReference identifies a coordinate system.
type SpatialReference struct {
	WKID       int    `json:"wkid,omitempty"`
	LatestWKID int    `json:"latestWkid,omitempty"`
	WKT        string `json:"wkt,omitempty"`
}

// Extent is an envelope in a spatial reference.
type Extent struct {
	XMin             float64           `json:"xmin"`
	YMin             float64           `json:"ymin"`
	XMax             float64           `json:"xmax"`
	YMax             float64           `json:"ymax"`
	SpatialReference *SpatialReference `json:"spatialReference,omitempty"`
}

// LayerInfo describes a layer in a map, feature or mobile service.
type LayerInfo struct {
	ID                int     `json:"id"`
	Name              string  `json:"name"`
	Type              string  `json:"type,omitempty"`
	GeometryType      string  `json:"geometryType,omitempty"`
	ParentLayerID     int     `json:"parentLayerId"`
	DefaultVisibility bool    `json:"defaultVisibility"`
	SubLayerIDs       []int   `json:"subLayerIds"`
	MinScale          float64 `json:"minScale"`
	MaxScale          float64 `json:"maxScale"`
}

// TableInfo describes a standalone table.
type TableInfo struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Field describes a locator input or candidate field.
type Field struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Alias    string `json:"alias"`
	Required bool   `json:"required"`
	Length   int    `json:"length,omitempty"`
}

// MapService is a hydrated MapServer endpoint.
type MapService struct {
	ServiceBase
	MapName                   string            `json:"mapName"`
	ServiceDescription        string            `json:"serviceDescription"`
	Description               string            `json:"description"`
	CopyrightText             string            `json:"copyrightText"`
	Capabilities              string            `json:"capabilities"`
	Units                     string            `json:"units"`
	SupportedImageFormatTypes string            `json:"supportedImageFormatTypes"`
	SingleFusedMapCache       bool              `json:"singleFusedMapCache"`
	Layers                    []LayerInfo       `json:"layers"`
	Tables                    []TableInfo       `json:"tables"`
	SpatialReference          *SpatialReference `json:"spatialReference,omitempty"`
	InitialExtent             *Extent           `json:"initialExtent,omitempty"`
	FullExtent                *Extent           `json:"fullExtent,omitempty"`
}

func (*MapService) Type() ServiceType { return ServiceTypeMap }

// GeocodeService is a hydrated GeocodeServer endpoint.
type GeocodeService struct {
	ServiceBase
	ServiceDescription          string            `json:"serviceDescription"`
	Capabilities                string            `json:"capabilities"`
	AddressFields               []Field           `json:"addressFields"`
	SingleLineAddressField      *Field            `json:"singleLineAddressField,omitempty"`
	CandidateFields             []Field           `json:"candidateFields"`
	IntersectionCandidateFields []Field           `json:"intersectionCandidateFields"`
	SpatialReference            *SpatialReference `json:"spatialReference,omitempty"`
	LocatorProperties           map[string]any    `json:"locatorProperties,omitempty"`
}

func (*GeocodeService) Type() ServiceType { return ServiceTypeGeocode }

// GeometryService is a hydrated GeometryServer endpoint. The payload carries
// nothing beyond the shared fields.
type GeometryService struct {
	ServiceBase
}

func (*GeometryService) Type() ServiceType { return ServiceTypeGeometry }

// GeoprocessingService is a hydrated GPServer endpoint.
//
// Tasks is positionally aligned with TaskNames: a task that failed to hydrate
// is kept as a nil entry rather than dropped.
type GeoprocessingService struct {
	ServiceBase
	ServiceDescription  string    `json:"serviceDescription"`
	TaskNames           []string  `json:"tasks"`
	ExecutionType       string    `json:"executionType"`
	ResultMapServerName string    `json:"resultMapServerName"`
	MaximumRecords      int       `json:"maximumRecords"`
	Tasks               []*GPTask `json:"taskDetails,omitempty"`
}

func (*GeoprocessingService) Type() ServiceType { return ServiceTypeGeoprocessing }

// Task returns the hydrated task named name.
func (s *GeoprocessingService) Task(name string) (*GPTask, bool) {
	for i, taskName := range s.TaskNames {
		if taskName == name && i < len(s.Tasks) && s.Tasks[i] != nil {
			return s.Tasks[i], true
		}
	}
	return nil, false
}

// FeatureService is a hydrated FeatureServer endpoint.
type FeatureService struct {
	ServiceBase
	ServiceDescription          string            `json:"serviceDescription"`
	Capabilities                string            `json:"capabilities"`
	HasVersionedData            bool              `json:"hasVersionedData"`
	SupportsDisconnectedEditing bool              `json:"supportsDisconnectedEditing"`
	MaxRecordCount              int               `json:"maxRecordCount"`
	Units                       string            `json:"units"`
	Layers                      []LayerInfo       `json:"layers"`
	Tables                      []TableInfo       `json:"tables"`
	SpatialReference            *SpatialReference `json:"spatialReference,omitempty"`
	InitialExtent               *Extent           `json:"initialExtent,omitempty"`
	FullExtent                  *Extent           `json:"fullExtent,omitempty"`
}

func (*FeatureService) Type() ServiceType { return ServiceTypeFeature }

// MobileService is a hydrated MobileServer endpoint.
type MobileService struct {
	ServiceBase
	Description      string            `json:"description"`
	Layers           []LayerInfo       `json:"layers"`
	SpatialReference *SpatialReference `json:"spatialReference,omitempty"`
	FullExtent       *Extent           `json:"fullExtent,omitempty"`
	InitialExtent    *Extent           `json:"initialExtent,omitempty"`
}

func (*MobileService) Type() ServiceType { return ServiceTypeMobile }

// NewService returns an empty hydration target for t, or nil for unsupported tags.
func NewService(t ServiceType) Service {
	switch t {
	case ServiceTypeMap:
		return &MapService{}
	case ServiceTypeGeocode:
		return &GeocodeService{}
	case ServiceTypeGeoprocessing:
		return &GeoprocessingService{}
	case ServiceTypeGeometry:
		return &GeometryService{}
	case ServiceTypeFeature:
		return &FeatureService{}
	case ServiceTypeMobile:
		return &MobileService{}
	default:
		return nil
	}
}

// Compile-time checks for the closed variant set.
var (
	_ Service = (*MapService)(nil)
	_ Service = (*GeocodeService)(nil)
	_ Service = (*GeometryService)(nil)
	_ Service = (*GeoprocessingService)(nil)
	_ Service = (*FeatureService)(nil)
	_ Service = (*MobileService)(nil)
)
