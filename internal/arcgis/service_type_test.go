// ArcGIS Catalog - ArcGIS Server Service Discovery and Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arcgis-catalog

package arcgis

import "testing"

func TestDetectServiceType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		url    string
		want   ServiceType
		wantOK bool
	}{
		{"map", "http://x/rest/services/Base/MapServer", ServiceTypeMap, true},
		{"geocode", "http://x/rest/services/Loc/GeocodeServer?f=json", ServiceTypeGeocode, true},
		{"gp", "http://x/rest/services/Tools/GPServer", ServiceTypeGeoprocessing, true},
		{"geometry", "http://x/rest/services/Utilities/Geometry/GeometryServer", ServiceTypeGeometry, true},
		{"feature", "http://x/rest/services/Roads/FeatureServer", ServiceTypeFeature, true},
		{"mobile", "http://x/rest/services/Field/MobileServer", ServiceTypeMobile, true},
		{"case sensitive", "http://x/rest/services/Base/mapserver", "", false},
		{"unsupported", "http://x/rest/services/Imagery/ImageServer", "", false},
		// A feature service named after a map service resolves by priority.
		{"priority", "http://x/rest/services/MapServerMirror/FeatureServer", ServiceTypeMap, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := DetectServiceType(tt.url)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("DetectServiceType(%q) = (%q, %v), want (%q, %v)", tt.url, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestNewServiceCoversDispatchOrder(t *testing.T) {
	t.Parallel()

	for _, st := range DispatchOrder {
		svc := NewService(st)
		if svc == nil {
			t.Fatalf("NewService(%q) = nil", st)
		}
		if svc.Type() != st {
			t.Errorf("NewService(%q).Type() = %q", st, svc.Type())
		}
		if !st.IsSupported() {
			t.Errorf("%q.IsSupported() = false", st)
		}
	}
	if NewService("ImageServer") != nil {
		t.Error("NewService(ImageServer) should be nil")
	}
}

func TestGeoprocessingServiceTask(t *testing.T) {
	t.Parallel()

	buffer := &GPTask{Name: "Buffer"}
	svc := &GeoprocessingService{
		TaskNames: []string{"Clip", "Buffer"},
		Tasks:     []*GPTask{nil, buffer},
	}

	if got, ok := svc.Task("Buffer"); !ok || got != buffer {
		t.Errorf("Task(Buffer) = (%v, %v)", got, ok)
	}
	if _, ok := svc.Task("Clip"); ok {
		t.Error("Task(Clip) should miss for a placeholder entry")
	}
}

func TestJobStatusIsTerminal(t *testing.T) {
	t.Parallel()

	terminal := map[JobStatus]bool{
		JobStatusNew:        false,
		JobStatusSubmitted:  false,
		JobStatusWaiting:    false,
		JobStatusExecuting:  false,
		JobStatusCancelling: false,
		JobStatusDeleting:   false,
		JobStatusSucceeded:  true,
		JobStatusFailed:     true,
		JobStatusTimedOut:   true,
		JobStatusCancelled:  true,
		JobStatusDeleted:    true,
	}
	for status, want := range terminal {
		if got := status.IsTerminal(); got != want {
			t.Errorf("%s.IsTerminal() = %v, want %v", status, got, want)
		}
	}
}

func TestGPTaskRequiredInputs(t *testing.T) {
	t.Parallel()

	task := &GPTask{
		ExecutionType: ExecutionTypeAsynchronous,
		Parameters: []GPParameterInfo{
			{Name: "input1", Direction: ParameterDirectionInput, ParameterType: ParameterTypeRequired},
			{Name: "distance", Direction: ParameterDirectionInput, ParameterType: ParameterTypeOptional},
			{Name: "output", Direction: ParameterDirectionOutput, ParameterType: ParameterTypeDerived},
		},
	}

	got := task.RequiredInputs()
	if len(got) != 1 || got[0] != "input1" {
		t.Errorf("RequiredInputs() = %v, want [input1]", got)
	}
	if !task.IsAsynchronous() {
		t.Error("IsAsynchronous() = false")
	}
	if _, ok := task.Parameter("output"); !ok {
		t.Error("Parameter(output) not found")
	}
}
