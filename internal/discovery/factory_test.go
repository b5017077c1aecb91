// ArcGIS Catalog - ArcGIS Server Service Discovery and Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arcgis-catalog

package discovery

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/arcgis-catalog/internal/arcgis"
	"github.com/tomtom215/arcgis-catalog/internal/config"
	"github.com/tomtom215/arcgis-catalog/internal/hydrator"
)

const root = "http://gis.example.com/arcgis/rest/services"

// mockHydrator serves canned JSON keyed by request URL and counts calls.
type mockHydrator struct {
	mu        sync.Mutex
	responses map[string]string
	calls     map[string]int
	requests  []hydrator.Request
}

func newMockHydrator(responses map[string]string) *mockHydrator {
	return &mockHydrator{responses: responses, calls: make(map[string]int)}
}

func (m *mockHydrator) Hydrate(_ context.Context, req *hydrator.Request, target any) error {
	m.mu.Lock()
	m.calls[req.URL]++
	m.requests = append(m.requests, *req)
	body, ok := m.responses[req.URL]
	m.mu.Unlock()

	if !ok {
		return &hydrator.StatusError{StatusCode: 404, URL: req.URL}
	}
	return hydrator.HydrateFromJSON([]byte(body), target)
}

func (m *mockHydrator) total() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		n += c
	}
	return n
}

type mockTokens struct {
	calls int
	token arcgis.Token
}

func (m *mockTokens) GenerateToken(context.Context, string, arcgis.Credentials, string) (arcgis.Token, error) {
	m.calls++
	return m.token, nil
}

// sampleServer is a catalog with two folders, a root-level map service and a
// geoprocessing service with one broken task.
func sampleServer() map[string]string {
	return map[string]string{
		root + "?f=json": `{"currentVersion":10.81,"folders":["Hydro","Transport"],"services":[
			{"name":"Basemap","type":"MapServer"},
			{"name":"Tools","type":"GPServer"},
			{"name":"Imagery","type":"ImageServer"}]}`,
		root + "/Hydro?f=json": `{"currentVersion":10.81,"folders":[],"services":[
			{"name":"Hydro/Rivers","type":"MapServer"},
			{"name":"Hydro/Gauges","type":"FeatureServer"}]}`,
		root + "/Transport?f=json": `{"currentVersion":10.81,"folders":[],"services":[
			{"name":"Transport/Roads","type":"MapServer"},
			{"name":"Transport/Locator","type":"GeocodeServer"}]}`,
		root + "/Basemap/MapServer?f=json":               `{"currentVersion":10.81,"mapName":"Basemap","layers":[]}`,
		root + "/Tools/GPServer?f=json":                  `{"currentVersion":10.81,"tasks":["Buffer","Clip"],"executionType":"esriExecutionTypeAsynchronous"}`,
		root + "/Tools/GPServer/Buffer?f=json":           `{"name":"Buffer","executionType":"esriExecutionTypeAsynchronous","parameters":[{"name":"input1","dataType":"GPString","direction":"esriGPParameterDirectionInput","parameterType":"esriGPParameterTypeRequired"}]}`,
		root + "/Hydro/Rivers/MapServer?f=json":          `{"mapName":"Rivers","layers":[{"id":0,"name":"Rivers"}]}`,
		root + "/Hydro/Gauges/FeatureServer?f=json":      `{"layers":[{"id":0,"name":"Gauges"}]}`,
		root + "/Transport/Roads/MapServer?f=json":       `{"mapName":"Roads"}`,
		root + "/Transport/Locator/GeocodeServer?f=json": `{"addressFields":[{"name":"Street","type":"esriFieldTypeString"}]}`,
	}
}

func serviceURLs(services []arcgis.Service) []string {
	urls := make([]string, len(services))
	for i, s := range services {
		urls[i] = s.Base().URL
	}
	return urls
}

func newTestFactory(h hydrator.Hydrator, tokens hydrator.TokenGenerator) *Factory {
	return NewFactory(h, tokens, &config.DiscoveryConfig{MaxConcurrency: 3})
}

func TestCreateCatalogOrdering(t *testing.T) {
	t.Parallel()

	factory := newTestFactory(newMockHydrator(sampleServer()), nil)
	cat, err := factory.CreateCatalog(context.Background(), root, Options{})
	if err != nil {
		t.Fatalf("CreateCatalog() error = %v", err)
	}

	want := []string{
		root + "/Hydro/Rivers/MapServer",
		root + "/Hydro/Gauges/FeatureServer",
		root + "/Transport/Roads/MapServer",
		root + "/Transport/Locator/GeocodeServer",
		root + "/Basemap/MapServer",
		root + "/Tools/GPServer",
	}
	if got := serviceURLs(cat.Services); !reflect.DeepEqual(got, want) {
		t.Fatalf("services = %v\nwant %v", got, want)
	}

	if cat.RootURL != root {
		t.Errorf("RootURL = %q, want %q", cat.RootURL, root)
	}
	rivers := cat.Services[0].(*arcgis.MapService)
	if rivers.Name != "Rivers" || rivers.ServiceType != arcgis.ServiceTypeMap || rivers.CurrentVersion != 10.81 {
		t.Errorf("derived fields not populated: %+v", &rivers.ServiceBase)
	}
}

func TestCreateCatalogIsIdempotent(t *testing.T) {
	t.Parallel()

	factory := newTestFactory(newMockHydrator(sampleServer()), nil)
	first, err := factory.CreateCatalog(context.Background(), root, Options{})
	if err != nil {
		t.Fatalf("first CreateCatalog() error = %v", err)
	}
	second, err := factory.CreateCatalog(context.Background(), root, Options{})
	if err != nil {
		t.Fatalf("second CreateCatalog() error = %v", err)
	}

	if !reflect.DeepEqual(serviceURLs(first.Services), serviceURLs(second.Services)) {
		t.Errorf("service order differs between runs")
	}
	for i := range first.Services {
		a, _ := json.Marshal(first.Services[i])
		b, _ := json.Marshal(second.Services[i])
		if string(a) != string(b) {
			t.Errorf("service %d differs:\n%s\n%s", i, a, b)
		}
	}
	if !reflect.DeepEqual(first.Folders, second.Folders) || !reflect.DeepEqual(first.ServiceInfos, second.ServiceInfos) {
		t.Error("catalog metadata differs between runs")
	}
}

func TestCreateCatalogToleratesFolderFailure(t *testing.T) {
	t.Parallel()

	responses := sampleServer()
	responses[root+"?f=json"] = `{"folders":["A","B"],"services":[{"name":"Basemap","type":"MapServer"}]}`
	responses[root+"/B?f=json"] = `{"services":[{"name":"B/Parcels","type":"MapServer"}]}`
	responses[root+"/B/Parcels/MapServer?f=json"] = `{"mapName":"Parcels"}`

	factory := newTestFactory(newMockHydrator(responses), nil)
	cat, err := factory.CreateCatalog(context.Background(), root, Options{})
	if err != nil {
		t.Fatalf("CreateCatalog() error = %v", err)
	}

	want := []string{root + "/B/Parcels/MapServer", root + "/Basemap/MapServer"}
	if got := serviceURLs(cat.Services); !reflect.DeepEqual(got, want) {
		t.Errorf("services = %v, want %v", got, want)
	}
	if len(cat.Failures) != 1 || cat.Failures[0].Kind != arcgis.FailureFolder || cat.Failures[0].URL != root+"/A" {
		t.Errorf("failures = %+v", cat.Failures)
	}
}

func TestCreateCatalogSkipsFailedAndUnsupportedServices(t *testing.T) {
	t.Parallel()

	responses := sampleServer()
	delete(responses, root+"/Basemap/MapServer?f=json")

	factory := newTestFactory(newMockHydrator(responses), nil)
	cat, err := factory.CreateCatalog(context.Background(), root, Options{})
	if err != nil {
		t.Fatalf("CreateCatalog() error = %v", err)
	}

	for _, svc := range cat.Services {
		if svc.Base().Name == "Basemap" || svc.Base().Name == "Imagery" {
			t.Errorf("unexpected service %s", svc.Base().URL)
		}
	}

	var serviceFailures int
	for _, f := range cat.Failures {
		switch f.Kind {
		case arcgis.FailureService:
			serviceFailures++
			if f.URL != root+"/Basemap/MapServer" {
				t.Errorf("failure url = %q", f.URL)
			}
		case arcgis.FailureFolder:
			t.Errorf("unexpected folder failure %+v", f)
		}
	}
	if serviceFailures != 1 {
		t.Errorf("service failures = %d, want 1 (unsupported types are not failures)", serviceFailures)
	}
}

func TestCreateCatalogKeepsTaskPlaceholders(t *testing.T) {
	t.Parallel()

	factory := newTestFactory(newMockHydrator(sampleServer()), nil)
	cat, err := factory.CreateCatalog(context.Background(), root, Options{})
	if err != nil {
		t.Fatalf("CreateCatalog() error = %v", err)
	}

	var gp *arcgis.GeoprocessingService
	for _, svc := range cat.Services {
		if s, ok := svc.(*arcgis.GeoprocessingService); ok {
			gp = s
		}
	}
	if gp == nil {
		t.Fatal("geoprocessing service not discovered")
	}
	if len(gp.Tasks) != len(gp.TaskNames) {
		t.Fatalf("tasks = %d, names = %d", len(gp.Tasks), len(gp.TaskNames))
	}
	if gp.Tasks[0] == nil || gp.Tasks[0].URL != root+"/Tools/GPServer/Buffer" {
		t.Errorf("Buffer task = %+v", gp.Tasks[0])
	}
	if gp.Tasks[1] != nil {
		t.Errorf("Clip task = %+v, want nil placeholder", gp.Tasks[1])
	}
	if _, ok := gp.Task("Clip"); ok {
		t.Error("Task(Clip) should not resolve a placeholder")
	}

	var taskFailures int
	for _, f := range cat.Failures {
		if f.Kind == arcgis.FailureTask {
			taskFailures++
		}
	}
	if taskFailures != 1 {
		t.Errorf("task failures = %d, want 1", taskFailures)
	}
}

func TestCreateCatalogRootFailureIsFatal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		responses map[string]string
		url       string
		wantErr   error
	}{
		{"unreachable root", map[string]string{}, root, nil},
		{"null root", map[string]string{root + "?f=json": "null"}, root, hydrator.ErrEmptyBody},
		{"empty url", nil, "  ", ErrEmptyURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			factory := newTestFactory(newMockHydrator(tt.responses), nil)
			cat, err := factory.CreateCatalog(context.Background(), tt.url, Options{})
			if err == nil || cat != nil {
				t.Fatalf("CreateCatalog() = %v, %v; want error", cat, err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateCatalogRemoteErrorIsFatal(t *testing.T) {
	t.Parallel()

	h := newMockHydrator(map[string]string{root + "?f=json": `{"error":{"code":499,"message":"Token Required"}}`})
	_, err := newTestFactory(h, nil).CreateCatalog(context.Background(), root, Options{})
	var remote *arcgis.RemoteError
	if !errors.As(err, &remote) || !remote.IsTokenError() {
		t.Errorf("error = %v, want token RemoteError", err)
	}
}

func TestCreateCatalogPerCallOptions(t *testing.T) {
	t.Parallel()

	h := newMockHydrator(sampleServer())
	tokens := &mockTokens{token: arcgis.Token{Value: "tok-1"}}
	factory := newTestFactory(h, tokens)

	cat, err := factory.CreateCatalog(context.Background(), root, Options{
		ProxyURL:    "http://proxy.example.com/proxy.ashx",
		Credentials: arcgis.Credentials{Username: "u", Password: "p"},
	})
	if err != nil {
		t.Fatalf("CreateCatalog() error = %v", err)
	}
	if tokens.calls != 1 {
		t.Errorf("token exchanges = %d, want 1", tokens.calls)
	}
	if cat.Token().Value != "tok-1" || cat.ProxyURL != "http://proxy.example.com/proxy.ashx" {
		t.Errorf("catalog token/proxy = %q/%q", cat.Token().Value, cat.ProxyURL)
	}
	for _, svc := range cat.Services {
		base := svc.Base()
		if base.Token().Value != "tok-1" || base.ProxyURL != cat.ProxyURL {
			t.Errorf("%s token/proxy = %q/%q", base.URL, base.Token().Value, base.ProxyURL)
		}
	}
	for _, req := range h.requests {
		if req.ProxyURL != cat.ProxyURL || req.Token != "tok-1" {
			t.Errorf("request %s carried proxy=%q token=%q", req.URL, req.ProxyURL, req.Token)
		}
	}

	// A later anonymous call on the same factory is not affected.
	anon, err := factory.CreateCatalog(context.Background(), root, Options{})
	if err != nil {
		t.Fatalf("anonymous CreateCatalog() error = %v", err)
	}
	if anon.ProxyURL != "" || anon.Token().Value != "" {
		t.Errorf("anonymous catalog inherited proxy/token: %q/%q", anon.ProxyURL, anon.Token().Value)
	}
}

func TestCreateCatalogCredentialsWithoutGenerator(t *testing.T) {
	t.Parallel()

	factory := newTestFactory(newMockHydrator(sampleServer()), nil)
	_, err := factory.CreateCatalog(context.Background(), root, Options{Credentials: arcgis.Credentials{Username: "u", Password: "p"}})
	if !errors.Is(err, ErrNoTokenGenerator) {
		t.Errorf("error = %v, want ErrNoTokenGenerator", err)
	}
}

func TestCreateService(t *testing.T) {
	t.Parallel()

	h := newMockHydrator(sampleServer())
	factory := newTestFactory(h, nil)
	ctx := context.Background()

	svc, err := factory.CreateService(ctx, root+"/Basemap/MapServer", Options{CurrentVersion: 11.2})
	if err != nil {
		t.Fatalf("CreateService() error = %v", err)
	}
	base := svc.Base()
	if svc.Type() != arcgis.ServiceTypeMap || base.Name != "Basemap" || base.URL != root+"/Basemap/MapServer" || base.CurrentVersion != 11.2 {
		t.Errorf("service = %+v", base)
	}

	// An existing f parameter is kept, and the identity URL has no query.
	svc, err = factory.CreateService(ctx, root+"/Basemap/MapServer?f=json", Options{})
	if err != nil {
		t.Fatalf("CreateService(f=json) error = %v", err)
	}
	if svc.Base().URL != root+"/Basemap/MapServer" {
		t.Errorf("URL = %q", svc.Base().URL)
	}
	if svc.Base().CurrentVersion != 10.81 {
		t.Errorf("CurrentVersion = %v, want payload value", svc.Base().CurrentVersion)
	}

	if _, err := factory.CreateService(ctx, root+"/Imagery/ImageServer", Options{}); !errors.Is(err, ErrUnsupportedServiceType) {
		t.Errorf("ImageServer error = %v, want ErrUnsupportedServiceType", err)
	}
	if _, err := factory.CreateService(ctx, "", Options{}); !errors.Is(err, ErrEmptyURL) {
		t.Errorf("empty url error = %v, want ErrEmptyURL", err)
	}
	if _, err := factory.CreateService(ctx, root+"/Missing/MapServer", Options{}); err == nil {
		t.Error("missing service: expected error")
	}
}

func TestCreateServiceGeoprocessing(t *testing.T) {
	t.Parallel()

	h := newMockHydrator(sampleServer())
	svc, err := newTestFactory(h, nil).CreateService(context.Background(), root+"/Tools/GPServer", Options{})
	if err != nil {
		t.Fatalf("CreateService() error = %v", err)
	}
	gp, ok := svc.(*arcgis.GeoprocessingService)
	if !ok {
		t.Fatalf("type = %T", svc)
	}
	task, ok := gp.Task("Buffer")
	if !ok {
		t.Fatal("Buffer task missing")
	}
	if len(task.RequiredInputs()) != 1 {
		t.Errorf("required inputs = %v", task.RequiredInputs())
	}
	if h.calls[root+"/Tools/GPServer/Clip?f=json"] != 1 {
		t.Errorf("Clip fetched %d times", h.calls[root+"/Tools/GPServer/Clip?f=json"])
	}
}

func TestCreateCatalogCountsRequests(t *testing.T) {
	t.Parallel()

	h := newMockHydrator(sampleServer())
	if _, err := newTestFactory(h, nil).CreateCatalog(context.Background(), root, Options{}); err != nil {
		t.Fatalf("CreateCatalog() error = %v", err)
	}
	// 3 catalogs + 6 supported services + 2 tasks. ImageServer is never fetched.
	if got := h.total(); got != 11 {
		t.Errorf("hydrator calls = %d, want 11", got)
	}
}
