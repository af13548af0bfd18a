package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	apperrors "github.com/osmtree/osmtree/pkg/errors"
	"github.com/osmtree/osmtree/pkg/integrations"
	"github.com/osmtree/osmtree/pkg/integrations/nominatim"
	"github.com/osmtree/osmtree/pkg/integrations/overpass"
)

type fakeRelations struct {
	elements map[string]overpass.Element
	err      error
	calls    atomic.Int32
	release  chan struct{}
}

func (f *fakeRelations) FetchRelations(_ context.Context, ids []string, _ overpass.Detail, _ bool) (*overpass.Response, error) {
	f.calls.Add(1)
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	resp := &overpass.Response{}
	for _, id := range ids {
		if e, ok := f.elements[id]; ok {
			resp.Elements = append(resp.Elements, e)
		}
	}
	if len(resp.Elements) == 0 {
		return nil, fmt.Errorf("fetch relations: %w", integrations.ErrEmptyResult)
	}
	return resp, nil
}

type fakeSearch struct {
	places []nominatim.Place
}

func (f *fakeSearch) Search(_ context.Context, q string, _ bool) ([]nominatim.Place, error) {
	if err := apperrors.ValidateQuery(q); err != nil {
		return nil, err
	}
	return f.places, nil
}

func berlin() overpass.Element {
	return overpass.Element{
		Type:   "relation",
		ID:     62422,
		Tags:   map[string]string{"name": "Berlin", "type": "boundary", "admin_level": "4"},
		Bounds: &overpass.Bounds{MinLat: 52.3, MinLon: 13.0, MaxLat: 52.7, MaxLon: 13.8},
		Members: []overpass.Member{{Type: "way", Ref: 1, Role: "outer", Geometry: []overpass.LatLon{
			{Lat: 52.3, Lon: 13.0}, {Lat: 52.3, Lon: 13.8}, {Lat: 52.7, Lon: 13.8}, {Lat: 52.3, Lon: 13.0},
		}}},
	}
}

func newTestServer(t *testing.T, rel *fakeRelations) *httptest.Server {
	t.Helper()
	if rel == nil {
		rel = &fakeRelations{elements: map[string]overpass.Element{"62422": berlin()}}
	}
	s := New(Options{
		Relations: rel,
		Search: &fakeSearch{places: []nominatim.Place{
			{OSMType: "relation", OSMID: 62422, DisplayName: "Berlin, Deutschland", AddressType: "state"},
			{OSMType: "node", OSMID: 240109189, DisplayName: "Berlin", AddressType: "city"},
		}},
		Logger: log.New(io.Discard),
	})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp, body
}

func decodeError(t *testing.T, body []byte) errorDetail {
	t.Helper()
	var e errorBody
	if err := json.Unmarshal(body, &e); err != nil {
		t.Fatalf("error body %q: %v", body, err)
	}
	return e.Error
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, nil)
	resp, body := get(t, ts.URL+"/healthz")
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), `"status":"ok"`) {
		t.Errorf("GET /healthz = %d %s", resp.StatusCode, body)
	}
	if _, err := uuid.Parse(resp.Header.Get(RequestIDHeader)); err != nil {
		t.Errorf("request id %q is not a uuid", resp.Header.Get(RequestIDHeader))
	}
}

func TestRequestIDReused(t *testing.T) {
	ts := newTestServer(t, nil)
	id := uuid.NewString()

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
	req.Header.Set(RequestIDHeader, id)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get(RequestIDHeader); got != id {
		t.Errorf("request id = %q, want %q", got, id)
	}

	req.Header.Set(RequestIDHeader, "<script>")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get(RequestIDHeader); got == "<script>" {
		t.Error("malformed request id should be replaced")
	}
}

func TestSearch(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, body := get(t, ts.URL+"/api/search?q=Berlin")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	var hits []searchHit
	if err := json.Unmarshal(body, &hits); err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].Label != "Berlin, Deutschland (state-relation:62422)" {
		t.Errorf("hits = %+v", hits)
	}

	_, body = get(t, ts.URL+"/api/search?q=Berlin&all=true")
	_ = json.Unmarshal(body, &hits)
	if len(hits) != 2 {
		t.Errorf("all=true hits = %d, want 2", len(hits))
	}
}

func TestSearchErrors(t *testing.T) {
	ts := newTestServer(t, nil)
	for _, path := range []string{"/api/search?q=", "/api/search?q=x&all=maybe"} {
		resp, body := get(t, ts.URL+path)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("GET %s = %d, want 400", path, resp.StatusCode)
		}
		if e := decodeError(t, body); e.Code != apperrors.ErrCodeInvalidInput || e.RequestID == "" {
			t.Errorf("GET %s error = %+v", path, e)
		}
	}
}

func TestRelation(t *testing.T) {
	ts := newTestServer(t, nil)
	resp, body := get(t, ts.URL+"/api/relations/62422?detail=tags")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	var e overpass.Element
	if err := json.Unmarshal(body, &e); err != nil {
		t.Fatal(err)
	}
	if e.Name() != "Berlin" || e.Bounds == nil {
		t.Errorf("element = %+v", e)
	}
}

func TestRelationErrors(t *testing.T) {
	tests := []struct {
		name   string
		rel    *fakeRelations
		path   string
		status int
		code   apperrors.Code
	}{
		{"bad id", nil, "/api/relations/abc", http.StatusBadRequest, apperrors.ErrCodeInvalidID},
		{"bad detail", nil, "/api/relations/62422?detail=full", http.StatusBadRequest, apperrors.ErrCodeInvalidInput},
		{"unknown relation", nil, "/api/relations/1", http.StatusNotFound, apperrors.ErrCodeNotFound},
		{"upstream down", &fakeRelations{err: fmt.Errorf("%w: %w", integrations.ErrNetwork, &integrations.StatusError{StatusCode: 503})},
			"/api/relations/62422", http.StatusBadGateway, apperrors.ErrCodeNetwork},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, tt.rel)
			resp, body := get(t, ts.URL+tt.path)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d (%s)", resp.StatusCode, tt.status, body)
			}
			if e := decodeError(t, body); e.Code != tt.code {
				t.Errorf("code = %s, want %s", e.Code, tt.code)
			}
		})
	}
}

func TestGeoJSON(t *testing.T) {
	ts := newTestServer(t, nil)
	resp, body := get(t, ts.URL+"/api/relations/62422/geojson")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/geo+json" {
		t.Errorf("Content-Type = %q", ct)
	}
	for _, want := range []string{`"FeatureCollection"`, `"relation/62422"`, `"Polygon"`} {
		if !strings.Contains(string(body), want) {
			t.Errorf("body missing %s: %s", want, body)
		}
	}
}

func TestRelationLookupsShared(t *testing.T) {
	rel := &fakeRelations{
		elements: map[string]overpass.Element{"62422": berlin()},
		release:  make(chan struct{}),
	}
	ts := newTestServer(t, rel)

	const n = 5
	var wg sync.WaitGroup
	codes := make([]int, n)
	for i := range n {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := http.Get(ts.URL + "/api/relations/62422")
			if err != nil {
				return
			}
			resp.Body.Close()
			codes[i] = resp.StatusCode
		}(i)
	}

	deadline := time.Now().Add(2 * time.Second)
	for rel.calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(100 * time.Millisecond)
	close(rel.release)
	wg.Wait()

	if got := rel.calls.Load(); got != 1 {
		t.Errorf("upstream calls = %d, want 1", got)
	}
	for i, c := range codes {
		if c != http.StatusOK {
			t.Errorf("request %d status = %d", i, c)
		}
	}
}

const widget = `[{"id":"osm-rel-51477","text":"Deutschland","state":{"selected":false},"children":[
  {"id":"osm-rel-62422","text":"Berlin\n","state":{"selected":true},"children":["osm-rel-1"]}
]}]`

func postExport(t *testing.T, url, body string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return resp, data
}

func TestExport(t *testing.T) {
	ts := newTestServer(t, nil)
	resp, body := postExport(t, ts.URL+"/api/export?structure=nodes&include=tags", widget)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	if cd := resp.Header.Get("Content-Disposition"); cd != `attachment; filename="add_selection.json"` {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if resp.Header.Get("X-Export-Records") != "1" {
		t.Errorf("X-Export-Records = %q", resp.Header.Get("X-Export-Records"))
	}

	var records []map[string]any
	if err := json.Unmarshal(body, &records); err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0]["id"] != "62422" || records[0]["parent"] != "#" {
		t.Errorf("records = %v", records)
	}
	if tags, _ := records[0]["tags"].(map[string]any); tags["name"] != "Berlin" {
		t.Errorf("tags = %v", records[0]["tags"])
	}
}

func TestExportXML(t *testing.T) {
	ts := newTestServer(t, nil)
	resp, body := postExport(t, ts.URL+"/api/export?format=xml", widget)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/xml") {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(string(body), "<selection>") {
		t.Errorf("body = %s", body)
	}

	resp, _ = postExport(t, ts.URL+"/api/export?format=xml&legacy_mime=true", widget)
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("legacy Content-Type = %q", ct)
	}
}

func TestExportErrors(t *testing.T) {
	tests := []struct {
		name   string
		rel    *fakeRelations
		query  string
		body   string
		status int
		code   apperrors.Code
	}{
		{"bad format", nil, "format=csv", widget, http.StatusBadRequest, apperrors.ErrCodeInvalidFormat},
		{"bad structure", nil, "structure=graph", widget, http.StatusBadRequest, apperrors.ErrCodeInvalidStructure},
		{"bad include", nil, "include=everything", widget, http.StatusBadRequest, apperrors.ErrCodeInvalidInclude},
		{"bad strict", nil, "strict=sometimes", widget, http.StatusBadRequest, apperrors.ErrCodeInvalidInput},
		{"bad body", nil, "", `{"id":`, http.StatusBadRequest, apperrors.ErrCodeInvalidInput},
		{"empty result", &fakeRelations{}, "include=tags", widget, http.StatusNotFound, apperrors.ErrCodeEmptyResult},
		{"network", &fakeRelations{err: integrations.ErrNetwork}, "include=geometry", widget, http.StatusBadGateway, apperrors.ErrCodeNetwork},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, tt.rel)
			resp, body := postExport(t, ts.URL+"/api/export?"+tt.query, tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d (%s)", resp.StatusCode, tt.status, body)
			}
			if e := decodeError(t, body); e.Code != tt.code {
				t.Errorf("code = %s, want %s", e.Code, tt.code)
			}
			if resp.Header.Get("Content-Disposition") != "" {
				t.Error("failed export must not offer a download")
			}
		})
	}
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{apperrors.New(apperrors.ErrCodeStructural, "orphans"), http.StatusUnprocessableEntity},
		{apperrors.New(apperrors.ErrCodeInvalidID, "bad"), http.StatusBadRequest},
		{integrations.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("x: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{apperrors.New(apperrors.ErrCodeRateLimited, "slow down"), http.StatusTooManyRequests},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got, _ := statusOf(tt.err); got != tt.status {
			t.Errorf("statusOf(%v) = %d, want %d", tt.err, got, tt.status)
		}
	}
}
