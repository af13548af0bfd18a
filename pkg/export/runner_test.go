package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	apperrors "github.com/osmtree/osmtree/pkg/errors"
	"github.com/osmtree/osmtree/pkg/integrations"
	"github.com/osmtree/osmtree/pkg/integrations/overpass"
	"github.com/osmtree/osmtree/pkg/observability"
	"github.com/osmtree/osmtree/pkg/tree"
)

type fakeFetcher struct {
	resp   *overpass.Response
	err    error
	calls  int
	ids    []string
	detail overpass.Detail
}

func (f *fakeFetcher) FetchRelations(_ context.Context, ids []string, detail overpass.Detail, _ bool) (*overpass.Response, error) {
	f.calls++
	f.ids = ids
	f.detail = detail
	return f.resp, f.err
}

func relation(id int64, name string) overpass.Element {
	return overpass.Element{
		Type:   "relation",
		ID:     id,
		Tags:   map[string]string{"name": name, "type": "boundary"},
		Bounds: &overpass.Bounds{MinLat: 1, MinLon: 2, MaxLat: 3, MaxLon: 4},
		Members: []overpass.Member{
			{Type: "way", Ref: id * 10, Role: "outer", Geometry: []overpass.LatLon{
				{Lat: 0, Lon: 0}, {Lat: 0, Lon: 1}, {Lat: 1, Lon: 1}, {Lat: 1, Lon: 0}, {Lat: 0, Lon: 0},
			}},
		},
	}
}

func quietRunner(f RelationFetcher) *Runner {
	return NewRunner(f, log.New(nopWriter{}))
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }

func TestExecuteTreeJSON(t *testing.T) {
	nodes := []*tree.Node{
		node("1", true, node("2", true), node("3", false)),
	}
	res, err := quietRunner(nil).Execute(context.Background(), nodes, Options{})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	want := `[
  {
    "id": "1",
    "name": "N1",
    "parent": "#",
    "children": [
      {
        "id": "2",
        "name": "N2",
        "parent": "1",
        "children": [],
        "children_all_selected": []
      }
    ],
    "children_all_selected": [
      "2"
    ]
  }
]`
	if string(res.Data) != want {
		t.Errorf("Data =\n%s\nwant\n%s", res.Data, want)
	}
	if res.FileName != "add_selection.json" || res.ContentType != "application/json" {
		t.Errorf("FileName, ContentType = %q, %q", res.FileName, res.ContentType)
	}
	if res.ID == "" {
		t.Error("run id should be set")
	}
	if res.Stats.Selected != 2 || res.Stats.Records != 2 {
		t.Errorf("Stats = %+v", res.Stats)
	}
}

// A remote lookup that finds nothing fails the run without output.
func TestExecuteEmptyResult(t *testing.T) {
	f := &fakeFetcher{err: fmt.Errorf("fetch relations 1: %w", integrations.ErrEmptyResult)}
	res, err := quietRunner(f).Execute(context.Background(), sample(), Options{Include: IncludeTags})
	if res != nil {
		t.Errorf("result = %+v, want nil", res)
	}
	if !apperrors.Is(err, apperrors.ErrCodeEmptyResult) {
		t.Errorf("error = %v, want EMPTY_RESULT", err)
	}
	if !errors.Is(err, integrations.ErrEmptyResult) {
		t.Error("cause chain lost")
	}
}

// Nodes output is the flat sequence without _parent, in order.
func TestExecuteNodes(t *testing.T) {
	res, err := quietRunner(nil).Execute(context.Background(), sample(), Options{Structure: StructureNodes})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if strings.Contains(string(res.Data), "_parent") {
		t.Errorf("nodes output contains _parent:\n%s", res.Data)
	}

	var got []map[string]any
	if err := json.Unmarshal(res.Data, &got); err != nil {
		t.Fatal(err)
	}
	var ids []string
	for _, r := range got {
		ids = append(ids, r["id"].(string))
	}
	if strings.Join(ids, ",") != "1,2,5,6" {
		t.Errorf("ids = %v, want 1,2,5,6", ids)
	}
	if res.Branches != nil {
		t.Error("Branches should be nil for nodes output")
	}
}

func TestExecuteNothingSelected(t *testing.T) {
	f := &fakeFetcher{}
	res, err := quietRunner(f).Execute(context.Background(), []*tree.Node{node("1", false)}, Options{Include: IncludeTags})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if string(res.Data) != "[]" {
		t.Errorf("Data = %s, want []", res.Data)
	}
	if f.calls != 0 {
		t.Errorf("fetcher called %d times for an empty selection", f.calls)
	}
}

func TestExecuteTags(t *testing.T) {
	f := &fakeFetcher{resp: &overpass.Response{Elements: []overpass.Element{
		relation(1, "One"), relation(2, "Two"), relation(5, "Five"),
	}}}
	res, err := quietRunner(f).Execute(context.Background(), sample(), Options{Structure: StructureNodes, Include: IncludeTags})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if f.calls != 1 {
		t.Errorf("fetch calls = %d, want 1", f.calls)
	}
	if !reflect.DeepEqual(f.ids, []string{"1", "2", "5", "6"}) || f.detail != overpass.DetailTags {
		t.Errorf("fetched %v at %s", f.ids, f.detail)
	}

	first := res.Records[0]
	if first.Tags["name"] != "One" || first.Bounds == nil || len(first.Members) != 1 {
		t.Errorf("record 1 not enriched: %+v", first)
	}
	if first.Geometry != nil {
		t.Error("tags include should not carry geometry")
	}
	if res.Stats.Missing != 1 || res.Records[3].Tags != nil {
		t.Errorf("missing = %d, record 6 = %+v", res.Stats.Missing, res.Records[3])
	}
}

func TestExecuteGeometry(t *testing.T) {
	f := &fakeFetcher{resp: &overpass.Response{Elements: []overpass.Element{relation(1, "One")}}}
	nodes := []*tree.Node{node("1", true)}
	res, err := quietRunner(f).Execute(context.Background(), nodes, Options{Include: IncludeGeometry})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if f.detail != overpass.DetailGeometry {
		t.Errorf("detail = %s, want geom", f.detail)
	}
	g := res.Branches[0].Geometry
	if g == nil {
		t.Fatal("geometry missing")
	}
	if typ := g.Geometry().GeoJSONType(); typ != "Polygon" {
		t.Errorf("geometry type = %s, want Polygon", typ)
	}
	if !strings.Contains(string(res.Data), `"type": "Polygon"`) {
		t.Errorf("serialized geometry missing:\n%s", res.Data)
	}
}

func TestExecuteNetworkError(t *testing.T) {
	cause := fmt.Errorf("%w: %w", integrations.ErrNetwork, &integrations.StatusError{StatusCode: http.StatusGatewayTimeout})
	f := &fakeFetcher{err: cause}
	_, err := quietRunner(f).Execute(context.Background(), sample(), Options{Include: IncludeTags})
	if !apperrors.Is(err, apperrors.ErrCodeNetwork) {
		t.Fatalf("error = %v, want NETWORK_ERROR", err)
	}
	var se *integrations.StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusGatewayTimeout {
		t.Errorf("status not recoverable from %v", err)
	}
}

func TestExecuteCanceled(t *testing.T) {
	f := &fakeFetcher{err: fmt.Errorf("fetch relations: %w", context.Canceled)}
	_, err := quietRunner(f).Execute(context.Background(), sample(), Options{Include: IncludeTags})
	if !errors.Is(err, context.Canceled) || apperrors.GetCode(err) != "" {
		t.Errorf("error = %v, want bare context.Canceled", err)
	}
}

func TestExecuteWithoutFetcher(t *testing.T) {
	_, err := quietRunner(nil).Execute(context.Background(), sample(), Options{Include: IncludeTags})
	if !apperrors.Is(err, apperrors.ErrCodeInternal) {
		t.Errorf("error = %v, want INTERNAL_ERROR", err)
	}
}

func TestExecuteInvalidOptions(t *testing.T) {
	_, err := quietRunner(nil).Execute(context.Background(), sample(), Options{Format: "csv"})
	if !apperrors.Is(err, apperrors.ErrCodeInvalidFormat) {
		t.Errorf("error = %v, want INVALID_FORMAT", err)
	}
}

func TestExecuteRecordsOrphans(t *testing.T) {
	records := []Record{
		{ID: "1", Parent: "#"},
		{ID: "2", Parent: "1"},
		{ID: "3", Parent: "42"},
	}

	res, err := quietRunner(nil).ExecuteRecords(context.Background(), records, Options{})
	if err != nil {
		t.Fatalf("ExecuteRecords() error: %v", err)
	}
	if !reflect.DeepEqual(res.Orphans, []string{"3"}) || res.Stats.Orphans != 1 || res.Stats.Records != 2 {
		t.Errorf("Orphans = %v, Stats = %+v", res.Orphans, res.Stats)
	}
	if strings.Contains(string(res.Data), `"id": "3"`) {
		t.Error("orphan should not be serialized")
	}

	res, err = quietRunner(nil).ExecuteRecords(context.Background(), records, Options{Strict: true})
	if res != nil || !apperrors.Is(err, apperrors.ErrCodeStructural) {
		t.Errorf("strict: result = %v, error = %v; want STRUCTURAL_ERROR", res, err)
	}
	if err != nil && !strings.Contains(err.Error(), "3") {
		t.Errorf("error should name the orphan: %v", err)
	}
}

func TestExecuteXML(t *testing.T) {
	res, err := quietRunner(nil).Execute(context.Background(), sample(), Options{Format: FormatXML, Structure: StructureNodes})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if res.ContentType != ContentTypeXML || res.FileName != "add_selection.xml" {
		t.Errorf("FileName, ContentType = %q, %q", res.FileName, res.ContentType)
	}
	if got := strings.Count(string(res.Data), "<relation>"); got != 4 {
		t.Errorf("relation elements = %d, want 4\n%s", got, res.Data)
	}
}

func TestExecuteXMLText(t *testing.T) {
	nodes := []*tree.Node{{ID: "osm-rel-555717", Name: "Trinidad & Tobago <main>", Selected: true}}
	for _, structure := range []string{StructureTree, StructureNodes} {
		res, err := quietRunner(nil).Execute(context.Background(), nodes, Options{Format: FormatXML, Structure: structure})
		if err != nil {
			t.Fatalf("Execute(%s) error: %v", structure, err)
		}
		if got := xmlText(t, res.Data, "name"); len(got) != 1 || got[0] != "Trinidad & Tobago <main>" {
			t.Errorf("Execute(%s) name = %q", structure, got)
		}
	}
}

func TestExecuteXMLNothingSelected(t *testing.T) {
	for _, structure := range []string{StructureTree, StructureNodes} {
		res, err := quietRunner(nil).Execute(context.Background(), []*tree.Node{node("1", false)}, Options{Format: FormatXML, Structure: structure})
		if err != nil {
			t.Fatalf("Execute(%s) error: %v", structure, err)
		}
		if string(res.Data) != "<selection/>" {
			t.Errorf("Execute(%s) Data = %q, want <selection/>", structure, res.Data)
		}
	}
}

type recordingHooks struct {
	observability.NoopExportHooks
	started, enriched, completed int
	lastErr                      error
}

func (h *recordingHooks) OnExportStart(context.Context, int, string) {
	h.started++
}

func (h *recordingHooks) OnEnrich(context.Context, int, string, time.Duration, error) {
	h.enriched++
}

func (h *recordingHooks) OnExportComplete(_ context.Context, _ int, _ string, _ time.Duration, err error) {
	h.completed++
	h.lastErr = err
}

func TestExecuteHooks(t *testing.T) {
	h := &recordingHooks{}
	observability.SetExportHooks(h)
	defer observability.Reset()

	f := &fakeFetcher{err: integrations.ErrEmptyResult}
	_, _ = quietRunner(f).Execute(context.Background(), sample(), Options{Include: IncludeTags})

	if h.started != 1 || h.enriched != 1 || h.completed != 1 {
		t.Errorf("hooks = %+v", h)
	}
	if !apperrors.Is(h.lastErr, apperrors.ErrCodeEmptyResult) {
		t.Errorf("completion error = %v", h.lastErr)
	}
}
