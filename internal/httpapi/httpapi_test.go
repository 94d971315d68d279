package httpapi

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/thomasfischer-his/pbflookup-sub000/internal/adminregion"
	"github.com/thomasfischer-his/pbflookup-sub000/internal/aggregate"
	"github.com/thomasfischer-his/pbflookup-sub000/internal/coord"
	"github.com/thomasfischer-his/pbflookup-sub000/internal/idstore"
	"github.com/thomasfischer-his/pbflookup-sub000/internal/model"
	"github.com/thomasfischer-his/pbflookup-sub000/internal/nametrie"
	"github.com/thomasfischer-his/pbflookup-sub000/internal/roadindex"
	"github.com/thomasfischer-his/pbflookup-sub000/internal/world"
	"github.com/thomasfischer-his/pbflookup-sub000/pkg/engine"
)

func emptyWorld() *world.World {
	return &world.World{
		NodeCoord:    idstore.New[coord.Coord](),
		WayNodes:     idstore.New[model.WayNodes](),
		RelMembers:   idstore.New[model.RelationMem](),
		NodeNames:    idstore.New[string](),
		WayNames:     idstore.New[string](),
		RelNames:     idstore.New[string](),
		NameTrie:     nametrie.New(),
		AdminRegions: adminregion.NewBuilder(nil).Build(),
		Roads:        roadindex.NewIndex(nil),
		Grid:         coord.NewGrid(4.4, 53.8, 62.65),
	}
}

func TestExtractQueryText(t *testing.T) {
	cases := []struct {
		body string
		want string
	}{
		{"text=Stockholm", "Stockholm"},
		{"accept=json\ntext=Uppsala kommun\n", "Uppsala kommun"},
		{"nothing here", ""},
		{"", ""},
	}
	for _, c := range cases {
		if got := extractQueryText(c.body); got != c.want {
			t.Errorf("extractQueryText(%q) = %q, want %q", c.body, got, c.want)
		}
	}
}

type fakeGrid struct{}

func (fakeGrid) ToLonLat(x, y int32) (float64, float64) {
	return float64(x) / 1000, float64(y) / 1000
}

func TestToQueryResponse(t *testing.T) {
	results := []aggregate.Result{
		{Coord: coord.Coord{X: 18000, Y: 59000}, Quality: 0.8, Origin: "unique_name"},
	}
	resp := toQueryResponse(results, fakeGrid{})
	if len(resp.Results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(resp.Results))
	}
	got := resp.Results[0]
	if got.Lon != 18 || got.Lat != 59 || got.Quality != 0.8 || got.Origin != "unique_name" {
		t.Errorf("unexpected result: %+v", got)
	}
}

func TestToQueryResponseEmpty(t *testing.T) {
	resp := toQueryResponse(nil, fakeGrid{})
	if len(resp.Results) != 0 {
		t.Errorf("expected no results, got %d", len(resp.Results))
	}
}

func TestHandleQueryMissingText(t *testing.T) {
	srv := NewServer(engine.New(emptyWorld(), nil), nil)

	req := httptest.NewRequest("POST", "/", strings.NewReader("accept=json"))
	req.Header.Set("Content-Type", "text/plain")
	resp, err := srv.app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400 for missing text, got %d", resp.StatusCode)
	}
}

func TestHandleQueryReturnsJSONByDefault(t *testing.T) {
	srv := NewServer(engine.New(emptyWorld(), nil), nil)

	req := httptest.NewRequest("POST", "/", strings.NewReader("text=Stockholm"))
	req.Header.Set("Content-Type", "text/plain")
	resp, err := srv.app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	var out queryResponse
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("unmarshal response: %v (body=%s)", err, body)
	}
	if resp.Header.Get("X-Request-Id") == "" {
		t.Error("expected X-Request-Id header to be set")
	}
}

func TestHandleQueryReturnsXMLWhenRequested(t *testing.T) {
	srv := NewServer(engine.New(emptyWorld(), nil), nil)

	req := httptest.NewRequest("POST", "/?accept=xml", strings.NewReader("text=Stockholm"))
	req.Header.Set("Content-Type", "text/plain")
	resp, err := srv.app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	ct := resp.Header.Get("Content-Type")
	if !strings.Contains(ct, "xml") {
		t.Errorf("expected xml content type, got %q", ct)
	}
}
