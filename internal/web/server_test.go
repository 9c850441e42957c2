package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"ranks-app/internal/model"
	"ranks-app/internal/roster"
	"ranks-app/internal/store"
)

type stubSource struct {
	regions []model.Region
	players []model.Player
	ranking []model.RankingEntry
	err     error
}

func (s *stubSource) Regions(context.Context) ([]model.Region, error) { return s.regions, s.err }

func (s *stubSource) Players(context.Context, string) ([]model.Player, error) {
	return s.players, s.err
}

func (s *stubSource) Rankings(context.Context, string) ([]model.RankingEntry, error) {
	return s.ranking, s.err
}

func testRoster() *stubSource {
	players := []model.Player{
		{ID: "1", Name: "Mango", Regions: []string{"socal"}, Ratings: map[string]model.Rating{"socal": {Mu: 38, Sigma: 2}}},
		{ID: "2", Name: "SFAT", Regions: []string{"norcal"}, Ratings: map[string]model.Rating{}},
		{ID: "3", Name: "Mango Fan", Regions: []string{"norcal"}},
		{ID: "4", Name: "DJ Nintendo", Regions: []string{"nyc"}, Ratings: map[string]model.Rating{"nyc": {Sigma: 4}}},
	}
	for i := 0; i < 30; i++ {
		players = append(players, model.Player{ID: fmt.Sprintf("z%d", i), Name: fmt.Sprintf("Zed%d", i), Regions: []string{"norcal"}})
	}
	return &stubSource{
		regions: []model.Region{{ID: "norcal", DisplayName: "Norcal"}, {ID: "socal", DisplayName: "Socal"}, {ID: "nyc"}},
		players: players,
	}
}

func newTestServer(t *testing.T, src *stubSource, opts ...Option) (*Server, *roster.Service) {
	t.Helper()
	t.Setenv("APP", "prod")
	svc := roster.NewService(src, store.NewMemoryStore(), "norcal", nil)
	if _, err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	templates, err := NewTemplates(TemplateFS)
	if err != nil {
		t.Fatalf("NewTemplates: %v", err)
	}
	return NewServer(svc, templates, opts...), svc
}

func doRequest(t *testing.T, h http.Handler, method, target string, body []byte, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeTypeahead(t *testing.T, rec *httptest.ResponseRecorder) TypeaheadView {
	t.Helper()
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var view TypeaheadView
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return view
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t, testRoster())
	rec := doRequest(t, srv.Routes(), http.MethodGet, "/healthz", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if rec.Header().Get(requestIDHeader) == "" {
		t.Fatalf("missing request id header")
	}
}

func TestTypeaheadJSON(t *testing.T) {
	srv, _ := newTestServer(t, testRoster())
	view := decodeTypeahead(t, doRequest(t, srv.Routes(), http.MethodGet, "/norcal/players/typeahead?q=mango", nil, nil))

	if len(view.Players) != 2 {
		t.Fatalf("expected 2 players, got %+v", view.Players)
	}
	first := view.Players[0]
	if first.ID != "1" || first.Quality != 10 || first.Typeahead != "Mango ~ socal" {
		t.Fatalf("unexpected first row: %+v", first)
	}
	if second := view.Players[1]; second.ID != "3" || second.Quality != 5 || second.Typeahead != "Mango Fan" {
		t.Fatalf("unexpected second row: %+v", second)
	}
}

func TestTypeaheadExcludeAndScope(t *testing.T) {
	srv, _ := newTestServer(t, testRoster())
	h := srv.Routes()

	view := decodeTypeahead(t, doRequest(t, h, http.MethodGet, "/norcal/players/typeahead?q=mango&exclude=1", nil, nil))
	if len(view.Players) != 1 || view.Players[0].ID != "3" {
		t.Fatalf("exclude ignored: %+v", view.Players)
	}

	view = decodeTypeahead(t, doRequest(t, h, http.MethodGet, "/socal/players/typeahead?q=mango&scope=region", nil, nil))
	if len(view.Players) != 1 || view.Players[0].ID != "1" {
		t.Fatalf("scope ignored: %+v", view.Players)
	}
}

func TestTypeaheadCapsAndEmptyQuery(t *testing.T) {
	srv, _ := newTestServer(t, testRoster())
	h := srv.Routes()

	view := decodeTypeahead(t, doRequest(t, h, http.MethodGet, "/norcal/players/typeahead?q=zed", nil, nil))
	if len(view.Players) != 20 {
		t.Fatalf("expected 20 results, got %d", len(view.Players))
	}

	view = decodeTypeahead(t, doRequest(t, h, http.MethodGet, "/norcal/players/typeahead?q=+", nil, nil))
	if len(view.Players) != 0 {
		t.Fatalf("empty query should return nothing, got %d", len(view.Players))
	}
}

func TestTypeaheadHTMXPartial(t *testing.T) {
	srv, _ := newTestServer(t, testRoster())
	rec := doRequest(t, srv.Routes(), http.MethodGet, "/norcal/players/typeahead?q=nin", nil, map[string]string{"HX-Request": "true"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, `data-player-id="4"`) || !strings.Contains(body, "DJ Nintendo ~ nyc") {
		t.Fatalf("partial missing player: %s", body)
	}
	if !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/html") {
		t.Fatalf("content type %q", rec.Header().Get("Content-Type"))
	}
}

func TestUnknownRegion(t *testing.T) {
	srv, _ := newTestServer(t, testRoster())
	rec := doRequest(t, srv.Routes(), http.MethodGet, "/atlantis/players/typeahead?q=mango", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestRegionPlayersAndPlayerShow(t *testing.T) {
	srv, _ := newTestServer(t, testRoster())
	h := srv.Routes()

	rec := doRequest(t, h, http.MethodGet, "/socal/players", nil, nil)
	var resp playersResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Players) != 1 || resp.Players[0].Name != "Mango" {
		t.Fatalf("unexpected socal roster: %+v", resp.Players)
	}

	rec = doRequest(t, h, http.MethodGet, "/players/2", nil, nil)
	var p model.Player
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil || p.Name != "SFAT" {
		t.Fatalf("player show: %v %+v", err, p)
	}

	if rec := doRequest(t, h, http.MethodGet, "/players/nope", nil, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	rec = doRequest(t, h, http.MethodGet, "/regions", nil, nil)
	var regions regionsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &regions); err != nil || len(regions.Regions) != 3 {
		t.Fatalf("regions: %v %+v", err, regions)
	}
}

func TestSearchPage(t *testing.T) {
	srv, _ := newTestServer(t, testRoster())
	rec := doRequest(t, srv.Routes(), http.MethodGet, "/norcal/search?q=sfat", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, `hx-get="/norcal/players/typeahead"`) || !strings.Contains(body, `data-player-id="2"`) {
		t.Fatalf("search page incomplete: %s", body)
	}
}

func TestSearchInputCarriesScope(t *testing.T) {
	srv, _ := newTestServer(t, testRoster())
	rec := doRequest(t, srv.Routes(), http.MethodGet, "/norcal/search", nil, nil)
	body := rec.Body.String()
	start := strings.Index(body, `<input type="search"`)
	if start < 0 {
		t.Fatalf("search input missing: %s", body)
	}
	input := body[start : start+strings.Index(body[start:], ">")]
	if !strings.Contains(input, `hx-include="[name='scope']"`) && !strings.Contains(input, `hx-include="[name=&#39;scope&#39;]"`) {
		t.Fatalf("search input does not send the scope checkbox: %s", input)
	}
}

func TestRegionPlayersNameAndAliasLookup(t *testing.T) {
	srv, _ := newTestServer(t, testRoster())
	h := srv.Routes()

	rec := doRequest(t, h, http.MethodGet, "/norcal/players?name=Mango", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var resp playersResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Players) != 1 || resp.Players[0].ID != "1" {
		t.Fatalf("name lookup: %+v", resp.Players)
	}

	if rec := doRequest(t, h, http.MethodGet, "/norcal/players?name=mango", nil, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("name lookup is exact, expected 404, got %d", rec.Code)
	}

	rec = doRequest(t, h, http.MethodGet, "/norcal/players?alias=sfat", nil, nil)
	resp = playersResponse{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Players) != 1 || resp.Players[0].ID != "2" {
		t.Fatalf("alias lookup: %+v", resp.Players)
	}

	rec = doRequest(t, h, http.MethodGet, "/norcal/players?alias=mango", nil, nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"players":[]`) {
		t.Fatalf("alias outside the region should give an empty list: %d %s", rec.Code, rec.Body.String())
	}
}

func TestSeedUsesRegionRankings(t *testing.T) {
	src := testRoster()
	src.ranking = []model.RankingEntry{{Rank: 1, ID: "2", Name: "SFAT", Rating: 50}}
	srv, _ := newTestServer(t, src)

	rec := doRequest(t, srv.Routes(), http.MethodPost, "/norcal/seed", []byte(`{"players":["Mango","sfat"]}`), nil)
	var resp seedResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Seeding) != 2 || resp.Seeding[0].Player == nil || resp.Seeding[0].Player.ID != "2" {
		t.Fatalf("ranked SFAT should seed first: %+v", resp.Seeding)
	}
	if resp.Seeding[0].RatingKind != model.RatingRanked || resp.Seeding[1].RatingKind != model.RatingOutOfRegion {
		t.Fatalf("unexpected rating kinds: %+v", resp.Seeding)
	}
}

func TestRegionsEmptyStoreEncodesList(t *testing.T) {
	srv, _ := newTestServer(t, &stubSource{})
	rec := doRequest(t, srv.Routes(), http.MethodGet, "/regions", nil, nil)
	if got := strings.TrimSpace(rec.Body.String()); got != `{"regions":[]}` {
		t.Fatalf("empty roster should encode an empty list, got %s", got)
	}
}

func TestSeed(t *testing.T) {
	srv, _ := newTestServer(t, testRoster())
	h := srv.Routes()

	rec := doRequest(t, h, http.MethodPost, "/norcal/seed", []byte(`{"players":["sfat","Mango","newbie"]}`), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var resp seedResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Seeding) != 3 {
		t.Fatalf("expected 3 seeds, got %+v", resp.Seeding)
	}
	// Mango carries an out-of-region rating, SFAT none
	if resp.Seeding[0].Player == nil || resp.Seeding[0].Player.ID != "1" || resp.Seeding[0].Seed != 1 {
		t.Fatalf("seed 1: %+v", resp.Seeding[0])
	}
	if resp.Seeding[1].Player == nil || resp.Seeding[1].Player.ID != "2" || resp.Seeding[1].Rating != nil {
		t.Fatalf("seed 2: %+v", resp.Seeding[1])
	}
	if !resp.Seeding[2].New {
		t.Fatalf("seed 2 should be new: %+v", resp.Seeding[2])
	}

	if rec := doRequest(t, h, http.MethodPost, "/norcal/seed", []byte(`{"players":[]}`), nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if rec := doRequest(t, h, http.MethodPost, "/norcal/seed", []byte(`not json`), nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestRosterRefreshRequiresAdminKey(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	src := testRoster()
	srv, svc := newTestServer(t, src, WithAdminKeyHash(string(hash)))
	h := srv.Routes()

	if rec := doRequest(t, h, http.MethodPost, "/admin/roster/refresh", nil, nil); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without key, got %d", rec.Code)
	}
	if rec := doRequest(t, h, http.MethodPost, "/admin/roster/refresh", nil, map[string]string{adminKeyHeader: "wrong"}); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 with wrong key, got %d", rec.Code)
	}

	src.players = append(src.players, model.Player{ID: "new", Name: "Newcomer"})
	rec := doRequest(t, h, http.MethodPost, "/admin/roster/refresh", nil, map[string]string{adminKeyHeader: "s3cret"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	if _, ok := svc.Player("new"); !ok {
		t.Fatalf("refresh did not pick up new player")
	}

	src.err = fmt.Errorf("service down")
	rec = doRequest(t, h, http.MethodPost, "/admin/roster/refresh", nil, map[string]string{adminKeyHeader: "s3cret"})
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
}

func TestRosterRefreshDisabledWithoutHash(t *testing.T) {
	srv, _ := newTestServer(t, testRoster())
	rec := doRequest(t, srv.Routes(), http.MethodPost, "/admin/roster/refresh", nil, map[string]string{adminKeyHeader: "x"})
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestTypeaheadWebsocket(t *testing.T) {
	srv, _ := newTestServer(t, testRoster())
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http")+"/ws/typeahead", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	for _, q := range []string{"m", "ma", "mango"} {
		if err := wsjson.Write(ctx, conn, typeaheadQuery{Query: q, Region: "norcal", Exclude: []string{"3"}}); err != nil {
			t.Fatalf("write: %v", err)
		}
		var view TypeaheadView
		if err := wsjson.Read(ctx, conn, &view); err != nil {
			t.Fatalf("read: %v", err)
		}
		if view.Query != q || len(view.Players) != 1 || view.Players[0].ID != "1" {
			t.Fatalf("query %q: unexpected view %+v", q, view)
		}
	}

	if err := wsjson.Write(ctx, conn, typeaheadQuery{Query: "mango", Region: "atlantis"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	var reply wsError
	if err := wsjson.Read(ctx, conn, &reply); err != nil {
		t.Fatalf("read: %v", err)
	}
	if reply.Error == "" {
		t.Fatalf("expected region error")
	}
}

func TestHomeRedirectsToDefaultRegion(t *testing.T) {
	srv, _ := newTestServer(t, testRoster())
	rec := doRequest(t, srv.Routes(), http.MethodGet, "/?notice=roster_refreshed", nil, nil)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/norcal/search?notice=roster_refreshed" {
		t.Fatalf("unexpected location %q", loc)
	}

	rec = doRequest(t, srv.Routes(), http.MethodGet, "/norcal/search?notice=roster_refreshed", nil, nil)
	if !strings.Contains(rec.Body.String(), "Roster refreshed.") {
		t.Fatalf("notice not rendered: %s", rec.Body.String())
	}
}

func TestRosterRefreshHTMXRedirects(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	srv, _ := newTestServer(t, testRoster(), WithAdminKeyHash(string(hash)))
	rec := doRequest(t, srv.Routes(), http.MethodPost, "/admin/roster/refresh", nil, map[string]string{
		adminKeyHeader: "s3cret",
		"HX-Request":   "true",
	})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if got := rec.Header().Get("HX-Redirect"); got != "/?notice=roster_refreshed" {
		t.Fatalf("unexpected HX-Redirect %q", got)
	}
}

func TestDevRosterOnlyInDevMode(t *testing.T) {
	srv, _ := newTestServer(t, testRoster())
	if rec := doRequest(t, srv.Routes(), http.MethodGet, "/dev/roster", nil, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 outside dev mode, got %d", rec.Code)
	}

	t.Setenv("APP", "dev")
	rec := doRequest(t, srv.Routes(), http.MethodGet, "/dev/roster", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var dump devRosterDump
	if err := json.Unmarshal(rec.Body.Bytes(), &dump); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if dump.DefaultRegion != "norcal" || len(dump.Players) != 34 || len(dump.Regions) != 3 {
		t.Fatalf("unexpected dump: region=%q players=%d regions=%d", dump.DefaultRegion, len(dump.Players), len(dump.Regions))
	}
}

func TestFlashMessage(t *testing.T) {
	if flashMessage(" roster_refreshed ") == "" {
		t.Fatalf("expected message for roster_refreshed")
	}
	if flashMessage("bogus") != "" {
		t.Fatalf("unknown notices must render nothing")
	}
}
