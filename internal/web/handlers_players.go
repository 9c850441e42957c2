package web

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"ranks-app/internal/model"
	"ranks-app/internal/search"
)

func (s *Server) handleRegions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, regionsResponse{Regions: s.roster.Regions()})
}

func (s *Server) handlePlayerShow(w http.ResponseWriter, r *http.Request) {
	player, ok := s.roster.Player(chi.URLParam(r, "playerID"))
	if !ok {
		http.Error(w, "player not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, player)
}

// handleRegionPlayers lists the region's roster. ?name= looks up one player
// by exact name across all regions and answers 404 when nobody has it.
// ?alias= looks up one player of this region ignoring case and answers an
// empty list when nobody matches.
func (s *Server) handleRegionPlayers(w http.ResponseWriter, r *http.Request) {
	region, ok := s.regionFromRequest(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	if name := strings.TrimSpace(q.Get("name")); name != "" {
		player, found := s.roster.PlayerByName(name)
		if !found {
			http.Error(w, "player not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, playersResponse{Players: []model.Player{player}})
		return
	}
	if alias := strings.TrimSpace(q.Get("alias")); alias != "" {
		players := []model.Player{}
		if player, found := s.roster.PlayerByAlias(region.ID, alias); found {
			players = append(players, player)
		}
		writeJSON(w, http.StatusOK, playersResponse{Players: players})
		return
	}
	writeJSON(w, http.StatusOK, playersResponse{Players: s.roster.RegionPlayers(region.ID)})
}

func (s *Server) handleTypeahead(w http.ResponseWriter, r *http.Request) {
	region, ok := s.regionFromRequest(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	view := s.typeaheadView(region.ID, typeaheadQuery{
		Query:   strings.TrimSpace(q.Get("q")),
		Exclude: splitIDs(q["exclude"]),
		Scope:   q.Get("scope"),
	})
	if isHTMX(r) {
		if err := s.templates.RenderPartial(w, "typeahead_results.html", view); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleSearchPage(w http.ResponseWriter, r *http.Request) {
	region, ok := s.regionFromRequest(w, r)
	if !ok {
		return
	}
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	view := SearchPageView{
		BaseView: BaseView{
			Title:      "Player search",
			RegionID:   region.ID,
			RegionName: regionName(region),
			Regions:    s.roster.Regions(),
			Notice:     flashMessage(r.URL.Query().Get("notice")),
		},
		Query:   query,
		Results: s.typeaheadView(region.ID, typeaheadQuery{Query: query}),
	}
	if err := s.templates.Render(w, "search.html", view); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// typeaheadQuery is what every typeahead surface accepts.
type typeaheadQuery struct {
	Query   string   `json:"query"`
	Region  string   `json:"region,omitempty"`
	Exclude []string `json:"exclude,omitempty"`
	// "region" limits matches to the region's players; anything else searches everyone.
	Scope string `json:"scope,omitempty"`
}

func (s *Server) typeaheadView(regionID string, tq typeaheadQuery) TypeaheadView {
	view := TypeaheadView{Query: tq.Query, EmptyQuery: tq.Query == "", Players: []TypeaheadPlayer{}}
	if view.EmptyQuery {
		return view
	}
	filter := search.ExcludeIDs(tq.Exclude...)
	if strings.EqualFold(tq.Scope, "region") {
		filter = search.All(filter, search.InRegion(regionID))
	}
	for _, c := range s.roster.Search(tq.Query, filter) {
		view.Players = append(view.Players, TypeaheadPlayer{
			ID:        c.Player.ID,
			Name:      c.Player.Name,
			Typeahead: search.DisplayText(c.Player),
			Regions:   c.Player.Regions,
			Quality:   int(c.Quality),
		})
	}
	return view
}

// regionFromRequest resolves the {region} URL parameter, answering 404 for
// regions the ranking service does not list.
func (s *Server) regionFromRequest(w http.ResponseWriter, r *http.Request) (model.Region, bool) {
	id := strings.TrimSpace(chi.URLParam(r, "region"))
	region, ok := s.roster.Region(id)
	if !ok {
		http.Error(w, "region not found", http.StatusNotFound)
		return model.Region{}, false
	}
	return region, true
}

func regionName(region model.Region) string {
	if region.DisplayName != "" {
		return region.DisplayName
	}
	return region.ID
}

// splitIDs accepts both repeated parameters and comma-separated lists.
func splitIDs(values []string) []string {
	ids := []string{}
	for _, v := range values {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}
	return ids
}
