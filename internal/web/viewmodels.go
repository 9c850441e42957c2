package web

import "ranks-app/internal/model"

// TypeaheadPlayer is one row of a typeahead list, shared by the JSON, HTML
// and websocket surfaces.
type TypeaheadPlayer struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Typeahead string   `json:"typeahead"`
	Regions   []string `json:"regions"`
	Quality   int      `json:"quality"`
}

type TypeaheadView struct {
	Query      string            `json:"query"`
	EmptyQuery bool              `json:"-"`
	Players    []TypeaheadPlayer `json:"players"`
}

type BaseView struct {
	Title      string
	RegionID   string
	RegionName string
	Regions    []model.Region
	Notice     string
}

type SearchPageView struct {
	BaseView
	Query   string
	Results TypeaheadView
}

type seedRequest struct {
	Players []string `json:"players"`
}

type seedResponse struct {
	Region  string            `json:"region"`
	Seeding []model.SeedEntry `json:"seeding"`
}

type playersResponse struct {
	Players []model.Player `json:"players"`
}

type regionsResponse struct {
	Regions []model.Region `json:"regions"`
}
