package model

import "strings"

type Rating struct {
	Mu    float64 `json:"mu"`
	Sigma float64 `json:"sigma"`
}

type Player struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Regions     []string          `json:"regions"`
	Ratings     map[string]Rating `json:"ratings"`
	Merged      bool              `json:"merged,omitempty"`
	MergeParent string            `json:"merge_parent,omitempty"`
}

// InRegion reports whether the player is listed in the given region.
// Blank region entries never match.
func (p Player) InRegion(regionID string) bool {
	if strings.TrimSpace(regionID) == "" {
		return false
	}
	for _, r := range p.Regions {
		if r != "" && r == regionID {
			return true
		}
	}
	return false
}

type Region struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// RatingKind says where a seeding rating came from.
type RatingKind string

const (
	RatingNone RatingKind = ""
	// from the region's current rankings list
	RatingRanked RatingKind = "ranked"
	// mu - 3*sigma of a regional rating that did not make the rankings
	RatingInactive    RatingKind = "inactive"
	RatingOutOfRegion RatingKind = "out_of_region"
)

// RankingEntry is one row of a region's latest published ranking.
type RankingEntry struct {
	Rank   int     `json:"rank"`
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Rating float64 `json:"rating"`
}

type SeedEntry struct {
	Seed   int     `json:"seed"`
	Tag    string  `json:"tag"`
	Player *Player `json:"player,omitempty"`
	New    bool    `json:"new,omitempty"`

	Rating       *float64   `json:"rating,omitempty"`
	RatingKind   RatingKind `json:"rating_kind,omitempty"`
	RatingRegion string     `json:"rating_region,omitempty"`
}
