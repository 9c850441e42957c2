package store

import "ranks-app/internal/model"

// Store holds the latest roster snapshot pulled from the ranking service.
// List methods return copies in roster order.
type Store interface {
	ListRegions() []model.Region
	ReplaceRegions(regions []model.Region) error

	ListPlayers() []model.Player
	GetPlayer(id string) (model.Player, bool)
	ReplacePlayers(players []model.Player) error
}

// dedupePlayers drops players without an id and repeated ids, keeping the
// first occurrence.
func dedupePlayers(players []model.Player) []model.Player {
	seen := make(map[string]bool, len(players))
	out := make([]model.Player, 0, len(players))
	for _, p := range players {
		if p.ID == "" || seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		out = append(out, p)
	}
	return out
}

func dedupeRegions(regions []model.Region) []model.Region {
	seen := make(map[string]bool, len(regions))
	out := make([]model.Region, 0, len(regions))
	for _, r := range regions {
		if r.ID == "" || seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		out = append(out, r)
	}
	return out
}

func clonePlayer(p model.Player) model.Player {
	if p.Regions != nil {
		p.Regions = append([]string(nil), p.Regions...)
	}
	if p.Ratings != nil {
		ratings := make(map[string]model.Rating, len(p.Ratings))
		for k, v := range p.Ratings {
			ratings[k] = v
		}
		p.Ratings = ratings
	}
	return p
}
