package search

import (
	"sort"
	"strings"

	"ranks-app/internal/model"
)

// Seed resolves bracket entrant tags to known players and orders them for a
// tournament held in region. The best typeahead match for a tag becomes that
// entrant's player; tags nobody matches are flagged New.
//
// Entrants are ranked by rating, highest first, and numbered from 1. The
// rating comes from the region's ranking when the player is on it. Otherwise
// a rating in the region counts conservatively as mu - 3*sigma, and failing
// that the mu of the player's first rated region is used. Unrated entrants go
// last in the order they were given.
func Seed(region string, tags []string, players []model.Player, ranking []model.RankingEntry) []model.SeedEntry {
	entries := make([]model.SeedEntry, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		entry := model.SeedEntry{Tag: tag}
		if tag != "" {
			if matches := Rank(tag, players, nil); len(matches) > 0 {
				p := matches[0].Player
				entry.Player = &p
				entry.Tag = p.Name
				rateEntry(&entry, region, ranking)
			}
		}
		entry.New = entry.Player == nil
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].Rating, entries[j].Rating
		if a == nil || b == nil {
			return a != nil && b == nil
		}
		return *a > *b
	})
	for i := range entries {
		entries[i].Seed = i + 1
	}
	return entries
}

func rateEntry(entry *model.SeedEntry, region string, ranking []model.RankingEntry) {
	p := entry.Player
	for _, r := range ranking {
		if r.ID == p.ID || (r.ID == "" && r.Name == p.Name) {
			rating := r.Rating
			entry.Rating = &rating
			entry.RatingKind = model.RatingRanked
			entry.RatingRegion = region
			return
		}
	}
	if len(p.Ratings) == 0 {
		return
	}
	if r, ok := p.Ratings[region]; ok && region != "" {
		rating := r.Mu - 3*r.Sigma
		entry.Rating = &rating
		entry.RatingKind = model.RatingInactive
		entry.RatingRegion = region
		return
	}
	oor := ""
	for _, id := range p.Regions {
		if _, ok := p.Ratings[id]; ok {
			oor = id
			break
		}
	}
	if oor == "" {
		// none of the listed regions is rated: take the smallest key
		for id := range p.Ratings {
			if oor == "" || id < oor {
				oor = id
			}
		}
	}
	rating := p.Ratings[oor].Mu
	entry.Rating = &rating
	entry.RatingKind = model.RatingOutOfRegion
	entry.RatingRegion = oor
}
