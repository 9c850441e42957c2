// Package search ranks a player roster against typeahead queries.
package search

import (
	"sort"
	"strings"
	"unicode/utf16"

	"ranks-app/internal/model"
)

// Limit caps every typeahead result list.
const Limit = 20

// minSubstringQuery is the shortest query allowed to match in the middle of a name.
const minSubstringQuery = 3

type Quality int

const (
	NoMatch          Quality = 0
	SubstringMatch   Quality = 1
	TokenPrefixMatch Quality = 5
	ExactMatch       Quality = 10
)

// Filter keeps a player when it returns true. A nil Filter keeps everyone.
type Filter func(model.Player) bool

type Candidate struct {
	Player  model.Player
	Quality Quality
}

// Score rates how well name matches query. Comparison is case-insensitive and
// only the strongest rule applies.
func Score(name, query string) Quality {
	name = strings.ToLower(name)
	query = strings.ToLower(query)

	if name == query {
		return ExactMatch
	}
	for _, token := range tokenize(name) {
		if strings.HasPrefix(token, query) {
			return TokenPrefixMatch
		}
	}
	if queryLength(query) >= minSubstringQuery && strings.Contains(name, query) {
		return SubstringMatch
	}
	return NoMatch
}

// queryLength counts UTF-16 code units, so a character outside the BMP
// counts twice, as it does for browser string lengths.
func queryLength(query string) int {
	return len(utf16.Encode([]rune(query)))
}

// tokenize splits a name on '.', '|' and ' ', dropping empty tokens.
func tokenize(name string) []string {
	return strings.FieldsFunc(name, func(r rune) bool {
		return r == '.' || r == '|' || r == ' '
	})
}

// Rank scores every player that passes filter and returns the matches, best
// first, capped at Limit. Players of equal quality keep their roster order.
func Rank(query string, players []model.Player, filter Filter) []Candidate {
	candidates := make([]Candidate, 0)
	for _, p := range players {
		if filter != nil && !filter(p) {
			continue
		}
		q := Score(p.Name, query)
		if q <= NoMatch {
			continue
		}
		candidates = append(candidates, Candidate{Player: p, Quality: q})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Quality > candidates[j].Quality
	})
	if len(candidates) > Limit {
		candidates = candidates[:Limit]
	}
	return candidates
}

// Match is Rank without the scores.
func Match(query string, players []model.Player, filter Filter) []model.Player {
	ranked := Rank(query, players, filter)
	out := make([]model.Player, 0, len(ranked))
	for _, c := range ranked {
		out = append(out, c.Player)
	}
	return out
}

// FindByName returns the first player whose name is exactly name.
func FindByName(players []model.Player, name string) (model.Player, bool) {
	for _, p := range players {
		if p.Name == name {
			return p, true
		}
	}
	return model.Player{}, false
}

// FindByAlias returns the first player of region whose name equals alias
// case-insensitively.
func FindByAlias(players []model.Player, region, alias string) (model.Player, bool) {
	alias = strings.TrimSpace(alias)
	if alias == "" {
		return model.Player{}, false
	}
	for _, p := range players {
		if p.InRegion(region) && strings.EqualFold(p.Name, alias) {
			return p, true
		}
	}
	return model.Player{}, false
}
