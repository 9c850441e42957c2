package search

import (
	"strings"

	"ranks-app/internal/model"
)

// ExcludeIDs rejects the listed player ids. Blank ids are ignored.
func ExcludeIDs(ids ...string) Filter {
	excluded := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id != "" {
			excluded[id] = struct{}{}
		}
	}
	if len(excluded) == 0 {
		return nil
	}
	return func(p model.Player) bool {
		_, skip := excluded[p.ID]
		return !skip
	}
}

func InRegion(regionID string) Filter {
	return func(p model.Player) bool {
		return p.InRegion(regionID)
	}
}

// All combines filters with logical AND, skipping nil entries.
func All(filters ...Filter) Filter {
	active := make([]Filter, 0, len(filters))
	for _, f := range filters {
		if f != nil {
			active = append(active, f)
		}
	}
	switch len(active) {
	case 0:
		return nil
	case 1:
		return active[0]
	}
	return func(p model.Player) bool {
		for _, f := range active {
			if !f(p) {
				return false
			}
		}
		return true
	}
}
