package search

import "ranks-app/internal/model"

// ratings with a sigma at or above this are too uncertain to name a home region
const maxLabelSigma = 100

// TypeaheadLabel decorates a player's name with its home region, e.g.
// "Mango ~ socal". The home region is the rated region with the lowest sigma;
// when none of the player's regions is rated the first listed region is used.
// ok is false when the player has no regions or no ratings record at all.
func TypeaheadLabel(p model.Player) (label string, ok bool) {
	if len(p.Regions) == 0 || p.Ratings == nil {
		return "", false
	}

	minSigma := float64(maxLabelSigma)
	home := ""
	for _, region := range p.Regions {
		rating, rated := p.Ratings[region]
		if rated && rating.Sigma < minSigma {
			minSigma = rating.Sigma
			home = region
		}
	}
	if home == "" {
		home = p.Regions[0]
	}
	if home == "" {
		return "", false
	}
	return p.Name + " ~ " + home, true
}

// DisplayText is the label shown in typeahead lists, falling back to the bare
// name when no label can be built.
func DisplayText(p model.Player) string {
	if label, ok := TypeaheadLabel(p); ok {
		return label
	}
	return p.Name
}
