package store

import (
	"os"
	"strings"
	"sync"

	"ranks-app/internal/model"
)

type MemoryStore struct {
	mu      sync.RWMutex
	regions []model.Region
	players []model.Player
	index   map[string]int
}

func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{index: make(map[string]int)}
	if strings.ToLower(strings.TrimSpace(os.Getenv("APP"))) != "prod" {
		seedData(s)
	}
	return s
}

func (s *MemoryStore) ListRegions() []model.Region {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]model.Region{}, s.regions...)
}

func (s *MemoryStore) ReplaceRegions(regions []model.Region) error {
	regions = dedupeRegions(regions)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.regions = regions
	return nil
}

func (s *MemoryStore) ListPlayers() []model.Player {
	s.mu.RLock()
	defer s.mu.RUnlock()

	players := make([]model.Player, 0, len(s.players))
	for _, p := range s.players {
		players = append(players, clonePlayer(p))
	}
	return players
}

func (s *MemoryStore) GetPlayer(id string) (model.Player, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return model.Player{}, false
	}
	return clonePlayer(s.players[i]), true
}

func (s *MemoryStore) ReplacePlayers(players []model.Player) error {
	players = dedupePlayers(players)
	index := make(map[string]int, len(players))
	stored := make([]model.Player, 0, len(players))
	for i, p := range players {
		index[p.ID] = i
		stored = append(stored, clonePlayer(p))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.players = stored
	s.index = index
	return nil
}

func seedData(s *MemoryStore) {
	type ratings = map[string]model.Rating
	_ = s.ReplaceRegions([]model.Region{
		{ID: "norcal", DisplayName: "Norcal"},
		{ID: "socal", DisplayName: "Socal"},
		{ID: "nyc", DisplayName: "NYC"},
	})
	_ = s.ReplacePlayers([]model.Player{
		{ID: "seed-1", Name: "Mango", Regions: []string{"socal"}, Ratings: ratings{"socal": {Mu: 38.2, Sigma: 2.1}}},
		{ID: "seed-2", Name: "SFAT", Regions: []string{"norcal"}, Ratings: ratings{"norcal": {Mu: 33.0, Sigma: 2.4}}},
		{ID: "seed-3", Name: "Mew2King", Regions: []string{"nyc", "norcal"}, Ratings: ratings{"nyc": {Mu: 37.5, Sigma: 3.0}, "norcal": {Mu: 36.1, Sigma: 5.2}}},
		{ID: "seed-4", Name: "S2J|Ice", Regions: []string{"socal"}, Ratings: ratings{"socal": {Mu: 31.4, Sigma: 3.3}}},
		{ID: "seed-5", Name: "IceTiger", Regions: []string{"norcal"}, Ratings: ratings{}},
		{ID: "seed-6", Name: "DJ Nintendo", Regions: []string{"nyc"}, Ratings: ratings{"nyc": {Mu: 30.8, Sigma: 4.0}}},
		{ID: "seed-7", Name: "C9.Mang0", Regions: []string{"socal"}, Merged: true, MergeParent: "seed-1"},
		{ID: "seed-8", Name: "Shroomed", Regions: []string{"norcal", "socal"}, Ratings: ratings{"norcal": {Mu: 32.2, Sigma: 6.5}, "socal": {Mu: 33.9, Sigma: 3.9}}},
	})
}
