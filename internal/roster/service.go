// Package roster keeps the local roster snapshot in step with the ranking
// service and answers searches against it.
package roster

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"ranks-app/internal/model"
	"ranks-app/internal/search"
	"ranks-app/internal/store"
)

// Source is where roster snapshots come from. *Client satisfies it.
type Source interface {
	Regions(ctx context.Context) ([]model.Region, error)
	Players(ctx context.Context, region string) ([]model.Player, error)
	Rankings(ctx context.Context, region string) ([]model.RankingEntry, error)
}

type Service struct {
	source Source
	store  store.Store
	region string
	logger *zap.Logger
}

// NewService builds a roster service. region is the path segment used when
// asking the source for the full roster.
func NewService(source Source, st store.Store, region string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{source: source, store: st, region: region, logger: logger}
}

type RefreshResult struct {
	Regions int `json:"regions"`
	Players int `json:"players"`
}

// Refresh pulls regions and the full roster and replaces the stored
// snapshot. Nothing is replaced unless both fetches succeed, and the previous
// regions are put back when storing the players fails.
func (s *Service) Refresh(ctx context.Context) (RefreshResult, error) {
	regions, err := s.source.Regions(ctx)
	if err != nil {
		return RefreshResult{}, fmt.Errorf("fetch regions: %w", err)
	}
	players, err := s.source.Players(ctx, s.region)
	if err != nil {
		return RefreshResult{}, fmt.Errorf("fetch players: %w", err)
	}
	previous := s.store.ListRegions()
	if err := s.store.ReplaceRegions(regions); err != nil {
		return RefreshResult{}, fmt.Errorf("store regions: %w", err)
	}
	if err := s.store.ReplacePlayers(players); err != nil {
		if rerr := s.store.ReplaceRegions(previous); rerr != nil {
			s.logger.Error("restore regions after failed refresh", zap.Error(rerr))
		}
		return RefreshResult{}, fmt.Errorf("store players: %w", err)
	}
	res := RefreshResult{Regions: len(regions), Players: len(players)}
	s.logger.Info("roster refreshed", zap.Int("regions", res.Regions), zap.Int("players", res.Players))
	return res, nil
}

// Run refreshes every interval until ctx is cancelled. Failures are logged
// and the previous snapshot stays in place.
func (s *Service) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Refresh(ctx); err != nil && ctx.Err() == nil {
				s.logger.Warn("roster refresh failed", zap.Error(err))
			}
		}
	}
}

// DefaultRegion is the region whose roster Refresh pulls.
func (s *Service) DefaultRegion() string { return s.region }

func (s *Service) Regions() []model.Region { return s.store.ListRegions() }

func (s *Service) Players() []model.Player { return s.store.ListPlayers() }

func (s *Service) Player(id string) (model.Player, bool) { return s.store.GetPlayer(id) }

func (s *Service) Region(id string) (model.Region, bool) {
	for _, r := range s.store.ListRegions() {
		if r.ID == id {
			return r, true
		}
	}
	return model.Region{}, false
}

// RegionPlayers lists the players of one region sorted by lower-cased name.
func (s *Service) RegionPlayers(region string) []model.Player {
	players := []model.Player{}
	for _, p := range s.store.ListPlayers() {
		if p.InRegion(region) {
			players = append(players, p)
		}
	}
	sort.SliceStable(players, func(i, j int) bool {
		return strings.ToLower(players[i].Name) < strings.ToLower(players[j].Name)
	})
	return players
}

// Search ranks the current snapshot against query.
func (s *Service) Search(query string, filter search.Filter) []search.Candidate {
	return search.Rank(query, s.store.ListPlayers(), filter)
}

// Seed orders tournament entrants for a bracket held in region. The region's
// rankings are fetched live; when they are unavailable entrants are rated
// from their stored ratings alone.
func (s *Service) Seed(ctx context.Context, region string, tags []string) []model.SeedEntry {
	ranking, err := s.source.Rankings(ctx, region)
	if err != nil {
		s.logger.Warn("rankings unavailable for seeding", zap.String("region", region), zap.Error(err))
		ranking = nil
	}
	return search.Seed(region, tags, s.store.ListPlayers(), ranking)
}

// PlayerByName looks a player up by exact name across all regions.
func (s *Service) PlayerByName(name string) (model.Player, bool) {
	return search.FindByName(s.store.ListPlayers(), name)
}

// PlayerByAlias finds the region's player whose name matches alias, ignoring case.
func (s *Service) PlayerByAlias(region, alias string) (model.Player, bool) {
	return search.FindByAlias(s.store.ListPlayers(), region, alias)
}
