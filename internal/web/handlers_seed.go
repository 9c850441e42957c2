package web

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

const maxSeedBody = 1 << 20

func (s *Server) handleSeed(w http.ResponseWriter, r *http.Request) {
	region, ok := s.regionFromRequest(w, r)
	if !ok {
		return
	}
	var req seedRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSeedBody)).Decode(&req); err != nil {
		http.Error(w, "invalid seed request", http.StatusBadRequest)
		return
	}
	if len(req.Players) == 0 {
		http.Error(w, "no players to seed", http.StatusBadRequest)
		return
	}
	seeding := s.roster.Seed(r.Context(), region.ID, req.Players)
	newCount := 0
	for _, e := range seeding {
		if e.New {
			newCount++
		}
	}
	s.logger.Info("tournament seeded",
		zap.String("region", region.ID),
		zap.Int("entrants", len(seeding)),
		zap.Int("new", newCount),
	)
	writeJSON(w, http.StatusOK, seedResponse{Region: region.ID, Seeding: seeding})
}
