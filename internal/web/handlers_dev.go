package web

import (
	"net/http"
	"os"
	"strings"

	"ranks-app/internal/model"
)

type devRosterDump struct {
	DefaultRegion string         `json:"default_region"`
	Regions       []model.Region `json:"regions"`
	Players       []model.Player `json:"players"`
}

// handleDevRoster dumps the whole stored snapshot in roster order.
func (s *Server) handleDevRoster(w http.ResponseWriter, r *http.Request) {
	if !isDevMode() {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, devRosterDump{
		DefaultRegion: s.roster.DefaultRegion(),
		Regions:       s.roster.Regions(),
		Players:       s.roster.Players(),
	})
}

func isDevMode() bool {
	return strings.EqualFold(strings.TrimSpace(os.Getenv("APP")), "dev")
}
