package web

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const adminKeyHeader = "X-Admin-Key"

func (s *Server) handleRosterRefresh(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	res, err := s.roster.Refresh(r.Context())
	if err != nil {
		s.logger.Warn("manual roster refresh failed", zap.Error(err))
		if isHTMX(r) {
			w.Header().Set("HX-Redirect", "/?notice=refresh_failed")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		http.Error(w, "roster refresh failed", http.StatusBadGateway)
		return
	}
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", "/?notice=roster_refreshed")
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	if strings.TrimSpace(s.adminKeyHash) == "" {
		http.Error(w, "admin endpoints disabled", http.StatusServiceUnavailable)
		return false
	}
	key := r.Header.Get(adminKeyHeader)
	if key == "" || !checkAdminKey(s.adminKeyHash, key) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return false
	}
	return true
}

func checkAdminKey(hash, key string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)) == nil
}
