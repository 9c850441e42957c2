package web

import (
	"net/http"
	"net/url"
	"strings"
)

// handleHome sends visitors to the search page of the default region,
// carrying any notice along.
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	target := "/" + url.PathEscape(s.roster.DefaultRegion()) + "/search"
	if notice := strings.TrimSpace(r.URL.Query().Get("notice")); notice != "" {
		target += "?notice=" + url.QueryEscape(notice)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
