package web

import "strings"

func flashMessage(notice string) string {
	switch strings.TrimSpace(notice) {
	case "roster_refreshed":
		return "Roster refreshed."
	case "refresh_failed":
		return "Roster refresh failed, showing the last snapshot."
	}
	return ""
}
