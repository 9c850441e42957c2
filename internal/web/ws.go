package web

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const wsIdleTimeout = 2 * time.Minute

type wsError struct {
	Error string `json:"error"`
}

// handleTypeaheadWS answers one typeahead frame per inbound query frame, so a
// search box can stream keystrokes over a single connection.
func (s *Server) handleTypeaheadWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		CompressionMode: websocket.CompressionNoContextTakeover,
	})
	if err != nil {
		s.logger.Warn("websocket accept failed", zap.Error(err))
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()
	for {
		var tq typeaheadQuery
		readCtx, cancel := context.WithTimeout(ctx, wsIdleTimeout)
		err := wsjson.Read(readCtx, conn, &tq)
		cancel()
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || errors.Is(err, context.Canceled) {
				return
			}
			if errors.Is(err, context.DeadlineExceeded) {
				_ = conn.Close(websocket.StatusNormalClosure, "idle")
				return
			}
			s.logger.Debug("websocket read failed", zap.Error(err))
			_ = conn.Close(websocket.StatusUnsupportedData, "invalid query frame")
			return
		}

		var reply any
		region := strings.TrimSpace(tq.Region)
		if _, ok := s.roster.Region(region); region != "" && !ok {
			reply = wsError{Error: "region not found"}
		} else {
			tq.Query = strings.TrimSpace(tq.Query)
			reply = s.typeaheadView(region, tq)
		}
		if err := wsjson.Write(ctx, conn, reply); err != nil {
			s.logger.Debug("websocket write failed", zap.Error(err))
			return
		}
	}
}
