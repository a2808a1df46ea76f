package ports

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/anki0476/rigveda-explorer/internal/app"
	"github.com/anki0476/rigveda-explorer/internal/logging"
	"github.com/anki0476/rigveda-explorer/internal/reporting"
	"github.com/gorilla/websocket"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 30 * time.Second
)

func MakeGetNotificationsHandler(getSession app.GetSession) http.HandlerFunc {
	return withSession(getSession, false, func(w http.ResponseWriter, r *http.Request, session *app.Session) {
		writeJSON(r.Context(), w, http.StatusOK, notificationsResponse{
			Success:       true,
			Notifications: notificationsToJSON(session.Notifications.Current()),
		})
	})
}

func MakeDismissNotificationHandler(getSession app.GetSession) http.HandlerFunc {
	return withSession(getSession, false, func(w http.ResponseWriter, r *http.Request, session *app.Session) {
		id := r.PathValue("id")
		if id == "" {
			writeError(r.Context(), w, http.StatusBadRequest, "invalid id")
			return
		}

		// Dismissing an expired or unknown notification is not an error
		session.Notifications.Dismiss(id)

		writeJSON(r.Context(), w, http.StatusOK, successResponse{Success: true})
	})
}

// MakeNotificationStreamHandler streams the live notification list over a websocket.
// Every message is the complete current list.
func MakeNotificationStreamHandler(getSession app.GetSession, allowedOrigins *DomainSuffixes) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			// Non-browser clients send no origin
			return origin == "" || allowedOrigins.AnyMatch(origin)
		},
	}

	return withSession(getSession, true, func(w http.ResponseWriter, r *http.Request, session *app.Session) {
		ctx := r.Context()
		logger := logging.FromContext(ctx)

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade has already written an error response
			logger.WarnContext(ctx, "Websocket upgrade failed", "error", err.Error())
			return
		}
		defer conn.Close()

		updates, unsubscribe := session.Notifications.Subscribe()
		defer unsubscribe()

		logger.InfoContext(ctx, "Notification stream opened")

		closed := make(chan struct{})
		go func() {
			defer close(closed)

			conn.SetReadLimit(512)
			conn.SetReadDeadline(time.Now().Add(wsPongWait))
			conn.SetPongHandler(func(string) error {
				return conn.SetReadDeadline(time.Now().Add(wsPongWait))
			})
			for {
				// Clients only send control frames
				if _, _, err := conn.ReadMessage(); err != nil {
					if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
						logger.WarnContext(ctx, "Notification stream read error", "error", err.Error())
					}
					return
				}
			}
		}()

		ticker := time.NewTicker(wsPingPeriod)
		defer ticker.Stop()

		for {
			select {
			case notifications, ok := <-updates:
				conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
				if !ok {
					// The session was closed
					conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "session closed"))
					return
				}

				data, err := json.Marshal(notificationsResponse{
					Success:       true,
					Notifications: notificationsToJSON(notifications),
				})
				if err != nil {
					reporting.Report(ctx, fmt.Errorf("failed to marshal notifications: %w", err))
					return
				}
				if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
					return
				}
			case <-ticker.C:
				conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			case <-closed:
				logger.InfoContext(ctx, "Notification stream closed")
				return
			case <-ctx.Done():
				return
			}
		}
	})
}
