/*
Package handler provides the HTTP handlers and routing for the chat server.

This file handles websocket connection requests: rate limiting, session
token validation, the protocol upgrade, and starting the connection
lifecycle. An unresolvable token still gets the handshake so the rejection
can be delivered as a structured event before the close; the registry is
never touched on that path.
*/
package handler

import (
	"net"
	"net/http"

	"github.com/gorilla/websocket"

	"openchat/internal/app/chat"
	"openchat/internal/pkg/errs"
	"openchat/internal/pkg/limiter"
	"openchat/internal/pkg/logx"
	"openchat/internal/pkg/resp"
)

// HandleWebSocket upgrades the connection and runs the per-connection
// lifecycle: Validating in this function, Active inside Conn.Run.
func HandleWebSocket(deps *AppDeps, upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}
		if ip == "" {
			ip = "unknown_ip"
		}

		if !rateLimiter.GetLimiter(ip).Allow() {
			logx.Warn("WebSocket connection rejected: rate limit exceeded.", "ip", ip)
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		token := r.URL.Query().Get("session_id")
		permanentID, valid := deps.Sessions.Resolve(token)

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		transport := chat.NewWSTransport(conn)

		if !valid {
			logx.Warn("WebSocket connection denied: invalid or missing session token.")

			if sendErr := transport.Send(chat.InvalidSessionEvent()); sendErr != nil {
				logx.Warn("Could not deliver invalid_session rejection.", "error", sendErr.Error())
			}

			transport.Close(chat.ClosePolicyViolation, "invalid session")
			return
		}

		name := deps.Users.DisplayName(permanentID)

		logx.Info("WebSocket connection authorized", "permanent_id", permanentID, "name", name)

		client := deps.Registry.Register(token, permanentID, name, transport)
		client.Run()
	}
}
