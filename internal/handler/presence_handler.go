package handler

import (
	"net/http"

	"openchat/internal/pkg/resp"
)

// HandleConnectedUsers returns the presence snapshot: permanent id and
// display name for every live connection.
func HandleConnectedUsers(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp.RespondSuccess(w, r, deps.Registry.Snapshot())
	}
}
