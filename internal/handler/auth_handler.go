/*
Package handler provides the HTTP handlers and routing for the chat server.

This file holds the authentication endpoints. Login and registration both
end by establishing a session; a login for an identity that already holds a
session supersedes it, evicting any live connection through the registry's
takeover entry point.
*/
package handler

import (
	"net/http"

	"openchat/internal/pkg/errs"
	"openchat/internal/pkg/logx"
	"openchat/internal/pkg/req"
	"openchat/internal/pkg/resp"
)

// CredentialsInput is the request body for login and registration.
type CredentialsInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HandleLogin validates credentials and establishes a session. Any prior
// session for the same identity is invalidated first and its live
// connection, if any, is dropped.
func HandleLogin(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input CredentialsInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if input.Username == "" || input.Password == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		permanentID, customErr := deps.Users.Validate(input.Username, input.Password)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		token, prevToken, err := deps.Sessions.Create(permanentID)
		if err != nil {
			logx.Error(err, "login: session creation failed", "username", input.Username)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		if prevToken != "" {
			deps.Registry.DropSession(prevToken)
		}

		resp.RespondSuccess(w, r, map[string]any{
			"session_id": token,
		})
	}
}

// HandleRegister creates a new user account and, like the login path,
// establishes a session for it.
func HandleRegister(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input CredentialsInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if input.Username == "" || input.Password == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		permanentID, customErr := deps.Users.Register(input.Username, input.Password)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		token, _, err := deps.Sessions.Create(permanentID)
		if err != nil {
			logx.Error(err, "register: session creation failed", "username", input.Username)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"session_id": token,
		})
	}
}
