package handler

import (
	"openchat/internal/app/chat"
	"openchat/internal/app/session"
	"openchat/internal/app/user"
	"openchat/internal/configs"
)

// AppDeps bundles the collaborators the HTTP layer is allowed to touch.
type AppDeps struct {
	Config   *configs.AppConfig
	Users    *user.Directory
	Sessions *session.Store
	Registry *chat.Registry
}
