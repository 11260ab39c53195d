package api

import (
	"time"

	"github.com/rpupo63/blog-backend/auth"
	"github.com/rpupo63/blog-backend/database"
	"github.com/rpupo63/blog-backend/services"
)

type handlerDeps struct {
	database  database.Database
	accounts  *auth.Accounts
	sessions  *auth.SessionManager
	admins    auth.AdminSet
	renderer  Renderer
	gravatar  services.Gravatar
	mailer    services.Mailer
	contactTo []string
	now       func() time.Time
}

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(deps handlerDeps) *routeHandlers {
	return &routeHandlers{
		authHandler:     newAuthHandler(deps.database, deps.accounts, deps.sessions, deps.renderer, deps.admins),
		blogPostHandler: newBlogPostHandler(deps.database, deps.gravatar, deps.now, deps.renderer, deps.admins),
		pageHandler:     newPageHandler(deps.mailer, deps.contactTo, deps.renderer, deps.admins),
	}
}
