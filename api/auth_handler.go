package api

import (
	"net/http"

	"github.com/rpupo63/blog-backend/auth"
	"github.com/rpupo63/blog-backend/database"
	"github.com/rpupo63/blog-backend/errs"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type authHandler struct {
	responder Responder
	logger    zerolog.Logger
	database  database.Database
	accounts  *auth.Accounts
	sessions  *auth.SessionManager
}

func newAuthHandler(database database.Database, accounts *auth.Accounts, sessions *auth.SessionManager, renderer Renderer, admins auth.AdminSet) authHandler {
	logger := log.With().Str("handlerName", "authHandler").Logger()

	return authHandler{
		responder: NewResponder(logger, renderer, admins),
		logger:    logger,
		database:  database,
		accounts:  accounts,
		sessions:  sessions,
	}
}

// register shows the sign-up form and creates accounts. A successful sign-up
// logs the new user in straight away.
func (h authHandler) register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			h.responder.Render(w, r, viewRegister, &ViewData{Title: "Register"})
			return
		}

		f, err := parseForm(r, registerFields...)
		if err != nil {
			h.responder.WriteError(w, r, err)
			return
		}
		f.required(registerFields...)
		if !f.valid() {
			h.responder.Render(w, r, viewRegister, &ViewData{
				Title:      "Register",
				FormData:   f.data("password"),
				FormErrors: f.errors,
			})
			return
		}

		user, err := h.accounts.Register(h.database.WithContext(r.Context()), f.get("name"), f.get("email"), f.get("password"))
		if err != nil {
			if errs.IsDuplicateUser(err) {
				h.logger.Info().Str("email", f.get("email")).Msg("registration with existing email")
				h.responder.RedirectWithFlash(w, r, "/login", err.Error())
				return
			}
			h.responder.WriteError(w, r, err)
			return
		}

		if err := h.sessions.Login(w, user); err != nil {
			h.responder.WriteError(w, r, errs.NewInternalErrorWithCause("could not start session", err))
			return
		}

		h.logger.Info().Uint("userID", user.ID).Msg("registered user")
		h.responder.Redirect(w, r, "/")
	}
}

// login shows the login form and checks credentials. Unknown emails and wrong
// passwords are reported with different messages.
func (h authHandler) login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			h.responder.Render(w, r, viewLogin, &ViewData{Title: "Log In"})
			return
		}

		f, err := parseForm(r, loginFields...)
		if err != nil {
			h.responder.WriteError(w, r, err)
			return
		}
		f.required(loginFields...)
		if !f.valid() {
			h.responder.Render(w, r, viewLogin, &ViewData{
				Title:      "Log In",
				FormData:   f.data("password"),
				FormErrors: f.errors,
			})
			return
		}

		user, err := h.accounts.Authenticate(h.database.WithContext(r.Context()), f.get("email"), f.get("password"))
		switch {
		case errs.IsUserNotFound(err), errs.IsBadCredentials(err):
			h.responder.RedirectWithFlash(w, r, "/login", err.Error())
			return
		case err != nil:
			h.responder.WriteError(w, r, err)
			return
		}

		if err := h.sessions.Login(w, user); err != nil {
			h.responder.WriteError(w, r, errs.NewInternalErrorWithCause("could not start session", err))
			return
		}

		h.logger.Info().Uint("userID", user.ID).Msg("user logged in")
		h.responder.Redirect(w, r, "/")
	}
}

func (h authHandler) logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.sessions.Logout(w)
		h.responder.Redirect(w, r, "/")
	}
}
