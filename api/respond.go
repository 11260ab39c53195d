package api

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/rpupo63/blog-backend/auth"
	"github.com/rpupo63/blog-backend/errs"
	"github.com/rs/zerolog"
)

type Responder struct {
	logger   zerolog.Logger
	renderer Renderer
	admins   auth.AdminSet
}

func NewResponder(logger zerolog.Logger, renderer Renderer, admins auth.AdminSet) Responder {
	return Responder{
		logger:   logger,
		renderer: renderer,
		admins:   admins,
	}
}

// Render writes view with status 200.
func (r Responder) Render(w http.ResponseWriter, req *http.Request, view string, data *ViewData) {
	r.RenderStatus(w, req, http.StatusOK, view, data)
}

// RenderStatus fills in the request-scoped fields of data, renders view into a
// buffer, and only then writes the status and body, so a template failure
// still produces a clean 500.
func (r Responder) RenderStatus(w http.ResponseWriter, req *http.Request, status int, view string, data *ViewData) {
	if data == nil {
		data = &ViewData{}
	}

	data.Path = req.URL.Path
	data.CurrentUser = currentUser(req.Context())
	data.IsAdmin = r.admins.IsAdmin(data.CurrentUser)
	data.Flashes = append(popFlashes(w, req), data.Flashes...)

	buf := new(bytes.Buffer)
	if err := r.renderer.Render(buf, view, data); err != nil {
		r.logger.Error().Err(err).Str("view", view).Msg("error rendering view")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		r.logger.Error().Err(err).Msg("error writing response")
	}
}

// Redirect sends the browser to url: 302 after a GET, 303 after anything else
// so the follow-up request is always a GET.
func (r Responder) Redirect(w http.ResponseWriter, req *http.Request, url string) {
	status := http.StatusSeeOther
	if req.Method == http.MethodGet || req.Method == http.MethodHead {
		status = http.StatusFound
	}
	http.Redirect(w, req, url, status)
}

// RedirectWithFlash queues message and redirects to url.
func (r Responder) RedirectWithFlash(w http.ResponseWriter, req *http.Request, url, message string) {
	setFlash(w, message)
	r.Redirect(w, req, url)
}

// WriteError renders the error view with the status carried by err. Errors
// that are not *errs.ApiErr are logged and shown as a generic 500.
func (r Responder) WriteError(w http.ResponseWriter, req *http.Request, err error) {
	var apiErr *errs.ApiErr
	errors.As(err, &apiErr)

	status := errs.StatusCode(err)
	message := "An unexpected error occurred."
	if apiErr != nil && status < http.StatusInternalServerError {
		message = apiErr.Message()
	}

	if status >= http.StatusInternalServerError {
		fullError := err.Error()
		if apiErr != nil {
			fullError = apiErr.GetFullError()
		}
		r.logger.Error().
			Str("method", req.Method).
			Str("path", req.URL.Path).
			Int("status", status).
			Msg(fullError)
	}

	r.RenderStatus(w, req, status, viewError, &ViewData{
		Title:        http.StatusText(status),
		StatusCode:   status,
		ErrorMessage: message,
	})
}
