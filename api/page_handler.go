package api

import (
	"net/http"

	"github.com/rpupo63/blog-backend/auth"
	"github.com/rpupo63/blog-backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	mailerMissingMessage = "Messaging is not configured."
	sendFailedMessage    = "Your message could not be sent, please try again later."
)

type pageHandler struct {
	responder Responder
	logger    zerolog.Logger
	mailer    services.Mailer
	contactTo []string
}

// newPageHandler builds the handler for the static pages. mailer may be nil,
// in which case contact submissions are refused with a flash.
func newPageHandler(mailer services.Mailer, contactTo []string, renderer Renderer, admins auth.AdminSet) pageHandler {
	logger := log.With().Str("handlerName", "pageHandler").Logger()

	return pageHandler{
		responder: NewResponder(logger, renderer, admins),
		logger:    logger,
		mailer:    mailer,
		contactTo: contactTo,
	}
}

func (h pageHandler) about() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.responder.Render(w, r, viewAbout, &ViewData{Title: "About"})
	}
}

// contact shows the contact form and forwards submissions to the site owner.
func (h pageHandler) contact() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			h.responder.Render(w, r, viewContact, &ViewData{Title: "Contact"})
			return
		}

		f, err := parseForm(r, contactFields...)
		if err != nil {
			h.responder.WriteError(w, r, err)
			return
		}
		f.required("name", "email", "message")
		f.email("email")
		if !f.valid() {
			h.responder.Render(w, r, viewContact, &ViewData{
				Title:      "Contact",
				FormData:   f.data(),
				FormErrors: f.errors,
			})
			return
		}

		if h.mailer == nil || len(h.contactTo) == 0 {
			h.responder.Render(w, r, viewContact, &ViewData{
				Title:    "Contact",
				FormData: f.data(),
				Flashes:  []string{mailerMissingMessage},
			})
			return
		}

		msg := services.ContactMessage{
			Name:    f.get("name"),
			Email:   f.get("email"),
			Phone:   f.get("phone"),
			Message: f.get("message"),
		}
		if err := h.mailer.Send(r.Context(), msg.Subject(), msg.HTML(), h.contactTo); err != nil {
			h.logger.Error().Err(err).Msg("failed to send contact message")
			h.responder.Render(w, r, viewContact, &ViewData{
				Title:    "Contact",
				FormData: f.data(),
				Flashes:  []string{sendFailedMessage},
			})
			return
		}

		h.logger.Info().Str("from", msg.Email).Msg("contact message sent")
		h.responder.Render(w, r, viewContact, &ViewData{Title: "Contact", MsgSent: true})
	}
}
