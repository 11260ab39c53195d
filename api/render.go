package api

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/rpupo63/blog-backend/errs"
	"github.com/rpupo63/blog-backend/models"
)

// View names understood by every Renderer.
const (
	viewIndex      = "index"
	viewPost       = "post"
	viewRegister   = "register"
	viewLogin      = "login"
	viewMakePost   = "make-post"
	viewDeletePost = "delete-post"
	viewAbout      = "about"
	viewContact    = "contact"
	viewError      = "error"
)

// Renderer renders a named view with a data context.
type Renderer interface {
	Render(w io.Writer, view string, data *ViewData) error
}

// ViewData is the data context handed to every view. The responder fills in
// the request-scoped fields (CurrentUser, IsAdmin, Flashes, Path).
type ViewData struct {
	Title       string
	Path        string
	CurrentUser *models.User
	IsAdmin     bool
	Flashes     []string

	Posts    []*models.BlogPost
	Post     *models.BlogPost
	Comments []CommentView

	FormData   map[string]string
	FormErrors errs.FormErrors
	IsEdit     bool
	MsgSent    bool

	StatusCode   int
	ErrorMessage string
}

// CommentView is a comment prepared for display.
type CommentView struct {
	ID         uint
	Text       string
	AuthorName string
	AvatarURL  string
}

//go:embed templates/*.html
var templateFS embed.FS

var views = []string{
	viewIndex, viewPost, viewRegister, viewLogin, viewMakePost,
	viewDeletePost, viewAbout, viewContact, viewError,
}

var functions = template.FuncMap{
	// post bodies come from the rich text editor and are written by admins
	"trustedHTML": func(s string) template.HTML {
		return template.HTML(s)
	},
	"field": func(data map[string]string, name string) string {
		return data[name]
	},
	"fieldError": func(fe errs.FormErrors, name string) string {
		return fe.Get(name)
	},
}

// templateRenderer renders the embedded html/template views, each inside the
// shared "base" layout.
type templateRenderer struct {
	templates map[string]*template.Template
}

func newTemplateRenderer() (*templateRenderer, error) {
	base, err := template.New("").Funcs(functions).ParseFS(templateFS, "templates/base.html")
	if err != nil {
		return nil, fmt.Errorf("parse base layout: %w", err)
	}

	templates := make(map[string]*template.Template, len(views))
	for _, view := range views {
		ts, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone base layout: %w", err)
		}
		if _, err := ts.ParseFS(templateFS, "templates/"+view+".html"); err != nil {
			return nil, fmt.Errorf("parse view %s: %w", view, err)
		}
		templates[view] = ts
	}
	return &templateRenderer{templates: templates}, nil
}

func (t *templateRenderer) Render(w io.Writer, view string, data *ViewData) error {
	ts, ok := t.templates[view]
	if !ok {
		return fmt.Errorf("unknown view %q", view)
	}
	return ts.ExecuteTemplate(w, "base", data)
}
