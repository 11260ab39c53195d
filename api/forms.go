package api

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/rpupo63/blog-backend/errs"
)

// form wraps submitted values and collects validation failures.
type form struct {
	values map[string]string
	errors errs.FormErrors
}

// parseForm reads the named fields from the request body, trimming
// surrounding whitespace from everything except passwords.
func parseForm(r *http.Request, fields ...string) (*form, error) {
	if err := r.ParseForm(); err != nil {
		return nil, errs.NewMalformedPayloadError("form", err)
	}

	f := &form{
		values: make(map[string]string, len(fields)),
		errors: errs.FormErrors{},
	}
	for _, field := range fields {
		value := r.PostForm.Get(field)
		if field != "password" {
			value = strings.TrimSpace(value)
		}
		f.values[field] = value
	}
	return f, nil
}

func (f *form) get(field string) string {
	return f.values[field]
}

func (f *form) required(fields ...string) {
	for _, field := range fields {
		if f.values[field] == "" {
			f.errors.Add(errs.NewMissingRequiredFieldError(field))
		}
	}
}

// url requires field to be an absolute http or https URL.
func (f *form) url(field string) {
	value := f.values[field]
	if value == "" {
		return
	}
	u, err := url.ParseRequestURI(value)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		f.errors.Add(errs.NewInvalidFieldError(field, "Invalid URL."))
	}
}

// email requires field to look like an address: something@host.
func (f *form) email(field string) {
	value := f.values[field]
	if value == "" {
		return
	}
	at := strings.LastIndex(value, "@")
	if at < 1 || at == len(value)-1 || strings.ContainsAny(value, " \t\r\n") {
		f.errors.Add(errs.NewInvalidFieldError(field, "Invalid email address."))
	}
}

// fail records a failure not covered by the field rules.
func (f *form) fail(field, message string) {
	f.errors.Add(errs.NewInvalidFieldError(field, message))
}

func (f *form) valid() bool {
	return !f.errors.Any()
}

// data returns the values for re-displaying the form, minus secrets.
func (f *form) data(omit ...string) map[string]string {
	out := make(map[string]string, len(f.values))
	for k, v := range f.values {
		out[k] = v
	}
	for _, k := range omit {
		delete(out, k)
	}
	return out
}

// Field sets for each form.
var (
	registerFields = []string{"name", "email", "password"}
	loginFields    = []string{"email", "password"}
	postFields     = []string{"title", "subtitle", "img_url", "body"}
	commentFields  = []string{"comment_text"}
	contactFields  = []string{"name", "email", "phone", "message"}
)
