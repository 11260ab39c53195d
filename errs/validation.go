package errs

// FormErrors collects per-field validation failures so a form can be
// re-rendered with inline messages. Get and Any are safe on a nil FormErrors.
type FormErrors map[string]string

// Add records err against its field. Only the first failure per field is kept.
func (f FormErrors) Add(err *ApiErr) {
	if _, ok := f[err.Field]; ok {
		return
	}
	f[err.Field] = err.Details
}

// Get returns the message recorded for field, or "".
func (f FormErrors) Get(field string) string {
	return f[field]
}

func (f FormErrors) Any() bool {
	return len(f) > 0
}
