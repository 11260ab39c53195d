package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/rpupo63/blog-backend/auth"
	"github.com/rpupo63/blog-backend/database"
	"github.com/rpupo63/blog-backend/models"
	"github.com/rpupo63/blog-backend/testutil"
)

const testSecret = "0123456789abcdef0123456789abcdef"

var testNow = time.Date(2024, time.June, 1, 9, 30, 0, 0, time.UTC)

type recordedView struct {
	name string
	data ViewData
}

// recordingRenderer remembers every view it renders and writes the view name
// as the body.
type recordingRenderer struct {
	mu    sync.Mutex
	views []recordedView
}

func (r *recordingRenderer) Render(w io.Writer, view string, data *ViewData) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.views = append(r.views, recordedView{name: view, data: *data})
	_, err := io.WriteString(w, view)
	return err
}

func (r *recordingRenderer) last(t *testing.T) recordedView {
	t.Helper()

	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.views, "nothing was rendered")
	return r.views[len(r.views)-1]
}

type fakeMailer struct {
	err        error
	calls      int
	subject    string
	body       string
	recipients []string
}

func (m *fakeMailer) Send(_ context.Context, subject, body string, recipients []string) error {
	m.calls++
	m.subject = subject
	m.body = body
	m.recipients = recipients
	return m.err
}

type testApp struct {
	t        *testing.T
	db       *gorm.DB
	router   *chi.Mux
	renderer *recordingRenderer
	sessions *auth.SessionManager
	accounts *auth.Accounts
}

// newTestApp builds the full router over a fresh database. cfg entries are
// layered over a base config in which user 1 is the only admin.
func newTestApp(t *testing.T, cfg map[string]string, opts ...func(*router)) *testApp {
	t.Helper()

	c := map[string]string{
		"SECRET_KEY": testSecret,
		"ADMIN_IDS":  "1",
	}
	for k, v := range cfg {
		c[k] = v
	}

	db := testutil.OpenDB(t)
	renderer := &recordingRenderer{}
	hasher := auth.NewPBKDF2Hasher(1000)
	clock := func() time.Time { return testNow }

	opts = append([]func(*router){
		withConfig(c),
		withRenderer(renderer),
		withHasher(hasher),
		withClock(clock),
	}, opts...)

	mux, err := newRouter(database.New(db), opts...)
	require.NoError(t, err)

	sessions, err := auth.NewSessionManager(testSecret, auth.WithClock(clock))
	require.NoError(t, err)

	return &testApp{
		t:        t,
		db:       db,
		router:   mux,
		renderer: renderer,
		sessions: sessions,
		accounts: auth.NewAccounts(hasher),
	}
}

// do sends a request through the router. A non-nil form is sent url-encoded.
func (a *testApp) do(method, target string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	a.t.Helper()

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for _, c := range cookies {
		if c != nil {
			req.AddCookie(c)
		}
	}

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

// loginAs returns a session cookie for user.
func (a *testApp) loginAs(user *models.User) *http.Cookie {
	a.t.Helper()

	rec := httptest.NewRecorder()
	require.NoError(a.t, a.sessions.Login(rec, user))
	cookie := responseCookie(rec, auth.SessionCookieName)
	require.NotNil(a.t, cookie)
	return cookie
}

// register creates an account with a real password hash.
func (a *testApp) register(name, email, password string) *models.User {
	a.t.Helper()

	user, err := a.accounts.Register(database.New(a.db), name, email, password)
	require.NoError(a.t, err)
	return user
}

func (a *testApp) count(model any) int64 {
	a.t.Helper()

	var n int64
	require.NoError(a.t, a.db.Model(model).Count(&n).Error)
	return n
}

func responseCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// flashes decodes the flash messages queued by a response.
func flashes(rec *httptest.ResponseRecorder) []string {
	cookie := responseCookie(rec, flashCookieName)
	if cookie == nil {
		return nil
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	return popFlashes(httptest.NewRecorder(), req)
}

func postForm(values map[string]string) url.Values {
	form := url.Values{}
	for k, v := range values {
		form.Set(k, v)
	}
	return form
}
