package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpupo63/blog-backend/auth"
	"github.com/rpupo63/blog-backend/errs"
	"github.com/rpupo63/blog-backend/models"
)

func TestRegister(t *testing.T) {
	t.Run("creates the user and logs them in", func(t *testing.T) {
		app := newTestApp(t, nil)

		rec := app.do(http.MethodPost, "/register", postForm(map[string]string{
			"name":     "Ada",
			"email":    "ada@example.com",
			"password": "s3cret",
		}))

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/", rec.Header().Get("Location"))
		assert.EqualValues(t, 1, app.count(&models.User{}))

		var user models.User
		require.NoError(t, app.db.First(&user, "email = ?", "ada@example.com").Error)
		assert.Equal(t, "Ada", user.Name)
		assert.NotEqual(t, "s3cret", user.Password)

		session := responseCookie(rec, auth.SessionCookieName)
		require.NotNil(t, session)

		rec = app.do(http.MethodGet, "/", nil, session)
		assert.Equal(t, http.StatusOK, rec.Code)
		view := app.renderer.last(t)
		require.NotNil(t, view.data.CurrentUser)
		assert.Equal(t, user.ID, view.data.CurrentUser.ID)
	})

	t.Run("existing email redirects to login without a new row", func(t *testing.T) {
		app := newTestApp(t, nil)
		app.register("Ada", "ada@example.com", "s3cret")

		rec := app.do(http.MethodPost, "/register", postForm(map[string]string{
			"name":     "Someone Else",
			"email":    "ada@example.com",
			"password": "other",
		}))

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get("Location"))
		assert.Equal(t, []string{errs.ErrDuplicateUser.Error()}, flashes(rec))
		assert.Nil(t, responseCookie(rec, auth.SessionCookieName))
		assert.EqualValues(t, 1, app.count(&models.User{}))
	})

	t.Run("missing fields re-render the form", func(t *testing.T) {
		app := newTestApp(t, nil)

		rec := app.do(http.MethodPost, "/register", postForm(map[string]string{
			"name":     "  ",
			"email":    "ada@example.com",
			"password": "s3cret",
		}))

		assert.Equal(t, http.StatusOK, rec.Code)
		view := app.renderer.last(t)
		assert.Equal(t, viewRegister, view.name)
		assert.Equal(t, "This field is required.", view.data.FormErrors.Get("name"))
		assert.Equal(t, "ada@example.com", view.data.FormData["email"])
		assert.NotContains(t, view.data.FormData, "password")
		assert.EqualValues(t, 0, app.count(&models.User{}))
	})

	t.Run("GET shows the form", func(t *testing.T) {
		app := newTestApp(t, nil)

		rec := app.do(http.MethodGet, "/register", nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, viewRegister, app.renderer.last(t).name)
	})
}

func TestLogin(t *testing.T) {
	app := newTestApp(t, nil)
	user := app.register("Ada", "ada@example.com", "s3cret")

	t.Run("unknown email", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/login", postForm(map[string]string{
			"email":    "nobody@example.com",
			"password": "s3cret",
		}))

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get("Location"))
		assert.Equal(t, []string{"That email does not exist."}, flashes(rec))
		assert.Nil(t, responseCookie(rec, auth.SessionCookieName))
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/login", postForm(map[string]string{
			"email":    "ada@example.com",
			"password": "wrong",
		}))

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get("Location"))
		assert.Equal(t, []string{"Password incorrect, please try again."}, flashes(rec))
		assert.Nil(t, responseCookie(rec, auth.SessionCookieName))
	})

	t.Run("correct credentials", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/login", postForm(map[string]string{
			"email":    "ada@example.com",
			"password": "s3cret",
		}))

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/", rec.Header().Get("Location"))

		session := responseCookie(rec, auth.SessionCookieName)
		require.NotNil(t, session)
		id, err := app.sessions.UserID(requestWithCookie(session))
		require.NoError(t, err)
		assert.Equal(t, user.ID, id)
	})

	t.Run("missing password re-renders the form", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/login", postForm(map[string]string{
			"email": "ada@example.com",
		}))

		assert.Equal(t, http.StatusOK, rec.Code)
		view := app.renderer.last(t)
		assert.Equal(t, viewLogin, view.name)
		assert.NotEmpty(t, view.data.FormErrors.Get("password"))
	})
}

func TestLogout(t *testing.T) {
	app := newTestApp(t, nil)
	user := app.register("Ada", "ada@example.com", "s3cret")

	for _, cookie := range []*http.Cookie{app.loginAs(user), nil} {
		rec := app.do(http.MethodGet, "/logout", nil, cookie)

		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/", rec.Header().Get("Location"))
		cleared := responseCookie(rec, auth.SessionCookieName)
		require.NotNil(t, cleared)
		assert.Empty(t, cleared.Value)
		assert.Negative(t, cleared.MaxAge)
	}
}

func requestWithCookie(c *http.Cookie) *http.Request {
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)
	return req
}
