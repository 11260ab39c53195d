package api

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpupo63/blog-backend/auth"
	"github.com/rpupo63/blog-backend/models"
	"github.com/rpupo63/blog-backend/testutil"
)

func validPost(title string) map[string]string {
	return map[string]string{
		"title":    title,
		"subtitle": "A subtitle",
		"img_url":  "https://images.example/cover.jpg",
		"body":     "<p>Hello</p>",
	}
}

func TestListAndShowPosts(t *testing.T) {
	app := newTestApp(t, nil)
	admin := testutil.SeedUser(t, app.db, "Admin", "admin@example.com")
	first := testutil.SeedPost(t, app.db, admin, "First")
	second := testutil.SeedPost(t, app.db, admin, "Second")

	t.Run("home lists posts in id order", func(t *testing.T) {
		rec := app.do(http.MethodGet, "/", nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		view := app.renderer.last(t)
		assert.Equal(t, viewIndex, view.name)
		require.Len(t, view.data.Posts, 2)
		assert.Equal(t, first.ID, view.data.Posts[0].ID)
		assert.Equal(t, second.ID, view.data.Posts[1].ID)
		assert.Nil(t, view.data.CurrentUser)
		assert.False(t, view.data.IsAdmin)
	})

	t.Run("admin flag reaches the view", func(t *testing.T) {
		app.do(http.MethodGet, "/", nil, app.loginAs(admin))

		assert.True(t, app.renderer.last(t).data.IsAdmin)
	})

	t.Run("post page", func(t *testing.T) {
		rec := app.do(http.MethodGet, "/post/2", nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		view := app.renderer.last(t)
		assert.Equal(t, viewPost, view.name)
		assert.Equal(t, "Second", view.data.Post.Title)
		assert.Empty(t, view.data.Comments)
	})

	t.Run("missing post is 404", func(t *testing.T) {
		rec := app.do(http.MethodGet, "/post/42", nil)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		view := app.renderer.last(t)
		assert.Equal(t, viewError, view.name)
		assert.Equal(t, http.StatusNotFound, view.data.StatusCode)
	})

	t.Run("non-numeric id is 404", func(t *testing.T) {
		for _, target := range []string{"/post/abc", "/edit-post/abc", "/delete/x1"} {
			rec := app.do(http.MethodGet, target, nil, app.loginAs(admin))
			assert.Equal(t, http.StatusNotFound, rec.Code, target)
		}
	})
}

func TestComments(t *testing.T) {
	app := newTestApp(t, nil)
	admin := testutil.SeedUser(t, app.db, "Admin", "admin@example.com")
	reader := testutil.SeedUser(t, app.db, "Reader", "reader@example.com")
	post := testutil.SeedPost(t, app.db, admin, "First")

	t.Run("anonymous visitors are sent to login", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/post/1", postForm(map[string]string{"comment_text": "hi"}))

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get("Location"))
		assert.Equal(t, []string{"Login or register to comment"}, flashes(rec))
		assert.EqualValues(t, 0, app.count(&models.Comment{}))
	})

	t.Run("empty comment is rejected", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/post/1", postForm(map[string]string{"comment_text": "   "}), app.loginAs(reader))

		assert.Equal(t, http.StatusOK, rec.Code)
		view := app.renderer.last(t)
		assert.Equal(t, viewPost, view.name)
		assert.NotEmpty(t, view.data.FormErrors.Get("comment_text"))
		assert.EqualValues(t, 0, app.count(&models.Comment{}))
	})

	t.Run("signed-in user comments", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/post/1", postForm(map[string]string{"comment_text": "<b>Nice</b> post"}), app.loginAs(reader))

		assert.Equal(t, http.StatusOK, rec.Code)
		view := app.renderer.last(t)
		assert.Equal(t, viewPost, view.name)
		require.Len(t, view.data.Comments, 1)
		comment := view.data.Comments[0]
		assert.Equal(t, "<b>Nice</b> post", comment.Text)
		assert.Equal(t, "Reader", comment.AuthorName)
		assert.True(t, strings.HasPrefix(comment.AvatarURL, "https://www.gravatar.com/avatar/"))

		var stored models.Comment
		require.NoError(t, app.db.First(&stored).Error)
		assert.Equal(t, reader.ID, stored.AuthorID)
		assert.Equal(t, post.ID, stored.PostID)
	})

	t.Run("commenting on a missing post is 404", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/post/42", postForm(map[string]string{"comment_text": "hi"}), app.loginAs(reader))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.EqualValues(t, 1, app.count(&models.Comment{}))
	})
}

func TestAdminRoutesRejectNonAdmins(t *testing.T) {
	app := newTestApp(t, nil)
	admin := testutil.SeedUser(t, app.db, "Admin", "admin@example.com")
	reader := testutil.SeedUser(t, app.db, "Reader", "reader@example.com")
	testutil.SeedPost(t, app.db, admin, "First")

	routes := []struct {
		method string
		target string
	}{
		{http.MethodGet, "/new-blog-post"},
		{http.MethodPost, "/new-blog-post"},
		{http.MethodGet, "/edit-post/1"},
		{http.MethodPost, "/edit-post/1"},
		{http.MethodGet, "/delete/1"},
		{http.MethodPost, "/delete/1"},
	}

	for name, cookie := range map[string]*http.Cookie{"anonymous": nil, "reader": app.loginAs(reader)} {
		t.Run(name, func(t *testing.T) {
			for _, route := range routes {
				rec := app.do(route.method, route.target, postForm(validPost("Hijacked")), cookie)

				assert.Equal(t, http.StatusForbidden, rec.Code, "%s %s", route.method, route.target)
				assert.Equal(t, viewError, app.renderer.last(t).name)
			}

			assert.EqualValues(t, 1, app.count(&models.BlogPost{}))
			var post models.BlogPost
			require.NoError(t, app.db.First(&post, 1).Error)
			assert.Equal(t, "First", post.Title)
		})
	}
}

func TestCreatePost(t *testing.T) {
	app := newTestApp(t, nil)
	admin := testutil.SeedUser(t, app.db, "Admin", "admin@example.com")
	session := app.loginAs(admin)

	t.Run("GET shows an empty form", func(t *testing.T) {
		rec := app.do(http.MethodGet, "/new-blog-post", nil, session)

		assert.Equal(t, http.StatusOK, rec.Code)
		view := app.renderer.last(t)
		assert.Equal(t, viewMakePost, view.name)
		assert.False(t, view.data.IsEdit)
	})

	t.Run("inserts with author and today's date", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/new-blog-post", postForm(validPost("Hello World")), session)

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/", rec.Header().Get("Location"))

		var post models.BlogPost
		require.NoError(t, app.db.First(&post, "title = ?", "Hello World").Error)
		assert.Equal(t, "June 01, 2024", post.Date)
		assert.Equal(t, "Admin", post.Author)
		assert.Equal(t, admin.ID, post.AuthorID)
		assert.Equal(t, "<p>Hello</p>", post.Body)
		assert.Equal(t, "https://images.example/cover.jpg", post.ImgURL)
	})

	t.Run("duplicate title is a form error", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/new-blog-post", postForm(validPost("Hello World")), session)

		assert.Equal(t, http.StatusOK, rec.Code)
		view := app.renderer.last(t)
		assert.Equal(t, viewMakePost, view.name)
		assert.Equal(t, duplicateTitle, view.data.FormErrors.Get("title"))
		assert.EqualValues(t, 1, app.count(&models.BlogPost{}))
	})

	t.Run("invalid fields are reported", func(t *testing.T) {
		values := validPost("Another")
		values["img_url"] = "not a url"
		values["body"] = ""

		rec := app.do(http.MethodPost, "/new-blog-post", postForm(values), session)

		assert.Equal(t, http.StatusOK, rec.Code)
		view := app.renderer.last(t)
		assert.Equal(t, "Invalid URL.", view.data.FormErrors.Get("img_url"))
		assert.Equal(t, "This field is required.", view.data.FormErrors.Get("body"))
		assert.Equal(t, "Another", view.data.FormData["title"])
		assert.EqualValues(t, 1, app.count(&models.BlogPost{}))
	})
}

func TestEditPost(t *testing.T) {
	app := newTestApp(t, map[string]string{"ADMIN_IDS": "1,2"})
	admin := testutil.SeedUser(t, app.db, "Admin", "admin@example.com")
	editor := testutil.SeedUser(t, app.db, "Editor", "editor@example.com")
	post := testutil.SeedPost(t, app.db, admin, "Original")
	testutil.SeedPost(t, app.db, admin, "Taken")

	t.Run("GET pre-fills the form", func(t *testing.T) {
		rec := app.do(http.MethodGet, "/edit-post/1", nil, app.loginAs(admin))

		assert.Equal(t, http.StatusOK, rec.Code)
		view := app.renderer.last(t)
		assert.Equal(t, viewMakePost, view.name)
		assert.True(t, view.data.IsEdit)
		assert.Equal(t, "Original", view.data.FormData["title"])
		assert.Equal(t, post.ImgURL, view.data.FormData["img_url"])
	})

	t.Run("missing post is 404", func(t *testing.T) {
		rec := app.do(http.MethodGet, "/edit-post/42", nil, app.loginAs(admin))
		assert.Equal(t, http.StatusNotFound, rec.Code)

		rec = app.do(http.MethodPost, "/edit-post/42", postForm(validPost("Edited")), app.loginAs(admin))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("overwrites content and keeps id and date", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/edit-post/1", postForm(validPost("Edited")), app.loginAs(editor))

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/post/1", rec.Header().Get("Location"))

		var edited models.BlogPost
		require.NoError(t, app.db.First(&edited, post.ID).Error)
		assert.Equal(t, "Edited", edited.Title)
		assert.Equal(t, "A subtitle", edited.Subtitle)
		assert.Equal(t, post.Date, edited.Date)
		assert.Equal(t, "Editor", edited.Author)
		assert.Equal(t, editor.ID, edited.AuthorID)
		assert.EqualValues(t, 2, app.count(&models.BlogPost{}))
	})

	t.Run("renaming onto another title is a form error", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/edit-post/1", postForm(validPost("Taken")), app.loginAs(admin))

		assert.Equal(t, http.StatusOK, rec.Code)
		view := app.renderer.last(t)
		assert.True(t, view.data.IsEdit)
		assert.Equal(t, duplicateTitle, view.data.FormErrors.Get("title"))

		var unchanged models.BlogPost
		require.NoError(t, app.db.First(&unchanged, post.ID).Error)
		assert.Equal(t, "Edited", unchanged.Title)
	})
}

func TestDeletePost(t *testing.T) {
	app := newTestApp(t, nil)
	admin := testutil.SeedUser(t, app.db, "Admin", "admin@example.com")
	reader := testutil.SeedUser(t, app.db, "Reader", "reader@example.com")
	post := testutil.SeedPost(t, app.db, admin, "Doomed")
	other := testutil.SeedPost(t, app.db, admin, "Survivor")
	for _, c := range []*models.Comment{
		{Text: "one", AuthorID: reader.ID, PostID: post.ID},
		{Text: "two", AuthorID: admin.ID, PostID: post.ID},
		{Text: "elsewhere", AuthorID: reader.ID, PostID: other.ID},
	} {
		require.NoError(t, app.db.Omit("Author").Create(c).Error)
	}
	session := app.loginAs(admin)

	t.Run("GET only asks for confirmation", func(t *testing.T) {
		rec := app.do(http.MethodGet, "/delete/1", nil, session)

		assert.Equal(t, http.StatusOK, rec.Code)
		view := app.renderer.last(t)
		assert.Equal(t, viewDeletePost, view.name)
		assert.Equal(t, "Doomed", view.data.Post.Title)
		assert.EqualValues(t, 2, app.count(&models.BlogPost{}))
		assert.EqualValues(t, 3, app.count(&models.Comment{}))
	})

	t.Run("POST removes the post and its comments", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/delete/1", postForm(nil), session)

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/", rec.Header().Get("Location"))
		assert.EqualValues(t, 1, app.count(&models.BlogPost{}))

		var remaining []models.Comment
		require.NoError(t, app.db.Find(&remaining).Error)
		require.Len(t, remaining, 1)
		assert.Equal(t, "elsewhere", remaining[0].Text)
	})

	t.Run("missing post is 404", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, app.do(http.MethodGet, "/delete/1", nil, session).Code)
		assert.Equal(t, http.StatusNotFound, app.do(http.MethodPost, "/delete/1", postForm(nil), session).Code)
	})
}

func TestSessionForDeletedUserIsNotFound(t *testing.T) {
	app := newTestApp(t, nil)

	rec := app.do(http.MethodGet, "/", nil, app.loginAs(&models.User{ID: 99}))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	cleared := responseCookie(rec, auth.SessionCookieName)
	require.NotNil(t, cleared)
	assert.Negative(t, cleared.MaxAge)
}

func TestTamperedSessionIsAnonymous(t *testing.T) {
	app := newTestApp(t, nil)
	admin := testutil.SeedUser(t, app.db, "Admin", "admin@example.com")

	cookie := app.loginAs(admin)
	cookie.Value += "x"
	rec := app.do(http.MethodGet, "/new-blog-post", nil, cookie)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireLoginToRead(t *testing.T) {
	app := newTestApp(t, map[string]string{"REQUIRE_LOGIN_TO_READ": "true"})
	admin := testutil.SeedUser(t, app.db, "Admin", "admin@example.com")
	testutil.SeedPost(t, app.db, admin, "First")

	for _, target := range []string{"/", "/post/1"} {
		rec := app.do(http.MethodGet, target, nil)
		assert.Equal(t, http.StatusFound, rec.Code, target)
		assert.Equal(t, "/login", rec.Header().Get("Location"), target)
		assert.Equal(t, []string{loginMessage}, flashes(rec))

		rec = app.do(http.MethodGet, target, nil, app.loginAs(admin))
		assert.Equal(t, http.StatusOK, rec.Code, target)
	}

	// pages outside the blog stay public
	assert.Equal(t, http.StatusOK, app.do(http.MethodGet, "/about", nil).Code)
	assert.Equal(t, http.StatusOK, app.do(http.MethodGet, "/login", nil).Code)
}
