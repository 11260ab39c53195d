package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rpupo63/blog-backend/auth"
	"github.com/rpupo63/blog-backend/database"
	"github.com/rpupo63/blog-backend/errs"
	"github.com/rpupo63/blog-backend/models"
	"github.com/rpupo63/blog-backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	commentLoginMessage = "Login or register to comment"
	duplicateTitle      = "A post with this title already exists."
)

type blogPostHandler struct {
	responder Responder
	logger    zerolog.Logger
	database  database.Database
	gravatar  services.Gravatar
	now       func() time.Time
}

func newBlogPostHandler(database database.Database, gravatar services.Gravatar, now func() time.Time, renderer Renderer, admins auth.AdminSet) blogPostHandler {
	logger := log.With().Str("handlerName", "blogPostHandler").Logger()

	return blogPostHandler{
		responder: NewResponder(logger, renderer, admins),
		logger:    logger,
		database:  database,
		gravatar:  gravatar,
		now:       now,
	}
}

// postID reads the numeric {postID} route parameter. The route pattern only
// matches digits, so a parse failure means the id overflowed.
func postID(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, "postID"), 10, 64)
	if err != nil || id == 0 {
		return 0, errs.NewNotFound("blog post")
	}
	return uint(id), nil
}

// getAllBlogPosts renders the home page with every post in id order.
func (h blogPostHandler) getAllBlogPosts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blogPosts, err := h.database.WithContext(r.Context()).BlogPostRepo().FindAll()
		if err != nil {
			h.responder.WriteError(w, r, errs.NewDatabaseError("find", "blog posts", err))
			return
		}

		h.responder.Render(w, r, viewIndex, &ViewData{Posts: blogPosts})
	}
}

// showBlogPost renders a post with its comments.
func (h blogPostHandler) showBlogPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := postID(r)
		if err != nil {
			h.responder.WriteError(w, r, err)
			return
		}

		h.renderPost(w, r, id, nil)
	}
}

// addComment stores a comment from the signed-in user and re-renders the post.
func (h blogPostHandler) addComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := postID(r)
		if err != nil {
			h.responder.WriteError(w, r, err)
			return
		}

		user := currentUser(r.Context())
		if user == nil {
			h.responder.RedirectWithFlash(w, r, "/login", commentLoginMessage)
			return
		}

		f, err := parseForm(r, commentFields...)
		if err != nil {
			h.responder.WriteError(w, r, err)
			return
		}
		f.required(commentFields...)
		if !f.valid() {
			h.renderPost(w, r, id, f)
			return
		}

		db := h.database.WithContext(r.Context())
		err = db.Transaction(func(tx database.Database) error {
			if _, err := tx.BlogPostRepo().FindByID(id); err != nil {
				return errs.NewDatabaseError("find", "blog post", err)
			}
			comment := &models.Comment{
				Text:     f.get("comment_text"),
				AuthorID: user.ID,
				PostID:   id,
			}
			if err := tx.CommentRepo().Add(comment); err != nil {
				return errs.NewDatabaseError("create", "comment", err)
			}
			return nil
		})
		if err != nil {
			h.responder.WriteError(w, r, err)
			return
		}

		h.logger.Info().Uint("postID", id).Uint("userID", user.ID).Msg("comment added")
		h.renderPost(w, r, id, nil)
	}
}

// renderPost loads a post with its comments and renders it. f, when set,
// carries the rejected comment form.
func (h blogPostHandler) renderPost(w http.ResponseWriter, r *http.Request, id uint, f *form) {
	blogPost, err := h.database.WithContext(r.Context()).BlogPostRepo().FindByIDWithComments(id)
	if err != nil {
		h.responder.WriteError(w, r, errs.NewDatabaseError("find", "blog post", err))
		return
	}

	comments := make([]CommentView, 0, len(blogPost.Comments))
	for _, c := range blogPost.Comments {
		view := CommentView{ID: c.ID, Text: c.Text}
		if c.Author != nil {
			view.AuthorName = c.Author.Name
			view.AvatarURL = h.gravatar.URL(c.Author.Email)
		}
		comments = append(comments, view)
	}

	data := &ViewData{
		Title:    blogPost.Title,
		Post:     blogPost,
		Comments: comments,
	}
	if f != nil {
		data.FormData = f.data()
		data.FormErrors = f.errors
	}
	h.responder.Render(w, r, viewPost, data)
}

// createBlogPost shows the new post form and inserts posts authored by the
// signed-in admin, dated today.
func (h blogPostHandler) createBlogPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			h.responder.Render(w, r, viewMakePost, &ViewData{Title: "New Post"})
			return
		}

		f, err := parsePostForm(r)
		if err != nil {
			h.responder.WriteError(w, r, err)
			return
		}
		if !f.valid() {
			h.renderPostForm(w, r, f, false)
			return
		}

		admin := currentUser(r.Context())
		blogPost := &models.BlogPost{
			Title:    f.get("title"),
			Subtitle: f.get("subtitle"),
			ImgURL:   f.get("img_url"),
			Body:     f.get("body"),
			Author:   admin.Name,
			AuthorID: admin.ID,
		}
		blogPost.StampDate(h.now())

		db := h.database.WithContext(r.Context())
		err = db.Transaction(func(tx database.Database) error {
			if err := tx.BlogPostRepo().Add(blogPost); err != nil {
				return errs.NewDatabaseError("create", "blog post", err)
			}
			return nil
		})
		if errs.IsUniqueConstraintViolationError(err) {
			f.fail("title", duplicateTitle)
			h.renderPostForm(w, r, f, false)
			return
		}
		if err != nil {
			h.responder.WriteError(w, r, err)
			return
		}

		h.logger.Info().Uint("postID", blogPost.ID).Str("title", blogPost.Title).Msg("blog post created")
		h.responder.Redirect(w, r, "/")
	}
}

// updateBlogPost shows a pre-filled form and overwrites the editable fields.
// The id and date are kept; the author is re-stamped to the editing admin.
func (h blogPostHandler) updateBlogPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := postID(r)
		if err != nil {
			h.responder.WriteError(w, r, err)
			return
		}

		db := h.database.WithContext(r.Context())
		blogPost, err := db.BlogPostRepo().FindByID(id)
		if err != nil {
			h.responder.WriteError(w, r, errs.NewDatabaseError("find", "blog post", err))
			return
		}

		if r.Method != http.MethodPost {
			h.responder.Render(w, r, viewMakePost, &ViewData{
				Title:  "Edit Post",
				Post:   blogPost,
				IsEdit: true,
				FormData: map[string]string{
					"title":    blogPost.Title,
					"subtitle": blogPost.Subtitle,
					"img_url":  blogPost.ImgURL,
					"body":     blogPost.Body,
				},
			})
			return
		}

		f, err := parsePostForm(r)
		if err != nil {
			h.responder.WriteError(w, r, err)
			return
		}
		if !f.valid() {
			h.renderPostForm(w, r, f, true)
			return
		}

		admin := currentUser(r.Context())
		blogPost.Title = f.get("title")
		blogPost.Subtitle = f.get("subtitle")
		blogPost.ImgURL = f.get("img_url")
		blogPost.Body = f.get("body")
		blogPost.Author = admin.Name
		blogPost.AuthorID = admin.ID

		err = db.Transaction(func(tx database.Database) error {
			if err := tx.BlogPostRepo().Update(blogPost); err != nil {
				return errs.NewDatabaseError("update", "blog post", err)
			}
			return nil
		})
		if errs.IsUniqueConstraintViolationError(err) {
			f.fail("title", duplicateTitle)
			h.renderPostForm(w, r, f, true)
			return
		}
		if err != nil {
			h.responder.WriteError(w, r, err)
			return
		}

		h.logger.Info().Uint("postID", blogPost.ID).Msg("blog post updated")
		h.responder.Redirect(w, r, "/post/"+strconv.FormatUint(uint64(blogPost.ID), 10))
	}
}

// confirmDeleteBlogPost asks before deleting. It never changes anything.
func (h blogPostHandler) confirmDeleteBlogPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := postID(r)
		if err != nil {
			h.responder.WriteError(w, r, err)
			return
		}

		blogPost, err := h.database.WithContext(r.Context()).BlogPostRepo().FindByID(id)
		if err != nil {
			h.responder.WriteError(w, r, errs.NewDatabaseError("find", "blog post", err))
			return
		}

		h.responder.Render(w, r, viewDeletePost, &ViewData{Title: "Delete Post", Post: blogPost})
	}
}

// deleteBlogPost removes a post together with its comments.
func (h blogPostHandler) deleteBlogPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := postID(r)
		if err != nil {
			h.responder.WriteError(w, r, err)
			return
		}

		if err := h.database.WithContext(r.Context()).BlogPostRepo().Delete(id); err != nil {
			h.responder.WriteError(w, r, errs.NewDatabaseError("delete", "blog post", err))
			return
		}

		h.logger.Info().Uint("postID", id).Msg("blog post deleted")
		h.responder.Redirect(w, r, "/")
	}
}

func parsePostForm(r *http.Request) (*form, error) {
	f, err := parseForm(r, postFields...)
	if err != nil {
		return nil, err
	}
	f.required(postFields...)
	f.url("img_url")
	return f, nil
}

func (h blogPostHandler) renderPostForm(w http.ResponseWriter, r *http.Request, f *form, isEdit bool) {
	title := "New Post"
	if isEdit {
		title = "Edit Post"
	}
	h.responder.Render(w, r, viewMakePost, &ViewData{
		Title:      title,
		IsEdit:     isEdit,
		FormData:   f.data(),
		FormErrors: f.errors,
	})
}
