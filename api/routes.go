package api

import (
	"github.com/go-chi/chi/v5"
)

// setupRoutes registers every page. Reading is public unless
// requireLoginToRead is set; writing posts is admin-only.
func setupRoutes(r chi.Router, handlers *routeHandlers, authMiddleware authMiddleware, requireLoginToRead bool) {
	// Account pages
	r.Get("/register", handlers.authHandler.register())
	r.Post("/register", handlers.authHandler.register())
	r.Get("/login", handlers.authHandler.login())
	r.Post("/login", handlers.authHandler.login())
	r.Get("/logout", handlers.authHandler.logout())

	// Static pages
	r.Get("/about", handlers.pageHandler.about())
	r.Get("/contact", handlers.pageHandler.contact())
	r.Post("/contact", handlers.pageHandler.contact())

	// Reading
	r.Group(func(r chi.Router) {
		if requireLoginToRead {
			r.Use(authMiddleware.requireLogin)
		}

		r.Get("/", handlers.blogPostHandler.getAllBlogPosts())
		r.Get("/post/{postID:[0-9]+}", handlers.blogPostHandler.showBlogPost())
	})

	// Commenting checks the session itself so anonymous visitors get the
	// comment-specific flash.
	r.Post("/post/{postID:[0-9]+}", handlers.blogPostHandler.addComment())

	// Admin routes
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.requireAdmin)

		r.Get("/new-blog-post", handlers.blogPostHandler.createBlogPost())
		r.Post("/new-blog-post", handlers.blogPostHandler.createBlogPost())
		r.Get("/edit-post/{postID:[0-9]+}", handlers.blogPostHandler.updateBlogPost())
		r.Post("/edit-post/{postID:[0-9]+}", handlers.blogPostHandler.updateBlogPost())
		r.Get("/delete/{postID:[0-9]+}", handlers.blogPostHandler.confirmDeleteBlogPost())
		r.Post("/delete/{postID:[0-9]+}", handlers.blogPostHandler.deleteBlogPost())
	})
}
