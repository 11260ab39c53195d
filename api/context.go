package api

import (
	"context"

	"github.com/rpupo63/blog-backend/models"
)

type keyType string

const (
	userKey keyType = "user"
)

// ctxWithUser stores the signed-in user for the rest of the request
func ctxWithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// currentUser returns the signed-in user, or nil for an anonymous visitor
func currentUser(ctx context.Context) *models.User {
	user, _ := ctx.Value(userKey).(*models.User)
	return user
}
