package auth

import "github.com/rpupo63/blog-backend/models"

// AdminSet is the set of user ids allowed to create, edit, and delete posts.
type AdminSet map[uint]struct{}

func NewAdminSet(ids ...uint) AdminSet {
	set := make(AdminSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// IsAdmin reports whether user is authenticated and in the set. A nil user is
// an anonymous visitor.
func (s AdminSet) IsAdmin(user *models.User) bool {
	if user == nil {
		return false
	}
	_, ok := s[user.ID]
	return ok
}
