package auth

import (
	"fmt"
	"strings"

	"github.com/rpupo63/blog-backend/database"
	"github.com/rpupo63/blog-backend/errs"
	"github.com/rpupo63/blog-backend/models"
)

// Accounts implements registration and credential checks on top of the user
// repository.
type Accounts struct {
	hasher PasswordHasher
}

func NewAccounts(hasher PasswordHasher) *Accounts {
	return &Accounts{hasher: hasher}
}

// Register creates a user unless the email is already taken, in which case it
// returns errs.ErrDuplicateUser and writes nothing.
func (a *Accounts) Register(db database.Database, name, email, password string) (*models.User, error) {
	email = strings.TrimSpace(email)

	_, err := db.UserRepo().FindByEmail(email)
	switch {
	case err == nil:
		return nil, errs.ErrDuplicateUser
	case !database.IsRecordNotFound(err):
		return nil, errs.NewDatabaseError("find", "user", err)
	}

	hash, err := a.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Name:     strings.TrimSpace(name),
		Email:    email,
		Password: hash,
	}
	if err := db.UserRepo().Add(user); err != nil {
		dbErr := errs.NewDatabaseError("create", "user", err)
		// lost a race with a concurrent registration
		if errs.IsUniqueConstraintViolationError(dbErr) {
			return nil, errs.ErrDuplicateUser
		}
		return nil, dbErr
	}
	return user, nil
}

// Authenticate returns the user for email if password matches. Unknown emails
// yield errs.ErrUserNotFound and wrong passwords errs.ErrBadCredentials.
func (a *Accounts) Authenticate(db database.Database, email, password string) (*models.User, error) {
	user, err := db.UserRepo().FindByEmail(strings.TrimSpace(email))
	if err != nil {
		if database.IsRecordNotFound(err) {
			return nil, errs.ErrUserNotFound
		}
		return nil, errs.NewDatabaseError("find", "user", err)
	}

	ok, err := a.hasher.Verify(password, user.Password)
	if err != nil {
		return nil, fmt.Errorf("verify password for user %d: %w", user.ID, err)
	}
	if !ok {
		return nil, errs.ErrBadCredentials
	}
	return user, nil
}
