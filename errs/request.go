package errs

import (
	"errors"
)

// Authentication & Authorization Errors. The three account errors are
// surfaced to the user as flash messages, so their text is user-facing.
var (
	ErrDuplicateUser  = errors.New("This email has already signed up, you can log in")
	ErrUserNotFound   = errors.New("That email does not exist.")
	ErrBadCredentials = errors.New("Password incorrect, please try again.")
)

func IsDuplicateUser(err error) bool {
	return errors.Is(err, ErrDuplicateUser)
}

func IsUserNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound)
}

func IsBadCredentials(err error) bool {
	return errors.Is(err, ErrBadCredentials)
}
