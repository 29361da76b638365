package domain

import "errors"

var (
	ErrAccountNotFound  = errors.New("account not found")
	ErrMovieNotFound    = errors.New("movie not found")
	ErrTicketNotFound   = errors.New("ticket not found")
	ErrDuplicateLogin   = errors.New("login is already taken")
	ErrRoleMismatch     = errors.New("account exists under a different role")
	ErrAccountNotActive = errors.New("account is not active")
	ErrNoSeatsAvailable = errors.New("no seats available for this movie")
	ErrMovieInUse       = errors.New("movie is referenced by existing tickets")
	ErrConnection       = errors.New("document store is unreachable")
	ErrActivation       = errors.New("account activation failed")
	ErrDeactivation     = errors.New("account deactivation failed")
)
