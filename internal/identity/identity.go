// Package identity carries the authenticated user through the core.
//
// Authentication itself happens upstream (the identity provider is an
// external collaborator); this package only defines the value every
// operation receives explicitly instead of reading ambient globals.
package identity

import "strings"

// User identifies the authenticated account owner.
type User struct {
	ID    string
	Email string
	Name  string
}

// Valid reports whether the user carries a usable account id.
func (u User) Valid() bool {
	return strings.TrimSpace(u.ID) != ""
}

// EmailMatches compares an address against the user's email,
// case-insensitively and ignoring surrounding whitespace.
func (u User) EmailMatches(email string) bool {
	if u.Email == "" || email == "" {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(u.Email), strings.TrimSpace(email))
}
