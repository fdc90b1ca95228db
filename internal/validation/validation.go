// Package validation schema-checks and normalizes inbound auth
// payloads before they reach the service layer. Failures are
// collected rather than short-circuited, so a response lists every
// problem with the request as ordered "field: message" strings.
package validation

import (
	"net/mail"
	"strings"
	"unicode/utf8"
)

// Errors accumulates field-level validation messages in the order
// the fields were checked.
type Errors []string

func (e *Errors) add(field, msg string) { *e = append(*e, field+": "+msg) }

// OK reports whether no validation message was recorded.
func (e Errors) OK() bool { return len(e) == 0 }

// RegisterRequest is the normalized registration payload. Validate
// trims names and the email in place; the trimmed values are what
// gets stored.
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (r *RegisterRequest) Validate() Errors {
	var errs Errors
	r.Email = strings.TrimSpace(r.Email)
	checkEmail(&errs, r.Email)
	checkPassword(&errs, "password", r.Password)
	r.FirstName = checkName(&errs, "first_name", r.FirstName)
	r.LastName = checkName(&errs, "last_name", r.LastName)
	return errs
}

// LoginRequest carries credentials for authentication. The password
// is only checked for presence; strength rules apply at registration.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() Errors {
	var errs Errors
	r.Email = strings.TrimSpace(r.Email)
	checkEmail(&errs, r.Email)
	if r.Password == "" {
		errs.add("password", "is required")
	}
	return errs
}

// RefreshRequest carries the refresh token to exchange for a new
// access token.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (r *RefreshRequest) Validate() Errors {
	var errs Errors
	r.RefreshToken = strings.TrimSpace(r.RefreshToken)
	if r.RefreshToken == "" {
		errs.add("refresh_token", "is required")
	}
	return errs
}

// ChangePasswordRequest carries the current and the new password.
// Only the new password must satisfy the strength policy.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (r *ChangePasswordRequest) Validate() Errors {
	var errs Errors
	if r.CurrentPassword == "" {
		errs.add("current_password", "is required")
	}
	checkPassword(&errs, "new_password", r.NewPassword)
	return errs
}

func checkEmail(errs *Errors, email string) {
	if email == "" {
		errs.add("email", "is required")
		return
	}
	// mail.ParseAddress accepts the name-addr form too; reject
	// anything that does not round-trip to the bare address.
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		errs.add("email", "is not a valid email address")
	}
}

// checkPassword enforces the strength policy: at least 8 characters
// with one ASCII uppercase, one lowercase and one digit. Length is
// counted in characters, not bytes, so multi-byte runes count once.
func checkPassword(errs *Errors, field, password string) {
	if utf8.RuneCountInString(password) < 8 {
		errs.add(field, "must be at least 8 characters long")
	}
	var upper, lower, digit bool
	for _, c := range password {
		switch {
		case c >= 'A' && c <= 'Z':
			upper = true
		case c >= 'a' && c <= 'z':
			lower = true
		case c >= '0' && c <= '9':
			digit = true
		}
	}
	if !upper {
		errs.add(field, "must contain at least one uppercase letter")
	}
	if !lower {
		errs.add(field, "must contain at least one lowercase letter")
	}
	if !digit {
		errs.add(field, "must contain at least one digit")
	}
}

// checkName trims the value and requires at least two characters
// post-trim. The trimmed value is returned for storage.
func checkName(errs *Errors, field, v string) string {
	v = strings.TrimSpace(v)
	if utf8.RuneCountInString(v) < 2 {
		errs.add(field, "must be at least 2 characters long")
	}
	return v
}
