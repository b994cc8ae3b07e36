// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"time"
)

// =============================================================================
// ROLES
// =============================================================================

// Role is the platform role of a user account.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// CanModerate reports whether the role grants access to the moderation queue.
func (r Role) CanModerate() bool {
	return r == RoleModerator || r == RoleAdmin
}

// =============================================================================
// USER
// =============================================================================

// User is a Talk@FCIT account as returned by /auth/me/ and /auth/users/{id}/.
type User struct {
	ID             int       `json:"id"`
	Email          string    `json:"email"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Bio            string    `json:"bio"`
	ProfilePicture string    `json:"profile_picture"`
	Role           Role      `json:"role"`
	IsVerified     bool      `json:"is_verified"`
	CreatedAt      time.Time `json:"created_at"`

	// Profile counters (present on profile endpoints only)
	PostsCount     int `json:"posts_count,omitempty"`
	FollowersCount int `json:"followers_count,omitempty"`
	FollowingCount int `json:"following_count,omitempty"`
}

// DisplayName returns "First Last" when names are set, otherwise the email.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.FirstName != "" {
		return strings.TrimSpace(u.FirstName + " " + u.LastName)
	}
	return u.Email
}

// Initials returns the uppercase initials used for avatar placeholders.
// Falls back to the first rune of the email when names are missing.
func (u *User) Initials() string {
	if u == nil {
		return ""
	}
	first, last := u.FirstName, u.LastName
	if first == "" {
		first = u.Email
	}
	var b strings.Builder
	for _, s := range []string{first, last} {
		for _, r := range s {
			b.WriteRune(r)
			break
		}
	}
	return strings.ToUpper(b.String())
}

// Registration is the request body for creating an account via /auth/users/.
type Registration struct {
	Email           string `json:"email"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
	Role            Role   `json:"role,omitempty"` // admin-created accounts only
}

// UniversityDomain is the email domain required for self-registration.
const UniversityDomain = "@pucit.edu.pk"

// MinPasswordLen is the minimum accepted password length.
const MinPasswordLen = 8

// Validate checks the registration client-side before any network call.
// The returned messages match what the views surface inline.
func (r *Registration) Validate() []string {
	var problems []string
	if !strings.HasSuffix(r.Email, UniversityDomain) {
		problems = append(problems, "please use your PUCIT email address ("+UniversityDomain+")")
	}
	if len(r.Password) < MinPasswordLen {
		problems = append(problems, "password must be at least 8 characters")
	}
	if r.Password != r.PasswordConfirm {
		problems = append(problems, "passwords do not match")
	}
	return problems
}
