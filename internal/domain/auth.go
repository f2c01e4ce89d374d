package domain

import "time"

// AuthUser is the identity attached to an authenticated request.
type AuthUser struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName,omitempty"`
}

// AuthSession is an issued access token for a user.
type AuthSession struct {
	User        AuthUser  `json:"user"`
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// SessionEvent names an identity state change.
type SessionEvent string

const (
	EventSignedIn  SessionEvent = "SIGNED_IN"
	EventSignedOut SessionEvent = "SIGNED_OUT"
)

// AutoLoginRecord lets a returning user skip the sign-in screen for a bounded time.
type AutoLoginRecord struct {
	UserID    string    `json:"userId"`
	Email     string    `json:"userEmail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	ExpiresAt time.Time `json:"expiresAt"`
}
