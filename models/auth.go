package models

import "time"

// TokenDetails contains a freshly issued access/refresh credential pair
// together with the access token id and both expiration timestamps
type TokenDetails struct {
	AccessToken  string
	RefreshToken string
	AccessID     string
	AtExpires    time.Time
	RtExpires    time.Time
}

// Token represents the token pair returned to clients in JSON responses
type Token struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// Principal is the authenticated caller attached to a request context by
// the authentication gate. It is a plain value, never shared mutable state.
type Principal struct {
	UserID   UserID
	Role     Role
	Nickname string
}

// IsAdmin reports whether the principal carries the admin role
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
