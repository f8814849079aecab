package models

import "github.com/golang-jwt/jwt/v5"

// Claims is the JWT claim set accepted by the API. Only the subject and
// role are required; the subject becomes the acting user id.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Role  string `json:"role"` // "authenticated" or "anon"
}

// GetUserID returns the user ID from the JWT subject claim.
func (c *Claims) GetUserID() string {
	return c.Subject
}
