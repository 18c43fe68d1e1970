package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// User represents an account in the marketplace. A user may additionally
// carry an Artist or a Brand profile; the role is resolved by lookup,
// never by probing both relations.
type User struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"` // Never return password in JSON
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// UserRole identifies which profile, if any, a user carries.
type UserRole string

const (
	RolePlain  UserRole = "plain"
	RoleArtist UserRole = "artist"
	RoleBrand  UserRole = "brand"
)

// ArtistSignupRequest is the payload for artist registration. One request
// creates both the User and the Artist profile.
type ArtistSignupRequest struct {
	Name                 string            `json:"name"`
	Email                string            `json:"email"`
	Password             string            `json:"password"`
	PasswordConfirmation string            `json:"password_confirmation"`
	ArtistName           string            `json:"artist_name"`
	Bio                  string            `json:"bio,omitempty"`
	Website              string            `json:"website,omitempty"`
	SocialLinks          map[string]string `json:"social_links,omitempty"`
	Genres               []string          `json:"genres,omitempty"`
}

// LoginRequest is the payload for user login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned from signup and login.
type LoginResponse struct {
	User         User    `json:"user"`
	Artist       *Artist `json:"artist,omitempty"`
	AccessToken  string  `json:"access_token"`
	RefreshToken string  `json:"refresh_token"`
	ExpiresIn    int64   `json:"expires_in"`
}

// TokenClaims represents the JWT token claims
type TokenClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Type   string `json:"type"` // "access" or "refresh"
	Exp    int64  `json:"exp"`
	Iat    int64  `json:"iat"`
}

// GetExpirationTime implements jwt.Claims interface
func (c *TokenClaims) GetExpirationTime() (*jwt.NumericDate, error) {
	return jwt.NewNumericDate(time.Unix(c.Exp, 0)), nil
}

// GetIssuedAt implements jwt.Claims interface
func (c *TokenClaims) GetIssuedAt() (*jwt.NumericDate, error) {
	return jwt.NewNumericDate(time.Unix(c.Iat, 0)), nil
}

// GetNotBefore implements jwt.Claims interface
func (c *TokenClaims) GetNotBefore() (*jwt.NumericDate, error) {
	return nil, nil
}

// GetIssuer implements jwt.Claims interface
func (c *TokenClaims) GetIssuer() (string, error) {
	return "", nil
}

// GetSubject implements jwt.Claims interface
func (c *TokenClaims) GetSubject() (string, error) {
	return c.UserID, nil
}

// GetAudience implements jwt.Claims interface
func (c *TokenClaims) GetAudience() (jwt.ClaimStrings, error) {
	return nil, nil
}
