package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"soundlicense-backend/pkg/config"
	"soundlicense-backend/pkg/database"
	"soundlicense-backend/pkg/models"
	"soundlicense-backend/pkg/utils"
)

// AuthHandler serves signup, login and token refresh.
type AuthHandler struct {
	config *config.Config
	db     database.Store
	jwt    *utils.JWTService
}

// NewAuthHandler creates the auth handler.
func NewAuthHandler(cfg *config.Config, db database.Store) *AuthHandler {
	return &AuthHandler{
		config: cfg,
		db:     db,
		jwt:    utils.NewJWTService(cfg.JWTSecret),
	}
}

func validateArtistSignup(req *models.ArtistSignupRequest) map[string]string {
	fields := make(map[string]string)
	if strings.TrimSpace(req.Name) == "" {
		fields["name"] = "Name is required"
	}
	if strings.TrimSpace(req.Email) == "" {
		fields["email"] = "Email is required"
	} else if !utils.IsValidEmail(req.Email) {
		fields["email"] = "Email is invalid"
	}
	if len(req.Password) < 8 {
		fields["password"] = "Password must be at least 8 characters"
	}
	if req.Password != req.PasswordConfirmation {
		fields["password_confirmation"] = "Passwords do not match"
	}
	if strings.TrimSpace(req.ArtistName) == "" {
		fields["artist_name"] = "Artist name is required"
	}
	if req.Website != "" && !utils.IsValidURL(req.Website) {
		fields["website"] = "Website must be a valid URL"
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// ArtistSignup registers a user account together with its artist profile.
// Nothing is persisted when validation fails.
func (h *AuthHandler) ArtistSignup(w http.ResponseWriter, r *http.Request) {
	var req models.ArtistSignupRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if fields := validateArtistSignup(&req); fields != nil {
		utils.WriteValidationErrorResponse(w, "Signup validation failed", fields)
		return
	}

	// Uniqueness check before any insert so a failed signup leaves no rows
	if _, err := h.db.GetUserByEmail(req.Email); err == nil {
		utils.WriteValidationErrorResponse(w, "Signup validation failed", map[string]string{
			"email": "Email is already registered",
		})
		return
	} else if !errors.Is(err, database.ErrNotFound) {
		utils.WriteInternalServerErrorResponse(w, "Failed to check email")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to hash password")
		return
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := h.db.CreateUser(user); err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to create user")
		return
	}

	artist := &models.Artist{
		Name:        req.ArtistName,
		Bio:         req.Bio,
		Website:     req.Website,
		SocialLinks: req.SocialLinks,
		Genres:      req.Genres,
		UserID:      user.ID,
	}
	if err := h.db.CreateArtist(artist); err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to create artist profile")
		return
	}

	accessToken, refreshToken, expiresIn, err := h.jwt.GenerateTokenPair(user.ID, user.Email)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to generate tokens")
		return
	}

	fmt.Printf("✅ Artist signup: %s (%s)\n", artist.Name, user.Email)

	utils.WriteCreatedResponse(w, models.LoginResponse{
		User:         *user,
		Artist:       artist,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    expiresIn,
	})
}

// Login exchanges credentials for a token pair.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		utils.WriteBadRequestResponse(w, "Email and password are required")
		return
	}

	user, err := h.db.GetUserByEmail(req.Email)
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "Invalid credentials")
		return
	}

	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		utils.WriteUnauthorizedResponse(w, "Invalid credentials")
		return
	}

	accessToken, refreshToken, expiresIn, err := h.jwt.GenerateTokenPair(user.ID, user.Email)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to generate tokens")
		return
	}

	resp := models.LoginResponse{
		User:         *user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    expiresIn,
	}
	// Artist profile is optional; brand-only accounts have none
	if artist, err := h.db.GetArtistByUserID(user.ID); err == nil {
		resp.Artist = artist
	}

	utils.WriteSuccessResponse(w, resp)
}

// Refresh exchanges a refresh token for a fresh access token.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body")
		return
	}
	if req.RefreshToken == "" {
		utils.WriteBadRequestResponse(w, "Refresh token is required")
		return
	}

	accessToken, expiresIn, err := h.jwt.RefreshAccessToken(req.RefreshToken)
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "Invalid refresh token")
		return
	}

	utils.WriteSuccessResponse(w, map[string]interface{}{
		"access_token": accessToken,
		"expires_in":   expiresIn,
	})
}
