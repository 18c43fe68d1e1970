package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"soundlicense-backend/pkg/database"
	"soundlicense-backend/pkg/middleware"
	"soundlicense-backend/pkg/models"
	"soundlicense-backend/pkg/storage"
	"soundlicense-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
)

// ArtistHandler serves public artist pages and the authenticated artist's
// own profile.
type ArtistHandler struct {
	db      database.Store
	storage storage.Storage
}

// NewArtistHandler creates the artist handler.
func NewArtistHandler(db database.Store, st storage.Storage) *ArtistHandler {
	return &ArtistHandler{db: db, storage: st}
}

// artistView is the public JSON shape of an artist, with the profile image
// resolved to a URL.
type artistView struct {
	models.Artist
	ProfileImageURL string `json:"profile_image_url,omitempty"`
}

func (h *ArtistHandler) view(a *models.Artist) artistView {
	v := artistView{Artist: *a}
	if a.ProfileImage != nil && *a.ProfileImage != "" {
		v.ProfileImageURL = h.storage.URL(*a.ProfileImage)
	}
	return v
}

// ListArtists returns id/name pairs for pickers and directories.
func (h *ArtistHandler) ListArtists(w http.ResponseWriter, r *http.Request) {
	artists, err := h.db.ListArtistSummaries()
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to list artists")
		return
	}
	utils.WriteSuccessResponse(w, artists)
}

// GetArtist returns a public artist profile with tracks and upcoming shows.
func (h *ArtistHandler) GetArtist(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	artist, err := h.db.GetArtistByID(id)
	if err != nil {
		utils.WriteNotFoundResponse(w, "Artist not found")
		return
	}

	tracks, err := h.db.ListTracksByArtist(artist.ID)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to load tracks")
		return
	}
	shows, err := h.db.ListUpcomingShowsByArtist(artist.ID, time.Now())
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to load shows")
		return
	}

	utils.WriteSuccessResponse(w, map[string]interface{}{
		"artist": h.view(artist),
		"tracks": tracks,
		"shows":  shows,
	})
}

// requireOwnArtist loads the artist profile of the authenticated user.
func (h *ArtistHandler) requireOwnArtist(w http.ResponseWriter, r *http.Request) *models.Artist {
	user, err := middleware.RequireUser(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "Authentication required")
		return nil
	}
	artist, err := h.db.GetArtistByUserID(user.ID)
	if err != nil {
		utils.WriteForbiddenResponse(w, "No artist profile for this account")
		return nil
	}
	return artist
}

// GetProfile returns the authenticated artist's own profile.
func (h *ArtistHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	artist := h.requireOwnArtist(w, r)
	if artist == nil {
		return
	}
	utils.WriteSuccessResponse(w, h.view(artist))
}

// UpdateProfile updates the authenticated artist's profile. Accepts JSON or
// multipart form data; a multipart profile_image replaces the stored image
// and the old file is deleted best-effort.
func (h *ArtistHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	artist := h.requireOwnArtist(w, r)
	if artist == nil {
		return
	}

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(strings.ToLower(contentType), "multipart/form-data") {
		h.updateProfileMultipart(w, r, artist)
		return
	}

	var req struct {
		Name        *string           `json:"name"`
		Bio         *string           `json:"bio"`
		Website     *string           `json:"website"`
		SocialLinks map[string]string `json:"social_links"`
		Genres      []string          `json:"genres"`
	}
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body")
		return
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			utils.WriteValidationErrorResponse(w, "Profile validation failed", map[string]string{
				"name": "Name cannot be empty",
			})
			return
		}
		artist.Name = *req.Name
	}
	if req.Bio != nil {
		artist.Bio = *req.Bio
	}
	if req.Website != nil {
		if *req.Website != "" && !utils.IsValidURL(*req.Website) {
			utils.WriteValidationErrorResponse(w, "Profile validation failed", map[string]string{
				"website": "Website must be a valid URL",
			})
			return
		}
		artist.Website = *req.Website
	}
	if req.SocialLinks != nil {
		artist.SocialLinks = req.SocialLinks
	}
	if req.Genres != nil {
		artist.Genres = req.Genres
	}

	if err := h.db.UpdateArtist(artist); err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to update profile")
		return
	}
	utils.WriteSuccessResponse(w, h.view(artist))
}

func (h *ArtistHandler) updateProfileMultipart(w http.ResponseWriter, r *http.Request, artist *models.Artist) {
	if err := r.ParseMultipartForm(16 << 20); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid multipart form")
		return
	}

	if v := r.FormValue("name"); v != "" {
		artist.Name = v
	}
	if _, ok := r.MultipartForm.Value["bio"]; ok {
		artist.Bio = r.FormValue("bio")
	}
	if _, ok := r.MultipartForm.Value["website"]; ok {
		website := r.FormValue("website")
		if website != "" && !utils.IsValidURL(website) {
			utils.WriteValidationErrorResponse(w, "Profile validation failed", map[string]string{
				"website": "Website must be a valid URL",
			})
			return
		}
		artist.Website = website
	}
	if v := r.FormValue("social_links"); v != "" {
		var links map[string]string
		if err := json.Unmarshal([]byte(v), &links); err != nil {
			utils.WriteValidationErrorResponse(w, "Profile validation failed", map[string]string{
				"social_links": "Social links must be a JSON object",
			})
			return
		}
		artist.SocialLinks = links
	}
	if v := r.FormValue("genres"); v != "" {
		var genres []string
		if err := json.Unmarshal([]byte(v), &genres); err != nil {
			utils.WriteValidationErrorResponse(w, "Profile validation failed", map[string]string{
				"genres": "Genres must be a JSON array",
			})
			return
		}
		artist.Genres = genres
	}

	file, header, err := r.FormFile("profile_image")
	if err == nil {
		defer file.Close()
		path, err := h.storage.Put(r.Context(), "profile-images", header.Filename, file)
		if err != nil {
			utils.WriteInternalServerErrorResponse(w, "Failed to store profile image")
			return
		}
		old := artist.ProfileImage
		artist.ProfileImage = &path
		if old != nil && *old != "" {
			if err := h.storage.Delete(r.Context(), *old); err != nil {
				fmt.Printf("[warn] failed to delete old profile image %s: %v\n", *old, err)
			}
		}
	}

	if err := h.db.UpdateArtist(artist); err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to update profile")
		return
	}
	utils.WriteSuccessResponse(w, h.view(artist))
}
