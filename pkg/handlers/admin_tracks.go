package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"soundlicense-backend/pkg/database"
	"soundlicense-backend/pkg/models"
	"soundlicense-backend/pkg/storage"
	"soundlicense-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
)

const maxUploadSize = 64 << 20

// AdminTrackHandler serves track management for the authenticated artist.
// Uploads are multipart; audio lands in the "tracks" collection and covers
// in "covers".
type AdminTrackHandler struct {
	db      database.Store
	storage storage.Storage
}

// NewAdminTrackHandler creates the admin track handler.
func NewAdminTrackHandler(db database.Store, st storage.Storage) *AdminTrackHandler {
	return &AdminTrackHandler{db: db, storage: st}
}

// requireOwnTrack loads the track and checks the acting artist owns it.
func (h *AdminTrackHandler) requireOwnTrack(w http.ResponseWriter, r *http.Request) (*models.Track, *models.Artist) {
	user, err := requireUser(w, r)
	if err != nil {
		return nil, nil
	}
	artist, err := h.db.GetArtistByUserID(user.ID)
	if err != nil {
		utils.WriteForbiddenResponse(w, "No artist profile for this account")
		return nil, nil
	}
	track, err := h.db.GetTrackByID(chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteNotFoundResponse(w, "Track not found")
		return nil, nil
	}
	if track.ArtistID != artist.ID {
		utils.WriteForbiddenResponse(w, "Track belongs to another artist")
		return nil, nil
	}
	return track, artist
}

// trackForm applies multipart form fields onto a track. Absent fields leave
// the track untouched so the same parser serves create and update.
func trackForm(r *http.Request, t *models.Track) map[string]string {
	fields := make(map[string]string)

	if _, ok := r.MultipartForm.Value["title"]; ok {
		t.Title = r.FormValue("title")
	}
	if _, ok := r.MultipartForm.Value["description"]; ok {
		t.Description = r.FormValue("description")
	}
	if v := r.FormValue("duration"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			fields["duration"] = "Duration must be a non-negative number of seconds"
		} else {
			t.Duration = n
		}
	}
	if v := r.FormValue("bpm"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			fields["bpm"] = "BPM must be a non-negative number"
		} else {
			t.BPM = n
		}
	}
	if _, ok := r.MultipartForm.Value["key"]; ok {
		t.Key = r.FormValue("key")
	}
	if v := r.FormValue("price"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 {
			fields["price"] = "Price must be a non-negative number"
		} else {
			t.Price = f
		}
	}
	for name, dst := range map[string]*[]string{
		"genres":      &t.Genres,
		"moods":       &t.Moods,
		"instruments": &t.Instruments,
	} {
		if v := r.FormValue(name); v != "" {
			var list []string
			if err := json.Unmarshal([]byte(v), &list); err != nil {
				fields[name] = "Must be a JSON array of strings"
			} else {
				*dst = list
			}
		}
	}
	return fields
}

// ListTracks lists the acting artist's tracks.
func (h *AdminTrackHandler) ListTracks(w http.ResponseWriter, r *http.Request) {
	user, err := requireUser(w, r)
	if err != nil {
		return
	}
	artist, err := h.db.GetArtistByUserID(user.ID)
	if err != nil {
		utils.WriteForbiddenResponse(w, "No artist profile for this account")
		return
	}
	tracks, err := h.db.ListTracksByArtist(artist.ID)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to list tracks")
		return
	}
	utils.WriteSuccessResponse(w, tracks)
}

// GetTrack returns one of the acting artist's tracks.
func (h *AdminTrackHandler) GetTrack(w http.ResponseWriter, r *http.Request) {
	track, _ := h.requireOwnTrack(w, r)
	if track == nil {
		return
	}
	utils.WriteSuccessResponse(w, track)
}

// CreateTrack uploads a new track. The audio file is required; the cover
// is optional.
func (h *AdminTrackHandler) CreateTrack(w http.ResponseWriter, r *http.Request) {
	user, err := requireUser(w, r)
	if err != nil {
		return
	}
	artist, err := h.db.GetArtistByUserID(user.ID)
	if err != nil {
		utils.WriteForbiddenResponse(w, "No artist profile for this account")
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid multipart form")
		return
	}

	track := &models.Track{ArtistID: artist.ID}
	fields := trackForm(r, track)
	if strings.TrimSpace(track.Title) == "" {
		fields["title"] = "Title is required"
	}

	audio, audioHeader, err := r.FormFile("file")
	if err != nil {
		fields["file"] = "Audio file is required"
	}
	if len(fields) > 0 {
		utils.WriteValidationErrorResponse(w, "Track validation failed", fields)
		return
	}
	defer audio.Close()

	audioPath, err := h.storage.Put(r.Context(), "tracks", audioHeader.Filename, audio)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to store audio file")
		return
	}
	track.FilePath = audioPath

	if cover, coverHeader, err := r.FormFile("cover_image"); err == nil {
		defer cover.Close()
		coverPath, err := h.storage.Put(r.Context(), "covers", coverHeader.Filename, cover)
		if err != nil {
			utils.WriteInternalServerErrorResponse(w, "Failed to store cover image")
			return
		}
		track.CoverImage = &coverPath
	}

	if err := h.db.CreateTrack(track); err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to create track")
		return
	}

	fmt.Printf("✅ Track uploaded: %s by %s\n", track.Title, artist.Name)
	utils.WriteCreatedResponse(w, track)
}

// UpdateTrack updates metadata and optionally replaces the audio or cover
// file. Replaced files are deleted from storage best-effort.
func (h *AdminTrackHandler) UpdateTrack(w http.ResponseWriter, r *http.Request) {
	track, _ := h.requireOwnTrack(w, r)
	if track == nil {
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid multipart form")
		return
	}

	fields := trackForm(r, track)
	if strings.TrimSpace(track.Title) == "" {
		fields["title"] = "Title cannot be empty"
	}
	if len(fields) > 0 {
		utils.WriteValidationErrorResponse(w, "Track validation failed", fields)
		return
	}

	if audio, audioHeader, err := r.FormFile("file"); err == nil {
		defer audio.Close()
		audioPath, err := h.storage.Put(r.Context(), "tracks", audioHeader.Filename, audio)
		if err != nil {
			utils.WriteInternalServerErrorResponse(w, "Failed to store audio file")
			return
		}
		old := track.FilePath
		track.FilePath = audioPath
		if old != "" {
			if err := h.storage.Delete(r.Context(), old); err != nil {
				fmt.Printf("[warn] failed to delete old audio file %s: %v\n", old, err)
			}
		}
	}

	if cover, coverHeader, err := r.FormFile("cover_image"); err == nil {
		defer cover.Close()
		coverPath, err := h.storage.Put(r.Context(), "covers", coverHeader.Filename, cover)
		if err != nil {
			utils.WriteInternalServerErrorResponse(w, "Failed to store cover image")
			return
		}
		old := track.CoverImage
		track.CoverImage = &coverPath
		if old != nil && *old != "" {
			if err := h.storage.Delete(r.Context(), *old); err != nil {
				fmt.Printf("[warn] failed to delete old cover image %s: %v\n", *old, err)
			}
		}
	}

	if err := h.db.UpdateTrack(track); err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to update track")
		return
	}
	utils.WriteSuccessResponse(w, track)
}

// DeleteTrack removes the track's stored files, then the row.
func (h *AdminTrackHandler) DeleteTrack(w http.ResponseWriter, r *http.Request) {
	track, _ := h.requireOwnTrack(w, r)
	if track == nil {
		return
	}

	if track.FilePath != "" {
		if err := h.storage.Delete(r.Context(), track.FilePath); err != nil {
			fmt.Printf("[warn] failed to delete audio file %s: %v\n", track.FilePath, err)
		}
	}
	if track.CoverImage != nil && *track.CoverImage != "" {
		if err := h.storage.Delete(r.Context(), *track.CoverImage); err != nil {
			fmt.Printf("[warn] failed to delete cover image %s: %v\n", *track.CoverImage, err)
		}
	}

	if err := h.db.DeleteTrack(track.ID); err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to delete track")
		return
	}
	utils.WriteSuccessResponse(w, map[string]interface{}{
		"deleted": track.ID,
	})
}
