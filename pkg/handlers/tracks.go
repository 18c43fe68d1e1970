package handlers

import (
	"net/http"
	"strconv"

	"soundlicense-backend/pkg/covers"
	"soundlicense-backend/pkg/database"
	"soundlicense-backend/pkg/models"
	"soundlicense-backend/pkg/storage"
	"soundlicense-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
)

// TrackHandler serves the public track catalog.
type TrackHandler struct {
	db       database.Store
	storage  storage.Storage
	resolver *covers.Resolver
}

// NewTrackHandler creates the track handler.
func NewTrackHandler(db database.Store, st storage.Storage, resolver *covers.Resolver) *TrackHandler {
	return &TrackHandler{db: db, storage: st, resolver: resolver}
}

// trackView resolves stored paths into URLs for the public shape.
type trackView struct {
	models.Track
	FileURL  string `json:"file_url,omitempty"`
	CoverURL string `json:"cover_url,omitempty"`
}

func (h *TrackHandler) view(t *models.Track) trackView {
	v := trackView{Track: *t}
	if t.FilePath != "" {
		v.FileURL = h.storage.URL(t.FilePath)
	}
	if t.CoverImage != nil && *t.CoverImage != "" {
		v.CoverURL = h.storage.URL(*t.CoverImage)
	}
	return v
}

// ListTracks returns the catalog newest first, paginated.
func (h *TrackHandler) ListTracks(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(utils.GetQueryParam(r, "page", "1"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(utils.GetQueryParam(r, "per_page", "20"))
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	tracks, total, err := h.db.ListTracks(perPage, (page-1)*perPage)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to list tracks")
		return
	}

	views := make([]trackView, 0, len(tracks))
	for i := range tracks {
		views = append(views, h.view(&tracks[i]))
	}
	utils.WritePaginatedResponse(w, views, page, perPage, total)
}

// GetTrack returns one track with its artist.
func (h *TrackHandler) GetTrack(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	track, err := h.db.GetTrackByID(id)
	if err != nil {
		utils.WriteNotFoundResponse(w, "Track not found")
		return
	}
	utils.WriteSuccessResponse(w, h.view(track))
}

// GetTrackCover resolves a cover image URL for the track. Tracks without a
// stored cover fall through to the image search; a null cover_url means
// nothing could be found.
func (h *TrackHandler) GetTrackCover(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	track, err := h.db.GetTrackByID(id)
	if err != nil {
		utils.WriteNotFoundResponse(w, "Track not found")
		return
	}

	url := h.resolver.CoverURL(track)
	var coverURL interface{}
	if url != "" {
		coverURL = url
	}
	utils.WriteSuccessResponse(w, map[string]interface{}{
		"cover_url": coverURL,
	})
}
