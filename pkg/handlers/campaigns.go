package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"soundlicense-backend/pkg/covers"
	"soundlicense-backend/pkg/database"
	"soundlicense-backend/pkg/mailer"
	"soundlicense-backend/pkg/models"
	"soundlicense-backend/pkg/storage"
	"soundlicense-backend/pkg/utils"
)

// CampaignHandler serves demo campaign composition and dispatch for the
// authenticated artist.
type CampaignHandler struct {
	db       database.Store
	queue    mailer.Queue
	storage  storage.Storage
	resolver *covers.Resolver
}

// NewCampaignHandler creates the campaign handler.
func NewCampaignHandler(db database.Store, queue mailer.Queue, st storage.Storage, resolver *covers.Resolver) *CampaignHandler {
	return &CampaignHandler{db: db, queue: queue, storage: st, resolver: resolver}
}

func (h *CampaignHandler) requireArtist(w http.ResponseWriter, r *http.Request) *models.Artist {
	user, err := requireUser(w, r)
	if err != nil {
		return nil
	}
	artist, err := h.db.GetArtistByUserID(user.ID)
	if err != nil {
		utils.WriteForbiddenResponse(w, "No artist profile for this account")
		return nil
	}
	return artist
}

// Context returns the artist's own tracks and upcoming shows for the
// campaign compose screen.
func (h *CampaignHandler) Context(w http.ResponseWriter, r *http.Request) {
	artist := h.requireArtist(w, r)
	if artist == nil {
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
		"artist": artist,
		"tracks": tracks,
		"shows":  shows,
	})
}

// Send validates and dispatches a demo campaign: one queued email per
// recipient. Any validation failure rejects the whole batch before a
// single message is enqueued. Selected tracks and shows must belong to the
// acting artist.
func (h *CampaignHandler) Send(w http.ResponseWriter, r *http.Request) {
	artist := h.requireArtist(w, r)
	if artist == nil {
		return
	}

	var req struct {
		Recipients []string `json:"recipients"`
		Subject    string   `json:"subject"`
		Message    string   `json:"message"`
		TrackIDs   []string `json:"track_ids"`
		ShowIDs    []string `json:"show_ids"`
	}
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body")
		return
	}

	fields := make(map[string]string)
	if len(req.Recipients) == 0 {
		fields["recipients"] = "At least one recipient is required"
	}
	for i, rcpt := range req.Recipients {
		if !utils.IsValidEmail(rcpt) {
			fields[fmt.Sprintf("recipients.%d", i)] = "Recipient must be a valid email address"
		}
	}
	if strings.TrimSpace(req.Subject) == "" {
		fields["subject"] = "Subject is required"
	}
	if strings.TrimSpace(req.Message) == "" {
		fields["message"] = "Message is required"
	}

	var tracks []models.Track
	for i, id := range req.TrackIDs {
		track, err := h.db.GetTrackByID(id)
		if err != nil || track.ArtistID != artist.ID {
			fields[fmt.Sprintf("track_ids.%d", i)] = "Track is not in your catalog"
			continue
		}
		tracks = append(tracks, *track)
	}
	var shows []models.Show
	for i, id := range req.ShowIDs {
		show, err := h.db.GetShowByID(id)
		if err != nil || show.ArtistID != artist.ID {
			fields[fmt.Sprintf("show_ids.%d", i)] = "Show is not in your calendar"
			continue
		}
		shows = append(shows, *show)
	}

	if len(fields) > 0 {
		utils.WriteValidationErrorResponse(w, "Campaign validation failed", fields)
		return
	}

	data := mailer.BuildCampaignData(artist, req.Message, tracks, shows, h.resolver.CoverURL, h.storage.URL)
	html, err := mailer.RenderCampaign(data)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to render campaign email")
		return
	}

	for _, rcpt := range req.Recipients {
		h.queue.Enqueue(mailer.Email{
			To:      rcpt,
			Subject: req.Subject,
			HTML:    html,
		})
	}

	fmt.Printf("✅ Campaign queued: %d recipients for %s\n", len(req.Recipients), artist.Name)
	utils.WriteSuccessResponse(w, map[string]interface{}{
		"queued": len(req.Recipients),
	})
}
