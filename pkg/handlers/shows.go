package handlers

import (
	"net/http"
	"strings"
	"time"

	"soundlicense-backend/pkg/database"
	"soundlicense-backend/pkg/models"
	"soundlicense-backend/pkg/utils"
)

// ShowHandler serves show management for the authenticated artist.
type ShowHandler struct {
	db database.Store
}

// NewShowHandler creates the show handler.
func NewShowHandler(db database.Store) *ShowHandler {
	return &ShowHandler{db: db}
}

// CreateShow adds a show to the authenticated artist's calendar.
func (h *ShowHandler) CreateShow(w http.ResponseWriter, r *http.Request) {
	user, err := requireUser(w, r)
	if err != nil {
		return
	}
	artist, err := h.db.GetArtistByUserID(user.ID)
	if err != nil {
		utils.WriteForbiddenResponse(w, "No artist profile for this account")
		return
	}

	var req struct {
		Title       string  `json:"title"`
		Description string  `json:"description"`
		Date        string  `json:"date"`
		Venue       string  `json:"venue"`
		City        string  `json:"city"`
		Country     string  `json:"country"`
		TicketURL   *string `json:"ticket_url"`
		IsFeatured  bool    `json:"is_featured"`
	}
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body")
		return
	}

	fields := make(map[string]string)
	if strings.TrimSpace(req.Title) == "" {
		fields["title"] = "Title is required"
	}
	if strings.TrimSpace(req.Venue) == "" {
		fields["venue"] = "Venue is required"
	}
	var date time.Time
	if req.Date == "" {
		fields["date"] = "Date is required"
	} else {
		parsed, perr := parseShowDate(req.Date)
		if perr != nil {
			fields["date"] = "Date must be RFC 3339 or YYYY-MM-DD"
		} else {
			date = parsed
		}
	}
	if req.TicketURL != nil && *req.TicketURL != "" && !utils.IsValidURL(*req.TicketURL) {
		fields["ticket_url"] = "Ticket URL must be a valid URL"
	}
	if len(fields) > 0 {
		utils.WriteValidationErrorResponse(w, "Show validation failed", fields)
		return
	}

	show := &models.Show{
		ArtistID:    artist.ID,
		Title:       req.Title,
		Description: req.Description,
		Date:        date,
		Venue:       req.Venue,
		City:        req.City,
		Country:     req.Country,
		TicketURL:   req.TicketURL,
		IsFeatured:  req.IsFeatured,
	}
	if err := h.db.CreateShow(show); err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to create show")
		return
	}

	utils.WriteCreatedResponse(w, show)
}

func parseShowDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
