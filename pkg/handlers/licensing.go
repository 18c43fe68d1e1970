package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"soundlicense-backend/pkg/database"
	"soundlicense-backend/pkg/models"
	"soundlicense-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
)

// LicenseHandler serves the licensing workflow between brands and artists.
type LicenseHandler struct {
	db database.Store
}

// NewLicenseHandler creates the license handler.
func NewLicenseHandler(db database.Store) *LicenseHandler {
	return &LicenseHandler{db: db}
}

// participants resolves the two user ids on a license request: the
// brand-side requester and the track's artist-side user.
func (h *LicenseHandler) participants(lr *models.LicenseRequest) (brandUserID, artistUserID string, err error) {
	track, err := h.db.GetTrackByID(lr.TrackID)
	if err != nil {
		return "", "", err
	}
	artist, err := h.db.GetArtistByID(track.ArtistID)
	if err != nil {
		return "", "", err
	}
	return lr.UserID, artist.UserID, nil
}

func (h *LicenseHandler) isParticipant(lr *models.LicenseRequest, userID string) bool {
	brandUserID, artistUserID, err := h.participants(lr)
	if err != nil {
		return false
	}
	return userID == brandUserID || userID == artistUserID
}

// CreateLicenseRequest opens a request against a track on behalf of the
// acting user's brand. The submitted terms are snapshotted; the request
// starts pending with no document attached.
func (h *LicenseHandler) CreateLicenseRequest(w http.ResponseWriter, r *http.Request) {
	user, err := requireUser(w, r)
	if err != nil {
		return
	}

	var req struct {
		TrackID            string  `json:"track_id"`
		BrandID            string  `json:"brand_id"`
		LicenseType        string  `json:"license_type"`
		ProjectTitle       string  `json:"project_title"`
		ProjectDescription string  `json:"project_description"`
		UsageDescription   string  `json:"usage_description"`
		Territory          string  `json:"territory"`
		Duration           int     `json:"duration"`
		Price              float64 `json:"price"`
	}
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body")
		return
	}

	fields := make(map[string]string)
	if req.TrackID == "" {
		fields["track_id"] = "Track is required"
	} else if _, err := h.db.GetTrackByID(req.TrackID); err != nil {
		fields["track_id"] = "Track does not exist"
	}

	var brand *models.Brand
	if req.BrandID == "" {
		fields["brand_id"] = "Brand is required"
	} else if brand, err = h.db.GetBrandByID(req.BrandID); err != nil {
		fields["brand_id"] = "Brand does not exist"
	} else if brand.UserID != user.ID {
		fields["brand_id"] = "Brand belongs to another account"
	}

	if strings.TrimSpace(req.LicenseType) == "" {
		fields["license_type"] = "License type is required"
	}
	if strings.TrimSpace(req.ProjectTitle) == "" {
		fields["project_title"] = "Project title is required"
	}
	if req.Duration < 0 {
		fields["duration"] = "Duration cannot be negative"
	}
	if req.Price < 0 {
		fields["price"] = "Price cannot be negative"
	}
	if len(fields) > 0 {
		utils.WriteValidationErrorResponse(w, "License request validation failed", fields)
		return
	}

	lr := &models.LicenseRequest{
		Status:             models.LicensePending,
		LicenseType:        req.LicenseType,
		ProjectTitle:       req.ProjectTitle,
		ProjectDescription: req.ProjectDescription,
		UsageDescription:   req.UsageDescription,
		Territory:          req.Territory,
		Duration:           req.Duration,
		Price:              req.Price,
		TrackID:            req.TrackID,
		BrandID:            req.BrandID,
		UserID:             user.ID,
	}
	if err := h.db.CreateLicenseRequest(lr); err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to create license request")
		return
	}

	fmt.Printf("✅ License request %s opened for track %s\n", lr.ID, lr.TrackID)
	utils.WriteCreatedResponse(w, lr)
}

// GetLicenseRequest returns one request to its participants.
func (h *LicenseHandler) GetLicenseRequest(w http.ResponseWriter, r *http.Request) {
	user, err := requireUser(w, r)
	if err != nil {
		return
	}
	lr, err := h.db.GetLicenseRequestByID(chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteNotFoundResponse(w, "License request not found")
		return
	}
	if !h.isParticipant(lr, user.ID) {
		utils.WriteForbiddenResponse(w, "Not a participant of this license request")
		return
	}

	if track, err := h.db.GetTrackByID(lr.TrackID); err == nil {
		lr.Track = track
	}
	if brand, err := h.db.GetBrandByID(lr.BrandID); err == nil {
		lr.Brand = brand
	}
	utils.WriteSuccessResponse(w, lr)
}

// ListLicenseRequests lists requests scoped by track, brand, or the acting
// user ("mine" is the default).
func (h *LicenseHandler) ListLicenseRequests(w http.ResponseWriter, r *http.Request) {
	user, err := requireUser(w, r)
	if err != nil {
		return
	}

	if trackID := r.URL.Query().Get("track_id"); trackID != "" {
		track, err := h.db.GetTrackByID(trackID)
		if err != nil {
			utils.WriteNotFoundResponse(w, "Track not found")
			return
		}
		artist, err := h.db.GetArtistByID(track.ArtistID)
		if err != nil || artist.UserID != user.ID {
			utils.WriteForbiddenResponse(w, "Track belongs to another artist")
			return
		}
		list, err := h.db.ListLicenseRequestsByTrack(trackID)
		if err != nil {
			utils.WriteInternalServerErrorResponse(w, "Failed to list license requests")
			return
		}
		utils.WriteSuccessResponse(w, list)
		return
	}

	if brandID := r.URL.Query().Get("brand_id"); brandID != "" {
		brand, err := h.db.GetBrandByID(brandID)
		if err != nil {
			utils.WriteNotFoundResponse(w, "Brand not found")
			return
		}
		if brand.UserID != user.ID {
			utils.WriteForbiddenResponse(w, "Brand belongs to another account")
			return
		}
		list, err := h.db.ListLicenseRequestsByBrand(brandID)
		if err != nil {
			utils.WriteInternalServerErrorResponse(w, "Failed to list license requests")
			return
		}
		utils.WriteSuccessResponse(w, list)
		return
	}

	list, err := h.db.ListLicenseRequestsByUser(user.ID)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to list license requests")
		return
	}
	utils.WriteSuccessResponse(w, list)
}

// UpdateStatus moves a request through its lifecycle. Approve and reject
// belong to the track's artist-side user; either participant may complete.
// Illegal moves come back as a 422 with the transition spelled out.
func (h *LicenseHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	user, err := requireUser(w, r)
	if err != nil {
		return
	}
	lr, err := h.db.GetLicenseRequestByID(chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteNotFoundResponse(w, "License request not found")
		return
	}

	brandUserID, artistUserID, err := h.participants(lr)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to resolve participants")
		return
	}
	if user.ID != brandUserID && user.ID != artistUserID {
		utils.WriteForbiddenResponse(w, "Not a participant of this license request")
		return
	}

	var req struct {
		Status          string  `json:"status"`
		LicenseDocument *string `json:"license_document"`
	}
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body")
		return
	}

	target := models.LicenseStatus(req.Status)
	switch target {
	case models.LicenseApproved, models.LicenseRejected:
		if user.ID != artistUserID {
			utils.WriteForbiddenResponse(w, "Only the track's artist may approve or reject")
			return
		}
	case models.LicenseCompleted:
		// either participant
	}

	if err := lr.Transition(target, req.LicenseDocument); err != nil {
		var ite *models.InvalidTransitionError
		if errors.As(err, &ite) {
			utils.WriteValidationErrorResponse(w, ite.Error(), map[string]string{
				"status": ite.Error(),
			})
			return
		}
		utils.WriteValidationErrorResponse(w, err.Error(), map[string]string{
			"status": err.Error(),
		})
		return
	}

	if err := h.db.UpdateLicenseRequest(lr); err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to update license request")
		return
	}

	fmt.Printf("✅ License request %s → %s\n", lr.ID, lr.Status)
	utils.WriteSuccessResponse(w, lr)
}

// DeleteLicenseRequest removes a request and its message thread. Only the
// requesting brand-side user may delete.
func (h *LicenseHandler) DeleteLicenseRequest(w http.ResponseWriter, r *http.Request) {
	user, err := requireUser(w, r)
	if err != nil {
		return
	}
	lr, err := h.db.GetLicenseRequestByID(chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteNotFoundResponse(w, "License request not found")
		return
	}
	if lr.UserID != user.ID {
		utils.WriteForbiddenResponse(w, "Only the requester may delete a license request")
		return
	}

	if err := h.db.DeleteLicenseRequest(lr.ID); err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to delete license request")
		return
	}
	utils.WriteSuccessResponse(w, map[string]interface{}{
		"deleted": lr.ID,
	})
}
