package handlers

import (
	"net/http"
	"strings"
	"time"

	"soundlicense-backend/pkg/database"
	"soundlicense-backend/pkg/models"
	"soundlicense-backend/pkg/storage"
	"soundlicense-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
)

// CollaborationHandler serves the message thread attached to a license
// request.
type CollaborationHandler struct {
	db       database.Store
	storage  storage.Storage
	licenses *LicenseHandler
}

// NewCollaborationHandler creates the collaboration handler.
func NewCollaborationHandler(db database.Store, st storage.Storage) *CollaborationHandler {
	return &CollaborationHandler{
		db:       db,
		storage:  st,
		licenses: NewLicenseHandler(db),
	}
}

// SendMessage posts a message on a license request thread. The sender must
// be one of the request's two participants and the receiver is always the
// counterparty. Multipart requests may carry an attachment file.
func (h *CollaborationHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	user, err := requireUser(w, r)
	if err != nil {
		return
	}
	lr, err := h.db.GetLicenseRequestByID(chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteNotFoundResponse(w, "License request not found")
		return
	}

	brandUserID, artistUserID, err := h.licenses.participants(lr)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to resolve participants")
		return
	}

	var receiverID string
	switch user.ID {
	case brandUserID:
		receiverID = artistUserID
	case artistUserID:
		receiverID = brandUserID
	default:
		utils.WriteForbiddenResponse(w, "Not a participant of this license request")
		return
	}

	var body string
	var attachment *string

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(strings.ToLower(contentType), "multipart/form-data") {
		if err := r.ParseMultipartForm(16 << 20); err != nil {
			utils.WriteBadRequestResponse(w, "Invalid multipart form")
			return
		}
		body = r.FormValue("message")
		if file, header, err := r.FormFile("attachment"); err == nil {
			defer file.Close()
			path, err := h.storage.Put(r.Context(), "attachments", header.Filename, file)
			if err != nil {
				utils.WriteInternalServerErrorResponse(w, "Failed to store attachment")
				return
			}
			attachment = &path
		}
	} else {
		var req struct {
			Message string `json:"message"`
		}
		if err := utils.ParseJSONBody(r, &req); err != nil {
			utils.WriteBadRequestResponse(w, "Invalid request body")
			return
		}
		body = req.Message
	}

	if strings.TrimSpace(body) == "" && attachment == nil {
		utils.WriteValidationErrorResponse(w, "Message validation failed", map[string]string{
			"message": "Message or attachment is required",
		})
		return
	}

	msg := &models.CollaborationMessage{
		Message:          body,
		Attachment:       attachment,
		SenderID:         user.ID,
		ReceiverID:       receiverID,
		LicenseRequestID: lr.ID,
	}
	if err := h.db.CreateCollaborationMessage(msg); err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to send message")
		return
	}

	utils.WriteCreatedResponse(w, msg)
}

// ListMessages returns a request's thread oldest first, to participants
// only.
func (h *CollaborationHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	user, err := requireUser(w, r)
	if err != nil {
		return
	}
	lr, err := h.db.GetLicenseRequestByID(chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteNotFoundResponse(w, "License request not found")
		return
	}
	if !h.licenses.isParticipant(lr, user.ID) {
		utils.WriteForbiddenResponse(w, "Not a participant of this license request")
		return
	}

	messages, err := h.db.ListMessagesByLicenseRequest(lr.ID)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to list messages")
		return
	}
	utils.WriteSuccessResponse(w, messages)
}

// MarkRead stamps a message as read by its receiver. Marking an already
// read message succeeds and refreshes the timestamp.
func (h *CollaborationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	user, err := requireUser(w, r)
	if err != nil {
		return
	}
	msg, err := h.db.GetCollaborationMessageByID(chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteNotFoundResponse(w, "Message not found")
		return
	}
	if msg.ReceiverID != user.ID {
		utils.WriteForbiddenResponse(w, "Only the receiver may mark a message read")
		return
	}

	if err := h.db.MarkMessageRead(msg.ID, time.Now()); err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to mark message read")
		return
	}

	updated, err := h.db.GetCollaborationMessageByID(msg.ID)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to load message")
		return
	}
	utils.WriteSuccessResponse(w, updated)
}

// UnreadCount returns the user's unread total and a per-sender breakdown.
func (h *CollaborationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	user, err := requireUser(w, r)
	if err != nil {
		return
	}

	total, err := h.db.CountUnreadMessages(user.ID)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to count unread messages")
		return
	}
	bySender, err := h.db.CountUnreadMessagesBySender(user.ID)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to count unread messages")
		return
	}

	utils.WriteSuccessResponse(w, map[string]interface{}{
		"total":     total,
		"by_sender": bySender,
	})
}
