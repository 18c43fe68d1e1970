package handlers

import (
	"net/http"
	"strings"

	"soundlicense-backend/pkg/database"
	"soundlicense-backend/pkg/models"
	"soundlicense-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
)

// CartHandler serves the authenticated user's licensing cart.
type CartHandler struct {
	db database.Store
}

// NewCartHandler creates the cart handler.
func NewCartHandler(db database.Store) *CartHandler {
	return &CartHandler{db: db}
}

// GetCart returns the user's open cart and its items. The cart is created
// lazily on first access.
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	user, err := requireUser(w, r)
	if err != nil {
		return
	}

	cart, err := h.db.GetOrCreateCartByUser(user.ID)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to load cart")
		return
	}
	items, err := h.db.ListCartItems(cart.ID)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to load cart items")
		return
	}

	// Attach track snapshots for display
	for i := range items {
		if track, err := h.db.GetTrackByID(items[i].TrackID); err == nil {
			items[i].Track = track
		}
	}

	var total float64
	for _, it := range items {
		total += it.Price
	}

	utils.WriteSuccessResponse(w, map[string]interface{}{
		"cart":  cart,
		"items": items,
		"total": total,
	})
}

// AddItem puts a track with its license terms into the cart. The submitted
// price and terms are stored as-is; later track price changes do not touch
// existing items.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	user, err := requireUser(w, r)
	if err != nil {
		return
	}

	var req struct {
		TrackID            string  `json:"track_id"`
		LicenseType        string  `json:"license_type"`
		Price              float64 `json:"price"`
		ProjectTitle       string  `json:"project_title"`
		ProjectDescription string  `json:"project_description"`
		UsageDescription   string  `json:"usage_description"`
		Territory          string  `json:"territory"`
		Duration           int     `json:"duration"`
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
	if strings.TrimSpace(req.LicenseType) == "" {
		fields["license_type"] = "License type is required"
	}
	if strings.TrimSpace(req.ProjectTitle) == "" {
		fields["project_title"] = "Project title is required"
	}
	if req.Price < 0 {
		fields["price"] = "Price cannot be negative"
	}
	if req.Duration < 0 {
		fields["duration"] = "Duration cannot be negative"
	}
	if len(fields) > 0 {
		utils.WriteValidationErrorResponse(w, "Cart item validation failed", fields)
		return
	}

	cart, err := h.db.GetOrCreateCartByUser(user.ID)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to load cart")
		return
	}

	territory := req.Territory
	if strings.TrimSpace(territory) == "" {
		territory = "worldwide"
	}

	item := &models.CartItem{
		CartID:             cart.ID,
		TrackID:            req.TrackID,
		LicenseType:        req.LicenseType,
		Price:              req.Price,
		ProjectTitle:       req.ProjectTitle,
		ProjectDescription: req.ProjectDescription,
		UsageDescription:   req.UsageDescription,
		Territory:          territory,
		Duration:           req.Duration,
	}
	if err := h.db.CreateCartItem(item); err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to add cart item")
		return
	}

	utils.WriteCreatedResponse(w, item)
}

// RemoveItem deletes one item from the user's own cart.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	user, err := requireUser(w, r)
	if err != nil {
		return
	}

	item, err := h.db.GetCartItemByID(chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteNotFoundResponse(w, "Cart item not found")
		return
	}

	cart, err := h.db.GetOrCreateCartByUser(user.ID)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to load cart")
		return
	}
	if item.CartID != cart.ID {
		utils.WriteForbiddenResponse(w, "Cart item belongs to another cart")
		return
	}

	if err := h.db.DeleteCartItem(item.ID); err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to remove cart item")
		return
	}
	utils.WriteSuccessResponse(w, map[string]interface{}{
		"deleted": item.ID,
	})
}
