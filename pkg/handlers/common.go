package handlers

import (
	"net/http"

	"soundlicense-backend/pkg/middleware"
	"soundlicense-backend/pkg/models"
	"soundlicense-backend/pkg/utils"
)

// requireUser fetches the authenticated user from the context, writing the
// 401 itself so call sites only need the error check.
func requireUser(w http.ResponseWriter, r *http.Request) (*models.User, error) {
	user, err := middleware.RequireUser(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "Authentication required")
		return nil, err
	}
	return user, nil
}
