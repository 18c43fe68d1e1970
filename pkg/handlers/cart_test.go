package handlers_test

import (
	"net/http"
	"testing"

	"soundlicense-backend/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartAddStoresTermsVerbatim(t *testing.T) {
	e := newTestEnv(t)
	_, _, artist := e.signupArtist("Nova Echo", "artist@example.com")
	brandToken, _, _ := e.newBrandUser("Acme", "brand@example.com")
	track := e.newTrack(artist.ID, "Midnight Run", 199.99)

	rec, env := e.doJSON(http.MethodPost, "/api/cart/items", brandToken, map[string]interface{}{
		"track_id":      track.ID,
		"license_type":  "sync",
		"price":         150.00, // negotiated below list price
		"project_title": "Launch Film",
		"territory":     "EU",
		"duration":      6,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var item models.CartItem
	e.decodeData(env, &item)
	assert.Equal(t, 150.00, item.Price, "submitted price stored, not the track's")
	assert.Equal(t, "EU", item.Territory)
	assert.Equal(t, 6, item.Duration)

	// Changing the track price later leaves the item untouched
	track.Price = 500
	require.NoError(t, e.db.UpdateTrack(&track))

	rec, env = e.doJSON(http.MethodGet, "/api/cart", brandToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var cart struct {
		Items []models.CartItem `json:"items"`
		Total float64           `json:"total"`
	}
	e.decodeData(env, &cart)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 150.00, cart.Items[0].Price)
	assert.Equal(t, 150.00, cart.Total)
}

func TestCartTerritoryDefaults(t *testing.T) {
	e := newTestEnv(t)
	_, _, artist := e.signupArtist("Nova Echo", "artist@example.com")
	brandToken, _, _ := e.newBrandUser("Acme", "brand@example.com")
	track := e.newTrack(artist.ID, "Midnight Run", 199.99)

	rec, env := e.doJSON(http.MethodPost, "/api/cart/items", brandToken, map[string]interface{}{
		"track_id":      track.ID,
		"license_type":  "sync",
		"price":         199.99,
		"project_title": "Launch Film",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var item models.CartItem
	e.decodeData(env, &item)
	assert.Equal(t, "worldwide", item.Territory)
}

func TestCartAddUnknownTrack(t *testing.T) {
	e := newTestEnv(t)
	brandToken, _, _ := e.newBrandUser("Acme", "brand@example.com")

	rec, env := e.doJSON(http.MethodPost, "/api/cart/items", brandToken, map[string]interface{}{
		"track_id":      "nope",
		"license_type":  "sync",
		"project_title": "Launch Film",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.NotNil(t, env.Error)
	assert.Contains(t, env.Error.Fields, "track_id")
}

func TestCartRemoveItemScopedToOwner(t *testing.T) {
	e := newTestEnv(t)
	_, _, artist := e.signupArtist("Nova Echo", "artist@example.com")
	brandToken, _, _ := e.newBrandUser("Acme", "brand@example.com")
	otherToken, _, _ := e.newBrandUser("Rival", "rival@example.com")
	track := e.newTrack(artist.ID, "Midnight Run", 199.99)

	rec, env := e.doJSON(http.MethodPost, "/api/cart/items", brandToken, map[string]interface{}{
		"track_id":      track.ID,
		"license_type":  "sync",
		"price":         199.99,
		"project_title": "Launch Film",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var item models.CartItem
	e.decodeData(env, &item)

	// Another user cannot remove it
	rec, _ = e.doJSON(http.MethodDelete, "/api/cart/items/"+item.ID, otherToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = e.doJSON(http.MethodDelete, "/api/cart/items/"+item.ID, brandToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, env = e.doJSON(http.MethodGet, "/api/cart", brandToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var cart struct {
		Items []models.CartItem `json:"items"`
	}
	e.decodeData(env, &cart)
	assert.Empty(t, cart.Items)
}
