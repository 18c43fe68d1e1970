package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"soundlicense-backend/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicTrackListing(t *testing.T) {
	e := newTestEnv(t)
	_, _, artist := e.signupArtist("Nova Echo", "artist@example.com")
	e.newTrack(artist.ID, "First", 10)
	e.newTrack(artist.ID, "Second", 20)

	rec, env := e.doJSON(http.MethodGet, "/api/tracks", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var tracks []models.Track
	e.decodeData(env, &tracks)
	require.Len(t, tracks, 2)
	for _, tr := range tracks {
		require.NotNil(t, tr.Artist, "listing joins the artist")
		assert.Equal(t, "Nova Echo", tr.Artist.Name)
	}
}

func TestPublicTrackListingPagination(t *testing.T) {
	e := newTestEnv(t)
	_, _, artist := e.signupArtist("Nova Echo", "artist@example.com")
	for _, title := range []string{"a", "b", "c"} {
		e.newTrack(artist.ID, title, 10)
	}

	rec, _ := e.doJSON(http.MethodGet, "/api/tracks?page=1&per_page=2", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []models.Track `json:"data"`
		Meta struct {
			Page       int `json:"page"`
			PerPage    int `json:"per_page"`
			Total      int `json:"total"`
			TotalPages int `json:"total_pages"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 2)
	assert.Equal(t, 3, resp.Meta.Total)
	assert.Equal(t, 2, resp.Meta.TotalPages)
}

func TestGetTrackDetail(t *testing.T) {
	e := newTestEnv(t)
	_, _, artist := e.signupArtist("Nova Echo", "artist@example.com")
	track := e.newTrack(artist.ID, "Midnight Run", 199.99)

	rec, env := e.doJSON(http.MethodGet, "/api/tracks/"+track.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got models.Track
	e.decodeData(env, &got)
	assert.Equal(t, "Midnight Run", got.Title)
	require.NotNil(t, got.Artist)
	assert.Equal(t, artist.ID, got.Artist.ID)

	rec, _ = e.doJSON(http.MethodGet, "/api/tracks/unknown", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTrackCoverLocalShortCircuit(t *testing.T) {
	e := newTestEnv(t)
	_, _, artist := e.signupArtist("Nova Echo", "artist@example.com")

	cover := "covers/stored.jpg"
	track := &models.Track{
		Title:      "With Cover",
		FilePath:   "tracks/x.mp3",
		ArtistID:   artist.ID,
		CoverImage: &cover,
	}
	require.NoError(t, e.db.CreateTrack(track))

	rec, env := e.doJSON(http.MethodGet, "/api/tracks/"+track.ID+"/cover", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var result struct {
		CoverURL *string `json:"cover_url"`
	}
	e.decodeData(env, &result)
	require.NotNil(t, result.CoverURL)
	assert.Contains(t, *result.CoverURL, "covers/stored.jpg")
}

func TestTrackCoverUnreachableSearchIsNull(t *testing.T) {
	e := newTestEnv(t)
	_, _, artist := e.signupArtist("Nova Echo", "artist@example.com")
	track := e.newTrack(artist.ID, "No Cover", 10)

	// The test environment points the image search at a dead address;
	// the endpoint still answers with a null cover.
	rec, env := e.doJSON(http.MethodGet, "/api/tracks/"+track.ID+"/cover", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var result struct {
		CoverURL *string `json:"cover_url"`
	}
	e.decodeData(env, &result)
	assert.Nil(t, result.CoverURL)
}

func TestListArtistsOrderedByName(t *testing.T) {
	e := newTestEnv(t)
	e.signupArtist("Zed", "zed@example.com")
	e.signupArtist("Ana", "ana@example.com")

	rec, env := e.doJSON(http.MethodGet, "/api/artists", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var artists []models.ArtistSummary
	e.decodeData(env, &artists)
	require.Len(t, artists, 2)
	assert.Equal(t, "Ana", artists[0].Name)
	assert.Equal(t, "Zed", artists[1].Name)
}

func TestPublicArtistPage(t *testing.T) {
	e := newTestEnv(t)
	_, _, artist := e.signupArtist("Nova Echo", "artist@example.com")
	e.newTrack(artist.ID, "Midnight Run", 199.99)

	rec, env := e.doJSON(http.MethodGet, "/api/artists/"+artist.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var page struct {
		Artist models.Artist  `json:"artist"`
		Tracks []models.Track `json:"tracks"`
		Shows  []models.Show  `json:"shows"`
	}
	e.decodeData(env, &page)
	assert.Equal(t, "Nova Echo", page.Artist.Name)
	assert.Len(t, page.Tracks, 1)

	rec, _ = e.doJSON(http.MethodGet, "/api/artists/unknown", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateOwnProfile(t *testing.T) {
	e := newTestEnv(t)
	token, _, _ := e.signupArtist("Nova Echo", "artist@example.com")

	rec, env := e.doJSON(http.MethodPatch, "/api/artist/profile", token, map[string]interface{}{
		"bio":     "Updated bio",
		"website": "https://novaecho.example.com",
		"genres":  []string{"Electronic", "Ambient"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated models.Artist
	e.decodeData(env, &updated)
	assert.Equal(t, "Updated bio", updated.Bio)
	assert.Equal(t, "https://novaecho.example.com", updated.Website)
	assert.Equal(t, []string{"Electronic", "Ambient"}, updated.Genres)
	assert.Equal(t, "Nova Echo", updated.Name, "untouched fields survive")
}

func TestUpdateProfileRejectsBadWebsite(t *testing.T) {
	e := newTestEnv(t)
	token, _, _ := e.signupArtist("Nova Echo", "artist@example.com")

	rec, env := e.doJSON(http.MethodPatch, "/api/artist/profile", token, map[string]interface{}{
		"website": "not a url",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.NotNil(t, env.Error)
	assert.Contains(t, env.Error.Fields, "website")
}

func TestCreateShowValidation(t *testing.T) {
	e := newTestEnv(t)
	token, _, _ := e.signupArtist("Nova Echo", "artist@example.com")

	rec, env := e.doJSON(http.MethodPost, "/api/artist/shows", token, map[string]interface{}{
		"description": "no title, venue or date",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.NotNil(t, env.Error)
	assert.Contains(t, env.Error.Fields, "title")
	assert.Contains(t, env.Error.Fields, "venue")
	assert.Contains(t, env.Error.Fields, "date")

	rec, env = e.doJSON(http.MethodPost, "/api/artist/shows", token, map[string]interface{}{
		"title": "Club Night",
		"venue": "The Basement",
		"date":  "2026-12-01",
		"city":  "Berlin",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var show models.Show
	e.decodeData(env, &show)
	assert.Equal(t, "Club Night", show.Title)
	assert.NotEmpty(t, show.ID)
}
