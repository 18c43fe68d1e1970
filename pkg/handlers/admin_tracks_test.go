package handlers_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"soundlicense-backend/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// doMultipart fires a multipart request at the router. files maps field
// name to filename; every file carries a small fixed payload.
func (e *testEnv) doMultipart(method, path, token string, fields map[string]string, files map[string]string) (*httptest.ResponseRecorder, envelope) {
	e.t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for name, value := range fields {
		require.NoError(e.t, w.WriteField(name, value))
	}
	for field, filename := range files {
		fw, err := w.CreateFormFile(field, filename)
		require.NoError(e.t, err)
		_, err = fw.Write([]byte("test payload for " + filename))
		require.NoError(e.t, err)
	}
	require.NoError(e.t, w.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(e.t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func TestAdminTrackUpload(t *testing.T) {
	e := newTestEnv(t)
	token, _, artist := e.signupArtist("Nova Echo", "artist@example.com")

	rec, env := e.doMultipart(http.MethodPost, "/api/admin/tracks", token, map[string]string{
		"title":    "Midnight Run",
		"duration": "207",
		"bpm":      "124",
		"price":    "199.99",
		"genres":   `["Electronic","Ambient"]`,
	}, map[string]string{
		"file":        "demo.mp3",
		"cover_image": "cover.jpg",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var track models.Track
	e.decodeData(env, &track)
	assert.Equal(t, "Midnight Run", track.Title)
	assert.Equal(t, artist.ID, track.ArtistID)
	assert.Equal(t, 207, track.Duration)
	assert.Equal(t, 199.99, track.Price)
	assert.Equal(t, []string{"Electronic", "Ambient"}, track.Genres)
	assert.NotEmpty(t, track.FilePath)
	require.NotNil(t, track.CoverImage)
	assert.NotEmpty(t, *track.CoverImage)
}

func TestAdminTrackUploadRequiresAudio(t *testing.T) {
	e := newTestEnv(t)
	token, _, _ := e.signupArtist("Nova Echo", "artist@example.com")

	rec, env := e.doMultipart(http.MethodPost, "/api/admin/tracks", token, map[string]string{
		"title": "Silent",
	}, nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.NotNil(t, env.Error)
	assert.Contains(t, env.Error.Fields, "file")
}

func TestAdminTrackReplaceAudioDeletesOldFile(t *testing.T) {
	e := newTestEnv(t)
	token, _, _ := e.signupArtist("Nova Echo", "artist@example.com")

	rec, env := e.doMultipart(http.MethodPost, "/api/admin/tracks", token, map[string]string{
		"title": "Midnight Run",
	}, map[string]string{
		"file": "demo.mp3",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var track models.Track
	e.decodeData(env, &track)
	oldPath := filepath.Join(e.uploadDir, track.FilePath)
	require.FileExists(t, oldPath)

	rec, env = e.doMultipart(http.MethodPut, "/api/admin/tracks/"+track.ID, token, nil, map[string]string{
		"file": "demo-v2.mp3",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated models.Track
	e.decodeData(env, &updated)
	assert.NotEqual(t, track.FilePath, updated.FilePath)
	assert.NoFileExists(t, oldPath, "replaced audio removed from storage")
	assert.FileExists(t, filepath.Join(e.uploadDir, updated.FilePath))
}

func TestAdminTrackDeleteRemovesFilesAndRow(t *testing.T) {
	e := newTestEnv(t)
	token, _, _ := e.signupArtist("Nova Echo", "artist@example.com")

	rec, env := e.doMultipart(http.MethodPost, "/api/admin/tracks", token, map[string]string{
		"title": "Midnight Run",
	}, map[string]string{
		"file":        "demo.mp3",
		"cover_image": "cover.jpg",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var track models.Track
	e.decodeData(env, &track)

	audioPath := filepath.Join(e.uploadDir, track.FilePath)
	coverPath := filepath.Join(e.uploadDir, *track.CoverImage)
	require.FileExists(t, audioPath)
	require.FileExists(t, coverPath)

	rec, _ = e.doJSON(http.MethodDelete, "/api/admin/tracks/"+track.ID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.NoFileExists(t, audioPath)
	assert.NoFileExists(t, coverPath)
	_, err := e.db.GetTrackByID(track.ID)
	assert.Error(t, err)
}

func TestAdminTrackOwnershipEnforced(t *testing.T) {
	e := newTestEnv(t)
	ownerToken, _, _ := e.signupArtist("Nova Echo", "owner@example.com")
	otherToken, _, _ := e.signupArtist("Rival", "rival@example.com")

	rec, env := e.doMultipart(http.MethodPost, "/api/admin/tracks", ownerToken, map[string]string{
		"title": "Mine",
	}, map[string]string{
		"file": "demo.mp3",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var track models.Track
	e.decodeData(env, &track)

	rec, _ = e.doJSON(http.MethodGet, "/api/admin/tracks/"+track.ID, otherToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = e.doJSON(http.MethodDelete, "/api/admin/tracks/"+track.ID, otherToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Still there for the owner
	rec, _ = e.doJSON(http.MethodGet, "/api/admin/tracks/"+track.ID, ownerToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
