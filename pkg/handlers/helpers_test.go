package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"soundlicense-backend/api"
	"soundlicense-backend/pkg/config"
	"soundlicense-backend/pkg/covers"
	"soundlicense-backend/pkg/database"
	"soundlicense-backend/pkg/mailer"
	"soundlicense-backend/pkg/models"
	"soundlicense-backend/pkg/storage"
	"soundlicense-backend/pkg/utils"

	"github.com/stretchr/testify/require"
)

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := utils.HashPassword(password)
	require.NoError(t, err)
	return hash
}

// recordingQueue captures enqueued mail instead of sending it.
type recordingQueue struct {
	mu     sync.Mutex
	emails []mailer.Email
}

func (q *recordingQueue) Enqueue(e mailer.Email) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.emails = append(q.emails, e)
}

func (q *recordingQueue) sent() []mailer.Email {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]mailer.Email, len(q.emails))
	copy(out, q.emails)
	return out
}

// envelope mirrors the response wrapper for decoding in tests.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	} `json:"error"`
}

type testEnv struct {
	t         *testing.T
	router    http.Handler
	db        database.Store
	queue     *recordingQueue
	uploadDir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{
		Environment:    "test",
		Port:           "0",
		JWTSecret:      "test-secret",
		UseMemoryDB:    true,
		StorageBackend: "disk",
		UploadDir:      t.TempDir(),
		BaseURL:        "http://localhost:3000",
		PexelsBaseURL:  "http://127.0.0.1:1",
	}

	db := database.NewMemoryStore()
	st, err := storage.NewDiskStorage(cfg.UploadDir, cfg.BaseURL)
	require.NoError(t, err)

	queue := &recordingQueue{}
	resolver := covers.NewResolver(covers.NewPexelsClient("", cfg.PexelsBaseURL), st.URL)

	router := api.NewRouter(api.Deps{
		Config:   cfg,
		DB:       db,
		Storage:  st,
		Queue:    queue,
		Resolver: resolver,
	})

	return &testEnv{t: t, router: router, db: db, queue: queue, uploadDir: cfg.UploadDir}
}

// doJSON fires a JSON request at the router. An empty token leaves the
// Authorization header off.
func (e *testEnv) doJSON(method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	e.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
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

func (e *testEnv) decodeData(env envelope, v interface{}) {
	e.t.Helper()
	require.NoError(e.t, json.Unmarshal(env.Data, v))
}

// signupArtist registers an artist account and returns the access token
// with the created records.
func (e *testEnv) signupArtist(name, email string) (token string, user models.User, artist models.Artist) {
	e.t.Helper()

	rec, env := e.doJSON(http.MethodPost, "/api/auth/artist-signup", "", map[string]interface{}{
		"name":                  name,
		"email":                 email,
		"password":              "correct-horse-9",
		"password_confirmation": "correct-horse-9",
		"artist_name":           name,
	})
	require.Equal(e.t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp models.LoginResponse
	e.decodeData(env, &resp)
	require.NotNil(e.t, resp.Artist)
	return resp.AccessToken, resp.User, *resp.Artist
}

// newBrandUser creates a plain user with a brand profile directly in the
// store and logs in for a token.
func (e *testEnv) newBrandUser(name, email string) (token string, user models.User, brand models.Brand) {
	e.t.Helper()

	hash := mustHash(e.t, "correct-horse-9")
	u := &models.User{Name: name, Email: email, PasswordHash: hash}
	require.NoError(e.t, e.db.CreateUser(u))

	b := &models.Brand{Name: name + " Co", Industry: "advertising", UserID: u.ID}
	require.NoError(e.t, e.db.CreateBrand(b))

	rec, env := e.doJSON(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    email,
		"password": "correct-horse-9",
	})
	require.Equal(e.t, http.StatusOK, rec.Code, rec.Body.String())

	var resp models.LoginResponse
	e.decodeData(env, &resp)
	return resp.AccessToken, *u, *b
}

// newTrack inserts a track for the artist directly in the store.
func (e *testEnv) newTrack(artistID, title string, price float64) models.Track {
	e.t.Helper()
	track := &models.Track{
		Title:    title,
		FilePath: "tracks/" + title + ".mp3",
		Price:    price,
		ArtistID: artistID,
		Genres:   []string{"Jazz"},
		Duration: 207,
	}
	require.NoError(e.t, e.db.CreateTrack(track))
	return *track
}
