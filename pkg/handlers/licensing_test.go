package handlers_test

import (
	"errors"
	"net/http"
	"testing"

	"soundlicense-backend/pkg/database"
	"soundlicense-backend/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// licensingFixture wires an artist with a track and a brand-side user.
type licensingFixture struct {
	artistToken string
	brandToken  string
	artist      models.Artist
	brand       models.Brand
	track       models.Track
}

func newLicensingFixture(t *testing.T, e *testEnv) licensingFixture {
	artistToken, _, artist := e.signupArtist("Nova Echo", "artist@example.com")
	brandToken, _, brand := e.newBrandUser("Acme", "brand@example.com")
	track := e.newTrack(artist.ID, "Midnight Run", 199.99)
	return licensingFixture{
		artistToken: artistToken,
		brandToken:  brandToken,
		artist:      artist,
		brand:       brand,
		track:       track,
	}
}

func (f licensingFixture) createRequest(t *testing.T, e *testEnv) models.LicenseRequest {
	t.Helper()
	rec, env := e.doJSON(http.MethodPost, "/api/license-requests", f.brandToken, map[string]interface{}{
		"track_id":          f.track.ID,
		"brand_id":          f.brand.ID,
		"license_type":      "sync",
		"project_title":     "Launch Film",
		"usage_description": "30s online spot",
		"duration":          12,
		"price":             199.99,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var lr models.LicenseRequest
	e.decodeData(env, &lr)
	return lr
}

func TestCreateLicenseRequestSnapshotsTerms(t *testing.T) {
	e := newTestEnv(t)
	f := newLicensingFixture(t, e)

	lr := f.createRequest(t, e)
	assert.Equal(t, models.LicensePending, lr.Status)
	assert.Nil(t, lr.LicenseDocument)
	assert.Equal(t, "worldwide", lr.Territory, "territory defaults when omitted")
	assert.Equal(t, 199.99, lr.Price)
	assert.Equal(t, 12, lr.Duration)

	// Track price changes do not rewrite the snapshot
	f.track.Price = 999
	require.NoError(t, e.db.UpdateTrack(&f.track))
	stored, err := e.db.GetLicenseRequestByID(lr.ID)
	require.NoError(t, err)
	assert.Equal(t, 199.99, stored.Price)
}

func TestCreateLicenseRequestUnknownTrack(t *testing.T) {
	e := newTestEnv(t)
	f := newLicensingFixture(t, e)

	rec, env := e.doJSON(http.MethodPost, "/api/license-requests", f.brandToken, map[string]interface{}{
		"track_id":      "nope",
		"brand_id":      f.brand.ID,
		"license_type":  "sync",
		"project_title": "Launch Film",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.NotNil(t, env.Error)
	assert.Contains(t, env.Error.Fields, "track_id")
}

func TestCreateLicenseRequestForeignBrandRejected(t *testing.T) {
	e := newTestEnv(t)
	f := newLicensingFixture(t, e)
	otherToken, _, _ := e.newBrandUser("Rival", "rival@example.com")

	rec, env := e.doJSON(http.MethodPost, "/api/license-requests", otherToken, map[string]interface{}{
		"track_id":      f.track.ID,
		"brand_id":      f.brand.ID,
		"license_type":  "sync",
		"project_title": "Launch Film",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.NotNil(t, env.Error)
	assert.Contains(t, env.Error.Fields, "brand_id")
}

func TestLicenseApprovalFlow(t *testing.T) {
	e := newTestEnv(t)
	f := newLicensingFixture(t, e)
	lr := f.createRequest(t, e)

	// Brand-side user may not approve
	rec, _ := e.doJSON(http.MethodPost, "/api/license-requests/"+lr.ID+"/status", f.brandToken, map[string]string{
		"status": "approved",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Artist approves with a document
	rec, env := e.doJSON(http.MethodPost, "/api/license-requests/"+lr.ID+"/status", f.artistToken, map[string]string{
		"status":           "approved",
		"license_document": "licenses/agreement.pdf",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated models.LicenseRequest
	e.decodeData(env, &updated)
	assert.Equal(t, models.LicenseApproved, updated.Status)
	require.NotNil(t, updated.LicenseDocument)
	assert.Equal(t, "licenses/agreement.pdf", *updated.LicenseDocument)

	// Either side may complete; the brand does here
	rec, env = e.doJSON(http.MethodPost, "/api/license-requests/"+lr.ID+"/status", f.brandToken, map[string]string{
		"status": "completed",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	e.decodeData(env, &updated)
	assert.Equal(t, models.LicenseCompleted, updated.Status)
}

func TestLicenseIllegalTransitionIs422(t *testing.T) {
	e := newTestEnv(t)
	f := newLicensingFixture(t, e)
	lr := f.createRequest(t, e)

	// pending -> completed skips approval
	rec, env := e.doJSON(http.MethodPost, "/api/license-requests/"+lr.ID+"/status", f.brandToken, map[string]string{
		"status": "completed",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Contains(t, env.Error.Fields["status"], "pending -> completed")

	stored, err := e.db.GetLicenseRequestByID(lr.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LicensePending, stored.Status, "status unchanged")
}

func TestLicenseRejectionIsTerminal(t *testing.T) {
	e := newTestEnv(t)
	f := newLicensingFixture(t, e)
	lr := f.createRequest(t, e)

	rec, _ := e.doJSON(http.MethodPost, "/api/license-requests/"+lr.ID+"/status", f.artistToken, map[string]string{
		"status": "rejected",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = e.doJSON(http.MethodPost, "/api/license-requests/"+lr.ID+"/status", f.artistToken, map[string]string{
		"status": "approved",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestLicenseListScoping(t *testing.T) {
	e := newTestEnv(t)
	f := newLicensingFixture(t, e)
	lr := f.createRequest(t, e)

	// Brand lists its own requests
	rec, env := e.doJSON(http.MethodGet, "/api/license-requests?brand_id="+f.brand.ID, f.brandToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []models.LicenseRequest
	e.decodeData(env, &list)
	require.Len(t, list, 1)
	assert.Equal(t, lr.ID, list[0].ID)

	// Artist lists requests against its track
	rec, env = e.doJSON(http.MethodGet, "/api/license-requests?track_id="+f.track.ID, f.artistToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	e.decodeData(env, &list)
	require.Len(t, list, 1)

	// The artist cannot read the brand's scope
	rec, _ = e.doJSON(http.MethodGet, "/api/license-requests?brand_id="+f.brand.ID, f.artistToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// The brand cannot read the artist's track scope
	rec, _ = e.doJSON(http.MethodGet, "/api/license-requests?track_id="+f.track.ID, f.brandToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestLicenseOutsiderCannotView(t *testing.T) {
	e := newTestEnv(t)
	f := newLicensingFixture(t, e)
	lr := f.createRequest(t, e)

	outsiderToken, _, _ := e.newBrandUser("Rival", "rival@example.com")

	rec, _ := e.doJSON(http.MethodGet, "/api/license-requests/"+lr.ID, outsiderToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDeleteLicenseRequestCascadesOwnMessages(t *testing.T) {
	e := newTestEnv(t)
	f := newLicensingFixture(t, e)
	lr := f.createRequest(t, e)
	other := f.createRequest(t, e)

	// One message on each thread
	rec, _ := e.doJSON(http.MethodPost, "/api/license-requests/"+lr.ID+"/messages", f.brandToken, map[string]string{
		"message": "Hello",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec, _ = e.doJSON(http.MethodPost, "/api/license-requests/"+other.ID+"/messages", f.brandToken, map[string]string{
		"message": "Other thread",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	// Only the requester may delete
	rec, _ = e.doJSON(http.MethodDelete, "/api/license-requests/"+lr.ID, f.artistToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = e.doJSON(http.MethodDelete, "/api/license-requests/"+lr.ID, f.brandToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	_, err := e.db.GetLicenseRequestByID(lr.ID)
	assert.True(t, errors.Is(err, database.ErrNotFound))

	deleted, err := e.db.ListMessagesByLicenseRequest(lr.ID)
	require.NoError(t, err)
	assert.Empty(t, deleted, "deleted request's thread is gone")

	kept, err := e.db.ListMessagesByLicenseRequest(other.ID)
	require.NoError(t, err)
	assert.Len(t, kept, 1, "other thread untouched")
}
