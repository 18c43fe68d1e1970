package database

import (
	"fmt"
	"time"

	"soundlicense-backend/pkg/models"
)

// ErrNotFound is returned by Get* methods when no row matches. Lookup
// helpers wrap it so callers can errors.Is on it.
var ErrNotFound = fmt.Errorf("not found")

// Store defines database access for the marketplace.
type Store interface {
	// Users
	CreateUser(user *models.User) error
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)

	// Artists
	CreateArtist(a *models.Artist) error
	GetArtistByID(id string) (*models.Artist, error)
	GetArtistByUserID(userID string) (*models.Artist, error)
	UpdateArtist(a *models.Artist) error
	ListArtistSummaries() ([]models.ArtistSummary, error)

	// Brands
	CreateBrand(b *models.Brand) error
	GetBrandByID(id string) (*models.Brand, error)
	GetBrandByUserID(userID string) (*models.Brand, error)

	// Tracks
	CreateTrack(t *models.Track) error
	GetTrackByID(id string) (*models.Track, error)
	UpdateTrack(t *models.Track) error
	DeleteTrack(id string) error
	// ListTracks returns tracks with their artist joined, newest first,
	// plus the total row count for pagination.
	ListTracks(limit, offset int) ([]models.Track, int, error)
	ListTracksByArtist(artistID string) ([]models.Track, error)

	// Shows
	CreateShow(s *models.Show) error
	GetShowByID(id string) (*models.Show, error)
	// ListUpcomingShowsByArtist returns shows on or after the cutoff,
	// soonest first.
	ListUpcomingShowsByArtist(artistID string, after time.Time) ([]models.Show, error)

	// Carts
	GetOrCreateCartByUser(userID string) (*models.Cart, error)
	CreateCartItem(it *models.CartItem) error
	GetCartItemByID(id string) (*models.CartItem, error)
	DeleteCartItem(id string) error
	ListCartItems(cartID string) ([]models.CartItem, error)

	// License requests
	CreateLicenseRequest(lr *models.LicenseRequest) error
	GetLicenseRequestByID(id string) (*models.LicenseRequest, error)
	UpdateLicenseRequest(lr *models.LicenseRequest) error
	// DeleteLicenseRequest removes the request and all collaboration
	// messages scoped to it.
	DeleteLicenseRequest(id string) error
	ListLicenseRequestsByTrack(trackID string) ([]models.LicenseRequest, error)
	ListLicenseRequestsByBrand(brandID string) ([]models.LicenseRequest, error)
	ListLicenseRequestsByUser(userID string) ([]models.LicenseRequest, error)

	// Collaboration messages
	CreateCollaborationMessage(m *models.CollaborationMessage) error
	GetCollaborationMessageByID(id string) (*models.CollaborationMessage, error)
	// MarkMessageRead overwrites read_at unconditionally; re-marking an
	// already-read message is allowed.
	MarkMessageRead(id string, at time.Time) error
	// ListMessagesByLicenseRequest returns the thread in creation order.
	ListMessagesByLicenseRequest(licenseRequestID string) ([]models.CollaborationMessage, error)
	CountUnreadMessages(receiverID string) (int, error)
	// CountUnreadMessagesBySender groups the receiver's unread messages
	// by sender for unread-count display.
	CountUnreadMessagesBySender(receiverID string) (map[string]int, error)

	HealthCheck() error
	Close() error
}

// StoreConfig selects and configures a Store backend.
type StoreConfig struct {
	PostgresDSN string
	UseMemoryDB bool
	Debug       bool
}

// New selects a Store implementation from the configuration.
func New(config StoreConfig) (Store, error) {
	if config.UseMemoryDB {
		fmt.Printf("🗂️  Using in-memory store\n")
		return NewMemoryStore(), nil
	}

	if config.PostgresDSN != "" {
		fmt.Printf("🗄️  Using PostgreSQL store\n")
		return NewPostgresStore(config.PostgresDSN)
	}

	return nil, fmt.Errorf("no valid database configuration: set POSTGRES_DSN or USE_MEMORY_DB=true")
}
