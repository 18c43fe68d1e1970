package database

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"soundlicense-backend/pkg/models"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store used for local development and tests.
// All maps are keyed by id; access is guarded by a single RWMutex.
type MemoryStore struct {
	mu sync.RWMutex

	users    map[string]models.User
	artists  map[string]models.Artist
	brands   map[string]models.Brand
	tracks   map[string]models.Track
	shows    map[string]models.Show
	carts    map[string]models.Cart
	items    map[string]models.CartItem
	licenses map[string]models.LicenseRequest
	messages map[string]models.CollaborationMessage

	// insertion order; time.Now is not granular enough to sort
	// back-to-back writes
	seq     int64
	itemSeq map[string]int64
	msgSeq  map[string]int64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() Store {
	return &MemoryStore{
		users:    make(map[string]models.User),
		artists:  make(map[string]models.Artist),
		brands:   make(map[string]models.Brand),
		tracks:   make(map[string]models.Track),
		shows:    make(map[string]models.Show),
		carts:    make(map[string]models.Cart),
		items:    make(map[string]models.CartItem),
		licenses: make(map[string]models.LicenseRequest),
		messages: make(map[string]models.CollaborationMessage),
		itemSeq:  make(map[string]int64),
		msgSeq:   make(map[string]int64),
	}
}

func newID() string {
	return uuid.New().String()
}

// ================= Users =================

func (s *MemoryStore) CreateUser(user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email {
			return fmt.Errorf("user with email %s already exists", user.Email)
		}
	}
	now := time.Now()
	user.ID = newID()
	user.CreatedAt = now
	user.UpdatedAt = now
	s.users[user.ID] = *user
	return nil
}

func (s *MemoryStore) GetUserByEmail(email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			copied := u
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("user: %w", ErrNotFound)
}

func (s *MemoryStore) GetUserByID(id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user: %w", ErrNotFound)
	}
	copied := u
	return &copied, nil
}

// ================= Artists =================

func (s *MemoryStore) CreateArtist(a *models.Artist) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	a.ID = newID()
	a.CreatedAt = now
	a.UpdatedAt = now
	s.artists[a.ID] = *a
	return nil
}

func (s *MemoryStore) GetArtistByID(id string) (*models.Artist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.artists[id]
	if !ok {
		return nil, fmt.Errorf("artist: %w", ErrNotFound)
	}
	copied := a
	return &copied, nil
}

func (s *MemoryStore) GetArtistByUserID(userID string) (*models.Artist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.artists {
		if a.UserID == userID {
			copied := a
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("artist: %w", ErrNotFound)
}

func (s *MemoryStore) UpdateArtist(a *models.Artist) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.artists[a.ID]; !ok {
		return fmt.Errorf("artist: %w", ErrNotFound)
	}
	a.UpdatedAt = time.Now()
	s.artists[a.ID] = *a
	return nil
}

func (s *MemoryStore) ListArtistSummaries() ([]models.ArtistSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []models.ArtistSummary
	for _, a := range s.artists {
		result = append(result, models.ArtistSummary{ID: a.ID, Name: a.Name})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// ================= Brands =================

func (s *MemoryStore) CreateBrand(b *models.Brand) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	b.ID = newID()
	b.CreatedAt = now
	b.UpdatedAt = now
	s.brands[b.ID] = *b
	return nil
}

func (s *MemoryStore) GetBrandByID(id string) (*models.Brand, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.brands[id]
	if !ok {
		return nil, fmt.Errorf("brand: %w", ErrNotFound)
	}
	copied := b
	return &copied, nil
}

func (s *MemoryStore) GetBrandByUserID(userID string) (*models.Brand, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.brands {
		if b.UserID == userID {
			copied := b
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("brand: %w", ErrNotFound)
}

// ================= Tracks =================

func (s *MemoryStore) CreateTrack(t *models.Track) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	t.ID = newID()
	t.CreatedAt = now
	t.UpdatedAt = now
	stored := *t
	stored.Artist = nil
	s.tracks[t.ID] = stored
	return nil
}

func (s *MemoryStore) GetTrackByID(id string) (*models.Track, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tracks[id]
	if !ok {
		return nil, fmt.Errorf("track: %w", ErrNotFound)
	}
	copied := t
	if a, ok := s.artists[t.ArtistID]; ok {
		artist := a
		copied.Artist = &artist
	}
	return &copied, nil
}

func (s *MemoryStore) UpdateTrack(t *models.Track) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tracks[t.ID]; !ok {
		return fmt.Errorf("track: %w", ErrNotFound)
	}
	t.UpdatedAt = time.Now()
	stored := *t
	stored.Artist = nil
	s.tracks[t.ID] = stored
	return nil
}

func (s *MemoryStore) DeleteTrack(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tracks[id]; !ok {
		return fmt.Errorf("track: %w", ErrNotFound)
	}
	delete(s.tracks, id)
	return nil
}

func (s *MemoryStore) ListTracks(limit, offset int) ([]models.Track, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 {
		limit = 50
	}
	all := make([]models.Track, 0, len(s.tracks))
	for _, t := range s.tracks {
		copied := t
		if a, ok := s.artists[t.ArtistID]; ok {
			artist := a
			copied.Artist = &artist
		}
		all = append(all, copied)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (s *MemoryStore) ListTracksByArtist(artistID string) ([]models.Track, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []models.Track
	for _, t := range s.tracks {
		if t.ArtistID == artistID {
			result = append(result, t)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

// ================= Shows =================

func (s *MemoryStore) CreateShow(sh *models.Show) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	sh.ID = newID()
	sh.CreatedAt = now
	sh.UpdatedAt = now
	s.shows[sh.ID] = *sh
	return nil
}

func (s *MemoryStore) GetShowByID(id string) (*models.Show, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sh, ok := s.shows[id]
	if !ok {
		return nil, fmt.Errorf("show: %w", ErrNotFound)
	}
	copied := sh
	return &copied, nil
}

func (s *MemoryStore) ListUpcomingShowsByArtist(artistID string, after time.Time) ([]models.Show, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []models.Show
	for _, sh := range s.shows {
		if sh.ArtistID == artistID && !sh.Date.Before(after) {
			result = append(result, sh)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result, nil
}

// ================= Carts =================

func (s *MemoryStore) GetOrCreateCartByUser(userID string) (*models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.carts {
		if c.UserID == userID && c.Status == "open" {
			copied := c
			return &copied, nil
		}
	}
	now := time.Now()
	c := models.Cart{
		ID:        newID(),
		UserID:    userID,
		Status:    "open",
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.carts[c.ID] = c
	return &c, nil
}

func (s *MemoryStore) CreateCartItem(it *models.CartItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.carts[it.CartID]; !ok {
		return fmt.Errorf("cart: %w", ErrNotFound)
	}
	now := time.Now()
	it.ID = newID()
	it.CreatedAt = now
	it.UpdatedAt = now
	stored := *it
	stored.Track = nil
	s.items[it.ID] = stored
	s.seq++
	s.itemSeq[it.ID] = s.seq
	return nil
}

func (s *MemoryStore) GetCartItemByID(id string) (*models.CartItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, ok := s.items[id]
	if !ok {
		return nil, fmt.Errorf("cart item: %w", ErrNotFound)
	}
	copied := it
	return &copied, nil
}

func (s *MemoryStore) DeleteCartItem(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return fmt.Errorf("cart item: %w", ErrNotFound)
	}
	delete(s.items, id)
	delete(s.itemSeq, id)
	return nil
}

func (s *MemoryStore) ListCartItems(cartID string) ([]models.CartItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []models.CartItem
	for _, it := range s.items {
		if it.CartID == cartID {
			result = append(result, it)
		}
	}
	sort.Slice(result, func(i, j int) bool { return s.itemSeq[result[i].ID] < s.itemSeq[result[j].ID] })
	return result, nil
}

// ================= License requests =================

func (s *MemoryStore) CreateLicenseRequest(lr *models.LicenseRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if lr.Status == "" {
		lr.Status = models.LicensePending
	}
	if lr.Territory == "" {
		lr.Territory = "worldwide"
	}
	now := time.Now()
	lr.ID = newID()
	lr.CreatedAt = now
	lr.UpdatedAt = now
	stored := *lr
	stored.Track = nil
	stored.Brand = nil
	s.licenses[lr.ID] = stored
	return nil
}

func (s *MemoryStore) GetLicenseRequestByID(id string) (*models.LicenseRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lr, ok := s.licenses[id]
	if !ok {
		return nil, fmt.Errorf("license request: %w", ErrNotFound)
	}
	copied := lr
	return &copied, nil
}

func (s *MemoryStore) UpdateLicenseRequest(lr *models.LicenseRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.licenses[lr.ID]; !ok {
		return fmt.Errorf("license request: %w", ErrNotFound)
	}
	lr.UpdatedAt = time.Now()
	stored := *lr
	stored.Track = nil
	stored.Brand = nil
	s.licenses[lr.ID] = stored
	return nil
}

func (s *MemoryStore) DeleteLicenseRequest(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.licenses[id]; !ok {
		return fmt.Errorf("license request: %w", ErrNotFound)
	}
	delete(s.licenses, id)
	for mid, m := range s.messages {
		if m.LicenseRequestID == id {
			delete(s.messages, mid)
			delete(s.msgSeq, mid)
		}
	}
	return nil
}

func (s *MemoryStore) listLicenses(match func(models.LicenseRequest) bool) []models.LicenseRequest {
	var result []models.LicenseRequest
	for _, lr := range s.licenses {
		if match(lr) {
			result = append(result, lr)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result
}

func (s *MemoryStore) ListLicenseRequestsByTrack(trackID string) ([]models.LicenseRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listLicenses(func(lr models.LicenseRequest) bool { return lr.TrackID == trackID }), nil
}

func (s *MemoryStore) ListLicenseRequestsByBrand(brandID string) ([]models.LicenseRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listLicenses(func(lr models.LicenseRequest) bool { return lr.BrandID == brandID }), nil
}

func (s *MemoryStore) ListLicenseRequestsByUser(userID string) ([]models.LicenseRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listLicenses(func(lr models.LicenseRequest) bool { return lr.UserID == userID }), nil
}

// ================= Collaboration messages =================

func (s *MemoryStore) CreateCollaborationMessage(m *models.CollaborationMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.licenses[m.LicenseRequestID]; !ok {
		return fmt.Errorf("license request: %w", ErrNotFound)
	}
	now := time.Now()
	m.ID = newID()
	m.ReadAt = nil
	m.CreatedAt = now
	m.UpdatedAt = now
	s.messages[m.ID] = *m
	s.seq++
	s.msgSeq[m.ID] = s.seq
	return nil
}

func (s *MemoryStore) GetCollaborationMessageByID(id string) (*models.CollaborationMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.messages[id]
	if !ok {
		return nil, fmt.Errorf("message: %w", ErrNotFound)
	}
	copied := m
	return &copied, nil
}

func (s *MemoryStore) MarkMessageRead(id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.messages[id]
	if !ok {
		return fmt.Errorf("message: %w", ErrNotFound)
	}
	m.ReadAt = &at
	m.UpdatedAt = time.Now()
	s.messages[id] = m
	return nil
}

func (s *MemoryStore) ListMessagesByLicenseRequest(licenseRequestID string) ([]models.CollaborationMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []models.CollaborationMessage
	for _, m := range s.messages {
		if m.LicenseRequestID == licenseRequestID {
			result = append(result, m)
		}
	}
	sort.Slice(result, func(i, j int) bool { return s.msgSeq[result[i].ID] < s.msgSeq[result[j].ID] })
	return result, nil
}

func (s *MemoryStore) CountUnreadMessages(receiverID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, m := range s.messages {
		if m.ReceiverID == receiverID && m.ReadAt == nil {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) CountUnreadMessagesBySender(receiverID string) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make(map[string]int)
	for _, m := range s.messages {
		if m.ReceiverID == receiverID && m.ReadAt == nil {
			result[m.SenderID]++
		}
	}
	return result, nil
}

// HealthCheck always succeeds for the in-memory store.
func (s *MemoryStore) HealthCheck() error {
	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}
