package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"soundlicense-backend/pkg/models"

	_ "github.com/lib/pq"
)

// PostgresStore is the PostgreSQL Store implementation.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a PostgreSQL connection and verifies it.
func NewPostgresStore(dsn string) (Store, error) {
	// Sanitize DSN to avoid stray CR/LF from env values
	dsn = strings.TrimSpace(dsn)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	fmt.Printf("✅ PostgreSQL connection established\n")
	return &PostgresStore{db: db}, nil
}

// toJSON marshals a tag set or link map for a JSON column. Nil input stores
// SQL NULL.
func toJSON(v interface{}) (interface{}, error) {
	switch vv := v.(type) {
	case []string:
		if vv == nil {
			return nil, nil
		}
	case map[string]string:
		if vv == nil {
			return nil, nil
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal json column: %w", err)
	}
	return b, nil
}

func fromJSON(data []byte, v interface{}) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

func nullIfEmpty(s string) interface{} {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

// ================= Users =================

// CreateUser inserts a user row.
func (s *PostgresStore) CreateUser(user *models.User) error {
	query := `
		INSERT INTO users (name, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`
	err := s.db.QueryRow(query, user.Name, user.Email, user.PasswordHash).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByEmail looks up a user by email.
func (s *PostgresStore) GetUserByEmail(email string) (*models.User, error) {
	query := `
		SELECT id, COALESCE(name,''), email, COALESCE(password_hash,''), created_at, updated_at
		FROM users
		WHERE email = $1
	`
	var u models.User
	err := s.db.QueryRow(query, email).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &u, nil
}

// GetUserByID looks up a user by id.
func (s *PostgresStore) GetUserByID(id string) (*models.User, error) {
	query := `
		SELECT id, COALESCE(name,''), email, COALESCE(password_hash,''), created_at, updated_at
		FROM users
		WHERE id = $1
	`
	var u models.User
	err := s.db.QueryRow(query, id).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// ================= Artists =================

// CreateArtist inserts an artist profile row.
func (s *PostgresStore) CreateArtist(a *models.Artist) error {
	links, err := toJSON(a.SocialLinks)
	if err != nil {
		return err
	}
	genres, err := toJSON(a.Genres)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO artists (name, bio, profile_image, website, social_links, genres, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`
	err = s.db.QueryRow(query, a.Name, a.Bio, a.ProfileImage, nullIfEmpty(a.Website), links, genres, a.UserID).
		Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create artist: %w", err)
	}
	return nil
}

const artistColumns = `id, name, COALESCE(bio,''), profile_image, COALESCE(website,''), social_links, genres, user_id, created_at, updated_at`

func scanArtist(row interface{ Scan(...interface{}) error }) (*models.Artist, error) {
	var a models.Artist
	var links, genres []byte
	err := row.Scan(&a.ID, &a.Name, &a.Bio, &a.ProfileImage, &a.Website, &links, &genres, &a.UserID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := fromJSON(links, &a.SocialLinks); err != nil {
		return nil, fmt.Errorf("failed to unmarshal social links: %w", err)
	}
	if err := fromJSON(genres, &a.Genres); err != nil {
		return nil, fmt.Errorf("failed to unmarshal genres: %w", err)
	}
	return &a, nil
}

// GetArtistByID looks up an artist by id.
func (s *PostgresStore) GetArtistByID(id string) (*models.Artist, error) {
	a, err := scanArtist(s.db.QueryRow(`SELECT `+artistColumns+` FROM artists WHERE id = $1`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("artist: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get artist: %w", err)
	}
	return a, nil
}

// GetArtistByUserID looks up the artist profile owned by a user.
func (s *PostgresStore) GetArtistByUserID(userID string) (*models.Artist, error) {
	a, err := scanArtist(s.db.QueryRow(`SELECT `+artistColumns+` FROM artists WHERE user_id = $1`, userID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("artist: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get artist by user: %w", err)
	}
	return a, nil
}

// UpdateArtist updates a profile in place.
func (s *PostgresStore) UpdateArtist(a *models.Artist) error {
	links, err := toJSON(a.SocialLinks)
	if err != nil {
		return err
	}
	genres, err := toJSON(a.Genres)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`
		UPDATE artists
		SET name=$1, bio=$2, profile_image=$3, website=$4, social_links=$5, genres=$6, updated_at=NOW()
		WHERE id=$7
	`, a.Name, a.Bio, a.ProfileImage, nullIfEmpty(a.Website), links, genres, a.ID)
	if err != nil {
		return fmt.Errorf("failed to update artist: %w", err)
	}
	return nil
}

// ListArtistSummaries lists id+name pairs ordered by name.
func (s *PostgresStore) ListArtistSummaries() ([]models.ArtistSummary, error) {
	rows, err := s.db.Query(`SELECT id, name FROM artists ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list artists: %w", err)
	}
	defer rows.Close()
	var result []models.ArtistSummary
	for rows.Next() {
		var a models.ArtistSummary
		if err := rows.Scan(&a.ID, &a.Name); err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

// ================= Brands =================

// CreateBrand inserts a brand profile row.
func (s *PostgresStore) CreateBrand(b *models.Brand) error {
	query := `
		INSERT INTO brands (name, description, logo, website, industry, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`
	err := s.db.QueryRow(query, b.Name, b.Description, b.Logo, nullIfEmpty(b.Website), b.Industry, b.UserID).
		Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create brand: %w", err)
	}
	return nil
}

const brandColumns = `id, name, COALESCE(description,''), logo, COALESCE(website,''), COALESCE(industry,''), user_id, created_at, updated_at`

func scanBrand(row interface{ Scan(...interface{}) error }) (*models.Brand, error) {
	var b models.Brand
	err := row.Scan(&b.ID, &b.Name, &b.Description, &b.Logo, &b.Website, &b.Industry, &b.UserID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// GetBrandByID looks up a brand by id.
func (s *PostgresStore) GetBrandByID(id string) (*models.Brand, error) {
	b, err := scanBrand(s.db.QueryRow(`SELECT `+brandColumns+` FROM brands WHERE id = $1`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("brand: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get brand: %w", err)
	}
	return b, nil
}

// GetBrandByUserID looks up the brand profile owned by a user.
func (s *PostgresStore) GetBrandByUserID(userID string) (*models.Brand, error) {
	b, err := scanBrand(s.db.QueryRow(`SELECT `+brandColumns+` FROM brands WHERE user_id = $1`, userID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("brand: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get brand by user: %w", err)
	}
	return b, nil
}

// ================= Tracks =================

// CreateTrack inserts a track row.
func (s *PostgresStore) CreateTrack(t *models.Track) error {
	genres, err := toJSON(t.Genres)
	if err != nil {
		return err
	}
	moods, err := toJSON(t.Moods)
	if err != nil {
		return err
	}
	instruments, err := toJSON(t.Instruments)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO tracks (title, description, duration, file_path, waveform_path, cover_image,
		                    bpm, key, genres, moods, instruments, price, artist_id, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`
	err = s.db.QueryRow(query,
		t.Title, t.Description, t.Duration, t.FilePath, t.WaveformPath, t.CoverImage,
		t.BPM, nullIfEmpty(t.Key), genres, moods, instruments, t.Price, t.ArtistID,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create track: %w", err)
	}
	return nil
}

const trackColumns = `t.id, t.title, COALESCE(t.description,''), COALESCE(t.duration,0), t.file_path,
	t.waveform_path, t.cover_image, COALESCE(t.bpm,0), COALESCE(t.key,''),
	t.genres, t.moods, t.instruments, t.price, t.artist_id, t.created_at, t.updated_at`

func scanTrack(row interface{ Scan(...interface{}) error }) (*models.Track, error) {
	var t models.Track
	var genres, moods, instruments []byte
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Duration, &t.FilePath,
		&t.WaveformPath, &t.CoverImage, &t.BPM, &t.Key,
		&genres, &moods, &instruments, &t.Price, &t.ArtistID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := fromJSON(genres, &t.Genres); err != nil {
		return nil, fmt.Errorf("failed to unmarshal genres: %w", err)
	}
	if err := fromJSON(moods, &t.Moods); err != nil {
		return nil, fmt.Errorf("failed to unmarshal moods: %w", err)
	}
	if err := fromJSON(instruments, &t.Instruments); err != nil {
		return nil, fmt.Errorf("failed to unmarshal instruments: %w", err)
	}
	return &t, nil
}

// GetTrackByID looks up a track with its artist joined.
func (s *PostgresStore) GetTrackByID(id string) (*models.Track, error) {
	t, err := scanTrack(s.db.QueryRow(`SELECT `+trackColumns+` FROM tracks t WHERE t.id = $1`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("track: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get track: %w", err)
	}
	if artist, err := s.GetArtistByID(t.ArtistID); err == nil {
		t.Artist = artist
	}
	return t, nil
}

// UpdateTrack updates a track in place.
func (s *PostgresStore) UpdateTrack(t *models.Track) error {
	genres, err := toJSON(t.Genres)
	if err != nil {
		return err
	}
	moods, err := toJSON(t.Moods)
	if err != nil {
		return err
	}
	instruments, err := toJSON(t.Instruments)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`
		UPDATE tracks
		SET title=$1, description=$2, duration=$3, file_path=$4, waveform_path=$5, cover_image=$6,
		    bpm=$7, key=$8, genres=$9, moods=$10, instruments=$11, price=$12, artist_id=$13, updated_at=NOW()
		WHERE id=$14
	`, t.Title, t.Description, t.Duration, t.FilePath, t.WaveformPath, t.CoverImage,
		t.BPM, nullIfEmpty(t.Key), genres, moods, instruments, t.Price, t.ArtistID, t.ID)
	if err != nil {
		return fmt.Errorf("failed to update track: %w", err)
	}
	return nil
}

// DeleteTrack removes a track; license requests and cart items referencing
// it go with it via FK cascade.
func (s *PostgresStore) DeleteTrack(id string) error {
	result, err := s.db.Exec(`DELETE FROM tracks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete track: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("track: %w", ErrNotFound)
	}
	return nil
}

// ListTracks lists tracks with their artist joined, newest first.
func (s *PostgresStore) ListTracks(limit, offset int) ([]models.Track, int, error) {
	if limit <= 0 {
		limit = 50
	}
	var total int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM tracks`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count tracks: %w", err)
	}

	query := `
		SELECT ` + trackColumns + `,
		       a.id, a.name, COALESCE(a.bio,''), a.profile_image, COALESCE(a.website,''), a.social_links, a.genres, a.user_id, a.created_at, a.updated_at
		FROM tracks t
		JOIN artists a ON a.id = t.artist_id
		ORDER BY t.created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := s.db.Query(query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tracks: %w", err)
	}
	defer rows.Close()

	var result []models.Track
	for rows.Next() {
		var t models.Track
		var a models.Artist
		var tGenres, tMoods, tInstruments, aLinks, aGenres []byte
		err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Duration, &t.FilePath,
			&t.WaveformPath, &t.CoverImage, &t.BPM, &t.Key,
			&tGenres, &tMoods, &tInstruments, &t.Price, &t.ArtistID, &t.CreatedAt, &t.UpdatedAt,
			&a.ID, &a.Name, &a.Bio, &a.ProfileImage, &a.Website, &aLinks, &aGenres, &a.UserID, &a.CreatedAt, &a.UpdatedAt)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan track: %w", err)
		}
		if err := fromJSON(tGenres, &t.Genres); err != nil {
			return nil, 0, err
		}
		if err := fromJSON(tMoods, &t.Moods); err != nil {
			return nil, 0, err
		}
		if err := fromJSON(tInstruments, &t.Instruments); err != nil {
			return nil, 0, err
		}
		if err := fromJSON(aLinks, &a.SocialLinks); err != nil {
			return nil, 0, err
		}
		if err := fromJSON(aGenres, &a.Genres); err != nil {
			return nil, 0, err
		}
		t.Artist = &a
		result = append(result, t)
	}
	return result, total, rows.Err()
}

// ListTracksByArtist lists one artist's tracks, newest first.
func (s *PostgresStore) ListTracksByArtist(artistID string) ([]models.Track, error) {
	rows, err := s.db.Query(`SELECT `+trackColumns+` FROM tracks t WHERE t.artist_id = $1 ORDER BY t.created_at DESC`, artistID)
	if err != nil {
		return nil, fmt.Errorf("failed to list artist tracks: %w", err)
	}
	defer rows.Close()
	var result []models.Track
	for rows.Next() {
		t, err := scanTrack(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan track: %w", err)
		}
		result = append(result, *t)
	}
	return result, rows.Err()
}

// ================= Shows =================

// CreateShow inserts a show row.
func (s *PostgresStore) CreateShow(sh *models.Show) error {
	query := `
		INSERT INTO shows (artist_id, title, description, date, venue, city, country, ticket_url, is_featured, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`
	err := s.db.QueryRow(query, sh.ArtistID, sh.Title, sh.Description, sh.Date, sh.Venue, sh.City, sh.Country, sh.TicketURL, sh.IsFeatured).
		Scan(&sh.ID, &sh.CreatedAt, &sh.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create show: %w", err)
	}
	return nil
}

const showColumns = `id, artist_id, title, COALESCE(description,''), date, venue, city, country, ticket_url, is_featured, created_at, updated_at`

func scanShow(row interface{ Scan(...interface{}) error }) (*models.Show, error) {
	var sh models.Show
	err := row.Scan(&sh.ID, &sh.ArtistID, &sh.Title, &sh.Description, &sh.Date, &sh.Venue, &sh.City, &sh.Country, &sh.TicketURL, &sh.IsFeatured, &sh.CreatedAt, &sh.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &sh, nil
}

// GetShowByID looks up one show.
func (s *PostgresStore) GetShowByID(id string) (*models.Show, error) {
	sh, err := scanShow(s.db.QueryRow(`SELECT `+showColumns+` FROM shows WHERE id = $1`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("show: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get show: %w", err)
	}
	return sh, nil
}

// ListUpcomingShowsByArtist lists an artist's shows from the cutoff onward.
func (s *PostgresStore) ListUpcomingShowsByArtist(artistID string, after time.Time) ([]models.Show, error) {
	rows, err := s.db.Query(`SELECT `+showColumns+` FROM shows WHERE artist_id = $1 AND date >= $2 ORDER BY date ASC`, artistID, after)
	if err != nil {
		return nil, fmt.Errorf("failed to list shows: %w", err)
	}
	defer rows.Close()
	var result []models.Show
	for rows.Next() {
		sh, err := scanShow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan show: %w", err)
		}
		result = append(result, *sh)
	}
	return result, rows.Err()
}

// ================= Carts =================

// GetOrCreateCartByUser returns the user's open cart, creating it on first use.
func (s *PostgresStore) GetOrCreateCartByUser(userID string) (*models.Cart, error) {
	var c models.Cart
	err := s.db.QueryRow(`SELECT id, user_id, status, created_at, updated_at FROM carts WHERE user_id = $1 AND status = 'open'`, userID).
		Scan(&c.ID, &c.UserID, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err == nil {
		return &c, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	err = s.db.QueryRow(`
		INSERT INTO carts (user_id, status, created_at, updated_at)
		VALUES ($1, 'open', NOW(), NOW())
		RETURNING id, user_id, status, created_at, updated_at
	`, userID).Scan(&c.ID, &c.UserID, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}
	return &c, nil
}

// CreateCartItem inserts a cart item with its term snapshot.
func (s *PostgresStore) CreateCartItem(it *models.CartItem) error {
	query := `
		INSERT INTO cart_items (cart_id, track_id, license_type, price, project_title, project_description,
		                        usage_description, territory, duration, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`
	err := s.db.QueryRow(query, it.CartID, it.TrackID, it.LicenseType, it.Price, it.ProjectTitle,
		it.ProjectDescription, it.UsageDescription, it.Territory, it.Duration).
		Scan(&it.ID, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create cart item: %w", err)
	}
	return nil
}

// GetCartItemByID looks up one cart item.
func (s *PostgresStore) GetCartItemByID(id string) (*models.CartItem, error) {
	var it models.CartItem
	err := s.db.QueryRow(`
		SELECT id, cart_id, track_id, license_type, price, project_title, COALESCE(project_description,''),
		       COALESCE(usage_description,''), territory, duration, created_at, updated_at
		FROM cart_items WHERE id = $1
	`, id).Scan(&it.ID, &it.CartID, &it.TrackID, &it.LicenseType, &it.Price, &it.ProjectTitle,
		&it.ProjectDescription, &it.UsageDescription, &it.Territory, &it.Duration, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("cart item: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get cart item: %w", err)
	}
	return &it, nil
}

// DeleteCartItem removes one cart item.
func (s *PostgresStore) DeleteCartItem(id string) error {
	result, err := s.db.Exec(`DELETE FROM cart_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete cart item: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("cart item: %w", ErrNotFound)
	}
	return nil
}

// ListCartItems lists a cart's items in creation order.
func (s *PostgresStore) ListCartItems(cartID string) ([]models.CartItem, error) {
	rows, err := s.db.Query(`
		SELECT id, cart_id, track_id, license_type, price, project_title, COALESCE(project_description,''),
		       COALESCE(usage_description,''), territory, duration, created_at, updated_at
		FROM cart_items WHERE cart_id = $1 ORDER BY created_at ASC
	`, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart items: %w", err)
	}
	defer rows.Close()
	var result []models.CartItem
	for rows.Next() {
		var it models.CartItem
		if err := rows.Scan(&it.ID, &it.CartID, &it.TrackID, &it.LicenseType, &it.Price, &it.ProjectTitle,
			&it.ProjectDescription, &it.UsageDescription, &it.Territory, &it.Duration, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, it)
	}
	return result, rows.Err()
}

// ================= License requests =================

// CreateLicenseRequest inserts a license request row.
func (s *PostgresStore) CreateLicenseRequest(lr *models.LicenseRequest) error {
	if lr.Status == "" {
		lr.Status = models.LicensePending
	}
	if lr.Territory == "" {
		lr.Territory = "worldwide"
	}
	query := `
		INSERT INTO license_requests (status, license_type, project_title, project_description, usage_description,
		                              territory, duration, price, license_document, track_id, brand_id, user_id, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`
	err := s.db.QueryRow(query, string(lr.Status), lr.LicenseType, lr.ProjectTitle, lr.ProjectDescription,
		lr.UsageDescription, lr.Territory, lr.Duration, lr.Price, lr.LicenseDocument,
		lr.TrackID, lr.BrandID, lr.UserID).
		Scan(&lr.ID, &lr.CreatedAt, &lr.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create license request: %w", err)
	}
	return nil
}

const licenseColumns = `id, status, license_type, project_title, COALESCE(project_description,''),
	COALESCE(usage_description,''), territory, duration, price, license_document,
	track_id, brand_id, user_id, created_at, updated_at`

func scanLicenseRequest(row interface{ Scan(...interface{}) error }) (*models.LicenseRequest, error) {
	var lr models.LicenseRequest
	var status string
	err := row.Scan(&lr.ID, &status, &lr.LicenseType, &lr.ProjectTitle, &lr.ProjectDescription,
		&lr.UsageDescription, &lr.Territory, &lr.Duration, &lr.Price, &lr.LicenseDocument,
		&lr.TrackID, &lr.BrandID, &lr.UserID, &lr.CreatedAt, &lr.UpdatedAt)
	if err != nil {
		return nil, err
	}
	lr.Status = models.LicenseStatus(status)
	return &lr, nil
}

// GetLicenseRequestByID looks up one license request.
func (s *PostgresStore) GetLicenseRequestByID(id string) (*models.LicenseRequest, error) {
	lr, err := scanLicenseRequest(s.db.QueryRow(`SELECT `+licenseColumns+` FROM license_requests WHERE id = $1`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("license request: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get license request: %w", err)
	}
	return lr, nil
}

// UpdateLicenseRequest writes status, document and terms back.
func (s *PostgresStore) UpdateLicenseRequest(lr *models.LicenseRequest) error {
	_, err := s.db.Exec(`
		UPDATE license_requests
		SET status=$1, license_type=$2, project_title=$3, project_description=$4, usage_description=$5,
		    territory=$6, duration=$7, price=$8, license_document=$9, updated_at=NOW()
		WHERE id=$10
	`, string(lr.Status), lr.LicenseType, lr.ProjectTitle, lr.ProjectDescription, lr.UsageDescription,
		lr.Territory, lr.Duration, lr.Price, lr.LicenseDocument, lr.ID)
	if err != nil {
		return fmt.Errorf("failed to update license request: %w", err)
	}
	return nil
}

// DeleteLicenseRequest removes a request and its messages in one
// transaction. The FK also cascades; the explicit delete keeps the memory
// store and postgres behavior identical.
func (s *PostgresStore) DeleteLicenseRequest(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM collaboration_messages WHERE license_request_id = $1`, id); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to delete messages: %w", err)
	}
	res, err := tx.Exec(`DELETE FROM license_requests WHERE id = $1`, id)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to delete license request: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		_ = tx.Rollback()
		return fmt.Errorf("license request: %w", ErrNotFound)
	}
	return tx.Commit()
}

func (s *PostgresStore) listLicenseRequests(where string, arg interface{}) ([]models.LicenseRequest, error) {
	rows, err := s.db.Query(`SELECT `+licenseColumns+` FROM license_requests WHERE `+where+` ORDER BY created_at DESC`, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list license requests: %w", err)
	}
	defer rows.Close()
	var result []models.LicenseRequest
	for rows.Next() {
		lr, err := scanLicenseRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan license request: %w", err)
		}
		result = append(result, *lr)
	}
	return result, rows.Err()
}

// ListLicenseRequestsByTrack lists requests against one track, newest first.
func (s *PostgresStore) ListLicenseRequestsByTrack(trackID string) ([]models.LicenseRequest, error) {
	return s.listLicenseRequests("track_id = $1", trackID)
}

// ListLicenseRequestsByBrand lists one brand's requests, newest first.
func (s *PostgresStore) ListLicenseRequestsByBrand(brandID string) ([]models.LicenseRequest, error) {
	return s.listLicenseRequests("brand_id = $1", brandID)
}

// ListLicenseRequestsByUser lists one user's requests, newest first.
func (s *PostgresStore) ListLicenseRequestsByUser(userID string) ([]models.LicenseRequest, error) {
	return s.listLicenseRequests("user_id = $1", userID)
}

// ================= Collaboration messages =================

// CreateCollaborationMessage inserts a message with read_at null.
func (s *PostgresStore) CreateCollaborationMessage(m *models.CollaborationMessage) error {
	query := `
		INSERT INTO collaboration_messages (message, attachment, sender_id, receiver_id, license_request_id, read_at, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,NULL, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`
	err := s.db.QueryRow(query, m.Message, m.Attachment, m.SenderID, m.ReceiverID, m.LicenseRequestID).
		Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create collaboration message: %w", err)
	}
	m.ReadAt = nil
	return nil
}

const messageColumns = `id, message, attachment, sender_id, receiver_id, license_request_id, read_at, created_at, updated_at`

func scanMessage(row interface{ Scan(...interface{}) error }) (*models.CollaborationMessage, error) {
	var m models.CollaborationMessage
	err := row.Scan(&m.ID, &m.Message, &m.Attachment, &m.SenderID, &m.ReceiverID, &m.LicenseRequestID, &m.ReadAt, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetCollaborationMessageByID looks up one message.
func (s *PostgresStore) GetCollaborationMessageByID(id string) (*models.CollaborationMessage, error) {
	m, err := scanMessage(s.db.QueryRow(`SELECT `+messageColumns+` FROM collaboration_messages WHERE id = $1`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("message: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get message: %w", err)
	}
	return m, nil
}

// MarkMessageRead stamps read_at, overwriting any previous value.
func (s *PostgresStore) MarkMessageRead(id string, at time.Time) error {
	result, err := s.db.Exec(`UPDATE collaboration_messages SET read_at=$1, updated_at=NOW() WHERE id=$2`, at, id)
	if err != nil {
		return fmt.Errorf("failed to mark message read: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("message: %w", ErrNotFound)
	}
	return nil
}

// ListMessagesByLicenseRequest returns the thread oldest first.
func (s *PostgresStore) ListMessagesByLicenseRequest(licenseRequestID string) ([]models.CollaborationMessage, error) {
	rows, err := s.db.Query(`SELECT `+messageColumns+` FROM collaboration_messages WHERE license_request_id = $1 ORDER BY created_at ASC`, licenseRequestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()
	var result []models.CollaborationMessage
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		result = append(result, *m)
	}
	return result, rows.Err()
}

// CountUnreadMessages counts a receiver's unread messages.
func (s *PostgresStore) CountUnreadMessages(receiverID string) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM collaboration_messages WHERE receiver_id = $1 AND read_at IS NULL`, receiverID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread messages: %w", err)
	}
	return count, nil
}

// CountUnreadMessagesBySender groups a receiver's unread messages by sender.
func (s *PostgresStore) CountUnreadMessagesBySender(receiverID string) (map[string]int, error) {
	rows, err := s.db.Query(`
		SELECT sender_id, COUNT(*)
		FROM collaboration_messages
		WHERE receiver_id = $1 AND read_at IS NULL
		GROUP BY sender_id
	`, receiverID)
	if err != nil {
		return nil, fmt.Errorf("failed to count unread by sender: %w", err)
	}
	defer rows.Close()
	result := make(map[string]int)
	for rows.Next() {
		var sender string
		var count int
		if err := rows.Scan(&sender, &count); err != nil {
			return nil, err
		}
		result[sender] = count
	}
	return result, rows.Err()
}

// HealthCheck pings the database.
func (s *PostgresStore) HealthCheck() error {
	return s.db.Ping()
}

// Close closes the connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
