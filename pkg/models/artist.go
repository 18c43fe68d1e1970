package models

import "time"

// Artist is a performer profile owned by exactly one user.
type Artist struct {
	ID           string            `json:"id" db:"id"`
	Name         string            `json:"name" db:"name"`
	Bio          string            `json:"bio,omitempty" db:"bio"`
	ProfileImage *string           `json:"profile_image,omitempty" db:"profile_image"`
	Website      string            `json:"website,omitempty" db:"website"`
	SocialLinks  map[string]string `json:"social_links,omitempty" db:"social_links"`
	Genres       []string          `json:"genres,omitempty" db:"genres"`
	UserID       string            `json:"user_id" db:"user_id"`
	CreatedAt    time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at" db:"updated_at"`
}

// ArtistSummary is the reduced listing shape for GET /api/artists.
type ArtistSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Show is a live performance event listed on an artist's profile.
type Show struct {
	ID          string    `json:"id" db:"id"`
	ArtistID    string    `json:"artist_id" db:"artist_id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description,omitempty" db:"description"`
	Date        time.Time `json:"date" db:"date"`
	Venue       string    `json:"venue" db:"venue"`
	City        string    `json:"city" db:"city"`
	Country     string    `json:"country" db:"country"`
	TicketURL   *string   `json:"ticket_url,omitempty" db:"ticket_url"`
	IsFeatured  bool      `json:"is_featured" db:"is_featured"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
