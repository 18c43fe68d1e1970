package models

import "time"

// Cart accumulates provisional license proposals for one user.
type Cart struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Status    string    `json:"status" db:"status"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CartItem is a pending license proposal for one track. Price and terms are
// snapshotted at add time and stay independent of the track's live price.
type CartItem struct {
	ID                 string    `json:"id" db:"id"`
	CartID             string    `json:"cart_id" db:"cart_id"`
	TrackID            string    `json:"track_id" db:"track_id"`
	LicenseType        string    `json:"license_type" db:"license_type"`
	Price              float64   `json:"price" db:"price"`
	ProjectTitle       string    `json:"project_title" db:"project_title"`
	ProjectDescription string    `json:"project_description,omitempty" db:"project_description"`
	UsageDescription   string    `json:"usage_description,omitempty" db:"usage_description"`
	Territory          string    `json:"territory" db:"territory"`
	Duration           int       `json:"duration" db:"duration"` // months
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time `json:"updated_at" db:"updated_at"`

	Track *Track `json:"track,omitempty"`
}
