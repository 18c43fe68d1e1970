package models

import "time"

// Brand is a company profile owned by one user; brands request track licenses.
type Brand struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description,omitempty" db:"description"`
	Logo        *string   `json:"logo,omitempty" db:"logo"`
	Website     string    `json:"website,omitempty" db:"website"`
	Industry    string    `json:"industry,omitempty" db:"industry"`
	UserID      string    `json:"user_id" db:"user_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
