package models

import "time"

// Track is a licensable audio work uploaded by an artist. Genres, moods and
// instruments are free-form tag sets stored as JSON columns.
type Track struct {
	ID           string    `json:"id" db:"id"`
	Title        string    `json:"title" db:"title"`
	Description  string    `json:"description,omitempty" db:"description"`
	Duration     int       `json:"duration" db:"duration"` // seconds
	FilePath     string    `json:"file_path" db:"file_path"`
	WaveformPath *string   `json:"waveform_path,omitempty" db:"waveform_path"`
	CoverImage   *string   `json:"cover_image,omitempty" db:"cover_image"`
	BPM          int       `json:"bpm,omitempty" db:"bpm"`
	Key          string    `json:"key,omitempty" db:"key"`
	Genres       []string  `json:"genres,omitempty" db:"genres"`
	Moods        []string  `json:"moods,omitempty" db:"moods"`
	Instruments  []string  `json:"instruments,omitempty" db:"instruments"`
	Price        float64   `json:"price" db:"price"`
	ArtistID     string    `json:"artist_id" db:"artist_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`

	// Joined for display; populated on list/detail queries.
	Artist *Artist `json:"artist,omitempty"`
}
