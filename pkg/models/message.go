package models

import "time"

// CollaborationMessage is a directed message between the two counterparties
// of one license request. read_at null means unread.
type CollaborationMessage struct {
	ID               string     `json:"id" db:"id"`
	Message          string     `json:"message" db:"message"`
	Attachment       *string    `json:"attachment,omitempty" db:"attachment"`
	SenderID         string     `json:"sender_id" db:"sender_id"`
	ReceiverID       string     `json:"receiver_id" db:"receiver_id"`
	LicenseRequestID string     `json:"license_request_id" db:"license_request_id"`
	ReadAt           *time.Time `json:"read_at,omitempty" db:"read_at"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
}

// IsRead reports whether the message has been read.
func (m *CollaborationMessage) IsRead() bool {
	return m.ReadAt != nil
}
