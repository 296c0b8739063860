package models

import "time"

// Session is the authenticated caller's context as stored in redis and
// threaded explicitly into the usecases. LocationID points at the Location
// resource the user is currently working from.
type Session struct {
	SessionID      string    `json:"session_id"`
	UserID         string    `json:"user_id"`
	PractitionerID string    `json:"practitioner_id,omitempty"`
	LocationID     string    `json:"location_id,omitempty"`
	LocationName   string    `json:"location_name,omitempty"`
	ExpiresAt      time.Time `json:"expires_at"`
}
