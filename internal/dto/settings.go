package dto

import "time"

// SettingsResponse is the profile block of the settings view.
type SettingsResponse struct {
	UserID      string     `json:"user_id"`
	Email       string     `json:"email"`
	MemberSince *time.Time `json:"member_since,omitempty"`
}
