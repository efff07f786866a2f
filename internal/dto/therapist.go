package dto

import (
	"time"

	"github.com/wpitts2299/AI-Club-Hackathon-Student-Health-Project/internal/models"
)

// LoginRequest authenticates a therapist. Username also accepts a staff id.
type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// LoginResponse returns the issued session.
type LoginResponse struct {
	Token     string           `json:"token"`
	Therapist TherapistProfile `json:"therapist"`
}

// TherapistProfile is the public view of a credential.
type TherapistProfile struct {
	Username       string `json:"username"`
	StaffID        string `json:"therapist_id,omitempty"`
	DisplayName    string `json:"therapist_name,omitempty"`
	FirstResponder bool   `json:"first_responder"`
}

// NewTherapistProfile strips secrets from a credential.
func NewTherapistProfile(cred *models.TherapistCredential) TherapistProfile {
	if cred == nil {
		return TherapistProfile{}
	}
	return TherapistProfile{
		Username:       cred.Username,
		StaffID:        cred.StaffID,
		DisplayName:    cred.DisplayName,
		FirstResponder: cred.FirstResponder,
	}
}

// DashboardResponse lists the history visible to the signed-in therapist.
type DashboardResponse struct {
	Heading   string           `json:"heading"`
	Therapist TherapistProfile `json:"therapist"`
	Entries   []DashboardEntry `json:"entries"`
}

// DashboardEntry is a history entry plus a signed ciphertext link when the
// entry raised an alert.
type DashboardEntry struct {
	models.HistoryEntry
	AlertDownloadURL string     `json:"alert_download_url,omitempty"`
	AlertLinkExpires *time.Time `json:"alert_download_expires_at,omitempty"`
}
