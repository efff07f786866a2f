package models

import "time"

// TherapistCredential is a staff login loaded from the credential store.
type TherapistCredential struct {
	Username       string `json:"username"`
	Password       string `json:"-"`
	StaffID        string `json:"therapist_id,omitempty"`
	DisplayName    string `json:"therapist_name,omitempty"`
	FirstResponder bool   `json:"first_responder"`
}

// TherapistSession binds an opaque token to a username.
type TherapistSession struct {
	Token     string    `json:"-"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}
