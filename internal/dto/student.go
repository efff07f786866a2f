package dto

import "github.com/wpitts2299/AI-Club-Hackathon-Student-Health-Project/internal/models"

// ValidateStudentRequest checks a student id against the roster.
type ValidateStudentRequest struct {
	StudentID string `json:"student_id" validate:"required"`
}

// ValidateStudentResponse describes a recognised student.
type ValidateStudentResponse struct {
	Valid      bool                `json:"valid"`
	StudentID  string              `json:"student_id"`
	FirstName  string              `json:"first_name"`
	LastName   string              `json:"last_name"`
	Name       string              `json:"name"`
	Classes    []models.ClassEntry `json:"classes"`
	HasExtra   bool                `json:"has_extra"`
	HasConsent bool                `json:"has_consent"`
}

// AnalyzeRequest submits free text for scoring.
type AnalyzeRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	Text      string `json:"text" validate:"required"`
	Consent   bool   `json:"consent"`
	Source    string `json:"-"`
}

// AnalyzeResponse carries the scores for one submission. Alert paths are not
// exposed to students; HighRisk tells the client an alert was raised.
type AnalyzeResponse struct {
	StudentID         string           `json:"student_id"`
	WordCount         int              `json:"word_count"`
	AcademicStress    models.ScoreSet  `json:"academic_stress"`
	MentalHealth      models.ScoreSet  `json:"mental_health"`
	Emotions          models.ScoreSet  `json:"emotions"`
	MentalHealthFlags *models.ScoreSet `json:"mental_health_flags,omitempty"`
	HighRisk          bool             `json:"high_risk"`
}

// ExtraCreditRequest claims one extra-credit point. Points defaults to 1
// when omitted.
type ExtraCreditRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	ClassKey  string `json:"class_key" validate:"required"`
	Points    *int   `json:"points,omitempty"`
}

// ExtraCreditResponse reports a successful claim.
type ExtraCreditResponse struct {
	StudentID         string `json:"student_id"`
	ClassKey          string `json:"class_key"`
	ClassName         string `json:"class_name"`
	ExtraCreditColumn string `json:"extra_credit_column"`
	PointsAwarded     int    `json:"points_awarded"`
	TotalPoints       int    `json:"total_points"`
	HasExtra          bool   `json:"has_extra"`
	Message           string `json:"message"`
}
