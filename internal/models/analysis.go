package models

import "time"

// Label names the engine looks up case-insensitively.
const (
	LabelSuicidal   = "suicidal"
	LabelDepression = "depression"
	LabelStress     = "stress"
	LabelSadness    = "sadness"
	LabelFear       = "fear"
)

// Source channels recorded with each history entry.
const (
	SourceAPI     = "api"
	SourceWebForm = "web-form"
	SourceCLI     = "cli"
)

// AnalysisResult is the immutable output of one scoring run.
type AnalysisResult struct {
	AcademicStress ScoreSet     `json:"academic_stress"`
	MentalHealth   ScoreSet     `json:"mental_health"`
	Emotions       ScoreSet     `json:"emotions"`
	Flags          *ScoreSet    `json:"mental_health_flags,omitempty"`
	Alert          *AlertRecord `json:"alert_metadata,omitempty"`
}

// HighRisk reports whether the run produced an alert.
func (r *AnalysisResult) HighRisk() bool {
	return r != nil && r.Alert != nil
}

// SuicidalFlagged reports whether the suicidal label made it into the flag set.
func (r *AnalysisResult) SuicidalFlagged() bool {
	return r != nil && r.Flags != nil && r.Flags.Has(LabelSuicidal)
}

// AlertRecord describes a sealed high-risk submission.
type AlertRecord struct {
	ID                 string    `json:"id"`
	CiphertextPath     string    `json:"ciphertext_path"`
	KeyPath            string    `json:"-"`
	CreatedAt          time.Time `json:"created_at"`
	SuicidalRaw        float64   `json:"suicidal_raw"`
	SuicidalBoosted    float64   `json:"suicidal_boosted"`
	SuicidalSegmentMax *float64  `json:"suicidal_segment_max,omitempty"`
	BoostReasons       []string  `json:"suicidal_boost_reasons,omitempty"`
}

// HistoryEntry is one analysis kept for the therapist dashboard.
type HistoryEntry struct {
	ID                string       `json:"id"`
	Timestamp         time.Time    `json:"timestamp"`
	Source            string       `json:"source"`
	StudentID         string       `json:"student_id"`
	Text              string       `json:"text"`
	AcademicStress    ScoreSet     `json:"academic_stress"`
	MentalHealth      ScoreSet     `json:"mental_health"`
	Emotions          ScoreSet     `json:"emotions"`
	MentalHealthFlags *ScoreSet    `json:"mental_health_flags,omitempty"`
	Alert             *AlertRecord `json:"alert_metadata,omitempty"`
	HighRisk          bool         `json:"high_risk"`
}
