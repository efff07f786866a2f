package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/wpitts2299/AI-Club-Hackathon-Student-Health-Project/internal/dto"
	"github.com/wpitts2299/AI-Club-Hackathon-Student-Health-Project/internal/models"
	appErrors "github.com/wpitts2299/AI-Club-Hackathon-Student-Health-Project/pkg/errors"
)

type studentLedger interface {
	Lookup(studentID string, includeClasses bool) (*models.StudentRecord, error)
	ClaimExtraCredit(studentID, classKey string, points int) (*models.ExtraCreditClaim, error)
	SetConsent(studentID string, granted bool) error
}

type riskScorer interface {
	CheckLength(text string) error
	Score(ctx context.Context, text string) (*models.AnalysisResult, error)
}

type historyRecorder interface {
	Record(source, studentID, text string, result *models.AnalysisResult) models.HistoryEntry
}

// AnalysisService is the student-facing entry point: it gates submissions
// on the roster, runs the risk engine and records the outcome.
type AnalysisService struct {
	roster    studentLedger
	scorer    riskScorer
	history   historyRecorder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAnalysisService constructs an AnalysisService.
func NewAnalysisService(roster studentLedger, scorer riskScorer, history historyRecorder, validate *validator.Validate, logger *zap.Logger) *AnalysisService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AnalysisService{roster: roster, scorer: scorer, history: history, validator: validate, logger: logger}
}

// ValidateStudent confirms the id is on the roster and returns the student's
// classes and ledger flags.
func (s *AnalysisService) ValidateStudent(req dto.ValidateStudentRequest) (*dto.ValidateStudentResponse, error) {
	req.StudentID = strings.TrimSpace(req.StudentID)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Student ID is required.")
	}
	student, err := s.roster.Lookup(req.StudentID, true)
	if err != nil {
		return nil, err
	}
	classes := student.Classes
	if classes == nil {
		classes = []models.ClassEntry{}
	}
	return &dto.ValidateStudentResponse{
		Valid:      true,
		StudentID:  student.StudentID,
		FirstName:  student.FirstName,
		LastName:   student.LastName,
		Name:       student.FullName(),
		Classes:    classes,
		HasExtra:   student.HasClaimedExtraCredit,
		HasConsent: student.Consent,
	}, nil
}

// Analyze scores a consented submission from an enrolled student. The
// student's consent flag is set as a side effect; failing to persist it does
// not block the analysis.
func (s *AnalysisService) Analyze(ctx context.Context, req dto.AnalyzeRequest) (*dto.AnalyzeResponse, error) {
	req.StudentID = strings.TrimSpace(req.StudentID)
	if req.StudentID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Student ID is required.")
	}
	if _, err := s.roster.Lookup(req.StudentID, false); err != nil {
		return nil, err
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, errEmptyText()
	}
	if !req.Consent {
		return nil, appErrors.Clone(appErrors.ErrValidation, "HIPAA consent must be acknowledged before submission.")
	}
	if err := s.scorer.CheckLength(text); err != nil {
		return nil, err
	}

	if err := s.roster.SetConsent(req.StudentID, true); err != nil {
		s.logger.Warn("failed to record student consent; continuing analysis",
			zap.String("student_id", req.StudentID), zap.Error(err))
	}

	result, err := s.scorer.Score(ctx, text)
	if err != nil {
		return nil, err
	}

	source := req.Source
	if source == "" {
		source = models.SourceAPI
	}
	entry := s.history.Record(source, req.StudentID, text, result)
	if entry.HighRisk {
		s.logger.Warn("high-risk submission recorded",
			zap.String("history_id", entry.ID),
			zap.String("alert_id", result.Alert.ID),
		)
	}

	return &dto.AnalyzeResponse{
		StudentID:         req.StudentID,
		WordCount:         WordCount(text),
		AcademicStress:    result.AcademicStress,
		MentalHealth:      result.MentalHealth,
		Emotions:          result.Emotions,
		MentalHealthFlags: result.Flags,
		HighRisk:          result.HighRisk(),
	}, nil
}

// ClaimExtraCredit awards the one-time extra-credit point.
func (s *AnalysisService) ClaimExtraCredit(req dto.ExtraCreditRequest) (*dto.ExtraCreditResponse, error) {
	points := ExtraCreditPoints
	if req.Points != nil {
		points = *req.Points
	}
	claim, err := s.roster.ClaimExtraCredit(req.StudentID, req.ClassKey, points)
	if err != nil {
		return nil, err
	}
	return &dto.ExtraCreditResponse{
		StudentID:         claim.StudentID,
		ClassKey:          claim.ClassKey,
		ClassName:         claim.ClassName,
		ExtraCreditColumn: claim.ExtraCreditColumn,
		PointsAwarded:     claim.PointsAwarded,
		TotalPoints:       claim.TotalPoints,
		HasExtra:          true,
		Message:           fmt.Sprintf("Added +%d extra credit to %s. New total: %d.", claim.PointsAwarded, claim.ClassName, claim.TotalPoints),
	}, nil
}
