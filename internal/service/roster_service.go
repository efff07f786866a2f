package service

import (
	"errors"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/wpitts2299/AI-Club-Hackathon-Student-Health-Project/internal/models"
	"github.com/wpitts2299/AI-Club-Hackathon-Student-Health-Project/internal/repository"
	appErrors "github.com/wpitts2299/AI-Club-Hackathon-Student-Health-Project/pkg/errors"
)

// ExtraCreditPoints is the only award size a claim may request.
const ExtraCreditPoints = 1

type rosterStore interface {
	WithLedgerLock(fn func() error) error
	Load() (*repository.RosterTable, error)
	Save(table *repository.RosterTable) error
}

// RosterService implements the consent and extra-credit ledger. Every
// operation re-reads the roster; mutations run inside the ledger lock.
type RosterService struct {
	repo    rosterStore
	metrics *MetricsService
	logger  *zap.Logger
}

// NewRosterService constructs a RosterService.
func NewRosterService(repo rosterStore, metrics *MetricsService, logger *zap.Logger) *RosterService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RosterService{repo: repo, metrics: metrics, logger: logger}
}

// Lookup returns the student with the given id.
func (s *RosterService) Lookup(studentID string, includeClasses bool) (*models.StudentRecord, error) {
	id := strings.TrimSpace(studentID)
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Student ID is required.")
	}
	table, err := s.load()
	if err != nil {
		return nil, err
	}
	row, ok := table.FindStudent(id)
	if !ok {
		return nil, studentNotFound()
	}
	record := studentFromRow(table, row, includeClasses)
	return &record, nil
}

// ClaimExtraCredit awards a single point to one of the student's classes. A
// student may claim at most once across all classes.
func (s *RosterService) ClaimExtraCredit(studentID, classKey string, points int) (*models.ExtraCreditClaim, error) {
	claim, err := s.claim(studentID, classKey, points)
	switch {
	case err == nil:
		s.metrics.RecordExtraCreditClaim(ClaimOutcomeAwarded)
	case errors.Is(err, appErrors.ErrAlreadyClaimed):
		s.metrics.RecordExtraCreditClaim(ClaimOutcomeAlreadyClaimed)
	case errors.Is(err, appErrors.ErrInternal), errors.Is(err, appErrors.ErrConflict):
		s.metrics.RecordExtraCreditClaim(ClaimOutcomeError)
	default:
		s.metrics.RecordExtraCreditClaim(ClaimOutcomeRejected)
	}
	return claim, err
}

func (s *RosterService) claim(studentID, classKey string, points int) (*models.ExtraCreditClaim, error) {
	id := strings.TrimSpace(studentID)
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Student ID is required.")
	}
	key := strings.ToLower(strings.TrimSpace(classKey))
	if key == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Class selection is required.")
	}
	creditColumn, ok := repository.ExtraCreditColumnFor(key)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Invalid class selection.")
	}
	if points != ExtraCreditPoints {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Points per request must be exactly 1.")
	}

	var claim *models.ExtraCreditClaim
	err := s.repo.WithLedgerLock(func() error {
		table, err := s.load()
		if err != nil {
			return err
		}
		row, ok := table.FindStudent(id)
		if !ok {
			return studentNotFound()
		}

		total := totalExtraCredit(table, row)
		flagged := repository.ParseBoolFlag(table.Get(row, repository.ColumnHasExtra))
		if flagged != (total >= 1) {
			s.logger.Warn("extra credit ledger disagreement",
				zap.String("student_id", id),
				zap.Int("total_points", total),
				zap.Bool("has_extra", flagged),
			)
		}
		if total >= 1 || flagged {
			return appErrors.Clone(appErrors.ErrAlreadyClaimed, "Extra credit already claimed for this student.")
		}

		name, ok := className(table, row, key)
		if !ok {
			return appErrors.Clone(appErrors.ErrNotFound, "Selected class was not found for this student.")
		}

		newTotal := repository.ParseExtraCredit(table.Get(row, creditColumn)) + points
		table.Set(row, creditColumn, strconv.Itoa(newTotal))
		table.Set(row, repository.ColumnHasExtra, repository.FormatBoolFlag(true))
		if err := s.repo.Save(table); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save student roster")
		}

		claim = &models.ExtraCreditClaim{
			StudentID:         id,
			ClassKey:          key,
			ClassName:         name,
			ExtraCreditColumn: creditColumn,
			PointsAwarded:     points,
			TotalPoints:       newTotal,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("extra credit awarded", zap.String("student_id", id), zap.String("class_key", key))
	return claim, nil
}

// SetConsent records the student's consent flag. Setting the current value
// still rewrites the table.
func (s *RosterService) SetConsent(studentID string, granted bool) error {
	id := strings.TrimSpace(studentID)
	if id == "" {
		return appErrors.Clone(appErrors.ErrValidation, "Student ID is required.")
	}
	return s.repo.WithLedgerLock(func() error {
		table, err := s.load()
		if err != nil {
			return err
		}
		row, ok := table.FindStudent(id)
		if !ok {
			return studentNotFound()
		}
		table.Set(row, repository.ColumnConsent, repository.FormatBoolFlag(granted))
		if err := s.repo.Save(table); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save student roster")
		}
		return nil
	})
}

func (s *RosterService) load() (*repository.RosterTable, error) {
	table, err := s.repo.Load()
	if err != nil {
		var (
			missing    *repository.MissingColumnsError
			duplicates *repository.DuplicateColumnsError
		)
		switch {
		case errors.As(err, &missing):
			return nil, appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, missing.Error())
		case errors.As(err, &duplicates):
			return nil, appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, duplicates.Error())
		case errors.Is(err, repository.ErrRosterMissing):
			s.logger.Error("student roster missing", zap.Error(err))
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "student roster unavailable")
		default:
			s.logger.Error("load student roster", zap.Error(err))
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read student roster")
		}
	}
	if table.Len() == 0 {
		return nil, appErrors.Clone(appErrors.ErrInternal, "Student roster is empty. Add at least one student row.")
	}
	return table, nil
}

func studentNotFound() error {
	return appErrors.Clone(appErrors.ErrNotFound, "Student ID not recognized. Please enter a valid ID.")
}

func studentFromRow(table *repository.RosterTable, row int, includeClasses bool) models.StudentRecord {
	record := models.StudentRecord{
		StudentID:             table.Get(row, repository.ColumnStudentID),
		FirstName:             table.Get(row, repository.ColumnFirstName),
		LastName:              table.Get(row, repository.ColumnLastName),
		Consent:               repository.ParseBoolFlag(table.Get(row, repository.ColumnConsent)),
		HasClaimedExtraCredit: repository.ParseBoolFlag(table.Get(row, repository.ColumnHasExtra)),
	}
	if includeClasses {
		record.Classes = classEntries(table, row)
	}
	return record
}

// classEntries lists the student's class slots in roster order. Empty and
// placeholder names are skipped; the extra swipe slot has a default name.
func classEntries(table *repository.RosterTable, row int) []models.ClassEntry {
	entries := make([]models.ClassEntry, 0, len(repository.RosterClassColumns))
	for i, key := range repository.RosterClassColumns {
		name, ok := className(table, row, key)
		if !ok {
			continue
		}
		creditColumn := repository.RosterExtraCreditColumns[i]
		entries = append(entries, models.ClassEntry{
			Key:               key,
			Name:              name,
			ExtraCreditColumn: creditColumn,
			Points:            repository.ParseExtraCredit(table.Get(row, creditColumn)),
		})
	}
	return entries
}

func className(table *repository.RosterTable, row int, key string) (string, bool) {
	name := table.Get(row, key)
	if key == repository.ExtraSwipeColumn && name == "" {
		name = repository.ExtraSwipeDefaultName
	}
	switch strings.ToLower(name) {
	case "", "nan", "none":
		return "", false
	}
	return name, true
}

func totalExtraCredit(table *repository.RosterTable, row int) int {
	total := 0
	for _, col := range repository.RosterExtraCreditColumns {
		total += repository.ParseExtraCredit(table.Get(row, col))
	}
	return total
}
