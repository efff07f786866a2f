package service

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wpitts2299/AI-Club-Hackathon-Student-Health-Project/internal/models"
)

const defaultHistoryLimit = 50

// HistoryService keeps the most recent analyses in memory, oldest evicted
// first.
type HistoryService struct {
	mu      sync.Mutex
	limit   int
	entries []models.HistoryEntry
	now     func() time.Time
}

// NewHistoryService returns an empty buffer holding at most limit entries.
func NewHistoryService(limit int) *HistoryService {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return &HistoryService{limit: limit, now: time.Now}
}

// Record flattens result into a history entry and appends it.
func (s *HistoryService) Record(source, studentID, text string, result *models.AnalysisResult) models.HistoryEntry {
	if studentID == "" {
		studentID = "N/A"
	}
	entry := models.HistoryEntry{
		ID:        uuid.NewString(),
		Timestamp: s.now().UTC(),
		Source:    source,
		StudentID: studentID,
		Text:      text,
	}
	if result != nil {
		entry.AcademicStress = result.AcademicStress.Clone()
		entry.MentalHealth = result.MentalHealth.Clone()
		entry.Emotions = result.Emotions.Clone()
		if result.Flags != nil {
			flags := result.Flags.Clone()
			entry.MentalHealthFlags = &flags
		}
		if result.Alert != nil {
			alert := *result.Alert
			alert.BoostReasons = append([]string(nil), result.Alert.BoostReasons...)
			entry.Alert = &alert
		}
		entry.HighRisk = result.HighRisk()
	}
	s.Append(entry)
	return entry
}

// Append adds entry, evicting the oldest when full.
func (s *HistoryService) Append(entry models.HistoryEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	if over := len(s.entries) - s.limit; over > 0 {
		s.entries = append([]models.HistoryEntry(nil), s.entries[over:]...)
	}
}

// Snapshot returns entries newest first. First responders only see entries
// that produced an alert.
func (s *HistoryService) Snapshot(firstResponder bool) []models.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.HistoryEntry, 0, len(s.entries))
	for i := len(s.entries) - 1; i >= 0; i-- {
		entry := s.entries[i]
		if firstResponder && entry.Alert == nil {
			continue
		}
		out = append(out, entry)
	}
	return out
}

// Len returns the number of buffered entries.
func (s *HistoryService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Limit returns the buffer capacity.
func (s *HistoryService) Limit() int {
	return s.limit
}

// Reset empties the buffer.
func (s *HistoryService) Reset() {
	s.mu.Lock()
	s.entries = nil
	s.mu.Unlock()
}
