package service

import (
	"go.uber.org/zap"

	"github.com/wpitts2299/AI-Club-Hackathon-Student-Health-Project/internal/dto"
	"github.com/wpitts2299/AI-Club-Hackathon-Student-Health-Project/internal/models"
)

type alertLinker interface {
	DownloadLink(record *models.AlertRecord) (*AlertDownload, error)
}

// DashboardService assembles the therapist review board.
type DashboardService struct {
	history historySnapshotter
	alerts  alertLinker
	logger  *zap.Logger
}

// NewDashboardService constructs a DashboardService. alerts may be nil.
func NewDashboardService(history historySnapshotter, alerts alertLinker, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{history: history, alerts: alerts, logger: logger}
}

// Build returns the entries visible to cred, newest first.
func (s *DashboardService) Build(cred *models.TherapistCredential) *dto.DashboardResponse {
	firstResponder := cred != nil && cred.FirstResponder
	heading := "Therapist Review Board"
	if firstResponder {
		heading = "First Responder Review Board"
	}

	entries := s.history.Snapshot(firstResponder)
	out := make([]dto.DashboardEntry, 0, len(entries))
	for _, entry := range entries {
		item := dto.DashboardEntry{HistoryEntry: entry}
		if entry.Alert != nil && s.alerts != nil {
			link, err := s.alerts.DownloadLink(entry.Alert)
			if err != nil {
				s.logger.Warn("sign alert download link", zap.String("alert_id", entry.Alert.ID), zap.Error(err))
			} else if link != nil {
				expires := link.ExpiresAt
				item.AlertDownloadURL = link.URL
				item.AlertLinkExpires = &expires
			}
		}
		out = append(out, item)
	}

	return &dto.DashboardResponse{
		Heading:   heading,
		Therapist: dto.NewTherapistProfile(cred),
		Entries:   out,
	}
}
