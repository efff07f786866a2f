package service

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/wpitts2299/AI-Club-Hackathon-Student-Health-Project/internal/models"
	appErrors "github.com/wpitts2299/AI-Club-Hackathon-Student-Health-Project/pkg/errors"
	"github.com/wpitts2299/AI-Club-Hackathon-Student-Health-Project/pkg/export"
)

// Export formats.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

var historyExportHeaders = []string{
	"timestamp",
	"source",
	"student_id",
	"high_risk",
	"academic_stress",
	"top_mental_health",
	"top_emotion",
	"mental_health_flags",
	"suicidal_raw",
	"suicidal_boosted",
	"suicidal_segment_max",
	"boost_reasons",
	"alert_id",
}

type historySnapshotter interface {
	Snapshot(firstResponder bool) []models.HistoryEntry
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// HistoryExport is a rendered history download.
type HistoryExport struct {
	Filename    string
	ContentType string
	Data        []byte
	Rows        int
}

// ExportService renders the role-scoped history for download. Raw
// submission text is never exported.
type ExportService struct {
	history historySnapshotter
	csv     csvRenderer
	pdf     pdfRenderer
	logger  *zap.Logger
	now     func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers fall back to
// the pkg/export implementations.
func NewExportService(history historySnapshotter, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{history: history, csv: csv, pdf: pdf, logger: logger, now: time.Now}
}

// ExportHistory renders the visible history in format.
func (s *ExportService) ExportHistory(format string, firstResponder bool) (*HistoryExport, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ExportFormatCSV
	}

	entries := s.history.Snapshot(firstResponder)
	dataset := historyDataset(entries, firstResponder)

	var (
		payload     []byte
		contentType string
		err         error
	)
	switch format {
	case ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
		contentType = "text/csv"
	case ExportFormatPDF:
		payload, err = s.pdf.Render(dataset)
		contentType = "application/pdf"
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	if err != nil {
		s.logger.Error("render history export", zap.String("format", format), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	return &HistoryExport{
		Filename:    fmt.Sprintf("analysis_history_%s.%s", s.now().UTC().Format("20060102T150405Z"), format),
		ContentType: contentType,
		Data:        payload,
		Rows:        len(entries),
	}, nil
}

func historyDataset(entries []models.HistoryEntry, firstResponder bool) export.Dataset {
	title := "Therapist Review Board - analysis history"
	if firstResponder {
		title = "First Responder Review Board - high-risk submissions"
	}
	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		row := []string{
			entry.Timestamp.Format(time.RFC3339),
			entry.Source,
			entry.StudentID,
			fmt.Sprintf("%t", entry.HighRisk),
			formatAcademicStress(entry.AcademicStress),
			formatTop(entry.MentalHealth),
			formatTop(entry.Emotions),
			formatFlags(entry.MentalHealthFlags),
			"", "", "", "", "",
		}
		if alert := entry.Alert; alert != nil {
			row[8] = formatPercent(alert.SuicidalRaw)
			row[9] = formatPercent(alert.SuicidalBoosted)
			if alert.SuicidalSegmentMax != nil {
				row[10] = formatPercent(*alert.SuicidalSegmentMax)
			}
			row[11] = strings.Join(alert.BoostReasons, "; ")
			row[12] = alert.ID
		}
		rows = append(rows, row)
	}
	return export.Dataset{
		Title:   title,
		Notes:   []string{"Scores are percentages. Submission text is withheld; sealed alerts are available from the dashboard."},
		Headers: historyExportHeaders,
		Rows:    rows,
	}
}

// summarizeAcademicStress collapses the six stress levels into "no stress"
// (level 0) and "stress" (levels 1-5).
func summarizeAcademicStress(scores models.ScoreSet) (none, stressed float64) {
	for _, label := range scores.Labels() {
		switch strings.ToLower(strings.TrimSpace(label)) {
		case "0", "none", "no stress":
			none += scores.Value(label)
		default:
			stressed += scores.Value(label)
		}
	}
	return none, stressed
}

func formatAcademicStress(scores models.ScoreSet) string {
	if scores.Len() == 0 {
		return ""
	}
	none, stressed := summarizeAcademicStress(scores)
	if stressed >= none {
		return "Stress (1-5) " + formatPercent(stressed)
	}
	return "None " + formatPercent(none)
}

func formatTop(scores models.ScoreSet) string {
	ranked := scores.Ranked()
	if len(ranked) == 0 {
		return ""
	}
	return fmt.Sprintf("%s %s", ranked[0].Label, formatPercent(ranked[0].Score))
}

func formatFlags(flags *models.ScoreSet) string {
	if flags == nil || flags.Len() == 0 {
		return ""
	}
	parts := make([]string, 0, flags.Len())
	for _, item := range flags.Ranked() {
		parts = append(parts, fmt.Sprintf("%s %s", item.Label, formatPercent(item.Score)))
	}
	return strings.Join(parts, "; ")
}

func formatPercent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}
