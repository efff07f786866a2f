package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wpitts2299/AI-Club-Hackathon-Student-Health-Project/internal/models"
)

type fakeLinker struct {
	err error
}

func (f fakeLinker) DownloadLink(record *models.AlertRecord) (*AlertDownload, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &AlertDownload{URL: "/download/" + record.ID, ExpiresAt: time.Unix(1700000000, 0).UTC()}, nil
}

func TestDashboardServiceTherapistView(t *testing.T) {
	svc := NewDashboardService(seededHistory(), fakeLinker{}, nil)

	board := svc.Build(&models.TherapistCredential{Username: "drsmith", DisplayName: "Dr. Smith"})
	assert.Equal(t, "Therapist Review Board", board.Heading)
	assert.Equal(t, "drsmith", board.Therapist.Username)
	require.Len(t, board.Entries, 2)

	assert.Equal(t, "/download/alert-7", board.Entries[0].AlertDownloadURL)
	require.NotNil(t, board.Entries[0].AlertLinkExpires)
	assert.Empty(t, board.Entries[1].AlertDownloadURL)
	assert.Nil(t, board.Entries[1].AlertLinkExpires)
}

func TestDashboardServiceFirstResponderView(t *testing.T) {
	svc := NewDashboardService(seededHistory(), nil, nil)

	board := svc.Build(&models.TherapistCredential{Username: "responder", FirstResponder: true})
	assert.Equal(t, "First Responder Review Board", board.Heading)
	assert.True(t, board.Therapist.FirstResponder)
	require.Len(t, board.Entries, 1)
	assert.True(t, board.Entries[0].HighRisk)
	assert.Empty(t, board.Entries[0].AlertDownloadURL)
}

func TestDashboardServiceLinkFailureKeepsEntry(t *testing.T) {
	svc := NewDashboardService(seededHistory(), fakeLinker{err: errors.New("no secret")}, nil)

	board := svc.Build(nil)
	require.Len(t, board.Entries, 2)
	assert.Empty(t, board.Entries[0].AlertDownloadURL)
	assert.Equal(t, "alert-7", board.Entries[0].Alert.ID)
}
