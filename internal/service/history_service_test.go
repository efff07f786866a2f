package service

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wpitts2299/AI-Club-Hackathon-Student-Health-Project/internal/models"
)

func TestHistoryServiceEvictsOldestFirst(t *testing.T) {
	history := NewHistoryService(3)
	for i := 0; i < 5; i++ {
		history.Append(models.HistoryEntry{ID: fmt.Sprintf("e%d", i)})
	}

	require.Equal(t, 3, history.Len())
	snapshot := history.Snapshot(false)
	require.Len(t, snapshot, 3)
	assert.Equal(t, "e4", snapshot[0].ID)
	assert.Equal(t, "e2", snapshot[2].ID)
}

func TestHistoryServiceFirstResponderSeesAlertsOnly(t *testing.T) {
	history := NewHistoryService(10)
	history.Record(models.SourceAPI, "1", "calm text", &models.AnalysisResult{})
	history.Record(models.SourceAPI, "2", "risky text", &models.AnalysisResult{Alert: &models.AlertRecord{ID: "a1", BoostReasons: []string{"r"}}})
	history.Record(models.SourceWebForm, "", "another", nil)

	all := history.Snapshot(false)
	require.Len(t, all, 3)
	assert.Equal(t, "N/A", all[0].StudentID)
	assert.Equal(t, models.SourceWebForm, all[0].Source)

	alerts := history.Snapshot(true)
	require.Len(t, alerts, 1)
	assert.Equal(t, "2", alerts[0].StudentID)
	assert.True(t, alerts[0].HighRisk)
	assert.NotEmpty(t, alerts[0].ID)
}

func TestHistoryServiceRecordCopiesResult(t *testing.T) {
	history := NewHistoryService(10)
	flags := models.NewScoreSet(map[string]float64{"depression": 80})
	result := &models.AnalysisResult{
		MentalHealth: models.NewScoreSet(map[string]float64{"depression": 80}),
		Flags:        &flags,
		Alert:        &models.AlertRecord{ID: "a1", BoostReasons: []string{"first"}},
	}
	history.Record(models.SourceAPI, "1", "text", result)

	result.MentalHealth.Set("depression", 1)
	result.Flags.Set("depression", 1)
	result.Alert.BoostReasons[0] = "changed"

	entry := history.Snapshot(false)[0]
	assert.Equal(t, 80.0, entry.MentalHealth.Value("depression"))
	assert.Equal(t, 80.0, entry.MentalHealthFlags.Value("depression"))
	assert.Equal(t, "first", entry.Alert.BoostReasons[0])
}

func TestHistoryServiceConcurrentAppend(t *testing.T) {
	history := NewHistoryService(50)
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			history.Record(models.SourceAPI, "1", "text", &models.AnalysisResult{})
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, history.Len())

	history.Reset()
	assert.Equal(t, 0, history.Len())
	assert.Empty(t, history.Snapshot(false))
}

func TestHistoryServiceDefaultLimit(t *testing.T) {
	assert.Equal(t, 50, NewHistoryService(0).Limit())
}
