package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreSetCaseInsensitive(t *testing.T) {
	var set ScoreSet
	set.Set("Suicidal", 12)

	assert.Equal(t, 12.0, set.Value("SUICIDAL"))
	assert.True(t, set.Has("suicidal"))
	assert.Equal(t, 0.0, set.Value("depression"))

	label := set.Set("suicidal", 30)
	assert.Equal(t, "Suicidal", label)
	assert.Equal(t, []string{"Suicidal"}, set.Labels())
	assert.Equal(t, 30.0, set.Value("Suicidal"))
}

func TestScoreSetCloneIsIndependent(t *testing.T) {
	set := NewScoreSet(map[string]float64{"joy": 10, "fear": 70})
	clone := set.Clone()
	clone.Set("fear", 1)

	assert.Equal(t, 70.0, set.Value("fear"))
	assert.Equal(t, 1.0, clone.Value("fear"))
}

func TestScoreSetJSON(t *testing.T) {
	set := NewScoreSet(map[string]float64{"Depression": 75})
	raw, err := json.Marshal(set)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Depression":75}`, string(raw))

	var decoded ScoreSet
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, 75.0, decoded.Value("depression"))
}

func TestScoreSetRanked(t *testing.T) {
	set := NewScoreSet(map[string]float64{"a": 1, "b": 3, "c": 2})
	ranked := set.Ranked()
	require.Len(t, ranked, 3)
	assert.Equal(t, "b", ranked[0].Label)
	assert.Equal(t, "a", ranked[2].Label)
}
