package models

import (
	"encoding/json"
	"sort"
	"strings"
)

// ScoreSet maps classifier labels to percentages. Lookups are
// case-insensitive; the first casing seen for a label is kept for display.
type ScoreSet struct {
	labels []string
	values map[string]float64
	names  map[string]string
}

// NewScoreSet builds a ScoreSet from label/percentage pairs.
func NewScoreSet(scores map[string]float64) ScoreSet {
	set := ScoreSet{}
	keys := make([]string, 0, len(scores))
	for label := range scores {
		keys = append(keys, label)
	}
	sort.Strings(keys)
	for _, label := range keys {
		set.Set(label, scores[label])
	}
	return set
}

func normalizeLabel(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}

// Set assigns a score, preserving an existing label's casing.
func (s *ScoreSet) Set(label string, value float64) string {
	if s.values == nil {
		s.values = make(map[string]float64)
		s.names = make(map[string]string)
	}
	key := normalizeLabel(label)
	if existing, ok := s.names[key]; ok {
		s.values[key] = value
		return existing
	}
	s.labels = append(s.labels, key)
	s.names[key] = label
	s.values[key] = value
	return label
}

// Lookup returns the score for label and whether the label exists.
func (s ScoreSet) Lookup(label string) (float64, bool) {
	value, ok := s.values[normalizeLabel(label)]
	return value, ok
}

// Value returns the score for label, 0 when absent.
func (s ScoreSet) Value(label string) float64 {
	value, _ := s.Lookup(label)
	return value
}

// Has reports whether label is present.
func (s ScoreSet) Has(label string) bool {
	_, ok := s.Lookup(label)
	return ok
}

// DisplayLabel returns the stored casing for label, or label itself when absent.
func (s ScoreSet) DisplayLabel(label string) string {
	if name, ok := s.names[normalizeLabel(label)]; ok {
		return name
	}
	return label
}

// Labels returns display labels in insertion order.
func (s ScoreSet) Labels() []string {
	out := make([]string, 0, len(s.labels))
	for _, key := range s.labels {
		out = append(out, s.names[key])
	}
	return out
}

// Len returns the number of labels.
func (s ScoreSet) Len() int {
	return len(s.labels)
}

// Clone returns an independent copy.
func (s ScoreSet) Clone() ScoreSet {
	out := ScoreSet{}
	for _, key := range s.labels {
		out.Set(s.names[key], s.values[key])
	}
	return out
}

// Map returns display label to score.
func (s ScoreSet) Map() map[string]float64 {
	out := make(map[string]float64, len(s.labels))
	for _, key := range s.labels {
		out[s.names[key]] = s.values[key]
	}
	return out
}

// Ranked returns entries sorted by descending score.
func (s ScoreSet) Ranked() []LabelScore {
	out := make([]LabelScore, 0, len(s.labels))
	for _, key := range s.labels {
		out = append(out, LabelScore{Label: s.names[key], Score: s.values[key]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// MarshalJSON renders the set as a label to score object.
func (s ScoreSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Map())
}

// UnmarshalJSON reads a label to score object.
func (s *ScoreSet) UnmarshalJSON(data []byte) error {
	var raw map[string]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = NewScoreSet(raw)
	return nil
}

// LabelScore pairs a label with its percentage.
type LabelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}
