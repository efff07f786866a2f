package classifier

import (
	"context"
	"math"
	"strings"

	"github.com/wpitts2299/AI-Club-Hackathon-Student-Health-Project/internal/models"
)

// StaticClassifier is a deterministic lexicon scorer used when no inference
// server is configured. It mimics the shape of the real models' output.
type StaticClassifier struct {
	mode Mode
}

// NewStaticClassifier builds the lexicon classifier.
func NewStaticClassifier(mode Mode) *StaticClassifier {
	return &StaticClassifier{mode: mode}
}

type lexicon struct {
	label string
	terms []string
}

var (
	academicStressTerms = []string{"exam", "deadline", "grade", "gpa", "homework", "assignment", "fail", "behind", "overwhelmed", "pressure"}

	mentalHealthLexicon = []lexicon{
		{label: "Depression", terms: []string{"hopeless", "empty", "worthless", "numb", "no energy", "can't get out of bed", "depressed"}},
		{label: "Anxiety", terms: []string{"anxious", "panic", "worried", "nervous", "racing thoughts", "on edge"}},
		{label: "Stress", terms: []string{"stressed", "overwhelmed", "pressure", "burned out", "exhausted", "too much"}},
		{label: "Suicidal", terms: []string{"suicide", "kill myself", "end my life", "want to die", "better off without me", "no reason to live"}},
		{label: "Loneliness", terms: []string{"alone", "lonely", "isolated", "no friends", "nobody"}},
		{label: "Normal", terms: []string{"fine", "good", "happy", "okay", "great"}},
	}

	emotionLexicon = []lexicon{
		{label: "anger", terms: []string{"angry", "furious", "mad", "annoyed"}},
		{label: "disgust", terms: []string{"disgusted", "gross", "sick of"}},
		{label: "fear", terms: []string{"afraid", "scared", "terrified", "fear"}},
		{label: "joy", terms: []string{"happy", "excited", "glad", "great"}},
		{label: "neutral", terms: []string{}},
		{label: "sadness", terms: []string{"sad", "cry", "crying", "hopeless", "miserable", "down"}},
		{label: "surprise", terms: []string{"surprised", "shocked", "unexpected"}},
	}
)

// Classify scores text against the lexicon for model.
func (s *StaticClassifier) Classify(_ context.Context, model Model, text string) (models.ScoreSet, error) {
	lower := strings.ToLower(text)
	switch model {
	case ModelAcademicStress:
		return academicStressScores(lower), nil
	case ModelMentalHealth:
		return lexiconScores(lower, mentalHealthLexicon, s.mode.MultiLabel), nil
	default:
		return lexiconScores(lower, emotionLexicon, false), nil
	}
}

func countHits(text string, terms []string) int {
	hits := 0
	for _, term := range terms {
		hits += strings.Count(text, term)
	}
	return hits
}

// academicStressScores spreads probability over levels 0-5 around the hit count.
func academicStressScores(text string) models.ScoreSet {
	level := float64(countHits(text, academicStressTerms))
	if level > 5 {
		level = 5
	}
	logits := make([]float64, 6)
	for i := range logits {
		d := float64(i) - level
		logits[i] = -d * d
	}
	percents := toPercentages(logits, false)
	var set models.ScoreSet
	for i, p := range percents {
		set.Set(string(rune('0'+i)), p)
	}
	return set
}

func lexiconScores(text string, lex []lexicon, multiLabel bool) models.ScoreSet {
	logits := make([]float64, len(lex))
	for i, entry := range lex {
		hits := countHits(text, entry.terms)
		logits[i] = -3 + 1.5*math.Min(float64(hits), 4)
	}
	percents := toPercentages(logits, multiLabel)
	var set models.ScoreSet
	for i, entry := range lex {
		set.Set(entry.label, percents[i])
	}
	return set
}
