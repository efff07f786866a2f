// Package classifier adapts the three text classification models the risk
// engine consumes. Implementations are stateless per call.
package classifier

import (
	"context"
	"math"

	"github.com/wpitts2299/AI-Club-Hackathon-Student-Health-Project/internal/models"
)

// Model identifies one of the independent classifiers.
type Model string

const (
	ModelAcademicStress Model = "academic_stress"
	ModelMentalHealth   Model = "mental_health"
	ModelEmotion        Model = "emotion"
)

// Classifier returns label percentages in [0,100] for text.
type Classifier interface {
	Classify(ctx context.Context, model Model, text string) (models.ScoreSet, error)
}

// Mode describes how mental-health probabilities relate to each other.
type Mode struct {
	// MultiLabel yields independent per-label probabilities; otherwise the
	// scores are a softmax that sums to 100.
	MultiLabel bool
}

// toPercentages converts raw logits to percentages using sigmoid for
// multi-label output and softmax otherwise.
func toPercentages(logits []float64, multiLabel bool) []float64 {
	out := make([]float64, len(logits))
	if len(logits) == 0 {
		return out
	}
	if multiLabel {
		for i, v := range logits {
			out[i] = 100 / (1 + math.Exp(-v))
		}
		return out
	}
	maxLogit := logits[0]
	for _, v := range logits[1:] {
		if v > maxLogit {
			maxLogit = v
		}
	}
	var sum float64
	for i, v := range logits {
		out[i] = math.Exp(v - maxLogit)
		sum += out[i]
	}
	for i := range out {
		out[i] = out[i] / sum * 100
	}
	return out
}

func clampPercent(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}
