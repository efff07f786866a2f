package service

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/wpitts2299/AI-Club-Hackathon-Student-Health-Project/internal/classifier"
	"github.com/wpitts2299/AI-Club-Hackathon-Student-Health-Project/internal/models"
	"github.com/wpitts2299/AI-Club-Hackathon-Student-Health-Project/pkg/config"
	appErrors "github.com/wpitts2299/AI-Club-Hackathon-Student-Health-Project/pkg/errors"
)

// Explicit suicidal phrases. A hit feeds the distress boost and the forced
// flag fallback.
var suicidalKeywords = []string{
	"suicide",
	"suicidal",
	"kill myself",
	"end my life",
	"want to die",
	"wish i was dead",
	"wish i were dead",
	"take my life",
	"never wake up",
}

// Indirect phrasings that only count toward the distress boost.
var suicidalSemanticPatterns = []string{
	"don't trust myself at night",
	"don't trust myself overnight",
	"sleep and not wake",
	"never waking up",
	"hospitalized so i can rest",
	"get hospitalized so i can rest",
	"be gone and not come back",
	"stepping into traffic",
	"walk into traffic",
	"walk in front of a car",
	"avoid crossing streets",
	"intrusive picture of",
	"don't trust myself near cars",
	"don't trust myself near bridges",
}

var segmentDelimiters = regexp.MustCompile(`[.;!?\n]+`)

const (
	boostCap               = 60.0
	defaultSegmentMinChars = 20
)

// boostSignals are the inputs every boost rule sees.
type boostSignals struct {
	raw         float64
	depression  float64
	stress      float64
	sadness     float64
	fear        float64
	keywordHit  bool
	patternHits []string
}

func (s boostSignals) distressed() bool {
	return s.depression >= 60 || s.stress >= 70 || s.sadness >= 60 || s.fear >= 70
}

// boostRule proposes a candidate suicidal score when its predicate holds.
type boostRule struct {
	reason    string
	applies   func(boostSignals) bool
	candidate func(boostSignals) float64
}

var defaultBoostRules = []boostRule{
	{
		reason: "Semantic suicidality cues with distress (+10 boost).",
		applies: func(s boostSignals) bool {
			return (s.keywordHit || len(s.patternHits) > 0) && s.distressed()
		},
		candidate: func(s boostSignals) float64 { return s.raw + 10 },
	},
	{
		reason:    "Depression and sadness both high (+15 boost).",
		applies:   func(s boostSignals) bool { return s.depression >= 70 && s.sadness >= 70 },
		candidate: func(s boostSignals) float64 { return s.raw + 15 },
	},
	{
		reason:    "Stress high and suicidal score above 5% (min clamp to 40).",
		applies:   func(s boostSignals) bool { return s.stress >= 80 && s.raw > 5 },
		candidate: func(boostSignals) float64 { return 40 },
	},
}

// applyBoostRules evaluates every rule and returns max(raw, min(cap, best)).
func applyBoostRules(rules []boostRule, sig boostSignals) (float64, []string) {
	best := sig.raw
	var reasons []string
	for _, rule := range rules {
		if !rule.applies(sig) {
			continue
		}
		if v := rule.candidate(sig); v > best {
			best = v
		}
		reasons = append(reasons, rule.reason)
	}
	return math.Max(sig.raw, math.Min(boostCap, best)), reasons
}

func matchPhrases(lowerText string, phrases []string) []string {
	var hits []string
	for _, phrase := range phrases {
		if strings.Contains(lowerText, phrase) {
			hits = append(hits, phrase)
		}
	}
	return hits
}

// segmentText splits text on sentence delimiters, dropping short segments.
func segmentText(text string, minChars int) []string {
	var segments []string
	for _, part := range segmentDelimiters.Split(text, -1) {
		part = strings.TrimSpace(part)
		if utf8.RuneCountInString(part) >= minChars {
			segments = append(segments, part)
		}
	}
	return segments
}

// WordCount counts whitespace separated words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

type alertSealer interface {
	Seal(text string) (*models.AlertRecord, error)
}

// ScoringConfig tunes the risk engine.
type ScoringConfig struct {
	MinResponseWords          int
	MultiLabel                bool
	ActiveThreshold           float64
	SuicidalFallbackThreshold float64
	SegmentMinChars           int
}

// ScoringService turns a submission into an AnalysisResult.
type ScoringService struct {
	classifier classifier.Classifier
	sealer     alertSealer
	metrics    *MetricsService
	logger     *zap.Logger
	cfg        ScoringConfig
	rules      []boostRule
}

// NewScoringService constructs the engine. sealer may be nil, in which case
// flagged results carry no alert.
func NewScoringService(c classifier.Classifier, sealer alertSealer, metrics *MetricsService, logger *zap.Logger, cfg ScoringConfig) *ScoringService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SegmentMinChars <= 0 {
		cfg.SegmentMinChars = defaultSegmentMinChars
	}
	cfg.ActiveThreshold = config.ClampPercent(cfg.ActiveThreshold)
	cfg.SuicidalFallbackThreshold = config.ClampPercent(cfg.SuicidalFallbackThreshold)
	return &ScoringService{
		classifier: c,
		sealer:     sealer,
		metrics:    metrics,
		logger:     logger,
		cfg:        cfg,
		rules:      defaultBoostRules,
	}
}

// CheckLength fails with a validation error when text is below the minimum
// word count.
func (s *ScoringService) CheckLength(text string) error {
	if words := WordCount(text); words < s.cfg.MinResponseWords {
		return appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("Text must be at least %d words (received %d).", s.cfg.MinResponseWords, words))
	}
	return nil
}

func errEmptyText() error {
	return appErrors.Clone(appErrors.ErrValidation, "Text must not be empty.")
}

// Score classifies text, boosts the suicidal signal, derives flags and seals
// the text when suicidal risk is flagged.
func (s *ScoringService) Score(ctx context.Context, text string) (*models.AnalysisResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errEmptyText()
	}
	if err := s.CheckLength(text); err != nil {
		return nil, err
	}

	stress, err := s.classify(ctx, classifier.ModelAcademicStress, text)
	if err != nil {
		return nil, err
	}
	mental, err := s.classify(ctx, classifier.ModelMentalHealth, text)
	if err != nil {
		return nil, err
	}
	emotions, err := s.classify(ctx, classifier.ModelEmotion, text)
	if err != nil {
		return nil, err
	}
	mental = mental.Clone()

	lowerText := strings.ToLower(text)
	sig := boostSignals{
		depression:  mental.Value(models.LabelDepression),
		stress:      mental.Value(models.LabelStress),
		sadness:     emotions.Value(models.LabelSadness),
		fear:        emotions.Value(models.LabelFear),
		keywordHit:  len(matchPhrases(lowerText, suicidalKeywords)) > 0,
		patternHits: matchPhrases(lowerText, suicidalSemanticPatterns),
	}

	var (
		segmentMax *float64
		boosted    float64
		reasons    []string
	)
	if mental.Has(models.LabelSuicidal) {
		segmentMax, err = s.segmentMax(ctx, text)
		if err != nil {
			return nil, err
		}
		if segmentMax != nil && *segmentMax > mental.Value(models.LabelSuicidal) {
			mental.Set(models.LabelSuicidal, *segmentMax)
		}
		sig.raw = mental.Value(models.LabelSuicidal)
		boosted, reasons = applyBoostRules(s.rules, sig)
		mental.Set(models.LabelSuicidal, boosted)
	}

	result := &models.AnalysisResult{
		AcademicStress: stress,
		MentalHealth:   mental,
		Emotions:       emotions,
	}

	if s.cfg.MultiLabel {
		flags := s.flags(mental, sig, boosted)
		result.Flags = &flags
		if flags.Has(models.LabelSuicidal) {
			result.Alert = s.seal(text, sig.raw, boosted, segmentMax, reasons)
		}
	}

	s.metrics.RecordAnalysis(s.cfg.MultiLabel, result.SuicidalFlagged())
	return result, nil
}

// flags returns every mental-health label at or above the active threshold,
// forcing suicidal in when depression clears the fallback and an explicit
// keyword is present.
func (s *ScoringService) flags(mental models.ScoreSet, sig boostSignals, boosted float64) models.ScoreSet {
	threshold := s.cfg.ActiveThreshold
	var flags models.ScoreSet
	for _, label := range mental.Labels() {
		if v := mental.Value(label); v >= threshold {
			flags.Set(label, v)
		}
	}
	suicidalLabel := mental.DisplayLabel(models.LabelSuicidal)
	if mental.Has(models.LabelSuicidal) && boosted >= threshold {
		flags.Set(suicidalLabel, boosted)
	} else if sig.depression >= s.cfg.SuicidalFallbackThreshold && sig.keywordHit {
		flags.Set(suicidalLabel, math.Max(boosted, math.Max(sig.depression, threshold)))
	}
	return flags
}

func (s *ScoringService) seal(text string, raw, boosted float64, segmentMax *float64, reasons []string) *models.AlertRecord {
	if s.sealer == nil {
		s.logger.Warn("suicidal risk flagged but no alert sealer configured")
		return nil
	}
	record, err := s.sealer.Seal(text)
	if err != nil {
		s.logger.Error("alert sealing failed; continuing without sealed artifact", zap.Error(err))
		return nil
	}
	if record == nil {
		return nil
	}
	record.SuicidalRaw = round2(raw)
	record.SuicidalBoosted = round2(boosted)
	if segmentMax != nil {
		v := round2(*segmentMax)
		record.SuicidalSegmentMax = &v
	}
	record.BoostReasons = reasons
	return record
}

// segmentMax re-scores each segment and returns the highest suicidal score,
// or nil when no segment is long enough.
func (s *ScoringService) segmentMax(ctx context.Context, text string) (*float64, error) {
	segments := segmentText(text, s.cfg.SegmentMinChars)
	var best *float64
	for _, segment := range segments {
		scores, err := s.classify(ctx, classifier.ModelMentalHealth, segment)
		if err != nil {
			return nil, err
		}
		v, ok := scores.Lookup(models.LabelSuicidal)
		if !ok {
			continue
		}
		if best == nil || v > *best {
			value := v
			best = &value
		}
	}
	return best, nil
}

func (s *ScoringService) classify(ctx context.Context, model classifier.Model, text string) (models.ScoreSet, error) {
	start := time.Now()
	scores, err := s.classifier.Classify(ctx, model, text)
	s.metrics.ObserveClassifier(string(model), time.Since(start), err)
	if err != nil {
		return models.ScoreSet{}, appErrors.Wrap(err, appErrors.ErrClassifierUnavailable.Code, appErrors.ErrClassifierUnavailable.Status,
			fmt.Sprintf("%s classifier failed", model))
	}
	return scores, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
