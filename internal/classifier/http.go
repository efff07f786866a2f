package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/wpitts2299/AI-Club-Hackathon-Student-Health-Project/internal/models"
)

const maxResponseBytes = 1 << 20

// HTTPConfig configures the remote inference adapter.
type HTTPConfig struct {
	BaseURL    string
	Timeout    time.Duration
	ModelNames map[Model]string
	Mode       Mode
}

// HTTPClassifier calls an inference server exposing POST /classify.
type HTTPClassifier struct {
	client  *http.Client
	baseURL string
	names   map[Model]string
	mode    Mode
}

type classifyRequest struct {
	Model      string `json:"model"`
	Inputs     string `json:"inputs"`
	MultiLabel bool   `json:"multi_label"`
}

type classifyResponse struct {
	Unit   string `json:"unit"`
	Scores []struct {
		Label string  `json:"label"`
		Score float64 `json:"score"`
	} `json:"scores"`
}

// NewHTTPClassifier builds the adapter. A nil client uses one with cfg.Timeout.
func NewHTTPClassifier(cfg HTTPConfig, client *http.Client) (*HTTPClassifier, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("classifier base url required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	names := make(map[Model]string, len(cfg.ModelNames))
	for model, name := range cfg.ModelNames {
		names[model] = name
	}
	return &HTTPClassifier{
		client:  client,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		names:   names,
		mode:    cfg.Mode,
	}, nil
}

// Classify posts text to the inference server and converts the answer to percentages.
func (c *HTTPClassifier) Classify(ctx context.Context, model Model, text string) (models.ScoreSet, error) {
	name := c.names[model]
	if name == "" {
		name = string(model)
	}
	body, err := json.Marshal(classifyRequest{
		Model:      name,
		Inputs:     text,
		MultiLabel: model == ModelMentalHealth && c.mode.MultiLabel,
	})
	if err != nil {
		return models.ScoreSet{}, fmt.Errorf("encode classify request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/classify", bytes.NewReader(body))
	if err != nil {
		return models.ScoreSet{}, fmt.Errorf("build classify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return models.ScoreSet{}, fmt.Errorf("classify %s: %w", model, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return models.ScoreSet{}, fmt.Errorf("classify %s: unexpected status %d", model, resp.StatusCode)
	}

	var payload classifyResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&payload); err != nil {
		return models.ScoreSet{}, fmt.Errorf("decode classify response: %w", err)
	}
	if len(payload.Scores) == 0 {
		return models.ScoreSet{}, fmt.Errorf("classify %s: empty score list", model)
	}

	scale := 100.0
	if strings.EqualFold(payload.Unit, "percent") {
		scale = 1
	}
	var set models.ScoreSet
	for _, s := range payload.Scores {
		set.Set(s.Label, clampPercent(s.Score*scale))
	}
	return set, nil
}
