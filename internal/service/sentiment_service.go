package service

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"callpulse/internal/model"
	"callpulse/pkg/logger"
)

// SentimentService scores free-text comments through an external HTTP
// scorer. The scorer is optional: when it is not configured or fails,
// scoring degrades to a neutral result instead of failing the caller.
type SentimentService struct {
	apiURL string
	client *http.Client
	log    logger.Logger
}

func NewSentimentService(apiURL string, log logger.Logger) *SentimentService {
	return &SentimentService{
		apiURL: apiURL,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
		log: log,
	}
}

// Analyze scores a text. Empty text, a missing scorer or any scorer
// failure all yield the neutral result.
func (s *SentimentService) Analyze(ctx context.Context, text string) model.SentimentResult {
	if text == "" || s.apiURL == "" {
		return model.NeutralSentiment()
	}

	reqBody, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return model.NeutralSentiment()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(reqBody))
	if err != nil {
		return model.NeutralSentiment()
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.log.Warn("sentiment scorer unavailable", "error", err)
		return model.NeutralSentiment()
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.log.Warn("sentiment scorer returned error", "status", resp.StatusCode)
		return model.NeutralSentiment()
	}

	var result model.SentimentResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		s.log.Warn("sentiment scorer response unreadable", "error", err)
		return model.NeutralSentiment()
	}
	if result.Label == "" {
		result.Label = "neutral"
	}
	return result
}
