package service

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"callpulse/internal/model"
	"callpulse/internal/repository"
	"callpulse/pkg/logger"
)

// SignatureHeader carries the payload signature on outbound deliveries.
const SignatureHeader = "X-Survey-Signature"

// SignPayload computes the HMAC-SHA256 signature of a payload under the
// shared secret, in the form "sha256=<hex>". json.Marshal emits map keys
// in sorted order, which gives the canonical serialization both sides
// must agree on.
func SignPayload(payload map[string]interface{}, secret string) (string, error) {
	canonical, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("%w: payload not serializable: %v", ErrInvalidInput, err)
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(canonical)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil)), nil
}

// VerifySignature checks an inbound payload against its claimed
// signature. It fails closed: unparsable payloads, malformed signatures
// and mismatches all yield false. The comparison is constant-time.
func VerifySignature(payload []byte, signature, secret string) bool {
	if !strings.HasPrefix(signature, "sha256=") {
		return false
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return false
	}

	expected, err := SignPayload(decoded, secret)
	if err != nil {
		return false
	}
	return hmac.Equal([]byte(signature), []byte(expected))
}

// WebhookService signs and delivers events to the configured webhook,
// recording every delivery attempt. Delivery failures are soft: they are
// reported to the caller but never abort the triggering operation.
type WebhookService struct {
	eventRepo repository.WebhookEventRepo
	url       string
	secret    string

	client     *http.Client
	maxRetries int
	log        logger.Logger
}

func NewWebhookService(eventRepo repository.WebhookEventRepo, url, secret string, log logger.Logger) *WebhookService {
	return &WebhookService{
		eventRepo: eventRepo,
		url:       url,
		secret:    secret,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
		maxRetries: 3,
		log:        log,
	}
}

// Enabled reports whether a webhook target is configured.
func (s *WebhookService) Enabled() bool {
	return s.url != ""
}

// Dispatch signs the payload and POSTs it to the webhook, retrying
// transient failures. The attempt is logged to the event collection
// either way. Returns ErrUpstreamUnavailable when delivery ultimately
// fails; a nil return with Enabled()==false means dispatch was skipped.
func (s *WebhookService) Dispatch(ctx context.Context, eventType string, payload map[string]interface{}) error {
	if !s.Enabled() {
		return nil
	}

	event := &model.WebhookEvent{
		ID:         uuid.New().String(),
		EventType:  eventType,
		Payload:    payload,
		WebhookURL: s.url,
	}
	if _, err := s.eventRepo.Create(ctx, event); err != nil {
		s.log.Warn("webhook event log write failed", "eventType", eventType, "error", err)
	}

	signature, err := SignPayload(payload, s.secret)
	if err != nil {
		return err
	}
	body, _ := json.Marshal(payload)

	var lastErr error
	var lastCode int
	var lastBody string
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(time.Duration(attempt) * time.Second):
			case <-ctx.Done():
			}
			if ctx.Err() != nil {
				lastErr = ctx.Err()
				break
			}
		}

		code, respBody, err := s.post(ctx, eventType, signature, body)
		if err != nil {
			lastErr = err
			continue
		}
		lastCode, lastBody = code, respBody

		if code >= 200 && code < 300 {
			s.markResult(ctx, event.ID, "delivered", code, respBody, attempt)
			return nil
		}
		lastErr = fmt.Errorf("webhook returned status %d", code)
		if code < 500 && code != http.StatusTooManyRequests {
			// Client error, retrying won't help.
			break
		}
	}

	s.markResult(ctx, event.ID, "failed", lastCode, lastBody, s.maxRetries)
	s.log.Warn("webhook delivery failed", "eventType", eventType, "url", s.url, "error", lastErr)
	return fmt.Errorf("%w: webhook delivery: %v", ErrUpstreamUnavailable, lastErr)
}

func (s *WebhookService) post(ctx context.Context, eventType, signature string, body []byte) (int, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return 0, "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Survey-Event", eventType)
	req.Header.Set(SignatureHeader, signature)

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return resp.StatusCode, string(respBody), nil
}

func (s *WebhookService) markResult(ctx context.Context, eventID, status string, code int, body string, retries int) {
	if err := s.eventRepo.MarkResult(ctx, eventID, status, code, body, retries); err != nil {
		s.log.Warn("webhook event log update failed", "eventId", eventID, "error", err)
	}
}
