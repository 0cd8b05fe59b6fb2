package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"callpulse/pkg/logger"
)

// TransferClient moves a live caller into the survey IVR by asking wazo
// calld for a blind transfer to the survey extension.
type TransferClient struct {
	baseURL        string
	defaultContext string
	defaultExten   string
	defaultTimeout int

	client *http.Client
	log    logger.Logger
}

func NewTransferClient(baseURL, surveyContext, surveyExten string, surveyTimeout int, log logger.Logger) *TransferClient {
	return &TransferClient{
		baseURL:        baseURL,
		defaultContext: surveyContext,
		defaultExten:   surveyExten,
		defaultTimeout: surveyTimeout,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
	}
}

// TransferRequest overrides the configured dialplan target per call.
// Zero values fall back to the configured defaults.
type TransferRequest struct {
	CallID  string
	Context string
	Exten   string
	Timeout int
}

// TransferResult echoes where the caller was sent plus calld's response.
type TransferResult struct {
	Context  string                 `json:"context"`
	Exten    string                 `json:"exten"`
	Transfer map[string]interface{} `json:"transfer,omitempty"`
}

// TransferToSurvey performs the blind transfer using the caller-supplied
// auth token. calld being down is an upstream failure, never a panic.
func (c *TransferClient) TransferToSurvey(ctx context.Context, authToken string, req TransferRequest) (*TransferResult, error) {
	if req.CallID == "" {
		return nil, fmt.Errorf("%w: call id is required", ErrInvalidInput)
	}

	transferContext := req.Context
	if transferContext == "" {
		transferContext = c.defaultContext
	}
	exten := req.Exten
	if exten == "" {
		exten = c.defaultExten
	}
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = c.defaultTimeout
	}

	payload := map[string]interface{}{
		"transferred": req.CallID,
		"initiator":   req.CallID,
		"flow":        "blind",
		"context":     transferContext,
		"exten":       exten,
		"timeout":     timeout,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transfers", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Auth-Token", authToken)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: calld transfer: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Warn("calld transfer rejected", "status", resp.StatusCode, "callId", req.CallID)
		return nil, fmt.Errorf("%w: calld returned status %d", ErrUpstreamUnavailable, resp.StatusCode)
	}

	result := &TransferResult{Context: transferContext, Exten: exten}
	if err := json.Unmarshal(respBody, &result.Transfer); err != nil {
		// Non-JSON body from calld; the transfer itself succeeded.
		result.Transfer = nil
	}
	return result, nil
}
