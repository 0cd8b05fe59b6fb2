package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransferToSurvey(t *testing.T) {
	var gotToken string
	var gotPayload map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transfers", r.URL.Path)
		gotToken = r.Header.Get("X-Auth-Token")
		json.NewDecoder(r.Body).Decode(&gotPayload)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"transfer-1","status":"starting"}`))
	}))
	defer server.Close()

	cli := NewTransferClient(server.URL, "xivo-extrafeatures", "8899", 15, nopLogger())

	result, err := cli.TransferToSurvey(context.Background(), "wazo-token", TransferRequest{CallID: "call-42"})
	assert.NoError(t, err)

	assert.Equal(t, "wazo-token", gotToken)
	assert.Equal(t, "call-42", gotPayload["transferred"])
	assert.Equal(t, "call-42", gotPayload["initiator"])
	assert.Equal(t, "blind", gotPayload["flow"])
	assert.Equal(t, "xivo-extrafeatures", gotPayload["context"])
	assert.Equal(t, "8899", gotPayload["exten"])
	assert.Equal(t, float64(15), gotPayload["timeout"])

	assert.Equal(t, "xivo-extrafeatures", result.Context)
	assert.Equal(t, "8899", result.Exten)
	assert.Equal(t, "transfer-1", result.Transfer["id"])
}

func TestTransferToSurveyOverrides(t *testing.T) {
	var gotPayload map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotPayload)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	cli := NewTransferClient(server.URL, "xivo-extrafeatures", "8899", 15, nopLogger())

	_, err := cli.TransferToSurvey(context.Background(), "tok", TransferRequest{
		CallID:  "call-42",
		Context: "custom-ctx",
		Exten:   "7700",
		Timeout: 30,
	})
	assert.NoError(t, err)
	assert.Equal(t, "custom-ctx", gotPayload["context"])
	assert.Equal(t, "7700", gotPayload["exten"])
	assert.Equal(t, float64(30), gotPayload["timeout"])
}

func TestTransferToSurveyCalldRejects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	cli := NewTransferClient(server.URL, "ctx", "8899", 15, nopLogger())

	_, err := cli.TransferToSurvey(context.Background(), "tok", TransferRequest{CallID: "call-42"})
	assert.True(t, errors.Is(err, ErrUpstreamUnavailable))
}

func TestTransferToSurveyCalldDown(t *testing.T) {
	cli := NewTransferClient("http://127.0.0.1:1", "ctx", "8899", 15, nopLogger())

	_, err := cli.TransferToSurvey(context.Background(), "tok", TransferRequest{CallID: "call-42"})
	assert.True(t, errors.Is(err, ErrUpstreamUnavailable))
}

func TestTransferToSurveyRequiresCallID(t *testing.T) {
	cli := NewTransferClient("http://example.invalid", "ctx", "8899", 15, nopLogger())

	_, err := cli.TransferToSurvey(context.Background(), "tok", TransferRequest{})
	assert.True(t, errors.Is(err, ErrInvalidInput))
}
