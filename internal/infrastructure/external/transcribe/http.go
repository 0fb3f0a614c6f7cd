package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/johnquangdev/meeting-insights/pkg/config"
)

// HTTPTranscriber calls a self-hosted transcription service that accepts an
// audio URL and returns the text synchronously.
type HTTPTranscriber struct {
	serviceURL string
	secret     string
	client     *http.Client
}

// NewHTTPTranscriber creates an HTTP transcriber from config.
func NewHTTPTranscriber(cfg *config.TranscribeConfig) *HTTPTranscriber {
	return &HTTPTranscriber{
		serviceURL: cfg.ServiceURL,
		secret:     cfg.ServiceSecret,
		client:     &http.Client{Timeout: cfg.RequestTimeout},
	}
}

type transcribeRequest struct {
	AudioURL string `json:"audio_url"`
	Secret   string `json:"secret"`
}

type transcribeResponse struct {
	Text string `json:"text"`
}

// Transcribe posts the audio URL and returns the transcript text.
func (t *HTTPTranscriber) Transcribe(ctx context.Context, audioURL string) (string, error) {
	b, err := json.Marshal(transcribeRequest{AudioURL: audioURL, Secret: t.secret})
	if err != nil {
		return "", fmt.Errorf("failed to encode transcribe request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.serviceURL+"/transcribe", bytes.NewReader(b))
	if err != nil {
		return "", fmt.Errorf("failed to build transcribe request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcribe request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("transcribe service returned status %d", resp.StatusCode)
	}

	var payload transcribeResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to decode transcribe response: %w", err)
	}
	return payload.Text, nil
}
