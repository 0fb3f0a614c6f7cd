// Package recall implements the client for the meeting recording bot API.
package recall

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	"github.com/johnquangdev/meeting-insights/pkg/config"
)

// Client fetches bot capture data: attendee names, attendance events and
// the mixed media URLs.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewClient creates a recall client from config.
func NewClient(cfg *config.RecallConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

type botResponse struct {
	Participants []entities.Attendee      `json:"meeting_participants"`
	Events       []entities.AttendeeEvent `json:"participant_events"`
	AudioMixed   string                   `json:"audio_mixed"`
	VideoMixed   string                   `json:"video_mixed"`
}

// FetchBotData returns everything the bot captured for one session.
func (c *Client) FetchBotData(ctx context.Context, botID string) (*entities.BotData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/bot/"+botID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build bot request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bot request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("bot API returned status %d for bot %s", resp.StatusCode, botID)
	}

	var payload botResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode bot response: %w", err)
	}

	return &entities.BotData{
		Attendees: payload.Participants,
		Events:    payload.Events,
		AudioURL:  payload.AudioMixed,
		VideoURL:  payload.VideoMixed,
	}, nil
}
