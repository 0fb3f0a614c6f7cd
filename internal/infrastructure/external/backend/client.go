// Package backend implements the HTTP client for the org backend API the
// pipeline reads meeting data from and writes artifacts to.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	"github.com/johnquangdev/meeting-insights/pkg/config"
	"github.com/johnquangdev/meeting-insights/pkg/jwt"
	"github.com/johnquangdev/meeting-insights/pkg/runcontext"
)

// Client talks to the org backend. Write calls retry transient failures
// with exponential backoff; client-side errors fail immediately.
type Client struct {
	baseURL   string
	authToken string
	tokens    *jwt.Manager
	client    *http.Client
	logger    *zap.Logger

	mu           sync.Mutex
	serviceToken string
	tokenExpiry  time.Time
}

// NewClient creates a backend client from config. When a JWT manager is
// supplied, outgoing calls authenticate with a minted service token;
// otherwise the static token from config is sent.
func NewClient(cfg *config.BackendConfig, tokens *jwt.Manager, logger *zap.Logger) *Client {
	return &Client{
		baseURL:   cfg.BaseURL,
		authToken: cfg.OutgoingToken,
		tokens:    tokens,
		client:    &http.Client{Timeout: cfg.Timeout},
		logger:    logger,
	}
}

// serviceAuthToken returns the outgoing auth token, reminting the service
// JWT when the cached one is within a minute of expiry.
func (c *Client) serviceAuthToken() string {
	if c.tokens == nil {
		return c.authToken
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.serviceToken != "" && time.Until(c.tokenExpiry) > time.Minute {
		return c.serviceToken
	}

	token, err := c.tokens.GenerateServiceToken("meeting-insights")
	if err != nil {
		if c.logger != nil {
			c.logger.Warn("⚠️ Failed to mint service token, using static token", zap.Error(err))
		}
		return c.authToken
	}
	c.serviceToken = token
	c.tokenExpiry = time.Now().Add(c.tokens.GetExpiry())
	return token
}

// FetchMeetingRecord loads the meeting info, forwarding the caller's token.
func (c *Client) FetchMeetingRecord(ctx context.Context, meetingID, authToken string) (*entities.MeetingRecord, error) {
	var payload struct {
		Meeting entities.MeetingRecord `json:"meeting"`
	}
	headers := map[string]string{"Authorization": "Bearer " + authToken}
	if err := c.doJSON(ctx, http.MethodGet, "/mcp/meeting/info-for-mcp/"+meetingID, nil, headers, &payload); err != nil {
		return nil, err
	}
	record := payload.Meeting
	record.MeetingID = meetingID
	return &record, nil
}

// memberEnvelope is the backend's member list shape: each entry wraps the
// actual user record.
type memberEnvelope struct {
	Members []struct {
		User entities.ParticipantRecord `json:"user"`
	} `json:"members"`
}

// FetchDepartmentMembers returns the canonical roster of one department.
func (c *Client) FetchDepartmentMembers(ctx context.Context, departmentID string) ([]entities.ParticipantRecord, error) {
	var payload memberEnvelope
	if err := c.doJSON(ctx, http.MethodGet, "/mcp/department/fetch-all-members/"+departmentID, nil, nil, &payload); err != nil {
		return nil, err
	}
	return extractMembers(payload), nil
}

// FetchOrganizationMembers returns the full organization roster.
func (c *Client) FetchOrganizationMembers(ctx context.Context, organizationID string) ([]entities.ParticipantRecord, error) {
	var payload memberEnvelope
	if err := c.doJSON(ctx, http.MethodGet, "/mcp/organization/fetch-all-members/"+organizationID, nil, nil, &payload); err != nil {
		return nil, err
	}
	return extractMembers(payload), nil
}

func extractMembers(payload memberEnvelope) []entities.ParticipantRecord {
	members := make([]entities.ParticipantRecord, 0, len(payload.Members))
	for _, m := range payload.Members {
		members = append(members, m.User)
	}
	return members
}

// CreateSummary creates a summary row and returns its id. An empty id with
// no error means the backend accepted the call but created nothing; callers
// must tolerate that.
func (c *Client) CreateSummary(ctx context.Context, summary *entities.MeetingSummary) (string, error) {
	var payload struct {
		Summary struct {
			ID string `json:"id"`
		} `json:"summary"`
	}
	err := c.withRetry(ctx, "create summary", func() error {
		return c.doJSON(ctx, http.MethodPost, "/mcp/summary/create", summary, nil, &payload)
	})
	if err != nil {
		return "", err
	}
	return payload.Summary.ID, nil
}

// UpdateSummary overwrites the summary row in place.
func (c *Client) UpdateSummary(ctx context.Context, summaryID string, summary *entities.MeetingSummary) error {
	return c.withRetry(ctx, "update summary", func() error {
		return c.doJSON(ctx, http.MethodPut, "/mcp/summary/update/"+summaryID, summary, nil, nil)
	})
}

// BulkCreateTasks creates the tasks in one call and returns their ids.
func (c *Client) BulkCreateTasks(ctx context.Context, tasks []entities.Task) ([]string, error) {
	body := map[string]interface{}{"initial_tasks": tasks}
	var payload struct {
		Tasks []struct {
			ID string `json:"id"`
		} `json:"tasks"`
	}
	err := c.withRetry(ctx, "bulk create tasks", func() error {
		return c.doJSON(ctx, http.MethodPost, "/mcp/task/bulk-create", body, nil, &payload)
	})
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(payload.Tasks))
	for _, t := range payload.Tasks {
		ids = append(ids, t.ID)
	}
	return ids, nil
}

// BulkCreateContent creates the generated content items and returns ids.
func (c *Client) BulkCreateContent(ctx context.Context, contents []entities.GeneratedContent) ([]string, error) {
	body := map[string]interface{}{"contents": contents}
	var payload struct {
		Contents []struct {
			ID string `json:"id"`
		} `json:"contents"`
	}
	err := c.withRetry(ctx, "bulk create content", func() error {
		return c.doJSON(ctx, http.MethodPost, "/mcp/generated-content/bulk-create", body, nil, &payload)
	})
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(payload.Contents))
	for _, item := range payload.Contents {
		ids = append(ids, item.ID)
	}
	return ids, nil
}

// BulkCreatePerformanceRecords creates the performance records and returns
// their ids.
func (c *Client) BulkCreatePerformanceRecords(ctx context.Context, records []entities.PerformanceRecord) ([]string, error) {
	body := map[string]interface{}{"records": records}
	var payload struct {
		Records []struct {
			ID string `json:"id"`
		} `json:"records"`
	}
	err := c.withRetry(ctx, "bulk create performance records", func() error {
		return c.doJSON(ctx, http.MethodPost, "/mcp/performance-record/bulk-create", body, nil, &payload)
	})
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(payload.Records))
	for _, r := range payload.Records {
		ids = append(ids, r.ID)
	}
	return ids, nil
}

// withRetry wraps a call in exponential backoff, marking non-transient
// errors permanent so they fail fast.
func (c *Client) withRetry(ctx context.Context, operation string, call func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 30 * time.Second

	return backoff.Retry(func() error {
		err := call()
		if err == nil {
			return nil
		}
		if !runcontext.IsRetryableError(err) {
			return backoff.Permanent(err)
		}
		if c.logger != nil {
			fields := []zap.Field{zap.String("operation", operation), zap.Error(err)}
			if md := runcontext.GetRunMetadata(ctx); md.MeetingID != "" {
				fields = append(fields,
					zap.String("meeting_id", md.MeetingID),
					zap.String("run_id", md.RunID.String()))
			}
			c.logger.Warn("🔄 Retrying backend call", fields...)
		}
		return err
	}, backoff.WithContext(bo, ctx))
}

// doJSON executes one request with the service auth header, optionally
// decoding the response into out.
func (c *Client) doJSON(ctx context.Context, method, path string, body interface{}, headers map[string]string, out interface{}) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Backend-Auth-Token", c.serviceAuthToken())
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("backend returned status %d for %s %s: %s", resp.StatusCode, method, path, string(data))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode backend response: %w", err)
		}
	}
	return nil
}
