package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	"github.com/johnquangdev/meeting-insights/pkg/config"
	"github.com/johnquangdev/meeting-insights/pkg/jwt"
)

func newTestClient(baseURL string) *Client {
	return NewClient(&config.BackendConfig{
		BaseURL:       baseURL,
		OutgoingToken: "service-token",
		Timeout:       5 * time.Second,
	}, nil, zap.NewNop())
}

func TestFetchMeetingRecord(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/mcp/meeting/info-for-mcp/m1" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer caller-token" {
			t.Fatalf("caller token not forwarded, got %q", got)
		}
		if got := r.Header.Get("Backend-Auth-Token"); got != "service-token" {
			t.Fatalf("service token missing, got %q", got)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"meeting": map[string]interface{}{
				"botId":          "bot1",
				"organizationId": "org1",
				"departmentId":   "dept1",
				"creatorId":      "u9",
				"creatorEmail":   "creator@example.com",
			},
		})
	}))
	defer ts.Close()

	record, err := newTestClient(ts.URL).FetchMeetingRecord(context.Background(), "m1", "caller-token")
	if err != nil {
		t.Fatalf("FetchMeetingRecord failed: %v", err)
	}
	if record.MeetingID != "m1" || record.BotID != "bot1" {
		t.Errorf("record = %+v", record)
	}
}

func TestFetchDepartmentMembersUnwrapsEnvelope(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/mcp/department/fetch-all-members/dept1" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"members": []map[string]interface{}{
				{"user": map[string]string{"id": "u1", "email": "sarah@example.com", "firstName": "Sarah"}},
				{"user": map[string]string{"id": "u2", "email": "mike@example.com", "firstName": "Mike"}},
			},
		})
	}))
	defer ts.Close()

	members, err := newTestClient(ts.URL).FetchDepartmentMembers(context.Background(), "dept1")
	if err != nil {
		t.Fatalf("FetchDepartmentMembers failed: %v", err)
	}
	if len(members) != 2 || members[0].ID != "u1" {
		t.Errorf("members = %+v", members)
	}
}

func TestCreateSummaryEmptyID(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Backend accepts the call but returns no id.
		json.NewEncoder(w).Encode(map[string]interface{}{"summary": map[string]string{}})
	}))
	defer ts.Close()

	id, err := newTestClient(ts.URL).CreateSummary(context.Background(), &entities.MeetingSummary{Title: "T"})
	if err != nil {
		t.Fatalf("CreateSummary failed: %v", err)
	}
	if id != "" {
		t.Errorf("id = %q, want empty", id)
	}
}

func TestBulkCreateTasksBodyShape(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("invalid body: %v", err)
		}
		if _, ok := body["initial_tasks"]; !ok {
			t.Fatalf("body missing initial_tasks key: %v", body)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"tasks": []map[string]string{{"id": "t1"}, {"id": "t2"}},
		})
	}))
	defer ts.Close()

	ids, err := newTestClient(ts.URL).BulkCreateTasks(context.Background(), []entities.Task{{Title: "A"}, {Title: "B"}})
	if err != nil {
		t.Fatalf("BulkCreateTasks failed: %v", err)
	}
	if len(ids) != 2 || ids[0] != "t1" {
		t.Errorf("ids = %v", ids)
	}
}

func TestServiceTokenMintedFromManager(t *testing.T) {
	manager := jwt.NewManager("shared-secret", time.Hour)

	var gotToken string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("Backend-Auth-Token")
		json.NewEncoder(w).Encode(map[string]interface{}{"summary": map[string]string{"id": "sum-1"}})
	}))
	defer ts.Close()

	client := NewClient(&config.BackendConfig{
		BaseURL:       ts.URL,
		OutgoingToken: "static-token",
		Timeout:       5 * time.Second,
	}, manager, zap.NewNop())

	if _, err := client.CreateSummary(context.Background(), &entities.MeetingSummary{Title: "T"}); err != nil {
		t.Fatalf("CreateSummary failed: %v", err)
	}
	if gotToken == "" || gotToken == "static-token" {
		t.Fatalf("expected a minted service JWT, got %q", gotToken)
	}
	claims, err := manager.ValidateServiceToken(gotToken)
	if err != nil {
		t.Fatalf("minted token did not validate: %v", err)
	}
	if claims.Service != "meeting-insights" {
		t.Errorf("service claim = %q", claims.Service)
	}

	// A second call reuses the cached token instead of reminting.
	first := gotToken
	if _, err := client.CreateSummary(context.Background(), &entities.MeetingSummary{Title: "T"}); err != nil {
		t.Fatalf("CreateSummary failed: %v", err)
	}
	if gotToken != first {
		t.Error("token was reminted while the cached one was still fresh")
	}
}

func TestClientErrorNotRetried(t *testing.T) {
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer ts.Close()

	_, err := newTestClient(ts.URL).CreateSummary(context.Background(), &entities.MeetingSummary{})
	if err == nil {
		t.Fatal("expected error for 400 response")
	}
	if calls != 1 {
		t.Errorf("calls = %d, client errors must not be retried", calls)
	}
}

func TestServerErrorRetried(t *testing.T) {
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			http.Error(w, "temporarily unavailable", http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"summary": map[string]string{"id": "sum-1"}})
	}))
	defer ts.Close()

	id, err := newTestClient(ts.URL).CreateSummary(context.Background(), &entities.MeetingSummary{})
	if err != nil {
		t.Fatalf("CreateSummary failed after retries: %v", err)
	}
	if id != "sum-1" {
		t.Errorf("id = %q", id)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}
