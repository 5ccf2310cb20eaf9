package validate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClaude(t *testing.T, h http.HandlerFunc) *ClaudeClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := NewClaudeClient("test-key", "claude-test")
	c.endpoint = srv.URL
	return c
}

func TestClaudeClient_SuggestFields(t *testing.T) {
	var gotReq anthropicRequest
	c := newTestClaude(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("expected api key header, got %q", r.Header.Get("x-api-key"))
		}
		if r.Header.Get("anthropic-version") == "" {
			t.Error("expected anthropic-version header")
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		reply := "```json\n[{\"field\":\"company\",\"value\":\"Acme\",\"confidence\":0.9},{\"field\":\"bogus\",\"value\":\"x\"}]\n```"
		json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]string{{"type": "text", "text": reply}},
		})
	})

	got, err := c.SuggestFields(context.Background(), Request{DocumentID: "doc-1", Text: "Acme is hiring", Missing: []string{"company"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotReq.Model != "claude-test" || len(gotReq.Messages) != 1 {
		t.Errorf("unexpected request %+v", gotReq)
	}
	if !strings.Contains(gotReq.Messages[0].Content, "Requested fields: company") {
		t.Error("expected prompt in request")
	}
	if got.Provider != "claude" || got.DocumentID != "doc-1" {
		t.Errorf("unexpected envelope %+v", got)
	}
	if len(got.Fields) != 1 || got.Fields[0].Value != "Acme" {
		t.Errorf("expected one sanitized suggestion, got %+v", got.Fields)
	}
}

func TestClaudeClient_Errors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		retryable bool
	}{
		{"rate limited", http.StatusTooManyRequests, `{}`, true},
		{"server error", http.StatusBadGateway, `oops`, true},
		{"bad request", http.StatusBadRequest, `{"error":{"type":"invalid","message":"no"}}`, false},
		{"api error body", http.StatusOK, `{"error":{"type":"overloaded","message":"busy"}}`, false},
		{"empty content", http.StatusOK, `{"content":[]}`, false},
		{"not json", http.StatusOK, `{"content":[{"type":"text","text":"sorry, no"}]}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClaude(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			_, err := c.SuggestFields(context.Background(), Request{Text: "x"})
			if err == nil {
				t.Fatal("expected an error")
			}
			var re *RetryableError
			if errors.As(err, &re) != tt.retryable {
				t.Errorf("expected retryable=%v, got %v (%v)", tt.retryable, !tt.retryable, err)
			}
		})
	}
}
