package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"goldword-tools/internal/ai"
	"goldword-tools/internal/vocab"
)

const wantSummary = "A choice; resolution.；决定；抉择；dɪˈsɪʒən；n."

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T, cfg Config) *gin.Engine {
	t.Helper()
	router, err := NewServer(cfg).Router()
	if err != nil {
		t.Fatalf("router: %v", err)
	}
	return router
}

func serve(router http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func assertCORS(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	want := map[string]string{
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Headers": "Content-Type, Authorization",
		"Access-Control-Allow-Methods": "POST, GET, OPTIONS",
	}
	for key, value := range want {
		if got := rec.Header().Get(key); got != value {
			t.Fatalf("expected %s %q got %q", key, value, got)
		}
	}
}

func TestChatCompletionsFixedResponse(t *testing.T) {
	router := newTestRouter(t, Config{})

	tests := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"valid request", `{"model":"gpt-4o","messages":[{"role":"user","content":"decision"}]}`},
		{"garbage", `{not json at all`},
		{"json array", `[1,2,3]`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(router, http.MethodPost, completionsPath, tc.body, map[string]string{"Content-Type": "application/json"})
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
				t.Fatalf("unexpected content type %q", ct)
			}
			assertCORS(t, rec)

			var resp ChatCompletionResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.ID != "mock-123" || resp.Object != "chat.completion" || resp.Model != "mock-4o-mini" || resp.Created != 0 {
				t.Fatalf("unexpected envelope %+v", resp)
			}
			if len(resp.Choices) != 1 {
				t.Fatalf("expected one choice got %d", len(resp.Choices))
			}
			choice := resp.Choices[0]
			if choice.Index != 0 || choice.FinishReason != "stop" || choice.Message.Role != "assistant" {
				t.Fatalf("unexpected choice %+v", choice)
			}
			if choice.Message.Content != wantSummary {
				t.Fatalf("expected content %q got %q", wantSummary, choice.Message.Content)
			}
		})
	}
}

func TestChatCompletionsCustomEntryTruncated(t *testing.T) {
	entry := vocab.Entry{Brief: strings.Repeat("x", 200), ChineseMeaning: "忽略"}
	router := newTestRouter(t, Config{Entry: &entry})

	rec := serve(router, http.MethodPost, completionsPath, "", nil)
	var resp ChatCompletionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := resp.Choices[0].Message.Content; got != strings.Repeat("x", vocab.MaxSummaryRunes) {
		t.Fatalf("expected truncated content, got %d bytes", len(got))
	}
}

func TestChatCompletionsIgnoresQueryAndOrigin(t *testing.T) {
	router := newTestRouter(t, Config{})

	tests := []struct {
		name    string
		path    string
		headers map[string]string
	}{
		{"query string", completionsPath + "?x=1", nil},
		{"cross origin", completionsPath, map[string]string{"Origin": "http://localhost:8000"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(router, http.MethodPost, tc.path, "{}", tc.headers)
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200 got %d", rec.Code)
			}
			assertCORS(t, rec)

			var resp ChatCompletionResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got := resp.Choices[0].Message.Content; got != wantSummary {
				t.Fatalf("expected content %q got %q", wantSummary, got)
			}
		})
	}
}

func TestOptionsPreflight(t *testing.T) {
	router := newTestRouter(t, Config{})

	tests := []struct {
		name    string
		path    string
		headers map[string]string
	}{
		{"completions", completionsPath, nil},
		{"unknown path", "/anything/else", nil},
		{"root", "/", nil},
		{"browser preflight", completionsPath, map[string]string{
			"Origin":                         "http://localhost:8000",
			"Access-Control-Request-Method":  "POST",
			"Access-Control-Request-Headers": "content-type, authorization",
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(router, http.MethodOptions, tc.path, "", tc.headers)
			if rec.Code != http.StatusNoContent {
				t.Fatalf("expected 204 got %d", rec.Code)
			}
			if rec.Body.Len() != 0 {
				t.Fatalf("expected empty body got %q", rec.Body.String())
			}
			assertCORS(t, rec)
		})
	}
}

func TestNotFound(t *testing.T) {
	router := newTestRouter(t, Config{})

	tests := []struct {
		name   string
		method string
		path   string
	}{
		{"post other path", http.MethodPost, "/v1/completions"},
		{"post root", http.MethodPost, "/"},
		{"get completions", http.MethodGet, completionsPath},
		{"delete completions", http.MethodDelete, completionsPath},
		{"post trailing slash", http.MethodPost, completionsPath + "/"},
		{"post fixed case path", http.MethodPost, "/V1/Chat/Completions"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(router, tc.method, tc.path, `{}`, nil)
			if rec.Code != http.StatusNotFound {
				t.Fatalf("expected 404 got %d", rec.Code)
			}
			if rec.Body.Len() != 0 {
				t.Fatalf("expected empty body got %q", rec.Body.String())
			}
			assertCORS(t, rec)
		})
	}
}

func TestPanicBecomesServerError(t *testing.T) {
	router := newTestRouter(t, Config{})
	router.POST("/boom", func(c *gin.Context) {
		panic("kaboom")
	})

	rec := serve(router, http.MethodPost, "/boom", "", nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", rec.Code)
	}
	assertCORS(t, rec)

	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error.Message != "Mock server error: kaboom" || resp.Error.Type != "server_error" {
		t.Fatalf("unexpected error body %+v", resp)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, io.ErrUnexpectedEOF
}

func TestBodyReadFailure(t *testing.T) {
	router := newTestRouter(t, Config{})
	req := httptest.NewRequest(http.MethodPost, completionsPath, failingReader{})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", rec.Code)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.HasPrefix(resp.Error.Message, "Mock server error: read request body") {
		t.Fatalf("unexpected message %q", resp.Error.Message)
	}
}

func TestProbeClientAgainstRouter(t *testing.T) {
	srv := httptest.NewServer(newTestRouter(t, Config{}))
	defer srv.Close()

	client := ai.NewClient(ai.Config{BaseURL: srv.URL + "/v1", APIKey: "sk-test"})
	got, err := client.Complete(context.Background(), "decision")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if got.Content != wantSummary || got.ID != "mock-123" || got.FinishReason != "stop" {
		t.Fatalf("unexpected completion %+v", got)
	}
}
