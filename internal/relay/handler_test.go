package relay

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/luozhiheng/mingde-site/internal/provider"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newRelay wires a relay handler to a fake upstream and returns both.
func newRelay(t *testing.T, upstream http.HandlerFunc) (*Handler, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)
	client := provider.NewClient(srv.URL, "test-key", discardLogger())
	return NewHandler(discardLogger(), client, "deepseek-chat", "默认提示词"), srv
}

func postJSON(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/ai/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.Chat(w, req)
	return w
}

func TestChat_MissingMessages(t *testing.T) {
	h, _ := newRelay(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("upstream must not be called on validation failure")
	})
	w := postJSON(t, h, `{}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["error"] == "" {
		t.Fatal("expected an error body")
	}
}

func TestChat_MessagesNotAnArray(t *testing.T) {
	h, _ := newRelay(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("upstream must not be called on validation failure")
	})
	w := postJSON(t, h, `{"messages":"not-an-array"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestChat_EmptyMessagesIsValid(t *testing.T) {
	h, _ := newRelay(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	})
	w := postJSON(t, h, `{"messages":[]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestChat_Success(t *testing.T) {
	var got struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
		Temperature float64 `json:"temperature"`
		MaxTokens   int     `json:"max_tokens"`
	}
	h, _ := newRelay(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode upstream payload: %v", err)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("missing bearer credential, got %q", r.Header.Get("Authorization"))
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"X"}}]}`))
	})

	w := postJSON(t, h, `{"messages":[{"role":"user","content":"你好"}]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["response"] != "X" {
		t.Fatalf("response = %q, want X", body["response"])
	}

	if got.Model != "deepseek-chat" {
		t.Errorf("model default missed: %q", got.Model)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" {
		t.Fatalf("expected prepended system message, got %+v", got.Messages)
	}
	if got.Messages[0].Content != "默认提示词" {
		t.Errorf("default system prompt missed: %q", got.Messages[0].Content)
	}
	if got.Messages[1].Role != "user" || got.Messages[1].Content != "你好" {
		t.Errorf("caller message not forwarded: %+v", got.Messages[1])
	}
	if got.Temperature != temperature || got.MaxTokens != maxTokens {
		t.Errorf("sampling params not fixed: %v / %v", got.Temperature, got.MaxTokens)
	}
}

func TestChat_CallerSystemPromptWins(t *testing.T) {
	var first string
	h, _ := newRelay(t, func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct{ Role, Content string } `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if len(req.Messages) > 0 {
			first = req.Messages[0].Content
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	})
	w := postJSON(t, h, `{"messages":[{"role":"user","content":"hi"}],"systemPrompt":"自定义提示"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if first != "自定义提示" {
		t.Fatalf("caller systemPrompt should be used, got %q", first)
	}
}

func TestChat_UpstreamStatusPropagated(t *testing.T) {
	h, _ := newRelay(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "secret provider detail", http.StatusServiceUnavailable)
	})
	w := postJSON(t, h, `{"messages":[{"role":"user","content":"hi"}]}`)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
	if strings.Contains(w.Body.String(), "secret provider detail") {
		t.Fatal("upstream error body must not be forwarded")
	}
	var body map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body["error"] == "" {
		t.Fatal("expected a generic error body")
	}
}

func TestChat_MissingChoiceIs500(t *testing.T) {
	h, _ := newRelay(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})
	w := postJSON(t, h, `{"messages":[{"role":"user","content":"hi"}]}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
}

func TestChat_EmptyCompletionIs500(t *testing.T) {
	h, _ := newRelay(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":""}}]}`))
	})
	w := postJSON(t, h, `{"messages":[{"role":"user","content":"hi"}]}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
}

func TestChat_UnreachableUpstreamIs500(t *testing.T) {
	client := provider.NewClient("http://127.0.0.1:1", "k", discardLogger())
	h := NewHandler(discardLogger(), client, "m", "p")
	w := postJSON(t, h, `{"messages":[{"role":"user","content":"hi"}]}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
}
