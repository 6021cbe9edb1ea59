package consultant

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/luozhiheng/mingde-site/pkg/types"
)

func TestSend_FiltersRolesPreservingOrder(t *testing.T) {
	var got struct {
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
		SystemPrompt string `json:"systemPrompt"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode relay payload: %v", err)
		}
		_, _ = w.Write([]byte(`{"response":"好的"}`))
	}))
	defer srv.Close()

	history := []types.Message{
		types.NewSystemNote("已切换到专业推荐场景"),
		types.NewUserMessage("我喜欢物理"),
		types.NewAssistantMessage("可以考虑工科方向"),
		types.NewSystemNote("另一条提示"),
		types.NewUserMessage("具体有哪些专业？"),
	}
	svc := NewService(srv.URL, "deepseek-chat")
	reply, err := svc.Send(context.Background(), history, "系统提示")
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	want := []struct{ role, content string }{
		{"user", "我喜欢物理"},
		{"assistant", "可以考虑工科方向"},
		{"user", "具体有哪些专业？"},
	}
	if len(got.Messages) != len(want) {
		t.Fatalf("payload has %d messages, want %d", len(got.Messages), len(want))
	}
	for i, w := range want {
		if got.Messages[i].Role != w.role || got.Messages[i].Content != w.content {
			t.Errorf("message %d = %s/%q, want %s/%q", i, got.Messages[i].Role, got.Messages[i].Content, w.role, w.content)
		}
	}
	if got.SystemPrompt != "系统提示" {
		t.Errorf("systemPrompt = %q", got.SystemPrompt)
	}

	if reply.Role != types.RoleAssistant || reply.Content != "好的" {
		t.Fatalf("reply = %+v", reply)
	}
	if reply.ID == "" || reply.Timestamp.IsZero() {
		t.Fatal("reply should carry a fresh id and timestamp")
	}
}

func TestSend_RelayErrorCarriesStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"AI 服务请求失败"}`, http.StatusBadGateway)
	}))
	defer srv.Close()

	svc := NewService(srv.URL, "")
	_, err := svc.Send(context.Background(), []types.Message{types.NewUserMessage("hi")}, "p")
	var re *RelayError
	if !errors.As(err, &re) {
		t.Fatalf("expected RelayError, got %v", err)
	}
	if re.Status != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", re.Status)
	}
}

func TestSend_NetworkFailure(t *testing.T) {
	svc := NewService("http://127.0.0.1:1/api/ai/chat", "")
	if _, err := svc.Send(context.Background(), nil, "p"); err == nil {
		t.Fatal("expected an error")
	}
}
