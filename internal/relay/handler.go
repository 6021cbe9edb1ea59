package relay

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/luozhiheng/mingde-site/internal/provider"
	"github.com/luozhiheng/mingde-site/pkg/types"
	"github.com/luozhiheng/mingde-site/pkg/utils"
)

// Fixed sampling parameters; not caller-configurable.
const (
	temperature = 0.7
	maxTokens   = 2048
)

// Generic, localized error bodies. Upstream error detail is logged
// server-side and never forwarded.
const (
	msgInvalidFormat = "无效的消息格式"
	msgUpstreamFail  = "AI 服务请求失败，请稍后再试"
	msgInternal      = "服务器内部错误"
)

// Completer is the slice of the provider client the relay needs.
type Completer interface {
	ChatCompletion(ctx context.Context, model string, msgs []provider.Message, temperature float64, maxTokens int) (string, error)
}

// Handler is the stateless relay for POST /api/ai/chat. It validates the
// request shape, prepends the system prompt and forwards one call upstream.
type Handler struct {
	log           *slog.Logger
	upstream      Completer
	defaultModel  string
	defaultPrompt string
}

func NewHandler(log *slog.Logger, upstream Completer, defaultModel, defaultPrompt string) *Handler {
	return &Handler{
		log:           log,
		upstream:      upstream,
		defaultModel:  defaultModel,
		defaultPrompt: defaultPrompt,
	}
}

type chatRequest struct {
	Messages     []types.ProviderMessage `json:"messages"`
	Model        string                  `json:"model"`
	SystemPrompt string                  `json:"systemPrompt"`
}

// Chat handles POST /api/ai/chat.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Messages == nil {
		utils.Error(w, http.StatusBadRequest, msgInvalidFormat)
		return
	}

	system := req.SystemPrompt
	if system == "" {
		system = h.defaultPrompt
	}
	model := req.Model
	if model == "" {
		model = h.defaultModel
	}

	msgs := make([]provider.Message, 0, len(req.Messages)+1)
	msgs = append(msgs, provider.Message{Role: string(types.ProviderSystem), Content: system})
	for _, m := range req.Messages {
		msgs = append(msgs, provider.Message{Role: string(m.Role), Content: m.Content})
	}

	text, err := h.upstream.ChatCompletion(r.Context(), model, msgs, temperature, maxTokens)
	if err != nil {
		var ue *provider.UpstreamError
		if errors.As(err, &ue) {
			h.log.Error("provider call failed", "status", ue.Status, "body", ue.Body)
			utils.Error(w, ue.Status, msgUpstreamFail)
			return
		}
		h.log.Error("relay failure", "err", err)
		utils.Error(w, http.StatusInternalServerError, msgInternal)
		return
	}

	utils.JSON(w, http.StatusOK, map[string]any{"response": text})
}
