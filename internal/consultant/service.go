package consultant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/luozhiheng/mingde-site/pkg/types"
)

// RelayError reports a non-success status from the relay endpoint. The UI
// layer decides how to surface it.
type RelayError struct {
	Status int
}

func (e *RelayError) Error() string {
	return fmt.Sprintf("relay: status %d", e.Status)
}

// Service turns a local conversation into a relay request and maps the
// reply back into the message model. One outbound call per Send, no retry.
type Service struct {
	relayURL string
	model    string
	client   *http.Client
}

func NewService(relayURL, model string) *Service {
	return &Service{
		relayURL: relayURL,
		model:    model,
		client:   &http.Client{Timeout: 120 * time.Second},
	}
}

type relayRequest struct {
	Messages     []types.ProviderMessage `json:"messages"`
	Model        string                  `json:"model,omitempty"`
	SystemPrompt string                  `json:"systemPrompt,omitempty"`
}

type relayResponse struct {
	Response string `json:"response"`
}

// Send relays the dialogue history and returns the assistant's reply.
// System and notification entries are dropped from the history: the system
// prompt travels separately and must not be duplicated.
func (s *Service) Send(ctx context.Context, history []types.Message, systemPrompt string) (types.Message, error) {
	filtered := make([]types.ProviderMessage, 0, len(history))
	for _, m := range history {
		if m.Role != types.RoleUser && m.Role != types.RoleAssistant {
			continue
		}
		filtered = append(filtered, types.ToProviderMessage(m))
	}

	body, err := json.Marshal(relayRequest{
		Messages:     filtered,
		Model:        s.model,
		SystemPrompt: systemPrompt,
	})
	if err != nil {
		return types.Message{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.relayURL, bytes.NewReader(body))
	if err != nil {
		return types.Message{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := s.client.Do(req)
	if err != nil {
		return types.Message{}, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return types.Message{}, &RelayError{Status: res.StatusCode}
	}

	var out relayResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return types.Message{}, fmt.Errorf("consultant: decoding relay response: %w", err)
	}
	return types.NewAssistantMessage(out.Response), nil
}
