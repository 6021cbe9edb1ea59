package conversation

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/luozhiheng/mingde-site/internal/prompts"
	"github.com/luozhiheng/mingde-site/pkg/types"
)

// Conversation holds one consultant dialogue. Messages are append-only for
// the lifetime of the session; order is chronological and replayed as
// history to the provider.
type Conversation struct {
	ID          string
	Title       string
	CreatedAt   time.Time
	Messages    []types.Message
	Tags        []string
	TemplateKey string
}

// Summary is the lightweight view used by sidebars and the admin dashboard.
type Summary struct {
	ID          string
	Title       string
	TemplateKey string
	Turns       int
	Updated     time.Time
}

type Store interface {
	Create(templateKey string) Conversation
	Append(id string, m types.Message) error
	History(id string) ([]types.Message, error)
	SetTemplate(id, templateKey string) error
	TemplateKey(id string) string
	Clear(id string) error
}

// MemoryStore keeps conversations in process memory only. Nothing survives
// a restart; that matches the session-scoped lifecycle of the widget.
type MemoryStore struct {
	mu      sync.RWMutex
	data    map[string]*Conversation
	updated map[string]time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data:    make(map[string]*Conversation),
		updated: make(map[string]time.Time),
	}
}

// Create starts a fresh conversation under the given scenario key.
func (s *MemoryStore) Create(templateKey string) Conversation {
	c := &Conversation{
		ID:          uuid.NewString(),
		CreatedAt:   time.Now(),
		TemplateKey: templateKey,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[c.ID] = c
	s.updated[c.ID] = time.Now()
	return *c
}

// Append adds a turn. Unknown ids get a conversation implicitly so that a
// browser arriving with a stale id keeps working after a restart.
func (s *MemoryStore) Append(id string, m types.Message) error {
	if id == "" {
		return errors.New("empty conversation id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.ensureLocked(id)
	c.Messages = append(c.Messages, m)
	if c.Title == "" && m.Role == types.RoleUser {
		c.Title = clipTitle(m.Content)
	}
	s.updated[id] = time.Now()
	return nil
}

// History returns a copy of the message sequence.
func (s *MemoryStore) History(id string) ([]types.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.data[id]
	if !ok {
		return nil, nil
	}
	out := make([]types.Message, len(c.Messages))
	copy(out, c.Messages)
	return out, nil
}

// SetTemplate switches the scenario and records the switch as a local
// notification turn, so the transcript shows where the context changed.
func (s *MemoryStore) SetTemplate(id, templateKey string) error {
	if id == "" {
		return errors.New("empty conversation id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.ensureLocked(id)
	if c.TemplateKey == templateKey {
		return nil
	}
	c.TemplateKey = templateKey
	c.Messages = append(c.Messages, types.NewSystemNote("已切换咨询场景"))
	s.updated[id] = time.Now()
	return nil
}

// TemplateKey reports the active scenario, DEFAULT when unknown.
func (s *MemoryStore) TemplateKey(id string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.data[id]; ok && c.TemplateKey != "" {
		return c.TemplateKey
	}
	return prompts.DefaultKey
}

// Clear discards a conversation entirely.
func (s *MemoryStore) Clear(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	delete(s.updated, id)
	return nil
}

// List returns summaries of all live conversations.
func (s *MemoryStore) List() []Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Summary, 0, len(s.data))
	for id, c := range s.data {
		out = append(out, Summary{
			ID:          id,
			Title:       c.Title,
			TemplateKey: c.TemplateKey,
			Turns:       len(c.Messages),
			Updated:     s.updated[id],
		})
	}
	return out
}

// Reset drops everything; used by the admin dashboard.
func (s *MemoryStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[string]*Conversation)
	s.updated = make(map[string]time.Time)
}

func (s *MemoryStore) ensureLocked(id string) *Conversation {
	c, ok := s.data[id]
	if !ok {
		c = &Conversation{ID: id, CreatedAt: time.Now(), TemplateKey: prompts.DefaultKey}
		s.data[id] = c
	}
	return c
}

func clipTitle(content string) string {
	content = strings.TrimSpace(content)
	runes := []rune(content)
	if len(runes) <= 16 {
		return content
	}
	return string(runes[:16]) + "…"
}
