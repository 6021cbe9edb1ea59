package types

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Role is the local role of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	// RoleSystemNote marks local-only notices (scenario switches etc.).
	// It is never sent upstream as-is; see ToProviderMessage.
	RoleSystemNote Role = "system-notification"
)

// ProviderRole is the role vocabulary of the upstream chat API.
type ProviderRole string

const (
	ProviderUser      ProviderRole = "user"
	ProviderAssistant ProviderRole = "assistant"
	ProviderSystem    ProviderRole = "system"
)

// Message is a single turn as held in a conversation. Immutable once created.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ProviderMessage is the wire projection of Message used between the
// consultant service, the relay and the upstream provider. Timestamp is
// optional on the wire: a zero timestamp is not serialized, and a missing
// field decodes to zero.
type ProviderMessage struct {
	Role      ProviderRole `json:"role"`
	Content   string       `json:"content"`
	Timestamp time.Time    `json:"timestamp,omitempty"`
}

// MarshalJSON omits a zero timestamp; omitempty alone does not help with
// struct-typed fields.
func (m ProviderMessage) MarshalJSON() ([]byte, error) {
	type wire struct {
		Role      ProviderRole `json:"role"`
		Content   string       `json:"content"`
		Timestamp *time.Time   `json:"timestamp,omitempty"`
	}
	out := wire{Role: m.Role, Content: m.Content}
	if !m.Timestamp.IsZero() {
		out.Timestamp = &m.Timestamp
	}
	return json.Marshal(out)
}

// ToProviderMessage projects a local message onto the provider vocabulary.
// system-notification collapses to system; user and assistant map onto
// themselves. A role outside the enumeration is treated as user input.
func ToProviderMessage(m Message) ProviderMessage {
	var role ProviderRole
	switch m.Role {
	case RoleAssistant:
		role = ProviderAssistant
	case RoleSystemNote:
		role = ProviderSystem
	default:
		role = ProviderUser
	}
	return ProviderMessage{Role: role, Content: m.Content, Timestamp: m.Timestamp}
}

// FromProviderMessage lifts a wire message back into the local model.
// system lifts to system-notification. An empty id gets a fresh one, a zero
// timestamp defaults to now.
func FromProviderMessage(pm ProviderMessage, id string) Message {
	var role Role
	switch pm.Role {
	case ProviderAssistant:
		role = RoleAssistant
	case ProviderSystem:
		role = RoleSystemNote
	default:
		role = RoleUser
	}
	if id == "" {
		id = uuid.NewString()
	}
	ts := pm.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	return Message{ID: id, Role: role, Content: pm.Content, Timestamp: ts}
}

// NewUserMessage builds a user turn stamped now.
func NewUserMessage(content string) Message {
	return Message{ID: uuid.NewString(), Role: RoleUser, Content: content, Timestamp: time.Now()}
}

// NewAssistantMessage builds an assistant turn stamped now.
func NewAssistantMessage(content string) Message {
	return Message{ID: uuid.NewString(), Role: RoleAssistant, Content: content, Timestamp: time.Now()}
}

// NewSystemNote builds a local-only notice stamped now.
func NewSystemNote(content string) Message {
	return Message{ID: uuid.NewString(), Role: RoleSystemNote, Content: content, Timestamp: time.Now()}
}
