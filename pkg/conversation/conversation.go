// Package conversation holds the ordered transcript exchanged with the model.
package conversation

import "fmt"

// Role is the role for a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleFunction  Role = "function"
)

// FunctionCall is a model request to run a named local function.
type FunctionCall struct {
	Name      string
	Arguments string
}

// Message is one provider-agnostic conversation turn.
type Message struct {
	Role         Role
	Content      string
	FunctionCall *FunctionCall
	// Name identifies the function on function-role messages.
	Name string
}

// System builds a system message.
func System(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// User builds a user message.
func User(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// Assistant builds a final assistant message.
func Assistant(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// AssistantCall builds an assistant message requesting a function call.
func AssistantCall(name, arguments string) Message {
	return Message{Role: RoleAssistant, FunctionCall: &FunctionCall{Name: name, Arguments: arguments}}
}

// FunctionResult builds the function-role message reporting a handler result.
func FunctionResult(name, content string) Message {
	return Message{Role: RoleFunction, Name: name, Content: content}
}

// HasFunctionCall reports whether the message asks for a function invocation.
func (m Message) HasFunctionCall() bool {
	return m.Role == RoleAssistant && m.FunctionCall != nil && m.FunctionCall.Name != ""
}

// Validate checks role-specific shape.
func (m Message) Validate() error {
	switch m.Role {
	case RoleSystem, RoleUser, RoleAssistant:
	case RoleFunction:
		if m.Name == "" {
			return fmt.Errorf("function message requires a name")
		}
	default:
		return fmt.Errorf("invalid message role %q", m.Role)
	}
	if m.FunctionCall != nil && m.Role != RoleAssistant {
		return fmt.Errorf("function_call on %s message", m.Role)
	}
	return nil
}

func (m Message) clone() Message {
	if m.FunctionCall != nil {
		fc := *m.FunctionCall
		m.FunctionCall = &fc
	}
	return m
}

// Conversation is an append-only message sequence.
type Conversation struct {
	messages []Message
}

// New returns a conversation seeded with the given messages.
func New(seed ...Message) (*Conversation, error) {
	c := &Conversation{}
	for _, m := range seed {
		if err := c.Append(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Append adds m to the end of the conversation. A copy is stored, so later
// changes to m do not affect the transcript.
func (c *Conversation) Append(m Message) error {
	if err := m.Validate(); err != nil {
		return err
	}
	c.messages = append(c.messages, m.clone())
	return nil
}

// Len returns the number of messages.
func (c *Conversation) Len() int {
	return len(c.messages)
}

// Messages returns a copy of the transcript in order.
func (c *Conversation) Messages() []Message {
	out := make([]Message, len(c.messages))
	for i, m := range c.messages {
		out[i] = m.clone()
	}
	return out
}
