// Package session holds the conversation state of one agent run: the ordered,
// append-only message log, the step counter and the step budget.
//
// A Session is owned by a single agent loop and is not safe for concurrent use.
package session

import (
	"errors"
	"fmt"

	"microagent/internal/logging"
	"microagent/internal/types"

	"github.com/google/uuid"
)

var (
	// ErrInvalidRole is returned when appending a message with an unknown role.
	ErrInvalidRole = errors.New("invalid message role")

	// ErrSystemMessage is returned when appending a second system message.
	ErrSystemMessage = errors.New("system message is set once at construction")

	// ErrOutOfTurn is returned when an assistant message would not follow a user message.
	ErrOutOfTurn = errors.New("assistant message must follow a user message")

	// ErrBudgetExhausted is returned by BeginStep once the step budget is spent.
	ErrBudgetExhausted = errors.New("step budget exhausted")
)

// Session is the AgentSession: conversation log plus step accounting.
type Session struct {
	id       string
	messages []types.Message
	steps    int
	maxSteps int
}

// New creates a session seeded with the system prompt.
// A non-positive maxSteps is treated as a budget of one step.
func New(systemPrompt string, maxSteps int) *Session {
	if maxSteps <= 0 {
		maxSteps = 1
	}
	s := &Session{
		id:       uuid.NewString(),
		messages: make([]types.Message, 0, 16),
		maxSteps: maxSteps,
	}
	s.messages = append(s.messages, types.Message{Role: types.RoleSystem, Content: systemPrompt})
	logging.Session("Session %s created (max_steps=%d, system_prompt_len=%d)", s.id, maxSteps, len(systemPrompt))
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Append adds a message to the end of the log. Messages are never edited or
// removed once appended.
func (s *Session) Append(role types.Role, content string) error {
	if !role.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	if role == types.RoleSystem {
		return ErrSystemMessage
	}
	if role == types.RoleAssistant && s.lastRole() != types.RoleUser {
		return ErrOutOfTurn
	}

	s.messages = append(s.messages, types.Message{Role: role, Content: content})
	logging.SessionDebug("Session %s: appended %s message #%d (%d chars)", s.id, role, len(s.messages), len(content))
	return nil
}

// AppendUser appends a user-role message.
func (s *Session) AppendUser(content string) error {
	return s.Append(types.RoleUser, content)
}

// AppendAssistant appends an assistant-role message.
func (s *Session) AppendAssistant(content string) error {
	return s.Append(types.RoleAssistant, content)
}

// Messages returns a copy of the log in order.
func (s *Session) Messages() []types.Message {
	out := make([]types.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Len returns the number of messages, system message included.
func (s *Session) Len() int {
	return len(s.messages)
}

// Last returns the most recent message.
func (s *Session) Last() types.Message {
	return s.messages[len(s.messages)-1]
}

func (s *Session) lastRole() types.Role {
	return s.Last().Role
}

// BeginStep consumes one step of the budget.
func (s *Session) BeginStep() (int, error) {
	if s.steps >= s.maxSteps {
		return s.steps, ErrBudgetExhausted
	}
	s.steps++
	return s.steps, nil
}

// Steps returns the number of steps taken.
func (s *Session) Steps() int {
	return s.steps
}

// MaxSteps returns the step budget.
func (s *Session) MaxSteps() int {
	return s.maxSteps
}

// BudgetExhausted reports whether no steps remain.
func (s *Session) BudgetExhausted() bool {
	return s.steps >= s.maxSteps
}
