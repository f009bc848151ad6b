// Package types provides core types shared across the semalign engine.
// This package has ZERO dependencies on other semalign packages to avoid
// circular imports. All other packages should import types from here.
package types

import "time"

// Role represents the role of a conversation message participant.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	// RoleWorker marks a message produced by a named worker during an
	// orchestration turn. Worker messages always carry a Name.
	RoleWorker Role = "worker"
)

// Message represents one entry of a conversation. Messages are immutable
// once appended to a conversation state; ordering is append-only, oldest
// first.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content,omitempty"`
	Name      string    `json:"name,omitempty"` // worker provenance
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// NewMessage creates a new message with the given role and content.
func NewMessage(role Role, content string) Message {
	return Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) Message {
	return NewMessage(RoleUser, content)
}

// NewAssistantMessage creates a new assistant message.
func NewAssistantMessage(content string) Message {
	return NewMessage(RoleAssistant, content)
}

// NewWorkerMessage creates a message tagged with the producing worker's name.
func NewWorkerMessage(worker, content string) Message {
	m := NewMessage(RoleWorker, content)
	m.Name = worker
	return m
}
