// Package message defines the mousepaste control protocol.
//
// Every message is a single line of JSON: <json>\n. A client sends one
// request per connection and reads one response.
package message

import (
	"encoding/json"
	"fmt"
	"time"
)

// Type identifies the kind of message.
type Type string

const (
	TypeStart          Type = "START"
	TypeStop           Type = "STOP"
	TypeToggle         Type = "TOGGLE"
	TypeStatus         Type = "STATUS"
	TypeStatusResponse Type = "STATUS_RESPONSE"
	TypeError          Type = "ERROR"
)

// Status mirrors the engine's status snapshot on the wire.
type Status struct {
	Running         bool      `json:"running"`
	SuppressPaste   bool      `json:"suppress_paste"`
	StartedAt       time.Time `json:"started_at,omitzero"`
	Pending         bool      `json:"pending"`
	PendingLen      int       `json:"pending_len"`
	LockUntilPaste  bool      `json:"lock_until_paste"`
	Clipboard       string    `json:"clipboard"`
	Captures        int64     `json:"captures"`
	Pastes          int64     `json:"pastes"`
	SkippedLocked   int64     `json:"skipped_locked"`
	EmptyCaptures   int64     `json:"empty_captures"`
	InstallFailures int64     `json:"install_failures"`
	LastError       string    `json:"last_error,omitempty"`
}

// Message is the top-level wire envelope.
type Message struct {
	Type Type `json:"type"`

	// START / TOGGLE
	SuppressPaste bool `json:"suppress_paste,omitempty"`

	// STATUS_RESPONSE, sent in reply to every request
	Status *Status `json:"status,omitempty"`

	// ERROR
	Error string `json:"error,omitempty"`
}

// Encode serialises the message to JSON without a trailing newline.
func (m *Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// Decode deserialises a message from raw JSON bytes.
func Decode(b []byte) (*Message, error) {
	var m Message
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("message decode: %w", err)
	}
	if m.Type == "" {
		return nil, fmt.Errorf("message decode: missing type")
	}
	return &m, nil
}

// Errorf builds an ERROR message.
func Errorf(format string, args ...any) *Message {
	return &Message{Type: TypeError, Error: fmt.Sprintf(format, args...)}
}
