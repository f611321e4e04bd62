package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role identifies who authored a message
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message is a single entry of the conversation.
// Messages are values: once created they are never modified.
type Message struct {
	ID        string `json:"id"`
	Role      Role   `json:"role"`
	Text      string `json:"text"`
	ImageURL  string `json:"imageUrl,omitempty"` // data URI (attachment) or https URL (generated)
	Timestamp int64  `json:"timestamp"`          // milliseconds since epoch
}

// NewMessage creates a message stamped with a fresh ID and the current time
func NewMessage(role Role, text, imageURL string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Text:      text,
		ImageURL:  imageURL,
		Timestamp: time.Now().UnixMilli(),
	}
}

// NewUserMessage creates a user message
func NewUserMessage(text, imageURL string) Message {
	return NewMessage(RoleUser, text, imageURL)
}

// NewModelMessage creates a model message
func NewModelMessage(text, imageURL string) Message {
	return NewMessage(RoleModel, text, imageURL)
}

// IsUser reports whether the message was written by the user
func (m Message) IsUser() bool {
	return m.Role == RoleUser
}

// Time returns the creation time
func (m Message) Time() time.Time {
	return time.UnixMilli(m.Timestamp)
}

// HasImage reports whether the message references an image
func (m Message) HasImage() bool {
	return m.ImageURL != ""
}

// HasInlineImage reports whether the image is embedded as a data URI
func (m Message) HasInlineImage() bool {
	return strings.HasPrefix(m.ImageURL, "data:")
}

// HasRemoteImage reports whether the image lives at a remote URL
func (m Message) HasRemoteImage() bool {
	return strings.HasPrefix(m.ImageURL, "http://") || strings.HasPrefix(m.ImageURL, "https://")
}
