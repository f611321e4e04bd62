package chat

import (
	"sync"

	apierrors "github.com/diogo/sanai/internal/errors"
	"github.com/diogo/sanai/internal/models"
)

// Persister stores the whole message list after every change
type Persister interface {
	Save(messages []models.Message) error
}

// Conversation is the append-only message list plus the pending request flag.
// It is safe for concurrent use.
type Conversation struct {
	mu       sync.Mutex
	messages []models.Message
	pending  bool
	intent   Intent
	store    Persister
}

// NewConversation starts from previously stored messages. store may be nil.
func NewConversation(messages []models.Message, store Persister) *Conversation {
	return &Conversation{
		messages: append([]models.Message(nil), messages...),
		store:    store,
	}
}

// Messages returns a copy of the messages in insertion order
func (c *Conversation) Messages() []models.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Message(nil), c.messages...)
}

// Len returns the number of messages
func (c *Conversation) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

// Pending reports whether a request is outstanding and what kind it is
func (c *Conversation) Pending() (bool, Intent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending, c.intent
}

// Append adds msg and persists the full list.
// The message stays in memory even when persisting fails.
func (c *Conversation) Append(msg models.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.messages = append(c.messages, msg)
	if c.store == nil {
		return nil
	}
	return c.store.Save(append([]models.Message(nil), c.messages...))
}

// Begin marks a request of the given intent as pending
func (c *Conversation) Begin(intent Intent) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending {
		return apierrors.ErrBusy
	}
	c.pending = true
	c.intent = intent
	return nil
}

// End clears the pending flag
func (c *Conversation) End() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = false
	c.intent = IntentChat
}

// Last returns the newest message
func (c *Conversation) Last() (models.Message, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.messages) == 0 {
		return models.Message{}, false
	}
	return c.messages[len(c.messages)-1], true
}

// LastModelMessage returns the newest reply
func (c *Conversation) LastModelMessage() (models.Message, bool) {
	return c.findLast(func(m models.Message) bool { return m.Role == models.RoleModel })
}

// LastImage returns the newest message that carries an image, attachment or generated
func (c *Conversation) LastImage() (models.Message, bool) {
	return c.findLast(models.Message.HasImage)
}

func (c *Conversation) findLast(match func(models.Message) bool) (models.Message, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.messages) - 1; i >= 0; i-- {
		if match(c.messages[i]) {
			return c.messages[i], true
		}
	}
	return models.Message{}, false
}
