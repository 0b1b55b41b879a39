// Package session keeps per-tab conversation state in memory. Nothing is
// persisted server-side; a session lives as long as the process.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Default transcript limits.
const (
	DefaultMaxMessages   = 200    // Maximum number of messages to retain
	DefaultMaxCharacters = 200000 // Maximum total characters
)

// Author identifies who wrote a chat message.
type Author string

const (
	AuthorUser Author = "user"
	AuthorAI   Author = "ai"
)

// Status marks whether a turn completed successfully.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// ChatMessage is one turn of the conversation. Messages are append-only and
// never mutated after creation.
type ChatMessage struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Author    Author    `json:"author"`
	Timestamp time.Time `json:"timestamp"`
	Status    Status    `json:"status"`
}

// Conversation holds the transcript and the backend conversation id for one
// dashboard session.
type Conversation struct {
	conversationID string
	messages       []ChatMessage
	totalChars     int
	maxMessages    int
	maxCharacters  int
	mu             sync.RWMutex
}

// NewConversation creates a conversation with default transcript limits.
func NewConversation() *Conversation {
	return &Conversation{
		messages:      make([]ChatMessage, 0),
		maxMessages:   DefaultMaxMessages,
		maxCharacters: DefaultMaxCharacters,
	}
}

// Append adds a message and returns it. Oldest messages are trimmed when the
// transcript exceeds its limits.
func (c *Conversation) Append(author Author, content string, status Status) ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()

	msg := ChatMessage{
		ID:        uuid.NewString(),
		Content:   content,
		Author:    author,
		Timestamp: time.Now().UTC(),
		Status:    status,
	}

	c.messages = append(c.messages, msg)
	c.totalChars += len(content)

	c.trimToMessageLimit()
	c.trimToCharacterLimit()

	return msg
}

// trimToMessageLimit removes oldest messages if over the message count limit.
// Must be called with lock held.
func (c *Conversation) trimToMessageLimit() {
	if c.maxMessages <= 0 {
		return
	}
	for len(c.messages) > c.maxMessages {
		removed := c.messages[0]
		c.messages = c.messages[1:]
		c.totalChars -= len(removed.Content)
	}
}

// trimToCharacterLimit removes oldest messages if over the character limit.
// Keeps at least one message even if it exceeds the limit. Must be called
// with lock held.
func (c *Conversation) trimToCharacterLimit() {
	if c.maxCharacters <= 0 {
		return
	}
	for c.totalChars > c.maxCharacters && len(c.messages) > 1 {
		removed := c.messages[0]
		c.messages = c.messages[1:]
		c.totalChars -= len(removed.Content)
	}
}

// Messages returns a copy of the transcript.
func (c *Conversation) Messages() []ChatMessage {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]ChatMessage, len(c.messages))
	copy(result, c.messages)
	return result
}

// ConversationID returns the backend conversation id, if captured.
func (c *Conversation) ConversationID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.conversationID
}

// BindConversationID captures the backend conversation id from the first
// response. Once set, the id is reused for all subsequent turns so the
// backend retains dialogue memory.
func (c *Conversation) BindConversationID(id string) {
	if id == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conversationID == "" {
		c.conversationID = id
	}
}

// Stats holds transcript usage statistics.
type Stats struct {
	MessageCount  int `json:"message_count"`
	TotalChars    int `json:"total_chars"`
	MaxMessages   int `json:"max_messages"`
	MaxCharacters int `json:"max_characters"`
}

// Stats returns transcript usage statistics.
func (c *Conversation) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Stats{
		MessageCount:  len(c.messages),
		TotalChars:    c.totalChars,
		MaxMessages:   c.maxMessages,
		MaxCharacters: c.maxCharacters,
	}
}

// Store maps session keys to conversations.
type Store struct {
	sessions map[string]*Conversation
	mu       sync.RWMutex
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*Conversation)}
}

// GetOrCreate returns the conversation for a session key, creating it on
// first use.
func (s *Store) GetOrCreate(key string) *Conversation {
	s.mu.RLock()
	conv, ok := s.sessions[key]
	s.mu.RUnlock()
	if ok {
		return conv
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check after acquiring write lock
	if conv, ok = s.sessions[key]; ok {
		return conv
	}

	conv = NewConversation()
	s.sessions[key] = conv
	return conv
}

// Clear drops the conversation for a session key.
func (s *Store) Clear(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, key)
}
