package lark

import (
	"encoding/json"
	"strings"
)

// EventTypeMessageReceive is the event type of an incoming chat message
const EventTypeMessageReceive = "im.message.receive_v1"

// Callback is the body of an event subscription request. It is either a URL
// verification handshake (Challenge set) or an event envelope.
type Callback struct {
	Challenge json.RawMessage `json:"challenge"`
	Type      string          `json:"type"`
	Schema    string          `json:"schema"`
	Header    EventHeader     `json:"header"`
	Event     json.RawMessage `json:"event"`
}

// EventHeader carries the delivery metadata of an event
type EventHeader struct {
	EventID    string `json:"event_id"`
	EventType  string `json:"event_type"`
	CreateTime string `json:"create_time"`
	Token      string `json:"token"`
	AppID      string `json:"app_id"`
	TenantKey  string `json:"tenant_key"`
}

// MessageEvent is the payload of im.message.receive_v1
type MessageEvent struct {
	EventType string  `json:"event_type"`
	Sender    Sender  `json:"sender"`
	Message   Message `json:"message"`
}

// Sender identifies who sent the message
type Sender struct {
	SenderID struct {
		UserID string `json:"user_id"`
		OpenID string `json:"open_id"`
	} `json:"sender_id"`
	SenderType string `json:"sender_type"`
}

// Message is the chat message inside a MessageEvent
type Message struct {
	MessageID   string `json:"message_id"`
	ChatID      string `json:"chat_id"`
	ChatType    string `json:"chat_type"`
	MessageType string `json:"message_type"`
	Content     string `json:"content"`
}

// ParseCallback decodes a callback body
func ParseCallback(body []byte) (*Callback, error) {
	var cb Callback
	if err := json.Unmarshal(body, &cb); err != nil {
		return nil, err
	}
	return &cb, nil
}

// IsChallenge reports whether the callback is a verification handshake
func (c *Callback) IsChallenge() bool {
	return len(c.Challenge) > 0
}

// MessageEvent decodes the event payload. A payload that is missing or has an
// unexpected shape yields an empty event rather than an error.
func (c *Callback) MessageEvent() MessageEvent {
	var ev MessageEvent
	if len(c.Event) > 0 {
		_ = json.Unmarshal(c.Event, &ev)
	}
	return ev
}

// EventType returns the header event type, falling back to the one carried
// inside the event payload
func (c *Callback) EventType() string {
	if c.Header.EventType != "" {
		return c.Header.EventType
	}
	return c.MessageEvent().EventType
}

// Text extracts the plain text of the message. Content is normally a JSON
// object {"text": ...}; anything that does not decode as such is used as-is.
func (m Message) Text() string {
	var content *struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal([]byte(m.Content), &content); err != nil || content == nil {
		return strings.TrimSpace(m.Content)
	}
	return strings.TrimSpace(content.Text)
}
