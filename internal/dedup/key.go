package dedup

import (
	"fmt"
	"strings"
)

// Subject is what a delivery can be deduplicated on
type Subject struct {
	EventID string
	ChatID  string
	Text    string
}

// KeyFunc derives the dedup key of a delivery. An empty key means the
// delivery cannot be identified and is processed without a dedup check.
type KeyFunc func(Subject) string

// Identity policy names
const (
	PolicyDelivery = "delivery"
	PolicySemantic = "semantic"
)

// DeliveryKey identifies a delivery by the platform's event id. Only literal
// redeliveries are suppressed; two user actions are never merged.
func DeliveryKey(s Subject) string {
	if s.EventID == "" {
		return ""
	}
	return "lark_event:" + s.EventID
}

// SemanticKey identifies a delivery by what was asked and where. A repeated
// question in the same chat within the window is suppressed even when the
// user sent it on purpose.
func SemanticKey(s Subject) string {
	text := NormalizeText(s.Text)
	if s.ChatID == "" || text == "" {
		return ""
	}
	return "lark_query:" + s.ChatID + ":" + text
}

// NormalizeText trims surrounding whitespace only. Inner spacing is kept
// as sent, since name matching is exact on the trimmed text and two texts
// that resolve differently must not share a key.
func NormalizeText(text string) string {
	return strings.TrimSpace(text)
}

// KeyFuncFor returns the KeyFunc for a policy name
func KeyFuncFor(policy string) (KeyFunc, error) {
	switch policy {
	case PolicyDelivery:
		return DeliveryKey, nil
	case PolicySemantic:
		return SemanticKey, nil
	}
	return nil, fmt.Errorf("unknown dedup identity policy: %s", policy)
}
