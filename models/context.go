package models

import "time"

// ConversationContext is the rolling transcript kept per session, used to
// give generation prompts recent conversational grounding.
type ConversationContext struct {
	History   []string  `json:"history"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Tail returns up to n most recent history lines.
func (c *ConversationContext) Tail(n int) []string {
	if n <= 0 || len(c.History) == 0 {
		return nil
	}
	if len(c.History) <= n {
		return c.History
	}
	return c.History[len(c.History)-n:]
}
