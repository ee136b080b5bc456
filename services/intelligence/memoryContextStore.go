// File: service/ai/memoryContextStore.go
package ai

import (
	"context"
	"sync"
	"time"

	"frontdesk/models"
)

// MemoryContextStore is the in-process ContextStore used when no Redis is
// configured. Entries live until the session clears them.
type MemoryContextStore struct {
	mu       sync.Mutex
	contexts map[string]*models.ConversationContext
}

func NewMemoryContextStore() *MemoryContextStore {
	return &MemoryContextStore{contexts: make(map[string]*models.ConversationContext)}
}

func (s *MemoryContextStore) Get(ctx context.Context, sessionID string) (*models.ConversationContext, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	convCtx, ok := s.contexts[sessionID]
	if !ok {
		return &models.ConversationContext{}, nil
	}
	// Copy so callers never observe in-progress appends.
	out := &models.ConversationContext{
		History:   append([]string(nil), convCtx.History...),
		UpdatedAt: convCtx.UpdatedAt,
	}
	return out, nil
}

func (s *MemoryContextStore) Append(ctx context.Context, sessionID, line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	convCtx, ok := s.contexts[sessionID]
	if !ok {
		convCtx = &models.ConversationContext{}
		s.contexts[sessionID] = convCtx
	}
	convCtx.History = append(convCtx.History, line)
	convCtx.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryContextStore) Clear(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.contexts, sessionID)
	return nil
}
