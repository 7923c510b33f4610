package mocks

import (
	"fmt"

	"github.com/mcoot/handicap-tracker/internal/dependencies/ids"
)

// MockIDs hands out queued IDs, then a predictable sequence
type MockIDs struct {
	Queued []string
	next   int
}

var _ ids.Generator = (*MockIDs)(nil)

// NewMockIDs creates a MockIDs with the given IDs queued
func NewMockIDs(queued ...string) *MockIDs {
	return &MockIDs{Queued: queued}
}

// NewID returns the next queued ID, or "id-N" once the queue is exhausted
func (m *MockIDs) NewID() string {
	m.next++
	if m.next <= len(m.Queued) {
		return m.Queued[m.next-1]
	}
	return fmt.Sprintf("id-%d", m.next)
}
