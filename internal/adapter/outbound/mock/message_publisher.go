// Package mock provides in-memory publisher implementations for
// development and tests that should not touch NATS.
package mock

import (
	"context"
	"sync"

	"swiftscope/internal/domain/messaging"
)

// MessagePublisher records published jobs and DLQ messages instead of
// sending them anywhere. It implements both publishing ports.
type MessagePublisher struct {
	mu            sync.Mutex
	publishedJobs []messaging.FileAnalysisJobMessage
	dlqMessages   []messaging.DLQMessage
	publishErr    error
}

// NewMessagePublisher creates a recording publisher.
func NewMessagePublisher() *MessagePublisher {
	return &MessagePublisher{}
}

// FailWith makes every subsequent publish return err. Pass nil to restore
// normal recording.
func (m *MessagePublisher) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.publishErr = err
}

// PublishFileAnalysisJob records an analysis job message.
func (m *MessagePublisher) PublishFileAnalysisJob(_ context.Context, message messaging.FileAnalysisJobMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.publishErr != nil {
		return m.publishErr
	}
	m.publishedJobs = append(m.publishedJobs, message)
	return nil
}

// PublishDLQMessage records a dead-lettered message.
func (m *MessagePublisher) PublishDLQMessage(_ context.Context, message messaging.DLQMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.publishErr != nil {
		return m.publishErr
	}
	m.dlqMessages = append(m.dlqMessages, message)
	return nil
}

// PublishedJobs returns a copy of all recorded job messages.
func (m *MessagePublisher) PublishedJobs() []messaging.FileAnalysisJobMessage {
	m.mu.Lock()
	defer m.mu.Unlock()

	jobs := make([]messaging.FileAnalysisJobMessage, len(m.publishedJobs))
	copy(jobs, m.publishedJobs)
	return jobs
}

// DLQMessages returns a copy of all recorded DLQ messages.
func (m *MessagePublisher) DLQMessages() []messaging.DLQMessage {
	m.mu.Lock()
	defer m.mu.Unlock()

	msgs := make([]messaging.DLQMessage, len(m.dlqMessages))
	copy(msgs, m.dlqMessages)
	return msgs
}

// Reset clears everything recorded so far.
func (m *MessagePublisher) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.publishedJobs = nil
	m.dlqMessages = nil
}
