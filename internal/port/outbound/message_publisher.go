package outbound

import (
	"context"

	"swiftscope/internal/domain/messaging"
)

// MessagePublisher defines the outbound port for publishing file analysis
// jobs to the work queue.
type MessagePublisher interface {
	PublishFileAnalysisJob(ctx context.Context, message messaging.FileAnalysisJobMessage) error
}

// DLQPublisher publishes failed jobs to the dead letter queue.
type DLQPublisher interface {
	PublishDLQMessage(ctx context.Context, message messaging.DLQMessage) error
}

// MessagePublisherHealth defines health monitoring capabilities for
// message publishers.
type MessagePublisherHealth interface {
	GetConnectionHealth() MessagePublisherHealthStatus
	GetMessageMetrics() MessagePublisherMetrics
}

// MessagePublisherHealthStatus represents the health status of a message
// publisher.
type MessagePublisherHealthStatus struct {
	Connected        bool   `json:"connected"`
	LastError        string `json:"last_error,omitempty"`
	Uptime           string `json:"uptime"`
	Reconnects       int    `json:"reconnects"`
	JetStreamEnabled bool   `json:"jetstream_enabled"`
}

// MessagePublisherMetrics represents message publishing metrics.
type MessagePublisherMetrics struct {
	PublishedCount int64  `json:"published_count"`
	FailedCount    int64  `json:"failed_count"`
	AverageLatency string `json:"average_latency"`
}
