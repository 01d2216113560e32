package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"swiftscope/internal/config"
	"swiftscope/internal/domain/messaging"
	"swiftscope/internal/port/outbound"

	"github.com/nats-io/nats.go"
)

const (
	// NATS connection timeout.
	natsConnectionTimeoutSeconds = 5

	// Stream configuration.
	streamMaxAgeHours = 24
	dlqMaxAgeDays     = 7

	// AnalysisStreamName is the JetStream stream holding pending analysis
	// jobs.
	AnalysisStreamName = "ANALYSIS"

	// AnalysisJobSubject is the subject the index command publishes per-file
	// jobs to and workers consume from.
	AnalysisJobSubject = "analysis.file"

	// DLQStreamName is the stream holding jobs that exhausted their retries.
	DLQStreamName = "ANALYSIS_DLQ"

	// DLQSubject is the dead letter subject.
	DLQSubject = "analysis.dlq"
)

// MessageMetrics tracks message publishing metrics.
type MessageMetrics struct {
	PublishedCount    int64         `json:"published_count"`
	FailedCount       int64         `json:"failed_count"`
	AverageLatency    time.Duration `json:"average_latency"`
	LastPublishedTime time.Time     `json:"last_published_time"`
}

// NATSMessagePublisher publishes analysis job and dead letter messages to
// NATS JetStream. One instance serves both the work queue and the DLQ; the
// two streams share a connection, metrics, and circuit breaker.
type NATSMessagePublisher struct {
	config config.NATSConfig
	conn   *nats.Conn
	js     nats.JetStreamContext

	mutex          sync.RWMutex
	connected      bool
	connectedAt    time.Time
	reconnectCount int
	lastError      error
	messageMetrics MessageMetrics

	// Circuit breaker state
	circuitBreakerOpen bool
	lastFailureTime    time.Time
	failureCount       int
}

// NewNATSMessagePublisher creates a new NATS message publisher. The
// publisher is not connected until Connect is called.
func NewNATSMessagePublisher(cfg config.NATSConfig) (*NATSMessagePublisher, error) {
	if cfg.URL == "" {
		return nil, errors.New("NATS URL cannot be empty")
	}
	if !strings.HasPrefix(cfg.URL, "nats://") {
		return nil, errors.New("invalid NATS URL scheme")
	}
	if cfg.MaxReconnects < 0 {
		return nil, errors.New("max reconnects cannot be negative")
	}
	if cfg.ReconnectWait < 0 {
		return nil, errors.New("reconnect wait cannot be negative")
	}

	return &NATSMessagePublisher{config: cfg}, nil
}

// Connect establishes the connection to the NATS server and opens a
// JetStream context.
func (n *NATSMessagePublisher) Connect() error {
	opts := []nats.Option{
		nats.MaxReconnects(n.config.MaxReconnects),
		nats.ReconnectWait(n.config.ReconnectWait),
		nats.Timeout(natsConnectionTimeoutSeconds * time.Second),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			n.mutex.Lock()
			n.reconnectCount++
			n.mutex.Unlock()
			n.updateConnectionHealth(true, nil)
		}),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err == nil {
				err = errors.New("connection lost")
			}
			n.updateConnectionHealth(false, err)
		}),
	}

	conn, err := nats.Connect(n.config.URL, opts...)
	if err != nil {
		n.updateConnectionHealth(false, err)
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		n.updateConnectionHealth(false, err)
		return fmt.Errorf("failed to create JetStream context: %w", err)
	}

	n.mutex.Lock()
	n.conn = conn
	n.js = js
	n.mutex.Unlock()

	n.updateConnectionHealth(true, nil)
	return nil
}

// Disconnect closes the NATS connection.
func (n *NATSMessagePublisher) Disconnect() error {
	n.mutex.Lock()
	if n.conn != nil {
		n.conn.Close()
		n.conn = nil
		n.js = nil
	}
	n.mutex.Unlock()

	n.updateConnectionHealth(false, nil)
	return nil
}

// EnsureStream creates the analysis and dead letter streams if they don't
// exist. The work stream and the DLQ bind disjoint subjects: a work queue
// stream must own its subjects exclusively.
func (n *NATSMessagePublisher) EnsureStream() error {
	n.mutex.RLock()
	js := n.js
	n.mutex.RUnlock()

	if js == nil {
		return errors.New("not connected to NATS server")
	}

	streams := []*nats.StreamConfig{
		{
			Name:      AnalysisStreamName,
			Subjects:  []string{AnalysisJobSubject},
			Storage:   nats.FileStorage,
			Retention: nats.WorkQueuePolicy,
			MaxAge:    streamMaxAgeHours * time.Hour, // Jobs expire after 1 day
			Replicas:  1,
		},
		{
			// Limits retention keeps parked jobs inspectable until they
			// age out.
			Name:     DLQStreamName,
			Subjects: []string{DLQSubject},
			Storage:  nats.FileStorage,
			MaxAge:   dlqMaxAgeDays * 24 * time.Hour,
			Replicas: 1,
		},
	}

	for _, streamConfig := range streams {
		if err := ensureStream(js, streamConfig); err != nil {
			return err
		}
	}

	return nil
}

// ensureStream creates a single stream, tolerating streams that already
// exist.
func ensureStream(js nats.JetStreamContext, cfg *nats.StreamConfig) error {
	_, err := js.AddStream(cfg)
	if err == nil {
		return nil
	}

	if _, infoErr := js.StreamInfo(cfg.Name); infoErr == nil {
		return nil
	}

	return fmt.Errorf("failed to create stream %s: %w", cfg.Name, err)
}

// PublishFileAnalysisJob publishes a file analysis job to the work queue.
func (n *NATSMessagePublisher) PublishFileAnalysisJob(ctx context.Context, message messaging.FileAnalysisJobMessage) error {
	if err := message.Validate(); err != nil {
		return fmt.Errorf("invalid analysis job message: %w", err)
	}

	return n.publish(ctx, AnalysisJobSubject, message)
}

// PublishDLQMessage publishes a failed job to the dead letter stream.
func (n *NATSMessagePublisher) PublishDLQMessage(ctx context.Context, message messaging.DLQMessage) error {
	if err := message.Validate(); err != nil {
		return fmt.Errorf("invalid dead letter message: %w", err)
	}

	return n.publish(ctx, DLQSubject, message)
}

func (n *NATSMessagePublisher) publish(ctx context.Context, subject string, payload any) error {
	start := time.Now()

	select {
	case <-ctx.Done():
		n.updateMetrics(false, time.Since(start))
		return ctx.Err()
	default:
	}

	if n.isCircuitBreakerOpen() {
		n.updateMetrics(false, time.Since(start))
		return errors.New("circuit breaker open: too many recent failures")
	}

	n.mutex.RLock()
	js := n.js
	n.mutex.RUnlock()

	if js == nil {
		n.updateMetrics(false, time.Since(start))
		return errors.New("not connected to NATS")
	}

	data, err := json.Marshal(payload)
	if err != nil {
		n.updateMetrics(false, time.Since(start))
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if _, err := js.PublishAsync(subject, data, nats.Context(ctx)); err != nil {
		n.updateMetrics(false, time.Since(start))
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}

	n.updateMetrics(true, time.Since(start))
	return nil
}

// GetConnectionHealth returns the current connection health status.
func (n *NATSMessagePublisher) GetConnectionHealth() outbound.MessagePublisherHealthStatus {
	n.mutex.RLock()
	defer n.mutex.RUnlock()

	status := outbound.MessagePublisherHealthStatus{
		Connected:        n.connected,
		JetStreamEnabled: n.js != nil,
		Reconnects:       n.reconnectCount,
	}

	if n.connected {
		status.Uptime = time.Since(n.connectedAt).String()
	} else {
		status.Uptime = "0s"
	}

	if n.lastError != nil {
		status.LastError = n.lastError.Error()
	}

	return status
}

// GetMessageMetrics returns current message publishing metrics.
func (n *NATSMessagePublisher) GetMessageMetrics() outbound.MessagePublisherMetrics {
	n.mutex.RLock()
	defer n.mutex.RUnlock()

	return outbound.MessagePublisherMetrics{
		PublishedCount: n.messageMetrics.PublishedCount,
		FailedCount:    n.messageMetrics.FailedCount,
		AverageLatency: n.messageMetrics.AverageLatency.String(),
	}
}

// updateConnectionHealth updates the connection health status.
func (n *NATSMessagePublisher) updateConnectionHealth(connected bool, err error) {
	n.mutex.Lock()
	defer n.mutex.Unlock()

	n.connected = connected

	if err != nil {
		n.lastError = err
	}

	if connected && n.connectedAt.IsZero() {
		n.connectedAt = time.Now()
	}
}

// updateMetrics updates message publishing metrics.
func (n *NATSMessagePublisher) updateMetrics(success bool, latency time.Duration) {
	n.mutex.Lock()
	defer n.mutex.Unlock()

	if success {
		n.messageMetrics.PublishedCount++
		n.messageMetrics.LastPublishedTime = time.Now()

		// Exponential moving average with alpha = 0.1
		if n.messageMetrics.AverageLatency == 0 {
			n.messageMetrics.AverageLatency = latency
		} else {
			n.messageMetrics.AverageLatency = time.Duration(
				0.9*float64(n.messageMetrics.AverageLatency) + 0.1*float64(latency),
			)
		}

		n.updateCircuitBreaker(true)
	} else {
		n.messageMetrics.FailedCount++
		n.updateCircuitBreaker(false)
	}
}

// updateCircuitBreaker updates circuit breaker state. Callers must hold
// the write lock.
func (n *NATSMessagePublisher) updateCircuitBreaker(success bool) {
	const maxFailures = 3

	if success {
		n.failureCount = 0
		n.circuitBreakerOpen = false
		return
	}

	n.failureCount++
	n.lastFailureTime = time.Now()

	if n.failureCount >= maxFailures {
		n.circuitBreakerOpen = true
	}
}

// isCircuitBreakerOpen checks if the circuit breaker is currently open,
// transitioning it back to closed once the open window has elapsed.
func (n *NATSMessagePublisher) isCircuitBreakerOpen() bool {
	const circuitOpenDuration = 30 * time.Second

	n.mutex.Lock()
	defer n.mutex.Unlock()

	if n.circuitBreakerOpen && time.Since(n.lastFailureTime) > circuitOpenDuration {
		n.circuitBreakerOpen = false
		n.failureCount = 0
	}

	return n.circuitBreakerOpen
}

// ResetCircuitBreaker closes the breaker and clears failure tracking.
func (n *NATSMessagePublisher) ResetCircuitBreaker() {
	n.mutex.Lock()
	defer n.mutex.Unlock()

	n.circuitBreakerOpen = false
	n.failureCount = 0
	n.lastFailureTime = time.Time{}
}
