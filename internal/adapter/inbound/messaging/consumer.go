// Package messaging implements the JetStream consumer side of the bulk
// indexing pipeline. Workers pull file analysis jobs from the ANALYSIS
// work queue, hand them to the job processor, and park exhausted or
// permanently failed jobs on the dead letter stream.
package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"swiftscope/internal/application/common/slogger"
	"swiftscope/internal/config"
	"swiftscope/internal/port/inbound"
	"swiftscope/internal/port/outbound"

	"github.com/nats-io/nats.go"
)

const (
	// analysisStreamName is the JetStream stream holding pending analysis
	// jobs.
	analysisStreamName = "ANALYSIS"

	// streamRetentionHours bounds how long unconsumed jobs are kept.
	streamRetentionHours = 24

	// defaultFetchBatch is the number of messages pulled per fetch.
	defaultFetchBatch = 10

	// defaultFetchTimeout is the maximum wait per fetch before polling the
	// stop channel again.
	defaultFetchTimeout = 5 * time.Second

	// natsConnectionTimeoutSeconds is the dial timeout.
	natsConnectionTimeoutSeconds = 5
)

// ConsumerConfig holds configuration for the analysis job consumer.
type ConsumerConfig struct {
	Subject       string
	QueueGroup    string
	DurableName   string
	AckWait       time.Duration
	MaxDeliver    int
	MaxAckPending int
	FetchBatch    int
	FetchTimeout  time.Duration
}

// NATSConsumer pulls analysis job messages from a durable JetStream
// consumer. Multiple workers binding the same durable name compete for
// messages, which gives queue-group semantics on a work queue stream.
type NATSConsumer struct {
	config       ConsumerConfig
	natsConfig   config.NATSConfig
	jobProcessor inbound.JobProcessor
	dlq          outbound.DLQPublisher

	conn         *nats.Conn
	js           nats.JetStreamContext
	subscription *nats.Subscription

	running bool
	stopCh  chan struct{}
	done    chan struct{}
	mu      sync.RWMutex

	stats             inbound.ConsumerStats
	health            inbound.ConsumerHealthStatus
	totalProcessNanos int64
}

// NewNATSConsumer creates a new analysis job consumer. The DLQ publisher
// may be nil, in which case exhausted jobs are dropped with a log line
// instead of being parked.
func NewNATSConsumer(
	consumerConfig ConsumerConfig,
	natsConfig config.NATSConfig,
	processor inbound.JobProcessor,
	dlq outbound.DLQPublisher,
) (*NATSConsumer, error) {
	if err := validateConsumerConfig(consumerConfig); err != nil {
		return nil, fmt.Errorf("invalid consumer configuration: %w", err)
	}

	if processor == nil {
		return nil, errors.New("job processor cannot be nil")
	}

	if consumerConfig.FetchBatch <= 0 {
		consumerConfig.FetchBatch = defaultFetchBatch
	}
	if consumerConfig.FetchTimeout <= 0 {
		consumerConfig.FetchTimeout = defaultFetchTimeout
	}

	return &NATSConsumer{
		config:       consumerConfig,
		natsConfig:   natsConfig,
		jobProcessor: processor,
		dlq:          dlq,
		stats: inbound.ConsumerStats{
			ActiveSince: time.Now(),
		},
		health: inbound.ConsumerHealthStatus{
			QueueGroup: consumerConfig.QueueGroup,
			Subject:    consumerConfig.Subject,
		},
	}, nil
}

// validateConsumerConfig performs validation of consumer configuration.
func validateConsumerConfig(config ConsumerConfig) error {
	if config.Subject == "" {
		return errors.New("subject cannot be empty")
	}
	if config.QueueGroup == "" {
		return errors.New("queue group cannot be empty")
	}
	if config.DurableName == "" {
		return errors.New("durable name cannot be empty")
	}
	if config.AckWait <= 0 {
		return errors.New("ack wait duration must be positive")
	}
	if config.MaxDeliver <= 0 {
		return errors.New("max deliver count must be positive")
	}
	if config.MaxAckPending <= 0 {
		return errors.New("max ack pending must be positive")
	}
	return nil
}

// Start connects to NATS, ensures the stream and durable consumer exist,
// and begins the pull loop.
func (n *NATSConsumer) Start(_ context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.running {
		return fmt.Errorf("consumer already running for subject %s", n.config.Subject)
	}

	if err := n.connect(); err != nil {
		return err
	}

	if err := n.ensureStreamExists(); err != nil {
		n.teardownLocked()
		return err
	}

	if err := n.createDurableConsumer(); err != nil {
		n.teardownLocked()
		return err
	}

	if err := n.startSubscription(); err != nil {
		n.teardownLocked()
		return err
	}

	n.running = true
	n.health.IsRunning = true
	n.health.IsConnected = true
	n.stats.ActiveSince = time.Now()
	n.stopCh = make(chan struct{})
	n.done = make(chan struct{})

	go n.messageLoop(n.stopCh, n.done)

	slogger.InfoNoCtx("Analysis job consumer started", slogger.Fields{
		"subject":     n.config.Subject,
		"queue_group": n.config.QueueGroup,
		"durable":     n.config.DurableName,
	})

	return nil
}

// Stop halts the pull loop and closes the connection. The durable
// consumer stays on the server so pending jobs survive worker restarts.
func (n *NATSConsumer) Stop(ctx context.Context) error {
	n.mu.Lock()
	if !n.running {
		n.mu.Unlock()
		return nil
	}
	n.running = false
	close(n.stopCh)
	done := n.done
	n.mu.Unlock()

	var waitErr error
	select {
	case <-done:
	case <-ctx.Done():
		waitErr = fmt.Errorf("message loop did not stop in time: %w", ctx.Err())
	}

	n.mu.Lock()
	n.teardownLocked()
	n.health.IsRunning = false
	n.health.IsConnected = false
	n.mu.Unlock()

	return waitErr
}

// connect dials NATS and opens a JetStream context. Callers must hold the
// write lock.
func (n *NATSConsumer) connect() error {
	opts := []nats.Option{
		nats.MaxReconnects(n.natsConfig.MaxReconnects),
		nats.ReconnectWait(n.natsConfig.ReconnectWait),
		nats.Timeout(natsConnectionTimeoutSeconds * time.Second),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			n.mu.Lock()
			n.health.IsConnected = true
			n.mu.Unlock()
		}),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			n.mu.Lock()
			n.health.IsConnected = false
			if err != nil {
				n.health.LastError = err.Error()
			}
			n.mu.Unlock()
		}),
	}

	conn, err := nats.Connect(n.natsConfig.URL, opts...)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to create JetStream context: %w", err)
	}

	n.conn = conn
	n.js = js
	return nil
}

// ensureStreamExists creates the analysis work queue stream if it doesn't
// exist, so a worker can start before the first index run.
func (n *NATSConsumer) ensureStreamExists() error {
	if _, err := n.js.StreamInfo(analysisStreamName); err == nil {
		return nil
	}

	streamConfig := &nats.StreamConfig{
		Name:      analysisStreamName,
		Subjects:  []string{n.config.Subject},
		Storage:   nats.FileStorage,
		Retention: nats.WorkQueuePolicy,
		MaxAge:    streamRetentionHours * time.Hour,
		Replicas:  1,
	}

	if _, err := n.js.AddStream(streamConfig); err != nil {
		return fmt.Errorf("failed to create stream %s: %w", analysisStreamName, err)
	}

	return nil
}

// createDurableConsumer creates the durable pull consumer on the analysis
// stream. Pull consumers carry no deliver group; competing workers share
// the durable instead.
func (n *NATSConsumer) createDurableConsumer() error {
	consumerConfig := &nats.ConsumerConfig{
		Durable:       n.config.DurableName,
		FilterSubject: n.config.Subject,
		AckPolicy:     nats.AckExplicitPolicy,
		AckWait:       n.config.AckWait,
		MaxDeliver:    n.config.MaxDeliver,
		MaxAckPending: n.config.MaxAckPending,
		DeliverPolicy: nats.DeliverAllPolicy,
		ReplayPolicy:  nats.ReplayInstantPolicy,
	}

	_, err := n.js.AddConsumer(analysisStreamName, consumerConfig)
	if err == nil {
		return nil
	}

	// Another worker may have won the race to create it.
	if _, infoErr := n.js.ConsumerInfo(analysisStreamName, n.config.DurableName); infoErr == nil {
		return nil
	}

	return fmt.Errorf("failed to create durable consumer %s: %w", n.config.DurableName, err)
}

// startSubscription binds a pull subscription to the durable consumer.
func (n *NATSConsumer) startSubscription() error {
	sub, err := n.js.PullSubscribe(
		n.config.Subject,
		n.config.DurableName,
		nats.Bind(analysisStreamName, n.config.DurableName),
	)
	if err != nil {
		return fmt.Errorf("failed to create pull subscription: %w", err)
	}

	n.subscription = sub
	return nil
}

// teardownLocked releases the subscription and connection. Callers must
// hold the write lock.
func (n *NATSConsumer) teardownLocked() {
	if n.subscription != nil {
		_ = n.subscription.Unsubscribe()
		n.subscription = nil
	}
	if n.conn != nil {
		n.conn.Close()
		n.conn = nil
		n.js = nil
	}
}

// Health returns the current health status of the consumer.
func (n *NATSConsumer) Health() inbound.ConsumerHealthStatus {
	n.mu.RLock()
	defer n.mu.RUnlock()

	return n.health
}

// GetStats returns consumer statistics.
func (n *NATSConsumer) GetStats() inbound.ConsumerStats {
	n.mu.RLock()
	defer n.mu.RUnlock()

	return n.stats
}

// QueueGroup returns the consumer's queue group.
func (n *NATSConsumer) QueueGroup() string {
	if n == nil {
		return ""
	}
	return n.config.QueueGroup
}

// Subject returns the consumer's subject.
func (n *NATSConsumer) Subject() string {
	if n == nil {
		return ""
	}
	return n.config.Subject
}

// DurableName returns the consumer's durable name.
func (n *NATSConsumer) DurableName() string {
	if n == nil {
		return ""
	}
	return n.config.DurableName
}
