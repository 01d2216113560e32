package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"swiftscope/internal/config"
	"swiftscope/internal/domain/messaging"
	"swiftscope/internal/port/inbound"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ inbound.Consumer = (*NATSConsumer)(nil)

type stubJobProcessor struct {
	err   error
	calls int
	last  messaging.FileAnalysisJobMessage
}

func (s *stubJobProcessor) ProcessJob(_ context.Context, message messaging.FileAnalysisJobMessage) error {
	s.calls++
	s.last = message
	return s.err
}

func (s *stubJobProcessor) GetHealthStatus() inbound.JobProcessorHealthStatus {
	return inbound.JobProcessorHealthStatus{IsReady: true}
}

func (s *stubJobProcessor) GetMetrics() inbound.JobProcessorMetrics {
	return inbound.JobProcessorMetrics{}
}

func (s *stubJobProcessor) Cleanup() error { return nil }

type spyDLQPublisher struct {
	err      error
	messages []messaging.DLQMessage
}

func (s *spyDLQPublisher) PublishDLQMessage(_ context.Context, message messaging.DLQMessage) error {
	s.messages = append(s.messages, message)
	return s.err
}

func validConsumerConfig() ConsumerConfig {
	return ConsumerConfig{
		Subject:       "analysis.file",
		QueueGroup:    "analysis-workers",
		DurableName:   "analysis-worker",
		AckWait:       30 * time.Second,
		MaxDeliver:    3,
		MaxAckPending: 100,
	}
}

func testNATSConfig() config.NATSConfig {
	return config.NATSConfig{URL: "nats://localhost:4222"}
}

func jobMessageFixture() messaging.FileAnalysisJobMessage {
	return messaging.NewFileAnalysisJobMessage(
		uuid.New(),
		"/srv/projects/app",
		"Sources/App/Main.swift",
		messaging.AnalysisOptions{MinVisibility: "internal"},
	)
}

func encodedJobMessage(t *testing.T) *nats.Msg {
	t.Helper()

	data, err := json.Marshal(jobMessageFixture())
	require.NoError(t, err)
	return &nats.Msg{Subject: "analysis.file", Data: data}
}

func TestNewNATSConsumer(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ConsumerConfig)
		wantErr string
	}{
		{name: "valid configuration", mutate: func(*ConsumerConfig) {}},
		{
			name:    "empty subject",
			mutate:  func(c *ConsumerConfig) { c.Subject = "" },
			wantErr: "subject cannot be empty",
		},
		{
			name:    "empty queue group",
			mutate:  func(c *ConsumerConfig) { c.QueueGroup = "" },
			wantErr: "queue group cannot be empty",
		},
		{
			name:    "empty durable name",
			mutate:  func(c *ConsumerConfig) { c.DurableName = "" },
			wantErr: "durable name cannot be empty",
		},
		{
			name:    "zero ack wait",
			mutate:  func(c *ConsumerConfig) { c.AckWait = 0 },
			wantErr: "ack wait duration must be positive",
		},
		{
			name:    "zero max deliver",
			mutate:  func(c *ConsumerConfig) { c.MaxDeliver = 0 },
			wantErr: "max deliver count must be positive",
		},
		{
			name:    "zero max ack pending",
			mutate:  func(c *ConsumerConfig) { c.MaxAckPending = 0 },
			wantErr: "max ack pending must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConsumerConfig()
			tt.mutate(&cfg)

			consumer, err := NewNATSConsumer(cfg, testNATSConfig(), &stubJobProcessor{}, nil)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Nil(t, consumer)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, consumer)
		})
	}
}

func TestNewNATSConsumerRequiresProcessor(t *testing.T) {
	_, err := NewNATSConsumer(validConsumerConfig(), testNATSConfig(), nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "job processor cannot be nil")
}

func TestNewNATSConsumerAppliesFetchDefaults(t *testing.T) {
	consumer, err := NewNATSConsumer(validConsumerConfig(), testNATSConfig(), &stubJobProcessor{}, nil)
	require.NoError(t, err)

	assert.Equal(t, defaultFetchBatch, consumer.config.FetchBatch)
	assert.Equal(t, defaultFetchTimeout, consumer.config.FetchTimeout)
}

func TestConsumerAccessors(t *testing.T) {
	consumer, err := NewNATSConsumer(validConsumerConfig(), testNATSConfig(), &stubJobProcessor{}, nil)
	require.NoError(t, err)

	assert.Equal(t, "analysis-workers", consumer.QueueGroup())
	assert.Equal(t, "analysis.file", consumer.Subject())
	assert.Equal(t, "analysis-worker", consumer.DurableName())

	var nilConsumer *NATSConsumer
	assert.Empty(t, nilConsumer.QueueGroup())
	assert.Empty(t, nilConsumer.Subject())
	assert.Empty(t, nilConsumer.DurableName())
}

func TestConsumerInitialHealth(t *testing.T) {
	consumer, err := NewNATSConsumer(validConsumerConfig(), testNATSConfig(), &stubJobProcessor{}, nil)
	require.NoError(t, err)

	health := consumer.Health()
	assert.False(t, health.IsRunning)
	assert.False(t, health.IsConnected)
	assert.Equal(t, "analysis-workers", health.QueueGroup)
	assert.Equal(t, "analysis.file", health.Subject)

	stats := consumer.GetStats()
	assert.Zero(t, stats.MessagesReceived)
	assert.False(t, stats.ActiveSince.IsZero())
}

func TestStopWithoutStartIsIdempotent(t *testing.T) {
	consumer, err := NewNATSConsumer(validConsumerConfig(), testNATSConfig(), &stubJobProcessor{}, nil)
	require.NoError(t, err)

	require.NoError(t, consumer.Stop(context.Background()))
	require.NoError(t, consumer.Stop(context.Background()))
}

func TestProcessMessageSuccess(t *testing.T) {
	processor := &stubJobProcessor{}
	consumer, err := NewNATSConsumer(validConsumerConfig(), testNATSConfig(), processor, nil)
	require.NoError(t, err)

	msg := encodedJobMessage(t)
	consumer.processMessage(msg)

	assert.Equal(t, 1, processor.calls)
	assert.Equal(t, "Sources/App/Main.swift", processor.last.FilePath)

	stats := consumer.GetStats()
	assert.Equal(t, int64(1), stats.MessagesReceived)
	assert.Equal(t, int64(1), stats.MessagesProcessed)
	assert.Equal(t, int64(len(msg.Data)), stats.BytesReceived)

	health := consumer.Health()
	assert.Equal(t, int64(1), health.MessagesHandled)
	assert.Zero(t, health.ErrorCount)
}

func TestProcessMessageMalformedPayload(t *testing.T) {
	processor := &stubJobProcessor{}
	consumer, err := NewNATSConsumer(validConsumerConfig(), testNATSConfig(), processor, nil)
	require.NoError(t, err)

	consumer.processMessage(&nats.Msg{Subject: "analysis.file", Data: []byte("{not json")})

	assert.Zero(t, processor.calls)

	stats := consumer.GetStats()
	assert.Equal(t, int64(1), stats.MessagesReceived)
	assert.Equal(t, int64(1), stats.MessagesFailed)

	health := consumer.Health()
	assert.Equal(t, int64(1), health.ErrorCount)
	assert.Contains(t, health.LastError, "unmarshal")
}

func TestProcessMessageInvalidJob(t *testing.T) {
	processor := &stubJobProcessor{}
	consumer, err := NewNATSConsumer(validConsumerConfig(), testNATSConfig(), processor, nil)
	require.NoError(t, err)

	job := jobMessageFixture()
	job.FilePath = ""
	data, err := json.Marshal(job)
	require.NoError(t, err)

	consumer.processMessage(&nats.Msg{Subject: "analysis.file", Data: data})

	assert.Zero(t, processor.calls)
	assert.Contains(t, consumer.Health().LastError, "invalid message")
}

func TestProcessMessageTemporaryFailureRedelivers(t *testing.T) {
	processor := &stubJobProcessor{err: errors.New("dial tcp 10.0.0.1:5432: connection refused")}
	dlq := &spyDLQPublisher{}
	consumer, err := NewNATSConsumer(validConsumerConfig(), testNATSConfig(), processor, dlq)
	require.NoError(t, err)

	consumer.processMessage(encodedJobMessage(t))

	// Temporary failure below the delivery limit is left for redelivery,
	// not parked.
	assert.Empty(t, dlq.messages)
	assert.Equal(t, int64(1), consumer.GetStats().MessagesFailed)
	assert.Contains(t, consumer.Health().LastError, "job processing failed")
}

func TestProcessMessagePermanentFailureParksImmediately(t *testing.T) {
	processor := &stubJobProcessor{err: errors.New("syntax error in declaration")}
	dlq := &spyDLQPublisher{}
	consumer, err := NewNATSConsumer(validConsumerConfig(), testNATSConfig(), processor, dlq)
	require.NoError(t, err)

	consumer.processMessage(encodedJobMessage(t))

	require.Len(t, dlq.messages, 1)
	parked := dlq.messages[0]
	assert.Equal(t, messaging.FailureTypeParseError, parked.FailureType)
	assert.Contains(t, parked.DeadLetterReason, "permanent failure")
	assert.Equal(t, 1, parked.TotalFailures)
	assert.Equal(t, "worker", parked.FailureContext.Component)
	assert.Equal(t, "Sources/App/Main.swift", parked.OriginalMessage.FilePath)
}

func TestProcessMessageExhaustedDeliveriesParked(t *testing.T) {
	cfg := validConsumerConfig()
	cfg.MaxDeliver = 1

	processor := &stubJobProcessor{err: errors.New("analysis timed out")}
	dlq := &spyDLQPublisher{}
	consumer, err := NewNATSConsumer(cfg, testNATSConfig(), processor, dlq)
	require.NoError(t, err)

	consumer.processMessage(encodedJobMessage(t))

	require.Len(t, dlq.messages, 1)
	assert.Equal(t, messaging.FailureTypeTimeoutError, dlq.messages[0].FailureType)
	assert.Equal(t, "max deliveries exhausted", dlq.messages[0].DeadLetterReason)
}

func TestProcessMessagePermanentFailureWithoutDLQ(t *testing.T) {
	processor := &stubJobProcessor{err: errors.New("syntax error in declaration")}
	consumer, err := NewNATSConsumer(validConsumerConfig(), testNATSConfig(), processor, nil)
	require.NoError(t, err)

	// Must not panic with no dead letter publisher configured.
	consumer.processMessage(encodedJobMessage(t))

	assert.Equal(t, int64(1), consumer.GetStats().MessagesFailed)
}

func TestProcessMessageDLQPublishFailure(t *testing.T) {
	processor := &stubJobProcessor{err: errors.New("syntax error in declaration")}
	dlq := &spyDLQPublisher{err: errors.New("nats: connection closed")}
	consumer, err := NewNATSConsumer(validConsumerConfig(), testNATSConfig(), processor, dlq)
	require.NoError(t, err)

	consumer.processMessage(encodedJobMessage(t))

	assert.Contains(t, consumer.Health().LastError, "dead letter publish failed")
}

func TestDeliveryCountWithoutMetadata(t *testing.T) {
	// Messages not bound to a JetStream subscription carry no metadata;
	// treat them as first deliveries.
	assert.Equal(t, 1, deliveryCount(&nats.Msg{Subject: "analysis.file"}))
}

func TestUpdateStatsAverages(t *testing.T) {
	consumer, err := NewNATSConsumer(validConsumerConfig(), testNATSConfig(), &stubJobProcessor{}, nil)
	require.NoError(t, err)

	consumer.updateStats(true, 10*time.Millisecond, 100)
	consumer.updateStats(true, 30*time.Millisecond, 100)
	consumer.updateStats(false, 5*time.Millisecond, 100)

	stats := consumer.GetStats()
	assert.Equal(t, int64(3), stats.MessagesReceived)
	assert.Equal(t, int64(2), stats.MessagesProcessed)
	assert.Equal(t, int64(1), stats.MessagesFailed)
	assert.Equal(t, int64(300), stats.BytesReceived)
	assert.Equal(t, 20*time.Millisecond, stats.AverageProcessTime)
	assert.Equal(t, 5*time.Millisecond, stats.LastProcessTime)
	assert.Positive(t, stats.MessageRate)
}
