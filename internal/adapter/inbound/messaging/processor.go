package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"swiftscope/internal/application/common/slogger"
	"swiftscope/internal/domain/messaging"

	"github.com/nats-io/nats.go"
)

// dlqPublishTimeout bounds how long a worker blocks parking a failed job.
const dlqPublishTimeout = 5 * time.Second

// messageLoop continuously fetches and processes messages until the stop
// channel closes or the subscription dies.
func (n *NATSConsumer) messageLoop(stopCh <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	for {
		select {
		case <-stopCh:
			return
		default:
		}

		n.mu.RLock()
		sub := n.subscription
		n.mu.RUnlock()

		if sub == nil {
			return
		}

		msgs, err := sub.Fetch(n.config.FetchBatch, nats.MaxWait(n.config.FetchTimeout))
		if err != nil {
			if errors.Is(err, nats.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			if errors.Is(err, nats.ErrConnectionClosed) || errors.Is(err, nats.ErrBadSubscription) {
				return
			}

			n.updateHealthOnError("fetch failed: " + err.Error())
			slogger.WarnNoCtx("Failed to fetch analysis jobs", slogger.Fields{
				"subject": n.config.Subject,
				"error":   err.Error(),
			})
			continue
		}

		for _, msg := range msgs {
			n.processMessage(msg)
		}
	}
}

// processMessage handles a single job message: decode, process, and
// acknowledge. Failed jobs are redelivered until MaxDeliver, then parked
// on the dead letter stream. Permanent failures are parked immediately;
// redelivering a job that cannot ever succeed just burns ack windows.
func (n *NATSConsumer) processMessage(msg *nats.Msg) {
	var jobMessage messaging.FileAnalysisJobMessage
	if err := json.Unmarshal(msg.Data, &jobMessage); err != nil {
		n.updateStats(false, 0, int64(len(msg.Data)))
		n.updateHealthOnError("failed to unmarshal message: " + err.Error())
		slogger.ErrorNoCtx("Discarding malformed analysis job message", slogger.Fields{
			"subject": n.config.Subject,
			"error":   err.Error(),
		})
		// A malformed payload never becomes valid on redelivery.
		_ = msg.Term()
		return
	}

	if err := jobMessage.Validate(); err != nil {
		n.updateStats(false, 0, int64(len(msg.Data)))
		n.updateHealthOnError("invalid message: " + err.Error())
		slogger.ErrorNoCtx("Discarding invalid analysis job message", slogger.Fields{
			"message_id": jobMessage.MessageID,
			"error":      err.Error(),
		})
		_ = msg.Term()
		return
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), jobMessage.AnalysisOptions.Timeout())
	err := n.jobProcessor.ProcessJob(ctx, jobMessage)
	cancel()

	n.updateStats(err == nil, time.Since(start), int64(len(msg.Data)))

	if err == nil {
		_ = msg.Ack()
		return
	}

	n.updateHealthOnError("job processing failed: " + err.Error())

	failureType := messaging.ClassifyFailureFromError(err.Error())
	deliveries := deliveryCount(msg)

	if failureType.IsPermanent() || deliveries >= n.config.MaxDeliver {
		n.parkOnDeadLetter(jobMessage, failureType, deliveries, err)
		_ = msg.Term()
		return
	}

	slogger.WarnNoCtx("Analysis job failed, will be redelivered", slogger.Fields{
		"message_id": jobMessage.MessageID,
		"file_path":  jobMessage.FilePath,
		"delivery":   deliveries,
		"error":      err.Error(),
	})
	_ = msg.Nak()
}

// deliveryCount reads the delivery attempt from JetStream metadata,
// defaulting to 1 when metadata is unavailable.
func deliveryCount(msg *nats.Msg) int {
	metadata, err := msg.Metadata()
	if err != nil {
		return 1
	}
	return int(metadata.NumDelivered)
}

// parkOnDeadLetter publishes the failed job to the dead letter stream.
func (n *NATSConsumer) parkOnDeadLetter(
	jobMessage messaging.FileAnalysisJobMessage,
	failureType messaging.FailureType,
	deliveries int,
	procErr error,
) {
	if n.dlq == nil {
		slogger.ErrorNoCtx("Dropping exhausted analysis job, no dead letter publisher configured", slogger.Fields{
			"message_id": jobMessage.MessageID,
			"file_path":  jobMessage.FilePath,
			"error":      procErr.Error(),
		})
		return
	}

	dlqMessage, err := messaging.TransformToDLQMessage(jobMessage, failureType, messaging.FailureContext{
		ErrorMessage:  procErr.Error(),
		Component:     "worker",
		Operation:     "process_job",
		CorrelationID: jobMessage.CorrelationID,
	}, "analysis")
	if err != nil {
		slogger.ErrorNoCtx("Failed to build dead letter message", slogger.Fields{
			"message_id": jobMessage.MessageID,
			"error":      err.Error(),
		})
		return
	}

	dlqMessage.TotalFailures = deliveries
	if failureType.IsPermanent() {
		dlqMessage.DeadLetterReason = "permanent failure: " + string(failureType)
	} else {
		dlqMessage.DeadLetterReason = "max deliveries exhausted"
	}

	ctx, cancel := context.WithTimeout(context.Background(), dlqPublishTimeout)
	defer cancel()

	if err := n.dlq.PublishDLQMessage(ctx, dlqMessage); err != nil {
		n.updateHealthOnError("dead letter publish failed: " + err.Error())
		slogger.ErrorNoCtx("Failed to park analysis job on dead letter stream", slogger.Fields{
			"message_id": jobMessage.MessageID,
			"error":      err.Error(),
		})
		return
	}

	slogger.InfoNoCtx("Parked failed analysis job on dead letter stream", slogger.Fields{
		"message_id":   jobMessage.MessageID,
		"file_path":    jobMessage.FilePath,
		"failure_type": string(failureType),
		"deliveries":   deliveries,
	})
}

// updateHealthOnError updates health status when an error occurs.
func (n *NATSConsumer) updateHealthOnError(errorMsg string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.health.ErrorCount++
	n.health.LastError = errorMsg
}

// updateStats updates consumer statistics in a thread-safe manner.
func (n *NATSConsumer) updateStats(success bool, processTime time.Duration, bytes int64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.stats.MessagesReceived++
	n.stats.BytesReceived += bytes

	if success {
		n.stats.MessagesProcessed++
		n.health.MessagesHandled++
		n.health.LastMessageTime = time.Now()
		n.totalProcessNanos += processTime.Nanoseconds()
	} else {
		n.stats.MessagesFailed++
	}

	if processTime > 0 {
		n.stats.LastProcessTime = processTime
	}
	if n.stats.MessagesProcessed > 0 {
		n.stats.AverageProcessTime = time.Duration(n.totalProcessNanos / n.stats.MessagesProcessed)
	}

	elapsed := time.Since(n.stats.ActiveSince)
	if elapsed.Seconds() > 0 {
		n.stats.MessageRate = float64(n.stats.MessagesReceived) / elapsed.Seconds()
	}
}
