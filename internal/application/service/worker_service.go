package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"swiftscope/internal/application/common/slogger"
	"swiftscope/internal/config"
	"swiftscope/internal/port/inbound"
)

// WorkerServiceConfig holds configuration for the worker service.
type WorkerServiceConfig struct {
	Concurrency         int
	QueueGroup          string
	JobTimeout          time.Duration
	HealthCheckInterval time.Duration
	ShutdownTimeout     time.Duration
}

// DefaultWorkerService manages analysis job consumers and their lifecycle.
type DefaultWorkerService struct {
	config       WorkerServiceConfig
	natsConfig   config.NATSConfig
	consumers    map[string]inbound.Consumer
	jobProcessor inbound.JobProcessor
	running      bool
	startTime    time.Time
	mu           sync.RWMutex
	stopCh       chan struct{}
	metrics      inbound.WorkerServiceMetrics
	healthStatus inbound.WorkerServiceHealthStatus
}

// NewDefaultWorkerService creates a new worker service.
func NewDefaultWorkerService(
	serviceConfig WorkerServiceConfig,
	natsConfig config.NATSConfig,
	jobProcessor inbound.JobProcessor,
) inbound.WorkerService {
	now := time.Now()
	return &DefaultWorkerService{
		config:       serviceConfig,
		natsConfig:   natsConfig,
		jobProcessor: jobProcessor,
		consumers:    make(map[string]inbound.Consumer),
		stopCh:       make(chan struct{}),
		startTime:    now,
		metrics: inbound.WorkerServiceMetrics{
			ServiceStartTime: now,
		},
		healthStatus: inbound.WorkerServiceHealthStatus{
			IsRunning:       false,
			TotalConsumers:  0,
			LastHealthCheck: now,
		},
	}
}

// Start begins running the worker service and all registered consumers.
func (w *DefaultWorkerService) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return errors.New("worker service already running")
	}

	started := make([]inbound.Consumer, 0, len(w.consumers))
	for id, consumer := range w.consumers {
		if err := consumer.Start(ctx); err != nil {
			for _, c := range started {
				if stopErr := c.Stop(ctx); stopErr != nil {
					slogger.Error(ctx, "Failed to stop consumer during rollback", slogger.Fields{
						"error": stopErr.Error(),
					})
				}
			}
			return fmt.Errorf("failed to start consumer %s: %w", id, err)
		}
		started = append(started, consumer)
	}

	w.running = true
	w.startTime = time.Now()
	w.healthStatus.IsRunning = true
	w.metrics.ServiceStartTime = w.startTime

	slogger.Info(ctx, "Worker service started", slogger.Fields{
		"consumers":   len(w.consumers),
		"queue_group": w.config.QueueGroup,
		"nats_url":    w.natsConfig.URL,
	})
	return nil
}

// Stop gracefully shuts down the worker service and all consumers.
func (w *DefaultWorkerService) Stop(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}

	if w.config.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.config.ShutdownTimeout)
		defer cancel()
	}

	var stopErr error
	for id, consumer := range w.consumers {
		if err := consumer.Stop(ctx); err != nil {
			slogger.Error(ctx, "Failed to stop consumer", slogger.Fields{
				"consumer_id": id,
				"error":       err.Error(),
			})
			if stopErr == nil {
				stopErr = fmt.Errorf("failed to stop consumer %s: %w", id, err)
			}
		}
	}

	if w.jobProcessor != nil {
		if err := w.jobProcessor.Cleanup(); err != nil {
			slogger.Error(ctx, "Job processor cleanup failed", slogger.Fields{
				"error": err.Error(),
			})
		}
	}

	w.running = false
	w.healthStatus.IsRunning = false

	close(w.stopCh)
	w.stopCh = make(chan struct{})

	slogger.Info(ctx, "Worker service stopped", nil)
	return stopErr
}

// Health returns the current health status of the worker service.
func (w *DefaultWorkerService) Health() inbound.WorkerServiceHealthStatus {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.running {
		w.healthStatus.ServiceUptime = time.Since(w.startTime)
		w.healthStatus.LastHealthCheck = time.Now()
	}

	w.healthStatus.TotalConsumers = len(w.consumers)
	w.healthStatus.ConsumerHealthDetails = make([]inbound.ConsumerHealthStatus, 0, len(w.consumers))
	healthyCount := 0
	for _, consumer := range w.consumers {
		health := consumer.Health()
		w.healthStatus.ConsumerHealthDetails = append(w.healthStatus.ConsumerHealthDetails, health)
		if health.IsRunning && health.IsConnected {
			healthyCount++
		}
	}
	w.healthStatus.HealthyConsumers = healthyCount
	w.healthStatus.UnhealthyConsumers = w.healthStatus.TotalConsumers - healthyCount

	if w.jobProcessor != nil {
		w.healthStatus.JobProcessorHealth = w.jobProcessor.GetHealthStatus()
	}

	return w.healthStatus
}

// GetMetrics returns metrics for the worker service.
func (w *DefaultWorkerService) GetMetrics() inbound.WorkerServiceMetrics {
	w.mu.RLock()
	defer w.mu.RUnlock()

	metrics := w.metrics
	metrics.ConsumerMetrics = make([]inbound.ConsumerStats, 0, len(w.consumers))
	for _, consumer := range w.consumers {
		stats := consumer.GetStats()
		metrics.ConsumerMetrics = append(metrics.ConsumerMetrics, stats)
		metrics.TotalMessagesProcessed += stats.MessagesProcessed
		metrics.TotalMessagesFailed += stats.MessagesFailed
	}

	if w.jobProcessor != nil {
		metrics.JobProcessorMetrics = w.jobProcessor.GetMetrics()
		metrics.AverageProcessingTime = metrics.JobProcessorMetrics.AverageProcessingTime
	}

	return metrics
}

// AddConsumer adds a consumer to the worker service.
func (w *DefaultWorkerService) AddConsumer(consumer inbound.Consumer) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if consumer == nil {
		return errors.New("consumer cannot be nil")
	}

	id := consumer.DurableName()
	if id == "" {
		id = fmt.Sprintf("consumer-%d", len(w.consumers))
	}

	w.consumers[id] = consumer
	return nil
}

// RemoveConsumer removes a consumer from the worker service.
func (w *DefaultWorkerService) RemoveConsumer(consumerID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, exists := w.consumers[consumerID]; !exists {
		return fmt.Errorf("consumer %s not found", consumerID)
	}

	delete(w.consumers, consumerID)
	return nil
}

// GetConsumers returns information about all consumers.
func (w *DefaultWorkerService) GetConsumers() []inbound.ConsumerInfo {
	w.mu.RLock()
	defer w.mu.RUnlock()

	infos := make([]inbound.ConsumerInfo, 0, len(w.consumers))
	for id, consumer := range w.consumers {
		health := consumer.Health()
		stats := consumer.GetStats()
		info := inbound.ConsumerInfo{
			ID:          id,
			QueueGroup:  consumer.QueueGroup(),
			Subject:     consumer.Subject(),
			DurableName: consumer.DurableName(),
			IsRunning:   health.IsRunning,
			Health:      health,
			Stats:       stats,
			StartTime:   stats.ActiveSince,
		}
		infos = append(infos, info)
	}

	return infos
}

// RestartConsumer restarts a specific consumer.
func (w *DefaultWorkerService) RestartConsumer(consumerID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	consumer, exists := w.consumers[consumerID]
	if !exists {
		return fmt.Errorf("consumer %s not found", consumerID)
	}

	ctx := context.Background()
	if err := consumer.Stop(ctx); err != nil {
		return fmt.Errorf("failed to stop consumer: %w", err)
	}

	if err := consumer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start consumer: %w", err)
	}

	w.metrics.RestartCount++
	w.metrics.LastRestartTime = time.Now()

	return nil
}
