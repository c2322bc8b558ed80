package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/blisstech/pharmacy-api/internal/email"
	"github.com/blisstech/pharmacy-api/internal/model"
	"github.com/blisstech/pharmacy-api/internal/repository"
	"github.com/blisstech/pharmacy-api/pkg/messaging"
	"github.com/blisstech/pharmacy-api/pkg/metrics"
)

type OutboxRelayConfig struct {
	BatchSize     int
	PollInterval  time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
}

// OutboxRelay drains pending outbox rows to the message broker. Events were
// written transactionally with the domain change they describe; the relay
// only moves them along, so at-least-once delivery is the contract.
type OutboxRelay struct {
	repo    repository.OutboxRepository
	broker  messaging.Broker
	alerter email.Alerter
	config  OutboxRelayConfig
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

func NewOutboxRelay(
	repo repository.OutboxRepository,
	broker messaging.Broker,
	alerter email.Alerter,
	config OutboxRelayConfig,
	logger zerolog.Logger,
	m *metrics.Metrics,
) (*OutboxRelay, error) {
	if config.BatchSize <= 0 {
		return nil, fmt.Errorf("BatchSize must be greater than 0")
	}
	if config.PollInterval <= 0 {
		return nil, fmt.Errorf("PollInterval must be greater than 0")
	}
	if config.RetryAttempts <= 0 {
		return nil, fmt.Errorf("RetryAttempts must be greater than 0")
	}

	return &OutboxRelay{
		repo:    repo,
		broker:  broker,
		alerter: alerter,
		config:  config,
		logger:  logger,
		metrics: m,
	}, nil
}

func (r *OutboxRelay) Start(ctx context.Context) {
	ticker := time.NewTicker(r.config.PollInterval)
	defer ticker.Stop()

	r.logger.Info().Msg("starting outbox relay")

	for {
		select {
		case <-ctx.Done():
			r.logger.Info().Msg("shutting down outbox relay")
			return
		case <-ticker.C:
			if err := r.processBatch(ctx); err != nil {
				r.logger.Error().Err(err).Msg("failed to process outbox batch")
			}
		}
	}
}

func (r *OutboxRelay) processBatch(ctx context.Context) error {
	timer := prometheus.NewTimer(r.metrics.OutboxProcessingLatency)
	defer timer.ObserveDuration()

	events, err := r.repo.GetPendingEvents(ctx, r.config.BatchSize)
	if err != nil {
		return fmt.Errorf("failed to get pending events: %w", err)
	}

	for _, event := range events {
		if err := r.processEvent(ctx, event); err != nil {
			r.logger.Error().Err(err).
				Str("event_id", event.ID.String()).
				Str("event_type", event.EventType).
				Msg("failed to relay event")
		}
	}
	return nil
}

func (r *OutboxRelay) processEvent(ctx context.Context, event *model.OutboxEvent) error {
	err := retry(r.config.RetryAttempts, r.config.RetryDelay, func() error {
		return r.broker.Publish(ctx, event.EventType, event.Payload)
	})
	if err != nil {
		r.metrics.OutboxEventsFailed.Inc()
		errStr := err.Error()
		if updateErr := r.repo.UpdateStatus(ctx, event.ID, model.OutboxStatusFailed, &errStr); updateErr != nil {
			r.logger.Error().Err(updateErr).Msg("failed to update event status")
		}
		return err
	}

	if event.EventType == model.EventStockLow {
		r.alertLowStock(ctx, event)
	}

	r.metrics.OutboxEventsProcessed.Inc()
	return r.repo.UpdateStatus(ctx, event.ID, model.OutboxStatusProcessed, nil)
}

// alertLowStock emails the pharmacy admin. Failure to send does not fail the
// event: the broker already has it.
func (r *OutboxRelay) alertLowStock(ctx context.Context, event *model.OutboxEvent) {
	if r.alerter == nil {
		return
	}
	var payload model.StockLowEvent
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		r.logger.Error().Err(err).Str("event_id", event.ID.String()).Msg("malformed stock-low payload")
		return
	}
	if err := r.alerter.SendLowStockAlert(ctx, payload); err != nil {
		r.logger.Error().Err(err).
			Str("medication", payload.MedicationName).
			Msg("failed to send low-stock alert")
	}
}

func retry(attempts int, delay time.Duration, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i < attempts-1 {
			time.Sleep(delay)
		}
	}
	return err
}
