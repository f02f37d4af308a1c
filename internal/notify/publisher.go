// README: Assignment event publisher on a RabbitMQ topic exchange.
package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"wireconnect/internal/modules/job"
	"wireconnect/internal/types"
)

const (
	routingKeyAssigned  = "job.assigned"
	routingKeyExhausted = "job.exhausted"
)

// channel is the slice of amqp.Channel the publisher uses; tests stub it.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Publisher emits assignment engine hooks as events on a topic exchange.
// Publishing is best effort: a broker failure is logged, never surfaced, so
// the assignment flow cannot stall on messaging.
type Publisher struct {
	ch       channel
	exchange string
	logger   *slog.Logger
}

func NewPublisher(ch *amqp.Channel, exchange string, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{ch: ch, exchange: exchange, logger: logger}
}

type assignedEvent struct {
	JobID         types.ID `json:"job_id"`
	ClientID      types.ID `json:"client_id"`
	TechnicianID  types.ID `json:"technician_id"`
	Category      string   `json:"category"`
	State         string   `json:"state"`
	WorkersNeeded int      `json:"workers_needed"`
	ExpiresAt     string   `json:"expires_at,omitempty"`
	OccurredAt    string   `json:"occurred_at"`
}

type exhaustedEvent struct {
	JobID      types.ID `json:"job_id"`
	ClientID   types.ID `json:"client_id"`
	Category   string   `json:"category"`
	State      string   `json:"state"`
	OccurredAt string   `json:"occurred_at"`
}

func (p *Publisher) Assigned(ctx context.Context, j *job.Job, techID types.ID) {
	ev := assignedEvent{
		JobID:         j.ID,
		ClientID:      j.ClientID,
		TechnicianID:  techID,
		Category:      j.Category,
		State:         j.State,
		WorkersNeeded: j.WorkersNeeded,
		OccurredAt:    time.Now().UTC().Format(time.RFC3339),
	}
	if j.ExpiresAt != nil {
		ev.ExpiresAt = j.ExpiresAt.UTC().Format(time.RFC3339)
	}
	p.publish(ctx, routingKeyAssigned, ev)
}

func (p *Publisher) Exhausted(ctx context.Context, j *job.Job) {
	p.publish(ctx, routingKeyExhausted, exhaustedEvent{
		JobID:      j.ID,
		ClientID:   j.ClientID,
		Category:   j.Category,
		State:      j.State,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})
}

func (p *Publisher) publish(ctx context.Context, key string, event any) {
	body, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("marshal event", slog.String("key", key), slog.String("error", err.Error()))
		return
	}
	err = p.ch.PublishWithContext(ctx, p.exchange, key, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		p.logger.Error("publish event", slog.String("key", key), slog.String("error", err.Error()))
		return
	}
	p.logger.Debug("event published", slog.String("key", key))
}
