package bus

import (
	"context"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"realtime-chat/internal/tasks"
)

// AsynqPublisher enqueues domain events as asynq tasks. Publishing is
// fire-and-forget: failures are logged and never propagate to the caller,
// so a Redis hiccup cannot fail a message send.
type AsynqPublisher struct {
	client *asynq.Client
	log    *logrus.Entry
}

func NewAsynqPublisher(client *asynq.Client) *AsynqPublisher {
	if client == nil {
		panic("asynq client cannot be nil for AsynqPublisher")
	}
	return &AsynqPublisher{
		client: client,
		log:    logrus.WithField("component", "event_bus"),
	}
}

// Publish enqueues the event on the low queue.
func (p *AsynqPublisher) Publish(ctx context.Context, event string, payload interface{}) {
	data, err := tasks.NewEventTask(event, payload)
	if err != nil {
		p.log.WithError(err).WithField("event", event).Error("Failed to serialize event")
		return
	}
	task := asynq.NewTask(tasks.EventTaskType(event), data)
	if _, err := p.client.EnqueueContext(ctx, task, asynq.Queue("low"), asynq.MaxRetry(3)); err != nil {
		p.log.WithError(err).WithField("event", event).Warn("Failed to enqueue event")
	}
}
