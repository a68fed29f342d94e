// Package event fans run lifecycle events out to interested consumers
package event

import (
	"sync"
	"time"

	"github.com/kode4food/caravan"
	"github.com/kode4food/caravan/message"
	"github.com/kode4food/caravan/topic"

	"github.com/workmesh/maestro/pkg/api"
)

// Hub is a fan-out topic for run and step events. The engine publishes;
// WebSocket clients each take their own consumer
type Hub struct {
	topic     topic.Topic[*api.Event]
	prod      topic.Producer[*api.Event]
	closeOnce sync.Once
}

// NewHub creates an event hub backed by a caravan topic
func NewHub() *Hub {
	t := caravan.NewTopic[*api.Event]()
	return &Hub{
		topic: t,
		prod:  t.NewProducer(),
	}
}

// Publish sends an event to all current consumers
func (h *Hub) Publish(
	typ api.EventType, runID api.RunID, planID api.PlanID, data any,
) {
	message.Send(h.prod, &api.Event{
		Type:      typ,
		RunID:     runID,
		PlanID:    planID,
		Timestamp: time.Now(),
		Data:      data,
	})
}

// NewConsumer returns a consumer receiving all events published after the
// call. The caller owns the consumer and must Close it
func (h *Hub) NewConsumer() topic.Consumer[*api.Event] {
	return h.topic.NewConsumer()
}

// Close shuts down the producer side of the hub
func (h *Hub) Close() {
	h.closeOnce.Do(func() {
		h.prod.Close()
	})
}
