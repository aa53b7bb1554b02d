package testutil

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/flexprice/plancatalog/internal/pubsub"
	"github.com/flexprice/plancatalog/internal/types"
	"github.com/samber/lo"
)

var _ pubsub.PubSub = (*InMemoryPubSub)(nil)

// InMemoryPubSub records every published message per topic so service tests
// can assert on the webhook events a call produced
type InMemoryPubSub struct {
	mu        sync.Mutex
	published map[string][]*message.Message
	outputs   map[string][]chan *message.Message
}

func NewInMemoryPubSub() *InMemoryPubSub {
	return &InMemoryPubSub{
		published: make(map[string][]*message.Message),
		outputs:   make(map[string][]chan *message.Message),
	}
}

func (ps *InMemoryPubSub) Publish(_ context.Context, topic string, msg *message.Message) error {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	ps.published[topic] = append(ps.published[topic], msg)
	for _, ch := range ps.outputs[topic] {
		select {
		case ch <- msg:
		default:
		}
	}
	return nil
}

// Subscribe replays what was already published on topic, then follows new messages.
// Slow readers lose messages once the buffer is full.
func (ps *InMemoryPubSub) Subscribe(_ context.Context, topic string) (<-chan *message.Message, error) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	ch := make(chan *message.Message, 256)
	for _, msg := range ps.published[topic] {
		select {
		case ch <- msg:
		default:
		}
	}
	ps.outputs[topic] = append(ps.outputs[topic], ch)
	return ch, nil
}

func (ps *InMemoryPubSub) Close() error {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	for _, chans := range ps.outputs {
		for _, ch := range chans {
			close(ch)
		}
	}
	ps.outputs = make(map[string][]chan *message.Message)
	return nil
}

// GetMessages returns a copy of the messages published on topic
func (ps *InMemoryPubSub) GetMessages(topic string) []*message.Message {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return append([]*message.Message(nil), ps.published[topic]...)
}

func (ps *InMemoryPubSub) ClearMessages() {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.published = make(map[string][]*message.Message)
}

// WebhookEvents decodes the webhook events published on topic, in publish order.
// Payloads that are not webhook events are skipped.
func (ps *InMemoryPubSub) WebhookEvents(topic string) []*types.WebhookEvent {
	return lo.FilterMap(ps.GetMessages(topic), func(msg *message.Message, _ int) (*types.WebhookEvent, bool) {
		var event types.WebhookEvent
		if err := json.Unmarshal(msg.Payload, &event); err != nil {
			return nil, false
		}
		return &event, true
	})
}

// EventNames lists the names of the webhook events published on topic
func (ps *InMemoryPubSub) EventNames(topic string) []string {
	return lo.Map(ps.WebhookEvents(topic), func(e *types.WebhookEvent, _ int) string {
		return e.EventName
	})
}
