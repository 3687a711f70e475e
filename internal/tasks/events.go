package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const eventsChannel = "pr.events"

// Event is the wire shape published for pull request lifecycle changes.
// Delivery to end consumers is external; this only fans out.
type Event struct {
	PullRequestID string    `json:"pull_request_id"`
	PlaybookID    string    `json:"playbook_id"`
	EventType     string    `json:"event_type"`
	ActorID       string    `json:"actor_id"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Publisher pushes PR events onto the shared Redis channel. A nil Publisher
// drops events silently.
type Publisher struct {
	client *redis.Client
}

func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

func (p *Publisher) Publish(ctx context.Context, event Event) error {
	if p == nil || p.client == nil {
		return nil
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.client.Publish(ctx, eventsChannel, data).Err(); err != nil {
		return fmt.Errorf("publish %s event: %w", event.EventType, err)
	}
	return nil
}
