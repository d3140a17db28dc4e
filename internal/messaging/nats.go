package messaging

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/LilRag/Echo-Dbms-Miniproject/internal/models"

	"github.com/nats-io/nats.go"
)

// Publisher pushes advisory events after the owning transaction commits.
// Delivery is best-effort: the notification rows are the source of truth,
// NATS only feeds real-time consumers.
type Publisher struct {
	conn *nats.Conn
}

// Connect dials NATS from environment settings.
func Connect() (*Publisher, error) {
	conn, err := nats.Connect(fmt.Sprintf("nats://%s:%s", os.Getenv("NATS_HOST"), os.Getenv("NATS_PORT")))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &Publisher{conn: conn}, nil
}

// PublishEdgeToggled publishes an edge transition (like/follow/bookmark).
func (p *Publisher) PublishEdgeToggled(edge string, actorID, targetID uint, present bool) error {
	event := EdgeToggledEvent{
		Edge:      edge,
		ActorID:   actorID,
		TargetID:  targetID,
		Present:   present,
		Timestamp: time.Now().Format(time.RFC3339),
	}

	eventJSON, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.conn.Publish("edge."+edge, eventJSON)
}

// PublishNotification publishes a freshly written notification row.
func (p *Publisher) PublishNotification(n models.Notification) error {
	event := NotificationEvent{
		RecipientID: n.RecipientID,
		ActorID:     n.ActorID,
		Kind:        string(n.Kind),
		ReferenceID: n.ReferenceID,
		Timestamp:   n.CreatedAt.Format(time.RFC3339),
	}

	eventJSON, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.conn.Publish("notification.created", eventJSON)
}

// PublishPostCreated publishes a new post event.
func (p *Publisher) PublishPostCreated(post models.Post) error {
	event := PostCreatedEvent{
		PostID:    post.ID,
		Title:     post.Title,
		AuthorID:  post.UserID,
		Timestamp: post.CreatedAt.Format(time.RFC3339),
	}

	eventJSON, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.conn.Publish("post.created", eventJSON)
}

// SubscribeNotifications subscribes to notification events.
func (p *Publisher) SubscribeNotifications(handler func([]byte)) (*nats.Subscription, error) {
	return p.conn.Subscribe("notification.created", func(msg *nats.Msg) {
		handler(msg.Data)
	})
}

// Event structures
type EdgeToggledEvent struct {
	Edge      string `json:"edge"`
	ActorID   uint   `json:"actor_id"`
	TargetID  uint   `json:"target_id"`
	Present   bool   `json:"present"`
	Timestamp string `json:"timestamp"`
}

type NotificationEvent struct {
	RecipientID uint   `json:"recipient_id"`
	ActorID     uint   `json:"actor_id"`
	Kind        string `json:"kind"`
	ReferenceID uint   `json:"reference_id"`
	Timestamp   string `json:"timestamp"`
}

type PostCreatedEvent struct {
	PostID    uint   `json:"post_id"`
	Title     string `json:"title"`
	AuthorID  uint   `json:"author_id"`
	Timestamp string `json:"timestamp"`
}
