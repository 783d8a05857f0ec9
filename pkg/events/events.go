package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/openballot/evoting/pkg/logger"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

type Subscriber interface {
	Subscribe(subject string, handler func(msg *Message)) (Subscription, error)
	Close() error
}

type EventBus interface {
	Publisher
	Subscriber
}

// Subscription undoes a Subscribe. Late subscribers receive no backlog.
type Subscription interface {
	Unsubscribe() error
}

type Message struct {
	Subject   string
	Data      []byte
	Timestamp time.Time
}

// Subjects. Every successful collection write publishes DataChanged; the
// lifecycle services publish the domain subjects on top of that.
const (
	DataChanged = "data.changed"

	SignupSubmitted  = "signup.submitted"
	RequestApproved  = "signup.approved"
	RequestRejected  = "signup.rejected"
	VoteCast         = "vote.cast"
	ResultsPublished = "results.published"
)

// DataChangedEvent names the collection a successful write touched. It is
// the payload connected clients key their refresh on.
type DataChangedEvent struct {
	Collection string    `json:"collection"`
	Timestamp  time.Time `json:"timestamp"`
}

type SignupSubmittedEvent struct {
	RequestID   string    `json:"request_id"`
	Kind        string    `json:"kind"`
	SubmittedAt time.Time `json:"submitted_at"`
}

type RequestDecidedEvent struct {
	RequestID string    `json:"request_id"`
	Kind      string    `json:"kind"`
	Action    string    `json:"action"`
	DecidedAt time.Time `json:"decided_at"`
}

type VoteCastEvent struct {
	CandidateID string    `json:"candidate_id"`
	CastAt      time.Time `json:"cast_at"`
}

type ResultsPublishedEvent struct {
	Published bool      `json:"published"`
	ChangedAt time.Time `json:"changed_at"`
}

// NATSEventBus bridges to a NATS server for multi-process fan-out.
type NATSEventBus struct {
	conn *nats.Conn
}

func NewNATSEventBus(url string) (*NATSEventBus, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSEventBus{conn: conn}, nil
}

func (n *NATSEventBus) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	logger.DebugContext(ctx, "Publishing event", "subject", subject, "data", string(payload))

	return n.conn.Publish(subject, payload)
}

func (n *NATSEventBus) Subscribe(subject string, handler func(msg *Message)) (Subscription, error) {
	sub, err := n.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(&Message{
			Subject:   msg.Subject,
			Data:      msg.Data,
			Timestamp: time.Now(),
		})
	})
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (n *NATSEventBus) Close() error {
	n.conn.Close()
	return nil
}
