package loan

import (
	"context"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/nerrad567/radioloan-core/internal/infrastructure/mqtt"
)

// Event types published after a transition commits.
const (
	EventBorrowed = "borrowed"
	EventReturned = "returned"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Event is the payload published for a committed transition.
type Event struct {
	Type       string    `json:"type"`
	LoanID     string    `json:"loan_id"`
	DeviceID   string    `json:"device_id"`
	CallSign   string    `json:"call_sign"`
	Borrower   string    `json:"borrower_name"`
	OccurredAt time.Time `json:"occurred_at"`
	Loan       Loan      `json:"loan"`
}

// NewEvent builds the event for l.
func NewEvent(eventType string, l *Loan, at time.Time) Event {
	return Event{
		Type:       eventType,
		LoanID:     l.ID,
		DeviceID:   l.DeviceID,
		CallSign:   l.Device.CallSign,
		Borrower:   l.BorrowerName,
		OccurredAt: at.UTC(),
		Loan:       *l,
	}
}

// MQTTClient is the publishing half of the MQTT client.
// It is satisfied by *mqtt.Client.
type MQTTClient interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// MQTTPublisher publishes loan events as JSON and keeps a retained device
// status message per device in sync.
type MQTTPublisher struct {
	client MQTTClient
	qos    byte
}

// NewMQTTPublisher creates an event publisher on client with the given QoS.
func NewMQTTPublisher(client MQTTClient, qos byte) *MQTTPublisher {
	return &MQTTPublisher{client: client, qos: qos}
}

// PublishLoanEvent implements EventPublisher.
func (p *MQTTPublisher) PublishLoanEvent(_ context.Context, event Event) error {
	topics := mqtt.Topics{}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding loan event: %w", err)
	}
	if err := p.client.Publish(topics.LoanEvent(event.Type, event.DeviceID), payload, p.qos, false); err != nil {
		return fmt.Errorf("publishing loan event: %w", err)
	}

	status, err := json.Marshal(event.Loan.Device)
	if err != nil {
		return fmt.Errorf("encoding device status: %w", err)
	}
	if err := p.client.Publish(topics.DeviceStatus(event.DeviceID), status, p.qos, true); err != nil {
		return fmt.Errorf("publishing device status: %w", err)
	}
	return nil
}
