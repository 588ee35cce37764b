package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// Event types published after successful course mutations.
const (
	TypeCourseCreated     = "course.created"
	TypeCourseUpdated     = "course.updated"
	TypeCourseDeleted     = "course.deleted"
	TypeEnrollmentUpdated = "course.enrollment_updated"
)

// Topic carries every course lifecycle event.
const Topic = "tarpaulin.courses"

// Event is the envelope for all published domain events.
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// CourseEvent is the payload for course.created/updated/deleted.
type CourseEvent struct {
	CourseID     uint   `json:"course_id"`
	Subject      string `json:"subject"`
	Number       string `json:"number"`
	Term         string `json:"term"`
	InstructorID uint   `json:"instructor_id"`
}

// EnrollmentEvent is the payload for course.enrollment_updated.
type EnrollmentEvent struct {
	CourseID uint   `json:"course_id"`
	Added    []uint `json:"added"`
	Removed  []uint `json:"removed"`
}

// EventPublisher publishes domain events. Implementations must be safe for
// concurrent use.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, data interface{}) error
	Close() error
}

// WatermillPublisher publishes events through a watermill message publisher.
type WatermillPublisher struct {
	publisher message.Publisher
}

// NewKafkaPublisher builds a publisher backed by Kafka brokers.
func NewKafkaPublisher(brokers []string, logger watermill.LoggerAdapter) (*WatermillPublisher, error) {
	publisher, err := kafka.NewPublisher(
		kafka.PublisherConfig{
			Brokers:   brokers,
			Marshaler: kafka.DefaultMarshaler{},
		},
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
	}
	return &WatermillPublisher{publisher: publisher}, nil
}

// NewChannelPublisher builds an in-process publisher for deployments
// without a broker.
func NewChannelPublisher(logger watermill.LoggerAdapter) *WatermillPublisher {
	return &WatermillPublisher{
		publisher: gochannel.NewGoChannel(gochannel.Config{}, logger),
	}
}

func (p *WatermillPublisher) Publish(ctx context.Context, eventType string, data interface{}) error {
	event := Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.Metadata.Set("event_type", eventType)
	msg.SetContext(ctx)

	return p.publisher.Publish(Topic, msg)
}

func (p *WatermillPublisher) Close() error {
	return p.publisher.Close()
}

// MockEventPublisher records events in memory for tests.
type MockEventPublisher struct {
	mu     sync.Mutex
	events []Event
}

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{}
}

func (m *MockEventPublisher) Publish(ctx context.Context, eventType string, data interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	})
	return nil
}

func (m *MockEventPublisher) Close() error { return nil }

func (m *MockEventPublisher) GetPublishedEvents() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}

func (m *MockEventPublisher) ClearEvents() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = nil
}
