package notify

import (
	"context"
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"
)

// Message is the broadcast payload published by the analysis worker once a
// work item has been processed.
type Message struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Renderer shows one local notification to the user.
type Renderer interface {
	Render(title, body string) error
}

// LogRenderer writes notifications to the process log.
type LogRenderer struct{}

func (LogRenderer) Render(title, body string) error {
	log.Printf("[notify] title=%q body=%q", title, body)
	return nil
}

// Subscriber listens on one fixed broadcast topic and renders each incoming
// message. Its lifecycle is independent of the upload pipeline: a message
// can arrive hours after the share that caused it.
type Subscriber struct {
	rdb       *redis.Client
	topic     string
	renderer  Renderer
	permitted func() bool
}

// NewSubscriber wires a subscriber. permitted gates rendering the way a
// notification permission does; nil means always granted.
func NewSubscriber(rdb *redis.Client, topic string, renderer Renderer, permitted func() bool) *Subscriber {
	if permitted == nil {
		permitted = func() bool { return true }
	}
	return &Subscriber{rdb: rdb, topic: topic, renderer: renderer, permitted: permitted}
}

// Run subscribes and consumes until ctx is cancelled. Subscribing again
// after a restart is a no-op on the broker side: a topic carries no
// per-subscriber state beyond the live connection.
func (s *Subscriber) Run(ctx context.Context) error {
	sub := s.rdb.Subscribe(ctx, s.topic)
	defer sub.Close()

	// Force the SUBSCRIBE round-trip so startup failures surface here.
	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	log.Printf("[notify] subscribed topic=%s", s.topic)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			s.Handle(msg.Payload)
		}
	}
}

// Handle renders one push message. Without permission the message is
// silently dropped: the durable analysis result lives in the queue, the
// notification is a best-effort signal on top.
func (s *Subscriber) Handle(payload string) {
	var m Message
	if err := json.Unmarshal([]byte(payload), &m); err != nil {
		log.Printf("[notify] bad message error=%v", err)
		return
	}
	if m.Title == "" && m.Body == "" {
		return
	}
	if !s.permitted() {
		return
	}
	if err := s.renderer.Render(m.Title, m.Body); err != nil {
		log.Printf("[notify] render error=%v", err)
	}
}
