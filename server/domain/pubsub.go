package domain

import (
	"context"
	"log/slog"
	"sync"
)

//go:generate go tool mockgen -destination=./mocks/pubsub_mock.go -package=mocks . PubSub

type Topic string

// SessionTopic is where one endpoint listens for its outbound messages.
func SessionTopic(id SessionID) Topic {
	return Topic("session:" + id.String())
}

// Message is what travels through the pubsub: raw envelope bytes plus the
// originating session, when there is one.
type Message struct {
	SessionID SessionID
	Data      []byte
}

// PubSub is the in-process fan-out between the game loop and the session
// endpoints. Delivery is best-effort: a slow subscriber drops messages
// rather than blocking the publisher.
type PubSub interface {
	Publish(ctx context.Context, topic Topic, msg Message)
	Subscribe(topic Topic) <-chan Message
	Unsubscribe(topic Topic, ch <-chan Message)
}

const subscriberBuffer = 64

type simplePubSub struct {
	mu   sync.RWMutex
	subs map[Topic][]chan Message
}

func NewSimplePubSub() PubSub {
	return &simplePubSub{
		subs: make(map[Topic][]chan Message),
	}
}

func (p *simplePubSub) Publish(ctx context.Context, topic Topic, msg Message) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, ch := range p.subs[topic] {
		select {
		case ch <- msg:
		default:
			slog.WarnContext(ctx, "pubsub: subscriber full, message dropped", "topic", topic)
		}
	}
}

func (p *simplePubSub) Subscribe(topic Topic) <-chan Message {
	ch := make(chan Message, subscriberBuffer)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subs[topic] = append(p.subs[topic], ch)
	return ch
}

func (p *simplePubSub) Unsubscribe(topic Topic, ch <-chan Message) {
	p.mu.Lock()
	defer p.mu.Unlock()
	subs := p.subs[topic]
	for i, c := range subs {
		if c == ch {
			p.subs[topic] = append(subs[:i], subs[i+1:]...)
			close(c)
			break
		}
	}
	if len(p.subs[topic]) == 0 {
		delete(p.subs, topic)
	}
}
