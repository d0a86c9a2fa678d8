package domain_test

import (
	"context"
	"testing"
	"time"

	domain "github.com/JoniJuntto/rantalentis/server/domain"
)

func TestSimplePubSub_PublishSubscribe(t *testing.T) {
	ps := domain.NewSimplePubSub()
	topic := domain.Topic("session:test")

	ch := ps.Subscribe(topic)
	ps.Publish(context.Background(), topic, domain.Message{Data: []byte("hello")})

	select {
	case msg := <-ch:
		if got := string(msg.Data); got != "hello" {
			t.Errorf("msg.Data = %q, want %q", got, "hello")
		}
	case <-time.After(time.Second):
		t.Fatal("message never arrived")
	}
}

func TestSimplePubSub_PublishToUnknownTopic(t *testing.T) {
	ps := domain.NewSimplePubSub()
	// No subscribers; must not panic or block.
	ps.Publish(context.Background(), "session:nobody", domain.Message{Data: []byte("x")})
}

func TestSimplePubSub_Unsubscribe(t *testing.T) {
	ps := domain.NewSimplePubSub()
	topic := domain.Topic("session:test")

	ch := ps.Subscribe(topic)
	ps.Unsubscribe(topic, ch)

	if _, ok := <-ch; ok {
		t.Error("channel still open after Unsubscribe")
	}
}

func TestSimplePubSub_SlowSubscriberDrops(t *testing.T) {
	ps := domain.NewSimplePubSub()
	topic := domain.Topic("session:slow")
	ch := ps.Subscribe(topic)

	done := make(chan struct{})
	go func() {
		defer close(done)
		// Nobody reads ch; once the buffer fills, publishes must drop
		// instead of blocking.
		for i := 0; i < 200; i++ {
			ps.Publish(context.Background(), topic, domain.Message{Data: []byte("x")})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a full subscriber")
	}
	_ = ch
}

func TestSessionTopic(t *testing.T) {
	s := domain.NewSession()
	got := domain.SessionTopic(s.ID())
	want := domain.Topic("session:" + s.ID().String())
	if got != want {
		t.Errorf("SessionTopic = %q, want %q", got, want)
	}
}
