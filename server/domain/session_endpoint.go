package domain

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

var (
	// ErrBackpressure is returned when the write channel is full.
	ErrBackpressure = errors.New("write channel is full, apply backpressure")
	// ErrInitializationFailed is returned when a required dependency is missing.
	ErrInitializationFailed = errors.New("failed to initialize session endpoint")
)

const (
	idleTimeout       = 60 * time.Second
	heartbeatInterval = 15 * time.Second
)

// SessionEndpoint owns one client connection: it pumps reads into the
// dispatcher, drains the write channel onto the wire, forwards its session
// topic from the pubsub, and tears everything down exactly once.
type SessionEndpoint struct {
	ctx    context.Context
	cancel context.CancelFunc

	session    *Session
	connection *Connection
	pubsub     PubSub
	dispatcher Dispatcher

	ctrlCh  chan endpointEvent
	writeCh chan []byte

	// lifecycle
	closed atomic.Bool
}

func NewSessionEndpoint(session *Session, connection *Connection, pubsub PubSub, dispatcher Dispatcher) (*SessionEndpoint, error) {
	if session == nil || connection == nil || pubsub == nil || dispatcher == nil {
		return nil, ErrInitializationFailed
	}
	ctx, cancel := context.WithCancel(context.Background())
	se := &SessionEndpoint{
		ctx:        ctx,
		cancel:     cancel,
		session:    session,
		connection: connection,
		pubsub:     pubsub,
		dispatcher: dispatcher,
		ctrlCh:     make(chan endpointEvent, 16),
		writeCh:    make(chan []byte, 1024),
	}
	return se, nil
}

// Run blocks until the endpoint shuts down.
func (se *SessionEndpoint) Run() error {
	msgCh := se.pubsub.Subscribe(SessionTopic(se.session.ID()))
	defer se.pubsub.Unsubscribe(SessionTopic(se.session.ID()), msgCh)

	heartbeat := NewHeartbeatService(heartbeatInterval, se.session, se.writeCh)

	eg, ctx := errgroup.WithContext(se.ctx)
	eg.Go(func() error {
		se.ownerLoop(ctx)
		return nil
	})
	eg.Go(func() error {
		se.readLoop(ctx)
		return nil
	})
	eg.Go(func() error {
		se.writeLoop(ctx)
		return nil
	})
	eg.Go(func() error {
		se.subscribeLoop(ctx, msgCh)
		return nil
	})
	eg.Go(func() error {
		heartbeat.Run(ctx)
		return nil
	})

	// Joining announces the session to the game loop, which answers with a
	// full gameState snapshot on the session topic.
	if err := se.dispatcher.Dispatch(ctx, InboundMessage{
		SessionID: se.session.ID(),
		Data:      EncodeJoinEvent(),
	}); err != nil {
		se.close()
		return err
	}

	return eg.Wait()
}

// Send queues data for the client without blocking.
func (se *SessionEndpoint) Send(data []byte) error {
	select {
	case se.writeCh <- data:
		return nil
	default:
		return ErrBackpressure
	}
}

func (se *SessionEndpoint) Close(ctx context.Context) {
	se.sendCtrlEvent(ctx, endpointEvent{kind: evClose})
}

// ownerLoop is the only place session lifecycle state changes.
func (se *SessionEndpoint) ownerLoop(ctx context.Context) {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			se.close()
			return
		case ev := <-se.ctrlCh:
			se.handleControlEvent(ctx, ev)
		case <-ticker.C:
			if ok, reason := se.session.IsIdle(idleTimeout); ok {
				slog.InfoContext(ctx, "closing idle session", "sessionID", se.session.ID(), "reason", reason.String())
				se.close()
			}
		}
	}
}

func (se *SessionEndpoint) readLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
			data, err := se.connection.Read(ctx)
			if err != nil {
				se.sendCtrlEvent(ctx, endpointEvent{kind: evReadError, err: err})
				se.close()
				return
			}
			se.session.TouchRead()
			se.handleData(ctx, data)
		}
	}
}

func (se *SessionEndpoint) writeLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case data := <-se.writeCh:
			if err := se.connection.Write(ctx, data); err != nil {
				se.sendCtrlEvent(ctx, endpointEvent{kind: evWriteError, err: err})
				se.close()
				return
			}
			se.session.TouchWrite()
		}
	}
}

// subscribeLoop forwards pubsub messages for this session onto the wire.
func (se *SessionEndpoint) subscribeLoop(ctx context.Context, msgCh <-chan Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgCh:
			if !ok {
				return
			}
			select {
			case se.writeCh <- msg.Data:
			default:
				slog.WarnContext(ctx, "subscribeLoop: writeCh full, message dropped", "sessionID", se.session.ID())
			}
		}
	}
}

// handleData validates an inbound envelope and routes it. Malformed
// payloads are logged and dropped; clients are never trusted on shape.
func (se *SessionEndpoint) handleData(ctx context.Context, data []byte) {
	env, err := DecodeEnvelope(data)
	if err != nil {
		slog.WarnContext(ctx, "failed to decode envelope", "sessionID", se.session.ID(), "err", err)
		return
	}

	switch env.T {
	case EventPong:
		se.sendCtrlEvent(ctx, endpointEvent{kind: evPong})
	case EventBallResult:
		payload, err := DecodePayload[BallResultPayload](env)
		if err != nil {
			slog.WarnContext(ctx, "malformed ballResult payload", "sessionID", se.session.ID(), "err", err)
			return
		}
		if err := payload.Validate(); err != nil {
			slog.WarnContext(ctx, "invalid ballResult payload", "sessionID", se.session.ID(), "err", err)
			return
		}
		if err := se.dispatcher.Dispatch(ctx, InboundMessage{SessionID: se.session.ID(), Data: data}); err != nil {
			slog.WarnContext(ctx, "failed to dispatch ballResult", "sessionID", se.session.ID(), "err", err)
		}
	default:
		slog.WarnContext(ctx, "unknown event type", "sessionID", se.session.ID(), "type", env.T)
	}
}

func (se *SessionEndpoint) handleControlEvent(ctx context.Context, ev endpointEvent) {
	switch ev.kind {
	case evClose:
		se.close()
	case evPong:
		se.session.TouchPong()
	case evReadError, evWriteError:
		return
	default:
		slog.WarnContext(ctx, "unknown endpoint event kind", "kind", ev.kind)
	}
}

func (se *SessionEndpoint) sendCtrlEvent(ctx context.Context, ev endpointEvent) {
	select {
	case se.ctrlCh <- ev:
	case <-ctx.Done():
	}
}

func (se *SessionEndpoint) close() {
	if !se.closed.CompareAndSwap(false, true) {
		return
	}
	// Best effort: get the session out of the room so broadcasts stop.
	_ = se.dispatcher.Dispatch(context.Background(), InboundMessage{
		SessionID: se.session.ID(),
		Data:      EncodeLeaveEvent(),
	})
	se.cancel()
	se.session.Close()
	se.connection.Close()
}
