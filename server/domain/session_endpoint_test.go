package domain_test

import (
	"context"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	domain "github.com/JoniJuntto/rantalentis/server/domain"
	"github.com/JoniJuntto/rantalentis/server/domain/mocks"
)

func TestNewSessionEndpoint_InitializesDefaults(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	s := domain.NewSession()
	tr := mocks.NewMockTransport(ctrl)
	c := domain.NewConnection(s.ID(), tr)
	ps := mocks.NewMockPubSub(ctrl)
	d := mocks.NewMockDispatcher(ctrl)

	se, err := domain.NewSessionEndpoint(s, c, ps, d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if se == nil {
		t.Fatal("endpoint is nil")
	}
}

func TestNewSessionEndpoint_MissingDependencies(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	s := domain.NewSession()
	tr := mocks.NewMockTransport(ctrl)
	c := domain.NewConnection(s.ID(), tr)
	ps := mocks.NewMockPubSub(ctrl)
	d := mocks.NewMockDispatcher(ctrl)

	if _, err := domain.NewSessionEndpoint(nil, c, ps, d); err != domain.ErrInitializationFailed {
		t.Errorf("nil session: err = %v, want %v", err, domain.ErrInitializationFailed)
	}
	if _, err := domain.NewSessionEndpoint(s, nil, ps, d); err != domain.ErrInitializationFailed {
		t.Errorf("nil connection: err = %v, want %v", err, domain.ErrInitializationFailed)
	}
	if _, err := domain.NewSessionEndpoint(s, c, nil, d); err != domain.ErrInitializationFailed {
		t.Errorf("nil pubsub: err = %v, want %v", err, domain.ErrInitializationFailed)
	}
	if _, err := domain.NewSessionEndpoint(s, c, ps, nil); err != domain.ErrInitializationFailed {
		t.Errorf("nil dispatcher: err = %v, want %v", err, domain.ErrInitializationFailed)
	}
}

func TestSessionEndpoint_CloseTearsDown(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	s := domain.NewSession()
	tr := mocks.NewMockTransport(ctrl)
	c := domain.NewConnection(s.ID(), tr)
	ps := mocks.NewMockPubSub(ctrl)
	d := mocks.NewMockDispatcher(ctrl)

	msgCh := make(chan domain.Message)
	ps.EXPECT().Subscribe(domain.SessionTopic(s.ID())).Return(msgCh)
	ps.EXPECT().Unsubscribe(domain.SessionTopic(s.ID()), gomock.Any())

	tr.EXPECT().Read(gomock.Any()).DoAndReturn(func(ctx context.Context) ([]byte, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}).AnyTimes()
	tr.EXPECT().Write(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	tr.EXPECT().Close(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	d.EXPECT().Dispatch(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	se, err := domain.NewSessionEndpoint(s, c, ps, d)
	if err != nil {
		t.Fatalf("NewSessionEndpoint: %v", err)
	}

	runDone := make(chan error, 1)
	go func() { runDone <- se.Run() }()

	time.Sleep(50 * time.Millisecond)
	se.Close(context.Background())

	select {
	case err := <-runDone:
		if err != nil {
			t.Errorf("Run() = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Close")
	}
	if !s.IsClosed() {
		t.Error("session not closed after endpoint teardown")
	}
}

func TestSessionEndpoint_DispatchesBallResult(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	s := domain.NewSession()
	tr := mocks.NewMockTransport(ctrl)
	c := domain.NewConnection(s.ID(), tr)
	ps := mocks.NewMockPubSub(ctrl)
	d := mocks.NewMockDispatcher(ctrl)

	msgCh := make(chan domain.Message)
	ps.EXPECT().Subscribe(gomock.Any()).Return(msgCh)
	ps.EXPECT().Unsubscribe(gomock.Any(), gomock.Any())

	ballResult, err := domain.Encode(domain.EventBallResult, domain.BallResultPayload{
		BallID: "1700000000000-abcd",
		Result: domain.ResultGoal,
	})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	reads := make(chan []byte, 1)
	reads <- ballResult
	tr.EXPECT().Read(gomock.Any()).DoAndReturn(func(ctx context.Context) ([]byte, error) {
		select {
		case data := <-reads:
			return data, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}).AnyTimes()
	tr.EXPECT().Write(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	tr.EXPECT().Close(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	dispatched := make(chan domain.InboundMessage, 8)
	d.EXPECT().Dispatch(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, msg domain.InboundMessage) error {
		dispatched <- msg
		return nil
	}).AnyTimes()

	se, err := domain.NewSessionEndpoint(s, c, ps, d)
	if err != nil {
		t.Fatalf("NewSessionEndpoint: %v", err)
	}

	runDone := make(chan error, 1)
	go func() { runDone <- se.Run() }()
	defer func() {
		se.Close(context.Background())
		<-runDone
	}()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case msg := <-dispatched:
			if msg.SessionID != s.ID() {
				t.Errorf("dispatched SessionID = %v, want %v", msg.SessionID, s.ID())
			}
			env, err := domain.DecodeEnvelope(msg.Data)
			if err != nil {
				t.Fatalf("DecodeEnvelope: %v", err)
			}
			if env.T == domain.EventBallResult {
				return
			}
			// join and leave notifications also come through here
		case <-deadline:
			t.Fatal("ballResult never reached the dispatcher")
		}
	}
}

func TestSessionEndpoint_SendBackpressure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	s := domain.NewSession()
	tr := mocks.NewMockTransport(ctrl)
	c := domain.NewConnection(s.ID(), tr)
	ps := mocks.NewMockPubSub(ctrl)
	d := mocks.NewMockDispatcher(ctrl)

	se, err := domain.NewSessionEndpoint(s, c, ps, d)
	if err != nil {
		t.Fatalf("NewSessionEndpoint: %v", err)
	}

	// Run is never started, so nothing drains the write channel.
	var backpressure error
	for i := 0; i < 2048; i++ {
		if err := se.Send([]byte("x")); err != nil {
			backpressure = err
			break
		}
	}
	if backpressure != domain.ErrBackpressure {
		t.Errorf("err = %v, want %v", backpressure, domain.ErrBackpressure)
	}
}
