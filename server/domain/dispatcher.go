package domain

import "context"

//go:generate go tool mockgen -destination=./mocks/dispatcher_mock.go -package=mocks . Dispatcher

// InboundMessage is a raw envelope on its way into the game loop, tagged
// with the session it came from. Chat-originated events carry an empty
// session id.
type InboundMessage struct {
	SessionID SessionID
	Data      []byte
}

// Dispatcher carries events from the transport layer into the application.
type Dispatcher interface {
	Dispatch(ctx context.Context, msg InboundMessage) error
}
