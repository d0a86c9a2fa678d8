package handler

import (
	"log/slog"
	"net/http"

	"github.com/coder/websocket"

	adapterws "github.com/JoniJuntto/rantalentis/server/adapter/websocket"
	"github.com/JoniJuntto/rantalentis/server/domain"
)

type AcceptHandler struct {
	pubsub     domain.PubSub
	dispatcher domain.Dispatcher
}

func NewAcceptHandler(pubsub domain.PubSub, dispatcher domain.Dispatcher) *AcceptHandler {
	return &AcceptHandler{pubsub: pubsub, dispatcher: dispatcher}
}

func (h *AcceptHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // dev: skip origin check
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to accept", "err", err)
		return
	}

	session := domain.NewSession()
	transport := adapterws.NewTransportFrom(conn)
	connection := domain.NewConnection(session.ID(), transport)
	endpoint, err := domain.NewSessionEndpoint(session, connection, h.pubsub, h.dispatcher)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create session endpoint", "err", err)
		connection.Close()
		return
	}
	slog.DebugContext(ctx, "accepted new connection", "sessionID", session.ID())
	if err := endpoint.Run(); err != nil {
		slog.ErrorContext(ctx, "session endpoint stopped", "sessionID", session.ID(), "err", err)
	}
}
