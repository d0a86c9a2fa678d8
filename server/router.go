package server

import (
	"net/http"

	"github.com/JoniJuntto/rantalentis/server/domain"
	"github.com/JoniJuntto/rantalentis/server/handler"
)

func Route(pubsub domain.PubSub, dispatcher domain.Dispatcher) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/ws", handler.NewAcceptHandler(pubsub, dispatcher))
	mux.Handle("/healthz", handler.NewHealthHandler())
	return mux
}
