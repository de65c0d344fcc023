package server

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// WsBroker fans sync summaries out to every connected dashboard. Clients
// register a message channel; events written to Notifier reach all of them.
type WsBroker struct {
	// Events are pushed to this channel by the sync service
	Notifier chan []byte

	// New client connections
	newClients chan chan []byte

	// Closed client connections
	closingClients chan chan []byte

	// Client connections registry
	clients map[chan []byte]bool

	*sync.RWMutex
}

func NewWsBroker() *WsBroker {
	return &WsBroker{
		Notifier:       make(chan []byte, 1),
		newClients:     make(chan chan []byte),
		closingClients: make(chan chan []byte),
		clients:        make(map[chan []byte]bool),
		RWMutex:        &sync.RWMutex{},
	}
}

func (b *WsBroker) registerClient(s chan []byte) {
	b.Lock()
	defer b.Unlock()
	b.clients[s] = true
}

func (b *WsBroker) delClient(s chan []byte) {
	b.Lock()
	defer b.Unlock()
	delete(b.clients, s)
}

func (b *WsBroker) Listen(logger *slog.Logger) {
	for {
		select {
		case s := <-b.newClients:
			b.registerClient(s)
			logger.Info("ws client added", "clients", len(b.clients))
		case s := <-b.closingClients:
			b.delClient(s)
			logger.Info("ws client removed", "clients", len(b.clients))
		case event := <-b.Notifier:
			for clientMessageChan := range b.clients {
				clientMessageChan <- event
			}
		}
	}
}

const (
	readBuffSize = 2 << 10
	writeBuffSize
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  readBuffSize,
	WriteBufferSize: writeBuffSize,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// handleWs streams sync summaries to a dashboard until it disconnects. The
// session middleware has already vetted the request.
func (s *server) handleWs(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("error while upgrading connection", "error", err)
		return
	}
	defer conn.Close()

	messageChan := make(chan []byte)
	s.broker.newClients <- messageChan
	defer func() {
		s.broker.closingClients <- messageChan
	}()

	go func() {
		for msgBytes := range messageChan {
			if err := conn.WriteMessage(websocket.TextMessage, msgBytes); err != nil {
				s.logger.Error("failed to write ws msg", "error", err)
				break
			}
		}
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
