// Package websocket pushes sensor tree snapshots to browsers.
package websocket

import (
	"context"
	"encoding/json"
	"time"

	"hwmonitor/internal/logger"
	"hwmonitor/internal/tree"
)

type Snapshotter interface {
	Snapshot() *tree.Node
}

type Hub struct {
	source   Snapshotter
	interval time.Duration
	log      logger.Logger

	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client
	done       chan struct{}
}

func NewHub(source Snapshotter, interval time.Duration, log logger.Logger) *Hub {
	return &Hub{
		source:   source,
		interval: interval,
		log:      log,

		clients: make(map[*Client]bool),

		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run owns the client set. Every interval one snapshot is built and sent
// to all clients; new clients get one immediately.
func (h *Hub) Run(ctx context.Context) error {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.log.Info("ws: hub shutting down", "clients", len(h.clients))
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			return ctx.Err()

		case client := <-h.register:
			h.clients[client] = true
			h.log.Debug("ws: client registered", "id", client.ID, "total_clients", len(h.clients))

			if payload, ok := h.payload(); ok {
				h.deliver(client, payload)
			}

		case client := <-h.unregister:
			if !h.clients[client] {
				continue
			}
			delete(h.clients, client)
			close(client.send)
			h.log.Debug("ws: client unregistered", "id", client.ID, "total_clients", len(h.clients))

		case <-ticker.C:
			if len(h.clients) == 0 {
				continue
			}
			payload, ok := h.payload()
			if !ok {
				continue
			}
			for client := range h.clients {
				h.deliver(client, payload)
			}
		}
	}
}

// deliver drops clients whose buffer is full instead of blocking the hub.
func (h *Hub) deliver(client *Client, payload []byte) {
	select {
	case client.send <- payload:
	default:
		h.log.Warn("ws: client too slow, dropping", "id", client.ID)
		delete(h.clients, client)
		close(client.send)
	}
}

func (h *Hub) payload() ([]byte, bool) {
	data, err := json.Marshal(h.source.Snapshot())
	if err != nil {
		h.log.Error("ws: failed to encode snapshot", "error", err)
		return nil, false
	}
	return data, true
}

func (h *Hub) join(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}
