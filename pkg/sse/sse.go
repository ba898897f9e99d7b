package sse

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// Hub streams location updates to watchers. Each emergency session gets its
// own group; contacts following a live session subscribe to that group.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*client
	groups  map[string]map[string]bool // group -> clientID set
	retryMs int
}

type client struct {
	id     string
	groups map[string]bool
	ch     chan string
	done   chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*client),
		groups:  make(map[string]map[string]bool),
		retryMs: 5000,
	}
}

func (h *Hub) add(id string, groups ...string) *client {
	h.mu.Lock()
	defer h.mu.Unlock()
	c := &client{id: id, groups: make(map[string]bool), ch: make(chan string, 64), done: make(chan struct{})}
	h.clients[id] = c
	for _, g := range groups {
		c.groups[g] = true
		if h.groups[g] == nil {
			h.groups[g] = make(map[string]bool)
		}
		h.groups[g][id] = true
	}
	return c
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	if c, ok := h.clients[id]; ok {
		close(c.done)
		for g := range c.groups {
			delete(h.groups[g], id)
		}
		delete(h.clients, id)
	}
	h.mu.Unlock()
}

// Publish fans an event out to every subscriber of the group. Slow clients
// drop events rather than block the publisher.
func (h *Hub) Publish(group, event string, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return
	}
	msg := fmt.Sprintf("event: %s\ndata: %s\n\n", event, raw)
	h.mu.RLock()
	defer h.mu.RUnlock()
	for id := range h.groups[group] {
		c, ok := h.clients[id]
		if !ok {
			continue
		}
		select {
		case c.ch <- msg:
		default:
		}
	}
}

// Serve attaches the request to the hub until the client goes away.
func (h *Hub) Serve(c *gin.Context, clientID string, groups ...string) {
	cl := h.add(clientID, groups...)
	defer h.remove(clientID)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Writer.WriteString(fmt.Sprintf("retry: %d\n\n", h.retryMs))
	c.Writer.Flush()

	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case msg := <-cl.ch:
			fmt.Fprint(w, msg)
			return true
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			return true
		case <-cl.done:
			return false
		case <-c.Request.Context().Done():
			return false
		}
	})
}
