package websocket

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/dom/recipe-share/internal/domain"
)

// Hub fans recipe events out to every connected feed client.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	stop       chan struct{}
	done       chan struct{} // closed when Run() exits
	stopped    bool
	seq        int64
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.stop:
			h.mu.Lock()
			h.stopped = true
			for client := range h.clients {
				client.Close()
			}
			h.clients = make(map[*Client]bool)
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.Close()
			}
			h.mu.Unlock()

		case data := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- data:
				default:
					// Slow consumer; drop it rather than stall the feed.
					log.Printf("Hub: dropping slow feed client %s", client.remoteAddr)
					delete(h.clients, client)
					client.Close()
				}
			}
			h.mu.Unlock()
		}
	}
}

// Stop closes every client and blocks until Run has exited.
func (h *Hub) Stop() {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return
	}
	h.stopped = true
	h.mu.Unlock()

	close(h.stop)
	<-h.done
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.stop:
		client.Close()
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.stop:
	}
}

// Publish queues event for delivery to all clients. Events published after
// Stop are dropped.
func (h *Hub) Publish(event domain.RecipeEvent) {
	h.mu.Lock()
	h.seq++
	seq := h.seq
	h.mu.Unlock()

	msg, err := NewMessage(MessageType(event.Type), event.Recipe)
	if err != nil {
		log.Printf("ERROR [hub.Publish] failed to build %s message: %v", event.Type, err)
		return
	}
	msg.Seq = seq

	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("ERROR [hub.Publish] failed to marshal %s message: %v", event.Type, err)
		return
	}

	select {
	case h.broadcast <- data:
	case <-h.stop:
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
