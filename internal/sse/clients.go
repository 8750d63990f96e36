// Package sse fans out server-sent events to connected viewers.
package sse

import (
	"fmt"
	"io"
	"sync"
)

type Event struct {
	Name string
	Data string
}

// Write renders e in text/event-stream framing.
func (e Event) Write(w io.Writer) error {
	if e.Name != "" {
		if _, err := fmt.Fprintf(w, "event: %s\n", e.Name); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "data: %s\n\n", e.Data)
	return err
}

type Client struct {
	Msg chan Event
}

func NewClient() *Client {
	// One slot so a publish right after connecting is not lost.
	return &Client{Msg: make(chan Event, 1)}
}

type Clients struct {
	clients map[*Client]bool
	mu      sync.RWMutex
}

func NewClients() *Clients {
	return &Clients{
		clients: make(map[*Client]bool),
	}
}

func (s *Clients) Add(client *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[client] = true
}

func (s *Clients) Delete(client *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[client]; !ok {
		return
	}
	delete(s.clients, client)
	close(client.Msg)
}

func (s *Clients) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Broadcast hands ev to every client that is ready for it; slow clients miss it.
func (s *Clients) Broadcast(ev Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for client := range s.clients {
		select {
		case client.Msg <- ev:
		default:
		}
	}
}

// CloseAll disconnects every client.
func (s *Clients) CloseAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for client := range s.clients {
		close(client.Msg)
		delete(s.clients, client)
	}
	return nil
}
