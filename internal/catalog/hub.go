package catalog

import "sync"

// Hub fans snapshots out to subscribers. Each subscriber only ever has the newest snapshot
// waiting, so a slow reader skips intermediate versions instead of blocking Publish.
type Hub struct {
	mu   sync.Mutex
	subs map[int]chan *Snapshot
	next int
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan *Snapshot)}
}

// Subscribe registers a new subscriber. The returned func unsubscribes and closes the channel.
func (h *Hub) Subscribe() (<-chan *Snapshot, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.next
	h.next++
	ch := make(chan *Snapshot, 1)
	h.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs, id)
			close(ch)
		})
	}
}

// Publish delivers s to every subscriber, replacing any snapshot they have not read yet
func (h *Hub) Publish(s *Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.subs {
		select {
		case ch <- s:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- s:
		default:
		}
	}
}

// Len reports the number of active subscribers
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
