package notifications

import (
	"sync"
	"time"
)

// Типы событий SSE-потока.
const (
	EventConnected         = "connected"
	EventCollectionChanged = "collection_changed"
)

// Event — уведомление об изменении коллекции. WriteID несет идентификатор
// исходной записи клиента, чтобы подписчик мог детерминированно отбросить
// эхо собственной записи.
type Event struct {
	Type       string    `json:"type"`
	Collection string    `json:"collection,omitempty"`
	WriteID    string    `json:"write_id,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Hub рассылает события изменений всем подписанным клиентам дашборда.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[chan Event]struct{}
}

// NewHub создает хаб для SSE-подписок.
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[chan Event]struct{}),
	}
}

// Subscribe подписывает клиента на события и возвращает канал и функцию отписки.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 16)

	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()

	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()

		if _, exists := h.subscribers[ch]; exists {
			delete(h.subscribers, ch)
			close(ch)
		}
	}
}

// Publish отправляет событие всем подписчикам. Медленный подписчик
// пропускает событие, рассылка никогда не блокируется.
func (h *Hub) Publish(event Event) {
	event.Timestamp = time.Now().UTC()

	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}
