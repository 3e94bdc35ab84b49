// Package live рассылает события вовлеченности подписчикам конкретного поста.
package live

import (
	"sync"

	"github.com/ButyrinIA/feedrank/internal/logger"
	"github.com/ButyrinIA/feedrank/internal/models"
	"github.com/sirupsen/logrus"
)

const bufferSize = 32

type subscriber struct {
	ch chan models.EngagementEvent
}

// Hub хранит подписчиков по id поста. Publish не блокируется:
// медленный подписчик теряет событие, а не тормозит запись.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[string]map[*subscriber]struct{}
	closed bool
	log    *logrus.Entry
}

func NewHub() *Hub {
	return &Hub{
		rooms: make(map[string]map[*subscriber]struct{}),
		log:   logger.For("live"),
	}
}

// Subscribe возвращает канал событий поста и функцию отписки.
// Канал закрывается при отписке или остановке хаба.
func (h *Hub) Subscribe(postID string) (<-chan models.EngagementEvent, func()) {
	sub := &subscriber{ch: make(chan models.EngagementEvent, bufferSize)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(sub.ch)
		return sub.ch, func() {}
	}
	if h.rooms[postID] == nil {
		h.rooms[postID] = make(map[*subscriber]struct{})
	}
	h.rooms[postID][sub] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return sub.ch, func() {
		once.Do(func() { h.remove(postID, sub) })
	}
}

func (h *Hub) remove(postID string, sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[postID]
	if !ok {
		return
	}
	if _, ok := room[sub]; !ok {
		return
	}
	delete(room, sub)
	close(sub.ch)
	if len(room) == 0 {
		delete(h.rooms, postID)
	}
}

// Publish рассылает событие всем подписчикам поста
func (h *Hub) Publish(evt models.EngagementEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.rooms[evt.PostID] {
		select {
		case sub.ch <- evt:
		default:
			h.log.WithField("postId", evt.PostID).Debug("подписчик не успевает, событие отброшено")
		}
	}
}

// Subscribers - количество подписчиков поста
func (h *Hub) Subscribers(postID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[postID])
}

// Stop закрывает все каналы подписчиков
func (h *Hub) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for postID, room := range h.rooms {
		for sub := range room {
			close(sub.ch)
		}
		delete(h.rooms, postID)
	}
	h.closed = true
}
