package bot

import (
	"sync"
)

// Serializer runs submitted work one at a time per chat, in submission
// order. Different chats run concurrently.
type Serializer struct {
	mu     sync.Mutex
	queues map[int64][]func()
	wg     sync.WaitGroup
}

func NewSerializer() *Serializer {
	return &Serializer{queues: make(map[int64][]func())}
}

func (s *Serializer) Submit(chatID int64, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	queue, running := s.queues[chatID]
	s.queues[chatID] = append(queue, fn)

	if !running {
		s.wg.Add(1)
		go s.drain(chatID)
	}
}

// Wait blocks until every submitted function has returned.
func (s *Serializer) Wait() {
	s.wg.Wait()
}

func (s *Serializer) drain(chatID int64) {
	defer s.wg.Done()

	for {
		s.mu.Lock()
		queue := s.queues[chatID]
		if len(queue) == 0 {
			delete(s.queues, chatID)
			s.mu.Unlock()
			return
		}
		fn := queue[0]
		s.queues[chatID] = queue[1:]
		s.mu.Unlock()

		fn()
	}
}
