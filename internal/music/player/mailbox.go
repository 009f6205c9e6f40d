package player

import "sync"

// mailbox is an unbounded FIFO of tasks for the player worker. Posting never
// blocks, so gateway callbacks may fire from any goroutine, including from
// inside Play itself.
type mailbox struct {
	mu     sync.Mutex
	tasks  []func()
	signal chan struct{}
}

func newMailbox() *mailbox {
	return &mailbox{signal: make(chan struct{}, 1)}
}

func (m *mailbox) post(task func()) {
	m.mu.Lock()
	m.tasks = append(m.tasks, task)
	m.mu.Unlock()

	select {
	case m.signal <- struct{}{}:
	default:
	}
}

func (m *mailbox) drain() []func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	tasks := m.tasks
	m.tasks = nil
	return tasks
}
