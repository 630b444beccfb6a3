package ui

import (
	"sync"
)

// SerialExecutor is an in-process Executor. Each UI gets one FIFO queue
// drained by a dedicated goroutine, so callbacks for the same UI never
// overlap. Detach stops the queue, drops pending work, and fires the
// registered hooks once.
type SerialExecutor struct {
	mu     sync.Mutex
	queues map[UI]*uiQueue
	dead   map[UI]bool
}

func NewSerialExecutor() *SerialExecutor {
	return &SerialExecutor{
		queues: map[UI]*uiQueue{},
		dead:   map[UI]bool{},
	}
}

func (e *SerialExecutor) Access(u UI, fn func()) {
	e.mu.Lock()
	if e.dead[u] {
		e.mu.Unlock()
		return
	}
	q := e.queueFor(u)
	e.mu.Unlock()
	q.enqueue(fn)
}

func (e *SerialExecutor) OnDetach(u UI, hook func()) {
	e.mu.Lock()
	if e.dead[u] {
		e.mu.Unlock()
		hook()
		return
	}
	q := e.queueFor(u)
	q.hooks = append(q.hooks, hook)
	e.mu.Unlock()
}

// Detach permanently discards u: pending work is dropped, later Access
// calls are no-ops, and every OnDetach hook runs exactly once. Detaching an
// unknown or already detached UI is a no-op.
func (e *SerialExecutor) Detach(u UI) {
	e.mu.Lock()
	if e.dead[u] {
		e.mu.Unlock()
		return
	}
	e.dead[u] = true
	q := e.queues[u]
	delete(e.queues, u)
	var hooks []func()
	if q != nil {
		hooks = q.hooks
		q.hooks = nil
	}
	e.mu.Unlock()

	if q != nil {
		q.stop()
	}
	for _, hook := range hooks {
		hook()
	}
}

// Close detaches every known UI.
func (e *SerialExecutor) Close() {
	e.mu.Lock()
	uis := make([]UI, 0, len(e.queues))
	for u := range e.queues {
		uis = append(uis, u)
	}
	e.mu.Unlock()
	for _, u := range uis {
		e.Detach(u)
	}
}

// caller holds e.mu
func (e *SerialExecutor) queueFor(u UI) *uiQueue {
	q, ok := e.queues[u]
	if !ok {
		q = newUIQueue()
		e.queues[u] = q
		go q.run()
	}
	return q
}

type uiQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	tasks  []func()
	closed bool
	hooks  []func()
}

func newUIQueue() *uiQueue {
	q := &uiQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *uiQueue) enqueue(fn func()) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.tasks = append(q.tasks, fn)
	q.mu.Unlock()
	q.cond.Signal()
}

func (q *uiQueue) stop() {
	q.mu.Lock()
	q.closed = true
	q.tasks = nil
	q.mu.Unlock()
	q.cond.Broadcast()
}

func (q *uiQueue) run() {
	for {
		q.mu.Lock()
		for len(q.tasks) == 0 && !q.closed {
			q.cond.Wait()
		}
		if q.closed {
			q.mu.Unlock()
			return
		}
		fn := q.tasks[0]
		q.tasks = q.tasks[1:]
		q.mu.Unlock()
		fn()
	}
}
