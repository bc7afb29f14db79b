package dupfind

import "sync"

// dirQueue is a FIFO of pending directories shared by the directory listers.
// It tracks how many tasks are being processed so that pop can tell an empty
// queue that will be refilled from a finished walk.
type dirQueue struct {
	mu       sync.Mutex
	cond     *sync.Cond
	tasks    []DirectoryTask
	inFlight int
	closed   bool
}

func newDirQueue() *dirQueue {
	q := &dirQueue{}
	q.cond = sync.NewCond(&q.mu)

	return q
}

// push appends a task. It is a no-op once the queue is closed.
func (q *dirQueue) push(task DirectoryTask) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.tasks = append(q.tasks, task)
	q.cond.Signal()
}

// pop removes the head task, blocking while the queue is empty but other
// tasks are still in flight. It returns false when the walk is complete or
// the queue was closed. Every successful pop must be paired with done.
func (q *dirQueue) pop() (DirectoryTask, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for {
		if q.closed {
			return DirectoryTask{}, false
		}

		if len(q.tasks) > 0 {
			task := q.tasks[0]
			q.tasks[0] = DirectoryTask{}
			q.tasks = q.tasks[1:]
			q.inFlight++

			return task, true
		}

		if q.inFlight == 0 {
			q.closed = true
			q.cond.Broadcast()

			return DirectoryTask{}, false
		}

		q.cond.Wait()
	}
}

// done marks a popped task as processed.
func (q *dirQueue) done() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.inFlight--
	if q.inFlight == 0 {
		q.cond.Broadcast()
	}
}

// close wakes all waiters and makes further pops fail.
func (q *dirQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true
	q.cond.Broadcast()
}

// len returns the number of queued tasks.
func (q *dirQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.tasks)
}
