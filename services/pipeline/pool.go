// File: services/pipeline/pool.go
package pipeline

import "sync"

// Task is one unit of queued work.
type Task func()

// WorkerPool runs queued tasks on a fixed set of goroutines. Resize stops
// the current workers, lets them drain everything already queued, and
// relaunches with the new count, so callers awaiting in-flight tasks always
// receive their result.
type WorkerPool struct {
	mu      sync.Mutex
	tasks   chan Task
	stopCh  chan struct{}
	wg      sync.WaitGroup
	workers int
	stopped bool
}

func NewWorkerPool(workers int) *WorkerPool {
	p := &WorkerPool{tasks: make(chan Task, 64)}
	p.mu.Lock()
	p.startLocked(workers)
	p.mu.Unlock()
	return p
}

// startLocked must be called with p.mu held.
func (p *WorkerPool) startLocked(n int) {
	if n < 1 {
		n = 1
	}
	p.stopCh = make(chan struct{})
	p.workers = n
	p.stopped = false
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go p.worker(p.stopCh)
	}
}

func (p *WorkerPool) worker(stop chan struct{}) {
	defer p.wg.Done()
	for {
		select {
		case task := <-p.tasks:
			task()
		case <-stop:
			// Drain whatever is already queued before exiting.
			for {
				select {
				case task := <-p.tasks:
					task()
				default:
					return
				}
			}
		}
	}
}

// Submit enqueues a task. It reports false when the pool is stopped or the
// queue is full, in which case the caller should run the task itself.
// Holding the lock across the enqueue keeps Submit atomic with respect to
// Stop/Resize: a task accepted here is always seen by the drain.
func (p *WorkerPool) Submit(task Task) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return false
	}
	select {
	case p.tasks <- task:
		return true
	default:
		return false
	}
}

// Resize drains and stops the current workers, then relaunches the pool
// with n workers. Tasks already dequeued run to completion first.
func (p *WorkerPool) Resize(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.stopped {
		close(p.stopCh)
		p.wg.Wait()
	}
	p.startLocked(n)
}

// Stop shuts the pool down after draining queued tasks.
func (p *WorkerPool) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return
	}
	p.stopped = true
	close(p.stopCh)
	p.wg.Wait()
}

// Workers reports the current worker count.
func (p *WorkerPool) Workers() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return 0
	}
	return p.workers
}
