package workers

import (
	"errors"
	"runtime"
	"sync"
)

type Task func() error

// Pool runs submitted tasks on a fixed number of goroutines and collects their
// errors. A Pool is single use: once Close returns it cannot accept tasks.
type Pool struct {
	numWorkers int
	tasks      chan Task
	once       sync.Once
	wg         sync.WaitGroup

	mu   sync.Mutex
	errs []error
}

// NewPool creates a pool with numWorkers goroutines. Non-positive values use
// GOMAXPROCS.
func NewPool(numWorkers int) *Pool {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	return &Pool{
		numWorkers: numWorkers,
		tasks:      make(chan Task, numWorkers),
	}
}

func (p *Pool) Size() int {
	return p.numWorkers
}

func (p *Pool) Start() {
	p.once.Do(func() {
		for i := 0; i < p.numWorkers; i++ {
			p.wg.Go(func() {
				for task := range p.tasks {
					if task == nil {
						continue
					}
					if err := task(); err != nil {
						p.mu.Lock()
						p.errs = append(p.errs, err)
						p.mu.Unlock()
					}
				}
			})
		}
	})
}

// Submit blocks until a worker accepts the task. Submitting after Close panics.
func (p *Pool) Submit(task Task) {
	p.tasks <- task
}

// Close stops accepting tasks, waits for the running ones and returns the
// joined task errors.
func (p *Pool) Close() error {
	close(p.tasks)
	p.wg.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()
	return errors.Join(p.errs...)
}

// ForEachChunk splits [0, n) into contiguous chunks of at most chunkSize items
// and calls fn for every chunk on a pool of numWorkers goroutines.
func ForEachChunk(n, chunkSize, numWorkers int, fn func(start, end int) error) error {
	if n <= 0 {
		return nil
	}
	if chunkSize <= 0 {
		chunkSize = n
	}

	pool := NewPool(numWorkers)
	pool.Start()
	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		pool.Submit(func() error {
			return fn(start, end)
		})
	}
	return pool.Close()
}
