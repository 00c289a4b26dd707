package payment

import (
	"sync"

	"go.uber.org/zap"
)

// Pool runs payment jobs on a fixed number of workers. The queue is
// bounded: Submit blocks once every worker is busy and the backlog is
// full, which only delays the outcome notification. The stock
// reservation has already happened on the caller's goroutine.
type Pool struct {
	jobs chan func()
	wg   sync.WaitGroup
	log  *zap.Logger

	once sync.Once
}

func NewPool(workers, depth int, log *zap.Logger) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if depth <= 0 {
		depth = workers
	}

	p := &Pool{
		jobs: make(chan func(), depth),
		log:  log,
	}

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	p.log.Info("payment pool started", zap.Int("workers", workers), zap.Int("depth", depth))
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for job := range p.jobs {
		job()
	}
}

// Submit enqueues a job. It must not be called after Stop.
func (p *Pool) Submit(job func()) {
	p.jobs <- job
}

// Stop drains every queued job and waits for the workers to finish.
func (p *Pool) Stop() {
	p.once.Do(func() {
		close(p.jobs)
	})
	p.wg.Wait()
}
