package seed

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Task is one unit of import work.
type Task func(ctx context.Context) error

// WorkerPool runs import tasks concurrently and collects their errors.
type WorkerPool struct {
	workerCount int
	taskQueue   chan Task
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	log         *zap.Logger

	mu     sync.Mutex
	errs   []error
	closed bool
}

func NewWorkerPool(ctx context.Context, workerCount int, log *zap.Logger) *WorkerPool {
	if workerCount < 1 {
		workerCount = 1
	}
	ctx, cancel := context.WithCancel(ctx)
	return &WorkerPool{
		workerCount: workerCount,
		taskQueue:   make(chan Task, workerCount*2),
		ctx:         ctx,
		cancel:      cancel,
		log:         log,
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start() {
	for i := 0; i < wp.workerCount; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
	wp.log.Debug("seed worker pool started", zap.Int("workers", wp.workerCount))
}

// Submit queues a task. Tasks submitted after cancellation are dropped.
func (wp *WorkerPool) Submit(task Task) {
	select {
	case wp.taskQueue <- task:
	case <-wp.ctx.Done():
		wp.log.Warn("seed worker pool is shutting down, task rejected")
	}
}

// Wait closes the queue, blocks until every task finished and returns
// the errors they reported.
func (wp *WorkerPool) Wait() []error {
	wp.mu.Lock()
	if !wp.closed {
		close(wp.taskQueue)
		wp.closed = true
	}
	wp.mu.Unlock()

	wp.wg.Wait()
	wp.cancel()

	wp.mu.Lock()
	defer wp.mu.Unlock()
	return wp.errs
}

func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for {
		select {
		case task, ok := <-wp.taskQueue:
			if !ok {
				return
			}
			if err := task(wp.ctx); err != nil {
				wp.log.Error("seed task failed", zap.Int("worker", id), zap.Error(err))
				wp.mu.Lock()
				wp.errs = append(wp.errs, err)
				wp.mu.Unlock()
			}
		case <-wp.ctx.Done():
			return
		}
	}
}
