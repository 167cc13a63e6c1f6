package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const (
	taskQueueSize = 16
	taskTimeout   = 30 * time.Minute
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

// Scheduler runs sitemap tasks one at a time: a full refresh at start, then
// every interval, plus whatever is enqueued from outside.
type Scheduler struct {
	factory   ManagerFactory
	status    *Status
	interval  time.Duration
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	taskQueue chan TaskInterface
}

func NewScheduler(factory ManagerFactory, status *Status, interval time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		factory:   factory,
		status:    status,
		interval:  interval,
		ctx:       ctx,
		cancel:    cancel,
		taskQueue: make(chan TaskInterface, taskQueueSize),
	}
}

func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.worker()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		s.enqueueRefresh()

		if s.interval <= 0 {
			slog.Debug("Periodic sitemap refresh disabled")
			return
		}

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueRefresh()
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	close(s.taskQueue)
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

// Enqueue queues a sitemap task of the given type and returns its id.
func (s *Scheduler) Enqueue(taskType TaskType) (string, error) {
	task := NewSitemapTask(taskType, s.factory, s.status)
	if err := s.EnqueueTask(task); err != nil {
		return "", err
	}
	slog.Debug("Task enqueued", "type", string(taskType), "id", task.GetID())
	return task.GetID(), nil
}

func (s *Scheduler) enqueueRefresh() {
	if _, err := s.Enqueue(TaskTypeRefreshSitemaps); err != nil {
		slog.Warn("Failed to enqueue sitemap refresh", "error", err)
	}
}

func (s *Scheduler) worker() {
	defer s.wg.Done()

	for {
		select {
		case task, ok := <-s.taskQueue:
			if !ok {
				return
			}
			s.executeTask(task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, taskTimeout)
	defer cancel()

	if err := task.Execute(taskCtx); err != nil {
		slog.Error("Task execution failed", "type", string(task.GetType()), "id", task.GetID(), "duration", task.GetDuration(), "error", err)
	}
}
