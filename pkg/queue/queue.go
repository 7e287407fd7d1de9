package queue

import (
	"context"
	"time"

	"github.com/starpaykids/allowance/pkg/allowance"
)

// Task is a deferred unit of work. Delay is honored before the first run;
// once enqueued a task always fires, there is no cancellation.
type Task struct {
	Name       string
	Delay      time.Duration
	RetryCount int

	Run func(ctx context.Context) error
}

// Service runs fire-and-forget tasks on a single worker, in order. Failed
// tasks are requeued up to maxRetries before the error is reported to the
// webhook channel.
type Service struct {
	tasks      chan Task
	quit       chan bool
	maxRetries int

	ctx context.Context
	wm  allowance.WebhookMessager
}

func NewService(maxRetries int, ctx context.Context, wm allowance.WebhookMessager) *Service {
	return &Service{
		tasks:      make(chan Task, 64),
		quit:       make(chan bool),
		maxRetries: maxRetries,
		ctx:        ctx,
		wm:         wm,
	}
}

func (s *Service) Enqueue(task Task) {
	s.tasks <- task
}

func (s *Service) Close() {
	s.quit <- true
}

func (s *Service) Start() error {
	for {
		select {
		case task := <-s.tasks:
			if task.Delay > 0 {
				t := time.NewTimer(task.Delay)
				select {
				case <-t.C:
				case <-s.quit:
					t.Stop()
					return nil
				}
			}

			err := task.Run(s.ctx)
			if err != nil {
				// if there is an error, requeue the task
				if task.RetryCount < s.maxRetries {
					task.RetryCount++
					task.Delay = time.Duration(task.RetryCount) * time.Second
					s.tasks <- task
					continue
				}

				s.wm.NotifyError(s.ctx, err)
			}
		case <-s.quit:
			// quit the service
			return nil
		}
	}
}
