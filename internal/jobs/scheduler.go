package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// Enqueuer is the subset of *asynq.Client used to schedule tasks.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Scheduler enqueues cache warm-ups after admin writes.
type Scheduler struct {
	Client Enqueuer
	Queue  string
	// Delay lets bursts of admin writes collapse into one warm-up.
	Delay  time.Duration
	Unique time.Duration
	Logger zerolog.Logger
}

// ScheduleWarm enqueues a warm task for shopID. A warm-up already pending for
// the shop satisfies the request.
func (s Scheduler) ScheduleWarm(ctx context.Context, shopID uuid.UUID) error {
	if s.Client == nil {
		return nil
	}
	task, err := NewWarmTask(shopID)
	if err != nil {
		return err
	}
	opts := []asynq.Option{asynq.MaxRetry(5), asynq.Timeout(time.Minute)}
	if s.Queue != "" {
		opts = append(opts, asynq.Queue(s.Queue))
	}
	if s.Delay > 0 {
		opts = append(opts, asynq.ProcessIn(s.Delay))
	}
	if s.Unique > 0 {
		opts = append(opts, asynq.Unique(s.Unique))
	}
	info, err := s.Client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		if errors.Is(err, asynq.ErrDuplicateTask) {
			s.Logger.Debug().Str("shop_id", shopID.String()).Msg("warm task already pending")
			return nil
		}
		return err
	}
	s.Logger.Debug().Str("shop_id", shopID.String()).Str("task_id", info.ID).Msg("warm task enqueued")
	return nil
}
