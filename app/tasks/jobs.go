package tasks

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInterval = errors.New("interval must be positive")
	ErrJobsStopped     = errors.New("jobs manager is stopped")
)

// Job describes a chat's recurring auto-post.
type Job struct {
	ID        string
	ChatID    int64
	Category  string
	Interval  time.Duration
	CreatedAt time.Time
}

type runningJob struct {
	Job
	cancel context.CancelFunc
}

// Jobs keeps at most one auto-post job per chat. Every tick becomes an
// AutoPostTask on the scheduler.
type Jobs struct {
	scheduler TaskSchedulerInterface
	handler   Handler

	mu      sync.Mutex
	jobs    map[int64]*runningJob
	stopped bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewJobs(scheduler TaskSchedulerInterface, handler Handler) *Jobs {
	ctx, cancel := context.WithCancel(context.Background())

	return &Jobs{
		scheduler: scheduler,
		handler:   handler,
		jobs:      make(map[int64]*runningJob),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Schedule registers a job for the chat, replacing any job it already has.
func (j *Jobs) Schedule(chatID int64, interval, firstDelay time.Duration, category string) (Job, error) {
	if interval <= 0 {
		return Job{}, ErrInvalidInterval
	}
	if firstDelay < 0 {
		firstDelay = 0
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	if j.stopped {
		return Job{}, ErrJobsStopped
	}

	if old, ok := j.jobs[chatID]; ok {
		old.cancel()
		slog.Debug("Auto-post job replaced", "chat_id", chatID, "job_id", old.ID)
	}

	ctx, cancel := context.WithCancel(j.ctx)
	job := &runningJob{
		Job: Job{
			ID:        uuid.NewString(),
			ChatID:    chatID,
			Category:  category,
			Interval:  interval,
			CreatedAt: time.Now(),
		},
		cancel: cancel,
	}
	j.jobs[chatID] = job

	j.wg.Add(1)
	go j.run(ctx, job.Job, firstDelay)

	slog.Info("Auto-post job scheduled", "chat_id", chatID, "job_id", job.ID, "category", category, "interval", interval.String())

	return job.Job, nil
}

// Cancel removes the chat's job and reports whether there was one.
func (j *Jobs) Cancel(chatID int64) bool {
	j.mu.Lock()
	defer j.mu.Unlock()

	job, ok := j.jobs[chatID]
	if !ok {
		return false
	}

	job.cancel()
	delete(j.jobs, chatID)

	slog.Info("Auto-post job cancelled", "chat_id", chatID, "job_id", job.ID)
	return true
}

func (j *Jobs) Active(chatID int64) (Job, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()

	job, ok := j.jobs[chatID]
	if !ok {
		return Job{}, false
	}
	return job.Job, true
}

// List returns all jobs ordered by chat ID.
func (j *Jobs) List() []Job {
	j.mu.Lock()
	defer j.mu.Unlock()

	list := make([]Job, 0, len(j.jobs))
	for _, job := range j.jobs {
		list = append(list, job.Job)
	}
	sort.Slice(list, func(a, b int) bool {
		return list[a].ChatID < list[b].ChatID
	})
	return list
}

func (j *Jobs) Count() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.jobs)
}

// Stop cancels every job and waits for their timers to exit.
func (j *Jobs) Stop() {
	j.mu.Lock()
	j.stopped = true
	j.jobs = make(map[int64]*runningJob)
	j.mu.Unlock()

	j.cancel()
	j.wg.Wait()
}

func (j *Jobs) isCurrent(chatID int64, jobID string) bool {
	j.mu.Lock()
	defer j.mu.Unlock()

	job, ok := j.jobs[chatID]
	return ok && job.ID == jobID
}

func (j *Jobs) run(ctx context.Context, job Job, firstDelay time.Duration) {
	defer j.wg.Done()

	timer := time.NewTimer(firstDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return
	case <-timer.C:
		j.tick(job)
	}

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.tick(job)
		}
	}
}

func (j *Jobs) tick(job Job) {
	if !j.isCurrent(job.ChatID, job.ID) {
		return
	}

	task := NewAutoPostTask(job.ChatID, job.ID, job.Category, j.handler, j.isCurrent)
	if err := j.scheduler.EnqueueTask(task); err != nil {
		slog.Error("Failed to enqueue auto-post task", "chat_id", job.ChatID, "job_id", job.ID, "error", err)
	}
}
