package tasks

import (
	"context"
	"errors"
	"log/slog"

	"github.com/lysyi3m/news-bot/app/dispatch"
)

// AutoPostTask delivers one round of a chat's scheduled category.
type AutoPostTask struct {
	Task
	JobID    string
	Category string

	handler Handler
	current func(chatID int64, jobID string) bool
}

// NewAutoPostTask builds the task for one job tick. A round that failed
// before anything was sent is retried once; a partly sent round is not.
func NewAutoPostTask(chatID int64, jobID, category string, handler Handler, current func(chatID int64, jobID string) bool) *AutoPostTask {
	task := NewTask(TaskTypeAutoPost, chatID)
	task.MaxRetries = 1

	return &AutoPostTask{
		Task:     task,
		JobID:    jobID,
		Category: category,
		handler:  handler,
		current:  current,
	}
}

func (t *AutoPostTask) Execute(ctx context.Context) error {
	if t.current != nil && !t.current(t.ChatID, t.JobID) {
		slog.Debug("Discarding tick of superseded job", "chat_id", t.ChatID, "job_id", t.JobID)
		return nil
	}

	if err := t.handler.Handle(ctx, t.ChatID, dispatch.CategoryRequest(t.Category)); err != nil {
		var sendErr *dispatch.SendError
		if errors.As(err, &sendErr) && sendErr.Sent > 0 {
			// A retry would resend the items that already went out.
			t.MaxRetries = t.RetryCount
		}
		return err
	}

	slog.Debug("Auto-post delivered", "chat_id", t.ChatID, "category", t.Category, "duration", t.GetDuration().String())
	return nil
}
