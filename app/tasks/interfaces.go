package tasks

import (
	"context"

	"github.com/lysyi3m/news-bot/app/dispatch"
)

// TaskSchedulerInterface defines the interface for task scheduling operations.
// Example usage:
//
//	scheduler := NewScheduler(workerCount)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.EnqueueTask(NewAutoPostTask(...))
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
	QueueLength() int
}

// Handler runs the news pipeline for one chat.
type Handler interface {
	Handle(ctx context.Context, chatID int64, req dispatch.Request) error
}
