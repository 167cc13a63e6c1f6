package tasks

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type TaskType string

const (
	TaskTypeRefreshSitemaps    TaskType = "refresh_sitemaps"
	TaskTypeBuildSitemaps      TaskType = "build_sitemaps"
	TaskTypeBuildImageSitemaps TaskType = "build_image_sitemaps"
	TaskTypeSubmitSitemaps     TaskType = "submit_sitemaps"
)

// ParseTaskType reports false for unknown task types.
func ParseTaskType(value string) (TaskType, bool) {
	switch taskType := TaskType(value); taskType {
	case TaskTypeRefreshSitemaps, TaskTypeBuildSitemaps, TaskTypeBuildImageSitemaps, TaskTypeSubmitSitemaps:
		return taskType, true
	default:
		return "", false
	}
}

type TaskInterface interface {
	Execute(ctx context.Context) error
	GetID() string
	GetType() TaskType
	Start()
	GetDuration() time.Duration
}

type Task struct {
	ID        string
	Type      TaskType
	StartedAt *time.Time
}

func (t *Task) GetID() string {
	return t.ID
}

func (t *Task) GetType() TaskType {
	return t.Type
}

func (t *Task) Start() {
	now := time.Now()
	t.StartedAt = &now
}

func (t *Task) GetDuration() time.Duration {
	if t.StartedAt == nil {
		return 0
	}
	return time.Since(*t.StartedAt)
}

func NewTask(taskType TaskType) Task {
	return Task{
		ID:   uuid.NewString(),
		Type: taskType,
	}
}
