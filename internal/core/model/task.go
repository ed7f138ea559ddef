package model

import "time"

// TaskStatus is the workflow state of a task.
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
)

// Valid reports whether status is a known task status.
func (status TaskStatus) Valid() bool {
	switch status {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

// Subtask is a checklist item of a task.
type Subtask struct {
	ID        string
	Title     string
	Completed bool
}

// Task is the cached copy of a task owned by the task repository.
type Task struct {
	ID        string
	Title     string
	Status    TaskStatus
	Subtasks  []Subtask
	UpdatedAt time.Time
}

// HasIncompleteSubtasks reports whether any subtask is still open.
func (task Task) HasIncompleteSubtasks() bool {
	for _, subtask := range task.Subtasks {
		if !subtask.Completed {
			return true
		}
	}
	return false
}
