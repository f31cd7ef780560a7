package tui

import (
	"errors"
	"testing"
)

func TestTaskID(t *testing.T) {
	// Verify task IDs are distinct
	ids := []TaskID{TaskAuth, TaskRepos, TaskScan, TaskWrite}
	seen := make(map[TaskID]bool)

	for _, id := range ids {
		if seen[id] {
			t.Errorf("duplicate task ID: %d", id)
		}
		seen[id] = true
	}
}

func TestNewTask(t *testing.T) {
	task := NewTask(TaskScan, "Scanning issues")

	if task.ID != TaskScan {
		t.Errorf("expected ID %d, got %d", TaskScan, task.ID)
	}
	if task.Name != "Scanning issues" {
		t.Errorf("expected name 'Scanning issues', got %q", task.Name)
	}
	if task.Status != StatusPending {
		t.Errorf("expected status %d, got %d", StatusPending, task.Status)
	}
}

func TestSendEvent(t *testing.T) {
	ch := make(chan Event, 1)

	event := TaskEvent{Task: TaskAuth, Status: StatusComplete}
	SendEvent(ch, event)

	select {
	case received := <-ch:
		if te, ok := received.(TaskEvent); ok {
			if te.Task != TaskAuth {
				t.Errorf("expected task %d, got %d", TaskAuth, te.Task)
			}
		} else {
			t.Error("expected TaskEvent type")
		}
	default:
		t.Error("expected event in channel")
	}
}

func TestSendEventNilChannel(t *testing.T) {
	// Should not panic with nil channel
	SendEvent(nil, TaskEvent{})
}

func TestSendTaskEvent(t *testing.T) {
	ch := make(chan Event, 1)

	SendTaskEvent(ch, TaskScan, StatusRunning,
		WithMessage("ubiquibot"),
		WithCount(42),
		WithProgress(0.75),
	)

	select {
	case received := <-ch:
		te, ok := received.(TaskEvent)
		if !ok {
			t.Fatal("expected TaskEvent type")
		}
		if te.Task != TaskScan {
			t.Errorf("expected task %d, got %d", TaskScan, te.Task)
		}
		if te.Message != "ubiquibot" {
			t.Errorf("expected message 'ubiquibot', got %q", te.Message)
		}
		if te.Count != 42 {
			t.Errorf("expected count 42, got %d", te.Count)
		}
		if te.Progress != 0.75 {
			t.Errorf("expected progress 0.75, got %f", te.Progress)
		}
	default:
		t.Error("expected event in channel")
	}
}

func TestWithError(t *testing.T) {
	ch := make(chan Event, 1)
	testErr := errors.New("test error")

	SendTaskEvent(ch, TaskRepos, StatusError, WithError(testErr))

	select {
	case received := <-ch:
		te, ok := received.(TaskEvent)
		if !ok {
			t.Fatal("expected TaskEvent type")
		}
		if te.Error != testErr {
			t.Errorf("expected error %v, got %v", testErr, te.Error)
		}
	default:
		t.Error("expected event in channel")
	}
}

func TestStatusIcon(t *testing.T) {
	statuses := []TaskStatus{StatusPending, StatusRunning, StatusComplete, StatusError, StatusSkipped}

	for _, status := range statuses {
		icon := StatusIcon(status, ">")
		if icon == "" {
			t.Errorf("StatusIcon returned empty string for status %d", status)
		}
	}
}
