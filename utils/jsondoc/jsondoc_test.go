package jsondoc

import (
	"encoding/json"
	"reflect"
	"testing"
)

type testTaskInfo struct {
	Status      string   `json:"status"`
	Attempts    int      `json:"attempts"`
	StartedAt   *string  `json:"started_at"`
	CompletedAt *string  `json:"completed_at"`
	Errors      []string `json:"error_messages"`
}

type testStatuses struct {
	XRS testTaskInfo `json:"xrs"`
}

type testTask struct {
	BatchID      string       `json:"batch_id"`
	TaskStatuses testStatuses `json:"task_statuses"`
}

const storedTask = `{
	"batch_id": "batch-1",
	"submitted_by": "dispatcher",
	"task_statuses": {
		"xrs": {"status": "submitted", "attempts": 2, "started_at": "then", "completed_at": "then"},
		"other_worker": {"status": "processing"}
	}
}`

func asMap(t *testing.T, b []byte) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("Failed to unmarshal %s: %v", b, err)
	}
	return m
}

func TestFill(t *testing.T) {
	t.Run("Known fields", func(t *testing.T) {
		var task testTask
		if err := Fill([]byte(storedTask), &task); err != nil {
			t.Fatalf("Fill returned error: %v", err)
		}
		if task.BatchID != "batch-1" {
			t.Errorf("Expected batch_id to be filled, got %q", task.BatchID)
		}
		if task.TaskStatuses.XRS.Attempts != 2 {
			t.Errorf("Expected attempts 2, got %d", task.TaskStatuses.XRS.Attempts)
		}
	})
	t.Run("Empty document", func(t *testing.T) {
		var task testTask
		if err := Fill(nil, &task); err != nil {
			t.Fatalf("Fill of empty document returned error: %v", err)
		}
		if !reflect.DeepEqual(task, testTask{}) {
			t.Errorf("Expected zero task, got %+v", task)
		}
	})
	t.Run("Corrupt document", func(t *testing.T) {
		var task testTask
		if err := Fill([]byte("{broken"), &task); err == nil {
			t.Error("Fill should return error for corrupt JSON")
		}
	})
}

func TestApply(t *testing.T) {
	t.Run("Preserves foreign keys", func(t *testing.T) {
		var task testTask
		now := "now"
		merged, err := Apply([]byte(storedTask), &task, func() {
			task.TaskStatuses.XRS.Status = "started"
			task.TaskStatuses.XRS.Attempts += 1
			task.TaskStatuses.XRS.StartedAt = &now
			task.TaskStatuses.XRS.CompletedAt = nil
		})
		if err != nil {
			t.Fatalf("Apply returned error: %v", err)
		}
		got := asMap(t, merged)
		if got["submitted_by"] != "dispatcher" {
			t.Errorf("Expected foreign top-level key to survive, got %v", got["submitted_by"])
		}
		statuses := got["task_statuses"].(map[string]interface{})
		if _, ok := statuses["other_worker"]; !ok {
			t.Error("Expected foreign nested key to survive the update")
		}
		xrs := statuses["xrs"].(map[string]interface{})
		if xrs["status"] != "started" {
			t.Errorf("Expected status update to apply, got %v", xrs["status"])
		}
		if xrs["attempts"] != float64(3) {
			t.Errorf("Expected attempts 3, got %v", xrs["attempts"])
		}
		if xrs["started_at"] != "now" {
			t.Errorf("Expected started_at to update, got %v", xrs["started_at"])
		}
		if _, ok := xrs["completed_at"]; ok {
			t.Error("Expected nil pointer to remove its key")
		}
	})
	t.Run("Untouched fields keep stored values", func(t *testing.T) {
		var task testTask
		merged, err := Apply([]byte(storedTask), &task, func() {
			task.TaskStatuses.XRS.Status = "completed - success"
		})
		if err != nil {
			t.Fatalf("Apply returned error: %v", err)
		}
		xrs := asMap(t, merged)["task_statuses"].(map[string]interface{})["xrs"].(map[string]interface{})
		if xrs["attempts"] != float64(2) {
			t.Errorf("Expected untouched attempts to stay 2, got %v", xrs["attempts"])
		}
		if xrs["started_at"] != "then" {
			t.Errorf("Expected untouched started_at to survive, got %v", xrs["started_at"])
		}
	})
	t.Run("Nil update leaves document unchanged", func(t *testing.T) {
		var task testTask
		merged, err := Apply([]byte(storedTask), &task, nil)
		if err != nil {
			t.Fatalf("Apply returned error: %v", err)
		}
		if !reflect.DeepEqual(asMap(t, merged), asMap(t, []byte(storedTask))) {
			t.Errorf("Expected unchanged document, got %s", merged)
		}
	})
	t.Run("Empty stored document", func(t *testing.T) {
		var task testTask
		merged, err := Apply(nil, &task, func() {
			task.BatchID = "batch-2"
		})
		if err != nil {
			t.Fatalf("Apply returned error: %v", err)
		}
		if asMap(t, merged)["batch_id"] != "batch-2" {
			t.Errorf("Expected batch_id in merged document, got %s", merged)
		}
	})
	t.Run("Panic in update", func(t *testing.T) {
		var task testTask
		_, err := Apply([]byte(storedTask), &task, func() {
			panic("update went wrong")
		})
		if err == nil {
			t.Error("Apply should surface panics from the update func as errors")
		}
	})
	t.Run("Corrupt stored document", func(t *testing.T) {
		var task testTask
		if _, err := Apply([]byte("{broken"), &task, nil); err == nil {
			t.Error("Apply should return error for corrupt JSON")
		}
	})
}
