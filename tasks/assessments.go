package tasks

import (
	"xaisentinel.com/xrs/redis"
)

const AssessmentsDB redis.DB = 0

type TaskStatus string

const (
	TaskStatusProcessing       TaskStatus = "processing"
	TaskStatusSubmitted        TaskStatus = "submitted"
	TaskStatusStarted          TaskStatus = "started"
	TaskStatusFailed           TaskStatus = "failed"
	TaskStatusCompletedSuccess TaskStatus = "completed - success"
	TaskStatusCompletedFailure TaskStatus = "completed - failure"
	TaskStatusCanceled         TaskStatus = "canceled"
)

func (s TaskStatus) Complete() bool {
	return s == TaskStatusCompletedSuccess || s == TaskStatusCompletedFailure || s == TaskStatusCanceled
}

func (s TaskStatus) Submitted() bool {
	return s == TaskStatusSubmitted || s == TaskStatusStarted || s == TaskStatusProcessing
}

type AssessmentTask struct {
	BatchID      string                 `json:"batch_id"`
	InputFileKey string                 `json:"input_file_key"`
	TaskStatuses AssessmentTaskStatuses `json:"task_statuses"`
}

type AssessmentTaskStatuses struct {
	XRS AssessmentTaskInfo `json:"xrs"`
}

type AssessmentTaskInfo struct {
	ResultsFileKey string     `json:"results_file_key"`
	StartedAt      *string    `json:"started_at"`
	CompletedAt    *string    `json:"completed_at"`
	Attempts       int        `json:"attempts"`
	Status         TaskStatus `json:"status"`
	ErrorMessages  []string   `json:"error_messages"`
}

type AssessmentTasks struct {
	client redis.Client
}

func (tasks AssessmentTasks) Get(redisKey string) (*AssessmentTask, error) {
	var task AssessmentTask
	err := tasks.client.GetDocument(redisKey, &task)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (tasks AssessmentTasks) Update(redisKey string, updateFunc func(task *AssessmentTask)) error {
	var task AssessmentTask
	return tasks.client.UpdateDocument(redisKey, &task, func() {
		updateFunc(&task)
	})
}
