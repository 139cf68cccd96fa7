package tasks

import (
	"xaisentinel.com/xrs/redis"
)

const BatchesDB redis.DB = 1

type BatchTask struct {
	UserCanceled      bool     `json:"user_canceled"`
	StopOnFailure     bool     `json:"stop_on_failure"`
	FailedAssessments []string `json:"failed_assessments"`
}

type BatchTasks struct {
	client redis.Client
}

func (tasks BatchTasks) Get(redisKey string) (*BatchTask, error) {
	var task BatchTask
	err := tasks.client.GetDocument(redisKey, &task)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (tasks BatchTasks) Update(redisKey string, updateFunc func(task *BatchTask)) error {
	var task BatchTask
	return tasks.client.UpdateDocument(redisKey, &task, func() {
		updateFunc(&task)
	})
}
