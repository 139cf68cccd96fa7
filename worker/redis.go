package worker

import (
	"xaisentinel.com/xrs/tasks"
	"fmt"
)

type redisTransactions interface {
	getAssessmentTask(redisKey string) (*tasks.AssessmentTask, error)
	getBatchTask(task *Task) (*tasks.BatchTask, error)
	onTaskStarted(task *Task) error
	onTaskCancelled(task *Task, errorMessages ...string) error
	onTaskExceededRetries(task *Task, maxRetries int) error
	onTaskFailedWithError(task *Task, err error) error
	onTaskComplete(task *Task) error
	close()
}

type redisClientWrapper struct {
	tasksClient *tasks.Client
}

func (wrapper *redisClientWrapper) close() {
	wrapper.tasksClient.Close()
}

func (wrapper *redisClientWrapper) onTaskStarted(task *Task) error {
	err := wrapper.tasksClient.Assessments.Update(task.redisKey, func(task *tasks.AssessmentTask) {
		task.TaskStatuses.XRS.Status = tasks.TaskStatusStarted
		task.TaskStatuses.XRS.Attempts += 1
		task.TaskStatuses.XRS.StartedAt = getFormattedNow()
		task.TaskStatuses.XRS.CompletedAt = nil
	})
	return err
}

func (wrapper *redisClientWrapper) onTaskCancelled(task *Task, errorMessages ...string) error {
	err := wrapper.tasksClient.Assessments.Update(task.redisKey, func(assessmentTask *tasks.AssessmentTask) {
		assessmentTask.TaskStatuses.XRS.Status = tasks.TaskStatusCanceled
		assessmentTask.TaskStatuses.XRS.StartedAt = getFormattedNow()
		assessmentTask.TaskStatuses.XRS.CompletedAt = getFormattedNow()
		assessmentTask.TaskStatuses.XRS.Attempts += 1
		assessmentTask.TaskStatuses.XRS.ErrorMessages = append(
			assessmentTask.TaskStatuses.XRS.ErrorMessages,
			errorMessages...,
		)
	})
	return err
}

func (wrapper *redisClientWrapper) onTaskExceededRetries(task *Task, maxRetries int) error {
	err := wrapper.tasksClient.Batches.Update(task.assessmentTask.BatchID, func(batchTask *tasks.BatchTask) {
		batchTask.FailedAssessments = append(batchTask.FailedAssessments, task.redisKey)
	})
	if err != nil {
		return err
	}
	err = wrapper.tasksClient.Assessments.Update(task.redisKey, func(assessmentTask *tasks.AssessmentTask) {
		assessmentTask.TaskStatuses.XRS.Status = tasks.TaskStatusCompletedFailure
		assessmentTask.TaskStatuses.XRS.StartedAt = getFormattedNow()
		assessmentTask.TaskStatuses.XRS.CompletedAt = getFormattedNow()
		assessmentTask.TaskStatuses.XRS.Attempts += 1
		assessmentTask.TaskStatuses.XRS.ErrorMessages = append(
			assessmentTask.TaskStatuses.XRS.ErrorMessages,
			fmt.Sprintf(
				"Task has exceeded retries. (Attempts: %d, max retries: %d )",
				assessmentTask.TaskStatuses.XRS.Attempts,
				maxRetries,
			),
		)
	})
	return err
}

func (wrapper *redisClientWrapper) onTaskFailedWithError(task *Task, err error) error {
	return wrapper.tasksClient.Assessments.Update(task.redisKey, func(assessmentTask *tasks.AssessmentTask) {
		assessmentTask.TaskStatuses.XRS.Status = tasks.TaskStatusFailed
		assessmentTask.TaskStatuses.XRS.CompletedAt = getFormattedNow()
		assessmentTask.TaskStatuses.XRS.ErrorMessages = append(assessmentTask.TaskStatuses.XRS.ErrorMessages, err.Error())
	})
}

func (wrapper *redisClientWrapper) onTaskComplete(task *Task) error {
	return wrapper.tasksClient.Assessments.Update(task.redisKey, func(assessmentTask *tasks.AssessmentTask) {
		if !assessmentTask.TaskStatuses.XRS.Status.Complete() {
			assessmentTask.TaskStatuses.XRS.Status = tasks.TaskStatusCompletedSuccess
		}
		assessmentTask.TaskStatuses.XRS.CompletedAt = getFormattedNow()
		assessmentTask.TaskStatuses.XRS.ResultsFileKey = getResultsFileKey(task)
	})
}

func (wrapper *redisClientWrapper) getAssessmentTask(redisKey string) (*tasks.AssessmentTask, error) {
	return wrapper.tasksClient.Assessments.Get(redisKey)
}

func (wrapper *redisClientWrapper) getBatchTask(task *Task) (*tasks.BatchTask, error) {
	return wrapper.tasksClient.Batches.Get(task.assessmentTask.BatchID)
}
