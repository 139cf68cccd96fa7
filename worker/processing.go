package worker

import (
	"xaisentinel.com/xrs/tasks"
	"xaisentinel.com/xrs/types"
	"xaisentinel.com/xrs/utils"
	"encoding/json"
	"fmt"
	"github.com/rs/zerolog"
	"github.com/streadway/amqp"
)

type Message struct {
	WorkType string `json:"work_type"`
	RedisKey string `json:"redis_key"`
	Sender   string `json:"sender"`
	Version  string `json:"version"`
}

type Task struct {
	delivery       *amqp.Delivery
	assessmentTask *tasks.AssessmentTask
	message        *Message
	redisKey       string
	xrsLogger      *zerolog.Logger
}

func (worker *Worker) processMessage(delivery *amqp.Delivery) {
	task, err := worker.createTask(delivery)
	rejectLogger := worker.xrsLogger.With().Str("message_id", delivery.MessageId).Logger()
	if err != nil {
		worker.xrsLogger.Err(err).
			Str("message_id", delivery.MessageId).
			Str("tid", string(delivery.Body)).
			Msg("Failed to create task for delivery")
		worker.rmq.rejectDelivery(delivery, &rejectLogger)
		return
	}
	if err = worker.processTask(task); err != nil {
		worker.rmq.rejectDelivery(delivery, &rejectLogger)
		return
	}
	if err = worker.rmq.pingDispatcher(task, *task.message); err != nil {
		task.xrsLogger.Err(err).Msg("Got error while sending message to dispatcher queue")
		worker.rmq.rejectDelivery(delivery, &rejectLogger)
		return
	}
	if err = worker.rmq.acknowledgeDelivery(delivery); err != nil {
		task.xrsLogger.Err(err).Msg("Failed to acknowledge delivery")
	}
	task.xrsLogger.Info().Msg("Finished processing RMQ message")
}

func (worker *Worker) createTask(delivery *amqp.Delivery) (*Task, error) {
	var message Message
	err := json.Unmarshal(delivery.Body, &message)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal message, got error %w", err)
	}
	assessmentTask, err := worker.redis.getAssessmentTask(message.RedisKey)
	if err != nil {
		return nil, fmt.Errorf("failed to query assessment task for message, got error %w", err)
	}
	taskLogger := worker.xrsLogger.With().Str("tid", message.RedisKey).Logger()
	task := Task{
		delivery:       delivery,
		assessmentTask: assessmentTask,
		redisKey:       message.RedisKey,
		message:        &message,
		xrsLogger:      &taskLogger,
	}
	return &task, nil
}

func (worker *Worker) processTask(task *Task) error {
	shouldPerform, err := worker.shouldPerformTask(task)
	if err != nil {
		task.xrsLogger.Err(err).
			Msg("Got error while trying to decide whether to run task")
		return err
	}
	if !shouldPerform {
		return nil
	}
	if err = worker.redis.onTaskStarted(task); err != nil {
		task.xrsLogger.Err(err).Msg("Failed to update task info")
		return fmt.Errorf("failed to update TaskInfo: %w", err)
	}
	if err = worker.runAssessment(task); err != nil {
		task.xrsLogger.Err(err).Msg("Got error while running assessment")
		if err = worker.redis.onTaskFailedWithError(task, err); err != nil {
			return err
		}
		return nil
	}
	task.xrsLogger.Info().Msg("Saved results, marking task as complete")
	if err = worker.redis.onTaskComplete(task); err != nil {
		task.xrsLogger.Err(err).Msg("Got error while trying to mark task as complete")
		return err
	}
	return nil
}

func (worker *Worker) runAssessment(task *Task) (err error) {
	defer utils.RecoverWithError(&err)
	task.xrsLogger.Info().Msgf("Processing message from RMQ, attempt # %d", task.assessmentTask.TaskStatuses.XRS.Attempts)
	data, err := worker.s3.getAssessmentInput(task)
	if err != nil {
		task.xrsLogger.Err(err).Caller().Msg("Could not fetch assessment input from s3")
		return fmt.Errorf("failed fetch data from s3: %w", err)
	}
	var request types.AssessmentRequest
	if err = json.Unmarshal(data, &request); err != nil {
		task.xrsLogger.Err(err).Msg("Could not parse assessment input file")
		return fmt.Errorf("failed to unmarshal assessment input: %w", err)
	}
	result, err := worker.scorer.Score(request.Vitals, request.Symptoms)
	if err != nil {
		task.xrsLogger.Err(err).Msg("Got error while scoring assessment")
		return err
	}
	b, err := json.Marshal(&result)
	if err != nil {
		return err
	}
	task.xrsLogger.Info().Msg("Finished scoring, saving results to s3")
	if err = worker.s3.saveResultsFile(task, string(b)); err != nil {
		task.xrsLogger.Err(err).Msg("Got error while trying to save results")
		return err
	}
	return nil
}
func (worker *Worker) shouldPerformTask(task *Task) (bool, error) {
	taskInfo := task.assessmentTask.TaskStatuses.XRS
	taskLogger := task.xrsLogger

	if taskInfo.Status.Complete() {
		taskLogger.Info().Msg("Task is already done. (might indicate issue acking message with RMQ). Sending back to Dispatcher.")
		return false, nil
	}
	batchTask, err := worker.redis.getBatchTask(task)
	if err != nil {
		taskLogger.Err(err).Msg("Failed to query batch task for assessment task")
		return false, err
	}
	if batchTask.UserCanceled {
		taskLogger.Info().Msg("Batch was canceled, no need to perform this task. Sending back to Dispatcher.")
		err := worker.redis.onTaskCancelled(task)
		return false, err
	}
	if batchTask.StopOnFailure && len(batchTask.FailedAssessments) > 0 {
		failedKey := batchTask.FailedAssessments[0]
		taskLogger.Info().Msgf("Task is not required because assessment \"%s\" already completed failure "+
			"and batch won't be processed successfully. Sending back to Dispatcher.", failedKey)
		err := worker.redis.onTaskCancelled(
			task,
			fmt.Sprintf(
				"Task was marked as \"%s\" because the current batch has already failed "+
					"on assessment \"%s\" and won't be processed successfully.",
				tasks.TaskStatusCanceled,
				failedKey,
			),
		)
		return false, err
	}
	if taskInfo.Attempts >= worker.config.TaskMaxRetries {
		taskLogger.Info().Msg("XRS task has exceeded retries. Sending back to Dispatcher.")
		err = worker.redis.onTaskExceededRetries(task, worker.config.TaskMaxRetries)
		return false, err
	}
	return true, nil
}
