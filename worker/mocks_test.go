package worker

import (
	"xaisentinel.com/xrs/tasks"
	"xaisentinel.com/xrs/types"
	"errors"
	"github.com/rs/zerolog"
	"github.com/streadway/amqp"
)

type failingMethod struct {
	fail bool
}

type withValue struct {
	fail          bool
	returnedValue interface{}
}

type scorerMock struct {
	config scorerMockConfig
	calls  scorerCall
}

type scorerMockConfig struct {
	fail   bool
	result types.AssessmentResult
}

type scorerCall struct {
	score bool
}

type redisMock struct {
	config redisMockConfig
	calls  redisMockCalls
}

type redisMockConfig struct {
	getAssessmentTask     withValue
	getBatchTask          withValue
	onTaskCancelled       failingMethod
	onTaskStarted         failingMethod
	onTaskExceededRetries failingMethod
	onTaskFailedWithError failingMethod
	onTaskComplete        failingMethod
}

type redisMockCalls struct {
	getAssessmentTask     bool
	getBatchTask          bool
	onTaskCancelled       bool
	onTaskStarted         bool
	onTaskExceededRetries bool
	onTaskFailedWithError bool
	onTaskComplete        bool
}

type rmqMock struct {
	config rmqMockConfig
	calls  rmqMockCalls
}

type rmqMockConfig struct {
	pingDispatcher      failingMethod
	acknowledgeDelivery failingMethod
}

type rmqMockCalls struct {
	pingDispatcher      bool
	acknowledgeDelivery bool
	rejectDelivery      bool
}

type s3Mock struct {
	config s3MockConfig
	calls  s3MockCalls
}

type s3MockConfig struct {
	getAssessmentInput withValue
	saveResultsFile    failingMethod
}

type s3MockCalls struct {
	getAssessmentInput bool
	saveResultsFile    bool
}

func (mock s3Mock) close() {}

func (mock *rmqMock) close() {}

func (mock *redisMock) close() {}

func (mock *scorerMock) Score(vitals types.Vitals, symptoms types.Symptoms) (types.AssessmentResult, error) {
	mock.calls.score = true
	if mock.config.fail {
		return types.AssessmentResult{}, errors.New("mock: failed to score assessment")
	}
	return mock.config.result, nil
}

func (mock *redisMock) getAssessmentTask(redisKey string) (*tasks.AssessmentTask, error) {
	mock.calls.getAssessmentTask = true
	if mock.config.getAssessmentTask.fail {
		return nil, errors.New("failed to get assessment task")
	}
	switch mock.config.getAssessmentTask.returnedValue.(type) {
	case tasks.AssessmentTask:
		task := mock.config.getAssessmentTask.returnedValue.(tasks.AssessmentTask)
		return &task, nil
	default:
		return &tasks.AssessmentTask{}, nil
	}

}

func (mock *redisMock) getBatchTask(task *Task) (*tasks.BatchTask, error) {
	mock.calls.getBatchTask = true
	if mock.config.getBatchTask.fail {
		return nil, errors.New("failed to get batch task")
	}
	switch mock.config.getBatchTask.returnedValue.(type) {
	case tasks.BatchTask:
		batchTask := mock.config.getBatchTask.returnedValue.(tasks.BatchTask)
		return &batchTask, nil
	default:
		return &tasks.BatchTask{}, nil
	}
}

func (mock *redisMock) onTaskStarted(task *Task) error {
	mock.calls.onTaskStarted = true
	if mock.config.onTaskStarted.fail {
		return errors.New("failed to update assessment task on start")
	}
	return nil
}

func (mock *redisMock) onTaskCancelled(task *Task, errorMessages ...string) error {
	mock.calls.onTaskCancelled = true
	if mock.config.onTaskCancelled.fail {
		return errors.New("failed to update assessment task on cancel")
	}
	return nil
}

func (mock *redisMock) onTaskExceededRetries(task *Task, maxRetries int) error {
	mock.calls.onTaskExceededRetries = true
	if mock.config.onTaskExceededRetries.fail {
		return errors.New("failed to update assessment task on exceeded retries")
	}
	return nil
}

func (mock *redisMock) onTaskFailedWithError(task *Task, err error) error {
	mock.calls.onTaskFailedWithError = true
	if mock.config.onTaskFailedWithError.fail {
		return errors.New("failed to update assessment task on fail with error")
	}
	return nil
}

func (mock *redisMock) onTaskComplete(task *Task) error {
	mock.calls.onTaskComplete = true
	if mock.config.onTaskComplete.fail {
		return errors.New("failed to update assessment task on complete")
	}
	return nil
}
func (mock *rmqMock) rejectDelivery(delivery *amqp.Delivery, xrsLogger *zerolog.Logger) {
	mock.calls.rejectDelivery = true
}
func (mock *rmqMock) getDeliveriesCh() <-chan amqp.Delivery {
	return nil
}

func (mock *rmqMock) getReqChanErrorsCh() <-chan *amqp.Error {
	return nil
}

func (mock *rmqMock) getRespChanErrorsCh() <-chan *amqp.Error {
	return nil
}

func (mock *rmqMock) pingDispatcher(task *Task, message Message) error {
	mock.calls.pingDispatcher = true
	if mock.config.pingDispatcher.fail {
		return errors.New("failed to ping dispatcher")
	}
	return nil
}

func (mock *rmqMock) acknowledgeDelivery(delivery *amqp.Delivery) error {
	mock.calls.acknowledgeDelivery = true
	if mock.config.acknowledgeDelivery.fail {
		return errors.New("failed to acknowledge delivery")
	}
	return nil
}

func (mock *s3Mock) getAssessmentInput(task *Task) ([]byte, error) {
	mock.calls.getAssessmentInput = true
	if mock.config.getAssessmentInput.fail {
		return nil, errors.New("mock: failed to load from s3")
	}
	switch mock.config.getAssessmentInput.returnedValue.(type) {
	case []byte:
		return mock.config.getAssessmentInput.returnedValue.([]byte), nil
	default:
		return []byte(`{"userId":"user-1","appId":"app-1","vitals":{"heartRate":170},"symptoms":{"pain":true}}`), nil
	}
}

func (mock *s3Mock) saveResultsFile(task *Task, result string) error {
	mock.calls.saveResultsFile = true
	if mock.config.saveResultsFile.fail {
		return errors.New("failed to upload results")
	}
	return nil
}
