package tasks

import (
	"xaisentinel.com/xrs/redis"
)

type Client struct {
	Assessments AssessmentTasks
	Batches     BatchTasks
}

// NewClient is a preferred way for working with task documents
func NewClient() (Client, error) {
	assessmentsRedisClient, err := redis.NewClient(AssessmentsDB)
	if err != nil {
		return Client{}, err
	}
	batchesRedisClient, err := redis.NewClient(BatchesDB)
	if err != nil {
		return Client{}, err
	}
	return Client{
		Assessments: AssessmentTasks{client: assessmentsRedisClient},
		Batches:     BatchTasks{client: batchesRedisClient},
	}, nil
}

func (client *Client) Close() {
	_ = client.Assessments.client.Close()
	_ = client.Batches.client.Close()
}
