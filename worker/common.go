package worker

import (
	"xaisentinel.com/xrs/utils"
	"fmt"
	"path"
	"time"
)

func getResultsFileKey(task *Task) string {
	return path.Join(
		"processed",
		"assessments",
		task.assessmentTask.BatchID,
		task.redisKey,
		fmt.Sprintf("%s.risk_result.json", task.redisKey),
	)
}

func getFormattedNow() *string {
	now := time.Now().UTC().Format(utils.RFC3339Micro)
	return &now
}
