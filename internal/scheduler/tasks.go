package scheduler

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// TaskOpenHouseFollowUp sends the thank-you email after a check-in.
const TaskOpenHouseFollowUp = "openhouse.followup"

type FollowUpPayload struct {
	LeadID  string `json:"leadId"`
	EventID string `json:"eventId"`
	AgentID string `json:"agentId"`
}

func NewFollowUpTask(payload FollowUpPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOpenHouseFollowUp, data), nil
}

func ParseFollowUpPayload(task *asynq.Task) (FollowUpPayload, error) {
	var payload FollowUpPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return FollowUpPayload{}, fmt.Errorf("decode %s payload: %w", TaskOpenHouseFollowUp, err)
	}
	return payload, nil
}

// followUpTaskID dedupes retries of the same enqueue so a visitor gets one
// email per check-in.
func followUpTaskID(leadID string) string {
	return TaskOpenHouseFollowUp + ":" + leadID
}
