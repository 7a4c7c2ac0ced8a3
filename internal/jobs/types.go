package jobs

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Task type names
const (
	TypeAnalyticsRefresh = "analytics:refresh"
	TypeAnalyticsSweep   = "analytics:sweep"
)

// AnalyticsRefreshPayload names the organization whose cached analytics
// should be recomputed.
type AnalyticsRefreshPayload struct {
	OrganizationID uuid.UUID `json:"organization_id"`
}

func NewAnalyticsRefreshTask(payload AnalyticsRefreshPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeAnalyticsRefresh, data), nil
}

// The sweep has no payload; it walks every organization.
func NewAnalyticsSweepTask() *asynq.Task {
	return asynq.NewTask(TypeAnalyticsSweep, nil)
}
