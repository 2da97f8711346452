package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Actions carried by a ContributionEvent.
const (
	ActionRegistered = "registered"
	ActionUpdated    = "updated"
	ActionDeleted    = "deleted"
)

// ContributionEvent is a lightweight lifecycle notification. Consumers that
// need the full record fetch it by id.
type ContributionEvent struct {
	Action         string    `json:"action"`
	ContributionID int64     `json:"contribution_id"`
	ContributorID  int64     `json:"contributor_id"`
	RecordedBy     string    `json:"recorded_by,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

func NewContributionEvent(action string, contributionID, contributorID int64, recordedBy string) *ContributionEvent {
	return &ContributionEvent{
		Action:         action,
		ContributionID: contributionID,
		ContributorID:  contributorID,
		RecordedBy:     recordedBy,
		Timestamp:      time.Now(),
	}
}

func (e *ContributionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func ContributionEventFromJSON(data []byte) (*ContributionEvent, error) {
	var event ContributionEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("unmarshal contribution event: %w", err)
	}
	if event.Action == "" {
		return nil, fmt.Errorf("contribution event missing action")
	}
	return &event, nil
}
