package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ActivityAction string

const (
	ActivityTaskCreated    ActivityAction = "task_created"
	ActivityTaskAssigned   ActivityAction = "task_assigned"
	ActivityTaskUnassigned ActivityAction = "task_unassigned"
	ActivityTaskStarted    ActivityAction = "task_started"
	ActivityTaskProgress   ActivityAction = "task_progress"
	ActivityTaskCompleted  ActivityAction = "task_completed"
	ActivityTaskReset      ActivityAction = "task_reset"
)

// ActivityLog entries are append-only per group; they are removed only by the
// bulk group clear.
type ActivityLog struct {
	ID        primitive.ObjectID     `json:"id" bson:"_id,omitempty"`
	GroupID   string                 `json:"groupId" bson:"groupId"`
	UserID    string                 `json:"userId" bson:"userId"`
	Action    ActivityAction         `json:"action" bson:"action"`
	Details   string                 `json:"details" bson:"details"`
	Metadata  map[string]interface{} `json:"metadata" bson:"metadata"`
	Timestamp time.Time              `json:"timestamp" bson:"timestamp"`

	// Enriched for responses, never persisted. Nil when the id could not be
	// resolved.
	ActorName            *string `json:"actorName" bson:"-"`
	AssigneeName         *string `json:"assigneeName,omitempty" bson:"-"`
	PreviousAssigneeName *string `json:"previousAssigneeName,omitempty" bson:"-"`
}
