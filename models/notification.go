package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationType string

const (
	NotificationTaskCreated       NotificationType = "task_created"
	NotificationTaskAssigned      NotificationType = "task_assigned"
	NotificationTaskUnassigned    NotificationType = "task_unassigned"
	NotificationAssignmentChanged NotificationType = "task_assignment_changed"
	NotificationTaskProgress      NotificationType = "task_progress"
	NotificationTaskStatus        NotificationType = "task_status"
	NotificationMemberLeft        NotificationType = "member_left"
)

type Notification struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID    string             `json:"userId" bson:"userId"`
	Type      NotificationType   `json:"type" bson:"type"`
	TaskID    string             `json:"taskId,omitempty" bson:"taskId,omitempty"`
	GroupID   string             `json:"groupId,omitempty" bson:"groupId,omitempty"`
	Message   string             `json:"message" bson:"message"`
	ActorID   string             `json:"actorId,omitempty" bson:"actorId,omitempty"`
	Read      bool               `json:"read" bson:"read"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	ReadAt    *time.Time         `json:"readAt,omitempty" bson:"readAt,omitempty"`
}
