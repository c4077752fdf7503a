package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TaskStatus string

const (
	StatusToDo       TaskStatus = "To Do"
	StatusInProgress TaskStatus = "In Progress"
	StatusDone       TaskStatus = "Done"
)

type Task struct {
	ID              primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Title           string             `json:"title" bson:"title"`
	Description     string             `json:"description" bson:"description"`
	GroupID         string             `json:"groupId" bson:"groupId"`
	AssignedTo      string             `json:"assignedTo,omitempty" bson:"assignedTo,omitempty"`
	AssignedToName  string             `json:"assignedToName,omitempty" bson:"assignedToName,omitempty"`
	AssignedToEmail string             `json:"assignedToEmail,omitempty" bson:"assignedToEmail,omitempty"`
	AssignedBy      string             `json:"assignedBy" bson:"assignedBy"`
	AssignedByName  string             `json:"assignedByName,omitempty" bson:"assignedByName,omitempty"`
	Status          TaskStatus         `json:"status" bson:"status"`
	Priority        string             `json:"priority" bson:"priority"`
	DueDate         string             `json:"dueDate,omitempty" bson:"dueDate,omitempty"`
	Progress        int                `json:"progress" bson:"progress"`
	StartedAt       *time.Time         `json:"startedAt" bson:"startedAt"`
	CompletedAt     *time.Time         `json:"completedAt" bson:"completedAt"`
	CreatedAt       time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt" bson:"updatedAt"`
}
