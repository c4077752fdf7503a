package services

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/JethroRendon/Groupify---CC-206-Final-Project/models"
)

// TaskPatch carries the mutable task fields of an update request. Nil means
// the field was absent. An empty AssignedTo clears the assignment.
type TaskPatch struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	AssignedTo  *string  `json:"assignedTo"`
	Status      *string  `json:"status"`
	DueDate     *string  `json:"dueDate"`
	Priority    *string  `json:"priority"`
	Progress    *float64 `json:"progress"`
}

// AssigneeProfile is the denormalized snapshot of the new assignee, resolved
// by the caller before the state machine runs. Found is false when the user
// document could not be read; membership is still checked against the roster.
type AssigneeProfile struct {
	Name  string
	Email string
	Found bool
}

// ActivityEvent is one audit entry the update derived.
type ActivityEvent struct {
	Action   models.ActivityAction
	Details  string
	Metadata map[string]interface{}
}

// NotificationEvent is one direct notification the update derived.
type NotificationEvent struct {
	UserID  string
	Type    models.NotificationType
	Message string
}

// BroadcastEvent fans a notification out to the group roster minus the
// exclusion set.
type BroadcastEvent struct {
	Type    models.NotificationType
	Message string
	Exclude []string
}

// AssignmentEvent is the deferred, deduplicated assignment notification
// handed to the background notifier after the response is written.
type AssignmentEvent struct {
	TaskID       string
	Title        string
	Description  string
	GroupID      string
	GroupName    string
	DueDate      string
	Priority     string
	AssigneeID   string
	AssigneeName string
	AssignerID   string
	AssignerName string
}

// UpdateResult is everything a validated task update decided: the fields to
// persist and the side effects to emit once the primary write succeeds.
type UpdateResult struct {
	Set           map[string]interface{}
	Activities    []ActivityEvent
	Notifications []NotificationEvent
	Broadcast     *BroadcastEvent
	Assignment    *AssignmentEvent
}

// ApplyUpdate validates a patch against the current task and derives the
// resulting field set and side effects. Status and progress are two control
// surfaces over one lifecycle: the progress rule is applied first, then the
// status rule, so an explicit status in the same patch wins. The function is
// pure; all timestamps derive from now and client-supplied lifecycle
// timestamps are ignored.
func ApplyUpdate(task *models.Task, patch TaskPatch, actorID string, group *models.Group, assignee *AssigneeProfile, now time.Time) (*UpdateResult, error) {
	// Validation happens up front: a rejected patch must leave no trace.
	var progress int
	if patch.Progress != nil {
		p := *patch.Progress
		if p != math.Trunc(p) || p < 0 || p > 100 {
			return nil, models.NewValidationError("progress must be an integer between 0 and 100")
		}
		progress = int(p)
		if task.AssignedTo != "" && actorID != task.AssignedTo && actorID != task.AssignedBy {
			return nil, models.NewAuthorizationError("only assignee or creator can update progress")
		}
	}

	var newAssignee string
	if patch.AssignedTo != nil {
		newAssignee = *patch.AssignedTo
		if newAssignee != "" && !group.HasMember(newAssignee) {
			return nil, models.NewValidationError("assigned user is not a group member")
		}
	}

	var status models.TaskStatus
	if patch.Status != nil {
		normalized, ok := normalizeStatus(*patch.Status)
		if !ok {
			return nil, models.NewValidationError("status must be one of: To Do, In Progress, Done")
		}
		status = normalized
	}

	result := &UpdateResult{Set: map[string]interface{}{"updatedAt": now}}
	taskID := task.ID.Hex()

	if patch.Title != nil && *patch.Title != "" {
		result.Set["title"] = *patch.Title
	}
	if patch.Description != nil {
		result.Set["description"] = *patch.Description
	}
	if patch.DueDate != nil {
		result.Set["dueDate"] = *patch.DueDate
	}
	if patch.Priority != nil && *patch.Priority != "" {
		result.Set["priority"] = *patch.Priority
	}

	if patch.AssignedTo != nil {
		previous := task.AssignedTo
		result.Set["assignedTo"] = newAssignee
		assigneeName := ""
		assigneeEmail := ""
		if newAssignee != "" && assignee != nil && assignee.Found {
			assigneeName = assignee.Name
			assigneeEmail = assignee.Email
		}
		result.Set["assignedToName"] = assigneeName
		result.Set["assignedToEmail"] = assigneeEmail

		if newAssignee != "" && newAssignee != previous {
			result.Notifications = append(result.Notifications, NotificationEvent{
				UserID:  newAssignee,
				Type:    models.NotificationTaskAssigned,
				Message: fmt.Sprintf("You were assigned to task %q", task.Title),
			})
			result.Activities = append(result.Activities, ActivityEvent{
				Action:  models.ActivityTaskAssigned,
				Details: fmt.Sprintf("Assigned task %q to %s", task.Title, nameOrMember(assigneeName)),
				Metadata: map[string]interface{}{
					"taskId":       taskID,
					"assigneeId":   newAssignee,
					"assigneeName": assigneeName,
				},
			})

			if previous != "" {
				result.Notifications = append(result.Notifications, NotificationEvent{
					UserID:  previous,
					Type:    models.NotificationTaskUnassigned,
					Message: fmt.Sprintf("You were unassigned from task %q", task.Title),
				})
				result.Activities = append(result.Activities, ActivityEvent{
					Action:  models.ActivityTaskUnassigned,
					Details: fmt.Sprintf("Unassigned user from task %q", task.Title),
					Metadata: map[string]interface{}{
						"taskId":             taskID,
						"previousAssigneeId": previous,
					},
				})
			}

			result.Broadcast = &BroadcastEvent{
				Type:    models.NotificationAssignmentChanged,
				Message: fmt.Sprintf("Task %q assigned to %s", task.Title, nameOrAMember(assigneeName)),
				Exclude: []string{actorID, newAssignee, previous},
			}

			result.Assignment = &AssignmentEvent{
				TaskID:       taskID,
				Title:        task.Title,
				Description:  firstNonEmpty(stringOr(patch.Description, task.Description), "No description"),
				GroupID:      task.GroupID,
				GroupName:    firstNonEmpty(group.Name, "your group"),
				DueDate:      stringOr(patch.DueDate, task.DueDate),
				Priority:     firstNonEmpty(stringOr(patch.Priority, task.Priority), "medium"),
				AssigneeID:   newAssignee,
				AssigneeName: assigneeName,
				AssignerID:   actorID,
			}
		}
	}

	if patch.Progress != nil {
		result.Set["progress"] = progress

		switch {
		case progress > 0 && progress < 100:
			result.Set["status"] = models.StatusInProgress
			if task.StartedAt == nil {
				result.Set["startedAt"] = now
			}
			result.Activities = append(result.Activities, ActivityEvent{
				Action:   models.ActivityTaskProgress,
				Details:  fmt.Sprintf("Progress updated to %d%% for %q", progress, task.Title),
				Metadata: map[string]interface{}{"taskId": taskID, "progress": progress},
			})
		case progress == 100:
			result.Set["status"] = models.StatusDone
			result.Set["completedAt"] = now
			result.Activities = append(result.Activities, ActivityEvent{
				Action:   models.ActivityTaskCompleted,
				Details:  fmt.Sprintf("Completed task %q", task.Title),
				Metadata: map[string]interface{}{"taskId": taskID},
			})
		default: // progress == 0
			result.Set["status"] = models.StatusToDo
			result.Set["startedAt"] = nil
			result.Set["completedAt"] = nil
			result.Activities = append(result.Activities, ActivityEvent{
				Action:   models.ActivityTaskReset,
				Details:  fmt.Sprintf("Reset progress for task %q", task.Title),
				Metadata: map[string]interface{}{"taskId": taskID},
			})
		}

		if target := counterpart(task, actorID); target != "" {
			result.Notifications = append(result.Notifications, NotificationEvent{
				UserID:  target,
				Type:    models.NotificationTaskProgress,
				Message: fmt.Sprintf("Progress updated to %d%% for task %q", progress, task.Title),
			})
		}
	}

	if patch.Status != nil {
		result.Set["status"] = status

		switch status {
		case models.StatusInProgress:
			if task.StartedAt == nil {
				result.Set["startedAt"] = now
				if task.Progress == 0 {
					// Nudge so the progress channel agrees the task started.
					result.Set["progress"] = 10
				}
				result.Activities = append(result.Activities, ActivityEvent{
					Action:   models.ActivityTaskStarted,
					Details:  fmt.Sprintf("Started task %q", task.Title),
					Metadata: map[string]interface{}{"taskId": taskID},
				})
			}
		case models.StatusDone:
			result.Set["completedAt"] = now
			result.Set["progress"] = 100
			result.Activities = append(result.Activities, ActivityEvent{
				Action:   models.ActivityTaskCompleted,
				Details:  fmt.Sprintf("Completed task %q", task.Title),
				Metadata: map[string]interface{}{"taskId": taskID},
			})
		case models.StatusToDo:
			result.Set["progress"] = 0
			result.Set["startedAt"] = nil
			result.Set["completedAt"] = nil
			result.Activities = append(result.Activities, ActivityEvent{
				Action:   models.ActivityTaskReset,
				Details:  fmt.Sprintf("Reset task %q to To Do", task.Title),
				Metadata: map[string]interface{}{"taskId": taskID},
			})
		}

		if target := counterpart(task, actorID); target != "" {
			result.Notifications = append(result.Notifications, NotificationEvent{
				UserID:  target,
				Type:    models.NotificationTaskStatus,
				Message: fmt.Sprintf("Status changed to %s for task %q", status, task.Title),
			})
		}
	}

	return result, nil
}

// counterpart picks the single user to notify about a progress or status
// change on an assigned task: the assigner when the actor is the assignee,
// otherwise the assignee. Selection uses the pre-update assignment.
func counterpart(task *models.Task, actorID string) string {
	if task.AssignedTo == "" {
		return ""
	}
	if actorID == task.AssignedTo {
		return task.AssignedBy
	}
	return task.AssignedTo
}

func normalizeStatus(raw string) (models.TaskStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "to do":
		return models.StatusToDo, true
	case "in progress":
		return models.StatusInProgress, true
	case "done":
		return models.StatusDone, true
	}
	return "", false
}

func nameOrMember(name string) string {
	return firstNonEmpty(name, "member")
}

func nameOrAMember(name string) string {
	return firstNonEmpty(name, "a member")
}

func stringOr(patched *string, current string) string {
	if patched != nil {
		return *patched
	}
	return current
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
