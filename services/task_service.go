package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/JethroRendon/Groupify---CC-206-Final-Project/logging"
	"github.com/JethroRendon/Groupify---CC-206-Final-Project/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type taskNotifier interface {
	Notify(ctx context.Context, input NotificationInput)
	Broadcast(ctx context.Context, members []string, exclude []string, input NotificationInput)
}

type activityAppender interface {
	Append(ctx context.Context, groupID, userID string, action models.ActivityAction, details string, metadata map[string]interface{})
}

type assignmentQueue interface {
	Enqueue(event AssignmentEvent)
}

type profileResolver interface {
	Profile(ctx context.Context, uid string) (*models.User, error)
	DisplayName(ctx context.Context, uid string) string
}

// TaskStore is the persistence surface the task layer needs.
// Implemented by repositories.TaskRepo.
type TaskStore interface {
	Insert(ctx context.Context, task *models.Task) error
	Get(ctx context.Context, id string) (*models.Task, error)
	ApplySet(ctx context.Context, id string, set map[string]interface{}) error
	ListByGroup(ctx context.Context, groupID, status string) ([]models.Task, error)
	ListByUserField(ctx context.Context, field, userID, status string) ([]models.Task, error)
	ListOpenAssignedTo(ctx context.Context, userID string) ([]models.Task, error)
	Delete(ctx context.Context, id string) error
}

// GroupLoader resolves group documents for membership checks.
// Implemented by repositories.GroupRepo.
type GroupLoader interface {
	Load(ctx context.Context, groupID string) (*models.Group, error)
}

type TaskService struct {
	tasks       TaskStore
	groups      GroupLoader
	notifier    taskNotifier
	activities  activityAppender
	assignments assignmentQueue
	resolver    profileResolver
}

func NewTaskService(tasks TaskStore, groups GroupLoader, notifier taskNotifier, activities activityAppender, assignments assignmentQueue, resolver profileResolver) *TaskService {
	return &TaskService{
		tasks:       tasks,
		groups:      groups,
		notifier:    notifier,
		activities:  activities,
		assignments: assignments,
		resolver:    resolver,
	}
}

type CreateTaskInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	GroupID     string `json:"groupId"`
	AssignedTo  string `json:"assignedTo"`
	DueDate     string `json:"dueDate"`
	Priority    string `json:"priority"`
}

func (s *TaskService) CreateTask(ctx context.Context, actorID string, input CreateTaskInput) (*models.Task, error) {
	if input.Title == "" || input.GroupID == "" {
		return nil, models.NewValidationError("title and group ID are required")
	}

	group, err := s.groups.Load(ctx, input.GroupID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(actorID) {
		return nil, models.NewAuthorizationError("you are not a member of this group")
	}

	assignedToName := ""
	assignedToEmail := ""
	if input.AssignedTo != "" {
		if !group.HasMember(input.AssignedTo) {
			return nil, models.NewValidationError("assigned user is not a group member")
		}
		if profile, err := s.resolver.Profile(ctx, input.AssignedTo); err != nil {
			logging.Logger.Warnf("Event ID: ASSIGNEE_LOOKUP_FAILED, Description: Assignee lookup failed for %s: %v", input.AssignedTo, err)
		} else if profile != nil {
			assignedToName = profile.FullName
			assignedToEmail = profile.Email
		}
	}
	assignerName := s.resolver.DisplayName(ctx, actorID)

	now := time.Now()
	task := &models.Task{
		ID:              primitive.NewObjectID(),
		Title:           input.Title,
		Description:     input.Description,
		GroupID:         input.GroupID,
		AssignedTo:      input.AssignedTo,
		AssignedToName:  assignedToName,
		AssignedToEmail: assignedToEmail,
		AssignedBy:      actorID,
		AssignedByName:  assignerName,
		Status:          models.StatusToDo,
		Priority:        firstNonEmpty(input.Priority, "medium"),
		DueDate:         input.DueDate,
		Progress:        0,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.tasks.Insert(ctx, task); err != nil {
		return nil, err
	}

	if input.AssignedTo != "" {
		s.assignments.Enqueue(AssignmentEvent{
			TaskID:       task.ID.Hex(),
			Title:        task.Title,
			Description:  firstNonEmpty(task.Description, "No description"),
			GroupID:      task.GroupID,
			GroupName:    firstNonEmpty(group.Name, "your group"),
			DueDate:      task.DueDate,
			Priority:     task.Priority,
			AssigneeID:   task.AssignedTo,
			AssigneeName: assignedToName,
			AssignerID:   actorID,
			AssignerName: assignerName,
		})
		s.activities.Append(ctx, task.GroupID, actorID, models.ActivityTaskAssigned,
			fmt.Sprintf("Assigned task %q to %s", task.Title, nameOrMember(assignedToName)),
			map[string]interface{}{
				"taskId":       task.ID.Hex(),
				"assigneeId":   task.AssignedTo,
				"assigneeName": assignedToName,
			})
	}

	s.notifier.Broadcast(ctx, group.Members, []string{actorID, task.AssignedTo}, NotificationInput{
		Type:    models.NotificationTaskCreated,
		TaskID:  task.ID.Hex(),
		GroupID: task.GroupID,
		Message: fmt.Sprintf("New task %q created in your group", task.Title),
		ActorID: actorID,
	})

	s.activities.Append(ctx, task.GroupID, actorID, models.ActivityTaskCreated,
		fmt.Sprintf("Created task: %s", task.Title),
		map[string]interface{}{"taskId": task.ID.Hex(), "title": task.Title, "assignedTo": task.AssignedTo})

	return task, nil
}

// UpdateTask runs the lifecycle state machine for a patch and, once the
// primary write succeeds, emits the derived notifications and audit entries.
func (s *TaskService) UpdateTask(ctx context.Context, actorID, taskID string, patch TaskPatch) error {
	task, err := s.tasks.Get(ctx, taskID)
	if err != nil {
		return err
	}

	group, err := s.groups.Load(ctx, task.GroupID)
	if err != nil {
		return err
	}
	if !group.HasMember(actorID) {
		return models.NewAuthorizationError("access denied")
	}

	var assignee *AssigneeProfile
	if patch.AssignedTo != nil && *patch.AssignedTo != "" {
		assignee = &AssigneeProfile{}
		if profile, err := s.resolver.Profile(ctx, *patch.AssignedTo); err != nil {
			logging.Logger.Warnf("Event ID: ASSIGNEE_LOOKUP_FAILED, Description: Assignee lookup failed for %s: %v", *patch.AssignedTo, err)
		} else if profile != nil {
			assignee.Found = true
			assignee.Name = profile.FullName
			assignee.Email = profile.Email
		}
	}

	result, err := ApplyUpdate(task, patch, actorID, group, assignee, time.Now())
	if err != nil {
		return err
	}

	if err := s.tasks.ApplySet(ctx, taskID, result.Set); err != nil {
		return err
	}

	s.dispatchUpdateEvents(ctx, task, group, actorID, result)
	return nil
}

// dispatchUpdateEvents emits the side effects a validated update derived.
// All of them are best-effort; the primary mutation has already committed.
func (s *TaskService) dispatchUpdateEvents(ctx context.Context, task *models.Task, group *models.Group, actorID string, result *UpdateResult) {
	for _, activity := range result.Activities {
		s.activities.Append(ctx, task.GroupID, actorID, activity.Action, activity.Details, activity.Metadata)
	}
	for _, notification := range result.Notifications {
		s.notifier.Notify(ctx, NotificationInput{
			UserID:  notification.UserID,
			Type:    notification.Type,
			TaskID:  task.ID.Hex(),
			GroupID: task.GroupID,
			Message: notification.Message,
			ActorID: actorID,
		})
	}
	if result.Broadcast != nil {
		s.notifier.Broadcast(ctx, group.Members, result.Broadcast.Exclude, NotificationInput{
			Type:    result.Broadcast.Type,
			TaskID:  task.ID.Hex(),
			GroupID: task.GroupID,
			Message: result.Broadcast.Message,
			ActorID: actorID,
		})
	}
	if result.Assignment != nil {
		s.assignments.Enqueue(*result.Assignment)
	}
}

func (s *TaskService) GetTask(ctx context.Context, actorID, taskID string) (*models.Task, error) {
	task, err := s.tasks.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}

	group, err := s.groups.Load(ctx, task.GroupID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(actorID) {
		return nil, models.NewAuthorizationError("access denied")
	}
	return task, nil
}

// TasksByGroupForUser lists a group's tasks for a member, newest first, with
// an optional status filter.
func (s *TaskService) TasksByGroupForUser(ctx context.Context, actorID, groupID, status string) ([]models.Task, error) {
	group, err := s.groups.Load(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(actorID) {
		return nil, models.NewAuthorizationError("access denied")
	}
	return s.tasks.ListByGroup(ctx, groupID, status)
}

// TasksForGroup lists a group's tasks without an authorization check; used
// by the dashboard aggregator which already resolved membership.
func (s *TaskService) TasksForGroup(ctx context.Context, groupID string) ([]models.Task, error) {
	return s.tasks.ListByGroup(ctx, groupID, "")
}

// MyTasks returns tasks the user is assigned to or created, due-date
// ascending with undated tasks last. Degrades to an empty list on storage
// failure instead of failing the request.
func (s *TaskService) MyTasks(ctx context.Context, userID, status string) []models.Task {
	merged := make(map[string]models.Task)
	for _, field := range []string{"assignedTo", "assignedBy"} {
		tasks, err := s.tasks.ListByUserField(ctx, field, userID, status)
		if err != nil {
			logging.Logger.Warnf("Event ID: MY_TASKS_FETCH_FAILED, Description: Fetch by %s failed for user %s: %v", field, userID, err)
			continue
		}
		for _, task := range tasks {
			merged[task.ID.Hex()] = task
		}
	}

	tasks := make([]models.Task, 0, len(merged))
	for _, task := range merged {
		tasks = append(tasks, task)
	}
	sortTasksByDueDate(tasks)
	return tasks
}

func (s *TaskService) DeleteTask(ctx context.Context, actorID, taskID string) error {
	task, err := s.tasks.Get(ctx, taskID)
	if err != nil {
		return err
	}
	if task.AssignedBy != actorID {
		return models.NewAuthorizationError("only task creator can delete task")
	}
	return s.tasks.Delete(ctx, taskID)
}

// UpcomingDeadlines returns the caller's open tasks due within the window,
// due-date ascending.
func (s *TaskService) UpcomingDeadlines(ctx context.Context, userID string, days int) ([]models.Task, error) {
	candidates, err := s.tasks.ListOpenAssignedTo(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	cutoff := now.AddDate(0, 0, days)
	upcoming := make([]models.Task, 0)
	for _, task := range candidates {
		due, ok := parseDueDate(task.DueDate)
		if !ok {
			continue
		}
		if !due.Before(now) && !due.After(cutoff) {
			upcoming = append(upcoming, task)
		}
	}
	sortTasksByDueDate(upcoming)
	return upcoming, nil
}

func parseDueDate(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func sortTasksByDueDate(tasks []models.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		di, iOK := parseDueDate(tasks[i].DueDate)
		dj, jOK := parseDueDate(tasks[j].DueDate)
		if iOK != jOK {
			return iOK
		}
		if !iOK {
			return false
		}
		return di.Before(dj)
	})
}
