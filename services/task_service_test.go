package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/JethroRendon/Groupify---CC-206-Final-Project/models"
)

type fakeTaskStore struct {
	tasks     map[string]*models.Task
	sets      []map[string]interface{}
	insertErr error
	setErr    error
}

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{tasks: map[string]*models.Task{}}
}

func (f *fakeTaskStore) Insert(ctx context.Context, task *models.Task) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	stored := *task
	f.tasks[task.ID.Hex()] = &stored
	return nil
}

func (f *fakeTaskStore) Get(ctx context.Context, id string) (*models.Task, error) {
	if task, ok := f.tasks[id]; ok {
		copied := *task
		return &copied, nil
	}
	return nil, models.NewNotFoundError("task")
}

func (f *fakeTaskStore) ApplySet(ctx context.Context, id string, set map[string]interface{}) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.sets = append(f.sets, set)
	return nil
}

func (f *fakeTaskStore) ListByGroup(ctx context.Context, groupID, status string) ([]models.Task, error) {
	var tasks []models.Task
	for _, task := range f.tasks {
		if task.GroupID == groupID && (status == "" || string(task.Status) == status) {
			tasks = append(tasks, *task)
		}
	}
	return tasks, nil
}

func (f *fakeTaskStore) ListByUserField(ctx context.Context, field, userID, status string) ([]models.Task, error) {
	var tasks []models.Task
	for _, task := range f.tasks {
		match := (field == "assignedTo" && task.AssignedTo == userID) ||
			(field == "assignedBy" && task.AssignedBy == userID)
		if match && (status == "" || string(task.Status) == status) {
			tasks = append(tasks, *task)
		}
	}
	return tasks, nil
}

func (f *fakeTaskStore) ListOpenAssignedTo(ctx context.Context, userID string) ([]models.Task, error) {
	var tasks []models.Task
	for _, task := range f.tasks {
		if task.AssignedTo == userID && task.Status != models.StatusDone {
			tasks = append(tasks, *task)
		}
	}
	return tasks, nil
}

func (f *fakeTaskStore) Delete(ctx context.Context, id string) error {
	delete(f.tasks, id)
	return nil
}

type fakeGroupLoader struct {
	group *models.Group
}

func (f *fakeGroupLoader) Load(ctx context.Context, groupID string) (*models.Group, error) {
	if f.group == nil {
		return nil, models.NewNotFoundError("group")
	}
	copied := *f.group
	return &copied, nil
}

type fakeProfiles map[string]models.User

func (f fakeProfiles) Profile(ctx context.Context, uid string) (*models.User, error) {
	if user, ok := f[uid]; ok {
		return &user, nil
	}
	return nil, models.NewNotFoundError("user")
}

func (f fakeProfiles) DisplayName(ctx context.Context, uid string) string {
	return f[uid].FullName
}

// taskFixture wires a TaskService to the real dispatcher, activity and
// assignment services over in-memory fakes.
type taskFixture struct {
	service    *TaskService
	tasks      *fakeTaskStore
	notifStore *fakeNotificationStore
	actStore   *fakeActivityStore
	notifier   *AssignmentNotifier
}

func newTaskFixture(group *models.Group, profiles fakeProfiles) *taskFixture {
	tasks := newFakeTaskStore()
	notifStore := &fakeNotificationStore{}
	actStore := &fakeActivityStore{}

	dispatcher := NewNotificationService(notifStore)
	resolver := &stubNameResolver{names: map[string]string{}}
	for uid, user := range profiles {
		resolver.names[uid] = user.FullName
	}
	notifier := NewAssignmentNotifier(dispatcher, resolver, NewAssignmentDedupCache(5*time.Minute))

	return &taskFixture{
		service: NewTaskService(tasks, &fakeGroupLoader{group: group}, dispatcher,
			NewActivityService(actStore, fixedNames{}), notifier, profiles),
		tasks:      tasks,
		notifStore: notifStore,
		actStore:   actStore,
		notifier:   notifier,
	}
}

func (f *taskFixture) activityEntries(action models.ActivityAction) []models.ActivityLog {
	var entries []models.ActivityLog
	for _, entry := range f.actStore.inserted {
		if entry.Action == action {
			entries = append(entries, entry)
		}
	}
	return entries
}

func (f *taskFixture) notificationsFor(userID string) []models.Notification {
	var notifications []models.Notification
	for _, n := range f.notifStore.inserted {
		if n.UserID == userID {
			notifications = append(notifications, n)
		}
	}
	return notifications
}

func TestCreateAssignedTaskNotifiesAssigneeOnly(t *testing.T) {
	group := testGroup("u1", "u2")
	fixture := newTaskFixture(group, fakeProfiles{
		"u1": {UID: "u1", FullName: "User One"},
		"u2": {UID: "u2", FullName: "User Two", Email: "two@example.com"},
	})

	task, err := fixture.service.CreateTask(context.Background(), "u1", CreateTaskInput{
		Title:      "Write report",
		GroupID:    group.ID.Hex(),
		AssignedTo: "u2",
		Priority:   "high",
		DueDate:    "2026-09-15",
	})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	fixture.notifier.Close()

	if task.Status != models.StatusToDo || task.Progress != 0 {
		t.Errorf("new task lifecycle = %s/%d, want To Do/0", task.Status, task.Progress)
	}
	if _, ok := fixture.tasks.tasks[task.ID.Hex()]; !ok {
		t.Fatal("task was not persisted")
	}

	assigned := fixture.activityEntries(models.ActivityTaskAssigned)
	if len(assigned) != 1 {
		t.Fatalf("task_assigned activities = %d, want 1", len(assigned))
	}
	if assigned[0].Metadata["assigneeId"] != "u2" {
		t.Errorf("activity metadata.assigneeId = %v, want u2", assigned[0].Metadata["assigneeId"])
	}
	if len(fixture.activityEntries(models.ActivityTaskCreated)) != 1 {
		t.Error("missing task_created activity")
	}

	// The deferred queue delivered exactly one task_assigned to the assignee.
	assigneeNotifs := fixture.notificationsFor("u2")
	if len(assigneeNotifs) != 1 || assigneeNotifs[0].Type != models.NotificationTaskAssigned {
		t.Fatalf("assignee notifications = %+v, want one task_assigned", assigneeNotifs)
	}

	// The actor hears nothing about their own action.
	if actorNotifs := fixture.notificationsFor("u1"); len(actorNotifs) != 0 {
		t.Errorf("actor notifications = %+v, want none", actorNotifs)
	}
}

func TestAssigneeCompletingTaskNotifiesAssigner(t *testing.T) {
	group := testGroup("u1", "u2")
	fixture := newTaskFixture(group, fakeProfiles{})

	started := time.Now().Add(-time.Hour)
	task := testTask("u2", "u1")
	task.GroupID = group.ID.Hex()
	task.Status = models.StatusInProgress
	task.Progress = 50
	task.StartedAt = &started
	fixture.tasks.tasks[task.ID.Hex()] = task

	if err := fixture.service.UpdateTask(context.Background(), "u2", task.ID.Hex(), TaskPatch{Progress: floatPtr(100)}); err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	fixture.notifier.Close()

	if len(fixture.tasks.sets) != 1 {
		t.Fatalf("primary writes = %d, want 1", len(fixture.tasks.sets))
	}
	set := fixture.tasks.sets[0]
	if set["status"] != models.StatusDone || set["progress"] != 100 {
		t.Errorf("committed set = %v, want Done/100", set)
	}
	if set["completedAt"] == nil {
		t.Error("completedAt not set")
	}

	completed := fixture.activityEntries(models.ActivityTaskCompleted)
	if len(completed) != 1 {
		t.Errorf("task_completed activities = %d, want 1", len(completed))
	}

	// Exactly one notification in total, to the assigner.
	if len(fixture.notifStore.inserted) != 1 {
		t.Fatalf("notifications = %+v, want exactly 1", fixture.notifStore.inserted)
	}
	if n := fixture.notifStore.inserted[0]; n.UserID != "u1" || n.Type != models.NotificationTaskProgress {
		t.Errorf("notification = %+v, want task_progress for u1", n)
	}
}

func TestUpdateTaskPrimaryWriteFailureSuppressesEvents(t *testing.T) {
	group := testGroup("u1", "u2")
	fixture := newTaskFixture(group, fakeProfiles{})
	fixture.tasks.setErr = errors.New("down")

	task := testTask("u2", "u1")
	task.GroupID = group.ID.Hex()
	fixture.tasks.tasks[task.ID.Hex()] = task

	err := fixture.service.UpdateTask(context.Background(), "u2", task.ID.Hex(), TaskPatch{Progress: floatPtr(100)})
	if err == nil {
		t.Fatal("failed primary write must surface an error")
	}
	fixture.notifier.Close()

	if len(fixture.actStore.inserted) != 0 {
		t.Errorf("activities after failed write = %+v, want none", fixture.actStore.inserted)
	}
	if len(fixture.notifStore.inserted) != 0 {
		t.Errorf("notifications after failed write = %+v, want none", fixture.notifStore.inserted)
	}
}

func TestCreateTaskInsertFailureSuppressesEvents(t *testing.T) {
	group := testGroup("u1", "u2")
	fixture := newTaskFixture(group, fakeProfiles{})
	fixture.tasks.insertErr = errors.New("down")

	_, err := fixture.service.CreateTask(context.Background(), "u1", CreateTaskInput{
		Title:      "Write report",
		GroupID:    group.ID.Hex(),
		AssignedTo: "u2",
	})
	if err == nil {
		t.Fatal("failed insert must surface an error")
	}
	fixture.notifier.Close()

	if len(fixture.actStore.inserted) != 0 || len(fixture.notifStore.inserted) != 0 {
		t.Error("no events may be emitted when the insert fails")
	}
}

func TestParseDueDate(t *testing.T) {
	if _, ok := parseDueDate(""); ok {
		t.Error("empty due date must not parse")
	}
	if _, ok := parseDueDate("next tuesday"); ok {
		t.Error("garbage due date must not parse")
	}

	got, ok := parseDueDate("2026-09-15")
	if !ok || got.Year() != 2026 || got.Month() != time.September || got.Day() != 15 {
		t.Errorf("date-only parse = %v, %v", got, ok)
	}

	got, ok = parseDueDate("2026-09-15T10:30:00Z")
	if !ok || got.Hour() != 10 {
		t.Errorf("RFC3339 parse = %v, %v", got, ok)
	}
}

func TestSortTasksByDueDate(t *testing.T) {
	tasks := []models.Task{
		{Title: "undated"},
		{Title: "late", DueDate: "2026-09-20"},
		{Title: "bad date", DueDate: "soonish"},
		{Title: "early", DueDate: "2026-09-01"},
		{Title: "timestamped", DueDate: "2026-09-10T08:00:00Z"},
	}

	sortTasksByDueDate(tasks)

	want := []string{"early", "timestamped", "late", "undated", "bad date"}
	for i, title := range want {
		if tasks[i].Title != title {
			t.Errorf("position %d = %q, want %q", i, tasks[i].Title, title)
		}
	}
}
