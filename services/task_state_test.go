package services

import (
	"testing"
	"time"

	"github.com/JethroRendon/Groupify---CC-206-Final-Project/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }

func testTask(assignedTo, assignedBy string) *models.Task {
	return &models.Task{
		ID:         primitive.NewObjectID(),
		Title:      "Write report",
		GroupID:    "group-1",
		AssignedTo: assignedTo,
		AssignedBy: assignedBy,
		Status:     models.StatusToDo,
		Priority:   "high",
		DueDate:    "2026-09-15",
	}
}

func testGroup(members ...string) *models.Group {
	return &models.Group{
		ID:      primitive.NewObjectID(),
		Name:    "Study Group",
		Members: members,
	}
}

func hasActivity(result *UpdateResult, action models.ActivityAction) bool {
	for _, a := range result.Activities {
		if a.Action == action {
			return true
		}
	}
	return false
}

func findNotification(result *UpdateResult, typ models.NotificationType) *NotificationEvent {
	for i := range result.Notifications {
		if result.Notifications[i].Type == typ {
			return &result.Notifications[i]
		}
	}
	return nil
}

func TestApplyUpdateProgressDerivesStatus(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name         string
		progress     float64
		wantStatus   models.TaskStatus
		wantActivity models.ActivityAction
	}{
		{"midway", 50, models.StatusInProgress, models.ActivityTaskProgress},
		{"lower bound of in progress", 1, models.StatusInProgress, models.ActivityTaskProgress},
		{"complete", 100, models.StatusDone, models.ActivityTaskCompleted},
		{"reset", 0, models.StatusToDo, models.ActivityTaskReset},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			task := testTask("alice", "bob")
			group := testGroup("alice", "bob")

			result, err := ApplyUpdate(task, TaskPatch{Progress: floatPtr(tc.progress)}, "alice", group, nil, now)
			if err != nil {
				t.Fatalf("ApplyUpdate: %v", err)
			}
			if got := result.Set["status"]; got != tc.wantStatus {
				t.Errorf("status = %v, want %v", got, tc.wantStatus)
			}
			if got := result.Set["progress"]; got != int(tc.progress) {
				t.Errorf("progress = %v, want %d", got, int(tc.progress))
			}
			if !hasActivity(result, tc.wantActivity) {
				t.Errorf("missing activity %s", tc.wantActivity)
			}
		})
	}
}

func TestApplyUpdateProgressSetsStartedAtOnce(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	group := testGroup("alice", "bob")

	task := testTask("alice", "bob")
	result, err := ApplyUpdate(task, TaskPatch{Progress: floatPtr(30)}, "alice", group, nil, now)
	if err != nil {
		t.Fatalf("ApplyUpdate: %v", err)
	}
	if result.Set["startedAt"] != now {
		t.Errorf("startedAt = %v, want %v", result.Set["startedAt"], now)
	}

	started := now.Add(-time.Hour)
	task = testTask("alice", "bob")
	task.StartedAt = &started
	result, err = ApplyUpdate(task, TaskPatch{Progress: floatPtr(60)}, "alice", group, nil, now)
	if err != nil {
		t.Fatalf("ApplyUpdate: %v", err)
	}
	if _, ok := result.Set["startedAt"]; ok {
		t.Error("startedAt should not be rewritten for an already started task")
	}
}

func TestApplyUpdateProgressZeroClearsTimestamps(t *testing.T) {
	now := time.Now()
	started := now.Add(-2 * time.Hour)
	completed := now.Add(-time.Hour)
	task := testTask("alice", "bob")
	task.StartedAt = &started
	task.CompletedAt = &completed
	task.Progress = 100
	task.Status = models.StatusDone

	result, err := ApplyUpdate(task, TaskPatch{Progress: floatPtr(0)}, "alice", testGroup("alice", "bob"), nil, now)
	if err != nil {
		t.Fatalf("ApplyUpdate: %v", err)
	}
	if result.Set["startedAt"] != nil || result.Set["completedAt"] != nil {
		t.Errorf("timestamps not cleared: startedAt=%v completedAt=%v", result.Set["startedAt"], result.Set["completedAt"])
	}
}

func TestApplyUpdateExplicitStatusOverridesProgressRule(t *testing.T) {
	now := time.Now()
	task := testTask("alice", "bob")

	result, err := ApplyUpdate(task, TaskPatch{Progress: floatPtr(40), Status: strPtr("Done")}, "alice", testGroup("alice", "bob"), nil, now)
	if err != nil {
		t.Fatalf("ApplyUpdate: %v", err)
	}
	if result.Set["status"] != models.StatusDone {
		t.Errorf("status = %v, want Done", result.Set["status"])
	}
	if result.Set["progress"] != 100 {
		t.Errorf("progress = %v, want 100 when completed explicitly", result.Set["progress"])
	}
	if result.Set["completedAt"] != now {
		t.Errorf("completedAt = %v, want %v", result.Set["completedAt"], now)
	}
}

func TestApplyUpdateStatusInProgressOnlyActsWhenUnstarted(t *testing.T) {
	now := time.Now()
	group := testGroup("alice", "bob")

	task := testTask("alice", "bob")
	result, err := ApplyUpdate(task, TaskPatch{Status: strPtr("In Progress")}, "alice", group, nil, now)
	if err != nil {
		t.Fatalf("ApplyUpdate: %v", err)
	}
	if result.Set["startedAt"] != now {
		t.Errorf("startedAt = %v, want %v", result.Set["startedAt"], now)
	}
	if result.Set["progress"] != 10 {
		t.Errorf("progress = %v, want nudge to 10", result.Set["progress"])
	}
	if !hasActivity(result, models.ActivityTaskStarted) {
		t.Error("missing task_started activity")
	}

	started := now.Add(-time.Hour)
	task = testTask("alice", "bob")
	task.StartedAt = &started
	task.Progress = 45
	result, err = ApplyUpdate(task, TaskPatch{Status: strPtr("In Progress")}, "alice", group, nil, now)
	if err != nil {
		t.Fatalf("ApplyUpdate: %v", err)
	}
	if _, ok := result.Set["startedAt"]; ok {
		t.Error("startedAt should be untouched for a started task")
	}
	if _, ok := result.Set["progress"]; ok {
		t.Error("progress should be untouched for a started task")
	}
	if hasActivity(result, models.ActivityTaskStarted) {
		t.Error("task_started should not repeat")
	}
}

func TestApplyUpdateStatusNormalization(t *testing.T) {
	now := time.Now()
	group := testGroup("alice", "bob")

	for _, raw := range []string{"done", "DONE", "  Done  "} {
		task := testTask("alice", "bob")
		result, err := ApplyUpdate(task, TaskPatch{Status: strPtr(raw)}, "alice", group, nil, now)
		if err != nil {
			t.Fatalf("ApplyUpdate(%q): %v", raw, err)
		}
		if result.Set["status"] != models.StatusDone {
			t.Errorf("status for %q = %v, want Done", raw, result.Set["status"])
		}
	}

	task := testTask("alice", "bob")
	if _, err := ApplyUpdate(task, TaskPatch{Status: strPtr("finished")}, "alice", group, nil, now); err == nil {
		t.Fatal("expected validation error for unknown status")
	} else if _, ok := err.(*models.ValidationError); !ok {
		t.Errorf("error type = %T, want *models.ValidationError", err)
	}
}

func TestApplyUpdateProgressValidation(t *testing.T) {
	now := time.Now()
	group := testGroup("alice", "bob")

	for _, bad := range []float64{-1, 101, 33.5} {
		task := testTask("alice", "bob")
		_, err := ApplyUpdate(task, TaskPatch{Progress: floatPtr(bad)}, "alice", group, nil, now)
		if _, ok := err.(*models.ValidationError); !ok {
			t.Errorf("progress %v: error = %v, want validation error", bad, err)
		}
	}
}

func TestApplyUpdateProgressAuthorization(t *testing.T) {
	now := time.Now()
	task := testTask("alice", "bob")
	group := testGroup("alice", "bob", "carol")

	_, err := ApplyUpdate(task, TaskPatch{Progress: floatPtr(50)}, "carol", group, nil, now)
	if _, ok := err.(*models.AuthorizationError); !ok {
		t.Fatalf("error = %v, want authorization error", err)
	}

	// Anyone may drive progress on an unassigned task.
	task = testTask("", "bob")
	if _, err := ApplyUpdate(task, TaskPatch{Progress: floatPtr(50)}, "carol", group, nil, now); err != nil {
		t.Fatalf("unassigned task: %v", err)
	}
}

func TestApplyUpdateRejectedPatchEmitsNothing(t *testing.T) {
	task := testTask("alice", "bob")
	group := testGroup("alice", "bob")

	result, err := ApplyUpdate(task, TaskPatch{Progress: floatPtr(150), Title: strPtr("New title")}, "alice", group, nil, time.Now())
	if err == nil {
		t.Fatal("expected error")
	}
	if result != nil {
		t.Fatal("rejected patch must return a nil result")
	}
}

func TestApplyUpdateReassignment(t *testing.T) {
	now := time.Now()
	task := testTask("alice", "bob")
	group := testGroup("alice", "bob", "dave", "erin")
	profile := &AssigneeProfile{Name: "Dave Jones", Email: "dave@example.com", Found: true}

	result, err := ApplyUpdate(task, TaskPatch{AssignedTo: strPtr("dave")}, "bob", group, profile, now)
	if err != nil {
		t.Fatalf("ApplyUpdate: %v", err)
	}

	if result.Set["assignedTo"] != "dave" || result.Set["assignedToName"] != "Dave Jones" {
		t.Errorf("assignment fields = %v / %v", result.Set["assignedTo"], result.Set["assignedToName"])
	}

	assigned := findNotification(result, models.NotificationTaskAssigned)
	if assigned == nil || assigned.UserID != "dave" {
		t.Errorf("task_assigned notification = %+v, want for dave", assigned)
	}
	unassigned := findNotification(result, models.NotificationTaskUnassigned)
	if unassigned == nil || unassigned.UserID != "alice" {
		t.Errorf("task_unassigned notification = %+v, want for alice", unassigned)
	}
	if len(result.Notifications) != 2 {
		t.Errorf("notification count = %d, want 2", len(result.Notifications))
	}

	if result.Broadcast == nil {
		t.Fatal("missing assignment broadcast")
	}
	wantExclude := map[string]bool{"bob": true, "dave": true, "alice": true}
	if len(result.Broadcast.Exclude) != 3 {
		t.Fatalf("broadcast exclude = %v", result.Broadcast.Exclude)
	}
	for _, uid := range result.Broadcast.Exclude {
		if !wantExclude[uid] {
			t.Errorf("unexpected exclusion %q", uid)
		}
	}

	if result.Assignment == nil {
		t.Fatal("missing deferred assignment event")
	}
	if result.Assignment.AssigneeID != "dave" || result.Assignment.AssignerID != "bob" {
		t.Errorf("assignment event = %+v", result.Assignment)
	}
	if result.Assignment.Priority != "high" || result.Assignment.DueDate != "2026-09-15" {
		t.Errorf("assignment event fallbacks = %+v", result.Assignment)
	}

	if !hasActivity(result, models.ActivityTaskAssigned) || !hasActivity(result, models.ActivityTaskUnassigned) {
		t.Error("missing assignment activities")
	}
}

func TestApplyUpdateFirstAssignmentSkipsUnassignedEvents(t *testing.T) {
	task := testTask("", "bob")
	group := testGroup("bob", "dave")
	profile := &AssigneeProfile{Name: "Dave Jones", Found: true}

	result, err := ApplyUpdate(task, TaskPatch{AssignedTo: strPtr("dave")}, "bob", group, profile, time.Now())
	if err != nil {
		t.Fatalf("ApplyUpdate: %v", err)
	}
	if findNotification(result, models.NotificationTaskUnassigned) != nil {
		t.Error("first assignment must not emit task_unassigned")
	}
	if hasActivity(result, models.ActivityTaskUnassigned) {
		t.Error("first assignment must not log task_unassigned")
	}
}

func TestApplyUpdateUnassignClearsWithoutEvents(t *testing.T) {
	task := testTask("alice", "bob")
	group := testGroup("alice", "bob")

	result, err := ApplyUpdate(task, TaskPatch{AssignedTo: strPtr("")}, "bob", group, nil, time.Now())
	if err != nil {
		t.Fatalf("ApplyUpdate: %v", err)
	}
	if result.Set["assignedTo"] != "" || result.Set["assignedToName"] != "" {
		t.Errorf("assignment not cleared: %v", result.Set)
	}
	if len(result.Notifications) != 0 || result.Broadcast != nil || result.Assignment != nil {
		t.Errorf("unassign must be silent, got %+v", result)
	}
}

func TestApplyUpdateRejectsNonMemberAssignee(t *testing.T) {
	task := testTask("alice", "bob")
	group := testGroup("alice", "bob")

	_, err := ApplyUpdate(task, TaskPatch{AssignedTo: strPtr("mallory")}, "bob", group, nil, time.Now())
	if _, ok := err.(*models.ValidationError); !ok {
		t.Fatalf("error = %v, want validation error", err)
	}
}

func TestCounterpartSelection(t *testing.T) {
	task := testTask("alice", "bob")

	if got := counterpart(task, "alice"); got != "bob" {
		t.Errorf("assignee actor: counterpart = %q, want bob", got)
	}
	if got := counterpart(task, "bob"); got != "alice" {
		t.Errorf("assigner actor: counterpart = %q, want alice", got)
	}

	task = testTask("", "bob")
	if got := counterpart(task, "bob"); got != "" {
		t.Errorf("unassigned task: counterpart = %q, want empty", got)
	}
}

func TestApplyUpdateCounterpartUsesPreUpdateAssignment(t *testing.T) {
	task := testTask("alice", "bob")
	group := testGroup("alice", "bob", "dave")
	profile := &AssigneeProfile{Name: "Dave", Found: true}

	patch := TaskPatch{AssignedTo: strPtr("dave"), Progress: floatPtr(50)}
	result, err := ApplyUpdate(task, patch, "bob", group, profile, time.Now())
	if err != nil {
		t.Fatalf("ApplyUpdate: %v", err)
	}

	progress := findNotification(result, models.NotificationTaskProgress)
	if progress == nil || progress.UserID != "alice" {
		t.Errorf("progress notification = %+v, want pre-update assignee alice", progress)
	}
}
