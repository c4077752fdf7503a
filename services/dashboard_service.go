package services

import (
	"context"
	"math"

	"github.com/JethroRendon/Groupify---CC-206-Final-Project/logging"
	"github.com/JethroRendon/Groupify---CC-206-Final-Project/models"
)

// perGroupActivityLimit bounds how many entries each group contributes to
// the aggregated feed.
const perGroupActivityLimit = 5

type groupSource interface {
	ActiveGroupsForUser(ctx context.Context, userID string) ([]models.Group, error)
}

type taskSource interface {
	TasksForGroup(ctx context.Context, groupID string) ([]models.Task, error)
}

type notificationSource interface {
	ListForUser(ctx context.Context, userID string) ([]models.Notification, error)
}

type activitySource interface {
	RecentByGroup(ctx context.Context, groupID string, limit int64) ([]models.ActivityLog, error)
}

type userSource interface {
	Profile(ctx context.Context, uid string) (*models.User, error)
	ResolveNames(ctx context.Context, ids []string) map[string]string
}

// DashboardService composes the dashboard responses from the domain
// services. Every sub-fetch in BuildOverview degrades independently to its
// zero value; the overall call always succeeds.
type DashboardService struct {
	groups        groupSource
	tasks         taskSource
	notifications notificationSource
	activities    activitySource
	users         userSource
}

func NewDashboardService(groups groupSource, tasks taskSource, notifications notificationSource, activities activitySource, users userSource) *DashboardService {
	return &DashboardService{
		groups:        groups,
		tasks:         tasks,
		notifications: notifications,
		activities:    activities,
		users:         users,
	}
}

// Stats accumulates task counts across the caller's active groups.
func (ds *DashboardService) Stats(ctx context.Context, userID string) (*models.DashboardStats, error) {
	groups, err := ds.groups.ActiveGroupsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats := &models.DashboardStats{TotalGroups: len(groups)}
	for _, group := range groups {
		tasks, err := ds.tasks.TasksForGroup(ctx, group.ID.Hex())
		if err != nil {
			return nil, err
		}
		accumulateStats(stats, tasks, userID)
	}
	stats.CompletionRate = completionRate(stats.CompletedTasks, stats.TotalTasks)
	return stats, nil
}

// BuildOverview composes the full dashboard payload: profile, groups,
// stats, notifications and the enriched cross-group activity feed.
func (ds *DashboardService) BuildOverview(ctx context.Context, userID string) *models.Overview {
	overview := &models.Overview{
		Groups:        []models.Group{},
		Notifications: []models.Notification{},
		Activities:    []models.ActivityLog{},
	}

	if user, err := ds.users.Profile(ctx, userID); err != nil {
		logging.Logger.Warnf("Event ID: OVERVIEW_PROFILE_FAILED, Description: Profile fetch failed for %s: %v", userID, err)
	} else if user != nil {
		overview.User = &models.OverviewUser{UID: user.UID, FullName: user.FullName, Email: user.Email}
	}

	groups, err := ds.groups.ActiveGroupsForUser(ctx, userID)
	if err != nil {
		logging.Logger.Warnf("Event ID: OVERVIEW_GROUPS_FAILED, Description: Group fetch failed for %s: %v", userID, err)
		groups = nil
	}
	if groups != nil {
		overview.Groups = groups
	}

	overview.Stats.TotalGroups = len(groups)
	for _, group := range groups {
		tasks, err := ds.tasks.TasksForGroup(ctx, group.ID.Hex())
		if err != nil {
			logging.Logger.Warnf("Event ID: OVERVIEW_TASKS_FAILED, Description: Task fetch failed for group %s: %v", group.ID.Hex(), err)
			continue
		}
		accumulateStats(&overview.Stats, tasks, userID)
	}
	overview.Stats.CompletionRate = completionRate(overview.Stats.CompletedTasks, overview.Stats.TotalTasks)

	if notifications, err := ds.notifications.ListForUser(ctx, userID); err != nil {
		logging.Logger.Warnf("Event ID: OVERVIEW_NOTIFICATIONS_FAILED, Description: Notification fetch failed for %s: %v", userID, err)
	} else if notifications != nil {
		overview.Notifications = notifications
	}

	var activities []models.ActivityLog
	for _, group := range groups {
		entries, err := ds.activities.RecentByGroup(ctx, group.ID.Hex(), perGroupActivityLimit)
		if err != nil {
			logging.Logger.Warnf("Event ID: OVERVIEW_ACTIVITIES_FAILED, Description: Activity fetch failed for group %s: %v", group.ID.Hex(), err)
			continue
		}
		activities = append(activities, entries...)
	}
	sortActivitiesNewestFirst(activities)
	names := ds.users.ResolveNames(ctx, collectActivityUserIDs(activities))
	applyActivityNames(activities, names)
	if activities != nil {
		overview.Activities = activities
	}

	return overview
}

// RecentActivities merges the newest entries across the caller's groups,
// newest first, capped to limit.
func (ds *DashboardService) RecentActivities(ctx context.Context, userID string, limit int) ([]models.ActivityLog, error) {
	groups, err := ds.groups.ActiveGroupsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	activities := make([]models.ActivityLog, 0)
	for _, group := range groups {
		entries, err := ds.activities.RecentByGroup(ctx, group.ID.Hex(), int64(limit))
		if err != nil {
			logging.Logger.Warnf("Event ID: RECENT_ACTIVITIES_FAILED, Description: Activity fetch failed for group %s: %v", group.ID.Hex(), err)
			continue
		}
		activities = append(activities, entries...)
	}
	sortActivitiesNewestFirst(activities)
	if limit > 0 && len(activities) > limit {
		activities = activities[:limit]
	}
	return activities, nil
}

func accumulateStats(stats *models.DashboardStats, tasks []models.Task, userID string) {
	for _, task := range tasks {
		stats.TotalTasks++
		switch task.Status {
		case models.StatusToDo:
			stats.PendingTasks++
		case models.StatusInProgress:
			stats.InProgressTasks++
		case models.StatusDone:
			stats.CompletedTasks++
		}
		if task.AssignedTo == userID {
			stats.MyTasks++
		}
	}
}

func completionRate(completed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}
