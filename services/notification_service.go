package services

import (
	"context"
	"sort"
	"time"

	"github.com/JethroRendon/Groupify---CC-206-Final-Project/logging"
	"github.com/JethroRendon/Groupify---CC-206-Final-Project/models"
)

// notificationFeedLimit caps the notification list returned to a user.
const notificationFeedLimit = 50

// NotificationStore is the persistence surface the dispatcher needs.
// Implemented by repositories.NotificationRepo.
type NotificationStore interface {
	Insert(ctx context.Context, notification *models.Notification) error
	ListByUser(ctx context.Context, userID string) ([]models.Notification, error)
	Get(ctx context.Context, id string) (*models.Notification, error)
	MarkRead(ctx context.Context, id string, readAt time.Time) error
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}

// NotificationInput describes one notification to dispatch.
type NotificationInput struct {
	UserID  string
	Type    models.NotificationType
	TaskID  string
	GroupID string
	Message string
	ActorID string
}

type NotificationService struct {
	store NotificationStore
}

func NewNotificationService(store NotificationStore) *NotificationService {
	return &NotificationService{store: store}
}

// Notify creates one notification. It never reports failure to the caller:
// storage errors are logged and swallowed so a broken notification write can
// not fail the primary operation it accompanies. Self-notification is
// suppressed for every type except task_assigned, which supports
// self-assignment.
func (ns *NotificationService) Notify(ctx context.Context, input NotificationInput) {
	if input.UserID == "" {
		return
	}
	if input.UserID == input.ActorID && input.Type != models.NotificationTaskAssigned {
		return
	}

	notification := &models.Notification{
		UserID:  input.UserID,
		Type:    input.Type,
		TaskID:  input.TaskID,
		GroupID: input.GroupID,
		Message: input.Message,
		ActorID: input.ActorID,
		Read:    false,
	}
	if err := ns.store.Insert(ctx, notification); err != nil {
		logging.Logger.Warnf("Event ID: NOTIFICATION_WRITE_FAILED, Description: Failed to create %s notification for user %s: %v", input.Type, input.UserID, err)
	}
}

// Broadcast fans one notification out to every roster member not in the
// exclusion set. Delivery per member is independent: a failure for one member
// never blocks the rest.
func (ns *NotificationService) Broadcast(ctx context.Context, members []string, exclude []string, input NotificationInput) {
	excluded := make(map[string]bool, len(exclude))
	for _, uid := range exclude {
		if uid != "" {
			excluded[uid] = true
		}
	}

	for _, memberID := range members {
		if excluded[memberID] {
			continue
		}
		perMember := input
		perMember.UserID = memberID
		ns.Notify(ctx, perMember)
	}
}

// ListForUser returns the caller's notifications sorted unread-first, then
// newest-first, capped to the feed limit. Sorting happens in memory; the
// store query is a plain equality match.
func (ns *NotificationService) ListForUser(ctx context.Context, userID string) ([]models.Notification, error) {
	notifications, err := ns.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	sortNotifications(notifications)
	if len(notifications) > notificationFeedLimit {
		notifications = notifications[:notificationFeedLimit]
	}
	return notifications, nil
}

// MarkRead flips the read flag for a notification owned by the caller.
func (ns *NotificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	notification, err := ns.store.Get(ctx, notificationID)
	if err != nil {
		return err
	}
	if notification.UserID != userID {
		return models.NewAuthorizationError("notification does not belong to user")
	}
	return ns.store.MarkRead(ctx, notificationID, time.Now())
}

// ClearForUser bulk-deletes every notification for the caller.
func (ns *NotificationService) ClearForUser(ctx context.Context, userID string) (int64, error) {
	return ns.store.DeleteByUser(ctx, userID)
}

func sortNotifications(notifications []models.Notification) {
	sort.SliceStable(notifications, func(i, j int) bool {
		if notifications[i].Read != notifications[j].Read {
			return !notifications[i].Read
		}
		return notifications[i].CreatedAt.After(notifications[j].CreatedAt)
	})
}
