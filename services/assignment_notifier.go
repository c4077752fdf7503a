package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/JethroRendon/Groupify---CC-206-Final-Project/logging"
	"github.com/JethroRendon/Groupify---CC-206-Final-Project/models"
)

const assignmentQueueSize = 128

type notificationSender interface {
	Notify(ctx context.Context, input NotificationInput)
}

type displayNameResolver interface {
	DisplayName(ctx context.Context, uid string) string
}

// AssignmentNotifier delivers assignment notifications out of band: events
// are queued during request handling and processed by a background worker
// after the triggering response has been written. Duplicate events for the
// same (taskId, assigneeId) pair inside the dedup window are suppressed.
// There is no caller left to report failure to, so every error here is
// logged only.
type AssignmentNotifier struct {
	sender   notificationSender
	resolver displayNameResolver
	dedup    *AssignmentDedupCache

	queue chan AssignmentEvent
	wg    sync.WaitGroup
	once  sync.Once
}

func NewAssignmentNotifier(sender notificationSender, resolver displayNameResolver, dedup *AssignmentDedupCache) *AssignmentNotifier {
	an := &AssignmentNotifier{
		sender:   sender,
		resolver: resolver,
		dedup:    dedup,
		queue:    make(chan AssignmentEvent, assignmentQueueSize),
	}
	an.wg.Add(1)
	go an.run()
	return an
}

// Enqueue hands an assignment event to the background worker. It never
// blocks the request path: if the queue is full the event is dropped and
// logged, an accepted residual-delivery risk.
func (an *AssignmentNotifier) Enqueue(event AssignmentEvent) {
	select {
	case an.queue <- event:
	default:
		logging.Logger.Warnf("Event ID: ASSIGNMENT_QUEUE_FULL, Description: Dropped assignment notification for task %s assignee %s", event.TaskID, event.AssigneeID)
	}
}

// Close stops the worker after draining queued events.
func (an *AssignmentNotifier) Close() {
	an.once.Do(func() {
		close(an.queue)
	})
	an.wg.Wait()
}

func (an *AssignmentNotifier) run() {
	defer an.wg.Done()
	for event := range an.queue {
		an.deliver(context.Background(), event)
	}
}

func (an *AssignmentNotifier) deliver(ctx context.Context, event AssignmentEvent) {
	if event.AssigneeID == "" {
		return
	}
	if !an.dedup.Allow(event.TaskID, event.AssigneeID) {
		logging.Logger.Infof("Event ID: ASSIGNMENT_DEDUP_SUPPRESSED, Description: Suppressed duplicate assignment notification for %s:%s", event.TaskID, event.AssigneeID)
		return
	}

	assignerName := event.AssignerName
	if assignerName == "" && event.AssignerID != "" {
		assignerName = an.resolver.DisplayName(ctx, event.AssignerID)
	}

	message := fmt.Sprintf("Task: %q | Assigned By: %s | Priority: %s | Due: %s",
		event.Title,
		firstNonEmpty(assignerName, "someone"),
		firstNonEmpty(event.Priority, "medium"),
		firstNonEmpty(event.DueDate, "none"))

	an.sender.Notify(ctx, NotificationInput{
		UserID:  event.AssigneeID,
		Type:    models.NotificationTaskAssigned,
		TaskID:  event.TaskID,
		GroupID: event.GroupID,
		Message: message,
		ActorID: event.AssignerID,
	})
}
