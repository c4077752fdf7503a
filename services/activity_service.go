package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/JethroRendon/Groupify---CC-206-Final-Project/logging"
	"github.com/JethroRendon/Groupify---CC-206-Final-Project/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// clearBatchSize stays strictly below the store's per-batch mutation ceiling
// so arbitrarily large logs can be cleared chunk by chunk.
const clearBatchSize = 450

// ActivityStore is the persistence surface the log service needs.
// Implemented by repositories.ActivityRepo.
type ActivityStore interface {
	Insert(ctx context.Context, entry *models.ActivityLog) error
	ListByGroup(ctx context.Context, groupID string, limit int64) ([]models.ActivityLog, error)
	IDsByGroup(ctx context.Context, groupID string) ([]primitive.ObjectID, error)
	DeleteByIDs(ctx context.Context, ids []primitive.ObjectID) (int64, error)
}

type nameResolver interface {
	ResolveNames(ctx context.Context, ids []string) map[string]string
}

type ActivityService struct {
	store    ActivityStore
	resolver nameResolver
}

func NewActivityService(store ActivityStore, resolver nameResolver) *ActivityService {
	return &ActivityService{store: store, resolver: resolver}
}

// Append writes one audit entry. Best-effort: a storage failure is logged
// and never propagated, so logging can not block the operation it records.
func (as *ActivityService) Append(ctx context.Context, groupID, userID string, action models.ActivityAction, details string, metadata map[string]interface{}) {
	if groupID == "" || userID == "" || action == "" {
		return
	}
	if metadata == nil {
		metadata = map[string]interface{}{}
	}

	entry := &models.ActivityLog{
		GroupID:  groupID,
		UserID:   userID,
		Action:   action,
		Details:  details,
		Metadata: metadata,
	}
	if err := as.store.Insert(ctx, entry); err != nil {
		logging.Logger.Warnf("Event ID: ACTIVITY_WRITE_FAILED, Description: Failed to log %s for group %s: %v", action, groupID, err)
	}
}

// Log writes one entry for an explicit logging request, where the entry is
// the operation itself: validation and storage errors surface to the caller.
// Side-effect call sites use Append instead.
func (as *ActivityService) Log(ctx context.Context, groupID, userID string, action models.ActivityAction, details string, metadata map[string]interface{}) (*models.ActivityLog, error) {
	if groupID == "" || userID == "" || action == "" {
		return nil, models.NewValidationError("groupId and action are required")
	}
	if metadata == nil {
		metadata = map[string]interface{}{}
	}

	entry := &models.ActivityLog{
		GroupID:  groupID,
		UserID:   userID,
		Action:   action,
		Details:  details,
		Metadata: metadata,
	}
	if err := as.store.Insert(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to write activity entry: %v", err)
	}
	return entry, nil
}

// ListByGroup returns up to limit entries sorted newest-first with actor and
// assignee names resolved. The store gives no ordering guarantee, so sorting
// happens here.
func (as *ActivityService) ListByGroup(ctx context.Context, groupID string, limit int64) ([]models.ActivityLog, error) {
	entries, err := as.store.ListByGroup(ctx, groupID, limit)
	if err != nil {
		return nil, err
	}

	sortActivitiesNewestFirst(entries)
	names := as.resolver.ResolveNames(ctx, collectActivityUserIDs(entries))
	applyActivityNames(entries, names)
	return entries, nil
}

// RecentByGroup returns raw entries for aggregation; callers merge, sort and
// enrich across groups themselves.
func (as *ActivityService) RecentByGroup(ctx context.Context, groupID string, limit int64) ([]models.ActivityLog, error) {
	return as.store.ListByGroup(ctx, groupID, limit)
}

// ClearGroup deletes every entry for the group in sequential bounded batches.
// Each committed batch is a durability checkpoint; on failure the count of
// already-deleted entries is returned with the error.
func (as *ActivityService) ClearGroup(ctx context.Context, groupID string) (int64, error) {
	ids, err := as.store.IDsByGroup(ctx, groupID)
	if err != nil {
		return 0, err
	}

	var deleted int64
	for _, batch := range chunkObjectIDs(ids, clearBatchSize) {
		n, err := as.store.DeleteByIDs(ctx, batch)
		deleted += n
		if err != nil {
			return deleted, err
		}
	}
	logging.Logger.Infof("Event ID: ACTIVITY_CLEAR_DONE, Description: Cleared %d activity entries for group %s", deleted, groupID)
	return deleted, nil
}

func chunkObjectIDs(ids []primitive.ObjectID, size int) [][]primitive.ObjectID {
	if size <= 0 || len(ids) == 0 {
		return nil
	}
	var chunks [][]primitive.ObjectID
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}

// sortActivitiesNewestFirst orders by timestamp descending; entries with a
// missing timestamp sort last.
func sortActivitiesNewestFirst(entries []models.ActivityLog) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
}

func collectActivityUserIDs(entries []models.ActivityLog) []string {
	seen := make(map[string]bool)
	var ids []string
	add := func(uid string) {
		if uid != "" && !seen[uid] {
			seen[uid] = true
			ids = append(ids, uid)
		}
	}
	for _, entry := range entries {
		add(entry.UserID)
		add(metadataString(entry.Metadata, "assigneeId"))
		add(metadataString(entry.Metadata, "previousAssigneeId"))
	}
	return ids
}

// applyActivityNames fills the enrichment fields; an unresolved id leaves a
// nil name, never an error.
func applyActivityNames(entries []models.ActivityLog, names map[string]string) {
	for i := range entries {
		if name, ok := names[entries[i].UserID]; ok {
			entries[i].ActorName = &name
		}
		if uid := metadataString(entries[i].Metadata, "assigneeId"); uid != "" {
			if name, ok := names[uid]; ok {
				entries[i].AssigneeName = &name
			}
		}
		if uid := metadataString(entries[i].Metadata, "previousAssigneeId"); uid != "" {
			if name, ok := names[uid]; ok {
				entries[i].PreviousAssigneeName = &name
			}
		}
	}
}

func metadataString(metadata map[string]interface{}, key string) string {
	if metadata == nil {
		return ""
	}
	value, _ := metadata[key].(string)
	return value
}
