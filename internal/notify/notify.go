// Package notify creates and clears the notification records that
// visibility transitions produce.
package notify

import (
	"context"
	"fmt"
	"strconv"

	"caseboard/internal/store"
)

// KindCaseApproved tags the notification created when a moderator approves
// a case.
const KindCaseApproved = 201

// deleteBatchSize bounds how many records one cleanup commit removes.
const deleteBatchSize = 100

type notificationStore interface {
	InsertNotification(ctx context.Context, n store.Notification) (int64, error)
	PatchNotificationID(ctx context.Context, rowID int64, id string) error
	NotificationRowsForContent(ctx context.Context, uid, contentID string) ([]int64, error)
	DeleteNotificationRows(ctx context.Context, rowIDs []int64) error
}

// Fanout writes and removes notification records for one owner at a time.
type Fanout struct {
	store notificationStore
}

func New(store notificationStore) *Fanout {
	return &Fanout{store: store}
}

// CreateApproval inserts the "case approved" notification targeted at the
// owner. The record id is only known after insertion, so it is patched
// back in a second step.
func (f *Fanout) CreateApproval(ctx context.Context, contentID, ownerID string) error {
	rowID, err := f.store.InsertNotification(ctx, store.Notification{
		ContentID: contentID,
		Kind:      KindCaseApproved,
		UID:       ownerID,
	})
	if err != nil {
		return fmt.Errorf("create approval notification for %s: %w", contentID, err)
	}
	if err := f.store.PatchNotificationID(ctx, rowID, strconv.FormatInt(rowID, 10)); err != nil {
		return fmt.Errorf("patch approval notification for %s: %w", contentID, err)
	}
	return nil
}

// DeleteAllForContent scans the owner's notification collection for
// records referencing contentID and deletes the matches in batches. A
// content id with no notifications is a no-op, so re-running after a
// redelivered event is safe.
func (f *Fanout) DeleteAllForContent(ctx context.Context, contentID, ownerID string) error {
	rowIDs, err := f.store.NotificationRowsForContent(ctx, ownerID, contentID)
	if err != nil {
		return fmt.Errorf("scan notifications for %s: %w", contentID, err)
	}
	for start := 0; start < len(rowIDs); start += deleteBatchSize {
		end := min(start+deleteBatchSize, len(rowIDs))
		if err := f.store.DeleteNotificationRows(ctx, rowIDs[start:end]); err != nil {
			return fmt.Errorf("delete notifications for %s: %w", contentID, err)
		}
	}
	return nil
}
