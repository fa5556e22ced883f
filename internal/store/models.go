package store

import "time"

// Notification is one record under a user's notification collection. RowID
// is the store-generated key; ID is the public identifier patched into the
// record after insertion, since it is not known beforehand.
type Notification struct {
	RowID     int64
	ID        string
	ContentID string
	Kind      int
	UID       string
	CreatedAt time.Time
}
