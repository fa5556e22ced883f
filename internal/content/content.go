// Package content defines the content records the trigger core reacts to
// and the visibility transition tables that drive it.
package content

// Kind distinguishes the two content collections.
type Kind string

const (
	KindPost Kind = "post"
	KindCase Kind = "case"
)

// Privacy controls whether a case is attributable to its owner.
type Privacy int

const (
	PrivacyRegular   Privacy = 0
	PrivacyAnonymous Privacy = 1
)

// Snapshot is the state of a content record as delivered by the change
// feed. Updates carry a before and an after snapshot; creates carry only
// the after.
type Snapshot struct {
	ID          string  `json:"id"`
	Kind        Kind    `json:"kind"`
	OwnerID     string  `json:"ownerId"`
	Visibility  int     `json:"visibility"`
	Privacy     Privacy `json:"privacy"`
	Title       string  `json:"title"`
	Body        string  `json:"body"`
	Disciplines []int   `json:"disciplines"`
	// TimestampMs is milliseconds since epoch; the search index and the
	// reference tree store floor-divided seconds.
	TimestampMs int64 `json:"timestamp"`
}

func (s Snapshot) TimestampSeconds() int64 {
	return s.TimestampMs / 1000
}

// Anonymous reports whether the record must never be attributed to its
// owner. Posts have no anonymous mode.
func (s Snapshot) Anonymous() bool {
	return s.Kind == KindCase && s.Privacy == PrivacyAnonymous
}
