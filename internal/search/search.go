// Package search wraps the external full-text index. Index writes are
// best-effort: a missing index entry degrades search until the next edit,
// it is not a consistency violation, so callers log failures and move on.
package search

// PostDocument is the denormalized record kept in the posts index.
type PostDocument struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	Disciplines []int  `json:"disciplines"`
	// Timestamp is seconds since epoch, floor-divided from the record's
	// millisecond timestamp.
	Timestamp int64 `json:"timestamp"`
}

// PostUpdate is the partial document submitted when a regular post is
// edited in place.
type PostUpdate struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// CaseDocument is the denormalized record kept in the cases index. It
// deliberately carries no owner field so anonymous cases stay anonymous in
// search results.
type CaseDocument struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	Disciplines []int  `json:"disciplines"`
	Timestamp   int64  `json:"timestamp"`
}
