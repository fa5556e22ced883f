// Package fanout copies lightweight post references into follower feeds at
// post creation time.
package fanout

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// defaultBatchLimit matches the write-count ceiling of a single commit
// against the backing store.
const defaultBatchLimit = 500

// Shard is the record written into each follower's feed, keyed by the
// content id under users/{followerId}/feed.
type Shard struct {
	Timestamp int64  `json:"timestamp"`
	OwnerID   string `json:"ownerId"`
}

// Writer fans a post out to follower feeds in bounded batches.
type Writer struct {
	client     *redis.Client
	batchLimit int
}

func NewWriter(client *redis.Client, batchLimit int) *Writer {
	if batchLimit <= 0 {
		batchLimit = defaultBatchLimit
	}
	return &Writer{client: client, batchLimit: batchLimit}
}

func feedKey(userID string) string {
	return fmt.Sprintf("users/%s/feed", userID)
}

// FanOut writes one shard per follower, with the owner appended so authors
// see their own posts. Batches are committed sequentially to bound the
// number of outstanding writes; a failed batch aborts the remainder and
// already-committed batches stay in place.
func (w *Writer) FanOut(ctx context.Context, contentID, ownerID string, followerIDs []string, timestampSeconds int64) error {
	shard, err := json.Marshal(Shard{Timestamp: timestampSeconds, OwnerID: ownerID})
	if err != nil {
		return fmt.Errorf("marshal feed shard: %w", err)
	}

	targets := make([]string, 0, len(followerIDs)+1)
	targets = append(targets, followerIDs...)
	targets = append(targets, ownerID)

	for _, batch := range batches(targets, w.batchLimit) {
		pipe := w.client.TxPipeline()
		for _, userID := range batch {
			pipe.HSet(ctx, feedKey(userID), contentID, shard)
		}
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("feed fan-out batch of %d: %w", len(batch), err)
		}
	}
	return nil
}

// batches splits targets into consecutive chunks of at most limit entries.
func batches(targets []string, limit int) [][]string {
	var out [][]string
	for start := 0; start < len(targets); start += limit {
		end := min(start+limit, len(targets))
		out = append(out, targets[start:end])
	}
	return out
}
