// Package trigger implements the visibility state machine: it classifies
// each content write delivered by the change feed and propagates the
// resulting effects to the search index, the reference tree, the
// notification store and follower feeds.
package trigger

import (
	"context"
	"fmt"
	"time"

	"caseboard/internal/content"
	"caseboard/internal/feed"
	"caseboard/internal/search"
	"caseboard/internal/textnorm"
)

// indexer is the slice of the search gateway the handlers use. All index
// calls run as best-effort tasks.
type indexer interface {
	CreatePost(doc search.PostDocument) error
	UpdatePost(partial search.PostUpdate) error
	DeletePost(id string) error
	CreateCase(doc search.CaseDocument) error
	DeleteCase(id string) error
}

type referenceStore interface {
	SetReference(ctx context.Context, userID string, kind content.Kind, contentID string, timestampSeconds int64) error
	RemoveReference(ctx context.Context, userID string, kind content.Kind, contentID string) error
	SetDraft(ctx context.Context, userID string, kind content.Kind, contentID string, timestampSeconds int64) error
	RemoveDraft(ctx context.Context, userID string, kind content.Kind, contentID string) error
}

type notifier interface {
	CreateApproval(ctx context.Context, contentID, ownerID string) error
	DeleteAllForContent(ctx context.Context, contentID, ownerID string) error
}

type followerFanout interface {
	FanOut(ctx context.Context, contentID, ownerID string, followerIDs []string, timestampSeconds int64) error
}

type primaryStore interface {
	FollowerIDs(ctx context.Context, ownerID string) ([]string, error)
	RewriteTimestamp(ctx context.Context, contentID string, t time.Time) error
}

// Handlers wires the state machine to its collaborators. Handlers holds no
// state of its own; every invocation works only on its event's data, so
// concurrent invocations for different documents need no coordination.
type Handlers struct {
	index  indexer
	refs   referenceStore
	notify notifier
	fanout followerFanout
	store  primaryStore
	now    func() time.Time
}

func New(index indexer, refs referenceStore, notify notifier, fanout followerFanout, store primaryStore) *Handlers {
	return &Handlers{
		index:  index,
		refs:   refs,
		notify: notify,
		fanout: fanout,
		store:  store,
		now:    time.Now,
	}
}

// Handle routes one change-feed event to the matching handler.
func (h *Handlers) Handle(ctx context.Context, ev feed.Event) error {
	switch {
	case ev.Kind == content.KindPost && ev.Op == feed.OpCreate:
		return h.PostCreated(ctx, ev.After)
	case ev.Kind == content.KindPost && ev.Op == feed.OpUpdate:
		if ev.Before == nil {
			return fmt.Errorf("post update %s without before snapshot", ev.ID)
		}
		return h.PostUpdated(ctx, *ev.Before, ev.After)
	case ev.Kind == content.KindCase && ev.Op == feed.OpCreate:
		return h.CaseCreated(ctx, ev.After)
	case ev.Kind == content.KindCase && ev.Op == feed.OpUpdate:
		if ev.Before == nil {
			return fmt.Errorf("case update %s without before snapshot", ev.ID)
		}
		return h.CaseUpdated(ctx, *ev.Before, ev.After)
	}
	return fmt.Errorf("unrecognized event %s/%s for %s", ev.Kind, ev.Op, ev.ID)
}

// PostCreated indexes the new post, records the owner's profile reference
// and fans the post out to follower feeds. Posts are born regular; there
// is no moderation gate.
func (h *Handlers) PostCreated(ctx context.Context, post content.Snapshot) error {
	doc := search.PostDocument{
		ID:          post.ID,
		Text:        textnorm.Normalize(post.Body),
		Disciplines: post.Disciplines,
		Timestamp:   post.TimestampSeconds(),
	}
	return runAll(ctx, []task{
		{name: "index post " + post.ID, bestEffort: true, run: func(context.Context) error {
			return h.index.CreatePost(doc)
		}},
		{name: "profile reference " + post.ID, run: func(ctx context.Context) error {
			return h.refs.SetReference(ctx, post.OwnerID, content.KindPost, post.ID, post.TimestampSeconds())
		}},
		{name: "follower fan-out " + post.ID, run: func(ctx context.Context) error {
			followers, err := h.store.FollowerIDs(ctx, post.OwnerID)
			if err != nil {
				return err
			}
			return h.fanout.FanOut(ctx, post.ID, post.OwnerID, followers, post.TimestampSeconds())
		}},
	})
}

// PostUpdated classifies the visibility transition and runs its effects.
func (h *Handlers) PostUpdated(ctx context.Context, previous, next content.Snapshot) error {
	effects := content.PostTransition(
		content.PostVisibility(previous.Visibility),
		content.PostVisibility(next.Visibility),
	)

	var tasks []task
	for _, effect := range effects {
		switch effect {
		case content.EffectIndexCreate:
			doc := search.PostDocument{
				ID:          next.ID,
				Text:        textnorm.Normalize(next.Body),
				Disciplines: next.Disciplines,
				Timestamp:   next.TimestampSeconds(),
			}
			tasks = append(tasks, task{name: "index post " + next.ID, bestEffort: true, run: func(context.Context) error {
				return h.index.CreatePost(doc)
			}})
		case content.EffectIndexUpdate:
			partial := search.PostUpdate{ID: next.ID, Text: textnorm.Normalize(next.Body)}
			tasks = append(tasks, task{name: "reindex post " + next.ID, bestEffort: true, run: func(context.Context) error {
				return h.index.UpdatePost(partial)
			}})
		case content.EffectIndexDelete:
			tasks = append(tasks, task{name: "unindex post " + next.ID, bestEffort: true, run: func(context.Context) error {
				return h.index.DeletePost(next.ID)
			}})
		case content.EffectSetProfileRef:
			tasks = append(tasks, task{name: "profile reference " + next.ID, run: func(ctx context.Context) error {
				return h.refs.SetReference(ctx, next.OwnerID, content.KindPost, next.ID, next.TimestampSeconds())
			}})
		case content.EffectRemoveProfileRef:
			tasks = append(tasks, task{name: "remove profile reference " + next.ID, run: func(ctx context.Context) error {
				return h.refs.RemoveReference(ctx, next.OwnerID, content.KindPost, next.ID)
			}})
		case content.EffectDeleteNotifications:
			tasks = append(tasks, task{name: "delete notifications " + next.ID, run: func(ctx context.Context) error {
				return h.notify.DeleteAllForContent(ctx, next.ID, next.OwnerID)
			}})
		}
	}
	return runAll(ctx, tasks)
}

// CaseCreated only records the owner's draft reference: a case enters the
// model awaiting approval and stays invisible until a moderator moves it
// to regular.
func (h *Handlers) CaseCreated(ctx context.Context, c content.Snapshot) error {
	if err := h.refs.SetDraft(ctx, c.OwnerID, content.KindCase, c.ID, c.TimestampSeconds()); err != nil {
		return fmt.Errorf("draft reference %s: %w", c.ID, err)
	}
	return nil
}

// CaseUpdated classifies the visibility transition and runs its effects.
// Approval rewrites the record's timestamp; every effect of that branch
// keys off the fresh approval time so the reference tree and the index
// agree with the rewritten record.
func (h *Handlers) CaseUpdated(ctx context.Context, previous, next content.Snapshot) error {
	effects := content.CaseTransition(
		content.CaseVisibility(previous.Visibility),
		content.CaseVisibility(next.Visibility),
		next.Anonymous(),
	)

	timestamp := next.TimestampSeconds()
	approvedAt := h.now()
	if hasEffect(effects, content.EffectRewriteTimestamp) {
		timestamp = approvedAt.Unix()
	}

	var tasks []task
	for _, effect := range effects {
		switch effect {
		case content.EffectRewriteTimestamp:
			tasks = append(tasks, task{name: "rewrite timestamp " + next.ID, run: func(ctx context.Context) error {
				return h.store.RewriteTimestamp(ctx, next.ID, approvedAt)
			}})
		case content.EffectIndexCreate:
			doc := search.CaseDocument{
				ID:          next.ID,
				Title:       textnorm.Normalize(next.Title),
				Content:     textnorm.Normalize(next.Body),
				Disciplines: next.Disciplines,
				Timestamp:   timestamp,
			}
			tasks = append(tasks, task{name: "index case " + next.ID, bestEffort: true, run: func(context.Context) error {
				return h.index.CreateCase(doc)
			}})
		case content.EffectIndexDelete:
			tasks = append(tasks, task{name: "unindex case " + next.ID, bestEffort: true, run: func(context.Context) error {
				return h.index.DeleteCase(next.ID)
			}})
		case content.EffectSetProfileRef:
			tasks = append(tasks, task{name: "profile reference " + next.ID, run: func(ctx context.Context) error {
				return h.refs.SetReference(ctx, next.OwnerID, content.KindCase, next.ID, timestamp)
			}})
		case content.EffectRemoveProfileRef:
			tasks = append(tasks, task{name: "remove profile reference " + next.ID, run: func(ctx context.Context) error {
				return h.refs.RemoveReference(ctx, next.OwnerID, content.KindCase, next.ID)
			}})
		case content.EffectRemoveDraftRef:
			tasks = append(tasks, task{name: "remove draft reference " + next.ID, run: func(ctx context.Context) error {
				return h.refs.RemoveDraft(ctx, next.OwnerID, content.KindCase, next.ID)
			}})
		case content.EffectDeleteNotifications:
			tasks = append(tasks, task{name: "delete notifications " + next.ID, run: func(ctx context.Context) error {
				return h.notify.DeleteAllForContent(ctx, next.ID, next.OwnerID)
			}})
		case content.EffectCreateApprovalNotification:
			tasks = append(tasks, task{name: "approval notification " + next.ID, run: func(ctx context.Context) error {
				return h.notify.CreateApproval(ctx, next.ID, next.OwnerID)
			}})
		}
	}
	return runAll(ctx, tasks)
}

func hasEffect(effects []content.Effect, effect content.Effect) bool {
	for _, e := range effects {
		if e == effect {
			return true
		}
	}
	return false
}
