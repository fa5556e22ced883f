package search

import (
	"encoding/json"
	"log"
	"time"

	meili "github.com/meilisearch/meilisearch-go"
)

const (
	idxPosts = "caseboard_posts"
	idxCases = "caseboard_cases"
)

// Meili implements the index gateway via Meilisearch, one index per
// content kind with the content id as primary key.
type Meili struct {
	client meili.ServiceManager
}

// NewMeili creates a Meilisearch client and configures both indexes. An
// unreachable Meilisearch is logged, not fatal: the service runs with
// degraded search rather than refusing to start.
func NewMeili(url, apiKey string) *Meili {
	client := meili.New(url, meili.WithAPIKey(apiKey))
	m := &Meili{client: client}

	if _, err := client.Health(); err != nil {
		log.Printf("search: meilisearch unavailable at %s: %v", url, err)
		return m
	}
	m.configureIndexes()
	return m
}

// NewMeiliWithClient wraps an existing client, for tests.
func NewMeiliWithClient(client meili.ServiceManager) *Meili {
	return &Meili{client: client}
}

func (m *Meili) configureIndexes() {
	indexes := []struct {
		uid        string
		filterable []string
		searchable []string
	}{
		{
			uid:        idxPosts,
			filterable: []string{"disciplines"},
			searchable: []string{"text"},
		},
		{
			uid:        idxCases,
			filterable: []string{"disciplines"},
			searchable: []string{"title", "content"},
		},
	}

	for _, idx := range indexes {
		if _, err := m.client.CreateIndex(&meili.IndexConfig{
			Uid:        idx.uid,
			PrimaryKey: "id",
		}); err != nil {
			log.Printf("search: create index %s (may already exist): %v", idx.uid, err)
		}

		index := m.client.Index(idx.uid)
		filterable := make([]interface{}, len(idx.filterable))
		for i, v := range idx.filterable {
			filterable[i] = v
		}
		if _, err := index.UpdateFilterableAttributes(&filterable); err != nil {
			log.Printf("search: update filterable attrs for %s: %v", idx.uid, err)
		}
		if _, err := index.UpdateSearchableAttributes(&idx.searchable); err != nil {
			log.Printf("search: update searchable attrs for %s: %v", idx.uid, err)
		}
	}
}

// CreatePost adds or recreates a post document in the index.
func (m *Meili) CreatePost(doc PostDocument) error {
	if _, err := m.client.Index(idxPosts).AddDocuments([]PostDocument{doc}, nil); err != nil {
		logFailure("create post", doc.ID, doc, err)
		return err
	}
	return nil
}

// UpdatePost submits a partial document for an edited post.
func (m *Meili) UpdatePost(partial PostUpdate) error {
	if _, err := m.client.Index(idxPosts).UpdateDocuments([]PostUpdate{partial}, nil); err != nil {
		logFailure("update post", partial.ID, partial, err)
		return err
	}
	return nil
}

// DeletePost removes a post from the index. Deleting an id that was never
// indexed enqueues a no-op task, so the call is idempotent.
func (m *Meili) DeletePost(id string) error {
	if _, err := m.client.Index(idxPosts).DeleteDocument(id, nil); err != nil {
		logFailure("delete post", id, nil, err)
		return err
	}
	return nil
}

// CreateCase adds or recreates a case document in the index.
func (m *Meili) CreateCase(doc CaseDocument) error {
	if _, err := m.client.Index(idxCases).AddDocuments([]CaseDocument{doc}, nil); err != nil {
		logFailure("create case", doc.ID, doc, err)
		return err
	}
	return nil
}

// DeleteCase removes a case from the index; idempotent like DeletePost.
func (m *Meili) DeleteCase(id string) error {
	if _, err := m.client.Index(idxCases).DeleteDocument(id, nil); err != nil {
		logFailure("delete case", id, nil, err)
		return err
	}
	return nil
}

// logFailure records a failed index write with the full payload and a
// wall-clock timestamp, enough context to replay the write by hand.
func logFailure(op, id string, doc any, err error) {
	payload, _ := json.Marshal(doc)
	log.Printf("search: %s %s failed at %s: %v payload=%s",
		op, id, time.Now().UTC().Format(time.RFC3339), err, payload)
}
