// Package search maintains the playbook index in Meilisearch. Indexing is
// fire-and-forget; the service is fully optional and the API works without
// it.
package search

import (
	"fmt"
	"log"
	"sync/atomic"
	"time"

	meili "github.com/meilisearch/meilisearch-go"
)

const idxPlaybooks = "enux_playbooks"

// PlaybookRecord is the indexed shape of a playbook at its current version.
type PlaybookRecord struct {
	ID            string `json:"id"`
	OwnerID       string `json:"ownerId"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Content       string `json:"content"`
	VersionID     string `json:"versionId"`
	VersionNumber int    `json:"versionNumber"`
	UpdatedAt     string `json:"updatedAt"`
}

// Meili wraps the Meilisearch client with a background health check so a
// flapping search backend never affects request handling.
type Meili struct {
	client  meili.ServiceManager
	healthy atomic.Bool
	done    chan struct{}
}

// NewMeili creates the client and configures the playbook index. The caller
// proceeds without search if the initial connection fails; the health loop
// reconfigures when Meilisearch comes back.
func NewMeili(url, apiKey string) *Meili {
	client := meili.New(url, meili.WithAPIKey(apiKey))

	m := &Meili{
		client: client,
		done:   make(chan struct{}),
	}

	if _, err := client.Health(); err != nil {
		log.Printf("search: meilisearch unavailable at %s: %v", url, err)
		m.healthy.Store(false)
	} else {
		m.healthy.Store(true)
		m.configureIndex()
	}

	go m.healthLoop()
	return m
}

func (m *Meili) configureIndex() {
	if _, err := m.client.CreateIndex(&meili.IndexConfig{
		Uid:        idxPlaybooks,
		PrimaryKey: "id",
	}); err != nil {
		log.Printf("search: create index %s (may already exist): %v", idxPlaybooks, err)
	}

	index := m.client.Index(idxPlaybooks)
	filterable := []interface{}{"ownerId"}
	if _, err := index.UpdateFilterableAttributes(&filterable); err != nil {
		log.Printf("search: update filterable attrs: %v", err)
	}
	searchable := []string{"title", "description", "content"}
	if _, err := index.UpdateSearchableAttributes(&searchable); err != nil {
		log.Printf("search: update searchable attrs: %v", err)
	}
}

func (m *Meili) healthLoop() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			_, err := m.client.Health()
			wasHealthy := m.healthy.Load()
			m.healthy.Store(err == nil)
			if err == nil && !wasHealthy {
				log.Println("search: meilisearch recovered, reconfiguring index")
				m.configureIndex()
			}
		}
	}
}

// Close stops the background health monitor.
func (m *Meili) Close() {
	close(m.done)
}

// Healthy reports whether Meilisearch is reachable.
func (m *Meili) Healthy() bool {
	return m.healthy.Load()
}

func (m *Meili) IndexPlaybook(record PlaybookRecord) error {
	if !m.healthy.Load() {
		return fmt.Errorf("meilisearch unhealthy")
	}
	_, err := m.client.Index(idxPlaybooks).AddDocuments([]PlaybookRecord{record}, nil)
	if err != nil {
		m.healthy.Store(false)
		return fmt.Errorf("index playbook %s: %w", record.ID, err)
	}
	return nil
}
