package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Bhardwaj-Devesh/project-enux/internal/search"
	"github.com/Bhardwaj-Devesh/project-enux/internal/store"
)

type refreshReader interface {
	GetPlaybook(ctx context.Context, playbookID string) (store.Playbook, error)
	GetVersion(ctx context.Context, versionID string) (store.PlaybookVersion, error)
}

// NewRefreshHandler re-reads the playbook and rebuilds its search record.
// The job carries the version it was enqueued for; if the playbook pointer
// has advanced past it a newer job owns the write-back, so this one skips
// instead of clobbering.
func NewRefreshHandler(db refreshReader, searcher *search.Service) Handler {
	return func(ctx context.Context, job Job) error {
		playbook, err := db.GetPlaybook(ctx, job.PlaybookID)
		if err != nil {
			return fmt.Errorf("load playbook %s: %w", job.PlaybookID, err)
		}
		if playbook.CurrentVersionID != job.VersionID {
			log.Printf("tasks: refresh %s skipped, playbook %s advanced past version %s", job.ID, job.PlaybookID, job.VersionID)
			return nil
		}
		current, err := db.GetVersion(ctx, playbook.CurrentVersionID)
		if err != nil {
			return fmt.Errorf("load version %s: %w", playbook.CurrentVersionID, err)
		}

		searcher.PlaybookChanged(search.PlaybookRecord{
			ID:            playbook.ID,
			OwnerID:       playbook.OwnerID,
			Title:         playbook.Title,
			Description:   playbook.Description,
			Content:       current.Content,
			VersionID:     current.ID,
			VersionNumber: current.VersionNumber,
			UpdatedAt:     time.Now().UTC().Format(time.RFC3339),
		})
		return nil
	}
}
