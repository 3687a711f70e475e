// Package version reads and appends immutable playbook snapshots. Version
// numbers are assigned in the persistence layer under a row lock so the
// per-playbook sequence stays gap-free.
package version

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/Bhardwaj-Devesh/project-enux/internal/store"
	"github.com/Bhardwaj-Devesh/project-enux/internal/util"
)

type persistence interface {
	GetVersion(ctx context.Context, versionID string) (store.PlaybookVersion, error)
	GetVersionByNumber(ctx context.Context, playbookID string, number int) (store.PlaybookVersion, error)
	GetCurrentVersion(ctx context.Context, playbookID string) (store.PlaybookVersion, error)
	ListVersions(ctx context.Context, playbookID string) ([]store.PlaybookVersion, error)
	AppendVersion(ctx context.Context, playbookID string, version store.PlaybookVersion) (store.PlaybookVersion, error)
}

type Store struct {
	db persistence
}

func New(db persistence) *Store {
	return &Store{db: db}
}

// Hash fingerprints version content for dedup and display. Never used for
// identity comparison in merge logic.
func Hash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// NewSnapshot builds an unsaved snapshot with its id and content hash set.
// The version number is assigned when the snapshot is persisted.
func NewSnapshot(playbookID, content, source, authorID string) store.PlaybookVersion {
	return store.PlaybookVersion{
		ID:          util.NewID("ver"),
		PlaybookID:  playbookID,
		Content:     content,
		ContentHash: Hash(content),
		Source:      source,
		CreatedBy:   authorID,
	}
}

// Create appends a direct snapshot with version number = previous + 1.
// Returns sql.ErrNoRows when the playbook is unknown.
func (s *Store) Create(ctx context.Context, playbookID, content, authorID string) (store.PlaybookVersion, error) {
	snapshot := NewSnapshot(playbookID, content, store.VersionSourceDirect, authorID)
	return s.db.AppendVersion(ctx, playbookID, snapshot)
}

func (s *Store) Get(ctx context.Context, versionID string) (store.PlaybookVersion, error) {
	return s.db.GetVersion(ctx, versionID)
}

func (s *Store) GetByNumber(ctx context.Context, playbookID string, number int) (store.PlaybookVersion, error) {
	return s.db.GetVersionByNumber(ctx, playbookID, number)
}

func (s *Store) Current(ctx context.Context, playbookID string) (store.PlaybookVersion, error) {
	return s.db.GetCurrentVersion(ctx, playbookID)
}

// List returns all snapshots ordered by version number ascending.
func (s *Store) List(ctx context.Context, playbookID string) ([]store.PlaybookVersion, error) {
	return s.db.ListVersions(ctx, playbookID)
}
