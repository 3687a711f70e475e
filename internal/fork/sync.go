// Package fork tracks a fork's position relative to its origin playbook and
// moves it forward. The origin's versioned content maps to the fork file at
// ContentPath; any other fork files are fork-local and never synced.
package fork

import (
	"context"
	"fmt"

	"github.com/Bhardwaj-Devesh/project-enux/internal/blob"
	"github.com/Bhardwaj-Devesh/project-enux/internal/diff"
	"github.com/Bhardwaj-Devesh/project-enux/internal/store"
	"github.com/Bhardwaj-Devesh/project-enux/internal/util"
	"github.com/Bhardwaj-Devesh/project-enux/internal/version"
)

// ContentPath is the fork file holding the fork's copy of the origin
// playbook content.
const ContentPath = "playbook.md"

type persistence interface {
	GetFork(ctx context.Context, forkID string) (store.Fork, error)
	GetPlaybook(ctx context.Context, playbookID string) (store.Playbook, error)
	GetVersionByNumber(ctx context.Context, playbookID string, number int) (store.PlaybookVersion, error)
	ListVersionsBetween(ctx context.Context, playbookID string, after, through int) ([]store.PlaybookVersion, error)
	GetForkFileByPath(ctx context.Context, forkID, filePath string) (*store.ForkFile, error)
	UpsertForkFile(ctx context.Context, file store.ForkFile) error
	UpdateForkSyncVersion(ctx context.Context, forkID string, lastSyncVersion int) error
}

type Coordinator struct {
	db    persistence
	blobs blob.Store
}

func NewCoordinator(db persistence, blobs blob.Store) *Coordinator {
	return &Coordinator{db: db, blobs: blobs}
}

// FileToSync describes a file the origin changed since the fork last synced.
type FileToSync struct {
	FilePath          string `json:"filePath"`
	ChangedInVersions []int  `json:"changedInVersions"`
}

type SyncStatus struct {
	ForkID              string       `json:"forkId"`
	IsBehind            bool         `json:"isBehind"`
	BaseVersion         int          `json:"baseVersion"`
	OriginLatestVersion int          `json:"originLatestVersion"`
	LastSyncVersion     int          `json:"lastSyncVersion"`
	FilesToSync         []FileToSync `json:"filesToSync"`
}

type SyncResult struct {
	Success            bool     `json:"success"`
	SyncedFiles        []string `json:"syncedFiles"`
	ConflictsResolved  []string `json:"conflictsResolved"`
	RemainingConflicts []string `json:"remainingConflicts"`
	NewSyncVersion     int      `json:"newSyncVersion"`
}

// CheckSyncStatus compares the fork's last synced version against the
// origin's latest and enumerates the changes in between.
func (c *Coordinator) CheckSyncStatus(ctx context.Context, forkID string) (SyncStatus, error) {
	fork, err := c.db.GetFork(ctx, forkID)
	if err != nil {
		return SyncStatus{}, err
	}
	origin, err := c.db.GetPlaybook(ctx, fork.OriginPlaybookID)
	if err != nil {
		return SyncStatus{}, err
	}

	status := SyncStatus{
		ForkID:              fork.ID,
		BaseVersion:         fork.BaseVersion,
		OriginLatestVersion: origin.LatestVersion,
		LastSyncVersion:     fork.LastSyncVersion,
		FilesToSync:         []FileToSync{},
	}
	if fork.LastSyncVersion >= origin.LatestVersion {
		return status, nil
	}
	status.IsBehind = true

	changed, err := c.changedVersions(ctx, origin.ID, fork.LastSyncVersion, origin.LatestVersion)
	if err != nil {
		return SyncStatus{}, err
	}
	if len(changed) > 0 {
		status.FilesToSync = append(status.FilesToSync, FileToSync{
			FilePath:          ContentPath,
			ChangedInVersions: changed,
		})
	}
	return status, nil
}

// Sync brings the fork's copy forward to the origin's latest version. Each
// file gets its own outcome: fast-forwarded when the fork never touched it,
// merged line-wise when local and origin edits do not overlap, and left
// untouched when they do. last_sync_version advances to the origin's latest
// once every file is accounted for.
func (c *Coordinator) Sync(ctx context.Context, forkID string) (SyncResult, error) {
	fork, err := c.db.GetFork(ctx, forkID)
	if err != nil {
		return SyncResult{}, err
	}
	origin, err := c.db.GetPlaybook(ctx, fork.OriginPlaybookID)
	if err != nil {
		return SyncResult{}, err
	}

	result := SyncResult{
		Success:            true,
		SyncedFiles:        []string{},
		ConflictsResolved:  []string{},
		RemainingConflicts: []string{},
		NewSyncVersion:     fork.LastSyncVersion,
	}
	if fork.LastSyncVersion >= origin.LatestVersion {
		return result, nil
	}

	baseVer, err := c.db.GetVersionByNumber(ctx, origin.ID, fork.LastSyncVersion)
	if err != nil {
		return SyncResult{}, fmt.Errorf("load sync base version %d: %w", fork.LastSyncVersion, err)
	}
	latestVer, err := c.db.GetVersionByNumber(ctx, origin.ID, origin.LatestVersion)
	if err != nil {
		return SyncResult{}, fmt.Errorf("load origin version %d: %w", origin.LatestVersion, err)
	}

	if latestVer.ContentHash != baseVer.ContentHash {
		outcome, err := c.syncContentFile(ctx, fork, baseVer.Content, latestVer.Content, origin.LatestVersion)
		if err != nil {
			return SyncResult{}, err
		}
		switch outcome {
		case outcomeSynced:
			result.SyncedFiles = append(result.SyncedFiles, ContentPath)
		case outcomeResolved:
			result.ConflictsResolved = append(result.ConflictsResolved, ContentPath)
		case outcomeConflict:
			result.RemainingConflicts = append(result.RemainingConflicts, ContentPath)
			result.Success = false
		}
	}

	if err := c.db.UpdateForkSyncVersion(ctx, fork.ID, origin.LatestVersion); err != nil {
		return SyncResult{}, err
	}
	result.NewSyncVersion = origin.LatestVersion
	return result, nil
}

type syncOutcome int

const (
	outcomeSynced syncOutcome = iota
	outcomeResolved
	outcomeConflict
)

func (c *Coordinator) syncContentFile(ctx context.Context, fork store.Fork, baseText, originText string, originVersion int) (syncOutcome, error) {
	file, err := c.db.GetForkFileByPath(ctx, fork.ID, ContentPath)
	if err != nil {
		return outcomeConflict, err
	}
	if file == nil {
		// The fork has no copy yet; adopt the origin's.
		if _, err := c.WriteFile(ctx, fork.ID, ContentPath, originText, originVersion); err != nil {
			return outcomeConflict, err
		}
		return outcomeSynced, nil
	}

	data, err := c.blobs.Get(ctx, file.BlobRef)
	if err != nil {
		return outcomeConflict, fmt.Errorf("read fork file %s: %w", ContentPath, err)
	}
	ours := string(data)

	switch {
	case ours == originText:
		// Already identical; only the origin_version marker moves.
		file.OriginVersion = originVersion
		if err := c.db.UpsertForkFile(ctx, *file); err != nil {
			return outcomeConflict, err
		}
		return outcomeSynced, nil
	case ours == baseText:
		// Untouched locally; fast-forward to the origin's content.
		if _, err := c.WriteFile(ctx, fork.ID, ContentPath, originText, originVersion); err != nil {
			return outcomeConflict, err
		}
		return outcomeSynced, nil
	}

	merged, ok := diff.Merge(baseText, ours, originText)
	if !ok {
		return outcomeConflict, nil
	}
	if _, err := c.WriteFile(ctx, fork.ID, ContentPath, merged, originVersion); err != nil {
		return outcomeConflict, err
	}
	return outcomeResolved, nil
}

// WriteFile stores content in the blob store and upserts the fork file
// record pointing at it.
func (c *Coordinator) WriteFile(ctx context.Context, forkID, filePath, content string, originVersion int) (store.ForkFile, error) {
	ref, err := c.blobs.Put(ctx, fmt.Sprintf("forks/%s/%s", forkID, filePath), []byte(content))
	if err != nil {
		return store.ForkFile{}, fmt.Errorf("store fork file %s: %w", filePath, err)
	}
	file := store.ForkFile{
		ID:            util.NewID("ff"),
		ForkID:        forkID,
		FilePath:      filePath,
		BlobRef:       ref,
		Checksum:      version.Hash(content),
		OriginVersion: originVersion,
	}
	if err := c.db.UpsertForkFile(ctx, file); err != nil {
		return store.ForkFile{}, err
	}
	return file, nil
}

func (c *Coordinator) changedVersions(ctx context.Context, playbookID string, after, through int) ([]int, error) {
	prevHash := ""
	if after > 0 {
		prev, err := c.db.GetVersionByNumber(ctx, playbookID, after)
		if err != nil {
			return nil, fmt.Errorf("load version %d: %w", after, err)
		}
		prevHash = prev.ContentHash
	}

	versions, err := c.db.ListVersionsBetween(ctx, playbookID, after, through)
	if err != nil {
		return nil, err
	}
	changed := make([]int, 0, len(versions))
	for _, v := range versions {
		if v.ContentHash != prevHash {
			changed = append(changed, v.VersionNumber)
		}
		prevHash = v.ContentHash
	}
	return changed, nil
}
