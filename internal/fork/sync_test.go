package fork

import (
	"context"
	"database/sql"
	"sort"
	"testing"

	"github.com/Bhardwaj-Devesh/project-enux/internal/blob"
	"github.com/Bhardwaj-Devesh/project-enux/internal/store"
	"github.com/Bhardwaj-Devesh/project-enux/internal/version"
)

type fakeDB struct {
	fork     store.Fork
	playbook store.Playbook
	versions map[int]store.PlaybookVersion
	files    map[string]store.ForkFile
}

func (f *fakeDB) GetFork(_ context.Context, forkID string) (store.Fork, error) {
	if forkID != f.fork.ID {
		return store.Fork{}, sql.ErrNoRows
	}
	return f.fork, nil
}

func (f *fakeDB) GetPlaybook(_ context.Context, playbookID string) (store.Playbook, error) {
	if playbookID != f.playbook.ID {
		return store.Playbook{}, sql.ErrNoRows
	}
	return f.playbook, nil
}

func (f *fakeDB) GetVersionByNumber(_ context.Context, _ string, number int) (store.PlaybookVersion, error) {
	v, ok := f.versions[number]
	if !ok {
		return store.PlaybookVersion{}, sql.ErrNoRows
	}
	return v, nil
}

func (f *fakeDB) ListVersionsBetween(_ context.Context, _ string, after, through int) ([]store.PlaybookVersion, error) {
	items := make([]store.PlaybookVersion, 0)
	for n, v := range f.versions {
		if n > after && n <= through {
			items = append(items, v)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].VersionNumber < items[j].VersionNumber })
	return items, nil
}

func (f *fakeDB) GetForkFileByPath(_ context.Context, _, filePath string) (*store.ForkFile, error) {
	file, ok := f.files[filePath]
	if !ok {
		return nil, nil
	}
	return &file, nil
}

func (f *fakeDB) UpsertForkFile(_ context.Context, file store.ForkFile) error {
	f.files[file.FilePath] = file
	return nil
}

func (f *fakeDB) UpdateForkSyncVersion(_ context.Context, _ string, lastSyncVersion int) error {
	f.fork.LastSyncVersion = lastSyncVersion
	return nil
}

func snapshot(number int, content string) store.PlaybookVersion {
	return store.PlaybookVersion{
		ID:            "ver_" + string(rune('0'+number)),
		PlaybookID:    "pb_origin",
		VersionNumber: number,
		Content:       content,
		ContentHash:   version.Hash(content),
	}
}

func newFixture(lastSync int) (*fakeDB, *blob.MemoryStore, *Coordinator) {
	db := &fakeDB{
		fork: store.Fork{
			ID:               "fork_1",
			UserID:           "u_forker",
			OriginPlaybookID: "pb_origin",
			BaseVersion:      3,
			LastSyncVersion:  lastSync,
			Status:           store.ForkStatusActive,
		},
		playbook: store.Playbook{ID: "pb_origin", OwnerID: "u_owner", LatestVersion: 5},
		versions: map[int]store.PlaybookVersion{
			3: snapshot(3, "alpha\nbeta\ngamma\ndelta\n"),
			4: snapshot(4, "alpha\nbeta2\ngamma\ndelta\n"),
			5: snapshot(5, "alpha\nbeta2\ngamma\ndelta\nepsilon\n"),
		},
		files: make(map[string]store.ForkFile),
	}
	blobs := blob.NewMemoryStore()
	return db, blobs, NewCoordinator(db, blobs)
}

func seedForkFile(t *testing.T, coord *Coordinator, content string) {
	t.Helper()
	if _, err := coord.WriteFile(context.Background(), "fork_1", ContentPath, content, 3); err != nil {
		t.Fatalf("seed fork file: %v", err)
	}
}

func forkFileContent(t *testing.T, db *fakeDB, blobs *blob.MemoryStore) string {
	t.Helper()
	file, ok := db.files[ContentPath]
	if !ok {
		t.Fatalf("fork file %s missing", ContentPath)
	}
	data, err := blobs.Get(context.Background(), file.BlobRef)
	if err != nil {
		t.Fatalf("read blob %s: %v", file.BlobRef, err)
	}
	return string(data)
}

func TestCheckSyncStatusBehind(t *testing.T) {
	_, _, coord := newFixture(3)

	status, err := coord.CheckSyncStatus(context.Background(), "fork_1")
	if err != nil {
		t.Fatalf("check sync status: %v", err)
	}
	if !status.IsBehind {
		t.Fatal("expected fork to be behind")
	}
	if status.LastSyncVersion != 3 || status.OriginLatestVersion != 5 {
		t.Fatalf("unexpected versions: last sync %d, origin latest %d", status.LastSyncVersion, status.OriginLatestVersion)
	}
	if len(status.FilesToSync) != 1 || status.FilesToSync[0].FilePath != ContentPath {
		t.Fatalf("unexpected files to sync: %+v", status.FilesToSync)
	}
	got := status.FilesToSync[0].ChangedInVersions
	if len(got) != 2 || got[0] != 4 || got[1] != 5 {
		t.Fatalf("expected changes in versions 4 and 5, got %v", got)
	}
}

func TestCheckSyncStatusUpToDate(t *testing.T) {
	db, _, coord := newFixture(5)
	db.fork.BaseVersion = 5

	status, err := coord.CheckSyncStatus(context.Background(), "fork_1")
	if err != nil {
		t.Fatalf("check sync status: %v", err)
	}
	if status.IsBehind {
		t.Fatal("expected fork to be up to date")
	}
	if len(status.FilesToSync) != 0 {
		t.Fatalf("expected no files to sync, got %+v", status.FilesToSync)
	}
}

func TestCheckSyncStatusUnknownFork(t *testing.T) {
	_, _, coord := newFixture(3)

	if _, err := coord.CheckSyncStatus(context.Background(), "fork_missing"); err != sql.ErrNoRows {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestSyncFastForwardsUnmodifiedFile(t *testing.T) {
	db, blobs, coord := newFixture(3)
	seedForkFile(t, coord, db.versions[3].Content)

	result, err := coord.Sync(context.Background(), "fork_1")
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if !result.Success {
		t.Fatal("expected sync to succeed")
	}
	if len(result.SyncedFiles) != 1 || result.SyncedFiles[0] != ContentPath {
		t.Fatalf("unexpected synced files: %v", result.SyncedFiles)
	}
	if result.NewSyncVersion != 5 || db.fork.LastSyncVersion != 5 {
		t.Fatalf("expected last sync version 5, got result %d store %d", result.NewSyncVersion, db.fork.LastSyncVersion)
	}
	if got := forkFileContent(t, db, blobs); got != db.versions[5].Content {
		t.Fatalf("fork content not fast-forwarded: %q", got)
	}
}

func TestSyncMergesDisjointLocalEdit(t *testing.T) {
	db, blobs, coord := newFixture(3)
	seedForkFile(t, coord, "alpha\nbeta\ngamma!\ndelta\n")

	result, err := coord.Sync(context.Background(), "fork_1")
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if !result.Success {
		t.Fatal("expected sync to succeed")
	}
	if len(result.ConflictsResolved) != 1 || result.ConflictsResolved[0] != ContentPath {
		t.Fatalf("unexpected resolved files: %v", result.ConflictsResolved)
	}
	want := "alpha\nbeta2\ngamma!\ndelta\nepsilon\n"
	if got := forkFileContent(t, db, blobs); got != want {
		t.Fatalf("merged content mismatch:\ngot  %q\nwant %q", got, want)
	}
}

func TestSyncReportsOverlappingEditAsConflict(t *testing.T) {
	db, blobs, coord := newFixture(3)
	local := "alpha\nbeta-local\ngamma\ndelta\n"
	seedForkFile(t, coord, local)

	result, err := coord.Sync(context.Background(), "fork_1")
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if result.Success {
		t.Fatal("expected sync to report failure")
	}
	if len(result.RemainingConflicts) != 1 || result.RemainingConflicts[0] != ContentPath {
		t.Fatalf("unexpected remaining conflicts: %v", result.RemainingConflicts)
	}
	if got := forkFileContent(t, db, blobs); got != local {
		t.Fatalf("conflicted file must stay untouched, got %q", got)
	}
	if result.NewSyncVersion != 5 || db.fork.LastSyncVersion != 5 {
		t.Fatalf("sync version must still advance, got %d", db.fork.LastSyncVersion)
	}
}

func TestSyncCreatesMissingFile(t *testing.T) {
	db, blobs, coord := newFixture(3)

	result, err := coord.Sync(context.Background(), "fork_1")
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if len(result.SyncedFiles) != 1 {
		t.Fatalf("unexpected synced files: %v", result.SyncedFiles)
	}
	if got := forkFileContent(t, db, blobs); got != db.versions[5].Content {
		t.Fatalf("expected origin content adopted, got %q", got)
	}
}

func TestSyncNoopWhenUpToDate(t *testing.T) {
	db, _, coord := newFixture(5)

	result, err := coord.Sync(context.Background(), "fork_1")
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if !result.Success || len(result.SyncedFiles) != 0 {
		t.Fatalf("expected clean no-op, got %+v", result)
	}
	if result.NewSyncVersion != 5 || db.fork.LastSyncVersion != 5 {
		t.Fatalf("sync version must not move, got %d", db.fork.LastSyncVersion)
	}
}
