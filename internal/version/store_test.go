package version

import (
	"context"
	"database/sql"
	"testing"

	"github.com/Bhardwaj-Devesh/project-enux/internal/store"
)

type fakePersistence struct {
	versions map[string]store.PlaybookVersion
	latest   map[string]int
	appended []store.PlaybookVersion
}

func newFakePersistence() *fakePersistence {
	return &fakePersistence{
		versions: make(map[string]store.PlaybookVersion),
		latest:   make(map[string]int),
	}
}

func (f *fakePersistence) GetVersion(_ context.Context, versionID string) (store.PlaybookVersion, error) {
	v, ok := f.versions[versionID]
	if !ok {
		return store.PlaybookVersion{}, sql.ErrNoRows
	}
	return v, nil
}

func (f *fakePersistence) GetVersionByNumber(_ context.Context, playbookID string, number int) (store.PlaybookVersion, error) {
	for _, v := range f.versions {
		if v.PlaybookID == playbookID && v.VersionNumber == number {
			return v, nil
		}
	}
	return store.PlaybookVersion{}, sql.ErrNoRows
}

func (f *fakePersistence) GetCurrentVersion(_ context.Context, playbookID string) (store.PlaybookVersion, error) {
	return f.GetVersionByNumber(context.Background(), playbookID, f.latest[playbookID])
}

func (f *fakePersistence) ListVersions(_ context.Context, playbookID string) ([]store.PlaybookVersion, error) {
	items := make([]store.PlaybookVersion, 0)
	for n := 1; n <= f.latest[playbookID]; n++ {
		v, err := f.GetVersionByNumber(context.Background(), playbookID, n)
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return items, nil
}

func (f *fakePersistence) AppendVersion(_ context.Context, playbookID string, v store.PlaybookVersion) (store.PlaybookVersion, error) {
	if _, ok := f.latest[playbookID]; !ok {
		return store.PlaybookVersion{}, sql.ErrNoRows
	}
	f.latest[playbookID]++
	v.VersionNumber = f.latest[playbookID]
	f.versions[v.ID] = v
	f.appended = append(f.appended, v)
	return v, nil
}

func seedPlaybook(f *fakePersistence, playbookID string) {
	f.latest[playbookID] = 0
}

func TestHashDeterministic(t *testing.T) {
	if Hash("content") != Hash("content") {
		t.Fatalf("hash must be deterministic")
	}
	if Hash("content") == Hash("other") {
		t.Fatalf("distinct content must hash differently")
	}
}

func TestCreateAssignsSequentialNumbers(t *testing.T) {
	fake := newFakePersistence()
	seedPlaybook(fake, "pb_1")
	vs := New(fake)

	for want := 1; want <= 3; want++ {
		v, err := vs.Create(context.Background(), "pb_1", "content", "usr_1")
		if err != nil {
			t.Fatalf("create version %d: %v", want, err)
		}
		if v.VersionNumber != want {
			t.Fatalf("expected version %d, got %d", want, v.VersionNumber)
		}
	}
}

func TestCreateUnknownPlaybook(t *testing.T) {
	vs := New(newFakePersistence())
	if _, err := vs.Create(context.Background(), "pb_missing", "content", "usr_1"); err != sql.ErrNoRows {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestNewSnapshotSetsHashAndID(t *testing.T) {
	snapshot := NewSnapshot("pb_1", "Hello\n", store.VersionSourceMerge, "usr_1")
	if snapshot.ID == "" {
		t.Fatalf("expected id")
	}
	if snapshot.ContentHash != Hash("Hello\n") {
		t.Fatalf("content hash mismatch")
	}
	if snapshot.Source != store.VersionSourceMerge {
		t.Fatalf("source mismatch: %s", snapshot.Source)
	}
}

func TestCurrentFollowsAppends(t *testing.T) {
	fake := newFakePersistence()
	seedPlaybook(fake, "pb_1")
	vs := New(fake)
	for i := 0; i < 3; i++ {
		if _, err := vs.Create(context.Background(), "pb_1", "content", "usr_1"); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	current, err := vs.Current(context.Background(), "pb_1")
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if current.VersionNumber != 3 {
		t.Fatalf("expected current version 3, got %d", current.VersionNumber)
	}
}
