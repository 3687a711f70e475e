package store

import "time"

type User struct {
	ID          string
	DisplayName string
	Email       string
	CreatedAt   time.Time
}

type Playbook struct {
	ID               string
	OwnerID          string
	Title            string
	Description      string
	CurrentVersionID string
	LatestVersion    int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// PlaybookVersion rows are immutable once written; only the playbook's
// pointer moves.
type PlaybookVersion struct {
	ID            string
	PlaybookID    string
	VersionNumber int
	Content       string
	ContentHash   string
	Source        string // direct, merge
	CreatedBy     string
	PullRequestID string
	CreatedAt     time.Time
}

const (
	VersionSourceDirect = "direct"
	VersionSourceMerge  = "merge"
)

type Fork struct {
	ID               string
	UserID           string
	OriginPlaybookID string
	BaseVersion      int
	LastSyncVersion  int
	Status           string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

const ForkStatusActive = "active"

type ForkFile struct {
	ID            string
	ForkID        string
	FilePath      string
	BlobRef       string
	Checksum      string
	OriginVersion int
	UpdatedAt     time.Time
}

type PullRequest struct {
	ID            string
	PlaybookID    string
	ForkID        string
	AuthorID      string
	BaseVersionID string
	Title         string
	Description   string
	OldContent    string
	NewContent    string
	Diff          string
	Status        string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	MergedAt      *time.Time
	MergedBy      string
	MergeMessage  string
	NewVersionID  string
}

const (
	PRStatusOpen     = "OPEN"
	PRStatusMerged   = "MERGED"
	PRStatusDeclined = "DECLINED"
	PRStatusClosed   = "CLOSED"
)

type PullRequestFile struct {
	ID            string
	PullRequestID string
	FilePath      string
	ChangeType    string // added, modified, deleted
	DiffText      string
	ChecksumOld   string
	ChecksumNew   string
	Changelog     string
	RiskFlags     []string
	Confidence    float64
	CreatedAt     time.Time
}

const (
	ChangeTypeAdded    = "added"
	ChangeTypeModified = "modified"
	ChangeTypeDeleted  = "deleted"
)

type PREvent struct {
	ID            int64
	PullRequestID string
	EventType     string
	ActorID       string
	Payload       string
	CreatedAt     time.Time
}
