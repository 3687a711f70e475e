package app

import (
	"context"
	"errors"
	"log"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/Bhardwaj-Devesh/project-enux/internal/analyzer"
	"github.com/Bhardwaj-Devesh/project-enux/internal/auth"
	"github.com/Bhardwaj-Devesh/project-enux/internal/diff"
	"github.com/Bhardwaj-Devesh/project-enux/internal/fork"
	"github.com/Bhardwaj-Devesh/project-enux/internal/search"
	"github.com/Bhardwaj-Devesh/project-enux/internal/store"
	"github.com/Bhardwaj-Devesh/project-enux/internal/tasks"
	"github.com/Bhardwaj-Devesh/project-enux/internal/util"
	"github.com/Bhardwaj-Devesh/project-enux/internal/version"
)

type Session struct {
	UserID   string
	UserName string
}

type dataStore interface {
	Ping(ctx context.Context) error
	EnsureUser(ctx context.Context, id, displayName, email string) (store.User, error)
	CreatePlaybook(ctx context.Context, playbook store.Playbook, version store.PlaybookVersion) (store.Playbook, error)
	GetPlaybook(ctx context.Context, playbookID string) (store.Playbook, error)
	GetVersion(ctx context.Context, versionID string) (store.PlaybookVersion, error)
	GetVersionByNumber(ctx context.Context, playbookID string, number int) (store.PlaybookVersion, error)
	GetCurrentVersion(ctx context.Context, playbookID string) (store.PlaybookVersion, error)
	ListVersions(ctx context.Context, playbookID string) ([]store.PlaybookVersion, error)
	AppendVersion(ctx context.Context, playbookID string, version store.PlaybookVersion) (store.PlaybookVersion, error)
	InsertFork(ctx context.Context, fork store.Fork) error
	GetFork(ctx context.Context, forkID string) (store.Fork, error)
	DeleteFork(ctx context.Context, forkID string) error
	ListForkFiles(ctx context.Context, forkID string) ([]store.ForkFile, error)
	InsertPullRequest(ctx context.Context, pr store.PullRequest, files []store.PullRequestFile) error
	GetPullRequest(ctx context.Context, prID string) (store.PullRequest, error)
	ListPullRequests(ctx context.Context, playbookID, status string, limit, offset int) ([]store.PullRequest, int, error)
	ListPullRequestFiles(ctx context.Context, prID string) ([]store.PullRequestFile, error)
	ListPREvents(ctx context.Context, prID string) ([]store.PREvent, error)
	MergePullRequest(ctx context.Context, params store.MergeParams) (store.PlaybookVersion, error)
	TransitionPullRequest(ctx context.Context, prID, toStatus, actorID string) error
}

type taskQueue interface {
	Enqueue(ctx context.Context, kind, playbookID, versionID string) (string, error)
}

type eventPublisher interface {
	Publish(ctx context.Context, event tasks.Event) error
}

// Service is the top-level workflow over playbooks, forks, and pull
// requests. All authorization and optimistic-concurrency checks live here;
// the store below only enforces the atomic merge.
type Service struct {
	db        dataStore
	versions  *version.Store
	forks     *fork.Coordinator
	analyzer  *analyzer.Service
	searcher  *search.Service
	queue     taskQueue
	events    eventPublisher
	jwtSecret []byte
}

func NewService(db dataStore, forks *fork.Coordinator, textAnalyzer *analyzer.Service, searcher *search.Service, queue taskQueue, events eventPublisher, jwtSecret []byte) *Service {
	if textAnalyzer == nil {
		textAnalyzer = analyzer.NewService(nil)
	}
	return &Service{
		db:        db,
		versions:  version.New(db),
		forks:     forks,
		analyzer:  textAnalyzer,
		searcher:  searcher,
		queue:     queue,
		events:    events,
		jwtSecret: jwtSecret,
	}
}

func (s *Service) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// SessionFromToken verifies the bearer token and returns the acting user.
func (s *Service) SessionFromToken(ctx context.Context, token string) (Session, error) {
	claims, err := auth.ParseToken(s.jwtSecret, token)
	if err != nil {
		return Session{}, err
	}
	if _, err := s.db.EnsureUser(ctx, claims.Sub, claims.Name, ""); err != nil {
		return Session{}, err
	}
	return Session{UserID: claims.Sub, UserName: claims.Name}, nil
}

// ── Playbooks ──

type CreatePlaybookInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
}

func (in CreatePlaybookInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&in.Description, validation.Length(0, 2000)),
		validation.Field(&in.Content, validation.Required),
	)
}

func (s *Service) CreatePlaybook(ctx context.Context, session Session, in CreatePlaybookInput) (map[string]any, error) {
	if err := in.Validate(); err != nil {
		return nil, errValidation(err)
	}

	playbook := store.Playbook{
		ID:          util.NewID("pb"),
		OwnerID:     session.UserID,
		Title:       in.Title,
		Description: in.Description,
	}
	snapshot := version.NewSnapshot(playbook.ID, in.Content, store.VersionSourceDirect, session.UserID)
	created, err := s.db.CreatePlaybook(ctx, playbook, snapshot)
	if err != nil {
		return nil, err
	}
	current, err := s.versions.Get(ctx, created.CurrentVersionID)
	if err != nil {
		return nil, err
	}

	s.searcher.PlaybookChanged(searchRecord(created, current))
	return map[string]any{"playbook": playbookPayload(created), "version": versionPayload(current)}, nil
}

func (s *Service) GetPlaybook(ctx context.Context, playbookID string) (map[string]any, error) {
	playbook, err := s.db.GetPlaybook(ctx, playbookID)
	if err != nil {
		return nil, err
	}
	current, err := s.versions.Get(ctx, playbook.CurrentVersionID)
	if err != nil {
		return nil, err
	}
	return map[string]any{"playbook": playbookPayload(playbook), "currentVersion": versionPayload(current)}, nil
}

func (s *Service) ListVersions(ctx context.Context, playbookID string) (map[string]any, error) {
	if _, err := s.db.GetPlaybook(ctx, playbookID); err != nil {
		return nil, err
	}
	versions, err := s.versions.List(ctx, playbookID)
	if err != nil {
		return nil, err
	}
	items := make([]map[string]any, 0, len(versions))
	for _, v := range versions {
		items = append(items, versionPayload(v))
	}
	return map[string]any{"versions": items}, nil
}

func (s *Service) GetVersionByNumber(ctx context.Context, playbookID string, number int) (map[string]any, error) {
	v, err := s.versions.GetByNumber(ctx, playbookID, number)
	if err != nil {
		return nil, err
	}
	return map[string]any{"version": versionPayload(v)}, nil
}

type UpdateContentInput struct {
	Content string `json:"content"`
}

func (in UpdateContentInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Content, validation.Required),
	)
}

// UpdateContent appends a direct snapshot by the playbook owner and moves
// the current-version pointer past any open pull request's base.
func (s *Service) UpdateContent(ctx context.Context, session Session, playbookID string, in UpdateContentInput) (map[string]any, error) {
	if err := in.Validate(); err != nil {
		return nil, errValidation(err)
	}
	playbook, err := s.db.GetPlaybook(ctx, playbookID)
	if err != nil {
		return nil, err
	}
	if playbook.OwnerID != session.UserID {
		return nil, errForbidden("Only the playbook owner may edit directly")
	}

	appended, err := s.versions.Create(ctx, playbook.ID, in.Content, session.UserID)
	if err != nil {
		return nil, err
	}

	playbook.CurrentVersionID = appended.ID
	playbook.LatestVersion = appended.VersionNumber
	s.searcher.PlaybookChanged(searchRecord(playbook, appended))
	if s.queue != nil {
		if _, err := s.queue.Enqueue(ctx, tasks.KindRefresh, playbook.ID, appended.ID); err != nil {
			log.Printf("app: enqueue refresh for playbook %s: %v", playbook.ID, err)
		}
	}
	return map[string]any{"version": versionPayload(appended)}, nil
}

// ── Forks ──

func (s *Service) CreateFork(ctx context.Context, session Session, playbookID string) (map[string]any, error) {
	playbook, err := s.db.GetPlaybook(ctx, playbookID)
	if err != nil {
		return nil, err
	}
	current, err := s.versions.Current(ctx, playbook.ID)
	if err != nil {
		return nil, err
	}

	item := store.Fork{
		ID:               util.NewID("fork"),
		UserID:           session.UserID,
		OriginPlaybookID: playbook.ID,
		BaseVersion:      playbook.LatestVersion,
		LastSyncVersion:  playbook.LatestVersion,
		Status:           store.ForkStatusActive,
	}
	if err := s.db.InsertFork(ctx, item); err != nil {
		if store.IsDuplicateError(err) {
			return nil, errDuplicateFork()
		}
		return nil, err
	}
	// The fork file record references the fork row, so the row goes in
	// first. A failed content write must not strand the row: the fork
	// would look up to date and sync would never adopt the missing file.
	if _, err := s.forks.WriteFile(ctx, item.ID, fork.ContentPath, current.Content, playbook.LatestVersion); err != nil {
		if derr := s.db.DeleteFork(ctx, item.ID); derr != nil {
			log.Printf("app: remove fork %s after failed content write: %v", item.ID, derr)
		}
		return nil, err
	}
	return map[string]any{"fork": forkPayload(item)}, nil
}

func (s *Service) GetFork(ctx context.Context, session Session, forkID string) (map[string]any, error) {
	item, err := s.requireForkOwner(ctx, session, forkID)
	if err != nil {
		return nil, err
	}
	files, err := s.db.ListForkFiles(ctx, forkID)
	if err != nil {
		return nil, err
	}
	fileItems := make([]map[string]any, 0, len(files))
	for _, f := range files {
		fileItems = append(fileItems, map[string]any{
			"filePath":      f.FilePath,
			"checksum":      f.Checksum,
			"originVersion": f.OriginVersion,
			"updatedAt":     f.UpdatedAt,
		})
	}
	return map[string]any{"fork": forkPayload(item), "files": fileItems}, nil
}

func (s *Service) DeleteFork(ctx context.Context, session Session, forkID string) error {
	if _, err := s.requireForkOwner(ctx, session, forkID); err != nil {
		return err
	}
	return s.db.DeleteFork(ctx, forkID)
}

func (s *Service) ForkSyncStatus(ctx context.Context, session Session, forkID string) (fork.SyncStatus, error) {
	if _, err := s.requireForkOwner(ctx, session, forkID); err != nil {
		return fork.SyncStatus{}, err
	}
	return s.forks.CheckSyncStatus(ctx, forkID)
}

func (s *Service) SyncFork(ctx context.Context, session Session, forkID string) (fork.SyncResult, error) {
	if _, err := s.requireForkOwner(ctx, session, forkID); err != nil {
		return fork.SyncResult{}, err
	}
	return s.forks.Sync(ctx, forkID)
}

func (s *Service) requireForkOwner(ctx context.Context, session Session, forkID string) (store.Fork, error) {
	item, err := s.db.GetFork(ctx, forkID)
	if err != nil {
		return store.Fork{}, err
	}
	if item.UserID != session.UserID {
		return store.Fork{}, errForbidden("Only the fork owner may do this")
	}
	return item, nil
}

// ── Pull requests ──

type FileChangeInput struct {
	FilePath   string `json:"filePath"`
	ChangeType string `json:"changeType"`
	OldContent string `json:"oldContent"`
	NewContent string `json:"newContent"`
}

type CreatePullRequestInput struct {
	PlaybookID    string            `json:"playbookId"`
	ForkID        string            `json:"forkId"`
	Title         string            `json:"title"`
	Description   string            `json:"description"`
	NewContent    string            `json:"newContent"`
	BaseVersionID string            `json:"baseVersionId"`
	Files         []FileChangeInput `json:"files"`
}

func (in CreatePullRequestInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.PlaybookID, validation.Required),
		validation.Field(&in.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&in.Description, validation.Length(0, 2000)),
		validation.Field(&in.NewContent, validation.Required),
		validation.Field(&in.BaseVersionID, validation.Required),
	)
}

func validChangeType(t string) bool {
	return t == store.ChangeTypeAdded || t == store.ChangeTypeModified || t == store.ChangeTypeDeleted
}

func (s *Service) CreatePullRequest(ctx context.Context, session Session, in CreatePullRequestInput) (map[string]any, error) {
	if err := in.Validate(); err != nil {
		return nil, errValidation(err)
	}
	for _, f := range in.Files {
		if f.FilePath == "" || !validChangeType(f.ChangeType) {
			return nil, errValidation(map[string]any{"files": "each file needs a path and a change type of added, modified, or deleted"})
		}
	}

	playbook, err := s.db.GetPlaybook(ctx, in.PlaybookID)
	if err != nil {
		return nil, err
	}
	baseVersion, err := s.versions.Get(ctx, in.BaseVersionID)
	if err != nil {
		return nil, err
	}
	if baseVersion.PlaybookID != playbook.ID {
		return nil, errNotFound("Base version")
	}
	if playbook.CurrentVersionID != in.BaseVersionID {
		return nil, errStaleBase(in.BaseVersionID, playbook.CurrentVersionID)
	}
	if in.ForkID != "" {
		item, err := s.db.GetFork(ctx, in.ForkID)
		if err != nil {
			return nil, err
		}
		if item.OriginPlaybookID != playbook.ID || item.UserID != session.UserID {
			return nil, errForbidden("Fork does not belong to you or to this playbook")
		}
	}

	pr := store.PullRequest{
		ID:            util.NewID("pr"),
		PlaybookID:    playbook.ID,
		ForkID:        in.ForkID,
		AuthorID:      session.UserID,
		BaseVersionID: in.BaseVersionID,
		Title:         in.Title,
		Description:   in.Description,
		OldContent:    baseVersion.Content,
		NewContent:    in.NewContent,
		Diff:          diff.Unified(baseVersion.Content, in.NewContent, fork.ContentPath),
		Status:        store.PRStatusOpen,
	}

	files, analyses := s.annotateFiles(ctx, pr, in.Files)
	if pr.Description == "" {
		overall := s.analyzer.AnalyzeOverall(ctx, analyses, in.Title)
		pr.Description = overall.Description
	}

	if err := s.db.InsertPullRequest(ctx, pr, files); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, pr, "created", session.UserID)

	return map[string]any{"pullRequest": prPayload(pr), "files": prFilePayloads(files)}, nil
}

// annotateFiles normalizes the per-file detail: a diff and checksums for
// every change, plus analyzer annotations. An empty file list collapses to
// the single content change the PR itself carries.
func (s *Service) annotateFiles(ctx context.Context, pr store.PullRequest, inputs []FileChangeInput) ([]store.PullRequestFile, []analyzer.FileAnalysis) {
	if len(inputs) == 0 {
		inputs = []FileChangeInput{{
			FilePath:   fork.ContentPath,
			ChangeType: store.ChangeTypeModified,
			OldContent: pr.OldContent,
			NewContent: pr.NewContent,
		}}
	}

	files := make([]store.PullRequestFile, 0, len(inputs))
	analyses := make([]analyzer.FileAnalysis, 0, len(inputs))
	for _, in := range inputs {
		analysis := s.analyzer.AnalyzeChange(ctx, analyzer.ChangeInput{
			FilePath:     in.FilePath,
			BaseText:     in.OldContent,
			ProposedText: in.NewContent,
			ChangeType:   in.ChangeType,
		})
		analyses = append(analyses, analysis)

		file := store.PullRequestFile{
			ID:            util.NewID("prf"),
			PullRequestID: pr.ID,
			FilePath:      in.FilePath,
			ChangeType:    in.ChangeType,
			DiffText:      diff.Unified(in.OldContent, in.NewContent, in.FilePath),
			Changelog:     analysis.Changelog,
			RiskFlags:     analysis.RiskFlags,
			Confidence:    analysis.Confidence,
		}
		if in.ChangeType != store.ChangeTypeAdded {
			file.ChecksumOld = version.Hash(in.OldContent)
		}
		if in.ChangeType != store.ChangeTypeDeleted {
			file.ChecksumNew = version.Hash(in.NewContent)
		}
		files = append(files, file)
	}
	return files, analyses
}

func (s *Service) GetPullRequest(ctx context.Context, prID string) (map[string]any, error) {
	pr, err := s.db.GetPullRequest(ctx, prID)
	if err != nil {
		return nil, err
	}
	files, err := s.db.ListPullRequestFiles(ctx, prID)
	if err != nil {
		return nil, err
	}
	events, err := s.db.ListPREvents(ctx, prID)
	if err != nil {
		return nil, err
	}
	eventItems := make([]map[string]any, 0, len(events))
	for _, e := range events {
		eventItems = append(eventItems, map[string]any{
			"eventType": e.EventType,
			"actorId":   e.ActorID,
			"createdAt": e.CreatedAt,
		})
	}
	return map[string]any{
		"pullRequest": prPayload(pr),
		"files":       prFilePayloads(files),
		"events":      eventItems,
	}, nil
}

func (s *Service) ListPullRequests(ctx context.Context, playbookID, status string, limit, offset int) (map[string]any, error) {
	if status != "" && status != store.PRStatusOpen && status != store.PRStatusMerged &&
		status != store.PRStatusDeclined && status != store.PRStatusClosed {
		return nil, errValidation(map[string]any{"status": "must be OPEN, MERGED, DECLINED, or CLOSED"})
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	items, total, err := s.db.ListPullRequests(ctx, playbookID, status, limit, offset)
	if err != nil {
		return nil, err
	}
	payloads := make([]map[string]any, 0, len(items))
	for _, pr := range items {
		payloads = append(payloads, prPayload(pr))
	}
	return map[string]any{
		"pullRequests": payloads,
		"total":        total,
		"limit":        limit,
		"offset":       offset,
	}, nil
}

// GetDiff recomputes the diff from the PR's stored old and new content in
// the requested format.
func (s *Service) GetDiff(ctx context.Context, prID, format string) (map[string]any, error) {
	pr, err := s.db.GetPullRequest(ctx, prID)
	if err != nil {
		return nil, err
	}
	stats := diff.Stats(pr.OldContent, pr.NewContent)
	payload := map[string]any{
		"pullRequestId": pr.ID,
		"format":        format,
		"stats": map[string]any{
			"linesAdded":   stats.LinesAdded,
			"linesRemoved": stats.LinesRemoved,
			"hasChanges":   stats.HasChanges,
		},
	}
	switch format {
	case "", "unified":
		payload["format"] = "unified"
		payload["diff"] = diff.Unified(pr.OldContent, pr.NewContent, fork.ContentPath)
	case "side-by-side":
		payload["diff"] = diff.SideBySide(pr.OldContent, pr.NewContent)
	case "html":
		payload["diff"] = diff.HTML(pr.OldContent, pr.NewContent)
	default:
		return nil, errValidation(map[string]any{"format": "must be unified, side-by-side, or html"})
	}
	return payload, nil
}

func (s *Service) MergePullRequest(ctx context.Context, session Session, prID, message string) (map[string]any, error) {
	if message == "" {
		message = "Merged pull request"
	}
	if err := validation.Validate(message, validation.Length(1, 500)); err != nil {
		return nil, errValidation(map[string]any{"message": err.Error()})
	}

	pr, err := s.db.GetPullRequest(ctx, prID)
	if err != nil {
		return nil, err
	}
	playbook, err := s.db.GetPlaybook(ctx, pr.PlaybookID)
	if err != nil {
		return nil, err
	}
	if playbook.OwnerID != session.UserID {
		return nil, errForbidden("Only the playbook owner may merge")
	}
	if pr.Status != store.PRStatusOpen {
		return nil, errPRNotOpen(pr.Status)
	}
	if playbook.CurrentVersionID != pr.BaseVersionID {
		return nil, errStaleBase(pr.BaseVersionID, playbook.CurrentVersionID)
	}
	current, err := s.versions.Get(ctx, playbook.CurrentVersionID)
	if err != nil {
		return nil, err
	}
	if diff.HasConflicts(pr.OldContent, current.Content, pr.NewContent) {
		return nil, errMergeConflict(map[string]any{
			"baseVersionId":    pr.BaseVersionID,
			"currentVersionId": playbook.CurrentVersionID,
		})
	}

	snapshot := version.NewSnapshot(playbook.ID, pr.NewContent, store.VersionSourceMerge, pr.AuthorID)
	merged, err := s.db.MergePullRequest(ctx, store.MergeParams{
		PullRequestID:     pr.ID,
		PlaybookID:        playbook.ID,
		ExpectedVersionID: pr.BaseVersionID,
		Version:           snapshot,
		MergedBy:          session.UserID,
		MergeMessage:      message,
	})
	if errors.Is(err, store.ErrStaleBase) {
		fresh, ferr := s.db.GetPlaybook(ctx, playbook.ID)
		if ferr != nil {
			fresh = playbook
		}
		return nil, errStaleBase(pr.BaseVersionID, fresh.CurrentVersionID)
	}
	if errors.Is(err, store.ErrNotOpen) {
		return nil, errPRNotOpen("no longer open")
	}
	if err != nil {
		return nil, err
	}

	if s.queue != nil {
		if _, err := s.queue.Enqueue(ctx, tasks.KindRefresh, playbook.ID, merged.ID); err != nil {
			log.Printf("app: enqueue refresh for playbook %s: %v", playbook.ID, err)
		}
	}
	s.publishEvent(ctx, pr, "merged", session.UserID)

	return map[string]any{
		"merged":     true,
		"newVersion": versionPayload(merged),
		"message":    message,
	}, nil
}

func (s *Service) DeclinePullRequest(ctx context.Context, session Session, prID string) error {
	pr, err := s.db.GetPullRequest(ctx, prID)
	if err != nil {
		return err
	}
	playbook, err := s.db.GetPlaybook(ctx, pr.PlaybookID)
	if err != nil {
		return err
	}
	if playbook.OwnerID != session.UserID {
		return errForbidden("Only the playbook owner may decline")
	}
	if pr.Status != store.PRStatusOpen {
		return errPRNotOpen(pr.Status)
	}
	if err := s.db.TransitionPullRequest(ctx, prID, store.PRStatusDeclined, session.UserID); err != nil {
		if errors.Is(err, store.ErrNotOpen) {
			return errPRNotOpen("no longer open")
		}
		return err
	}
	s.publishEvent(ctx, pr, "declined", session.UserID)
	return nil
}

func (s *Service) ClosePullRequest(ctx context.Context, session Session, prID string) error {
	pr, err := s.db.GetPullRequest(ctx, prID)
	if err != nil {
		return err
	}
	playbook, err := s.db.GetPlaybook(ctx, pr.PlaybookID)
	if err != nil {
		return err
	}
	if session.UserID != pr.AuthorID && session.UserID != playbook.OwnerID {
		return errForbidden("Only the author or the playbook owner may close")
	}
	if pr.Status != store.PRStatusOpen {
		return errPRNotOpen(pr.Status)
	}
	if err := s.db.TransitionPullRequest(ctx, prID, store.PRStatusClosed, session.UserID); err != nil {
		if errors.Is(err, store.ErrNotOpen) {
			return errPRNotOpen("no longer open")
		}
		return err
	}
	s.publishEvent(ctx, pr, "closed", session.UserID)
	return nil
}

func (s *Service) publishEvent(ctx context.Context, pr store.PullRequest, eventType, actorID string) {
	if s.events == nil {
		return
	}
	err := s.events.Publish(ctx, tasks.Event{
		PullRequestID: pr.ID,
		PlaybookID:    pr.PlaybookID,
		EventType:     eventType,
		ActorID:       actorID,
		OccurredAt:    time.Now().UTC(),
	})
	if err != nil {
		log.Printf("app: publish %s event for %s: %v", eventType, pr.ID, err)
	}
}

// ── Payloads ──

func playbookPayload(p store.Playbook) map[string]any {
	return map[string]any{
		"id":               p.ID,
		"ownerId":          p.OwnerID,
		"title":            p.Title,
		"description":      p.Description,
		"currentVersionId": p.CurrentVersionID,
		"latestVersion":    p.LatestVersion,
		"createdAt":        p.CreatedAt,
		"updatedAt":        p.UpdatedAt,
	}
}

func versionPayload(v store.PlaybookVersion) map[string]any {
	payload := map[string]any{
		"id":            v.ID,
		"playbookId":    v.PlaybookID,
		"versionNumber": v.VersionNumber,
		"content":       v.Content,
		"contentHash":   v.ContentHash,
		"source":        v.Source,
		"createdBy":     v.CreatedBy,
		"createdAt":     v.CreatedAt,
	}
	if v.PullRequestID != "" {
		payload["pullRequestId"] = v.PullRequestID
	}
	return payload
}

func forkPayload(f store.Fork) map[string]any {
	return map[string]any{
		"id":               f.ID,
		"userId":           f.UserID,
		"originPlaybookId": f.OriginPlaybookID,
		"baseVersion":      f.BaseVersion,
		"lastSyncVersion":  f.LastSyncVersion,
		"status":           f.Status,
		"createdAt":        f.CreatedAt,
	}
}

func prPayload(pr store.PullRequest) map[string]any {
	payload := map[string]any{
		"id":            pr.ID,
		"playbookId":    pr.PlaybookID,
		"authorId":      pr.AuthorID,
		"baseVersionId": pr.BaseVersionID,
		"title":         pr.Title,
		"description":   pr.Description,
		"diff":          pr.Diff,
		"status":        pr.Status,
		"createdAt":     pr.CreatedAt,
		"updatedAt":     pr.UpdatedAt,
	}
	if pr.ForkID != "" {
		payload["forkId"] = pr.ForkID
	}
	if pr.MergedAt != nil {
		payload["mergedAt"] = pr.MergedAt
		payload["mergedBy"] = pr.MergedBy
		payload["mergeMessage"] = pr.MergeMessage
		payload["newVersionId"] = pr.NewVersionID
	}
	return payload
}

func prFilePayloads(files []store.PullRequestFile) []map[string]any {
	items := make([]map[string]any, 0, len(files))
	for _, f := range files {
		items = append(items, map[string]any{
			"filePath":    f.FilePath,
			"changeType":  f.ChangeType,
			"diffText":    f.DiffText,
			"checksumOld": f.ChecksumOld,
			"checksumNew": f.ChecksumNew,
			"changelog":   f.Changelog,
			"riskFlags":   f.RiskFlags,
			"confidence":  f.Confidence,
			"needsReview": f.Confidence < analyzer.LowConfidenceThreshold,
		})
	}
	return items
}

func searchRecord(p store.Playbook, v store.PlaybookVersion) search.PlaybookRecord {
	return search.PlaybookRecord{
		ID:            p.ID,
		OwnerID:       p.OwnerID,
		Title:         p.Title,
		Description:   p.Description,
		Content:       v.Content,
		VersionID:     v.ID,
		VersionNumber: v.VersionNumber,
		UpdatedAt:     time.Now().UTC().Format(time.RFC3339),
	}
}
