package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) EnsureUser(ctx context.Context, id, displayName, email string) (User, error) {
	var user User
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (id, display_name, email)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET display_name = EXCLUDED.display_name
		RETURNING id, display_name, email, created_at
	`, id, displayName, email).Scan(&user.ID, &user.DisplayName, &user.Email, &user.CreatedAt)
	if err != nil {
		return User{}, fmt.Errorf("ensure user: %w", err)
	}
	return user, nil
}

// CreatePlaybook inserts the playbook and its version 1 snapshot and points
// the playbook at it, all in one transaction.
func (s *PostgresStore) CreatePlaybook(ctx context.Context, playbook Playbook, version PlaybookVersion) (Playbook, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Playbook{}, fmt.Errorf("begin create playbook: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO playbooks (id, owner_id, title, description, current_version_id, latest_version)
		VALUES ($1, $2, $3, $4, '', 0)
	`, playbook.ID, playbook.OwnerID, playbook.Title, playbook.Description); err != nil {
		return Playbook{}, fmt.Errorf("insert playbook: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO playbook_versions (id, playbook_id, version_number, content, content_hash, source, created_by)
		VALUES ($1, $2, 1, $3, $4, $5, $6)
	`, version.ID, playbook.ID, version.Content, version.ContentHash, VersionSourceDirect, version.CreatedBy); err != nil {
		return Playbook{}, fmt.Errorf("insert initial version: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE playbooks SET current_version_id=$2, latest_version=1 WHERE id=$1
	`, playbook.ID, version.ID); err != nil {
		return Playbook{}, fmt.Errorf("point playbook at initial version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Playbook{}, fmt.Errorf("commit create playbook: %w", err)
	}
	return s.GetPlaybook(ctx, playbook.ID)
}

func (s *PostgresStore) GetPlaybook(ctx context.Context, playbookID string) (Playbook, error) {
	var item Playbook
	err := s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, title, description, current_version_id, latest_version, created_at, updated_at
		FROM playbooks
		WHERE id=$1
	`, playbookID).Scan(
		&item.ID,
		&item.OwnerID,
		&item.Title,
		&item.Description,
		&item.CurrentVersionID,
		&item.LatestVersion,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return Playbook{}, err
	}
	return item, nil
}

const versionColumns = `id, playbook_id, version_number, content, content_hash, source, created_by, COALESCE(pull_request_id, ''), created_at`

func scanVersion(row interface{ Scan(...any) error }) (PlaybookVersion, error) {
	var v PlaybookVersion
	err := row.Scan(
		&v.ID,
		&v.PlaybookID,
		&v.VersionNumber,
		&v.Content,
		&v.ContentHash,
		&v.Source,
		&v.CreatedBy,
		&v.PullRequestID,
		&v.CreatedAt,
	)
	return v, err
}

func (s *PostgresStore) GetVersion(ctx context.Context, versionID string) (PlaybookVersion, error) {
	return scanVersion(s.db.QueryRowContext(ctx, `
		SELECT `+versionColumns+` FROM playbook_versions WHERE id=$1
	`, versionID))
}

func (s *PostgresStore) GetVersionByNumber(ctx context.Context, playbookID string, number int) (PlaybookVersion, error) {
	return scanVersion(s.db.QueryRowContext(ctx, `
		SELECT `+versionColumns+` FROM playbook_versions WHERE playbook_id=$1 AND version_number=$2
	`, playbookID, number))
}

func (s *PostgresStore) GetCurrentVersion(ctx context.Context, playbookID string) (PlaybookVersion, error) {
	return scanVersion(s.db.QueryRowContext(ctx, `
		SELECT `+versionColumns+`
		FROM playbook_versions
		WHERE id = (SELECT current_version_id FROM playbooks WHERE id=$1)
	`, playbookID))
}

func (s *PostgresStore) ListVersions(ctx context.Context, playbookID string) ([]PlaybookVersion, error) {
	return s.listVersions(ctx, `
		SELECT `+versionColumns+` FROM playbook_versions
		WHERE playbook_id=$1
		ORDER BY version_number ASC
	`, playbookID)
}

// ListVersionsBetween returns versions with after < version_number <= through.
func (s *PostgresStore) ListVersionsBetween(ctx context.Context, playbookID string, after, through int) ([]PlaybookVersion, error) {
	return s.listVersions(ctx, `
		SELECT `+versionColumns+` FROM playbook_versions
		WHERE playbook_id=$1 AND version_number > $2 AND version_number <= $3
		ORDER BY version_number ASC
	`, playbookID, after, through)
}

func (s *PostgresStore) listVersions(ctx context.Context, query string, args ...any) ([]PlaybookVersion, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	items := make([]PlaybookVersion, 0)
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		items = append(items, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate versions: %w", err)
	}
	return items, nil
}

// AppendVersion assigns the next version number and persists the snapshot,
// advancing the playbook pointer. Used for direct content updates; merges go
// through MergePullRequest so the PR transition joins the transaction.
func (s *PostgresStore) AppendVersion(ctx context.Context, playbookID string, version PlaybookVersion) (PlaybookVersion, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return PlaybookVersion{}, fmt.Errorf("begin append version: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var latestVersion int
	err = tx.QueryRowContext(ctx, `
		SELECT latest_version FROM playbooks WHERE id=$1 FOR UPDATE
	`, playbookID).Scan(&latestVersion)
	if err != nil {
		return PlaybookVersion{}, err
	}

	newNumber := latestVersion + 1
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO playbook_versions (id, playbook_id, version_number, content, content_hash, source, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, version.ID, playbookID, newNumber, version.Content, version.ContentHash, version.Source, version.CreatedBy); err != nil {
		return PlaybookVersion{}, fmt.Errorf("insert version: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE playbooks SET current_version_id=$2, latest_version=$3, updated_at=NOW() WHERE id=$1
	`, playbookID, version.ID, newNumber); err != nil {
		return PlaybookVersion{}, fmt.Errorf("advance playbook pointer: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return PlaybookVersion{}, fmt.Errorf("commit append version: %w", err)
	}
	return s.GetVersion(ctx, version.ID)
}

// MergeParams carries everything the merge transaction writes.
type MergeParams struct {
	PullRequestID     string
	PlaybookID        string
	ExpectedVersionID string
	Version           PlaybookVersion
	MergedBy          string
	MergeMessage      string
}

// MergePullRequest is the serialization point for a playbook. It inserts the
// merge snapshot, advances the playbook pointer, and transitions the PR, in
// one transaction. The row lock plus the conditional pointer update make the
// compare-and-set safe against concurrent merges: the loser observes the
// advanced pointer and gets ErrStaleBase.
func (s *PostgresStore) MergePullRequest(ctx context.Context, params MergeParams) (PlaybookVersion, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return PlaybookVersion{}, fmt.Errorf("begin merge: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var currentVersionID string
	var latestVersion int
	err = tx.QueryRowContext(ctx, `
		SELECT current_version_id, latest_version FROM playbooks WHERE id=$1 FOR UPDATE
	`, params.PlaybookID).Scan(&currentVersionID, &latestVersion)
	if err != nil {
		return PlaybookVersion{}, err
	}
	if currentVersionID != params.ExpectedVersionID {
		return PlaybookVersion{}, ErrStaleBase
	}

	newNumber := latestVersion + 1
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO playbook_versions (id, playbook_id, version_number, content, content_hash, source, created_by, pull_request_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, params.Version.ID, params.PlaybookID, newNumber, params.Version.Content, params.Version.ContentHash,
		VersionSourceMerge, params.Version.CreatedBy, params.PullRequestID); err != nil {
		return PlaybookVersion{}, fmt.Errorf("insert merge version: %w", err)
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE playbooks
		SET current_version_id=$3, latest_version=$4, updated_at=NOW()
		WHERE id=$1 AND current_version_id=$2
	`, params.PlaybookID, params.ExpectedVersionID, params.Version.ID, newNumber)
	if err != nil {
		return PlaybookVersion{}, fmt.Errorf("advance playbook pointer: %w", err)
	}
	if affected, err := result.RowsAffected(); err != nil {
		return PlaybookVersion{}, fmt.Errorf("advance playbook pointer: %w", err)
	} else if affected == 0 {
		return PlaybookVersion{}, ErrStaleBase
	}

	result, err = tx.ExecContext(ctx, `
		UPDATE pull_requests
		SET status=$2, merged_at=NOW(), merged_by=$3, merge_message=$4, new_version_id=$5, updated_at=NOW()
		WHERE id=$1 AND status=$6
	`, params.PullRequestID, PRStatusMerged, params.MergedBy, params.MergeMessage, params.Version.ID, PRStatusOpen)
	if err != nil {
		return PlaybookVersion{}, fmt.Errorf("transition pull request: %w", err)
	}
	if affected, err := result.RowsAffected(); err != nil {
		return PlaybookVersion{}, fmt.Errorf("transition pull request: %w", err)
	} else if affected == 0 {
		return PlaybookVersion{}, ErrNotOpen
	}

	if err := insertEvent(ctx, tx, params.PullRequestID, "merged", params.MergedBy, map[string]any{
		"new_version_id": params.Version.ID,
		"version_number": newNumber,
	}); err != nil {
		return PlaybookVersion{}, err
	}

	if err := tx.Commit(); err != nil {
		return PlaybookVersion{}, fmt.Errorf("commit merge: %w", err)
	}
	return s.GetVersion(ctx, params.Version.ID)
}

func (s *PostgresStore) InsertFork(ctx context.Context, fork Fork) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO forks (id, user_id, origin_playbook_id, base_version, last_sync_version, status)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, fork.ID, fork.UserID, fork.OriginPlaybookID, fork.BaseVersion, fork.LastSyncVersion, fork.Status)
	if err != nil {
		if IsDuplicateError(err) {
			return err
		}
		return fmt.Errorf("insert fork: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetFork(ctx context.Context, forkID string) (Fork, error) {
	var item Fork
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, origin_playbook_id, base_version, last_sync_version, status, created_at, updated_at
		FROM forks
		WHERE id=$1
	`, forkID).Scan(
		&item.ID,
		&item.UserID,
		&item.OriginPlaybookID,
		&item.BaseVersion,
		&item.LastSyncVersion,
		&item.Status,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return Fork{}, err
	}
	return item, nil
}

func (s *PostgresStore) UpdateForkSyncVersion(ctx context.Context, forkID string, lastSyncVersion int) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE forks SET last_sync_version=$2, updated_at=NOW() WHERE id=$1
	`, forkID, lastSyncVersion)
	if err != nil {
		return fmt.Errorf("update fork sync version: %w", err)
	}
	return nil
}

// DeleteFork removes the fork; fork_files cascade via FK.
func (s *PostgresStore) DeleteFork(ctx context.Context, forkID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM forks WHERE id=$1`, forkID)
	if err != nil {
		return fmt.Errorf("delete fork: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpsertForkFile(ctx context.Context, file ForkFile) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fork_files (id, fork_id, file_path, blob_ref, checksum, origin_version)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (fork_id, file_path)
		DO UPDATE SET blob_ref=EXCLUDED.blob_ref, checksum=EXCLUDED.checksum, origin_version=EXCLUDED.origin_version, updated_at=NOW()
	`, file.ID, file.ForkID, file.FilePath, file.BlobRef, file.Checksum, file.OriginVersion)
	if err != nil {
		return fmt.Errorf("upsert fork file: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListForkFiles(ctx context.Context, forkID string) ([]ForkFile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, fork_id, file_path, blob_ref, checksum, origin_version, updated_at
		FROM fork_files
		WHERE fork_id=$1
		ORDER BY file_path ASC
	`, forkID)
	if err != nil {
		return nil, fmt.Errorf("list fork files: %w", err)
	}
	defer rows.Close()

	items := make([]ForkFile, 0)
	for rows.Next() {
		var f ForkFile
		if err := rows.Scan(&f.ID, &f.ForkID, &f.FilePath, &f.BlobRef, &f.Checksum, &f.OriginVersion, &f.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan fork file: %w", err)
		}
		items = append(items, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fork files: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) GetForkFileByPath(ctx context.Context, forkID, filePath string) (*ForkFile, error) {
	var f ForkFile
	err := s.db.QueryRowContext(ctx, `
		SELECT id, fork_id, file_path, blob_ref, checksum, origin_version, updated_at
		FROM fork_files
		WHERE fork_id=$1 AND file_path=$2
	`, forkID, filePath).Scan(&f.ID, &f.ForkID, &f.FilePath, &f.BlobRef, &f.Checksum, &f.OriginVersion, &f.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get fork file: %w", err)
	}
	return &f, nil
}

// InsertPullRequest persists the PR, its per-file detail, and the creation
// event together.
func (s *PostgresStore) InsertPullRequest(ctx context.Context, pr PullRequest, files []PullRequestFile) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert pull request: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO pull_requests (id, playbook_id, fork_id, author_id, base_version_id, title, description, old_content, new_content, diff, status)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9, $10, $11)
	`, pr.ID, pr.PlaybookID, pr.ForkID, pr.AuthorID, pr.BaseVersionID, pr.Title, pr.Description,
		pr.OldContent, pr.NewContent, pr.Diff, pr.Status); err != nil {
		return fmt.Errorf("insert pull request: %w", err)
	}

	for _, file := range files {
		riskFlags, err := json.Marshal(file.RiskFlags)
		if err != nil {
			return fmt.Errorf("marshal risk flags: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO pull_request_files (id, pr_id, file_path, change_type, diff_text, checksum_old, checksum_new, changelog, risk_flags, confidence)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, file.ID, pr.ID, file.FilePath, file.ChangeType, file.DiffText, file.ChecksumOld,
			file.ChecksumNew, file.Changelog, string(riskFlags), file.Confidence); err != nil {
			return fmt.Errorf("insert pull request file: %w", err)
		}
	}

	if err := insertEvent(ctx, tx, pr.ID, "created", pr.AuthorID, map[string]any{
		"playbook_id": pr.PlaybookID,
		"title":       pr.Title,
	}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert pull request: %w", err)
	}
	return nil
}

const prColumns = `id, playbook_id, COALESCE(fork_id, ''), author_id, base_version_id, title, description,
	old_content, new_content, diff, status, created_at, updated_at, merged_at,
	COALESCE(merged_by, ''), COALESCE(merge_message, ''), COALESCE(new_version_id, '')`

func scanPullRequest(row interface{ Scan(...any) error }) (PullRequest, error) {
	var pr PullRequest
	err := row.Scan(
		&pr.ID,
		&pr.PlaybookID,
		&pr.ForkID,
		&pr.AuthorID,
		&pr.BaseVersionID,
		&pr.Title,
		&pr.Description,
		&pr.OldContent,
		&pr.NewContent,
		&pr.Diff,
		&pr.Status,
		&pr.CreatedAt,
		&pr.UpdatedAt,
		&pr.MergedAt,
		&pr.MergedBy,
		&pr.MergeMessage,
		&pr.NewVersionID,
	)
	return pr, err
}

func (s *PostgresStore) GetPullRequest(ctx context.Context, prID string) (PullRequest, error) {
	return scanPullRequest(s.db.QueryRowContext(ctx, `
		SELECT `+prColumns+` FROM pull_requests WHERE id=$1
	`, prID))
}

// ListPullRequests returns a page ordered by created_at descending plus the
// total count for the filter.
func (s *PostgresStore) ListPullRequests(ctx context.Context, playbookID, status string, limit, offset int) ([]PullRequest, int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+prColumns+` FROM pull_requests
		WHERE ($1 = '' OR playbook_id=$1) AND ($2 = '' OR status=$2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`, playbookID, status, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list pull requests: %w", err)
	}
	defer rows.Close()

	items := make([]PullRequest, 0)
	for rows.Next() {
		pr, err := scanPullRequest(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan pull request: %w", err)
		}
		items = append(items, pr)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate pull requests: %w", err)
	}

	var total int
	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM pull_requests WHERE ($1 = '' OR playbook_id=$1) AND ($2 = '' OR status=$2)
	`, playbookID, status).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count pull requests: %w", err)
	}
	return items, total, nil
}

func (s *PostgresStore) ListPullRequestFiles(ctx context.Context, prID string) ([]PullRequestFile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, pr_id, file_path, change_type, diff_text, checksum_old, checksum_new, changelog, risk_flags, confidence, created_at
		FROM pull_request_files
		WHERE pr_id=$1
		ORDER BY file_path ASC
	`, prID)
	if err != nil {
		return nil, fmt.Errorf("list pull request files: %w", err)
	}
	defer rows.Close()

	items := make([]PullRequestFile, 0)
	for rows.Next() {
		var f PullRequestFile
		var riskFlags string
		if err := rows.Scan(&f.ID, &f.PullRequestID, &f.FilePath, &f.ChangeType, &f.DiffText,
			&f.ChecksumOld, &f.ChecksumNew, &f.Changelog, &riskFlags, &f.Confidence, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan pull request file: %w", err)
		}
		if err := json.Unmarshal([]byte(riskFlags), &f.RiskFlags); err != nil {
			f.RiskFlags = []string{}
		}
		items = append(items, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pull request files: %w", err)
	}
	return items, nil
}

// TransitionPullRequest moves an OPEN pull request to a terminal state.
// Returns ErrNotOpen when the PR exists but already left OPEN.
func (s *PostgresStore) TransitionPullRequest(ctx context.Context, prID, toStatus, actorID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transition: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `
		UPDATE pull_requests SET status=$2, updated_at=NOW() WHERE id=$1 AND status=$3
	`, prID, toStatus, PRStatusOpen)
	if err != nil {
		return fmt.Errorf("transition pull request: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("transition pull request: %w", err)
	}
	if affected == 0 {
		var exists bool
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM pull_requests WHERE id=$1)`, prID).Scan(&exists); err != nil {
			return fmt.Errorf("check pull request: %w", err)
		}
		if !exists {
			return sql.ErrNoRows
		}
		return ErrNotOpen
	}

	eventType := "closed"
	if toStatus == PRStatusDeclined {
		eventType = "declined"
	}
	if err := insertEvent(ctx, tx, prID, eventType, actorID, nil); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transition: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListPREvents(ctx context.Context, prID string) ([]PREvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, pr_id, event_type, actor_id, COALESCE(payload::text, '{}'), created_at
		FROM pr_events
		WHERE pr_id=$1
		ORDER BY created_at ASC, id ASC
	`, prID)
	if err != nil {
		return nil, fmt.Errorf("list pr events: %w", err)
	}
	defer rows.Close()

	items := make([]PREvent, 0)
	for rows.Next() {
		var e PREvent
		if err := rows.Scan(&e.ID, &e.PullRequestID, &e.EventType, &e.ActorID, &e.Payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan pr event: %w", err)
		}
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pr events: %w", err)
	}
	return items, nil
}

func insertEvent(ctx context.Context, tx *sql.Tx, prID, eventType, actorID string, payload map[string]any) error {
	body := []byte("{}")
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal event payload: %w", err)
		}
		body = encoded
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO pr_events (pr_id, event_type, actor_id, payload)
		VALUES ($1, $2, $3, $4::jsonb)
	`, prID, eventType, actorID, string(body)); err != nil {
		return fmt.Errorf("insert pr event: %w", err)
	}
	return nil
}
