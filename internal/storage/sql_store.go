package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"xhs-monitor/internal/apperrors"
	"xhs-monitor/internal/models"
)

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// sqlStore holds the queries shared by both backends. Queries are written with ? placeholders
// and rebound for drivers that number them.
type sqlStore struct {
	conn     *sql.DB
	numbered bool
	now      func() time.Time
}

func (s *sqlStore) q(query string) string {
	if !s.numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *sqlStore) Close() error {
	return s.conn.Close()
}

func (s *sqlStore) Ping(ctx context.Context) error {
	return s.conn.PingContext(ctx)
}

// --- Target Methods ---

func (s *sqlStore) GetMonitorTargets(ctx context.Context, userID string) ([]models.Target, error) {
	rows, err := s.conn.QueryContext(ctx, s.q(`
		SELECT id, user_id, note_url, last_comment_count, created_at
		FROM monitor_targets WHERE user_id = ? ORDER BY id`), userID)
	if err != nil {
		return nil, fmt.Errorf("query targets: %w", err)
	}
	defer rows.Close()

	var targets []models.Target
	for rows.Next() {
		var t models.Target
		if err := rows.Scan(&t.ID, &t.UserID, &t.URL, &t.LastCommentCount, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan target: %w", err)
		}
		targets = append(targets, t)
	}
	return targets, rows.Err()
}

func (s *sqlStore) AddMonitorTarget(ctx context.Context, userID, noteURL string) (models.Target, error) {
	_, err := s.conn.ExecContext(ctx, s.q(`
		INSERT INTO monitor_targets (user_id, note_url, last_comment_count, created_at)
		VALUES (?, ?, 0, ?)
		ON CONFLICT (user_id, note_url) DO NOTHING`), userID, noteURL, s.now().UTC())
	if err != nil {
		return models.Target{}, fmt.Errorf("insert target: %w", err)
	}

	var t models.Target
	err = s.conn.QueryRowContext(ctx, s.q(`
		SELECT id, user_id, note_url, last_comment_count, created_at
		FROM monitor_targets WHERE user_id = ? AND note_url = ?`), userID, noteURL).
		Scan(&t.ID, &t.UserID, &t.URL, &t.LastCommentCount, &t.CreatedAt)
	if err != nil {
		return models.Target{}, fmt.Errorf("load target: %w", err)
	}
	return t, nil
}

func (s *sqlStore) GetLastCommentCount(ctx context.Context, targetID int64) (int, error) {
	var n int
	err := s.conn.QueryRowContext(ctx, s.q(`SELECT last_comment_count FROM monitor_targets WHERE id = ?`), targetID).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("target %d not found", targetID)
	}
	if err != nil {
		return 0, fmt.Errorf("query last comment count: %w", err)
	}
	return n, nil
}

func (s *sqlStore) SetLastCommentCount(ctx context.Context, targetID int64, count int) error {
	res, err := s.conn.ExecContext(ctx, s.q(`
		UPDATE monitor_targets SET last_comment_count = ?, last_checked_at = ? WHERE id = ?`),
		count, s.now().UTC(), targetID)
	if err != nil {
		return fmt.Errorf("update last comment count: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("target %d not found", targetID)
	}
	return nil
}

// --- Comment Methods ---

func (s *sqlStore) CommentExists(ctx context.Context, commentID string) (bool, error) {
	return s.commentExists(ctx, s.conn, commentID)
}

func (s *sqlStore) commentExists(ctx context.Context, db queryer, commentID string) (bool, error) {
	var one int
	err := db.QueryRowContext(ctx, s.q(`SELECT 1 FROM monitor_comments WHERE comment_id = ?`), commentID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query comment: %w", err)
	}
	return true, nil
}

func (s *sqlStore) insertComment(ctx context.Context, db queryer, r models.FlatRecord) (bool, error) {
	res, err := db.ExecContext(ctx, s.q(`
		INSERT INTO monitor_comments (
			comment_id, parent_comment_id, keyword, user_id, note_id, title, note_author,
			note_likes, note_collects, note_comments, note_url, note_time, note_location,
			note_type, note_content, comment_author, comment_content, comment_likes,
			comment_location, comment_time, collected_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (comment_id) DO NOTHING`),
		r.CommentID, r.ParentCommentID, r.Keyword, r.UserID, r.NoteID, r.Title, r.NoteAuthor,
		r.NoteLikes, r.NoteCollects, r.NoteComments, r.NoteURL, nullTime(r.NoteTime), r.NoteLocation,
		r.NoteType, r.NoteContent, r.CommentAuthor, r.CommentContent, r.CommentLikes,
		r.CommentLocation, nullTime(r.CommentTime), r.CollectedAt.UTC())
	if err != nil {
		return false, fmt.Errorf("insert comment %s: %w", r.CommentID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

func (s *sqlStore) InsertComments(ctx context.Context, records []models.FlatRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}

	inserted := 0
	for _, r := range records {
		ok, err := s.insertComment(ctx, tx, r)
		if err != nil {
			tx.Rollback()
			return 0, err
		}
		if ok {
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}

func (s *sqlStore) SaveComments(ctx context.Context, records []models.FlatRecord) (models.SaveResult, error) {
	if len(records) == 0 {
		return models.SaveResult{}, nil
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return models.SaveResult{}, apperrors.Wrap(apperrors.KindPersistence, "save comments", fmt.Errorf("begin tx: %w", err))
	}

	var res models.SaveResult
	for _, r := range records {
		exists, err := s.commentExists(ctx, tx, r.CommentID)
		if err != nil {
			tx.Rollback()
			return models.SaveResult{}, apperrors.Wrap(apperrors.KindPersistence, "save comments", err)
		}
		if exists {
			res.Skipped++
			continue
		}

		// A concurrent pass may have committed the same comment since the check.
		ok, err := s.insertComment(ctx, tx, r)
		if err != nil {
			tx.Rollback()
			return models.SaveResult{}, apperrors.Wrap(apperrors.KindPersistence, "save comments", err)
		}
		if !ok {
			res.Skipped++
			continue
		}
		res.Inserted++
		res.Fresh = append(res.Fresh, r)
	}

	if err := tx.Commit(); err != nil {
		return models.SaveResult{}, apperrors.Wrap(apperrors.KindPersistence, "save comments", fmt.Errorf("commit: %w", err))
	}
	return res, nil
}

// --- Session Methods ---

func (s *sqlStore) listSessions(ctx context.Context, onlyLive bool) ([]models.Session, error) {
	query := `SELECT id, value, is_alive, created_at, last_used_at FROM sessions`
	var args []any
	if onlyLive {
		query += ` WHERE is_alive = ?`
		args = append(args, true)
	}
	query += ` ORDER BY id`

	rows, err := s.conn.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.Session
	for rows.Next() {
		var sess models.Session
		var lastUsed sql.NullTime
		if err := rows.Scan(&sess.ID, &sess.Value, &sess.Alive, &sess.CreatedAt, &lastUsed); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sess.LastUsedAt = lastUsed.Time
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

func (s *sqlStore) ListLiveSessions(ctx context.Context) ([]models.Session, error) {
	return s.listSessions(ctx, true)
}

func (s *sqlStore) ListSessions(ctx context.Context) ([]models.Session, error) {
	return s.listSessions(ctx, false)
}

// MarkSessionDead is idempotent; marking an unknown or dead session is not an error.
func (s *sqlStore) MarkSessionDead(ctx context.Context, sessionID int64) error {
	_, err := s.conn.ExecContext(ctx, s.q(`UPDATE sessions SET is_alive = ? WHERE id = ?`), false, sessionID)
	if err != nil {
		return fmt.Errorf("mark session %d dead: %w", sessionID, err)
	}
	return nil
}

// MarkSessionUsed records when a pass last handed the session out.
func (s *sqlStore) MarkSessionUsed(ctx context.Context, sessionID int64, at time.Time) error {
	_, err := s.conn.ExecContext(ctx, s.q(`UPDATE sessions SET last_used_at = ? WHERE id = ?`), at.UTC(), sessionID)
	if err != nil {
		return fmt.Errorf("mark session %d used: %w", sessionID, err)
	}
	return nil
}

// AddSession stores a cookie string. Adding a known value updates its liveness.
func (s *sqlStore) AddSession(ctx context.Context, value string, alive bool) (models.Session, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return models.Session{}, errors.New("session value is empty")
	}
	if !strings.Contains(value, "=") {
		return models.Session{}, errors.New("session value holds no cookie pair")
	}

	var sess models.Session
	err := s.conn.QueryRowContext(ctx, s.q(`
		INSERT INTO sessions (value, is_alive, created_at) VALUES (?, ?, ?)
		ON CONFLICT (value) DO UPDATE SET is_alive = excluded.is_alive
		RETURNING id, value, is_alive, created_at`), value, alive, s.now().UTC()).
		Scan(&sess.ID, &sess.Value, &sess.Alive, &sess.CreatedAt)
	if err != nil {
		return models.Session{}, fmt.Errorf("insert session: %w", err)
	}
	return sess, nil
}

func (s *sqlStore) CountLiveSessions(ctx context.Context) (int, error) {
	var n int
	if err := s.conn.QueryRowContext(ctx, s.q(`SELECT COUNT(*) FROM sessions WHERE is_alive = ?`), true).Scan(&n); err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return n, nil
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
