package storage

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xhs-monitor/internal/apperrors"
	"xhs-monitor/internal/config"
	"xhs-monitor/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := NewSQLite(filepath.Join(t.TempDir(), "nested", "monitor.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func record(id string) models.FlatRecord {
	return models.FlatRecord{
		Keyword:        "探店",
		UserID:         "a@example.com",
		NoteID:         "n1",
		Title:          "title",
		NoteURL:        "https://www.xiaohongshu.com/explore/n1",
		NoteTime:       time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC),
		CommentID:      id,
		CommentAuthor:  "u",
		CommentContent: "c",
		CollectedAt:    time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC),
	}
}

func TestOpenSelectsSQLite(t *testing.T) {
	db, err := Open(&config.Config{DBDriver: config.DriverSQLite, DBPath: filepath.Join(t.TempDir(), "x.db")})
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, "SQLite", db.DatabaseType())
	assert.NoError(t, db.Ping(context.Background()))
}

func TestSaveCommentsDedupAcrossCalls(t *testing.T) {
	db := newTestStore(t)
	ctx := context.Background()

	first, err := db.SaveComments(ctx, []models.FlatRecord{record("c1")})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Inserted)
	assert.Equal(t, 0, first.Skipped)
	require.Len(t, first.Fresh, 1)

	second, err := db.SaveComments(ctx, []models.FlatRecord{record("c1")})
	require.NoError(t, err)
	assert.Equal(t, 0, second.Inserted)
	assert.Equal(t, 1, second.Skipped)
	assert.Empty(t, second.Fresh)

	exists, err := db.CommentExists(ctx, "c1")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestSaveCommentsTwelveThenRerun(t *testing.T) {
	db := newTestStore(t)
	ctx := context.Background()

	var batch []models.FlatRecord
	for i := 0; i < 12; i++ {
		batch = append(batch, record(fmt.Sprintf("c%02d", i)))
	}

	res, err := db.SaveComments(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, 12, res.Inserted)
	assert.Equal(t, 0, res.Skipped)

	res, err = db.SaveComments(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Inserted)
	assert.Equal(t, 12, res.Skipped)
}

func TestSaveCommentsDuplicateInsideBatch(t *testing.T) {
	db := newTestStore(t)

	res, err := db.SaveComments(context.Background(), []models.FlatRecord{record("c1"), record("c1"), record("c2")})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Inserted)
	assert.Equal(t, 1, res.Skipped)
}

func TestSaveCommentsRollsBackOnFailure(t *testing.T) {
	db := newTestStore(t)
	ctx := context.Background()

	_, err := db.conn.Exec(`CREATE TRIGGER reject_bad BEFORE INSERT ON monitor_comments
		WHEN NEW.comment_id = 'bad' BEGIN SELECT RAISE(ABORT, 'rejected'); END;`)
	require.NoError(t, err)

	res, err := db.SaveComments(ctx, []models.FlatRecord{record("ok1"), record("bad"), record("ok2")})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrPersistence)
	assert.Equal(t, models.SaveResult{}, res)

	exists, err := db.CommentExists(ctx, "ok1")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSaveCommentsConcurrentPasses(t *testing.T) {
	db := newTestStore(t)
	ctx := context.Background()

	batch := []models.FlatRecord{record("c1"), record("c2"), record("c3")}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		inserted int
		skipped  int
	)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := db.SaveComments(ctx, batch)
			assert.NoError(t, err)
			mu.Lock()
			inserted += res.Inserted
			skipped += res.Skipped
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, inserted)
	assert.Equal(t, 9, skipped)
}

func TestInsertComments(t *testing.T) {
	db := newTestStore(t)

	n, err := db.InsertComments(context.Background(), []models.FlatRecord{record("a"), record("b"), record("a")})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestTargets(t *testing.T) {
	db := newTestStore(t)
	ctx := context.Background()

	t1, err := db.AddMonitorTarget(ctx, "a@example.com", "https://www.xiaohongshu.com/explore/n1?xsec_token=t")
	require.NoError(t, err)
	again, err := db.AddMonitorTarget(ctx, "a@example.com", "https://www.xiaohongshu.com/explore/n1?xsec_token=t")
	require.NoError(t, err)
	assert.Equal(t, t1.ID, again.ID)

	_, err = db.AddMonitorTarget(ctx, "b@example.com", "https://www.xiaohongshu.com/explore/n2?xsec_token=t")
	require.NoError(t, err)

	targets, err := db.GetMonitorTargets(ctx, "a@example.com")
	require.NoError(t, err)
	require.Len(t, targets, 1)
	assert.Equal(t, 0, targets[0].LastCommentCount)

	require.NoError(t, db.SetLastCommentCount(ctx, t1.ID, 12))
	n, err := db.GetLastCommentCount(ctx, t1.ID)
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	assert.Error(t, db.SetLastCommentCount(ctx, 999, 1))
	_, err = db.GetLastCommentCount(ctx, 999)
	assert.Error(t, err)
}

func TestSessions(t *testing.T) {
	db := newTestStore(t)
	ctx := context.Background()

	s1, err := db.AddSession(ctx, "a1=1; web_session=x", true)
	require.NoError(t, err)
	s2, err := db.AddSession(ctx, "a1=2; web_session=y", true)
	require.NoError(t, err)
	_, err = db.AddSession(ctx, "a1=3; web_session=z", false)
	require.NoError(t, err)

	_, err = db.AddSession(ctx, "  ", true)
	assert.Error(t, err)
	_, err = db.AddSession(ctx, "garbage-no-equals", true)
	assert.ErrorContains(t, err, "no cookie pair")

	n, err := db.CountLiveSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, db.MarkSessionDead(ctx, s1.ID))
	require.NoError(t, db.MarkSessionDead(ctx, s1.ID))

	live, err := db.ListLiveSessions(ctx)
	require.NoError(t, err)
	require.Len(t, live, 1)
	assert.Equal(t, s2.ID, live[0].ID)
	assert.True(t, live[0].Alive)

	revived, err := db.AddSession(ctx, "a1=1; web_session=x", true)
	require.NoError(t, err)
	assert.Equal(t, s1.ID, revived.ID)

	all, err := db.ListSessions(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestMarkSessionUsed(t *testing.T) {
	db := newTestStore(t)
	ctx := context.Background()

	s1, err := db.AddSession(ctx, "a1=1", true)
	require.NoError(t, err)
	s2, err := db.AddSession(ctx, "a1=2", true)
	require.NoError(t, err)

	at := time.Date(2025, 6, 1, 8, 30, 0, 0, time.UTC)
	require.NoError(t, db.MarkSessionUsed(ctx, s1.ID, at))

	live, err := db.ListLiveSessions(ctx)
	require.NoError(t, err)
	require.Len(t, live, 2)
	assert.Equal(t, s1.ID, live[0].ID)
	assert.True(t, live[0].LastUsedAt.Equal(at), "got %v", live[0].LastUsedAt)
	assert.Equal(t, s2.ID, live[1].ID)
	assert.True(t, live[1].LastUsedAt.IsZero())
}

func TestMigrateAddsLastUsedColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.db")
	legacy, err := sql.Open("sqlite", "file:"+path)
	require.NoError(t, err)
	_, err = legacy.Exec(`CREATE TABLE sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		value TEXT NOT NULL UNIQUE,
		is_alive INTEGER NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL
	)`)
	require.NoError(t, err)
	_, err = legacy.Exec(`INSERT INTO sessions (value, is_alive, created_at) VALUES ('a1=old', 1, ?)`, time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, legacy.Close())

	db, err := NewSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	live, err := db.ListLiveSessions(context.Background())
	require.NoError(t, err)
	require.Len(t, live, 1)
	assert.True(t, live[0].LastUsedAt.IsZero())
	require.NoError(t, db.MarkSessionUsed(context.Background(), live[0].ID, time.Now()))
}

func TestRebindForNumberedPlaceholders(t *testing.T) {
	s := &sqlStore{numbered: true}
	assert.Equal(t, "SELECT 1 WHERE a = $1 AND b = $2", s.q("SELECT 1 WHERE a = ? AND b = ?"))

	s.numbered = false
	assert.Equal(t, "a = ?", s.q("a = ?"))
}
