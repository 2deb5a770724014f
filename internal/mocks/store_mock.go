package mocks

import (
	"context"
	"time"

	"xhs-monitor/internal/models"
	"xhs-monitor/internal/parser"
)

// MockStore implements storage.Store. Unset funcs return zero values.
type MockStore struct {
	PingFunc                func(ctx context.Context) error
	GetMonitorTargetsFunc   func(ctx context.Context, userID string) ([]models.Target, error)
	AddMonitorTargetFunc    func(ctx context.Context, userID, noteURL string) (models.Target, error)
	GetLastCommentCountFunc func(ctx context.Context, targetID int64) (int, error)
	SetLastCommentCountFunc func(ctx context.Context, targetID int64, count int) error
	CommentExistsFunc       func(ctx context.Context, commentID string) (bool, error)
	InsertCommentsFunc      func(ctx context.Context, records []models.FlatRecord) (int, error)
	SaveCommentsFunc        func(ctx context.Context, records []models.FlatRecord) (models.SaveResult, error)
	ListLiveSessionsFunc    func(ctx context.Context) ([]models.Session, error)
	ListSessionsFunc        func(ctx context.Context) ([]models.Session, error)
	MarkSessionDeadFunc     func(ctx context.Context, sessionID int64) error
	MarkSessionUsedFunc     func(ctx context.Context, sessionID int64, at time.Time) error
	AddSessionFunc          func(ctx context.Context, value string, alive bool) (models.Session, error)
	CountLiveSessionsFunc   func(ctx context.Context) (int, error)
}

func (m *MockStore) Close() error { return nil }

func (m *MockStore) DatabaseType() string { return "Mock" }

func (m *MockStore) Ping(ctx context.Context) error {
	if m.PingFunc == nil {
		return nil
	}
	return m.PingFunc(ctx)
}

func (m *MockStore) GetMonitorTargets(ctx context.Context, userID string) ([]models.Target, error) {
	if m.GetMonitorTargetsFunc == nil {
		return nil, nil
	}
	return m.GetMonitorTargetsFunc(ctx, userID)
}

func (m *MockStore) AddMonitorTarget(ctx context.Context, userID, noteURL string) (models.Target, error) {
	if m.AddMonitorTargetFunc == nil {
		return models.Target{}, nil
	}
	return m.AddMonitorTargetFunc(ctx, userID, noteURL)
}

func (m *MockStore) GetLastCommentCount(ctx context.Context, targetID int64) (int, error) {
	if m.GetLastCommentCountFunc == nil {
		return 0, nil
	}
	return m.GetLastCommentCountFunc(ctx, targetID)
}

func (m *MockStore) SetLastCommentCount(ctx context.Context, targetID int64, count int) error {
	if m.SetLastCommentCountFunc == nil {
		return nil
	}
	return m.SetLastCommentCountFunc(ctx, targetID, count)
}

func (m *MockStore) CommentExists(ctx context.Context, commentID string) (bool, error) {
	if m.CommentExistsFunc == nil {
		return false, nil
	}
	return m.CommentExistsFunc(ctx, commentID)
}

func (m *MockStore) InsertComments(ctx context.Context, records []models.FlatRecord) (int, error) {
	if m.InsertCommentsFunc == nil {
		return 0, nil
	}
	return m.InsertCommentsFunc(ctx, records)
}

func (m *MockStore) SaveComments(ctx context.Context, records []models.FlatRecord) (models.SaveResult, error) {
	if m.SaveCommentsFunc == nil {
		return models.SaveResult{}, nil
	}
	return m.SaveCommentsFunc(ctx, records)
}

func (m *MockStore) ListLiveSessions(ctx context.Context) ([]models.Session, error) {
	if m.ListLiveSessionsFunc == nil {
		return nil, nil
	}
	return m.ListLiveSessionsFunc(ctx)
}

func (m *MockStore) ListSessions(ctx context.Context) ([]models.Session, error) {
	if m.ListSessionsFunc == nil {
		return nil, nil
	}
	return m.ListSessionsFunc(ctx)
}

func (m *MockStore) MarkSessionDead(ctx context.Context, sessionID int64) error {
	if m.MarkSessionDeadFunc == nil {
		return nil
	}
	return m.MarkSessionDeadFunc(ctx, sessionID)
}

func (m *MockStore) MarkSessionUsed(ctx context.Context, sessionID int64, at time.Time) error {
	if m.MarkSessionUsedFunc == nil {
		return nil
	}
	return m.MarkSessionUsedFunc(ctx, sessionID, at)
}

func (m *MockStore) AddSession(ctx context.Context, value string, alive bool) (models.Session, error) {
	if m.AddSessionFunc == nil {
		return models.Session{}, nil
	}
	return m.AddSessionFunc(ctx, value, alive)
}

func (m *MockStore) CountLiveSessions(ctx context.Context) (int, error) {
	if m.CountLiveSessionsFunc == nil {
		return 0, nil
	}
	return m.CountLiveSessionsFunc(ctx)
}

type MockInspector struct {
	FetchSnapshotFunc func(ctx context.Context, session models.Session, loc models.Locator) (models.PostSnapshot, error)
}

func (m *MockInspector) FetchSnapshot(ctx context.Context, session models.Session, loc models.Locator) (models.PostSnapshot, error) {
	return m.FetchSnapshotFunc(ctx, session, loc)
}

type MockWalker struct {
	FetchAllCommentsFunc func(ctx context.Context, session models.Session, loc models.Locator) ([]models.CommentRecord, error)
}

func (m *MockWalker) FetchAllComments(ctx context.Context, session models.Session, loc models.Locator) ([]models.CommentRecord, error) {
	return m.FetchAllCommentsFunc(ctx, session, loc)
}

type MockSearcher struct {
	SearchNotesFunc func(ctx context.Context, session models.Session, keyword string, page int) (parser.SearchPage, error)
}

func (m *MockSearcher) SearchNotes(ctx context.Context, session models.Session, keyword string, page int) (parser.SearchPage, error) {
	return m.SearchNotesFunc(ctx, session, keyword, page)
}

type MockNotifier struct {
	NotifyNewCommentsFunc func(ctx context.Context, snap models.PostSnapshot, records []models.FlatRecord) error
}

func (m *MockNotifier) NotifyNewComments(ctx context.Context, snap models.PostSnapshot, records []models.FlatRecord) error {
	if m.NotifyNewCommentsFunc == nil {
		return nil
	}
	return m.NotifyNewCommentsFunc(ctx, snap, records)
}
