package mocks

import (
	"context"

	"xhs-monitor/internal/models"
)

// MockMonitorService implements monitor.MonitorService.
type MockMonitorService struct {
	RunMonitorPassFunc    func(ctx context.Context, userID, keyword string) models.PassResult
	AddSessionFunc        func(ctx context.Context, value string, alive bool) (models.Session, error)
	CountLiveSessionsFunc func(ctx context.Context) (int, error)
	ListSessionsFunc      func(ctx context.Context) ([]models.Session, error)
	AddTargetFunc         func(ctx context.Context, userID, rawURL string) (models.Target, error)
	ListTargetsFunc       func(ctx context.Context, userID string) ([]models.Target, error)
	HealthFunc            func(ctx context.Context) models.HealthResponse
	SearchNotesFunc       func(ctx context.Context, keyword string, limit int) ([]models.SearchHit, error)
	NoteInfoFunc          func(ctx context.Context, rawURL string) (models.PostSnapshot, error)
	NoteCommentsFunc      func(ctx context.Context, rawURL string) ([]models.CommentRecord, error)
}

func (m *MockMonitorService) RunMonitorPass(ctx context.Context, userID, keyword string) models.PassResult {
	return m.RunMonitorPassFunc(ctx, userID, keyword)
}

func (m *MockMonitorService) AddSession(ctx context.Context, value string, alive bool) (models.Session, error) {
	return m.AddSessionFunc(ctx, value, alive)
}

func (m *MockMonitorService) CountLiveSessions(ctx context.Context) (int, error) {
	return m.CountLiveSessionsFunc(ctx)
}

func (m *MockMonitorService) ListSessions(ctx context.Context) ([]models.Session, error) {
	return m.ListSessionsFunc(ctx)
}

func (m *MockMonitorService) AddTarget(ctx context.Context, userID, rawURL string) (models.Target, error) {
	return m.AddTargetFunc(ctx, userID, rawURL)
}

func (m *MockMonitorService) ListTargets(ctx context.Context, userID string) ([]models.Target, error) {
	return m.ListTargetsFunc(ctx, userID)
}

func (m *MockMonitorService) Health(ctx context.Context) models.HealthResponse {
	return m.HealthFunc(ctx)
}

func (m *MockMonitorService) SearchNotes(ctx context.Context, keyword string, limit int) ([]models.SearchHit, error) {
	return m.SearchNotesFunc(ctx, keyword, limit)
}

func (m *MockMonitorService) NoteInfo(ctx context.Context, rawURL string) (models.PostSnapshot, error) {
	return m.NoteInfoFunc(ctx, rawURL)
}

func (m *MockMonitorService) NoteComments(ctx context.Context, rawURL string) ([]models.CommentRecord, error) {
	return m.NoteCommentsFunc(ctx, rawURL)
}
