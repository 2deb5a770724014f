package monitor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"xhs-monitor/internal/client"
	"xhs-monitor/internal/config"
	"xhs-monitor/internal/locator"
	"xhs-monitor/internal/models"
	"xhs-monitor/internal/notify"
	"xhs-monitor/internal/observability"
	"xhs-monitor/internal/parser"
	"xhs-monitor/internal/scraper"
	"xhs-monitor/internal/session"
	"xhs-monitor/internal/storage"
)

// MonitorService is the engine's invocation surface shared by the HTTP front end and the CLI.
type MonitorService interface {
	RunMonitorPass(ctx context.Context, userID, keyword string) models.PassResult
	AddSession(ctx context.Context, value string, alive bool) (models.Session, error)
	CountLiveSessions(ctx context.Context) (int, error)
	ListSessions(ctx context.Context) ([]models.Session, error)
	AddTarget(ctx context.Context, userID, rawURL string) (models.Target, error)
	ListTargets(ctx context.Context, userID string) ([]models.Target, error)
	Health(ctx context.Context) models.HealthResponse

	// Ad hoc reads. They draw on the same session pool as monitoring passes but store nothing
	// except session state.
	SearchNotes(ctx context.Context, keyword string, limit int) ([]models.SearchHit, error)
	NoteInfo(ctx context.Context, rawURL string) (models.PostSnapshot, error)
	NoteComments(ctx context.Context, rawURL string) ([]models.CommentRecord, error)
}

const (
	// DefaultSearchLimit applies when SearchNotes is called without a limit.
	DefaultSearchLimit = 10
	// MaxSearchLimit caps how many posts one search returns.
	MaxSearchLimit = 200
)

// ErrInvalidSession rejects a session value that could never sign a request.
var ErrInvalidSession = errors.New("invalid session")

type monitorService struct {
	store        storage.Store
	orchestrator *Orchestrator
	locator      *locator.Locator
	inspector    scraper.Inspector
	walker       scraper.Walker
	searcher     scraper.Searcher
	policy       session.Policy
	concurrency  int
	passTimeout  time.Duration
	metrics      *observability.Collector
	logger       *zap.Logger
	now          func() time.Time
}

func NewMonitorService(
	cfg *config.Config,
	store storage.Store,
	inspector scraper.Inspector,
	walker scraper.Walker,
	searcher scraper.Searcher,
	notifier notify.Notifier,
	metrics *observability.Collector,
	logger *zap.Logger,
) (MonitorService, error) {
	policy, err := session.ParsePolicy(cfg.SessionPolicy)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	concurrency := cfg.MaxConcurrentPasses
	if concurrency < 1 {
		concurrency = 1
	}

	loc := locator.New(cfg.WebBaseURL)

	return &monitorService{
		store:        store,
		orchestrator: NewOrchestrator(loc, inspector, walker, store, notifier, metrics, logger),
		locator:      loc,
		inspector:    inspector,
		walker:       walker,
		searcher:     searcher,
		policy:       policy,
		concurrency:  concurrency,
		passTimeout:  cfg.PassTimeout,
		metrics:      metrics,
		logger:       logger,
		now:          time.Now,
	}, nil
}

// RunMonitorPass runs one pass over every target the user subscribed to. Targets run
// concurrently up to the configured limit, all sharing one session pool. Sessions invalidated
// along the way are marked dead in the store before returning.
func (s *monitorService) RunMonitorPass(ctx context.Context, userID, keyword string) models.PassResult {
	result := models.PassResult{
		RunID:               uuid.New().String(),
		UserID:              userID,
		Keyword:             keyword,
		Targets:             []models.TargetResult{},
		InvalidatedSessions: []int64{},
	}
	log := s.logger.With(zap.String("run_id", result.RunID), zap.String("user_id", userID))

	finish := func(success bool, message string) models.PassResult {
		result.Success = success
		result.Message = message
		result.Timestamp = s.now().UTC()
		return result
	}

	targets, err := s.store.GetMonitorTargets(ctx, userID)
	if err != nil {
		log.Error("failed to load monitor targets", zap.Error(err))
		return finish(false, fmt.Sprintf("failed to load monitor targets: %v", err))
	}
	if len(targets) == 0 {
		log.Info("no monitor targets")
		return finish(false, "no monitor targets for user")
	}

	live, err := s.store.ListLiveSessions(ctx)
	if err != nil {
		log.Error("failed to load sessions", zap.Error(err))
		return finish(false, fmt.Sprintf("failed to load sessions: %v", err))
	}

	pool := session.NewPool(s.policy, session.WithClock(s.now))
	pool.Load(live)
	s.metrics.SetLiveSessions(pool.Count())

	log.Info("monitor pass started",
		zap.String("keyword", keyword),
		zap.Int("targets", len(targets)),
		zap.Int("live_sessions", pool.Count()))

	results := make([]models.TargetResult, len(targets))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, target := range targets {
		g.Go(func() error {
			tctx := ctx
			if s.passTimeout > 0 {
				var cancel context.CancelFunc
				tctx, cancel = context.WithTimeout(ctx, s.passTimeout)
				defer cancel()
			}
			results[i] = s.orchestrator.Run(tctx, pool, target, userID, keyword)
			return nil
		})
	}
	_ = g.Wait()

	result.Targets = results

	var done, unchanged, failed int
	for _, r := range results {
		switch r.State {
		case models.StateDone:
			done++
		case models.StateUnchanged:
			unchanged++
		default:
			failed++
		}
		result.InvalidatedSessions = append(result.InvalidatedSessions, r.InvalidatedSessions...)
	}

	s.persistSessionUsage(ctx, log, pool.Used())
	s.persistDeadSessions(ctx, log, result.InvalidatedSessions)

	message := fmt.Sprintf("processed %d targets: %d updated, %d unchanged, %d failed",
		len(results), done, unchanged, failed)
	log.Info("monitor pass finished",
		zap.Int("updated", done),
		zap.Int("unchanged", unchanged),
		zap.Int("failed", failed),
		zap.Int64s("invalidated_sessions", result.InvalidatedSessions))

	return finish(failed == 0, message)
}

// persistSessionUsage writes acquisition times back so the next pass's pool continues the
// least-recently-used rotation instead of starting over.
func (s *monitorService) persistSessionUsage(ctx context.Context, log *zap.Logger, used map[int64]time.Time) {
	ctx = context.WithoutCancel(ctx)
	for id, at := range used {
		if err := s.store.MarkSessionUsed(ctx, id, at); err != nil {
			log.Warn("failed to record session use", zap.Int64("session_id", id), zap.Error(err))
		}
	}
}

// persistDeadSessions runs even when ctx is already cancelled so pool state survives shutdown.
func (s *monitorService) persistDeadSessions(ctx context.Context, log *zap.Logger, ids []int64) {
	ctx = context.WithoutCancel(ctx)
	for _, id := range ids {
		if err := s.store.MarkSessionDead(ctx, id); err != nil {
			log.Error("failed to mark session dead", zap.Int64("session_id", id), zap.Error(err))
		}
	}
}

func (s *monitorService) AddSession(ctx context.Context, value string, alive bool) (models.Session, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return models.Session{}, fmt.Errorf("%w: value is empty", ErrInvalidSession)
	}
	if len(client.ParseCookieString(value)) == 0 {
		return models.Session{}, fmt.Errorf("%w: value holds no cookie pair", ErrInvalidSession)
	}

	sess, err := s.store.AddSession(ctx, value, alive)
	if err != nil {
		return models.Session{}, fmt.Errorf("add session: %w", err)
	}

	s.logger.Info("session provisioned", zap.Int64("session_id", sess.ID), zap.Bool("alive", sess.Alive))
	return sess, nil
}

func (s *monitorService) CountLiveSessions(ctx context.Context) (int, error) {
	n, err := s.store.CountLiveSessions(ctx)
	if err != nil {
		return 0, fmt.Errorf("count live sessions: %w", err)
	}
	s.metrics.SetLiveSessions(n)
	return n, nil
}

func (s *monitorService) ListSessions(ctx context.Context) ([]models.Session, error) {
	sessions, err := s.store.ListSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// AddTarget subscribes userID to a post. The URL must be one the locator understands.
func (s *monitorService) AddTarget(ctx context.Context, userID, rawURL string) (models.Target, error) {
	if _, err := s.locator.Normalize(rawURL); err != nil {
		return models.Target{}, err
	}

	target, err := s.store.AddMonitorTarget(ctx, userID, strings.TrimSpace(rawURL))
	if err != nil {
		return models.Target{}, fmt.Errorf("add monitor target: %w", err)
	}

	s.logger.Info("monitor target added", zap.String("user_id", userID), zap.Int64("target_id", target.ID))
	return target, nil
}

func (s *monitorService) ListTargets(ctx context.Context, userID string) ([]models.Target, error) {
	targets, err := s.store.GetMonitorTargets(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list monitor targets: %w", err)
	}
	return targets, nil
}

// openReadPass loads the live sessions into a pool for one ad hoc read.
func (s *monitorService) openReadPass(ctx context.Context) (*pass, error) {
	live, err := s.store.ListLiveSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load sessions: %w", err)
	}
	pool := session.NewPool(s.policy, session.WithClock(s.now))
	pool.Load(live)
	return &pass{pool: pool, result: &models.TargetResult{InvalidatedSessions: []int64{}}}, nil
}

// closeReadPass writes back what the read did to its sessions.
func (s *monitorService) closeReadPass(ctx context.Context, log *zap.Logger, p *pass) {
	s.persistSessionUsage(ctx, log, p.pool.Used())
	s.persistDeadSessions(ctx, log, p.result.InvalidatedSessions)
}

// SearchNotes pages through keyword search results until limit distinct posts are collected
// or the platform reports no more. The hits' URLs can be passed straight to AddTarget.
func (s *monitorService) SearchNotes(ctx context.Context, keyword string, limit int) ([]models.SearchHit, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, fmt.Errorf("search keyword is empty")
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	limit = min(limit, MaxSearchLimit)

	log := s.logger.With(zap.String("keyword", keyword))

	p, err := s.openReadPass(ctx)
	if err != nil {
		return nil, err
	}
	defer s.closeReadPass(ctx, log, p)

	hits := []models.SearchHit{}
	seen := make(map[string]bool)
	maxPages := (MaxSearchLimit + client.SearchPageSize - 1) / client.SearchPageSize

	for page := 1; page <= maxPages && len(hits) < limit; page++ {
		var res parser.SearchPage
		err := s.orchestrator.withSession(ctx, log, p, models.StepSearch, func(sess models.Session) error {
			var err error
			res, err = s.searcher.SearchNotes(ctx, sess, keyword, page)
			return err
		})
		if err != nil {
			log.Error("search failed", zap.Int("page", page), zap.Error(err))
			return nil, err
		}

		for _, hit := range res.Hits {
			if seen[hit.NoteID] || len(hits) == limit {
				continue
			}
			seen[hit.NoteID] = true
			hits = append(hits, hit)
		}
		if !res.HasMore || len(res.Hits) == 0 {
			break
		}
	}

	log.Info("search finished", zap.Int("hits", len(hits)))
	return hits, nil
}

// NoteInfo reads a post's current metadata without touching any monitor target.
func (s *monitorService) NoteInfo(ctx context.Context, rawURL string) (models.PostSnapshot, error) {
	loc, err := s.locator.Normalize(rawURL)
	if err != nil {
		return models.PostSnapshot{}, err
	}
	log := s.logger.With(zap.String("note_id", loc.NoteID))

	p, err := s.openReadPass(ctx)
	if err != nil {
		return models.PostSnapshot{}, err
	}
	defer s.closeReadPass(ctx, log, p)

	var snap models.PostSnapshot
	err = s.orchestrator.withSession(ctx, log, p, models.StepInspect, func(sess models.Session) error {
		var err error
		snap, err = s.inspector.FetchSnapshot(ctx, sess, loc)
		return err
	})
	if err != nil {
		return models.PostSnapshot{}, err
	}
	return snap, nil
}

// NoteComments walks a post's full comment tree without persisting it.
func (s *monitorService) NoteComments(ctx context.Context, rawURL string) ([]models.CommentRecord, error) {
	loc, err := s.locator.Normalize(rawURL)
	if err != nil {
		return nil, err
	}
	log := s.logger.With(zap.String("note_id", loc.NoteID))

	p, err := s.openReadPass(ctx)
	if err != nil {
		return nil, err
	}
	defer s.closeReadPass(ctx, log, p)

	var comments []models.CommentRecord
	err = s.orchestrator.withSession(ctx, log, p, models.StepCrawl, func(sess models.Session) error {
		var err error
		comments, err = s.walker.FetchAllComments(ctx, sess, loc)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Info("comments fetched", zap.Int("count", len(comments)))
	if comments == nil {
		comments = []models.CommentRecord{}
	}
	return comments, nil
}

func (s *monitorService) Health(ctx context.Context) models.HealthResponse {
	resp := models.HealthResponse{Status: "healthy", Database: s.store.DatabaseType()}

	if err := s.store.Ping(ctx); err != nil {
		resp.Status = "unhealthy"
		resp.Message = fmt.Sprintf("database ping failed: %v", err)
		return resp
	}

	n, err := s.CountLiveSessions(ctx)
	if err != nil {
		resp.Status = "unhealthy"
		resp.Message = err.Error()
		return resp
	}
	resp.LiveSessions = n
	return resp
}
