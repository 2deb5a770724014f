package monitor

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"xhs-monitor/internal/apperrors"
	"xhs-monitor/internal/locator"
	"xhs-monitor/internal/models"
	"xhs-monitor/internal/notify"
	"xhs-monitor/internal/observability"
	"xhs-monitor/internal/scraper"
	"xhs-monitor/internal/session"
	"xhs-monitor/internal/storage"
)

// Orchestrator drives a single (user, target) pass through
// LOCATE -> INSPECT -> {UNCHANGED | CRAWL -> MERGE -> PERSIST}.
type Orchestrator struct {
	locator   *locator.Locator
	inspector scraper.Inspector
	walker    scraper.Walker
	store     storage.Store
	notifier  notify.Notifier
	metrics   *observability.Collector
	logger    *zap.Logger
	now       func() time.Time
}

func NewOrchestrator(
	loc *locator.Locator,
	inspector scraper.Inspector,
	walker scraper.Walker,
	store storage.Store,
	notifier notify.Notifier,
	metrics *observability.Collector,
	logger *zap.Logger,
) *Orchestrator {
	if loc == nil {
		loc = locator.New("")
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		locator:   loc,
		inspector: inspector,
		walker:    walker,
		store:     store,
		notifier:  notifier,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// pass is the mutable state of one Run call.
type pass struct {
	pool    *session.Pool
	current models.Session
	held    bool
	result  *models.TargetResult
}

// Run never returns an error: every failure ends up in the result together with the step it
// happened at and the sessions invalidated on the way.
func (o *Orchestrator) Run(ctx context.Context, pool *session.Pool, target models.Target, userID, keyword string) models.TargetResult {
	result := models.TargetResult{
		TargetID:            target.ID,
		URL:                 target.URL,
		InvalidatedSessions: []int64{},
	}
	p := &pass{pool: pool, result: &result}

	log := o.logger.With(
		zap.String("user_id", userID),
		zap.Int64("target_id", target.ID))

	// LOCATE
	loc, err := o.locator.Normalize(target.URL)
	if err != nil {
		return o.fail(log, result, models.StepLocate, err)
	}
	result.NoteID = loc.NoteID
	log = log.With(zap.String("note_id", loc.NoteID))

	// INSPECT
	var snap models.PostSnapshot
	err = o.withSession(ctx, log, p, models.StepInspect, func(s models.Session) error {
		var err error
		snap, err = o.inspector.FetchSnapshot(ctx, s, loc)
		return err
	})
	if err != nil {
		return o.fail(log, result, models.StepInspect, err)
	}
	result.CurrentCount = snap.CommentCount

	last, err := o.store.GetLastCommentCount(ctx, target.ID)
	if err != nil {
		return o.fail(log, result, models.StepInspect, apperrors.Wrap(apperrors.KindPersistence, "read last comment count", err))
	}
	result.PreviousCount = last

	if !ShouldCrawl(last, snap.CommentCount) {
		result.State = models.StateUnchanged
		o.metrics.RecordPass(string(result.State))
		log.Info("comment count unchanged", zap.Int("count", last))
		return result
	}

	log.Info("comment count changed",
		zap.Int("previous", last),
		zap.Int("count", snap.CommentCount))

	// CRAWL
	var comments []models.CommentRecord
	err = o.withSession(ctx, log, p, models.StepCrawl, func(s models.Session) error {
		var err error
		comments, err = o.walker.FetchAllComments(ctx, s, loc)
		return err
	})

	// The observed count is recorded once the crawl step is over, whatever its outcome.
	if setErr := o.store.SetLastCommentCount(context.WithoutCancel(ctx), target.ID, snap.CommentCount); setErr != nil {
		log.Warn("failed to record comment count", zap.Error(setErr))
	}

	if err != nil {
		return o.fail(log, result, models.StepCrawl, err)
	}
	result.Fetched = len(comments)

	// MERGE
	records := Flatten(snap, comments, userID, keyword, o.now().UTC())

	// PERSIST
	saved, err := o.store.SaveComments(ctx, records)
	if err != nil {
		return o.fail(log, result, models.StepPersist, err)
	}
	result.Inserted = saved.Inserted
	result.Skipped = saved.Skipped
	result.State = models.StateDone
	o.metrics.RecordSave(saved.Inserted, saved.Skipped)
	o.metrics.RecordPass(string(result.State))

	log.Info("target pass completed",
		zap.Int("fetched", result.Fetched),
		zap.Int("inserted", saved.Inserted),
		zap.Int("skipped", saved.Skipped))

	if len(saved.Fresh) > 0 {
		if err := o.notifier.NotifyNewComments(ctx, snap, saved.Fresh); err != nil {
			log.Warn("failed to send notification", zap.Error(err))
		}
	}

	return result
}

// withSession runs fn with the pass's session, acquiring one if none is held yet. When fn
// reports AuthRejected the session is invalidated and fn is retried exactly once with a fresh
// session; a second rejection invalidates that session too and is returned.
func (o *Orchestrator) withSession(ctx context.Context, log *zap.Logger, p *pass, step models.Step, fn func(models.Session) error) error {
	if !p.held {
		s, err := p.pool.Acquire()
		if err != nil {
			return err
		}
		p.current, p.held = s, true
	}

	err := fn(p.current)
	if !errors.Is(err, apperrors.ErrAuthRejected) {
		return err
	}

	o.invalidate(log, p, step)

	s, acqErr := p.pool.Acquire()
	if acqErr != nil {
		return acqErr
	}
	p.current, p.held = s, true

	log.Info("retrying with a new session", zap.String("step", string(step)), zap.Int64("session_id", s.ID))

	err = fn(p.current)
	if errors.Is(err, apperrors.ErrAuthRejected) {
		o.invalidate(log, p, step)
	}
	return err
}

func (o *Orchestrator) invalidate(log *zap.Logger, p *pass, step models.Step) {
	dead := p.current
	p.held = false

	if p.pool.Invalidate(dead) {
		p.result.InvalidatedSessions = append(p.result.InvalidatedSessions, dead.ID)
		o.metrics.RecordInvalidation()
	}
	o.metrics.SetLiveSessions(p.pool.Count())

	log.Warn("session rejected by platform",
		zap.String("step", string(step)),
		zap.Int64("session_id", dead.ID),
		zap.Int("live_sessions", p.pool.Count()))
}

func (o *Orchestrator) fail(log *zap.Logger, result models.TargetResult, step models.Step, err error) models.TargetResult {
	result.State = models.StateFailed
	result.FailedStep = step
	result.ErrorKind = errorKind(err)
	result.Error = err.Error()
	o.metrics.RecordPass(string(result.State))

	log.Error("target pass failed",
		zap.String("step", string(step)),
		zap.String("kind", result.ErrorKind),
		zap.Error(err))
	return result
}

func errorKind(err error) string {
	if kind := apperrors.KindOf(err); kind != "" {
		return string(kind)
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "Timeout"
	case errors.Is(err, context.Canceled):
		return "Cancelled"
	default:
		return "Unknown"
	}
}
