package scraper

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"xhs-monitor/internal/apperrors"
	"xhs-monitor/internal/client"
	"xhs-monitor/internal/models"
	"xhs-monitor/internal/parser"
)

// DefaultReplyDelay is the pause before every reply-page request.
const DefaultReplyDelay = 2 * time.Second

// Walker retrieves a post's full comment tree.
type Walker interface {
	FetchAllComments(ctx context.Context, session models.Session, loc models.Locator) ([]models.CommentRecord, error)
}

type commentWalker struct {
	client client.XhsClientInterface
	parser parser.Parser
	delay  time.Duration
	logger *zap.Logger
}

func NewCommentWalker(c client.XhsClientInterface, p parser.Parser, replyDelay time.Duration, logger *zap.Logger) Walker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &commentWalker{client: c, parser: p, delay: replyDelay, logger: logger}
}

// replyTask is one comment thread whose remaining reply pages still need to be drained.
type replyTask struct {
	rootID string
	cursor string
}

// FetchAllComments returns top-level comments in page order, each followed by its inlined
// replies and then any further reply pages. It returns either the whole tree or an error.
func (w *commentWalker) FetchAllComments(ctx context.Context, session models.Session, loc models.Locator) ([]models.CommentRecord, error) {
	var out []models.CommentRecord

	cursor := ""
	seen := map[string]bool{}
	pages := 0

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := w.client.FetchCommentPage(ctx, session, loc, cursor)
		if err != nil {
			return nil, w.fetchError(ctx, "fetch comment page", err)
		}

		page, err := w.parser.ParseCommentPage(resp.StatusCode, resp.Body)
		if err != nil {
			return nil, err
		}
		pages++

		for _, thread := range page.Threads {
			out = append(out, thread.Comment)
			out = append(out, thread.Replies...)

			if !thread.HasMoreReplies {
				continue
			}
			replies, err := w.drainReplies(ctx, session, loc, replyTask{rootID: thread.Comment.ID, cursor: thread.ReplyCursor})
			if err != nil {
				return nil, err
			}
			out = append(out, replies...)
		}

		w.logger.Debug("comment page fetched",
			zap.String("note_id", loc.NoteID),
			zap.String("cursor", cursor),
			zap.Int("threads", len(page.Threads)),
			zap.Bool("has_more", page.HasMore))

		if !page.HasMore {
			break
		}
		if page.Cursor == "" || page.Cursor == cursor || seen[page.Cursor] {
			return nil, apperrors.New(apperrors.KindCommentFetch, "fetch comment page", "has_more set but cursor did not advance")
		}
		seen[cursor] = true
		cursor = page.Cursor
	}

	w.logger.Info("comments fetched",
		zap.String("note_id", loc.NoteID),
		zap.Int("pages", pages),
		zap.Int("count", len(out)))

	return out, nil
}

// drainReplies follows one thread's reply cursor until the platform reports no more pages.
func (w *commentWalker) drainReplies(ctx context.Context, session models.Session, loc models.Locator, task replyTask) ([]models.CommentRecord, error) {
	var out []models.CommentRecord
	seen := map[string]bool{}

	for {
		if err := w.wait(ctx); err != nil {
			return nil, err
		}

		resp, err := w.client.FetchSubCommentPage(ctx, session, loc, task.rootID, task.cursor)
		if err != nil {
			return nil, w.fetchError(ctx, "fetch reply page", err)
		}

		page, err := w.parser.ParseReplyPage(resp.StatusCode, resp.Body, task.rootID)
		if err != nil {
			return nil, err
		}
		out = append(out, page.Replies...)

		if !page.HasMore {
			return out, nil
		}
		if page.Cursor == "" || page.Cursor == task.cursor || seen[page.Cursor] {
			return nil, apperrors.New(apperrors.KindCommentFetch, "fetch reply page", "has_more set but cursor did not advance for "+task.rootID)
		}
		seen[task.cursor] = true
		task.cursor = page.Cursor
	}
}

func (w *commentWalker) wait(ctx context.Context) error {
	if w.delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(w.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (w *commentWalker) fetchError(ctx context.Context, op string, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(err, client.ErrUnusableSession) {
		return apperrors.Wrap(apperrors.KindAuthRejected, op, err)
	}
	return apperrors.Wrap(apperrors.KindCommentFetch, op, err)
}
