// Package scraper reads post snapshots and comment trees from the platform.
package scraper

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"xhs-monitor/internal/apperrors"
	"xhs-monitor/internal/client"
	"xhs-monitor/internal/models"
	"xhs-monitor/internal/parser"
)

// Inspector reads a post's current metadata in a single round trip.
type Inspector interface {
	FetchSnapshot(ctx context.Context, session models.Session, loc models.Locator) (models.PostSnapshot, error)
}

type postInspector struct {
	client client.XhsClientInterface
	parser parser.Parser
	logger *zap.Logger
}

func NewPostInspector(c client.XhsClientInterface, p parser.Parser, logger *zap.Logger) Inspector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &postInspector{client: c, parser: p, logger: logger}
}

// FetchSnapshot fails with AuthRejected when the session is refused or unusable,
// PostUnavailable when the post cannot be read with it and PlatformUnavailable when the
// request never got an answer.
func (i *postInspector) FetchSnapshot(ctx context.Context, session models.Session, loc models.Locator) (models.PostSnapshot, error) {
	resp, err := i.client.FetchNoteFeed(ctx, session, loc)
	if err != nil {
		if ctx.Err() != nil {
			return models.PostSnapshot{}, ctx.Err()
		}
		if errors.Is(err, client.ErrUnusableSession) {
			return models.PostSnapshot{}, apperrors.Wrap(apperrors.KindAuthRejected, "fetch snapshot", err)
		}
		return models.PostSnapshot{}, apperrors.Wrap(apperrors.KindPlatformUnavailable, "fetch snapshot", err)
	}

	snap, err := i.parser.ParseNoteFeed(resp.StatusCode, resp.Body)
	if err != nil {
		i.logger.Info("snapshot rejected",
			zap.String("note_id", loc.NoteID),
			zap.Int64("session_id", session.ID),
			zap.String("kind", string(apperrors.KindOf(err))),
			zap.Error(err))
		return models.PostSnapshot{}, err
	}

	if snap.NoteID == "" {
		snap.NoteID = loc.NoteID
	}
	snap.URL = loc.CanonicalURL

	i.logger.Debug("snapshot fetched",
		zap.String("note_id", snap.NoteID),
		zap.Int("count", snap.CommentCount))

	return snap, nil
}
